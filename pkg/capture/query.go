package capture

import "strings"

// DecodeQuery parses a raw query string into a key/value mapping.
//
// Items are separated by '&' and empty items are skipped. Each item is split
// on its first '='; an item without '=' maps to the empty string. When a key
// appears more than once the last occurrence wins.
func DecodeQuery(raw string) map[string]string {
	query := make(map[string]string)

	for _, item := range strings.Split(raw, "&") {
		if item == "" {
			continue
		}

		key, value, _ := strings.Cut(item, "=")
		query[key] = value
	}

	return query
}
