package format

import (
	"net/http"
	"strings"
)

// RedactedValue replaces the values of redacted headers.
const RedactedValue = "[REDACTED]"

// RedactHeaders returns h with the values of the named headers replaced by
// RedactedValue. Names are matched case-insensitively. The input is never
// modified; when nothing matches h itself is returned.
func RedactHeaders(h http.Header, names []string) http.Header {
	if len(h) == 0 || len(names) == 0 {
		return h
	}

	var out http.Header
	for _, name := range names {
		key := http.CanonicalHeaderKey(strings.TrimSpace(name))
		values, ok := h[key]
		if !ok {
			continue
		}

		if out == nil {
			out = h.Clone()
		}

		redacted := make([]string, len(values))
		for i := range redacted {
			redacted[i] = RedactedValue
		}
		out[key] = redacted
	}

	if out == nil {
		return h
	}

	return out
}
