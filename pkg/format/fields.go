package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

// Headers renders a header map for the human-readable envelope: indented
// JSON with pretty fields, the native map form otherwise.
func Headers(h http.Header, opts Options) string {
	h = RedactHeaders(orEmptyHeader(h), opts.RedactHeaders)

	if opts.PrettyFields {
		if b, err := encodeJSON(h, true); err == nil {
			return string(b)
		}
	}

	return fmt.Sprintf("%v", map[string][]string(h))
}

// Query renders decoded query parameters for the human-readable envelope.
func Query(q map[string]string, opts Options) string {
	q = orEmptyQuery(q)

	if opts.PrettyFields {
		if b, err := encodeJSON(q, true); err == nil {
			return string(b)
		}
	}

	return fmt.Sprintf("%v", q)
}

// headersValue renders headers for the structured envelope. Pretty fields
// embed the map as a JSON object; otherwise the compact text form is
// embedded as a string.
func headersValue(h http.Header, opts Options) json.RawMessage {
	if opts.PrettyFields {
		h = RedactHeaders(orEmptyHeader(h), opts.RedactHeaders)
		if b, err := encodeJSON(h, false); err == nil {
			return b
		}
	}

	return stringValue(Headers(h, Options{RedactHeaders: opts.RedactHeaders}))
}

// queryValue always renders the query as a JSON object.
func queryValue(q map[string]string) json.RawMessage {
	b, err := encodeJSON(orEmptyQuery(q), false)
	if err != nil {
		return json.RawMessage(`{}`)
	}

	return b
}

func stringValue(s string) json.RawMessage {
	b, err := encodeJSON(s, false)
	if err != nil {
		return json.RawMessage(`""`)
	}

	return b
}

// encodeJSON marshals v without HTML escaping so logged payloads keep
// characters like <, > and & readable.
func encodeJSON(v any, indent bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}

	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func orEmptyHeader(h http.Header) http.Header {
	if h == nil {
		return http.Header{}
	}
	return h
}

func orEmptyQuery(q map[string]string) map[string]string {
	if q == nil {
		return map[string]string{}
	}
	return q
}
