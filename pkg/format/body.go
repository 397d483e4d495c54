package format

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"
)

const truncationSuffix = "..."

// Body renders a captured body for the human-readable envelope.
//
// With PrettyFields set, a body that is valid JSON is re-indented with its
// key order preserved. Otherwise, and for anything that does not parse, the
// text is returned unchanged. Invalid UTF-8 is always Go-quoted.
func Body(body []byte, header http.Header, opts Options) string {
	b, truncated := prepareBody(body, header, opts)

	if prettyJSON(b, truncated, opts) {
		var buf bytes.Buffer
		if err := json.Indent(&buf, b, "", "  "); err == nil {
			return buf.String()
		}
	}

	return bodyText(b, truncated)
}

// bodyValue renders a captured body as a JSON value for the structured
// envelope: an embedded JSON document when pretty fields are on and the body
// parses, a JSON string otherwise.
func bodyValue(body []byte, header http.Header, opts Options) json.RawMessage {
	b, truncated := prepareBody(body, header, opts)

	if prettyJSON(b, truncated, opts) {
		var buf bytes.Buffer
		if err := json.Compact(&buf, b); err == nil {
			return buf.Bytes()
		}
	}

	return stringValue(bodyText(b, truncated))
}

// prettyJSON reports whether b can be embedded as JSON. Invalid UTF-8 inside
// a JSON string passes json.Valid, so it is checked separately and such
// bodies are rendered by bodyText.
func prettyJSON(b []byte, truncated bool, opts Options) bool {
	return opts.PrettyFields && !truncated && utf8.Valid(b) && json.Valid(b)
}

func prepareBody(body []byte, header http.Header, opts Options) ([]byte, bool) {
	if opts.DecodeGzip {
		body = decodeContent(body, header)
	}

	if opts.MaxBodyBytes <= 0 || len(body) <= opts.MaxBodyBytes {
		return body, false
	}

	cut := opts.MaxBodyBytes
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}

	return body[:cut], true
}

// bodyText converts body bytes to text. Invalid UTF-8 is quoted with Go
// escapes instead of being replaced, so no byte is silently lost.
func bodyText(b []byte, truncated bool) string {
	var s string
	if utf8.Valid(b) {
		s = string(b)
	} else {
		s = strconv.Quote(string(b))
	}

	if truncated {
		s += truncationSuffix
	}

	return s
}

// decodeContent returns the decompressed body when the message declares gzip
// content encoding. Any failure falls back to the raw bytes.
func decodeContent(body []byte, header http.Header) []byte {
	if len(body) == 0 || !strings.EqualFold(header.Get("Content-Encoding"), "gzip") {
		return body
	}

	reader, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		return body
	}
	defer reader.Close()

	decoded, err := io.ReadAll(reader)
	if err != nil {
		return body
	}

	return decoded
}
