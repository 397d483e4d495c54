package capture

import (
	"bytes"
	"io"
	"net/http"
)

// Message is an immutable snapshot of an HTTP request or response.
//
// Request snapshots carry Method, Path, Query and Version; response snapshots
// carry StatusCode and Version. Header is a deep copy of the original, so
// later changes to the live message do not leak into the snapshot. Callers
// must treat every field as read-only.
type Message struct {
	Method     string
	Path       string
	Query      map[string]string
	Version    string
	StatusCode int
	Header     http.Header
	Body       []byte
}

// NewRequest snapshots r using an already captured body.
func NewRequest(r *http.Request, body []byte) *Message {
	return &Message{
		Method:  r.Method,
		Path:    r.URL.Path,
		Query:   DecodeQuery(r.URL.RawQuery),
		Version: r.Proto,
		Header:  r.Header.Clone(),
		Body:    body,
	}
}

// NewResponse snapshots resp using an already captured body.
func NewResponse(resp *http.Response, body []byte) *Message {
	return &Message{
		Version:    resp.Proto,
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       body,
	}
}

// Capture drains r.Body and snapshots the request. On success r.Body is
// replaced by a fresh reader over the captured bytes so downstream handlers
// still see the full payload.
func Capture(r *http.Request) (*Message, error) {
	body, err := ReadBody(r.Body)
	if err != nil {
		return nil, err
	}

	msg := NewRequest(r, body)
	r.Body = msg.BodyReader()

	return msg, nil
}

// BodyReader returns a new reader over the captured body. Each call returns
// an independent view starting at the first byte.
func (m *Message) BodyReader() io.ReadCloser {
	if len(m.Body) == 0 {
		return http.NoBody
	}

	return io.NopCloser(bytes.NewReader(m.Body))
}

// Len returns the number of captured body bytes.
func (m *Message) Len() int {
	return len(m.Body)
}
