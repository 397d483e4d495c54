package format

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"mercator-hq/loupe/pkg/capture"
)

const blockRule = "-----------------"

// Event types reported in the structured envelope.
const (
	TypeRequest  = "request"
	TypeResponse = "response"
)

// RequestEvent is the log event emitted for an inbound request.
type RequestEvent struct {
	RequestID string
	Message   *capture.Message
	Options   Options
}

// ResponseEvent is the log event emitted for an upstream response.
type ResponseEvent struct {
	RequestID string
	Message   *capture.Message
	Options   Options
}

// NewRequestEvent builds the request event for msg.
func NewRequestEvent(requestID string, msg *capture.Message, opts Options) *RequestEvent {
	return &RequestEvent{RequestID: requestID, Message: msg, Options: opts}
}

// NewResponseEvent builds the response event for msg.
func NewResponseEvent(requestID string, msg *capture.Message, opts Options) *ResponseEvent {
	return &ResponseEvent{RequestID: requestID, Message: msg, Options: opts}
}

// Type returns TypeRequest.
func (e *RequestEvent) Type() string { return TypeRequest }

// Render returns the event in its configured envelope.
func (e *RequestEvent) Render() ([]byte, error) {
	if e.Options.Structured {
		return e.JSON()
	}
	return []byte(e.Text()), nil
}

// Text returns the human-readable block.
func (e *RequestEvent) Text() string {
	m := e.Message

	var b strings.Builder
	b.WriteString(blockRule + "\n")
	writeField(&b, "RequestId", e.RequestID)
	writeField(&b, "Path", m.Path)
	writeField(&b, "Query", Query(m.Query, e.Options))
	writeField(&b, "Method", m.Method)
	writeField(&b, "Version", m.Version)
	writeField(&b, "Headers", Headers(m.Header, e.Options))
	writeField(&b, "Body", Body(m.Body, m.Header, e.Options))
	b.WriteString(blockRule + "\n")

	return b.String()
}

// JSON returns the single-line structured envelope.
func (e *RequestEvent) JSON() ([]byte, error) {
	m := e.Message

	return encodeJSON(requestEnvelope{
		Type:      TypeRequest,
		RequestID: e.RequestID,
		Path:      m.Path,
		Query:     queryValue(m.Query),
		Method:    m.Method,
		Version:   m.Version,
		Headers:   headersValue(m.Header, e.Options),
		Body:      bodyValue(m.Body, m.Header, e.Options),
	}, false)
}

// Type returns TypeResponse.
func (e *ResponseEvent) Type() string { return TypeResponse }

// Render returns the event in its configured envelope.
func (e *ResponseEvent) Render() ([]byte, error) {
	if e.Options.Structured {
		return e.JSON()
	}
	return []byte(e.Text()), nil
}

// Text returns the human-readable block.
func (e *ResponseEvent) Text() string {
	m := e.Message

	var b strings.Builder
	b.WriteString(blockRule + "\n")
	writeField(&b, "RequestId", e.RequestID)
	writeField(&b, "StatusCode", strconv.Itoa(m.StatusCode))
	writeField(&b, "Version", m.Version)
	writeField(&b, "Headers", Headers(m.Header, e.Options))
	writeField(&b, "Body", Body(m.Body, m.Header, e.Options))
	b.WriteString(blockRule + "\n")

	return b.String()
}

// JSON returns the single-line structured envelope. The status code is
// emitted as a string.
func (e *ResponseEvent) JSON() ([]byte, error) {
	m := e.Message

	return encodeJSON(responseEnvelope{
		Type:       TypeResponse,
		RequestID:  e.RequestID,
		StatusCode: strconv.Itoa(m.StatusCode),
		Headers:    headersValue(m.Header, e.Options),
		Body:       bodyValue(m.Body, m.Header, e.Options),
	}, false)
}

type requestEnvelope struct {
	Type      string          `json:"type"`
	RequestID string          `json:"requestId"`
	Path      string          `json:"path"`
	Query     json.RawMessage `json:"query"`
	Method    string          `json:"method"`
	Version   string          `json:"version"`
	Headers   json.RawMessage `json:"headers"`
	Body      json.RawMessage `json:"body"`
}

type responseEnvelope struct {
	Type       string          `json:"type"`
	RequestID  string          `json:"requestId"`
	StatusCode string          `json:"statusCode"`
	Headers    json.RawMessage `json:"headers"`
	Body       json.RawMessage `json:"body"`
}

func writeField(b *strings.Builder, name, value string) {
	fmt.Fprintf(b, "%s: %s\n", name, value)
}
