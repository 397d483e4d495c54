package proxy

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a forwarding failure.
type Kind int

const (
	// KindTransport covers connection refused, timeouts, resets and any
	// failure while reading the upstream response.
	KindTransport Kind = iota + 1

	// KindInvalidDestination means the upstream URL could not be built from
	// the destination and the inbound path.
	KindInvalidDestination

	// KindOther is everything else. No detail is exposed to the client.
	KindOther
)

// String returns the metric and log label for the kind.
func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindInvalidDestination:
		return "invalid_destination"
	case KindOther:
		return "other"
	default:
		return "unknown"
	}
}

// Failure is the error returned by Forwarder.Forward.
type Failure struct {
	Kind   Kind
	Detail string
	Err    error
}

func newFailure(kind Kind, detail string, err error) *Failure {
	return &Failure{Kind: kind, Detail: detail, Err: err}
}

// Error returns the detail followed by the underlying error.
func (f *Failure) Error() string {
	switch {
	case f.Err == nil:
		return f.Detail
	case f.Detail == "":
		return f.Err.Error()
	default:
		return fmt.Sprintf("%s: %v", f.Detail, f.Err)
	}
}

// Unwrap returns the underlying error.
func (f *Failure) Unwrap() error {
	return f.Err
}

// AsFailure extracts a Failure from err. Errors that are not failures are
// classified as KindOther.
func AsFailure(err error) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return newFailure(KindOther, "", err)
}

// ErrorResponse is the JSON body written for failures that carry a message.
type ErrorResponse struct {
	Message string `json:"message"`
}

// WriteFailure writes the 500 response for f. Transport and destination
// failures carry a JSON message; every other kind gets an empty body.
func WriteFailure(w http.ResponseWriter, f *Failure) {
	switch f.Kind {
	case KindTransport, KindInvalidDestination:
		message := f.Error()
		if message == "" {
			message = http.StatusText(http.StatusInternalServerError)
		}
		_ = writeJSON(w, http.StatusInternalServerError, ErrorResponse{Message: message})
	case KindOther:
		w.WriteHeader(http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusInternalServerError)
	}
}
