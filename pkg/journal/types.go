package journal

import (
	"context"
	"net/http"
	"time"
)

// Exchange is the journal entry for one proxied request/response pair.
type Exchange struct {
	// Identity
	ID        string `json:"id"`         // UUID v4
	RequestID string `json:"request_id"` // Correlation id shared with the log events

	// Timestamps
	StartedAt  time.Time     `json:"started_at"`  // When the request was received
	Duration   time.Duration `json:"duration"`    // Time until the response was written
	RecordedAt time.Time     `json:"recorded_at"` // When the entry was handed to the journal

	// Request
	Method         string            `json:"method"`
	Path           string            `json:"path"`
	Query          map[string]string `json:"query,omitempty"`
	RequestHeaders http.Header       `json:"request_headers,omitempty"`
	RequestBytes   int               `json:"request_bytes"`
	ClientIP       string            `json:"client_ip,omitempty"`

	// Response
	StatusCode      int         `json:"status_code"`
	ResponseHeaders http.Header `json:"response_headers,omitempty"`
	ResponseBytes   int         `json:"response_bytes"`

	// Failure info, empty on success
	FailureKind string `json:"failure_kind,omitempty"` // transport, invalid_destination, other
	Error       string `json:"error,omitempty"`
}

// Failed reports whether the exchange ended in a proxy failure.
func (e *Exchange) Failed() bool {
	return e.FailureKind != ""
}

// Query defines filter parameters for listing exchanges. Zero values match
// everything.
type Query struct {
	Since     *time.Time `json:"since,omitempty"`      // Inclusive lower bound on StartedAt
	RequestID string     `json:"request_id,omitempty"` // Exact correlation id
	Method    string     `json:"method,omitempty"`     // Exact method
	Status    int        `json:"status,omitempty"`     // Exact status code
	Failed    bool       `json:"failed,omitempty"`     // Only exchanges with a failure kind

	// Limit caps the result size. Zero means DefaultQueryLimit.
	Limit int `json:"limit,omitempty"`
}

// DefaultQueryLimit is the result cap applied when Query.Limit is zero.
const DefaultQueryLimit = 100

// EffectiveLimit returns the limit to apply for q.
func (q *Query) EffectiveLimit() int {
	if q == nil || q.Limit <= 0 {
		return DefaultQueryLimit
	}
	return q.Limit
}

// Matches reports whether e satisfies every filter in q. Backends that
// cannot filter natively apply it after reading.
func (q *Query) Matches(e *Exchange) bool {
	if q == nil {
		return true
	}
	if q.Since != nil && e.StartedAt.Before(*q.Since) {
		return false
	}
	if q.RequestID != "" && e.RequestID != q.RequestID {
		return false
	}
	if q.Method != "" && e.Method != q.Method {
		return false
	}
	if q.Status != 0 && e.StatusCode != q.Status {
		return false
	}
	if q.Failed && !e.Failed() {
		return false
	}
	return true
}

// Storage defines the interface for journal storage backends.
// Implementations must be safe for concurrent use.
type Storage interface {
	// Store persists an exchange.
	Store(ctx context.Context, exchange *Exchange) error

	// Query returns exchanges matching q, newest first. It returns an empty
	// slice when nothing matches.
	Query(ctx context.Context, q *Query) ([]*Exchange, error)

	// Count returns the number of stored exchanges.
	Count(ctx context.Context) (int64, error)

	// DeleteBefore removes exchanges started before cutoff and returns how
	// many were removed.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Trim removes the oldest exchanges until at most keep remain and
	// returns how many were removed.
	Trim(ctx context.Context, keep int64) (int64, error)

	// Ping verifies the backend is reachable. Used by the readiness probe.
	Ping(ctx context.Context) error

	// Close releases any resources held by the backend.
	Close() error
}
