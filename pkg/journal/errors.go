package journal

import "fmt"

// StorageError is returned by storage backends. Op names the backend call
// that failed, e.g. "store", "query" or "ping".
type StorageError struct {
	Backend string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("journal %s: %s: %v", e.Backend, e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError wraps err for backend and op.
func NewStorageError(backend, op string, err error) *StorageError {
	return &StorageError{Backend: backend, Op: op, Err: err}
}

// Retention phases reported by RetentionError.
const (
	PhaseAge   = "age"
	PhaseCount = "count"
)

// RetentionError is returned when a retention phase fails. Exchanges
// removed by earlier phases stay removed.
type RetentionError struct {
	Phase string
	Err   error
}

func (e *RetentionError) Error() string {
	return fmt.Sprintf("journal retention by %s: %v", e.Phase, e.Err)
}

func (e *RetentionError) Unwrap() error {
	return e.Err
}
