// Package storage defines what the domain layer needs from the
// persistence collaborators: error classification shared by every
// backend, with the concrete repositories living in subpackages.
package storage

import "github.com/tidecal/server/internal/metrics"

// Error marks a failed call against the persisted store. It wraps the
// underlying driver error; callers may treat it as retryable. The core
// never retries on its own.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WrapErr classifies err as a store failure, or returns nil.
func WrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	metrics.StoreErrors.WithLabelValues(op).Inc()
	return &Error{Op: op, Err: err}
}
