package host

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable reports that the host could not answer a query.
	ErrUnavailable = errors.New("query unavailable")
	// ErrUnsupported reports that the queried object has no such property.
	ErrUnsupported = errors.New("query not supported")
)

// QueryError wraps a failed host query with the name of the operation.
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("host: %s: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Fail returns a QueryError for op wrapping err.
func Fail(op string, err error) error {
	if err == nil {
		err = ErrUnavailable
	}
	return &QueryError{Op: op, Err: err}
}
