package chain

import (
	"errors"
	"fmt"
)

// ConnectionError reports that the node could not answer a liveness query
// (chain ID or height).
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("could not get %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// QueryError reports a failed contract lookup or contract query.
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("could not query %s: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// StatusError is a non-2xx answer from the node.
type StatusError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("lcd http status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("lcd http status %d", e.StatusCode)
}

var ErrInvalidCodeID = errors.New("code id must be positive")
