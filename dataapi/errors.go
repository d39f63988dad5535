package dataapi

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEmptyBatch is returned when a batch contains no statements.
	ErrEmptyBatch = errors.New("batch contains no statements")
	// ErrBatchTooLarge is returned when a batch exceeds the service ceiling of 40 statements.
	// Use ExecuteBatched to run larger statement sets.
	ErrBatchTooLarge = fmt.Errorf("batch exceeds %d statements", maxBatchStatements)
	// ErrCursorNotExecuted is returned when a cursor is used before Execute.
	ErrCursorNotExecuted = errors.New("cursor has not executed a statement")
)

// QueryError is a terminal query failure (ABORTED or FAILED status). It carries the
// service-reported error text verbatim and is never retried.
type QueryError struct {
	ID      string
	Status  string
	Message string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query [%s] failed status [%s] with error [%s]", e.ID, e.Status, e.Message)
}

// ProtocolError indicates the service reported a status string this client does not
// recognize, i.e. a client/service contract mismatch.
type ProtocolError struct {
	ID     string
	Status string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("query [%s] invalid status [%s]", e.ID, e.Status)
}

// TimeoutError is returned when the submission or polling budget is exhausted.
// ID is empty when submission itself never succeeded.
type TimeoutError struct {
	ID      string
	Elapsed time.Duration
}

func (e *TimeoutError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("timed out after [%s] while submitting statements", e.Elapsed)
	}
	return fmt.Sprintf("query [%s] timed out after [%s]", e.ID, e.Elapsed)
}
