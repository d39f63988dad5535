package dataapi

import (
	"context"
	"io"
	"strings"

	"github.com/samber/lo"
)

// TypeCode is the cursor-level type classification of a result column.
type TypeCode int

const (
	TypeCodeLong TypeCode = iota
	TypeCodeDouble
	TypeCodeString
	TypeCodeBoolean
	TypeCodeBlob
)

var typeCodes = map[string]TypeCode{
	"LONG":    TypeCodeLong,
	"DOUBLE":  TypeCodeDouble,
	"STRING":  TypeCodeString,
	"BOOLEAN": TypeCodeBoolean,
	"BLOB":    TypeCodeBlob,
}

func typeCodeFor(typeName string) TypeCode {
	if code, ok := typeCodes[strings.ToUpper(typeName)]; ok {
		return code
	}
	return TypeCodeString
}

// ColumnDescription describes one result column in conventional cursor terms.
type ColumnDescription struct {
	Name         string
	TypeCode     TypeCode
	DisplaySize  int32
	InternalSize int32
	Precision    int32
	Scale        int32
	Nullable     bool
}

type cursorState int

const (
	// no statement executed yet
	stateUnexecuted cursorState = iota
	// executed, result set not materialized
	stateExecuted
	// result set materialized, rows being streamed
	stateStreaming
	// row stream drained
	stateExhausted
)

// Cursor adapts the Client's batch/poll/page model to single-statement synchronous
// cursor semantics. Result materialization is lazy: the first fetch or Description
// call after Execute triggers it. A Cursor is not safe for concurrent use; create
// one per goroutine, they can share the same Client.
type Cursor struct {
	client *Client

	state cursorState
	id    string
	cols  []Column
	rows  *Rows
}

// NewCursor creates a cursor on top of a client.
func NewCursor(client *Client) *Cursor {
	return &Cursor{client: client}
}

// Execute submits a single statement, waits for it to complete and stores its
// execution identifier, discarding any prior result state. It returns the receiver
// so calls can be chained.
func (c *Cursor) Execute(ctx context.Context, sql string) (*Cursor, error) {
	c.state = stateUnexecuted
	c.id = ""
	c.cols = nil
	c.rows = nil

	id, err := c.client.Execute(ctx, sql, ExecuteOptions{Wait: true})
	if err != nil {
		return nil, err
	}
	c.id = id
	c.state = stateExecuted
	return c, nil
}

// materialize fetches the result set on the first access after Execute.
func (c *Cursor) materialize(ctx context.Context) error {
	switch c.state {
	case stateUnexecuted:
		return ErrCursorNotExecuted
	case stateExecuted:
		cols, rows, err := c.client.ResultSet(ctx, c.id)
		if err != nil {
			return err
		}
		c.cols = cols
		c.rows = rows
		c.state = stateStreaming
	}
	return nil
}

// FetchOne returns the next result row, or io.EOF once the stream is exhausted.
func (c *Cursor) FetchOne(ctx context.Context) (Row, error) {
	if err := c.materialize(ctx); err != nil {
		return nil, err
	}
	if c.state == stateExhausted {
		return nil, io.EOF
	}
	row, err := c.rows.Next(ctx)
	if err == io.EOF {
		c.state = stateExhausted
		return nil, io.EOF
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

// FetchAll drains the remaining rows into a slice.
func (c *Cursor) FetchAll(ctx context.Context) ([]Row, error) {
	if err := c.materialize(ctx); err != nil {
		return nil, err
	}
	if c.state == stateExhausted {
		return nil, nil
	}
	rows, err := c.rows.Drain(ctx)
	if err != nil {
		return nil, err
	}
	c.state = stateExhausted
	return rows, nil
}

// RowCount reports the executed statement's result row count.
func (c *Cursor) RowCount(ctx context.Context) (int64, error) {
	if c.state == stateUnexecuted {
		return 0, ErrCursorNotExecuted
	}
	return c.client.RowCount(ctx, c.id)
}

// Description describes the executed statement's result columns, one descriptor per
// column with the logical type name mapped to a TypeCode, unknown names defaulting
// to TypeCodeString. It materializes the result set if no fetch has happened yet.
func (c *Cursor) Description(ctx context.Context) ([]ColumnDescription, error) {
	if err := c.materialize(ctx); err != nil {
		return nil, err
	}
	return lo.Map(c.cols, func(col Column, _ int) ColumnDescription {
		return ColumnDescription{
			Name:         col.Name,
			TypeCode:     typeCodeFor(col.TypeName),
			DisplaySize:  col.Length,
			InternalSize: col.Length,
			Precision:    col.Precision,
			Scale:        col.Scale,
			Nullable:     col.Nullable,
		}
	}), nil
}

// Close is a no-op: the backing service is stateless, there is nothing to release.
// It exists so a cursor satisfies the usual acquire/close discipline.
func (c *Cursor) Close() error {
	return nil
}
