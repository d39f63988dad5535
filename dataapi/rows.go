package dataapi

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/redshiftdata"
	"github.com/aws/aws-sdk-go-v2/service/redshiftdata/types"
	"github.com/samber/lo"

	"github.com/rudderlabs/rudder-go-kit/stats"
)

// Column describes one result column, produced once per execution from the first
// result page and shared by all rows of that execution.
type Column struct {
	Name      string
	TypeName  string
	Length    int32
	Precision int32
	Scale     int32
	Nullable  bool
}

// Row is an ordered tuple of cell values aligned with the result columns. A cell is
// nil or one of int64, float64, string, bool, []byte.
type Row []any

// Rows is a finite, forward-only sequence of result rows. It buffers at most one
// result page and fetches the next page transparently when the consumer crosses a
// page boundary. It is not restartable; once Next returns io.EOF it keeps doing so.
type Rows struct {
	api          RedshiftDataAPI
	id           string
	pagesFetched stats.Counter

	page      []Row
	idx       int
	nextToken *string
	done      bool
}

// Next returns the next row, or io.EOF once the sequence is exhausted.
func (r *Rows) Next(ctx context.Context) (Row, error) {
	for r.idx >= len(r.page) {
		if r.done || r.nextToken == nil {
			r.done = true
			r.page = nil
			return nil, io.EOF
		}
		out, err := r.api.GetStatementResult(ctx, &redshiftdata.GetStatementResultInput{
			Id:        aws.String(r.id),
			NextToken: r.nextToken,
		})
		if err != nil {
			return nil, fmt.Errorf("fetching result page for statement %s: %w", r.id, err)
		}
		r.pagesFetched.Increment()
		r.page = decodeRecords(out.Records)
		r.idx = 0
		r.nextToken = out.NextToken
	}
	row := r.page[r.idx]
	r.idx++
	return row, nil
}

// Drain consumes the remaining rows into a slice.
func (r *Rows) Drain(ctx context.Context) ([]Row, error) {
	var rows []Row
	for {
		row, err := r.Next(ctx)
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}

func decodeRecords(records [][]types.Field) []Row {
	return lo.Map(records, func(record []types.Field, _ int) Row {
		return lo.Map(record, func(field types.Field, _ int) any {
			return decodeField(field)
		})
	})
}

// decodeField unwraps the tagged union the service uses for a cell: an explicit null
// marker decodes to nil, otherwise the single typed member's value is returned.
func decodeField(field types.Field) any {
	switch v := field.(type) {
	case *types.FieldMemberIsNull:
		return nil
	case *types.FieldMemberLongValue:
		return v.Value
	case *types.FieldMemberDoubleValue:
		return v.Value
	case *types.FieldMemberStringValue:
		return v.Value
	case *types.FieldMemberBooleanValue:
		return v.Value
	case *types.FieldMemberBlobValue:
		return v.Value
	default:
		return nil
	}
}

func decodeColumns(metadata []types.ColumnMetadata) []Column {
	return lo.Map(metadata, func(m types.ColumnMetadata, _ int) Column {
		return Column{
			Name:      aws.ToString(m.Name),
			TypeName:  aws.ToString(m.TypeName),
			Length:    m.Length,
			Precision: m.Precision,
			Scale:     m.Scale,
			Nullable:  m.Nullable == 1,
		}
	})
}
