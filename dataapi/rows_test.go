package dataapi_test

import (
	"context"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/redshiftdata"
	"github.com/aws/aws-sdk-go-v2/service/redshiftdata/types"
	"github.com/stretchr/testify/require"

	"github.com/rudderlabs/rudder-go-kit/config"

	"github.com/rudderlabs/redshift-data-go/dataapi"
)

// pagedResultAPI serves a result set split into pages keyed by continuation token.
func pagedResultAPI(t *testing.T, columns []types.ColumnMetadata, pages map[string]*redshiftdata.GetStatementResultOutput) *fakeDataAPI {
	t.Helper()
	return &fakeDataAPI{
		describeFn: func(*redshiftdata.DescribeStatementInput) (*redshiftdata.DescribeStatementOutput, error) {
			return &redshiftdata.DescribeStatementOutput{Status: types.StatusStringFinished}, nil
		},
		getResultFn: func(in *redshiftdata.GetStatementResultInput) (*redshiftdata.GetStatementResultOutput, error) {
			out, ok := pages[aws.ToString(in.NextToken)]
			require.True(t, ok, "unexpected continuation token %q", aws.ToString(in.NextToken))
			out.ColumnMetadata = columns
			return out, nil
		},
	}
}

func intField(v int64) types.Field { return &types.FieldMemberLongValue{Value: v} }

func TestResultSetPagination(t *testing.T) {
	ctx := context.Background()

	columns := []types.ColumnMetadata{{Name: aws.String("n"), TypeName: aws.String("int8")}}
	pages := map[string]*redshiftdata.GetStatementResultOutput{
		"": {
			Records:   [][]types.Field{{intField(1)}, {intField(2)}},
			NextToken: aws.String("page-2"),
		},
		"page-2": {
			Records:   [][]types.Field{{intField(3)}},
			NextToken: aws.String("page-3"),
		},
		"page-3": {
			Records: [][]types.Field{{intField(4)}, {intField(5)}},
		},
	}
	api := pagedResultAPI(t, columns, pages)
	c := dataapi.New(config.New(), api, "dev", dataapi.ConnectionParams{Workgroup: "wg"})

	cols, rows, err := c.ResultSet(ctx, "stmt-1")
	require.NoError(t, err)
	require.Equal(t, []dataapi.Column{{Name: "n", TypeName: "int8"}}, cols)
	// only the first page is fetched eagerly
	require.Equal(t, 1, api.getResultCalls)

	var got []int64
	for {
		row, err := rows.Next(ctx)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		require.Len(t, row, 1)
		got = append(got, row[0].(int64))
		if len(got) == 2 {
			// still draining the buffered page
			require.Equal(t, 1, api.getResultCalls)
		}
	}
	require.Equal(t, []int64{1, 2, 3, 4, 5}, got)
	require.Equal(t, 3, api.getResultCalls)

	// exhausted for good, not restartable
	_, err = rows.Next(ctx)
	require.ErrorIs(t, err, io.EOF)
	_, err = rows.Next(ctx)
	require.ErrorIs(t, err, io.EOF)
	require.Equal(t, 3, api.getResultCalls)
}

func TestResultSetTargetsLastSubStatement(t *testing.T) {
	ctx := context.Background()

	var resultID string
	api := &fakeDataAPI{
		describeFn: func(*redshiftdata.DescribeStatementInput) (*redshiftdata.DescribeStatementOutput, error) {
			return &redshiftdata.DescribeStatementOutput{
				Status: types.StatusStringFinished,
				SubStatements: []types.SubStatementData{
					{Id: aws.String("stmt-1:1")},
					{Id: aws.String("stmt-1:2")},
				},
			}, nil
		},
		getResultFn: func(in *redshiftdata.GetStatementResultInput) (*redshiftdata.GetStatementResultOutput, error) {
			resultID = aws.ToString(in.Id)
			return &redshiftdata.GetStatementResultOutput{
				ColumnMetadata: []types.ColumnMetadata{{Name: aws.String("n"), TypeName: aws.String("int8")}},
				Records:        [][]types.Field{{intField(1)}},
			}, nil
		},
	}
	c := dataapi.New(config.New(), api, "dev", dataapi.ConnectionParams{Workgroup: "wg"})

	_, rows, err := c.ResultSet(ctx, "stmt-1")
	require.NoError(t, err)
	require.Equal(t, "stmt-1:2", resultID)

	all, err := rows.Drain(ctx)
	require.NoError(t, err)
	require.Equal(t, []dataapi.Row{{int64(1)}}, all)
}

func TestCellDecoding(t *testing.T) {
	ctx := context.Background()

	api := &fakeDataAPI{
		describeFn: func(*redshiftdata.DescribeStatementInput) (*redshiftdata.DescribeStatementOutput, error) {
			return &redshiftdata.DescribeStatementOutput{Status: types.StatusStringFinished}, nil
		},
		getResultFn: func(*redshiftdata.GetStatementResultInput) (*redshiftdata.GetStatementResultOutput, error) {
			return &redshiftdata.GetStatementResultOutput{
				ColumnMetadata: []types.ColumnMetadata{
					{Name: aws.String("l")}, {Name: aws.String("d")}, {Name: aws.String("s")},
					{Name: aws.String("b")}, {Name: aws.String("bl")}, {Name: aws.String("nul")},
				},
				Records: [][]types.Field{{
					&types.FieldMemberLongValue{Value: 42},
					&types.FieldMemberDoubleValue{Value: 3.14},
					&types.FieldMemberStringValue{Value: "hello"},
					&types.FieldMemberBooleanValue{Value: true},
					&types.FieldMemberBlobValue{Value: []byte("blob")},
					&types.FieldMemberIsNull{Value: true},
				}},
			}, nil
		},
	}
	c := dataapi.New(config.New(), api, "dev", dataapi.ConnectionParams{Workgroup: "wg"})

	_, rows, err := c.ResultSet(ctx, "stmt-1")
	require.NoError(t, err)
	row, err := rows.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, dataapi.Row{int64(42), 3.14, "hello", true, []byte("blob"), nil}, row)
}
