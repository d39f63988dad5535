package dataapi_test

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/redshiftdata"
)

// fakeDataAPI scripts the four Redshift Data API operations the client uses and
// counts the calls it receives.
type fakeDataAPI struct {
	batchExecuteFn func(*redshiftdata.BatchExecuteStatementInput) (*redshiftdata.BatchExecuteStatementOutput, error)
	describeFn     func(*redshiftdata.DescribeStatementInput) (*redshiftdata.DescribeStatementOutput, error)
	getResultFn    func(*redshiftdata.GetStatementResultInput) (*redshiftdata.GetStatementResultOutput, error)
	cancelFn       func(*redshiftdata.CancelStatementInput) (*redshiftdata.CancelStatementOutput, error)

	batchExecuteCalls int
	describeCalls     int
	getResultCalls    int
	cancelCalls       int
}

func (f *fakeDataAPI) BatchExecuteStatement(_ context.Context, params *redshiftdata.BatchExecuteStatementInput, _ ...func(*redshiftdata.Options)) (*redshiftdata.BatchExecuteStatementOutput, error) {
	f.batchExecuteCalls++
	return f.batchExecuteFn(params)
}

func (f *fakeDataAPI) DescribeStatement(_ context.Context, params *redshiftdata.DescribeStatementInput, _ ...func(*redshiftdata.Options)) (*redshiftdata.DescribeStatementOutput, error) {
	f.describeCalls++
	return f.describeFn(params)
}

func (f *fakeDataAPI) GetStatementResult(_ context.Context, params *redshiftdata.GetStatementResultInput, _ ...func(*redshiftdata.Options)) (*redshiftdata.GetStatementResultOutput, error) {
	f.getResultCalls++
	return f.getResultFn(params)
}

func (f *fakeDataAPI) CancelStatement(_ context.Context, params *redshiftdata.CancelStatementInput, _ ...func(*redshiftdata.Options)) (*redshiftdata.CancelStatementOutput, error) {
	f.cancelCalls++
	return f.cancelFn(params)
}
