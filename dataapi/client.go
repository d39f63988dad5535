package dataapi

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/redshiftdata"
	"github.com/aws/aws-sdk-go-v2/service/redshiftdata/types"
	"github.com/aws/smithy-go"
	"github.com/cenkalti/backoff/v4"
	"github.com/samber/lo"

	"github.com/rudderlabs/rudder-go-kit/config"
	"github.com/rudderlabs/rudder-go-kit/logger"
	"github.com/rudderlabs/rudder-go-kit/stats"
	obskit "github.com/rudderlabs/rudder-observability-kit/go/labels"

	"github.com/rudderlabs/redshift-data-go/internal/waitutil"
)

// maxBatchStatements is the service-imposed ceiling on statements per submission.
const maxBatchStatements = 40

// activeStatementsExceeded is the error code the service returns when its limit on
// concurrently active statements is hit.
const activeStatementsExceeded = "ActiveStatementsExceededException"

// isAdmissionRejection reports whether a submission was turned away by admission
// control, the one transient, retryable submission failure.
func isAdmissionRejection(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == activeStatementsExceeded
}

// RedshiftDataAPI is the narrow slice of the Redshift Data API this client uses.
type RedshiftDataAPI interface {
	BatchExecuteStatement(ctx context.Context, params *redshiftdata.BatchExecuteStatementInput, optFns ...func(*redshiftdata.Options)) (*redshiftdata.BatchExecuteStatementOutput, error)
	DescribeStatement(ctx context.Context, params *redshiftdata.DescribeStatementInput, optFns ...func(*redshiftdata.Options)) (*redshiftdata.DescribeStatementOutput, error)
	GetStatementResult(ctx context.Context, params *redshiftdata.GetStatementResultInput, optFns ...func(*redshiftdata.Options)) (*redshiftdata.GetStatementResultOutput, error)
	CancelStatement(ctx context.Context, params *redshiftdata.CancelStatementInput, optFns ...func(*redshiftdata.Options)) (*redshiftdata.CancelStatementOutput, error)
}

// Client executes SQL against the Redshift Data API: it submits statement batches,
// retries admission-control rejections, polls executions to completion and streams
// paginated results. A Client holds no per-execution state and may be shared by many
// cursors; its connection parameters are resolved once at construction and immutable
// afterwards.
type Client struct {
	api          RedshiftDataAPI
	database     string
	params       ConnectionParams
	logger       logger.Logger
	statsFactory stats.Stats

	config struct {
		executeTimeout  time.Duration
		submitBackoff   time.Duration
		pollIntervalMin time.Duration
		pollIntervalCap time.Duration
	}

	stats struct {
		submitted        stats.Counter
		admissionRetries stats.Counter
		polls            stats.Counter
		waitDuration     stats.Timer
		pagesFetched     stats.Counter
	}
}

type Option func(*Client)

// WithLogger sets the logger, logger.NOP otherwise.
func WithLogger(log logger.Logger) Option {
	return func(c *Client) { c.logger = log.Child("dataapi") }
}

// WithStats sets the stats factory, stats.NOP otherwise.
func WithStats(statsFactory stats.Stats) Option {
	return func(c *Client) { c.statsFactory = statsFactory }
}

// WithExecuteTimeout overrides the default completion-wait budget.
func WithExecuteTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.config.executeTimeout = timeout }
}

// WithSubmitBackoffInterval overrides the interval slept after an admission-control
// rejection before resubmitting.
func WithSubmitBackoffInterval(interval time.Duration) Option {
	return func(c *Client) { c.config.submitBackoff = interval }
}

// WithPollIntervalCap overrides the ceiling of the doubling poll interval.
func WithPollIntervalCap(interval time.Duration) Option {
	return func(c *Client) { c.config.pollIntervalCap = interval }
}

// New creates a Client for a database, targeted via the given connection parameters.
func New(conf *config.Config, api RedshiftDataAPI, database string, params ConnectionParams, opts ...Option) *Client {
	c := &Client{
		api:          api,
		database:     database,
		params:       params.resolve(),
		logger:       logger.NOP,
		statsFactory: stats.NOP,
	}

	c.config.executeTimeout = conf.GetDuration("RedshiftData.executeTimeout", 120, time.Second)
	c.config.submitBackoff = conf.GetDuration("RedshiftData.submitBackoffInterval", 10, time.Second)
	c.config.pollIntervalMin = conf.GetDuration("RedshiftData.pollIntervalMin", 100, time.Millisecond)
	c.config.pollIntervalCap = conf.GetDuration("RedshiftData.pollIntervalCap", 5, time.Second)

	for _, opt := range opts {
		opt(c)
	}

	tags := stats.Tags{
		"database": database,
	}
	if c.params.Workgroup != "" {
		tags["workgroup"] = c.params.Workgroup
	}
	if c.params.ClusterIdentifier != "" {
		tags["clusterIdentifier"] = c.params.ClusterIdentifier
	}
	c.stats.submitted = c.statsFactory.NewTaggedStat("redshift_data_submissions", stats.CountType, tags)
	c.stats.admissionRetries = c.statsFactory.NewTaggedStat("redshift_data_admission_retries", stats.CountType, tags)
	c.stats.polls = c.statsFactory.NewTaggedStat("redshift_data_polls", stats.CountType, tags)
	c.stats.waitDuration = c.statsFactory.NewTaggedStat("redshift_data_wait_duration", stats.TimerType, tags)
	c.stats.pagesFetched = c.statsFactory.NewTaggedStat("redshift_data_pages_fetched", stats.CountType, tags)

	return c
}

// ExecuteOptions control a single submission.
type ExecuteOptions struct {
	// Wait blocks until the execution reaches a terminal status.
	Wait bool
	// Timeout bounds submission retries plus the completion wait. Zero means the
	// configured executeTimeout.
	Timeout time.Duration
	// StatementName is attached to the submission, when set.
	StatementName string
}

// ExecuteBatch submits up to 40 statements as one atomic batch and returns the
// execution identifier. Admission-control rejections are retried on a constant
// backoff until the timeout budget runs out; any other submission error propagates
// immediately. With opts.Wait the call blocks until the execution is terminal,
// spending whatever remains of the budget after submission.
func (c *Client) ExecuteBatch(ctx context.Context, sqls []string, opts ExecuteOptions) (string, error) {
	if len(sqls) == 0 {
		return "", ErrEmptyBatch
	}
	if len(sqls) > maxBatchStatements {
		return "", ErrBatchTooLarge
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = c.config.executeTimeout
	}

	input := &redshiftdata.BatchExecuteStatementInput{
		Database: aws.String(c.database),
		Sqls:     sqls,
	}
	c.params.apply(input)
	if opts.StatementName != "" {
		input.StatementName = aws.String(opts.StatementName)
	}

	var id string
	attempts := 0
	operation := func() error {
		attempts++
		out, err := c.api.BatchExecuteStatement(ctx, input)
		if err != nil {
			if isAdmissionRejection(err) {
				c.stats.admissionRetries.Increment()
				c.logger.Debugn("Too many active statements, backing off",
					logger.NewDurationField("backoff", c.config.submitBackoff))
				return err
			}
			return backoff.Permanent(err)
		}
		id = aws.ToString(out.Id)
		return nil
	}
	// the budget may go negative by one interval before submission gives up
	b := backoff.WithContext(backoff.WithMaxRetries(
		backoff.NewConstantBackOff(c.config.submitBackoff),
		uint64(timeout/c.config.submitBackoff)+1,
	), ctx)
	if err := backoff.Retry(operation, b); err != nil {
		if isAdmissionRejection(err) {
			return "", &TimeoutError{Elapsed: timeout}
		}
		return "", fmt.Errorf("submitting batch: %w", err)
	}
	c.stats.submitted.Increment()
	c.logger.Infon("Queued statements", logger.NewStringField("id", id),
		logger.NewIntField("statements", int64(len(sqls))))

	if opts.Wait {
		// submission retries already consumed part of the budget
		remaining := timeout - time.Duration(attempts-1)*c.config.submitBackoff
		if remaining < 0 {
			remaining = 0
		}
		if _, err := c.waitForCompletion(ctx, id, remaining); err != nil {
			return id, err
		}
	}
	return id, nil
}

// Execute submits a single statement.
func (c *Client) Execute(ctx context.Context, sql string, opts ExecuteOptions) (string, error) {
	return c.ExecuteBatch(ctx, []string{sql}, opts)
}

// ExecuteBatched splits an arbitrarily large statement set into batches of at most
// 40, runs them sequentially waiting for each to complete, and returns the execution
// identifiers in submission order. The first failure aborts the remaining batches.
func (c *Client) ExecuteBatched(ctx context.Context, sqls []string, opts ExecuteOptions) ([]string, error) {
	opts.Wait = true
	ids := make([]string, 0, (len(sqls)+maxBatchStatements-1)/maxBatchStatements)
	for _, batch := range lo.Chunk(sqls, maxBatchStatements) {
		id, err := c.ExecuteBatch(ctx, batch, opts)
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ExecuteFetch submits a single statement, waits for it to finish and returns its
// result columns and row stream.
func (c *Client) ExecuteFetch(ctx context.Context, sql string, opts ExecuteOptions) ([]Column, *Rows, error) {
	opts.Wait = true
	id, err := c.Execute(ctx, sql, opts)
	if err != nil {
		return nil, nil, err
	}
	return c.ResultSet(ctx, id)
}

// WaitForCompletion polls the execution until it reaches a terminal status, within
// the configured executeTimeout. On success it returns the service-reported row
// count, which is best effort and may be zero.
func (c *Client) WaitForCompletion(ctx context.Context, id string) (int64, error) {
	return c.waitForCompletion(ctx, id, c.config.executeTimeout)
}

func (c *Client) waitForCompletion(ctx context.Context, id string, budget time.Duration) (int64, error) {
	defer c.stats.waitDuration.RecordDuration()()

	var interval waitutil.Exponential
	var elapsed time.Duration
	for {
		out, err := c.api.DescribeStatement(ctx, &redshiftdata.DescribeStatementInput{Id: aws.String(id)})
		if err != nil {
			return 0, fmt.Errorf("describing statement %s: %w", id, err)
		}
		c.stats.polls.Increment()

		switch out.Status {
		case types.StatusStringFinished:
			return out.ResultRows, nil
		case types.StatusStringSubmitted, types.StatusStringPicked, types.StatusStringStarted:
			// in flight, poll again
		case types.StatusStringAborted, types.StatusStringFailed:
			return 0, &QueryError{ID: id, Status: string(out.Status), Message: aws.ToString(out.Error)}
		default:
			return 0, &ProtocolError{ID: id, Status: string(out.Status)}
		}

		if elapsed >= budget {
			c.cancelBestEffort(ctx, id)
			return 0, &TimeoutError{ID: id, Elapsed: elapsed}
		}
		next := interval.Next(c.config.pollIntervalMin, c.config.pollIntervalCap)
		if err := waitutil.Sleep(ctx, next); err != nil {
			return 0, err
		}
		elapsed += next
	}
}

// cancelBestEffort cancels the execution, swallowing any error: the statement may
// have completed in the interim, making the cancellation itself fail, which is not
// an error condition here.
func (c *Client) cancelBestEffort(ctx context.Context, id string) {
	if _, err := c.api.CancelStatement(ctx, &redshiftdata.CancelStatementInput{Id: aws.String(id)}); err != nil {
		c.logger.Warnn("Failed to cancel statement",
			logger.NewStringField("id", id), obskit.Error(err))
	}
}

// Cancel cancels a running execution.
func (c *Client) Cancel(ctx context.Context, id string) error {
	if _, err := c.api.CancelStatement(ctx, &redshiftdata.CancelStatementInput{Id: aws.String(id)}); err != nil {
		return fmt.Errorf("cancelling statement %s: %w", id, err)
	}
	return nil
}

// StatementStatus is a point-in-time projection of an execution's state.
type StatementStatus struct {
	ID              string
	Status          string
	RowCount        int64
	Error           string
	SubStatementIDs []string
}

// Describe reports the current status of an execution.
func (c *Client) Describe(ctx context.Context, id string) (StatementStatus, error) {
	out, err := c.api.DescribeStatement(ctx, &redshiftdata.DescribeStatementInput{Id: aws.String(id)})
	if err != nil {
		return StatementStatus{}, fmt.Errorf("describing statement %s: %w", id, err)
	}
	return StatementStatus{
		ID:       id,
		Status:   string(out.Status),
		RowCount: rowCount(out),
		Error:    aws.ToString(out.Error),
		SubStatementIDs: lo.Map(out.SubStatements, func(s types.SubStatementData, _ int) string {
			return aws.ToString(s.Id)
		}),
	}, nil
}

// RowCount reports the number of result rows of an execution. For a batch it is the
// row count of the last sub-statement, the one whose results matter.
func (c *Client) RowCount(ctx context.Context, id string) (int64, error) {
	out, err := c.api.DescribeStatement(ctx, &redshiftdata.DescribeStatementInput{Id: aws.String(id)})
	if err != nil {
		return 0, fmt.Errorf("describing statement %s: %w", id, err)
	}
	return rowCount(out), nil
}

func rowCount(out *redshiftdata.DescribeStatementOutput) int64 {
	if len(out.SubStatements) > 0 {
		return out.SubStatements[len(out.SubStatements)-1].ResultRows
	}
	return out.ResultRows
}

// ResultSet returns the result columns and a lazy row stream of an execution. For a
// batch the results of the last sub-statement are targeted. The first page is
// fetched eagerly so callers have the schema before consuming any rows; subsequent
// pages are fetched as the stream advances.
func (c *Client) ResultSet(ctx context.Context, id string) ([]Column, *Rows, error) {
	out, err := c.api.DescribeStatement(ctx, &redshiftdata.DescribeStatementInput{Id: aws.String(id)})
	if err != nil {
		return nil, nil, fmt.Errorf("describing statement %s: %w", id, err)
	}
	if len(out.SubStatements) > 0 {
		id = aws.ToString(out.SubStatements[len(out.SubStatements)-1].Id)
	}

	first, err := c.api.GetStatementResult(ctx, &redshiftdata.GetStatementResultInput{Id: aws.String(id)})
	if err != nil {
		return nil, nil, fmt.Errorf("fetching result page for statement %s: %w", id, err)
	}
	c.stats.pagesFetched.Increment()

	rows := &Rows{
		api:          c.api,
		id:           id,
		pagesFetched: c.stats.pagesFetched,
		page:         decodeRecords(first.Records),
		nextToken:    first.NextToken,
	}
	return decodeColumns(first.ColumnMetadata), rows, nil
}
