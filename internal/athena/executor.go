package athena

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/athena/types"
	"golang.org/x/time/rate"

	"github.com/lambdaspectre/lambdaspectre/internal/models"
	"github.com/lambdaspectre/lambdaspectre/internal/queries"
	"github.com/lambdaspectre/lambdaspectre/pkg/config"
)

const defaultPollInterval = 5 * time.Second

// QueryError is a query execution that reached FAILED or CANCELLED. The
// engine's state-change reason is surfaced verbatim; re-creation of an
// existing table is an engine policy, not something the executor masks.
type QueryError struct {
	Label   string
	QueryID string
	State   models.QueryStatus
	Reason  string
}

func (e *QueryError) Error() string {
	reason := strings.TrimSpace(e.Reason)
	if reason == "" {
		reason = "no state change reason reported"
	}
	return fmt.Sprintf("query %s (%s) finished %s: %s", e.Label, e.QueryID, e.State, reason)
}

// Executor runs statements against the Athena job API one at a time.
type Executor struct {
	api            API
	database       string
	outputLocation string
	interval       time.Duration
	timeout        time.Duration
	limiter        *rate.Limiter
	sleep          func(context.Context, time.Duration) error
}

// NewExecutor builds an executor from runtime config. The poll interval
// defaults to 5 seconds and a zero timeout means the wait is unbounded.
func NewExecutor(api API, cfg *config.Config) *Executor {
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}

	rps := cfg.PollRateRPS
	if rps <= 0 {
		rps = 2
	}

	return &Executor{
		api:            api,
		database:       cfg.Database,
		outputLocation: OutputLocation(cfg.AthenaBucket, cfg.Region),
		interval:       interval,
		timeout:        cfg.PollTimeout,
		limiter:        rate.NewLimiter(rate.Limit(rps), rps*2),
		sleep:          sleepWithContext,
	}
}

// Submit starts a query execution and returns the engine-assigned job. The
// engine gives no guarantee the query is scheduled immediately.
func (e *Executor) Submit(ctx context.Context, stmt queries.Statement) (models.QueryJob, error) {
	out, err := e.api.StartQueryExecution(ctx, &athena.StartQueryExecutionInput{
		QueryString: aws.String(stmt.SQL),
		QueryExecutionContext: &types.QueryExecutionContext{
			Database: aws.String(e.database),
		},
		ResultConfiguration: &types.ResultConfiguration{
			OutputLocation: aws.String(e.outputLocation),
		},
	})
	if err != nil {
		return models.QueryJob{}, fmt.Errorf("failed to start %s query: %w", stmt.Label, err)
	}

	job := models.QueryJob{
		ID:     aws.ToString(out.QueryExecutionId),
		Label:  stmt.Label,
		SQL:    stmt.SQL,
		Status: models.StatusQueued,
	}
	slog.Debug("query submitted", slog.String("label", job.Label), slog.String("query_id", job.ID))
	return job, nil
}

// Wait blocks until the job reaches a terminal state, checking status at the
// configured interval. FAILED and CANCELLED become a QueryError carrying the
// engine's reason.
func (e *Executor) Wait(ctx context.Context, job *models.QueryJob) error {
	ctx, cancel := withTotalTimeoutContext(ctx, e.timeout)
	defer cancel()

	for {
		if err := e.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("query %s (%s) wait aborted: %w", job.Label, job.ID, contextOrErr(ctx, err))
		}

		out, err := e.api.GetQueryExecution(ctx, &athena.GetQueryExecutionInput{
			QueryExecutionId: aws.String(job.ID),
		})
		if err != nil {
			return fmt.Errorf("failed to get status of %s query (%s): %w", job.Label, job.ID, err)
		}

		status, reason := executionState(out)
		job.Status = status

		if status.Terminal() {
			if status != models.StatusSucceeded {
				return &QueryError{Label: job.Label, QueryID: job.ID, State: status, Reason: reason}
			}
			slog.Debug("query succeeded", slog.String("label", job.Label), slog.String("query_id", job.ID))
			return nil
		}

		slog.Debug("query still running",
			slog.String("label", job.Label),
			slog.String("query_id", job.ID),
			slog.String("state", string(status)),
		)

		if err := e.sleep(ctx, e.interval); err != nil {
			return fmt.Errorf("query %s (%s) wait aborted: %w", job.Label, job.ID, contextOrErr(ctx, err))
		}
	}
}

// FetchRows retrieves the full result set of a succeeded job, following
// pagination tokens. Row 0 is the engine's header row.
func (e *Executor) FetchRows(ctx context.Context, job models.QueryJob) ([]models.ResultRow, error) {
	var rows []models.ResultRow
	var nextToken *string

	for {
		out, err := e.api.GetQueryResults(ctx, &athena.GetQueryResultsInput{
			QueryExecutionId: aws.String(job.ID),
			NextToken:        nextToken,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch results of %s query (%s): %w", job.Label, job.ID, err)
		}

		if out.ResultSet != nil {
			for _, row := range out.ResultSet.Rows {
				converted := make(models.ResultRow, 0, len(row.Data))
				for _, datum := range row.Data {
					converted = append(converted, aws.ToString(datum.VarCharValue))
				}
				rows = append(rows, converted)
			}
		}

		if out.NextToken == nil {
			break
		}
		nextToken = out.NextToken
	}

	return rows, nil
}

// RunAll executes statements strictly in order: each statement is submitted
// only after the previous one succeeded, because later statements depend on
// side effects the engine does not enforce transactionally. On failure the
// remaining statements are never submitted. The returned rows belong to the
// final statement; earlier statements are DDL and produce no data.
func (e *Executor) RunAll(ctx context.Context, stmts []queries.Statement) ([]models.ResultRow, []string, error) {
	queryIDs := make([]string, 0, len(stmts))

	for i, stmt := range stmts {
		job, err := e.Submit(ctx, stmt)
		if err != nil {
			return nil, queryIDs, err
		}
		queryIDs = append(queryIDs, job.ID)

		if err := e.Wait(ctx, &job); err != nil {
			return nil, queryIDs, err
		}

		if i == len(stmts)-1 {
			rows, err := e.FetchRows(ctx, job)
			if err != nil {
				return nil, queryIDs, err
			}
			return rows, queryIDs, nil
		}
	}

	return nil, queryIDs, nil
}

func executionState(out *athena.GetQueryExecutionOutput) (models.QueryStatus, string) {
	if out == nil || out.QueryExecution == nil || out.QueryExecution.Status == nil {
		return models.StatusRunning, ""
	}

	status := out.QueryExecution.Status
	reason := aws.ToString(status.StateChangeReason)

	switch status.State {
	case types.QueryExecutionStateQueued:
		return models.StatusQueued, reason
	case types.QueryExecutionStateRunning:
		return models.StatusRunning, reason
	case types.QueryExecutionStateSucceeded:
		return models.StatusSucceeded, reason
	case types.QueryExecutionStateFailed:
		return models.StatusFailed, reason
	case types.QueryExecutionStateCancelled:
		return models.StatusCancelled, reason
	default:
		return models.StatusRunning, reason
	}
}

func contextOrErr(ctx context.Context, err error) error {
	if ctxErr := contextError(ctx); ctxErr != nil {
		return ctxErr
	}
	return err
}
