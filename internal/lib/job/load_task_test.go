package job

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/deppfellow/orgdir/internal/model"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	opts   model.LoadOptions
	report *model.LoadReport
	err    error
}

func (f *fakeRunner) Run(_ context.Context, opts model.LoadOptions) (*model.LoadReport, error) {
	f.opts = opts
	return f.report, f.err
}

type fakeReporter struct {
	to      string
	report  *model.LoadReport
	loadErr error
	calls   int
}

func (f *fakeReporter) SendLoadReport(to string, report *model.LoadReport, loadErr error) error {
	f.calls++
	f.to, f.report, f.loadErr = to, report, loadErr
	return nil
}

type stageFailure struct {
	retry bool
}

func (e *stageFailure) Error() string   { return "load failed" }
func (e *stageFailure) Retryable() bool { return e.retry }

func newTestJobService() *JobService {
	logger := zerolog.Nop()
	return &JobService{logger: &logger}
}

func loadTask(t *testing.T, p LoadPayload) *asynq.Task {
	t.Helper()

	task, err := NewLoadTask(p)
	require.NoError(t, err)
	return task
}

func TestNewLoadTask(t *testing.T) {
	requestedAt := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	task := loadTask(t, LoadPayload{Replace: true, RequestedBy: "user_123", RequestedAt: requestedAt})

	require.Equal(t, TaskLoad, task.Type())

	var p LoadPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &p))
	require.True(t, p.Replace)
	require.Equal(t, "user_123", p.RequestedBy)
	require.True(t, requestedAt.Equal(p.RequestedAt))
}

func TestHandleLoadTaskSuccess(t *testing.T) {
	j := newTestJobService()
	runner := &fakeRunner{report: &model.LoadReport{Departments: 3, People: 10}}
	reporter := &fakeReporter{}
	j.InitHandlers(runner, reporter, "ops@example.com")

	err := j.handleLoadTask(context.Background(), loadTask(t, LoadPayload{Replace: true}))
	require.NoError(t, err)

	require.True(t, runner.opts.Replace)
	require.Equal(t, 1, reporter.calls)
	require.Equal(t, "ops@example.com", reporter.to)
	require.Equal(t, 10, reporter.report.People)
	require.NoError(t, reporter.loadErr)
}

func TestHandleLoadTaskRetryableFailure(t *testing.T) {
	j := newTestJobService()
	loadErr := &stageFailure{retry: true}
	reporter := &fakeReporter{}
	j.InitHandlers(&fakeRunner{err: loadErr}, reporter, "ops@example.com")

	err := j.handleLoadTask(context.Background(), loadTask(t, LoadPayload{}))
	require.ErrorIs(t, err, loadErr)
	require.False(t, errors.Is(err, asynq.SkipRetry))
	require.Equal(t, loadErr, reporter.loadErr)
}

func TestHandleLoadTaskPermanentFailureSkipsRetry(t *testing.T) {
	j := newTestJobService()
	j.InitHandlers(&fakeRunner{err: &stageFailure{retry: false}}, nil, "")

	err := j.handleLoadTask(context.Background(), loadTask(t, LoadPayload{}))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleLoadTaskWithoutRecipientSendsNothing(t *testing.T) {
	j := newTestJobService()
	reporter := &fakeReporter{}
	j.InitHandlers(&fakeRunner{report: &model.LoadReport{}}, reporter, "")

	require.NoError(t, j.handleLoadTask(context.Background(), loadTask(t, LoadPayload{})))
	require.Zero(t, reporter.calls)
}

func TestHandleLoadTaskBadPayload(t *testing.T) {
	j := newTestJobService()
	j.InitHandlers(&fakeRunner{}, nil, "")

	err := j.handleLoadTask(context.Background(), asynq.NewTask(TaskLoad, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleLoadTaskNotInitialized(t *testing.T) {
	j := newTestJobService()

	err := j.handleLoadTask(context.Background(), loadTask(t, LoadPayload{}))
	require.ErrorContains(t, err, "not initialized")
}
