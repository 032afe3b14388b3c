package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/deppfellow/orgdir/internal/model"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

const TaskLoad = "orgdir:load"

// loadUniqueTTL keeps a second sync from being queued while one is pending.
const loadUniqueTTL = 10 * time.Minute

type LoadPayload struct {
	Replace     bool      `json:"replace"`
	RequestedBy string    `json:"requested_by,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

func NewLoadTask(p LoadPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskLoad,
		payload,
		asynq.MaxRetry(3),
		asynq.Queue(QueueCritical),
		asynq.Timeout(5*time.Minute),
		asynq.Unique(loadUniqueTTL),
	), nil
}

// EnqueueLoad queues a load. A load that is already pending yields
// asynq.ErrDuplicateTask.
func (j *JobService) EnqueueLoad(ctx context.Context, p LoadPayload) (*asynq.TaskInfo, error) {
	task, err := NewLoadTask(p)
	if err != nil {
		return nil, fmt.Errorf("build load task: %w", err)
	}
	return j.Client.EnqueueContext(ctx, task)
}

// LoadRunner is satisfied by service.LoaderService.
type LoadRunner interface {
	Run(ctx context.Context, opts model.LoadOptions) (*model.LoadReport, error)
}

// ReportSender is satisfied by email.Client.
type ReportSender interface {
	SendLoadReport(to string, report *model.LoadReport, loadErr error) error
}

type retryable interface {
	Retryable() bool
}

type loadHandler struct {
	runner    LoadRunner
	reporter  ReportSender
	recipient string
}

// InitHandlers sets what the load task runs. reporter may be nil, in which
// case no report is sent.
func (j *JobService) InitHandlers(runner LoadRunner, reporter ReportSender, recipient string) {
	j.handlers = &loadHandler{
		runner:    runner,
		reporter:  reporter,
		recipient: recipient,
	}
}

func (j *JobService) handleLoadTask(ctx context.Context, t *asynq.Task) error {
	var p LoadPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal load payload: %w: %w", err, asynq.SkipRetry)
	}
	if j.handlers == nil {
		return errors.New("load task handlers not initialized")
	}

	log := j.logger.With().
		Str("type", TaskLoad).
		Bool("replace", p.Replace).
		Str("requested_by", p.RequestedBy).
		Logger()
	log.Info().Msg("processing load task")

	report, err := j.handlers.runner.Run(ctx, model.LoadOptions{Replace: p.Replace})
	j.report(&log, report, err)

	if err != nil {
		log.Error().Err(err).Msg("load task failed")
		var r retryable
		if errors.As(err, &r) && !r.Retryable() {
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}
		return err
	}

	log.Info().
		Int("departments", report.Departments).
		Int("people", report.People).
		Msg("load task finished")
	return nil
}

func (j *JobService) report(log *zerolog.Logger, report *model.LoadReport, loadErr error) {
	if j.handlers.reporter == nil || j.handlers.recipient == "" {
		return
	}
	if err := j.handlers.reporter.SendLoadReport(j.handlers.recipient, report, loadErr); err != nil {
		log.Warn().Err(err).Str("to", j.handlers.recipient).Msg("failed to send load report")
	}
}
