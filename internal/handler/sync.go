package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/deppfellow/orgdir/internal/errs"
	"github.com/deppfellow/orgdir/internal/lib/job"
	"github.com/deppfellow/orgdir/internal/middleware"
	"github.com/deppfellow/orgdir/internal/server"
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
)

// LoadEnqueuer is satisfied by job.JobService.
type LoadEnqueuer interface {
	EnqueueLoad(ctx context.Context, p job.LoadPayload) (*asynq.TaskInfo, error)
}

type SyncHandler struct {
	Handler
	jobs LoadEnqueuer
}

func NewSyncHandler(s *server.Server, jobs LoadEnqueuer) *SyncHandler {
	return &SyncHandler{
		Handler: NewHandler(s),
		jobs:    jobs,
	}
}

// Sync queues a background load and answers 202 with the task id.
func (h *SyncHandler) Sync() echo.HandlerFunc {
	return Handle(h.Handler, h.sync, http.StatusAccepted, func() *SyncRequest { return &SyncRequest{} })
}

func (h *SyncHandler) sync(c echo.Context, req *SyncRequest) (SyncResponse, error) {
	info, err := h.jobs.EnqueueLoad(c.Request().Context(), job.LoadPayload{
		Replace:     req.Replace,
		RequestedBy: middleware.GetUserID(c),
		RequestedAt: time.Now().UTC(),
	})
	if errors.Is(err, asynq.ErrDuplicateTask) {
		return SyncResponse{}, errs.NewConflictError("A directory load is already queued")
	}
	if err != nil {
		middleware.GetLogger(c).Error().Err(err).Msg("failed to enqueue load task")
		return SyncResponse{}, errs.NewServiceUnavailableError("Could not queue the directory load")
	}

	return SyncResponse{TaskID: info.ID, Queue: info.Queue}, nil
}
