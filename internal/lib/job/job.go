// Package job runs directory loads in the background with asynq.
//
// The HTTP sync endpoint enqueues a load task; the worker started next to the
// HTTP server picks it up, runs the loader, and mails a report when
// reporting is configured.
package job

import (
	"github.com/deppfellow/orgdir/internal/config"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

type JobService struct {
	Client *asynq.Client

	server   *asynq.Server
	logger   *zerolog.Logger
	handlers *loadHandler
}

func NewJobService(logger *zerolog.Logger, cfg *config.Config) *JobService {
	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Address}

	server := asynq.NewServer(redisOpt, asynq.Config{
		// loads write whole tables, running two at once only produces PK violations
		Concurrency: 1,
		Queues: map[string]int{
			QueueCritical: 6,
			QueueDefault:  3,
			QueueLow:      1,
		},
		Logger:   newAsynqLogger(logger),
		LogLevel: asynq.WarnLevel,
	})

	return &JobService{
		Client: asynq.NewClient(redisOpt),
		server: server,
		logger: logger,
	}
}

// Start registers the task handlers and starts the worker. InitHandlers must
// have been called first.
func (j *JobService) Start() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskLoad, j.handleLoadTask)

	j.logger.Info().Msg("starting background job server")
	return j.server.Start(mux)
}

func (j *JobService) Stop() {
	j.logger.Info().Msg("stopping background job server")
	j.server.Shutdown()
	if err := j.Client.Close(); err != nil {
		j.logger.Warn().Err(err).Msg("failed to close job client")
	}
}
