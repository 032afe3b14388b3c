package main

import (
	"context"
	"errors"
	"time"

	"github.com/deppfellow/orgdir/internal/handler"
	"github.com/deppfellow/orgdir/internal/lib/contentapi"
	"github.com/deppfellow/orgdir/internal/lib/email"
	"github.com/deppfellow/orgdir/internal/lib/job"
	"github.com/deppfellow/orgdir/internal/repository"
	"github.com/deppfellow/orgdir/internal/router"
	"github.com/deppfellow/orgdir/internal/server"
	"github.com/deppfellow/orgdir/internal/service"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the search API and the background load worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newCLIEnv()
			if err != nil {
				return err
			}
			defer env.close()

			ctx := cmd.Context()

			fetcher, err := contentapi.NewClient(env.cfg.ContentAPI, &env.logger)
			if err != nil {
				return withCode(exitConfig, err)
			}

			srv, err := server.New(ctx, env.cfg, &env.logger, env.loggerService)
			if err != nil {
				return withCode(exitDB, err)
			}

			repos := repository.NewRepositories(srv.DB.Pool)
			services := service.NewServices(srv, repos, fetcher)

			if srv.Job != nil {
				var reporter job.ReportSender
				if env.cfg.Integration.ReportsEnabled() {
					reporter = email.NewClient(env.cfg, &env.logger)
				}
				srv.Job.InitHandlers(services.Loader, reporter, env.cfg.Integration.ReportRecipient)
				if err := srv.Job.Start(); err != nil {
					_ = srv.Shutdown(context.Background())
					return err
				}
			}

			srv.SetupHTTPServer(router.NewRouter(srv, handler.NewHandlers(srv, services), services))

			serveErr := make(chan error, 1)
			go func() {
				serveErr <- srv.Start()
			}()

			select {
			case err = <-serveErr:
			case <-ctx.Done():
				env.logger.Info().Msg("shutdown signal received")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			return errors.Join(err, srv.Shutdown(shutdownCtx))
		},
	}
}
