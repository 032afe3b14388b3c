package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/deppfellow/orgdir/internal/config"
	"github.com/deppfellow/orgdir/internal/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "orgdir",
		Short:         "Organization directory loader and search API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newLoadCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newMigrateCmd())
	return cmd
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		code := exitCode(err)
		fmt.Fprintln(os.Stderr, err.Error())
		stop()
		os.Exit(code)
	}
}

// cliEnv is what every command needs before it touches a dependency.
type cliEnv struct {
	cfg           *config.Config
	logger        zerolog.Logger
	loggerService *logger.LoggerService
}

func newCLIEnv() (*cliEnv, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, withCode(exitConfig, err)
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	return &cliEnv{
		cfg:           cfg,
		logger:        logger.NewLoggerWithService(cfg.Observability, loggerService),
		loggerService: loggerService,
	}, nil
}

func (e *cliEnv) close() {
	e.loggerService.Shutdown()
}
