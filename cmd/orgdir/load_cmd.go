package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/deppfellow/orgdir/internal/database"
	"github.com/deppfellow/orgdir/internal/lib/cache"
	"github.com/deppfellow/orgdir/internal/lib/contentapi"
	"github.com/deppfellow/orgdir/internal/model"
	"github.com/deppfellow/orgdir/internal/repository"
	"github.com/deppfellow/orgdir/internal/service"
	"github.com/fatih/color"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

func newLoadCmd() *cobra.Command {
	var opts model.LoadOptions

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Copy departments and people from the content API into the database",
		Long: "Fetches the first page of departments and people and writes them in two\n" +
			"transactions. Rows are appended unless --replace is given, so a second\n" +
			"append run against the same data fails on duplicate ids.",
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

			db, err := database.New(ctx, env.cfg, &env.logger, env.loggerService)
			if err != nil {
				return withCode(exitDB, err)
			}
			defer db.Close()

			var invalidator service.CacheInvalidator
			if env.cfg.Redis.Enabled() {
				client := redis.NewClient(&redis.Options{Addr: env.cfg.Redis.Address})
				defer client.Close()
				invalidator = cache.NewSearchCache(client, env.cfg.Cache.SearchTTL)
			}

			repos := repository.NewRepositories(db.Pool)
			loader := service.NewLoaderService(
				fetcher,
				db,
				repos.Departments,
				repos.People,
				invalidator,
				env.cfg.Loader.DepartmentMatch,
				&env.logger,
			)

			report, err := loader.Run(ctx, opts)
			if err != nil {
				printLoadFailure(os.Stderr, err)
				return withCode(loadExitCode(err), err)
			}

			printLoadReport(os.Stdout, report)
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.Replace, "replace", false, "Delete existing departments and people before loading")
	return cmd
}

func printLoadReport(w io.Writer, report *model.LoadReport) {
	color.New(color.FgGreen, color.Bold).Fprintln(w, "Load finished")
	fmt.Fprintf(w, "  departments: %d\n", report.Departments)
	fmt.Fprintf(w, "  people:      %d\n", report.People)
	fmt.Fprintf(w, "  roots:       %s\n", strings.Join(report.RootDepartments, ", "))
	if report.Replaced {
		fmt.Fprintln(w, "  mode:        replace")
	} else {
		fmt.Fprintln(w, "  mode:        append")
	}
	fmt.Fprintf(w, "  duration:    %s\n", report.Duration.Round(time.Millisecond))

	if len(report.DuplicateDepartmentNames) > 0 {
		color.New(color.FgYellow).Fprintf(w,
			"  warning: department names used more than once, people may attach to either: %s\n",
			strings.Join(report.DuplicateDepartmentNames, ", "))
	}
}

func printLoadFailure(w io.Writer, err error) {
	var loadErr *service.LoadError
	if errors.As(err, &loadErr) {
		color.New(color.FgRed, color.Bold).Fprintf(w, "Load failed at the %s stage\n", loadErr.Stage)
		if loadErr.Stage == service.StagePeople {
			fmt.Fprintln(w, "  departments from this run were already committed")
		}
		return
	}
	color.New(color.FgRed, color.Bold).Fprintln(w, "Load failed")
}
