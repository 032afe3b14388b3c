package main

import (
	"github.com/deppfellow/orgdir/internal/database"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the departments and people tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newCLIEnv()
			if err != nil {
				return err
			}
			defer env.close()

			if err := database.Migrate(cmd.Context(), &env.logger, env.cfg); err != nil {
				return withCode(exitDB, err)
			}
			return nil
		},
	}
}
