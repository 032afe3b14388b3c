package main

import (
	"io"
	"os"

	"github.com/deppfellow/orgdir/internal/database"
	"github.com/deppfellow/orgdir/internal/lib/utils"
	"github.com/deppfellow/orgdir/internal/model"
	"github.com/deppfellow/orgdir/internal/repository"
	"github.com/deppfellow/orgdir/internal/service"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newSearchCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "search [term]",
		Short: "Find people whose name contains term, ignoring case",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var term string
			if len(args) == 1 {
				term = args[0]
			}

			env, err := newCLIEnv()
			if err != nil {
				return err
			}
			defer env.close()

			db, err := database.New(cmd.Context(), env.cfg, &env.logger, env.loggerService)
			if err != nil {
				return withCode(exitDB, err)
			}
			defer db.Close()

			directory := service.NewDirectoryService(repository.NewPersonRepository(db.Pool), nil, &env.logger)
			results, err := directory.Search(cmd.Context(), term)
			if err != nil {
				return withCode(exitDB, err)
			}

			return printSearchResults(os.Stdout, results, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the same JSON body as the HTTP API")
	return cmd
}

func printSearchResults(w io.Writer, results []model.PersonRecord, asJSON bool) error {
	if asJSON {
		return utils.WriteJSON(w, map[string]any{"results": results})
	}

	if len(results) == 0 {
		color.New(color.FgYellow).Fprintln(w, "No people found")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Name", "Department", "Avatar"})
	for _, r := range results {
		avatar := ""
		if r.Avatar.URL != nil {
			avatar = *r.Avatar.URL
		}
		table.Append([]string{r.ID, r.Name, r.Department.Name + " (" + r.Department.ID + ")", avatar})
	}
	table.Render()
	return nil
}
