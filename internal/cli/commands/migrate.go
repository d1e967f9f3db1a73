package commands

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/approuter/internal/store"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate [up|status]",
		Short: "Apply or inspect app store migrations",
		Long: `Apply pending migrations to the app store (the default), or print the
state of every known migration.`,
		Example: `  # Apply pending migrations
  approuter migrate

  # Show which migrations are applied
  approuter migrate status`,
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			if len(args) == 1 && args[0] == "status" {
				statuses, err := s.MigrationStatus(ctx)
				if err != nil {
					return err
				}
				renderMigrations(cmd.OutOrStdout(), statuses)
				return nil
			}

			if err := s.Migrate(ctx); err != nil {
				return err
			}
			version, err := s.MigrationVersion(ctx)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "App store at version %d\n", version)
			return nil
		},
	}
	return cmd
}

func renderMigrations(w io.Writer, statuses []store.MigrationStatus) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Version", "Source", "Applied"})
	for _, st := range statuses {
		t.AppendRow(table.Row{st.Version, st.Source, st.Applied})
	}
	t.Render()
}
