package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/program-scheduler/internal/persistence/sqlite"
)

func newMigrateCmd(a *app) *cobra.Command {
	var showStatus bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := sqlite.Open(a.cfg.SQLiteDSN, a.logger)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer store.Close()

			applied, err := store.Migrate(cmd.Context())
			if err != nil {
				return fmt.Errorf("migrate database: %w", err)
			}
			status, err := store.MigrationStatus(cmd.Context())
			if err != nil {
				return fmt.Errorf("migration status: %w", err)
			}

			if applied == 0 {
				a.ui.Info("schema up to date at version %s", status.CurrentVersion)
			} else {
				a.ui.Success("applied %d migration(s), schema at version %s", applied, status.CurrentVersion)
			}
			if !showStatus {
				return nil
			}

			table := a.ui.Table([]string{"Version", "Applied At", "Duration"})
			for _, m := range status.Applied {
				_ = table.Append([]string{m.Version, a.displayTime(m.AppliedAt), m.ExecutionTime.String()})
			}
			return table.Render()
		},
	}
	cmd.Flags().BoolVar(&showStatus, "status", false, "list applied migrations")
	return cmd
}
