package main

import (
	"fmt"

	"github.com/blues/memberadmin/internal/database"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations and seed data",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, report, err := database.Init(cfg.Database, seedOptions())
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}

			out := cmd.OutOrStdout()
			for _, step := range report.Steps {
				line := fmt.Sprintf("%4d  %-8s %s", step.Version, step.Status, step.Description)
				if step.Error != "" {
					line += "  (" + step.Error + ")"
				}
				fmt.Fprintln(out, line)
			}
			fmt.Fprintf(out, "applied %d, failed %d\n", report.Applied(), len(report.Failed()))

			if failed := report.Failed(); len(failed) > 0 {
				return fmt.Errorf("%d migrations failed", len(failed))
			}
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show recorded migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := database.Open(cfg.Database)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
			rows, err := database.Status(db)
			if err != nil {
				return err
			}
			for _, r := range rows {
				fmt.Fprintf(cmd.OutOrStdout(), "%4d  %-8s %s\n", r.Version, r.Status, r.Description)
			}
			return nil
		},
	})
	return cmd
}
