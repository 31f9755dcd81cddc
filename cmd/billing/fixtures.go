package main

import (
	"github.com/spf13/cobra"

	"github.com/Siellph/DimaTech-Ltd-test/internal/fixtures"
)

func loadFixturesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load-fixtures FILE...",
		Short: "Insert seed rows from JSON or YAML files",
		Long: `Insert seed rows from JSON or YAML files.

The file name without extension selects the table, so user.json fills "user",
account.yaml fills "account" and transaction.json fills "transaction". Files
are loaded in the given order, each in its own database transaction.

Examples:
  billing load-fixtures fixtures/user.json fixtures/account.json fixtures/transaction.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer closeDB(db)
			return fixtures.LoadFiles(cmd.Context(), db, args...)
		},
	}
}
