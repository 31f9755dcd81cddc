package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Siellph/DimaTech-Ltd-test/internal/ledger"
)

// errDrift makes the process exit non-zero when balances disagree.
var errDrift = errors.New("balance drift detected")

func reconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Compare account balances with the sum of their transactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer closeDB(db)

			drifts, err := ledger.NewStore(db).Reconcile(cmd.Context())
			if err != nil {
				return err
			}
			return printDrifts(cmd, drifts)
		},
	}
}

func printDrifts(cmd *cobra.Command, drifts []ledger.Drift) error {
	out := cmd.OutOrStdout()
	if len(drifts) == 0 {
		fmt.Fprintln(out, "All balances match the ledger.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ACCOUNT\tUSER\tBALANCE\tLEDGER\tDIFF")
	for _, d := range drifts {
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n",
			d.AccountID, d.UserID,
			d.Balance.StringFixed(2), d.Ledger.StringFixed(2), d.Balance.Sub(d.Ledger).StringFixed(2))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return fmt.Errorf("%w in %d account(s)", errDrift, len(drifts))
}
