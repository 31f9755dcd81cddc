package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Siellph/DimaTech-Ltd-test/config"
	"github.com/Siellph/DimaTech-Ltd-test/internal/signature"
)

func signCmd() *cobra.Command {
	var (
		p      signature.Payload
		secret string
	)

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Print the webhook signature for a payment",
		Long: `Print the signature the payment provider would attach to a webhook.

The secret is taken from --secret, otherwise from SECRET_KEY in the
environment or the .env file.

Examples:
  billing sign --account-id 1 --amount 100.00 --transaction-id tx-1 --user-id 1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				cfg, err := config.Load()
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				secret = cfg.SecretKey
			}
			if secret == "" {
				return errors.New("secret is required: pass --secret or set SECRET_KEY")
			}
			fmt.Fprintln(cmd.OutOrStdout(), signature.NewVerifier(secret).Sign(p))
			return nil
		},
	}

	cmd.Flags().StringVar(&p.AccountID, "account-id", "", "account id as sent on the wire")
	cmd.Flags().StringVar(&p.Amount, "amount", "", "amount as sent on the wire, e.g. 100.00")
	cmd.Flags().StringVar(&p.TransactionID, "transaction-id", "", "provider transaction id")
	cmd.Flags().StringVar(&p.UserID, "user-id", "", "user id as sent on the wire")
	cmd.Flags().StringVar(&secret, "secret", "", "shared webhook secret (default SECRET_KEY from env or .env)")
	for _, name := range []string{"account-id", "amount", "transaction-id", "user-id"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}
