package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAccountsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List the organization's bank accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.close()

			org, err := app.api.Organization(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(org.BankAccounts))
			for _, account := range org.BankAccounts {
				kind := "internal"
				if account.External {
					kind = "external"
				}
				rows = append(rows, []string{account.Name, account.IBAN, account.Status, kind, account.ID})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n", org.Name)
			renderTable(cmd.OutOrStdout(), []string{"NAME", "IBAN", "STATUS", "TYPE", "ID"}, rows)
			return nil
		},
	}
}
