package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/qsplit-dev/qsplit/internal/qonto"
)

func newWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Manage the accounts whose income gets split",
	}
	cmd.AddCommand(newWatchListCommand())
	cmd.AddCommand(newWatchAddCommand())
	cmd.AddCommand(newWatchRemoveCommand())
	cmd.AddCommand(newWatchShowCommand())
	return cmd
}

func newWatchListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the watched accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.close()

			watched, err := app.store.Watched.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("loading watched accounts: %w", err)
			}
			if len(watched) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No watched accounts. Add one with `qsplit watch add`.")
				return nil
			}

			rows := make([][]string, 0, len(watched))
			for _, account := range watched {
				rows = append(rows, []string{
					strconv.FormatInt(account.ID, 10),
					account.Name,
					account.ExternalID,
					account.CreatedAt.Format("2006-01-02"),
				})
			}
			renderTable(cmd.OutOrStdout(), []string{"ID", "NAME", "ACCOUNT", "SINCE"}, rows)
			return nil
		},
	}
}

func newWatchAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add",
		Short: "Start watching one of the organization's accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.close()
			return runWatchAdd(cmd.Context(), app)
		},
	}
}

func runWatchAdd(ctx context.Context, app *app) error {
	org, err := app.api.Organization(ctx)
	if err != nil {
		return err
	}

	var options []string
	var candidates []qonto.BankAccount
	for _, account := range org.BankAccounts {
		already, err := app.store.Watched.FindByExternalID(ctx, account.ID)
		if err != nil {
			return fmt.Errorf("checking watched accounts: %w", err)
		}
		if already != nil || account.External {
			continue
		}
		candidates = append(candidates, account)
		options = append(options, fmt.Sprintf("%s (%s)", account.Name, account.IBAN))
	}
	if len(candidates) == 0 {
		return errors.New("every account is already watched")
	}

	idx, err := app.prompter.choose("Which account should be watched?", options)
	if err != nil {
		return err
	}
	picked := candidates[idx]

	created, err := app.store.Watched.Create(ctx, picked.Name, picked.ID)
	if err != nil {
		return fmt.Errorf("saving watched account: %w", err)
	}
	app.logger.Info().Str("account", created.Name).Msg("account watched")
	return nil
}

func newWatchShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show every organization account and whether it is watched",
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
				watched, err := app.store.Watched.FindByExternalID(cmd.Context(), account.ID)
				if err != nil {
					return fmt.Errorf("checking watched accounts: %w", err)
				}
				mark := ""
				if watched != nil {
					mark = "watched"
				}
				rows = append(rows, []string{account.Name, account.IBAN, mark})
			}
			renderTable(cmd.OutOrStdout(), []string{"NAME", "IBAN", "WATCHED"}, rows)
			return nil
		},
	}
}

func newWatchRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Stop watching an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q", args[0])
			}

			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.close()

			if err := app.store.Watched.Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("removing watched account: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Removed.")
			return nil
		},
	}
}
