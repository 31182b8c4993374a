package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/qsplit-dev/qsplit/internal/model"
)

func newSetupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Configure the split interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.close()
			return runSetup(cmd.Context(), app)
		},
	}
	return cmd
}

func runSetup(ctx context.Context, app *app) error {
	existing, err := app.store.Configs.All(ctx)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if len(existing) > 0 {
		overwrite, err := app.prompter.confirm("A configuration already exists, overwrite it?", false)
		if err != nil {
			return err
		}
		if !overwrite {
			return errors.New("setup cancelled")
		}
	}

	org, err := app.api.Organization(ctx)
	if err != nil {
		return err
	}
	if len(org.BankAccounts) == 0 {
		return errors.New("the organization has no bank accounts")
	}

	options := make([]string, 0, len(org.BankAccounts))
	for _, account := range org.BankAccounts {
		options = append(options, fmt.Sprintf("%s (%s)", account.Name, account.IBAN))
	}
	idx, err := app.prompter.choose("Which account should receive the withdrawals?", options)
	if err != nil {
		return err
	}
	target := org.BankAccounts[idx]

	reference, err := app.prompter.ask("Reference to put on each withdrawal", "Split withdrawal")
	if err != nil {
		return err
	}

	percentAnswer, err := app.prompter.ask("Percentage to split (e.g. 20% or 0.2)", "")
	if err != nil {
		return err
	}
	percent, err := parsePercent(percentAnswer)
	if err != nil {
		return err
	}

	vatMode, err := app.prompter.confirm("Treat the percentage as VAT included in the income?", false)
	if err != nil {
		return err
	}
	excludeInternal, err := app.prompter.confirm("Ignore income coming from the organization's own accounts?", true)
	if err != nil {
		return err
	}

	values := map[model.ConfigKey]string{
		model.KeyTargetAccount:           target.ID,
		model.KeyWithdrawalReference:     reference,
		model.KeySplitAmount:             percent.String(),
		model.KeyVATMode:                 strconv.FormatBool(vatMode),
		model.KeyExcludeInternalAccounts: strconv.FormatBool(excludeInternal),
	}
	for key, value := range values {
		if err := app.store.Configs.Set(ctx, key, value); err != nil {
			return fmt.Errorf("saving %s: %w", key, err)
		}
	}

	app.logger.Info().Str("target", target.Name).Msg("setup complete")
	return nil
}

// parsePercent accepts "20%", "20" or "0.2" and rejects values that cannot be
// a share of income.
func parsePercent(s string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	percent, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid percentage %q: %w", s, err)
	}
	if !percent.IsPositive() {
		return decimal.Zero, fmt.Errorf("percentage must be positive, got %q", s)
	}
	if percent.GreaterThan(hundred) {
		return decimal.Zero, fmt.Errorf("percentage must be at most 100, got %q", s)
	}
	return percent, nil
}
