package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qsplit-dev/qsplit/internal/split"
)

func newSplitCommand() *cobra.Command {
	var interval string
	var dryRun bool
	var auto bool

	cmd := &cobra.Command{
		Use:   "split",
		Short: "Withdraw a share of the period's income to the target account",
		Long: `Fetches the income transactions of every watched account over the
current interval, computes the configured split for each, and withdraws the
per-account totals to the target account. Runs in dry-run mode unless
--dry-run=false is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.close()

			unit := split.Unit(interval)
			pipeline := split.NewPipeline(split.Deps{
				API:        app.api,
				Configs:    app.store.Configs,
				Exclusions: app.store.Exclusions,
				Watched:    app.store.Watched,
				Processed:  app.store.Processed,
				Present: func(plan *split.Plan) {
					renderPlan(cmd.OutOrStdout(), plan)
				},
				Confirm: func() (bool, error) {
					return app.prompter.confirm("Execute these withdrawals?", false)
				},
				Logger: app.logger,
			})

			result, err := pipeline.Run(cmd.Context(), split.Options{
				Unit:        unit,
				DryRun:      dryRun,
				AutoApprove: auto,
			})
			switch {
			case errors.Is(err, split.ErrSetupRequired):
				return fmt.Errorf("%w (run `qsplit setup` first)", err)
			case errors.Is(err, split.ErrAborted):
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted, nothing transferred.")
				return nil
			case err != nil:
				return err
			}

			if result.DryRun && len(result.Withdrawals) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Dry run, no transfers executed. Re-run with --dry-run=false to apply.")
				return nil
			}
			for _, w := range result.Withdrawals {
				fmt.Fprintf(cmd.OutOrStdout(), "Withdrew %s EUR from %s\n", w.Amount.StringFixed(2), w.AccountName)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&interval, "interval", "i", string(split.UnitWeek), "period to process: day, week, month or year")
	cmd.Flags().BoolVar(&dryRun, "dry-run", true, "preview the withdrawals without executing them")
	cmd.Flags().BoolVar(&auto, "auto", false, "skip the confirmation prompt (for cron)")

	return cmd
}
