package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/qsplit-dev/qsplit/internal/secret"
)

func newExcludeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exclude",
		Short: "Manage counterparty accounts whose income is never split",
	}
	cmd.AddCommand(newExcludeListCommand())
	cmd.AddCommand(newExcludeAddCommand())
	cmd.AddCommand(newExcludeRemoveCommand())
	return cmd
}

func newExcludeListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the exclusions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.close()

			exclusions, err := app.store.Exclusions.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("loading exclusions: %w", err)
			}
			if len(exclusions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No exclusions.")
				return nil
			}

			rows := make([][]string, 0, len(exclusions))
			for _, exclusion := range exclusions {
				rows = append(rows, []string{
					strconv.FormatInt(exclusion.ID, 10),
					exclusion.Name,
					exclusion.CreatedAt.Format("2006-01-02"),
				})
			}
			renderTable(cmd.OutOrStdout(), []string{"ID", "NAME", "SINCE"}, rows)
			return nil
		},
	}
}

func newExcludeAddCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "add <iban>",
		Short: "Exclude income coming from an account",
		Long: `Excludes every income transaction whose counterparty matches the given
IBAN. Only a hash of the IBAN is stored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.close()
			return runExcludeAdd(cmd.Context(), app, args[0], name)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "label for this exclusion (defaults to the masked IBAN)")
	return cmd
}

func runExcludeAdd(ctx context.Context, app *app, rawIBAN, name string) error {
	iban, err := normalizeIBAN(rawIBAN)
	if err != nil {
		return err
	}

	existing, err := app.store.Exclusions.List(ctx)
	if err != nil {
		return fmt.Errorf("loading exclusions: %w", err)
	}
	for _, exclusion := range existing {
		if secret.VerifyIdentifier(exclusion.IBANHash, iban) {
			return fmt.Errorf("already excluded as %q", exclusion.Name)
		}
	}

	if name == "" {
		name = fmt.Sprintf("Account (**** %s)", iban[len(iban)-4:])
	}
	hash, err := secret.HashIdentifier(iban)
	if err != nil {
		return fmt.Errorf("hashing identifier: %w", err)
	}

	created, err := app.store.Exclusions.Create(ctx, name, hash)
	if err != nil {
		return fmt.Errorf("saving exclusion: %w", err)
	}
	app.logger.Info().Str("name", created.Name).Msg("exclusion added")
	return nil
}

func newExcludeRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove an exclusion",
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

			if err := app.store.Exclusions.Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("removing exclusion: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Removed.")
			return nil
		},
	}
}

// normalizeIBAN strips spaces, uppercases and validates the shape and mod-97
// checksum of an IBAN.
func normalizeIBAN(raw string) (string, error) {
	iban := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), " ", ""))
	if err := validator.New().Var(iban, "required,alphanum,min=15,max=34"); err != nil {
		return "", fmt.Errorf("invalid IBAN %q", raw)
	}
	if !validChecksum(iban) {
		return "", errors.New("IBAN checksum does not match")
	}
	return iban, nil
}

// validChecksum runs the ISO 13616 mod-97 check: move the first four
// characters to the end, expand letters to numbers (A=10 .. Z=35), and the
// resulting number must be 1 modulo 97.
func validChecksum(iban string) bool {
	rearranged := iban[4:] + iban[:4]
	remainder := 0
	for _, r := range rearranged {
		switch {
		case r >= '0' && r <= '9':
			remainder = (remainder*10 + int(r-'0')) % 97
		case r >= 'A' && r <= 'Z':
			v := int(r-'A') + 10
			remainder = (remainder*100 + v) % 97
		default:
			return false
		}
	}
	return remainder == 1
}
