package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qsplit-dev/qsplit/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "qsplit",
		Short:   "Automatic income splitting for Qonto accounts",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newSplitCommand())
	rootCmd.AddCommand(newSetupCommand())
	rootCmd.AddCommand(newWatchCommand())
	rootCmd.AddCommand(newExcludeCommand())
	rootCmd.AddCommand(newAccountsCommand())
	rootCmd.AddCommand(newMigrateCommand())

	return rootCmd
}
