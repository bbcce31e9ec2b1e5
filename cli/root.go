// Package cli is the command-line entry point: the backend server for the
// editor shell and headless versions of its document operations.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"manjaword/config"
	"manjaword/pkg/logger"
)

// NewRootCommand builds the command tree. Running it without a
// sub-command starts the server.
func NewRootCommand() *cobra.Command {
	var cfg *config.Config

	root := &cobra.Command{
		Use:           "manjaword",
		Short:         "ManjaWord document backend",
		Long:          `Document persistence, autosave, export and grammar checking for the ManjaWord editor.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg = config.Load()
			logger.Init(cfg.Logging.Level)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}
	current := func() *config.Config { return cfg }

	serve := newServeCommand(current)
	root.RunE = serve.RunE
	root.AddCommand(
		serve,
		newOpenCommand(current),
		newSaveCommand(current),
		newRecoverCommand(current),
		newRecentCommand(current),
		newExportCommand(current),
		newGrammarCommand(current),
		newTokenCommand(current),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		root.PrintErrln("Error:", err)
		os.Exit(1)
	}
}
