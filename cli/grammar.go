package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"manjaword/config"
	"manjaword/pkg/dialog"
)

func newGrammarCommand(cfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "grammar [text]",
		Short: "Check text with the grammar service",
		Long:  `Sends text (or stdin when no argument is given) to the configured grammar service.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := ""
			if len(args) == 1 {
				text = args[0]
			} else {
				raw, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				text = string(raw)
			}

			app, err := NewApp(cfg(), dialog.Static{})
			if err != nil {
				return err
			}
			defer app.Close()

			resp, err := app.Grammar.Check(cmd.Context(), text)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(resp.Matches) == 0 {
				fmt.Fprintln(out, "No issues found.")
				return nil
			}
			for _, m := range resp.Matches {
				fmt.Fprintf(out, "%d:%d %s", m.Offset, m.Length, m.Message)
				if len(m.Replacements) > 0 {
					fmt.Fprintf(out, " (suggestions: %s)", strings.Join(m.Replacements, ", "))
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}
