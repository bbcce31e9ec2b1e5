package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"manjaword/config"
	"manjaword/internal/document/model"
	exportService "manjaword/internal/export/service"
	"manjaword/pkg/dialog"
)

func newExportCommand(cfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "export <docx|pdf> <document> [destination]",
		Short: "Export a saved document",
		Long: `Exports a saved document as DOCX or PDF. Without a destination the
document name is reused with the format extension.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, ok := exportService.FormatByName(args[0])
			if !ok {
				return fmt.Errorf("unsupported export format %q", args[0])
			}

			app, err := NewApp(cfg(), dialog.Static{})
			if err != nil {
				return err
			}
			defer app.Close()

			doc, err := app.Documents.OpenPath(args[1])
			if err != nil {
				return err
			}

			dest := strings.TrimSuffix(doc.Path, model.Extension) + format.Extension
			if len(args) == 3 {
				dest = args[2]
			}

			path, err := app.Export.ExportTo(dest, format, doc.Content)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}
