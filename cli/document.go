package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"manjaword/config"
	"manjaword/pkg/dialog"
)

func newOpenCommand(cfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "open <document>",
		Short: "Print the content of a saved document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(cfg(), dialog.Static{})
			if err != nil {
				return err
			}
			defer app.Close()

			doc, err := app.Documents.OpenPath(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), doc.Content)
		},
	}
}

func newSaveCommand(cfg func() *config.Config) *cobra.Command {
	var contentFile, text string

	cmd := &cobra.Command{
		Use:   "save <destination>",
		Short: "Save a delta payload as a document",
		Long: `Wraps a delta payload and writes it to destination, appending .manjaword.json
when missing. The payload is read from --content, from --text (one plain
paragraph), or from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readContent(cmd.InOrStdin(), contentFile, text)
			if err != nil {
				return err
			}

			app, err := NewApp(cfg(), dialog.Static{})
			if err != nil {
				return err
			}
			defer app.Close()

			path, err := app.Documents.SavePath(args[0], content)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&contentFile, "content", "", "JSON file holding the delta payload")
	cmd.Flags().StringVar(&text, "text", "", "plain text to save as a single paragraph")
	return cmd
}

func newRecoverCommand(cfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "recover",
		Short: "Print the autosaved document, if any",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(cfg(), dialog.Static{})
			if err != nil {
				return err
			}
			defer app.Close()

			env, err := app.Autosave.Recover()
			if err != nil {
				return err
			}
			if env == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No autosaved document found.")
				return nil
			}
			return printJSON(cmd.OutOrStdout(), env)
		},
	}
}

func newRecentCommand(cfg func() *config.Config) *cobra.Command {
	var limit int
	var forget string

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recently used documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(cfg(), dialog.Static{})
			if err != nil {
				return err
			}
			defer app.Close()

			if forget != "" {
				if err := app.Recent.Remove(forget); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Forgot %s\n", forget)
				return nil
			}

			docs, err := app.Recent.List(limit)
			if err != nil {
				return err
			}
			if len(docs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No recent documents.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "USED\tKIND\tPATH")
			for _, d := range docs {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", d.UsedAt.Local().Format(time.DateTime), d.Kind, d.Path)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum number of documents to list")
	cmd.Flags().StringVar(&forget, "forget", "", "remove a path from the list instead of listing")
	return cmd
}

func readContent(stdin io.Reader, contentFile, text string) (any, error) {
	if text != "" {
		return map[string]any{"ops": []any{map[string]any{"insert": text + "\n"}}}, nil
	}

	var raw []byte
	var err error
	if contentFile != "" {
		raw, err = os.ReadFile(contentFile)
	} else {
		raw, err = io.ReadAll(stdin)
	}
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}

	var content any
	if err := json.Unmarshal(raw, &content); err != nil {
		return nil, fmt.Errorf("content is not valid JSON: %w", err)
	}
	return content, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
