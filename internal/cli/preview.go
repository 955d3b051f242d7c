package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ppiankov/wikisift/internal/model"
	"github.com/ppiankov/wikisift/internal/output"
)

var (
	previewOut    string
	previewTitle  string
	previewSQLite string
)

// previewCmd represents the preview command
var previewCmd = &cobra.Command{
	Use:   "preview [items.json]",
	Short: "Render accepted items as a static HTML page",
	Long: `Preview renders accepted items as cards (image, label, description,
year and date property) so a run's output can be reviewed in a browser.

Items are read from a JSON lines file (default: output.path) or, with
--sqlite, from a database written by "wikisift sift --sqlite".

Example:
  wikisift preview items.json --out preview.html
  wikisift preview --sqlite items.db --title "Run 42"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().StringVarP(&previewOut, "out", "o", "preview.html", "HTML output file")
	previewCmd.Flags().StringVar(&previewTitle, "title", "Wikisift preview", "page title")
	previewCmd.Flags().StringVar(&previewSQLite, "sqlite", "", "read items from this SQLite database instead")
}

func runPreview(cmd *cobra.Command, args []string) (err error) {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var items []model.Item
	if previewSQLite != "" {
		items, err = itemsFromSQLite(cmd.Context(), previewSQLite)
	} else {
		path := cfg.Output.Path
		if len(args) == 1 {
			path = args[0]
		}
		items, err = itemsFromFile(path)
	}
	if err != nil {
		return err
	}

	f, err := os.Create(previewOut)
	if err != nil {
		return fmt.Errorf("create preview: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close preview: %w", closeErr)
		}
	}()

	if err := output.RenderPreview(f, previewTitle, items, cfg.Selection.DateProperties); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "✓ Rendered %s items to %s\n", humanize.Comma(int64(len(items))), previewOut)
	return nil
}

func itemsFromFile(path string) ([]model.Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open items: %w", err)
	}
	defer func() { _ = f.Close() }()
	return output.ReadItems(f)
}

func itemsFromSQLite(ctx context.Context, path string) ([]model.Item, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open items database: %w", err)
	}
	store, err := output.OpenSQLite(ctx, path, "")
	if err != nil {
		return nil, err
	}
	defer func() { _ = store.Close() }()
	return store.Items(ctx)
}
