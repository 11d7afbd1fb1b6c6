package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export <book>",
	Short: "Render a book through a template set",
	Long: `Renders a book with the templates of an export format. Template sets live
in <root>/formats/<format>/ (one file per template) or <root>/formats/<format>.yaml.
Without --out the document is written to <export_dir>/<book>.<format>.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "Export format (default from config, md)")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output file, or - for stdout")
}

func runExport(cmd *cobra.Command, args []string) error {
	name := args[0]
	return run(nil, func(e *env) error {
		format := exportFormat
		if format == "" {
			format = e.cfg.DefaultFormat
		}

		switch exportOut {
		case "":
			path, err := e.svc.ExportFile(name, format, e.cfg.ExportDir)
			if err != nil {
				return err
			}
			fmt.Printf("Exported %q to %s\n", name, path)
		case "-":
			return e.svc.Export(name, format, os.Stdout)
		default:
			var buf bytes.Buffer
			if err := e.svc.Export(name, format, &buf); err != nil {
				return err
			}
			if dir := filepath.Dir(exportOut); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("creating export directory: %w", err)
				}
			}
			if err := os.WriteFile(exportOut, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("writing export %s: %w", exportOut, err)
			}
			fmt.Printf("Exported %q to %s\n", name, exportOut)
		}
		return nil
	})
}
