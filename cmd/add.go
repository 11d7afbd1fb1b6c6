package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/labb/internal/editor"
	"github.com/Tiliavir/labb/internal/model"
)

var addText string

var addCmd = &cobra.Command{
	Use:   "add <kind> [file]",
	Short: "Add a datum to the open entry",
	Long: fmt.Sprintf(`Adds a datum of the given kind (%s) to the open entry.
Image and code data need a file, which is copied into the labbook.
The text is read from piped stdin, from --text, or from the configured editor.`, kindList()),
	Args: cobra.RangeArgs(1, 2),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addText, "text", "", "Datum text (skips the editor)")
}

func kindList() string {
	names := make([]string, len(model.Kinds))
	for i, k := range model.Kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

func runAdd(cmd *cobra.Command, args []string) error {
	kind, err := model.ParseKind(args[0])
	if err != nil {
		fail(fmt.Errorf("%w (expected one of %s)", err, kindList()))
	}
	source := ""
	if len(args) == 2 {
		source = args[1]
	}

	var capture editor.Capture
	if cmd.Flags().Changed("text") {
		capture = editor.Static(addText)
	}

	return run(capture, func(e *env) error {
		d, err := e.svc.AddDatum(kind, source)
		if err != nil {
			return err
		}
		if d.HasAttachment() {
			fmt.Printf("Added %s datum with %s.\n", d.Kind, d.Attachment)
			return nil
		}
		fmt.Printf("Added %s datum.\n", d.Kind)
		return nil
	})
}
