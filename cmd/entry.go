package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/labb/internal/timecalc"
)

var entryCmd = &cobra.Command{
	Use:   "entry",
	Short: "Open a new entry in the current book",
	Args:  cobra.NoArgs,
	RunE:  runEntry,
}

func runEntry(cmd *cobra.Command, args []string) error {
	return run(nil, func(e *env) error {
		book, entry, err := e.svc.OpenEntry()
		if err != nil {
			return err
		}
		fmt.Printf("Opened entry %s in book %q.\n", timecalc.FormatStamp(entry.Timestamp), book.Name)
		return nil
	})
}
