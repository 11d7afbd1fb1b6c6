package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/labb/internal/timecalc"
)

var closeCmd = &cobra.Command{
	Use:   "close",
	Short: "Close the open entry of the current book",
	Args:  cobra.NoArgs,
	RunE:  runClose,
}

func runClose(cmd *cobra.Command, args []string) error {
	return run(nil, func(e *env) error {
		book, entry, err := e.svc.CloseEntry()
		if err != nil {
			return err
		}
		elapsed := timecalc.Now().Sub(entry.Timestamp)
		fmt.Printf("Closed entry %s in book %q (%d data, %d tags). Open for %s.\n",
			timecalc.FormatStamp(entry.Timestamp), book.Name, len(entry.Data), len(entry.Tags),
			timecalc.FormatElapsed(elapsed))
		return nil
	})
}
