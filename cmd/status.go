package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/labb/internal/labb"
	"github.com/Tiliavir/labb/internal/timecalc"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current book and open entry",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	return run(nil, func(e *env) error {
		st, err := e.svc.Status()
		if err != nil {
			return err
		}
		printStatus(os.Stdout, st, timecalc.Now())
		return nil
	})
}

func printStatus(w io.Writer, st labb.Status, now time.Time) {
	fmt.Fprintf(w, "Author: %s\n", st.Author)
	if st.Book == nil {
		fmt.Fprintln(w, "No book selected.")
		return
	}
	fmt.Fprintf(w, "Book: %s (%d entries)\n", st.Book.Name, len(st.Book.Entries))
	if st.Entry == nil {
		fmt.Fprintln(w, "No open entry.")
		return
	}
	fmt.Fprintln(w, "Open entry:")
	fmt.Fprintf(w, "  Since: %s\n", timecalc.FormatStamp(st.Entry.Timestamp))
	fmt.Fprintf(w, "  Elapsed: %s\n", timecalc.FormatElapsed(now.Sub(st.Entry.Timestamp)))
	fmt.Fprintf(w, "  Data: %d\n", len(st.Entry.Data))
	if len(st.Entry.Tags) > 0 {
		fmt.Fprintf(w, "  Tags: %s\n", joinTags(st.Entry.Tags))
	}
}
