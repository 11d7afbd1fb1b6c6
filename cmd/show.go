package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/labb/internal/model"
	"github.com/Tiliavir/labb/internal/timecalc"
)

var showCmd = &cobra.Command{
	Use:   "show <book>",
	Short: "Print the entries of a book",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	return run(nil, func(e *env) error {
		author, book, err := e.svc.Book(args[0])
		if err != nil {
			return err
		}
		printBook(os.Stdout, author, book)
		return nil
	})
}

// printBook writes book with the full text of every datum.
func printBook(w io.Writer, author string, book *model.Book) {
	fmt.Fprintf(w, "%s (by %s)\n", book.Name, author)
	if book.Introduction != "" {
		fmt.Fprintf(w, "  %s\n", indent(book.Introduction, "  "))
	}
	if len(book.Entries) == 0 {
		fmt.Fprintln(w, "No entries.")
		return
	}
	for _, e := range book.Entries {
		state := ""
		if e.Open {
			state = " (open)"
		}
		fmt.Fprintf(w, "%s%s\n", timecalc.FormatStamp(e.Timestamp), state)
		for _, d := range e.Data {
			text := d.Text
			if d.HasAttachment() {
				text = strings.TrimSpace(text + " [" + d.Attachment + "]")
			}
			fmt.Fprintf(w, "  %-8s %s\n", d.Kind, indent(text, dataIndent))
		}
		if len(e.Tags) > 0 {
			fmt.Fprintf(w, "  tags     %s\n", joinTags(e.Tags))
		}
	}
}

func joinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

// dataIndent aligns continuation lines with the text column of a datum.
var dataIndent = strings.Repeat(" ", 11)

// indent prefixes every line after the first with prefix.
func indent(s, prefix string) string {
	return strings.ReplaceAll(s, "\n", "\n"+prefix)
}
