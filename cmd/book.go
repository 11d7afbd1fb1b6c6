package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/labb/internal/model"
)

var bookCmd = &cobra.Command{
	Use:   "book [name]",
	Short: "List books, or select (and create) a book",
	Long: `Without an argument, lists every book: '*' marks the current book and
'o' a book with an open entry. With a name, makes that book current,
creating it first and asking for its introduction if it does not exist.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBook,
}

func runBook(cmd *cobra.Command, args []string) error {
	return run(nil, func(e *env) error {
		if len(args) == 0 {
			books, err := e.svc.Books()
			if err != nil {
				return err
			}
			printBooks(os.Stdout, books)
			return nil
		}

		name := args[0]
		created, err := e.svc.SelectBook(name)
		if err != nil {
			return err
		}
		if created {
			fmt.Printf("Created book %q.\n", name)
		}
		fmt.Printf("Current book: %s\n", name)
		return nil
	})
}

// printBooks writes one line per book in order.
func printBooks(w io.Writer, books []model.BookStatus) {
	if len(books) == 0 {
		fmt.Fprintln(w, "No books yet.")
		return
	}
	for _, b := range books {
		line := b.Name
		if b.Current {
			line += " *"
		}
		if b.Open {
			line += " o"
		}
		fmt.Fprintln(w, line)
	}
}
