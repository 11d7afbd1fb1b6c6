package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var upgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Convert a labbook stored in the legacy layout",
	Args:  cobra.NoArgs,
	RunE:  runUpgrade,
}

func runUpgrade(cmd *cobra.Command, args []string) error {
	return run(nil, func(e *env) error {
		lb, err := e.svc.Upgrade()
		if err != nil {
			return err
		}
		entries := 0
		for _, b := range lb.Books {
			entries += len(b.Entries)
		}
		fmt.Printf("Upgraded labbook of %s: %d book(s), %d entr(y/ies).\n", lb.Author, len(lb.Books), entries)
		return nil
	})
}
