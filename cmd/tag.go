package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var tagCmd = &cobra.Command{
	Use:   "tag <text>",
	Short: "Tag the open entry",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTag,
}

func runTag(cmd *cobra.Command, args []string) error {
	tag := strings.TrimSpace(strings.Join(args, " "))
	return run(nil, func(e *env) error {
		if err := e.svc.AddTag(tag); err != nil {
			return err
		}
		fmt.Printf("Tagged entry with %q.\n", tag)
		return nil
	})
}
