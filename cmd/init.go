package cmd

import (
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/labb/internal/export"
)

var initTemplates string

var initCmd = &cobra.Command{
	Use:   "init <author>",
	Short: "Create a new labbook in the storage root",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runInit,
}

func init() {
	initCmd.Flags().StringVar(&initTemplates, "templates", "", "Directory with one sub-directory of templates per export format (default: built-in md and tex)")
}

func runInit(cmd *cobra.Command, args []string) error {
	author := strings.Join(args, " ")

	var templates fs.FS = export.Defaults()
	if initTemplates != "" {
		info, err := os.Stat(initTemplates)
		if err != nil {
			fail(err)
		}
		if !info.IsDir() {
			fail(fmt.Errorf("templates: %s is not a directory", initTemplates))
		}
		templates = os.DirFS(initTemplates)
	}

	return run(nil, func(e *env) error {
		if err := e.svc.Init(author, templates); err != nil {
			return err
		}
		fmt.Printf("Initialized labbook for %s in %s\n", strings.TrimSpace(author), e.svc.Store().Root())
		return nil
	})
}
