package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/labb/internal/config"
	"github.com/Tiliavir/labb/internal/editor"
	"github.com/Tiliavir/labb/internal/labb"
	"github.com/Tiliavir/labb/internal/logging"
	"github.com/Tiliavir/labb/internal/storage"
)

// version is overridden at build time with -ldflags "-X github.com/Tiliavir/labb/cmd.version=...".
var version = "0.1.0-dev"

var (
	rootDir string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "labb",
	Short: "labb – a file-based lab notebook",
	Long: `labb keeps a lab notebook of books, timestamped entries, data and tags.
Everything is stored as human-readable JSON below the storage root
(--root, $LABB_ROOT or ./.labb) and can be exported through templates.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fail(err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "Storage root (default $LABB_ROOT or ./.labb)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(upgradeCmd)
	rootCmd.AddCommand(bookCmd)
	rootCmd.AddCommand(entryCmd)
	rootCmd.AddCommand(closeCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(tagCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(exportCmd)
}

// env bundles what a command needs to run.
type env struct {
	svc *labb.Service
	cfg config.Config
}

// setup resolves the storage root, builds the logger, loads the config and
// constructs the service. capture may be nil to use the configured editor.
func setup(capture editor.Capture) (*env, func(), error) {
	root, err := storage.ResolveRoot(rootDir)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(verbose)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { _ = logger.Sync() }

	cfg, err := config.Load(root)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	if capture == nil {
		capture = editor.NewTerminal(cfg.Editor)
	}
	logger.Debugw("configuration loaded", "root", root, "editor", cfg.Editor, "format", cfg.DefaultFormat)

	svc := labb.New(storage.New(root, logger.Named("storage")), capture, logger.Named("labb"))
	return &env{svc: svc, cfg: cfg}, cleanup, nil
}

// run builds the environment, calls fn and exits on error.
func run(capture editor.Capture, fn func(*env) error) error {
	e, cleanup, err := setup(capture)
	if err != nil {
		fail(err)
	}
	defer cleanup()
	if err := fn(e); err != nil {
		cleanup()
		fail(err)
	}
	return nil
}

// storageErrors are reported with exit code 2.
var storageErrors = []error{
	storage.ErrNotInitialized,
	storage.ErrAlreadyInitialized,
	storage.ErrCorrupt,
	storage.ErrUnsupportedSchema,
	storage.ErrLegacySchema,
	storage.ErrAttachmentNotFound,
	storage.ErrAttachmentExists,
}

// exitCode maps an error to the process exit code: 2 for storage
// problems, 1 for usage and state errors.
func exitCode(err error) int {
	for _, target := range storageErrors {
		if errors.Is(err, target) {
			return 2
		}
	}
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return 2
	}
	return 1
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(exitCode(err))
}
