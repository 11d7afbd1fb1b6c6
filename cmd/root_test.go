package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/Tiliavir/labb/internal/export"
	"github.com/Tiliavir/labb/internal/model"
	"github.com/Tiliavir/labb/internal/storage"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not initialized", fmt.Errorf("%w in /tmp/x", storage.ErrNotInitialized), 2},
		{"already initialized", storage.ErrAlreadyInitialized, 2},
		{"corrupt", fmt.Errorf("labb.json: %w", storage.ErrCorrupt), 2},
		{"legacy", storage.ErrLegacySchema, 2},
		{"attachment missing", fmt.Errorf("copy: %w", storage.ErrAttachmentNotFound), 2},
		{"io", fmt.Errorf("storage error: %w", &os.PathError{Op: "open", Path: "x", Err: os.ErrPermission}), 2},
		{"no open entry", model.ErrNoOpenEntry, 1},
		{"invalid transition", fmt.Errorf("%w: close the entry first", model.ErrInvalidTransition), 1},
		{"missing template", export.ErrMissingTemplate, 1},
		{"plain", errors.New("boom"), 1},
	}
	for _, tt := range tests {
		if got := exitCode(tt.err); got != tt.want {
			t.Errorf("exitCode(%s) = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestVersionFlag(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("--version: %v", err)
	}
	want := "labb version " + version + "\n"
	if out.String() != want {
		t.Errorf("--version printed %q, want %q", out.String(), want)
	}
}
