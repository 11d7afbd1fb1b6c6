package editor_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/labb/internal/editor"
)

// fakeEditor writes a shell script that replaces the edited file's content.
func fakeEditor(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script editors are not supported on windows")
	}
	path := filepath.Join(t.TempDir(), "fake-editor")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o700))
	return path
}

func TestEditReturnsTrimmedContent(t *testing.T) {
	ed := fakeEditor(t, `printf '  edited text \n\n' > "$1"`)
	got, err := editor.Edit(ed, "seed", nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "edited text", got)
}

func TestEditKeepsSeed(t *testing.T) {
	ed := fakeEditor(t, `true`)
	got, err := editor.Edit(ed, "book introduction", nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "book introduction", got)
}

func TestEditFailureAborts(t *testing.T) {
	ed := fakeEditor(t, `exit 1`)
	_, err := editor.Edit(ed, "", nil, nil, nil)
	assert.ErrorIs(t, err, editor.ErrInputAborted)

	_, err = editor.Edit("   ", "", nil, nil, nil)
	assert.ErrorIs(t, err, editor.ErrInputAborted)
}

func TestTerminalReadsPipedInput(t *testing.T) {
	in, err := os.CreateTemp(t.TempDir(), "stdin")
	require.NoError(t, err)
	_, err = in.WriteString("\n  observed X\n\n")
	require.NoError(t, err)
	_, err = in.Seek(0, 0)
	require.NoError(t, err)
	defer in.Close()

	term := editor.NewTerminal("false")
	term.Stdin = in
	got, err := term.Capture("ignored")
	require.NoError(t, err)
	assert.Equal(t, "observed X", got)
}

func TestStatic(t *testing.T) {
	got, err := editor.Static(" hi ").Capture("seed")
	require.NoError(t, err)
	assert.Equal(t, "hi", got)
}
