package editor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/term"
)

// ErrInputAborted is returned when the editor did not exit cleanly.
var ErrInputAborted = errors.New("text entry aborted")

// Capture obtains a block of text from the user. seed pre-fills the editor.
type Capture interface {
	Capture(seed string) (string, error)
}

// Terminal captures text from piped stdin, or from an editor when stdin is
// a terminal.
type Terminal struct {
	Editor string
	Stdin  *os.File
	Stdout io.Writer
	Stderr io.Writer
}

// NewTerminal returns a Terminal using the process streams.
func NewTerminal(editor string) *Terminal {
	return &Terminal{
		Editor: editor,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Capture implements Capture. Piped input is read to end-of-stream; either
// way the result is trimmed.
func (t *Terminal) Capture(seed string) (string, error) {
	if !term.IsTerminal(int(t.Stdin.Fd())) {
		data, err := io.ReadAll(t.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading input: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	return Edit(t.Editor, seed, t.Stdin, t.Stdout, t.Stderr)
}

// Edit writes seed to a temp file, opens it in editor and returns the
// trimmed content once the editor exits. The editor command may carry
// arguments ("code --wait").
func Edit(editor, seed string, stdin io.Reader, stdout, stderr io.Writer) (string, error) {
	fields := strings.Fields(editor)
	if len(fields) == 0 {
		return "", fmt.Errorf("%w: no editor configured", ErrInputAborted)
	}

	tmp, err := os.CreateTemp("", "labb-*.txt")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	path := tmp.Name()
	defer os.Remove(path)

	if _, err := tmp.WriteString(seed); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing temp file: %w", err)
	}

	cmd := exec.Command(fields[0], append(fields[1:], path)...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInputAborted, fields[0], err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInputAborted, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Static is a Capture that always returns the same text.
type Static string

// Capture implements Capture.
func (s Static) Capture(string) (string, error) {
	return strings.TrimSpace(string(s)), nil
}

// Func adapts a function to Capture.
type Func func(seed string) (string, error)

// Capture implements Capture.
func (f Func) Capture(seed string) (string, error) {
	return f(seed)
}
