package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the config file inside the storage root.
const FileName = "config.json"

// Config is the labb configuration, stored in <root>/config.json.
// The file supports single-line // comments for documentation purposes.
type Config struct {
	// Editor is the command used to capture text interactively.
	Editor string `json:"editor"`
	// DefaultFormat is the template set used by export when --format is not given.
	DefaultFormat string `json:"default_format"`
	// ExportDir is where exported documents are written. Relative paths are
	// resolved against the working directory of the export command.
	ExportDir string `json:"export_dir"`
}

const (
	// DefaultEditor is used when neither the config nor $VISUAL/$EDITOR name one.
	DefaultEditor = "vim"
	// DefaultFormat is the built-in Markdown template set.
	DefaultFormat = "md"
	// DefaultExportDir writes exports to the working directory.
	DefaultExportDir = "."
)

func defaultEditor() string {
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	return DefaultEditor
}

// defaultConfig returns a Config pre-filled with defaults.
func defaultConfig() Config {
	return Config{
		Editor:        defaultEditor(),
		DefaultFormat: DefaultFormat,
		ExportDir:     DefaultExportDir,
	}
}

// configTemplate is the annotated config written by `labb init`.
// Lines whose trimmed content starts with // are stripped before JSON parsing.
const configTemplate = `// labb configuration
//
// All settings are optional; empty values fall back to the defaults.
{
  // Command used to write book introductions and data interactively.
  // Empty: $VISUAL, then $EDITOR, then "vim".
  "editor": "",

  // Template set used by 'labb export' when --format is not given.
  // Sets live in the formats/ directory next to this file, either as a
  // directory with one file per template or as a <format>.yaml bundle.
  "default_format": "md",

  // Directory exported documents are written to.
  "export_dir": "."
}
`

// stripLineComments removes lines whose leading non-whitespace content starts
// with //. Only full-line comments are handled; inline comments are not stripped.
func stripLineComments(data []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("//")) {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

// Load reads <root>/config.json. A missing file yields the defaults.
func Load(root string) (Config, error) {
	path := filepath.Join(root, FileName)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return defaultConfig(), nil
	}
	if err != nil {
		return defaultConfig(), fmt.Errorf("reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(stripLineComments(data), &cfg); err != nil {
		return defaultConfig(), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
	}

	// Fill zero-value fields with built-in defaults.
	def := defaultConfig()
	if cfg.Editor == "" {
		cfg.Editor = def.Editor
	}
	if cfg.DefaultFormat == "" {
		cfg.DefaultFormat = def.DefaultFormat
	}
	if cfg.ExportDir == "" {
		cfg.ExportDir = def.ExportDir
	}
	return cfg, nil
}

// WriteDefault writes the annotated config template into root unless a
// config file already exists.
func WriteDefault(root string) error {
	path := filepath.Join(root, FileName)
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(root, 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
