package export

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Tiliavir/labb/internal/model"
	"github.com/Tiliavir/labb/internal/timecalc"
)

var (
	// ErrMissingTemplate is returned when a document needs a template the set does not define.
	ErrMissingTemplate = errors.New("missing template")
	// ErrFormatNotFound is returned when no template set exists for a format.
	ErrFormatNotFound = errors.New("export format not found")
)

// Names of the structural templates. Every datum kind has a template named
// after the kind.
const (
	PartIntro = "intro"
	PartEntry = "entry"
	PartTags  = "tags"
	PartOutro = "outro"
)

//go:embed templates
var defaults embed.FS

// Defaults returns the built-in template sets, one directory per format.
func Defaults() fs.FS {
	sub, err := fs.Sub(defaults, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// Names returns every template name a set may define.
func Names() []string {
	names := []string{PartIntro, PartEntry}
	for _, k := range model.Kinds {
		names = append(names, string(k))
	}
	return append(names, PartTags, PartOutro)
}

// TemplateSet is a named group of templates for one output format.
type TemplateSet struct {
	Format    string
	templates map[string]*template.Template
}

// Parse compiles sources (template name -> text) into a set. Unknown names
// are ignored.
func Parse(format string, sources map[string]string) (*TemplateSet, error) {
	set := &TemplateSet{Format: format, templates: map[string]*template.Template{}}
	for _, name := range Names() {
		src, ok := sources[name]
		if !ok {
			continue
		}
		tmpl, err := template.New(format + "/" + name).Option("missingkey=error").Parse(src)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s/%s: %w", format, name, err)
		}
		set.templates[name] = tmpl
	}
	return set, nil
}

// Has reports whether the set defines name.
func (s *TemplateSet) Has(name string) bool {
	_, ok := s.templates[name]
	return ok
}

// LoadTemplateSet reads the templates of format from dir. A directory
// dir/<format>/ with one file per template name takes precedence over a
// YAML bundle dir/<format>.yaml mapping names to templates.
func LoadTemplateSet(dir, format string) (*TemplateSet, error) {
	if format == "" || strings.ContainsAny(format, `/\`) {
		return nil, fmt.Errorf("%w: %q", ErrFormatNotFound, format)
	}

	formatDir := filepath.Join(dir, format)
	if info, err := os.Stat(formatDir); err == nil && info.IsDir() {
		sources := map[string]string{}
		for _, name := range Names() {
			data, err := os.ReadFile(filepath.Join(formatDir, name))
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("reading template %s/%s: %w", format, name, err)
			}
			sources[name] = string(data)
		}
		return Parse(format, sources)
	}

	bundle := filepath.Join(dir, format+".yaml")
	data, err := os.ReadFile(bundle)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q (looked for %s and %s)", ErrFormatNotFound, format, formatDir, bundle)
	}
	if err != nil {
		return nil, fmt.Errorf("reading template bundle %s: %w", bundle, err)
	}
	var sources map[string]string
	if err := yaml.Unmarshal(data, &sources); err != nil {
		return nil, fmt.Errorf("parsing template bundle %s: %w", bundle, err)
	}
	return Parse(format, sources)
}

// Install copies every format directory of src into dir, one file per
// template. Existing files are overwritten.
func Install(dir string, src fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(src, ".")
	if err != nil {
		return nil, fmt.Errorf("reading templates: %w", err)
	}
	var formats []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		format := e.Name()
		if err := os.MkdirAll(filepath.Join(dir, format), 0o700); err != nil {
			return nil, fmt.Errorf("creating template directory: %w", err)
		}
		for _, name := range Names() {
			data, err := fs.ReadFile(src, path.Join(format, name))
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("reading template %s/%s: %w", format, name, err)
			}
			if err := os.WriteFile(filepath.Join(dir, format, name), data, 0o600); err != nil {
				return nil, fmt.Errorf("writing template %s/%s: %w", format, name, err)
			}
		}
		formats = append(formats, format)
	}
	return formats, nil
}

// Document is the data of one exported book.
type Document struct {
	Name    string
	Author  string
	Intro   string
	Entries []Entry
}

// Entry is one exported entry.
type Entry struct {
	Timestamp time.Time
	Data      []Datum
	Tags      []string
}

// Datum is one exported datum. Path is absolute.
type Datum struct {
	Kind model.Kind
	Text string
	Path string
}

// NewDocument collects the export data of book. resolve maps a recorded
// attachment path to the path written into the document.
func NewDocument(author string, book *model.Book, resolve func(string) string) Document {
	doc := Document{
		Name:    book.Name,
		Author:  author,
		Intro:   book.Introduction,
		Entries: make([]Entry, 0, len(book.Entries)),
	}
	for _, e := range book.Entries {
		out := Entry{Timestamp: e.Timestamp, Tags: e.Tags}
		for _, d := range e.Data {
			p := ""
			if d.HasAttachment() {
				p = resolve(d.Attachment)
			}
			out.Data = append(out.Data, Datum{Kind: d.Kind, Text: d.Text, Path: p})
		}
		doc.Entries = append(doc.Entries, out)
	}
	return doc
}

type bookFields struct {
	Name   string
	Author string
	Intro  string
}

type entryFields struct {
	Timestamp string
	ISO       string
}

type datumFields struct {
	Kind      string
	Text      string
	Path      string
	File      string
	Timestamp string
}

type tagFields struct {
	Tags string
	List []string
}

// Render writes doc using set: the intro once, then for every entry its
// header, one template per datum and the tags, then the outro. Nothing is
// written unless the whole document renders.
func Render(w io.Writer, doc Document, set *TemplateSet) error {
	if err := set.check(doc); err != nil {
		return err
	}

	var buf bytes.Buffer
	book := bookFields{Name: doc.Name, Author: doc.Author, Intro: doc.Intro}
	if err := set.execute(&buf, PartIntro, book); err != nil {
		return err
	}
	for _, e := range doc.Entries {
		stamp := timecalc.FormatStamp(e.Timestamp)
		if err := set.execute(&buf, PartEntry, entryFields{Timestamp: stamp, ISO: timecalc.FormatISO(e.Timestamp)}); err != nil {
			return err
		}
		for _, d := range e.Data {
			fields := datumFields{Kind: string(d.Kind), Text: d.Text, Path: d.Path, Timestamp: stamp}
			if d.Path != "" {
				fields.File = filepath.Base(d.Path)
			}
			if err := set.execute(&buf, string(d.Kind), fields); err != nil {
				return err
			}
		}
		tags := tagFields{Tags: strings.Join(e.Tags, ", "), List: e.Tags}
		if err := set.execute(&buf, PartTags, tags); err != nil {
			return err
		}
	}
	if err := set.execute(&buf, PartOutro, book); err != nil {
		return err
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// check verifies that every template the document needs exists.
func (s *TemplateSet) check(doc Document) error {
	needed := []string{PartIntro, PartOutro}
	if len(doc.Entries) > 0 {
		needed = append(needed, PartEntry, PartTags)
	}
	for _, e := range doc.Entries {
		for _, d := range e.Data {
			needed = append(needed, string(d.Kind))
		}
	}
	for _, name := range needed {
		if !s.Has(name) {
			return fmt.Errorf("%w: %s/%s", ErrMissingTemplate, s.Format, name)
		}
	}
	return nil
}

func (s *TemplateSet) execute(w io.Writer, name string, data any) error {
	tmpl, ok := s.templates[name]
	if !ok {
		return fmt.Errorf("%w: %s/%s", ErrMissingTemplate, s.Format, name)
	}
	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("rendering template %s/%s: %w", s.Format, name, err)
	}
	return nil
}
