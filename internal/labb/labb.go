// Package labb implements the logbook operations on top of the store: every
// operation loads the labbook, applies one state transition in memory and
// writes back only the records it changed. Validation happens before the
// first write, so a failed operation leaves the stored state untouched.
package labb

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Tiliavir/labb/internal/config"
	"github.com/Tiliavir/labb/internal/editor"
	"github.com/Tiliavir/labb/internal/export"
	"github.com/Tiliavir/labb/internal/model"
	"github.com/Tiliavir/labb/internal/storage"
	"github.com/Tiliavir/labb/internal/timecalc"
)

// FormatsDir is the directory below the storage root holding template sets.
const FormatsDir = "formats"

// IntroSeed pre-fills the editor when a book is created.
const IntroSeed = "book introduction"

// ErrEmptyAuthor is returned by Init for a blank author.
var ErrEmptyAuthor = errors.New("author cannot be empty")

// Service runs logbook operations against a Store.
type Service struct {
	store   *storage.Store
	capture editor.Capture
	logger  *zap.SugaredLogger
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces the clock used for entry and datum timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New returns a Service. capture supplies introductions and datum text.
func New(store *storage.Store, capture editor.Capture, logger *zap.SugaredLogger, opts ...Option) *Service {
	s := &Service{
		store:   store,
		capture: capture,
		logger:  logger,
		now:     timecalc.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying store.
func (s *Service) Store() *storage.Store {
	return s.store
}

func (s *Service) formatsDir() string {
	return filepath.Join(s.store.Root(), FormatsDir)
}

// Init creates a new labbook for author, installs the template sets from
// templates and writes the annotated config file.
func (s *Service) Init(author string, templates fs.FS) error {
	author = strings.TrimSpace(author)
	if author == "" {
		return ErrEmptyAuthor
	}
	if s.store.Exists() {
		return fmt.Errorf("%w in %s", storage.ErrAlreadyInitialized, s.store.Root())
	}
	formats, err := export.Install(s.formatsDir(), templates)
	if err != nil {
		return err
	}
	if err := config.WriteDefault(s.store.Root()); err != nil {
		return err
	}
	if err := s.store.Init(model.New(author)); err != nil {
		return err
	}
	s.logger.Infow("labbook initialized", "root", s.store.Root(), "author", author, "formats", formats)
	return nil
}

// Upgrade converts a labbook stored in the legacy layout.
func (s *Service) Upgrade() (*model.Labbook, error) {
	return s.store.Upgrade()
}

// SelectBook makes name the current book, creating it with an introduction
// from the capture collaborator if needed. It reports whether the book was
// created.
func (s *Service) SelectBook(name string) (bool, error) {
	lb, err := s.store.Load()
	if err != nil {
		return false, err
	}
	previous := lb.Current
	created, err := lb.SelectOrCreateBook(name, func() (string, error) {
		return s.capture.Capture(IntroSeed)
	}, s.now())
	if err != nil {
		return false, err
	}
	if created {
		if err := s.store.EnsureBookDir(name); err != nil {
			return false, err
		}
	}
	if created || previous != lb.Current {
		if err := s.store.Save(lb); err != nil {
			return false, err
		}
	}
	s.logger.Debugw("book selected", "book", name, "created", created)
	return created, nil
}

// OpenEntry starts a new entry in the current book.
func (s *Service) OpenEntry() (*model.Book, *model.Entry, error) {
	lb, err := s.store.Load()
	if err != nil {
		return nil, nil, err
	}
	e, err := lb.OpenEntry(s.now())
	if err != nil {
		return nil, nil, err
	}
	book := lb.CurrentBook()

	// The entry record goes first: until the index names it, a leftover
	// entry file is ignored by Load.
	if err := s.store.SaveEntry(book.Name, e); err != nil {
		return nil, nil, err
	}
	if err := s.store.Save(lb); err != nil {
		if rmErr := s.store.RemoveEntry(book.Name, e.Timestamp); rmErr != nil {
			s.logger.Warnw("could not remove unindexed entry", "book", book.Name, "error", rmErr)
		}
		return nil, nil, err
	}
	s.logger.Debugw("entry opened", "book", book.Name, "entry", timecalc.EntryID(e.Timestamp))
	return book, e, nil
}

// CloseEntry closes the open entry of the current book.
func (s *Service) CloseEntry() (*model.Book, *model.Entry, error) {
	lb, err := s.store.Load()
	if err != nil {
		return nil, nil, err
	}
	e, err := lb.CloseEntry()
	if err != nil {
		return nil, nil, err
	}
	book := lb.CurrentBook()
	if err := s.store.SaveEntry(book.Name, e); err != nil {
		return nil, nil, err
	}
	s.logger.Debugw("entry closed", "book", book.Name, "entry", timecalc.EntryID(e.Timestamp))
	return book, e, nil
}

// AddDatum appends a datum of kind to the open entry. File-backed kinds
// need source, which is copied into the entry's storage directory; text
// comes from the capture collaborator.
func (s *Service) AddDatum(kind model.Kind, source string) (model.Datum, error) {
	lb, err := s.store.Load()
	if err != nil {
		return model.Datum{}, err
	}
	book, entry, err := lb.OpenEntryOfCurrent()
	if err != nil {
		return model.Datum{}, err
	}

	if _, err := model.ParseKind(string(kind)); err != nil {
		return model.Datum{}, err
	}
	switch {
	case kind.FileBacked() && source == "":
		return model.Datum{}, fmt.Errorf("%w: %s", model.ErrAttachmentRequired, kind)
	case !kind.FileBacked() && source != "":
		return model.Datum{}, fmt.Errorf("%w: %s", model.ErrUnexpectedAttachment, kind)
	}

	var stored string
	if kind.FileBacked() {
		stored, err = s.store.CopyAttachment(book.Name, entry.Timestamp, source)
		if err != nil {
			return model.Datum{}, err
		}
	}
	rollback := func(cause error) error {
		if stored != "" {
			if rmErr := s.store.RemoveAttachment(stored); rmErr != nil {
				s.logger.Warnw("could not remove attachment", "path", stored, "error", rmErr)
			}
		}
		return cause
	}

	text, err := s.capture.Capture("")
	if err != nil {
		return model.Datum{}, rollback(err)
	}
	d, err := model.NewDatum(kind, text, stored, s.now())
	if err != nil {
		return model.Datum{}, rollback(err)
	}
	if _, err := lb.AppendDatum(d); err != nil {
		return model.Datum{}, rollback(err)
	}
	if err := s.store.SaveEntry(book.Name, entry); err != nil {
		return model.Datum{}, rollback(err)
	}
	s.logger.Debugw("datum added", "book", book.Name, "kind", kind, "attachment", stored)
	return d, nil
}

// AddTag appends a tag to the open entry.
func (s *Service) AddTag(tag string) error {
	lb, err := s.store.Load()
	if err != nil {
		return err
	}
	e, err := lb.AppendTag(tag)
	if err != nil {
		return err
	}
	if err := s.store.SaveEntry(lb.Current, e); err != nil {
		return err
	}
	s.logger.Debugw("tag added", "book", lb.Current, "tag", strings.TrimSpace(tag))
	return nil
}

// Books lists every book with its current and open state.
func (s *Service) Books() ([]model.BookStatus, error) {
	lb, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	return lb.ListBooks(), nil
}

// Status describes the current book and its open entry.
type Status struct {
	Author string
	Book   *model.Book
	Entry  *model.Entry
}

// Status reports the current book and open entry, if any.
func (s *Service) Status() (Status, error) {
	lb, err := s.store.Load()
	if err != nil {
		return Status{}, err
	}
	st := Status{Author: lb.Author, Book: lb.CurrentBook()}
	if st.Book != nil {
		st.Entry = st.Book.OpenEntry()
	}
	return st, nil
}

// Book returns the author and the named book.
func (s *Service) Book(name string) (string, *model.Book, error) {
	lb, err := s.store.Load()
	if err != nil {
		return "", nil, err
	}
	b, err := lb.Book(name)
	if err != nil {
		return "", nil, err
	}
	return lb.Author, b, nil
}

// Export renders the named book with the template set of format.
func (s *Service) Export(name, format string, w io.Writer) error {
	lb, err := s.store.Load()
	if err != nil {
		return err
	}
	book, err := lb.Book(name)
	if err != nil {
		return err
	}
	set, err := export.LoadTemplateSet(s.formatsDir(), format)
	if err != nil {
		return err
	}
	return export.Render(w, export.NewDocument(lb.Author, book, s.store.Resolve), set)
}

// ExportFile renders the named book into dir/<name>.<format> and returns
// the written path. The file is only created when rendering succeeds.
func (s *Service) ExportFile(name, format, dir string) (string, error) {
	var buf bytes.Buffer
	if err := s.Export(name, format, &buf); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name+"."+format)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("writing export %s: %w", path, err)
	}
	s.logger.Debugw("book exported", "book", name, "format", format, "path", path)
	return path, nil
}
