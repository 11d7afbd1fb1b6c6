package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Tiliavir/labb/internal/model"
	"github.com/Tiliavir/labb/internal/timecalc"
)

const (
	labbFile  = "labb.json"
	entryFile = "entry.json"
	booksDir  = "books"
)

// EnvRoot names the environment variable that overrides the default root.
const EnvRoot = "LABB_ROOT"

// ResolveRoot returns the absolute storage root: flag if set, then
// $LABB_ROOT, then ./.labb.
func ResolveRoot(flag string) (string, error) {
	root := flag
	if root == "" {
		root = os.Getenv(EnvRoot)
	}
	if root == "" {
		root = ".labb"
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("cannot resolve storage root %q: %w", root, err)
	}
	return abs, nil
}

// Store persists a labbook below a root directory:
//
//	<root>/labb.json                              labbook record (book index)
//	<root>/books/<book>/<entry-id>/entry.json     one entry record
//	<root>/books/<book>/<entry-id>/<attachment>   stored attachments
type Store struct {
	root   string
	logger *zap.SugaredLogger
}

// New returns a Store rooted at root.
func New(root string, logger *zap.SugaredLogger) *Store {
	return &Store{root: root, logger: logger}
}

// Root returns the storage root.
func (s *Store) Root() string {
	return s.root
}

func (s *Store) labbPath() string {
	return filepath.Join(s.root, labbFile)
}

// BookDir returns the storage directory of a book.
func (s *Store) BookDir(name string) string {
	return filepath.Join(s.root, booksDir, name)
}

// EntryDir returns the storage directory of an entry.
func (s *Store) EntryDir(book string, ts time.Time) string {
	return filepath.Join(s.BookDir(book), timecalc.EntryID(ts))
}

func (s *Store) entryPath(book string, ts time.Time) string {
	return filepath.Join(s.EntryDir(book, ts), entryFile)
}

// Exists reports whether a labbook record is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.labbPath())
	return err == nil
}

// Init creates the storage root and writes a fresh labbook.
func (s *Store) Init(lb *model.Labbook) error {
	if s.Exists() {
		return fmt.Errorf("%w in %s", ErrAlreadyInitialized, s.root)
	}
	if err := os.MkdirAll(filepath.Join(s.root, booksDir), 0o700); err != nil {
		return fmt.Errorf("storage error creating %s: %w", s.root, err)
	}
	s.logger.Debugw("initialized storage", "root", s.root)
	return s.Save(lb)
}

// EnsureBookDir creates the storage directory of a book.
func (s *Store) EnsureBookDir(name string) error {
	if err := os.MkdirAll(s.BookDir(name), 0o700); err != nil {
		return fmt.Errorf("storage error creating book directory: %w", err)
	}
	return nil
}

// Save atomically overwrites the labbook record. Entry records are not
// written; use SaveEntry for those.
func (s *Store) Save(lb *model.Labbook) error {
	data, err := encodeLabbook(lb)
	if err != nil {
		return fmt.Errorf("storage error marshalling JSON: %w", err)
	}
	if err := writeFileAtomic(s.labbPath(), data, 0o600); err != nil {
		return err
	}
	s.logger.Debugw("saved labbook", "books", len(lb.Books), "current", lb.Current)
	return nil
}

// SaveEntry atomically overwrites the record of a single entry.
func (s *Store) SaveEntry(book string, e *model.Entry) error {
	data, err := encodeEntry(e)
	if err != nil {
		return fmt.Errorf("storage error marshalling JSON: %w", err)
	}
	path := s.entryPath(book, e.Timestamp)
	if err := writeFileAtomic(path, data, 0o600); err != nil {
		return err
	}
	s.logger.Debugw("saved entry", "book", book, "entry", timecalc.EntryID(e.Timestamp),
		"data", len(e.Data), "tags", len(e.Tags), "open", e.Open)
	return nil
}

// LoadEntry reads one entry record.
func (s *Store) LoadEntry(book string, ts time.Time) (*model.Entry, error) {
	path := s.entryPath(book, ts)
	data, err := s.readFile(path)
	if err != nil {
		return nil, err
	}
	rec, err := decodeAs[*entryRecord](data)
	if err != nil {
		return nil, s.corrupt(path, data, err)
	}
	e, err := rec.toModel()
	if err != nil {
		return nil, s.corrupt(path, data, err)
	}
	if !e.Timestamp.Equal(ts) {
		return nil, fmt.Errorf("%w: %s holds entry %s", ErrCorrupt, path, timecalc.FormatISO(e.Timestamp))
	}
	return e, nil
}

// Load reads the labbook record and every entry it indexes.
func (s *Store) Load() (*model.Labbook, error) {
	path := s.labbPath()
	data, err := s.readFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w in %s", ErrNotInitialized, s.root)
	}
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, s.corrupt(path, data, fmt.Errorf("%w: %v", ErrCorrupt, err))
	}
	if env.Kind == "" {
		return nil, ErrLegacySchema
	}

	rec, err := decodeAs[*labbookRecord](data)
	if err != nil {
		return nil, s.corrupt(path, data, err)
	}
	if rec.Schema > schemaVersion {
		return nil, fmt.Errorf("%w: %d (this build supports %d)", ErrUnsupportedSchema, rec.Schema, schemaVersion)
	}

	lb := model.New(rec.Author)
	if rec.Current != nil {
		lb.Current = *rec.Current
	}
	for name, raw := range rec.Books {
		br, err := decodeAs[*bookRecord](raw)
		if err != nil {
			return nil, s.corrupt(path, data, fmt.Errorf("book %q: %w", name, err))
		}
		b, err := s.loadBook(br)
		if err != nil {
			return nil, err
		}
		lb.Books[name] = b
	}

	if err := lb.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	s.logger.Debugw("loaded labbook", "root", s.root, "books", len(lb.Books))
	return lb, nil
}

func (s *Store) loadBook(br *bookRecord) (*model.Book, error) {
	b := &model.Book{
		Name:         br.Name,
		Introduction: br.Introduction,
		Entries:      make([]*model.Entry, 0, len(br.Entries)),
	}
	if br.Created != "" {
		created, err := timecalc.ParseISO(br.Created)
		if err != nil {
			return nil, fmt.Errorf("%w: book %q: %v", ErrCorrupt, br.Name, err)
		}
		b.Created = created
	}
	for _, id := range br.Entries {
		ts, err := timecalc.ParseISO(id)
		if err != nil {
			return nil, fmt.Errorf("%w: book %q: %v", ErrCorrupt, br.Name, err)
		}
		e, err := s.LoadEntry(br.Name, ts)
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: book %q: entry %s is missing", ErrCorrupt, br.Name, id)
		}
		if err != nil {
			return nil, err
		}
		b.Entries = append(b.Entries, e)
	}
	return b, nil
}

func (s *Store) readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("storage error reading %s: %w", path, err)
	}
	return data, nil
}

// corrupt keeps a copy of an unreadable record next to it and returns err
// annotated with the backup location. The original is left in place so the
// labbook does not appear uninitialized.
func (s *Store) corrupt(path string, data []byte, err error) error {
	backupPath := path + ".corrupt"
	if werr := os.WriteFile(backupPath, data, 0o600); werr != nil {
		s.logger.Warnw("could not back up corrupt record", "path", path, "error", werr)
		return fmt.Errorf("%s: %w", path, err)
	}
	return fmt.Errorf("%s (backed up to %s): %w", path, backupPath, err)
}

// RemoveEntry deletes the directory of an entry that never reached the
// labbook index.
func (s *Store) RemoveEntry(book string, ts time.Time) error {
	if err := os.RemoveAll(s.EntryDir(book, ts)); err != nil {
		return fmt.Errorf("storage error removing entry: %w", err)
	}
	return nil
}
