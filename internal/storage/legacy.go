package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/Tiliavir/labb/internal/model"
	"github.com/Tiliavir/labb/internal/timecalc"
)

// Schema 0 is the layout of the first labb releases: no discriminators, a
// single is_open flag on the labbook, and entries stored at
// books/<book>/<timestamp>/<timestamp>.json.

type legacyLabbook struct {
	Author  string                `json:"author"`
	Books   map[string]legacyBook `json:"books"`
	Current string                `json:"current"`
	IsOpen  bool                  `json:"is_open"`
}

type legacyBook struct {
	Name         string   `json:"name"`
	Introduction string   `json:"introduction"`
	Entries      []string `json:"entries"`
}

type legacyEntry struct {
	Timestamp string        `json:"timestamp"`
	Data      []legacyDatum `json:"data"`
	Tags      []string      `json:"tags"`
}

type legacyDatum struct {
	Type     string `json:"type"`
	Text     string `json:"text"`
	Filename string `json:"filename"`
}

// Upgrade converts a schema 0 labbook in place. The old top-level record is
// kept as labb.json.v0; old entry files are left untouched and attachments
// keep their original location.
func (s *Store) Upgrade() (*model.Labbook, error) {
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
	if env.Kind != "" {
		return nil, fmt.Errorf("labbook already uses schema %d", schemaVersion)
	}

	lb, err := s.loadLegacy(data)
	if err != nil {
		return nil, err
	}

	for _, b := range lb.Books {
		if err := s.EnsureBookDir(b.Name); err != nil {
			return nil, err
		}
		for _, e := range b.Entries {
			if err := s.SaveEntry(b.Name, e); err != nil {
				return nil, err
			}
		}
	}
	if err := os.WriteFile(path+".v0", data, 0o600); err != nil {
		return nil, fmt.Errorf("storage error backing up legacy labbook: %w", err)
	}
	if err := s.Save(lb); err != nil {
		return nil, err
	}
	s.logger.Infow("upgraded legacy labbook", "books", len(lb.Books))
	return lb, nil
}

func (s *Store) loadLegacy(data []byte) (*model.Labbook, error) {
	var old legacyLabbook
	if err := json.Unmarshal(data, &old); err != nil {
		return nil, fmt.Errorf("%w: legacy labbook: %v", ErrCorrupt, err)
	}

	lb := model.New(old.Author)
	for name, ob := range old.Books {
		if ob.Name == "" {
			ob.Name = name
		}
		b := &model.Book{
			Name:         ob.Name,
			Introduction: ob.Introduction,
			Entries:      make([]*model.Entry, 0, len(ob.Entries)),
		}
		for _, id := range ob.Entries {
			e, err := s.loadLegacyEntry(ob.Name, id)
			if err != nil {
				return nil, err
			}
			b.Entries = append(b.Entries, e)
		}
		if len(b.Entries) > 0 {
			b.Created = b.Entries[0].Timestamp
		}
		lb.Books[name] = b
	}

	if _, ok := lb.Books[old.Current]; ok {
		lb.Current = old.Current
		if old.IsOpen {
			cur := lb.Books[old.Current]
			if n := len(cur.Entries); n > 0 {
				cur.Entries[n-1].Open = true
			}
		}
	}

	if err := lb.Validate(); err != nil {
		return nil, fmt.Errorf("%w: legacy labbook: %v", ErrCorrupt, err)
	}
	return lb, nil
}

func (s *Store) loadLegacyEntry(book, id string) (*model.Entry, error) {
	path := filepath.Join(s.BookDir(book), id, id+".json")
	data, err := s.readFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: legacy entry %s is missing", ErrCorrupt, path)
	}
	if err != nil {
		return nil, err
	}
	var old legacyEntry
	if err := json.Unmarshal(data, &old); err != nil {
		return nil, fmt.Errorf("%w: legacy entry %s: %v", ErrCorrupt, path, err)
	}
	stamp := old.Timestamp
	if stamp == "" {
		stamp = id
	}
	ts, err := timecalc.ParseISO(stamp)
	if err != nil {
		return nil, fmt.Errorf("%w: legacy entry %s: %v", ErrCorrupt, path, err)
	}

	e := &model.Entry{
		Timestamp: ts,
		Data:      make([]model.Datum, 0, len(old.Data)),
		Tags:      append([]string{}, old.Tags...),
	}
	for i, od := range old.Data {
		d := s.convertLegacyDatum(book, id, i, od)
		d.Created = ts
		e.Data = append(e.Data, d)
	}
	return e, nil
}

// convertLegacyDatum maps an old datum onto the current invariants. Old
// releases accepted any template name as a type, with or without a file:
// an unknown type becomes a note labelled with the old type, a file-backed
// kind without a file becomes a note, and a file on another kind is
// mentioned in the text.
func (s *Store) convertLegacyDatum(book, id string, i int, od legacyDatum) model.Datum {
	file := legacyAttachmentPath(od.Filename)
	text := od.Text

	kind, err := model.ParseKind(od.Type)
	if err != nil {
		s.logger.Warnw("legacy datum of unknown type converted to note", "book", book, "entry", id, "index", i, "type", od.Type)
		kind = model.KindNote
		text = strings.TrimSpace("[" + od.Type + "] " + text)
	}

	switch {
	case kind.FileBacked() && file == "":
		s.logger.Warnw("legacy datum without file converted to note", "book", book, "entry", id, "index", i, "type", od.Type)
		kind = model.KindNote
	case !kind.FileBacked() && file != "":
		s.logger.Warnw("legacy attachment moved into text", "book", book, "entry", id, "index", i, "file", file)
		text = strings.TrimSpace(text + "\n\n[attachment: " + file + "]")
		file = ""
	}

	return model.Datum{
		ID:         uuid.NewSHA1(uuid.NameSpaceURL, []byte("labb:"+book+"/"+id+"/"+strconv.Itoa(i))).String(),
		Kind:       kind,
		Text:       text,
		Attachment: file,
	}
}

// legacyAttachmentPath converts an old working-directory relative path like
// ".labb/books/lab1/<ts>/plot.png" into a path relative to the storage root.
func legacyAttachmentPath(name string) string {
	if name == "" || name == "None" {
		return ""
	}
	name = filepath.ToSlash(name)
	if i := strings.Index(name, booksDir+"/"); i >= 0 {
		return name[i:]
	}
	return name
}
