package storage_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/labb/internal/model"
	"github.com/Tiliavir/labb/internal/storage"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

// writeLegacy lays out a labbook the way the first releases stored it.
func writeLegacy(t *testing.T, root string) {
	t.Helper()
	writeFile(t, filepath.Join(root, "labb.json"), `{
  "author": "Ada",
  "books": {"lab1": {"name": "lab1", "introduction": "first notebook",
    "entries": ["2026-02-27T09:00:00.000001", "2026-02-28T10:00:00.500000"]}},
  "current": "lab1",
  "is_open": true
}`)
	writeFile(t, filepath.Join(root, "books/lab1/2026-02-27T09:00:00.000001/2026-02-27T09:00:00.000001.json"), `{
  "timestamp": "2026-02-27T09:00:00.000001",
  "data": [
    {"type": "note", "text": "observed X", "filename": "None"},
    {"type": "image", "text": "plot", "filename": ".labb/books/lab1/2026-02-27T09:00:00.000001/plot.png"},
    {"type": "image", "text": "no file", "filename": "None"}
  ],
  "tags": ["chemistry"]
}`)
	writeFile(t, filepath.Join(root, "books/lab1/2026-02-28T10:00:00.500000/2026-02-28T10:00:00.500000.json"), `{
  "timestamp": "2026-02-28T10:00:00.500000",
  "data": [],
  "tags": []
}`)
}

func TestLoadDetectsLegacyLayout(t *testing.T) {
	s := newStore(t)
	writeLegacy(t, s.Root())

	_, err := s.Load()
	assert.ErrorIs(t, err, storage.ErrLegacySchema)
}

func TestUpgrade(t *testing.T) {
	s := newStore(t)
	writeLegacy(t, s.Root())

	upgraded, err := s.Upgrade()
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(s.Root(), "labb.json.v0"))

	lb, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, upgraded, lb)

	assert.Equal(t, "Ada", lb.Author)
	assert.Equal(t, "lab1", lb.Current)
	book := lb.Books["lab1"]
	require.Len(t, book.Entries, 2)
	assert.False(t, book.Entries[0].Open)
	assert.True(t, book.Entries[1].Open, "the global open flag moves to the last entry of the current book")
	assert.Equal(t, time.Date(2026, 2, 27, 9, 0, 0, 1000, time.UTC), book.Entries[0].Timestamp)

	data := book.Entries[0].Data
	require.Len(t, data, 3)
	assert.Equal(t, model.KindNote, data[0].Kind)
	assert.False(t, data[0].HasAttachment())
	assert.Equal(t, model.KindImage, data[1].Kind)
	assert.Equal(t, "books/lab1/2026-02-27T09:00:00.000001/plot.png", data[1].Attachment)
	assert.Equal(t, model.KindNote, data[2].Kind, "file-backed kind without a file becomes a note")
	assert.Equal(t, []string{"chemistry"}, book.Entries[0].Tags)

	_, err = s.Upgrade()
	assert.Error(t, err, "upgrading twice must fail")
}

func TestUpgradeDeterministicIDs(t *testing.T) {
	a := newStore(t)
	writeLegacy(t, a.Root())
	b := newStore(t)
	writeLegacy(t, b.Root())

	la, err := a.Upgrade()
	require.NoError(t, err)
	lb, err := b.Upgrade()
	require.NoError(t, err)
	assert.Equal(t, la.Books["lab1"].Entries[0].Data[0].ID, lb.Books["lab1"].Entries[0].Data[0].ID)
}

func TestUpgradeConvertsUnknownTypes(t *testing.T) {
	s := newStore(t)
	writeFile(t, filepath.Join(s.Root(), "labb.json"), `{
  "author": "Ada",
  "books": {"lab1": {"name": "lab1", "introduction": "",
    "entries": ["2026-02-27T09:00:00"]}},
  "current": "lab1",
  "is_open": false
}`)
	writeFile(t, filepath.Join(s.Root(), "books/lab1/2026-02-27T09:00:00/2026-02-27T09:00:00.json"), `{
  "timestamp": "2026-02-27T09:00:00",
  "data": [
    {"type": "intro", "text": "opening remarks", "filename": "None"},
    {"type": "outro", "text": "", "filename": "notes/end.txt"},
    {"type": "equation", "text": "E = mc^2", "filename": "None"}
  ],
  "tags": []
}`)

	lb, err := s.Upgrade()
	require.NoError(t, err)

	data := lb.Books["lab1"].Entries[0].Data
	require.Len(t, data, 3)
	assert.Equal(t, model.KindNote, data[0].Kind)
	assert.Equal(t, "[intro] opening remarks", data[0].Text)
	assert.Equal(t, model.KindNote, data[1].Kind)
	assert.False(t, data[1].HasAttachment())
	assert.Equal(t, "[outro]\n\n[attachment: notes/end.txt]", data[1].Text)
	assert.Equal(t, model.KindEquation, data[2].Kind)

	_, err = s.Load()
	require.NoError(t, err)
}
