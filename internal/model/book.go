package model

import (
	"fmt"
	"strings"
	"time"
)

// Book is a named, chronologically ordered collection of entries.
type Book struct {
	Name         string
	Introduction string
	Created      time.Time
	Entries      []*Entry
}

// ValidateBookName checks that name can be used as a single storage
// directory component.
func ValidateBookName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: empty name", ErrInvalidBookName)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidBookName, name)
	case strings.ContainsAny(name, `/\`+"\x00"):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidBookName, name)
	case strings.HasPrefix(name, "."):
		return fmt.Errorf("%w: %q starts with a dot", ErrInvalidBookName, name)
	}
	return nil
}

// OpenEntry returns the open entry of the book, or nil. Only the last
// entry can be open.
func (b *Book) OpenEntry() *Entry {
	if len(b.Entries) == 0 {
		return nil
	}
	last := b.Entries[len(b.Entries)-1]
	if !last.Open {
		return nil
	}
	return last
}

// IsOpen reports whether the book has an open entry.
func (b *Book) IsOpen() bool {
	return b.OpenEntry() != nil
}

func (b *Book) openEntry(now time.Time) (*Entry, error) {
	if b.IsOpen() {
		return nil, ErrEntryAlreadyOpen
	}
	now = now.UTC()
	if n := len(b.Entries); n > 0 && !now.After(b.Entries[n-1].Timestamp) {
		return nil, fmt.Errorf("%w: %s", ErrTimestampCollision, now.Format(time.RFC3339Nano))
	}
	e := newEntry(now)
	b.Entries = append(b.Entries, e)
	return e, nil
}

func (b *Book) validate() error {
	if err := ValidateBookName(b.Name); err != nil {
		return err
	}
	for i, e := range b.Entries {
		if e.Open && i != len(b.Entries)-1 {
			return fmt.Errorf("book %q: entry %s is open but not the latest", b.Name, e.Timestamp.Format(time.RFC3339Nano))
		}
		if i > 0 && !e.Timestamp.After(b.Entries[i-1].Timestamp) {
			return fmt.Errorf("book %q: entries out of order at %s", b.Name, e.Timestamp.Format(time.RFC3339Nano))
		}
		for _, d := range e.Data {
			if err := d.validate(); err != nil {
				return fmt.Errorf("book %q: entry %s: %w", b.Name, e.Timestamp.Format(time.RFC3339Nano), err)
			}
		}
	}
	return nil
}
