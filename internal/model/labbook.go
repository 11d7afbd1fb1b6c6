package model

import (
	"fmt"
	"sort"
	"time"
)

// Labbook is the aggregate root: it owns every book and tracks the current one.
type Labbook struct {
	Author  string
	Books   map[string]*Book
	Current string
}

// BookStatus is one row of ListBooks.
type BookStatus struct {
	Name    string
	Current bool
	Open    bool
}

// New returns an empty labbook for author.
func New(author string) *Labbook {
	return &Labbook{
		Author: author,
		Books:  map[string]*Book{},
	}
}

// Book returns the named book.
func (l *Labbook) Book(name string) (*Book, error) {
	b, ok := l.Books[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBookNotFound, name)
	}
	return b, nil
}

// CurrentBook returns the current book or nil when none is selected.
func (l *Labbook) CurrentBook() *Book {
	if l.Current == "" {
		return nil
	}
	return l.Books[l.Current]
}

// SelectOrCreateBook makes name the current book, creating it first when it
// does not exist. intro is only called for new books. Switching away from a
// book with an open entry fails with ErrInvalidTransition.
func (l *Labbook) SelectOrCreateBook(name string, intro func() (string, error), now time.Time) (bool, error) {
	if cur := l.CurrentBook(); cur != nil && cur.Name != name && cur.IsOpen() {
		return false, fmt.Errorf("%w: close the open entry in %q before switching to %q", ErrInvalidTransition, cur.Name, name)
	}
	if _, ok := l.Books[name]; ok {
		l.Current = name
		return false, nil
	}
	if err := ValidateBookName(name); err != nil {
		return false, err
	}
	text, err := intro()
	if err != nil {
		return false, err
	}
	l.Books[name] = &Book{
		Name:         name,
		Introduction: text,
		Created:      now.UTC(),
		Entries:      []*Entry{},
	}
	l.Current = name
	return true, nil
}

// OpenEntry starts a new entry in the current book.
func (l *Labbook) OpenEntry(now time.Time) (*Entry, error) {
	b := l.CurrentBook()
	if b == nil {
		return nil, ErrNoCurrentBook
	}
	return b.openEntry(now)
}

// CloseEntry closes the open entry of the current book.
func (l *Labbook) CloseEntry() (*Entry, error) {
	e, err := l.openEntry()
	if err != nil {
		return nil, err
	}
	if err := e.close(); err != nil {
		return nil, err
	}
	return e, nil
}

// AppendDatum appends d to the open entry of the current book.
func (l *Labbook) AppendDatum(d Datum) (*Entry, error) {
	e, err := l.openEntry()
	if err != nil {
		return nil, err
	}
	if err := e.appendDatum(d); err != nil {
		return nil, err
	}
	return e, nil
}

// AppendTag appends a trimmed, non-empty tag to the open entry.
func (l *Labbook) AppendTag(tag string) (*Entry, error) {
	e, err := l.openEntry()
	if err != nil {
		return nil, err
	}
	if err := e.appendTag(tag); err != nil {
		return nil, err
	}
	return e, nil
}

// OpenEntryOfCurrent returns the open entry of the current book.
func (l *Labbook) OpenEntryOfCurrent() (*Book, *Entry, error) {
	e, err := l.openEntry()
	if err != nil {
		return nil, nil, err
	}
	return l.CurrentBook(), e, nil
}

// openEntry returns the entry data and tags go to. Without a current book
// nothing is open, so the error matches both ErrNoOpenEntry and
// ErrNoCurrentBook.
func (l *Labbook) openEntry() (*Entry, error) {
	b := l.CurrentBook()
	if b == nil {
		return nil, fmt.Errorf("%w: %w", ErrNoOpenEntry, ErrNoCurrentBook)
	}
	e := b.OpenEntry()
	if e == nil {
		return nil, ErrNoOpenEntry
	}
	return e, nil
}

// SortedBooks returns the books ordered by creation time, then name.
func (l *Labbook) SortedBooks() []*Book {
	books := make([]*Book, 0, len(l.Books))
	for _, b := range l.Books {
		books = append(books, b)
	}
	sort.Slice(books, func(i, j int) bool {
		if !books[i].Created.Equal(books[j].Created) {
			return books[i].Created.Before(books[j].Created)
		}
		return books[i].Name < books[j].Name
	})
	return books
}

// ListBooks reports every book in creation order.
func (l *Labbook) ListBooks() []BookStatus {
	var out []BookStatus
	for _, b := range l.SortedBooks() {
		out = append(out, BookStatus{
			Name:    b.Name,
			Current: b.Name == l.Current,
			Open:    b.IsOpen(),
		})
	}
	return out
}

// Validate checks the labbook invariants.
func (l *Labbook) Validate() error {
	if l.Current != "" {
		if _, ok := l.Books[l.Current]; !ok {
			return fmt.Errorf("current book %q does not exist", l.Current)
		}
	}
	for name, b := range l.Books {
		if b == nil {
			return fmt.Errorf("book %q is nil", name)
		}
		if b.Name != name {
			return fmt.Errorf("book %q is registered as %q", b.Name, name)
		}
		if err := b.validate(); err != nil {
			return err
		}
		if b.IsOpen() && name != l.Current {
			return fmt.Errorf("book %q has an open entry but is not current", name)
		}
	}
	return nil
}
