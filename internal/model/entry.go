package model

import (
	"strings"
	"time"
)

// Entry is one logbook session. Data and tags can only be appended while
// the entry is open, and a closed entry is never reopened.
type Entry struct {
	Timestamp time.Time
	Data      []Datum
	Tags      []string
	Open      bool
}

func newEntry(now time.Time) *Entry {
	return &Entry{
		Timestamp: now.UTC(),
		Data:      []Datum{},
		Tags:      []string{},
		Open:      true,
	}
}

func (e *Entry) appendDatum(d Datum) error {
	if !e.Open {
		return ErrNoOpenEntry
	}
	if err := d.validate(); err != nil {
		return err
	}
	e.Data = append(e.Data, d)
	return nil
}

func (e *Entry) appendTag(tag string) error {
	if !e.Open {
		return ErrNoOpenEntry
	}
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return ErrEmptyTag
	}
	e.Tags = append(e.Tags, tag)
	return nil
}

func (e *Entry) close() error {
	if !e.Open {
		return ErrNoOpenEntry
	}
	e.Open = false
	return nil
}
