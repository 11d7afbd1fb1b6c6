package storage

import (
	"encoding/json"
	"fmt"

	"github.com/Tiliavir/labb/internal/model"
	"github.com/Tiliavir/labb/internal/timecalc"
)

// Record discriminators. Every stored object carries one in its "kind" field.
const (
	kindLabbook = "labbook"
	kindBook    = "book"
	kindEntry   = "entry"
	kindDatum   = "datum"
)

// schemaVersion is the labbook record layout written by this package.
const schemaVersion = 1

type record interface {
	recordKind() string
}

type envelope struct {
	Kind string `json:"kind"`
}

type labbookRecord struct {
	Kind    string                     `json:"kind"`
	Schema  int                        `json:"schema"`
	Author  string                     `json:"author"`
	Current *string                    `json:"current_book_name"`
	Books   map[string]json.RawMessage `json:"books"`
}

type bookRecord struct {
	Kind         string   `json:"kind"`
	Name         string   `json:"name"`
	Introduction string   `json:"introduction"`
	Created      string   `json:"created"`
	Entries      []string `json:"entries"`
}

type entryRecord struct {
	Kind      string            `json:"kind"`
	Timestamp string            `json:"timestamp"`
	IsOpen    bool              `json:"is_open"`
	Data      []json.RawMessage `json:"data"`
	Tags      []string          `json:"tags"`
}

type datumRecord struct {
	Kind           string  `json:"kind"`
	ID             string  `json:"id"`
	Type           string  `json:"type"`
	Text           string  `json:"text"`
	AttachmentPath *string `json:"attachment_path"`
	Created        string  `json:"created"`
}

func (*labbookRecord) recordKind() string { return kindLabbook }
func (*bookRecord) recordKind() string    { return kindBook }
func (*entryRecord) recordKind() string   { return kindEntry }
func (*datumRecord) recordKind() string   { return kindDatum }

// decodeRecord reads the discriminator and decodes data into the matching
// record type.
func decodeRecord(data []byte) (record, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	var r record
	switch env.Kind {
	case kindLabbook:
		r = &labbookRecord{}
	case kindBook:
		r = &bookRecord{}
	case kindEntry:
		r = &entryRecord{}
	case kindDatum:
		r = &datumRecord{}
	case "":
		return nil, fmt.Errorf("%w: missing kind", ErrCorrupt)
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrCorrupt, env.Kind)
	}
	if err := json.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("%w: %s record: %v", ErrCorrupt, env.Kind, err)
	}
	return r, nil
}

// decodeAs decodes data and requires the result to be of type T.
func decodeAs[T record](data []byte) (T, error) {
	var zero T
	r, err := decodeRecord(data)
	if err != nil {
		return zero, err
	}
	t, ok := r.(T)
	if !ok {
		return zero, fmt.Errorf("%w: expected %s record, found %s", ErrCorrupt, zero.recordKind(), r.recordKind())
	}
	return t, nil
}

func encodeLabbook(lb *model.Labbook) ([]byte, error) {
	rec := labbookRecord{
		Kind:   kindLabbook,
		Schema: schemaVersion,
		Author: lb.Author,
		Books:  make(map[string]json.RawMessage, len(lb.Books)),
	}
	if lb.Current != "" {
		cur := lb.Current
		rec.Current = &cur
	}
	for name, b := range lb.Books {
		raw, err := json.Marshal(bookToRecord(b))
		if err != nil {
			return nil, fmt.Errorf("storage error marshalling book %q: %w", name, err)
		}
		rec.Books[name] = raw
	}
	return json.MarshalIndent(rec, "", "  ")
}

func bookToRecord(b *model.Book) bookRecord {
	rec := bookRecord{
		Kind:         kindBook,
		Name:         b.Name,
		Introduction: b.Introduction,
		Created:      timecalc.FormatISO(b.Created),
		Entries:      make([]string, 0, len(b.Entries)),
	}
	for _, e := range b.Entries {
		rec.Entries = append(rec.Entries, timecalc.FormatISO(e.Timestamp))
	}
	return rec
}

func encodeEntry(e *model.Entry) ([]byte, error) {
	rec := entryRecord{
		Kind:      kindEntry,
		Timestamp: timecalc.FormatISO(e.Timestamp),
		IsOpen:    e.Open,
		Data:      make([]json.RawMessage, 0, len(e.Data)),
		Tags:      append([]string{}, e.Tags...),
	}
	for _, d := range e.Data {
		raw, err := json.Marshal(datumToRecord(d))
		if err != nil {
			return nil, fmt.Errorf("storage error marshalling datum: %w", err)
		}
		rec.Data = append(rec.Data, raw)
	}
	return json.MarshalIndent(rec, "", "  ")
}

func datumToRecord(d model.Datum) datumRecord {
	rec := datumRecord{
		Kind:    kindDatum,
		ID:      d.ID,
		Type:    string(d.Kind),
		Text:    d.Text,
		Created: timecalc.FormatISO(d.Created),
	}
	if d.HasAttachment() {
		p := d.Attachment
		rec.AttachmentPath = &p
	}
	return rec
}

func (r *entryRecord) toModel() (*model.Entry, error) {
	ts, err := timecalc.ParseISO(r.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("%w: entry: %v", ErrCorrupt, err)
	}
	e := &model.Entry{
		Timestamp: ts,
		Data:      make([]model.Datum, 0, len(r.Data)),
		Tags:      append([]string{}, r.Tags...),
		Open:      r.IsOpen,
	}
	for i, raw := range r.Data {
		dr, err := decodeAs[*datumRecord](raw)
		if err != nil {
			return nil, fmt.Errorf("entry %s datum %d: %w", r.Timestamp, i, err)
		}
		d, err := dr.toModel()
		if err != nil {
			return nil, fmt.Errorf("entry %s datum %d: %w", r.Timestamp, i, err)
		}
		e.Data = append(e.Data, d)
	}
	return e, nil
}

func (r *datumRecord) toModel() (model.Datum, error) {
	kind, err := model.ParseKind(r.Type)
	if err != nil {
		return model.Datum{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	created, err := timecalc.ParseISO(r.Created)
	if err != nil {
		return model.Datum{}, fmt.Errorf("%w: datum: %v", ErrCorrupt, err)
	}
	d := model.Datum{
		ID:      r.ID,
		Kind:    kind,
		Text:    r.Text,
		Created: created,
	}
	if r.AttachmentPath != nil {
		d.Attachment = *r.AttachmentPath
	}
	return d, nil
}
