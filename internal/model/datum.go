package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind is the content type of a Datum.
type Kind string

const (
	KindNote     Kind = "note"
	KindCitation Kind = "citation"
	KindEquation Kind = "equation"
	KindImage    Kind = "image"
	KindCode     Kind = "code"
	KindTable    Kind = "table"
)

// Kinds lists every datum kind in display order.
var Kinds = []Kind{KindNote, KindCitation, KindEquation, KindImage, KindCode, KindTable}

// ParseKind converts s into a Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// FileBacked reports whether data of this kind reference an attachment file.
func (k Kind) FileBacked() bool {
	return k == KindImage || k == KindCode
}

// Datum is one typed content item of an entry. It is never modified after
// creation.
type Datum struct {
	ID      string
	Kind    Kind
	Text    string
	Created time.Time
	// Attachment is the stored file path relative to the storage root.
	// Empty unless Kind is file-backed.
	Attachment string
}

// NewDatum builds a Datum and checks that an attachment is given exactly
// when the kind is file-backed.
func NewDatum(kind Kind, text, attachment string, now time.Time) (Datum, error) {
	if err := checkAttachment(kind, attachment); err != nil {
		return Datum{}, err
	}
	return Datum{
		ID:         uuid.New().String(),
		Kind:       kind,
		Text:       text,
		Created:    now.UTC(),
		Attachment: attachment,
	}, nil
}

// HasAttachment reports whether the datum references a stored file.
func (d Datum) HasAttachment() bool {
	return d.Attachment != ""
}

func (d Datum) validate() error {
	return checkAttachment(d.Kind, d.Attachment)
}

func checkAttachment(kind Kind, attachment string) error {
	if _, err := ParseKind(string(kind)); err != nil {
		return err
	}
	switch {
	case kind.FileBacked() && attachment == "":
		return fmt.Errorf("%w: %s", ErrAttachmentRequired, kind)
	case !kind.FileBacked() && attachment != "":
		return fmt.Errorf("%w: %s", ErrUnexpectedAttachment, kind)
	}
	return nil
}
