package model

import "errors"

// Errors returned by the labbook state machine.
var (
	// ErrNoCurrentBook is returned when an operation needs a current book and none is selected.
	ErrNoCurrentBook = errors.New("no book selected")
	// ErrNoOpenEntry is returned when data or tags target a book without an open entry.
	ErrNoOpenEntry = errors.New("there is no open entry")
	// ErrEntryAlreadyOpen is returned when opening an entry while another one is open.
	ErrEntryAlreadyOpen = errors.New("there is already an open entry")
	// ErrInvalidTransition is returned when switching books while an entry is open.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrEmptyTag is returned for blank tags.
	ErrEmptyTag = errors.New("tag cannot be empty")
	// ErrBookNotFound is returned when a book name is not in the labbook.
	ErrBookNotFound = errors.New("book not found")
	// ErrInvalidBookName is returned for names that cannot be used as a storage directory.
	ErrInvalidBookName = errors.New("invalid book name")
	// ErrTimestampCollision is returned when a new entry would not sort after the previous one.
	ErrTimestampCollision = errors.New("entry timestamp collides with an existing entry")

	ErrUnknownKind          = errors.New("unknown datum kind")
	ErrAttachmentRequired   = errors.New("datum kind requires an attachment")
	ErrUnexpectedAttachment = errors.New("datum kind does not take an attachment")
)
