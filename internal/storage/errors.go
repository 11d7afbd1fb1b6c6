package storage

import "errors"

// Sentinel errors returned by the Store.
var (
	// ErrNotInitialized is returned when no labbook exists under the storage root.
	ErrNotInitialized = errors.New("labb has not been initialized")
	// ErrAlreadyInitialized is returned by Init when a labbook already exists.
	ErrAlreadyInitialized = errors.New("labb is already initialized")
	// ErrCorrupt is returned when a stored record cannot be decoded or has the wrong kind.
	ErrCorrupt = errors.New("corrupt record")
	// ErrUnsupportedSchema is returned for labbooks written by a newer version.
	ErrUnsupportedSchema = errors.New("unsupported schema version")
	// ErrLegacySchema is returned by Load when the labbook still uses the original layout.
	ErrLegacySchema = errors.New("labbook uses the legacy layout; run 'labb upgrade'")
	// ErrAttachmentNotFound is returned when an attachment source file does not exist.
	ErrAttachmentNotFound = errors.New("attachment not found")
	// ErrAttachmentExists is returned when an entry already stores a file with the same name.
	ErrAttachmentExists = errors.New("attachment already exists")
)
