package store

import "errors"

// Record names.
const (
	RecordUser     = "user"
	RecordHistory  = "history"
	RecordStableID = "stable_id"
)

// ErrNotFound is returned by RecordStore.Get for a record that was never
// written or has been deleted.
var ErrNotFound = errors.New("record not found")

// RecordStore is a byte-level store of named records. Every backend
// implements it; Store adds the JSON codec and encryption on top.
type RecordStore interface {
	// Get returns the record's bytes, or ErrNotFound.
	Get(name string) ([]byte, error)

	// Put replaces the record. Readers never observe a partial write.
	Put(name string, data []byte) error

	// Delete removes the record. Deleting an absent record is not an error.
	Delete(name string) error

	Close() error
}
