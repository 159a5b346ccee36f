package nutri

import "nutri-go/internal/model"

// Store persists the session state between runs.
//
// Two records make up the session: the user profile and the history list.
// Either may be absent, which is a fresh install rather than an error. The
// device-scoped stable identity is kept apart from them so that it survives
// Clear.
type Store interface {
	// Load returns the persisted user (nil when absent) and history.
	// Corrupt records are reported as absent; fields missing from a stored
	// user record take their zero defaults (plan FREE, count 0).
	Load() (*model.UserRecord, []model.HistoryEntry, error)

	// SaveUser persists the user record, replacing any previous one.
	SaveUser(user model.UserRecord) error

	// SaveHistory persists the history list, replacing any previous one.
	SaveHistory(history []model.HistoryEntry) error

	// Clear removes the user record and history. The stable identity is kept.
	Clear() error

	// StableID returns the persisted device identity, or "" if none exists.
	StableID() (string, error)

	// SetStableID persists the device identity.
	SetStableID(id string) error

	// Close releases any resources held by the store.
	Close() error
}
