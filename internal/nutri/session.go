package nutri

import (
	"fmt"
	"sync"

	"nutri-go/internal/model"
)

// Session is the single source of truth for the signed-in user and the
// history list. All mutations go through it as snapshot transforms and are
// persisted to the Store before the session lock is released, so storage
// writes are ordered after the change they record.
//
// The epoch changes whenever the signed-in user is replaced (login, logout,
// shutdown). Asynchronous work remembers the epoch it started in and its
// result is dropped when the epoch has moved on.
type Session struct {
	mu         sync.Mutex
	store      Store
	user       *model.UserRecord
	history    []model.HistoryEntry
	epoch      uint64
	maxHistory int
}

// NewSession creates an empty, unauthenticated session. maxHistory bounds the
// history list (newest entries are kept); zero means unbounded.
func NewSession(store Store, maxHistory int) *Session {
	return &Session{store: store, maxHistory: maxHistory}
}

// Epoch returns the current session epoch.
func (s *Session) Epoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// Authenticated reports whether a user is signed in.
func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil
}

// User returns a copy of the signed-in user and the epoch it belongs to.
func (s *Session) User() (model.UserRecord, uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return model.UserRecord{}, s.epoch, false
	}
	return *s.user, s.epoch, true
}

// History returns a copy of the history list, newest first.
func (s *Session) History() []model.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.HistoryEntry(nil), s.history...)
}

// Start replaces the session contents with the given user and history,
// starts a new epoch and persists both records.
func (s *Session) Start(user model.UserRecord, history []model.HistoryEntry) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.epoch++
	s.user = &user
	s.history = s.bound(append([]model.HistoryEntry(nil), history...))

	if err := s.store.SaveUser(user); err != nil {
		return s.epoch, fmt.Errorf("saving user: %w", err)
	}
	if err := s.store.SaveHistory(s.history); err != nil {
		return s.epoch, fmt.Errorf("saving history: %w", err)
	}
	return s.epoch, nil
}

// End signs the user out: the in-memory state is dropped, the epoch moves on
// and the persisted user and history records are cleared.
func (s *Session) End() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.epoch++
	s.user = nil
	s.history = nil
	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("clearing store: %w", err)
	}
	return nil
}

// Detach moves the epoch on without touching state, so results of work still
// in flight are ignored. Used on shutdown.
func (s *Session) Detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
}

// UpdateUser applies fn to the current user snapshot and persists the result.
// It returns the snapshots before and after the change. applied is false when
// nobody is signed in or epoch is stale; in that case nothing changes.
// The change stays committed in memory even if persisting it fails.
func (s *Session) UpdateUser(epoch uint64, fn func(model.UserRecord) model.UserRecord) (prev, next model.UserRecord, applied bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil || epoch != s.epoch {
		return model.UserRecord{}, model.UserRecord{}, false, nil
	}

	prev = *s.user
	next = fn(prev)
	if next == prev {
		return prev, next, true, nil
	}
	s.user = &next

	if err := s.store.SaveUser(next); err != nil {
		return prev, next, true, fmt.Errorf("saving user: %w", err)
	}
	return prev, next, true, nil
}

// AddEntry prepends entry to the history and persists the list. It reports
// false when epoch is stale.
func (s *Session) AddEntry(epoch uint64, entry model.HistoryEntry) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil || epoch != s.epoch {
		return false, nil
	}

	history := make([]model.HistoryEntry, 0, len(s.history)+1)
	history = append(history, entry)
	history = append(history, s.history...)
	s.history = s.bound(history)

	if err := s.store.SaveHistory(s.history); err != nil {
		return true, fmt.Errorf("saving history: %w", err)
	}
	return true, nil
}

func (s *Session) bound(history []model.HistoryEntry) []model.HistoryEntry {
	if s.maxHistory > 0 && len(history) > s.maxHistory {
		return history[:s.maxHistory]
	}
	return history
}
