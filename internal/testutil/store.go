package testutil

import (
	"errors"
	"sync"

	"nutri-go/internal/model"
	"nutri-go/internal/nutri"
	"nutri-go/internal/store"
)

// NewTestStore creates a Store over in-memory records. The records are
// returned too so tests can inspect or corrupt them.
func NewTestStore() (*store.Store, *store.MemoryRecords) {
	records := store.NewMemoryRecords()
	return store.New(records, nutri.NewNopLogger()), records
}

// ErrStoreFailure is returned by FailingStore writes.
var ErrStoreFailure = errors.New("simulated store failure")

// FailingStore wraps a Store and fails writes while Fail is set.
type FailingStore struct {
	nutri.Store

	mu   sync.Mutex
	fail bool
}

func NewFailingStore(inner nutri.Store) *FailingStore {
	return &FailingStore{Store: inner}
}

// SetFail turns write failures on or off.
func (s *FailingStore) SetFail(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = fail
}

func (s *FailingStore) failing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fail
}

func (s *FailingStore) SaveUser(user model.UserRecord) error {
	if s.failing() {
		return ErrStoreFailure
	}
	return s.Store.SaveUser(user)
}

func (s *FailingStore) SaveHistory(history []model.HistoryEntry) error {
	if s.failing() {
		return ErrStoreFailure
	}
	return s.Store.SaveHistory(history)
}
