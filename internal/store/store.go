// Package store persists the session state through pluggable record
// backends.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"nutri-go/internal/model"
	"nutri-go/internal/nutri"
)

// Store implements nutri.Store as JSON documents in a RecordStore.
type Store struct {
	records RecordStore
	logger  nutri.Logger
}

var _ nutri.Store = (*Store)(nil)

func New(records RecordStore, logger nutri.Logger) *Store {
	return &Store{records: records, logger: logger}
}

// Load reads the user and history records. A corrupt user record is
// reported as absent and a corrupt history as empty; both are logged. Only
// backend failures are returned as errors.
func (s *Store) Load() (*model.UserRecord, []model.HistoryEntry, error) {
	user, err := s.loadUser()
	if err != nil {
		return nil, nil, err
	}
	history, err := s.loadHistory()
	if err != nil {
		return nil, nil, err
	}
	return user, history, nil
}

func (s *Store) loadUser() (*model.UserRecord, error) {
	data, err := s.records.Get(RecordUser)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}

	var user model.UserRecord
	if err := json.Unmarshal(data, &user); err != nil {
		repaired, ok := s.decodeUserFields(data)
		if !ok {
			s.logger.Warn("stored user record is corrupt, ignoring it", "error", err)
			return nil, nil
		}
		user = repaired
	}
	if user.Plan == "" {
		user.Plan = model.PlanFree
	}
	return &user, nil
}

// decodeUserFields decodes a user record one field at a time. Fields that
// do not decode keep their zero value. It fails only when data is not a
// JSON object.
func (s *Store) decodeUserFields(data []byte) (model.UserRecord, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return model.UserRecord{}, false
	}

	var user model.UserRecord
	targets := map[string]any{
		"id":              &user.ID,
		"name":            &user.Name,
		"email":           &user.Email,
		"avatarUrl":       &user.AvatarURL,
		"plan":            &user.Plan,
		"dailyUsageCount": &user.DailyUsageCount,
		"lastUsageDate":   &user.LastUsageDate,
	}
	for key, raw := range fields {
		dst, ok := targets[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			s.logger.Warn("stored user field is invalid, using its default", "field", key, "error", err)
		}
	}
	return user, true
}

func (s *Store) loadHistory() ([]model.HistoryEntry, error) {
	data, err := s.records.Get(RecordHistory)
	if errors.Is(err, ErrNotFound) {
		return []model.HistoryEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}

	var history []model.HistoryEntry
	if err := json.Unmarshal(data, &history); err != nil {
		s.logger.Warn("stored history is corrupt, starting empty", "error", err)
		return []model.HistoryEntry{}, nil
	}
	if history == nil {
		history = []model.HistoryEntry{}
	}
	return history, nil
}

func (s *Store) SaveUser(user model.UserRecord) error {
	return s.put(RecordUser, user)
}

func (s *Store) SaveHistory(history []model.HistoryEntry) error {
	if history == nil {
		history = []model.HistoryEntry{}
	}
	return s.put(RecordHistory, history)
}

func (s *Store) put(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	if err := s.records.Put(name, data); err != nil {
		return fmt.Errorf("saving %s: %w", name, err)
	}
	return nil
}

// Clear deletes the user and history records. The stable identity is kept.
func (s *Store) Clear() error {
	var errs []error
	for _, name := range []string{RecordUser, RecordHistory} {
		if err := s.records.Delete(name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Store) StableID() (string, error) {
	data, err := s.records.Get(RecordStableID)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("loading stable id: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *Store) SetStableID(id string) error {
	if err := s.records.Put(RecordStableID, []byte(id)); err != nil {
		return fmt.Errorf("saving stable id: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.records.Close()
}
