package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"nutri-go/internal/config"
	"nutri-go/internal/encryption"
	"nutri-go/internal/model"
	"nutri-go/internal/nutri"
)

func TestStore_EmptyIsFreshInstall(t *testing.T) {
	s := New(NewMemoryRecords(), nutri.NewNopLogger())

	user, history, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if user != nil {
		t.Errorf("user = %+v, want nil", user)
	}
	if history == nil || len(history) != 0 {
		t.Errorf("history = %#v, want empty non-nil", history)
	}
	if id, err := s.StableID(); err != nil || id != "" {
		t.Errorf("StableID() = %q, %v", id, err)
	}
}

func TestStore_SaveLoad(t *testing.T) {
	s := New(NewMemoryRecords(), nutri.NewNopLogger())

	user := model.UserRecord{
		ID:              "google_uid_1a2b3c4d",
		Name:            "Alex Doe",
		Email:           "alex@example.com",
		Plan:            model.PlanPro,
		DailyUsageCount: 2,
		LastUsageDate:   "2024-01-15",
	}
	history := []model.HistoryEntry{{
		ID:        "h1",
		Timestamp: time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC),
		TextInput: "two eggs",
		Data:      model.NutritionalData{FoodName: "Eggs", Calories: 140, Protein: 12},
	}}

	if err := s.SaveUser(user); err != nil {
		t.Fatalf("SaveUser() error = %v", err)
	}
	if err := s.SaveHistory(history); err != nil {
		t.Fatalf("SaveHistory() error = %v", err)
	}

	gotUser, gotHistory, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if gotUser == nil || *gotUser != user {
		t.Errorf("user = %+v, want %+v", gotUser, user)
	}
	if len(gotHistory) != 1 || gotHistory[0].Data != history[0].Data || !gotHistory[0].Timestamp.Equal(history[0].Timestamp) {
		t.Errorf("history = %+v", gotHistory)
	}
}

func TestStore_CorruptRecords(t *testing.T) {
	rs := NewMemoryRecords()
	s := New(rs, nutri.NewNopLogger())

	rs.Put(RecordUser, []byte("{not json"))
	rs.Put(RecordHistory, []byte(`{"oops":true}`))

	user, history, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if user != nil {
		t.Errorf("corrupt user should load as absent, got %+v", user)
	}
	if len(history) != 0 {
		t.Errorf("corrupt history should load as empty, got %+v", history)
	}
}

func TestStore_MissingFieldsTakeDefaults(t *testing.T) {
	rs := NewMemoryRecords()
	s := New(rs, nutri.NewNopLogger())
	rs.Put(RecordUser, []byte(`{"name":"Sam","email":"sam@example.com"}`))

	user, _, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if user == nil {
		t.Fatal("user = nil")
	}
	if user.Plan != model.PlanFree || user.DailyUsageCount != 0 || user.LastUsageDate != "" || user.ID != "" {
		t.Errorf("user = %+v", user)
	}
}

func TestStore_InvalidFieldsTakeDefaults(t *testing.T) {
	tests := []struct {
		name string
		data string
		want model.UserRecord
	}{
		{
			name: "count as string",
			data: `{"id":"google_uid_1a2b3c4d","email":"sam@example.com","plan":"PRO","dailyUsageCount":"2","lastUsageDate":"2024-01-15"}`,
			want: model.UserRecord{ID: "google_uid_1a2b3c4d", Email: "sam@example.com", Plan: model.PlanPro, LastUsageDate: "2024-01-15"},
		},
		{
			name: "plan as number and fractional count",
			data: `{"id":"google_uid_1a2b3c4d","name":"Sam","plan":7,"dailyUsageCount":1.5}`,
			want: model.UserRecord{ID: "google_uid_1a2b3c4d", Name: "Sam", Plan: model.PlanFree},
		},
		{
			name: "id as object",
			data: `{"id":{"v":1},"email":"sam@example.com","dailyUsageCount":2}`,
			want: model.UserRecord{Email: "sam@example.com", Plan: model.PlanFree, DailyUsageCount: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := NewMemoryRecords()
			s := New(rs, nutri.NewNopLogger())
			rs.Put(RecordUser, []byte(tt.data))

			user, _, err := s.Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if user == nil {
				t.Fatal("user = nil, want the record with defaults")
			}
			if *user != tt.want {
				t.Errorf("user = %+v, want %+v", *user, tt.want)
			}
		})
	}

	t.Run("non-object is absent", func(t *testing.T) {
		rs := NewMemoryRecords()
		s := New(rs, nutri.NewNopLogger())
		rs.Put(RecordUser, []byte(`["google_uid_1a2b3c4d"]`))

		user, _, err := s.Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if user != nil {
			t.Errorf("user = %+v, want nil", user)
		}
	})
}

func TestStore_ClearKeepsStableID(t *testing.T) {
	s := New(NewMemoryRecords(), nutri.NewNopLogger())

	s.SetStableID("google_uid_deadbeef")
	s.SaveUser(model.UserRecord{ID: "google_uid_deadbeef"})
	s.SaveHistory([]model.HistoryEntry{{ID: "h1"}})

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	user, history, _ := s.Load()
	if user != nil || len(history) != 0 {
		t.Errorf("after Clear: user = %+v, history = %+v", user, history)
	}
	if id, _ := s.StableID(); id != "google_uid_deadbeef" {
		t.Errorf("StableID() = %q, want it kept", id)
	}
}

func TestStore_Sealed(t *testing.T) {
	rs := NewMemoryRecords()
	enc := encryption.NewTestEncryptor()
	opener, _ := enc.Unlock("")
	sealed, err := NewSealedRecords(rs, enc, opener)
	if err != nil {
		t.Fatalf("NewSealedRecords() error = %v", err)
	}
	s := New(sealed, nutri.NewNopLogger())

	if err := s.SaveUser(model.UserRecord{ID: "u1", Plan: model.PlanFree}); err != nil {
		t.Fatalf("SaveUser() error = %v", err)
	}
	raw, _ := rs.Get(RecordUser)
	if raw[0] == '{' {
		t.Errorf("record stored in plaintext: %q", raw)
	}

	user, _, err := s.Load()
	if err != nil || user == nil || user.ID != "u1" {
		t.Errorf("Load() = %+v, %v", user, err)
	}

	// A record that cannot be decrypted is an error, not a fresh install.
	rs.Put(RecordUser, []byte(`{"id":"plain"}`))
	if _, _, err := s.Load(); err == nil {
		t.Error("expected error for undecryptable record")
	}
}

func TestNewStoreFromConfig(t *testing.T) {
	ctx := context.Background()
	clock := nutri.RealClock{}
	logger := nutri.NewNopLogger()

	t.Run("backends", func(t *testing.T) {
		for _, typ := range []string{"memory", "file", "sqlite"} {
			t.Run(typ, func(t *testing.T) {
				cfg := config.StoreConfig{Type: typ, DataDir: filepath.Join(t.TempDir(), "data")}
				s, err := NewStoreFromConfig(ctx, cfg, nil, nil, clock, logger)
				if err != nil {
					t.Fatalf("NewStoreFromConfig() error = %v", err)
				}
				defer s.Close()
				if err := s.SetStableID("google_uid_12345678"); err != nil {
					t.Fatalf("SetStableID() error = %v", err)
				}
				if id, _ := s.StableID(); id != "google_uid_12345678" {
					t.Errorf("StableID() = %q", id)
				}
			})
		}
	})

	t.Run("errors", func(t *testing.T) {
		cases := []config.StoreConfig{
			{Type: "file"},
			{Type: "sqlite"},
			{Type: "s3"},
			{Type: "floppy"},
		}
		for _, cfg := range cases {
			if _, err := NewStoreFromConfig(ctx, cfg, nil, nil, clock, logger); err == nil {
				t.Errorf("type %q: expected error", cfg.Type)
			}
		}
	})

	t.Run("sealed", func(t *testing.T) {
		enc := encryption.NewTestEncryptor()
		opener, _ := enc.Unlock("")
		s, err := NewStoreFromConfig(ctx, config.StoreConfig{Type: "memory"}, enc, opener, clock, logger)
		if err != nil {
			t.Fatalf("NewStoreFromConfig() error = %v", err)
		}
		if _, ok := s.records.(*SealedRecords); !ok {
			t.Errorf("records = %T, want *SealedRecords", s.records)
		}
	})
}
