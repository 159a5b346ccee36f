package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		BaseDir: "/home/user/.local/share/nutri",
		LogDir:  "/home/user/.local/share/nutri/log",
		Store: StoreConfig{
			Type:     "s3",
			S3Bucket: "meals",
			S3Prefix: "alex",
			S3Region: "eu-west-1",
		},
		Encryption: EncryptionConfig{
			Type:           "age",
			PublicKeyPath:  "/home/user/.local/share/nutri/keys/nutri.pub",
			PrivateKeyPath: "/home/user/.local/share/nutri/keys/nutri.key",
		},
		Endpoints: EndpointsConfig{
			Status:   "https://hooks.example.com/status",
			Sync:     "https://hooks.example.com/sync",
			Checkout: "https://hooks.example.com/checkout",
			Timeout:  Duration{30 * time.Second},
		},
		Delivery: DeliveryConfig{
			Source:    "nutri_cli",
			QueueSize: 8,
			Fallback:  "mqtt",
			MQTT:      MQTTConfig{Broker: "localhost:1883", Topic: "nutri/analyses"},
		},
		History: HistoryConfig{MaxEntries: 50},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.BaseDir != original.BaseDir {
		t.Errorf("BaseDir = %q, want %q", got.BaseDir, original.BaseDir)
	}
	if got.Store.Type != "s3" || got.Store.S3Bucket != "meals" || got.Store.S3Prefix != "alex" {
		t.Errorf("Store = %+v", got.Store)
	}
	if got.Encryption.Type != "age" {
		t.Errorf("Encryption.Type = %q, want %q", got.Encryption.Type, "age")
	}
	if got.Endpoints.Sync != original.Endpoints.Sync {
		t.Errorf("Endpoints.Sync = %q, want %q", got.Endpoints.Sync, original.Endpoints.Sync)
	}
	if got.Endpoints.Timeout.Duration != 30*time.Second {
		t.Errorf("Endpoints.Timeout = %v, want 30s", got.Endpoints.Timeout.Duration)
	}
	if got.Delivery.Fallback != "mqtt" || got.Delivery.MQTT.Broker != "localhost:1883" {
		t.Errorf("Delivery = %+v", got.Delivery)
	}
	if got.History.MaxEntries != 50 {
		t.Errorf("History.MaxEntries = %d, want 50", got.History.MaxEntries)
	}
}

func TestManager_Read_Duration(t *testing.T) {
	m := &Manager{}

	cfg, err := m.Read(strings.NewReader("[endpoints]\ntimeout = \"2m\"\n"))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if cfg.Endpoints.Timeout.Duration != 2*time.Minute {
		t.Errorf("Timeout = %v, want 2m", cfg.Endpoints.Timeout.Duration)
	}

	if _, err := m.Read(strings.NewReader("[endpoints]\ntimeout = \"soon\"\n")); err == nil {
		t.Error("Read() expected error for invalid duration")
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/data/nutri")

	if cfg.BaseDir != "/data/nutri" {
		t.Errorf("BaseDir = %q, want %q", cfg.BaseDir, "/data/nutri")
	}
	if cfg.LogDir != "/data/nutri/log" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, "/data/nutri/log")
	}
	if cfg.Store.Type != "sqlite" || cfg.Store.DataDir != "/data/nutri/data" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Encryption.Type != "none" {
		t.Errorf("Encryption.Type = %q, want none", cfg.Encryption.Type)
	}
	if cfg.Encryption.PublicKeyPath != "/data/nutri/keys/nutri.pub" {
		t.Errorf("Encryption.PublicKeyPath = %q", cfg.Encryption.PublicKeyPath)
	}
	if cfg.Delivery.Source != "nutri_cli" || cfg.Delivery.QueueSize != DefaultQueueSize {
		t.Errorf("Delivery = %+v", cfg.Delivery)
	}
	if cfg.History.MaxEntries != DefaultMaxHistory {
		t.Errorf("History.MaxEntries = %d, want %d", cfg.History.MaxEntries, DefaultMaxHistory)
	}
	if cfg.Inference.APIKeyEnv != DefaultAPIKeyEnv {
		t.Errorf("Inference.APIKeyEnv = %q", cfg.Inference.APIKeyEnv)
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "nutri.toml")

		if err := Init(path, NewConfig(dir)); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("config file not created: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("permissions = %o, want 600", perm)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "nutri.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}
		if err := Init(path, cfg); err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "nutri.toml")
		cfg := NewConfig(dir)
		cfg.Store = StoreConfig{Type: "memory"}
		cfg.Endpoints.Status = "https://hooks.example.com/status"

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.Store.Type != "memory" {
			t.Errorf("Store.Type = %q, want memory", got.Store.Type)
		}
		if got.Endpoints.Status != cfg.Endpoints.Status {
			t.Errorf("Endpoints.Status = %q", got.Endpoints.Status)
		}
		if got.Endpoints.Timeout.Duration != 15*time.Second {
			t.Errorf("Endpoints.Timeout = %v, want 15s", got.Endpoints.Timeout.Duration)
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		if _, err := ReadFromFile("/nonexistent/path/nutri.toml"); err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}
