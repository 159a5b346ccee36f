package encryption

import (
	"bytes"
	"path/filepath"
	"testing"

	"nutri-go/internal/config"
)

func newTestAgeEncryptor(t *testing.T) *AgeEncryptor {
	t.Helper()
	dir := t.TempDir()
	return NewAgeEncryptor(config.EncryptionConfig{
		Type:           "age",
		PublicKeyPath:  filepath.Join(dir, "keys", "nutri.pub"),
		PrivateKeyPath: filepath.Join(dir, "keys", "nutri.key"),
	})
}

func TestAgeEncryptor_Setup(t *testing.T) {
	t.Parallel()
	e := newTestAgeEncryptor(t)

	if e.IsConfigured() {
		t.Fatal("IsConfigured() = true before Setup")
	}
	if err := e.Setup(""); err == nil {
		t.Error("Setup(\"\") should reject an empty passphrase")
	}
	if err := e.Setup("correct horse"); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if !e.IsConfigured() {
		t.Error("IsConfigured() = false after Setup")
	}
	if err := e.Setup("again"); err == nil {
		t.Error("second Setup() should refuse to overwrite keys")
	}
}

func TestAgeEncryptor_SealOpen(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input []byte
	}{
		{name: "user record", input: []byte(`{"id":"google_uid_1a2b3c4d","plan":"FREE"}`)},
		{name: "empty", input: []byte{}},
		{name: "large history", input: bytes.Repeat([]byte(`{"foodName":"apple"},`), 5000)},
	}

	e := newTestAgeEncryptor(t)
	if err := e.Setup("pass"); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	opener, err := e.Unlock("pass")
	if err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sealed, err := e.Seal(tt.input)
			if err != nil {
				t.Fatalf("Seal() error = %v", err)
			}
			if !bytes.HasPrefix(sealed, []byte("-----BEGIN AGE ENCRYPTED FILE-----")) {
				t.Errorf("sealed record is not armored: %q", sealed[:min(len(sealed), 40)])
			}
			if len(tt.input) > 0 && bytes.Contains(sealed, tt.input) {
				t.Error("sealed record contains the plaintext")
			}

			got, err := opener.Open(sealed)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			if !bytes.Equal(got, tt.input) {
				t.Errorf("round-trip mismatch: got %d bytes, want %d", len(got), len(tt.input))
			}
		})
	}
}

func TestAgeEncryptor_UnlockWrongPassphrase(t *testing.T) {
	t.Parallel()

	e := newTestAgeEncryptor(t)
	if err := e.Setup("correct"); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if _, err := e.Unlock("wrong"); err == nil {
		t.Error("Unlock() with wrong passphrase should fail")
	}
}

func TestAgeEncryptor_BeforeSetup(t *testing.T) {
	t.Parallel()

	e := newTestAgeEncryptor(t)
	if _, err := e.Seal([]byte("data")); err == nil {
		t.Error("Seal() before Setup should fail")
	}
	if _, err := e.Unlock("pass"); err == nil {
		t.Error("Unlock() before Setup should fail")
	}
}

func TestAgeOpener_RejectsGarbage(t *testing.T) {
	t.Parallel()

	e := newTestAgeEncryptor(t)
	if err := e.Setup("pass"); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	opener, err := e.Unlock("pass")
	if err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}
	if _, err := opener.Open([]byte(`{"plain":"json"}`)); err == nil {
		t.Error("Open() of plaintext should fail")
	}
}
