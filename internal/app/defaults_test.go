package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetDefaults(t *testing.T) {
	t.Run("uses env vars when set", func(t *testing.T) {
		t.Setenv(EnvConfigPath, "/custom/nutri.toml")
		t.Setenv(EnvHome, "/custom/nutri")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		if defaults["config_path"] != "/custom/nutri.toml" {
			t.Errorf("config_path = %q, want %q", defaults["config_path"], "/custom/nutri.toml")
		}
		if defaults["base_dir"] != "/custom/nutri" {
			t.Errorf("base_dir = %q, want %q", defaults["base_dir"], "/custom/nutri")
		}
		if defaults["log_dir"] != "/custom/nutri/log" {
			t.Errorf("log_dir = %q, want %q", defaults["log_dir"], "/custom/nutri/log")
		}
	})

	t.Run("falls back to home dir defaults", func(t *testing.T) {
		t.Setenv(EnvConfigPath, "")
		t.Setenv(EnvHome, "")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		homeDir, _ := os.UserHomeDir()

		wantConfig := filepath.Join(homeDir, ".config", "nutri.toml")
		if defaults["config_path"] != wantConfig {
			t.Errorf("config_path = %q, want %q", defaults["config_path"], wantConfig)
		}

		wantBase := filepath.Join(homeDir, ".local", "share", "nutri")
		if defaults["base_dir"] != wantBase {
			t.Errorf("base_dir = %q, want %q", defaults["base_dir"], wantBase)
		}

		wantLog := filepath.Join(wantBase, "log")
		if defaults["log_dir"] != wantLog {
			t.Errorf("log_dir = %q, want %q", defaults["log_dir"], wantLog)
		}
	})
}

func TestLoadDotEnv(t *testing.T) {
	t.Run("loads variables without overriding", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(path, []byte("NUTRI_TEST_DOTENV_A=from-file\nNUTRI_TEST_DOTENV_B=from-file\n"), 0600); err != nil {
			t.Fatal(err)
		}
		t.Setenv("NUTRI_TEST_DOTENV_A", "")
		os.Unsetenv("NUTRI_TEST_DOTENV_A")
		t.Setenv("NUTRI_TEST_DOTENV_B", "from-env")

		if err := LoadDotEnv(path); err != nil {
			t.Fatalf("LoadDotEnv() error = %v", err)
		}
		if got := os.Getenv("NUTRI_TEST_DOTENV_A"); got != "from-file" {
			t.Errorf("A = %q, want from-file", got)
		}
		if got := os.Getenv("NUTRI_TEST_DOTENV_B"); got != "from-env" {
			t.Errorf("B = %q, want from-env", got)
		}
	})

	t.Run("ignores missing file", func(t *testing.T) {
		if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
			t.Errorf("LoadDotEnv() error = %v, want nil", err)
		}
	})
}
