package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Environment variables read by GetDefaults.
const (
	EnvConfigPath = "NUTRI_CONFIG_PATH"
	EnvHome       = "NUTRI_HOME"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - NUTRI_CONFIG_PATH: config file location (default: ~/.config/nutri.toml)
//   - NUTRI_HOME: base directory for nutri data (default: ~/.local/share/nutri)
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
	}, nil
}

// LoadDotEnv loads variables from the given .env files (".env" when none are
// named) without overriding ones already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

func getConfigPath() (string, error) {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "nutri.toml"), nil
}

// getBaseDir follows XDG: data lives under ~/.local/share/nutri unless NUTRI_HOME is set.
func getBaseDir() (string, error) {
	if path := os.Getenv(EnvHome); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "nutri"), nil
}
