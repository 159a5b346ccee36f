package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for nutri.
type Config struct {
	BaseDir    string           `toml:"base_dir"`
	LogDir     string           `toml:"log_dir"`
	Store      StoreConfig      `toml:"store"`
	Encryption EncryptionConfig `toml:"encryption"`
	Endpoints  EndpointsConfig  `toml:"endpoints"`
	Delivery   DeliveryConfig   `toml:"delivery"`
	Inference  InferenceConfig  `toml:"inference"`
	History    HistoryConfig    `toml:"history"`
	Profile    ProfileConfig    `toml:"profile"`
}

// StoreConfig represents configuration for the local persistence store.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type StoreConfig struct {
	Type    string `toml:"type"`               // "sqlite", "file", "memory" or "s3"
	DataDir string `toml:"data_dir,omitempty"` // used for type=sqlite and type=file

	// S3-specific fields (only used when Type == "s3")
	S3Bucket    string `toml:"s3_bucket,omitempty"`
	S3Prefix    string `toml:"s3_prefix,omitempty"`
	S3Region    string `toml:"s3_region,omitempty"`
	S3Endpoint  string `toml:"s3_endpoint,omitempty"` // for S3-compatible services
	S3AccessKey string `toml:"s3_access_key,omitempty"`
	S3SecretKey string `toml:"s3_secret_key,omitempty"`
}

// EncryptionConfig holds the at-rest encryption settings for stored records.
type EncryptionConfig struct {
	Type           string `toml:"type"` // "none" (default), "age" or "test"
	PublicKeyPath  string `toml:"public_key_path"`
	PrivateKeyPath string `toml:"private_key_path"`
}

// EndpointsConfig holds the remote webhook URLs.
type EndpointsConfig struct {
	Status      string   `toml:"status"`
	Sync        string   `toml:"sync"`
	Checkout    string   `toml:"checkout"`
	CallbackURL string   `toml:"callback_url"`
	Timeout     Duration `toml:"timeout"`
}

// DeliveryConfig controls how analysis results are forwarded downstream.
type DeliveryConfig struct {
	Source    string     `toml:"source,omitempty"`
	QueueSize int        `toml:"queue_size,omitempty"`
	Fallback  string     `toml:"fallback,omitempty"` // "http" (default) or "mqtt"
	MQTT      MQTTConfig `toml:"mqtt"`
}

// MQTTConfig holds broker settings for the mqtt delivery fallback.
type MQTTConfig struct {
	Broker   string `toml:"broker"` // host:port
	Topic    string `toml:"topic,omitempty"`
	ClientID string `toml:"client_id,omitempty"`
	Username string `toml:"username,omitempty"`
	Password string `toml:"password,omitempty"`
}

// InferenceConfig configures the nutrition estimation service.
type InferenceConfig struct {
	BaseURL   string `toml:"base_url,omitempty"`
	Model     string `toml:"model,omitempty"`
	APIKeyEnv string `toml:"api_key_env,omitempty"` // environment variable holding the API key
}

// HistoryConfig bounds the local history list.
type HistoryConfig struct {
	MaxEntries int `toml:"max_entries"` // 0 keeps every entry
}

// ProfileConfig is the template used for users created at login.
type ProfileConfig struct {
	Name      string `toml:"name"`
	Email     string `toml:"email"`
	AvatarURL string `toml:"avatar_url"`
}

// Duration is a time.Duration that reads and writes as a string like "15s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", string(text), err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default values applied by NewConfig.
const (
	DefaultMaxHistory = 100
	DefaultQueueSize  = 16
	DefaultAPIKeyEnv  = "GEMINI_API_KEY"
)

// NewConfig creates a new Config rooted at baseDir with default settings.
func NewConfig(baseDir string) *Config {
	return &Config{
		BaseDir: baseDir,
		LogDir:  filepath.Join(baseDir, "log"),
		Store: StoreConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "data"),
		},
		Encryption: EncryptionConfig{
			Type:           "none",
			PublicKeyPath:  filepath.Join(baseDir, "keys", "nutri.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "nutri.key"),
		},
		Endpoints: EndpointsConfig{
			Timeout: Duration{15 * time.Second},
		},
		Delivery: DeliveryConfig{
			Source:    "nutri_cli",
			QueueSize: DefaultQueueSize,
			Fallback:  "http",
		},
		Inference: InferenceConfig{
			Model:     "gemini-2.5-flash",
			APIKeyEnv: DefaultAPIKeyEnv,
		},
		History: HistoryConfig{MaxEntries: DefaultMaxHistory},
		Profile: ProfileConfig{
			Name:      "Alex Doe",
			Email:     "alex.doe@example.com",
			AvatarURL: "https://picsum.photos/100/100",
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// The file may hold S3 and MQTT credentials.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
