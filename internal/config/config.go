// Package config loads and persists Aura's configuration.
// Configuration lives at ~/.aura/config.yaml and can be overridden by
// AURA_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration for Aura.
type Config struct {
	LLM     LLMConfig     `mapstructure:"llm" yaml:"llm"`
	Organs  OrgansConfig  `mapstructure:"organs" yaml:"organs"`
	Monitor MonitorConfig `mapstructure:"monitor" yaml:"monitor"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// LLMConfig contains configuration for inference providers.
type LLMConfig struct {
	// DefaultProvider specifies which provider to use by default (e.g., "gemini")
	DefaultProvider string `mapstructure:"default_provider" yaml:"default_provider"`
	// Providers maps provider names to their specific configuration
	Providers map[string]ProviderConfig `mapstructure:"providers" yaml:"providers"`
}

// ProviderConfig contains configuration for a specific inference provider.
type ProviderConfig struct {
	// Endpoint is the API base URL
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint,omitempty"`
	// APIKey is the authentication key for the provider
	APIKey string `mapstructure:"api_key" yaml:"api_key,omitempty"`
	// Model is the specific model to use with this provider
	Model string `mapstructure:"model" yaml:"model,omitempty"`
	// TimeoutSec is the per-call timeout in seconds
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec,omitempty"`
}

// OrgansConfig groups per-organ capture and cache settings.
type OrgansConfig struct {
	Camera     CameraConfig     `mapstructure:"camera" yaml:"camera"`
	Microphone MicrophoneConfig `mapstructure:"microphone" yaml:"microphone"`
	Screenshot ScreenshotConfig `mapstructure:"screenshot" yaml:"screenshot"`
	Document   DocumentConfig   `mapstructure:"document" yaml:"document"`
}

// CameraConfig configures the camera capture bridge.
type CameraConfig struct {
	// Tool is the capture executable probed on startup
	Tool string `mapstructure:"tool" yaml:"tool"`
	// CameraID selects the device passed to the tool
	CameraID int `mapstructure:"camera_id" yaml:"camera_id"`
	// TimeoutSec bounds a single capture
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
	// Dir is where captured photos and their metadata sidecars land
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// MicrophoneConfig configures the microphone capture bridge.
type MicrophoneConfig struct {
	Tool string `mapstructure:"tool" yaml:"tool"`
	// DefaultDurationSec is the recording length used by moment perception
	DefaultDurationSec int    `mapstructure:"default_duration_sec" yaml:"default_duration_sec"`
	Dir                string `mapstructure:"dir" yaml:"dir"`
}

// ScreenshotConfig configures the screenshot capture bridge.
type ScreenshotConfig struct {
	Tool       string `mapstructure:"tool" yaml:"tool"`
	TimeoutSec int    `mapstructure:"timeout_sec" yaml:"timeout_sec"`
	Dir        string `mapstructure:"dir" yaml:"dir"`
	// Retain keeps screenshots on disk after interpretation
	Retain bool `mapstructure:"retain" yaml:"retain"`
}

// DocumentConfig configures document extraction and its cache.
type DocumentConfig struct {
	// CachePath is the SQLite file backing the extraction cache
	CachePath string `mapstructure:"cache_path" yaml:"cache_path"`
	// MaxChars is the truncation ceiling applied to extracted text
	MaxChars int `mapstructure:"max_chars" yaml:"max_chars"`
}

// MonitorConfig configures continuous screen/hearing monitoring.
type MonitorConfig struct {
	// Mode is one of "off", "on_demand", "periodic", "continuous"
	Mode string `mapstructure:"mode" yaml:"mode"`
	// IntervalSec is the pause between iterations
	IntervalSec int `mapstructure:"interval_sec" yaml:"interval_sec"`
	// MaxDurationSec bounds a monitoring session; 0 means unbounded
	MaxDurationSec int `mapstructure:"max_duration_sec" yaml:"max_duration_sec"`
}

// ServerConfig configures the HTTP API facade.
type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
	// JournalPath is the SQLite file backing the conversation journal
	JournalPath string `mapstructure:"journal_path" yaml:"journal_path"`
	// HistoryLimit is the default number of events returned by /api/history
	HistoryLimit int `mapstructure:"history_limit" yaml:"history_limit"`
}

// LoggingConfig contains configuration for application logging.
type LoggingConfig struct {
	// Level is the log level ("debug", "info", "warn", "error")
	Level string `mapstructure:"level" yaml:"level"`
	// File is the path to the log file
	File string `mapstructure:"file" yaml:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	auraDir := filepath.Join(homeDir, ".aura")

	return &Config{
		LLM: LLMConfig{
			DefaultProvider: "gemini",
			Providers: map[string]ProviderConfig{
				"gemini": {
					Model: "gemini-1.5-flash",
				},
			},
		},
		Organs: OrgansConfig{
			Camera: CameraConfig{
				Tool:       "termux-camera-photo",
				CameraID:   0,
				TimeoutSec: 30,
				Dir:        filepath.Join(auraDir, "captures"),
			},
			Microphone: MicrophoneConfig{
				Tool:               "termux-microphone-record",
				DefaultDurationSec: 3,
				Dir:                filepath.Join(auraDir, "captures"),
			},
			Screenshot: ScreenshotConfig{
				Tool:       "termux-screenshot",
				TimeoutSec: 5,
				Dir:        filepath.Join(auraDir, "screens"),
				Retain:     false,
			},
			Document: DocumentConfig{
				CachePath: filepath.Join(auraDir, "extraction.db"),
				MaxChars:  100_000,
			},
		},
		Monitor: MonitorConfig{
			Mode:        "on_demand",
			IntervalSec: 30,
		},
		Server: ServerConfig{
			Host:         "127.0.0.1",
			Port:         8464,
			JournalPath:  filepath.Join(auraDir, "journal.db"),
			HistoryLimit: 50,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  filepath.Join(auraDir, "logs", "aura.log"),
		},
	}
}

// Load reads configuration from the default location (~/.aura/config.yaml).
func Load() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return LoadFromPath(filepath.Join(homeDir, ".aura", "config.yaml"))
}

// LoadFromPath reads configuration from a specific file path and merges with
// environment variables. If the file doesn't exist, it is created with defaults.
func LoadFromPath(path string) (*Config, error) {
	path = expandPath(path)

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := writeConfigFile(path, Default()); err != nil {
			return nil, fmt.Errorf("failed to write default config: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Example: AURA_LLM_PROVIDERS_GEMINI_API_KEY
	v.SetEnvPrefix("AURA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Organs.Document.CachePath = expandPath(cfg.Organs.Document.CachePath)
	cfg.Server.JournalPath = expandPath(cfg.Server.JournalPath)
	cfg.Logging.File = expandPath(cfg.Logging.File)
	cfg.applyDefaults()

	return &cfg, nil
}

// applyDefaults fills in zero values left by a sparse config file.
func (c *Config) applyDefaults() {
	d := Default()

	if c.LLM.DefaultProvider == "" {
		c.LLM.DefaultProvider = d.LLM.DefaultProvider
	}
	if c.Organs.Camera.Tool == "" {
		c.Organs.Camera = d.Organs.Camera
	}
	if c.Organs.Microphone.Tool == "" {
		c.Organs.Microphone = d.Organs.Microphone
	}
	if c.Organs.Screenshot.Tool == "" {
		c.Organs.Screenshot = d.Organs.Screenshot
	}
	if c.Organs.Document.CachePath == "" {
		c.Organs.Document.CachePath = d.Organs.Document.CachePath
	}
	if c.Organs.Document.MaxChars == 0 {
		c.Organs.Document.MaxChars = d.Organs.Document.MaxChars
	}
	if c.Monitor.Mode == "" {
		c.Monitor.Mode = d.Monitor.Mode
	}
	if c.Monitor.IntervalSec == 0 {
		c.Monitor.IntervalSec = d.Monitor.IntervalSec
	}
	if c.Server.Host == "" {
		c.Server.Host = d.Server.Host
	}
	if c.Server.Port == 0 {
		c.Server.Port = d.Server.Port
	}
	if c.Server.JournalPath == "" {
		c.Server.JournalPath = d.Server.JournalPath
	}
	if c.Server.HistoryLimit == 0 {
		c.Server.HistoryLimit = d.Server.HistoryLimit
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
}

// SaveToPath writes the current configuration to a specific file path.
func (c *Config) SaveToPath(path string) error {
	path = expandPath(path)

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return writeConfigFile(path, c)
}

// GetDataDir returns the Aura data directory path (~/.aura).
func (c *Config) GetDataDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".aura")
}

// EnsureDirectories creates all directories Aura writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.GetDataDir(),
		c.Organs.Camera.Dir,
		c.Organs.Microphone.Dir,
		c.Organs.Screenshot.Dir,
		filepath.Dir(c.Organs.Document.CachePath),
		filepath.Dir(c.Server.JournalPath),
		filepath.Dir(c.Logging.File),
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// writeConfigFile serializes a config to YAML on disk.
func writeConfigFile(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := "# Aura configuration\n# Environment overrides: AURA_<SECTION>_<KEY>\n\n"
	if err := os.WriteFile(path, append([]byte(header), data...), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// expandPath expands a leading ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, path[2:])
		}
	}
	return path
}

// LoadEnvFile loads API keys from ~/.aura/.env into the process environment.
// Keys already present in the environment are not overridden.
func LoadEnvFile() {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return
	}

	data, err := os.ReadFile(filepath.Join(homeDir, ".aura", ".env"))
	if err != nil {
		return
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if idx := strings.Index(line, "="); idx > 0 {
			key := strings.TrimSpace(line[:idx])
			value := strings.Trim(strings.TrimSpace(line[idx+1:]), `"'`)
			if os.Getenv(key) == "" && value != "" {
				os.Setenv(key, value)
			}
		}
	}
}
