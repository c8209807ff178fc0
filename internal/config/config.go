// File: internal/config/config.go

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/berrythewa/quicklaunch/internal/types"
	"gopkg.in/yaml.v3"
)

var (
	// ErrNoTargets is returned by Validate when no target is configured
	ErrNoTargets = errors.New("no targets configured")

	// Overridable in tests
	getConfigDir      = defaultConfigDir
	getDefaultDataDir = defaultDataDir
)

// ConfigPaths holds all relevant paths for the application
type ConfigPaths struct {
	BaseDir      string `json:"base_dir" yaml:"base_dir"`           // Base directory for config files
	ActiveConfig string `json:"active_config" yaml:"active_config"` // Path to the config file
	DataDir      string `json:"data_dir" yaml:"data_dir"`           // Directory for application data
	DBFile       string `json:"db_file" yaml:"db_file"`             // Path to the history database
	LogDir       string `json:"log_dir" yaml:"log_dir"`             // Directory for log files
}

// Config holds all application configuration
type Config struct {
	// Launch targets, in display order
	Targets []types.Target `json:"targets" yaml:"targets"`

	// Remote suggestion options
	Suggest SuggestConfig `json:"suggest" yaml:"suggest"`

	// Single instance channel
	IPC IPCConfig `json:"ipc" yaml:"ipc"`

	// Per-target argument history
	History HistoryConfig `json:"history" yaml:"history"`

	// Global activation hotkey
	Hotkey HotkeyConfig `json:"hotkey" yaml:"hotkey"`

	// Programs used to launch commands
	Launch LaunchConfig `json:"launch" yaml:"launch"`

	// Frontend is one of "tui", "gui" or "line"
	Frontend string `json:"frontend" yaml:"frontend"`

	// Logging configuration
	Log LogConfig `json:"log" yaml:"log"`

	// System paths are computed at load time and never written back
	SystemPaths ConfigPaths `json:"-" yaml:"-"`
}

// SuggestConfig holds remote suggestion settings
type SuggestConfig struct {
	Enabled      bool          `json:"enabled" yaml:"enabled"`
	Timeout      time.Duration `json:"timeout" yaml:"timeout"`
	UserAgent    string        `json:"user_agent" yaml:"user_agent"`
	MaxBodyBytes int64         `json:"max_body_bytes" yaml:"max_body_bytes"`
}

// IPCConfig holds single instance socket settings
type IPCConfig struct {
	SocketPath  string        `json:"socket_path" yaml:"socket_path"`
	DialTimeout time.Duration `json:"dial_timeout" yaml:"dial_timeout"`
	ReadTimeout time.Duration `json:"read_timeout" yaml:"read_timeout"`
	QueueSize   int           `json:"queue_size" yaml:"queue_size"`
}

// HistoryConfig holds history settings
type HistoryConfig struct {
	Limit int `json:"limit" yaml:"limit"`
}

// HotkeyConfig holds activation source settings
type HotkeyConfig struct {
	// Enabled grabs Key+Modifiers on the X11 root window
	Enabled   bool     `json:"enabled" yaml:"enabled"`
	Key       string   `json:"key" yaml:"key"`
	Modifiers []string `json:"modifiers" yaml:"modifiers"`
	// Signal activates on SIGUSR1 (unix only)
	Signal bool `json:"signal" yaml:"signal"`
}

// LaunchConfig overrides the platform launchers. An empty Opener uses
// xdg-open, open or rundll32. Commands are split into words and executed
// directly unless Shell is set, in which case they run as `Shell -c command`.
type LaunchConfig struct {
	Opener string `json:"opener,omitempty" yaml:"opener,omitempty"`
	Shell  string `json:"shell,omitempty" yaml:"shell,omitempty"`
}

// LogConfig holds logging-related configuration
type LogConfig struct {
	Level             string `json:"level" yaml:"level"`
	EnableFileLogging bool   `json:"enable_file_logging" yaml:"enable_file_logging"`
	Format            string `json:"format" yaml:"format"` // "json" or "console"
}

// GetConfigPaths returns the platform-specific configuration paths
func GetConfigPaths() (*ConfigPaths, error) {
	baseDir, err := getConfigDir()
	if err != nil {
		return nil, err
	}
	dataDir, err := getDefaultDataDir()
	if err != nil {
		return nil, err
	}

	paths := &ConfigPaths{
		BaseDir:      baseDir,
		ActiveConfig: filepath.Join(baseDir, "config.yaml"),
		DataDir:      dataDir,
		DBFile:       filepath.Join(dataDir, "qlaunch.db"),
		LogDir:       filepath.Join(dataDir, "logs"),
	}

	for _, dir := range []string{paths.BaseDir, paths.DataDir, paths.LogDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	return paths, nil
}

func defaultConfigDir() (string, error) {
	if dir := os.Getenv("QLAUNCH_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(configDir, "QuickLaunch"), nil
	case "darwin":
		return filepath.Join(configDir, "com.berrythewa.quicklaunch"), nil
	default:
		return filepath.Join(configDir, "qlaunch"), nil
	}
}

func defaultDataDir() (string, error) {
	if dir := os.Getenv("QLAUNCH_DATA_DIR"); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	switch runtime.GOOS {
	case "windows":
		if appData, err := os.UserConfigDir(); err == nil {
			return filepath.Join(appData, "QuickLaunch", "Data"), nil
		}
		return filepath.Join(homeDir, "AppData", "Local", "QuickLaunch"), nil
	case "darwin":
		return filepath.Join(homeDir, "Library", "Application Support", "QuickLaunch"), nil
	default:
		if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
			return filepath.Join(xdgDataHome, "qlaunch"), nil
		}
		return filepath.Join(homeDir, ".local", "share", "qlaunch"), nil
	}
}

// DefaultSocketPath returns the well-known socket location for the current user
func DefaultSocketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "qlaunch.sock")
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("qlaunch-%d.sock", os.Getuid()))
}

// DefaultConfig returns a new Config with default values
func DefaultConfig() *Config {
	return &Config{
		Targets: []types.Target{
			{
				Name:    "g",
				Command: "https://www.google.com/search?q=",
				Query:   "https://suggestqueries.google.com/complete/search?client=firefox&q={}",
				Format:  types.FormatOpenSearch,
			},
			{
				Name:    "ddg",
				Command: "https://duckduckgo.com/?q=",
				Query:   "https://duckduckgo.com/ac/?type=list&q={}",
				Format:  types.FormatOpenSearch,
			},
			{
				Name:    "wiki",
				Command: "https://en.wikipedia.org/wiki/Special:Search?search=",
				Query:   "https://en.wikipedia.org/w/api.php?action=opensearch&limit=10&search={}",
				Format:  types.FormatOpenSearch,
			},
			{Name: "man", Command: "x-terminal-emulator -e man"},
		},
		Suggest: SuggestConfig{
			Enabled:      true,
			Timeout:      3 * time.Second,
			UserAgent:    "qlaunch/1.0",
			MaxBodyBytes: 256 * 1024,
		},
		IPC: IPCConfig{
			DialTimeout: 250 * time.Millisecond,
			ReadTimeout: 2 * time.Second,
			QueueSize:   32,
		},
		History: HistoryConfig{
			Limit: 100,
		},
		Hotkey: HotkeyConfig{
			Enabled:   false,
			Key:       "space",
			Modifiers: []string{"mod4"},
			Signal:    true,
		},
		Frontend: "tui",
		Log: LogConfig{
			Level:             "info",
			EnableFileLogging: true,
			Format:            "json",
		},
	}
}

// Load loads the configuration from the specified file or creates default if not exists
func Load(configPath string) (*Config, error) {
	paths, err := GetConfigPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config paths: %w", err)
	}
	if configPath == "" {
		configPath = paths.ActiveConfig
	}
	paths.ActiveConfig = configPath

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			if err := cfg.Save(configPath); err != nil {
				return nil, fmt.Errorf("failed to create default config: %w", err)
			}
			cfg.SystemPaths = *paths
			overrideFromEnv(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.SystemPaths = *paths

	overrideFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}
	return cfg, nil
}

// Parse decodes YAML on top of the defaults, so omitted sections keep their default values
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	cfg.Targets = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Save saves the configuration to the specified file
func (c *Config) Save(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks the configuration for values the launcher cannot work with
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTargets
	}
	seen := make(map[string]bool, len(c.Targets))
	for i, t := range c.Targets {
		name := strings.ToLower(strings.TrimSpace(t.Name))
		if name == "" {
			return fmt.Errorf("target %d has no name", i)
		}
		if seen[name] {
			return fmt.Errorf("duplicate target name %q", t.Name)
		}
		seen[name] = true
		if !t.Format.Valid() {
			return fmt.Errorf("target %q: unknown suggestion format %q", t.Name, t.Format)
		}
	}
	if c.History.Limit <= 0 {
		return fmt.Errorf("history limit must be positive, got %d", c.History.Limit)
	}
	switch c.Frontend {
	case "tui", "gui", "line":
	default:
		return fmt.Errorf("unknown frontend %q", c.Frontend)
	}
	return nil
}

// SocketPath returns the configured socket path or the per-user default
func (c *Config) SocketPath() string {
	if c.IPC.SocketPath != "" {
		return c.IPC.SocketPath
	}
	return DefaultSocketPath()
}

// overrideFromEnv overrides configuration values from environment variables
func overrideFromEnv(config *Config) {
	if val := os.Getenv("QLAUNCH_LOG_LEVEL"); val != "" {
		config.Log.Level = val
	}
	if val := os.Getenv("QLAUNCH_SOCKET"); val != "" {
		config.IPC.SocketPath = val
	}
	if val := os.Getenv("QLAUNCH_FRONTEND"); val != "" {
		config.Frontend = val
	}
	if val := os.Getenv("QLAUNCH_SUGGEST"); val != "" {
		config.Suggest.Enabled = val == "true"
	}
}
