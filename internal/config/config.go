// Package config loads taskpad settings from the config file, the
// environment and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/entrepeneur4lyf/taskpad/internal/kvstore"
	"github.com/entrepeneur4lyf/taskpad/internal/storage"
	"github.com/spf13/viper"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid configuration")

// Data defines storage location
type Data struct {
	Directory string `json:"directory,omitempty"`
}

// StoreConfig selects the persistence backend
type StoreConfig struct {
	Backend string `json:"backend"`
	// Path overrides the file derived from the data directory.
	Path string `json:"path,omitempty"`
}

// EditorConfig defines editing behaviour
type EditorConfig struct {
	Debounce time.Duration `json:"debounce"`
}

// IngestConfig limits what can be attached
type IngestConfig struct {
	MaxFileSize      int64 `json:"maxFileSize"`
	RespectGitignore bool  `json:"respectGitignore"`
	// Watch reloads attached files when they change on disk.
	Watch bool `json:"watch"`
}

// PreviewConfig defines preview rendering
type PreviewConfig struct {
	Style       string `json:"style"`
	LineNumbers bool   `json:"lineNumbers"`
}

// TUIConfig defines terminal UI configuration
type TUIConfig struct {
	Theme string `json:"theme"`
}

// ExportConfig holds the prompt sections that are not part of the document.
// Each value is inline text or "@file".
type ExportConfig struct {
	Role   string `json:"role,omitempty"`
	Rules  string `json:"rules,omitempty"`
	Output string `json:"output,omitempty"`
}

// LogConfig defines logging
type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// Config is the main configuration structure for the application
type Config struct {
	Data       Data          `json:"data"`
	WorkingDir string        `json:"wd,omitempty"`
	Store      StoreConfig   `json:"store"`
	Editor     EditorConfig  `json:"editor"`
	Ingest     IngestConfig  `json:"ingest"`
	Preview    PreviewConfig `json:"preview"`
	TUI        TUIConfig     `json:"tui"`
	Export     ExportConfig  `json:"export"`
	Log        LogConfig     `json:"log"`
	Debug      bool          `json:"debug,omitempty"`

	// ConfigFile is the file that was read, empty when none was found.
	ConfigFile string `json:"-"`
}

// Application constants
const (
	appName              = "taskpad"
	defaultDataDirectory = "~/.taskpad"
	defaultLogLevel      = "info"
	defaultDebounce      = 500 * time.Millisecond
	defaultMaxFileSize   = 1 << 20
	defaultPreviewStyle  = "monokai"
	defaultTheme         = "default"
	defaultStoreBackend  = kvstore.BackendLibSQL
)

var (
	validLogLevels  = []string{"debug", "info", "warn", "error", "fatal"}
	validLogFormats = []string{"", "text", "json", "logfmt"}
)

// Global configuration instance
var cfg *Config

// Option adjusts how Load finds its configuration
type Option func(*viper.Viper)

// WithConfigFile reads exactly the given file instead of searching for one.
func WithConfigFile(path string) Option {
	return func(v *viper.Viper) {
		if path != "" {
			v.SetConfigFile(path)
		}
	}
}

// Load builds the configuration from defaults, the config file and
// TASKPAD_* environment variables, validates it and makes it available
// through Get.
func Load(workingDir string, debug bool, opts ...Option) (*Config, error) {
	v := viper.New()
	configureViper(v)
	for _, opt := range opts {
		opt(v)
	}
	setDefaults(v, debug)

	loaded := &Config{WorkingDir: workingDir}
	if err := readConfig(v, loaded); err != nil {
		return nil, err
	}
	if debug {
		loaded.Debug = true
		loaded.Log.Level = "debug"
	}
	if err := loaded.Validate(); err != nil {
		return nil, err
	}

	cfg = loaded
	return cfg, nil
}

// configureViper sets up viper's configuration paths and environment variables
func configureViper(v *viper.Viper) {
	v.SetConfigName("." + appName)
	v.SetConfigType("json")
	v.AddConfigPath("$HOME")
	v.AddConfigPath(fmt.Sprintf("$XDG_CONFIG_HOME/%s", appName))
	v.AddConfigPath(fmt.Sprintf("$HOME/.config/%s", appName))
	v.SetEnvPrefix(strings.ToUpper(appName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// setDefaults registers every key so that environment overrides reach Unmarshal
func setDefaults(v *viper.Viper, debug bool) {
	v.SetDefault("data.directory", defaultDataDirectory)
	v.SetDefault("store.backend", defaultStoreBackend)
	v.SetDefault("store.path", "")
	v.SetDefault("editor.debounce", defaultDebounce)
	v.SetDefault("ingest.maxFileSize", defaultMaxFileSize)
	v.SetDefault("ingest.respectGitignore", true)
	v.SetDefault("ingest.watch", true)
	v.SetDefault("preview.style", defaultPreviewStyle)
	v.SetDefault("preview.lineNumbers", true)
	v.SetDefault("tui.theme", defaultTheme)
	v.SetDefault("export.role", "")
	v.SetDefault("export.rules", "")
	v.SetDefault("export.output", "")
	v.SetDefault("debug", debug)
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.format", "text")
}

// readConfig reads configuration from file and environment
func readConfig(v *viper.Viper, into *Config) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := v.Unmarshal(into); err != nil {
		return fmt.Errorf("unable to decode config: %w", err)
	}
	into.ConfigFile = v.ConfigFileUsed()
	return nil
}

// Validate rejects settings the rest of the program cannot work with
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case kvstore.BackendMemory, kvstore.BackendLibSQL, kvstore.BackendTOML:
	default:
		return fmt.Errorf("%w: unknown store backend %q", ErrInvalid, c.Store.Backend)
	}
	if c.Editor.Debounce <= 0 {
		return fmt.Errorf("%w: editor.debounce must be positive, got %s", ErrInvalid, c.Editor.Debounce)
	}
	if c.Ingest.MaxFileSize <= 0 {
		return fmt.Errorf("%w: ingest.maxFileSize must be positive, got %d", ErrInvalid, c.Ingest.MaxFileSize)
	}

	if !slices.Contains(validLogLevels, strings.ToLower(c.Log.Level)) {
		return fmt.Errorf("%w: unknown log level %q", ErrInvalid, c.Log.Level)
	}
	if !slices.Contains(validLogFormats, strings.ToLower(c.Log.Format)) {
		return fmt.Errorf("%w: unknown log format %q", ErrInvalid, c.Log.Format)
	}
	return nil
}

// Get returns the most recently loaded configuration
func Get() *Config {
	return cfg
}

// Paths returns the path manager for the configured data directory
func (c *Config) Paths() *storage.PathManager {
	return storage.NewPathManagerAt(c.Data.Directory)
}

// StorePath returns the file backing the configured store. It is empty for
// the memory backend.
func (c *Config) StorePath() (string, error) {
	if c.Store.Backend == kvstore.BackendMemory {
		return "", nil
	}
	if c.Store.Path != "" {
		if filepath.IsAbs(c.Store.Path) || c.WorkingDir == "" {
			return c.Store.Path, nil
		}
		return filepath.Join(c.WorkingDir, c.Store.Path), nil
	}

	pm := c.Paths()
	if c.Store.Backend == kvstore.BackendTOML {
		return pm.GetStateFilePath()
	}
	return pm.GetStateDatabasePath()
}

// OpenStore opens the configured store backend
func (c *Config) OpenStore() (kvstore.Store, error) {
	path, err := c.StorePath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve store path: %w", err)
	}
	return kvstore.Open(c.Store.Backend, path)
}
