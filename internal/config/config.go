// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/chatfmt/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete chatfmt configuration.
type Config struct {
	Backend BackendConfig `toml:"backend" json:"backend"`
	UI      UIConfig      `toml:"ui" json:"ui"`
	Log     LogConfig     `toml:"log" json:"log"`
	Storage StorageConfig `toml:"storage" json:"storage"`
}

// BackendConfig configures the chat backend client.
type BackendConfig struct {
	// URL is the base URL of the chat backend.
	URL string `toml:"url" json:"url"`
	// TimeoutSecs bounds one request; image generation can be slow.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// MaxRetries is the number of attempts for transient failures.
	MaxRetries int `toml:"max_retries" json:"max_retries"`
	// RequestsPerSec caps outgoing requests; 0 disables the limit.
	RequestsPerSec float64 `toml:"requests_per_sec" json:"requests_per_sec"`
	// Offline skips the backend and reads the local transcript store.
	Offline bool `toml:"offline" json:"offline"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme" json:"theme"`
	// CodeStyle is the chroma style used for code blocks.
	CodeStyle string `toml:"code_style" json:"code_style"`
	// WordWrap is the wrap width for non-TUI output; 0 uses the terminal width.
	WordWrap int `toml:"word_wrap" json:"word_wrap"`
	// ShowTimestamps prints message times in the transcript.
	ShowTimestamps bool `toml:"show_timestamps" json:"show_timestamps"`
	// Reactions is the emoji palette offered on assistant messages.
	Reactions []string `toml:"reactions" json:"reactions"`
}

// LogConfig configures the structured log file.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level" json:"level"`
	// File is the log path; empty selects ~/.chatfmt/chatfmt.log.
	File string `toml:"file" json:"file"`
	// Format is "text" or "json".
	Format string `toml:"format" json:"format"`
	// MaxSizeMB is the size at which the log file is rotated.
	MaxSizeMB int `toml:"max_size_mb" json:"max_size_mb"`
	// MaxBackups is the number of rotated files kept.
	MaxBackups int `toml:"max_backups" json:"max_backups"`
}

// StorageConfig configures the local transcript store.
type StorageConfig struct {
	// Enabled mirrors the conversation and reactions into SQLite.
	Enabled bool `toml:"enabled" json:"enabled"`
	// Path is the database file; empty selects ~/.chatfmt/transcripts.db.
	Path string `toml:"path" json:"path"`
	// Session names the transcript within the store.
	Session string `toml:"session" json:"session"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:            "http://localhost:5000",
			TimeoutSecs:    120,
			MaxRetries:     3,
			RequestsPerSec: 2,
		},
		UI: UIConfig{
			Theme:          "auto",
			CodeStyle:      "monokai",
			WordWrap:       0,
			ShowTimestamps: false,
			Reactions:      []string{"👍", "👎", "❤️", "😂", "😮", "😢"},
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Storage: StorageConfig{
			Enabled: true,
			Session: "default",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the chatfmt configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".chatfmt"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LogPath returns the effective log file path.
func (c *Config) LogPath() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	dir, err := ConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "chatfmt.log")
	}
	return filepath.Join(dir, "chatfmt.log")
}

// StoragePath returns the effective transcript database path.
func (c *Config) StoragePath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	dir, err := ConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "chatfmt-transcripts.db")
	}
	return filepath.Join(dir, "transcripts.db")
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last. A file that fails to parse is
// reported alongside the defaults rather than aborting startup.
func Load() (*Config, error) {
	if path, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return loadAndFinish(path)
		}
	}
	if path, err := ConfigPathJSON(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return loadAndFinish(path)
		}
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadAndFinish(path string) (*Config, error) {
	cfg, err := LoadFromPath(path)
	if err != nil {
		return Default(), err
	}
	return cfg, nil
}

// LoadFile reads path over the defaults without environment overrides or
// validation, for editing the file in place. A missing file yields the
// defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if isJSONPath(path) {
		return cfg, LoadJSON(cfg, path)
	}
	return cfg, LoadTOML(cfg, path)
}

func isJSONPath(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".json")
}

// LoadFromPath loads configuration from a specific file path with full
// validation. Files ending in .json are decoded as JSON, everything else as
// TOML. Keys absent from the file keep their default values.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if isJSONPath(path) {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file into cfg and fills missing values.
func LoadTOML(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	fillDefaults(cfg)
	return nil
}

// LoadJSON decodes a JSON file into cfg and fills missing values.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	fillDefaults(cfg)
	return nil
}

// fillDefaults replaces values a file explicitly left empty.
func fillDefaults(cfg *Config) {
	defaults := Default()

	// Backend
	if cfg.Backend.URL == "" {
		cfg.Backend.URL = defaults.Backend.URL
	}
	if cfg.Backend.TimeoutSecs == 0 {
		cfg.Backend.TimeoutSecs = defaults.Backend.TimeoutSecs
	}
	if cfg.Backend.MaxRetries == 0 {
		cfg.Backend.MaxRetries = defaults.Backend.MaxRetries
	}

	// UI
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
	if cfg.UI.CodeStyle == "" {
		cfg.UI.CodeStyle = defaults.UI.CodeStyle
	}
	if len(cfg.UI.Reactions) == 0 {
		cfg.UI.Reactions = defaults.UI.Reactions
	}

	// Log
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = defaults.Log.Format
	}
	if cfg.Log.MaxSizeMB == 0 {
		cfg.Log.MaxSizeMB = defaults.Log.MaxSizeMB
	}
	if cfg.Log.MaxBackups == 0 {
		cfg.Log.MaxBackups = defaults.Log.MaxBackups
	}

	// Storage
	if cfg.Storage.Session == "" {
		cfg.Storage.Session = defaults.Storage.Session
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes cfg to path, as JSON when path ends in .json and as TOML
// otherwise.
func Save(cfg *Config, path string) error {
	if isJSONPath(path) {
		return SaveJSON(cfg, path)
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration as TOML with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# chatfmt configuration file")
	fmt.Fprintln(&buf, "# Generated by chatfmt - edit with care")
	fmt.Fprintln(&buf, "")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON writes the configuration as indented JSON with 0600 permissions.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// Backend
	if u, err := url.Parse(c.Backend.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "backend.url",
			Message: fmt.Sprintf("invalid URL '%s', must be http(s)://host[:port]", c.Backend.URL),
		})
	}
	if c.Backend.TimeoutSecs < 1 || c.Backend.TimeoutSecs > 3600 {
		errs = append(errs, ValidationError{
			Field:   "backend.timeout_secs",
			Message: fmt.Sprintf("must be between 1 and 3600, got %d", c.Backend.TimeoutSecs),
		})
	}
	if c.Backend.MaxRetries < 1 || c.Backend.MaxRetries > 10 {
		errs = append(errs, ValidationError{
			Field:   "backend.max_retries",
			Message: fmt.Sprintf("must be between 1 and 10, got %d", c.Backend.MaxRetries),
		})
	}
	if c.Backend.RequestsPerSec < 0 {
		errs = append(errs, ValidationError{
			Field:   "backend.requests_per_sec",
			Message: "must not be negative",
		})
	}

	// UI
	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}
	if c.UI.WordWrap < 0 {
		errs = append(errs, ValidationError{
			Field:   "ui.word_wrap",
			Message: "must not be negative",
		})
	}
	if len(c.UI.Reactions) > 9 {
		errs = append(errs, ValidationError{
			Field:   "ui.reactions",
			Message: fmt.Sprintf("at most 9 reactions fit the alt+N keys, got %d", len(c.UI.Reactions)),
		})
	}
	for i, r := range c.UI.Reactions {
		if strings.TrimSpace(r) == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("ui.reactions[%d]", i),
				Message: "must not be blank",
			})
		}
	}

	// Log
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level),
		})
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Log.Format)] {
		errs = append(errs, ValidationError{
			Field:   "log.format",
			Message: fmt.Sprintf("invalid format '%s', must be one of: text, json", c.Log.Format),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported variables:
//   - CHATFMT_BACKEND_URL: overrides backend.url
//   - CHATFMT_THEME: overrides ui.theme
//   - CHATFMT_LOG_LEVEL: overrides log.level
//   - CHATFMT_OFFLINE: sets backend.offline ("1" or "true")
func (c *Config) ApplyEnvOverrides() {
	if u := os.Getenv("CHATFMT_BACKEND_URL"); u != "" {
		c.Backend.URL = u
	}
	if theme := os.Getenv("CHATFMT_THEME"); theme != "" {
		c.UI.Theme = theme
	}
	if level := os.Getenv("CHATFMT_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if offline := os.Getenv("CHATFMT_OFFLINE"); offline != "" {
		c.Backend.Offline = offline == "1" || strings.EqualFold(offline, "true")
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "ui.theme").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "ui.theme").
// String values are converted to the field's type.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

// lookup walks a dotted key through the struct tree.
func (c *Config) lookup(key string) (reflect.Value, error) {
	if strings.TrimSpace(key) == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			lower := strings.ToLower(strVal)
			field.SetBool(lower == "1" || lower == "true" || lower == "yes")
			return nil
		case reflect.Slice:
			if field.Type().Elem().Kind() == reflect.String {
				field.Set(reflect.ValueOf(strings.Fields(strings.ReplaceAll(strVal, ",", " "))))
				return nil
			}
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"backend.url",
		"backend.timeout_secs",
		"backend.max_retries",
		"backend.requests_per_sec",
		"backend.offline",
		"ui.theme",
		"ui.code_style",
		"ui.word_wrap",
		"ui.show_timestamps",
		"ui.reactions",
		"log.level",
		"log.file",
		"log.format",
		"log.max_size_mb",
		"log.max_backups",
		"storage.enabled",
		"storage.path",
		"storage.session",
	}
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	if c.UI.Reactions != nil {
		clone.UI.Reactions = append([]string(nil), c.UI.Reactions...)
	}
	return &clone
}

// String returns an indented JSON representation for display.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
		globalConfigMu.Lock()
		if globalConfig == nil {
			globalConfig = cfg
		}
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	SetGlobal(cfg)
	return nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
