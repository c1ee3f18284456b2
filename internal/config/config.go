// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/jeranaias/lexora-tui/internal/util"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "LEXORA_"

// Chunk-count bounds accepted by the query endpoint.
const (
	MinChunks     = 1
	MaxChunks     = 10
	DefaultChunks = 5
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete lexora configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	API     APIConfig     `toml:"api" json:"api" envPrefix:"API_"`
	Query   QueryConfig   `toml:"query" json:"query" envPrefix:"QUERY_"`
	Upload  UploadConfig  `toml:"upload" json:"upload" envPrefix:"UPLOAD_"`
	Storage StorageConfig `toml:"storage" json:"storage" envPrefix:"STORAGE_"`
	UI      UIConfig      `toml:"ui" json:"ui" envPrefix:"UI_"`
	Log     LogConfig     `toml:"log" json:"log" envPrefix:"LOG_"`
}

// APIConfig holds backend endpoints and request limits.
type APIConfig struct {
	// BaseURL serves /api/* (query, upload, summarize, documents).
	BaseURL string `toml:"base_url" json:"base_url" env:"BASE_URL"`
	// AuthURL serves /auth/signup and /auth/signin.
	AuthURL string `toml:"auth_url" json:"auth_url" env:"AUTH_URL"`

	QueryTimeoutSecs   int `toml:"query_timeout_secs" json:"query_timeout_secs" env:"QUERY_TIMEOUT_SECS"`
	UploadTimeoutSecs  int `toml:"upload_timeout_secs" json:"upload_timeout_secs" env:"UPLOAD_TIMEOUT_SECS"`
	RequestTimeoutSecs int `toml:"request_timeout_secs" json:"request_timeout_secs" env:"REQUEST_TIMEOUT_SECS"`

	// RatePerSec caps outbound requests per second (0 disables the limiter).
	RatePerSec float64 `toml:"rate_per_sec" json:"rate_per_sec" env:"RATE_PER_SEC"`
	Burst      int     `toml:"burst" json:"burst" env:"BURST"`
}

// QueryConfig holds defaults for question requests.
type QueryConfig struct {
	// NChunks is how many retrieved chunks ground an answer (1-10).
	NChunks int `toml:"n_chunks" json:"n_chunks" env:"N_CHUNKS"`
	// DocType restricts retrieval; empty sends null (all documents).
	DocType string `toml:"doc_type" json:"doc_type" env:"DOC_TYPE"`
}

// UploadConfig holds document upload settings.
type UploadConfig struct {
	DocType         string `toml:"doc_type" json:"doc_type" env:"DOC_TYPE"`
	WatchDebounceMs int    `toml:"watch_debounce_ms" json:"watch_debounce_ms" env:"WATCH_DEBOUNCE_MS"`
}

// StorageConfig locates the local database.
type StorageConfig struct {
	// Dir holds lexora.db and secret.key (empty = config dir).
	Dir string `toml:"dir" json:"dir" env:"DIR"`
	// MaxConversations prunes the oldest conversations beyond this count (0 = unlimited).
	MaxConversations int `toml:"max_conversations" json:"max_conversations" env:"MAX_CONVERSATIONS"`
}

// UIConfig holds TUI preferences.
type UIConfig struct {
	// Theme is "auto", "dark" or "light".
	Theme       string `toml:"theme" json:"theme" env:"THEME"`
	Sidebar     bool   `toml:"sidebar" json:"sidebar" env:"SIDEBAR"`
	WordWrap    int    `toml:"word_wrap" json:"word_wrap" env:"WORD_WRAP"`
	ShowSources bool   `toml:"show_sources" json:"show_sources" env:"SHOW_SOURCES"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `toml:"level" json:"level" env:"LEVEL"`
	// File receives JSON logs (empty = <config dir>/lexora.log).
	File string `toml:"file" json:"file" env:"FILE"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with the stock backend endpoints and limits.
func Default() *Config {
	return &Config{
		Version: "1",
		API: APIConfig{
			BaseURL:            "http://localhost:8000",
			AuthURL:            "http://localhost:5000",
			QueryTimeoutSecs:   120,
			UploadTimeoutSecs:  60,
			RequestTimeoutSecs: 30,
			RatePerSec:         5,
			Burst:              5,
		},
		Query: QueryConfig{
			NChunks: DefaultChunks,
		},
		Upload: UploadConfig{
			DocType:         "general",
			WatchDebounceMs: 500,
		},
		Storage: StorageConfig{
			MaxConversations: 200,
		},
		UI: UIConfig{
			Theme:       "auto",
			Sidebar:     true,
			WordWrap:    100,
			ShowSources: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// QueryTimeout returns the query request timeout.
func (c *Config) QueryTimeout() time.Duration {
	return time.Duration(c.API.QueryTimeoutSecs) * time.Second
}

// UploadTimeout returns the upload request timeout.
func (c *Config) UploadTimeout() time.Duration {
	return time.Duration(c.API.UploadTimeoutSecs) * time.Second
}

// RequestTimeout returns the timeout for every other request.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.API.RequestTimeoutSecs) * time.Second
}

// WatchDebounce returns the quiet period before a watched file is uploaded.
func (c *Config) WatchDebounce() time.Duration {
	return time.Duration(c.Upload.WatchDebounceMs) * time.Millisecond
}

// DataDir returns the directory holding the database and secret.
func (c *Config) DataDir() (string, error) {
	if c.Storage.Dir != "" {
		return c.Storage.Dir, nil
	}
	return ConfigDir()
}

// LogFile returns the JSON log path.
func (c *Config) LogFile() (string, error) {
	if c.Log.File != "" {
		return c.Log.File, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "lexora.log"), nil
}

// LogLevel parses Log.Level, defaulting to info.
func (c *Config) LogLevel() slog.Level {
	return ParseLevel(c.Log.Level)
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the lexora configuration directory. LEXORA_HOME
// overrides the default ~/.lexora.
func ConfigDir() (string, error) {
	if home := os.Getenv(EnvPrefix + "HOME"); home != "" {
		return home, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".lexora"), nil
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

// EnsureConfigDir creates the config directory when missing.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o700)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// LoadDotEnv loads KEY=VALUE files into the process environment. Variables
// already set win. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads configuration in this order, later steps winning: defaults,
// config.toml (or config.json when no TOML exists), .env files, LEXORA_*
// environment variables. The result is validated.
func Load() (*Config, error) {
	cfg := Default()

	tomlPath, err := ConfigPathTOML()
	if err != nil {
		return nil, err
	}
	jsonPath, err := ConfigPathJSON()
	if err != nil {
		return nil, err
	}

	switch {
	case fileExists(tomlPath):
		if err := LoadTOML(cfg, tomlPath); err != nil {
			return nil, err
		}
	case fileExists(jsonPath):
		if err := LoadJSON(cfg, jsonPath); err != nil {
			return nil, err
		}
	}

	return finish(cfg)
}

// LoadFromPath loads a specific file; the extension picks the format.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, err
		}
	} else if err := LoadTOML(cfg, path); err != nil {
		return nil, err
	}
	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	dir, err := ConfigDir()
	if err == nil {
		if err := LoadDotEnv(".env", filepath.Join(dir, ".env")); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	fillDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// ApplyEnvOverrides applies LEXORA_* variables, e.g. LEXORA_API_BASE_URL or
// LEXORA_QUERY_N_CHUNKS. Unset variables leave fields untouched.
func (c *Config) ApplyEnvOverrides() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("environment overrides: %w", err)
	}
	return nil
}

// fillDefaults replaces zero values left by partial files.
func fillDefaults(cfg *Config) {
	d := Default()

	if cfg.Version == "" {
		cfg.Version = d.Version
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = d.API.BaseURL
	}
	if cfg.API.AuthURL == "" {
		cfg.API.AuthURL = d.API.AuthURL
	}
	if cfg.API.QueryTimeoutSecs == 0 {
		cfg.API.QueryTimeoutSecs = d.API.QueryTimeoutSecs
	}
	if cfg.API.UploadTimeoutSecs == 0 {
		cfg.API.UploadTimeoutSecs = d.API.UploadTimeoutSecs
	}
	if cfg.API.RequestTimeoutSecs == 0 {
		cfg.API.RequestTimeoutSecs = d.API.RequestTimeoutSecs
	}
	if cfg.API.Burst == 0 {
		cfg.API.Burst = d.API.Burst
	}
	if cfg.Query.NChunks == 0 {
		cfg.Query.NChunks = d.Query.NChunks
	}
	if cfg.Upload.DocType == "" {
		cfg.Upload.DocType = d.Upload.DocType
	}
	if cfg.Upload.WatchDebounceMs == 0 {
		cfg.Upload.WatchDebounceMs = d.Upload.WatchDebounceMs
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = d.UI.Theme
	}
	if cfg.UI.WordWrap == 0 {
		cfg.UI.WordWrap = d.UI.WordWrap
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = d.Log.Level
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes cfg to the default TOML path.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes cfg as TOML with a short header, owner read/write only.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# lexora configuration file\n")
	buf.WriteString("# Environment variables LEXORA_<SECTION>_<KEY> override these values.\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// SaveJSON writes cfg as indented JSON, owner read/write only.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// String renders cfg as TOML.
func (c *Config) String() string {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return buf.String()
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes one invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors collects every invalid field.
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

// Validate checks every field and returns ValidateErrors when any is bad.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	for field, raw := range map[string]string{"api.base_url": c.API.BaseURL, "api.auth_url": c.API.AuthURL} {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			add(field, "invalid URL %q, must be http(s)://host[:port]", raw)
		}
	}

	if c.API.QueryTimeoutSecs <= 0 {
		add("api.query_timeout_secs", "must be positive, got %d", c.API.QueryTimeoutSecs)
	}
	if c.API.UploadTimeoutSecs <= 0 {
		add("api.upload_timeout_secs", "must be positive, got %d", c.API.UploadTimeoutSecs)
	}
	if c.API.RequestTimeoutSecs <= 0 {
		add("api.request_timeout_secs", "must be positive, got %d", c.API.RequestTimeoutSecs)
	}
	if c.API.RatePerSec < 0 {
		add("api.rate_per_sec", "cannot be negative, got %g", c.API.RatePerSec)
	}
	if c.API.RatePerSec > 0 && c.API.Burst < 1 {
		add("api.burst", "must be at least 1 when rate limiting, got %d", c.API.Burst)
	}

	if c.Query.NChunks < MinChunks || c.Query.NChunks > MaxChunks {
		add("query.n_chunks", "must be between %d and %d, got %d", MinChunks, MaxChunks, c.Query.NChunks)
	}
	if c.Upload.WatchDebounceMs < 0 {
		add("upload.watch_debounce_ms", "cannot be negative, got %d", c.Upload.WatchDebounceMs)
	}
	if c.Storage.MaxConversations < 0 {
		add("storage.max_conversations", "cannot be negative, got %d", c.Storage.MaxConversations)
	}

	switch strings.ToLower(c.UI.Theme) {
	case "auto", "dark", "light":
	default:
		add("ui.theme", "invalid theme %q, must be one of: auto, dark, light", c.UI.Theme)
	}
	if c.UI.WordWrap < 20 {
		add("ui.word_wrap", "must be at least 20, got %d", c.UI.WordWrap)
	}

	if _, ok := levels[strings.ToLower(c.Log.Level)]; !ok {
		add("log.level", "invalid level %q, must be one of: debug, info, warn, error", c.Log.Level)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get returns a value by its dotted TOML key, e.g. "api.base_url".
func (c *Config) Get(key string) (any, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set assigns a value by its dotted TOML key. String input is converted to
// the field's type. The result is not validated.
func (c *Config) Set(key string, value any) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

// Keys lists every settable dotted key.
func Keys() []string {
	var keys []string
	walkKeys(reflect.TypeOf(Config{}), "", &keys)
	return keys
}

func walkKeys(t reflect.Type, prefix string, keys *[]string) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := tomlName(f)
		if f.Type.Kind() == reflect.Struct {
			walkKeys(f.Type, prefix+name+".", keys)
			continue
		}
		*keys = append(*keys, prefix+name)
	}
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")
	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		field, ok := fieldByTOML(v, part)
		if !ok {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			if field.Kind() == reflect.Struct {
				return reflect.Value{}, fmt.Errorf("%s is a section, not a value", key)
			}
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a section", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

func fieldByTOML(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if tomlName(t.Field(i)) == name {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func tomlName(f reflect.StructField) string {
	tag, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
	if tag == "" {
		return strings.ToLower(f.Name)
	}
	return tag
}

func setFieldValue(field reflect.Value, value any) error {
	if s, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(s)
			return nil
		case reflect.Int, reflect.Int64:
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %w", err)
			}
			field.SetInt(n)
			return nil
		case reflect.Float64:
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %w", err)
			}
			field.SetFloat(f)
			return nil
		case reflect.Bool:
			b, err := strconv.ParseBool(s)
			if err != nil {
				return fmt.Errorf("invalid boolean value: %w", err)
			}
			field.SetBool(b)
			return nil
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
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the process-wide configuration, loading it on first use.
// A broken config file falls back to defaults with a warning.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			slog.Warn("using default configuration", "error", err)
			cfg = Default()
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

// SetGlobal replaces the process-wide configuration.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting clears the singleton so the next Global reloads.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
