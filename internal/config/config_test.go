// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// isolate points the config dir at a temp dir for one test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("LEXORA_HOME", dir)
	return dir
}

func TestConfig_Default(t *testing.T) {
	cfg := Default()

	require.Equal(t, "http://localhost:8000", cfg.API.BaseURL)
	require.Equal(t, "http://localhost:5000", cfg.API.AuthURL)
	require.Equal(t, 120, cfg.API.QueryTimeoutSecs)
	require.Equal(t, 60, cfg.API.UploadTimeoutSecs)
	require.Equal(t, 5, cfg.Query.NChunks)
	require.Equal(t, "general", cfg.Upload.DocType)
	require.True(t, cfg.UI.Sidebar)
	require.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid default config", mutate: func(c *Config) {}},
		{name: "chunks below range", mutate: func(c *Config) { c.Query.NChunks = 0 }, wantErr: "query.n_chunks"},
		{name: "chunks above range", mutate: func(c *Config) { c.Query.NChunks = 11 }, wantErr: "query.n_chunks"},
		{name: "chunks at max", mutate: func(c *Config) { c.Query.NChunks = 10 }},
		{name: "bad base url", mutate: func(c *Config) { c.API.BaseURL = "localhost:8000" }, wantErr: "api.base_url"},
		{name: "bad auth url", mutate: func(c *Config) { c.API.AuthURL = "ftp://x" }, wantErr: "api.auth_url"},
		{name: "zero timeout", mutate: func(c *Config) { c.API.QueryTimeoutSecs = 0 }, wantErr: "api.query_timeout_secs"},
		{name: "negative rate", mutate: func(c *Config) { c.API.RatePerSec = -1 }, wantErr: "api.rate_per_sec"},
		{name: "rate without burst", mutate: func(c *Config) { c.API.Burst = 0 }, wantErr: "api.burst"},
		{name: "limiter disabled", mutate: func(c *Config) { c.API.RatePerSec = 0; c.API.Burst = 0 }},
		{name: "invalid theme", mutate: func(c *Config) { c.UI.Theme = "neon" }, wantErr: "ui.theme"},
		{name: "narrow wrap", mutate: func(c *Config) { c.UI.WordWrap = 5 }, wantErr: "ui.word_wrap"},
		{name: "invalid log level", mutate: func(c *Config) { c.Log.Level = "loud" }, wantErr: "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			var verrs ValidateErrors
			require.ErrorAs(t, err, &verrs)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, Default().API, cfg.API)
}

func TestLoad_TOMLPartialFileKeepsDefaults(t *testing.T) {
	dir := isolate(t)
	content := "[api]\nbase_url = \"http://backend:9000\"\n\n[query]\nn_chunks = 8\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http://backend:9000", cfg.API.BaseURL)
	require.Equal(t, 8, cfg.Query.NChunks)
	require.Equal(t, "http://localhost:5000", cfg.API.AuthURL)
	require.Equal(t, 120, cfg.API.QueryTimeoutSecs)
	require.True(t, cfg.UI.ShowSources)
}

func TestLoad_JSONFallback(t *testing.T) {
	dir := isolate(t)
	data, err := json.Marshal(map[string]any{"upload": map[string]any{"doc_type": "ipc"}})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), data, 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "ipc", cfg.Upload.DocType)
}

func TestLoad_InvalidFileIsError(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[query]\nn_chunks = 42\n"), 0o600))

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "query.n_chunks")
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("LEXORA_API_BASE_URL", "https://lexora.example.com")
	t.Setenv("LEXORA_QUERY_N_CHUNKS", "3")
	t.Setenv("LEXORA_UI_SIDEBAR", "false")
	t.Setenv("LEXORA_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://lexora.example.com", cfg.API.BaseURL)
	require.Equal(t, 3, cfg.Query.NChunks)
	require.False(t, cfg.UI.Sidebar)
	require.Equal(t, slog.LevelDebug, cfg.LogLevel())
}

func TestLoad_EnvOverrideBadValue(t *testing.T) {
	isolate(t)
	t.Setenv("LEXORA_QUERY_N_CHUNKS", "many")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_DotEnvFileInConfigDir(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LEXORA_UPLOAD_DOC_TYPE=crpc\n"), 0o600))
	// godotenv writes into the process environment; restore afterwards.
	t.Setenv("LEXORA_UPLOAD_DOC_TYPE", "")
	require.NoError(t, os.Unsetenv("LEXORA_UPLOAD_DOC_TYPE"))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "crpc", cfg.Upload.DocType)
}

func TestSaveTOML_RoundTrip(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.toml")

	cfg := Default()
	cfg.API.BaseURL = "http://10.0.0.5:8000"
	cfg.UI.Theme = "light"
	require.NoError(t, SaveTOML(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	require.Equal(t, "http://10.0.0.5:8000", loaded.API.BaseURL)
	require.Equal(t, "light", loaded.UI.Theme)
}

func TestSaveJSON_RoundTrip(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.json")

	cfg := Default()
	cfg.Storage.MaxConversations = 7
	require.NoError(t, SaveJSON(cfg, path))

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	require.Equal(t, 7, loaded.Storage.MaxConversations)
}

func TestConfig_GetSet(t *testing.T) {
	cfg := Default()

	val, err := cfg.Get("api.base_url")
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8000", val)

	require.NoError(t, cfg.Set("query.n_chunks", "7"))
	require.Equal(t, 7, cfg.Query.NChunks)

	require.NoError(t, cfg.Set("ui.sidebar", "false"))
	require.False(t, cfg.UI.Sidebar)

	require.NoError(t, cfg.Set("api.rate_per_sec", 2.5))
	require.Equal(t, 2.5, cfg.API.RatePerSec)

	_, err = cfg.Get("invalid.key")
	require.Error(t, err)
	_, err = cfg.Get("api")
	require.Error(t, err)
	require.Error(t, cfg.Set("query.n_chunks", "lots"))
}

func TestKeys_CoverSettableFields(t *testing.T) {
	keys := Keys()
	require.Contains(t, keys, "api.base_url")
	require.Contains(t, keys, "query.n_chunks")
	require.Contains(t, keys, "log.file")

	cfg := Default()
	for _, k := range keys {
		_, err := cfg.Get(k)
		require.NoError(t, err, k)
	}
}

func TestConfig_Clone(t *testing.T) {
	original := Default()
	clone := original.Clone()
	clone.API.BaseURL = "http://other:1"

	require.Equal(t, "http://localhost:8000", original.API.BaseURL)
}

func TestConfig_PathsHonorHome(t *testing.T) {
	dir := isolate(t)

	p, err := ConfigPathTOML()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "config.toml"), p)

	cfg := Default()
	data, err := cfg.DataDir()
	require.NoError(t, err)
	require.Equal(t, dir, data)

	logFile, err := cfg.LogFile()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "lexora.log"), logFile)
}

// Global, SetGlobal and ResetGlobalForTesting must be safe under concurrent use.
// Run with: go test -race ./internal/config/
func TestConfig_ConcurrentAccess(t *testing.T) {
	isolate(t)
	ResetGlobalForTesting()
	defer ResetGlobalForTesting()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			SetGlobal(Default())
		}()
		go func() {
			defer wg.Done()
			if Global() == nil {
				t.Error("Global() returned nil")
			}
		}()
	}
	wg.Wait()
}

// =============================================================================
// LOGGING TESTS
// =============================================================================

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestSetupLoggerWithWriters_FansOut(t *testing.T) {
	var console, file bytes.Buffer
	logger := SetupLoggerWithWriters(&console, &file, slog.LevelInfo)

	logger.Info("query sent", "n_chunks", 5)
	logger.Debug("hidden")

	require.Contains(t, console.String(), "query sent")
	require.NotContains(t, console.String(), "hidden")

	var record map[string]any
	require.NoError(t, json.Unmarshal(file.Bytes(), &record))
	require.Equal(t, "query sent", record["msg"])
	require.EqualValues(t, 5, record["n_chunks"])
}

func TestSetupLogger_FileOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "lexora.log")

	logger, cleanup := SetupLogger(path, slog.LevelInfo, nil)
	logger.Info("hello")
	require.NoError(t, cleanup())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"msg":"hello"`)
}
