// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// DEFAULTS AND VALIDATION
// =============================================================================

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "http://localhost:5000", cfg.Backend.URL)
	assert.Len(t, cfg.UI.Reactions, 6)
	assert.True(t, cfg.Storage.Enabled)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad url scheme", func(c *Config) { c.Backend.URL = "ftp://x" }, "backend.url"},
		{"url without host", func(c *Config) { c.Backend.URL = "http://" }, "backend.url"},
		{"zero timeout", func(c *Config) { c.Backend.TimeoutSecs = 0 }, "backend.timeout_secs"},
		{"too many retries", func(c *Config) { c.Backend.MaxRetries = 50 }, "backend.max_retries"},
		{"negative rate", func(c *Config) { c.Backend.RequestsPerSec = -1 }, "backend.requests_per_sec"},
		{"unknown theme", func(c *Config) { c.UI.Theme = "neon" }, "ui.theme"},
		{"negative wrap", func(c *Config) { c.UI.WordWrap = -3 }, "ui.word_wrap"},
		{"blank reaction", func(c *Config) { c.UI.Reactions = []string{"👍", " "} }, "ui.reactions[1]"},
		{"too many reactions", func(c *Config) { c.UI.Reactions = make([]string, 10) }, "ui.reactions"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var verrs ValidateErrors
			require.True(t, errors.As(err, &verrs))
			fields := make([]string, 0, len(verrs))
			for _, v := range verrs {
				fields = append(fields, v.Field)
			}
			assert.Contains(t, fields, tc.field)
		})
	}
}

func TestValidateErrors_Error(t *testing.T) {
	errs := ValidateErrors{{Field: "a", Message: "x"}, {Field: "b", Message: "y"}}
	assert.Equal(t, "a: x; b: y", errs.Error())
	assert.Equal(t, "no validation errors", ValidateErrors{}.Error())
}

// =============================================================================
// LOAD AND SAVE
// =============================================================================

func TestLoadFromPath_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[backend]
url = "http://chat.internal:8080"
requests_per_sec = 0

[ui]
theme = "dark"
reactions = ["🚀", "🎉"]

[storage]
enabled = false
`), 0600))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "http://chat.internal:8080", cfg.Backend.URL)
	assert.Equal(t, 0.0, cfg.Backend.RequestsPerSec, "explicit zero disables the limiter")
	assert.Equal(t, 120, cfg.Backend.TimeoutSecs, "missing keys keep defaults")
	assert.Equal(t, "dark", cfg.UI.Theme)
	assert.Equal(t, []string{"🚀", "🎉"}, cfg.UI.Reactions)
	assert.Equal(t, "monokai", cfg.UI.CodeStyle)
	assert.False(t, cfg.Storage.Enabled)
	assert.Equal(t, "default", cfg.Storage.Session)
}

func TestLoadFromPath_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"ui": {"theme": "light"}, "log": {"level": "debug"}}`), 0600))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "light", cfg.UI.Theme)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Storage.Enabled)
}

func TestLoadFromPath_Errors(t *testing.T) {
	dir := t.TempDir()

	unknown := filepath.Join(dir, "unknown.toml")
	require.NoError(t, os.WriteFile(unknown, []byte("[ui]\ncolour = \"red\"\n"), 0600))
	_, err := LoadFromPath(unknown)
	assert.ErrorContains(t, err, "unknown keys")

	invalid := filepath.Join(dir, "invalid.toml")
	require.NoError(t, os.WriteFile(invalid, []byte("[ui]\ntheme = \"neon\"\n"), 0600))
	_, err = LoadFromPath(invalid)
	assert.ErrorContains(t, err, "ui.theme")

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte("{"), 0600))
	_, err = LoadFromPath(broken)
	assert.Error(t, err)
}

func TestLoad_UsesHomeDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("CHATFMT_THEME", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default().Backend.URL, cfg.Backend.URL)

	require.NoError(t, os.MkdirAll(filepath.Join(home, ".chatfmt"), 0700))
	require.NoError(t, os.WriteFile(filepath.Join(home, ".chatfmt", "config.toml"),
		[]byte("[ui]\ntheme = \"light\"\n"), 0600))

	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "light", cfg.UI.Theme)
}

func TestSaveTOML_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.UI.Theme = "dark"
	cfg.Backend.MaxRetries = 5
	require.NoError(t, SaveTOML(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSaveJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, SaveJSON(Default(), path))

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), loaded)
}

func TestSaveAndLoadFile_ByExtension(t *testing.T) {
	dir := t.TempDir()

	missing, err := LoadFile(filepath.Join(dir, "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), missing)

	for _, name := range []string{"config.toml", "config.JSON"} {
		path := filepath.Join(dir, name)
		cfg := Default()
		cfg.UI.Theme = "light"
		require.NoError(t, Save(cfg, path))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		if name == "config.JSON" {
			assert.True(t, json.Valid(data), name)
		} else {
			assert.Contains(t, string(data), "# chatfmt configuration file")
		}

		loaded, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "light", loaded.UI.Theme, name)
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("CHATFMT_BACKEND_URL", "http://remote:9000")
	t.Setenv("CHATFMT_THEME", "light")
	t.Setenv("CHATFMT_LOG_LEVEL", "debug")
	t.Setenv("CHATFMT_OFFLINE", "true")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, "http://remote:9000", cfg.Backend.URL)
	assert.Equal(t, "light", cfg.UI.Theme)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Backend.Offline)
}

// =============================================================================
// GET / SET
// =============================================================================

func TestGetSet(t *testing.T) {
	cfg := Default()

	v, err := cfg.Get("ui.theme")
	require.NoError(t, err)
	assert.Equal(t, "auto", v)

	require.NoError(t, cfg.Set("ui.theme", "dark"))
	require.NoError(t, cfg.Set("backend.timeout_secs", "30"))
	require.NoError(t, cfg.Set("backend.requests_per_sec", "0.5"))
	require.NoError(t, cfg.Set("ui.show_timestamps", "yes"))
	require.NoError(t, cfg.Set("ui.reactions", "🔥, 👀"))
	require.NoError(t, cfg.Set("log.max-backups", 7))

	assert.Equal(t, "dark", cfg.UI.Theme)
	assert.Equal(t, 30, cfg.Backend.TimeoutSecs)
	assert.Equal(t, 0.5, cfg.Backend.RequestsPerSec)
	assert.True(t, cfg.UI.ShowTimestamps)
	assert.Equal(t, []string{"🔥", "👀"}, cfg.UI.Reactions)
	assert.Equal(t, 7, cfg.Log.MaxBackups)
}

func TestGetSet_Errors(t *testing.T) {
	cfg := Default()

	_, err := cfg.Get("")
	assert.Error(t, err)
	_, err = cfg.Get("ui.nope")
	assert.ErrorContains(t, err, "unknown field: ui.nope")
	_, err = cfg.Get("ui.theme.deeper")
	assert.ErrorContains(t, err, "not a struct")

	assert.Error(t, cfg.Set("backend.timeout_secs", "soon"))
	assert.Error(t, cfg.Set("backend.timeout_secs", []int{1}))
}

func TestGetAllKeys_Resolve(t *testing.T) {
	cfg := Default()
	for _, key := range GetAllKeys() {
		_, err := cfg.Get(key)
		assert.NoError(t, err, key)
	}
}

func TestClone_IsDeep(t *testing.T) {
	cfg := Default()
	clone := cfg.Clone()
	clone.UI.Reactions[0] = "🐛"
	assert.Equal(t, "👍", cfg.UI.Reactions[0])
}

// =============================================================================
// GLOBAL CONFIG
// =============================================================================

// TestConfig_ConcurrentAccess checks Global and SetGlobal under the race detector.
func TestConfig_ConcurrentAccess(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
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

func TestConfig_ConcurrentReload(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	ResetGlobalForTesting()
	defer ResetGlobalForTesting()
	_ = Global()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = ReloadGlobal()
		}()
	}
	for i := 0; i < 80; i++ {
		wg.Add(1)
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
// WATCHER
// =============================================================================

func TestWatch_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, SaveTOML(Default(), path))

	changes := make(chan *Config, 4)
	w, err := Watch(context.Background(), path, 20*time.Millisecond, func(c *Config, err error) {
		if err == nil {
			changes <- c
		}
	})
	require.NoError(t, err)
	defer w.Close()

	cfg := Default()
	cfg.UI.Theme = "light"
	require.NoError(t, SaveTOML(cfg, path))

	select {
	case got := <-changes:
		assert.Equal(t, "light", got.UI.Theme)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after write")
	}
}

func TestWatch_IgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, SaveTOML(Default(), path))

	var calls int
	var mu sync.Mutex
	w, err := Watch(context.Background(), path, 10*time.Millisecond, func(*Config, error) {
		mu.Lock()
		calls++
		mu.Unlock()
	})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0600))
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, w.Close())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 0, calls)
}
