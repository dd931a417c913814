package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/entrepeneur4lyf/taskpad/internal/kvstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points every config search path at an empty directory.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	return home
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	c, err := Load("/work", false)
	require.NoError(t, err)

	assert.Equal(t, "/work", c.WorkingDir)
	assert.Equal(t, "~/.taskpad", c.Data.Directory)
	assert.Equal(t, kvstore.BackendLibSQL, c.Store.Backend)
	assert.Equal(t, 500*time.Millisecond, c.Editor.Debounce)
	assert.Equal(t, int64(1<<20), c.Ingest.MaxFileSize)
	assert.True(t, c.Ingest.RespectGitignore)
	assert.True(t, c.Ingest.Watch)
	assert.Equal(t, "monokai", c.Preview.Style)
	assert.True(t, c.Preview.LineNumbers)
	assert.Equal(t, "default", c.TUI.Theme)
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, "text", c.Log.Format)
	assert.False(t, c.Debug)
	assert.Empty(t, c.ConfigFile)
	assert.Same(t, c, Get())
}

func TestLoadDebugForcesDebugLevel(t *testing.T) {
	isolate(t)

	c, err := Load("", true)
	require.NoError(t, err)
	assert.True(t, c.Debug)
	assert.Equal(t, "debug", c.Log.Level)
}

func TestLoadFromHomeFile(t *testing.T) {
	home := isolate(t)
	body := `{
  "store": {"backend": "toml"},
  "editor": {"debounce": "250ms"},
  "preview": {"style": "dracula", "lineNumbers": false},
  "export": {"role": "@role.md"}
}`
	require.NoError(t, os.WriteFile(filepath.Join(home, ".taskpad.json"), []byte(body), 0644))

	c, err := Load("", false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".taskpad.json"), c.ConfigFile)
	assert.Equal(t, kvstore.BackendTOML, c.Store.Backend)
	assert.Equal(t, 250*time.Millisecond, c.Editor.Debounce)
	assert.Equal(t, "dracula", c.Preview.Style)
	assert.False(t, c.Preview.LineNumbers)
	assert.Equal(t, "@role.md", c.Export.Role)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("TASKPAD_STORE_BACKEND", "memory")
	t.Setenv("TASKPAD_INGEST_MAXFILESIZE", "2048")

	c, err := Load("", false)
	require.NoError(t, err)
	assert.Equal(t, kvstore.BackendMemory, c.Store.Backend)
	assert.Equal(t, int64(2048), c.Ingest.MaxFileSize)
}

func TestLoadExplicitFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	path := filepath.Join(dir, "custom.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"tui": {"theme": "ascii"}}`), 0644))

	c, err := Load("", false, WithConfigFile(path))
	require.NoError(t, err)
	assert.Equal(t, "ascii", c.TUI.Theme)

	_, err = Load("", false, WithConfigFile(filepath.Join(dir, "missing.json")))
	assert.Error(t, err)

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{"tui":`), 0644))
	_, err = Load("", false, WithConfigFile(broken))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Store:  StoreConfig{Backend: kvstore.BackendLibSQL},
			Editor: EditorConfig{Debounce: time.Second},
			Ingest: IngestConfig{MaxFileSize: 10},
			Log:    LogConfig{Level: "info"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(*Config) {}, true},
		{"upper case level", func(c *Config) { c.Log.Level = "WARN" }, true},
		{"unknown backend", func(c *Config) { c.Store.Backend = "redis" }, false},
		{"zero debounce", func(c *Config) { c.Editor.Debounce = 0 }, false},
		{"negative max size", func(c *Config) { c.Ingest.MaxFileSize = -1 }, false},
		{"unknown level", func(c *Config) { c.Log.Level = "loud" }, false},
		{"json format", func(c *Config) { c.Log.Format = "JSON" }, true},
		{"unknown format", func(c *Config) { c.Log.Format = "xml" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestStorePath(t *testing.T) {
	data := t.TempDir()

	c := Config{Data: Data{Directory: data}, Store: StoreConfig{Backend: kvstore.BackendLibSQL}}
	p, err := c.StorePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(data, "state.db"), p)

	c.Store.Backend = kvstore.BackendTOML
	p, err = c.StorePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(data, "state.toml"), p)

	c.Store.Path = "local.toml"
	c.WorkingDir = "/proj"
	p, err = c.StorePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/proj", "local.toml"), p)

	c.Store.Backend = kvstore.BackendMemory
	p, err = c.StorePath()
	require.NoError(t, err)
	assert.Empty(t, p)
}

func TestOpenStore(t *testing.T) {
	c := Config{Data: Data{Directory: t.TempDir()}, Store: StoreConfig{Backend: kvstore.BackendTOML}}
	s, err := c.OpenStore()
	require.NoError(t, err)
	require.NoError(t, s.Close())
}
