package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfig = `{
  "swww_args": "--transition-type fade --transition-step 90",
  "default": "/walls/default.png",
  "tags": {"1": "/walls/one.png", "2": "/walls/two.png"}
}`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadValid(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, "/walls/default.png", cfg.Default)
	assert.Equal(t, map[string]string{"1": "/walls/one.png", "2": "/walls/two.png"}, cfg.Tags)
	assert.Equal(t, []string{"--transition-type", "fade", "--transition-step", "90"}, cfg.ExtraArgs())
}

func TestLoadIgnoresUnknownFields(t *testing.T) {
	cfg, err := Load(writeConfig(t, `{"swww_args": "", "default": "/d.png", "tags": {}, "comment": "hi"}`))
	require.NoError(t, err)
	assert.Equal(t, "/d.png", cfg.Default)
	assert.Empty(t, cfg.Tags)
	assert.Empty(t, cfg.ExtraArgs())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrInvalid))
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", `{"default": `},
		{"not an object", `[1, 2, 3]`},
		{"missing default", `{"swww_args": "", "tags": {}}`},
		{"missing tags", `{"swww_args": "", "default": "/d.png"}`},
		{"missing swww_args", `{"default": "/d.png", "tags": {}}`},
		{"default not a string", `{"swww_args": "", "default": 3, "tags": {}}`},
		{"tag value not a string", `{"swww_args": "", "default": "/d.png", "tags": {"1": 5}}`},
		{"tags null", `{"swww_args": "", "default": "/d.png", "tags": null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid), "got %v", err)
		})
	}
}

func TestSchemaValidationMessage(t *testing.T) {
	_, err := Parse([]byte(`{"swww_args": "", "default": "/d.png", "tags": {"1": 5}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema validation failed")
	assert.Contains(t, err.Error(), "/tags/1")
}

func TestSchemaDocument(t *testing.T) {
	data, err := Schema()
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, "river-swww configuration", doc["title"])
	assert.ElementsMatch(t, []interface{}{"swww_args", "default", "tags"}, doc["required"])

	props, ok := doc["properties"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, props, "swww_args")
	assert.Contains(t, props, "default")
	assert.Contains(t, props, "tags")
}

func TestDefaultPathXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	assert.Equal(t, filepath.Join(dir, "river-swww"), Dir())
	assert.Equal(t, filepath.Join(dir, "river-swww", "config.json"), DefaultPath())
}

func TestDefaultPathHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", home)

	assert.Equal(t, filepath.Join(home, ".config", "river-swww", "config.json"), DefaultPath())
}

func TestExtraArgsWhitespace(t *testing.T) {
	cfg := Config{SwwwArgs: "  --resize   crop\t--fill-color 000000 "}
	assert.Equal(t, []string{"--resize", "crop", "--fill-color", "000000"}, cfg.ExtraArgs())
}

func TestExtraArgsEmpty(t *testing.T) {
	assert.Empty(t, Config{SwwwArgs: ""}.ExtraArgs())
	assert.Empty(t, Config{SwwwArgs: "   "}.ExtraArgs())
}
