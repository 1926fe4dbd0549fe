// Package config loads the river-swww configuration file.
//
// The file lives at $XDG_CONFIG_HOME/river-swww/config.json and maps River
// tags to wallpaper paths:
//
//	{
//	  "swww_args": "--transition-type fade",
//	  "default": "/home/me/walls/default.png",
//	  "tags": {"1": "/home/me/walls/one.png", "2": "/home/me/walls/two.png"}
//	}
//
// The configuration is read once at startup and never changes afterwards.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
)

var (
	// ErrNotFound is returned when the configuration file does not exist.
	ErrNotFound = errors.New("configuration file not found")
	// ErrInvalid is returned when the file is unreadable, not JSON, or does
	// not match the schema.
	ErrInvalid = errors.New("invalid configuration")
)

// Config is the on-disk configuration.
type Config struct {
	// SwwwArgs is passed to every swww invocation, split on whitespace.
	SwwwArgs string `json:"swww_args" mapstructure:"swww_args" jsonschema:"description=Extra arguments for swww img (split on whitespace)"`
	// Default is the wallpaper for tags without their own entry.
	Default string `json:"default" mapstructure:"default" jsonschema:"description=Fallback wallpaper path"`
	// Tags maps a 1-based tag number to a wallpaper path.
	Tags map[string]string `json:"tags" mapstructure:"tags" jsonschema:"description=Tag number to wallpaper path"`
}

// ExtraArgs returns SwwwArgs split into separate arguments.
// Empty and repeated separators are dropped on purpose, so "" adds no
// argument to swww and "a  b" gives two.
func (c Config) ExtraArgs() []string {
	return strings.Fields(c.SwwwArgs)
}

// Load reads, validates and decodes the configuration at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return Config{}, fmt.Errorf("%w: read %s: %v", ErrInvalid, path, err)
	}
	return Parse(data)
}

// Parse validates and decodes a configuration document.
func Parse(data []byte) (Config, error) {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("%w: parse json: %v", ErrInvalid, err)
	}

	v, err := defaultValidator()
	if err != nil {
		return Config{}, err
	}
	if err := v.Validate(raw); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	var cfg Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &cfg,
		TagName: "mapstructure",
	})
	if err != nil {
		return Config{}, fmt.Errorf("create decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return Config{}, fmt.Errorf("%w: decode: %v", ErrInvalid, err)
	}
	if cfg.Tags == nil {
		cfg.Tags = map[string]string{}
	}
	return cfg, nil
}
