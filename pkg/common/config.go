package common

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the optional gcmtools configuration file.
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Log    LogConfig    `toml:"log"`
}

// LayoutConfig overrides the disc layout constants. Unset fields keep the defaults.
type LayoutConfig struct {
	DOLAlignment      *int64 `toml:"dol_alignment"`
	FSTAlignment      *int64 `toml:"fst_alignment"`
	HeaderSize        *int64 `toml:"header_size"`
	HeaderPatchOffset *int64 `toml:"header_patch_offset"`
}

// LogConfig holds logging defaults.
type LogConfig struct {
	Verbose *bool `toml:"verbose"`
}

// ConfigPath returns the resolved path to the config file.
func ConfigPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "gcmtools", "config.toml")
}

// LoadConfig reads the config file at path, or at ConfigPath() when path is empty.
// A missing file yields a zero Config and no error.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		path = ConfigPath()
	}
	if path == "" {
		return Config{}, nil
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, FormatError(ErrFailedToLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	LogDebug(InfoConfigLoaded, path)
	return cfg, nil
}

// Validate checks that configured alignments are powers of two and offsets are not negative.
func (c Config) Validate() error {
	alignments := map[string]*int64{
		"dol_alignment": c.Layout.DOLAlignment,
		"fst_alignment": c.Layout.FSTAlignment,
	}
	for name, value := range alignments {
		if value != nil && !IsPowerOfTwo(*value) {
			return FormatErrorString(ErrInvalidAlignmentValue, "%s = %d", name, *value)
		}
	}
	if v := c.Layout.HeaderSize; v != nil && *v < 0 {
		return fmt.Errorf("header_size must not be negative, got %d", *v)
	}
	if v := c.Layout.HeaderPatchOffset; v != nil && *v < 0 {
		return fmt.Errorf("header_patch_offset must not be negative, got %d", *v)
	}
	return nil
}
