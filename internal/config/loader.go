package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrParse is wrapped by every error caused by a malformed document,
// including unknown keys and unknown enum names.
var ErrParse = errors.New("config: parse error")

// FromJSON loads a configuration from a JSON document.
// Keys that are omitted keep their defaults.
func FromJSON(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return ParseJSON(data, path)
}

// ParseJSON decodes a JSON document over the defaults. The name is only
// used in error messages.
func ParseJSON(data []byte, name string) (Config, error) {
	cfg := Default()

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %s: %w", ErrParse, name, err)
	}

	// a document is exactly one value
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return Config{}, fmt.Errorf("%w: %s: trailing data after document", ErrParse, name)
	}

	return cfg, nil
}

// FromYAML loads a configuration from a YAML document.
func FromYAML(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return ParseYAML(data, path)
}

// ParseYAML decodes a YAML document over the defaults.
func ParseYAML(data []byte, name string) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, fmt.Errorf("%w: %s: %w", ErrParse, name, err)
	}

	return cfg, nil
}

// Load loads a configuration.
// Search order: customPath -> ~/.meleegym/config.json -> ./meleegym.json -> embedded default.
// A custom path ending in .yaml or .yml is decoded as YAML, anything else as JSON.
func Load(customPath string) (Config, error) {
	// Try custom path first
	if customPath != "" {
		if isYAML(customPath) {
			return FromYAML(customPath)
		}
		return FromJSON(customPath)
	}

	// Try user config directory
	if userCfgPath := userConfigPath("config.json"); userCfgPath != "" {
		if _, err := os.Stat(userCfgPath); err == nil {
			return FromJSON(userCfgPath)
		}
	}

	// Try working directory
	if _, err := os.Stat("meleegym.json"); err == nil {
		return FromJSON("meleegym.json")
	}

	// Use embedded default YAML
	cfg, err := ParseYAML(defaultYAML, "embedded defaults")
	if err != nil {
		return Default(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".meleegym", filename)
}
