package config

import (
	"encoding/json"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ToTOML renders cfg in the format codex reads by default. Empty strings,
// maps, and slices are omitted; false and 0 are kept (they are meaningful
// settings, not absence).
func ToTOML(cfg Config) (string, error) {
	out, err := toml.Marshal(cfg)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// ToJSON renders cfg as indented JSON.
func ToJSON(cfg Config) (string, error) {
	out, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out) + "\n", nil
}

// ToYAML renders cfg as YAML.
func ToYAML(cfg Config) (string, error) {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
