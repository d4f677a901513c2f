// Package config loads the optional pgsetup.yaml project file holding
// connection defaults, the encoding candidate list, and dump settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

type ConnectionConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

type ProjectConfig struct {
	Connection ConnectionConfig `yaml:"connection"`

	// Encodings is the candidate list tried when decoding script files,
	// in order. Empty means the built-in default (utf-8, euc-kr, latin-1).
	Encodings []string `yaml:"encodings"`

	// DumpBatchSize overrides the data-dump flush batch size.
	DumpBatchSize int `yaml:"dump_batch_size"`

	Params map[string]string `yaml:"params"`
}

const ConfigFileName = "pgsetup.yaml"

// Load reads pgsetup.yaml from the given directory.
func Load(dir string) (*ProjectConfig, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", ConfigFileName, err)
	}
	return &cfg, nil
}

// LoadOrDefault reads pgsetup.yaml, returning an empty config when the
// file does not exist.
func LoadOrDefault(dir string) (*ProjectConfig, error) {
	cfg, err := Load(dir)
	if errors.Is(err, ErrConfigNotFound) {
		return &ProjectConfig{}, nil
	}
	return cfg, err
}
