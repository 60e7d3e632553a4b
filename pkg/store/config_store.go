package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/dosewatch/dosewatch/pkg/models"
)

// ConfigStore handles configuration persistence as a TOML file
type ConfigStore struct {
	path string
}

// NewConfigStore creates a ConfigStore backed by the given file path
func NewConfigStore(path string) *ConfigStore {
	return &ConfigStore{path: path}
}

// Load reads the configuration file, filling in defaults for anything
// missing. A missing file is not an error; defaults are returned.
func (cs *ConfigStore) Load() (*models.Config, error) {
	cfg := models.DefaultConfig()

	if _, err := toml.DecodeFile(cs.path, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", cs.path, err)
	}
	return cfg, nil
}

// Save writes the configuration file, creating parent directories as needed
func (cs *ConfigStore) Save(cfg *models.Config) error {
	if err := os.MkdirAll(filepath.Dir(cs.path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	f, err := os.Create(cs.path)
	if err != nil {
		return fmt.Errorf("write config %s: %w", cs.path, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}
