package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file used by dosectl
type FileConfig struct {
	Dosing DosingFileConfig `toml:"dosing"`
}

// DosingFileConfig holds ratio defaults. Ratios are kept raw (number or
// string) and resolved by the dosing package.
type DosingFileConfig struct {
	CarbRatio    any     `toml:"carb_ratio"`
	GlucoseRatio any     `toml:"glucose_ratio"`
	Timezone     *string `toml:"timezone"`
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/diabetes-companion/config.toml
func DefaultConfigPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "diabetes-companion", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "diabetes-companion", "config.toml")
	}
	return filepath.Join(home, ".config", "diabetes-companion", "config.toml")
}

// LoadFile reads a TOML config from the given path. Missing file is not an error.
func LoadFile(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
