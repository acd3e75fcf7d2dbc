/*
Package config manages TOML config for quickfind services.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/bastiangx/quickfind/internal/utils"
	"github.com/bastiangx/quickfind/pkg/search"
	"github.com/charmbracelet/log"
)

// Config holds the entire config structure
type Config struct {
	Server ServerConfig `toml:"server"`
	Search SearchConfig `toml:"search"`
}

// ServerConfig has server related options.
type ServerConfig struct {
	MaxLimit     int `toml:"max_limit"`
	DefaultLimit int `toml:"default_limit"`
	MinQuery     int `toml:"min_query"`
	MaxQuery     int `toml:"max_query"`
}

// SearchConfig holds engine options.
type SearchConfig struct {
	UnmatchedPolicy    string `toml:"unmatched_policy"`    // "backtracking" or "exact"
	AccumulationPolicy string `toml:"accumulation_policy"` // "union" or "intersection"
	Parallel           bool   `toml:"parallel"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			MaxLimit:     64,
			DefaultLimit: 10,
			MinQuery:     1,
			MaxQuery:     60,
		},
		Search: SearchConfig{
			UnmatchedPolicy:    "backtracking",
			AccumulationPolicy: "union",
			Parallel:           false,
		},
	}
}

// EngineOptions maps the [search] section onto engine options.
// Unrecognized policy strings fall back to the defaults.
func (c *Config) EngineOptions() []search.Option {
	opts := []search.Option{
		search.WithParallelCombine(c.Search.Parallel),
	}

	switch c.Search.UnmatchedPolicy {
	case "exact":
		opts = append(opts, search.WithUnmatchedPolicy(search.Exact))
	case "backtracking", "":
	default:
		log.Warnf("Unknown unmatched_policy %q, using backtracking", c.Search.UnmatchedPolicy)
	}

	switch c.Search.AccumulationPolicy {
	case "intersection":
		opts = append(opts, search.WithAccumulationPolicy(search.Intersection))
	case "union", "":
	default:
		log.Warnf("Unknown accumulation_policy %q, using union", c.Search.AccumulationPolicy)
	}

	return opts
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: ~/.config/quickfind/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}

	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "quickfind", "config.toml"), nil
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file, on top of builtin defaults so
// missing keys keep their default values.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()
	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return nil, err
	}
	return config, nil
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// Update changes the server config values and saves to file
func (c *Config) Update(configPath string, maxLimit, minQuery, maxQuery *int) error {
	server := &c.Server
	if maxLimit != nil {
		server.MaxLimit = *maxLimit
	}
	if minQuery != nil {
		server.MinQuery = *minQuery
	}
	if maxQuery != nil {
		server.MaxQuery = *maxQuery
	}
	return SaveConfig(c, configPath)
}
