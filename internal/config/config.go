// Package config loads lexicon's runtime configuration with Viper.
//
// Sources in increasing precedence: defaults, an optional TOML/YAML file,
// LEXICON_* environment variables (dots become underscores, so
// dynamodb.entry_table reads LEXICON_DYNAMODB_ENTRY_TABLE).
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/jacentio/lexicon/query"
	"github.com/jacentio/lexicon/store"
)

// Backend names accepted by Config.Backend.
const (
	BackendDynamoDB = "dynamodb"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

// Config is the top-level configuration.
type Config struct {
	Backend  string         `mapstructure:"backend"`
	Log      LogConfig      `mapstructure:"log"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	DynamoDB DynamoDBConfig `mapstructure:"dynamodb"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SQLiteConfig configures the SQLite backend.
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// DynamoDBConfig configures the DynamoDB backend.
type DynamoDBConfig struct {
	EntryTable   string `mapstructure:"entry_table"`
	UniqueTable  string `mapstructure:"unique_table"`
	ScanSegments int    `mapstructure:"scan_segments"`
	ContainsMode string `mapstructure:"contains_mode"`
	Region       string `mapstructure:"region"`
	// Endpoint overrides the service URL, e.g. for DynamoDB Local.
	Endpoint string `mapstructure:"endpoint"`
}

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	defaults := store.DefaultConfig()

	v.SetDefault("backend", BackendSQLite)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("sqlite.path", "lexicon.db")
	v.SetDefault("dynamodb.entry_table", defaults.EntryTable)
	v.SetDefault("dynamodb.unique_table", defaults.UniqueTable)
	v.SetDefault("dynamodb.scan_segments", defaults.ScanSegments)
	v.SetDefault("dynamodb.contains_mode", defaults.ContainsMode.String())
	v.SetDefault("dynamodb.region", "")
	v.SetDefault("dynamodb.endpoint", "")
}

// New returns a Viper instance bound to the environment with defaults set.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("LEXICON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// Load reads configuration from v and, when path is set, from that file.
// v is typically from New, with command-line flags already bound.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}
	return LoadWithViper(v)
}

// LoadWithViper loads configuration using a provided Viper instance
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports unknown backends and containment modes.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendDynamoDB, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("unknown backend %q (want dynamodb, sqlite or memory)", c.Backend)
	}
	if _, err := query.ParseContainsMode(c.DynamoDB.ContainsMode); err != nil {
		return err
	}
	return nil
}

// Store returns the DynamoDB store configuration.
func (c *Config) Store() store.Config {
	mode, _ := query.ParseContainsMode(c.DynamoDB.ContainsMode)
	return store.Config{
		EntryTable:   c.DynamoDB.EntryTable,
		UniqueTable:  c.DynamoDB.UniqueTable,
		ScanSegments: c.DynamoDB.ScanSegments,
		ContainsMode: mode,
	}
}
