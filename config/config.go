// Package config contains fullnode configuration definitions.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/marcosrachid/go-neo-fullnode/filesystem"
	"github.com/marcosrachid/go-neo-fullnode/mesh"
	"github.com/marcosrachid/go-neo-fullnode/rpc"
	"github.com/marcosrachid/go-neo-fullnode/syncer"
)

const (
	defaultDataDirName = "neo-fullnode"
	lockFileName       = "node.lock"
)

// Config defines the top level configuration for a fullnode.
type Config struct {
	BaseConfig `mapstructure:"main"`
	Mesh       mesh.Config   `mapstructure:"mesh"`
	Sync       syncer.Config `mapstructure:"sync"`
	RPC        rpc.Config    `mapstructure:"rpc"`
	LOGGING    LoggerConfig  `mapstructure:"logging"`
}

// BaseConfig defines the default configuration options for the fullnode app.
type BaseConfig struct {
	DataDirParent string `mapstructure:"data-folder"`

	ConfigFile string `mapstructure:"config"`

	// Nodes seeds the mesh with JSON-RPC endpoints to probe.
	Nodes []string `mapstructure:"nodes"`

	CollectMetrics bool `mapstructure:"metrics"`
	MetricsPort    int  `mapstructure:"metrics-port"`

	// ProgressInterval drives the periodic sync progress log line.
	ProgressInterval time.Duration `mapstructure:"progress-interval"`
}

// LoggerConfig holds the logging settings.
type LoggerConfig struct {
	Encoder string `mapstructure:"log-encoder"`
	Level   string `mapstructure:"log-level"`
}

// DataDir returns the absolute path to use for the node's data.
func (cfg *Config) DataDir() string {
	return filesystem.GetCanonicalPath(cfg.DataDirParent)
}

// StorePath returns the block store location inside the data dir.
func (cfg *Config) StorePath() string {
	return filepath.Join(cfg.DataDir(), "blocks")
}

// LockPath returns the exclusive-instance lock file location.
func (cfg *Config) LockPath() string {
	return filepath.Join(cfg.DataDir(), lockFileName)
}

// Validate rejects the misconfigurations that are fatal at startup.
func (cfg *Config) Validate() error {
	if len(cfg.Nodes) == 0 {
		return errors.New("at least one node endpoint is required")
	}
	if err := cfg.Mesh.Validate(); err != nil {
		return fmt.Errorf("mesh: %w", err)
	}
	if err := cfg.Sync.Validate(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	return nil
}

// DefaultConfig returns the default configuration for a fullnode.
func DefaultConfig() Config {
	return Config{
		BaseConfig: defaultBaseConfig(),
		Mesh:       mesh.DefaultConfig(),
		Sync:       syncer.DefaultConfig(),
		RPC:        rpc.DefaultConfig(),
		LOGGING:    defaultLoggerConfig(),
	}
}

func defaultBaseConfig() BaseConfig {
	return BaseConfig{
		DataDirParent:    filepath.Join(filesystem.GetUserHomeDirectory(), defaultDataDirName),
		CollectMetrics:   false,
		MetricsPort:      2112,
		ProgressInterval: 30 * time.Second,
	}
}

func defaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		Encoder: "console",
		Level:   "info",
	}
}

// LoadConfig reads the config file at path into cfg, on top of whatever cfg
// already holds. A missing path leaves cfg untouched.
func LoadConfig(cfg *Config, path string) error {
	if path == "" {
		return nil
	}
	vip := viper.New()
	vip.SetConfigFile(path)
	if err := vip.ReadInConfig(); err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	hook := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
	opts := []viper.DecoderConfigOption{
		viper.DecodeHook(hook),
		withZeroFields(),
		withErrorUnused(),
	}
	if err := vip.Unmarshal(cfg, opts...); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	return nil
}

func withZeroFields() viper.DecoderConfigOption {
	return func(cfg *mapstructure.DecoderConfig) {
		cfg.ZeroFields = true
	}
}

func withErrorUnused() viper.DecoderConfigOption {
	return func(cfg *mapstructure.DecoderConfig) {
		cfg.ErrorUnused = true
	}
}
