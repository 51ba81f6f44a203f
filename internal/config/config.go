// Package config loads the running configuration of the plain backend.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/viper"

	"github.com/born-ml/plain/internal/parallel"
)

// Running holds process-wide execution parameters. It is read-only once a
// computation starts.
type Running struct {
	// ThreadCount bounds the workers of one parallel dispatch. 0 means one per CPU.
	ThreadCount int `mapstructure:"threads"`

	// MinChunkSize is the smallest element range handed to a worker.
	MinChunkSize int `mapstructure:"min_chunk_size"`

	Logging LoggingConfig `mapstructure:"logging"`
}

// LoggingConfig configures the driver logger.
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	File    string `mapstructure:"file"`
	Console bool   `mapstructure:"console"`
}

// Default returns the configuration used when nothing else is given.
func Default() *Running {
	return &Running{
		ThreadCount:  0,
		MinChunkSize: parallel.DefaultConfig().MinChunkSize,
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
		},
	}
}

// Load reads the configuration from file (optional), PLAIN_* environment
// variables and defaults, in decreasing priority.
func Load(cfgFile string) (*Running, error) {
	return LoadViper(viper.New(), cfgFile)
}

// LoadViper is Load on a caller-provided viper instance, so that command line
// flags bound to it take precedence over everything else.
func LoadViper(v *viper.Viper, cfgFile string) (*Running, error) {
	setDefaults(v, Default())

	v.SetEnvPrefix("PLAIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", cfgFile, err)
		}
	}

	return FromViper(v)
}

// FromViper decodes an already populated viper instance.
func FromViper(v *viper.Viper) (*Running, error) {
	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Running) {
	v.SetDefault("threads", cfg.ThreadCount)
	v.SetDefault("min_chunk_size", cfg.MinChunkSize)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.console", cfg.Logging.Console)
}

// Validate checks the configuration values.
func (c *Running) Validate() error {
	if c.ThreadCount < 0 {
		return fmt.Errorf("threads must be >= 0, got %d", c.ThreadCount)
	}
	if c.MinChunkSize < 1 {
		return errors.New("min_chunk_size must be >= 1")
	}
	return nil
}

// Threads returns the effective worker count.
func (c *Running) Threads() int {
	if c.ThreadCount == 0 {
		return runtime.NumCPU()
	}
	return c.ThreadCount
}

// Parallel returns the dispatch configuration for kernels.
func (c *Running) Parallel() parallel.Config {
	cfg := parallel.DefaultConfig().WithWorkers(c.Threads())
	cfg.MinChunkSize = max(c.MinChunkSize, 1)
	return cfg
}
