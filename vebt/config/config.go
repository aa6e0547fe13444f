package config

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	internal "github.com/ZanzyTHEbar/vebtree/vebt"
	"github.com/ZanzyTHEbar/vebtree/vebt/layout"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Layout   LayoutConfig   `mapstructure:"layout"`
	Search   SearchConfig   `mapstructure:"search"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Log      LogConfig      `mapstructure:"log"`
	Demo     DemoConfig     `mapstructure:"demo"`
}

// LayoutConfig controls tree construction.
type LayoutConfig struct {
	Workers           int `mapstructure:"workers"`
	ParallelThreshold int `mapstructure:"parallelThreshold"`
}

// SearchConfig controls batch search fan-out.
type SearchConfig struct {
	Workers   int `mapstructure:"workers"`
	BatchSize int `mapstructure:"batchSize"`
}

// AnalysisConfig lists block sizes, in keys, for transfer profiling.
type AnalysisConfig struct {
	BlockSizes []int `mapstructure:"blockSizes"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// DemoConfig holds the keys and queries of the demonstration driver.
type DemoConfig struct {
	Keys    string `mapstructure:"keys"`
	Queries string `mapstructure:"queries"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("..")
		v.AddConfigPath(filepath.Join("etc", internal.DefaultAppName))
		v.AddConfigPath(internal.DefaultConfigPath)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetDefault("layout.workers", runtime.NumCPU())
	v.SetDefault("layout.parallelThreshold", layout.DefaultParallelThreshold)
	v.SetDefault("search.workers", runtime.NumCPU())
	v.SetDefault("search.batchSize", layout.DefaultBatchSize)
	v.SetDefault("analysis.blockSizes", []int{4, 16, 64})
	v.SetDefault("log.level", internal.DefaultLogLevel)
	v.SetDefault("demo.keys", internal.DefaultDemoKeys)
	v.SetDefault("demo.queries", internal.DefaultDemoQueries)

	v.SetEnvPrefix(internal.DefaultAppName)
	v.AutomaticEnv()                                   // e.g. VEBT_LOG_LEVEL
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // layout.workers -> VEBT_LAYOUT_WORKERS

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the layout cannot honour.
func (c *Config) Validate() error {
	if c.Layout.Workers < 1 || c.Search.Workers < 1 {
		return fmt.Errorf("invalid config: workers must be positive (layout=%d search=%d)", c.Layout.Workers, c.Search.Workers)
	}
	if c.Search.BatchSize < 1 {
		return fmt.Errorf("invalid config: search.batchSize must be positive, got %d", c.Search.BatchSize)
	}
	for _, b := range c.Analysis.BlockSizes {
		if b < 1 {
			return fmt.Errorf("invalid config: analysis.blockSizes entries must be positive, got %d", b)
		}
	}
	return nil
}

// LayoutOptions turns the config into tree construction options.
func (c *Config) LayoutOptions() []layout.Option {
	return []layout.Option{
		layout.WithParallelThreshold(c.Layout.ParallelThreshold),
		layout.WithWorkers(c.Layout.Workers),
		layout.WithSearchWorkers(c.Search.Workers),
		layout.WithBatchSize(c.Search.BatchSize),
	}
}
