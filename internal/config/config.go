package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Batch  BatchConfig  `yaml:"batch" mapstructure:"batch"`
	Sample SampleConfig `yaml:"sample" mapstructure:"sample"`
	Table  TableConfig  `yaml:"table" mapstructure:"table"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Fetch  FetchConfig  `yaml:"fetch" mapstructure:"fetch"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ServerConfig configures the HTTP profiling service.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
	// RateLimit is the sustained request rate in requests per second.
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	Burst     int     `yaml:"burst" mapstructure:"burst"`
}

// BatchConfig configures manifest processing.
type BatchConfig struct {
	MaxConcurrentDatasets int `yaml:"max_concurrent_datasets" mapstructure:"max_concurrent_datasets"`
}

// SampleConfig controls per-column value sampling.
type SampleConfig struct {
	Size     int      `yaml:"size" mapstructure:"size"`
	NAValues []string `yaml:"na_values" mapstructure:"na_values"`
}

// TableConfig bounds dataset loading.
type TableConfig struct {
	// MaxRows caps rows read per dataset; 0 reads everything.
	MaxRows int    `yaml:"max_rows" mapstructure:"max_rows"`
	TempDir string `yaml:"temp_dir" mapstructure:"temp_dir"`
}

// StoreConfig configures the Postgres connection used for postgres: sources.
type StoreConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// FetchConfig configures downloads of http(s) dataset sources.
type FetchConfig struct {
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int     `yaml:"max_retries" mapstructure:"max_retries"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// Load reads configuration from an optional ./config.yaml and environment.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom reads configuration from path and environment. An empty path
// looks for an optional config.yaml in the working directory; an explicit
// path must exist.
func LoadFrom(path string) (*Config, error) {
	v := viper.New()

	// Config file
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Environment
	v.SetEnvPrefix("GEOPROFILE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit", 20.0)
	v.SetDefault("server.burst", 40)
	v.SetDefault("batch.max_concurrent_datasets", 4)
	v.SetDefault("sample.size", 3)
	v.SetDefault("sample.na_values", []string{"NA", "N/A", "NaN", "nan", "null", "NULL", "None", "#N/A"})
	v.SetDefault("table.max_rows", 0)
	v.SetDefault("table.temp_dir", "")
	v.SetDefault("store.database_url", "")
	v.SetDefault("fetch.user_agent", "geo-profiler/1.0")
	v.SetDefault("fetch.timeout_secs", 120)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.rate_limit", 5.0)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on. Mode is one of
// "profile", "batch", or "serve".
func (c *Config) Validate(mode string) error {
	var errs []string

	if c.Sample.Size < 1 {
		errs = append(errs, "sample.size must be >= 1")
	}
	if c.Table.MaxRows < 0 {
		errs = append(errs, "table.max_rows must be >= 0")
	}
	if c.Fetch.MaxRetries < 0 || c.Fetch.TimeoutSecs < 0 || c.Fetch.RateLimit < 0 {
		errs = append(errs, "fetch settings must be >= 0")
	}

	switch mode {
	case "profile":
	case "batch":
		errs = append(errs, c.validateConcurrency()...)
	case "serve":
		errs = append(errs, c.validateConcurrency()...)
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
		if c.Server.RateLimit <= 0 {
			errs = append(errs, "server.rate_limit must be > 0")
		}
		if c.Server.Burst < 1 {
			errs = append(errs, "server.burst must be >= 1")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.New(fmt.Sprintf("config: %s", strings.Join(errs, "; ")))
	}
	return nil
}

func (c *Config) validateConcurrency() []string {
	if n := c.Batch.MaxConcurrentDatasets; n < 1 || n > 50 {
		return []string{"batch.max_concurrent_datasets must be between 1 and 50"}
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
