// Package config loads application configuration from file and
// environment and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// AnthropicConfig holds enhancement service settings. An empty Key is
// not fatal: the engine then resolves every flagged field through the
// local simulation path without any network attempt.
type AnthropicConfig struct {
	Key                 string  `yaml:"key" mapstructure:"key"`
	Model               string  `yaml:"model" mapstructure:"model"`
	MaxTokens           int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature         float64 `yaml:"temperature" mapstructure:"temperature"`
	ChunkSize           int     `yaml:"chunk_size" mapstructure:"chunk_size"`
	SmallBatchThreshold int     `yaml:"small_batch_threshold" mapstructure:"small_batch_threshold"`
	RequestsPerSecond   float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// PipelineConfig holds advisory thresholds and sampling knobs.
type PipelineConfig struct {
	TypeConfidenceThreshold    int     `yaml:"type_confidence_threshold" mapstructure:"type_confidence_threshold"`
	MappingCoverageThreshold   float64 `yaml:"mapping_coverage_threshold" mapstructure:"mapping_coverage_threshold"`
	MappingConfidenceThreshold float64 `yaml:"mapping_confidence_threshold" mapstructure:"mapping_confidence_threshold"`
	SampleRows                 int     `yaml:"sample_rows" mapstructure:"sample_rows"`
	ForceType                  string  `yaml:"force_type" mapstructure:"force_type"`
}

// OutputConfig configures canonical row serialization.
type OutputConfig struct {
	Dir       string `yaml:"dir" mapstructure:"dir"`
	Delimiter string `yaml:"delimiter" mapstructure:"delimiter"`
}

// ServerConfig configures the conversion HTTP endpoint.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CONVERTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("anthropic.temperature", 0.2)
	v.SetDefault("anthropic.chunk_size", 8)
	v.SetDefault("anthropic.small_batch_threshold", 3)
	v.SetDefault("anthropic.requests_per_second", 2)
	v.SetDefault("pipeline.type_confidence_threshold", 60)
	v.SetDefault("pipeline.mapping_coverage_threshold", 0.6)
	v.SetDefault("pipeline.mapping_confidence_threshold", 70)
	v.SetDefault("pipeline.sample_rows", 5)
	v.SetDefault("output.dir", ".")
	v.SetDefault("output.delimiter", ";")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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
