// Package config loads lux settings with viper.
//
// Sources, lowest to highest precedence: built-in defaults, a config file
// (lux.yaml in the working directory, or an explicit path), LUX_* environment
// variables (LUX_INFERENCE_NOMINAL_CARDINALITY, LUX_SOURCE_DSN, ...), and
// command-line flags bound by the caller.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/viper"

	"lux/internal/metadata"
	"lux/internal/source"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "LUX"

// Config is the full lux configuration.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Inference InferenceConfig `mapstructure:"inference"`
	Source    SourceConfig    `mapstructure:"source"`
	Schema    string          `mapstructure:"schema"`
	Output    OutputConfig    `mapstructure:"output"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// LogConfig selects the zap logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// InferenceConfig tunes the type classifier.
type InferenceConfig struct {
	NominalCardinality int `mapstructure:"nominal_cardinality"`
}

// SourceConfig describes the input table. See source.Spec.
type SourceConfig struct {
	Kind           string        `mapstructure:"kind"`
	Path           string        `mapstructure:"path"`
	DSN            string        `mapstructure:"dsn"`
	Query          string        `mapstructure:"query"`
	Name           string        `mapstructure:"name"`
	Delimiter      string        `mapstructure:"delimiter"`
	Selector       string        `mapstructure:"selector"`
	MaxRows        int           `mapstructure:"max_rows"`
	NormalizeNames bool          `mapstructure:"normalize_names"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// OutputConfig controls the infer report.
type OutputConfig struct {
	Format string `mapstructure:"format"`
	Strict bool   `mapstructure:"strict"`
}

// MetricsConfig selects the metrics backend.
type MetricsConfig struct {
	Backend    string        `mapstructure:"backend"`
	Job        string        `mapstructure:"job"`
	Tags       string        `mapstructure:"tags"`
	FlushEvery time.Duration `mapstructure:"flush_every"`
}

// NewViper returns a viper instance with defaults and LUX_* environment
// overrides configured. Callers may bind flags to it before Load.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("inference.nominal_cardinality", metadata.DefaultNominalCardinality)
	v.SetDefault("source.kind", "")
	v.SetDefault("source.path", "")
	v.SetDefault("source.dsn", "")
	v.SetDefault("source.query", "")
	v.SetDefault("source.name", "")
	v.SetDefault("source.delimiter", "")
	v.SetDefault("source.selector", "")
	v.SetDefault("source.max_rows", 0)
	v.SetDefault("source.normalize_names", false)
	v.SetDefault("source.timeout", 30*time.Second)
	v.SetDefault("schema", "")
	v.SetDefault("output.format", "text")
	v.SetDefault("output.strict", false)
	v.SetDefault("metrics.backend", "none")
	v.SetDefault("metrics.job", "lux")
	v.SetDefault("metrics.tags", "")
	v.SetDefault("metrics.flush_every", 60*time.Second)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file into v and decodes the result.
//
// With an empty path, lux.yaml/lux.json/lux.toml in the working directory is
// used when present. An explicit path that cannot be read is an error.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("lux")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// SourceSpec converts the source settings to a source.Spec.
func (c *Config) SourceSpec() source.Spec {
	return source.Spec{
		Kind:           c.Source.Kind,
		Path:           c.Source.Path,
		DSN:            c.Source.DSN,
		Query:          c.Source.Query,
		Name:           c.Source.Name,
		Delimiter:      ParseDelimiter(c.Source.Delimiter),
		Selector:       c.Source.Selector,
		MaxRows:        c.Source.MaxRows,
		NormalizeNames: c.Source.NormalizeNames,
		Timeout:        c.Source.Timeout,
	}
}

// ParseDelimiter accepts a single character, "tab" or `\t`. Empty means the
// reader default.
func ParseDelimiter(s string) rune {
	switch s {
	case "":
		return 0
	case "tab", `\t`:
		return '\t'
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r
}
