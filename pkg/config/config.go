// Package config provides the configuration for tabula codecs, the demo
// generator and the CLI.
//
// The configuration is organized into sections:
//   - Log: zap logger settings
//   - Delimited: delimited text codec settings
//   - Columnar: IPC, Parquet and Avro codec settings
//   - Generator: demo dataset size and seed
//   - Metrics: prometheus collection
//   - Tracing: OpenTelemetry span export
//
// Example usage:
//
//	cfg := config.NewConfig()
//	cfg.Columnar.ParquetCompression = "zstd"
//
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config

import (
	"fmt"

	"github.com/ajitpratap0/tabula/pkg/compression"
	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/logger"
	"github.com/ajitpratap0/tabula/pkg/tracing"
)

// Config is the top-level configuration.
type Config struct {
	Log       logger.Config   `yaml:"log" json:"log" mapstructure:"log"`
	Delimited DelimitedConfig `yaml:"delimited" json:"delimited" mapstructure:"delimited"`
	Columnar  ColumnarConfig  `yaml:"columnar" json:"columnar" mapstructure:"columnar"`
	Generator GeneratorConfig `yaml:"generator" json:"generator" mapstructure:"generator"`
	Metrics   MetricsConfig   `yaml:"metrics" json:"metrics" mapstructure:"metrics"`
	Tracing   tracing.Config  `yaml:"tracing" json:"tracing" mapstructure:"tracing"`
}

// DelimitedConfig controls the delimited text codec.
type DelimitedConfig struct {
	// Compression applied to the primary file; the sidecar stays plain JSON
	Compression string `yaml:"compression" json:"compression" mapstructure:"compression"`
}

// ColumnarConfig controls the IPC, Parquet and Avro codecs.
type ColumnarConfig struct {
	// ParquetCompression is one of snappy, gzip, zstd, lz4, brotli, none
	ParquetCompression string `yaml:"parquet_compression" json:"parquet_compression" mapstructure:"parquet_compression"`
	// ReadBatchSize is the number of rows per batch when reading Parquet
	ReadBatchSize int64 `yaml:"read_batch_size" json:"read_batch_size" mapstructure:"read_batch_size"`
	// AvroCodec is one of snappy, deflate, null
	AvroCodec string `yaml:"avro_codec" json:"avro_codec" mapstructure:"avro_codec"`
}

// GeneratorConfig controls the demo dataset.
type GeneratorConfig struct {
	Rows int   `yaml:"rows" json:"rows" mapstructure:"rows"`
	Seed int64 `yaml:"seed" json:"seed" mapstructure:"seed"`
}

// MetricsConfig controls prometheus collection.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
}

var (
	parquetCompressions = map[string]bool{
		"snappy": true, "gzip": true, "zstd": true, "lz4": true, "brotli": true, "none": true,
	}
	avroCodecs = map[string]bool{
		"snappy": true, "deflate": true, "null": true,
	}
)

// NewConfig creates a configuration with default values.
func NewConfig() *Config {
	return &Config{
		Log: logger.DefaultConfig(),
		Delimited: DelimitedConfig{
			Compression: string(compression.None),
		},
		Columnar: ColumnarConfig{
			ParquetCompression: "snappy",
			ReadBatchSize:      64 * 1024,
			AvroCodec:          "snappy",
		},
		Generator: GeneratorConfig{
			Rows: 400,
			Seed: 42,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Tracing: tracing.DefaultConfig(),
	}
}

// Validate checks that every value is within its accepted range.
func (c *Config) Validate() error {
	if _, err := compression.ParseAlgorithm(c.Delimited.Compression); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "delimited.compression")
	}
	if !parquetCompressions[c.Columnar.ParquetCompression] {
		return errors.Newf(errors.ErrorTypeConfig, "columnar.parquet_compression %q is not supported", c.Columnar.ParquetCompression)
	}
	if c.Columnar.ReadBatchSize <= 0 {
		return errors.New(errors.ErrorTypeConfig, "columnar.read_batch_size must be positive")
	}
	if !avroCodecs[c.Columnar.AvroCodec] {
		return errors.Newf(errors.ErrorTypeConfig, "columnar.avro_codec %q is not supported", c.Columnar.AvroCodec)
	}
	if c.Generator.Rows < 0 {
		return errors.New(errors.ErrorTypeConfig, "generator.rows cannot be negative")
	}
	if err := c.Tracing.Validate(); err != nil {
		return err
	}
	if _, err := logger.New(c.Log); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, fmt.Sprintf("log level %q", c.Log.Level))
	}
	return nil
}
