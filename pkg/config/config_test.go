package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/tabula/pkg/errors"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"bad delimited compression", func(c *Config) { c.Delimited.Compression = "rar" }, false},
		{"bad parquet compression", func(c *Config) { c.Columnar.ParquetCompression = "s2" }, false},
		{"zero batch", func(c *Config) { c.Columnar.ReadBatchSize = 0 }, false},
		{"bad avro codec", func(c *Config) { c.Columnar.AvroCodec = "zstd" }, false},
		{"negative rows", func(c *Config) { c.Generator.Rows = -1 }, false},
		{"bad log level", func(c *Config) { c.Log.Level = "chatty" }, false},
		{"lz4 delimited", func(c *Config) { c.Delimited.Compression = "lz4" }, true},
		{"sampling above one", func(c *Config) { c.Tracing.SamplingRate = 2 }, false},
		{"tracing enabled", func(c *Config) { c.Tracing.Enabled = true }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
		})
	}
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, NewConfig().Columnar, cfg.Columnar)
	assert.Equal(t, 400, cfg.Generator.Rows)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, 1.0, cfg.Tracing.SamplingRate)
}

func TestLoadYAMLWithEnvSubstitution(t *testing.T) {
	t.Setenv("TABULA_TEST_CODEC", "deflate")
	path := filepath.Join(t.TempDir(), "tabula.yaml")
	content := `
columnar:
  parquet_compression: zstd
  avro_codec: ${TABULA_TEST_CODEC}
generator:
  rows: 25
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "zstd", cfg.Columnar.ParquetCompression)
	assert.Equal(t, "deflate", cfg.Columnar.AvroCodec)
	assert.Equal(t, 25, cfg.Generator.Rows)
	assert.Equal(t, int64(42), cfg.Generator.Seed)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("TABULA_GENERATOR_SEED", "7")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, int64(7), cfg.Generator.Seed)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tabula.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"columnar":{"avro_codec":"bzip2"}}`), 0o600))
	_, err := Load(path)
	require.Error(t, err)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := NewConfig()
	cfg.Delimited.Compression = "gzip"
	cfg.Generator.Rows = 10
	cfg.Tracing.Enabled = true
	cfg.Tracing.SamplingRate = 0.5
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gzip", loaded.Delimited.Compression)
	assert.Equal(t, 10, loaded.Generator.Rows)
	assert.Equal(t, cfg.Tracing, loaded.Tracing)
}
