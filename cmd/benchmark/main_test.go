package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/formats"
	"github.com/ajitpratap0/tabula/pkg/json"
)

func TestNewConfig(t *testing.T) {
	cfg, err := newConfig("", 10, 0, t.TempDir())
	require.NoError(t, err)
	assert.Len(t, cfg.Formats, len(formats.Registered()))
	assert.Equal(t, 1, cfg.Iterations)

	cfg, err = newConfig("parquet, csv", 10, 2, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, []formats.Format{formats.Parquet, formats.Delimited}, cfg.Formats)

	_, err = newConfig("orc", 10, 1, t.TempDir())
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	cfg, err := newConfig("", 25, 2, dir)
	require.NoError(t, err)

	var out bytes.Buffer
	results, err := run(cfg, &out)
	require.NoError(t, err)
	require.Len(t, results, len(cfg.Formats))
	for _, r := range results {
		assert.Equal(t, 25, r.Rows)
		assert.Equal(t, 2, r.Iterations)
		assert.Positive(t, r.FileBytes, "format %s", r.Format)
		assert.Positive(t, r.RSSBytes, "format %s", r.Format)
		assert.Contains(t, out.String(), string(r.Format))
	}
	assert.Equal(t, len(results), strings.Count(out.String(), "records/sec")/2)

	path := filepath.Join(dir, "report.json")
	require.NoError(t, writeReport(path, results))
	var decoded []Result
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, results, decoded)
}
