// Package testutil provides testing utilities for tabula codecs and
// datasets.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/tabula/pkg/dataset"
	"github.com/ajitpratap0/tabula/pkg/formats"
	"github.com/ajitpratap0/tabula/pkg/vector"
)

// TestLogger creates a test logger that writes to the test output.
func TestLogger(t testing.TB) *zap.Logger {
	return zaptest.NewLogger(t)
}

// Options returns codec options with a private id allocator starting at
// first and a test logger.
func Options(t testing.TB, first int64) formats.Options {
	return formats.Options{IDs: dataset.NewIDAllocator(first), Logger: TestLogger(t)}
}

// AssertDatasetsEqual checks dataset metadata, column schemas and every
// cell. Cells compare with vector.Value.Equal, so decimals compare
// numerically and instants compare regardless of location.
func AssertDatasetsEqual(t testing.TB, want, got *dataset.DataSet) {
	t.Helper()
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.Author, got.Author)
	assert.Equal(t, want.Source, got.Source)
	assert.Equal(t, want.Description, got.Description)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt), "created_at %s != %s", want.CreatedAt, got.CreatedAt)
	require.Equal(t, want.ColumnCount(), got.ColumnCount())
	require.Equal(t, want.RowCount(), got.RowCount())
	for i := 0; i < want.ColumnCount(); i++ {
		wc, gc := want.ColumnAt(i), got.ColumnAt(i)
		assert.True(t, wc.Variable().Equal(gc.Variable()), "column %s variable differs", wc.Name())
		AssertCells(t, wc.Values(), gc)
	}
}

// AssertCells checks the decoded cells of vec against want.
func AssertCells(t testing.TB, want []vector.Value, vec *vector.Vector) {
	t.Helper()
	require.Equal(t, len(want), vec.Len(), "column %s length", vec.Name())
	for r, w := range want {
		assert.True(t, w.Equal(vec.Value(r)), "column %s row %d: %#v != %#v", vec.Name(), r, w, vec.Value(r))
	}
}

// RoundTrip saves ds through codec into a temporary file named name and
// loads it back. The loaded dataset is released when the test ends.
func RoundTrip(t testing.TB, codec formats.Codec, ds *dataset.DataSet, name string) *dataset.DataSet {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, codec.Save(ds, path), "save %s", path)
	back, err := codec.Load(path)
	require.NoError(t, err, "load %s", path)
	t.Cleanup(back.Release)
	return back
}
