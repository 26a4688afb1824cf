package columnar

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/linkedin/goavro/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tabula/internal/demo"
	"github.com/ajitpratap0/tabula/pkg/dataset"
	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/formats"
	"github.com/ajitpratap0/tabula/pkg/testutil"
	"github.com/ajitpratap0/tabula/pkg/variable"
	"github.com/ajitpratap0/tabula/pkg/vector"
)

func testOptions() formats.Options {
	return formats.Options{IDs: dataset.NewIDAllocator(1000), Logger: zap.NewNop()}
}

type codecCase struct {
	name  string
	ext   string
	codec func(t *testing.T, opts formats.Options) formats.Codec
}

var codecCases = []codecCase{
	{"ipc", ".arrow", func(t *testing.T, opts formats.Options) formats.Codec { return NewIPC(opts) }},
	{"parquet", ".parquet", func(t *testing.T, opts formats.Options) formats.Codec {
		c, err := NewParquet(opts)
		require.NoError(t, err)
		return c
	}},
	{"avro", ".avro", func(t *testing.T, opts formats.Options) formats.Codec {
		c, err := NewAvro(opts)
		require.NoError(t, err)
		return c
	}},
}

func TestCodecSuite(t *testing.T) {
	for _, tc := range codecCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			suite.Run(t, &testutil.CodecSuite{
				Ext: tc.ext,
				New: func(opts formats.Options) (formats.Codec, error) { return tc.codec(t, opts), nil },
			})
		})
	}
}

func TestRoundTripKeepsIDsAndLabels(t *testing.T) {
	ds, err := demo.AllKinds(nil)
	require.NoError(t, err)

	for _, tc := range codecCases {
		t.Run(tc.name, func(t *testing.T) {
			got := testutil.RoundTrip(t, tc.codec(t, testOptions()), ds, "kinds"+tc.ext)
			assert.Equal(t, int64(1000), got.ID())

			color, err := got.Column("color")
			require.NoError(t, err)
			label, ok := color.Variable().Label(5)
			assert.True(t, ok)
			assert.Equal(t, "blue", label)
		})
	}
}

func TestLoadGarbage(t *testing.T) {
	for _, tc := range codecCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "garbage"+tc.ext)
			require.NoError(t, os.WriteFile(path, []byte("definitely not a data file"), 0o600))
			_, err := tc.codec(t, testOptions()).Load(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveErrors(t *testing.T) {
	ds, err := demo.Dataset(nil, 2, 1)
	require.NoError(t, err)
	for _, tc := range codecCases {
		t.Run(tc.name, func(t *testing.T) {
			c := tc.codec(t, testOptions())
			err := c.Save(nil, filepath.Join(t.TempDir(), "x"+tc.ext))
			assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

			err = c.Save(ds, filepath.Join(t.TempDir(), "no", "such", "dir", "x"+tc.ext))
			assert.True(t, errors.IsType(err, errors.ErrorTypeWriteFailed))
		})
	}
}

func TestIPCConcatenatesBatches(t *testing.T) {
	ds, err := demo.Dataset(nil, 10, 3)
	require.NoError(t, err)
	rec, err := ds.Record()
	require.NoError(t, err)
	defer rec.Release()

	path := filepath.Join(t.TempDir(), "batches.arrow")
	f, err := os.Create(path)
	require.NoError(t, err)
	w, err := ipc.NewFileWriter(f, ipc.WithSchema(rec.Schema()), ipc.WithAllocator(memory.NewGoAllocator()))
	require.NoError(t, err)
	require.NoError(t, w.Write(rec))
	require.NoError(t, w.Write(rec))
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	got, err := NewIPC(testOptions()).Load(path)
	require.NoError(t, err)
	require.Equal(t, 20, got.RowCount())
	for c := 0; c < ds.ColumnCount(); c++ {
		for r := 0; r < 10; r++ {
			assert.True(t, ds.ColumnAt(c).Value(r).Equal(got.ColumnAt(c).Value(r+10)))
		}
	}
	assert.Equal(t, ds.Name, got.Name)
}

func TestParquetSmallBatches(t *testing.T) {
	ds, err := demo.Dataset(nil, demo.DefaultRows, 9)
	require.NoError(t, err)

	opts := testOptions()
	opts.ReadBatchSize = 64
	c, err := NewParquet(opts)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "batches.parquet")
	require.NoError(t, c.Save(ds, path))
	got, err := c.Load(path)
	require.NoError(t, err)
	testutil.AssertDatasetsEqual(t, ds, got)
}

func TestParquetCompressions(t *testing.T) {
	ds, err := demo.AllKinds(nil)
	require.NoError(t, err)

	for _, name := range []string{"snappy", "gzip", "zstd", "lz4", "brotli", "none"} {
		t.Run(name, func(t *testing.T) {
			opts := testOptions()
			opts.ParquetCompression = name
			c, err := NewParquet(opts)
			require.NoError(t, err)

			path := filepath.Join(t.TempDir(), "c.parquet")
			require.NoError(t, c.Save(ds, path))
			got, err := c.Load(path)
			require.NoError(t, err)
			testutil.AssertDatasetsEqual(t, ds, got)
		})
	}

	_, err = ParquetCompression("lzo")
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestParquetSecondTimestamps(t *testing.T) {
	v := variable.NewTimestamp("at", variable.Second, variable.Timezone("Asia/Tokyo"))
	instants := []vector.Value{
		vector.Instant(time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC)),
		vector.Null(),
		vector.Instant(time.Unix(-86400, 0)),
	}
	vec, err := vector.FromValues(v, instants)
	require.NoError(t, err)
	ds, err := dataset.NewWithColumns(nil, vec)
	require.NoError(t, err)

	c, err := NewParquet(testOptions())
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "seconds.parquet")
	require.NoError(t, c.Save(ds, path))
	got, err := c.Load(path)
	require.NoError(t, err)

	col := got.ColumnAt(0)
	assert.Equal(t, variable.Second, col.Variable().TimeUnit())
	assert.Equal(t, "Asia/Tokyo", col.Variable().Timezone())
	assert.True(t, v.Equal(col.Variable()))
	for i, want := range instants {
		assert.True(t, want.Equal(col.Value(i)), "row %d", i)
	}
	assert.True(t, arrow.TypeEqual(col.Variable().DataType(), col.Array().DataType()))
}

func TestAvroCodecs(t *testing.T) {
	ds, err := demo.AllKinds(nil)
	require.NoError(t, err)

	for _, name := range []string{"snappy", "deflate", "null", "none"} {
		t.Run(name, func(t *testing.T) {
			opts := testOptions()
			opts.AvroCodec = name
			c, err := NewAvro(opts)
			require.NoError(t, err)

			path := filepath.Join(t.TempDir(), "c.avro")
			require.NoError(t, c.Save(ds, path))
			got, err := c.Load(path)
			require.NoError(t, err)
			testutil.AssertDatasetsEqual(t, ds, got)
		})
	}

	_, err = NewAvro(formats.Options{AvroCodec: "bzip2"})
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestAvroRequiresDescriptors(t *testing.T) {
	schema, err := AvroSchema([]variable.Variable{variable.NewInteger("n")})
	require.NoError(t, err)
	codec, err := goavro.NewCodec(schema)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "foreign.avro")
	f, err := os.Create(path)
	require.NoError(t, err)
	// Hide the file's ReadSeeker so the writer starts a new container.
	w, err := goavro.NewOCFWriter(goavro.OCFConfig{W: struct{ io.Writer }{f}, Codec: codec})
	require.NoError(t, err)
	require.NoError(t, w.Append([]interface{}{map[string]interface{}{"c0": goavro.Union("int", int32(1))}}))
	require.NoError(t, f.Close())

	c, err := NewAvro(testOptions())
	require.NoError(t, err)
	_, err = c.Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeMetadataMissing))
	assert.True(t, errors.IsNotFound(err))
}

func TestRegisteredFormats(t *testing.T) {
	tests := map[string]formats.Format{
		"a.arrow":   formats.IPC,
		"a.ipc":     formats.IPC,
		"a.parquet": formats.Parquet,
		"a.avro":    formats.Avro,
	}
	for path, want := range tests {
		c, err := formats.ForPath(path, testOptions())
		require.NoError(t, err)
		assert.Equal(t, want, c.Format())
	}

	info, ok := formats.Info(formats.Parquet)
	require.True(t, ok)
	assert.True(t, info.SelfDescribing)

	_, err := formats.New(formats.Parquet, formats.Options{ParquetCompression: "lzo"})
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}
