package columnar

import (
	"context"
	stderrors "errors"
	"io"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tabula/pkg/dataset"
	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/formats"
)

// Parquet is the compressed columnar file codec. Files embed the arrow
// schema so field descriptors survive the round trip.
//
// Parquet has no second-precision timestamp: Second columns are stored and
// read back as Millisecond with identical instants.
type Parquet struct {
	base
	compression compress.Compression
	batchSize   int64
}

// NewParquet creates a Parquet codec using opts.ParquetCompression and
// opts.ReadBatchSize.
func NewParquet(opts formats.Options) (*Parquet, error) {
	opts = opts.WithDefaults()
	codec, err := ParquetCompression(opts.ParquetCompression)
	if err != nil {
		return nil, err
	}
	return &Parquet{base: newBase(opts), compression: codec, batchSize: opts.ReadBatchSize}, nil
}

// ParquetCompression maps a codec name to the parquet compression.
func ParquetCompression(name string) (compress.Compression, error) {
	switch strings.ToLower(name) {
	case "", "snappy":
		return compress.Codecs.Snappy, nil
	case "gzip":
		return compress.Codecs.Gzip, nil
	case "zstd":
		return compress.Codecs.Zstd, nil
	case "lz4":
		return compress.Codecs.Lz4Raw, nil
	case "brotli":
		return compress.Codecs.Brotli, nil
	case "none", "uncompressed":
		return compress.Codecs.Uncompressed, nil
	default:
		return compress.Codecs.Uncompressed, errors.Newf(errors.ErrorTypeConfig, "unsupported parquet compression %q", name)
	}
}

// Format implements formats.Codec.
func (c *Parquet) Format() formats.Format { return formats.Parquet }

// Save writes the dataset as a single row group.
func (c *Parquet) Save(ds *dataset.DataSet, path string) error {
	if ds == nil {
		return nilDataset()
	}
	rec, err := ds.Record()
	if err != nil {
		return err
	}
	defer rec.Release()

	f, buf, err := create(path)
	if err != nil {
		return err
	}

	props := parquet.NewWriterProperties(
		parquet.WithCompression(c.compression),
		parquet.WithAllocator(c.mem),
		parquet.WithMaxRowGroupLength(max(rec.NumRows(), 1)),
	)
	arrowProps := pqarrow.NewArrowWriterProperties(
		pqarrow.WithAllocator(c.mem),
		pqarrow.WithStoreSchema(),
	)
	w, err := pqarrow.NewFileWriter(rec.Schema(), buf, props, arrowProps)
	if err != nil {
		_ = f.Close()
		return writeFailed(err, path)
	}
	if err := w.Write(rec); err != nil {
		_ = w.Close()
		_ = f.Close()
		return writeFailed(err, path)
	}
	if err := w.Close(); err != nil {
		_ = f.Close()
		return writeFailed(err, path)
	}
	return commit(f, buf, path)
}

// Load reads every batch of the file. Dataset fields come from the schema
// metadata, which pqarrow fills from the file key/value metadata.
func (c *Parquet) Load(path string) (*dataset.DataSet, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pf, err := file.NewParquetReader(f)
	if err != nil {
		return nil, readFailed(err, path)
	}
	defer pf.Close()

	fr, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{BatchSize: c.batchSize}, c.mem)
	if err != nil {
		return nil, readFailed(err, path)
	}
	schema, err := fr.Schema()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeSchemaMismatch, "invalid parquet schema").WithDetail("path", path)
	}

	rr, err := fr.GetRecordReader(context.Background(), nil, nil)
	if err != nil {
		return nil, readFailed(err, path)
	}
	defer rr.Release()

	var records []arrow.Record
	defer func() {
		for _, rec := range records {
			rec.Release()
		}
	}()
	for rr.Next() {
		rec := rr.Record()
		rec.Retain()
		records = append(records, rec)
	}
	if err := rr.Err(); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, readFailed(err, path)
	}
	if len(records) == 0 {
		records = append(records, c.emptyRecord(schema))
	}

	ds, err := dataset.FromRecords(c.ids, records)
	if err != nil {
		return nil, err
	}
	c.log.Debug("read parquet file",
		zap.String("path", path),
		zap.Int("row_groups", pf.NumRowGroups()),
		zap.Int("batches", len(records)),
		zap.Int("rows", ds.RowCount()))
	return ds, nil
}
