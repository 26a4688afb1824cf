// Package delimited implements the text codec: a ';'-separated primary file
// with one header line, plus a JSON sidecar (same path, extension ".json")
// that records the dataset fields and the column descriptors.
//
// The primary file may be compressed with any algorithm of pkg/compression;
// the sidecar records which one so Load needs no options.
package delimited

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ajitpratap0/tabula/pkg/compression"
	"github.com/ajitpratap0/tabula/pkg/dataset"
	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/formats"
	"github.com/ajitpratap0/tabula/pkg/variable"
	"github.com/ajitpratap0/tabula/pkg/vector"
)

// Separator is the cell delimiter.
const Separator = ';'

// Info describes the delimited format.
var Info = formats.FormatInfo{
	Format:         formats.Delimited,
	Name:           "Delimited text",
	Description:    "';'-separated UTF-8 text with a JSON metadata sidecar",
	Extensions:     []string{".csv", ".txt"},
	MIMEType:       "text/csv",
	Compressed:     true,
	SelfDescribing: false,
}

func init() {
	formats.Register(Info, func(opts formats.Options) (formats.Codec, error) {
		return New(opts)
	})
}

// Codec saves and loads delimited files.
type Codec struct {
	ids       *dataset.IDAllocator
	log       *zap.Logger
	algorithm compression.Algorithm
}

// New creates a codec. opts.Compression selects the primary-file
// compression used by Save.
func New(opts formats.Options) (*Codec, error) {
	opts = opts.WithDefaults()
	alg, err := compression.ParseAlgorithm(opts.Compression)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid delimited compression")
	}
	return &Codec{ids: opts.IDs, log: opts.Logger, algorithm: alg}, nil
}

// Format implements formats.Codec.
func (c *Codec) Format() formats.Format { return formats.Delimited }

// Save writes the primary file and then the sidecar. Text cells and column
// names that contain the separator, quotes or line breaks are quoted.
func (c *Codec) Save(ds *dataset.DataSet, path string) error {
	if ds == nil {
		return errors.New(errors.ErrorTypeValidation, "dataset is nil")
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return errors.New(errors.ErrorTypeValidation, "primary file cannot use the sidecar extension").
			WithDetail("path", path)
	}
	if err := c.writePrimary(ds, path); err != nil {
		return err
	}

	compressionName := ""
	if c.algorithm != compression.None {
		compressionName = string(c.algorithm)
	}
	sidecar := SidecarPath(path)
	if err := writeSidecar(sidecar, newSidecar(ds, compressionName)); err != nil {
		return err
	}
	c.log.Debug("wrote delimited dataset",
		zap.String("path", path),
		zap.String("sidecar", sidecar),
		zap.String("compression", string(c.algorithm)))
	return nil
}

func (c *Codec) writePrimary(ds *dataset.DataSet, path string) (err error) {
	comp, err := compression.NewCompressor(&compression.Config{Algorithm: c.algorithm, Level: compression.Default})
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "invalid delimited compression")
	}

	f, err := os.Create(path) //nolint:gosec // G304: path is chosen by the caller
	if err != nil {
		return writeFailed(err, path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = writeFailed(cerr, path)
		}
	}()

	zw, err := comp.NewWriter(f)
	if err != nil {
		return writeFailed(err, path)
	}
	w := csv.NewWriter(zw)
	w.Comma = Separator

	header := make([]string, ds.ColumnCount())
	for i, v := range ds.Variables() {
		header[i] = v.Name()
	}
	if err := writeRecord(w, zw, header); err != nil {
		return writeFailed(err, path)
	}

	cols := ds.Columns()
	row := make([]string, len(cols))
	for r := 0; r < ds.RowCount(); r++ {
		for i, col := range cols {
			row[i] = FormatCell(col.Variable(), col.Value(r))
		}
		if err := writeRecord(w, zw, row); err != nil {
			return writeFailed(err, path)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return writeFailed(err, path)
	}
	if err := zw.Close(); err != nil {
		return writeFailed(err, path)
	}
	return nil
}

// writeRecord writes one line. A single empty cell would produce a blank
// line, which readers skip, so it is written as an explicit empty quote.
func writeRecord(w *csv.Writer, raw io.Writer, record []string) error {
	if len(record) == 1 && record[0] == "" {
		w.Flush()
		if err := w.Error(); err != nil {
			return err
		}
		_, err := io.WriteString(raw, "\"\"\n")
		return err
	}
	return w.Write(record)
}

// Load reads the sidecar, then the primary file. The sidecar decides the
// column kinds and the compression; an empty primary file yields a dataset
// with no columns that still carries the sidecar fields.
func (c *Codec) Load(path string) (*dataset.DataSet, error) {
	sc, err := readSidecar(SidecarPath(path))
	if err != nil {
		return nil, err
	}
	vars, err := sc.Variables()
	if err != nil {
		return nil, err
	}
	alg, err := compression.ParseAlgorithm(sc.Compression)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeSchemaMismatch, "unknown compression in metadata").
			WithDetail("path", path)
	}

	columns, err := c.readPrimary(path, alg, vars)
	if err != nil {
		return nil, err
	}

	ds, err := dataset.NewWithColumns(c.ids, columns...)
	if err != nil {
		return nil, err
	}
	sc.apply(ds)
	c.log.Debug("read delimited dataset",
		zap.String("path", path),
		zap.Int("rows", ds.RowCount()),
		zap.Int("columns", ds.ColumnCount()))
	return ds, nil
}

func (c *Codec) readPrimary(path string, alg compression.Algorithm, vars []variable.Variable) ([]*vector.Vector, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path is chosen by the caller
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(err, errors.ErrorTypeNotFound, "data file not found").WithDetail("path", path)
		}
		return nil, readFailed(err, path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, readFailed(err, path)
	}
	if info.Size() == 0 {
		return nil, missingHeader(path, vars)
	}

	comp, err := compression.NewCompressor(&compression.Config{Algorithm: alg, Level: compression.Default})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeSchemaMismatch, "unknown compression in metadata")
	}
	zr, err := comp.NewReader(f)
	if err != nil {
		return nil, readFailed(err, path)
	}
	defer zr.Close()

	r := csv.NewReader(zr)
	r.Comma = Separator
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, missingHeader(path, vars)
	}
	if err != nil {
		return nil, corrupt(err, path, 0, 0)
	}
	if len(header) != len(vars) {
		return nil, errors.Newf(errors.ErrorTypeSchemaMismatch,
			"header has %d columns, metadata describes %d", len(header), len(vars)).
			WithDetail("path", path)
	}

	values := make([][]vector.Value, len(vars))
	for row := 0; ; row++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, corrupt(err, path, row, 0)
		}
		for col, v := range vars {
			text := ""
			if col < len(record) {
				text = record[col]
			}
			val, err := ParseCell(v, text)
			if err != nil {
				line, _ := r.FieldPos(min(col, len(record)-1))
				return nil, corrupt(err, path, row, col).
					WithDetail("line", line).
					WithDetail("column_name", v.Name()).
					WithDetail("text", text)
			}
			values[col] = append(values[col], val)
		}
	}

	columns := make([]*vector.Vector, len(vars))
	for i, v := range vars {
		vec, err := vector.FromValues(v, values[i])
		if err != nil {
			return nil, err
		}
		columns[i] = vec
	}
	return columns, nil
}

func writeFailed(err error, path string) error {
	return errors.Wrap(err, errors.ErrorTypeWriteFailed, "failed to write data file").WithDetail("path", path)
}

func readFailed(err error, path string) error {
	return errors.Wrap(err, errors.ErrorTypeReadFailed, "failed to read data file").WithDetail("path", path)
}

// missingHeader accepts an empty data file only when the sidecar describes
// no columns.
func missingHeader(path string, vars []variable.Variable) error {
	if len(vars) == 0 {
		return nil
	}
	return errors.Newf(errors.ErrorTypeSchemaMismatch, "data file is empty, metadata describes %d columns", len(vars)).
		WithDetail("path", path)
}

func corrupt(err error, path string, row, col int) *errors.Error {
	return errors.Wrap(err, errors.ErrorTypeSchemaMismatch, "malformed data file").
		WithDetail("path", path).
		WithDetail("row", row).
		WithDetail("column", col)
}
