// Package columnar provides the self-describing binary codecs: Apache Arrow
// IPC files, Apache Parquet and Apache Avro object container files.
//
// Arrow IPC and Parquet persist the dataset's arrow record directly, so the
// field descriptors and schema metadata travel with the data. Avro stores the
// same information in the container header.
package columnar

import (
	"bufio"
	"os"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tabula/pkg/dataset"
	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/formats"
)

// Format descriptions.
var (
	IPCInfo = formats.FormatInfo{
		Format:         formats.IPC,
		Name:           "Apache Arrow",
		Description:    "Arrow IPC file: schema, one record batch, footer",
		Extensions:     []string{".arrow", ".ipc", ".feather"},
		MIMEType:       "application/vnd.apache.arrow.file",
		Compressed:     false,
		SelfDescribing: true,
	}
	ParquetInfo = formats.FormatInfo{
		Format:         formats.Parquet,
		Name:           "Apache Parquet",
		Description:    "Compressed columnar file with the arrow schema embedded",
		Extensions:     []string{".parquet"},
		MIMEType:       "application/vnd.apache.parquet",
		Compressed:     true,
		SelfDescribing: true,
	}
	AvroInfo = formats.FormatInfo{
		Format:         formats.Avro,
		Name:           "Apache Avro",
		Description:    "Row-oriented object container file with column descriptors in the header",
		Extensions:     []string{".avro"},
		MIMEType:       "application/avro",
		Compressed:     true,
		SelfDescribing: true,
	}
)

func init() {
	formats.Register(IPCInfo, func(opts formats.Options) (formats.Codec, error) {
		return NewIPC(opts), nil
	})
	formats.Register(ParquetInfo, func(opts formats.Options) (formats.Codec, error) {
		return NewParquet(opts)
	})
	formats.Register(AvroInfo, func(opts formats.Options) (formats.Codec, error) {
		return NewAvro(opts)
	})
}

// base holds what every columnar codec shares.
type base struct {
	ids *dataset.IDAllocator
	log *zap.Logger
	mem memory.Allocator
}

func newBase(opts formats.Options) base {
	opts = opts.WithDefaults()
	return base{ids: opts.IDs, log: opts.Logger, mem: memory.NewGoAllocator()}
}

// create opens path for writing behind a buffer. Writers that close their
// sink never see the file itself; commit flushes and closes it.
func create(path string) (*os.File, *bufio.Writer, error) {
	f, err := os.Create(path) //nolint:gosec // G304: path is chosen by the caller
	if err != nil {
		return nil, nil, writeFailed(err, path)
	}
	return f, bufio.NewWriter(f), nil
}

func commit(f *os.File, w *bufio.Writer, path string) error {
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return writeFailed(err, path)
	}
	if err := f.Close(); err != nil {
		return writeFailed(err, path)
	}
	return nil
}

func open(path string) (*os.File, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path is chosen by the caller
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(err, errors.ErrorTypeNotFound, "data file not found").WithDetail("path", path)
		}
		return nil, readFailed(err, path)
	}
	return f, nil
}

func writeFailed(err error, path string) *errors.Error {
	return errors.Wrap(err, errors.ErrorTypeWriteFailed, "failed to write data file").WithDetail("path", path)
}

func readFailed(err error, path string) *errors.Error {
	return errors.Wrap(err, errors.ErrorTypeReadFailed, "failed to read data file").WithDetail("path", path)
}

func nilDataset() error {
	return errors.New(errors.ErrorTypeValidation, "dataset is nil")
}
