package columnar

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tabula/pkg/dataset"
	"github.com/ajitpratap0/tabula/pkg/formats"
)

// IPC is the Arrow IPC file codec.
type IPC struct {
	base
}

// NewIPC creates an Arrow IPC codec.
func NewIPC(opts formats.Options) *IPC {
	return &IPC{base: newBase(opts)}
}

// Format implements formats.Codec.
func (c *IPC) Format() formats.Format { return formats.IPC }

// Save writes the schema, a single record batch and the footer.
func (c *IPC) Save(ds *dataset.DataSet, path string) error {
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
	w, err := ipc.NewFileWriter(buf, ipc.WithSchema(rec.Schema()), ipc.WithAllocator(c.mem))
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

// Load reads every record batch of the file into one dataset.
func (c *IPC) Load(path string) (*dataset.DataSet, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := ipc.NewFileReader(f, ipc.WithAllocator(c.mem))
	if err != nil {
		return nil, readFailed(err, path)
	}
	defer r.Close()

	records := make([]arrow.Record, 0, r.NumRecords())
	defer func() {
		for _, rec := range records {
			rec.Release()
		}
	}()
	for i := 0; i < r.NumRecords(); i++ {
		rec, err := r.Record(i)
		if err != nil {
			return nil, readFailed(err, path).WithDetail("batch", i)
		}
		// The reader reuses its record on the next call.
		rec.Retain()
		records = append(records, rec)
	}
	if len(records) == 0 {
		records = append(records, c.emptyRecord(r.Schema()))
	}

	ds, err := dataset.FromRecords(c.ids, records)
	if err != nil {
		return nil, err
	}
	c.log.Debug("read arrow file",
		zap.String("path", path),
		zap.Int("batches", r.NumRecords()),
		zap.Int("rows", ds.RowCount()))
	return ds, nil
}

// emptyRecord is a zero-row batch of schema, used when a file holds no
// batches so the columns still materialize.
func (b base) emptyRecord(schema *arrow.Schema) arrow.Record {
	rb := array.NewRecordBuilder(b.mem, schema)
	defer rb.Release()
	return rb.NewRecord()
}
