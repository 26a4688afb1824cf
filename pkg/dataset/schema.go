package dataset

import (
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/variable"
	"github.com/ajitpratap0/tabula/pkg/vector"
)

// Schema metadata keys.
const (
	MetaName        = "dataset.name"
	MetaAuthor      = "dataset.author"
	MetaSource      = "dataset.source"
	MetaDescription = "dataset.description"
	MetaCreatedAt   = "dataset.created_at"
)

// MetadataKeys lists the schema metadata keys in a stable order.
var MetadataKeys = []string{MetaName, MetaAuthor, MetaSource, MetaDescription, MetaCreatedAt}

// SchemaMetadata returns the dataset fields as schema metadata. Blank
// strings and an unset CreatedAt are omitted.
func (ds *DataSet) SchemaMetadata() arrow.Metadata {
	md := map[string]string{}
	put := func(key, value string) {
		if strings.TrimSpace(value) != "" {
			md[key] = value
		}
	}
	put(MetaName, ds.Name)
	put(MetaAuthor, ds.Author)
	put(MetaSource, ds.Source)
	put(MetaDescription, ds.Description)
	if !ds.CreatedAt.IsZero() {
		md[MetaCreatedAt] = ds.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	return arrow.MetadataFrom(md)
}

// ApplySchemaMetadata sets the dataset fields present in md. Absent keys
// leave the fields untouched.
func (ds *DataSet) ApplySchemaMetadata(md arrow.Metadata) error {
	lookup := func(key string) (string, bool) {
		if i := md.FindKey(key); i >= 0 {
			return md.Values()[i], true
		}
		return "", false
	}
	if v, ok := lookup(MetaName); ok {
		ds.Name = v
	}
	if v, ok := lookup(MetaAuthor); ok {
		ds.Author = v
	}
	if v, ok := lookup(MetaSource); ok {
		ds.Source = v
	}
	if v, ok := lookup(MetaDescription); ok {
		ds.Description = v
	}
	if v, ok := lookup(MetaCreatedAt); ok && strings.TrimSpace(v) != "" {
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return errors.Wrap(err, errors.ErrorTypeSchemaMismatch, "invalid dataset.created_at").
				WithDetail("value", v)
		}
		ds.CreatedAt = t.UTC()
	}
	return nil
}

// Schema returns the arrow schema: one field descriptor per column plus the
// dataset metadata.
func (ds *DataSet) Schema() (*arrow.Schema, error) {
	fields := make([]arrow.Field, len(ds.columns))
	for i, col := range ds.columns {
		f, err := col.Variable().Field()
		if err != nil {
			return nil, err
		}
		fields[i] = f
	}
	md := ds.SchemaMetadata()
	return arrow.NewSchema(fields, &md), nil
}

// Record assembles the dataset as a single arrow record. The caller must
// Release it.
func (ds *DataSet) Record() (arrow.Record, error) {
	schema, err := ds.Schema()
	if err != nil {
		return nil, err
	}
	cols := make([]arrow.Array, len(ds.columns))
	for i, col := range ds.columns {
		cols[i] = col.Array()
	}
	return array.NewRecord(schema, cols, int64(ds.RowCount())), nil
}

// FromRecords builds a dataset from one or more record batches. Every batch
// must carry the schema of the first one; column values are concatenated in
// batch order. Dataset fields come from the first batch's schema metadata,
// and CreatedAt stays unset when absent. No batches yields an empty dataset.
func FromRecords(ids *IDAllocator, records []arrow.Record) (*DataSet, error) {
	ds := newBare(ids)
	if len(records) == 0 {
		return ds, nil
	}

	schema := records[0].Schema()
	for i, rec := range records[1:] {
		if !schema.Equal(rec.Schema()) {
			return nil, errors.New(errors.ErrorTypeSchemaMismatch, "record batches have different schemas").
				WithDetail("batch", i+1).
				WithDetail("expected", schema.String()).
				WithDetail("got", rec.Schema().String())
		}
	}

	if err := ds.ApplySchemaMetadata(schema.Metadata()); err != nil {
		return nil, err
	}

	mem := memory.DefaultAllocator
	for c, field := range schema.Fields() {
		v, err := variable.FromField(field)
		if err != nil {
			return nil, err
		}

		chunks := make([]arrow.Array, len(records))
		for i, rec := range records {
			chunks[i] = rec.Column(c)
		}
		arr := chunks[0]
		if len(chunks) > 1 {
			if arr, err = array.Concatenate(chunks, mem); err != nil {
				return nil, errors.Wrap(err, errors.ErrorTypeInternal, "failed to concatenate batches").
					WithDetail("column", field.Name)
			}
		} else {
			arr.Retain()
		}

		vec, err := vector.New(v, arr)
		arr.Release()
		if err != nil {
			return nil, err
		}
		if err := ds.AddColumn(vec); err != nil {
			return nil, err
		}
	}
	return ds, nil
}
