package columnar

import (
	"fmt"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/linkedin/goavro/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tabula/pkg/dataset"
	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/formats"
	"github.com/ajitpratap0/tabula/pkg/json"
	"github.com/ajitpratap0/tabula/pkg/variable"
	"github.com/ajitpratap0/tabula/pkg/vector"
)

// Avro header keys. Dataset fields use the schema metadata keys of package
// dataset.
const (
	AvroColumnsKey = "tabula.columns"
	avroRecordName = "tabula_dataset"
	avroBlockRows  = 1024
)

// Avro is the object container file codec. Column names are not valid Avro
// identifiers in general, so record fields are positional (c0, c1, ...) and
// the real descriptors live in the header.
type Avro struct {
	base
	codec string
}

// NewAvro creates an Avro codec using opts.AvroCodec for blocks.
func NewAvro(opts formats.Options) (*Avro, error) {
	opts = opts.WithDefaults()
	codec, err := avroCompression(opts.AvroCodec)
	if err != nil {
		return nil, err
	}
	return &Avro{base: newBase(opts), codec: codec}, nil
}

func avroCompression(name string) (string, error) {
	switch strings.ToLower(name) {
	case "", goavro.CompressionSnappyLabel:
		return goavro.CompressionSnappyLabel, nil
	case goavro.CompressionDeflateLabel:
		return goavro.CompressionDeflateLabel, nil
	case goavro.CompressionNullLabel, "none":
		return goavro.CompressionNullLabel, nil
	default:
		return "", errors.Newf(errors.ErrorTypeConfig, "unsupported avro codec %q", name)
	}
}

// Format implements formats.Codec.
func (c *Avro) Format() formats.Format { return formats.Avro }

func avroField(i int) string { return fmt.Sprintf("c%d", i) }

// avroType is the non-null branch of the column union.
func avroType(k variable.Kind) string {
	switch k {
	case variable.Integer, variable.Category, variable.OrdinalCategory, variable.Date:
		return "int"
	case variable.Timestamp:
		return "long"
	case variable.Boolean:
		return "boolean"
	default:
		return "string"
	}
}

// AvroSchema returns the record schema for vars.
func AvroSchema(vars []variable.Variable) (string, error) {
	fields := make([]map[string]interface{}, len(vars))
	for i, v := range vars {
		fields[i] = map[string]interface{}{
			"name":    avroField(i),
			"type":    []interface{}{"null", avroType(v.Kind())},
			"default": nil,
			"doc":     v.Name(),
		}
	}
	data, err := json.Marshal(map[string]interface{}{
		"type":   "record",
		"name":   avroRecordName,
		"fields": fields,
	})
	if err != nil {
		return "", errors.Wrap(err, errors.ErrorTypeInternal, "failed to encode avro schema")
	}
	return string(data), nil
}

// Save writes the header, then the rows in blocks.
func (c *Avro) Save(ds *dataset.DataSet, path string) error {
	if ds == nil {
		return nilDataset()
	}
	vars := ds.Variables()
	schema, err := AvroSchema(vars)
	if err != nil {
		return err
	}
	codec, err := goavro.NewCodec(schema)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to create avro codec")
	}

	meta, err := avroHeader(ds, vars)
	if err != nil {
		return err
	}

	f, buf, err := create(path)
	if err != nil {
		return err
	}
	w, err := goavro.NewOCFWriter(goavro.OCFConfig{
		W:               buf,
		Codec:           codec,
		CompressionName: c.codec,
		MetaData:        meta,
	})
	if err != nil {
		_ = f.Close()
		return writeFailed(err, path)
	}

	cols := ds.Columns()
	block := make([]interface{}, 0, avroBlockRows)
	for r := 0; r < ds.RowCount(); r++ {
		rec := make(map[string]interface{}, len(cols))
		for i, col := range cols {
			rec[avroField(i)] = toAvro(col.Variable(), col.Value(r))
		}
		block = append(block, rec)
		if len(block) == avroBlockRows {
			if err := w.Append(block); err != nil {
				_ = f.Close()
				return writeFailed(err, path).WithDetail("row", r)
			}
			block = block[:0]
		}
	}
	if len(block) > 0 {
		if err := w.Append(block); err != nil {
			_ = f.Close()
			return writeFailed(err, path)
		}
	}
	return commit(f, buf, path)
}

func avroHeader(ds *dataset.DataSet, vars []variable.Variable) (map[string][]byte, error) {
	meta := map[string][]byte{}
	md := ds.SchemaMetadata()
	for i, k := range md.Keys() {
		meta[k] = []byte(md.Values()[i])
	}
	descriptors := make([]variable.Descriptor, len(vars))
	for i, v := range vars {
		descriptors[i] = v.Descriptor()
	}
	data, err := json.Marshal(descriptors)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, "failed to encode column descriptors")
	}
	meta[AvroColumnsKey] = data
	return meta, nil
}

func toAvro(v variable.Variable, val vector.Value) interface{} {
	if val.IsNull() {
		return nil
	}
	branch := avroType(v.Kind())
	switch v.Kind() {
	case variable.Integer, variable.Category, variable.OrdinalCategory:
		i, _ := val.Int()
		return goavro.Union(branch, int32(i))
	case variable.Decimal:
		d, _ := val.Decimal()
		return goavro.Union(branch, d.StringFixed(v.Scale()))
	case variable.Boolean:
		b, _ := val.Bool()
		return goavro.Union(branch, b)
	case variable.Date:
		t, _ := val.Date()
		return goavro.Union(branch, int32(arrow.Date32FromTime(t)))
	case variable.Timestamp:
		t, _ := val.Instant()
		return goavro.Union(branch, vector.ToRaw(v.TimeUnit(), t))
	default:
		s, _ := val.Text()
		return goavro.Union(branch, s)
	}
}

// Load reads the header descriptors and decodes every row.
func (c *Avro) Load(path string) (*dataset.DataSet, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := goavro.NewOCFReader(f)
	if err != nil {
		return nil, readFailed(err, path)
	}

	header := r.MetaData()
	raw, ok := header[AvroColumnsKey]
	if !ok {
		return nil, errors.New(errors.ErrorTypeMetadataMissing, "avro header has no column descriptors").
			WithDetail("path", path).
			WithDetail("key", AvroColumnsKey)
	}
	var descriptors []variable.Descriptor
	if err := json.Unmarshal(raw, &descriptors); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeSchemaMismatch, "malformed column descriptors").WithDetail("path", path)
	}
	vars := make([]variable.Variable, len(descriptors))
	for i, d := range descriptors {
		if vars[i], err = variable.FromDescriptor(d); err != nil {
			return nil, err
		}
	}

	values := make([][]vector.Value, len(vars))
	for row := 0; r.Scan(); row++ {
		datum, err := r.Read()
		if err != nil {
			return nil, readFailed(err, path).WithDetail("row", row)
		}
		rec, ok := datum.(map[string]interface{})
		if !ok {
			return nil, errors.Newf(errors.ErrorTypeSchemaMismatch, "row %d is not a record", row).WithDetail("path", path)
		}
		for i, v := range vars {
			cell, present := rec[avroField(i)]
			if !present {
				return nil, errors.Newf(errors.ErrorTypeSchemaMismatch, "row %d has no field %s", row, avroField(i)).
					WithDetail("path", path).
					WithDetail("column_name", v.Name())
			}
			val, err := fromAvro(v, cell)
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrorTypeSchemaMismatch, "malformed avro cell").
					WithDetail("path", path).
					WithDetail("row", row).
					WithDetail("column", i)
			}
			values[i] = append(values[i], val)
		}
	}
	if err := r.Err(); err != nil {
		return nil, readFailed(err, path)
	}

	cols := make([]*vector.Vector, len(vars))
	for i, v := range vars {
		if cols[i], err = vector.FromValues(v, values[i]); err != nil {
			return nil, err
		}
	}
	ds, err := dataset.NewWithColumns(c.ids, cols...)
	if err != nil {
		return nil, err
	}

	md := map[string]string{}
	for _, k := range dataset.MetadataKeys {
		if v, ok := header[k]; ok {
			md[k] = string(v)
		}
	}
	ds.CreatedAt = time.Time{}
	if err := ds.ApplySchemaMetadata(arrow.MetadataFrom(md)); err != nil {
		return nil, err
	}
	c.log.Debug("read avro file",
		zap.String("path", path),
		zap.String("codec", string(header["avro.codec"])),
		zap.Int("rows", ds.RowCount()))
	return ds, nil
}

func fromAvro(v variable.Variable, cell interface{}) (vector.Value, error) {
	if cell == nil {
		return vector.Null(), nil
	}
	union, ok := cell.(map[string]interface{})
	if !ok {
		return vector.Null(), fmt.Errorf("expected union, got %T", cell)
	}
	native, ok := union[avroType(v.Kind())]
	if !ok {
		return vector.Null(), fmt.Errorf("union has no %s branch", avroType(v.Kind()))
	}

	switch x := native.(type) {
	case int32:
		if v.Kind() == variable.Date {
			return vector.Date(arrow.Date32(x).ToTime()), nil
		}
		return vector.Int(int64(x)), nil
	case int64:
		return vector.Instant(vector.FromRaw(v.TimeUnit(), x)), nil
	case bool:
		return vector.Bool(x), nil
	case string:
		if v.Kind() == variable.Decimal {
			d, err := decimal.NewFromString(x)
			if err != nil {
				return vector.Null(), err
			}
			return vector.Decimal(d), nil
		}
		return vector.Text(x), nil
	default:
		return vector.Null(), fmt.Errorf("unexpected avro value %T", native)
	}
}
