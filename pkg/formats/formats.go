// Package formats defines the file codecs that persist tabula datasets and
// a registry that resolves them by name or file extension.
//
// Codec implementations live in sub-packages and register themselves on
// import:
//
//	import (
//	    "github.com/ajitpratap0/tabula/pkg/formats"
//	    _ "github.com/ajitpratap0/tabula/pkg/formats/columnar"
//	    _ "github.com/ajitpratap0/tabula/pkg/formats/delimited"
//	)
//
//	codec, err := formats.ForPath("out.parquet", formats.DefaultOptions())
//	err = codec.Save(ds, "out.parquet")
package formats

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ajitpratap0/tabula/pkg/config"
	"github.com/ajitpratap0/tabula/pkg/dataset"
	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/logger"
)

// Format identifies a file representation.
type Format string

const (
	// Delimited is ';'-separated text with a JSON sidecar
	Delimited Format = "delimited"
	// IPC is the Apache Arrow IPC file format
	IPC Format = "arrow"
	// Parquet is Apache Parquet
	Parquet Format = "parquet"
	// Avro is an Apache Avro object container file
	Avro Format = "avro"
)

// Codec saves and loads whole datasets.
type Codec interface {
	// Format returns the representation handled by the codec
	Format() Format
	// Save writes ds to path, replacing any existing file
	Save(ds *dataset.DataSet, path string) error
	// Load reads a dataset from path
	Load(path string) (*dataset.DataSet, error)
}

// Options configures codecs. Zero values fall back to DefaultOptions.
type Options struct {
	// IDs allocates identifiers for loaded datasets
	IDs *dataset.IDAllocator
	// Logger receives codec logs
	Logger *zap.Logger
	// Compression applied to the delimited primary file
	Compression string
	// ParquetCompression is the Parquet page codec
	ParquetCompression string
	// ReadBatchSize is the Parquet read batch size in rows
	ReadBatchSize int64
	// AvroCodec is the Avro block codec
	AvroCodec string
	// Metrics enables prometheus collection in the instrumented wrapper
	Metrics bool
}

// DefaultOptions returns options matching config.NewConfig.
func DefaultOptions() Options {
	return OptionsFromConfig(config.NewConfig())
}

// OptionsFromConfig maps the codec sections of cfg to Options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		IDs:                dataset.DefaultIDs,
		Logger:             logger.Get(),
		Compression:        cfg.Delimited.Compression,
		ParquetCompression: cfg.Columnar.ParquetCompression,
		ReadBatchSize:      cfg.Columnar.ReadBatchSize,
		AvroCodec:          cfg.Columnar.AvroCodec,
		Metrics:            cfg.Metrics.Enabled,
	}
}

// WithDefaults fills unset fields.
func (o Options) WithDefaults() Options {
	def := config.NewConfig()
	if o.IDs == nil {
		o.IDs = dataset.DefaultIDs
	}
	if o.Logger == nil {
		o.Logger = logger.Get()
	}
	if o.ParquetCompression == "" {
		o.ParquetCompression = def.Columnar.ParquetCompression
	}
	if o.ReadBatchSize <= 0 {
		o.ReadBatchSize = def.Columnar.ReadBatchSize
	}
	if o.AvroCodec == "" {
		o.AvroCodec = def.Columnar.AvroCodec
	}
	return o
}

// FormatInfo describes a registered format.
type FormatInfo struct {
	Format         Format
	Name           string
	Description    string
	Extensions     []string
	MIMEType       string
	Compressed     bool
	SelfDescribing bool
}

// Constructor builds a codec from options.
type Constructor func(opts Options) (Codec, error)

type registration struct {
	info FormatInfo
	ctor Constructor
}

var (
	registryMu sync.RWMutex
	registry   = map[Format]registration{}
)

// Register adds a codec constructor. Registering a format twice replaces the
// previous entry.
func Register(info FormatInfo, ctor Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[info.Format] = registration{info: info, ctor: ctor}
}

// Registered returns the info of every registered format, sorted by format.
func Registered() []FormatInfo {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]FormatInfo, 0, len(registry))
	for _, r := range registry {
		out = append(out, r.info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Format < out[j].Format })
	return out
}

// Info returns the description of f.
func Info(f Format) (FormatInfo, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	r, ok := registry[f]
	return r.info, ok
}

// New builds the codec for f wrapped with logging and metrics.
func New(f Format, opts Options) (Codec, error) {
	registryMu.RLock()
	r, ok := registry[f]
	registryMu.RUnlock()
	if !ok {
		return nil, errors.Newf(errors.ErrorTypeNotFound, "unknown format %q", f)
	}
	opts = opts.WithDefaults()
	c, err := r.ctor(opts)
	if err != nil {
		return nil, err
	}
	return Instrument(c, opts), nil
}

// FormatForPath resolves a format from the file extension of path.
func FormatForPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	registryMu.RLock()
	defer registryMu.RUnlock()
	for f, r := range registry {
		for _, e := range r.info.Extensions {
			if e == ext {
				return f, nil
			}
		}
	}
	return "", errors.Newf(errors.ErrorTypeNotFound, "no format registered for extension %q", ext).
		WithDetail("path", path)
}

// ForPath builds the codec matching the file extension of path.
func ForPath(path string, opts Options) (Codec, error) {
	f, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	return New(f, opts)
}

// ParseFormat maps a format name or file extension to a Format.
func ParseFormat(name string) (Format, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	registryMu.RLock()
	for f, r := range registry {
		if string(f) == n {
			registryMu.RUnlock()
			return f, nil
		}
		for _, e := range r.info.Extensions {
			if strings.TrimPrefix(e, ".") == n {
				registryMu.RUnlock()
				return f, nil
			}
		}
	}
	registryMu.RUnlock()
	return "", errors.Newf(errors.ErrorTypeNotFound, "unknown format %q", name)
}
