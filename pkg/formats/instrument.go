package formats

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tabula/pkg/dataset"
	"github.com/ajitpratap0/tabula/pkg/metrics"
	"github.com/ajitpratap0/tabula/pkg/tracing"
)

// instrumented logs every operation, records codec metrics and wraps each
// call in a "codec.save" or "codec.load" span.
type instrumented struct {
	codec   Codec
	log     *zap.Logger
	metrics bool
}

// Instrument wraps c with logging, tracing and, when opts.Metrics is set,
// prometheus collection.
func Instrument(c Codec, opts Options) Codec {
	if _, ok := c.(*instrumented); ok {
		return c
	}
	opts = opts.WithDefaults()
	return &instrumented{
		codec:   c,
		log:     opts.Logger.With(zap.String("format", string(c.Format()))),
		metrics: opts.Metrics,
	}
}

// Unwrap returns the underlying codec.
func (c *instrumented) Unwrap() Codec { return c.codec }

func (c *instrumented) Format() Format { return c.codec.Format() }

func (c *instrumented) Save(ds *dataset.DataSet, path string) error {
	span := c.start(metrics.OpSave, path)
	timer := metrics.NewTimer()
	err := c.codec.Save(ds, path)
	elapsed := timer.Stop()
	rows, cols := shape(ds)
	end(span, rows, cols, err)
	c.observe(metrics.OpSave, path, rows, cols, elapsed.Seconds(), err)
	if c.metrics {
		metrics.ObserveCodec(string(c.Format()), metrics.OpSave, rows, elapsed, err)
	}
	return err
}

func (c *instrumented) Load(path string) (*dataset.DataSet, error) {
	span := c.start(metrics.OpLoad, path)
	timer := metrics.NewTimer()
	ds, err := c.codec.Load(path)
	elapsed := timer.Stop()
	rows, cols := shape(ds)
	end(span, rows, cols, err)
	c.observe(metrics.OpLoad, path, rows, cols, elapsed.Seconds(), err)
	if c.metrics {
		metrics.ObserveCodec(string(c.Format()), metrics.OpLoad, rows, elapsed, err)
	}
	return ds, err
}

func (c *instrumented) start(op, path string) trace.Span {
	_, span := tracing.Tracer().Start(context.Background(), "codec."+op,
		trace.WithAttributes(
			attribute.String("tabula.format", string(c.Format())),
			attribute.String("tabula.path", path),
		))
	return span
}

func end(span trace.Span, rows, cols int, err error) {
	span.SetAttributes(attribute.Int("tabula.rows", rows), attribute.Int("tabula.columns", cols))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (c *instrumented) observe(op, path string, rows, cols int, seconds float64, err error) {
	fields := []zap.Field{
		zap.String("operation", op),
		zap.String("path", path),
		zap.Int("rows", rows),
		zap.Int("columns", cols),
		zap.Float64("duration_seconds", seconds),
	}
	if err != nil {
		c.log.Error("codec operation failed", append(fields, zap.Error(err))...)
		return
	}
	c.log.Debug("codec operation completed", fields...)
}

func shape(ds *dataset.DataSet) (rows, cols int) {
	if ds == nil {
		return 0, 0
	}
	return ds.RowCount(), ds.ColumnCount()
}
