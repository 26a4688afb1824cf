// Package metrics provides prometheus collectors for codec and
// transformation operations.
//
// # Basic Usage
//
//	timer := metrics.NewTimer()
//	err := codec.Save(ds, path)
//	metrics.ObserveCodec("parquet", metrics.OpSave, ds.RowCount(), timer.Stop(), err)
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Codec operations.
const (
	OpSave = "save"
	OpLoad = "load"
)

// Status label values.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

var (
	// CodecOperations counts codec calls.
	// Labels: format (delimited/arrow/parquet/avro), operation (save/load), status (success/failure)
	CodecOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tabula_codec_operations_total",
			Help: "Total number of codec save and load operations",
		},
		[]string{"format", "operation", "status"},
	)

	// CodecRows counts rows moved by successful codec calls.
	CodecRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tabula_codec_rows_total",
			Help: "Total number of rows written or read by codecs",
		},
		[]string{"format", "operation"},
	)

	// CodecDuration tracks codec latency in seconds.
	CodecDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tabula_codec_duration_seconds",
			Help:    "Codec operation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8), // 0.5ms .. ~8s
		},
		[]string{"format", "operation"},
	)

	// TransformOperations counts vector transformations.
	// Labels: operation (add, normalize, rolling_mean, ...), status
	TransformOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tabula_transform_operations_total",
			Help: "Total number of vector transformations",
		},
		[]string{"operation", "status"},
	)
)

// ObserveCodec records one codec call.
func ObserveCodec(format, operation string, rows int, d time.Duration, err error) {
	CodecOperations.WithLabelValues(format, operation, status(err)).Inc()
	CodecDuration.WithLabelValues(format, operation).Observe(d.Seconds())
	if err == nil {
		CodecRows.WithLabelValues(format, operation).Add(float64(rows))
	}
}

// ObserveTransform records one transformation.
func ObserveTransform(operation string, err error) {
	TransformOperations.WithLabelValues(operation, status(err)).Inc()
}

func status(err error) string {
	if err != nil {
		return StatusFailure
	}
	return StatusSuccess
}

// Timer measures operation durations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer and starts timing immediately.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Stop returns the elapsed duration since creation. It may be called
// more than once.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}
