package metrics

import (
	"io"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveCodec(t *testing.T) {
	okBefore := testutil.ToFloat64(CodecOperations.WithLabelValues("test", OpSave, StatusSuccess))
	failBefore := testutil.ToFloat64(CodecOperations.WithLabelValues("test", OpSave, StatusFailure))
	rowsBefore := testutil.ToFloat64(CodecRows.WithLabelValues("test", OpSave))

	ObserveCodec("test", OpSave, 400, time.Millisecond, nil)
	ObserveCodec("test", OpSave, 400, time.Millisecond, io.ErrShortWrite)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(CodecOperations.WithLabelValues("test", OpSave, StatusSuccess)))
	assert.Equal(t, failBefore+1, testutil.ToFloat64(CodecOperations.WithLabelValues("test", OpSave, StatusFailure)))
	assert.Equal(t, rowsBefore+400, testutil.ToFloat64(CodecRows.WithLabelValues("test", OpSave)))
}

func TestObserveTransform(t *testing.T) {
	before := testutil.ToFloat64(TransformOperations.WithLabelValues("normalize", StatusSuccess))
	ObserveTransform("normalize", nil)
	assert.Equal(t, before+1, testutil.ToFloat64(TransformOperations.WithLabelValues("normalize", StatusSuccess)))
}

func TestTimer(t *testing.T) {
	timer := NewTimer()
	time.Sleep(2 * time.Millisecond)
	first := timer.Stop()
	assert.GreaterOrEqual(t, first, 2*time.Millisecond)
	assert.GreaterOrEqual(t, timer.Stop(), first)
}
