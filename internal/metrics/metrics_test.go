package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheus_ObserveAction(t *testing.T) {
	reg := prometheus.NewRegistry()
	p, err := NewPrometheus(reg)
	require.NoError(t, err)

	p.ObserveAction("upload", 200, 30*time.Millisecond)
	p.ObserveAction("upload", 200, 10*time.Millisecond)
	p.ObserveAction("upload", 405, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(p.requests.WithLabelValues("upload", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.requests.WithLabelValues("upload", "405")))
	assert.Equal(t, 1, testutil.CollectAndCount(p.duration))
}

func TestPrometheus_ObserveDropped(t *testing.T) {
	reg := prometheus.NewRegistry()
	p, err := NewPrometheus(reg)
	require.NoError(t, err)

	p.ObserveDropped("cc", 2)
	p.ObserveDropped("cc", 1)

	assert.Equal(t, 3.0, testutil.ToFloat64(p.dropped.WithLabelValues("cc")))
}

func TestNewPrometheus_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPrometheus(reg)
	require.NoError(t, err)
	second, err := NewPrometheus(reg)
	require.NoError(t, err)

	second.ObserveDropped("get-metadata", 4)

	assert.Equal(t, 4.0, testutil.ToFloat64(first.dropped.WithLabelValues("get-metadata")))
}
