package promstats

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gss "github.com/replay/go-generic-slab-store"
)

type point struct{ X, Y int }

func TestCollectorCountsRegistryActivity(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(reg)
	require.NoError(t, err)

	cfg := gss.NewConfig()
	cfg.Metrics = c
	heap := gss.HeapOf[point](gss.NewRegistry(cfg))

	a := heap.Alloc(point{1, 2})
	heap.Alloc(point{3, 4})
	heap.Free(a)
	heap.Alloc(point{5, 6})
	arr := heap.AllocArray(4)
	heap.FreeArray(arr, 4)

	_, err = heap.TryAllocArray(0)
	require.ErrorIs(t, err, gss.ErrZeroCount)
	_, err = heap.TryLoad(a.Add(100))
	require.ErrorIs(t, err, gss.ErrOutOfRange)

	typ := "promstats.point"
	assert.Equal(t, 1.0, testutil.ToFloat64(c.tables.WithLabelValues(typ)))
	assert.Equal(t, 4.0, testutil.ToFloat64(c.allocs.WithLabelValues(typ)))
	assert.Equal(t, 7.0, testutil.ToFloat64(c.slots.WithLabelValues(typ)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.reused.WithLabelValues(typ)))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.frees.WithLabelValues(typ)))
	assert.Equal(t, 5.0, testutil.ToFloat64(c.freed.WithLabelValues(typ)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.violations.WithLabelValues(typ, "zero_count")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.violations.WithLabelValues(typ, "out_of_range")))
}

func TestCollectorDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	assert.Error(t, err)
}

func TestReason(t *testing.T) {
	assert.Equal(t, "stale", Reason(&gss.StaleHandleError{}))
	assert.Equal(t, "reentrant", Reason(&gss.ReentrancyError{}))
	assert.Equal(t, "null", Reason(gss.ErrNullHandle))
	assert.Equal(t, "other", Reason(assert.AnError))
}
