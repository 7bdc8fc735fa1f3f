// Package promstats exports the allocator metrics of a gss registry to
// Prometheus.
package promstats

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	gss "github.com/replay/go-generic-slab-store"
)

const namespace = "gss"

// Collector implements gss.MetricsCollector with Prometheus counters
// labelled by element type.
type Collector struct {
	tables     *prometheus.CounterVec
	allocs     *prometheus.CounterVec
	slots      *prometheus.CounterVec
	reused     *prometheus.CounterVec
	frees      *prometheus.CounterVec
	freed      *prometheus.CounterVec
	violations *prometheus.CounterVec
}

var _ gss.MetricsCollector = (*Collector)(nil)

// New creates a Collector and registers its counters with reg.
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		tables: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tables_created_total",
			Help:      "Slot tables created, by element type.",
		}, []string{"type"}),
		allocs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocs_total",
			Help:      "Single and array allocations, by element type.",
		}, []string{"type"}),
		slots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slots_allocated_total",
			Help:      "Slots handed out by allocations, by element type.",
		}, []string{"type"}),
		reused: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reused_allocs_total",
			Help:      "Allocations served from freed slots, by element type.",
		}, []string{"type"}),
		frees: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frees_total",
			Help:      "Free and FreeArray calls, by element type.",
		}, []string{"type"}),
		freed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slots_freed_total",
			Help:      "Slots marked free, by element type.",
		}, []string{"type"}),
		violations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "violations_total",
			Help:      "Rejected accessor calls, by element type and reason.",
		}, []string{"type", "reason"}),
	}

	for _, cv := range []prometheus.Collector{c.tables, c.allocs, c.slots, c.reused, c.frees, c.freed, c.violations} {
		if err := reg.Register(cv); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// RecordTableCreated implements gss.MetricsCollector.
func (c *Collector) RecordTableCreated(typ string) {
	c.tables.WithLabelValues(typ).Inc()
}

// RecordAlloc implements gss.MetricsCollector.
func (c *Collector) RecordAlloc(typ string, slots int, reused bool) {
	c.allocs.WithLabelValues(typ).Inc()
	c.slots.WithLabelValues(typ).Add(float64(slots))
	if reused {
		c.reused.WithLabelValues(typ).Inc()
	}
}

// RecordFree implements gss.MetricsCollector.
func (c *Collector) RecordFree(typ string, slots int) {
	c.frees.WithLabelValues(typ).Inc()
	c.freed.WithLabelValues(typ).Add(float64(slots))
}

// RecordViolation implements gss.MetricsCollector.
func (c *Collector) RecordViolation(typ string, err error) {
	c.violations.WithLabelValues(typ, Reason(err)).Inc()
}

// Reason maps an accessor error to a low-cardinality label value.
func Reason(err error) string {
	switch {
	case errors.Is(err, gss.ErrOutOfRange):
		return "out_of_range"
	case errors.Is(err, gss.ErrStaleHandle):
		return "stale"
	case errors.Is(err, gss.ErrNullHandle):
		return "null"
	case errors.Is(err, gss.ErrReentrant):
		return "reentrant"
	case errors.Is(err, gss.ErrZeroCount):
		return "zero_count"
	default:
		return "other"
	}
}
