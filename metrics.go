package gss

import (
	"sync/atomic"
)

// MetricsCollector defines an interface for collecting allocator metrics.
// Implement this interface to integrate with monitoring systems; package
// promstats provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordTableCreated is called once per type, when its slot table is
	// created.
	RecordTableCreated(typ string)

	// RecordAlloc is called after each allocation. slots is 1 for a single
	// allocation and the run length for an array allocation; reused reports
	// whether freed slots were recycled instead of growing the table.
	RecordAlloc(typ string, slots int, reused bool)

	// RecordFree is called after each free with the number of slots marked free.
	RecordFree(typ string, slots int)

	// RecordViolation is called whenever an accessor rejects a call.
	RecordViolation(typ string, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordTableCreated(string)     {}
func (NoopMetricsCollector) RecordAlloc(string, int, bool) {}
func (NoopMetricsCollector) RecordFree(string, int)        {}
func (NoopMetricsCollector) RecordViolation(string, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection
// across all types.
type BasicMetricsCollector struct {
	Tables       atomic.Int64
	Allocs       atomic.Int64
	ReusedAllocs atomic.Int64
	SlotsAlloced atomic.Int64
	Frees        atomic.Int64
	SlotsFreed   atomic.Int64
	Violations   atomic.Int64
}

// RecordTableCreated implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTableCreated(string) {
	b.Tables.Add(1)
}

// RecordAlloc implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAlloc(_ string, slots int, reused bool) {
	b.Allocs.Add(1)
	b.SlotsAlloced.Add(int64(slots))
	if reused {
		b.ReusedAllocs.Add(1)
	}
}

// RecordFree implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFree(_ string, slots int) {
	b.Frees.Add(1)
	b.SlotsFreed.Add(int64(slots))
}

// RecordViolation implements MetricsCollector.
func (b *BasicMetricsCollector) RecordViolation(string, error) {
	b.Violations.Add(1)
}
