package gss

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/petermattis/goid"
)

// Registry maps every value type to its slot table. Tables are created
// lazily on first use and live as long as the registry; Default lives for
// the whole process.
//
// The type map and each slot table have their own locks, so operations on
// different types proceed concurrently. A goroutine running a WithRef or
// Borrow closure must not call back into the same registry: such calls
// fail with a *ReentrancyError instead of deadlocking.
type Registry struct {
	mu      sync.RWMutex
	tables  map[reflect.Type]table
	borrows sync.Map // goroutine id -> reflect.Type of the borrowed slot
	cfg     RegistryConfig
}

// table is the type-erased view of a slab[T] held by the registry
type table interface {
	fmt.Stringer
	elemType() reflect.Type
	stats() Stats
	lock()
	unlock()
}

// Default is the process-wide registry behind the package-level accessors.
var Default = NewRegistry(Config)

// NewRegistry initializes a new registry with the given configuration,
// it returns a pointer to it
func NewRegistry(cfg RegistryConfig) *Registry {
	return &Registry{
		tables: make(map[reflect.Type]table),
		cfg:    cfg.withDefaults(),
	}
}

// Config returns the configuration the registry runs with.
func (r *Registry) Config() RegistryConfig {
	return r.cfg
}

// Len returns the number of slot tables created so far.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tables)
}

// lookup returns the slot table of T, creating it on first use.
func lookup[T any](r *Registry) *slab[T] {
	typ := reflect.TypeFor[T]()

	r.mu.RLock()
	t, ok := r.tables[typ]
	r.mu.RUnlock()
	if ok {
		return t.(*slab[T])
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// another goroutine may have created it in the meantime
	if t, ok = r.tables[typ]; ok {
		return t.(*slab[T])
	}

	s := newSlab[T](r.cfg.InitialSlots)
	r.tables[typ] = s
	r.cfg.Logger.LogTableCreated(s.name, r.cfg.InitialSlots)
	r.cfg.Metrics.RecordTableCreated(s.name)
	return s
}

// enter fails when the calling goroutine is inside a borrow closure on r.
func (r *Registry) enter(typ reflect.Type) error {
	if held, ok := r.borrows.Load(goid.Get()); ok {
		return &ReentrancyError{Type: typ, Held: held.(reflect.Type)}
	}
	return nil
}

// borrow marks the calling goroutine as holding a slot of typ until the
// returned function is called.
func (r *Registry) borrow(typ reflect.Type) func() {
	gid := goid.Get()
	r.borrows.Store(gid, typ)
	return func() { r.borrows.Delete(gid) }
}

// snapshot returns the current tables sorted by type name
func (r *Registry) snapshot() []table {
	r.mu.RLock()
	tables := make([]table, 0, len(r.tables))
	for _, t := range r.tables {
		tables = append(tables, t)
	}
	r.mu.RUnlock()

	sort.Slice(tables, func(i, j int) bool {
		return typeName(tables[i].elemType()) < typeName(tables[j].elemType())
	})
	return tables
}

// Stats returns the occupancy of every slot table, sorted by type name.
// It fails with a *ReentrancyError when called from a borrow closure.
func (r *Registry) Stats() ([]Stats, error) {
	if err := r.enter(nil); err != nil {
		return nil, err
	}

	tables := r.snapshot()
	res := make([]Stats, 0, len(tables))
	for _, t := range tables {
		t.lock()
		res = append(res, t.stats())
		t.unlock()
	}
	return res, nil
}

// String dumps every slot table of the registry.
func (r *Registry) String() string {
	if err := r.enter(nil); err != nil {
		return err.Error()
	}

	var out string
	for _, t := range r.snapshot() {
		t.lock()
		out += t.String()
		t.unlock()
	}
	return out
}
