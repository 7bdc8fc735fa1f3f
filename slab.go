package gss

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unsafe"
)

// slab is the slot table of a single type. slots, gens and the free list
// always have the same length. Slot 0 holds the zero value and is reserved
// for the null handle once the first allocation happened.
//
// All methods expect mu to be held by the caller.
type slab[T any] struct {
	mu      sync.Mutex
	typ     reflect.Type
	name    string
	slots   []T
	gens    []uint32 // generation stamp of the allocation occupying each slot
	free    freeList
	nextGen uint32
}

func newSlab[T any](capacity int) *slab[T] {
	typ := reflect.TypeFor[T]()
	return &slab[T]{
		typ:     typ,
		name:    typeName(typ),
		slots:   make([]T, 0, capacity),
		gens:    make([]uint32, 0, capacity),
		free:    newFreeList(),
		nextGen: 1,
	}
}

// String creates a long multi-line string which illustrates the slab in a pretty
// and human-readable format
func (s *slab[T]) String() string {
	var b strings.Builder
	words := s.free.used.Bytes()

	fmt.Fprintf(&b, "-------------------------------\n")
	fmt.Fprintf(&b, "Slab Type: %v\n", s.typ)
	fmt.Fprintf(&b, "Object Size: %d\n", s.objSize())
	fmt.Fprintf(&b, "Slot Count: %d\n", len(s.slots))
	fmt.Fprintf(&b, "Occupied: %d\n", s.free.count())

	for i := 0; i < len(words); i++ {
		fmt.Fprintf(&b, "bitSet[%d]: %064b\n", i, words[i])
	}

	for i := range s.slots {
		state := "free"
		if s.free.isUsed(uint(i)) {
			state = "used"
		}
		fmt.Fprintf(&b, "% 4d %s gen=%d %v\n", i, state, s.gens[i], s.slots[i])
	}
	return b.String()
}

// objSize returns the in-memory size of one slot
func (s *slab[T]) objSize() uintptr {
	var zero T
	return unsafe.Sizeof(zero)
}

// newGen returns the next generation stamp, never 0
func (s *slab[T]) newGen() uint32 {
	gen := s.nextGen
	s.nextGen++
	if s.nextGen == 0 {
		s.nextGen = 1
	}
	return gen
}

// reserveNull pushes the zero-valued sentinel at index 0 on an empty slab
func (s *slab[T]) reserveNull() {
	if len(s.slots) > 0 {
		return
	}
	var zero T
	s.slots = append(s.slots, zero)
	s.gens = append(s.gens, 0)
	s.free.push()
}

// push appends an occupied slot holding obj
func (s *slab[T]) push(obj T, gen uint32) uint {
	s.slots = append(s.slots, obj)
	s.gens = append(s.gens, gen)
	return s.free.push()
}

// alloc stores obj in the first free slot, or appends it when there is
// none. It returns the handle of the slot and whether a freed slot was
// reused.
func (s *slab[T]) alloc(obj T) (Ptr[T], bool) {
	s.reserveNull()
	gen := s.newGen()

	if idx, ok := s.free.getFree(); ok {
		s.slots[idx] = obj
		s.gens[idx] = gen
		s.free.setUsed(idx)
		return Ptr[T]{idx: idx, gen: gen}, true
	}

	return Ptr[T]{idx: s.push(obj, gen), gen: gen}, false
}

// allocArray reserves count contiguous slots holding the zero value.
// The first run of free slots long enough is reused; otherwise the slab
// grows by exactly count slots. Every slot of the run gets the same
// generation stamp so handles derived from the first one stay valid.
func (s *slab[T]) allocArray(count int) (Ptr[T], bool, error) {
	if count <= 0 {
		return Ptr[T]{}, false, ErrZeroCount
	}
	s.reserveNull()
	gen := s.newGen()
	n := uint(count)

	if start, ok := s.free.getFreeRun(n); ok {
		var zero T
		for idx := start; idx < start+n; idx++ {
			s.slots[idx] = zero
			s.gens[idx] = gen
			s.free.setUsed(idx)
		}
		return Ptr[T]{idx: start, gen: gen}, true, nil
	}

	var zero T
	start := s.push(zero, gen)
	for i := uint(1); i < n; i++ {
		s.push(zero, gen)
	}
	return Ptr[T]{idx: start, gen: gen}, false, nil
}

// inRange reports whether idx addresses an existing slot
func (s *slab[T]) inRange(idx uint) bool {
	return idx < uint(len(s.slots))
}

// check validates p before a dereference. Range is always checked; the
// null handle, free slots and generation mismatches only when checked is set.
func (s *slab[T]) check(p Ptr[T], checked bool) error {
	if !s.inRange(p.idx) {
		return &IndexError{Type: s.typ, Index: p.idx, Len: len(s.slots)}
	}
	if !checked {
		return nil
	}
	if p.idx == 0 {
		return ErrNullHandle
	}
	if !s.free.isUsed(p.idx) {
		return &StaleHandleError{Type: s.typ, Index: p.idx, Gen: p.gen}
	}
	if cur := s.gens[p.idx]; cur != p.gen {
		return &StaleHandleError{Type: s.typ, Index: p.idx, Gen: p.gen, Current: cur}
	}
	return nil
}

// delete marks the slot at idx free, whatever its state. Slot 0 stays
// reserved.
func (s *slab[T]) delete(idx uint) {
	if idx == 0 {
		return
	}
	s.free.setFree(idx)
}

// deleteRun marks up to n slots starting at idx free and returns how many
// were touched. Slots past the end of the slab are skipped. With a non-zero
// gen only slots stamped with gen are freed.
func (s *slab[T]) deleteRun(idx uint, n int, gen uint32) int {
	freed := 0
	for i := uint(0); i < uint(max(n, 0)); i++ {
		at := idx + i
		if at < idx {
			break
		}
		if at == 0 || !s.inRange(at) {
			continue
		}
		if gen != 0 && (s.gens[at] != gen || !s.free.isUsed(at)) {
			continue
		}
		s.free.setFree(at)
		freed++
	}
	return freed
}

// stats returns the occupancy figures of the slab
func (s *slab[T]) stats() Stats {
	size := s.objSize()
	return Stats{
		Type:       s.name,
		Slots:      len(s.slots),
		Occupied:   int(s.free.count()),
		Free:       len(s.slots) - int(s.free.count()),
		Generation: s.nextGen,
		ObjSize:    size,
		Bytes:      uint64(cap(s.slots))*uint64(size) + uint64(cap(s.gens))*4 + uint64(len(s.free.used.Bytes()))*8,
	}
}

func (s *slab[T]) elemType() reflect.Type {
	return s.typ
}

func (s *slab[T]) lock()   { s.mu.Lock() }
func (s *slab[T]) unlock() { s.mu.Unlock() }
