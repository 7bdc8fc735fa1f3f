package gss

// Heap is the typed view of the slot table of T in a registry. It is
// cheap to copy; all copies share the same table.
//
// The plain methods treat every contract violation as a programmer error
// and panic with the error value. The Try methods return it instead.
type Heap[T any] struct {
	r *Registry
	s *slab[T]
}

// HeapOf returns the heap of T in r, creating its slot table on first use.
func HeapOf[T any](r *Registry) Heap[T] {
	return Heap[T]{r: r, s: lookup[T](r)}
}

// Registry returns the registry owning the heap.
func (h Heap[T]) Registry() *Registry {
	return h.r
}

// do runs fn with the slot table locked, after making sure the calling
// goroutine does not already borrow a slot of the registry
func (h Heap[T]) do(op string, fn func(s *slab[T]) error) error {
	if err := h.r.enter(h.s.typ); err != nil {
		h.r.violation(op, h.s.typ, err)
		return err
	}

	err := h.locked(fn)
	if err != nil {
		h.r.violation(op, h.s.typ, err)
	}
	return err
}

func (h Heap[T]) locked(fn func(s *slab[T]) error) error {
	h.s.lock()
	defer h.s.unlock()
	return fn(h.s)
}

func (h Heap[T]) checked() bool {
	return h.r.cfg.CheckGenerations
}

// TryAlloc stores obj in a slot and returns its handle. The lowest free
// slot is reused before the table grows.
func (h Heap[T]) TryAlloc(obj T) (Ptr[T], error) {
	var p Ptr[T]
	var reused bool
	err := h.do("alloc", func(s *slab[T]) error {
		p, reused = s.alloc(obj)
		return nil
	})
	if err != nil {
		return Ptr[T]{}, err
	}
	h.r.cfg.Metrics.RecordAlloc(h.s.name, 1, reused)
	return p, nil
}

// Alloc is TryAlloc panicking on error.
func (h Heap[T]) Alloc(obj T) Ptr[T] {
	p, err := h.TryAlloc(obj)
	must(err)
	return p
}

// TryAllocArray reserves count contiguous zero-valued slots and returns
// the handle of the first one. The slots are reached with Add or Offset.
// A count of zero fails with ErrZeroCount.
func (h Heap[T]) TryAllocArray(count int) (Ptr[T], error) {
	var p Ptr[T]
	var reused bool
	err := h.do("alloc_array", func(s *slab[T]) (err error) {
		p, reused, err = s.allocArray(count)
		return err
	})
	if err != nil {
		return Ptr[T]{}, err
	}
	h.r.cfg.Metrics.RecordAlloc(h.s.name, count, reused)
	return p, nil
}

// AllocArray is TryAllocArray panicking on error.
func (h Heap[T]) AllocArray(count int) Ptr[T] {
	p, err := h.TryAllocArray(count)
	must(err)
	return p
}

// TryStore overwrites the slot of p with obj. Unless generations are
// checked, the slot does not need to be occupied.
func (h Heap[T]) TryStore(p Ptr[T], obj T) error {
	return h.do("store", func(s *slab[T]) error {
		if err := s.check(p, h.checked()); err != nil {
			return err
		}
		s.slots[p.idx] = obj
		return nil
	})
}

// Store is TryStore panicking on error.
func (h Heap[T]) Store(p Ptr[T], obj T) {
	must(h.TryStore(p, obj))
}

// TryLoad returns a copy of the value in the slot of p. Unless generations
// are checked, the slot does not need to be occupied.
func (h Heap[T]) TryLoad(p Ptr[T]) (T, error) {
	var obj T
	err := h.do("load", func(s *slab[T]) error {
		if err := s.check(p, h.checked()); err != nil {
			return err
		}
		obj = s.slots[p.idx]
		return nil
	})
	return obj, err
}

// Load is TryLoad panicking on error.
func (h Heap[T]) Load(p Ptr[T]) T {
	obj, err := h.TryLoad(p)
	must(err)
	return obj
}

// TryFree marks the slot of p free. Freeing the null handle does nothing;
// freeing a slot that is already free is accepted unless generations are
// checked.
func (h Heap[T]) TryFree(p Ptr[T]) error {
	if p.IsNull() {
		return nil
	}
	err := h.do("free", func(s *slab[T]) error {
		if err := s.check(p, h.checked()); err != nil {
			return err
		}
		s.delete(p.idx)
		return nil
	})
	if err != nil {
		return err
	}
	h.r.cfg.Metrics.RecordFree(h.s.name, 1)
	return nil
}

// Free is TryFree panicking on error.
func (h Heap[T]) Free(p Ptr[T]) {
	must(h.TryFree(p))
}

// TryFreeArray marks n consecutive slots starting at p free. Slots past
// the end of the table are skipped. With generations checked p must be
// live and only the slots of its own allocation are freed.
func (h Heap[T]) TryFreeArray(p Ptr[T], n int) error {
	var freed int
	err := h.do("free_array", func(s *slab[T]) error {
		var gen uint32
		if h.checked() {
			if err := s.check(p, true); err != nil {
				return err
			}
			gen = p.gen
		}
		freed = s.deleteRun(p.idx, n, gen)
		return nil
	})
	if err != nil {
		return err
	}
	h.r.cfg.Metrics.RecordFree(h.s.name, freed)
	return nil
}

// FreeArray is TryFreeArray panicking on error.
func (h Heap[T]) FreeArray(p Ptr[T], n int) {
	must(h.TryFreeArray(p, n))
}

// TryBorrow calls f with a pointer to the slot of p while the table is
// locked. The pointer must not be retained after f returns, and f must
// not call back into the registry.
func (h Heap[T]) TryBorrow(p Ptr[T], f func(obj *T)) error {
	_, err := TryWithRef(h, p, func(obj *T) struct{} {
		f(obj)
		return struct{}{}
	})
	return err
}

// Borrow is TryBorrow panicking on error.
func (h Heap[T]) Borrow(p Ptr[T], f func(obj *T)) {
	must(h.TryBorrow(p, f))
}

// Stats returns the occupancy of the heap.
func (h Heap[T]) Stats() Stats {
	must(h.r.enter(h.s.typ))
	h.s.lock()
	defer h.s.unlock()
	return h.s.stats()
}

// String dumps the occupancy bitmap and every slot of the heap.
func (h Heap[T]) String() string {
	if err := h.r.enter(h.s.typ); err != nil {
		return err.Error()
	}
	h.s.lock()
	defer h.s.unlock()
	return h.s.String()
}

// TryWithRef calls f with a pointer to the slot of p while the table is
// locked and returns its result. Any accessor call f makes on the same
// registry fails with a *ReentrancyError.
func TryWithRef[T, R any](h Heap[T], p Ptr[T], f func(obj *T) R) (R, error) {
	var res R
	err := h.do("with_ref", func(s *slab[T]) error {
		if err := s.check(p, h.checked()); err != nil {
			return err
		}
		release := h.r.borrow(s.typ)
		defer release()
		res = f(&s.slots[p.idx])
		return nil
	})
	return res, err
}

// WithRefIn is TryWithRef panicking on error.
func WithRefIn[T, R any](h Heap[T], p Ptr[T], f func(obj *T) R) R {
	res, err := TryWithRef(h, p, f)
	must(err)
	return res
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
