package gss

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// Ptr is a handle to a slot in the slot table of type T. It stands in for
// a *T: it can be copied freely, every copy refers to the same slot, and
// it supports pointer arithmetic over the table's slots.
//
// A Ptr carries the generation stamp its slot had when it was allocated.
// The stamp is only validated when the registry checks generations; in
// the default configuration a freed or reused slot is still reachable
// through old handles.
type Ptr[T any] struct {
	idx uint
	gen uint32
}

// Null returns the null handle of type T. Slot 0 of every table is
// reserved for it and is never handed out by an allocation.
func Null[T any]() Ptr[T] {
	return Ptr[T]{}
}

// Index returns the slot index of the handle.
func (p Ptr[T]) Index() uint {
	return p.idx
}

// Gen returns the generation stamp of the handle.
func (p Ptr[T]) Gen() uint32 {
	return p.gen
}

// IsNull reports whether p refers to slot 0.
func (p Ptr[T]) IsNull() bool {
	return p.idx == 0
}

// Equal reports whether p and o refer to the same slot. The generation
// stamps are not compared.
func (p Ptr[T]) Equal(o Ptr[T]) bool {
	return p.idx == o.idx
}

// Add returns a handle k slots after p. The result is not checked against
// the table and may point before, inside or past any allocated run.
func (p Ptr[T]) Add(k int) Ptr[T] {
	return Offset(p, k)
}

// Sub returns a handle k slots before p.
func (p Ptr[T]) Sub(k int) Ptr[T] {
	return Offset(p, -k)
}

// AddAssign moves p forward by k slots.
func (p *Ptr[T]) AddAssign(k int) {
	*p = p.Add(k)
}

// SubAssign moves p backward by k slots.
func (p *Ptr[T]) SubAssign(k int) {
	*p = p.Sub(k)
}

// Diff returns the signed distance in slots from o to p.
func (p Ptr[T]) Diff(o Ptr[T]) int {
	return int(p.idx) - int(o.idx)
}

func (p Ptr[T]) String() string {
	var zero T
	return fmt.Sprintf("Ptr[%T](%d@%d)", zero, p.idx, p.gen)
}

// Offset returns p moved by k slots, for any integer type of k. The index
// wraps around like unsigned machine arithmetic.
func Offset[T any, I constraints.Integer](p Ptr[T], k I) Ptr[T] {
	return Ptr[T]{idx: p.idx + uint(k), gen: p.gen}
}
