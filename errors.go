package gss

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrZeroCount is returned when an array allocation asks for no slots.
	ErrZeroCount = errors.New("gss: array allocation of zero slots")
	// ErrOutOfRange is matched by every *IndexError.
	ErrOutOfRange = errors.New("gss: handle index out of range")
	// ErrNullHandle is returned when the null handle is dereferenced with
	// generation checking enabled.
	ErrNullHandle = errors.New("gss: null handle dereference")
	// ErrStaleHandle is matched by every *StaleHandleError.
	ErrStaleHandle = errors.New("gss: stale handle")
	// ErrReentrant is matched by every *ReentrancyError.
	ErrReentrant = errors.New("gss: reentrant access")
)

// IndexError indicates a handle whose index lies outside its slot table.
type IndexError struct {
	Type  reflect.Type
	Index uint
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("gss: index %d out of range for %v table of %d slots", e.Index, e.Type, e.Len)
}

func (e *IndexError) Is(target error) bool { return target == ErrOutOfRange }

// StaleHandleError indicates a handle whose slot was freed, or freed and
// reallocated, since the handle was issued.
type StaleHandleError struct {
	Type    reflect.Type
	Index   uint
	Gen     uint32
	Current uint32 // zero when the slot is free
}

func (e *StaleHandleError) Error() string {
	if e.Current == 0 {
		return fmt.Sprintf("gss: %v slot %d (gen %d) is free", e.Type, e.Index, e.Gen)
	}
	return fmt.Sprintf("gss: %v slot %d has gen %d, handle carries gen %d", e.Type, e.Index, e.Current, e.Gen)
}

func (e *StaleHandleError) Is(target error) bool { return target == ErrStaleHandle }

// ReentrancyError indicates an accessor call made from inside a WithRef or
// Borrow closure running on the same goroutine.
type ReentrancyError struct {
	// Type is the type requested by the nested call.
	Type reflect.Type
	// Held is the type whose slot the enclosing closure is borrowing.
	Held reflect.Type
}

func (e *ReentrancyError) Error() string {
	if e.Type == nil {
		return fmt.Sprintf("gss: registry access while borrowing a %v slot", e.Held)
	}
	return fmt.Sprintf("gss: access to %v table while borrowing a %v slot", e.Type, e.Held)
}

func (e *ReentrancyError) Is(target error) bool { return target == ErrReentrant }

// violation logs and counts an accessor call rejected with err.
func (r *Registry) violation(op string, typ reflect.Type, err error) {
	name := typeName(typ)
	r.cfg.Logger.LogViolation(op, name, err)
	r.cfg.Metrics.RecordViolation(name, err)
}
