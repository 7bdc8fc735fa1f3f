package gss

import (
	"fmt"
	"reflect"

	"github.com/dustin/go-humanize"
)

// Stats describes the occupancy of one slot table.
type Stats struct {
	Type       string  // element type, as printed by reflect
	Slots      int     // slots in the table, the null slot included
	Occupied   int     // occupied slots, the null slot included
	Free       int     // slots available for reuse
	Generation uint32  // next generation stamp to be issued
	ObjSize    uintptr // size of one slot in bytes
	Bytes      uint64  // approximate memory held by the table
}

func (s Stats) String() string {
	return fmt.Sprintf("%s: %d slots (%d occupied, %d free) of %s, %s, gen %d",
		s.Type, s.Slots, s.Occupied, s.Free,
		humanize.Bytes(uint64(s.ObjSize)), humanize.Bytes(s.Bytes), s.Generation)
}

// StatsOf returns the occupancy of the slot table of T in r.
func StatsOf[T any](r *Registry) Stats {
	return HeapOf[T](r).Stats()
}

func typeName(typ reflect.Type) string {
	if typ == nil {
		return ""
	}
	return typ.String()
}
