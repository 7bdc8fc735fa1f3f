package gss

import "github.com/bits-and-blooms/bitset"

// freeList tracks slot occupancy for one slot table. A set bit marks an
// occupied slot, a clear bit a free one. Its length always equals the
// length of the table's slot slice.
type freeList struct {
	used *bitset.BitSet
}

func newFreeList() freeList {
	return freeList{used: bitset.New(0)}
}

func (f freeList) setUsed(id uint) {
	f.used.Set(id)
}

func (f freeList) setFree(id uint) {
	f.used.Clear(id)
}

func (f freeList) isUsed(id uint) bool {
	return f.used.Test(id)
}

// len returns the number of tracked slots.
func (f freeList) len() uint {
	return f.used.Len()
}

// count returns the number of occupied slots.
func (f freeList) count() uint {
	return f.used.Count()
}

// push appends an occupied slot and returns its position.
func (f freeList) push() uint {
	id := f.used.Len()
	f.used.Set(id)
	return id
}

// getFree returns the position of the first free slot
// the second returned value indicates whether it found a free slot or not
func (f freeList) getFree() (uint, bool) {
	return f.used.NextClear(0)
}

// getFreeRun returns the start of the first run of n consecutive free
// slots, scanning in ascending order.
// the second returned value indicates whether such a run exists
func (f freeList) getFreeRun(n uint) (uint, bool) {
	length := f.used.Len()
	for from := uint(0); from < length; {
		start, ok := f.used.NextClear(from)
		if !ok {
			return 0, false
		}
		end, ok := f.used.NextSet(start)
		if !ok || end > length {
			end = length
		}
		if end-start >= n {
			return start, true
		}
		from = end
	}
	return 0, false
}
