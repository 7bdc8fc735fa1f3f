package gss

import (
	"runtime"
	"sync"
)

// Search searches the occupied slots of h for a value equal to searching.
// When found it returns the handle of the lowest matching slot and true,
// otherwise the second returned value is false.
// Tables longer than the registry's ParallelSearchThreshold are split into
// GOMAXPROCS stripes searched concurrently.
func Search[T comparable](h Heap[T], searching T) (Ptr[T], bool) {
	res := SearchBatched(h, []T{searching})
	return res[0], !res[0].IsNull()
}

// SearchBatched searches for a batch of values.
// It is similar to Search, but it resolves all values in one pass.
// The returned slice always has the same length as searching: a found
// value has the handle of its lowest matching slot at the same index, a
// value that was not found has the null handle.
func SearchBatched[T comparable](h Heap[T], searching []T) []Ptr[T] {
	resultSet := make([]Ptr[T], len(searching))
	if len(searching) == 0 {
		return resultSet
	}

	err := h.do("search", func(s *slab[T]) error {
		stripes := 1
		if len(s.slots) >= h.r.cfg.ParallelSearchThreshold {
			stripes = runtime.GOMAXPROCS(0)
		}
		searchStripes(s, searching, resultSet, stripes)
		return nil
	})
	must(err)

	return resultSet
}

// searchStripes splits the slots of s into contiguous stripes, one go
// routine each, and merges the per-stripe hits keeping the lowest index.
func searchStripes[T comparable](s *slab[T], searching []T, resultSet []Ptr[T], stripes int) {
	length := len(s.slots)
	stripeLen := (length + stripes - 1) / stripes
	if stripeLen == 0 {
		return
	}

	hits := make([][]Ptr[T], stripes)
	wg := sync.WaitGroup{}
	for i := 0; i < stripes; i++ {
		from := i * stripeLen
		if from >= length {
			break
		}
		to := min(from+stripeLen, length)
		hits[i] = make([]Ptr[T], len(searching))

		wg.Add(1)
		go func(found []Ptr[T], from, to int) {
			defer wg.Done()
			left := len(searching)

			// slot 0 is the null sentinel and never matches
			for idx := max(from, 1); idx < to && left > 0; idx++ {
				if !s.free.isUsed(uint(idx)) {
					continue
				}
				for k, searchedObj := range searching {
					if found[k].IsNull() && s.slots[idx] == searchedObj {
						found[k] = Ptr[T]{idx: uint(idx), gen: s.gens[idx]}
						left--
					}
				}
			}
		}(hits[i], from, to)
	}
	wg.Wait()

	// stripes are in ascending order, so the first hit is the lowest one
	for k := range searching {
		for _, found := range hits {
			if found != nil && !found[k].IsNull() {
				resultSet[k] = found[k]
				break
			}
		}
	}
}
