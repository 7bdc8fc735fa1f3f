package gss

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNewSlab(t *testing.T) {
	s := newSlab[int](10)
	if len(s.slots) != 0 || cap(s.slots) != 10 {
		t.Errorf("expected empty slab with capacity 10, got %d/%d", len(s.slots), cap(s.slots))
	}
}

func TestSlabNullReservation(t *testing.T) {
	Convey("When allocating from a new slab", t, func() {
		s := newSlab[string](0)
		p, reused := s.alloc("a")
		So(reused, ShouldBeFalse)

		Convey("slot 0 should be reserved and hold the zero value", func() {
			So(p.Index(), ShouldEqual, uint(1))
			So(len(s.slots), ShouldEqual, 2)
			So(s.free.isUsed(0), ShouldBeTrue)
			So(s.slots[0], ShouldEqual, "")
			So(s.gens[0], ShouldEqual, uint32(0))
		})

		Convey("slot 0 should never be freed or handed out again", func() {
			s.delete(0)
			So(s.free.isUsed(0), ShouldBeTrue)
			So(s.deleteRun(0, 2, 0), ShouldEqual, 1)
			So(s.free.isUsed(0), ShouldBeTrue)

			q, _ := s.alloc("b")
			So(q.Index(), ShouldEqual, uint(1))
			r, _, err := s.allocArray(3)
			So(err, ShouldBeNil)
			So(r.Index(), ShouldEqual, uint(2))
		})
	})
}

func TestSlabFirstFitReuse(t *testing.T) {
	Convey("When adding three objects to a slab", t, func() {
		s := newSlab[int](0)
		a, _ := s.alloc(1)
		b, _ := s.alloc(2)
		c, _ := s.alloc(3)
		So([]uint{a.Index(), b.Index(), c.Index()}, ShouldResemble, []uint{1, 2, 3})

		Convey("then freeing the second one makes its slot the next one used", func() {
			s.delete(b.Index())
			d, reused := s.alloc(4)
			So(reused, ShouldBeTrue)
			So(d.Index(), ShouldEqual, b.Index())
			So(s.slots[d.Index()], ShouldEqual, 4)
			So(len(s.slots), ShouldEqual, 4)
		})

		Convey("then the lowest freed slot wins over more recent frees", func() {
			s.delete(c.Index())
			s.delete(a.Index())
			d, _ := s.alloc(5)
			So(d.Index(), ShouldEqual, a.Index())
			e, _ := s.alloc(6)
			So(e.Index(), ShouldEqual, c.Index())
		})

		Convey("then every allocation gets a fresh generation", func() {
			So(b.Gen(), ShouldBeGreaterThan, a.Gen())
			So(c.Gen(), ShouldBeGreaterThan, b.Gen())
			s.delete(b.Index())
			d, _ := s.alloc(4)
			So(d.Index(), ShouldEqual, b.Index())
			So(d.Gen(), ShouldNotEqual, b.Gen())
		})
	})
}

func TestSlabAllocArray(t *testing.T) {
	Convey("When allocating an array of 5 slots", t, func() {
		s := newSlab[int32](0)
		p, reused, err := s.allocArray(5)
		So(err, ShouldBeNil)
		So(reused, ShouldBeFalse)

		Convey("the slots should be contiguous, occupied and zeroed", func() {
			So(p.Index(), ShouldEqual, uint(1))
			So(len(s.slots), ShouldEqual, 6)
			for i := 0; i < 5; i++ {
				idx := p.Add(i).Index()
				So(s.free.isUsed(idx), ShouldBeTrue)
				So(s.slots[idx], ShouldEqual, int32(0))
				So(s.gens[idx], ShouldEqual, p.Gen())
			}
		})

		Convey("a freed run in the middle should be reused and reset", func() {
			q, _ := s.alloc(7)
			for i := 1; i < 4; i++ {
				s.slots[p.Add(i).Index()] = 9
			}
			So(s.deleteRun(p.Add(1).Index(), 3, 0), ShouldEqual, 3)

			r, reused, err := s.allocArray(3)
			So(err, ShouldBeNil)
			So(reused, ShouldBeTrue)
			So(r.Index(), ShouldEqual, p.Add(1).Index())
			So(s.slots[r.Index()], ShouldEqual, int32(0))
			So(s.slots[r.Add(2).Index()], ShouldEqual, int32(0))
			So(s.slots[q.Index()], ShouldEqual, int32(7))
			So(len(s.slots), ShouldEqual, 7)
		})

		Convey("a run too short at the end should not be extended", func() {
			s.delete(p.Add(4).Index())
			r, reused, err := s.allocArray(2)
			So(err, ShouldBeNil)
			So(reused, ShouldBeFalse)
			So(r.Index(), ShouldEqual, uint(6))
			So(len(s.slots), ShouldEqual, 8)
			So(s.free.isUsed(p.Add(4).Index()), ShouldBeFalse)
		})

		Convey("a zero count should be rejected", func() {
			_, _, err := s.allocArray(0)
			So(err, ShouldEqual, ErrZeroCount)
			So(len(s.slots), ShouldEqual, 6)
		})
	})

	Convey("When the first array allocation happens on an empty slab", t, func() {
		s := newSlab[int](0)
		_, _, err := s.allocArray(0)
		So(err, ShouldEqual, ErrZeroCount)
		So(len(s.slots), ShouldEqual, 0)
	})
}

func TestSlabDeleteRun(t *testing.T) {
	Convey("When freeing a run that crosses the end of the slab", t, func() {
		s := newSlab[byte](0)
		p, _, _ := s.allocArray(3)
		freed := s.deleteRun(p.Index(), 10, 0)

		Convey("slots past the end should be skipped silently", func() {
			So(freed, ShouldEqual, 3)
			So(len(s.slots), ShouldEqual, 4)
			So(s.free.count(), ShouldEqual, uint(1))
		})
	})

	Convey("When freeing a run restricted to one generation", t, func() {
		s := newSlab[byte](0)
		p, _, _ := s.allocArray(2)
		q, _ := s.alloc(1)
		freed := s.deleteRun(p.Index(), 3, p.Gen())

		Convey("slots of other allocations should stay occupied", func() {
			So(freed, ShouldEqual, 2)
			So(s.free.isUsed(q.Index()), ShouldBeTrue)
		})
	})

	Convey("When a run starts at a wrapped index", t, func() {
		s := newSlab[byte](0)
		s.alloc(1)
		freed := s.deleteRun(^uint(0), 3, 0)

		Convey("it should not wrap around into the table", func() {
			So(freed, ShouldEqual, 0)
			So(s.free.count(), ShouldEqual, uint(2))
		})
	})
}

func TestSlabCheck(t *testing.T) {
	Convey("When checking handles against a slab", t, func() {
		s := newSlab[int](0)
		p, _ := s.alloc(1)

		Convey("out of range indexes fail in both modes", func() {
			var ie *IndexError
			err := s.check(p.Add(5), false)
			So(err, ShouldHaveSameTypeAs, ie)
			So(s.check(p.Add(5), true), ShouldHaveSameTypeAs, ie)
		})

		Convey("free slots only fail when generations are checked", func() {
			s.delete(p.Index())
			So(s.check(p, false), ShouldBeNil)
			So(s.check(p, true), ShouldHaveSameTypeAs, &StaleHandleError{})
		})

		Convey("reused slots fail the generation check", func() {
			s.delete(p.Index())
			q, _ := s.alloc(2)
			So(q.Equal(p), ShouldBeTrue)
			So(s.check(q, true), ShouldBeNil)
			err := s.check(p, true)
			So(err, ShouldNotBeNil)
			So(err.(*StaleHandleError).Current, ShouldEqual, q.Gen())
		})

		Convey("the null handle only fails when generations are checked", func() {
			So(s.check(Null[int](), false), ShouldBeNil)
			So(s.check(Null[int](), true), ShouldEqual, ErrNullHandle)
		})
	})
}

func TestSlabStatsAndString(t *testing.T) {
	Convey("When dumping a slab", t, func() {
		s := newSlab[int64](0)
		s.alloc(11)
		p, _ := s.alloc(22)
		s.delete(p.Index())

		st := s.stats()
		So(st.Type, ShouldEqual, "int64")
		So(st.Slots, ShouldEqual, 3)
		So(st.Occupied, ShouldEqual, 2)
		So(st.Free, ShouldEqual, 1)
		So(st.ObjSize, ShouldEqual, uintptr(8))

		out := s.String()
		So(out, ShouldContainSubstring, "Slab Type: int64")
		So(out, ShouldContainSubstring, "Slot Count: 3")
		So(out, ShouldContainSubstring, "used gen=1 11")
		So(out, ShouldContainSubstring, "free gen=2 22")
	})
}
