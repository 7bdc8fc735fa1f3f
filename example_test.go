package gss_test

import (
	"errors"
	"fmt"

	gss "github.com/replay/go-generic-slab-store"
)

func Example() {
	x := gss.Alloc(10)
	y := x
	gss.Store(x, 20)
	fmt.Printf("x=%d y=%d\n", gss.Load(x), gss.Load(y))
	// Output: x=20 y=20
}

func ExampleOffset() {
	cfg := gss.NewConfig()
	cfg.CheckGenerations = false
	heap := gss.HeapOf[int32](gss.NewRegistry(cfg))

	a := heap.Alloc(1)
	heap.Alloc(3)
	heap.Alloc(3)
	heap.Alloc(7)

	fmt.Println(heap.Load(gss.Offset(a, uint8(3))), heap.Load(a.Add(3).Sub(1)))
	// Output: 7 3
}

func ExampleHeap_useAfterFree() {
	cfg := gss.NewConfig()
	cfg.CheckGenerations = false
	heap := gss.HeapOf[string](gss.NewRegistry(cfg))

	a := heap.Alloc("no")
	heap.Free(a)
	heap.Store(a, "yes")
	fmt.Println("use after free possible?:", heap.Load(a))

	b := heap.Alloc("no")
	heap.Store(a, "yes")
	fmt.Println("really??:", heap.Load(b))
	// Output:
	// use after free possible?: yes
	// really??: yes
}

func ExampleHeap_checked() {
	cfg := gss.NewConfig()
	cfg.CheckGenerations = true
	heap := gss.HeapOf[string](gss.NewRegistry(cfg))

	a := heap.Alloc("no")
	heap.Free(a)
	err := heap.TryStore(a, "yes")
	fmt.Println(errors.Is(err, gss.ErrStaleHandle))
	// Output: true
}

func ExampleTryWithRef() {
	heap := gss.HeapOf[int](gss.NewRegistry(gss.NewConfig()))
	p := heap.Alloc(1)

	inner, err := gss.TryWithRef(heap, p, func(v *int) error {
		*v++
		_, err := heap.TryLoad(p)
		return err
	})
	fmt.Println(err, errors.Is(inner, gss.ErrReentrant), heap.Load(p))
	// Output: <nil> true 2
}
