package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	gss "github.com/replay/go-generic-slab-store"
	"github.com/spf13/cobra"
)

type demo struct {
	name  string
	short string
	run   func(w io.Writer, r *gss.Registry) error
}

var demos = []demo{
	{"aliasing", "Copies of a handle alias the same slot", runAliasing},
	{"arith", "Handle arithmetic reaches neighbouring slots", runArith},
	{"multiple-references", "Stores through any copy are seen by all", runMultipleReferences},
	{"use-after-free", "Freed slots stay writable and get reused", runUseAfterFree},
	{"linked-list", "Walk and unlink a doubly linked list of handles", runLinkedList},
}

func init() {
	for _, d := range demos {
		rootCmd.AddCommand(newDemoCmd(d))
	}
	rootCmd.AddCommand(newAllCmd())
}

func newDemoCmd(d demo) *cobra.Command {
	return &cobra.Command{
		Use:   d.name,
		Short: d.short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, _, err := newRegistry(cmd)
			if err != nil {
				return err
			}
			return d.run(cmd.OutOrStdout(), r)
		},
	}
}

func newAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Run every demo against one registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, _, err := newRegistry(cmd)
			if err != nil {
				return err
			}
			return runAll(cmd.OutOrStdout(), r)
		},
	}
}

func runAll(w io.Writer, r *gss.Registry) error {
	for _, d := range demos {
		if err := d.run(w, r); err != nil {
			return fmt.Errorf("%s: %w", d.name, err)
		}
	}
	return nil
}

// rejected reports err when generation checking turned it down, so checked
// runs show where the unchecked ones would have silently gone wrong.
func rejected(w io.Writer, what string, err error) error {
	if errors.Is(err, gss.ErrStaleHandle) || errors.Is(err, gss.ErrNullHandle) {
		fmt.Fprintf(w, "%s rejected: %v\n", what, err)
		return nil
	}
	return err
}

func runAliasing(w io.Writer, r *gss.Registry) error {
	h := gss.HeapOf[int32](r)

	x, err := h.TryAlloc(10)
	if err != nil {
		return err
	}
	y := x
	if err := h.TryStore(x, 20); err != nil {
		return err
	}

	xv, err := h.TryLoad(x)
	if err != nil {
		return err
	}
	yv, err := h.TryLoad(y)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "x=%d y=%d\n", xv, yv)
	return nil
}

func runArith(w io.Writer, r *gss.Registry) error {
	h := gss.HeapOf[int32](r)

	a, err := h.TryAlloc(1)
	if err != nil {
		return err
	}
	for _, v := range []int32{3, 3, 7} {
		if _, err := h.TryAlloc(v); err != nil {
			return err
		}
	}

	v, err := h.TryLoad(gss.Offset(a, int32(3)))
	if err != nil {
		return rejected(w, "a+3", err)
	}
	fmt.Fprintf(w, "a+3 = %d\n", v)
	return nil
}

func runMultipleReferences(w io.Writer, r *gss.Registry) error {
	h := gss.HeapOf[string](r)

	multiple, err := h.TryAlloc("hello")
	if err != nil {
		return err
	}
	references := multiple

	if err := h.TryStore(multiple, "dont work"); err != nil {
		return err
	}
	if err := h.TryStore(references, "works!"); err != nil {
		return err
	}

	v, err := h.TryLoad(multiple)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "multiple references: %s\n", v)
	return nil
}

func runUseAfterFree(w io.Writer, r *gss.Registry) error {
	h := gss.HeapOf[string](r)

	a, err := h.TryAlloc("no")
	if err != nil {
		return err
	}
	if err := h.TryFree(a); err != nil {
		return err
	}

	if err := h.TryStore(a, "yes"); err != nil {
		if err := rejected(w, "store after free", err); err != nil {
			return err
		}
	} else {
		v, err := h.TryLoad(a)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "use after free possible?: %s\n", v)
	}

	// b takes over the slot a pointed to.
	b, err := h.TryAlloc("no")
	if err != nil {
		return err
	}
	if err := h.TryStore(a, "yes"); err != nil {
		return rejected(w, "store through stale handle", err)
	}
	v, err := h.TryLoad(b)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "really??: %s\n", v)
	return nil
}

type listNode struct {
	prev, next gss.Ptr[listNode]
	data       string
}

// walk calls f on the data of every node from p to the end of the list.
func walk(h gss.Heap[listNode], p gss.Ptr[listNode], f func(data *string)) error {
	for !p.IsNull() {
		next, err := gss.TryWithRef(h, p, func(n *listNode) gss.Ptr[listNode] {
			f(&n.data)
			return n.next
		})
		if err != nil {
			return err
		}
		p = next
	}
	return nil
}

func runLinkedList(w io.Writer, r *gss.Registry) error {
	h := gss.HeapOf[listNode](r)

	var nodes []gss.Ptr[listNode]
	for _, name := range []string{"node_a", "node_b", "node_c"} {
		p, err := h.TryAlloc(listNode{data: name})
		if err != nil {
			return err
		}
		nodes = append(nodes, p)
	}
	for i := 1; i < len(nodes); i++ {
		prev, cur := nodes[i-1], nodes[i]
		if err := h.TryBorrow(prev, func(n *listNode) { n.next = cur }); err != nil {
			return err
		}
		if err := h.TryBorrow(cur, func(n *listNode) { n.prev = prev }); err != nil {
			return err
		}
	}

	a := nodes[0]
	show := func() error {
		var sb strings.Builder
		err := walk(h, a, func(data *string) {
			fmt.Fprintf(&sb, "%s -> ", *data)
		})
		fmt.Fprintln(w, sb.String())
		return err
	}

	if err := show(); err != nil {
		return err
	}

	// a.next.next = null
	b, err := h.TryLoad(a)
	if err != nil {
		return err
	}
	if err := h.TryBorrow(b.next, func(n *listNode) { n.next = gss.Null[listNode]() }); err != nil {
		return err
	}

	fmt.Fprintln(w, "after removing c from chain, node_c is unreachable:")
	return show()
}
