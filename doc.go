// Package gss is a type-indexed slab allocator. For every value type it
// keeps a growable slot table with an occupancy bitmap, and it hands out
// integer handles (Ptr) in place of Go pointers.
//
// Handles behave like pointers into a dense array: they can be copied,
// compared, offset and subtracted, and they are dereferenced with Load,
// Store and WithRef. Slot 0 of every table is reserved for the null
// handle. Freed slots are reused first-fit in ascending index order, and
// AllocArray hands out contiguous runs that can be walked with Add.
//
// By default handles are not validated beyond the table bounds: a handle
// to a freed or reused slot still reads and writes it. Setting
// RegistryConfig.CheckGenerations, or building with the gss_checked tag,
// stamps every allocation with a generation and rejects stale handles.
//
// Every slot table has its own lock. Calling back into a registry from a
// WithRef closure fails with a *ReentrancyError rather than deadlocking.
package gss
