package gss

// Alloc stores obj in the Default registry and returns its handle.
func Alloc[T any](obj T) Ptr[T] {
	return HeapOf[T](Default).Alloc(obj)
}

// AllocArray reserves count contiguous zero-valued slots of T in the
// Default registry. It panics with ErrZeroCount when count is zero.
func AllocArray[T any](count int) Ptr[T] {
	return HeapOf[T](Default).AllocArray(count)
}

// Store overwrites the slot of p in the Default registry.
func Store[T any](p Ptr[T], obj T) {
	HeapOf[T](Default).Store(p, obj)
}

// Load returns a copy of the slot of p in the Default registry.
func Load[T any](p Ptr[T]) T {
	return HeapOf[T](Default).Load(p)
}

// Free marks the slot of p free in the Default registry.
func Free[T any](p Ptr[T]) {
	HeapOf[T](Default).Free(p)
}

// FreeArray marks n slots starting at p free in the Default registry.
func FreeArray[T any](p Ptr[T], n int) {
	HeapOf[T](Default).FreeArray(p, n)
}

// WithRef calls f with a pointer to the slot of p in the Default registry
// and returns its result. f must not call any accessor of the package.
func WithRef[T, R any](p Ptr[T], f func(obj *T) R) R {
	return WithRefIn(HeapOf[T](Default), p, f)
}
