// Package containers implements dynamic arrays, a robin-hood
// open-addressing hash map, and generation-tagged slot pools.
// Element storage for all three is an ordinary Go slice; none of them
// allocates from arena memory. Array records an arena (NewArray with a nil
// arena falls back to the well-known free-list arena on the supplied
// *mem.Context); HashMap and SlotPool carry no arena.
package containers

import "github.com/andewx/vkforge/mem"

// Array is a dynamic array. It doubles capacity when full
// and supports a swap-remove for unordered (density-preserving) deletion.
type Array[T any] struct {
	arena *mem.Arena
	data  []T
}

// NewArray builds an Array growing against arena. If arena is nil, the
// well-known persistent arena of ctx is used.
func NewArray[T any](ctx *mem.Context, arena *mem.Arena, capacityHint int) *Array[T] {
	if arena == nil && ctx != nil {
		arena = ctx.Persistent()
	}
	a := &Array[T]{arena: arena}
	if capacityHint > 0 {
		a.data = make([]T, 0, capacityHint)
	}
	return a
}

// Len returns the number of live elements.
func (a *Array[T]) Len() int { return len(a.data) }

// At returns the element at i.
func (a *Array[T]) At(i int) T { return a.data[i] }

// Set overwrites the element at i.
func (a *Array[T]) Set(i int, v T) { a.data[i] = v }

// Push appends v. When the backing slice is full it is reallocated at
// twice its capacity (capacity 1 for an empty array) and the elements
// are copied over.
func (a *Array[T]) Push(v T) {
	if len(a.data) == cap(a.data) {
		n := 2 * cap(a.data)
		if n == 0 {
			n = 1
		}
		grown := make([]T, len(a.data), n)
		copy(grown, a.data)
		a.data = grown
	}
	a.data = append(a.data, v)
}

// ShrinkToFit reallocates the backing store at exactly Len(), dropping any
// spare capacity from prior doubling.
func (a *Array[T]) ShrinkToFit() {
	if cap(a.data) == len(a.data) {
		return
	}
	tight := make([]T, len(a.data))
	copy(tight, a.data)
	a.data = tight
}

// SwapRemove removes the element at i in O(1) by moving the last element
// into its place; density is preserved but order is not.
func (a *Array[T]) SwapRemove(i int) {
	n := len(a.data)
	a.data[i] = a.data[n-1]
	var zero T
	a.data[n-1] = zero
	a.data = a.data[:n-1]
}

// Slice exposes the live elements for range iteration.
func (a *Array[T]) Slice() []T { return a.data }
