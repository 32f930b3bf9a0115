package mem

import "github.com/andewx/vkforge/errcode"

// OffsetAllocator is the free-list algorithm of the free-list Arena
// specialized to plain uint64 offset ranges instead of byte pointers:
// the mesh-stream registry needs to suballocate ranges of a device-side
// geometry buffer, which is
// the same first-fit-with-coalescing problem as host memory, just without
// a backing []byte to write headers into.
type OffsetAllocator struct {
	capacity uint64
	free     []freeEntry
}

// NewOffsetAllocator builds an allocator covering [0, capacity).
func NewOffsetAllocator(capacity uint64) *OffsetAllocator {
	return &OffsetAllocator{capacity: capacity, free: []freeEntry{{off: 0, size: capacity}}}
}

// Capacity returns the total offset range covered.
func (o *OffsetAllocator) Capacity() uint64 { return o.capacity }

// Alloc reserves a size-length range, first-fit, returning its base offset.
func (o *OffsetAllocator) Alloc(size uint64) (uint64, error) {
	for i, fe := range o.free {
		if fe.size < size {
			continue
		}
		base := fe.off
		residual := fe.size - size
		if residual == 0 {
			o.free = append(o.free[:i], o.free[i+1:]...)
		} else {
			o.free[i] = freeEntry{off: fe.off + size, size: residual}
		}
		return base, nil
	}
	return 0, errcode.New(errcode.OutOfMemory, nil)
}

// Free returns a previously allocated [off, off+size) range to the pool,
// coalescing with adjacent free neighbors (right then left), mirroring
// the free-list Arena's insertFree.
func (o *OffsetAllocator) Free(off, size uint64) {
	fe := freeEntry{off: off, size: size}
	idx := len(o.free)
	for i, e := range o.free {
		if e.off > fe.off {
			idx = i
			break
		}
	}
	o.free = append(o.free, freeEntry{})
	copy(o.free[idx+1:], o.free[idx:])
	o.free[idx] = fe

	if idx+1 < len(o.free) && o.free[idx].off+o.free[idx].size == o.free[idx+1].off {
		o.free[idx].size += o.free[idx+1].size
		o.free = append(o.free[:idx+1], o.free[idx+2:]...)
	}
	if idx > 0 && o.free[idx-1].off+o.free[idx-1].size == o.free[idx].off {
		o.free[idx-1].size += o.free[idx].size
		o.free = append(o.free[:idx], o.free[idx+1:]...)
	}
}
