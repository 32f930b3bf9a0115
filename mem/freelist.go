package mem

import (
	"unsafe"

	"github.com/andewx/vkforge/errcode"
)

// allocHeader precedes every live free-list/linear user pointer. blockSize
// is measured from the block's base (before alignment padding), so freeing
// can recover the exact free-list entry to re-insert; alignPadding is the
// gap from base to the returned user pointer, which is at least
// headerSize so the header itself always fits inside that gap.
type allocHeader struct {
	blockSize    uint64
	alignPadding uint64
}

const headerSize = uint64(unsafe.Sizeof(allocHeader{}))

func (a *Arena) headerAt(off uint64) *allocHeader {
	return (*allocHeader)(unsafe.Pointer(&a.buf[off]))
}

// padWithHeader computes the padding from base (an absolute address,
// not a buffer offset — see Arena.baseAddr) to an aligned user pointer
// that leaves room for a headerSize-byte header immediately before it:
// padding = align(base, A) - base; if padding < headerSize, round up to
// the next multiple of A that leaves at least headerSize bytes of gap.
func padWithHeader(base, alignment uint64) uint64 {
	aligned := alignUp(base, alignment)
	padding := aligned - base
	if padding < headerSize {
		padding += alignUp(headerSize-padding, alignment)
	}
	return padding
}

func (a *Arena) freeListAlloc(size, alignment uint64) (Ptr, error) {
	bestIdx := -1
	bestPadding := uint64(0)
	bestTotal := uint64(0)

	for i, fe := range a.free {
		padding := padWithHeader(a.baseAddr+fe.off, alignment)
		total := padding + size
		if total > fe.size {
			continue
		}
		if !a.bestFit {
			bestIdx, bestPadding, bestTotal = i, padding, total
			break
		}
		residual := fe.size - total
		if bestIdx == -1 || residual < (a.free[bestIdx].size-bestTotal) {
			bestIdx, bestPadding, bestTotal = i, padding, total
		}
	}
	if bestIdx == -1 {
		return Null, errcode.New(errcode.OutOfMemory, nil)
	}

	fe := a.free[bestIdx]
	residual := fe.size - bestTotal
	blockSize := bestTotal
	if residual < headerSize {
		// Too small to host a future allocation's header; absorb it
		// into this block instead of leaking an unusable sliver.
		blockSize = fe.size
		a.free = append(a.free[:bestIdx], a.free[bestIdx+1:]...)
	} else {
		a.free[bestIdx] = freeEntry{off: fe.off + blockSize, size: residual}
	}

	userOff := fe.off + bestPadding
	h := a.headerAt(userOff - headerSize)
	h.blockSize = blockSize
	h.alignPadding = bestPadding

	a.used += blockSize
	return Ptr{off: userOff}, nil
}

func (a *Arena) freeListFree(p Ptr) error {
	h := a.headerAt(p.off - headerSize)
	base := p.off - h.alignPadding
	size := h.blockSize
	a.used -= size

	a.poison(base, size)
	a.insertFree(freeEntry{off: base, size: size})
	return nil
}

// insertFree inserts fe into a.free keeping ascending address order, then
// coalesces with the right neighbor and then the left.
func (a *Arena) insertFree(fe freeEntry) {
	idx := len(a.free)
	for i, e := range a.free {
		if e.off > fe.off {
			idx = i
			break
		}
	}
	a.free = append(a.free, freeEntry{})
	copy(a.free[idx+1:], a.free[idx:])
	a.free[idx] = fe

	// Coalesce right.
	if idx+1 < len(a.free) && a.free[idx].off+a.free[idx].size == a.free[idx+1].off {
		a.free[idx].size += a.free[idx+1].size
		a.free = append(a.free[:idx+1], a.free[idx+2:]...)
	}
	// Coalesce left.
	if idx > 0 && a.free[idx-1].off+a.free[idx-1].size == a.free[idx].off {
		a.free[idx-1].size += a.free[idx].size
		a.free = append(a.free[:idx], a.free[idx+1:]...)
	}
}

func (a *Arena) freeListRealloc(p Ptr, newSize uint64) (Ptr, error) {
	h := a.headerAt(p.off - headerSize)
	oldUserSize := h.blockSize - h.alignPadding
	newPtr, err := a.freeListAlloc(newSize, 8)
	if err != nil {
		return Null, err
	}
	n := oldUserSize
	if newSize < n {
		n = newSize
	}
	copy(a.Bytes(newPtr, n), a.Bytes(p, n))
	_ = a.freeListFree(p)
	return newPtr, nil
}

// BlockSize returns the full physical block size (header + padding + user
// bytes) for a free-list or linear allocation.
func (a *Arena) BlockSize(p Ptr) uint64 {
	return a.headerAt(p.off - headerSize).blockSize
}

// UserSize returns the usable payload size for a free-list or linear
// allocation, or the fixed chunk size for a pool arena.
func (a *Arena) UserSize(p Ptr) uint64 {
	if a.policy == Pool {
		return a.chunkSize
	}
	h := a.headerAt(p.off - headerSize)
	return h.blockSize - h.alignPadding
}
