package mem

import "github.com/andewx/vkforge/errcode"

// Linear uses the same allocHeader layout as free-list so that a linear
// arena can be passed anywhere a free-list arena's Realloc is called,
// but it never threads blocks onto a.free and Free is a no-op.
func (a *Arena) linearAlloc(size, alignment uint64) (Ptr, error) {
	base := a.used
	padding := padWithHeader(a.baseAddr+base, alignment)
	total := padding + size
	if base+total > a.capacity {
		return Null, errcode.New(errcode.OutOfMemory, nil)
	}

	userOff := base + padding
	h := a.headerAt(userOff - headerSize)
	h.blockSize = total
	h.alignPadding = padding

	a.used += total
	return Ptr{off: userOff}, nil
}

// linearRealloc only supports growing/shrinking the most recent allocation
// in place when there is room; otherwise it bumps a fresh block and copies,
// exactly like free-list realloc but without ever freeing the old block
// (Free is a no-op for Linear, so there is nothing to release).
func (a *Arena) linearRealloc(p Ptr, newSize uint64) (Ptr, error) {
	h := a.headerAt(p.off - headerSize)
	oldUserSize := h.blockSize - h.alignPadding

	if p.off+oldUserSize == a.used {
		// Top-of-arena allocation: extend or shrink the bump pointer
		// directly instead of wasting a fresh block.
		delta := int64(newSize) - int64(oldUserSize)
		if delta > 0 && a.used+uint64(delta) > a.capacity {
			return Null, errcode.New(errcode.OutOfMemory, nil)
		}
		h.blockSize = uint64(int64(h.blockSize) + delta)
		a.used = uint64(int64(a.used) + delta)
		return p, nil
	}

	newPtr, err := a.linearAlloc(newSize, 8)
	if err != nil {
		return Null, err
	}
	n := oldUserSize
	if newSize < n {
		n = newSize
	}
	copy(a.Bytes(newPtr, n), a.Bytes(p, n))
	return newPtr, nil
}
