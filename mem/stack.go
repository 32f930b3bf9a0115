package mem

import (
	"unsafe"

	"github.com/andewx/vkforge/errcode"
)

// stackHeader records the bump offset immediately before this allocation
// began, so Free can rewind to it.
type stackHeader struct {
	prevUsed uint64
}

const stackHeaderSize = uint64(unsafe.Sizeof(stackHeader{}))

func (a *Arena) stackHeaderAt(off uint64) *stackHeader {
	return (*stackHeader)(unsafe.Pointer(&a.buf[off]))
}

func (a *Arena) stackAlloc(size, alignment uint64) (Ptr, error) {
	base := a.used
	userOff := alignUp(a.baseAddr+base+stackHeaderSize, alignment) - a.baseAddr
	end := userOff + size
	if end > a.capacity {
		return Null, errcode.New(errcode.OutOfMemory, nil)
	}

	h := a.stackHeaderAt(userOff - stackHeaderSize)
	h.prevUsed = base
	a.used = end
	a.stackTops = append(a.stackTops, userOff)
	return Ptr{off: userOff}, nil
}

// stackFree enforces LIFO release order: only the most recently allocated,
// not-yet-freed block may be freed. a.stackTops is the auxiliary
// array-of-live-offsets the redesign notes call for, standing in for a
// second intrusive list that would otherwise have to thread through the
// same memory being freed.
func (a *Arena) stackFree(p Ptr) error {
	n := len(a.stackTops)
	if n == 0 || a.stackTops[n-1] != p.off {
		return errcode.New(errcode.OutOfMemory, nil)
	}
	h := a.stackHeaderAt(p.off - stackHeaderSize)
	a.used = h.prevUsed
	a.stackTops = a.stackTops[:n-1]
	return nil
}
