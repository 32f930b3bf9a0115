package mem

import "github.com/andewx/vkforge/errcode"

func (a *Arena) poolAlloc() (Ptr, error) {
	n := len(a.freeChunks)
	if n == 0 {
		return Null, errcode.New(errcode.OutOfMemory, nil)
	}
	off := a.freeChunks[n-1]
	a.freeChunks = a.freeChunks[:n-1]
	a.used += a.chunkSize
	return Ptr{off: off}, nil
}

func (a *Arena) poolFree(p Ptr) error {
	a.poison(p.off, a.chunkSize)
	a.freeChunks = append(a.freeChunks, p.off)
	a.used -= a.chunkSize
	return nil
}

// ChunkSize returns the pool arena's fixed chunk size.
func (a *Arena) ChunkSize() uint64 { return a.chunkSize }
