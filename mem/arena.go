// Package mem implements the arena allocator family: free-list, pool, stack
// and linear policies over a single contiguous buffer, plus the process-wide
// well-known arenas every other package is constructed against.
//
// Pointers into an arena are never raw unsafe.Pointer values handed to
// callers; they are offsets (type Ptr) resolved against the owning Arena on
// demand. The arena's backing buffer is allocated once and never moved, so
// resolving an offset to an unsafe.Pointer for alignment arithmetic or a
// byte slice for copying is always safe for the arena's lifetime.
package mem

import (
	"unsafe"

	"github.com/andewx/vkforge/errcode"
)

// Policy selects an arena's allocation algorithm.
type Policy int

const (
	FreeList Policy = iota
	Pool
	Stack
	Linear
)

func (p Policy) String() string {
	switch p {
	case FreeList:
		return "free_list"
	case Pool:
		return "pool"
	case Stack:
		return "stack"
	case Linear:
		return "linear"
	default:
		return "unknown"
	}
}

// nullOff is the sentinel offset representing an invalid Ptr. An arena would
// have to span the entire address space to produce a real allocation at
// this offset, so it can never collide with a live one.
const nullOff = ^uint64(0)

// Ptr references a block inside exactly one Arena. The zero value is NOT
// null (offset 0 is a legitimate allocation) — always compare against Null
// or call Valid.
type Ptr struct {
	off uint64
}

// Null is the invalid Ptr returned on allocation failure.
var Null = Ptr{off: nullOff}

// Valid reports whether p is anything other than Null.
func (p Ptr) Valid() bool { return p.off != nullOff }

// Arena owns one contiguous byte buffer and one allocation policy.
type Arena struct {
	policy   Policy
	buf      []byte
	capacity uint64
	used     uint64
	peak     uint64
	upstream *Arena

	bestFit bool // free-list only: best-fit vs first-fit scan

	free []freeEntry // free-list only: free extents in ascending address order

	chunkSize  uint64   // pool only
	freeChunks []uint64 // pool only: LIFO of free chunk offsets

	stackTops []uint64 // stack only: LIFO of live allocation offsets, newest last

	upstreamPtr Ptr // where the buffer lives inside upstream, for Terminate

	// baseAddr is the buffer's absolute start address. Alignment
	// padding is computed against it rather than against bare offsets,
	// so Addr(p) % alignment == 0 holds even when the buffer is a
	// sub-slice of an upstream arena whose own base is not a multiple
	// of the requested alignment.
	baseAddr uint64
}

// freeEntry is the "sum-type free entry stored in an auxiliary array indexed
// by block offset" the redesign notes call for, replacing an intrusive
// singly-linked free list that would otherwise write node pointers into the
// freed memory itself.
type freeEntry struct {
	off  uint64
	size uint64
}

// Config describes how to build an Arena.
type Config struct {
	Policy    Policy
	Size      uint64
	ChunkSize uint64 // Pool only; must be >= 8 and divide Size evenly.
	BestFit   bool   // FreeList only.
	Upstream  *Arena // optional; buffer is sub-allocated from Upstream instead of the OS.
}

// New builds an Arena per cfg. If cfg.Upstream is non-nil the backing buffer
// is allocated from it (as one big free-list/linear allocation); otherwise
// the buffer comes directly from the Go runtime, standing in for the OS.
func New(cfg Config) (*Arena, error) {
	if cfg.Policy == Pool {
		if cfg.ChunkSize < 8 {
			return nil, errcode.New(errcode.OutOfMemory, nil)
		}
		if cfg.Size%cfg.ChunkSize != 0 {
			cfg.Size -= cfg.Size % cfg.ChunkSize
		}
	}

	a := &Arena{
		policy:    cfg.Policy,
		capacity:  cfg.Size,
		bestFit:   cfg.BestFit,
		chunkSize: cfg.ChunkSize,
		upstream:  cfg.Upstream,
	}

	if cfg.Upstream != nil {
		p, err := cfg.Upstream.Alloc(cfg.Size, 16)
		if err != nil {
			return nil, err
		}
		a.buf = cfg.Upstream.Bytes(p, cfg.Size)
		a.upstreamPtr = p
	} else {
		a.buf = make([]byte, cfg.Size)
		a.upstreamPtr = Null
	}
	if len(a.buf) > 0 {
		a.baseAddr = uint64(uintptr(unsafe.Pointer(&a.buf[0])))
	}

	a.resetLocked()
	return a, nil
}

// Capacity returns the arena's total byte capacity.
func (a *Arena) Capacity() uint64 { return a.capacity }

// Used returns bytes currently allocated.
func (a *Arena) Used() uint64 { return a.used }

// Peak returns the high-water mark of Used since the last Reset.
func (a *Arena) Peak() uint64 { return a.peak }

// PolicyTag reports the arena's allocation policy.
func (a *Arena) PolicyTag() Policy { return a.policy }

// Alloc allocates size bytes aligned to at least alignment, dispatching to
// the policy-specific implementation.
func (a *Arena) Alloc(size, alignment uint64) (Ptr, error) {
	if alignment == 0 {
		alignment = 8
	}
	var p Ptr
	var err error
	switch a.policy {
	case FreeList:
		p, err = a.freeListAlloc(size, alignment)
	case Pool:
		p, err = a.poolAlloc()
	case Stack:
		p, err = a.stackAlloc(size, alignment)
	case Linear:
		p, err = a.linearAlloc(size, alignment)
	}
	if err == nil && p.Valid() {
		if a.used > a.peak {
			a.peak = a.used
		}
	}
	return p, err
}

// Realloc resizes the block at p to newSize, copying min(oldUserSize,
// newSize) bytes. Pool reallocation is only valid to the same chunk size
// and always returns the same Ptr.
func (a *Arena) Realloc(p Ptr, newSize uint64) (Ptr, error) {
	switch a.policy {
	case FreeList:
		return a.freeListRealloc(p, newSize)
	case Linear:
		return a.linearRealloc(p, newSize)
	case Pool:
		if newSize > a.chunkSize {
			return Null, errcode.New(errcode.OutOfMemory, nil)
		}
		return p, nil
	case Stack:
		// Stack realloc is only valid for the top-of-stack allocation,
		// which is resized in place; treat any other call as an error
		// rather than silently corrupting later allocations.
		n := len(a.stackTops)
		if n == 0 || a.stackTops[n-1] != p.off || p.off+newSize > a.capacity {
			return Null, errcode.New(errcode.OutOfMemory, nil)
		}
		a.used = p.off + newSize
		if a.used > a.peak {
			a.peak = a.used
		}
		return p, nil
	}
	return Null, errcode.New(errcode.OutOfMemory, nil)
}

// Free releases the block at p. Policy-specific; a no-op for Linear.
func (a *Arena) Free(p Ptr) error {
	if !p.Valid() {
		return nil
	}
	switch a.policy {
	case FreeList:
		return a.freeListFree(p)
	case Pool:
		return a.poolFree(p)
	case Stack:
		return a.stackFree(p)
	case Linear:
		return nil
	}
	return nil
}

// Reset returns Used/Peak to zero and rebuilds internal bookkeeping.
func (a *Arena) Reset() { a.resetLocked() }

// Terminate releases the backing buffer to its source: an upstream
// arena gets the sub-allocation back, an OS-backed buffer is dropped
// for the runtime to reclaim. The arena must not be used afterwards.
func (a *Arena) Terminate() {
	if a.upstream != nil && a.upstreamPtr.Valid() {
		_ = a.upstream.Free(a.upstreamPtr)
	}
	a.buf = nil
	a.capacity = 0
	a.used = 0
	a.peak = 0
	a.free = nil
	a.freeChunks = nil
	a.stackTops = nil
	a.baseAddr = 0
}

func (a *Arena) resetLocked() {
	a.used = 0
	a.peak = 0
	switch a.policy {
	case FreeList, Linear:
		a.free = a.free[:0]
		if a.policy == FreeList {
			a.free = append(a.free, freeEntry{off: 0, size: a.capacity})
		}
	case Pool:
		n := a.capacity / a.chunkSize
		a.freeChunks = a.freeChunks[:0]
		for i := uint64(0); i < n; i++ {
			// Pushed in descending order so acquire (which pops the
			// tail) hands out chunk 0 first, matching intuitive
			// first-use order.
			a.freeChunks = append(a.freeChunks, (n-1-i)*a.chunkSize)
		}
	case Stack:
		a.stackTops = a.stackTops[:0]
	}
}

// Bytes returns the byte slice backing the size bytes at p, for callers
// that need to read/write raw payload data (e.g. memcpy into a mapped
// staging buffer). The slice aliases the arena's buffer and must not be
// retained past the block's lifetime.
func (a *Arena) Bytes(p Ptr, size uint64) []byte {
	return a.buf[p.off : p.off+size]
}

// Addr returns the absolute address of p, for alignment checks
// (uintptr(Addr(p)) % alignment == 0 style assertions in tests).
func (a *Arena) Addr(p Ptr) uintptr {
	return uintptr(unsafe.Pointer(&a.buf[p.off]))
}

func alignUp(v, a uint64) uint64 {
	return (v + a - 1) &^ (a - 1)
}

// PoisonFreed, when set, fills released blocks with poisonByte so a
// use-after-free reads garbage deterministically instead of stale data.
// Off by default; tests and debug harnesses flip it on.
var PoisonFreed = false

const poisonByte = 0xDD

func (a *Arena) poison(off, size uint64) {
	if !PoisonFreed {
		return
	}
	b := a.buf[off : off+size]
	for i := range b {
		b[i] = poisonByte
	}
}
