package vkr

import (
	"github.com/andewx/vkforge/errcode"
	"github.com/andewx/vkforge/mem"
)

// AllocScope mirrors Vulkan's VkSystemAllocationScope values; the
// vulkan-go binding does not expose a way to route VkAllocationCallbacks'
// function pointers back into Go (every call site passes nil for
// pAllocator), so HostAllocator cannot literally become the driver's
// allocator. It instead accounts for the engine-initiated host
// allocations made on Vulkan's behalf — shader-blob staging during
// pipeline creation (object scope, via the resource inventory) and the
// bounce copies the transfer service makes before writing mapped
// staging memory (command scope) — against the same scopes and arenas,
// which is the closest a pure-Go binding gets to a real driver-callback
// allocator.
type AllocScope int

const (
	ScopeCommand AllocScope = iota
	ScopeObject
	ScopeCache
	ScopeDevice
	ScopeInstance
	scopeCount
)

func (s AllocScope) String() string {
	switch s {
	case ScopeCommand:
		return "command"
	case ScopeObject:
		return "object"
	case ScopeCache:
		return "cache"
	case ScopeDevice:
		return "device"
	case ScopeInstance:
		return "instance"
	default:
		return "unknown"
	}
}

// ScopeStats is the per-scope allocation statistics block.
type ScopeStats struct {
	AllocCount          uint64
	FreeCount           uint64
	ReallocCount        uint64
	RequestedAllocBytes uint64
	RequestedFreeBytes  uint64
	ActualAllocBytes    uint64
	ActualFreeBytes     uint64
}

type hostHeader struct {
	scope AllocScope
	size  uint64
}

// hostHeaderSize is the header region every block carries: 1 byte scope
// (padded) + 8 bytes requested size, rounded to 16 for 8-byte payload
// alignment.
const hostHeaderSize = 16

// HostAllocator routes host allocations by scope: ScopeCommand goes to
// the scratch (stack) arena since command-buffer-adjacent bookkeeping is
// naturally LIFO-scoped to a recording pass; every other scope goes to
// the persistent free-list arena.
type HostAllocator struct {
	ctx   *mem.Context
	stats [scopeCount]ScopeStats
}

// NewHostAllocator builds a HostAllocator over ctx's well-known arenas.
func NewHostAllocator(ctx *mem.Context) *HostAllocator {
	return &HostAllocator{ctx: ctx}
}

func (h *HostAllocator) arenaFor(scope AllocScope) *mem.Arena {
	if scope == ScopeCommand {
		return h.ctx.Scratch()
	}
	return h.ctx.Persistent()
}

// Alloc reserves size payload bytes aligned to align for scope, behind a
// header recording {scope, requested size} so Free and Realloc can
// recover it without the caller threading scope through. The returned
// Ptr addresses the whole header+payload block; use Payload to get at
// the writable region.
func (h *HostAllocator) Alloc(size, align uint64, scope AllocScope) (mem.Ptr, error) {
	a := h.arenaFor(scope)
	p, err := a.Alloc(size+hostHeaderSize, align)
	if err != nil {
		return mem.Null, err
	}
	writeHeader(a, p, hostHeader{scope: scope, size: size})

	s := &h.stats[scope]
	s.AllocCount++
	s.RequestedAllocBytes += size
	s.ActualAllocBytes += size + hostHeaderSize
	return p, nil
}

// Payload returns the writable region of the block at p, as allocated
// with the given scope (needed to find the owning arena).
func (h *HostAllocator) Payload(p mem.Ptr, scope AllocScope) []byte {
	a := h.arenaFor(scope)
	hdr := readHeader(a, p)
	return a.Bytes(p, hdr.size+hostHeaderSize)[hostHeaderSize:]
}

// Free releases the block at p, charging stats back to the scope stored
// in its header. A null Ptr is a no-op.
func (h *HostAllocator) Free(p mem.Ptr, scope AllocScope) error {
	if !p.Valid() {
		return nil
	}
	a := h.arenaFor(scope)
	hdr := readHeader(a, p)
	if err := a.Free(p); err != nil {
		return err
	}
	s := &h.stats[hdr.scope]
	s.FreeCount++
	s.RequestedFreeBytes += hdr.size
	s.ActualFreeBytes += hdr.size + hostHeaderSize
	return nil
}

// Realloc resizes the block at p to newSize, asserting scope matches the
// scope stored in the block's header.
func (h *HostAllocator) Realloc(p mem.Ptr, newSize uint64, scope AllocScope) (mem.Ptr, error) {
	a := h.arenaFor(scope)
	hdr := readHeader(a, p)
	if hdr.scope != scope {
		return mem.Null, errcode.New(errcode.OutOfMemory, nil)
	}
	np, err := a.Realloc(p, newSize+hostHeaderSize)
	if err != nil {
		return mem.Null, err
	}
	writeHeader(a, np, hostHeader{scope: scope, size: newSize})
	h.stats[scope].ReallocCount++
	return np, nil
}

// Stats returns a copy of the per-scope statistics, for teardown logging.
func (h *HostAllocator) Stats() [scopeCount]ScopeStats { return h.stats }

func writeHeader(a *mem.Arena, p mem.Ptr, hdr hostHeader) {
	b := a.Bytes(p, hostHeaderSize)
	b[0] = byte(hdr.scope)
	putU64(b[8:], hdr.size)
}

func readHeader(a *mem.Arena, p mem.Ptr) hostHeader {
	b := a.Bytes(p, hostHeaderSize)
	return hostHeader{scope: AllocScope(b[0]), size: getU64(b[8:])}
}

func putU64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

func getU64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(b[i]) << (8 * i)
	}
	return v
}
