package vkr

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andewx/vkforge/mem"
)

func testMemContext(t *testing.T) *mem.Context {
	t.Helper()
	ctx, err := mem.NewContext(mem.InitSizes{FreeListSize: 1 << 20, StackSize: 1 << 16, FrameLinear: 1 << 16})
	require.NoError(t, err)
	return ctx
}

func TestHostAllocatorScopeRouting(t *testing.T) {
	h := NewHostAllocator(testMemContext(t))

	p, err := h.Alloc(64, 8, ScopeObject)
	require.NoError(t, err)

	payload := h.Payload(p, ScopeObject)
	require.Len(t, payload, 64)
	payload[0] = 0xAB

	require.NoError(t, h.Free(p, ScopeObject))
}

// Per-scope accounting balance: at teardown, every allocate has a
// matching free charged to the same scope and actual alloc bytes equal
// actual free bytes.
func TestHostAllocatorAccountingBalancesAtTeardown(t *testing.T) {
	h := NewHostAllocator(testMemContext(t))

	var ptrs []mem.Ptr
	sizes := []uint64{16, 64, 200, 8}
	for _, s := range sizes {
		p, err := h.Alloc(s, 8, ScopeObject)
		require.NoError(t, err)
		ptrs = append(ptrs, p)
	}
	cmd, err := h.Alloc(128, 8, ScopeCommand)
	require.NoError(t, err)

	require.NoError(t, h.Free(cmd, ScopeCommand))
	for _, p := range ptrs {
		require.NoError(t, h.Free(p, ScopeObject))
	}

	stats := h.Stats()
	for scope, s := range stats {
		require.Equal(t, s.AllocCount, s.FreeCount, "scope %d alloc/free count", scope)
		require.Equal(t, s.RequestedAllocBytes, s.RequestedFreeBytes, "scope %d requested bytes", scope)
		require.Equal(t, s.ActualAllocBytes, s.ActualFreeBytes, "scope %d actual bytes", scope)
	}
}

func TestHostAllocatorReallocKeepsScopeAndData(t *testing.T) {
	h := NewHostAllocator(testMemContext(t))

	p, err := h.Alloc(32, 8, ScopeObject)
	require.NoError(t, err)
	copy(h.Payload(p, ScopeObject), []byte("scope-check"))

	np, err := h.Realloc(p, 128, ScopeObject)
	require.NoError(t, err)
	require.Equal(t, "scope-check", string(h.Payload(np, ScopeObject)[:11]))

	require.Equal(t, uint64(1), h.Stats()[ScopeObject].ReallocCount)
	require.NoError(t, h.Free(np, ScopeObject))
}

func TestHostAllocatorFreeNullIsNoOp(t *testing.T) {
	h := NewHostAllocator(testMemContext(t))
	require.NoError(t, h.Free(mem.Null, ScopeObject))
	require.Zero(t, h.Stats()[ScopeObject].FreeCount)
}
