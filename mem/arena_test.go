package mem

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFreeListPaddingAndAlignment(t *testing.T) {
	a, err := New(Config{Policy: FreeList, Size: 4096})
	require.NoError(t, err)

	p, err := a.Alloc(120, 64)
	require.NoError(t, err)
	require.Zero(t, a.Addr(p)%64)

	bs := a.BlockSize(p)
	require.GreaterOrEqual(t, bs, uint64(120)+headerSize)
	require.LessOrEqual(t, bs, uint64(120)+headerSize+63)

	require.NoError(t, a.Free(p))
	a.Reset()
	require.Zero(t, a.Used())
}

func TestFreeListCoalescing(t *testing.T) {
	a, err := New(Config{Policy: FreeList, Size: 4096})
	require.NoError(t, err)

	pa, err := a.Alloc(64, 8)
	require.NoError(t, err)
	pb, err := a.Alloc(64, 8)
	require.NoError(t, err)
	pc, err := a.Alloc(64, 8)
	require.NoError(t, err)

	// Occupy the remainder of the arena so the coalesced A+B+C node
	// cannot merge with a trailing free extent.
	tail := a.free[0].size
	_, err = a.Alloc(tail-headerSize, 8)
	require.NoError(t, err)
	require.Empty(t, a.free)

	baseA := pa.off - a.headerAt(pa.off-headerSize).alignPadding
	sizeC := a.BlockSize(pc)
	wantSize := (pc.off - a.headerAt(pc.off-headerSize).alignPadding + sizeC) - baseA

	require.NoError(t, a.Free(pb))
	require.NoError(t, a.Free(pa))
	require.NoError(t, a.Free(pc))

	require.Len(t, a.free, 1)
	require.Equal(t, baseA, a.free[0].off)
	require.Equal(t, wantSize, a.free[0].size)
}

func TestArenaResetAllowsFreshAllocation(t *testing.T) {
	a, err := New(Config{Policy: FreeList, Size: 256})
	require.NoError(t, err)

	_, err = a.Alloc(200, 8)
	require.NoError(t, err)
	a.Reset()
	require.Zero(t, a.Used())

	_, err = a.Alloc(200, 8)
	require.NoError(t, err)
}

func TestFreeListExactCapacityBoundary(t *testing.T) {
	a, err := New(Config{Policy: FreeList, Size: 256})
	require.NoError(t, err)

	// Consume the whole arena as one block (alignment 8, no header
	// overhead beyond the allocator's own accounting for that block).
	_, err = a.Alloc(256-headerSize, 8)
	require.NoError(t, err)

	_, err = a.Alloc(1, 8)
	require.Error(t, err)
}

func TestPoolAcquireReleaseBoundary(t *testing.T) {
	a, err := New(Config{Policy: Pool, Size: 32, ChunkSize: 8})
	require.NoError(t, err)

	var got []Ptr
	for i := 0; i < 4; i++ {
		p, err := a.Alloc(0, 0)
		require.NoError(t, err)
		got = append(got, p)
	}
	_, err = a.Alloc(0, 0)
	require.Error(t, err)

	require.NoError(t, a.Free(got[0]))
	p, err := a.Alloc(0, 0)
	require.NoError(t, err)
	require.Equal(t, got[0], p)
}

func TestStackLIFOOrder(t *testing.T) {
	a, err := New(Config{Policy: Stack, Size: 256})
	require.NoError(t, err)

	p1, err := a.Alloc(16, 8)
	require.NoError(t, err)
	p2, err := a.Alloc(16, 8)
	require.NoError(t, err)

	err = a.Free(p1)
	require.Error(t, err, "freeing out of LIFO order must be rejected")

	require.NoError(t, a.Free(p2))
	require.NoError(t, a.Free(p1))
}

func TestLinearNeverReleasesIndividually(t *testing.T) {
	a, err := New(Config{Policy: Linear, Size: 256})
	require.NoError(t, err)

	p, err := a.Alloc(32, 8)
	require.NoError(t, err)
	used := a.Used()

	require.NoError(t, a.Free(p))
	require.Equal(t, used, a.Used())

	a.Reset()
	require.Zero(t, a.Used())
}

func TestUpstreamArena(t *testing.T) {
	upstream, err := New(Config{Policy: FreeList, Size: 4096})
	require.NoError(t, err)

	child, err := New(Config{Policy: Linear, Size: 1024, Upstream: upstream})
	require.NoError(t, err)

	_, err = child.Alloc(64, 8)
	require.NoError(t, err)
	require.Greater(t, upstream.Used(), uint64(0))
}

func TestPoisonFreedClearsReleasedBlocks(t *testing.T) {
	PoisonFreed = true
	defer func() { PoisonFreed = false }()

	a, err := New(Config{Policy: FreeList, Size: 4096})
	require.NoError(t, err)

	p, err := a.Alloc(32, 8)
	require.NoError(t, err)
	payload := a.Bytes(p, 32)
	copy(payload, []byte("live data"))

	require.NoError(t, a.Free(p))
	for i := range payload {
		require.Equal(t, byte(0xDD), payload[i])
	}
}

func TestUpstreamArenaAlignmentIsAbsolute(t *testing.T) {
	upstream, err := New(Config{Policy: FreeList, Size: 1 << 16})
	require.NoError(t, err)

	// The child's buffer is a sub-slice of the upstream buffer, so its
	// start is 16-aligned at best; an alignment request above that must
	// still hold against the absolute address.
	child, err := New(Config{Policy: FreeList, Size: 1 << 14, Upstream: upstream})
	require.NoError(t, err)

	p, err := child.Alloc(100, 64)
	require.NoError(t, err)
	require.Zero(t, child.Addr(p)%64)
}

func TestTerminateReleasesBufferToUpstream(t *testing.T) {
	upstream, err := New(Config{Policy: FreeList, Size: 4096})
	require.NoError(t, err)

	child, err := New(Config{Policy: Linear, Size: 1024, Upstream: upstream})
	require.NoError(t, err)
	require.Greater(t, upstream.Used(), uint64(0))

	child.Terminate()
	require.Zero(t, upstream.Used())
}
