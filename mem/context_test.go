package mem

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testSizes() InitSizes {
	return InitSizes{FreeListSize: 1 << 20, StackSize: 1 << 16, FrameLinear: 1 << 16}
}

func TestContextWellKnownArenaPolicies(t *testing.T) {
	ctx, err := NewContext(testSizes())
	require.NoError(t, err)

	require.Equal(t, FreeList, ctx.Persistent().PolicyTag())
	require.Equal(t, Stack, ctx.Scratch().PolicyTag())
	require.Equal(t, Linear, ctx.Frame().PolicyTag())
}

func TestContextSetAssertsPolicy(t *testing.T) {
	ctx, err := NewContext(testSizes())
	require.NoError(t, err)

	wrong, err := New(Config{Policy: Linear, Size: 1 << 12})
	require.NoError(t, err)

	require.Panics(t, func() { ctx.SetPersistent(wrong) })

	right, err := New(Config{Policy: FreeList, Size: 1 << 12})
	require.NoError(t, err)
	ctx.SetPersistent(right)
	require.Same(t, right, ctx.Persistent())
}

func TestContextResetFrame(t *testing.T) {
	ctx, err := NewContext(testSizes())
	require.NoError(t, err)

	_, err = ctx.Frame().Alloc(128, 8)
	require.NoError(t, err)
	require.Greater(t, ctx.Frame().Used(), uint64(0))

	ctx.ResetFrame()
	require.Zero(t, ctx.Frame().Used())
}
