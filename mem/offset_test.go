package mem

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOffsetAllocatorFirstFit(t *testing.T) {
	o := NewOffsetAllocator(1024)

	a, err := o.Alloc(256)
	require.NoError(t, err)
	require.Equal(t, uint64(0), a)

	b, err := o.Alloc(256)
	require.NoError(t, err)
	require.Equal(t, uint64(256), b)

	o.Free(a, 256)
	c, err := o.Alloc(128)
	require.NoError(t, err)
	require.Equal(t, uint64(0), c, "freed range must be reused first-fit")
}

func TestOffsetAllocatorCoalescesNeighbors(t *testing.T) {
	o := NewOffsetAllocator(768)

	a, _ := o.Alloc(256)
	b, _ := o.Alloc(256)
	c, _ := o.Alloc(256)

	_, err := o.Alloc(1)
	require.Error(t, err)

	o.Free(b, 256)
	o.Free(a, 256)
	o.Free(c, 256)

	got, err := o.Alloc(768)
	require.NoError(t, err)
	require.Equal(t, uint64(0), got, "all three ranges must coalesce into one spanning extent")
}

func TestOffsetAllocatorExhaustion(t *testing.T) {
	o := NewOffsetAllocator(64)
	_, err := o.Alloc(64)
	require.NoError(t, err)
	_, err = o.Alloc(1)
	require.Error(t, err)
}
