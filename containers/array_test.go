package containers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArrayPushSwapRemove(t *testing.T) {
	a := NewArray[int](nil, nil, 4)
	a.Push(10)
	a.Push(20)
	a.Push(30)

	a.SwapRemove(0)
	require.Equal(t, 2, a.Len())
	require.Equal(t, 30, a.At(0))
	require.Equal(t, 20, a.At(1))
}

func TestArrayShrinkToFit(t *testing.T) {
	a := NewArray[int](nil, nil, 0)
	for i := 0; i < 100; i++ {
		a.Push(i)
	}
	a.SwapRemove(99)
	a.ShrinkToFit()

	require.Equal(t, 99, a.Len())
	require.Equal(t, a.Len(), cap(a.Slice()))
	for i := 0; i < 99; i++ {
		require.Equal(t, i, a.At(i))
	}
}
