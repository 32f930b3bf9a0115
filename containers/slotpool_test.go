package containers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlotPoolReuseIncrementsGeneration(t *testing.T) {
	p := NewSlotPool[string](4)

	a := p.Acquire("a")
	b := p.Acquire("b")
	require.True(t, p.Release(a))
	c := p.Acquire("c")

	require.Equal(t, a.Index(), c.Index())
	require.Equal(t, a.Generation()+1, c.Generation())

	_, ok := p.Get(a)
	require.False(t, ok)

	v, ok := p.Get(c)
	require.True(t, ok)
	require.Equal(t, "c", v)

	v, ok = p.Get(b)
	require.True(t, ok)
	require.Equal(t, "b", v)
}

func TestSlotPoolStaleGetIsIdempotent(t *testing.T) {
	p := NewSlotPool[int](2)
	h := p.Acquire(1)
	p.Release(h)

	_, ok1 := p.Get(h)
	_, ok2 := p.Get(h)
	require.False(t, ok1)
	require.False(t, ok2)
}

func TestHandleZeroIsInvalid(t *testing.T) {
	var h Handle
	require.False(t, h.Valid())
}
