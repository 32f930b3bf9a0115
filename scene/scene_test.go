package scene

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegionAddGetRemoveEntity(t *testing.T) {
	r := NewRegion()
	e := r.AddEntity("player")
	require.Equal(t, "player", e.Name)

	got, ok := r.GetEntity(e.ID)
	require.True(t, ok)
	require.Equal(t, e, got)

	r.Transforms.Add(e.ID, NewTransform())
	require.True(t, r.Transforms.Has(e.ID))

	require.True(t, r.RemoveEntity(e.ID))
	_, ok = r.GetEntity(e.ID)
	require.False(t, ok)
	require.False(t, r.Transforms.Has(e.ID))
}

func TestTableSwapRemoveKeepsOtherEntriesReachable(t *testing.T) {
	tbl := NewTable[int]()
	tbl.Add(1, 10)
	tbl.Add(2, 20)
	tbl.Add(3, 30)

	require.True(t, tbl.Remove(1))
	require.Equal(t, 2, tbl.Len())
	require.Equal(t, 20, *tbl.Get(2))
	require.Equal(t, 30, *tbl.Get(3))
}

func TestTransformRecompute(t *testing.T) {
	tr := NewTransform()
	tr.WorldPos[0] = 5
	tr.Recompute()
	require.False(t, tr.Dirty)
	require.Equal(t, float32(5), tr.Cached.Col(3)[0])
}
