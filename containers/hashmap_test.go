package containers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func identityHash(k uint64) uint64 { return k }
func u64Eq(a, b uint64) bool       { return a == b }

func TestHashMapSetGetDelete(t *testing.T) {
	m := NewHashMap[uint64, string](identityHash, u64Eq, 8, 2)

	m.Set(1, "one")
	m.Set(2, "two")
	m.Set(1, "uno")

	v, ok := m.Get(1)
	require.True(t, ok)
	require.Equal(t, "uno", v)
	require.Equal(t, 2, m.Len())

	require.True(t, m.Delete(1))
	require.False(t, m.Delete(1))
	_, ok = m.Get(1)
	require.False(t, ok)
	require.Equal(t, 1, m.Len())
}

// Collide every key into the same ideal slot so the robin-hood probe
// chain and backward-shift deletion both get exercised.
func TestHashMapCollisionChainSurvivesDeletion(t *testing.T) {
	m := NewHashMap[uint64, int](func(uint64) uint64 { return 0 }, u64Eq, 64, 2)

	for i := uint64(0); i < 12; i++ {
		m.Set(i, int(i)*10)
	}
	require.True(t, m.Delete(3))
	require.True(t, m.Delete(7))

	for i := uint64(0); i < 12; i++ {
		v, ok := m.Get(i)
		if i == 3 || i == 7 {
			require.False(t, ok, "deleted key %d must be gone", i)
			continue
		}
		require.True(t, ok, "key %d must survive its neighbors' deletion", i)
		require.Equal(t, int(i)*10, v)
	}
}

func TestHashMapGrowsPastLoadFactor(t *testing.T) {
	m := NewHashMap[uint64, uint64](identityHash, u64Eq, 8, 2)

	const n = 200
	for i := uint64(0); i < n; i++ {
		m.Set(i, i*i)
	}
	require.Equal(t, n, m.Len())
	for i := uint64(0); i < n; i++ {
		v, ok := m.Get(i)
		require.True(t, ok)
		require.Equal(t, i*i, v)
	}
}

func TestHashMapShrinksWhenNearlyEmpty(t *testing.T) {
	m := NewHashMap[uint64, int](identityHash, u64Eq, 8, 2)

	for i := uint64(0); i < 100; i++ {
		m.Set(i, 1)
	}
	grown := len(m.slots)
	for i := uint64(0); i < 98; i++ {
		m.Delete(i)
	}
	require.Less(t, len(m.slots), grown)

	v, ok := m.Get(98)
	require.True(t, ok)
	require.Equal(t, 1, v)
}
