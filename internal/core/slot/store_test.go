package slot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyEncoding(t *testing.T) {
	k := NewKey(7, 3)
	assert.Equal(t, uint32(7), k.Index())
	assert.Equal(t, uint32(3), k.Generation())
	assert.False(t, k.IsZero())
	assert.True(t, Key(0).IsZero())
}

func TestInsertGet(t *testing.T) {
	s := NewStore[string]()
	a := s.Insert("a")
	b := s.Insert("b")
	require.NotEqual(t, a, b)

	v, ok := s.Get(a)
	require.True(t, ok)
	assert.Equal(t, "a", v)
	assert.Equal(t, 2, s.Len())
	assert.False(t, a.IsZero())
}

func TestReserveIsEmptyUntilReplace(t *testing.T) {
	s := NewStore[int]()
	k := s.Reserve()
	assert.True(t, s.Contains(k))
	assert.True(t, s.CheckedOut(k))

	_, err := s.Take(k)
	assert.ErrorIs(t, err, ErrCheckedOut)

	require.NoError(t, s.Replace(k, 42))
	v, ok := s.Get(k)
	require.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestTakeReplace(t *testing.T) {
	s := NewStore[int]()
	k := s.Insert(1)

	v, err := s.Take(k)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.True(t, s.CheckedOut(k))

	_, err = s.Take(k)
	assert.ErrorIs(t, err, ErrCheckedOut)

	require.NoError(t, s.Replace(k, v+1))
	assert.ErrorIs(t, s.Replace(k, 5), ErrOccupied)

	v, ok := s.Get(k)
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestRemoveInvalidatesStaleKeys(t *testing.T) {
	s := NewStore[string]()
	old := s.Insert("old")

	v, had := s.Remove(old)
	assert.True(t, had)
	assert.Equal(t, "old", v)
	assert.False(t, s.Contains(old))
	assert.Equal(t, 0, s.Len())

	reused := s.Insert("new")
	assert.Equal(t, old.Index(), reused.Index(), "index should come from the free list")
	assert.NotEqual(t, old, reused)

	_, ok := s.Get(old)
	assert.False(t, ok)
	_, err := s.Take(old)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Replace(old, "x"), ErrNotFound)

	_, had = s.Remove(old)
	assert.False(t, had)
}

func TestRemoveWhileCheckedOut(t *testing.T) {
	s := NewStore[int]()
	k := s.Insert(9)
	_, err := s.Take(k)
	require.NoError(t, err)

	_, had := s.Remove(k)
	assert.False(t, had)
	assert.ErrorIs(t, s.Replace(k, 9), ErrNotFound)
}

func TestEachSkipsCheckedOut(t *testing.T) {
	s := NewStore[int]()
	a := s.Insert(1)
	s.Insert(2)
	_, err := s.Take(a)
	require.NoError(t, err)

	var seen []int
	s.Each(func(_ Key, v int) { seen = append(seen, v) })
	assert.Equal(t, []int{2}, seen)
}
