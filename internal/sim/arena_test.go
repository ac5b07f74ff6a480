package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNode(amount int) *ResourceNode {
	return &ResourceNode{Base: Base{Health: 1, MaxHealth: 1}, Resource: Gold, Amount: amount}
}

func TestArena_InsertAssignsDistinctIDs(t *testing.T) {
	a := NewArena()
	n1, n2 := newNode(1), newNode(2)
	id1 := a.Insert(n1)
	id2 := a.Insert(n2)

	assert.NotZero(t, id1)
	assert.NotEqual(t, id1, id2)
	assert.Equal(t, id1, n1.ID)
	got, ok := a.Get(id2)
	require.True(t, ok)
	assert.Same(t, n2, got)
	assert.Equal(t, 2, a.Len())
}

func TestArena_RemovedIDNeverResolves(t *testing.T) {
	a := NewArena()
	id := a.Insert(newNode(1))
	require.True(t, a.Remove(id))
	assert.False(t, a.Remove(id), "second remove is a no-op")

	_, ok := a.Get(id)
	assert.False(t, ok)

	a.Compact()
	reused := a.Insert(newNode(2))
	assert.Equal(t, id.slot(), reused.slot(), "slot is recycled after compaction")
	assert.NotEqual(t, id, reused)
	_, ok = a.Get(id)
	assert.False(t, ok, "stale ID must not resolve to the new occupant")
}

func TestArena_SlotNotReusedBeforeCompact(t *testing.T) {
	a := NewArena()
	id := a.Insert(newNode(1))
	a.Remove(id)
	next := a.Insert(newNode(2))
	assert.NotEqual(t, id.slot(), next.slot())
}

func TestArena_EachSkipsEntitiesInsertedDuringWalk(t *testing.T) {
	a := NewArena()
	a.Insert(newNode(1))
	a.Insert(newNode(2))

	var seen []int
	a.Each(func(e Entity) {
		seen = append(seen, e.(*ResourceNode).Amount)
		a.Insert(newNode(99))
	})
	assert.Equal(t, []int{1, 2}, seen)
	assert.Equal(t, 4, a.Len())
}

func TestArena_EachKeepsInsertionOrderAcrossCompaction(t *testing.T) {
	a := NewArena()
	ids := make([]EntityID, 0, 4)
	for i := 1; i <= 4; i++ {
		ids = append(ids, a.Insert(newNode(i)))
	}
	a.Remove(ids[1])
	a.Compact()

	var seen []int
	a.Each(func(e Entity) { seen = append(seen, e.(*ResourceNode).Amount) })
	assert.Equal(t, []int{1, 3, 4}, seen)
}

func TestArena_GetZeroID(t *testing.T) {
	a := NewArena()
	_, ok := a.Get(0)
	assert.False(t, ok)
}
