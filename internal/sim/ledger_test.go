package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResources_CoversAndShortfall(t *testing.T) {
	have := Resources{Gold: 250, Wood: 200, Stone: 100}
	cost := Resources{Gold: 300, Wood: 200, Stone: 100}

	assert.False(t, have.Covers(cost))
	assert.Equal(t, Resources{Gold: 50}, have.Shortfall(cost))
	assert.True(t, have.Covers(Resources{Gold: 250}))
	assert.True(t, have.Covers(Resources{}))
}

func TestResources_Arithmetic(t *testing.T) {
	r := Resources{Gold: 10}.Add(Wood, 5).Add(ResourceNone, 99)
	assert.Equal(t, Resources{Gold: 10, Wood: 5}, r)
	assert.Equal(t, Resources{Gold: 30, Wood: 15}, r.Times(3))
	assert.Equal(t, r, r.Plus(r).Minus(r))
	assert.Equal(t, 5, r.Get(Wood))
	assert.Equal(t, "gold=10 wood=5", r.String())
	assert.Equal(t, "none", Resources{}.String())
	assert.True(t, Resources{}.IsZero())
}

func TestParseResourceKind(t *testing.T) {
	k, ok := ParseResourceKind("stone")
	assert.True(t, ok)
	assert.Equal(t, Stone, k)
	_, ok = ParseResourceKind("mana")
	assert.False(t, ok)
}

func TestWallSegments(t *testing.T) {
	assert.Equal(t, 1, WallSegments(0, 32))
	assert.Equal(t, 1, WallSegments(32, 32))
	assert.Equal(t, 2, WallSegments(33, 32))
	assert.Equal(t, 4, WallSegments(128, 32))
}
