package sim

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cellCenter(ng *NavGrid, cx, cy int) Vec2 { return ng.CellToWorld(cx, cy) }

func pathCost(path []Vec2, cellSize float64) float64 {
	total := 0.0
	for i := 1; i < len(path); i++ {
		total += path[i].Dist(path[i-1]) / cellSize
	}
	return total
}

// dijkstra is the reference shortest 8-connected distance between cells.
func dijkstra(ng *NavGrid, sx, sy, gx, gy int) float64 {
	n := ng.Cols() * ng.Rows()
	dist := make([]float64, n)
	done := make([]bool, n)
	for i := range dist {
		dist[i] = math.Inf(1)
	}
	dist[sy*ng.Cols()+sx] = 0
	for {
		cur := -1
		for i := 0; i < n; i++ {
			if !done[i] && !math.IsInf(dist[i], 1) && (cur < 0 || dist[i] < dist[cur]) {
				cur = i
			}
		}
		if cur < 0 {
			return math.Inf(1)
		}
		cx, cy := cur%ng.Cols(), cur/ng.Cols()
		if cx == gx && cy == gy {
			return dist[cur]
		}
		done[cur] = true
		for _, d := range dirs {
			nx, ny := cx+d[0], cy+d[1]
			if ng.IsBlocked(nx, ny) {
				continue
			}
			ni := ny*ng.Cols() + nx
			if alt := dist[cur] + stepCost(d); alt < dist[ni] {
				dist[ni] = alt
			}
		}
	}
}

func TestFindPath_Straight(t *testing.T) {
	ng := NewNavGrid(20, 20, 32)
	path := FindPath(cellCenter(ng, 0, 0), cellCenter(ng, 5, 0), ng)
	require.Len(t, path, 6)
	for i, p := range path {
		assert.Equal(t, cellCenter(ng, i, 0), p)
	}
}

func TestFindPath_Diagonal(t *testing.T) {
	ng := NewNavGrid(20, 20, 32)
	path := FindPath(cellCenter(ng, 0, 0), cellCenter(ng, 4, 4), ng)
	require.Len(t, path, 5)
	assert.InDelta(t, 4*math.Sqrt2, pathCost(path, 32), 1e-9)
}

func TestFindPath_SameCellSingleWaypoint(t *testing.T) {
	ng := NewNavGrid(20, 20, 32)
	path := FindPath(V(40, 40), V(50, 60), ng)
	require.Len(t, path, 1)
	assert.Equal(t, cellCenter(ng, 1, 1), path[0])
}

func TestFindPath_OutOfBoundsIsEmpty(t *testing.T) {
	ng := NewNavGrid(10, 10, 32)
	assert.Empty(t, FindPath(V(16, 16), V(-5, 16), ng))
	assert.Empty(t, FindPath(V(-5, 16), V(16, 16), ng))
	assert.Empty(t, FindPath(V(16, 16), V(16, 320), ng))
}

func TestFindPath_BlockedGoalRedirectsToNearestNeighbour(t *testing.T) {
	ng := NewNavGrid(10, 10, 32)
	ng.Block(5, 5)
	path := FindPath(cellCenter(ng, 0, 5), cellCenter(ng, 5, 5), ng)
	require.NotEmpty(t, path)
	// (4,5) is 16 from the start cell in squared cells, (4,4) and (4,6) are 17.
	assert.Equal(t, cellCenter(ng, 4, 5), path[len(path)-1])
	for _, p := range path {
		cx, cy := ng.WorldToCell(p)
		assert.False(t, ng.IsBlocked(cx, cy), "waypoint (%d,%d) is blocked", cx, cy)
	}
}

func TestFindPath_EnclosedGoalIsEmpty(t *testing.T) {
	ng := NewNavGrid(10, 10, 32)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			ng.Block(5+dx, 5+dy)
		}
	}
	assert.Empty(t, FindPath(cellCenter(ng, 0, 0), cellCenter(ng, 5, 5), ng))
}

func TestFindPath_NoRouteIsEmpty(t *testing.T) {
	ng := NewNavGrid(10, 10, 32)
	for cy := 0; cy < 10; cy++ {
		ng.Block(5, cy)
	}
	assert.Empty(t, FindPath(cellCenter(ng, 1, 1), cellCenter(ng, 8, 8), ng))
}

func TestFindPath_RoutesAroundBuilding(t *testing.T) {
	ng := NewNavGrid(20, 20, 32)
	for cy := 0; cy < 15; cy++ {
		ng.Block(10, cy)
	}
	path := FindPath(cellCenter(ng, 5, 5), cellCenter(ng, 15, 5), ng)
	require.NotEmpty(t, path)
	passedGap := false
	for _, p := range path {
		cx, cy := ng.WorldToCell(p)
		require.False(t, ng.IsBlocked(cx, cy))
		if cx == 10 {
			passedGap = cy >= 15
		}
	}
	assert.True(t, passedGap, "path should cross column 10 through the gap")
}

func TestFindPath_OptimalAgainstDijkstra(t *testing.T) {
	rng := rand.New(rand.NewSource(42)) // #nosec G404 -- deterministic test grids
	for trial := 0; trial < 40; trial++ {
		ng := NewNavGrid(16, 16, 32)
		for i := 0; i < 70; i++ {
			ng.Block(rng.Intn(16), rng.Intn(16))
		}
		sx, sy := rng.Intn(16), rng.Intn(16)
		gx, gy := rng.Intn(16), rng.Intn(16)
		if ng.IsBlocked(sx, sy) || ng.IsBlocked(gx, gy) {
			continue
		}
		want := dijkstra(ng, sx, sy, gx, gy)
		path := FindPath(cellCenter(ng, sx, sy), cellCenter(ng, gx, gy), ng)
		if math.IsInf(want, 1) {
			assert.Empty(t, path, "trial %d: expected no path", trial)
			continue
		}
		require.NotEmpty(t, path, "trial %d: expected a path", trial)
		assert.Equal(t, cellCenter(ng, sx, sy), path[0])
		assert.Equal(t, cellCenter(ng, gx, gy), path[len(path)-1])
		for i := 1; i < len(path); i++ {
			step := path[i].Dist(path[i-1]) / 32
			assert.True(t, math.Abs(step-1) < 1e-9 || math.Abs(step-math.Sqrt2) < 1e-9,
				"trial %d: non-adjacent step %v → %v", trial, path[i-1], path[i])
		}
		assert.InDelta(t, want, pathCost(path, 32), 1e-6, "trial %d", trial)
	}
}

func TestPruneStart(t *testing.T) {
	path := []Vec2{V(16, 16), V(48, 16)}
	assert.Len(t, PruneStart(path, V(20, 16), 32), 1)
	assert.Len(t, PruneStart(path, V(0, 0), 32), 2, "23 units away is beyond half a cell")
	assert.Empty(t, PruneStart(nil, V(0, 0), 32))
}
