package sim

import (
	"container/heap"
	"math"
)

type pathNode struct {
	cx, cy int
	g, h   float64
	seq    int
	parent *pathNode
	index  int // heap index
}

func (n *pathNode) f() float64 { return n.g + n.h }

// openList orders by f, then by h so nodes nearer the goal win ties, then
// by insertion so equal candidates expand in the order they were found.
type openList []*pathNode

func (ol openList) Len() int { return len(ol) }
func (ol openList) Less(i, j int) bool {
	fi, fj := ol[i].f(), ol[j].f()
	if fi != fj {
		return fi < fj
	}
	if ol[i].h != ol[j].h {
		return ol[i].h < ol[j].h
	}
	return ol[i].seq < ol[j].seq
}
func (ol openList) Swap(i, j int)       { ol[i], ol[j] = ol[j], ol[i]; ol[i].index = i; ol[j].index = j }
func (ol *openList) Push(x interface{}) { n := x.(*pathNode); n.index = len(*ol); *ol = append(*ol, n) }
func (ol *openList) Pop() interface{} {
	old := *ol
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*ol = old[:len(old)-1]
	return n
}

var dirs = [8][2]int{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

func stepCost(d [2]int) float64 {
	if d[0] != 0 && d[1] != 0 {
		return math.Sqrt2
	}
	return 1
}

// FindPath returns the cell centres of a shortest 8-connected route from
// the cell containing start to the cell containing end, both included.
// A blocked end cell is replaced by its free neighbour closest to the
// start cell. The result is empty when either endpoint lies outside the
// grid or no route exists. The start cell itself may be blocked.
func FindPath(start, end Vec2, grid *NavGrid) []Vec2 {
	scx, scy := grid.WorldToCell(start)
	gcx, gcy := grid.WorldToCell(end)
	if !grid.InBounds(scx, scy) || !grid.InBounds(gcx, gcy) {
		return nil
	}
	if grid.IsBlocked(gcx, gcy) {
		var ok bool
		gcx, gcy, ok = nearestOpenNeighbour(grid, gcx, gcy, scx, scy)
		if !ok {
			return nil
		}
	}

	key := func(cx, cy int) int { return cy*grid.cols + cx }
	heuristic := func(cx, cy int) float64 {
		return math.Hypot(float64(cx-gcx), float64(cy-gcy))
	}

	seq := 0
	start0 := &pathNode{cx: scx, cy: scy, h: heuristic(scx, scy)}
	ol := &openList{start0}
	heap.Init(ol)

	closed := make([]bool, grid.cols*grid.rows)
	best := make(map[int]float64)
	best[key(scx, scy)] = 0

	for ol.Len() > 0 {
		cur := heap.Pop(ol).(*pathNode)
		if cur.cx == gcx && cur.cy == gcy {
			return buildPath(cur, grid)
		}
		k := key(cur.cx, cur.cy)
		if closed[k] {
			continue
		}
		closed[k] = true

		for _, d := range dirs {
			nx, ny := cur.cx+d[0], cur.cy+d[1]
			if grid.IsBlocked(nx, ny) {
				continue
			}
			nk := key(nx, ny)
			if closed[nk] {
				continue
			}
			g := cur.g + stepCost(d)
			if prev, seen := best[nk]; seen && g >= prev {
				continue
			}
			best[nk] = g
			seq++
			heap.Push(ol, &pathNode{cx: nx, cy: ny, g: g, h: heuristic(nx, ny), seq: seq, parent: cur})
		}
	}
	return nil
}

// nearestOpenNeighbour picks the unblocked 8-neighbour of (cx, cy) with the
// smallest squared distance to (sx, sy). The first in dirs order wins ties.
func nearestOpenNeighbour(grid *NavGrid, cx, cy, sx, sy int) (int, int, bool) {
	bestD := math.MaxInt
	bx, by := 0, 0
	for _, d := range dirs {
		nx, ny := cx+d[0], cy+d[1]
		if grid.IsBlocked(nx, ny) {
			continue
		}
		dx, dy := nx-sx, ny-sy
		if dist := dx*dx + dy*dy; dist < bestD {
			bestD, bx, by = dist, nx, ny
		}
	}
	return bx, by, bestD != math.MaxInt
}

func buildPath(end *pathNode, grid *NavGrid) []Vec2 {
	var path []Vec2
	for n := end; n != nil; n = n.parent {
		path = append(path, grid.CellToWorld(n.cx, n.cy))
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// PruneStart drops the first waypoint when from already lies within half
// a cell of it, so movers do not step back to their own cell centre.
func PruneStart(path []Vec2, from Vec2, cellSize float64) []Vec2 {
	if len(path) > 0 && from.Dist(path[0]) < cellSize/2 {
		return path[1:]
	}
	return path
}
