package sim

import "testing"

func TestNavGrid_UnblockedByDefault(t *testing.T) {
	ng := NewNavGrid(60, 60, 32)
	if ng.IsBlocked(0, 0) {
		t.Fatal("empty grid should have no blocked cells")
	}
	if ng.IsBlocked(ng.Cols()-1, ng.Rows()-1) {
		t.Fatal("corner cell should not be blocked")
	}
	if n := ng.BlockedCount(); n != 0 {
		t.Fatalf("expected 0 blocked cells, got %d", n)
	}
}

func TestNavGrid_BuildingBlocksFootprint(t *testing.T) {
	// 64×64 centred on (400,250): x 368..432, y 218..282 → cells 11..13 × 6..8.
	b := &Building{Base: Base{Pos: V(400, 250), Size: 64}}
	ng := BuildNavGrid(60, 60, 32, []*Building{b})
	for cy := 6; cy <= 8; cy++ {
		for cx := 11; cx <= 13; cx++ {
			if !ng.IsBlocked(cx, cy) {
				t.Fatalf("cell (%d,%d) inside the footprint should be blocked", cx, cy)
			}
		}
	}
	if n := ng.BlockedCount(); n != 9 {
		t.Fatalf("expected 9 blocked cells, got %d", n)
	}
	if ng.IsBlocked(10, 7) || ng.IsBlocked(14, 7) || ng.IsBlocked(12, 5) || ng.IsBlocked(12, 9) {
		t.Fatal("cells around the footprint should stay open")
	}
}

func TestNavGrid_EdgeAlignedBuildingStaysInItsCell(t *testing.T) {
	// x 32..64, y 32..64 covers exactly cell (1,1).
	b := &Building{Base: Base{Pos: V(48, 48), Size: 32}}
	ng := BuildNavGrid(10, 10, 32, []*Building{b})
	if !ng.IsBlocked(1, 1) {
		t.Fatal("cell (1,1) should be blocked")
	}
	if n := ng.BlockedCount(); n != 1 {
		t.Fatalf("expected 1 blocked cell, got %d", n)
	}
}

func TestNavGrid_BuildingClippedAtWorldEdge(t *testing.T) {
	b := &Building{Base: Base{Pos: V(0, 0), Size: 64}}
	ng := BuildNavGrid(10, 10, 32, []*Building{b})
	if !ng.IsBlocked(0, 0) {
		t.Fatal("cell (0,0) should be blocked")
	}
	if n := ng.BlockedCount(); n != 1 {
		t.Fatalf("expected only the in-bounds cell blocked, got %d", n)
	}
}

func TestNavGrid_HorizontalWallRasterised(t *testing.T) {
	// Segment from (100,100) to (228,100) crosses cells x=3..7 on row 3.
	w := &Building{Base: Base{Pos: V(164, 100), Size: 16}, Length: 128}
	ng := BuildNavGrid(20, 20, 32, []*Building{w})
	for cx := 3; cx <= 7; cx++ {
		if !ng.IsBlocked(cx, 3) {
			t.Fatalf("cell (%d,3) under the wall should be blocked", cx)
		}
	}
	if ng.IsBlocked(2, 3) || ng.IsBlocked(8, 3) {
		t.Fatal("cells beyond the wall ends should stay open")
	}
	if n := ng.BlockedCount(); n != 5 {
		t.Fatalf("expected 5 blocked cells, got %d", n)
	}
}

func TestNavGrid_DiagonalWallBlocksBothEnds(t *testing.T) {
	from, to := V(40, 40), V(300, 300)
	d := to.Sub(from)
	w := &Building{
		Base:   Base{Pos: from.Add(to).Scale(0.5), Size: 16},
		Length: d.Len(),
		Angle:  0.7853981633974483,
	}
	ng := BuildNavGrid(20, 20, 32, []*Building{w})
	if !ng.IsBlocked(ng.WorldToCell(from)) {
		t.Fatal("start cell of diagonal wall should be blocked")
	}
	if !ng.IsBlocked(ng.WorldToCell(to)) {
		t.Fatal("end cell of diagonal wall should be blocked")
	}
	if !ng.IsBlocked(ng.WorldToCell(w.Pos)) {
		t.Fatal("centre cell of diagonal wall should be blocked")
	}
}

func TestNavGrid_OOB_IsBlocked(t *testing.T) {
	ng := NewNavGrid(10, 10, 32)
	if !ng.IsBlocked(-1, 0) || !ng.IsBlocked(0, -1) || !ng.IsBlocked(10, 0) || !ng.IsBlocked(0, 10) {
		t.Fatal("out-of-bounds cells should be blocked")
	}
}

func TestWorldToCell_FloorsNegative(t *testing.T) {
	ng := NewNavGrid(10, 10, 32)
	cx, cy := ng.WorldToCell(V(-1, 40))
	if cx != -1 || cy != 1 {
		t.Fatalf("expected (-1,1) got (%d,%d)", cx, cy)
	}
}

func TestCellToWorld(t *testing.T) {
	ng := NewNavGrid(10, 10, 32)
	p := ng.CellToWorld(2, 3)
	if p.X != 80 || p.Y != 112 {
		t.Fatalf("expected (80,112) got (%.0f,%.0f)", p.X, p.Y)
	}
}

func TestWorldGrid_UnitsAndNodesNeverBlock(t *testing.T) {
	ts := NewTestSim(
		WithUnit("v", Villager, LocalPlayer, 100, 100),
		WithResource("gold", Gold, 300, 300, 0),
	)
	ts.RunTicks(1)
	if n := ts.World.Grid().BlockedCount(); n != 0 {
		t.Fatalf("units and resource nodes should not block, got %d blocked cells", n)
	}
}
