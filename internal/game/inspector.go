package game

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/realmforge/internal/sim"
)

const (
	inspWidth = 300
	inspPad   = 6
	inspLineH = 15
)

// Inspector holds the view toggle of the selection panel.
type Inspector struct {
	rawView bool // false = curated, true = raw field dump
}

// inspectorLines describes e for the selection panel.
func inspectorLines(w *sim.World, e sim.Entity, raw bool) []string {
	b := e.Core()
	lines := []string{fmt.Sprintf("%s %s  owner %d", sim.Label(e), entityName(e), b.Owner)}
	if raw {
		lines = append(lines,
			fmt.Sprintf("id %s", b.ID),
			fmt.Sprintf("pos (%.1f, %.1f) size %.0f", b.Pos.X, b.Pos.Y, b.Size),
			fmt.Sprintf("health %.2f/%.2f flash %.2f", b.Health, b.MaxHealth, b.HitFlash))
	} else if b.MaxHealth > 0 {
		lines = append(lines, fmt.Sprintf("hp %.0f/%.0f", b.Health, b.MaxHealth))
	}

	switch v := e.(type) {
	case *sim.Unit:
		lines = append(lines, "state "+v.State.String())
		if v.Carried > 0 {
			lines = append(lines, fmt.Sprintf("carrying %d %s", v.Carried, v.CarriedKind))
		}
		s := v.Stats
		lines = append(lines, fmt.Sprintf("atk %.0f rng %.0f arm %.0f spd %.0f", s.Attack, s.Range, s.Armor, s.Speed))
		if raw {
			lines = append(lines,
				fmt.Sprintf("target %s point %v (%.0f, %.0f)", v.Target, v.HasPoint, v.TargetPoint.X, v.TargetPoint.Y),
				fmt.Sprintf("path %d waypoints", len(v.Path)),
				fmt.Sprintf("timers gather %.2f attack %.2f", v.GatherTimer, v.AttackTimer))
		}
	case *sim.Building:
		if st, err := w.QueueStatus(v.ID); err == nil && len(st.Items) > 0 {
			lines = append(lines, fmt.Sprintf("training %s  %.1fs left", st.Items[0], st.Remaining))
			for i, k := range st.Items[1:] {
				lines = append(lines, fmt.Sprintf("  %d. %s", i+2, k))
			}
		}
		if v.HasRally {
			lines = append(lines, fmt.Sprintf("rally (%.0f, %.0f)", v.Rally.X, v.Rally.Y))
		}
		if raw && v.IsWall() {
			lines = append(lines, fmt.Sprintf("wall length %.1f angle %.2f", v.Length, v.Angle))
		}
	case *sim.ResourceNode:
		lines = append(lines, fmt.Sprintf("%s remaining %d", v.Resource, v.Amount))
	}
	return lines
}

func entityName(e sim.Entity) string {
	switch v := e.(type) {
	case *sim.Unit:
		return string(v.UnitKind)
	case *sim.Building:
		return string(v.BuildingKind)
	case *sim.ResourceNode:
		return v.Resource.String()
	default:
		return e.Kind().String()
	}
}

// drawInspector renders the first selected entity in the bottom-left
// corner of the playfield.
func (g *Game) drawInspector(screen *ebiten.Image) {
	sel := g.world.Selection()
	if len(sel) == 0 {
		return
	}
	e, ok := g.world.FindEntity(sel[0])
	if !ok {
		return
	}
	lines := inspectorLines(g.world, e, g.inspector.rawView)
	if len(sel) > 1 {
		lines = append(lines, fmt.Sprintf("+%d more selected", len(sel)-1))
	}

	h := float32(len(lines)*inspLineH + 2*inspPad + inspLineH)
	x := float32(8)
	y := float32(g.height) - h - 8
	panelBorder := color.RGBA{R: 55, G: 80, B: 55, A: 255}
	vector.FillRect(screen, x, y, inspWidth, h, color.RGBA{R: 14, G: 16, B: 14, A: 230}, false)
	vector.StrokeRect(screen, x, y, inspWidth, h, 1.0, panelBorder, false)

	viewName := "curated"
	if g.inspector.rawView {
		viewName = "raw"
	}
	ly := int(y) + inspPad
	g.hud.Draw(screen, fmt.Sprintf("view: %s  [I] toggle", viewName), int(x)+inspPad, ly, color.RGBA{R: 130, G: 150, B: 130, A: 255})
	ly += inspLineH
	for _, l := range lines {
		g.hud.Draw(screen, l, int(x)+inspPad, ly, color.White)
		ly += inspLineH
	}
}
