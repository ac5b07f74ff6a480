package game

import (
	"context"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/realmforge/internal/logging"
	"github.com/Garsondee/realmforge/internal/pkg/clock"
	"github.com/Garsondee/realmforge/internal/sim"
)

const (
	defaultWidth  = 1600
	defaultHeight = 900
)

// Config controls how a Game is built.
type Config struct {
	Rules   *sim.Rules
	Faction sim.FactionID
	Logger  logging.Logger
	Clock   clock.Clock
	Width   int // window width including the event panel
	Height  int
}

// Game is the ebiten front-end. It owns a World and only talks to it
// through commands, selection and read-only snapshots.
type Game struct {
	ctx   context.Context
	log   logging.Logger
	world *sim.World
	loop  *sim.Loop
	feed  *EventFeed
	hud   *hudText

	width  int
	height int
	viewW  int // playfield width; the event panel takes the rest

	cam    camera
	paused bool

	prevKeys   map[ebiten.Key]bool
	prevLeft   bool
	prevRight  bool
	dragging   bool
	dragStartX int
	dragStartY int

	mode      placement
	notice    string
	inspector Inspector
}

// New builds a game around a fresh world with the starting layout.
func New(cfg Config) (*Game, error) {
	if cfg.Rules == nil {
		cfg.Rules = sim.DefaultRules()
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Noop()
	}
	if cfg.Width <= 0 {
		cfg.Width = defaultWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = defaultHeight
	}

	opts := []sim.Option{
		sim.WithLogger(cfg.Logger),
		sim.WithSimLog(sim.NewSimLog(false)),
	}
	if cfg.Faction != "" {
		opts = append(opts, sim.WithPlayerFaction(sim.LocalPlayer, cfg.Faction))
	}
	w := sim.NewWorld(cfg.Rules, opts...)
	if err := populate(w); err != nil {
		return nil, err
	}

	g := &Game{
		ctx:      context.Background(),
		log:      cfg.Logger,
		world:    w,
		loop:     sim.NewWorldLoop(w, cfg.Clock),
		feed:     NewEventFeed(),
		hud:      newHUDText(),
		width:    cfg.Width,
		height:   cfg.Height,
		viewW:    cfg.Width - feedPanelWidth,
		prevKeys: make(map[ebiten.Key]bool),
	}
	g.cam = camera{X: 0, Y: 0, Zoom: 1}
	g.log.Info(g.ctx, "game started",
		logging.String("session", w.SessionID()),
		logging.String("faction", string(w.Faction(sim.LocalPlayer))))
	return g, nil
}

// World exposes the simulated world.
func (g *Game) World() *sim.World { return g.world }

// populate lays out the starting map: a local town with villagers and
// nearby resources, and a hostile outpost in the far corner.
func populate(w *sim.World) error {
	type unitSpawn struct {
		kind  sim.UnitKind
		owner sim.PlayerID
		x, y  float64
	}
	type buildingSpawn struct {
		kind  sim.BuildingKind
		owner sim.PlayerID
		x, y  float64
	}
	type nodeSpawn struct {
		kind sim.ResourceKind
		x, y float64
	}

	buildings := []buildingSpawn{
		{sim.TownCenter, sim.LocalPlayer, 320, 320},
		{sim.House, sim.LocalPlayer, 208, 208},
		{sim.Tower, 2, 1500, 1500},
		{sim.Barracks, 2, 1640, 1420},
	}
	units := []unitSpawn{
		{sim.Villager, sim.LocalPlayer, 250, 400},
		{sim.Villager, sim.LocalPlayer, 280, 410},
		{sim.Villager, sim.LocalPlayer, 310, 420},
		{sim.Swordsman, sim.LocalPlayer, 420, 260},
		{sim.Swordsman, 2, 1420, 1460},
		{sim.Swordsman, 2, 1450, 1420},
		{sim.Archer, 2, 1480, 1400},
	}
	nodes := []nodeSpawn{
		{sim.Wood, 560, 300},
		{sim.Wood, 600, 340},
		{sim.Gold, 300, 600},
		{sim.Stone, 560, 560},
		{sim.Food, 160, 640},
		{sim.Iron, 760, 760},
	}

	for _, b := range buildings {
		if _, err := w.AddBuilding(b.kind, b.owner, sim.V(b.x, b.y)); err != nil {
			return err
		}
	}
	for _, n := range nodes {
		if _, err := w.AddResourceNode(n.kind, sim.V(n.x, n.y), 0); err != nil {
			return err
		}
	}
	for _, u := range units {
		if _, err := w.SpawnUnit(u.kind, u.owner, sim.V(u.x, u.y)); err != nil {
			return err
		}
	}
	return nil
}

func (g *Game) Update() error {
	g.handleInput()
	if !g.paused {
		g.loop.Frame()
	}
	g.feed.Sync(g.world.SimLog())
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 12, G: 14, B: 12, A: 255})
	g.drawWorld(screen)
	g.drawHUD(screen)
	g.drawInspector(screen)
	g.feed.Draw(screen, g.hud, g.viewW, g.height)
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}

// notify shows msg in the HUD until the next notice.
func (g *Game) notify(msg string) {
	g.notice = msg
}

// commandFailed logs a rejected command and surfaces it in the HUD.
func (g *Game) commandFailed(command string, err error) {
	g.log.Debug(g.ctx, "command rejected", logging.String("command", command), logging.Err(err))
	g.notify(command + ": " + err.Error())
}
