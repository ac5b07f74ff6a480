package game

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/realmforge/internal/sim"
)

const (
	feedPanelWidth = 320
	feedMaxEntries = 60
	feedLineHeight = 14
)

// FeedEntry is a single line in the event feed.
type FeedEntry struct {
	Tick    int
	Label   string // e.g. "U3", "B1"
	Owner   sim.PlayerID
	Message string
}

// EventFeed is a ring buffer of recent world events rendered on-screen.
type EventFeed struct {
	entries []FeedEntry
	head    int
	count   int
	synced  int // SimLog entries already consumed
}

// NewEventFeed creates an event feed with a fixed capacity.
func NewEventFeed() *EventFeed {
	return &EventFeed{
		entries: make([]FeedEntry, feedMaxEntries),
	}
}

// Add appends an entry, overwriting the oldest once full.
func (f *EventFeed) Add(tick int, label string, owner sim.PlayerID, msg string) {
	f.entries[f.head] = FeedEntry{
		Tick:    tick,
		Label:   label,
		Owner:   owner,
		Message: msg,
	}
	f.head = (f.head + 1) % feedMaxEntries
	if f.count < feedMaxEntries {
		f.count++
	}
}

// Recent returns entries in chronological order (oldest first).
func (f *EventFeed) Recent() []FeedEntry {
	result := make([]FeedEntry, f.count)
	for i := 0; i < f.count; i++ {
		idx := (f.head - f.count + i + feedMaxEntries) % feedMaxEntries
		result[i] = f.entries[idx]
	}
	return result
}

// Sync copies the SimLog entries recorded since the last call into the
// feed and returns how many were added. Movement and per-trip harvest
// entries are skipped; failed path requests are kept.
func (f *EventFeed) Sync(sl *sim.SimLog) int {
	added := 0
	for _, e := range sl.Since(f.synced) {
		f.synced++
		if !feedWorthy(e) {
			continue
		}
		f.Add(e.Tick, e.Entity, e.Owner, feedMessage(e))
		added++
	}
	return added
}

func feedWorthy(e sim.SimLogEntry) bool {
	switch {
	case e.Category == sim.CatMove:
		return e.Key == "no_path"
	case e.Category == sim.CatEconomy:
		return e.Key != "harvest"
	default:
		return true
	}
}

func feedMessage(e sim.SimLogEntry) string {
	if e.Value == "" {
		return e.Key
	}
	return e.Key + " " + e.Value
}

// Draw renders the feed panel at panelX, full height.
func (f *EventFeed) Draw(screen *ebiten.Image, hud *hudText, panelX, panelH int) {
	vector.FillRect(screen, float32(panelX), 0, float32(feedPanelWidth), float32(panelH), color.RGBA{R: 10, G: 12, B: 10, A: 248}, false)
	vector.StrokeLine(screen, float32(panelX), 0, float32(panelX), float32(panelH), 1.0, color.RGBA{R: 50, G: 70, B: 50, A: 255}, false)

	vector.FillRect(screen, float32(panelX), 0, float32(feedPanelWidth), 18, color.RGBA{R: 20, G: 30, B: 20, A: 255}, false)
	hud.Draw(screen, "EVENTS", panelX+8, 2, color.White)
	vector.StrokeLine(screen, float32(panelX), 18, float32(panelX+feedPanelWidth), 18, 1.0, color.RGBA{R: 50, G: 80, B: 50, A: 200}, false)

	entries := f.Recent()

	// Newest at the bottom.
	maxVisible := (panelH - 24) / feedLineHeight
	start := 0
	if len(entries) > maxVisible {
		start = len(entries) - maxVisible
	}
	visible := entries[start:]
	const highlighted = 3

	y := 22
	for i, e := range visible {
		recent := i >= len(visible)-highlighted
		if recent {
			vector.FillRect(screen, float32(panelX+2), float32(y), float32(feedPanelWidth-4), float32(feedLineHeight), color.RGBA{R: 30, G: 40, B: 30, A: 160}, false)
		}
		vector.FillRect(screen, float32(panelX+5), float32(y+4), 3, 6, ownerColor(e.Owner), false)

		textCol := color.RGBA{R: 150, G: 160, B: 150, A: 255}
		if recent {
			textCol = color.RGBA{R: 235, G: 240, B: 235, A: 255}
		}
		hud.Draw(screen, fmt.Sprintf("%5d [%s] %s", e.Tick, e.Label, e.Message), panelX+12, y, textCol)
		y += feedLineHeight
	}
}
