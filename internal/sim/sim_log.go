package sim

import (
	"fmt"
	"sort"
	"strings"
)

// Event categories recorded by the World.
const (
	CatState      = "state"
	CatEconomy    = "economy"
	CatCombat     = "combat"
	CatProduction = "production"
	CatCommand    = "command"
	CatMove       = "move"
)

// SimLogEntry is one recorded event.
type SimLogEntry struct {
	Tick     int
	Entity   string // label e.g. "U3", "B1", or "--" for global events
	Owner    PlayerID
	Category string
	Key      string  // specific event name within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value for threshold checks
}

// String formats the entry as a fixed-width log line.
//
//	[T=042] U3   state     transition       moving → gathering
func (e SimLogEntry) String() string {
	return fmt.Sprintf("[T=%03d] %-4s %-10s %-16s %s",
		e.Tick, e.Entity, e.Category, e.Key, e.Value)
}

// SimLog collects structured events emitted by a World. Unlike the
// front-end's event feed it is unbounded and machine-readable.
type SimLog struct {
	entries []SimLogEntry
	verbose bool
}

// NewSimLog creates a SimLog. If verbose is true, per-tick movement
// entries are also recorded.
func NewSimLog(verbose bool) *SimLog {
	return &SimLog{verbose: verbose}
}

// Add records a new entry.
func (sl *SimLog) Add(tick int, entity string, owner PlayerID, category, key, value string, numVal float64) {
	if sl == nil {
		return
	}
	sl.entries = append(sl.entries, SimLogEntry{
		Tick:     tick,
		Entity:   entity,
		Owner:    owner,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// AddVerbose records an entry only when verbose mode is on.
func (sl *SimLog) AddVerbose(tick int, entity string, owner PlayerID, category, key, value string, numVal float64) {
	if sl == nil || !sl.verbose {
		return
	}
	sl.Add(tick, entity, owner, category, key, value, numVal)
}

// Entries returns all recorded entries.
func (sl *SimLog) Entries() []SimLogEntry {
	return sl.entries
}

// Len is the number of recorded entries.
func (sl *SimLog) Len() int {
	if sl == nil {
		return 0
	}
	return len(sl.entries)
}

// Since returns the entries recorded after the first n.
func (sl *SimLog) Since(n int) []SimLogEntry {
	if sl == nil || n >= len(sl.entries) {
		return nil
	}
	if n < 0 {
		n = 0
	}
	return sl.entries[n:]
}

// Filter returns entries matching the given category and/or key.
// Pass empty string to match any value for that field.
func (sl *SimLog) Filter(category, key string) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterEntity returns entries for a specific entity label.
func (sl *SimLog) FilterEntity(label string) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if e.Entity == label {
			out = append(out, e)
		}
	}
	return out
}

// FilterTickRange returns entries within [fromTick, toTick] inclusive.
func (sl *SimLog) FilterTickRange(fromTick, toTick int) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if e.Tick >= fromTick && e.Tick <= toTick {
			out = append(out, e)
		}
	}
	return out
}

// CountCategory returns how many entries match the given category and key.
func (sl *SimLog) CountCategory(category, key string) int {
	return len(sl.Filter(category, key))
}

// LastOf returns the most recent entry matching category+key, or false if none.
func (sl *SimLog) LastOf(category, key string) (SimLogEntry, bool) {
	entries := sl.Filter(category, key)
	if len(entries) == 0 {
		return SimLogEntry{}, false
	}
	return entries[len(entries)-1], true
}

// HasEntry returns true if at least one entry matches category, key, and value substring.
func (sl *SimLog) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range sl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		if valueSubstr != "" && !strings.Contains(e.Value, valueSubstr) {
			continue
		}
		return true
	}
	return false
}

// Format returns the full log as a single string for t.Log output.
func (sl *SimLog) Format() string {
	var sb strings.Builder
	for _, e := range sl.entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FormatRange returns a log string filtered to a tick range.
func (sl *SimLog) FormatRange(fromTick, toTick int) string {
	var sb strings.Builder
	for _, e := range sl.FilterTickRange(fromTick, toTick) {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Counts tallies entries by "category/key".
func (sl *SimLog) Counts() map[string]int {
	out := make(map[string]int)
	for _, e := range sl.entries {
		out[e.Category+"/"+e.Key]++
	}
	return out
}

// Summary returns a short human-readable summary of the world.
func (sl *SimLog) Summary(w *World) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Summary at T=%03d ---\n", w.TickCount())

	res := w.Resources()
	pop := w.Population()
	fmt.Fprintf(&sb, "Ledger: %s\n", res)
	fmt.Fprintf(&sb, "Population: %d/%d\n", pop.Current, pop.Max)

	states := map[UnitState]int{}
	kinds := map[Kind]int{}
	for _, e := range w.Entities() {
		kinds[e.Kind()]++
		if u, ok := e.(*Unit); ok {
			states[u.State]++
		}
	}
	fmt.Fprintf(&sb, "Entities: units=%d buildings=%d resources=%d projectiles=%d\n",
		kinds[KindUnit], kinds[KindBuilding], kinds[KindResource], kinds[KindProjectile])

	var parts []string
	for _, s := range []UnitState{StateIdle, StateMoving, StateGathering, StateReturning, StateAttacking} {
		if n := states[s]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", s, n))
		}
	}
	if len(parts) == 0 {
		parts = append(parts, "none")
	}
	fmt.Fprintf(&sb, "Unit states: %s\n", strings.Join(parts, "  "))

	counts := sl.Counts()
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, "  %-28s %d\n", k, counts[k])
	}
	return sb.String()
}
