package sim

import (
	"math"
	"sort"

	"github.com/Garsondee/formation-sense/internal/formation"
)

// MemberState is the broadcast view of one member.
type MemberState struct {
	ID       string  `json:"id"`
	Role     string  `json:"role"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Anchor   bool    `json:"anchor,omitempty"`
	TargetX  float64 `json:"targetX,omitempty"`
	TargetY  float64 `json:"targetY,omitempty"`
	Resolved bool    `json:"resolved"`
	Reason   string  `json:"reason,omitempty"`
}

// State is a snapshot of the world after a tick.
type State struct {
	Tick      int           `json:"tick"`
	Formation string        `json:"formation"`
	Range     float64       `json:"range"`
	Heading   float64       `json:"heading"`
	Members   []MemberState `json:"members"`
}

// Snapshot captures the current world state.
func (w *World) Snapshot() State {
	st := State{
		Tick:      w.Tick,
		Formation: w.Kind.String(),
		Range:     w.Range,
		Heading:   w.anchor.heading,
		Members:   make([]MemberState, 0, len(w.members)),
	}
	for _, m := range w.members {
		ms := MemberState{
			ID:   string(m.ID),
			Role: m.Role.String(),
			X:    m.X,
			Y:    m.Y,
		}
		if m.ID == w.anchor.id {
			ms.Anchor = true
			ms.Resolved = true
		} else {
			ms.Resolved = m.Reason == "resolved"
			ms.Reason = m.Reason
			if ms.Resolved {
				ms.TargetX, ms.TargetY = m.Target.X, m.Target.Y
			}
		}
		st.Members = append(st.Members, ms)
	}
	return st
}

// SlotPoint is one unit of a layout in world coordinates.
type SlotPoint struct {
	Role   formation.Role
	X, Y   float64
	Master bool
	IsSelf bool
}

// Layout returns the whole formation as seen by member id's session, placed
// around the anchor's current position. ok is false when that session has no
// resolved layout.
func (w *World) Layout(id formation.MemberID) ([]SlotPoint, bool) {
	m := w.Member(id)
	a := w.AnchorMember()
	if m == nil || a == nil || m.session == nil {
		return nil, false
	}
	placements, ok := m.session.Placements()
	if !ok {
		return nil, false
	}
	out := make([]SlotPoint, len(placements))
	for i, p := range placements {
		out[i] = SlotPoint{
			Role:   p.Role,
			X:      a.X + p.Unit.Offset.X,
			Y:      a.Y + p.Unit.Offset.Y,
			Master: p.Unit.Master,
			IsSelf: p.IsSelf,
		}
	}
	return out, true
}

// MemberReport summarises one bot's run.
type MemberReport struct {
	ID           string
	Role         string
	Resolved     int
	Unresolved   map[string]int
	MeanDistance float64
}

// ResolveRate is the fraction of ticks with a resolved point.
func (r MemberReport) ResolveRate() float64 {
	total := r.Resolved
	for _, n := range r.Unresolved {
		total += n
	}
	if total == 0 {
		return 0
	}
	return float64(r.Resolved) / float64(total)
}

// Report summarises every bot, sorted by id.
func (w *World) Report() []MemberReport {
	var out []MemberReport
	for _, m := range w.Bots() {
		r := MemberReport{
			ID:         string(m.ID),
			Role:       m.Role.String(),
			Resolved:   m.stats.resolved,
			Unresolved: map[string]int{},
		}
		for k, v := range m.stats.unresolved {
			r.Unresolved[k] = v
		}
		if m.stats.resolved > 0 {
			r.MeanDistance = m.stats.distSum / float64(m.stats.resolved)
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Spread is the largest distance between any bot and the anchor.
func (w *World) Spread() float64 {
	a := w.AnchorMember()
	if a == nil {
		return 0
	}
	var maxD float64
	for _, m := range w.Bots() {
		maxD = math.Max(maxD, math.Hypot(m.X-a.X, m.Y-a.Y))
	}
	return maxD
}
