package server

import (
	"sync/atomic"

	"github.com/Garsondee/formation-sense/internal/sim"
)

// Metrics are the room's runtime counters.
type Metrics struct {
	TickCount        int64
	TotalTickNs      int64
	Resolved         int64
	NoGroup          int64
	AnchorUnsafe     int64
	IncompleteLayout int64
	InvalidGround    int64
	CommandsApplied  int64
	CommandsRejected int64
	SendDropped      int64
	Clients          int64
}

func (m *Metrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
}

func (m *Metrics) IncApplied()  { atomic.AddInt64(&m.CommandsApplied, 1) }
func (m *Metrics) IncRejected() { atomic.AddInt64(&m.CommandsRejected, 1) }
func (m *Metrics) IncDropped()  { atomic.AddInt64(&m.SendDropped, 1) }
func (m *Metrics) AddClients(n int64) {
	atomic.AddInt64(&m.Clients, n)
}

// CountOutcomes adds every bot's last resolve outcome.
func (m *Metrics) CountOutcomes(st sim.State) {
	for _, ms := range st.Members {
		if ms.Anchor {
			continue
		}
		switch ms.Reason {
		case "resolved":
			atomic.AddInt64(&m.Resolved, 1)
		case "no_group":
			atomic.AddInt64(&m.NoGroup, 1)
		case "anchor_unsafe":
			atomic.AddInt64(&m.AnchorUnsafe, 1)
		case "incomplete_layout":
			atomic.AddInt64(&m.IncompleteLayout, 1)
		case "invalid_ground":
			atomic.AddInt64(&m.InvalidGround, 1)
		}
	}
}

// Snapshot returns a read-only copy for HTTP output.
func (m *Metrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"tick_count":        tick,
		"avg_tick_ms":       avgMs,
		"resolved":          atomic.LoadInt64(&m.Resolved),
		"no_group":          atomic.LoadInt64(&m.NoGroup),
		"anchor_unsafe":     atomic.LoadInt64(&m.AnchorUnsafe),
		"incomplete_layout": atomic.LoadInt64(&m.IncompleteLayout),
		"invalid_ground":    atomic.LoadInt64(&m.InvalidGround),
		"commands_applied":  atomic.LoadInt64(&m.CommandsApplied),
		"commands_rejected": atomic.LoadInt64(&m.CommandsRejected),
		"send_dropped":      atomic.LoadInt64(&m.SendDropped),
		"clients":           atomic.LoadInt64(&m.Clients),
	}
}
