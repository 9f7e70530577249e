// Package sim is a headless host for formation layouts: a group following a
// walking anchor over simple terrain, stepped one tick at a time.
package sim

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/Garsondee/formation-sense/internal/config"
	"github.com/Garsondee/formation-sense/internal/formation"
)

// Member is one roster entry and, unless it is the anchor, one bot.
type Member struct {
	ID   formation.MemberID
	Role formation.Role
	X    float64
	Y    float64
	Z    float64

	unsafeFrom  int
	unsafeUntil int

	session *formation.Formation
	Target  formation.WorldPoint
	// Reason is the outcome label of the last resolve.
	Reason string
	stats  memberStats
}

type memberStats struct {
	resolved   int
	unresolved map[string]int
	distSum    float64
}

type anchorState struct {
	id       formation.MemberID
	mapID    uint32
	heading  float64
	speed    float64
	turnRate float64
}

// World owns the roster, anchor and terrain. Not safe for concurrent use.
type World struct {
	Tick     int
	Kind     formation.Kind
	Range    float64
	BotSpeed float64
	Log      *EventLog

	members []*Member
	anchor  anchorState
	grouped bool
	terrain config.Terrain
	holes   []config.Hole
	logger  *zap.Logger
}

// optionKind controls the pass in which an option is applied.
type optionKind int

const (
	optInfra  optionKind = iota // layout, terrain, logging: applied first
	optMember                   // roster entries
	optAnchor                   // anchor selection: applied once members exist
)

// Option is a builder function applied to a World during construction.
type Option struct {
	kind optionKind
	fn   func(*World)
}

// WithKind sets the formation layout.
func WithKind(k formation.Kind) Option {
	return Option{optInfra, func(w *World) { w.Kind = k }}
}

// WithRange sets the follow range.
func WithRange(r float64) Option {
	return Option{optInfra, func(w *World) { w.Range = r }}
}

// WithBotSpeed sets how far bots move per tick.
func WithBotSpeed(s float64) Option {
	return Option{optInfra, func(w *World) { w.BotSpeed = s }}
}

// WithTerrain sets the ground plane.
func WithTerrain(t config.Terrain) Option {
	return Option{optInfra, func(w *World) { w.terrain = t }}
}

// WithHole adds a disc with no ground.
func WithHole(x, y, radius float64) Option {
	return Option{optInfra, func(w *World) {
		w.holes = append(w.holes, config.Hole{X: x, Y: y, Radius: radius})
	}}
}

// WithLogger sets the logger passed to every formation session.
func WithLogger(l *zap.Logger) Option {
	return Option{optInfra, func(w *World) {
		if l != nil {
			w.logger = l
		}
	}}
}

// WithQuietLog drops successful resolves from the event log.
func WithQuietLog() Option {
	return Option{optInfra, func(w *World) { w.Log = NewEventLog(true) }}
}

// WithMember adds a roster entry at (x, y).
func WithMember(id string, role formation.Role, x, y float64) Option {
	return Option{optMember, func(w *World) {
		w.members = append(w.members, &Member{ID: formation.MemberID(id), Role: role, X: x, Y: y})
	}}
}

// WithUnsafe marks an existing member unsafe for ticks in [from, until).
func WithUnsafe(id string, from, until int) Option {
	return Option{optAnchor, func(w *World) {
		if m := w.Member(formation.MemberID(id)); m != nil {
			m.unsafeFrom, m.unsafeUntil = from, until
		}
	}}
}

// WithAnchor makes an existing member the followed unit, walking at speed
// and turning by turnRate radians per tick.
func WithAnchor(id string, heading, speed, turnRate float64) Option {
	return Option{optAnchor, func(w *World) {
		w.anchor = anchorState{
			id:       formation.MemberID(id),
			heading:  heading,
			speed:    speed,
			turnRate: turnRate,
		}
	}}
}

// WithMapID sets the anchor's map.
func WithMapID(id uint32) Option {
	return Option{optAnchor, func(w *World) { w.anchor.mapID = id }}
}

// New constructs a World from options in three ordered passes: layout and
// terrain, roster, anchor.
func New(opts ...Option) *World {
	w := &World{
		Kind:     formation.KindArrow,
		Range:    5,
		BotSpeed: 2,
		Log:      NewEventLog(false),
		grouped:  true,
		logger:   zap.NewNop(),
	}
	for _, kind := range []optionKind{optInfra, optMember, optAnchor} {
		for _, o := range opts {
			if o.kind == kind {
				o.fn(w)
			}
		}
	}
	if w.anchor.id == "" && len(w.members) > 0 {
		w.anchor.id = w.members[0].ID
	}
	for _, m := range w.members {
		m.Z = w.groundAt(m.X, m.Y)
	}
	return w
}

// FromConfig builds a World for a loaded scenario. The anchor member starts at
// cfg.Anchor's x and y, which config.Decode reconciles with its member entry.
func FromConfig(cfg config.Config, logger *zap.Logger) *World {
	opts := []Option{
		WithKind(cfg.Kind()),
		WithRange(cfg.Range),
		WithBotSpeed(cfg.BotSpeed),
		WithTerrain(cfg.Terrain),
		WithLogger(logger),
		WithAnchor(cfg.Anchor.ID, cfg.Anchor.Heading, cfg.Anchor.Speed, cfg.Anchor.TurnRate),
		WithMapID(cfg.Anchor.MapID),
	}
	for _, m := range cfg.Members {
		x, y := m.X, m.Y
		if m.ID == cfg.Anchor.ID {
			x, y = cfg.Anchor.X, cfg.Anchor.Y
		}
		opts = append(opts, WithMember(m.ID, formation.ParseRole(m.Role), x, y))
		if m.UnsafeUntil > m.UnsafeFrom {
			opts = append(opts, WithUnsafe(m.ID, m.UnsafeFrom, m.UnsafeUntil))
		}
	}
	for _, h := range cfg.Holes {
		opts = append(opts, WithHole(h.X, h.Y, h.Radius))
	}
	return New(opts...)
}

// Member returns the roster entry for id, or nil.
func (w *World) Member(id formation.MemberID) *Member {
	for _, m := range w.members {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// Members returns the roster in enumeration order.
func (w *World) Members() []*Member {
	return w.members
}

// AnchorMember returns the followed member, or nil when it left the roster.
func (w *World) AnchorMember() *Member {
	return w.Member(w.anchor.id)
}

// Bots returns every member except the anchor.
func (w *World) Bots() []*Member {
	out := make([]*Member, 0, len(w.members))
	for _, m := range w.members {
		if m.ID != w.anchor.id {
			out = append(out, m)
		}
	}
	return out
}

// Heading is the anchor's current orientation.
func (w *World) Heading() float64 {
	return w.anchor.heading
}

// Join adds a member to the roster. Every cached layout is discarded.
func (w *World) Join(id string, role formation.Role, x, y float64) error {
	if w.Member(formation.MemberID(id)) != nil {
		return fmt.Errorf("join %s: already in group", id)
	}
	m := &Member{ID: formation.MemberID(id), Role: role, X: x, Y: y, Z: w.groundAt(x, y)}
	w.members = append(w.members, m)
	w.resetSessions()
	w.Log.Add(w.Tick, id, CategoryRoster, "join", role.String(), 0)
	return nil
}

// Leave removes a member from the roster. Every cached layout is discarded.
func (w *World) Leave(id string) error {
	for i, m := range w.members {
		if m.ID == formation.MemberID(id) {
			w.members = append(w.members[:i], w.members[i+1:]...)
			w.resetSessions()
			w.Log.Add(w.Tick, id, CategoryRoster, "leave", "", 0)
			return nil
		}
	}
	return fmt.Errorf("leave %s: not in group", id)
}

// SetGrouped toggles whether the roster forms a group at all.
func (w *World) SetGrouped(grouped bool) {
	if w.grouped == grouped {
		return
	}
	w.grouped = grouped
	w.resetSessions()
	w.Log.Add(w.Tick, "--", CategoryRoster, "grouped", fmt.Sprintf("%v", grouped), 0)
}

// SetLayout changes kind and range. Every cached layout is discarded.
func (w *World) SetLayout(kind formation.Kind, rng float64) {
	w.Kind = kind
	w.Range = rng
	w.resetSessions()
	w.Log.Add(w.Tick, "--", CategoryRoster, "layout", fmt.Sprintf("%s range=%.2f", kind, rng), rng)
}

func (w *World) resetSessions() {
	for _, m := range w.members {
		m.session = nil
	}
}

// Session returns the member's layout session, creating it on first use.
func (w *World) Session(m *Member) *formation.Formation {
	if m.session == nil {
		m.session = formation.New(w.Kind, &memberHost{w: w, self: m.ID},
			formation.WithLogger(w.logger.With(zap.String("member", string(m.ID)))))
	}
	return m.session
}

// Step advances the anchor, resolves every bot's follow point and moves bots
// toward it.
func (w *World) Step() {
	w.moveAnchor()
	for _, m := range w.Bots() {
		w.stepBot(m)
	}
	w.Tick++
}

// Run steps the world n times.
func (w *World) Run(n int) {
	for i := 0; i < n; i++ {
		w.Step()
	}
}

func (w *World) moveAnchor() {
	a := w.AnchorMember()
	if a == nil {
		return
	}
	w.anchor.heading = normalizeAngle(w.anchor.heading + w.anchor.turnRate)
	nx := a.X + math.Cos(w.anchor.heading)*w.anchor.speed
	ny := a.Y + math.Sin(w.anchor.heading)*w.anchor.speed
	if g := w.groundAt(nx, ny); g > formation.InvalidHeight {
		a.X, a.Y, a.Z = nx, ny, g
		return
	}
	// Walked into a hole: turn around and stay put this tick.
	w.anchor.heading = normalizeAngle(w.anchor.heading + math.Pi)
	w.Log.Add(w.Tick, string(a.ID), CategoryAnchor, "turn_back", fmt.Sprintf("(%.1f,%.1f)", a.X, a.Y), w.anchor.heading)
}

func (w *World) stepBot(m *Member) {
	p, err := w.Session(m).Resolve()
	m.Reason = formation.Reason(err)
	if err != nil {
		if m.stats.unresolved == nil {
			m.stats.unresolved = map[string]int{}
		}
		m.stats.unresolved[m.Reason]++
		w.Log.Add(w.Tick, string(m.ID), CategoryResolve, m.Reason, err.Error(), 0)
		return
	}
	m.Target = p

	dx, dy := p.X-m.X, p.Y-m.Y
	dist := math.Hypot(dx, dy)
	m.stats.resolved++
	m.stats.distSum += dist
	w.Log.Add(w.Tick, string(m.ID), CategoryResolve, "resolved",
		fmt.Sprintf("(%.1f,%.1f) d=%.2f", p.X, p.Y, dist), dist)

	if dist <= w.BotSpeed {
		m.X, m.Y, m.Z = p.X, p.Y, p.Z
		return
	}
	nx := m.X + dx/dist*w.BotSpeed
	ny := m.Y + dy/dist*w.BotSpeed
	if g := w.groundAt(nx, ny); g > formation.InvalidHeight {
		m.X, m.Y, m.Z = nx, ny, g
	}
}

// groundAt samples the terrain plane, or InvalidHeight inside a hole.
func (w *World) groundAt(x, y float64) float64 {
	for _, h := range w.holes {
		if math.Hypot(x-h.X, y-h.Y) < h.Radius {
			return formation.InvalidHeight
		}
	}
	return w.terrain.Base + w.terrain.SlopeX*x + w.terrain.SlopeY*y
}

func (w *World) safe(m *Member) bool {
	return w.Tick < m.unsafeFrom || w.Tick >= m.unsafeUntil
}

func normalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
