package sim

import (
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Garsondee/formation-sense/internal/config"
	"github.com/Garsondee/formation-sense/internal/formation"
)

// makePair builds a stationary tank anchor at (100,100) facing east and one
// melee bot at (x,y).
func makePair(x, y float64, extra ...Option) *World {
	opts := []Option{
		WithRange(5),
		WithBotSpeed(2),
		WithMember("lead", formation.RoleTank, 100, 100),
		WithMember("bot", formation.RoleMelee, x, y),
		WithAnchor("lead", 0, 0, 0),
	}
	return New(append(opts, extra...)...)
}

func TestStep_BotConvergesOnSlot(t *testing.T) {
	w := makePair(50, 100)
	w.Run(40)
	bot := w.Member("bot")
	// One tank line behind the anchor.
	if math.Abs(bot.X-95) > 1e-9 || math.Abs(bot.Y-100) > 1e-9 {
		t.Fatalf("expected bot at (95,100), got (%.3f,%.3f)", bot.X, bot.Y)
	}
	if bot.Reason != "resolved" {
		t.Fatalf("expected resolved, got %s", bot.Reason)
	}
}

func TestStep_BotSpeedLimited(t *testing.T) {
	w := makePair(50, 100)
	w.Step()
	bot := w.Member("bot")
	if math.Abs(bot.X-52) > 1e-9 {
		t.Fatalf("expected one step of 2 toward target, got x=%.3f", bot.X)
	}
}

func TestStep_AnchorUnsafeWindow(t *testing.T) {
	w := makePair(95, 100, WithUnsafe("lead", 2, 5))
	w.Run(10)
	if n := w.Log.Count(CategoryResolve, "anchor_unsafe"); n != 3 {
		t.Fatalf("expected 3 anchor_unsafe resolves, got %d", n)
	}
	if n := w.Log.Count(CategoryResolve, "resolved"); n != 7 {
		t.Fatalf("expected 7 resolved ticks, got %d", n)
	}
}

func TestStep_SelfUnsafeAtBuildStaysIncomplete(t *testing.T) {
	// The session is built once; a bot excluded at build time stays out
	// until the roster changes.
	w := makePair(95, 100, WithUnsafe("bot", 0, 1))
	w.Run(5)
	if n := w.Log.Count(CategoryResolve, "incomplete_layout"); n != 5 {
		t.Fatalf("expected 5 incomplete_layout resolves, got %d", n)
	}
	if err := w.Join("late", formation.RoleHealer, 80, 100); err != nil {
		t.Fatal(err)
	}
	w.Step()
	if got := w.Member("bot").Reason; got != "resolved" {
		t.Fatalf("expected resolve after roster change, got %s", got)
	}
}

func TestStep_HoleAtTarget(t *testing.T) {
	w := makePair(80, 100, WithHole(95, 100, 1))
	w.Step()
	if got := w.Member("bot").Reason; got != "invalid_ground" {
		t.Fatalf("expected invalid_ground, got %s", got)
	}
}

func TestSetGrouped(t *testing.T) {
	w := makePair(95, 100)
	w.SetGrouped(false)
	w.Step()
	if got := w.Member("bot").Reason; got != "no_group" {
		t.Fatalf("expected no_group, got %s", got)
	}
	w.SetGrouped(true)
	w.Step()
	if got := w.Member("bot").Reason; got != "resolved" {
		t.Fatalf("expected resolved after regrouping, got %s", got)
	}
}

func TestJoinLeave(t *testing.T) {
	w := makePair(95, 100)
	w.Step()
	if err := w.Join("bot", formation.RoleTank, 0, 0); err == nil {
		t.Fatalf("expected duplicate join error")
	}
	if err := w.Join("late", formation.RoleRanged, 70, 100); err != nil {
		t.Fatal(err)
	}
	w.Step()
	pts, ok := w.Layout("bot")
	if !ok || len(pts) != 3 {
		t.Fatalf("expected a 3-unit layout after join, got %d ok=%v", len(pts), ok)
	}
	if err := w.Leave("late"); err != nil {
		t.Fatal(err)
	}
	if err := w.Leave("late"); err == nil {
		t.Fatalf("expected error leaving twice")
	}
	if n := w.Log.Count(CategoryRoster, ""); n != 2 {
		t.Fatalf("expected 2 roster events, got %d", n)
	}
}

func TestLayout_SelfMatchesTarget(t *testing.T) {
	w := makePair(95, 100)
	w.Step()
	pts, ok := w.Layout("bot")
	if !ok {
		t.Fatalf("expected layout")
	}
	bot := w.Member("bot")
	var selves, masters int
	for _, p := range pts {
		if p.IsSelf {
			selves++
			if math.Abs(p.X-bot.Target.X) > 1e-9 || math.Abs(p.Y-bot.Target.Y) > 1e-9 {
				t.Fatalf("self slot (%.3f,%.3f) != target (%.3f,%.3f)", p.X, p.Y, bot.Target.X, bot.Target.Y)
			}
		}
		if p.Master {
			masters++
		}
	}
	if selves != 1 || masters != 1 {
		t.Fatalf("expected one self and one master, got %d and %d", selves, masters)
	}
}

func TestMoveAnchor_TurnsBackAtHole(t *testing.T) {
	w := New(
		WithMember("lead", formation.RoleTank, 100, 100),
		WithAnchor("lead", 0, 1, 0),
		WithHole(103, 100, 1),
	)
	w.Run(3)
	if w.Log.Count(CategoryAnchor, "turn_back") == 0 {
		t.Fatalf("expected the anchor to turn back at the hole")
	}
	if math.Abs(math.Abs(w.Heading())-math.Pi) > 1e-9 {
		t.Fatalf("expected heading pi after turning back, got %.3f", w.Heading())
	}
}

func TestFromConfig_DefaultScenarioResolvesEveryTick(t *testing.T) {
	w := FromConfig(config.Default(), nil)
	w.Run(50)
	for _, r := range w.Report() {
		if r.Resolved != 50 || r.ResolveRate() != 1 {
			t.Fatalf("%s: expected 50 resolved ticks, got %+v", r.ID, r)
		}
	}
	if len(w.Bots()) != len(config.Default().Members)-1 {
		t.Fatalf("expected every member except the anchor to be a bot")
	}
}

func TestFromConfig_RaidKind(t *testing.T) {
	cfg := config.Default()
	cfg.Formation = "raid"
	w := FromConfig(cfg, nil)
	w.Step()
	if w.Snapshot().Formation != "raid" {
		t.Fatalf("expected raid formation in snapshot")
	}
}

func TestSnapshot(t *testing.T) {
	w := makePair(95, 100)
	w.Step()
	st := w.Snapshot()
	want := []MemberState{
		{ID: "lead", Role: "tank", X: 100, Y: 100, Anchor: true, Resolved: true},
		{ID: "bot", Role: "melee", X: 95, Y: 100, TargetX: 95, TargetY: 100, Resolved: true, Reason: "resolved"},
	}
	opt := cmp.Comparer(func(a, b float64) bool { return math.Abs(a-b) < 1e-9 })
	if diff := cmp.Diff(want, st.Members, opt); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
	if st.Tick != 1 {
		t.Fatalf("expected tick 1, got %d", st.Tick)
	}
}

func TestEventLog_Quiet(t *testing.T) {
	w := makePair(95, 100, WithQuietLog(), WithUnsafe("lead", 1, 2))
	w.Run(3)
	events := w.Log.Events()
	if len(events) != 1 {
		t.Fatalf("quiet log should keep only the failure, got %d events: %v", len(events), events)
	}
	if e := events[0]; e.Member != "bot" || e.Key != "anchor_unsafe" || e.Tick != 1 {
		t.Fatalf("unexpected event %s", e)
	}
	if !strings.Contains(events[0].String(), "resolve/anchor_unsafe") {
		t.Fatalf("expected category/key in %q", events[0].String())
	}
}

func TestEventLog_NotableNewestOldestFirst(t *testing.T) {
	l := NewEventLog(false)
	l.Add(0, "bot", CategoryRoster, "join", "melee", 0)
	l.Add(1, "bot", CategoryResolve, "resolved", "", 0)
	l.Add(2, "bot", CategoryResolve, "no_group", "", 0)
	l.Add(3, "lead", CategoryAnchor, "turn_back", "", 0)
	l.Add(4, "bot", CategoryResolve, "resolved", "", 0)

	got := l.Notable(2)
	if len(got) != 2 || got[0].Tick != 2 || got[1].Tick != 3 {
		t.Fatalf("expected ticks 2 and 3, got %v", got)
	}
	if all := l.Notable(10); len(all) != 3 {
		t.Fatalf("expected 3 notable events, got %d", len(all))
	}
	if n := l.Count(CategoryResolve, ""); n != 3 {
		t.Fatalf("expected 3 resolve events, got %d", n)
	}
}

func TestReportAndSpread(t *testing.T) {
	w := makePair(95, 100, WithUnsafe("lead", 2, 5))
	w.Run(10)
	got := w.Report()
	want := []MemberReport{
		{ID: "bot", Role: "melee", Resolved: 7, Unresolved: map[string]int{"anchor_unsafe": 3}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("report mismatch (-want +got):\n%s", diff)
	}
	if rate := got[0].ResolveRate(); math.Abs(rate-0.7) > 1e-9 {
		t.Fatalf("expected resolve rate 0.7, got %v", rate)
	}
	if s := w.Spread(); math.Abs(s-5) > 1e-9 {
		t.Fatalf("expected spread 5, got %v", s)
	}
}
