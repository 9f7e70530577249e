// Package formation lays out a group around the unit it follows and turns the
// computing bot's slot into a world-space follow point.
//
// Members are bucketed by role into four slots (tanks, melee, ranged,
// healers). Each slot is laid out by a Placer and then pushed back along the
// anchor's facing so role groups stack in depth bands behind the leader.
package formation

import (
	"go.uber.org/zap"
)

// slotOrder is the depth order of role slots, front to back.
var slotOrder = [slotCount]Role{RoleTank, RoleMelee, RoleRanged, RoleHealer}

const slotCount = 4

func slotIndex(r Role) int {
	switch r {
	case RoleTank:
		return 0
	case RoleRanged:
		return 2
	case RoleHealer:
		return 3
	default:
		return 1
	}
}

// unitRef points at a unit by slot and position, resolved on use.
type unitRef struct {
	slot  int
	index int
	ok    bool
}

type buildState int

const (
	stateUnbuilt buildState = iota
	stateBuilt
)

// Formation is one layout session for one bot. It is built once from the
// roster and reused every tick; create a new Formation when the roster
// changes. Not safe for concurrent use.
type Formation struct {
	policy Policy
	host   Host
	log    *zap.Logger

	slots  [slotCount]*Slot
	master unitRef
	self   unitRef
	state  buildState
}

// Option configures a Formation.
type Option func(*Formation)

// WithLogger sets the logger used for build and resolve diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(f *Formation) {
		if l != nil {
			f.log = l
		}
	}
}

// New creates an unbuilt formation of the given kind for host.
func New(kind Kind, host Host, opts ...Option) *Formation {
	return NewWithPolicy(PolicyFor(kind), host, opts...)
}

// NewWithPolicy creates an unbuilt formation driven by a custom policy.
func NewWithPolicy(p Policy, host Host, opts ...Option) *Formation {
	f := &Formation{
		policy: p,
		host:   host,
		log:    zap.NewNop(),
	}
	for i := range f.slots {
		f.slots[i] = NewSlot(p.Center)
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Built reports whether the slots have been populated.
func (f *Formation) Built() bool { return f.state == stateBuilt }

// Slot returns the slot holding role r.
func (f *Formation) Slot(r Role) *Slot { return f.slots[slotIndex(r)] }

// Build populates the slots from the roster. It runs once; later calls are
// no-ops. Without a group nothing is built and the formation stays unbuilt.
func (f *Formation) Build() {
	if f.state == stateBuilt {
		return
	}
	members, ok := f.host.Group()
	if !ok {
		return
	}
	anchor, hasAnchor := f.host.FollowTarget()
	isAnchor := func(id MemberID) bool { return hasAnchor && id == anchor.ID }

	f.fillExceptMaster(members, isAnchor)
	f.addMaster(members, isAnchor)
	f.state = stateBuilt

	f.log.Debug("formation built",
		zap.String("kind", f.policy.Kind.String()),
		zap.String("self", string(f.host.Self())),
		zap.Int("tanks", f.slots[0].Size()),
		zap.Int("melee", f.slots[1].Size()),
		zap.Int("ranged", f.slots[2].Size()),
		zap.Int("healers", f.slots[3].Size()),
		zap.Bool("master", f.master.ok),
		zap.Bool("self_slotted", f.self.ok),
	)
}

// fillExceptMaster appends every safe non-anchor member to its role slot.
// Enumeration indices count safe members only.
func (f *Formation) fillExceptMaster(members []MemberID, isAnchor func(MemberID) bool) {
	self := f.host.Self()
	selfEnum := -1
	selfSlot := 0
	index := 0
	for _, m := range members {
		if !f.host.IsSafe(m) {
			continue
		}
		switch {
		case m == self:
			selfSlot = slotIndex(f.host.Role(m))
			selfEnum = index
			f.slots[selfSlot].AddLast(newUnit(index, false))
		case !isAnchor(m):
			f.slots[slotIndex(f.host.Role(m))].AddLast(newUnit(index, false))
		}
		index++
	}
	if selfEnum >= 0 {
		f.self = unitRef{slot: selfSlot, index: selfEnum, ok: true}
	}
}

// addMaster inserts the anchor at its slot's centre. Its enumeration index
// counts every member before it.
func (f *Formation) addMaster(members []MemberID, isAnchor func(MemberID) bool) {
	for i, m := range members {
		if !isAnchor(m) {
			continue
		}
		s := slotIndex(f.host.Role(m))
		idx := f.slots[s].InsertAtCenter(newUnit(i, true))
		f.master = unitRef{slot: s, index: idx, ok: true}
		break
	}
	if f.self.ok {
		// self.index holds the enumeration index until here; the master
		// insertion may have shifted its position.
		f.self = f.locate(f.self.slot, f.self.index)
	}
}

// locate finds the non-master unit with the given enumeration index.
func (f *Formation) locate(slot, enumIndex int) unitRef {
	for i, u := range f.slots[slot].units {
		if !u.Master && u.EnumIndex == enumIndex {
			return unitRef{slot: slot, index: i, ok: true}
		}
	}
	return unitRef{}
}

func (f *Formation) unit(r unitRef) (Unit, bool) {
	if !r.ok {
		return Unit{}, false
	}
	return f.slots[r.slot].Unit(r.index)
}

// Resolve returns the world point the computing bot should move to this tick,
// or Unresolved with one of the package's sentinel errors.
func (f *Formation) Resolve() (WorldPoint, error) {
	if _, ok := f.host.Group(); !ok {
		return f.unresolved(ErrNoGroup)
	}

	f.Build()

	anchor, ok := f.host.FollowTarget()
	if !ok || !f.host.IsSafe(anchor.ID) {
		return f.unresolved(ErrAnchorUnsafe)
	}

	f.Place(anchor.Orientation, f.host.FollowRange())

	master, okMaster := f.unit(f.master)
	self, okSelf := f.unit(f.self)
	if !okMaster || !okSelf {
		return f.unresolved(ErrIncompleteLayout)
	}

	x := anchor.X - master.Offset.X + self.Offset.X
	y := anchor.Y - master.Offset.Y + self.Offset.Y

	ground := f.host.GroundHeight(anchor.MapID, x, y, anchor.Z+groundSampleLift)
	if ground <= InvalidHeight {
		return f.unresolved(ErrInvalidGround)
	}
	return WorldPoint{MapID: anchor.MapID, X: x, Y: y, Z: ground + groundClearance}, nil
}

func (f *Formation) unresolved(err error) (WorldPoint, error) {
	f.log.Debug("formation unresolved",
		zap.String("kind", f.policy.Kind.String()),
		zap.String("self", string(f.host.Self())),
		zap.String("reason", Reason(err)),
	)
	return Unresolved, err
}

// Place lays out every slot for the given facing and range and chains the
// slots back along the facing, tanks first.
func (f *Formation) Place(orientation, rng float64) {
	placer := f.policy.NewPlacer(orientation, rng)
	fx, fy := facing(orientation)
	depths := f.depthOffsets(rng)
	for i, s := range f.slots {
		s.PlaceUnits(placer)
		s.Move(-fx*depths[i], -fy*depths[i])
	}
}

// depthOffsets is the accumulated depth each slot is pushed back by, in slot
// order. The first slot is never pushed.
func (f *Formation) depthOffsets(rng float64) [slotCount]float64 {
	var out [slotCount]float64
	offset := 0.0
	for i, s := range f.slots {
		out[i] = offset
		offset += f.policy.Depth(s.Size(), rng)
	}
	return out
}

// Placement is one unit of the current layout with its role.
type Placement struct {
	Role   Role
	Unit   Unit
	IsSelf bool
}

// Placements returns every unit's current offset relative to the master, in
// slot order. Offsets are as of the last Place or Resolve. ok is false when
// the layout has no master.
func (f *Formation) Placements() (out []Placement, ok bool) {
	master, ok := f.unit(f.master)
	if !ok {
		return nil, false
	}
	for si, s := range f.slots {
		for ui, u := range s.units {
			u.Offset = u.Offset.Sub(master.Offset)
			out = append(out, Placement{
				Role:   slotOrder[si],
				Unit:   u,
				IsSelf: f.self.ok && f.self.slot == si && f.self.index == ui,
			})
		}
	}
	return out, true
}
