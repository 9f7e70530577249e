package sim

import "github.com/Garsondee/formation-sense/internal/formation"

// memberHost is the world as seen by one bot.
type memberHost struct {
	w    *World
	self formation.MemberID
}

func (h *memberHost) Self() formation.MemberID { return h.self }

func (h *memberHost) Group() ([]formation.MemberID, bool) {
	if !h.w.grouped || h.w.Member(h.self) == nil {
		return nil, false
	}
	ids := make([]formation.MemberID, len(h.w.members))
	for i, m := range h.w.members {
		ids[i] = m.ID
	}
	return ids, true
}

func (h *memberHost) Role(id formation.MemberID) formation.Role {
	if m := h.w.Member(id); m != nil {
		return m.Role
	}
	return formation.RoleMelee
}

func (h *memberHost) IsSafe(id formation.MemberID) bool {
	m := h.w.Member(id)
	return m != nil && h.w.safe(m)
}

func (h *memberHost) FollowTarget() (formation.Anchor, bool) {
	a := h.w.AnchorMember()
	if a == nil {
		return formation.Anchor{}, false
	}
	return formation.Anchor{
		ID:          a.ID,
		MapID:       h.w.anchor.mapID,
		X:           a.X,
		Y:           a.Y,
		Z:           a.Z,
		Orientation: h.w.anchor.heading,
	}, true
}

func (h *memberHost) FollowRange() float64 { return h.w.Range }

func (h *memberHost) GroundHeight(_ uint32, x, y, _ float64) float64 {
	return h.w.groundAt(x, y)
}
