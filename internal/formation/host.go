package formation

// MemberID identifies a group member.
type MemberID string

// Role is a member's combat role.
type Role int

const (
	RoleMelee Role = iota
	RoleTank
	RoleHealer
	RoleRanged
)

func (r Role) String() string {
	switch r {
	case RoleTank:
		return "tank"
	case RoleHealer:
		return "healer"
	case RoleRanged:
		return "ranged"
	default:
		return "melee"
	}
}

// ParseRole maps a role name to a Role. Unknown names are melee.
func ParseRole(name string) Role {
	switch name {
	case "tank":
		return RoleTank
	case "healer", "heal":
		return RoleHealer
	case "ranged":
		return RoleRanged
	default:
		return RoleMelee
	}
}

// Anchor is a snapshot of the followed unit.
type Anchor struct {
	ID          MemberID
	MapID       uint32
	X, Y, Z     float64
	Orientation float64
}

// Roster enumerates the caller's group. ok is false when the caller has no group.
type Roster interface {
	Group() (members []MemberID, ok bool)
}

// RoleClassifier assigns a combat role to a member.
type RoleClassifier interface {
	Role(id MemberID) Role
}

// SafetyChecker reports whether a member may take part in the layout.
type SafetyChecker interface {
	IsSafe(id MemberID) bool
}

// AnchorSource provides the currently followed unit and the follow distance.
type AnchorSource interface {
	FollowTarget() (Anchor, bool)
	FollowRange() float64
}

// Terrain samples ground height. Results at or below InvalidHeight mean no ground.
type Terrain interface {
	GroundHeight(mapID uint32, x, y, z float64) float64
}

// Host bundles every collaborator a Formation needs.
type Host interface {
	Roster
	RoleClassifier
	SafetyChecker
	AnchorSource
	Terrain
	// Self is the computing bot.
	Self() MemberID
}
