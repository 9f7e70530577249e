package formation

import (
	"fmt"
	"math"
	"strings"
)

// Kind selects a formation layout.
type Kind int

const (
	KindArrow Kind = iota // role blocks of six-wide lines
	KindRaid              // role blocks of staggered five-wide rows
)

func (k Kind) String() string {
	switch k {
	case KindArrow:
		return "arrow"
	case KindRaid:
		return "raid"
	default:
		return "unknown"
	}
}

// ParseKind maps a formation name to its Kind.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "arrow", "":
		return KindArrow, nil
	case "raid":
		return KindRaid, nil
	default:
		return 0, fmt.Errorf("unknown formation %q (supported: arrow, raid)", name)
	}
}

// Policy holds everything that differs between layouts. The orchestration in
// Formation is shared.
type Policy struct {
	Kind   Kind
	Center CenterRule
	// NewPlacer builds the placer for one tick.
	NewPlacer func(orientation, rng float64) Placer
	// Depth is how far a slot of size units pushes the next slot back.
	Depth func(size int, rng float64) float64
}

// PolicyFor returns the layout policy for k. Unknown kinds get the arrow policy.
func PolicyFor(k Kind) Policy {
	if k == KindRaid {
		return raidPolicy
	}
	return arrowPolicy
}

var arrowPolicy = Policy{
	Kind:   KindArrow,
	Center: ListCenter,
	NewPlacer: func(orientation, rng float64) Placer {
		return MultiLine{Orientation: orientation, Range: rng}
	},
	Depth: arrowDepth,
}

var raidPolicy = Policy{
	Kind:   KindRaid,
	Center: FrontRowCenter(raidRowCapacity),
	NewPlacer: func(orientation, rng float64) Placer {
		return RaidGrid{Orientation: orientation, Range: rng}
	},
	Depth: raidDepth,
}

// arrowDepth is one range per line, counting 1 + size/6 lines. Empty slots
// still take a line.
func arrowDepth(size int, rng float64) float64 {
	lines := 1 + size/multiLineCapacity
	return float64(lines) * rng
}

func raidDepth(size int, rng float64) float64 {
	if size == 0 {
		return 0
	}
	rows := int(math.Ceil(float64(size) / raidRowCapacity))
	return float64(rows-1)*rng*raidLineSpacing + rng*raidGroupGap
}
