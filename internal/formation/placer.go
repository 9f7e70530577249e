package formation

// Placer computes the offset of the unit at index within a slot of count units.
type Placer interface {
	Place(u Unit, index, count int) Position
}

const (
	// multiLineCapacity is the row width of the arrow layout.
	multiLineCapacity = 6

	// raidRowCapacity is the row width of the raid grid.
	raidRowCapacity = 5
	raidLineSpacing = 0.2 // fraction of range between raid rows
	raidUnitSpacing = 0.2 // fraction of range between units in a raid row
	raidGroupGap    = 0.5 // fraction of range between consecutive role groups
)

// SingleLine spreads units on one line perpendicular to the orientation,
// range apart.
type SingleLine struct {
	Orientation float64
	Range       float64
}

// Place implements Placer.
func (p SingleLine) Place(_ Unit, index, count int) Position {
	lx, ly := lateral(p.Orientation)
	k := p.Range * (float64(index) - float64(count)/2)
	return Position{X: lx * k, Y: ly * k}
}

// MultiLine wraps a slot into rows of six. Rows share one depth; the slot is
// pushed back as a whole by the Formation.
type MultiLine struct {
	Orientation float64
	Range       float64
}

// Place implements Placer.
func (p MultiLine) Place(u Unit, index, count int) Position {
	line := SingleLine{Orientation: p.Orientation, Range: p.Range}
	if count <= multiLineCapacity {
		return line.Place(u, index, count)
	}

	lineNo := index / multiLineCapacity
	indexInLine := index % multiLineCapacity
	// The reported width never drops below a full row.
	lineSize := max(count-lineNo*multiLineCapacity, multiLineCapacity)
	return line.Place(u, indexInLine, lineSize)
}

// RaidGrid wraps a slot into rows of five, each row one line spacing further
// back and odd rows staggered by half a unit spacing.
type RaidGrid struct {
	Orientation float64
	Range       float64
}

// Place implements Placer.
func (p RaidGrid) Place(_ Unit, index, count int) Position {
	lineNo := index / raidRowCapacity
	indexInLine := index % raidRowCapacity
	lineSize := min(count-lineNo*raidRowCapacity, raidRowCapacity)

	lineSpacing := p.Range * raidLineSpacing
	unitSpacing := p.Range * raidUnitSpacing

	stagger := 0.0
	if lineNo%2 == 1 {
		stagger = unitSpacing * 0.5
	}

	side := (float64(indexInLine)-float64(lineSize-1)/2)*unitSpacing + stagger
	depth := lineSpacing * float64(lineNo)

	lx, ly := lateral(p.Orientation)
	fx, fy := facing(p.Orientation)
	return Position{
		X: lx*side - fx*depth,
		Y: ly*side - fy*depth,
	}
}
