package formation

import "math"

// Position is a planar (x, y) offset relative to a formation origin.
type Position struct {
	X float64
	Y float64
}

// Add returns p shifted by (dx, dy).
func (p Position) Add(dx, dy float64) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// Sub returns the vector from q to p.
func (p Position) Sub(q Position) Position {
	return Position{X: p.X - q.X, Y: p.Y - q.Y}
}

// WorldPoint is an absolute location on a map.
type WorldPoint struct {
	MapID uint32
	X     float64
	Y     float64
	Z     float64
}

// Unresolved is returned alongside an error when no point could be computed.
var Unresolved = WorldPoint{}

// InvalidHeight is the terrain sentinel; samples at or below it are rejected.
const InvalidHeight = -100000.0

// groundSampleLift is added to the anchor height before sampling terrain.
const groundSampleLift = 0.5

// groundClearance is added to a valid ground sample so the point sits just above it.
const groundClearance = 0.05

// facing returns the forward unit vector for an orientation in radians.
func facing(orientation float64) (float64, float64) {
	return math.Cos(orientation), math.Sin(orientation)
}

// lateral returns the unit vector 90° clockwise from the facing direction.
func lateral(orientation float64) (float64, float64) {
	angle := orientation - math.Pi/2
	return math.Cos(angle), math.Sin(angle)
}
