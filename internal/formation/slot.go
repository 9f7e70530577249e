package formation

// CenterRule picks the index at which the anchor is inserted into a slot of
// the given current size. A result >= size means append.
type CenterRule func(size int) int

// ListCenter inserts at the true centre of the whole list after insertion.
func ListCenter(size int) int {
	return (size + 1) / 2
}

// FrontRowCenter returns a CenterRule that centres only within the first row
// of rowCapacity units.
func FrontRowCenter(rowCapacity int) CenterRule {
	return func(size int) int {
		frontRow := min(size+1, rowCapacity)
		return frontRow / 2
	}
}

// Slot is an ordered group of units sharing one combat role. Insertion order
// is placement order.
type Slot struct {
	units  []Unit
	center CenterRule
}

// NewSlot creates an empty slot using the given centring rule. A nil rule
// falls back to ListCenter.
func NewSlot(center CenterRule) *Slot {
	if center == nil {
		center = ListCenter
	}
	return &Slot{center: center}
}

// AddLast appends u and returns its index.
func (s *Slot) AddLast(u Unit) int {
	s.units = append(s.units, u)
	return len(s.units) - 1
}

// InsertAtCenter inserts u at the index chosen by the slot's centring rule
// and returns that index.
func (s *Slot) InsertAtCenter(u Unit) int {
	idx := s.center(len(s.units))
	if idx >= len(s.units) {
		return s.AddLast(u)
	}
	if idx < 0 {
		idx = 0
	}
	s.units = append(s.units, Unit{})
	copy(s.units[idx+1:], s.units[idx:])
	s.units[idx] = u
	return idx
}

// PlaceUnits stores placer's offset on every unit, in order.
func (s *Slot) PlaceUnits(p Placer) {
	count := len(s.units)
	for i := range s.units {
		s.units[i].Offset = p.Place(s.units[i], i, count)
	}
}

// Move translates every unit's offset by (dx, dy).
func (s *Slot) Move(dx, dy float64) {
	for i := range s.units {
		s.units[i].Offset = s.units[i].Offset.Add(dx, dy)
	}
}

// Size is the member count.
func (s *Slot) Size() int {
	return len(s.units)
}

// Unit returns the unit at index i, or false when out of range.
func (s *Slot) Unit(i int) (Unit, bool) {
	if i < 0 || i >= len(s.units) {
		return Unit{}, false
	}
	return s.units[i], true
}

// Units returns a copy of the slot contents.
func (s *Slot) Units() []Unit {
	out := make([]Unit, len(s.units))
	copy(out, s.units)
	return out
}
