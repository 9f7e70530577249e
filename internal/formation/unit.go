package formation

// Unit is one member's record inside a slot.
type Unit struct {
	// EnumIndex is the member's roster enumeration index at build time.
	EnumIndex int
	// Master marks the followed unit. At most one per Formation.
	Master bool
	Offset Position
}

func newUnit(enumIndex int, master bool) Unit {
	return Unit{EnumIndex: enumIndex, Master: master}
}
