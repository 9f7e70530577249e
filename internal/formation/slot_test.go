package formation

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func fillSlot(s *Slot, n int) {
	for i := 0; i < n; i++ {
		s.AddLast(newUnit(i, false))
	}
}

func enumOrder(s *Slot) []int {
	var out []int
	for _, u := range s.Units() {
		out = append(out, u.EnumIndex)
	}
	return out
}

func TestInsertAtCenter_EmptySlot(t *testing.T) {
	for name, s := range map[string]*Slot{
		"arrow": NewSlot(ListCenter),
		"raid":  NewSlot(FrontRowCenter(raidRowCapacity)),
	} {
		idx := s.InsertAtCenter(newUnit(7, true))
		if s.Size() != 1 || idx != 0 {
			t.Fatalf("%s: expected size 1 at index 0, got size %d index %d", name, s.Size(), idx)
		}
		if u, _ := s.Unit(0); !u.Master || u.EnumIndex != 7 {
			t.Fatalf("%s: expected master unit 7 at index 0, got %+v", name, u)
		}
	}
}

func TestInsertAtCenter_Cases(t *testing.T) {
	tests := []struct {
		name   string
		center CenterRule
		before int
		want   int
	}{
		{"arrow one", ListCenter, 1, 1},
		{"arrow four", ListCenter, 4, 2},
		{"arrow five", ListCenter, 5, 3},
		{"arrow six", ListCenter, 6, 3},
		{"raid one", FrontRowCenter(5), 1, 1},
		{"raid four", FrontRowCenter(5), 4, 2},
		{"raid six stays in front row", FrontRowCenter(5), 6, 2},
		{"raid twelve", FrontRowCenter(5), 12, 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := NewSlot(tc.center)
			fillSlot(s, tc.before)
			idx := s.InsertAtCenter(newUnit(99, true))
			if idx != tc.want {
				t.Fatalf("expected index %d, got %d", tc.want, idx)
			}
			if s.Size() != tc.before+1 {
				t.Fatalf("expected size %d, got %d", tc.before+1, s.Size())
			}
			if u, _ := s.Unit(tc.want); u.EnumIndex != 99 {
				t.Fatalf("unit at %d is %+v, want the inserted master", tc.want, u)
			}
		})
	}
}

func TestInsertAtCenter_PreservesOrder(t *testing.T) {
	s := NewSlot(FrontRowCenter(5))
	fillSlot(s, 6)
	s.InsertAtCenter(newUnit(99, true))
	want := []int{0, 1, 99, 2, 3, 4, 5}
	if diff := cmp.Diff(want, enumOrder(s)); diff != "" {
		t.Fatalf("slot order mismatch (-want +got):\n%s", diff)
	}
}

func TestNewSlot_NilRuleUsesListCenter(t *testing.T) {
	s := NewSlot(nil)
	fillSlot(s, 6)
	if idx := s.InsertAtCenter(newUnit(99, true)); idx != 3 {
		t.Fatalf("expected list centre 3, got %d", idx)
	}
}

func TestPlaceUnitsThenMove(t *testing.T) {
	s := NewSlot(nil)
	fillSlot(s, 3)
	s.PlaceUnits(SingleLine{Orientation: 0, Range: 2})
	s.Move(-10, 1)
	got := s.Units()
	for i, u := range got {
		want := SingleLine{Orientation: 0, Range: 2}.Place(u, i, 3).Add(-10, 1)
		if u.Offset != want {
			t.Fatalf("unit %d: got %+v, want %+v", i, u.Offset, want)
		}
		if u.EnumIndex != i {
			t.Fatalf("placement reordered units: index %d holds %d", i, u.EnumIndex)
		}
	}
}

func TestSlotUnit_OutOfRange(t *testing.T) {
	s := NewSlot(nil)
	if _, ok := s.Unit(0); ok {
		t.Fatalf("empty slot should not return a unit")
	}
	fillSlot(s, 1)
	if _, ok := s.Unit(-1); ok {
		t.Fatalf("negative index should not return a unit")
	}
}
