package laborreport

import "fmt"

type Shift int

const (
	Shift1 Shift = iota + 1
	Shift2
)

// Boundary is a subtotal row that closes a shift's block of associates.
type Boundary int

const (
	EndOfShift1 Boundary = iota + 1
	EndOfShift2
)

var shiftTransitions = map[Shift]map[Boundary]Shift{
	Shift1: {EndOfShift1: Shift2, EndOfShift2: Shift1},
	Shift2: {EndOfShift1: Shift2, EndOfShift2: Shift1},
}

func (s Shift) Next(b Boundary) Shift {
	if next, ok := shiftTransitions[s][b]; ok {
		return next
	}
	return s
}

func (s Shift) String() string {
	switch s {
	case Shift1:
		return "shift1"
	case Shift2:
		return "shift2"
	default:
		return fmt.Sprintf("shift(%d)", int(s))
	}
}

func (s Shift) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Shift) UnmarshalText(text []byte) error {
	switch string(text) {
	case "shift1":
		*s = Shift1
	case "shift2":
		*s = Shift2
	default:
		return fmt.Errorf("unknown shift %q", string(text))
	}
	return nil
}
