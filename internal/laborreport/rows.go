package laborreport

import (
	"strings"
	"unicode"
)

type RowKind int

const (
	RowIgnored RowKind = iota
	RowSkip
	RowShiftBoundary
	RowAssociate
)

func (k RowKind) String() string {
	switch k {
	case RowSkip:
		return "skip"
	case RowShiftBoundary:
		return "shift-boundary"
	case RowAssociate:
		return "associate"
	default:
		return "ignored"
	}
}

type boundaryMarker struct {
	text     string
	boundary Boundary
}

// RowClassifier tags report rows and tracks which shift block the current row
// belongs to. Shift subtotal rows are checked before generic subtotal rows
// since their text also contains "total".
type RowClassifier struct {
	cells      int
	boundaries []boundaryMarker
	skip       []string
	state      Shift
}

func NewRowClassifier(layout Layout) *RowClassifier {
	return &RowClassifier{
		cells: layout.ClassifyCells,
		boundaries: []boundaryMarker{
			{text: fold(layout.Shift1Boundary), boundary: EndOfShift1},
			{text: fold(layout.Shift2Boundary), boundary: EndOfShift2},
		},
		skip:  foldAll(layout.SkipMarkers),
		state: Shift1,
	}
}

// Shift is the shift active for the rows that follow the last boundary.
func (c *RowClassifier) Shift() Shift {
	return c.state
}

func (c *RowClassifier) Classify(row []string) RowKind {
	head := row
	if len(head) > c.cells {
		head = head[:c.cells]
	}

	folded := make([]string, len(head))
	for i, cell := range head {
		folded[i] = fold(cell)
	}

	if b, ok := c.boundary(folded); ok {
		c.state = c.state.Next(b)
		return RowShiftBoundary
	}

	joined := strings.Join(folded, " ")
	for _, marker := range c.skip {
		if strings.Contains(joined, marker) {
			return RowSkip
		}
	}

	for _, cell := range folded {
		for _, token := range words(cell) {
			if isIdentifierToken(token) || isWordToken(token, 2) {
				return RowAssociate
			}
		}
	}
	return RowIgnored
}

func (c *RowClassifier) boundary(cells []string) (Boundary, bool) {
	for _, cell := range cells {
		for _, m := range c.boundaries {
			if m.text != "" && strings.Contains(cell, m.text) {
				return m.boundary, true
			}
		}
	}
	return 0, false
}

func isIdentifierToken(token string) bool {
	if len(token) < 4 {
		return false
	}
	for _, r := range token {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// isWordToken reports an alphabetic token longer than minLen that is not part
// of a shift label.
func isWordToken(token string, minLen int) bool {
	if len([]rune(token)) <= minLen {
		return false
	}
	for _, r := range token {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return !strings.Contains(strings.ToLower(token), "shift")
}
