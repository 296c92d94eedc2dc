package machine

import "strings"

// Tape is a growable double-ended sequence of symbols with a stable
// logical coordinate frame. The backing slice grows lazily: one blank
// cell is prepended when the head falls off the left edge and one is
// appended when it falls off the right, realizing a bi-infinite tape.
// The offset counts cells prepended since the start, so a recorded
// physical head position can always be related back to logical tape
// coordinates (logical = physical − offset).
type Tape struct {
	cells  []Symbol
	head   int
	offset int
	blank  Symbol
}

// NewTape seeds a tape from input with the head at cell 0. An empty
// input yields a single blank cell.
func NewTape(input string, blank Symbol) Tape {
	cells := make([]Symbol, 0, len(input))
	for i := 0; i < len(input); i++ {
		cells = append(cells, Symbol(input[i]))
	}
	if len(cells) == 0 {
		cells = append(cells, blank)
	}
	return Tape{cells: cells, blank: blank}
}

// Read returns the symbol under the head; out-of-range positions read as
// blank.
func (t *Tape) Read() Symbol {
	if t.head < 0 || t.head >= len(t.cells) {
		return t.blank
	}
	return t.cells[t.head]
}

// Write replaces the symbol under the head.
func (t *Tape) Write(s Symbol) {
	t.cells[t.head] = s
}

// Move shifts the head one cell and expands the backing slice if the
// head fell off either edge.
func (t *Tape) Move(m Move) {
	switch m {
	case MoveLeft:
		t.head--
	case MoveRight:
		t.head++
	}
	t.expand()
}

func (t *Tape) expand() {
	if t.head < 0 {
		t.cells = append([]Symbol{t.blank}, t.cells...)
		t.offset++
		t.head = 0
		return
	}
	if t.head >= len(t.cells) {
		t.cells = append(t.cells, t.blank)
	}
}

// Head is the physical head position in the backing slice.
func (t *Tape) Head() int { return t.head }

// Logical is the head position in the coordinate frame of the original
// input (cell 0 = first input symbol, negatives to its left).
func (t *Tape) Logical() int { return t.head - t.offset }

// Len is the current physical tape length.
func (t *Tape) Len() int { return len(t.cells) }

// Clone returns an independent copy; the depth-first simulator clones
// before firing so backtracking restores the parent's tape untouched.
func (t *Tape) Clone() Tape {
	cells := make([]Symbol, len(t.cells))
	copy(cells, t.cells)
	return Tape{cells: cells, head: t.head, offset: t.offset, blank: t.blank}
}

// Snapshot renders the tape with the head cell bracketed, e.g. "11[0]0".
func (t *Tape) Snapshot() string {
	var b strings.Builder
	for i, c := range t.cells {
		if i == t.head {
			b.WriteByte('[')
			b.WriteByte(byte(c))
			b.WriteByte(']')
			continue
		}
		b.WriteByte(byte(c))
	}
	return b.String()
}

// Cells renders the raw tape contents without the head marker.
func (t *Tape) Cells() string {
	buf := make([]byte, len(t.cells))
	for i, c := range t.cells {
		buf[i] = byte(c)
	}
	return string(buf)
}
