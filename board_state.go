package viamtictactoe

import (
	"fmt"
	"strings"
)

// Symbol is what a single cell of the board holds.
type Symbol byte

const (
	Empty Symbol = '-'
	Black Symbol = 'B'
	White Symbol = 'W'
)

func (s Symbol) String() string {
	return string(s)
}

// Opponent returns the other piece color. Empty has no opponent.
func (s Symbol) Opponent() Symbol {
	switch s {
	case Black:
		return White
	case White:
		return Black
	}
	return Empty
}

// ParseSymbol accepts "B", "W" or "-" (case insensitive).
func ParseSymbol(s string) (Symbol, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "B":
		return Black, nil
	case "W":
		return White, nil
	case "-", "":
		return Empty, nil
	}
	return Empty, fmt.Errorf("bad symbol %q", s)
}

const defaultGridSize = 3

// Cell is a (row, col) position on the board.
type Cell struct {
	Row, Col int
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Move is the cell the computer decided to play.
type Move Cell

func (m Move) String() string {
	return Cell(m).String()
}

// Board is an N x N grid of symbols, stored row-major.
// A Board is never modified in place once handed out; With returns a copy.
type Board struct {
	size  int
	cells []Symbol
}

// NewBoard returns an all-empty board.
func NewBoard(size int) Board {
	b := Board{size: size, cells: make([]Symbol, size*size)}
	for i := range b.cells {
		b.cells[i] = Empty
	}
	return b
}

func (b Board) Size() int {
	return b.size
}

func (b Board) At(row, col int) Symbol {
	return b.cells[row*b.size+col]
}

func (b Board) inside(row, col int) bool {
	return row >= 0 && row < b.size && col >= 0 && col < b.size
}

// With returns a copy of b with (row, col) set to s.
func (b Board) With(row, col int, s Symbol) Board {
	n := Board{size: b.size, cells: make([]Symbol, len(b.cells))}
	copy(n.cells, b.cells)
	n.cells[row*b.size+col] = s
	return n
}

func (b Board) IsFull() bool {
	for _, s := range b.cells {
		if s == Empty {
			return false
		}
	}
	return b.size > 0
}

func (b Board) Equal(other Board) bool {
	if b.size != other.size {
		return false
	}
	for i := range b.cells {
		if b.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}

// Count returns how many cells hold s.
func (b Board) Count(s Symbol) int {
	n := 0
	for _, c := range b.cells {
		if c == s {
			n++
		}
	}
	return n
}

// winLines returns every row, every column and both diagonals.
func winLines(size int) [][]Cell {
	lines := [][]Cell{}
	for i := 0; i < size; i++ {
		row := make([]Cell, size)
		col := make([]Cell, size)
		for j := 0; j < size; j++ {
			row[j] = Cell{i, j}
			col[j] = Cell{j, i}
		}
		lines = append(lines, row, col)
	}
	diag := make([]Cell, size)
	anti := make([]Cell, size)
	for i := 0; i < size; i++ {
		diag[i] = Cell{i, i}
		anti[i] = Cell{size - 1 - i, i}
	}
	return append(lines, diag, anti)
}

// IsWinner reports whether s fills any complete line of b.
func IsWinner(b Board, s Symbol) bool {
	if s == Empty || b.size == 0 {
		return false
	}
	for _, line := range winLines(b.size) {
		all := true
		for _, c := range line {
			if b.At(c.Row, c.Col) != s {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

// Compact renders the board row-major with '/' between rows, e.g. "B-B/-B-/B-B".
func (b Board) Compact() string {
	var sb strings.Builder
	for r := 0; r < b.size; r++ {
		if r > 0 {
			sb.WriteByte('/')
		}
		for c := 0; c < b.size; c++ {
			sb.WriteByte(byte(b.At(r, c)))
		}
	}
	return sb.String()
}

// String prints the board with row and column numbers.
func (b Board) String() string {
	var sb strings.Builder
	sep := "  -" + strings.Repeat("-", 6*b.size) + "\n"
	sb.WriteString("  |")
	for c := 0; c < b.size; c++ {
		fmt.Fprintf(&sb, "  %d  |", c)
	}
	sb.WriteString("\n")
	sb.WriteString(sep)
	for r := 0; r < b.size; r++ {
		fmt.Fprintf(&sb, "%d |", r)
		for c := 0; c < b.size; c++ {
			fmt.Fprintf(&sb, "  %s  |", b.At(r, c))
		}
		sb.WriteString("\n")
		sb.WriteString(sep)
	}
	return sb.String()
}

// ParseBoard reads the Compact form. Rows must all have the same length as the number of rows.
func ParseBoard(s string) (Board, error) {
	rows := strings.Split(strings.TrimSpace(s), "/")
	size := len(rows)
	b := NewBoard(size)
	for r, row := range rows {
		if len(row) != size {
			return Board{}, fmt.Errorf("row %d of %q has %d cells, want %d", r, s, len(row), size)
		}
		for c := 0; c < size; c++ {
			sym, err := ParseSymbol(row[c : c+1])
			if err != nil {
				return Board{}, fmt.Errorf("cell (%d,%d) of %q: %w", r, c, s, err)
			}
			b.cells[r*size+c] = sym
		}
	}
	return b, nil
}

func mustParseBoard(s string) Board {
	b, err := ParseBoard(s)
	if err != nil {
		panic(err)
	}
	return b
}

// The operator lays one of these out before calibration so a candidate contour
// can be confirmed as the board.
var (
	BlackFixture = mustParseBoard("B-B/-B-/B-B")
	WhiteFixture = mustParseBoard("W-W/-W-/W-W")
)

// fixtureFor builds the corners+center arrangement for any grid size.
func fixtureFor(size int, s Symbol) Board {
	b := NewBoard(size)
	if size == 0 {
		return b
	}
	last := size - 1
	for _, c := range []Cell{{0, 0}, {0, last}, {last, 0}, {last, last}} {
		b = b.With(c.Row, c.Col, s)
	}
	if size%2 == 1 {
		b = b.With(size/2, size/2, s)
	}
	return b
}

// CalibrationFixtures returns the accepted lock-on patterns for a grid size.
func CalibrationFixtures(size int) []Board {
	if size == defaultGridSize {
		return []Board{BlackFixture, WhiteFixture}
	}
	return []Board{fixtureFor(size, Black), fixtureFor(size, White)}
}

// MatchesFixture reports whether b equals any calibration fixture.
func MatchesFixture(b Board) bool {
	for _, f := range CalibrationFixtures(b.size) {
		if b.Equal(f) {
			return true
		}
	}
	return false
}
