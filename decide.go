package viamtictactoe

import (
	"errors"
	"fmt"
)

// ErrNoMoveAvailable is returned when every cell is taken. Callers treat it as the end of the game.
var ErrNoMoveAvailable = errors.New("no move available")

// Rand is the randomness used to break ties inside a tactic tier.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

// Tactic is a priority level of the decision order.
type Tactic int

const (
	TacticNone Tactic = iota
	TacticWin
	TacticBlock
	TacticCorner
	TacticCenter
	TacticSide
)

func (t Tactic) String() string {
	switch t {
	case TacticWin:
		return "winning"
	case TacticBlock:
		return "blocking"
	case TacticCorner:
		return "corner"
	case TacticCenter:
		return "center"
	case TacticSide:
		return "side"
	}
	return "none"
}

// Decide picks the computer's next cell: win, block, corner, center, side.
// Win and block take the first cell in row-major order; corner and side pick at random among the free ones.
func Decide(b Board, computer, opponent Symbol, rng Rand) (Move, Tactic, error) {
	if computer == Empty || opponent == Empty || computer == opponent {
		return Move{}, TacticNone, fmt.Errorf("bad symbols computer=%v opponent=%v", computer, opponent)
	}

	if m, ok := completingMove(b, computer); ok {
		return m, TacticWin, nil
	}

	if m, ok := completingMove(b, opponent); ok {
		return m, TacticBlock, nil
	}

	last := b.Size() - 1
	corners := freeCells(b, []Cell{{0, 0}, {0, last}, {last, 0}, {last, last}})
	if len(corners) > 0 {
		return Move(corners[rng.IntN(len(corners))]), TacticCorner, nil
	}

	if b.Size()%2 == 1 {
		mid := b.Size() / 2
		if b.At(mid, mid) == Empty {
			return Move{mid, mid}, TacticCenter, nil
		}
	}

	// on a 3x3 board everything left is an edge center
	sides := freeCells(b, allCells(b.Size()))
	if len(sides) > 0 {
		return Move(sides[rng.IntN(len(sides))]), TacticSide, nil
	}

	return Move{}, TacticNone, ErrNoMoveAvailable
}

// completingMove tries s in every empty cell and returns the first one that wins.
func completingMove(b Board, s Symbol) (Move, bool) {
	for r := 0; r < b.Size(); r++ {
		for c := 0; c < b.Size(); c++ {
			if b.At(r, c) != Empty {
				continue
			}
			if IsWinner(b.With(r, c, s), s) {
				return Move{r, c}, true
			}
		}
	}
	return Move{}, false
}

func freeCells(b Board, candidates []Cell) []Cell {
	free := []Cell{}
	seen := map[Cell]bool{}
	for _, c := range candidates {
		if seen[c] || !b.inside(c.Row, c.Col) {
			continue
		}
		seen[c] = true
		if b.At(c.Row, c.Col) == Empty {
			free = append(free, c)
		}
	}
	return free
}

func allCells(size int) []Cell {
	cells := make([]Cell, 0, size*size)
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			cells = append(cells, Cell{r, c})
		}
	}
	return cells
}
