package viamtictactoe

import (
	"errors"
	"fmt"
	"strings"
)

// Wire format sent to the arm controller:
//
//	Sequence    := Instruction+ "$"
//	Instruction := "#" Tag Digit Digit
//	Tag         := "n" | "p"
const (
	instructionStart = '#'
	sequenceEnd      = '$'
)

var (
	// ErrOperandRange means an operand does not fit in a single decimal digit.
	ErrOperandRange = errors.New("operand does not fit in one digit")
	ErrBadSequence  = errors.New("bad command sequence")
)

// Opcode is the single character tag of an instruction.
type Opcode byte

const (
	// OpNewPiece picks up the next unused piece from the dispenser; operands are 0 and the piece index.
	OpNewPiece Opcode = 'n'
	// OpPlacePiece drops the held piece on (row, col).
	OpPlacePiece Opcode = 'p'
)

type Instruction struct {
	Op   Opcode
	A, B int
}

func (in Instruction) String() string {
	return fmt.Sprintf("%c%c%d%d", instructionStart, in.Op, in.A, in.B)
}

func (in Instruction) validate() error {
	if in.Op != OpNewPiece && in.Op != OpPlacePiece {
		return fmt.Errorf("%w: unknown opcode %q", ErrBadSequence, in.Op)
	}
	for _, v := range []int{in.A, in.B} {
		if v < 0 || v > 9 {
			return fmt.Errorf("%w: %c %d", ErrOperandRange, in.Op, v)
		}
	}
	return nil
}

// ExpandMove turns a board move into the arm instructions: fetch piece newPiece, then place it.
func ExpandMove(m Move, newPiece int) []Instruction {
	return []Instruction{
		{Op: OpNewPiece, A: 0, B: newPiece},
		{Op: OpPlacePiece, A: m.Row, B: m.Col},
	}
}

// EncodeSequence renders instructions followed by the terminator.
func EncodeSequence(instrs []Instruction) (string, error) {
	if len(instrs) == 0 {
		return "", fmt.Errorf("%w: empty", ErrBadSequence)
	}
	var sb strings.Builder
	for _, in := range instrs {
		if err := in.validate(); err != nil {
			return "", err
		}
		sb.WriteString(in.String())
	}
	sb.WriteByte(sequenceEnd)
	return sb.String(), nil
}

// EncodeMove encodes m using piece index counter and returns the next counter.
// On error the counter is returned unchanged.
func EncodeMove(m Move, counter int) (string, int, error) {
	wire, err := EncodeSequence(ExpandMove(m, counter))
	if err != nil {
		return "", counter, err
	}
	return wire, counter + 1, nil
}

// AppendSequence adds instrs to an already terminated sequence.
func AppendSequence(existing string, instrs []Instruction) (string, error) {
	more, err := EncodeSequence(instrs)
	if err != nil {
		return "", err
	}
	if existing == "" {
		return more, nil
	}
	if _, err := ParseSequence(existing); err != nil {
		return "", err
	}
	return existing[:len(existing)-1] + more, nil
}

// ParseSequence is the inverse of EncodeSequence.
func ParseSequence(s string) ([]Instruction, error) {
	if len(s) < 5 || s[len(s)-1] != sequenceEnd {
		return nil, fmt.Errorf("%w: %q", ErrBadSequence, s)
	}
	body := s[:len(s)-1]
	if len(body)%4 != 0 {
		return nil, fmt.Errorf("%w: %q has a truncated instruction", ErrBadSequence, s)
	}

	instrs := []Instruction{}
	for i := 0; i < len(body); i += 4 {
		rec := body[i : i+4]
		if rec[0] != instructionStart || !isDigit(rec[2]) || !isDigit(rec[3]) {
			return nil, fmt.Errorf("%w: bad instruction %q", ErrBadSequence, rec)
		}
		in := Instruction{Op: Opcode(rec[1]), A: int(rec[2] - '0'), B: int(rec[3] - '0')}
		if err := in.validate(); err != nil {
			return nil, err
		}
		instrs = append(instrs, in)
	}
	return instrs, nil
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
