package viamtictactoe

import (
	"errors"
	"testing"

	"go.viam.com/test"
)

func TestEncodeMove(t *testing.T) {
	wire, next, err := EncodeMove(Move{1, 2}, 3)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, wire, test.ShouldEqual, "#n03#p12$")
	test.That(t, next, test.ShouldEqual, 4)

	wire, next, err = EncodeMove(Move{0, 0}, 9)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, wire, test.ShouldEqual, "#n09#p00$")
	test.That(t, next, test.ShouldEqual, 10)
}

func TestEncodeMoveOperandRange(t *testing.T) {
	wire, next, err := EncodeMove(Move{2, 2}, 10)
	test.That(t, errors.Is(err, ErrOperandRange), test.ShouldBeTrue)
	test.That(t, wire, test.ShouldEqual, "")
	test.That(t, next, test.ShouldEqual, 10)

	_, next, err = EncodeMove(Move{-1, 0}, 4)
	test.That(t, errors.Is(err, ErrOperandRange), test.ShouldBeTrue)
	test.That(t, next, test.ShouldEqual, 4)
}

func TestExpandMove(t *testing.T) {
	instrs := ExpandMove(Move{2, 1}, 5)
	test.That(t, instrs, test.ShouldResemble, []Instruction{
		{Op: OpNewPiece, A: 0, B: 5},
		{Op: OpPlacePiece, A: 2, B: 1},
	})
	test.That(t, instrs[0].String(), test.ShouldEqual, "#n05")
	test.That(t, instrs[1].String(), test.ShouldEqual, "#p21")
}

func TestEncodeSequence(t *testing.T) {
	_, err := EncodeSequence(nil)
	test.That(t, errors.Is(err, ErrBadSequence), test.ShouldBeTrue)

	_, err = EncodeSequence([]Instruction{{Op: 'x', A: 1, B: 1}})
	test.That(t, errors.Is(err, ErrBadSequence), test.ShouldBeTrue)
}

func TestAppendSequence(t *testing.T) {
	first, _, err := EncodeMove(Move{1, 1}, 0)
	test.That(t, err, test.ShouldBeNil)

	both, err := AppendSequence(first, ExpandMove(Move{0, 2}, 1))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, both, test.ShouldEqual, "#n00#p11#n01#p02$")

	fresh, err := AppendSequence("", ExpandMove(Move{0, 2}, 1))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, fresh, test.ShouldEqual, "#n01#p02$")

	_, err = AppendSequence("#n00#p1", ExpandMove(Move{0, 2}, 1))
	test.That(t, errors.Is(err, ErrBadSequence), test.ShouldBeTrue)
}

func TestParseSequence(t *testing.T) {
	instrs, err := ParseSequence("#n03#p12$")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, instrs, test.ShouldResemble, ExpandMove(Move{1, 2}, 3))

	for _, bad := range []string{
		"",
		"$",
		"#n03#p12",
		"#n03#p1$",
		"n03#p12$#",
		"#x03$",
		"#nA3$",
		"#n03#p12$$",
	} {
		_, err := ParseSequence(bad)
		test.That(t, err, test.ShouldNotBeNil)
	}
}
