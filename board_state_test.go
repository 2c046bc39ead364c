package viamtictactoe

import (
	"testing"

	"go.viam.com/test"
)

func TestParseBoard(t *testing.T) {
	b, err := ParseBoard("B-W/-b-/--w")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, b.Size(), test.ShouldEqual, 3)
	test.That(t, b.At(0, 0), test.ShouldEqual, Black)
	test.That(t, b.At(0, 2), test.ShouldEqual, White)
	test.That(t, b.At(1, 1), test.ShouldEqual, Black)
	test.That(t, b.At(2, 2), test.ShouldEqual, White)
	test.That(t, b.Count(Empty), test.ShouldEqual, 5)
	test.That(t, b.Compact(), test.ShouldEqual, "B-W/-B-/--W")

	_, err = ParseBoard("B-/--/---")
	test.That(t, err, test.ShouldNotBeNil)

	_, err = ParseBoard("X--/---/---")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestBoardWithCopies(t *testing.T) {
	a := NewBoard(3)
	b := a.With(1, 2, White)
	test.That(t, a.At(1, 2), test.ShouldEqual, Empty)
	test.That(t, b.At(1, 2), test.ShouldEqual, White)
	test.That(t, a.Equal(b), test.ShouldBeFalse)
	test.That(t, a.Equal(NewBoard(3)), test.ShouldBeTrue)
	test.That(t, a.Equal(NewBoard(4)), test.ShouldBeFalse)
}

func TestIsWinnerEveryLine(t *testing.T) {
	lines := []string{
		"WWW/---/---",
		"---/WWW/---",
		"---/---/WWW",
		"W--/W--/W--",
		"-W-/-W-/-W-",
		"--W/--W/--W",
		"W--/-W-/--W",
		"--W/-W-/W--",
	}
	test.That(t, len(winLines(3)), test.ShouldEqual, len(lines))

	for _, l := range lines {
		b := mustParseBoard(l)
		test.That(t, IsWinner(b, White), test.ShouldBeTrue)
		test.That(t, IsWinner(b, Black), test.ShouldBeFalse)
	}

	test.That(t, IsWinner(mustParseBoard("WWB/BBW/WWB"), White), test.ShouldBeFalse)
	test.That(t, IsWinner(mustParseBoard("WWB/BBW/WWB"), Black), test.ShouldBeFalse)
	test.That(t, IsWinner(NewBoard(3), Empty), test.ShouldBeFalse)
}

func TestIsFull(t *testing.T) {
	test.That(t, mustParseBoard("WWB/BBW/WWB").IsFull(), test.ShouldBeTrue)
	test.That(t, mustParseBoard("WWB/B-W/WWB").IsFull(), test.ShouldBeFalse)
	test.That(t, Board{}.IsFull(), test.ShouldBeFalse)
}

func TestFixtures(t *testing.T) {
	test.That(t, MatchesFixture(BlackFixture), test.ShouldBeTrue)
	test.That(t, MatchesFixture(WhiteFixture), test.ShouldBeTrue)
	test.That(t, MatchesFixture(mustParseBoard("B-W/-B-/B-B")), test.ShouldBeFalse)
	test.That(t, MatchesFixture(mustParseBoard("B-B/---/B-B")), test.ShouldBeFalse)
	test.That(t, MatchesFixture(NewBoard(3)), test.ShouldBeFalse)

	four := CalibrationFixtures(4)
	test.That(t, len(four), test.ShouldEqual, 2)
	test.That(t, four[0].Compact(), test.ShouldEqual, "B--B/----/----/B--B")
	test.That(t, fixtureFor(3, White).Equal(WhiteFixture), test.ShouldBeTrue)
}

func TestBoardString(t *testing.T) {
	s := mustParseBoard("B--/-W-/---").String()
	t.Logf("\n%s", s)
	test.That(t, s, test.ShouldContainSubstring, "0 |  B  |  -  |  -  |")
	test.That(t, s, test.ShouldContainSubstring, "1 |  -  |  W  |  -  |")
}

func TestSymbol(t *testing.T) {
	test.That(t, Black.Opponent(), test.ShouldEqual, White)
	test.That(t, White.Opponent(), test.ShouldEqual, Black)
	test.That(t, Empty.Opponent(), test.ShouldEqual, Empty)

	s, err := ParseSymbol(" w ")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s, test.ShouldEqual, White)

	_, err = ParseSymbol("x")
	test.That(t, err, test.ShouldNotBeNil)
}
