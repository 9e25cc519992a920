package qshadow

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestPauli(t *testing.T) {
	Convey("Given the pauli tags", t, func() {
		Convey("They should print and parse symmetrically", func() {
			for _, p := range Paulis {
				parsed, err := ParsePauli(p.String())
				So(err, ShouldBeNil)
				So(parsed, ShouldEqual, p)
			}
		})

		Convey("Parsing should ignore case", func() {
			p, err := ParsePauli("y")
			So(err, ShouldBeNil)
			So(p, ShouldEqual, PauliY)
		})

		Convey("Unknown tags should be parse errors", func() {
			_, err := ParsePauli("I")
			So(errors.Is(err, ErrParse), ShouldBeTrue)
			So(Pauli(7).Valid(), ShouldBeFalse)
		})
	})
}

func TestRound(t *testing.T) {
	Convey("Given a round", t, func() {
		round := Round{PauliZ, PauliX, PauliY}

		Convey("It should round-trip through its string form", func() {
			So(round.String(), ShouldEqual, "Z X Y")

			parsed, err := ParseRound(round.String())
			So(err, ShouldBeNil)
			So(parsed, ShouldResemble, round)
		})

		Convey("It should match observables it measures in the right basis", func() {
			So(round.Matches(Observable{0: PauliZ, 2: PauliY}), ShouldBeTrue)
			So(round.Matches(Observable{1: PauliY}), ShouldBeFalse)
			So(round.Matches(Observable{3: PauliX}), ShouldBeFalse)
			So(round.Matches(Observable{}), ShouldBeTrue)
		})
	})
}
