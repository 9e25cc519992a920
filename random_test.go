package qshadow

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRandomizedShadow(t *testing.T) {
	Convey("Given a seeded source", t, func() {
		rounds := RandomizedShadow(NewSource(42), 20, 6)

		Convey("It should produce the requested shape", func() {
			So(rounds, ShouldHaveLength, 20)
			for _, r := range rounds {
				So(r, ShouldHaveLength, 6)
				for _, p := range r {
					So(p.Valid(), ShouldBeTrue)
				}
			}
		})

		Convey("The same seed should replay the same rounds", func() {
			So(RandomizedShadow(NewSource(42), 20, 6), ShouldResemble, rounds)
		})

		Convey("A different seed should give different rounds", func() {
			So(RandomizedShadow(NewSource(43), 20, 6), ShouldNotResemble, rounds)
		})

		Convey("Every basis should show up", func() {
			seen := map[Pauli]bool{}
			for _, r := range rounds {
				for _, p := range r {
					seen[p] = true
				}
			}
			So(seen, ShouldHaveLength, 3)
		})
	})
}
