package qshadow

import (
	"context"
	"errors"
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestEstimator(t *testing.T) {
	Convey("Given measured rounds on two qubits", t, func() {
		measurements := []MeasuredRound{
			{{PauliX, 1}, {PauliX, 1}},
			{{PauliX, 1}, {PauliX, -1}},
			{{PauliX, -1}, {PauliX, -1}},
			{{PauliZ, 1}, {PauliX, 1}},
		}

		Convey("Only rounds matching every factor should count", func() {
			sum, matches, err := Estimate(measurements, Observable{0: PauliX, 1: PauliX})
			So(err, ShouldBeNil)
			So(sum, ShouldEqual, 1)
			So(matches, ShouldEqual, 3)
		})

		Convey("Predict should average over matching rounds", func() {
			v, err := Predict(measurements, Observable{1: PauliX})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 0)

			v, err = Predict(measurements, Observable{0: PauliZ})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 1)
		})

		Convey("An observable nothing matched should be undefined", func() {
			v, err := Predict(measurements, Observable{0: PauliY})
			So(errors.Is(err, ErrNoMatchingRounds), ShouldBeTrue)
			So(math.IsNaN(v), ShouldBeTrue)
		})

		Convey("A qubit outside the measurement should be an error", func() {
			_, _, err := Estimate(measurements, Observable{2: PauliX})
			So(err, ShouldNotBeNil)
		})

		Convey("PredictAll should keep the observable order", func() {
			predictions, err := PredictAll(context.Background(), measurements, []Observable{
				{0: PauliX, 1: PauliX},
				{0: PauliY},
				{0: PauliZ, 1: PauliX},
			}, 2)
			So(err, ShouldBeNil)
			So(predictions, ShouldHaveLength, 3)

			So(predictions[0].Defined, ShouldBeTrue)
			So(predictions[0].Value, ShouldAlmostEqual, 1.0/3.0, 1e-12)
			So(predictions[1].Defined, ShouldBeFalse)
			So(math.IsNaN(predictions[1].Value), ShouldBeTrue)
			So(predictions[2].Value, ShouldEqual, 1)
			So(predictions[2].Matches, ShouldEqual, 1)
		})

		Convey("PredictAll should fail the batch on a bad observable", func() {
			_, err := PredictAll(context.Background(), measurements, []Observable{{5: PauliX}}, 1)
			So(err, ShouldNotBeNil)
		})
	})
}
