package qshadow

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
)

// Prediction is the estimated expectation value of one observable.
type Prediction struct {
	Value   float64
	Sum     int
	Matches int
	Defined bool
}

/*
Estimate sums, over the rounds that measured every factor of obs in the
required basis, the product of the outcomes on those qubits. It also
returns how many rounds matched.
*/
func Estimate(measurements []MeasuredRound, obs Observable) (sum, matches int, err error) {
	terms := obs.Terms()

	for n, round := range measurements {
		product := 1
		matched := true

		for _, term := range terms {
			if term.Qubit < 0 || term.Qubit >= len(round) {
				return 0, 0, fmt.Errorf("measurement %d has no qubit %d", n, term.Qubit)
			}

			outcome := round[term.Qubit]
			if outcome.Pauli != term.Pauli {
				matched = false
				break
			}

			product *= outcome.Value
		}

		if matched {
			sum += product
			matches++
		}
	}

	return sum, matches, nil
}

// Predict is the empirical mean over matching rounds.
func Predict(measurements []MeasuredRound, obs Observable) (float64, error) {
	sum, matches, err := Estimate(measurements, obs)
	if err != nil {
		return 0, err
	}

	if matches == 0 {
		return math.NaN(), ErrNoMatchingRounds
	}

	return float64(sum) / float64(matches), nil
}

/*
PredictAll estimates every observable, spreading the work over at most
workers goroutines. Results keep the order of observables. An observable no
round matches yields a Prediction with Defined false and a NaN value rather
than failing the batch.
*/
func PredictAll(
	ctx context.Context,
	measurements []MeasuredRound,
	observables []Observable,
	workers int,
) ([]Prediction, error) {
	predictions := make([]Prediction, len(observables))

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i, obs := range observables {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			sum, matches, err := Estimate(measurements, obs)
			if err != nil {
				return fmt.Errorf("observable %d: %w", i, err)
			}

			p := Prediction{Sum: sum, Matches: matches, Value: math.NaN()}
			if matches > 0 {
				p.Value = float64(sum) / float64(matches)
				p.Defined = true
			}

			predictions[i] = p
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return predictions, nil
}
