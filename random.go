package qshadow

import "math/rand/v2"

// NewSource returns a PCG generator so randomized runs can be replayed
// from a seed.
func NewSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

/*
RandomizedShadow draws numRounds rounds with an independent, uniformly
random basis for every qubit. It is the baseline the derandomized
scheduler improves on.
*/
func RandomizedShadow(rng *rand.Rand, numRounds, systemSize int) []Round {
	rounds := make([]Round, 0, numRounds)

	for range numRounds {
		round := make(Round, systemSize)
		for q := range round {
			round[q] = Paulis[rng.IntN(len(Paulis))]
		}
		rounds = append(rounds, round)
	}

	return rounds
}
