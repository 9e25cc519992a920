package qshadow

import (
	"math"
	"slices"
)

// Eta is the hyperparameter of the derandomization bound.
const Eta = 0.9

/*
costModel evaluates the per-observable exponent of the pessimistic
estimator the scheduler minimizes:

	(−η/2 · m + log(1 − ν/3^k)) / w,    ν = 1 − e^(−η/2)

where m counts full-match rounds so far, k is the number of factors still
unmatched in the current round and w is the observable's weight. The log
factor is dropped once the round can no longer complete the observable,
either because a factor conflicted or because k exceeds the system size.
*/
type costModel struct {
	halfEta    float64
	nu         float64
	systemSize int
}

func newCostModel(systemSize int) costModel {
	return costModel{
		halfEta:    Eta / 2,
		nu:         -math.Expm1(-Eta / 2),
		systemSize: systemSize,
	}
}

func (c costModel) exponent(measured int, weight float64, needed int, impossible bool) float64 {
	v := -c.halfEta * float64(measured)

	if !impossible && needed <= c.systemSize {
		// log1p keeps precision when ν/3^k is tiny.
		v += math.Log1p(-c.nu / math.Pow(3, float64(needed)))
	}

	return v / weight
}

// neumaier is a compensated running sum.
type neumaier struct {
	sum  float64
	comp float64
}

func (n *neumaier) add(v float64) {
	t := n.sum + v

	if math.Abs(n.sum) >= math.Abs(v) {
		n.comp += (n.sum - t) + v
	} else {
		n.comp += (v - t) + n.sum
	}

	n.sum = t
}

func (n *neumaier) value() float64 {
	return n.sum + n.comp
}

/*
stabilizer turns the exponents of one candidate basis into its log cost,
log Σ exp(v). The largest exponent is the shift, so every shifted term lies
in (0, 1] and the sum in [1, n]. Nothing overflows, and the dominant term
never underflows, however far apart the weights spread the exponents.

Exponents are summed in ascending order, so candidates with the same
multiset of exponents get bit-identical costs and the tie goes to the
earlier basis. The buffer is reused across candidates.
*/
type stabilizer struct {
	values []float64
}

func (s *stabilizer) reset() {
	s.values = s.values[:0]
}

func (s *stabilizer) observe(v float64) {
	s.values = append(s.values, v)
}

func (s *stabilizer) cost() float64 {
	if len(s.values) == 0 {
		return math.Inf(-1)
	}

	slices.Sort(s.values)
	shift := s.values[len(s.values)-1]

	var total neumaier
	for _, v := range s.values {
		total.add(math.Exp(v - shift))
	}

	return shift + math.Log(total.value())
}
