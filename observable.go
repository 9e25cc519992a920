package qshadow

import (
	"math"
	"sort"

	"github.com/theapemachine/errnie"
)

// Observable is a Pauli product: the basis each constrained qubit must be
// measured in. Qubits absent from the map are unconstrained.
type Observable map[int]Pauli

// Term is one (qubit, basis) factor of an observable.
type Term struct {
	Qubit int
	Pauli Pauli
}

// Len is the number of qubits the observable constrains.
func (o Observable) Len() int {
	return len(o)
}

// Terms returns the factors ordered by qubit index.
func (o Observable) Terms() []Term {
	terms := make([]Term, 0, len(o))
	for q, p := range o {
		terms = append(terms, Term{Qubit: q, Pauli: p})
	}

	sort.Slice(terms, func(i, j int) bool {
		return terms[i].Qubit < terms[j].Qubit
	})

	return terms
}

// Constraint is an entry of a qubit column: observable id requires Pauli.
type Constraint struct {
	ID    int
	Pauli Pauli
}

/*
ObservableSet holds the weighted observables of one run together with the
progress counters the scheduler mutates. The observables themselves never
change; satisfied ones are pruned from the active list, which only shrinks.
*/
type ObservableSet struct {
	systemSize  int
	observables []Observable
	lengths     []int
	weights     []float64
	targets     []int
	measured    []int

	// columns[q] lists every observable with a factor on qubit q.
	columns  [][]Constraint
	active   []int
	isActive []bool
}

/*
NewObservableSet validates the input and builds the per-qubit column index.

A nil weights slice means every observable carries weight 1. Each
observable needs floor(weight × measurementsPerObservable) fully matching
rounds; one whose target is 0 starts out satisfied.
*/
func NewObservableSet(
	systemSize int,
	observables []Observable,
	measurementsPerObservable int,
	weights []float64,
) (*ObservableSet, error) {
	if systemSize <= 0 {
		return nil, configError("system size must be positive, got %d", systemSize)
	}

	if measurementsPerObservable <= 0 {
		return nil, configError("measurements per observable must be positive, got %d", measurementsPerObservable)
	}

	if weights == nil {
		weights = make([]float64, len(observables))
		for i := range weights {
			weights[i] = 1.0
		}
	} else if len(weights) != len(observables) {
		return nil, configError("%d weights for %d observables", len(weights), len(observables))
	}

	set := &ObservableSet{
		systemSize:  systemSize,
		observables: observables,
		lengths:     make([]int, len(observables)),
		weights:     make([]float64, len(observables)),
		targets:     make([]int, len(observables)),
		measured:    make([]int, len(observables)),
		columns:     make([][]Constraint, systemSize),
		active:      make([]int, 0, len(observables)),
		isActive:    make([]bool, len(observables)),
	}

	for id, obs := range observables {
		w := weights[id]
		if math.IsNaN(w) || math.IsInf(w, 0) || w <= 0 {
			return nil, configError("observable %d: weight must be a positive finite number, got %v", id, w)
		}

		for _, term := range obs.Terms() {
			if term.Qubit < 0 || term.Qubit >= systemSize {
				return nil, configError("observable %d: qubit %d outside system of size %d", id, term.Qubit, systemSize)
			}
			if !term.Pauli.Valid() {
				return nil, configError("observable %d: invalid pauli on qubit %d", id, term.Qubit)
			}
			set.columns[term.Qubit] = append(set.columns[term.Qubit], Constraint{ID: id, Pauli: term.Pauli})
		}

		set.lengths[id] = obs.Len()
		set.weights[id] = w
		set.targets[id] = int(math.Floor(w * float64(measurementsPerObservable)))

		if set.targets[id] > 0 {
			set.active = append(set.active, id)
			set.isActive[id] = true
		}
	}

	errnie.Info(
		"NewObservableSet - systemSize %v, observables %v, active %v",
		systemSize,
		len(observables),
		len(set.active),
	)

	return set, nil
}

func (s *ObservableSet) Len() int { return len(s.observables) }
func (s *ObservableSet) SystemSize() int { return s.systemSize }

// Observable returns the observable with the given id.
func (s *ObservableSet) Observable(id int) Observable {
	return s.observables[id]
}

// RequiredMatches is the number of qubits observable id constrains.
func (s *ObservableSet) RequiredMatches(id int) int {
	return s.lengths[id]
}

func (s *ObservableSet) Weight(id int) float64 {
	return s.weights[id]
}

// Target is the number of full-match rounds observable id needs.
func (s *ObservableSet) Target(id int) int {
	return s.targets[id]
}

func (s *ObservableSet) MeasurementsSoFar(id int) int {
	return s.measured[id]
}

func (s *ObservableSet) Satisfied(id int) bool {
	return s.measured[id] >= s.targets[id]
}

// Active returns the ids still needing measurements, in increasing order.
// The slice is owned by the set and is only valid until the next prune.
func (s *ObservableSet) Active() []int {
	return s.active
}

// TotalTarget sums the targets of every observable.
func (s *ObservableSet) TotalTarget() int {
	total := 0
	for _, t := range s.targets {
		total += t
	}
	return total
}

/*
ObservablesConstraining returns the active observables with a factor on
qubit, in increasing id order. When round is non-nil, observables that can
no longer be fully matched in that round are left out as well.
*/
func (s *ObservableSet) ObservablesConstraining(qubit int, round *RoundState) []Constraint {
	if qubit < 0 || qubit >= s.systemSize {
		return nil
	}

	out := make([]Constraint, 0, len(s.columns[qubit]))
	for _, c := range s.columns[qubit] {
		if !s.isActive[c.ID] {
			continue
		}
		if round != nil && !round.Possible(c.ID) {
			continue
		}
		out = append(out, c)
	}

	return out
}

func (s *ObservableSet) recordFullMatch(id int) {
	s.measured[id]++
}

// prune drops satisfied observables from the active list and returns how
// many were removed.
func (s *ObservableSet) prune() int {
	kept := s.active[:0]
	removed := 0

	for _, id := range s.active {
		if s.Satisfied(id) {
			s.isActive[id] = false
			removed++
			continue
		}
		kept = append(kept, id)
	}

	s.active = kept
	return removed
}
