package qshadow

// RoundState is the scheduler's working memory while assigning bases to the
// qubits of one round. It is indexed by observable id and reset at the start
// of every round.
type RoundState struct {
	matches    []int
	impossible []bool
}

func newRoundState(observables int) *RoundState {
	return &RoundState{
		matches:    make([]int, observables),
		impossible: make([]bool, observables),
	}
}

func (r *RoundState) reset(active []int) {
	for _, id := range active {
		r.matches[id] = 0
		r.impossible[id] = false
	}
}

// Matches is the number of qubits observable id has matched so far.
func (r *RoundState) Matches(id int) int {
	return r.matches[id]
}

// Possible reports whether observable id can still be fully matched.
func (r *RoundState) Possible(id int) bool {
	return !r.impossible[id]
}

// Complete reports whether every factor of observable id has been matched.
func (r *RoundState) Complete(set *ObservableSet, id int) bool {
	return !r.impossible[id] && r.matches[id] == set.RequiredMatches(id)
}

// apply commits basis for the qubit the column belongs to.
func (r *RoundState) apply(column []Constraint, basis Pauli) {
	for _, c := range column {
		if c.Pauli == basis {
			r.matches[c.ID]++
		} else {
			r.impossible[c.ID] = true
		}
	}
}
