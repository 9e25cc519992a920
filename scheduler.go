package qshadow

import (
	"context"
	"fmt"
	"iter"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"github.com/theapemachine/errnie"
)

// SchedulerState is the phase the scheduler is in.
type SchedulerState int

const (
	StateAccumulating SchedulerState = iota
	StateRoundComplete
	StateDone
)

func (s SchedulerState) String() string {
	switch s {
	case StateAccumulating:
		return "accumulating"
	case StateRoundComplete:
		return "round_complete"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("SchedulerState(%d)", int(s))
	}
}

// Termination explains why the scheduler stopped producing rounds.
type Termination int

const (
	TerminationNone Termination = iota
	TerminationSatisfied
	TerminationBudgetExhausted
	TerminationFailed
)

func (t Termination) String() string {
	switch t {
	case TerminationNone:
		return "none"
	case TerminationSatisfied:
		return "satisfied"
	case TerminationBudgetExhausted:
		return "budget_exhausted"
	case TerminationFailed:
		return "failed"
	default:
		return fmt.Sprintf("Termination(%d)", int(t))
	}
}

const (
	trialNone int8 = iota
	trialMatch
	trialConflict
)

/*
Scheduler is the derandomized classical shadow. It builds one round at a
time: for every qubit in order it tries X, Y and Z, keeps the basis with the
smallest pessimistic cost over the active observables and commits it. After
the last qubit the observables the round fully matched gain a measurement,
and the satisfied ones leave the active set.

The scheduler is a lazy sequence. Iterate it like a bufio.Scanner:

	for s.Next() {
		fmt.Println(s.Round())
	}
	if err := s.Err(); err != nil { ... }

It is not safe for concurrent use.
*/
type Scheduler struct {
	set    *ObservableSet
	cost   costModel
	stable stabilizer
	round  *RoundState
	trial  []int8

	limit       int
	emitted     int
	state       SchedulerState
	termination Termination
	current     Round
	err         error

	logger  *log.Logger
	metrics *Metrics
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithRoundLimit overrides the safety bound on the number of rounds.
// Values below 1 keep the default.
func WithRoundLimit(limit int) SchedulerOption {
	return func(s *Scheduler) {
		if limit > 0 {
			s.limit = limit
		}
	}
}

func WithLogger(logger *log.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(metrics *Metrics) SchedulerOption {
	return func(s *Scheduler) {
		s.metrics = metrics
	}
}

/*
NewScheduler takes ownership of set; its counters advance as rounds are
produced. Unless overridden, the run is bounded by the sum of all targets,
which is measurementsPerObservable × len(observables) for unit weights.
Every successful round completes at least one pending measurement, so the
bound is never hit unless it was lowered with WithRoundLimit.
*/
func NewScheduler(set *ObservableSet, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		set:    set,
		cost:   newCostModel(set.SystemSize()),
		round:  newRoundState(set.Len()),
		trial:  make([]int8, set.Len()),
		limit:  set.TotalTarget(),
		state:  StateRoundComplete,
		logger: log.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	errnie.Info(
		"NewScheduler - systemSize %v, observables %v, limit %v",
		set.SystemSize(),
		set.Len(),
		s.limit,
	)

	active := len(set.Active())
	s.metrics.observeStart(set.Len()-active, active)

	if active == 0 {
		s.finish(TerminationSatisfied, nil)
	}

	return s
}

// Derandomize builds the observable set and a scheduler over it.
func Derandomize(
	systemSize int,
	observables []Observable,
	measurementsPerObservable int,
	weights []float64,
	opts ...SchedulerOption,
) (*Scheduler, error) {
	set, err := NewObservableSet(systemSize, observables, measurementsPerObservable, weights)
	if err != nil {
		return nil, err
	}

	return NewScheduler(set, opts...), nil
}

func (s *Scheduler) State() SchedulerState { return s.state }
func (s *Scheduler) Termination() Termination { return s.termination }
func (s *Scheduler) Err() error { return s.err }
func (s *Scheduler) Emitted() int { return s.emitted }
func (s *Scheduler) Limit() int { return s.limit }
func (s *Scheduler) Observables() *ObservableSet { return s.set }

// Round returns the round produced by the last successful call to Next.
func (s *Scheduler) Round() Round {
	return s.current
}

/*
Next builds the next round. It returns false once every observable is
satisfied, the round budget is spent, or a round failed to fully match any
active observable; Err and Termination tell these apart.
*/
func (s *Scheduler) Next() bool {
	if s.state == StateDone {
		return false
	}

	if s.emitted >= s.limit {
		s.finish(TerminationBudgetExhausted, nil)
		return false
	}

	startTime := time.Now()

	s.state = StateAccumulating
	round := s.accumulate()
	s.state = StateRoundComplete

	full, err := s.settle()
	if err != nil {
		s.finish(TerminationFailed, err)
		return false
	}

	s.emitted++
	s.current = round

	satisfied := s.set.prune()
	active := len(s.set.Active())
	s.metrics.recordRound(startTime, full, satisfied, active)

	s.logger.Debug(
		"round complete",
		"round", s.emitted,
		"full_matches", full,
		"satisfied", satisfied,
		"active", active,
	)

	if active == 0 {
		s.finish(TerminationSatisfied, nil)
	}

	return true
}

// Rounds adapts the scheduler to a range-over-func sequence. Breaking out
// of the loop pauses the scheduler; it can be resumed with Next.
func (s *Scheduler) Rounds() iter.Seq[Round] {
	return func(yield func(Round) bool) {
		for s.Next() {
			if !yield(s.Round()) {
				return
			}
		}
	}
}

// Run drains the scheduler, checking ctx between rounds. The rounds built
// before an error or cancellation are returned alongside it.
func (s *Scheduler) Run(ctx context.Context) ([]Round, error) {
	var rounds []Round

	for {
		if err := ctx.Err(); err != nil {
			return rounds, err
		}

		if !s.Next() {
			break
		}

		rounds = append(rounds, s.Round())
	}

	return rounds, s.err
}

func (s *Scheduler) accumulate() Round {
	active := s.set.Active()
	s.round.reset(active)

	round := make(Round, s.set.SystemSize())

	for qubit := range round {
		column := s.set.ObservablesConstraining(qubit, s.round)

		best := Paulis[0]
		bestCost := math.Inf(1)

		for _, basis := range Paulis {
			// Strict comparison keeps the earliest basis on ties.
			if cost := s.trialCost(active, column, basis); cost < bestCost {
				bestCost = cost
				best = basis
			}
		}

		s.round.apply(column, best)
		round[qubit] = best
	}

	return round
}

/*
trialCost is the log of the round cost if basis were chosen for the qubit
column belongs to. Observables a conflicting basis rules out keep only
their settled term; their round-dependent factor is excluded.
*/
func (s *Scheduler) trialCost(active []int, column []Constraint, basis Pauli) float64 {
	for _, c := range column {
		if c.Pauli == basis {
			s.trial[c.ID] = trialMatch
		} else {
			s.trial[c.ID] = trialConflict
		}
	}

	s.stable.reset()

	for _, id := range active {
		matches := s.round.Matches(id)
		impossible := !s.round.Possible(id)

		switch s.trial[id] {
		case trialMatch:
			matches++
		case trialConflict:
			impossible = true
		}

		v := s.cost.exponent(
			s.set.MeasurementsSoFar(id),
			s.set.Weight(id),
			s.set.RequiredMatches(id)-matches,
			impossible,
		)

		s.stable.observe(v)
	}

	for _, c := range column {
		s.trial[c.ID] = trialNone
	}

	return s.stable.cost()
}

// settle credits every observable the finished round fully matched.
func (s *Scheduler) settle() (int, error) {
	active := s.set.Active()
	full := 0

	for _, id := range active {
		if s.round.Complete(s.set, id) {
			s.set.recordFullMatch(id)
			full++
		}
	}

	if full == 0 {
		return 0, fmt.Errorf(
			"%w: round %d fully matched none of %d active observables",
			ErrConvergenceFailure, s.emitted+1, len(active),
		)
	}

	return full, nil
}

func (s *Scheduler) finish(t Termination, err error) {
	s.state = StateDone
	s.termination = t
	s.err = err
	s.metrics.recordTermination(t)

	switch t {
	case TerminationFailed:
		s.logger.Error("scheduler aborted", "rounds", s.emitted, "err", err)
	case TerminationBudgetExhausted:
		s.logger.Warn(
			"round budget exhausted",
			"rounds", s.emitted,
			"limit", s.limit,
			"active", len(s.set.Active()),
		)
	default:
		s.logger.Info("all observables satisfied", "rounds", s.emitted)
	}
}
