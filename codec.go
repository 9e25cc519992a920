package qshadow

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

/*
ReadObservables parses an observable file:

	<system size>
	<k> <Pauli> <qubit> ... (k pairs)

one observable per line. Blank lines are skipped.
*/
func ReadObservables(r io.Reader) (int, []Observable, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	systemSize, line, err := readHeader(scanner)
	if err != nil {
		return 0, nil, err
	}

	var observables []Observable

	for scanner.Scan() {
		line++

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		obs, err := parseObservable(fields, systemSize, line)
		if err != nil {
			return 0, nil, err
		}

		observables = append(observables, obs)
	}

	if err := scanner.Err(); err != nil {
		return 0, nil, fmt.Errorf("reading observables: %w", err)
	}

	return systemSize, observables, nil
}

func readHeader(scanner *bufio.Scanner) (int, int, error) {
	line := 0

	for scanner.Scan() {
		line++

		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		n, err := strconv.Atoi(text)
		if err != nil || n <= 0 {
			return 0, line, parseErrorf(line, "system size must be a positive integer, got %q", text)
		}

		return n, line, nil
	}

	if err := scanner.Err(); err != nil {
		return 0, line, fmt.Errorf("reading header: %w", err)
	}

	return 0, line, parseErrorf(line, "missing system size header")
}

func parseObservable(fields []string, systemSize, line int) (Observable, error) {
	k, err := strconv.Atoi(fields[0])
	if err != nil || k < 0 {
		return nil, parseErrorf(line, "term count must be a non-negative integer, got %q", fields[0])
	}

	pairs := fields[1:]
	if len(pairs) != 2*k {
		return nil, parseErrorf(line, "declared %d terms but found %d fields", k, len(pairs))
	}

	obs := make(Observable, k)

	for i := 0; i < len(pairs); i += 2 {
		pauli, err := ParsePauli(pairs[i])
		if err != nil {
			return nil, parseErrorf(line, "%v", err)
		}

		qubit, err := strconv.Atoi(pairs[i+1])
		if err != nil {
			return nil, parseErrorf(line, "bad qubit index %q", pairs[i+1])
		}

		if qubit < 0 || qubit >= systemSize {
			return nil, parseErrorf(line, "qubit %d outside system of size %d", qubit, systemSize)
		}

		if _, dup := obs[qubit]; dup {
			return nil, parseErrorf(line, "qubit %d constrained twice", qubit)
		}

		obs[qubit] = pauli
	}

	return obs, nil
}

// WriteObservables writes the format ReadObservables reads, terms ordered
// by qubit.
func WriteObservables(w io.Writer, systemSize int, observables []Observable) error {
	bw := bufio.NewWriter(w)

	if _, err := fmt.Fprintln(bw, systemSize); err != nil {
		return err
	}

	for _, obs := range observables {
		bw.WriteString(strconv.Itoa(obs.Len()))

		for _, term := range obs.Terms() {
			bw.WriteByte(' ')
			bw.WriteString(term.Pauli.String())
			bw.WriteByte(' ')
			bw.WriteString(strconv.Itoa(term.Qubit))
		}

		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// WriteRound prints a round as space separated tags on its own line.
func WriteRound(w io.Writer, round Round) error {
	_, err := fmt.Fprintln(w, round.String())
	return err
}

func WriteRounds(w io.Writer, rounds []Round) error {
	bw := bufio.NewWriter(w)

	for _, round := range rounds {
		if err := WriteRound(bw, round); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// Outcome is the result of measuring one qubit: the basis used and the
// observed eigenvalue, +1 or -1.
type Outcome struct {
	Pauli Pauli
	Value int
}

// MeasuredRound holds one outcome per qubit.
type MeasuredRound []Outcome

/*
ReadMeasurements parses a measurement file:

	<system size>
	<Pauli> <±1> ... (one pair per qubit)

one measured round per line.
*/
func ReadMeasurements(r io.Reader) (int, []MeasuredRound, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	systemSize, line, err := readHeader(scanner)
	if err != nil {
		return 0, nil, err
	}

	var rounds []MeasuredRound

	for scanner.Scan() {
		line++

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		if len(fields) != 2*systemSize {
			return 0, nil, parseErrorf(line, "expected %d pauli/outcome pairs, found %d fields", systemSize, len(fields))
		}

		round := make(MeasuredRound, systemSize)

		for i := 0; i < len(fields); i += 2 {
			pauli, err := ParsePauli(fields[i])
			if err != nil {
				return 0, nil, parseErrorf(line, "%v", err)
			}

			value, err := strconv.Atoi(fields[i+1])
			if err != nil || (value != 1 && value != -1) {
				return 0, nil, parseErrorf(line, "outcome must be 1 or -1, got %q", fields[i+1])
			}

			round[i/2] = Outcome{Pauli: pauli, Value: value}
		}

		rounds = append(rounds, round)
	}

	if err := scanner.Err(); err != nil {
		return 0, nil, fmt.Errorf("reading measurements: %w", err)
	}

	return systemSize, rounds, nil
}

// ReadWeights reads one weight per non-blank line.
func ReadWeights(r io.Reader) ([]float64, error) {
	scanner := bufio.NewScanner(r)
	line := 0

	var weights []float64

	for scanner.Scan() {
		line++

		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		w, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, parseErrorf(line, "bad weight %q", text)
		}

		weights = append(weights, w)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading weights: %w", err)
	}

	return weights, nil
}
