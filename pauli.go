package qshadow

import (
	"fmt"
	"strings"
)

// Pauli is a single-qubit measurement basis.
type Pauli uint8

const (
	PauliX Pauli = iota
	PauliY
	PauliZ
)

/*
Paulis lists the bases in canonical order. The scheduler walks this array
when trying bases for a qubit, so the order doubles as the tie-break rule:
X wins over Y, Y wins over Z.
*/
var Paulis = [...]Pauli{PauliX, PauliY, PauliZ}

func (p Pauli) String() string {
	switch p {
	case PauliX:
		return "X"
	case PauliY:
		return "Y"
	case PauliZ:
		return "Z"
	default:
		return fmt.Sprintf("Pauli(%d)", uint8(p))
	}
}

// Valid reports whether p is one of X, Y or Z.
func (p Pauli) Valid() bool {
	return p <= PauliZ
}

// ParsePauli reads a single basis tag, ignoring case.
func ParsePauli(s string) (Pauli, error) {
	switch strings.ToUpper(s) {
	case "X":
		return PauliX, nil
	case "Y":
		return PauliY, nil
	case "Z":
		return PauliZ, nil
	}

	return 0, &ParseError{Msg: fmt.Sprintf("unknown pauli %q", s)}
}

// Round is one measurement setting, a basis for every qubit in the system.
type Round []Pauli

func (r Round) String() string {
	var sb strings.Builder

	for i, p := range r {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(p.String())
	}

	return sb.String()
}

// Matches reports whether the round measures every qubit obs constrains in
// the basis obs requires.
func (r Round) Matches(obs Observable) bool {
	for qubit, pauli := range obs {
		if qubit < 0 || qubit >= len(r) || r[qubit] != pauli {
			return false
		}
	}

	return true
}

// ParseRound is the inverse of Round.String.
func ParseRound(line string) (Round, error) {
	fields := strings.Fields(line)
	round := make(Round, len(fields))

	for i, f := range fields {
		p, err := ParsePauli(f)
		if err != nil {
			return nil, err
		}
		round[i] = p
	}

	return round, nil
}
