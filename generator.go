package qshadow

/*
LocalObservables generates the benchmark set of geometrically local
observables on a chain of systemSize qubits, in this order:

  - Y_i Y_{i+1} X_j X_{j+1} for every pair of non-overlapping bonds
  - X_i X_{i+1} Z_j Z_{j2} for j, j2 off the bond and j2 != j
  - X_i X_{i+1} Z_j for j off the bond
*/
func LocalObservables(systemSize int) []Observable {
	var out []Observable

	for i := 0; i < systemSize-1; i++ {
		for j := 0; j < systemSize-1; j++ {
			if j == i-1 || j == i || j == i+1 {
				continue
			}
			out = append(out, Observable{i: PauliY, i + 1: PauliY, j: PauliX, j + 1: PauliX})
		}
	}

	for i := 0; i < systemSize-1; i++ {
		for j := 0; j < systemSize; j++ {
			if j == i || j == i+1 {
				continue
			}
			for j2 := 0; j2 < systemSize; j2++ {
				if j2 == i || j2 == i+1 || j2 == j {
					continue
				}
				out = append(out, Observable{i: PauliX, i + 1: PauliX, j: PauliZ, j2: PauliZ})
			}
		}
	}

	for i := 0; i < systemSize-1; i++ {
		for j := 0; j < systemSize; j++ {
			if j == i || j == i+1 {
				continue
			}
			out = append(out, Observable{i: PauliX, i + 1: PauliX, j: PauliZ})
		}
	}

	return out
}
