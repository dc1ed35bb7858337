// Package diff aligns two ordered sequences using longest-common-subsequence
// matching and classifies the differences as equal, insert, delete or replace
// ranges. It is a pure algorithm shared by the fee reconciliation and the
// bank statement import.
package diff

// Tag classifies one aligned range.
type Tag int

const (
	// Equal marks a range present in both sequences.
	Equal Tag = iota
	// Insert marks a range present only in the second sequence.
	Insert
	// Delete marks a range present only in the first sequence.
	Delete
	// Replace marks ranges where the two sequences conflict.
	Replace
)

func (t Tag) String() string {
	switch t {
	case Equal:
		return "equal"
	case Insert:
		return "insert"
	case Delete:
		return "delete"
	case Replace:
		return "replace"
	default:
		return "unknown"
	}
}

// Op describes one aligned range: a[I1:I2] against b[J1:J2]. For Equal and
// Replace both ranges are non-empty, for Delete only the a-range, for Insert
// only the b-range.
type Op struct {
	Tag Tag
	I1  int
	I2  int
	J1  int
	J2  int
}

// Align computes the LCS alignment of a and b under the given equality and
// returns the ops in ascending order. Concatenating the a-ranges of all
// Equal, Delete and Replace ops yields a; concatenating the b-ranges of all
// Equal, Insert and Replace ops yields b.
func Align[T any](a, b []T, eq func(x, y T) bool) []Op {
	n, m := len(a), len(b)

	// lcs[i][j] is the LCS length of a[i:] and b[j:].
	lcs := make([][]int, n+1)
	for i := range lcs {
		lcs[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if eq(a[i], b[j]) {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else if lcs[i+1][j] >= lcs[i][j+1] {
				lcs[i][j] = lcs[i+1][j]
			} else {
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	var ops []Op
	emit := func(i1, i2, j1, j2 int, tag Tag) {
		if i1 == i2 && j1 == j2 {
			return
		}
		ops = append(ops, Op{Tag: tag, I1: i1, I2: i2, J1: j1, J2: j2})
	}

	i, j := 0, 0
	for i < n || j < m {
		// Advance past the unmatched prefix. Matching whenever the current
		// elements are equal is optimal for LCS by the standard exchange
		// argument.
		pi, pj := i, j
		for i < n && j < m && !eq(a[i], b[j]) {
			if lcs[i+1][j] >= lcs[i][j+1] {
				i++
			} else {
				j++
			}
		}
		if i == n {
			j = m
		} else if j == m {
			i = n
		}
		switch {
		case pi < i && pj < j:
			emit(pi, i, pj, j, Replace)
		case pi < i:
			emit(pi, i, pj, j, Delete)
		case pj < j:
			emit(pi, i, pj, j, Insert)
		}

		// Consume the matched run.
		mi, mj := i, j
		for i < n && j < m && eq(a[i], b[j]) {
			i++
			j++
		}
		emit(mi, i, mj, j, Equal)
	}
	return ops
}
