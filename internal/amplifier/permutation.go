package amplifier

import (
	"iter"
	"slices"
)

// Permutations yields every distinct ordering of values in lexicographic
// order, starting from the sorted sequence.
//
// The sequence is finite and restartable: each range over it starts again
// from the first permutation. Each yielded slice is a fresh copy that the
// caller may keep.
func Permutations(values []int64) iter.Seq[[]int64] {
	base := slices.Clone(values)
	slices.Sort(base)

	return func(yield func([]int64) bool) {
		p := slices.Clone(base)
		for {
			if !yield(slices.Clone(p)) {
				return
			}
			if !nextPermutation(p) {
				return
			}
		}
	}
}

// nextPermutation rearranges p into the next lexicographic permutation.
// It returns false, leaving p untouched, when p is the last one.
func nextPermutation(p []int64) bool {
	i := len(p) - 2
	for i >= 0 && p[i] >= p[i+1] {
		i--
	}
	if i < 0 {
		return false
	}

	j := len(p) - 1
	for p[j] <= p[i] {
		j--
	}
	p[i], p[j] = p[j], p[i]
	slices.Reverse(p[i+1:])
	return true
}

// Factorial returns n!, the number of permutations of n distinct values.
func Factorial(n int) int {
	f := 1
	for i := 2; i <= n; i++ {
		f *= i
	}
	return f
}
