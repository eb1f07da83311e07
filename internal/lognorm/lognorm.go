// Package lognorm holds the numerically sensitive log-space helpers shared
// by the loaders: elementwise log transforms that never call log(0), and
// log-sum-exp renormalization of per-individual genotype triples.
package lognorm

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// ToLog converts linear-scale values to natural-log scale in place.
// Zeros map to -Inf directly instead of going through math.Log, so a
// zero-probability input is represented by the sentinel rather than by
// whatever log(0) would produce on a given platform.
func ToLog(xs []float64) {
	for i, x := range xs {
		if x == 0 {
			xs[i] = math.Inf(-1)
		} else {
			xs[i] = math.Log(x)
		}
	}
}

// Normalize rescales a log-probability vector in place so that its
// probabilities sum to one: out[i] = in[i] - logSumExp(in).
// An all -Inf input stays all -Inf with a NaN in every slot, which the
// caller's NaN check turns into a corrupt-data failure.
func Normalize(xs []float64) {
	lse := floats.LogSumExp(xs)
	for i := range xs {
		xs[i] -= lse
	}
}

// HasNaN reports whether any value is NaN.
func HasNaN(xs []float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) {
			return true
		}
	}
	return false
}
