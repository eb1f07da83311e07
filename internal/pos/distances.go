// Package pos loads per-site chromosome/position rows into an array of
// inter-site genomic distances.
package pos

import "math"

// Distances holds the base-pair gap between each site and its predecessor
// on the same chromosome. Sites are 1-based; index 0 is a sentinel.
// The first site overall and the first site of every new chromosome hold
// +Inf.
type Distances []float64

// newDistances allocates a distance array of nSites+1 entries, every one
// set to the +Inf sentinel.
func newDistances(nSites int) Distances {
	d := make(Distances, nSites+1)
	inf := math.Inf(1)
	for i := range d {
		d[i] = inf
	}
	return d
}

// Sites returns the number of sites (valid indices are 1..Sites()).
func (d Distances) Sites() int {
	return len(d) - 1
}

// Chromosomes returns the number of chromosome blocks, counting one block
// per +Inf entry past the sentinel.
func (d Distances) Chromosomes() int {
	n := 0
	for _, v := range d[1:] {
		if math.IsInf(v, 1) {
			n++
		}
	}
	return n
}

// Span returns the total finite base-pair span covered by adjacent sites.
func (d Distances) Span() float64 {
	var sum float64
	for _, v := range d[1:] {
		if !math.IsInf(v, 1) {
			sum += v
		}
	}
	return sum
}
