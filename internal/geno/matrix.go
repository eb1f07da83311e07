// Package geno loads per-site, per-individual genotype information
// (discrete calls, likelihoods, or posterior probabilities) into a dense
// log-probability matrix.
package geno

import (
	"fmt"
	"math"
)

// NClasses is the number of genotype classes: homozygous-reference,
// heterozygous, homozygous-alternate. Multi-allelic models are out of scope.
const NClasses = 3

// Scale describes whether probability values are linear or natural-log.
type Scale int

const (
	// ScaleLinear marks raw probabilities or likelihoods in [0, 1].
	ScaleLinear Scale = iota
	// ScaleLog marks natural-log probabilities.
	ScaleLog
)

func (s Scale) String() string {
	if s == ScaleLog {
		return "log"
	}
	return "linear"
}

// Matrix is a dense genotype log-probability matrix indexed as
// (individual, site, class). Sites are 1-based; row 0 is a sentinel that
// is never populated. Regardless of the input's scale, a loaded Matrix
// always holds natural-log probabilities, normalized per (individual, site)
// triple. Unpopulated cells hold -Inf.
type Matrix struct {
	nInd   int
	nSites int
	data   []float64 // ind-major, then site, then class
}

// NewMatrix allocates a matrix for nInd individuals and nSites sites with
// every cell set to the -Inf sentinel.
func NewMatrix(nInd, nSites int) *Matrix {
	m := &Matrix{
		nInd:   nInd,
		nSites: nSites,
		data:   make([]float64, nInd*(nSites+1)*NClasses),
	}
	negInf := math.Inf(-1)
	for i := range m.data {
		m.data[i] = negInf
	}
	return m
}

// Individuals returns the number of individuals.
func (m *Matrix) Individuals() int { return m.nInd }

// Sites returns the number of sites (valid site indices are 1..Sites()).
func (m *Matrix) Sites() int { return m.nSites }

// Scale always reports ScaleLog: the loader's output contract guarantees
// log-scale values whatever the input's original scale was.
func (m *Matrix) Scale() Scale { return ScaleLog }

func (m *Matrix) offset(ind, site int) int {
	if ind < 0 || ind >= m.nInd {
		panic(fmt.Sprintf("geno: individual %d out of range [0,%d)", ind, m.nInd))
	}
	if site < 0 || site > m.nSites {
		panic(fmt.Sprintf("geno: site %d out of range [0,%d]", site, m.nSites))
	}
	return (ind*(m.nSites+1) + site) * NClasses
}

// At returns the log-probability of class g for (ind, site).
func (m *Matrix) At(ind, site, g int) float64 {
	if g < 0 || g >= NClasses {
		panic(fmt.Sprintf("geno: class %d out of range [0,%d)", g, NClasses))
	}
	return m.data[m.offset(ind, site)+g]
}

// Triple returns the 3-element log-probability slice for (ind, site).
// The slice aliases the matrix storage, so in-place normalization of the
// returned slice updates the matrix.
func (m *Matrix) Triple(ind, site int) []float64 {
	off := m.offset(ind, site)
	return m.data[off : off+NClasses : off+NClasses]
}

// SiteStats summarizes one site across individuals.
type SiteStats struct {
	Site     int
	MeanProb [NClasses]float64 // mean per-class probability (linear scale)
	NMissing int               // individuals with an effectively uniform triple
}

// Stats computes per-site summaries for site 1..Sites().
// An individual is counted missing when its three probabilities are all
// within tolerance of 1/3, the representation the loader assigns to
// missing discrete calls.
func (m *Matrix) Stats(site int) SiteStats {
	const missTol = 1e-9
	st := SiteStats{Site: site}
	for i := 0; i < m.nInd; i++ {
		tr := m.Triple(i, site)
		uniform := true
		for g := 0; g < NClasses; g++ {
			p := math.Exp(tr[g])
			st.MeanProb[g] += p
			if math.Abs(p-1.0/NClasses) > missTol {
				uniform = false
			}
		}
		if uniform {
			st.NMissing++
		}
	}
	if m.nInd > 0 {
		for g := 0; g < NClasses; g++ {
			st.MeanProb[g] /= float64(m.nInd)
		}
	}
	return st
}
