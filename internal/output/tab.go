// Package output provides dataset summary formatters.
package output

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/popgenio/gldist/internal/geno"
	"github.com/popgenio/gldist/internal/pos"
)

// SiteWriter writes per-site dataset summaries in tab-delimited format.
type SiteWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewSiteWriter creates a new tab-delimited site summary writer.
func NewSiteWriter(w io.Writer) *SiteWriter {
	return &SiteWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#Site",
			"Distance",
			"Mean_HomRef",
			"Mean_Het",
			"Mean_HomAlt",
			"N_Missing",
		},
	}
}

// WriteHeader writes the header line.
func (sw *SiteWriter) WriteHeader() error {
	_, err := sw.w.WriteString(strings.Join(sw.columns, "\t") + "\n")
	return err
}

// Write writes one site's summary. An infinite distance (chromosome start)
// is rendered as "inf".
func (sw *SiteWriter) Write(st geno.SiteStats, dist float64) error {
	d := "inf"
	if !math.IsInf(dist, 1) {
		d = fmt.Sprintf("%.0f", dist)
	}

	values := []string{
		fmt.Sprintf("%d", st.Site),
		d,
		fmt.Sprintf("%.6f", st.MeanProb[0]),
		fmt.Sprintf("%.6f", st.MeanProb[1]),
		fmt.Sprintf("%.6f", st.MeanProb[2]),
		fmt.Sprintf("%d", st.NMissing),
	}

	_, err := sw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// WriteAll writes the header and one row per site. The matrix and distance
// array must describe the same number of sites.
func (sw *SiteWriter) WriteAll(m *geno.Matrix, d pos.Distances) error {
	if m.Sites() != d.Sites() {
		return fmt.Errorf("site count mismatch: %d genotype sites, %d position sites",
			m.Sites(), d.Sites())
	}
	if err := sw.WriteHeader(); err != nil {
		return err
	}
	for s := 1; s <= m.Sites(); s++ {
		if err := sw.Write(m.Stats(s), d[s]); err != nil {
			return err
		}
	}
	return sw.Flush()
}

// Flush flushes any buffered data to the underlying writer.
func (sw *SiteWriter) Flush() error {
	return sw.w.Flush()
}
