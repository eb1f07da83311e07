package pos

import (
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/popgenio/gldist/internal/input"
)

const loadOp = "load positions"

// Load reads the position file at path into a Distances array of nSites
// entries. Rows are whitespace-delimited "chromosome position" pairs, one
// per site, optionally gzip- or zstd-compressed. Any structural problem
// aborts the call with an *input.Error and no partial result.
func Load(path string, nSites int, logger *zap.Logger) (Distances, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	st, err := input.Open(path)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	dist := newDistances(nSites)

	var (
		prevChrom string
		prevPos   uint64
		seenRow   bool // whether any data row has been parsed yet
	)

	s := 1
	for s <= nSites {
		line, ok, err := st.ReadLine()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, input.Errorf(loadOp, st.LineNumber(), input.ErrTruncatedInput,
				"stream ended at site %d of %d", s, nSites)
		}
		if line == "" {
			// Blank line: retry the same site on the next line.
			continue
		}

		fields := strings.Fields(line)
		if isHeaderLine(fields) {
			logger.Warn("header found, skipping line",
				zap.Int("line", st.LineNumber()))
			if st.LineNumber() != 1 {
				logger.Warn("header not on first line, is the site count correct?",
					zap.Int("line", st.LineNumber()),
					zap.Int("site", s))
			}
			continue
		}

		chrom := fields[0]
		p, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return nil, input.Errorf(loadOp, st.LineNumber(), input.ErrFormat,
				"invalid position %q", fields[1])
		}

		switch {
		case !seenRow:
			// First data row: the +Inf sentinel stands as written.
			prevChrom = chrom
			seenRow = true
		case chrom == prevChrom:
			dist[s] = float64(p) - float64(prevPos)
			if dist[s] < 1 {
				return nil, input.Errorf(loadOp, st.LineNumber(), input.ErrInvalidDistance,
					"site %d on %s: positions %d and %d", s, chrom, prevPos, p)
			}
		default:
			dist[s] = math.Inf(1)
			prevChrom = chrom
		}
		prevPos = p
		s++
	}

	// The declared site count must account for every byte in the stream.
	if !st.AtEnd() {
		return nil, input.Errorf(loadOp, st.LineNumber(), input.ErrTrailingData,
			"more data than the declared %d sites", nSites)
	}

	return dist, nil
}

// isHeaderLine reports whether a tokenized position line is a header.
// A header is a line with no fields, a missing position column, or a
// position column that reads as numeric zero the way strtod would read it
// (non-numeric text included). The zero case is a deliberate heuristic:
// it cannot distinguish a real position 0 from a header token, and real
// input never carries position 0.
func isHeaderLine(fields []string) bool {
	if len(fields) < 2 {
		return true
	}
	v, err := strconv.ParseFloat(fields[1], 64)
	return err != nil || v == 0
}
