package geno

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/popgenio/gldist/internal/input"
	"github.com/popgenio/gldist/internal/lognorm"
)

const loadOp = "load genotypes"

// LoadOptions configures a genotype load.
type LoadOptions struct {
	// Binary selects the packed-double encoding instead of text lines.
	Binary bool
	// Probabilistic selects 3 probability fields per individual instead
	// of a single discrete call. Ignored in binary mode, which is always
	// probabilistic.
	Probabilistic bool
	// Scale describes the input values. The returned Matrix is always
	// log-scale regardless of this setting.
	Scale       Scale
	Individuals int
	Sites       int
	// Logger receives header diagnostics. Nil means no logging.
	Logger *zap.Logger
}

// Load reads the genotype file at path into a fully populated Matrix.
// The whole dataset is loaded before returning; any structural problem
// aborts the call with an *input.Error and no partial result.
func Load(path string, opts LoadOptions) (*Matrix, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	st, err := input.Open(path)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	m := NewMatrix(opts.Individuals, opts.Sites)

	if opts.Binary {
		err = loadBinary(st, m, opts)
	} else {
		err = loadText(st, m, opts, logger)
	}
	if err != nil {
		return nil, err
	}

	// The declared site count must account for every byte in the stream.
	if !st.AtEnd() {
		return nil, input.Errorf(loadOp, st.LineNumber(), input.ErrTrailingData,
			"more data than the declared %d sites", opts.Sites)
	}

	return m, nil
}

// loadBinary reads one fixed-size block of 3*individuals doubles per site,
// in the host's native byte order.
func loadBinary(st *input.Stream, m *Matrix, opts LoadOptions) error {
	buf := make([]byte, opts.Individuals*NClasses*8)

	for s := 1; s <= opts.Sites; s++ {
		if err := st.ReadFull(buf); err != nil {
			if errors.Is(err, input.ErrTruncatedInput) {
				return input.Errorf(loadOp, 0, input.ErrTruncatedInput,
					"cannot read site %d of %d: check file and site count", s, opts.Sites)
			}
			return err
		}

		for i := 0; i < opts.Individuals; i++ {
			tr := m.Triple(i, s)
			for g := 0; g < NClasses; g++ {
				tr[g] = float64FromNative(buf[(i*NClasses+g)*8:])
			}
			if opts.Scale == ScaleLinear {
				lognorm.ToLog(tr)
			}
			lognorm.Normalize(tr)
			if lognorm.HasNaN(tr) {
				return input.Errorf(loadOp, 0, input.ErrCorruptData,
					"NaN at site %d, individual %d: is the file format correct?", s, i)
			}
		}
	}

	return nil
}

// loadText reads one whitespace-delimited line per site. Blank lines and
// header lines do not consume a site index.
func loadText(st *input.Stream, m *Matrix, opts LoadOptions, logger *zap.Logger) error {
	perInd := 1
	if opts.Probabilistic {
		perInd = NClasses
	}
	need := opts.Individuals * perInd

	s := 1
	for s <= opts.Sites {
		line, ok, err := st.ReadLine()
		if err != nil {
			return err
		}
		if !ok {
			return input.Errorf(loadOp, st.LineNumber(), input.ErrTruncatedInput,
				"stream ended at site %d of %d", s, opts.Sites)
		}
		if line == "" {
			// Blank line: retry the same site on the next line.
			continue
		}

		fields := strings.Fields(line)
		if isHeaderFields(fields) {
			logger.Warn("header found, skipping line",
				zap.Int("line", st.LineNumber()))
			if st.LineNumber() != 1 {
				logger.Warn("header not on first line, is the site count correct?",
					zap.Int("line", st.LineNumber()),
					zap.Int("site", s))
			}
			continue
		}
		if len(fields) < need {
			return input.Errorf(loadOp, st.LineNumber(), input.ErrFormat,
				"expected at least %d genotype fields, found %d", need, len(fields))
		}

		// Only the trailing columns carry genotype data; leading columns
		// (site identifiers and the like) are ignored positionally.
		vals := fields[len(fields)-need:]

		for i := 0; i < opts.Individuals; i++ {
			tr := m.Triple(i, s)
			if opts.Probabilistic {
				if err := parseTriple(tr, vals[i*NClasses:(i+1)*NClasses], opts.Scale); err != nil {
					return input.Errorf(loadOp, st.LineNumber(), input.ErrFormat,
						"individual %d: %v", i, err)
				}
			} else {
				if err := assignCall(tr, vals[i]); err != nil {
					return input.Errorf(loadOp, st.LineNumber(), input.ErrFormat,
						"individual %d: %v", i, err)
				}
			}
			lognorm.Normalize(tr)
			if lognorm.HasNaN(tr) {
				return input.Errorf(loadOp, st.LineNumber(), input.ErrCorruptData,
					"NaN at site %d, individual %d after normalization", s, i)
			}
		}
		s++
	}

	return nil
}

// isHeaderFields reports whether a tokenized genotype line is a header.
// The heuristic is deliberately narrow: only a line that yields zero
// whitespace-separated fields counts.
func isHeaderFields(fields []string) bool {
	return len(fields) == 0
}

// parseTriple fills tr with one individual's 3 probability fields,
// converting to log scale when the input is linear.
func parseTriple(tr []float64, fields []string, scale Scale) error {
	for g := 0; g < NClasses; g++ {
		v, err := strconv.ParseFloat(fields[g], 64)
		if err != nil {
			return errors.New("invalid probability field " + strconv.Quote(fields[g]))
		}
		tr[g] = v
	}
	if scale == ScaleLinear {
		lognorm.ToLog(tr)
	}
	return nil
}

// assignCall fills tr from one discrete genotype call. Valid calls are
// 0, 1 and 2; any negative call means missing data and maps to a uniform
// distribution over the three classes. tr is expected to hold the -Inf
// sentinel on entry so the untouched classes normalize to zero probability.
func assignCall(tr []float64, field string) error {
	v, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return errors.New("invalid genotype call " + strconv.Quote(field))
	}
	g := int(v)
	switch {
	case g < 0:
		u := math.Log(1.0 / NClasses)
		tr[0], tr[1], tr[2] = u, u, u
	case g > 2:
		return errors.New("genotypes must be coded as {-1,0,1,2}, got " + strconv.Itoa(g))
	default:
		tr[g] = 0 // log(1)
	}
	return nil
}
