package geno

import (
	"bytes"
	"compress/gzip"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/popgenio/gldist/internal/input"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func strconvFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// prob returns the linear-scale probability of class g for (ind, site).
func prob(m *Matrix, ind, site, g int) float64 {
	return math.Exp(m.At(ind, site, g))
}

// requireNormalized asserts that every populated triple is a valid
// probability distribution with no NaN.
func requireNormalized(t *testing.T, m *Matrix) {
	t.Helper()
	for i := 0; i < m.Individuals(); i++ {
		for s := 1; s <= m.Sites(); s++ {
			sum := 0.0
			for g := 0; g < NClasses; g++ {
				lp := m.At(i, s, g)
				require.False(t, math.IsNaN(lp), "NaN at ind %d site %d class %d", i, s, g)
				sum += math.Exp(lp)
			}
			require.InDelta(t, 1.0, sum, 1e-9, "ind %d site %d", i, s)
		}
	}
}

func TestLoadDiscreteCalls(t *testing.T) {
	// 2 individuals, 3 sites; site 3 has individual 0 heterozygous.
	path := writeFile(t, "calls.geno", []byte("0 2\n2 0\n1 -1\n"))

	m, err := Load(path, LoadOptions{Individuals: 2, Sites: 3})
	require.NoError(t, err)
	requireNormalized(t, m)

	assert.Equal(t, ScaleLog, m.Scale())

	// Called genotypes collapse to probability 1 for the called class.
	assert.InDelta(t, 1.0, prob(m, 0, 1, 0), 1e-12)
	assert.InDelta(t, 0.0, prob(m, 0, 1, 1), 1e-12)
	assert.InDelta(t, 1.0, prob(m, 1, 1, 2), 1e-12)
	assert.InDelta(t, 1.0, prob(m, 0, 2, 2), 1e-12)
	assert.InDelta(t, 1.0, prob(m, 0, 3, 1), 1e-12)
	assert.InDelta(t, 0.0, prob(m, 0, 3, 0), 1e-12)
	assert.InDelta(t, 0.0, prob(m, 0, 3, 2), 1e-12)

	// Missing call means uniform uncertainty.
	for g := 0; g < NClasses; g++ {
		assert.InDelta(t, 1.0/3, prob(m, 1, 3, g), 1e-12)
	}
}

func TestLoadProbabilisticLinear(t *testing.T) {
	path := writeFile(t, "probs.geno", []byte(
		"0.9 0.05 0.05 0.2 0.6 0.2\n"+
			"0.1 0.1 0.8 0.25 0.5 0.25\n"))

	m, err := Load(path, LoadOptions{
		Individuals:   2,
		Sites:         2,
		Probabilistic: true,
		Scale:         ScaleLinear,
	})
	require.NoError(t, err)
	requireNormalized(t, m)

	assert.InDelta(t, 0.9, prob(m, 0, 1, 0), 1e-12)
	assert.InDelta(t, 0.6, prob(m, 1, 1, 1), 1e-12)
	assert.InDelta(t, 0.8, prob(m, 0, 2, 2), 1e-12)
	assert.InDelta(t, 0.25, prob(m, 1, 2, 0), 1e-12)
}

func TestLoadProbabilisticLogScale(t *testing.T) {
	line := ""
	for _, p := range []float64{0.7, 0.2, 0.1} {
		line += " " + strconvFloat(math.Log(p))
	}
	path := writeFile(t, "logprobs.geno", []byte(line+"\n"))

	m, err := Load(path, LoadOptions{
		Individuals:   1,
		Sites:         1,
		Probabilistic: true,
		Scale:         ScaleLog,
	})
	require.NoError(t, err)
	requireNormalized(t, m)

	assert.InDelta(t, 0.7, prob(m, 0, 1, 0), 1e-12)
	assert.InDelta(t, 0.2, prob(m, 0, 1, 1), 1e-12)
	assert.InDelta(t, 0.1, prob(m, 0, 1, 2), 1e-12)
}

func TestLoadUnnormalizedLikelihoods(t *testing.T) {
	// Raw likelihoods that do not sum to one must be renormalized.
	path := writeFile(t, "lkls.geno", []byte("2 3 5\n"))

	m, err := Load(path, LoadOptions{
		Individuals:   1,
		Sites:         1,
		Probabilistic: true,
		Scale:         ScaleLinear,
	})
	require.NoError(t, err)

	assert.InDelta(t, 0.2, prob(m, 0, 1, 0), 1e-12)
	assert.InDelta(t, 0.3, prob(m, 0, 1, 1), 1e-12)
	assert.InDelta(t, 0.5, prob(m, 0, 1, 2), 1e-12)
}

func TestLoadIgnoresLeadingColumns(t *testing.T) {
	// Identifier columns before the genotype fields are skipped by position.
	path := writeFile(t, "lead.geno", []byte("chr1 12345 A C 0.9 0.05 0.05\n"))

	m, err := Load(path, LoadOptions{
		Individuals:   1,
		Sites:         1,
		Probabilistic: true,
		Scale:         ScaleLinear,
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.9, prob(m, 0, 1, 0), 1e-12)
}

func TestLoadSkipsBlankLines(t *testing.T) {
	path := writeFile(t, "blank.geno", []byte("0 1\n\n2 0\n"))

	m, err := Load(path, LoadOptions{Individuals: 2, Sites: 2})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, prob(m, 0, 2, 2), 1e-12)
}

func TestLoadHeaderOnSecondLine(t *testing.T) {
	// A whitespace-only line tokenizes to zero fields and is treated as a
	// header: skipped with a warning, without consuming a site slot.
	path := writeFile(t, "header.geno", []byte("0 1\n \t \n2 0\n"))

	core, logs := observer.New(zap.WarnLevel)
	m, err := Load(path, LoadOptions{
		Individuals: 2,
		Sites:       2,
		Logger:      zap.New(core),
	})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, prob(m, 0, 2, 2), 1e-12)

	warned := logs.FilterMessageSnippet("header not on first line").Len()
	assert.Equal(t, 1, warned, "late header must be flagged as suspicious")
}

func TestLoadTooFewFields(t *testing.T) {
	path := writeFile(t, "short.geno", []byte("0\n"))

	_, err := Load(path, LoadOptions{Individuals: 2, Sites: 1})
	assert.True(t, errors.Is(err, input.ErrFormat))
}

func TestLoadInvalidGenotypeCode(t *testing.T) {
	path := writeFile(t, "bad.geno", []byte("3 0\n"))

	_, err := Load(path, LoadOptions{Individuals: 2, Sites: 1})
	assert.True(t, errors.Is(err, input.ErrFormat))
	assert.Contains(t, err.Error(), "{-1,0,1,2}")
}

func TestLoadTruncatedText(t *testing.T) {
	path := writeFile(t, "trunc.geno", []byte("0 1\n2 0\n"))

	_, err := Load(path, LoadOptions{Individuals: 2, Sites: 3})
	assert.True(t, errors.Is(err, input.ErrTruncatedInput))
}

func TestLoadTrailingData(t *testing.T) {
	path := writeFile(t, "extra.geno", []byte("0 1\n2 0\n1 1\n"))

	_, err := Load(path, LoadOptions{Individuals: 2, Sites: 2})
	assert.True(t, errors.Is(err, input.ErrTrailingData))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope"), LoadOptions{Individuals: 1, Sites: 1})
	assert.True(t, errors.Is(err, input.ErrStreamOpen))
}

func TestLoadGzippedText(t *testing.T) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	_, err := gw.Write([]byte("0 1\n2 -1\n"))
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	path := writeFile(t, "calls.geno.gz", buf.Bytes())

	m, err := Load(path, LoadOptions{Individuals: 2, Sites: 2})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, prob(m, 0, 1, 0), 1e-12)
	assert.InDelta(t, 1.0/3, prob(m, 1, 2, 1), 1e-12)
}

func TestLoadBinaryRoundTrip(t *testing.T) {
	src := writeFile(t, "probs.geno", []byte(
		"0.9 0.05 0.05 0.2 0.6 0.2\n"+
			"0.1 0.1 0.8 0.25 0.5 0.25\n"+
			"0.4 0.4 0.2 0.05 0.05 0.9\n"))

	orig, err := Load(src, LoadOptions{
		Individuals:   2,
		Sites:         3,
		Probabilistic: true,
		Scale:         ScaleLinear,
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteBinary(&buf, orig))
	binPath := writeFile(t, "probs.bin", buf.Bytes())

	// Loading already-normalized log-scale values must reproduce them:
	// normalization is idempotent.
	got, err := Load(binPath, LoadOptions{
		Binary:      true,
		Scale:       ScaleLog,
		Individuals: 2,
		Sites:       3,
	})
	require.NoError(t, err)
	requireNormalized(t, got)

	for i := 0; i < 2; i++ {
		for s := 1; s <= 3; s++ {
			for g := 0; g < NClasses; g++ {
				assert.InDelta(t, orig.At(i, s, g), got.At(i, s, g), 1e-12)
			}
		}
	}
}

func TestLoadBinaryTruncated(t *testing.T) {
	src := writeFile(t, "probs.geno", []byte("0.9 0.05 0.05\n0.1 0.1 0.8\n"))
	orig, err := Load(src, LoadOptions{
		Individuals:   1,
		Sites:         2,
		Probabilistic: true,
		Scale:         ScaleLinear,
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteBinary(&buf, orig))

	// Cut the stream mid-record.
	binPath := writeFile(t, "probs.bin", buf.Bytes()[:buf.Len()-11])

	_, err = Load(binPath, LoadOptions{Binary: true, Scale: ScaleLog, Individuals: 1, Sites: 2})
	assert.True(t, errors.Is(err, input.ErrTruncatedInput))
}

func TestLoadBinaryTrailingData(t *testing.T) {
	src := writeFile(t, "probs.geno", []byte("0.9 0.05 0.05\n0.1 0.1 0.8\n"))
	orig, err := Load(src, LoadOptions{
		Individuals:   1,
		Sites:         2,
		Probabilistic: true,
		Scale:         ScaleLinear,
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteBinary(&buf, orig))
	buf.WriteByte(0)
	binPath := writeFile(t, "probs.bin", buf.Bytes())

	_, err = Load(binPath, LoadOptions{Binary: true, Scale: ScaleLog, Individuals: 1, Sites: 2})
	assert.True(t, errors.Is(err, input.ErrTrailingData))
}

func TestLoadBinaryNaN(t *testing.T) {
	m := NewMatrix(1, 1)
	tr := m.Triple(0, 1)
	tr[0], tr[1], tr[2] = math.NaN(), 0, 0

	var buf bytes.Buffer
	require.NoError(t, WriteBinary(&buf, m))
	binPath := writeFile(t, "nan.bin", buf.Bytes())

	_, err := Load(binPath, LoadOptions{Binary: true, Scale: ScaleLog, Individuals: 1, Sites: 1})
	assert.True(t, errors.Is(err, input.ErrCorruptData))
}

func TestIsHeaderFields(t *testing.T) {
	assert.True(t, isHeaderFields(nil))
	assert.True(t, isHeaderFields([]string{}))
	assert.False(t, isHeaderFields([]string{"0"}))
	assert.False(t, isHeaderFields([]string{"ind1", "ind2"}))
}
