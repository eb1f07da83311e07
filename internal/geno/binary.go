package geno

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// float64FromNative decodes one double from b in the host's byte order.
func float64FromNative(b []byte) float64 {
	return math.Float64frombits(binary.NativeEndian.Uint64(b))
}

// WriteBinary writes m as the packed binary genotype stream consumed by
// Load with Binary set: site-major, then individual, then genotype class,
// one native-order double per value. The sentinel row at site 0 is not
// written.
func WriteBinary(w io.Writer, m *Matrix) error {
	bw := bufio.NewWriter(w)
	buf := make([]byte, 8)

	for s := 1; s <= m.nSites; s++ {
		for i := 0; i < m.nInd; i++ {
			tr := m.Triple(i, s)
			for g := 0; g < NClasses; g++ {
				binary.NativeEndian.PutUint64(buf, math.Float64bits(tr[g]))
				if _, err := bw.Write(buf); err != nil {
					return fmt.Errorf("write genotype block: %w", err)
				}
			}
		}
	}

	return bw.Flush()
}
