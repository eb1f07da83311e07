// Package input provides the stream layer shared by the genotype and
// position loaders: transparent decompression, line reading, fixed-size
// block reading, and the error taxonomy surfaced to callers.
package input

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Magic byte prefixes used to sniff compressed inputs.
var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Stream is a read-only view of a possibly-compressed input file.
// It is not safe for concurrent use; each loader call owns exactly one.
type Stream struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
	zstdReader *zstd.Decoder
	lineNumber int
}

// Open opens path for reading, transparently decompressing gzip and zstd
// content. Compression is detected by magic bytes, not by file extension.
func Open(path string) (*Stream, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &Error{Op: "open stream", Kind: ErrStreamOpen, Msg: err.Error()}
	}

	s := &Stream{file: file}

	// Sniff magic bytes, then seek back to the beginning.
	magic := make([]byte, 4)
	n, err := io.ReadFull(file, magic)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		file.Close()
		return nil, &Error{Op: "open stream", Kind: ErrStreamOpen, Msg: err.Error()}
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return nil, &Error{Op: "open stream", Kind: ErrStreamOpen, Msg: err.Error()}
	}

	switch {
	case n >= 2 && bytes.Equal(magic[:2], gzipMagic):
		s.gzipReader, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, &Error{Op: "open stream", Kind: ErrStreamOpen, Msg: fmt.Sprintf("gzip: %v", err)}
		}
		s.reader = bufio.NewReader(s.gzipReader)
	case n >= 4 && bytes.Equal(magic, zstdMagic):
		s.zstdReader, err = zstd.NewReader(file)
		if err != nil {
			file.Close()
			return nil, &Error{Op: "open stream", Kind: ErrStreamOpen, Msg: fmt.Sprintf("zstd: %v", err)}
		}
		s.reader = bufio.NewReader(s.zstdReader)
	default:
		s.reader = bufio.NewReader(file)
	}

	return s, nil
}

// NewStreamFromReader wraps an io.Reader, bypassing compression sniffing.
// Used by tests and by callers that already hold decompressed content.
func NewStreamFromReader(r io.Reader) *Stream {
	return &Stream{reader: bufio.NewReader(r)}
}

// ReadLine returns the next line with the trailing newline removed.
// The second return value is false once the stream is exhausted.
// A final line without a trailing newline is still returned.
func (s *Stream) ReadLine() (string, bool, error) {
	line, err := s.reader.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			if line == "" {
				return "", false, nil
			}
			// Unterminated last line.
			s.lineNumber++
			return strings.TrimRight(line, "\r\n"), true, nil
		}
		return "", false, fmt.Errorf("read line: %w", err)
	}
	s.lineNumber++
	return strings.TrimRight(line, "\r\n"), true, nil
}

// ReadFull fills buf from the stream. It returns ErrTruncatedInput (wrapped)
// if the stream ends before len(buf) bytes are available.
func (s *Stream) ReadFull(buf []byte) error {
	if _, err := io.ReadFull(s.reader, buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return &Error{Op: "read block", Kind: ErrTruncatedInput,
				Msg: fmt.Sprintf("expected %d bytes", len(buf))}
		}
		return fmt.Errorf("read block: %w", err)
	}
	return nil
}

// AtEnd probes for one more byte and reports whether the stream is
// exhausted. The probed byte, if any, is consumed: loaders only call this
// once, after the last declared record, to detect trailing data.
func (s *Stream) AtEnd() bool {
	_, err := s.reader.ReadByte()
	return err == io.EOF
}

// LineNumber returns the number of lines consumed so far.
func (s *Stream) LineNumber() int {
	return s.lineNumber
}

// Close releases the decompressor (if any) and the underlying file.
func (s *Stream) Close() error {
	if s.zstdReader != nil {
		s.zstdReader.Close()
	}
	if s.gzipReader != nil {
		s.gzipReader.Close()
	}
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}
