package arcinfo

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// availableAnalyzer pairs a header check with a decoder constructor.
type availableAnalyzer struct {
	NewAnalyzer func() Analyzer
	HeaderCheck func([]byte) bool
	MagicBytes  [][]byte
}

// availableAnalyzers is the collection of bundled format decoders with their
// magic bytes.
var availableAnalyzers = map[string]availableAnalyzer{
	FormatZip: {
		NewAnalyzer: func() Analyzer { return NewZipReader() },
		HeaderCheck: isZip,
		MagicBytes:  magicBytesZip,
	},
	FormatRar: {
		NewAnalyzer: func() Analyzer { return NewRarReader() },
		HeaderCheck: isRar,
		MagicBytes:  magicBytesRar,
	},
}

// maxHeaderLength is the longest header any bundled decoder needs to
// identify its format.
var maxHeaderLength int

// init calculates the maximum header length
func init() {
	for _, a := range availableAnalyzers {
		for _, mb := range a.MagicBytes {
			if len(mb) > maxHeaderLength {
				maxHeaderLength = len(mb)
			}
		}
	}
}

// matchesMagicBytes checks if data matches one of the magicBytes
// sequences at offset.
func matchesMagicBytes(data []byte, offset int, magicBytes [][]byte) bool {
	// check all possible magic bytes until match is found
	for _, mb := range magicBytes {
		// check if header is long enough
		if offset+len(mb) > len(data) {
			continue
		}

		// check for byte match
		if bytes.Equal(mb, data[offset:offset+len(mb)]) {
			return true
		}
	}

	// no match found
	return false
}

// AnalyzerForHeader returns a fresh decoder for the format identified by the
// given header bytes, or nil if no bundled decoder matches.
func AnalyzerForHeader(header []byte) Analyzer {
	for _, a := range availableAnalyzers {
		if a.HeaderCheck(header) {
			return a.NewAnalyzer()
		}
	}
	return nil
}

// Inspect opens the file at path with a decoder chosen by its magic bytes
// and returns the decoder and its accessor after a successful analysis.
// The caller owns the returned accessor and must Close it.
func Inspect(path string, config *Config, opts ...SourceOption) (Analyzer, *Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: cannot open %s: %v", ErrSourceNotFound, path, err)
	}
	header := make([]byte, maxHeaderLength)
	n, err := io.ReadFull(f, header)
	f.Close()
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, nil, fmt.Errorf("cannot read header of %s: %w", path, err)
	}

	analyzer := AnalyzerForHeader(header[:n])
	if analyzer == nil {
		return nil, nil, fmt.Errorf("archive type not supported: %s", path)
	}

	r := NewReader(analyzer, config)
	if err := r.Open(path, opts...); err != nil {
		r.Close()
		return nil, nil, err
	}
	return analyzer, r, nil
}
