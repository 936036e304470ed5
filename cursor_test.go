package arcinfo

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// testPattern returns n bytes with a recognizable sequence
func testPattern(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i % 251)
	}
	return data
}

// bufferReader returns an accessor over an in-memory pattern source
func bufferReader(t *testing.T, n int, opts ...SourceOption) *Reader {
	t.Helper()
	r := NewReader(nil, nil)
	if err := r.SetData(testPattern(n), opts...); err != nil {
		t.Fatalf("SetData() error: %v", err)
	}
	return r
}

// fileReader returns an accessor over a pattern file source
func fileReader(t *testing.T, n int, opts ...SourceOption) *Reader {
	t.Helper()
	path := filepath.Join(t.TempDir(), "source.bin")
	if err := os.WriteFile(path, testPattern(n), 0644); err != nil {
		t.Fatalf("cannot create test file: %v", err)
	}
	r := NewReader(nil, nil)
	if err := r.Open(path, opts...); err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

// eachSource runs a subtest against a buffer source and a file source
func eachSource(t *testing.T, n int, fn func(t *testing.T, r *Reader), opts ...SourceOption) {
	t.Run("buffer", func(t *testing.T) {
		fn(t, bufferReader(t, n, opts...))
	})
	t.Run("file", func(t *testing.T) {
		fn(t, fileReader(t, n, opts...))
	})
}

// TestReadAdvancesTell verifies that read(n) advances the absolute position by n
func TestReadAdvancesTell(t *testing.T) {
	eachSource(t, 100, func(t *testing.T, r *Reader) {
		before, err := r.Tell()
		if err != nil {
			t.Fatalf("Tell() error: %v", err)
		}

		data, err := r.Read(17)
		if err != nil {
			t.Fatalf("Read() error: %v", err)
		}
		if !bytes.Equal(data, testPattern(100)[10:27]) {
			t.Error("Read() returned wrong bytes")
		}

		after, err := r.Tell()
		if err != nil {
			t.Fatalf("Tell() error: %v", err)
		}
		if after-before != 17 {
			t.Errorf("Tell() advanced by %d, want 17", after-before)
		}
		if r.Offset() != 17 {
			t.Errorf("Offset() = %d, want 17", r.Offset())
		}
	}, WithRange(10, 59))
}

// TestRewind verifies that rewind leaves tell at the window start
func TestRewind(t *testing.T) {
	eachSource(t, 100, func(t *testing.T, r *Reader) {
		if _, err := r.Read(20); err != nil {
			t.Fatalf("Read() error: %v", err)
		}
		if err := r.Rewind(); err != nil {
			t.Fatalf("Rewind() error: %v", err)
		}

		pos, err := r.Tell()
		if err != nil {
			t.Fatalf("Tell() error: %v", err)
		}
		if pos != r.Start() {
			t.Errorf("Tell() after Rewind() = %d, want start %d", pos, r.Start())
		}
		if r.Offset() != 0 {
			t.Errorf("Offset() after Rewind() = %d, want 0", r.Offset())
		}
	}, WithRange(25, 74))
}

// TestSeekBounds implements test cases
func TestSeekBounds(t *testing.T) {
	// prepare test cases
	cases := []struct {
		name     string
		pos      int64
		expected error
	}{
		{name: "window start", pos: 0},
		{name: "window middle", pos: 25},
		{name: "window end", pos: 50},
		{name: "negative", pos: -1, expected: ErrSeekOutOfBounds},
		{name: "past window", pos: 51, expected: ErrSeekOutOfBounds},
	}

	// run cases
	for i, tc := range cases {
		t.Run(fmt.Sprintf("tc %d", i), func(t *testing.T) {
			eachSource(t, 100, func(t *testing.T, r *Reader) {
				err := r.Seek(tc.pos)
				if tc.expected == nil && err != nil {
					t.Errorf("test case %d failed: %s: %v", i, tc.name, err)
				}
				if tc.expected != nil && !errors.Is(err, tc.expected) {
					t.Errorf("test case %d failed: %s: got %v, want %v", i, tc.name, err, tc.expected)
				}
			}, WithRange(10, 59))
		})
	}
}

// TestReadErrors implements test cases
func TestReadErrors(t *testing.T) {
	// prepare test cases
	cases := []struct {
		name     string
		seek     int64
		count    int64
		expected error
	}{
		{name: "zero read", seek: 0, count: 0},
		{name: "negative read", seek: 0, count: -4, expected: ErrInvalidRead},
		{name: "window overrun", seek: 40, count: 11, expected: ErrInvalidRead},
		{name: "full window", seek: 0, count: 50},
	}

	// run cases
	for i, tc := range cases {
		t.Run(fmt.Sprintf("tc %d", i), func(t *testing.T) {
			eachSource(t, 100, func(t *testing.T, r *Reader) {
				if err := r.Seek(tc.seek); err != nil {
					t.Fatalf("Seek() error: %v", err)
				}
				data, err := r.Read(tc.count)
				if tc.expected != nil {
					if !errors.Is(err, tc.expected) {
						t.Errorf("test case %d failed: %s: got %v, want %v", i, tc.name, err, tc.expected)
					}
					return
				}
				if err != nil {
					t.Fatalf("test case %d failed: %s: %v", i, tc.name, err)
				}
				if int64(len(data)) != tc.count {
					t.Errorf("test case %d failed: %s: read %d bytes, want %d", i, tc.name, len(data), tc.count)
				}
			}, WithRange(10, 59))
		})
	}
}

// TestReadInsufficientData verifies the short-read condition on a truncated file
func TestReadInsufficientData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "truncated.bin")
	if err := os.WriteFile(path, testPattern(100), 0644); err != nil {
		t.Fatalf("cannot create test file: %v", err)
	}

	r := NewReader(nil, nil)
	if err := r.Open(path); err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer r.Close()

	// shrink the file behind the accessor's back, so the validated
	// window promises more bytes than the source can deliver
	if err := os.Truncate(path, 40); err != nil {
		t.Fatalf("cannot truncate test file: %v", err)
	}

	if _, err := r.Read(100); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("Read() on truncated file = %v, want ErrInsufficientData", err)
	}
}
