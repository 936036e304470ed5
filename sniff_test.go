package arcinfo

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// TestAnalyzerForHeader implements test cases
func TestAnalyzerForHeader(t *testing.T) {
	// prepare test cases
	cases := []struct {
		name     string
		header   []byte
		expected string
	}{
		{
			name:     "zip local file header",
			header:   []byte{0x50, 0x4B, 0x03, 0x04, 0x14, 0x00},
			expected: FormatZip,
		},
		{
			name:     "empty zip archive",
			header:   []byte{0x50, 0x4B, 0x05, 0x06},
			expected: FormatZip,
		},
		{
			name:     "rar 1.5 marker",
			header:   []byte{0x52, 0x61, 0x72, 0x21, 0x1A, 0x07, 0x00},
			expected: FormatRar,
		},
		{
			name:     "rar 5.0 marker",
			header:   []byte{0x52, 0x61, 0x72, 0x21, 0x1A, 0x07, 0x01, 0x00},
			expected: FormatRar,
		},
		{
			name:   "gzip stream",
			header: []byte{0x1F, 0x8B, 0x08, 0x00},
		},
		{
			name:   "too short",
			header: []byte{0x50},
		},
	}

	// run cases
	for i, tc := range cases {
		t.Run(fmt.Sprintf("tc %d", i), func(t *testing.T) {
			a := AnalyzerForHeader(tc.header)
			if tc.expected == "" {
				if a != nil {
					t.Errorf("test case %d failed: %s: expected no analyzer", i, tc.name)
				}
				return
			}
			if a == nil {
				t.Fatalf("test case %d failed: %s: expected an analyzer", i, tc.name)
			}
			switch tc.expected {
			case FormatZip:
				if _, ok := a.(*ZipReader); !ok {
					t.Errorf("test case %d failed: %s: got %T", i, tc.name, a)
				}
			case FormatRar:
				if _, ok := a.(*RarReader); !ok {
					t.Errorf("test case %d failed: %s: got %T", i, tc.name, a)
				}
			}
		})
	}
}

// TestInspect verifies end-to-end detection and analysis of a file
func TestInspect(t *testing.T) {
	data := createTestZip(t, map[string]string{"a.txt": "inspect me"})
	path := filepath.Join(t.TempDir(), "test.zip")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("cannot create test archive: %v", err)
	}

	analyzer, reader, err := Inspect(path, nil)
	if err != nil {
		t.Fatalf("Inspect() error: %v", err)
	}
	defer reader.Close()

	if analyzer.Summary().Format != FormatZip {
		t.Errorf("Inspect() format %q, want %q", analyzer.Summary().Format, FormatZip)
	}
	if len(analyzer.FileList()) != 1 {
		t.Errorf("Inspect() decoded %d entries, want 1", len(analyzer.FileList()))
	}
}

// TestInspectUnsupported verifies the unsupported-format failure
func TestInspectUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.bin")
	if err := os.WriteFile(path, testPattern(64), 0644); err != nil {
		t.Fatalf("cannot create test file: %v", err)
	}

	if _, _, err := Inspect(path, nil); err == nil {
		t.Error("Inspect() on an unsupported format should fail")
	}
}
