package arcinfo

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// TestReadRange verifies sub-range extraction and ambient window restoration
func TestReadRange(t *testing.T) {
	eachSource(t, 200, func(t *testing.T, r *Reader) {
		if _, err := r.Read(10); err != nil {
			t.Fatalf("Read() error: %v", err)
		}
		priorStart, priorEnd, priorLength := r.Start(), r.End(), r.Length()
		priorOffset := r.Offset()

		data, err := r.ReadRange(100, 149)
		if err != nil {
			t.Fatalf("ReadRange() error: %v", err)
		}
		if !bytes.Equal(data, testPattern(200)[100:150]) {
			t.Error("ReadRange() returned wrong bytes")
		}

		// the ambient window and cursor must be untouched
		if r.Start() != priorStart || r.End() != priorEnd || r.Length() != priorLength {
			t.Errorf("ReadRange() mutated window: (%d, %d, %d)", r.Start(), r.End(), r.Length())
		}
		if r.Offset() != priorOffset {
			t.Errorf("ReadRange() mutated cursor: %d, want %d", r.Offset(), priorOffset)
		}
		pos, err := r.Tell()
		if err != nil {
			t.Fatalf("Tell() error: %v", err)
		}
		if pos != priorStart+priorOffset {
			t.Errorf("Tell() = %d, want %d", pos, priorStart+priorOffset)
		}
	}, WithRange(20, 179))
}

// TestReadRangeInvalid verifies window restoration on a failed validation
func TestReadRangeInvalid(t *testing.T) {
	eachSource(t, 200, func(t *testing.T, r *Reader) {
		priorStart, priorEnd, priorLength := r.Start(), r.End(), r.Length()

		if _, err := r.ReadRange(50, 10); !errors.Is(err, ErrInvalidRange) {
			t.Errorf("ReadRange() = %v, want ErrInvalidRange", err)
		}
		if r.LastError() == "" {
			t.Error("error state should stay readable after restoration")
		}
		if _, err := r.ReadRange(0, 1000); !errors.Is(err, ErrInvalidRange) {
			t.Errorf("ReadRange() = %v, want ErrInvalidRange", err)
		}

		if r.Start() != priorStart || r.End() != priorEnd || r.Length() != priorLength {
			t.Errorf("failed ReadRange() mutated window: (%d, %d, %d)", r.Start(), r.End(), r.Length())
		}
	})
}

// TestSaveRange verifies that the written file matches the requested range
func TestSaveRange(t *testing.T) {
	eachSource(t, 5000, func(t *testing.T, r *Reader) {
		destination := filepath.Join(t.TempDir(), "saved.bin")

		written, err := r.SaveRange(100, 4099, destination)
		if err != nil {
			t.Fatalf("SaveRange() error: %v", err)
		}
		if written != 4000 {
			t.Errorf("SaveRange() wrote %d bytes, want 4000", written)
		}

		saved, err := os.ReadFile(destination)
		if err != nil {
			t.Fatalf("cannot read destination: %v", err)
		}
		if int64(len(saved)) != written {
			t.Errorf("destination holds %d bytes, want %d", len(saved), written)
		}
		if !bytes.Equal(saved, testPattern(5000)[100:4100]) {
			t.Error("destination content differs from source range")
		}
	})
}

// TestSaveRangeChunking verifies the chunked write loop with a tiny chunk size
func TestSaveRangeChunking(t *testing.T) {
	r := NewReader(nil, NewConfig(WithChunkSize(7)))
	if err := r.SetData(testPattern(100)); err != nil {
		t.Fatalf("SetData() error: %v", err)
	}

	destination := filepath.Join(t.TempDir(), "chunked.bin")
	written, err := r.SaveRange(3, 98, destination)
	if err != nil {
		t.Fatalf("SaveRange() error: %v", err)
	}
	if written != 96 {
		t.Errorf("SaveRange() wrote %d bytes, want 96", written)
	}

	saved, err := os.ReadFile(destination)
	if err != nil {
		t.Fatalf("cannot read destination: %v", err)
	}
	if !bytes.Equal(saved, testPattern(100)[3:99]) {
		t.Error("destination content differs from source range")
	}
}

// TestSaveRangeBadDestination verifies failure when the destination cannot be created
func TestSaveRangeBadDestination(t *testing.T) {
	r := NewReader(nil, nil)
	if err := r.SetData(testPattern(100)); err != nil {
		t.Fatalf("SetData() error: %v", err)
	}
	priorStart, priorEnd := r.Start(), r.End()

	destination := filepath.Join(t.TempDir(), "no", "such", "dir", "out.bin")
	if _, err := r.SaveRange(0, 99, destination); err == nil {
		t.Error("SaveRange() to uncreatable destination should fail")
	}
	if r.Start() != priorStart || r.End() != priorEnd {
		t.Errorf("failed SaveRange() mutated window: (%d, %d)", r.Start(), r.End())
	}
}
