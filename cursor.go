package arcinfo

import (
	"io"
	"math"
)

// Cursor state: the current read offset relative to the window start, always
// within [0, length]. For a file source the handle's own position is the
// absolute truth and is kept synchronized by every seek and read; for a
// buffer the absolute position is computed lazily as start + offset.

// Seek repositions the cursor to pos, relative to the window start. Targets
// outside [0, length] fail with [ErrSeekOutOfBounds].
func (r *Reader) Seek(pos int64) error {
	if pos < 0 || pos > r.length {
		return r.failf(ErrSeekOutOfBounds, "seek to %d outside window of length %d", pos, r.length)
	}

	if r.file != nil {
		if pos > math.MaxInt64-r.start {
			return r.failf(ErrFileTooLarge, "absolute offset %d+%d exceeds maximum file offset", r.start, pos)
		}
		if _, err := r.file.Seek(r.start+pos, io.SeekStart); err != nil {
			return r.failf(ErrSeekOutOfBounds, "cannot seek %s: %v", r.path, err)
		}
	}

	r.offset = pos
	return nil
}

// Tell returns the absolute position in the source: the file handle's actual
// position for a file source, start + offset for a buffer source. The two
// agree after every seek and read.
func (r *Reader) Tell() (int64, error) {
	if r.file != nil {
		pos, err := r.file.Seek(0, io.SeekCurrent)
		if err != nil {
			return 0, r.failf(ErrSeekOutOfBounds, "cannot tell %s: %v", r.path, err)
		}
		return pos, nil
	}
	return r.start + r.offset, nil
}

// Rewind repositions the file handle to its true zero when a file is open,
// then seeks to the window start.
func (r *Reader) Rewind() error {
	if r.file != nil {
		if _, err := r.file.Seek(0, io.SeekStart); err != nil {
			return r.failf(ErrSeekOutOfBounds, "cannot rewind %s: %v", r.path, err)
		}
	}
	return r.Seek(0)
}

// Read returns the next n bytes from the window and advances the cursor.
// A zero count returns an empty slice immediately. Negative counts and reads
// that would cross the window boundary fail with [ErrInvalidRead]; a source
// that yields fewer than n bytes fails with [ErrInsufficientData].
func (r *Reader) Read(n int64) ([]byte, error) {
	if n == 0 {
		return []byte{}, nil
	}
	if n < 0 {
		return nil, r.failf(ErrInvalidRead, "read of %d bytes", n)
	}
	if r.offset+n > r.length {
		return nil, r.failf(ErrInvalidRead, "read of %d bytes at offset %d crosses window of length %d", n, r.offset, r.length)
	}

	buf := make([]byte, n)
	if r.file != nil {
		m, err := io.ReadFull(r.file, buf)
		if err != nil {
			return nil, r.failf(ErrInsufficientData, "read %d of %d bytes from %s: %v", m, n, r.path, err)
		}
	} else {
		abs := r.start + r.offset
		if abs+n > int64(len(r.data)) {
			return nil, r.failf(ErrInsufficientData, "read of %d bytes at offset %d exceeds buffer of %d bytes", n, abs, len(r.data))
		}
		copy(buf, r.data[abs:abs+n])
	}

	r.offset += n
	r.bytesRead += n
	return buf, nil
}

// Offset returns the cursor position relative to the window start.
func (r *Reader) Offset() int64 {
	return r.offset
}
