package arcinfo

import (
	"fmt"
	"os"
)

// Range extraction: both operations temporarily reconfigure the window to
// service one sub-range request and restore the prior window before
// returning, so the ambient (start, end, length) observable never changes.

// snapshot captures the window and cursor state for later restoration.
type snapshot struct {
	start, end, offset int64
}

// takeSnapshot records the current window and cursor.
func (r *Reader) takeSnapshot() snapshot {
	return snapshot{start: r.start, end: r.end, offset: r.offset}
}

// restoreSnapshot reinstates a previously taken snapshot. The window values
// are restored directly rather than through SetRange so a failure message
// from the attempted sub-range stays readable.
func (r *Reader) restoreSnapshot(s snapshot) error {
	r.start = s.start
	r.end = s.end
	r.length = s.end - s.start + 1
	return r.Seek(s.offset)
}

// ReadRange returns the bytes of the absolute range [start, end] without
// disturbing the accessor's ambient window. On a validation failure the
// prior window is restored and the error returned.
func (r *Reader) ReadRange(start, end int64) ([]byte, error) {
	prior := r.takeSnapshot()

	if err := r.SetRange(start, end); err != nil {
		if rerr := r.restoreSnapshot(prior); rerr != nil {
			return nil, rerr
		}
		return nil, err
	}

	if err := r.Seek(0); err != nil {
		return nil, err
	}
	data, err := r.Read(r.length)
	if rerr := r.restoreSnapshot(prior); rerr != nil {
		return nil, rerr
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// SaveRange streams the bytes of the absolute range [start, end] to a newly
// created file at destination, in chunks of the configured chunk size so
// that large ranges never require the full span in memory at once. It
// returns the total number of bytes written, which on success equals the
// range length. The ambient window is restored before returning.
func (r *Reader) SaveRange(start, end int64, destination string) (int64, error) {
	prior := r.takeSnapshot()

	if err := r.SetRange(start, end); err != nil {
		if rerr := r.restoreSnapshot(prior); rerr != nil {
			return 0, rerr
		}
		return 0, err
	}

	written, err := r.saveWindow(destination)
	if rerr := r.restoreSnapshot(prior); rerr != nil {
		return written, rerr
	}
	return written, err
}

// saveWindow copies the current window to destination chunk by chunk.
func (r *Reader) saveWindow(destination string) (int64, error) {
	if err := r.Seek(0); err != nil {
		return 0, err
	}

	dst, err := os.OpenFile(destination, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return 0, r.failf(ErrSourceNotFound, "cannot create %s: %v", destination, err)
	}
	defer dst.Close()

	r.config.Logger().Debug("saving range", "start", r.start, "end", r.end, "destination", destination)

	var written int64
	chunk := r.config.ChunkSize()
	for written < r.length {
		n := chunk
		if remaining := r.length - written; remaining < n {
			n = remaining
		}

		data, err := r.Read(n)
		if err != nil {
			return written, err
		}
		m, err := dst.Write(data)
		written += int64(m)
		if err != nil {
			return written, fmt.Errorf("cannot write %s: %w", destination, err)
		}
	}

	return written, nil
}
