package arcinfo

import (
	"fmt"
	"os"
	"path/filepath"

	"arcinfo/codec"
)

// openFile resolves path to an existing regular file, probes its size and
// acquires a read-only handle. The handle is a scoped resource of the
// accessor and is released by Close, Reset and any re-open.
func (r *Reader) openFile(path string) error {
	resolved, err := filepath.Abs(path)
	if err != nil {
		return r.failf(ErrSourceNotFound, "cannot resolve path %s: %v", path, err)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return r.failf(ErrSourceNotFound, "cannot access %s: %v", path, err)
	}
	if !info.Mode().IsRegular() {
		return r.failf(ErrSourceNotFound, "%s is not a regular file", path)
	}

	size, err := codec.FileSize(resolved)
	if err != nil {
		return r.failf(ErrSourceNotFound, "cannot probe size of %s: %v", path, err)
	}

	f, err := os.Open(resolved)
	if err != nil {
		return r.failf(ErrSourceNotFound, "cannot open %s: %v", path, err)
	}

	r.path = resolved
	r.file = f
	r.fileSize = size
	return nil
}

// setBuffer establishes an in-memory source, truncating data to the
// configured maximum buffer size.
func (r *Reader) setBuffer(data []byte) error {
	if len(data) == 0 {
		return r.failf(ErrEmptyInput, "no data supplied")
	}

	if max := r.config.MaxBufferSize(); int64(len(data)) > max {
		r.config.Logger().Debug("truncating buffer", "size", len(data), "max", max)
		data = data[:max]
	}

	r.data = data
	return nil
}

// sourceSize returns the total size of the active source: the file size if a
// file is open, else the buffer size.
func (r *Reader) sourceSize() int64 {
	if r.file != nil {
		return r.fileSize
	}
	return int64(len(r.data))
}

// closeSource releases the file handle if one is open and discards any
// buffered data. It is idempotent.
func (r *Reader) closeSource() error {
	var err error
	if r.file != nil {
		if cerr := r.file.Close(); cerr != nil {
			err = fmt.Errorf("cannot close %s: %w", r.path, cerr)
		}
		r.file = nil
	}
	r.data = nil
	return err
}
