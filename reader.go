package arcinfo

import (
	"context"
	"fmt"
	"os"
	"time"

	"arcinfo/telemetry"
)

// Reader is the bounded binary accessor. It owns exactly one source at a
// time (an open file handle or an in-memory buffer), the validated window
// over that source, and the cursor within the window. A format decoder
// implementing [Analyzer] drives the cursor to populate its own state.
//
// A Reader is not safe for concurrent use: the window and cursor are mutable
// shared state, and ReadRange/SaveRange rely on exclusive ownership of that
// state between snapshot and restore.
type Reader struct {
	// config holds the configuration of the accessor
	config *Config

	// analyzer is invoked once per successful Open/SetData
	analyzer Analyzer

	// file source
	path     string
	file     *os.File
	fileSize int64

	// buffer source
	data []byte

	// window
	start  int64
	end    int64
	length int64

	// cursor
	offset int64

	// fragment notes that the source is a partial archive; it informs
	// decoder leniency and is opaque to the accessor itself
	fragment bool

	// lastError is the last human-readable error message; cleared on
	// successful range validation
	lastError string

	// entryCount is the number of file entries the decoder reported
	entryCount int

	// bytesRead counts bytes pulled through the cursor, for telemetry
	bytesRead int64
}

// NewReader creates an accessor that feeds analyzer. A nil config selects
// the defaults of [NewConfig].
func NewReader(analyzer Analyzer, config *Config) *Reader {
	if config == nil {
		config = NewConfig()
	}
	return &Reader{config: config, analyzer: analyzer}
}

// SourceOption adjusts how a single Open or SetData call establishes its
// source.
type SourceOption func(*sourceOptions)

type sourceOptions struct {
	fragment bool
	start    int64
	end      int64
	hasRange bool
}

// AsFragment marks the source as a partial archive, so the decoder may relax
// completeness checks.
func AsFragment() SourceOption {
	return func(o *sourceOptions) {
		o.fragment = true
	}
}

// WithRange restricts the accessor to the absolute byte range [start, end].
// Without it the window covers the whole source.
func WithRange(start, end int64) SourceOption {
	return func(o *sourceOptions) {
		o.start = start
		o.end = end
		o.hasRange = true
	}
}

// Open resets the accessor, establishes path as the active source, validates
// the window, rewinds the cursor and invokes the decoder's Analyze hook.
// Without an explicit range the window end defaults to size - 1.
func (r *Reader) Open(path string, opts ...SourceOption) error {
	r.Reset()
	so := applySourceOptions(opts)
	r.fragment = so.fragment

	r.config.Logger().Debug("opening source", "path", path, "fragment", so.fragment)

	if err := r.openFile(path); err != nil {
		return err
	}
	if err := r.establish(so, r.fileSize); err != nil {
		r.closeSource()
		return err
	}

	if err := r.analyze(); err != nil {
		r.closeSource()
		return err
	}
	return nil
}

// SetData resets the accessor, establishes the supplied buffer as the active
// source, validates the window, rewinds the cursor and invokes the decoder's
// Analyze hook. Buffers larger than the configured maximum are truncated
// before windowing; without an explicit range the window end defaults to the
// truncated length - 1.
func (r *Reader) SetData(data []byte, opts ...SourceOption) error {
	r.Reset()
	so := applySourceOptions(opts)
	r.fragment = so.fragment

	if err := r.setBuffer(data); err != nil {
		return err
	}

	return r.analyzeBuffer(so)
}

// analyzeBuffer finishes SetData once the buffer is in place.
func (r *Reader) analyzeBuffer(so sourceOptions) error {
	if err := r.establish(so, int64(len(r.data))); err != nil {
		r.closeSource()
		return err
	}
	if err := r.analyze(); err != nil {
		r.closeSource()
		return err
	}
	return nil
}

// establish validates the requested window against the source size and
// rewinds the cursor.
func (r *Reader) establish(so sourceOptions, size int64) error {
	start, end := so.start, so.end
	if !so.hasRange && size > 0 {
		end = size - 1
	}

	if err := r.SetRange(start, end); err != nil {
		return err
	}
	return r.Rewind()
}

// analyze runs the decoder hook with the cursor rewound to zero and emits
// telemetry once it finishes.
func (r *Reader) analyze() error {
	if r.analyzer == nil {
		return nil
	}

	td := &telemetry.Data{
		SourceSize: r.sourceSize(),
		Fragment:   r.fragment,
	}
	started := time.Now()
	defer func() {
		td.AnalysisDuration = time.Since(started)
		td.BytesRead = r.bytesRead
		td.EntriesFound = int64(r.entryCount)
		r.config.TelemetryHook()(context.Background(), td)
	}()

	if err := r.analyzer.Analyze(r); err != nil {
		td.LastError = err
		if r.lastError == "" {
			r.lastError = err.Error()
		}
		return fmt.Errorf("analysis failed: %w", err)
	}

	td.Format = r.analyzer.Summary().Format
	r.config.Logger().Debug("analysis finished", "format", td.Format, "entries", r.entryCount)
	return nil
}

// Close releases the file handle if one is open and discards any buffered
// data. It is idempotent.
func (r *Reader) Close() error {
	return r.closeSource()
}

// Reset closes the source and clears path, sizes, window, cursor, error
// state, fragment flag and entry count to their zero values. Every public
// re-entry point calls Reset first, so no state leaks across repeated use of
// the same accessor instance.
func (r *Reader) Reset() {
	r.closeSource()
	r.path = ""
	r.fileSize = 0
	r.start = 0
	r.end = 0
	r.length = 0
	r.offset = 0
	r.fragment = false
	r.lastError = ""
	r.entryCount = 0
	r.bytesRead = 0
}

// Config returns the configuration of the accessor.
func (r *Reader) Config() *Config {
	return r.config
}

// Path returns the resolved path of the file source, or the empty string for
// a buffer source.
func (r *Reader) Path() string {
	return r.path
}

// Size returns the total size of the active source.
func (r *Reader) Size() int64 {
	return r.sourceSize()
}

// Fragment reports whether the source was marked as a partial archive.
func (r *Reader) Fragment() bool {
	return r.fragment
}

// LastError returns the last recorded human-readable error message. It is
// cleared by every successful range validation.
func (r *Reader) LastError() string {
	return r.lastError
}

// EntryCount returns the number of file entries the decoder reported.
func (r *Reader) EntryCount() int {
	return r.entryCount
}

// SetEntryCount records the number of decoded file entries. Called by
// decoders at the end of their Analyze hook.
func (r *Reader) SetEntryCount(n int) {
	r.entryCount = n
}

// failf records a human-readable message in the accessor's error state and
// returns it wrapped around the sentinel kind.
func (r *Reader) failf(kind error, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	r.lastError = msg
	r.config.Logger().Debug("accessor error", "kind", kind, "detail", msg)
	return fmt.Errorf("%w: %s", kind, msg)
}

// applySourceOptions folds opts into their defaults.
func applySourceOptions(opts []SourceOption) sourceOptions {
	var so sourceOptions
	for _, opt := range opts {
		opt(&so)
	}
	return so
}
