package arcinfo

import "errors"

// Errors returned by the accessor. Conditions reachable from ordinary
// malformed input (bad paths, bad ranges, empty data) additionally record a
// readable message in the accessor's error state; conditions reachable only
// from a misuse of the cursor contract do not, since they indicate a violated
// internal invariant rather than a recoverable external condition.
var (
	// ErrSourceNotFound indicates that a path did not resolve to an
	// existing regular file.
	ErrSourceNotFound = errors.New("source not found")

	// ErrEmptyInput indicates that a zero-length buffer was supplied.
	ErrEmptyInput = errors.New("empty input")

	// ErrInvalidRange indicates a malformed or out-of-bounds (start, end)
	// pair.
	ErrInvalidRange = errors.New("invalid range")

	// ErrInvalidRead indicates a read size below one or a read that would
	// cross the window boundary.
	ErrInvalidRead = errors.New("invalid read")

	// ErrInsufficientData indicates that fewer bytes were available than
	// requested.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrSeekOutOfBounds indicates a seek target outside [0, length].
	ErrSeekOutOfBounds = errors.New("seek out of bounds")

	// ErrFileTooLarge indicates an absolute seek target beyond the
	// maximum representable file offset.
	ErrFileTooLarge = errors.New("file too large")
)
