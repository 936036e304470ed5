package arcinfo

// Window state: the validated [start, end] absolute byte range currently in
// effect, inclusive of end. Every mutation passes through checkRange, which
// is the single validation gate; start, end and length never desynchronize.

// SetRange establishes a new window over the active source. Negative values
// and end < start fail with [ErrInvalidRange] without touching the current
// window; otherwise the pair is stored and validated against the source size.
func (r *Reader) SetRange(start, end int64) error {
	if start < 0 || end < 0 {
		return r.failf(ErrInvalidRange, "range (%d, %d): values must be non-negative", start, end)
	}
	if end < start {
		return r.failf(ErrInvalidRange, "range (%d, %d): end before start", start, end)
	}

	r.start = start
	r.end = end
	return r.checkRange()
}

// checkRange recomputes the window length and validates the window against
// the active source's size. When the size is known and nonzero, start and end
// must both fall below it. On success the error state is cleared. The check
// is idempotent and safe to call repeatedly.
func (r *Reader) checkRange() error {
	r.length = r.end - r.start + 1

	if bound := r.sourceSize(); bound > 0 {
		if r.end >= bound {
			return r.failf(ErrInvalidRange, "range (%d, %d): end exceeds source size %d", r.start, r.end, bound)
		}
		if r.start >= bound {
			return r.failf(ErrInvalidRange, "range (%d, %d): start exceeds source size %d", r.start, r.end, bound)
		}
		if r.length < 1 {
			return r.failf(ErrInvalidRange, "range (%d, %d): empty window", r.start, r.end)
		}
	}

	r.lastError = ""
	return nil
}

// Start returns the absolute offset of the first byte of the window.
func (r *Reader) Start() int64 {
	return r.start
}

// End returns the absolute offset of the last byte of the window.
func (r *Reader) End() int64 {
	return r.end
}

// Length returns the window length in bytes.
func (r *Reader) Length() int64 {
	return r.length
}
