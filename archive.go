package arcinfo

import "time"

// Analyzer is the capability interface a format decoder implements on top of
// the accessor. Analyze is invoked once per successful Open/SetData with the
// cursor rewound to zero; it drives further reads via the cursor and range
// extraction and populates the decoder's own state. An Analyze error
// surfaces as Open/SetData returning failure with the error state set.
type Analyzer interface {
	Analyze(r *Reader) error
	Summary() Summary
	FileList() []Entry
}

// Entry is one decoded file entry of an archive.
type Entry struct {
	// Name is the stored file name, slash separated
	Name string

	// Size is the uncompressed size in bytes
	Size int64

	// PackedSize is the stored (compressed) size in bytes
	PackedSize int64

	// ModTime is the stored modification time
	ModTime time.Time

	// CRC32 is the stored checksum of the uncompressed data
	CRC32 uint32

	// Method names the compression method
	Method string

	// Offset is the absolute offset of the entry's header in the source
	Offset int64

	// IsDir reports whether the entry is a directory
	IsDir bool

	// Encrypted reports whether the entry data is encrypted
	Encrypted bool
}

// Summary is a presentation-oriented record of decoded contents. It is a
// pure function of already-decoded state.
type Summary struct {
	// Format is the detected archive format
	Format string

	// Version is the detected format version, if the format carries one
	Version string

	// Path of the analyzed file, empty for buffer sources
	Path string

	// Size of the analyzed source in bytes
	Size int64

	// EntryCount is the number of decoded file entries
	EntryCount int

	// PackedSize is the sum of stored entry sizes
	PackedSize int64

	// UnpackedSize is the sum of uncompressed entry sizes
	UnpackedSize int64

	// Fragment reports whether the source was marked as partial
	Fragment bool
}
