package arcinfo

import (
	"bytes"
	"fmt"
	"hash/crc32"
	"io"
	"strings"

	"github.com/klauspost/compress/flate"

	"arcinfo/codec"
)

// FormatZip is the format name reported for ZIP archives.
const FormatZip = "zip"

// magicBytesZip contains the magic bytes for a zip archive: a local file
// header, or the end-of-central-directory record of an empty archive.
var magicBytesZip = [][]byte{
	{0x50, 0x4B, 0x03, 0x04},
	{0x50, 0x4B, 0x05, 0x06},
}

// isZip checks if data is a zip archive.
func isZip(data []byte) bool {
	return matchesMagicBytes(data, 0, magicBytesZip)
}

// zip record signatures
const (
	sigZipLocalFile  = 0x04034b50
	sigZipCentralDir = 0x02014b50
	sigZipEOCD       = 0x06054b50
)

// sigZipEOCDBytes is the EOCD signature in stored byte order, for the
// backward tail scan.
var sigZipEOCDBytes = []byte{0x50, 0x4b, 0x05, 0x06}

// maxEOCDScan is the farthest the EOCD record can sit from the end of the
// archive: 22 fixed bytes plus a 65535-byte comment.
const maxEOCDScan = 22 + 65535

// zipCompressionMethods maps the method field to a name.
var zipCompressionMethods = map[uint16]string{
	0:  "store",
	8:  "deflate",
	9:  "deflate64",
	12: "bzip2",
	14: "lzma",
	93: "zstd",
	95: "xz",
}

// ZipReader decodes the entry table of a ZIP archive through the accessor.
// It locates the end-of-central-directory record by scanning backward
// through the window, then walks the central directory; when the central
// directory is missing and the source is a fragment, it falls back to
// scanning local file headers from the window start.
type ZipReader struct {
	summary Summary
	entries []Entry
}

// NewZipReader creates a ZIP decoder.
func NewZipReader() *ZipReader {
	return &ZipReader{}
}

// Analyze implements [Analyzer].
func (z *ZipReader) Analyze(r *Reader) error {
	z.entries = nil
	z.summary = Summary{
		Format:   FormatZip,
		Path:     r.Path(),
		Size:     r.Size(),
		Fragment: r.Fragment(),
	}

	err := z.analyzeCentral(r)
	if err != nil && r.Fragment() {
		// partial archives often lack the central directory
		r.Config().Logger().Debug("no central directory, scanning local headers", "err", err)
		err = z.scanLocalHeaders(r)
	}
	if err != nil {
		return err
	}

	z.finishSummary()
	r.SetEntryCount(len(z.entries))
	return nil
}

// analyzeCentral locates the EOCD record and walks the central directory.
func (z *ZipReader) analyzeCentral(r *Reader) error {
	tailLen := r.Length()
	if tailLen > maxEOCDScan {
		tailLen = maxEOCDScan
	}
	tail, err := r.ReadRange(r.End()-tailLen+1, r.End())
	if err != nil {
		return err
	}

	// scan backward for the EOCD signature
	pos := bytes.LastIndex(tail, sigZipEOCDBytes)
	for pos >= 0 && len(tail)-pos < 22 {
		pos = bytes.LastIndex(tail[:pos], sigZipEOCDBytes)
	}
	if pos < 0 {
		return fmt.Errorf("no end of central directory record")
	}

	f := codec.NewFields(tail[pos:])
	f.Skip(4) // signature
	f.Skip(2) // disk number
	f.Skip(2) // central directory disk
	f.Skip(2) // entries on this disk
	count := f.Uint16()
	cdSize := f.Uint32()
	cdOffset := f.Uint32()
	if err := f.Err(); err != nil {
		return fmt.Errorf("truncated end of central directory record: %w", err)
	}

	if count == 0 || cdSize == 0 {
		return nil
	}

	// central directory offsets are relative to the archive start, which
	// is the window start when the accessor was range-opened
	cdStart := r.Start() + int64(cdOffset)
	cd, err := r.ReadRange(cdStart, cdStart+int64(cdSize)-1)
	if err != nil {
		return fmt.Errorf("central directory unreadable: %w", err)
	}

	return z.walkCentralDirectory(r, cd)
}

// walkCentralDirectory decodes consecutive central directory file headers.
func (z *ZipReader) walkCentralDirectory(r *Reader, cd []byte) error {
	var maxVersion uint16
	f := codec.NewFields(cd)
	for f.Remaining() >= 46 {
		if f.Uint32() != sigZipCentralDir {
			break
		}
		f.Skip(2) // version made by
		verNeed := f.Uint16()
		flags := f.Uint16()
		method := f.Uint16()
		modTime := f.Uint16()
		modDate := f.Uint16()
		crc := f.Uint32()
		packedSize := uint64(f.Uint32())
		size := uint64(f.Uint32())
		nameLen := f.Uint16()
		extraLen := f.Uint16()
		commentLen := f.Uint16()
		f.Skip(2) // disk number start
		f.Skip(2) // internal attributes
		externalAttrs := f.Uint32()
		headerOffset := uint64(f.Uint32())
		name := string(f.Bytes(int(nameLen)))
		extra := f.Bytes(int(extraLen))
		f.Skip(int(commentLen))
		if err := f.Err(); err != nil {
			return fmt.Errorf("truncated central directory header: %w", err)
		}

		// zip64 extra field carries the values that overflowed 32 bits
		size, packedSize, headerOffset = parseZip64Extra(extra, size, packedSize, headerOffset)

		z.entries = append(z.entries, Entry{
			Name:       name,
			Size:       int64(size),
			PackedSize: int64(packedSize),
			ModTime:    codec.DOSTime(uint32(modDate)<<16 | uint32(modTime)),
			CRC32:      crc,
			Method:     zipMethodName(method),
			Offset:     r.Start() + int64(headerOffset),
			IsDir:      strings.HasSuffix(name, "/") || externalAttrs&0x10 != 0,
			Encrypted:  flags&0x1 != 0,
		})
		if verNeed > maxVersion {
			maxVersion = verNeed
		}
	}
	if maxVersion > 0 {
		z.summary.Version = fmt.Sprintf("%d.%d", maxVersion/10, maxVersion%10)
	}
	return nil
}

// parseZip64Extra resolves 0xffffffff placeholders from the zip64 extended
// information extra field (header id 0x0001).
func parseZip64Extra(extra []byte, size, packedSize, headerOffset uint64) (uint64, uint64, uint64) {
	f := codec.NewFields(extra)
	for f.Remaining() >= 4 {
		id := f.Uint16()
		length := f.Uint16()
		if id != 0x0001 {
			f.Skip(int(length))
			continue
		}
		z := codec.NewFields(f.Bytes(int(length)))
		if size == 0xffffffff {
			size = z.Uint64()
		}
		if packedSize == 0xffffffff {
			packedSize = z.Uint64()
		}
		if headerOffset == 0xffffffff {
			headerOffset = z.Uint64()
		}
		break
	}
	return size, packedSize, headerOffset
}

// scanLocalHeaders walks local file headers from the window start. Used for
// fragments, where the trailing central directory is usually missing. The
// scan stops at the first record that is not a local file header or that
// cannot be skipped.
func (z *ZipReader) scanLocalHeaders(r *Reader) error {
	if err := r.Seek(0); err != nil {
		return err
	}

	for r.Length()-r.Offset() >= 30 {
		headerOffset := r.Start() + r.Offset()

		hdr, err := r.Read(30)
		if err != nil {
			return err
		}
		f := codec.NewFields(hdr)
		if f.Uint32() != sigZipLocalFile {
			break
		}
		f.Skip(2) // version needed
		flags := f.Uint16()
		method := f.Uint16()
		modTime := f.Uint16()
		modDate := f.Uint16()
		crc := f.Uint32()
		packedSize := f.Uint32()
		size := f.Uint32()
		nameLen := f.Uint16()
		extraLen := f.Uint16()

		if r.Length()-r.Offset() < int64(nameLen) {
			break
		}
		nameBytes, err := r.Read(int64(nameLen))
		if err != nil {
			return err
		}

		z.entries = append(z.entries, Entry{
			Name:       string(nameBytes),
			Size:       int64(size),
			PackedSize: int64(packedSize),
			ModTime:    codec.DOSTime(uint32(modDate)<<16 | uint32(modTime)),
			CRC32:      crc,
			Method:     zipMethodName(method),
			Offset:     headerOffset,
			IsDir:      strings.HasSuffix(string(nameBytes), "/"),
			Encrypted:  flags&0x1 != 0,
		})

		// a data descriptor entry stores zero sizes up front, so the
		// data cannot be skipped without inflating it
		if packedSize == 0 && flags&0x8 != 0 {
			break
		}
		next := r.Offset() + int64(extraLen) + int64(packedSize)
		if next > r.Length() {
			break
		}
		if err := r.Seek(next); err != nil {
			return err
		}
	}
	return nil
}

// finishSummary fills the aggregate fields of the summary.
func (z *ZipReader) finishSummary() {
	z.summary.EntryCount = len(z.entries)
	for _, e := range z.entries {
		z.summary.PackedSize += e.PackedSize
		z.summary.UnpackedSize += e.Size
	}
}

// Summary implements [Analyzer].
func (z *ZipReader) Summary() Summary {
	return z.summary
}

// FileList implements [Analyzer].
func (z *ZipReader) FileList() []Entry {
	return z.entries
}

// Extract writes the uncompressed data of entry to dst and returns the
// number of bytes written. Only stored and deflated entries are supported;
// the checksum of the inflated data is verified against the entry's CRC.
// The accessor must still hold the source the entry was decoded from.
func (z *ZipReader) Extract(r *Reader, entry Entry, dst io.Writer) (int64, error) {
	if entry.Encrypted {
		return 0, fmt.Errorf("cannot extract %s: entry is encrypted", entry.Name)
	}
	if entry.IsDir || entry.PackedSize == 0 {
		return 0, nil
	}

	// the central directory does not record the local extra field length,
	// so the local header must be re-read
	hdr, err := r.ReadRange(entry.Offset, entry.Offset+29)
	if err != nil {
		return 0, fmt.Errorf("local header of %s unreadable: %w", entry.Name, err)
	}
	f := codec.NewFields(hdr)
	if f.Uint32() != sigZipLocalFile {
		return 0, fmt.Errorf("no local header at offset %d", entry.Offset)
	}
	f.Skip(22) // up to the name length field
	nameLen := f.Uint16()
	extraLen := f.Uint16()

	dataStart := entry.Offset + 30 + int64(nameLen) + int64(extraLen)
	data, err := r.ReadRange(dataStart, dataStart+entry.PackedSize-1)
	if err != nil {
		return 0, fmt.Errorf("data of %s unreadable: %w", entry.Name, err)
	}

	sum := crc32.NewIEEE()
	out := io.MultiWriter(dst, sum)

	var written int64
	switch entry.Method {
	case "store":
		n, err := out.Write(data)
		written = int64(n)
		if err != nil {
			return written, err
		}
	case "deflate":
		fr := flate.NewReader(bytes.NewReader(data))
		written, err = io.Copy(out, fr)
		if cerr := fr.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return written, fmt.Errorf("cannot inflate %s: %w", entry.Name, err)
		}
	default:
		return 0, fmt.Errorf("cannot extract %s: unsupported method %s", entry.Name, entry.Method)
	}

	if entry.CRC32 != 0 && sum.Sum32() != entry.CRC32 {
		return written, fmt.Errorf("checksum mismatch for %s: got %08x, want %08x", entry.Name, sum.Sum32(), entry.CRC32)
	}
	return written, nil
}

// zipMethodName maps a compression method field to a readable name.
func zipMethodName(method uint16) string {
	if name, ok := zipCompressionMethods[method]; ok {
		return name
	}
	return fmt.Sprintf("method %d", method)
}
