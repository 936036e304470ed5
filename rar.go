package arcinfo

import (
	"fmt"
	"io"
	"time"

	"github.com/nwaples/rardecode"

	"arcinfo/codec"
)

// FormatRar is the format name reported for RAR archives.
const FormatRar = "rar"

// magicBytesRar are the magic bytes for Rar files.
var magicBytesRar = [][]byte{
	{0x52, 0x61, 0x72, 0x21, 0x1A, 0x07, 0x00},       // Rar 1.5 - 4.x
	{0x52, 0x61, 0x72, 0x21, 0x1A, 0x07, 0x01, 0x00}, // Rar 5.0
}

// isRar checks if the header matches the magic bytes for Rar files.
func isRar(data []byte) bool {
	return matchesMagicBytes(data, 0, magicBytesRar)
}

// RAR3 block types
const (
	rar3BlockMain = 0x73
	rar3BlockFile = 0x74
	rar3BlockEnd  = 0x7b
)

// RAR3 header flags
const (
	rar3FlagAddSize   = 0x8000 // block carries a data area of ADD_SIZE bytes
	rar3FlagLargeFile = 0x0100 // file block carries high 32-bit size halves
	rar3FlagEncrypted = 0x0004 // file data is encrypted
	rar3FlagDirMask   = 0x00e0 // all set marks a directory entry
	rar3MainEncrypted = 0x0080 // archive headers are encrypted
	rar3MainVolume    = 0x0001 // archive is part of a volume set
)

// RAR5 block types
const (
	rar5BlockMain = 1
	rar5BlockFile = 2
	rar5BlockEnd  = 5
)

// RAR5 file header flags
const (
	rar5FileDirectory = 0x0001
	rar5FileHasMtime  = 0x0002
	rar5FileHasCRC    = 0x0004
)

// RarReader decodes the block structure of a RAR archive through the
// accessor: the 1.5 - 4.x fixed-width block headers, or the 5.0
// variable-length-integer headers. The walk is lenient with truncated
// fragments: it stops at the first block that does not fit the window and
// keeps the entries decoded so far. Block checksums are not verified.
type RarReader struct {
	summary Summary
	entries []Entry

	// encryptedHeaders notes that the block headers themselves are
	// encrypted, so no entry table can be decoded
	encryptedHeaders bool

	// volume notes that the source is part of a multi-volume set
	volume bool
}

// NewRarReader creates a RAR decoder.
func NewRarReader() *RarReader {
	return &RarReader{}
}

// Analyze implements [Analyzer].
func (x *RarReader) Analyze(r *Reader) error {
	x.entries = nil
	x.encryptedHeaders = false
	x.volume = false
	x.summary = Summary{
		Format:   FormatRar,
		Path:     r.Path(),
		Size:     r.Size(),
		Fragment: r.Fragment(),
	}

	marker, err := r.ReadRange(r.Start(), r.Start()+6)
	if err != nil {
		return fmt.Errorf("marker unreadable: %w", err)
	}
	if !isRar(marker) {
		return fmt.Errorf("no rar marker at window start")
	}

	if marker[6] == 0x00 {
		x.summary.Version = "1.5"
		err = x.walkV3(r)
	} else {
		x.summary.Version = "5.0"
		err = x.walkV5(r)
	}
	if err != nil {
		return err
	}

	x.summary.EntryCount = len(x.entries)
	for _, e := range x.entries {
		x.summary.PackedSize += e.PackedSize
		x.summary.UnpackedSize += e.Size
	}
	r.SetEntryCount(len(x.entries))
	return nil
}

// walkV3 walks the fixed-width block headers of a 1.5 - 4.x archive.
func (x *RarReader) walkV3(r *Reader) error {
	pos := int64(7) // past the marker block
	for pos+7 <= r.Length() {
		base, err := r.ReadRange(r.Start()+pos, r.Start()+pos+6)
		if err != nil {
			return err
		}
		f := codec.NewFields(base)
		f.Skip(2) // header crc, not verified
		blockType := f.Uint8()
		flags := f.Uint16()
		headSize := int64(f.Uint16())
		if headSize < 7 {
			break
		}
		if pos+headSize > r.Length() {
			break
		}

		var dataSize int64
		switch blockType {
		case rar3BlockEnd:
			return nil
		case rar3BlockMain:
			x.volume = flags&rar3MainVolume != 0
			if flags&rar3MainEncrypted != 0 {
				x.encryptedHeaders = true
				return nil
			}
		case rar3BlockFile:
			size, err := x.decodeV3File(r, pos, flags, headSize)
			if err != nil {
				return err
			}
			dataSize = size
		default:
			if flags&rar3FlagAddSize != 0 && headSize >= 11 {
				add, err := r.ReadRange(r.Start()+pos+7, r.Start()+pos+10)
				if err != nil {
					return err
				}
				dataSize = int64(codec.NewFields(add).Uint32())
			}
		}

		next := pos + headSize + dataSize
		if next <= pos || next > r.Length() {
			break
		}
		pos = next
	}
	return nil
}

// decodeV3File decodes one 1.5 - 4.x file block header and returns the size
// of its data area.
func (x *RarReader) decodeV3File(r *Reader, pos int64, flags uint16, headSize int64) (int64, error) {
	body, err := r.ReadRange(r.Start()+pos+7, r.Start()+pos+headSize-1)
	if err != nil {
		return 0, err
	}

	f := codec.NewFields(body)
	packSize := f.Uint32()
	size := f.Uint32()
	f.Skip(1) // host os
	crc := f.Uint32()
	ftime := f.Uint32()
	version := f.Uint8()
	method := f.Uint8()
	nameSize := f.Uint16()
	f.Skip(4) // attributes

	highPack := uint32(0)
	highSize := uint32(0)
	if flags&rar3FlagLargeFile != 0 {
		highPack = f.Uint32()
		highSize = f.Uint32()
	}
	name := f.Bytes(int(nameSize))
	if err := f.Err(); err != nil {
		return 0, fmt.Errorf("truncated file header at offset %d: %w", r.Start()+pos, err)
	}

	// sizes above 4 GiB arrive as two 32-bit halves
	packed := codec.Join64(packSize, highPack)
	unpacked := codec.Join64(size, highSize)

	x.entries = append(x.entries, Entry{
		Name:       string(name),
		Size:       int64(unpacked),
		PackedSize: int64(packed),
		ModTime:    codec.DOSTime(ftime),
		CRC32:      crc,
		Method:     rarMethodName(method),
		Offset:     r.Start() + pos,
		IsDir:      flags&rar3FlagDirMask == rar3FlagDirMask,
		Encrypted:  flags&rar3FlagEncrypted != 0,
	})
	if v := fmt.Sprintf("%d.%d", version/10, version%10); v > x.summary.Version {
		x.summary.Version = v
	}
	return int64(packed), nil
}

// walkV5 walks the variable-length-integer block headers of a 5.0 archive.
func (x *RarReader) walkV5(r *Reader) error {
	pos := int64(8) // past the marker
	for pos+7 <= r.Length() {
		// probe enough bytes for the crc and the header size vint
		probeLen := int64(16)
		if remaining := r.Length() - pos; remaining < probeLen {
			probeLen = remaining
		}
		probe, err := r.ReadRange(r.Start()+pos, r.Start()+pos+probeLen-1)
		if err != nil {
			return err
		}
		f := codec.NewFields(probe)
		f.Skip(4) // header crc, not verified
		headSize := int64(f.Vint())
		if f.Err() != nil || headSize == 0 {
			break
		}
		headStart := pos + int64(f.Offset())
		if headStart+headSize > r.Length() {
			break
		}

		header, err := r.ReadRange(r.Start()+headStart, r.Start()+headStart+headSize-1)
		if err != nil {
			return err
		}
		g := codec.NewFields(header)
		blockType := g.Vint()
		blockFlags := g.Vint()
		if blockFlags&0x1 != 0 {
			g.Vint() // extra area size
		}
		var dataSize int64
		if blockFlags&0x2 != 0 {
			dataSize = int64(g.Vint())
		}

		switch blockType {
		case rar5BlockEnd:
			return nil
		case rar5BlockFile:
			x.decodeV5File(r, pos, dataSize, g)
		case rar5BlockMain:
			x.volume = g.Vint()&0x1 != 0 // archive flags: volume bit
		}
		if g.Err() != nil {
			break
		}

		next := headStart + headSize + dataSize
		if next <= pos || next > r.Length() {
			break
		}
		pos = next
	}
	return nil
}

// decodeV5File decodes one 5.0 file header; g is positioned after the common
// block fields and dataSize is the packed data area size.
func (x *RarReader) decodeV5File(r *Reader, pos, dataSize int64, g *codec.Fields) {
	fileFlags := g.Vint()
	size := g.Vint()
	g.Vint() // attributes
	var modTime time.Time
	if fileFlags&rar5FileHasMtime != 0 {
		modTime = time.Unix(int64(g.Uint32()), 0)
	}
	var crc uint32
	if fileFlags&rar5FileHasCRC != 0 {
		crc = g.Uint32()
	}
	compression := g.Vint()
	g.Vint() // host os
	nameLen := g.Vint()
	name := g.Bytes(int(nameLen))
	if g.Err() != nil {
		return
	}

	method := uint8(compression >> 7 & 0x7)
	x.entries = append(x.entries, Entry{
		Name:       string(name),
		Size:       int64(size),
		PackedSize: dataSize,
		ModTime:    modTime,
		CRC32:      crc,
		Method:     rar5MethodName(method),
		Offset:     r.Start() + pos,
		IsDir:      fileFlags&rar5FileDirectory != 0,
	})
}

// Summary implements [Analyzer].
func (x *RarReader) Summary() Summary {
	return x.summary
}

// FileList implements [Analyzer].
func (x *RarReader) FileList() []Entry {
	return x.entries
}

// EncryptedHeaders reports whether the archive's block headers are encrypted
// and the entry table could not be decoded.
func (x *RarReader) EncryptedHeaders() bool {
	return x.encryptedHeaders
}

// Volume reports whether the source is part of a multi-volume set.
func (x *RarReader) Volume() bool {
	return x.volume
}

// Extract writes the uncompressed data of entry to dst and returns the
// number of bytes written. RAR compression is proprietary, so extraction
// delegates to the rardecode package and requires a file source.
func (x *RarReader) Extract(r *Reader, entry Entry, dst io.Writer) (int64, error) {
	if entry.Encrypted || x.encryptedHeaders {
		return 0, fmt.Errorf("cannot extract %s: entry is encrypted", entry.Name)
	}
	if r.Path() == "" {
		return 0, fmt.Errorf("cannot extract %s: rar extraction requires a file source", entry.Name)
	}

	a, err := rardecode.OpenReader(r.Path(), "")
	if err != nil {
		return 0, fmt.Errorf("cannot create rar decoder: %w", err)
	}
	defer a.Close()

	for {
		fh, err := a.Next()
		if err == io.EOF {
			return 0, fmt.Errorf("entry %s not found in %s", entry.Name, r.Path())
		}
		if err != nil {
			return 0, fmt.Errorf("cannot read rar entry: %w", err)
		}
		if fh.Name == entry.Name {
			return io.Copy(dst, &a.Reader)
		}
	}
}

// rarMethodName maps a 1.5 - 4.x method byte (0x30 - 0x35) to a name.
func rarMethodName(method uint8) string {
	switch method {
	case 0x30:
		return "store"
	case 0x31:
		return "fastest"
	case 0x32:
		return "fast"
	case 0x33:
		return "normal"
	case 0x34:
		return "good"
	case 0x35:
		return "best"
	}
	return fmt.Sprintf("method %#x", method)
}

// rar5MethodName maps a 5.0 compression method (0 - 5) to a name.
func rar5MethodName(method uint8) string {
	if method == 0 {
		return "store"
	}
	if method <= 5 {
		return []string{"", "fastest", "fast", "normal", "good", "best"}[method]
	}
	return fmt.Sprintf("method %d", method)
}
