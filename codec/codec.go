// Package codec provides the primitive binary decoding helpers shared by the
// archive format decoders: fixed-width little-endian field unpacking, 64-bit
// reconstruction from two 32-bit halves, MS-DOS timestamp conversion, human
// readable size formatting, and large-file-safe size probing.
//
// All decoded values widen to 64-bit integers, so no sign correction is
// needed for unsigned 32-bit fields regardless of the host platform.
package codec

import (
	"fmt"
	"os"
	"time"
)

// Join64 reconstructs a 64-bit value from its low and high 32-bit halves.
func Join64(low, high uint32) uint64 {
	return uint64(low) | uint64(high)<<32
}

// DOSTime converts a packed MS-DOS date/time value to a calendar timestamp
// using local-time semantics. The bit layout is: seconds = 2x(bits 0-4),
// minutes = bits 5-10, hours = bits 11-15, day = bits 16-20,
// month = bits 21-24, year = bits 25-31 counted from 1980.
func DOSTime(raw uint32) time.Time {
	sec := int(raw&0x1f) * 2
	min := int(raw >> 5 & 0x3f)
	hour := int(raw >> 11 & 0x1f)
	day := int(raw >> 16 & 0x1f)
	month := time.Month(raw >> 21 & 0x0f)
	year := int(raw>>25&0x7f) + 1980

	return time.Date(year, month, day, hour, min, sec, 0, time.Local)
}

// sizeUnits are the units used by FormatSize, smallest first.
var sizeUnits = []string{"B", "KB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"}

// FormatSize formats a byte count as a human readable string, dividing by
// 1024 while a next-larger unit exists and rounding to decimals places.
func FormatSize(size uint64, decimals int) string {
	if size < 1024 {
		return fmt.Sprintf("%d B", size)
	}

	value := float64(size)
	unit := 0
	for value >= 1024 && unit < len(sizeUnits)-1 {
		value /= 1024
		unit++
	}

	return fmt.Sprintf("%.*f %s", decimals, value, sizeUnits[unit])
}

// FileSize returns the exact byte size of the file at path. The result is an
// int64, so sizes beyond 2 GiB are reported correctly on all supported
// platforms.
func FileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("cannot stat %s: %w", path, err)
	}
	return info.Size(), nil
}
