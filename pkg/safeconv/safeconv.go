// Package safeconv converts between the integer widths used for byte
// offsets and file sizes, refusing values that do not fit.
package safeconv

import (
	"errors"
	"fmt"
	"math"
)

// MaxInt is the maximum value for int type (platform-dependent).
const MaxInt = int(^uint(0) >> 1)

// ErrOutOfRange is returned by the checked conversions.
var ErrOutOfRange = errors.New("safeconv: value out of range")

// MustOffset converts a parser byte offset to int. Offsets come from
// in-memory source, so overflow means a broken parser and panics.
func MustOffset(v uint) int {
	if v > uint(MaxInt) {
		panic("safeconv: byte offset overflows int")
	}

	return int(v)
}

// ByteCount converts a non-negative size to uint64. Negative sizes are
// reported as zero.
func ByteCount(v int) uint64 {
	if v < 0 {
		return 0
	}

	return uint64(v)
}

// SizeToInt64 converts a parsed byte size to int64.
func SizeToInt64(v uint64) (int64, error) {
	if v > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %d", ErrOutOfRange, v)
	}

	return int64(v), nil
}
