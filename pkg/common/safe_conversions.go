package common

import (
	"fmt"
	"math"
)

// SafeIntToUint16 safely converts int to uint16 with bounds checking
func SafeIntToUint16(value int) (uint16, error) {
	if value < 0 || value > math.MaxUint16 {
		return 0, fmt.Errorf("value %d out of range for uint16 (0-%d)", value, math.MaxUint16)
	}
	return uint16(value), nil
}

// SafeInt64ToUint32 safely converts int64 to uint32 with bounds checking
func SafeInt64ToUint32(value int64) (uint32, error) {
	if value < 0 {
		return 0, fmt.Errorf("value %d is negative, cannot convert to uint32", value)
	}
	if value > math.MaxUint32 {
		return 0, fmt.Errorf("value %d out of range for uint32 (0-%d)", value, math.MaxUint32)
	}
	return uint32(value), nil
}

// SafeInt64ToInt32 safely converts int64 to int32 with bounds checking.
// FST entry fields are stored as signed 32-bit values.
func SafeInt64ToInt32(value int64) (int32, error) {
	if value < math.MinInt32 || value > math.MaxInt32 {
		return 0, fmt.Errorf("value %d out of range for int32 (%d-%d)", value, math.MinInt32, math.MaxInt32)
	}
	return int32(value), nil
}

// SafeUint32ToInt converts a big-endian header field into a slice index
func SafeUint32ToInt(value uint32) (int, error) {
	if uint64(value) > uint64(math.MaxInt) {
		return 0, fmt.Errorf("value %d out of range for int", value)
	}
	return int(value), nil
}
