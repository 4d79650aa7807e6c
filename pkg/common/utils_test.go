// Package common provides tests for utility functions
package common

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestAlignUp(t *testing.T) {
	testCases := []struct {
		name      string
		value     int64
		alignment int64
		expected  int64
	}{
		{"already aligned", 64, 32, 64},
		{"round up", 12, 32, 32},
		{"zero value", 0, 32, 0},
		{"one past boundary", 257, 256, 512},
		{"zero alignment", 13, 0, 13},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := AlignUp(tc.value, tc.alignment); got != tc.expected {
				t.Errorf("AlignUp(%d, %d) = %d, want %d", tc.value, tc.alignment, got, tc.expected)
			}
		})
	}
}

func TestPaddingFor(t *testing.T) {
	testCases := []struct {
		name      string
		value     int64
		alignment int64
		expected  int64
	}{
		{"five byte file", 5, 32, 27},
		{"aligned file", 32, 32, 0},
		{"empty file", 0, 32, 0},
		{"one short", 31, 32, 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PaddingFor(tc.value, tc.alignment); got != tc.expected {
				t.Errorf("PaddingFor(%d, %d) = %d, want %d", tc.value, tc.alignment, got, tc.expected)
			}
		})
	}
}

func TestIsPowerOfTwo(t *testing.T) {
	for _, v := range []int64{1, 2, 32, 256, 1 << 20} {
		if !IsPowerOfTwo(v) {
			t.Errorf("IsPowerOfTwo(%d) = false, want true", v)
		}
	}
	for _, v := range []int64{0, -4, 3, 96, 1000} {
		if IsPowerOfTwo(v) {
			t.Errorf("IsPowerOfTwo(%d) = true, want false", v)
		}
	}
}

func TestWriteZeros(t *testing.T) {
	var buffer bytes.Buffer
	buffer.WriteByte(0xAA)

	if err := WriteZeros(&buffer, 40000); err != nil {
		t.Fatalf("WriteZeros() failed: %v", err)
	}
	if buffer.Len() != 40001 {
		t.Fatalf("buffer length = %d, want 40001", buffer.Len())
	}
	if bytes.Count(buffer.Bytes()[1:], []byte{0}) != 40000 {
		t.Error("WriteZeros() wrote non-zero bytes")
	}

	if err := WriteZeros(&buffer, 0); err != nil {
		t.Errorf("WriteZeros(0) failed: %v", err)
	}
	if buffer.Len() != 40001 {
		t.Errorf("WriteZeros(0) changed the buffer length to %d", buffer.Len())
	}
}

func TestCurrentOffset(t *testing.T) {
	reader := bytes.NewReader([]byte{1, 2, 3, 4, 5})
	if _, err := reader.Seek(3, 0); err != nil {
		t.Fatalf("Seek() failed: %v", err)
	}
	pos, err := CurrentOffset(reader)
	if err != nil {
		t.Fatalf("CurrentOffset() failed: %v", err)
	}
	if pos != 3 {
		t.Errorf("CurrentOffset() = %d, want 3", pos)
	}
}

func TestReadUint32BE(t *testing.T) {
	testCases := []struct {
		name     string
		data     []byte
		expected uint32
		hasError bool
	}{
		{"normal value", []byte{0x12, 0x34, 0x56, 0x78}, 0x12345678, false},
		{"zero value", []byte{0x00, 0x00, 0x00, 0x00}, 0x00000000, false},
		{"max value", []byte{0xFF, 0xFF, 0xFF, 0xFF}, 0xFFFFFFFF, false},
		{"incomplete data", []byte{0x12, 0x34, 0x56}, 0, true},
		{"empty data", []byte{}, 0, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ReadUint32BE(bytes.NewReader(tc.data))

			if tc.hasError {
				if err == nil {
					t.Errorf("ReadUint32BE() should fail with data %v", tc.data)
				}
				return
			}
			if err != nil {
				t.Errorf("ReadUint32BE() failed: %v", err)
			}
			if result != tc.expected {
				t.Errorf("ReadUint32BE() = 0x%08X, want 0x%08X", result, tc.expected)
			}
		})
	}
}

func TestReadBytes(t *testing.T) {
	testCases := []struct {
		name     string
		data     []byte
		count    int
		expected []byte
		hasError bool
	}{
		{"normal read", []byte{0x01, 0x02, 0x03, 0x04}, 3, []byte{0x01, 0x02, 0x03}, false},
		{"exact read", []byte{0x01, 0x02}, 2, []byte{0x01, 0x02}, false},
		{"zero read", []byte{0x01, 0x02}, 0, []byte{}, false},
		{"insufficient data", []byte{0x01, 0x02}, 3, nil, true},
		{"empty source", []byte{}, 1, nil, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ReadBytes(bytes.NewReader(tc.data), tc.count)

			if tc.hasError {
				if err == nil {
					t.Errorf("ReadBytes() should fail when requesting %d bytes from %v", tc.count, tc.data)
				}
				return
			}
			if err != nil {
				t.Errorf("ReadBytes() failed: %v", err)
			}
			if !bytes.Equal(result, tc.expected) {
				t.Errorf("ReadBytes() = %v, want %v", result, tc.expected)
			}
		})
	}
}

func TestCStringAt(t *testing.T) {
	bank := []byte("a.txt\x00dir\x00\x00")

	testCases := []struct {
		name     string
		offset   int
		expected string
		hasError bool
	}{
		{"first name", 0, "a.txt", false},
		{"second name", 6, "dir", false},
		{"empty name", 10, "", false},
		{"negative offset", -1, "", true},
		{"past the end", len(bank), "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := CStringAt(bank, tc.offset)
			if tc.hasError {
				if err == nil {
					t.Errorf("CStringAt(%d) should fail", tc.offset)
				}
				return
			}
			if err != nil {
				t.Fatalf("CStringAt(%d) failed: %v", tc.offset, err)
			}
			if result != tc.expected {
				t.Errorf("CStringAt(%d) = %q, want %q", tc.offset, result, tc.expected)
			}
		})
	}

	if _, err := CStringAt([]byte("abc"), 0); err == nil {
		t.Error("CStringAt() should fail on an unterminated string")
	}
}

// Test reading back big-endian data written with encoding/binary
func TestReadFunctions_BinaryCompatibility(t *testing.T) {
	var buffer bytes.Buffer

	values := []uint32{0x420, 0x12345678, 30}
	for _, v := range values {
		if err := binary.Write(&buffer, binary.BigEndian, v); err != nil {
			t.Fatalf("binary.Write() failed: %v", err)
		}
	}

	reader := bytes.NewReader(buffer.Bytes())
	for i, want := range values {
		got, err := ReadUint32BE(reader)
		if err != nil {
			t.Fatalf("ReadUint32BE() #%d failed: %v", i, err)
		}
		if got != want {
			t.Errorf("ReadUint32BE() #%d = 0x%08X, want 0x%08X", i, got, want)
		}
	}
}

func TestSafeConversions(t *testing.T) {
	if v, err := SafeIntToUint16(0xFFFF); err != nil || v != 0xFFFF {
		t.Errorf("SafeIntToUint16(0xFFFF) = %d, %v", v, err)
	}
	if _, err := SafeIntToUint16(0x10000); err == nil {
		t.Error("SafeIntToUint16(0x10000) should fail")
	}
	if _, err := SafeIntToUint16(-1); err == nil {
		t.Error("SafeIntToUint16(-1) should fail")
	}

	if v, err := SafeInt64ToInt32(0x7FFFFFFF); err != nil || v != 0x7FFFFFFF {
		t.Errorf("SafeInt64ToInt32(MaxInt32) = %d, %v", v, err)
	}
	if _, err := SafeInt64ToInt32(1 << 31); err == nil {
		t.Error("SafeInt64ToInt32(1<<31) should fail")
	}

	if v, err := SafeInt64ToUint32(0xFFFFFFFF); err != nil || v != 0xFFFFFFFF {
		t.Errorf("SafeInt64ToUint32(MaxUint32) = %d, %v", v, err)
	}
	if _, err := SafeInt64ToUint32(-5); err == nil {
		t.Error("SafeInt64ToUint32(-5) should fail")
	}
	if _, err := SafeInt64ToUint32(1 << 32); err == nil {
		t.Error("SafeInt64ToUint32(1<<32) should fail")
	}

	if v, err := SafeUint32ToInt(0x2440); err != nil || v != 0x2440 {
		t.Errorf("SafeUint32ToInt(0x2440) = %d, %v", v, err)
	}
}
