package common

import (
	"encoding/binary"
	"fmt"
	"io"
)

// AlignUp rounds value up to the next multiple of alignment
func AlignUp(value, alignment int64) int64 {
	if alignment <= 0 {
		return value
	}
	return ((value + alignment - 1) / alignment) * alignment
}

// PaddingFor returns the number of zero bytes needed after value to reach the next
// multiple of alignment (0 when already aligned)
func PaddingFor(value, alignment int64) int64 {
	if alignment <= 0 {
		return 0
	}
	return (alignment - value%alignment) % alignment
}

// IsPowerOfTwo reports whether value is a positive power of two
func IsPowerOfTwo(value int64) bool {
	return value > 0 && value&(value-1) == 0
}

// WriteZeros writes count zero bytes to writer
func WriteZeros(writer io.Writer, count int64) error {
	if count <= 0 {
		return nil
	}
	_, err := io.CopyN(writer, zeroReader{}, count)
	return err
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}

// CurrentOffset returns the current position of a seeker
func CurrentOffset(seeker io.Seeker) (int64, error) {
	return seeker.Seek(0, io.SeekCurrent)
}

// ReadUint32BE reads a uint32 in big-endian format
func ReadUint32BE(reader io.Reader) (uint32, error) {
	var value uint32
	err := binary.Read(reader, binary.BigEndian, &value)
	return value, err
}

// ReadBytes reads a specified number of bytes
func ReadBytes(reader io.Reader, count int) ([]byte, error) {
	buffer := make([]byte, count)
	n, err := io.ReadFull(reader, buffer)
	if err != nil {
		return nil, err
	}
	if n != count {
		return nil, fmt.Errorf("expected to read %d bytes, got %d", count, n)
	}
	return buffer, nil
}

// CStringAt returns the NUL-terminated string starting at offset in data
func CStringAt(data []byte, offset int) (string, error) {
	if offset < 0 || offset >= len(data) {
		return "", fmt.Errorf("string offset %d out of range (0-%d)", offset, len(data))
	}
	for end := offset; end < len(data); end++ {
		if data[end] == 0 {
			return string(data[offset:end]), nil
		}
	}
	return "", fmt.Errorf("string at offset %d is not NUL-terminated", offset)
}
