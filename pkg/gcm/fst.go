package gcm

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hansbonini/gcmtools/pkg/common"
)

// EntryKind is the first byte of an FST entry
type EntryKind uint8

const (
	FileEntry      EntryKind = 0
	DirectoryEntry EntryKind = 1
)

func (k EntryKind) String() string {
	if k == DirectoryEntry {
		return "directory"
	}
	return "file"
}

// FSTEntry is one flattened node of the File String Table.
//
// For files OffsetParent is the absolute payload offset and SizeNext the payload
// length. For directories OffsetParent is the index of the enclosing directory entry
// and SizeNext the index one past the last entry of the subtree.
type FSTEntry struct {
	Kind         EntryKind
	NameOffset   int
	OffsetParent int64
	SizeNext     int64
}

// CalculateFSTLength returns the exact byte length of the FST region (entry table and
// name bank) that will be built for nodes, including the root entry.
func CalculateFSTLength(nodes []Node) int64 {
	length := int64(FST_ENTRY_SIZE)
	for _, node := range nodes {
		length = addFSTLength(length, node)
	}
	return length
}

func addFSTLength(length int64, node Node) int64 {
	length += FST_ENTRY_SIZE + int64(len(node.Name())) + 1
	if dir, ok := node.(*Directory); ok {
		for _, child := range dir.Children {
			length = addFSTLength(length, child)
		}
	}
	return length
}

// fstBuilder accumulates FST entries and the name bank while writing file payloads
// to the image at 32-byte aligned positions.
type fstBuilder struct {
	writer  io.WriteSeeker
	entries []FSTEntry
	names   []byte
}

// newFSTBuilder starts a builder with the root placeholder at index 0
func newFSTBuilder(writer io.WriteSeeker) *fstBuilder {
	return &fstBuilder{
		writer:  writer,
		entries: []FSTEntry{{Kind: DirectoryEntry}},
	}
}

// add emits node (and its subtree) with the given parent entry index and returns the
// entry count afterwards.
func (b *fstBuilder) add(node Node, parent int, path string) (int, error) {
	path = path + "/" + node.Name()

	switch n := node.(type) {
	case *Directory:
		index := len(b.entries)
		entry := FSTEntry{
			Kind:         DirectoryEntry,
			OffsetParent: int64(parent),
		}
		if err := b.appendName(&entry, n.DirName); err != nil {
			return 0, err
		}
		b.entries = append(b.entries, entry)
		common.LogDebug(common.DebugDirectoryEntered, path, index, parent)

		next := len(b.entries)
		for _, child := range n.Children {
			var err error
			if next, err = b.add(child, index, path); err != nil {
				return 0, err
			}
		}
		b.entries[index].SizeNext = int64(next)
		common.LogDebug(common.DebugDirectoryClosed, path, next)

	case *File:
		offset, err := b.writePayload(path, n.Data)
		if err != nil {
			return 0, err
		}
		entry := FSTEntry{
			Kind:         FileEntry,
			OffsetParent: offset,
			SizeNext:     int64(len(n.Data)),
		}
		if err := b.appendName(&entry, n.FileName); err != nil {
			return 0, err
		}
		b.entries = append(b.entries, entry)
		common.LogDebug(common.DebugFilePlaced, path, len(n.Data), offset)

	default:
		return 0, fmt.Errorf("unsupported node type %T at %s", node, path)
	}

	return len(b.entries), nil
}

func (b *fstBuilder) appendName(entry *FSTEntry, name string) error {
	if _, err := common.SafeIntToUint16(len(b.names)); err != nil {
		return fmt.Errorf("%w: %v", ErrNameBankOverflow, err)
	}
	entry.NameOffset = len(b.names)
	b.names = append(b.names, name...)
	b.names = append(b.names, 0)
	return nil
}

// writePayload zero-pads the stream to the next file boundary, writes data and pads
// the tail. It returns the payload offset.
func (b *fstBuilder) writePayload(path string, data []byte) (int64, error) {
	pos, err := common.CurrentOffset(b.writer)
	if err != nil {
		return 0, ioError(OpSeek, path, err)
	}
	if err := common.WriteZeros(b.writer, common.PaddingFor(pos, FILE_ALIGNMENT)); err != nil {
		return 0, ioError(OpWrite, path, err)
	}
	offset := common.AlignUp(pos, FILE_ALIGNMENT)

	if _, err := b.writer.Write(data); err != nil {
		return 0, ioError(OpWrite, path, err)
	}
	if err := common.WriteZeros(b.writer, common.PaddingFor(int64(len(data)), FILE_ALIGNMENT)); err != nil {
		return 0, ioError(OpWrite, path, err)
	}
	return offset, nil
}

// encodedLength is the number of bytes the table and name bank occupy
func (b *fstBuilder) encodedLength() int64 {
	return int64(len(b.entries))*FST_ENTRY_SIZE + int64(len(b.names))
}

// MarshalBinary encodes the entry as 12 big-endian bytes
func (e FSTEntry) MarshalBinary() ([]byte, error) {
	nameOffset, err := common.SafeIntToUint16(e.NameOffset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNameBankOverflow, err)
	}
	offsetParent, err := common.SafeInt64ToInt32(e.OffsetParent)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOffsetOverflow, err)
	}
	sizeNext, err := common.SafeInt64ToInt32(e.SizeNext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOffsetOverflow, err)
	}

	buf := make([]byte, FST_ENTRY_SIZE)
	buf[0] = byte(e.Kind)
	binary.BigEndian.PutUint16(buf[2:4], nameOffset)
	binary.BigEndian.PutUint32(buf[4:8], uint32(offsetParent))
	binary.BigEndian.PutUint32(buf[8:12], uint32(sizeNext))
	return buf, nil
}

// EncodeFST serializes the entry table followed by the name bank
func EncodeFST(entries []FSTEntry, names []byte) ([]byte, error) {
	var buffer bytes.Buffer
	buffer.Grow(len(entries)*FST_ENTRY_SIZE + len(names))
	for i, entry := range entries {
		raw, err := entry.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		buffer.Write(raw)
	}
	buffer.Write(names)
	return buffer.Bytes(), nil
}

// ParseFST decodes an FST region into its entries and name bank. The entry count is
// taken from the root entry and the table is checked for root closure.
func ParseFST(data []byte) ([]FSTEntry, []byte, error) {
	if len(data) < FST_ENTRY_SIZE {
		return nil, nil, fmt.Errorf("%w: %d bytes is shorter than the root entry", ErrInvalidFST, len(data))
	}

	root := decodeEntry(data[:FST_ENTRY_SIZE])
	if root.Kind != DirectoryEntry {
		return nil, nil, fmt.Errorf("%w: root entry is not a directory", ErrInvalidFST)
	}
	count := root.SizeNext
	if count < 1 || count*FST_ENTRY_SIZE > int64(len(data)) {
		return nil, nil, fmt.Errorf("%w: root entry count %d does not fit %d bytes", ErrInvalidFST, count, len(data))
	}

	entries := make([]FSTEntry, count)
	for i := range entries {
		entries[i] = decodeEntry(data[i*FST_ENTRY_SIZE : (i+1)*FST_ENTRY_SIZE])
	}
	names := data[count*FST_ENTRY_SIZE:]

	if err := validateEntries(entries, names); err != nil {
		return nil, nil, err
	}
	return entries, names, nil
}

func decodeEntry(raw []byte) FSTEntry {
	return FSTEntry{
		Kind:         EntryKind(raw[0]),
		NameOffset:   int(binary.BigEndian.Uint16(raw[2:4])),
		OffsetParent: int64(int32(binary.BigEndian.Uint32(raw[4:8]))),
		SizeNext:     int64(int32(binary.BigEndian.Uint32(raw[8:12]))),
	}
}

func validateEntries(entries []FSTEntry, names []byte) error {
	count := int64(len(entries))
	for i := 1; i < len(entries); i++ {
		entry := entries[i]
		if entry.NameOffset >= len(names) {
			return fmt.Errorf("%w: entry %d name offset %d outside name bank", ErrInvalidFST, i, entry.NameOffset)
		}
		switch entry.Kind {
		case DirectoryEntry:
			if entry.OffsetParent < 0 || entry.OffsetParent >= int64(i) {
				return fmt.Errorf("%w: directory %d has parent %d", ErrInvalidFST, i, entry.OffsetParent)
			}
			if entries[entry.OffsetParent].Kind != DirectoryEntry {
				return fmt.Errorf("%w: directory %d parent %d is a file", ErrInvalidFST, i, entry.OffsetParent)
			}
			if entry.SizeNext <= int64(i) || entry.SizeNext > count {
				return fmt.Errorf("%w: directory %d ends at %d", ErrInvalidFST, i, entry.SizeNext)
			}
		case FileEntry:
			if entry.OffsetParent < 0 || entry.SizeNext < 0 {
				return fmt.Errorf("%w: file %d has negative offset or size", ErrInvalidFST, i)
			}
		default:
			return fmt.Errorf("%w: entry %d has unknown kind %d", ErrInvalidFST, i, entry.Kind)
		}
	}
	return nil
}

// EntryName returns the name of entry from the name bank
func EntryName(names []byte, entry FSTEntry) (string, error) {
	return common.CStringAt(names, entry.NameOffset)
}
