package gcm

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hansbonini/gcmtools/pkg/common"
)

// Region names used as IOError paths when a failure is not tied to a virtual file
const (
	regionHeader  = "<header>"
	regionLoader  = "<apploader>"
	regionFST     = "<fst>"
	regionPadding = "<padding>"
)

// ImageWriter places the system blobs, the FST and every file payload of a virtual
// tree into a disc image.
type ImageWriter struct {
	layout Layout
}

// NewImageWriter creates an image writer using layout
func NewImageWriter(layout Layout) *ImageWriter {
	return &ImageWriter{layout: layout}
}

// ImageInfo describes where WriteISO placed the regions of an image
type ImageInfo struct {
	DOLOffset  int64
	FSTOffset  int64
	FSTLength  int64
	EntryCount int
	End        int64
}

// WriteISO writes the image for root with the default layout
func WriteISO(writer io.WriteSeeker, root *Directory) error {
	_, err := NewImageWriter(DefaultLayout()).WriteISO(writer, root)
	return err
}

// WriteISO writes root as a disc image. The writer must be positioned at the start of
// the image. Bytes already written are not rolled back on failure.
func (w *ImageWriter) WriteISO(writer io.WriteSeeker, root *Directory) (*ImageInfo, error) {
	sys, ok := root.FindDirectory(SystemDataDir)
	if !ok {
		return nil, missingEntry(containerName(root), SystemDataDir)
	}
	header, ok := sys.FindFile(HeaderFile)
	if !ok {
		return nil, missingEntry(SystemDataDir, HeaderFile)
	}
	loader, ok := sys.FindFile(AppLoaderFile)
	if !ok {
		return nil, missingEntry(SystemDataDir, AppLoaderFile)
	}
	dol, ok := findDOL(sys)
	if !ok {
		return nil, missingEntry(SystemDataDir, "dol file")
	}

	info := &ImageInfo{}

	if err := writeBlob(writer, regionHeader, header.Data); err != nil {
		return nil, err
	}
	common.LogDebug(common.DebugHeaderPlaced, len(header.Data))

	if err := writeBlob(writer, regionLoader, loader.Data); err != nil {
		return nil, err
	}
	common.LogDebug(common.DebugLoaderPlaced, len(loader.Data), len(header.Data))

	written := int64(len(header.Data) + len(loader.Data))
	info.DOLOffset = common.AlignUp(written, w.layout.DOLAlignment)
	if err := writePadding(writer, info.DOLOffset-written); err != nil {
		return nil, err
	}
	if err := writeBlob(writer, SystemDataDir+"/"+dol.FileName, dol.Data); err != nil {
		return nil, err
	}
	common.LogDebug(common.DebugDOLPlaced, dol.FileName, len(dol.Data), info.DOLOffset)

	dolEnd := info.DOLOffset + int64(len(dol.Data))
	info.FSTOffset = common.AlignUp(dolEnd, w.layout.FSTAlignment)
	if err := writePadding(writer, info.FSTOffset-dolEnd); err != nil {
		return nil, err
	}

	nodes := root.without(sys)
	info.FSTLength = CalculateFSTLength(nodes)
	if err := common.WriteZeros(writer, info.FSTLength); err != nil {
		return nil, ioError(OpWrite, regionFST, err)
	}
	common.LogDebug(common.DebugFSTReserved, info.FSTLength, info.FSTOffset)

	builder := newFSTBuilder(writer)
	for _, node := range nodes {
		if _, err := builder.add(node, 0, ""); err != nil {
			return nil, err
		}
	}
	builder.entries[0].SizeNext = int64(len(builder.entries))
	info.EntryCount = len(builder.entries)

	end, err := common.CurrentOffset(writer)
	if err != nil {
		return nil, ioError(OpSeek, regionFST, err)
	}
	info.End = end

	if err := w.writeFST(writer, info.FSTOffset, info.FSTLength, builder); err != nil {
		return nil, err
	}
	if err := w.patchHeader(writer, info); err != nil {
		return nil, err
	}
	return info, nil
}

// writeFST seeks back to the reserved region and overwrites it with the table
func (w *ImageWriter) writeFST(writer io.WriteSeeker, offset, reserved int64, builder *fstBuilder) error {
	if built := builder.encodedLength(); built != reserved {
		return fmt.Errorf("%w: built %d bytes, reserved %d", ErrFSTSizeMismatch, built, reserved)
	}
	if len(builder.names) > 0xF000 {
		common.LogWarn(common.WarnNameBankNearLimit, len(builder.names))
	}

	table, err := EncodeFST(builder.entries, builder.names)
	if err != nil {
		return common.FormatError(common.ErrFailedToWriteFSTTable, err)
	}
	if _, err := writer.Seek(offset, io.SeekStart); err != nil {
		return ioError(OpSeek, regionFST, err)
	}
	if _, err := writer.Write(table); err != nil {
		return ioError(OpWrite, regionFST, err)
	}
	common.LogDebug(common.DebugFSTWritten, len(builder.entries), len(builder.names))
	return nil
}

// patchHeader stores the DOL offset, FST offset and FST length (twice) in the header
func (w *ImageWriter) patchHeader(writer io.WriteSeeker, info *ImageInfo) error {
	fields := []int64{info.DOLOffset, info.FSTOffset, info.FSTLength, info.FSTLength}

	raw := make([]byte, 4*len(fields))
	for i, value := range fields {
		field, err := common.SafeInt64ToUint32(value)
		if err != nil {
			return common.FormatError(common.ErrFailedToPatchHeaderFields, err)
		}
		binary.BigEndian.PutUint32(raw[i*4:], field)
	}

	if _, err := writer.Seek(w.layout.HeaderPatchOffset, io.SeekStart); err != nil {
		return ioError(OpSeek, regionHeader, err)
	}
	if _, err := writer.Write(raw); err != nil {
		return ioError(OpWrite, regionHeader, err)
	}
	common.LogDebug(common.DebugHeaderPatched, w.layout.HeaderPatchOffset, info.DOLOffset, info.FSTOffset, info.FSTLength)
	return nil
}

func writeBlob(writer io.Writer, name string, data []byte) error {
	if _, err := writer.Write(data); err != nil {
		return ioError(OpWrite, name, err)
	}
	return nil
}

func writePadding(writer io.Writer, count int64) error {
	if err := common.WriteZeros(writer, count); err != nil {
		return ioError(OpWrite, regionPadding, err)
	}
	return nil
}

func containerName(dir *Directory) string {
	if dir.DirName == "" {
		return "root"
	}
	return dir.DirName
}
