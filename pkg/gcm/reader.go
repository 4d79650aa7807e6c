package gcm

import (
	"fmt"
	"io"

	"github.com/hansbonini/gcmtools/pkg/common"
)

// Image is a disc image parsed back into a virtual tree
type Image struct {
	Root      *Directory
	Entries   []FSTEntry
	Names     []byte
	Nodes     []Node // rebuilt node of each entry, indexed like Entries; Nodes[0] is Root
	Size      int64
	DOLOffset int64
	FSTOffset int64
	FSTLength int64
}

// ReadImage parses the header fields and the FST of an image and rebuilds its virtual
// tree. Header, loader and executable are not interpreted: &&systemdata receives the
// raw spans [0, HeaderSize), [HeaderSize, DOL offset) and [DOL offset, FST offset),
// so the loader and executable keep their alignment padding.
func ReadImage(reader io.ReadSeeker, layout Layout) (*Image, error) {
	size, err := reader.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, ioError(OpSeek, regionHeader, err)
	}
	fields, err := readHeaderFields(reader, layout.HeaderPatchOffset)
	if err != nil {
		return nil, err
	}
	img := &Image{
		Size:      size,
		DOLOffset: int64(fields[0]),
		FSTOffset: int64(fields[1]),
		FSTLength: int64(fields[2]),
	}
	if img.DOLOffset < layout.HeaderSize || img.FSTOffset < img.DOLOffset {
		return nil, fmt.Errorf("%w: header places DOL at 0x%X and FST at 0x%X", ErrInvalidFST, img.DOLOffset, img.FSTOffset)
	}

	header, err := img.readSpan(reader, regionHeader, 0, layout.HeaderSize)
	if err != nil {
		return nil, err
	}
	loader, err := img.readSpan(reader, regionLoader, layout.HeaderSize, img.DOLOffset-layout.HeaderSize)
	if err != nil {
		return nil, err
	}
	dol, err := img.readSpan(reader, SystemDataDir+"/"+DOLFile, img.DOLOffset, img.FSTOffset-img.DOLOffset)
	if err != nil {
		return nil, err
	}
	fst, err := img.readSpan(reader, regionFST, img.FSTOffset, img.FSTLength)
	if err != nil {
		return nil, err
	}

	img.Entries, img.Names, err = ParseFST(fst)
	if err != nil {
		return nil, err
	}

	img.Root = NewDirectory("")
	img.Nodes = make([]Node, len(img.Entries))
	img.Nodes[0] = img.Root
	img.Root.Add(NewDirectory(SystemDataDir,
		NewFile(HeaderFile, header),
		NewFile(AppLoaderFile, loader),
		NewFile(DOLFile, dol),
		NewFile(FSTFile, fst),
	))
	if err := img.readChildren(reader, img.Root, "", 1, len(img.Entries)); err != nil {
		return nil, err
	}

	return img, nil
}

// readChildren rebuilds entries [start, end) as children of parent
func (img *Image) readChildren(reader io.ReadSeeker, parent *Directory, path string, start, end int) error {
	for i := start; i < end; {
		entry := img.Entries[i]
		name, err := EntryName(img.Names, entry)
		if err != nil {
			return fmt.Errorf("%w: entry %d: %v", ErrInvalidFST, i, err)
		}
		if err := checkNodeName(name); err != nil {
			return fmt.Errorf("%w: entry %d: %v", ErrInvalidFST, i, err)
		}
		nodePath := path + "/" + name

		if entry.Kind == DirectoryEntry {
			next := int(entry.SizeNext)
			if next > end {
				return fmt.Errorf("%w: directory %s ends at %d past its parent end %d", ErrInvalidFST, nodePath, next, end)
			}
			dir := NewDirectory(name)
			parent.Add(dir)
			img.Nodes[i] = dir
			if err := img.readChildren(reader, dir, nodePath, i+1, next); err != nil {
				return err
			}
			i = next
			continue
		}

		data, err := img.readSpan(reader, nodePath, entry.OffsetParent, entry.SizeNext)
		if err != nil {
			return err
		}
		file := NewFile(name, data)
		parent.Add(file)
		img.Nodes[i] = file
		i++
	}
	return nil
}

// Paths returns the slash-separated virtual path of every entry, indexed like Entries
func (img *Image) Paths() ([]string, error) {
	if len(img.Entries) == 0 {
		return nil, nil
	}
	paths := make([]string, len(img.Entries))
	paths[0] = "/"

	// stack of enclosing directory indices; the root never closes
	stack := []int{0}
	for i := 1; i < len(img.Entries); i++ {
		for len(stack) > 1 && int64(i) >= img.Entries[stack[len(stack)-1]].SizeNext {
			stack = stack[:len(stack)-1]
		}
		name, err := EntryName(img.Names, img.Entries[i])
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrInvalidFST, i, err)
		}
		parent := stack[len(stack)-1]
		if parent == 0 {
			paths[i] = "/" + name
		} else {
			paths[i] = paths[parent] + "/" + name
		}
		if img.Entries[i].Kind == DirectoryEntry {
			stack = append(stack, i)
		}
	}
	return paths, nil
}

func readHeaderFields(reader io.ReadSeeker, offset int64) ([4]uint32, error) {
	var fields [4]uint32
	if _, err := reader.Seek(offset, io.SeekStart); err != nil {
		return fields, ioError(OpSeek, regionHeader, err)
	}
	for i := range fields {
		value, err := common.ReadUint32BE(reader)
		if err != nil {
			return fields, ioError(OpRead, regionHeader, err)
		}
		fields[i] = value
	}
	return fields, nil
}

// readSpan reads [offset, offset+length) after checking it lies inside the image
func (img *Image) readSpan(reader io.ReadSeeker, name string, offset, length int64) ([]byte, error) {
	if length < 0 {
		return nil, fmt.Errorf("%w: %s has negative length %d", ErrInvalidFST, name, length)
	}
	if offset < 0 || offset > img.Size || length > img.Size-offset {
		return nil, ioError(OpRead, name, fmt.Errorf("%w: span [0x%X, 0x%X) past image end 0x%X",
			io.ErrUnexpectedEOF, offset, offset+length, img.Size))
	}
	if _, err := reader.Seek(offset, io.SeekStart); err != nil {
		return nil, ioError(OpSeek, name, err)
	}
	data, err := common.ReadBytes(reader, int(length))
	if err != nil {
		return nil, ioError(OpRead, name, err)
	}
	return data, nil
}
