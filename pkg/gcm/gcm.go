// Package gcm provides GameCube disc (GCM) layout structures and functionality.
// This file contains the disc layout constants and reserved virtual tree names.
package gcm

// Layout constants for GameCube disc images
const (
	DOL_ALIGNMENT       = 0x100  // DOL start alignment
	FST_ALIGNMENT       = 0x100  // FST table start alignment
	FILE_ALIGNMENT      = 32     // Payload start alignment for every file
	HEADER_SIZE         = 0x2440 // boot.bin + bi2.bin
	HEADER_PATCH_OFFSET = 0x420  // DOL offset, FST offset, FST size, max FST size
	FST_ENTRY_SIZE      = 12     // kind(1) + pad(1) + name offset(2) + two 32-bit fields
)

// Reserved top-level directories of the virtual tree
const (
	RootDataDir   = "&&rootdata"
	SystemDataDir = "&&systemdata"
	DiscDataDir   = "&&discdata"
)

// Reserved files inside &&systemdata
const (
	HeaderFile    = "iso.hdr"
	AppLoaderFile = "AppLoader.ldr"
	DOLExtension  = ".dol"
	DOLFile       = "Start.dol"
	GameTOCFile   = "Game.toc"
	FSTFile       = "fst.bin"
)

// Host directories of an exported tree
const (
	HostSysDir   = "sys"
	HostDiscDir  = "disc"
	HostFilesDir = "files"
)

// Layout holds the alignment boundaries and fixed header offsets used when placing
// regions in an image.
type Layout struct {
	DOLAlignment      int64
	FSTAlignment      int64
	HeaderSize        int64
	HeaderPatchOffset int64
}

// DefaultLayout returns the retail GameCube layout.
func DefaultLayout() Layout {
	return Layout{
		DOLAlignment:      DOL_ALIGNMENT,
		FSTAlignment:      FST_ALIGNMENT,
		HeaderSize:        HEADER_SIZE,
		HeaderPatchOffset: HEADER_PATCH_OFFSET,
	}
}
