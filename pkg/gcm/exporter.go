package gcm

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hansbonini/gcmtools/pkg/common"
	"github.com/spf13/afero"
)

// reservedFile maps a file of a reserved virtual directory to its host name
type reservedFile struct {
	Virtual  string
	Host     string
	Optional bool
}

// matches reports whether f is the virtual file described by r. The executable is
// matched by extension since its name varies between discs.
func (r reservedFile) matches(f *File) bool {
	if r.Virtual == DOLFile {
		return strings.HasSuffix(f.FileName, DOLExtension)
	}
	return f.FileName == r.Virtual
}

// reservedDir maps a reserved top-level virtual directory to a host directory.
// An empty Host extracts straight into the export root.
type reservedDir struct {
	Virtual  string
	Host     string
	Required bool
	Files    []reservedFile
}

var reservedDirs = []reservedDir{
	{
		Virtual: RootDataDir,
		Files: []reservedFile{
			{Virtual: "cert.bin", Host: "cert.bin"},
			{Virtual: "h3.bin", Host: "h3.bin"},
			{Virtual: "ticket.bin", Host: "ticket.bin"},
			{Virtual: "tmd.bin", Host: "tmd.bin"},
		},
	},
	{
		Virtual:  SystemDataDir,
		Host:     HostSysDir,
		Required: true,
		Files: []reservedFile{
			{Virtual: HeaderFile, Host: "bi2.bin"},
			{Virtual: AppLoaderFile, Host: "apploader.img"},
			{Virtual: DOLFile, Host: "main.dol"},
			{Virtual: GameTOCFile, Host: "boot.bin", Optional: true},
			{Virtual: FSTFile, Host: "fst.bin", Optional: true},
		},
	},
	{
		Virtual: DiscDataDir,
		Host:    HostDiscDir,
		Files: []reservedFile{
			{Virtual: "header.bin", Host: "header.bin"},
			{Virtual: "region.bin", Host: "region.bin"},
		},
	},
}

// FileSystemExporter recreates a virtual tree on a host filesystem using the canonical
// extracted-disc layout (sys/, disc/, files/).
type FileSystemExporter struct {
	fs afero.Fs
}

// NewFileSystemExporter creates an exporter writing to fs
func NewFileSystemExporter(fs afero.Fs) *FileSystemExporter {
	return &FileSystemExporter{fs: fs}
}

// WriteFS exports root below path on fs
func WriteFS(fs afero.Fs, path string, root *Directory) error {
	return NewFileSystemExporter(fs).WriteFS(path, root)
}

// WriteFS extracts the reserved entries of root into their host names and mirrors
// every other top-level entry, except &&systemdata, into path/files. Nothing is
// cleaned up when an entry is missing or a write fails.
func (e *FileSystemExporter) WriteFS(path string, root *Directory) error {
	if err := e.mkdir(path); err != nil {
		return err
	}

	for _, reserved := range reservedDirs {
		if err := e.writeReservedDir(path, reserved, root); err != nil {
			return err
		}
	}

	filesPath := filepath.Join(path, HostFilesDir)
	if err := e.mkdir(filesPath); err != nil {
		return err
	}

	sys, _ := root.FindDirectory(SystemDataDir)
	for _, node := range root.without(sys) {
		if err := e.writeNode(filesPath, node, filesPath); err != nil {
			return err
		}
	}

	common.LogInfo(common.InfoTreeExported, path)
	return nil
}

func (e *FileSystemExporter) writeReservedDir(path string, reserved reservedDir, root *Directory) error {
	dir, ok := root.FindDirectory(reserved.Virtual)
	if !ok {
		if reserved.Required {
			return missingEntry(containerName(root), reserved.Virtual)
		}
		common.LogDebug(common.InfoReservedSkipped, reserved.Virtual)
		return nil
	}

	dirPath := path
	if reserved.Host != "" {
		dirPath = filepath.Join(path, reserved.Host)
		if err := e.mkdir(dirPath); err != nil {
			return err
		}
	}

	for _, file := range reserved.Files {
		node, ok := dir.FindFileFunc(file.matches)
		if !ok {
			if file.Optional {
				continue
			}
			expected := file.Virtual
			if file.Virtual == DOLFile {
				expected = "dol file"
			}
			return missingEntry(reserved.Virtual, expected)
		}

		hostPath := filepath.Join(dirPath, file.Host)
		common.LogDebug(common.DebugReservedFile, reserved.Virtual, node.FileName, hostPath)
		if err := e.writeFile(hostPath, node.Data); err != nil {
			return err
		}
	}
	return nil
}

// writeNode mirrors node below parentPath, keeping names unchanged. Every written path
// must stay inside root.
func (e *FileSystemExporter) writeNode(root string, node Node, parentPath string) error {
	nodePath := filepath.Join(parentPath, node.Name())
	if err := checkNodeName(node.Name()); err != nil {
		return ioError(OpCreate, nodePath, err)
	}
	if !within(root, nodePath) {
		return ioError(OpCreate, nodePath, fmt.Errorf("%w: path leaves %s", ErrUnsafeName, root))
	}

	switch n := node.(type) {
	case *Directory:
		if err := e.mkdir(nodePath); err != nil {
			return err
		}
		for _, child := range n.Children {
			if err := e.writeNode(root, child, nodePath); err != nil {
				return err
			}
		}
	case *File:
		common.LogDebug(common.DebugMirroredFile, nodePath, len(n.Data))
		return e.writeFile(nodePath, n.Data)
	}
	return nil
}

func (e *FileSystemExporter) mkdir(path string) error {
	if err := e.fs.MkdirAll(path, 0o755); err != nil {
		return ioError(OpMkdir, path, err)
	}
	return nil
}

func (e *FileSystemExporter) writeFile(path string, data []byte) error {
	file, err := e.fs.Create(path)
	if err != nil {
		return ioError(OpCreate, path, err)
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		return ioError(OpWrite, path, err)
	}
	if err := file.Close(); err != nil {
		return ioError(OpWrite, path, err)
	}
	return nil
}

// within reports whether path lies inside root
func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
