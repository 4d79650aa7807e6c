package gcm

import (
	"os"
	"path/filepath"

	"github.com/hansbonini/gcmtools/pkg/common"
	"github.com/spf13/afero"
)

// LoadTree reads an extracted disc layout (as produced by WriteFS) back into a virtual
// tree. The children of path/files become top-level nodes in name order. Reserved
// directories are rebuilt from the root, sys/ and disc/ host files unless files/
// already carries a mirror of them.
func LoadTree(fs afero.Fs, path string) (*Directory, error) {
	root := NewDirectory("")

	var mirrored []Node
	filesPath := filepath.Join(path, HostFilesDir)
	exists, err := afero.DirExists(fs, filesPath)
	if err != nil {
		return nil, ioError(OpOpen, filesPath, err)
	}
	if exists {
		if mirrored, err = loadNodes(fs, filesPath); err != nil {
			return nil, err
		}
	}
	mirror := NewDirectory("", mirrored...)

	for _, reserved := range reservedDirs {
		if _, ok := mirror.FindDirectory(reserved.Virtual); ok {
			continue
		}
		dir, err := loadReservedDir(fs, path, reserved)
		if err != nil {
			return nil, err
		}
		if dir != nil {
			root.Add(dir)
		}
	}
	root.Add(mirrored...)

	count := 0
	_ = root.Walk(func(string, Node) error {
		count++
		return nil
	})
	common.LogInfo(common.InfoTreeLoaded, path, count)
	return root, nil
}

// loadReservedDir returns nil when an optional reserved directory has no host files
func loadReservedDir(fs afero.Fs, path string, reserved reservedDir) (*Directory, error) {
	hostDir := filepath.Join(path, reserved.Host)
	dir := NewDirectory(reserved.Virtual)

	for _, file := range reserved.Files {
		hostPath := filepath.Join(hostDir, file.Host)
		data, err := afero.ReadFile(fs, hostPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, ioError(OpRead, hostPath, err)
			}
			if reserved.Required && !file.Optional {
				return nil, missingEntry(hostDir, file.Host)
			}
			continue
		}
		dir.Add(NewFile(file.Virtual, data))
	}

	if len(dir.Children) == 0 && !reserved.Required {
		return nil, nil
	}
	return dir, nil
}

func loadNodes(fs afero.Fs, path string) ([]Node, error) {
	infos, err := afero.ReadDir(fs, path)
	if err != nil {
		return nil, ioError(OpRead, path, err)
	}

	var nodes []Node
	for _, info := range infos {
		childPath := filepath.Join(path, info.Name())
		if info.IsDir() {
			children, err := loadNodes(fs, childPath)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, NewDirectory(info.Name(), children...))
			continue
		}
		data, err := afero.ReadFile(fs, childPath)
		if err != nil {
			return nil, ioError(OpRead, childPath, err)
		}
		nodes = append(nodes, NewFile(info.Name(), data))
	}
	return nodes, nil
}
