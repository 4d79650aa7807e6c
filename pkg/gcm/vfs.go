package gcm

import (
	"fmt"
	"strings"
)

// Node is an entry of the virtual file tree: either a *File or a *Directory.
type Node interface {
	Name() string
	isNode()
}

// File is a leaf of the virtual tree holding its payload bytes.
type File struct {
	FileName string
	Data     []byte
}

// Directory is an ordered list of child nodes. Child order is the order in which
// entries are emitted into the FST.
type Directory struct {
	DirName  string
	Children []Node
}

// NewFile creates a file node
func NewFile(name string, data []byte) *File {
	return &File{FileName: name, Data: data}
}

// NewDirectory creates a directory node with the given children
func NewDirectory(name string, children ...Node) *Directory {
	return &Directory{DirName: name, Children: children}
}

func (f *File) Name() string      { return f.FileName }
func (d *Directory) Name() string { return d.DirName }

func (*File) isNode()      {}
func (*Directory) isNode() {}

// Add appends children to the directory
func (d *Directory) Add(children ...Node) *Directory {
	d.Children = append(d.Children, children...)
	return d
}

// FindDirectory returns the first child directory with the given name
func (d *Directory) FindDirectory(name string) (*Directory, bool) {
	for _, child := range d.Children {
		if dir, ok := child.(*Directory); ok && dir.DirName == name {
			return dir, true
		}
	}
	return nil, false
}

// FindFile returns the first child file with the given name
func (d *Directory) FindFile(name string) (*File, bool) {
	return d.FindFileFunc(func(f *File) bool { return f.FileName == name })
}

// FindFileFunc returns the first child file accepted by match
func (d *Directory) FindFileFunc(match func(*File) bool) (*File, bool) {
	for _, child := range d.Children {
		if file, ok := child.(*File); ok && match(file) {
			return file, true
		}
	}
	return nil, false
}

// findDOL returns the executable of a system directory
func findDOL(sys *Directory) (*File, bool) {
	return sys.FindFileFunc(func(f *File) bool { return strings.HasSuffix(f.FileName, DOLExtension) })
}

// without returns the children of d except skip, preserving order
func (d *Directory) without(skip Node) []Node {
	nodes := make([]Node, 0, len(d.Children))
	for _, child := range d.Children {
		if child != skip {
			nodes = append(nodes, child)
		}
	}
	return nodes
}

// Walk visits every node below d in pre-order, passing the slash-separated path
func (d *Directory) Walk(fn func(path string, node Node) error) error {
	return walkNodes("", d.Children, fn)
}

func walkNodes(prefix string, nodes []Node, fn func(string, Node) error) error {
	for _, node := range nodes {
		path := prefix + "/" + node.Name()
		if err := fn(path, node); err != nil {
			return err
		}
		if dir, ok := node.(*Directory); ok {
			if err := walkNodes(path, dir.Children, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkNodeName rejects names that cannot be used as a single host path element
func checkNodeName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("%w: %q", ErrUnsafeName, name)
	case strings.ContainsAny(name, "/\\\x00"):
		return fmt.Errorf("%w: %q contains a path separator or NUL", ErrUnsafeName, name)
	}
	return nil
}
