package gcm

import (
	"bytes"
	"fmt"
	"math/rand"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const sinkPath = "/out.iso"

// newSink returns an in-memory seekable file to write images into
func newSink(t *testing.T) (afero.Fs, afero.File) {
	t.Helper()
	fs := afero.NewMemMapFs()
	file, err := fs.Create(sinkPath)
	require.NoError(t, err)
	t.Cleanup(func() { file.Close() })
	return fs, file
}

func sinkBytes(t *testing.T, fs afero.Fs) []byte {
	t.Helper()
	data, err := afero.ReadFile(fs, sinkPath)
	require.NoError(t, err)
	return data
}

// scenarioTree is the minimal tree: a 4-byte header, an 8-byte loader, a 16-byte DOL
// and one 5-byte file.
func scenarioTree() *Directory {
	return NewDirectory("",
		NewDirectory(SystemDataDir,
			NewFile(HeaderFile, []byte{0xAA, 0xAA, 0xAA, 0xAA}),
			NewFile(AppLoaderFile, make([]byte, 8)),
			NewFile("game.dol", bytes.Repeat([]byte{0xD0}, 16)),
		),
		NewFile("a.txt", []byte("hello")),
	)
}

// retailSystemDir carries a full-size header so the patched fields land inside it
func retailSystemDir() *Directory {
	header := bytes.Repeat([]byte{0x48}, HEADER_SIZE)
	loader := bytes.Repeat([]byte{0x4C}, 0x1234)
	dol := bytes.Repeat([]byte{0xD0}, 0x777)
	return NewDirectory(SystemDataDir,
		NewFile(HeaderFile, header),
		NewFile(AppLoaderFile, loader),
		NewFile(DOLFile, dol),
	)
}

// contentTree is a nested tree with empty directories and zero-length files
func contentTree() []Node {
	return []Node{
		NewFile("opening.bnr", bytes.Repeat([]byte{0x01}, 33)),
		NewDirectory("audio",
			NewFile("bgm.adp", bytes.Repeat([]byte{0x02}, 64)),
			NewDirectory("empty"),
			NewFile("zero.bin", []byte{}),
		),
		NewDirectory("maps",
			NewDirectory("world1",
				NewFile("stage1.arc", []byte("stage one")),
				NewFile("stage2.arc", bytes.Repeat([]byte{0x03}, 31)),
			),
			NewFile("index.txt", []byte("w1\n")),
		),
		NewFile("z.txt", []byte{0x7A}),
	}
}

// randomTree builds a deterministic pseudo-random tree
func randomTree(rng *rand.Rand, depth int) []Node {
	count := rng.Intn(5)
	nodes := make([]Node, 0, count)
	for i := 0; i < count; i++ {
		name := fmt.Sprintf("n%d_%s", i, string(rune('a'+rng.Intn(26))))
		if depth > 0 && rng.Intn(3) == 0 {
			nodes = append(nodes, NewDirectory(name, randomTree(rng, depth-1)...))
			continue
		}
		data := make([]byte, rng.Intn(100))
		rng.Read(data)
		nodes = append(nodes, NewFile(name, data))
	}
	return nodes
}
