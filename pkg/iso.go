// Package pkg provides functionality for building and extracting GameCube disc images.
// This file contains the ISO processor used by the iso commands.
package pkg

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/hansbonini/gcmtools/pkg/common"
	"github.com/hansbonini/gcmtools/pkg/gcm"
	"github.com/spf13/afero"
	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"
)

// ISOProcessor handles disc image operations (build/export/layout)
type ISOProcessor struct {
	fs     afero.Fs
	layout gcm.Layout
}

// NewISOProcessor creates a new ISO processor working on fs
func NewISOProcessor(fs afero.Fs, layout gcm.Layout) *ISOProcessor {
	return &ISOProcessor{fs: fs, layout: layout}
}

// LayoutReport is the YAML document written by Layout
type LayoutReport struct {
	Image      string         `yaml:"image"`
	Regions    []RegionReport `yaml:"regions"`
	EntryCount int            `yaml:"entry_count"`
	Entries    []EntryReport  `yaml:"entries"`
}

// RegionReport describes one fixed region of the image
type RegionReport struct {
	Name   string `yaml:"name"`
	Offset int64  `yaml:"offset"`
	Length int64  `yaml:"length"`
	BLAKE3 string `yaml:"blake3,omitempty"`
}

// EntryReport describes one FST entry. Files carry offset/size, directories parent/next.
type EntryReport struct {
	Index  int    `yaml:"index"`
	Kind   string `yaml:"kind"`
	Path   string `yaml:"path"`
	Offset *int64 `yaml:"offset,omitempty"`
	Size   *int64 `yaml:"size,omitempty"`
	Parent *int64 `yaml:"parent,omitempty"`
	Next   *int64 `yaml:"next,omitempty"`
	BLAKE3 string `yaml:"blake3,omitempty"`
}

// Build loads an extracted disc layout from inputDir and writes it as an image
func (p *ISOProcessor) Build(inputDir, outputFile string) (*gcm.ImageInfo, error) {
	root, err := gcm.LoadTree(p.fs, inputDir)
	if err != nil {
		return nil, common.FormatError(common.ErrFailedToLoadTree, err)
	}

	file, err := p.fs.Create(outputFile)
	if err != nil {
		return nil, common.FormatError(common.ErrFailedToCreateOutputFile, err)
	}

	info, err := gcm.NewImageWriter(p.layout).WriteISO(file, root)
	if err != nil {
		file.Close()
		return nil, common.FormatError(common.ErrFailedToWriteImage, err)
	}
	if err := file.Close(); err != nil {
		return nil, closeError(outputFile, err)
	}

	common.LogInfo(common.InfoImageWritten, outputFile, info.End)
	return info, nil
}

// Export parses an image and writes its tree to outputDir
func (p *ISOProcessor) Export(inputFile, outputDir string) error {
	img, err := p.readImage(inputFile)
	if err != nil {
		return err
	}
	if err := gcm.WriteFS(p.fs, outputDir, img.Root); err != nil {
		return common.FormatError(common.ErrFailedToExportTree, err)
	}
	return nil
}

// Layout writes a YAML report of the regions and FST entries of an image
func (p *ISOProcessor) Layout(inputFile, reportFile string) (*LayoutReport, error) {
	img, err := p.readImage(inputFile)
	if err != nil {
		return nil, err
	}

	report, err := p.buildReport(inputFile, img)
	if err != nil {
		return nil, err
	}

	out, err := p.fs.Create(reportFile)
	if err != nil {
		return nil, common.FormatError(common.ErrFailedToCreateOutputFile, err)
	}

	if err := writeReport(out, report); err != nil {
		out.Close()
		return nil, common.FormatError(common.ErrFailedToWriteReport, err)
	}
	if err := out.Close(); err != nil {
		return nil, closeError(reportFile, err)
	}
	common.LogInfo(common.InfoReportWritten, reportFile)
	return report, nil
}

func (p *ISOProcessor) readImage(inputFile string) (*gcm.Image, error) {
	file, err := p.fs.Open(inputFile)
	if err != nil {
		return nil, common.FormatError(common.ErrFailedToOpenInputFile, err)
	}
	defer file.Close()

	img, err := gcm.ReadImage(file, p.layout)
	if err != nil {
		return nil, common.FormatError(common.ErrFailedToReadImage, err)
	}
	common.LogInfo(common.InfoImageRead, inputFile, len(img.Entries))
	return img, nil
}

// buildReport collects region placement and one record per FST entry
func (p *ISOProcessor) buildReport(inputFile string, img *gcm.Image) (*LayoutReport, error) {
	sys, ok := img.Root.FindDirectory(gcm.SystemDataDir)
	if !ok {
		return nil, fmt.Errorf("image tree has no %s", gcm.SystemDataDir)
	}
	blob := func(name string) []byte {
		if f, ok := sys.FindFile(name); ok {
			return f.Data
		}
		return nil
	}

	report := &LayoutReport{
		Image: inputFile,
		Regions: []RegionReport{
			{Name: "header", Offset: 0, Length: p.layout.HeaderSize, BLAKE3: digest(blob(gcm.HeaderFile))},
			{Name: "apploader", Offset: p.layout.HeaderSize, Length: img.DOLOffset - p.layout.HeaderSize, BLAKE3: digest(blob(gcm.AppLoaderFile))},
			{Name: "dol", Offset: img.DOLOffset, Length: img.FSTOffset - img.DOLOffset, BLAKE3: digest(blob(gcm.DOLFile))},
			{Name: "fst", Offset: img.FSTOffset, Length: img.FSTLength, BLAKE3: digest(blob(gcm.FSTFile))},
		},
		EntryCount: len(img.Entries),
	}

	paths, err := img.Paths()
	if err != nil {
		return nil, err
	}

	for i, entry := range img.Entries {
		record := EntryReport{Index: i, Kind: entry.Kind.String(), Path: paths[i]}
		a, b := entry.OffsetParent, entry.SizeNext
		if entry.Kind == gcm.DirectoryEntry {
			record.Parent, record.Next = &a, &b
		} else {
			record.Offset, record.Size = &a, &b
			if f, ok := img.Nodes[i].(*gcm.File); ok {
				record.BLAKE3 = digest(f.Data)
			}
		}
		report.Entries = append(report.Entries, record)
	}
	return report, nil
}

func writeReport(writer io.Writer, report *LayoutReport) error {
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(report); err != nil {
		return err
	}
	return encoder.Close()
}

// closeError reports a failed close of a written output as a write failure
func closeError(path string, err error) error {
	return common.FormatError(common.ErrFailedToCloseOutputFile, &gcm.IOError{Path: path, Op: gcm.OpWrite, Err: err})
}

// digest returns the hex BLAKE3-256 digest of data
func digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
