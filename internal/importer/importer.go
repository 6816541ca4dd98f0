// Package importer reads saved activity snapshots into scraped blocks.
package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cleared-dev/wsbridge/internal/model"
)

// Reader converts one snapshot into scraped blocks.
type Reader interface {
	Read(r io.Reader) ([]model.Block, error)
	Format() string
}

// Registry holds readers by format name.
type Registry struct {
	readers map[string]Reader
}

// FileInfo describes a snapshot in the import directory.
type FileInfo struct {
	Name   string
	Path   string
	Size   int64
	Format string
}

// NewRegistry creates an empty reader registry.
func NewRegistry() *Registry {
	return &Registry{readers: make(map[string]Reader)}
}

// Register adds a reader. Panics on duplicate format.
func (r *Registry) Register(rd Reader) {
	key := strings.ToLower(rd.Format())
	if _, ok := r.readers[key]; ok {
		panic("duplicate reader format: " + key)
	}
	r.readers[key] = rd
}

// Get returns the reader for format, or nil.
func (r *Registry) Get(format string) Reader {
	return r.readers[strings.ToLower(format)]
}

// DefaultRegistry returns a registry with the JSON reader and an HTML
// reader using sel.
func DefaultRegistry(sel Selectors) *Registry {
	r := NewRegistry()
	r.Register(&JSONReader{})
	r.Register(NewHTMLReader(sel))
	return r
}

// FormatFor picks a format from a file extension: .json, or .html/.htm.
// It returns "" for anything else.
func FormatFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return "json"
	case ".html", ".htm":
		return "html"
	}
	return ""
}

// ReadFile reads the snapshot at path with the reader for its extension.
func (r *Registry) ReadFile(path string) ([]model.Block, error) {
	format := FormatFor(path)
	rd := r.Get(format)
	if rd == nil {
		return nil, fmt.Errorf("no reader for %s", filepath.Base(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	blocks, err := rd.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s snapshot %s: %w", format, filepath.Base(path), err)
	}
	return blocks, nil
}

// processedDir is the subdirectory processed snapshots are moved to.
const processedDir = "processed"

// Scan returns the snapshots directly inside dir, in name order.
// A missing directory yields no files.
func Scan(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		format := FormatFor(e.Name())
		if format == "" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name:   e.Name(),
			Path:   filepath.Join(dir, e.Name()),
			Size:   info.Size(),
			Format: format,
		})
	}
	return files, nil
}

// MarkProcessed moves dir/fileName to dir/processed/fileName.
func MarkProcessed(dir, fileName string) error {
	src := filepath.Join(dir, fileName)
	dstDir := filepath.Join(dir, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
