package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/cleared-dev/wsbridge/internal/accounts"
	"github.com/cleared-dev/wsbridge/internal/config"
	"github.com/cleared-dev/wsbridge/internal/importer"
	"github.com/cleared-dev/wsbridge/internal/logger"
	"github.com/cleared-dev/wsbridge/internal/model"
	"github.com/cleared-dev/wsbridge/internal/pipeline"
	"github.com/cleared-dev/wsbridge/internal/transform"
)

// batch is the converted content of one or more snapshot files.
type batch struct {
	files  []importer.FileInfo
	result pipeline.Result
}

// listSnapshots returns the files named in paths, or the snapshots in dir
// when paths is empty.
func listSnapshots(dir string, paths []string) ([]importer.FileInfo, error) {
	if len(paths) == 0 {
		return importer.Scan(dir)
	}

	files := make([]importer.FileInfo, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("snapshot %s: %w", p, err)
		}
		files = append(files, importer.FileInfo{
			Name:   filepath.Base(p),
			Path:   p,
			Size:   info.Size(),
			Format: importer.FormatFor(p),
		})
	}
	return files, nil
}

// convert reads every snapshot and runs the conversion pipeline over all
// of their blocks at once.
func convert(cfg *config.Config, resolver *accounts.Resolver, files []importer.FileInfo, log zerolog.Logger) (batch, error) {
	reg := importer.DefaultRegistry(cfg.Scrape)

	var blocks []model.Block
	for _, f := range files {
		bs, err := reg.ReadFile(f.Path)
		if err != nil {
			return batch{}, err
		}
		log.Debug().Str("file", f.Name).Str("format", f.Format).Int("blocks", len(bs)).Msg("read snapshot")
		blocks = append(blocks, bs...)
	}

	res := pipeline.Run(blocks, pipeline.Options{
		Transform: transform.Options{
			IsAccountMapped: resolver.IsMapped,
			BrandPayee:      cfg.Transform.BrandPayee,
		},
	})
	logger.Warnings(log, res.Warnings)

	return batch{files: files, result: res}, nil
}
