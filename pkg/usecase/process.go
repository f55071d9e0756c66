package usecase

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/torus-io/assetpipe/pkg/domain/interfaces"
	"github.com/torus-io/assetpipe/pkg/domain/model"
)

// DefaultJPEGQuality is the re-encode quality for converted photos
const DefaultJPEGQuality = 85

type processUseCase struct {
	quality int
}

// ProcessOption configures the processor
type ProcessOption func(*processUseCase)

// WithJPEGQuality overrides the JPEG re-encode quality
func WithJPEGQuality(q int) ProcessOption {
	return func(uc *processUseCase) {
		if q > 0 && q <= 100 {
			uc.quality = q
		}
	}
}

// NewProcessor creates the normalization use case
func NewProcessor(opts ...ProcessOption) interfaces.PhotoProcessor {
	uc := &processUseCase{quality: DefaultJPEGQuality}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// ConvertAll converts every non-JPEG image under outputDir to JPEG,
// deleting each original after its replacement is written. Failures are
// recorded per file and never abort the batch.
func (uc *processUseCase) ConvertAll(ctx context.Context, outputDir string) (*model.ConvertSummary, error) {
	logger := ctxlog.From(ctx)

	skuDirs, err := subdirsOf(outputDir)
	if err != nil {
		return nil, err
	}

	summary := &model.ConvertSummary{}
	for _, sku := range skuDirs {
		skuPath := filepath.Join(outputDir, sku)
		converted := 0

		files, err := os.ReadDir(skuPath)
		if err != nil {
			logger.Error("failed to read SKU directory", "sku", sku, "error", err)
			continue
		}

		for _, entry := range files {
			if entry.IsDir() || !model.HasNonJPEGImageExt(entry.Name()) {
				continue
			}

			srcPath := filepath.Join(skuPath, entry.Name())
			summary.NonJPEGFiles = append(summary.NonJPEGFiles, model.NonJPEGFile{
				SKU:      sku,
				Filename: entry.Name(),
				Ext:      strings.ToLower(filepath.Ext(entry.Name())),
				Path:     srcPath,
			})

			destPath := unusedJPEGPath(skuPath, entry.Name())
			if err := uc.convertToJPEG(srcPath, destPath); err != nil {
				logger.Error("conversion failed", "sku", sku, "file", entry.Name(), "error", err)
				summary.Errors = append(summary.Errors, model.ProcessError{
					SKU:      sku,
					Filename: entry.Name(),
					Reason:   err.Error(),
				})
				continue
			}

			if err := os.Remove(srcPath); err != nil {
				logger.Warn("could not remove original file", "sku", sku, "file", entry.Name(), "error", err)
			}

			logger.Debug("converted file", "sku", sku, "from", entry.Name(), "to", filepath.Base(destPath))
			converted++
			summary.Converted++
		}

		if converted > 0 {
			summary.SKUsProcessed++
		}
	}

	logger.Info("conversion finished",
		"converted", summary.Converted,
		"skus", summary.SKUsProcessed,
		"non_jpeg_found", len(summary.NonJPEGFiles),
		"errors", len(summary.Errors),
	)
	return summary, nil
}

// convertToJPEG re-encodes one image as JPEG. Images with transparency are
// composited onto an opaque white background first.
func (uc *processUseCase) convertToJPEG(srcPath, destPath string) error {
	img, err := decodeImageFile(srcPath)
	if err != nil {
		return err
	}

	bounds := img.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(canvas, canvas.Bounds(), img, bounds.Min, draw.Over)

	f, err := os.Create(destPath)
	if err != nil {
		return goerr.Wrap(err, "failed to create JPEG file", goerr.V("path", destPath))
	}
	defer f.Close()

	if err := jpeg.Encode(f, canvas, &jpeg.Options{Quality: uc.quality}); err != nil {
		return goerr.Wrap(err, "failed to encode JPEG", goerr.V("path", destPath))
	}
	return nil
}

// unusedJPEGPath picks <base>.jpg, or <base>_N.jpg when that already exists
func unusedJPEGPath(dir, srcName string) string {
	base := strings.TrimSuffix(srcName, filepath.Ext(srcName))
	dest := filepath.Join(dir, base+".jpg")
	for n := 1; fileExists(dest); n++ {
		dest = filepath.Join(dir, fmt.Sprintf("%s_%d.jpg", base, n))
	}
	return dest
}

// RenameAll renames each SKU's JPEG files to 1.jpg..N.jpg in lexicographic
// order of the original names. If any non-JPEG image remains anywhere under
// outputDir the whole pass is refused with zero renames, since conversion
// must happen first.
func (uc *processUseCase) RenameAll(ctx context.Context, outputDir string) (*model.RenameSummary, error) {
	logger := ctxlog.From(ctx)

	skuDirs, err := subdirsOf(outputDir)
	if err != nil {
		return nil, err
	}

	summary := &model.RenameSummary{}
	type skuFiles struct {
		sku   string
		names []string
	}
	var pending []skuFiles

	for _, sku := range skuDirs {
		skuPath := filepath.Join(outputDir, sku)
		files, err := os.ReadDir(skuPath)
		if err != nil {
			logger.Error("failed to read SKU directory", "sku", sku, "error", err)
			continue
		}

		var jpegs []string
		for _, entry := range files {
			if entry.IsDir() {
				continue
			}
			switch {
			case model.HasJPEGExt(entry.Name()):
				jpegs = append(jpegs, entry.Name())
			case model.HasNonJPEGImageExt(entry.Name()):
				summary.NonJPEGFiles = append(summary.NonJPEGFiles, model.NonJPEGFile{
					SKU:      sku,
					Filename: entry.Name(),
					Ext:      strings.ToLower(filepath.Ext(entry.Name())),
					Path:     filepath.Join(skuPath, entry.Name()),
				})
			}
		}
		if len(jpegs) > 0 {
			pending = append(pending, skuFiles{sku: sku, names: jpegs})
		}
	}

	if len(summary.NonJPEGFiles) > 0 {
		logger.Warn("non-JPEG files present, renaming refused",
			"count", len(summary.NonJPEGFiles),
		)
		return summary, nil
	}

	for _, p := range pending {
		skuPath := filepath.Join(outputDir, p.sku)
		sort.Strings(p.names)

		for i, oldName := range p.names {
			oldPath := filepath.Join(skuPath, oldName)
			newName := fmt.Sprintf("%d.jpg", i+1)
			newPath := filepath.Join(skuPath, newName)

			if oldPath == newPath {
				continue
			}
			if fileExists(newPath) {
				logger.Warn("target name already exists, skipping",
					"sku", p.sku, "file", oldName, "target", newName,
				)
				summary.Errors = append(summary.Errors, model.ProcessError{
					SKU:      p.sku,
					Filename: oldName,
					Reason:   "Target filename already exists",
				})
				continue
			}

			if err := os.Rename(oldPath, newPath); err != nil {
				summary.Errors = append(summary.Errors, model.ProcessError{
					SKU:      p.sku,
					Filename: oldName,
					Reason:   err.Error(),
				})
				continue
			}
			summary.Renamed++
		}
		summary.SKUsProcessed++
	}

	logger.Info("renaming finished",
		"renamed", summary.Renamed,
		"skus", summary.SKUsProcessed,
		"errors", len(summary.Errors),
	)
	return summary, nil
}

func subdirsOf(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read directory", goerr.V("dir", dir))
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
