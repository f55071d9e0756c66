package usecase

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/torus-io/assetpipe/pkg/domain/interfaces"
	"github.com/torus-io/assetpipe/pkg/domain/model"
)

// Screening limits. Like the classifier thresholds these are policy
// constants, not tunables.
const (
	maxFileSizeMB = 20.0
	minFileSizeMB = 0.1
	minDimension  = 200
	maxDimension  = 8000

	// DefaultMinPhotos is the expected minimum photo count per SKU
	DefaultMinPhotos = 3
)

type analyzeUseCase struct {
	minPhotos int
}

// AnalyzeOption configures the analyzer
type AnalyzeOption func(*analyzeUseCase)

// WithMinPhotos overrides the per-SKU minimum photo count
func WithMinPhotos(n int) AnalyzeOption {
	return func(uc *analyzeUseCase) {
		if n > 0 {
			uc.minPhotos = n
		}
	}
}

// NewAnalyzer creates the integrity screening use case
func NewAnalyzer(opts ...AnalyzeOption) interfaces.PhotoAnalyzer {
	uc := &analyzeUseCase{minPhotos: DefaultMinPhotos}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// AnalyzeDirectory screens every SKU directory under photosDir. The layout
// is flat (photosDir/sku/...), so supplier attribution is unavailable here.
func (uc *analyzeUseCase) AnalyzeDirectory(ctx context.Context, photosDir string) ([]*model.SKUSummary, error) {
	logger := ctxlog.From(ctx)

	entries, err := os.ReadDir(photosDir)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read photos directory", goerr.V("dir", photosDir))
	}

	var results []*model.SKUSummary
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		sku := entry.Name()
		summary := uc.analyzeSKUDir(filepath.Join(photosDir, sku), sku, "Unknown")
		results = append(results, summary)
	}

	logger.Info("analyzed SKU directories", "dir", photosDir, "skus", len(results))
	return results, nil
}

func (uc *analyzeUseCase) analyzeSKUDir(skuDir, sku, supplier string) *model.SKUSummary {
	summary := &model.SKUSummary{SKU: sku, Supplier: supplier}

	entries, err := os.ReadDir(skuDir)
	if err != nil {
		summary.Issues = append(summary.Issues, "Directory does not exist")
		return summary
	}

	for _, entry := range entries {
		if entry.IsDir() || !model.HasImageExt(entry.Name()) {
			continue
		}
		record := uc.analyzePhoto(filepath.Join(skuDir, entry.Name()), sku, supplier)
		summary.Photos = append(summary.Photos, record)
	}

	for _, p := range summary.Photos {
		summary.TotalPhotos++
		if p.IsValid {
			summary.ValidPhotos++
		} else {
			summary.InvalidPhotos++
		}
		if !model.HasJPEGExt(p.Filename) {
			summary.NonJPEGCount++
		}
		if p.SizeMB > maxFileSizeMB {
			summary.OversizedCount++
		}
		if p.SizeMB < minFileSizeMB {
			summary.UndersizedCount++
		}
		if p.HasBackground {
			summary.BackgroundCount++
		}
		if p.IsDetailShot {
			summary.DetailShotCount++
		}
		if p.QualityScore < minQualityScore {
			summary.LowQualityCount++
		}
	}

	// Advisory text only; the counts above are the checked facts
	switch {
	case summary.TotalPhotos == 0:
		summary.Issues = append(summary.Issues, "No photos found")
	case summary.TotalPhotos < uc.minPhotos:
		summary.Issues = append(summary.Issues, fmt.Sprintf("Too few photos (%d)", summary.TotalPhotos))
	}
	if summary.NonJPEGCount > 0 {
		summary.Issues = append(summary.Issues, fmt.Sprintf("Has %d non-JPEG files", summary.NonJPEGCount))
	}
	if summary.OversizedCount > 0 {
		summary.Issues = append(summary.Issues, fmt.Sprintf("Has %d oversized files", summary.OversizedCount))
	}
	if summary.UndersizedCount > 0 {
		summary.Issues = append(summary.Issues, fmt.Sprintf("Has %d undersized files", summary.UndersizedCount))
	}
	if summary.BackgroundCount > 0 {
		summary.Issues = append(summary.Issues, fmt.Sprintf("Has %d files with background", summary.BackgroundCount))
	}
	if summary.LowQualityCount > 0 {
		summary.Issues = append(summary.Issues, fmt.Sprintf("Has %d low quality files", summary.LowQualityCount))
	}

	return summary
}

// analyzePhoto runs every per-file check in a fixed order, accumulating an
// issue list. A record is valid iff that list stays empty.
func (uc *analyzeUseCase) analyzePhoto(path, sku, supplier string) model.PhotoRecord {
	// Quality starts at full; a file the classifier never saw is reported
	// for its decode issue only, not also as low quality
	record := model.PhotoRecord{
		Path:         path,
		SKU:          sku,
		Supplier:     supplier,
		Filename:     filepath.Base(path),
		Format:       strings.ToLower(filepath.Ext(path)),
		QualityScore: 1.0,
	}

	var sizeBytes int64
	if info, err := os.Stat(path); err != nil {
		record.Issues = append(record.Issues, "Cannot read file size")
	} else {
		sizeBytes = info.Size()
		record.SizeMB = float64(sizeBytes) / (1024 * 1024)
	}

	if !model.HasImageExt(record.Filename) {
		record.Issues = append(record.Issues, "Not an image file")
		return record
	}

	if !model.HasJPEGExt(record.Filename) {
		record.Issues = append(record.Issues, "Not JPEG format")
	}

	if record.SizeMB > maxFileSizeMB {
		record.Issues = append(record.Issues, fmt.Sprintf("File too large (%.2fMB > %.1fMB)", record.SizeMB, maxFileSizeMB))
	} else if record.SizeMB < minFileSizeMB {
		record.Issues = append(record.Issues, fmt.Sprintf("File too small (%.2fMB < %.1fMB)", record.SizeMB, minFileSizeMB))
	}

	if img, err := decodeImageFile(path); err != nil {
		record.Issues = append(record.Issues, fmt.Sprintf("Error analyzing image: %v", err))
	} else {
		bounds := img.Bounds()
		record.Width, record.Height = bounds.Dx(), bounds.Dy()

		if record.Width < minDimension || record.Height < minDimension {
			record.Issues = append(record.Issues, fmt.Sprintf("Image too small (%dx%d < %dx%d)",
				record.Width, record.Height, minDimension, minDimension))
		} else if record.Width > maxDimension || record.Height > maxDimension {
			record.Issues = append(record.Issues, fmt.Sprintf("Image too large (%dx%d > %dx%d)",
				record.Width, record.Height, maxDimension, maxDimension))
		}

		c := Classify(img, sizeBytes)
		record.HasBackground = c.HasBackground
		record.IsDetailShot = c.IsDetailShot
		record.QualityScore = c.QualityScore

		if record.HasBackground {
			record.Issues = append(record.Issues, "Has background")
		}
		if record.QualityScore < minQualityScore {
			record.Issues = append(record.Issues, fmt.Sprintf("Low quality (score: %.2f)", record.QualityScore))
		}
	}

	record.IsValid = len(record.Issues) == 0
	return record
}

// FindMissingSKUs cross-references the manifest CSV against the directory
// names under photosDir. Each manifest SKU with no directory is reported in
// manifest order, once.
func (uc *analyzeUseCase) FindMissingSKUs(ctx context.Context, manifestCSV, photosDir string) ([]model.MissingSKU, error) {
	f, err := os.Open(manifestCSV)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open manifest CSV", goerr.V("path", manifestCSV))
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read manifest header", goerr.V("path", manifestCSV))
	}

	skuCol, supplierCol := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(strings.ToLower(name)) {
		case "sku":
			skuCol = i
		case "supplier":
			supplierCol = i
		}
	}
	if skuCol < 0 {
		return nil, goerr.New("manifest CSV has no sku column", goerr.V("path", manifestCSV))
	}

	existing := map[string]bool{}
	if entries, err := os.ReadDir(photosDir); err == nil {
		for _, entry := range entries {
			if entry.IsDir() {
				existing[entry.Name()] = true
			}
		}
	}

	var missing []model.MissingSKU
	seen := map[string]bool{}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read manifest row", goerr.V("path", manifestCSV))
		}
		if skuCol >= len(row) {
			continue
		}

		sku := strings.TrimSpace(row[skuCol])
		if sku == "" || seen[sku] {
			continue
		}
		seen[sku] = true

		if existing[sku] {
			continue
		}

		supplier := "Unknown"
		if supplierCol >= 0 && supplierCol < len(row) && strings.TrimSpace(row[supplierCol]) != "" {
			supplier = strings.TrimSpace(row[supplierCol])
		}
		missing = append(missing, model.MissingSKU{
			SKU:      sku,
			Supplier: supplier,
			Reason:   "Missing directory",
		})
	}

	ctxlog.From(ctx).Info("missing SKU scan finished",
		"manifest", manifestCSV,
		"missing", len(missing),
	)
	return missing, nil
}
