package interfaces

import (
	"context"

	"github.com/torus-io/assetpipe/pkg/domain/model"
)

// Confirmer answers the yes/no gate shown before any download starts
type Confirmer func(ctx context.Context, prompt string) bool

// PhotoFetcher downloads supplier/SKU photo trees from the remote provider
type PhotoFetcher interface {
	// DownloadAll enumerates every supplier under the root folder and
	// downloads all SKU photos, suppliers sequentially and files within one
	// supplier in parallel
	DownloadAll(ctx context.Context, folderID, outputDir string) (*model.FetchSummary, error)
}

// PhotoAnalyzer screens downloaded photo sets and reports per-SKU statistics
type PhotoAnalyzer interface {
	AnalyzeDirectory(ctx context.Context, photosDir string) ([]*model.SKUSummary, error)
	FindMissingSKUs(ctx context.Context, manifestCSV, photosDir string) ([]model.MissingSKU, error)
}

// PhotoProcessor normalizes downloaded photo sets on local disk
type PhotoProcessor interface {
	// ConvertAll converts every non-JPEG image under outputDir to JPEG,
	// removing originals on success
	ConvertAll(ctx context.Context, outputDir string) (*model.ConvertSummary, error)

	// RenameAll renames each SKU's JPEG files to 1.jpg..N.jpg in
	// lexicographic order. Refuses to rename anything while non-JPEG images
	// remain.
	RenameAll(ctx context.Context, outputDir string) (*model.RenameSummary, error)
}

// CategoryDownloader handles the category/subcategory workflow for
// lifestyle imagery
type CategoryDownloader interface {
	LoadCategories(ctx context.Context, csvPath string) (map[string]model.CategoryInfo, error)
	FindLifestyleFolder(ctx context.Context, rootFolderID string) (string, error)
	DownloadSubcategory(ctx context.Context, subcategory, outputDir, lifestyleFolderID string) (*model.FetchSummary, error)
	DownloadAllSubcategories(ctx context.Context, outputDir, lifestyleFolderID string) (*model.FetchSummary, error)
	MergeCategory(ctx context.Context, category, outputDir string) (*model.MergeSummary, error)
	MergeAllCategories(ctx context.Context, outputDir string) (*model.MergeSummary, error)
}
