package usecase

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/torus-io/assetpipe/pkg/domain/interfaces"
	"github.com/torus-io/assetpipe/pkg/domain/model"
)

type categoryUseCase struct {
	factory    interfaces.DriveFactory
	workers    int
	verbose    bool
	categories map[string]model.CategoryInfo
}

// CategoryOption configures the category downloader
type CategoryOption func(*categoryUseCase)

// WithCategoryWorkers sets the worker count of the download pool
func WithCategoryWorkers(n int) CategoryOption {
	return func(uc *categoryUseCase) {
		if n > 0 {
			uc.workers = n
		}
	}
}

// WithCategoryVerbose enables per-file success logging
func WithCategoryVerbose() CategoryOption {
	return func(uc *categoryUseCase) {
		uc.verbose = true
	}
}

// NewCategoryDownloader creates the category/subcategory workflow use case
func NewCategoryDownloader(factory interfaces.DriveFactory, opts ...CategoryOption) interfaces.CategoryDownloader {
	uc := &categoryUseCase{
		factory: factory,
		workers: DefaultWorkers,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// LoadCategories reads the subcategory,category manifest. Every parent
// category named by any row is registered even when no row of its own
// defines it.
func (uc *categoryUseCase) LoadCategories(ctx context.Context, csvPath string) (map[string]model.CategoryInfo, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open categories CSV", goerr.V("path", csvPath))
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read categories header", goerr.V("path", csvPath))
	}

	subCol, catCol := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(strings.ToLower(name)) {
		case "subcategory":
			subCol = i
		case "category":
			catCol = i
		}
	}
	if subCol < 0 || catCol < 0 {
		return nil, goerr.New("categories CSV must have subcategory and category columns", goerr.V("path", csvPath))
	}

	categories := map[string]model.CategoryInfo{}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read categories row", goerr.V("path", csvPath))
		}
		if subCol >= len(row) || catCol >= len(row) {
			continue
		}

		subcategory := strings.TrimSpace(row[subCol])
		category := strings.TrimSpace(row[catCol])
		if subcategory == "" || category == "" {
			continue
		}

		categories[subcategory] = model.CategoryInfo{
			Name:   subcategory,
			Kind:   model.KindSubcategory,
			Parent: category,
		}
		if _, ok := categories[category]; !ok {
			categories[category] = model.CategoryInfo{
				Name: category,
				Kind: model.KindCategory,
			}
		}
	}

	uc.categories = categories
	ctxlog.From(ctx).Info("loaded categories", "count", len(categories), "path", csvPath)
	return categories, nil
}

// FindLifestyleFolder returns the first child folder of the root whose name
// contains "lifestyle" or "photos"
func (uc *categoryUseCase) FindLifestyleFolder(ctx context.Context, rootFolderID string) (string, error) {
	client, err := uc.factory.NewClient(ctx)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create drive client")
	}

	for _, folder := range foldersOf(client.ListChildren(ctx, rootFolderID)) {
		name := strings.ToLower(folder.Name)
		if strings.Contains(name, "lifestyle") || strings.Contains(name, "photos") {
			ctxlog.From(ctx).Info("found lifestyle folder", "name", folder.Name, "id", folder.ID)
			return folder.ID, nil
		}
	}
	return "", goerr.New("lifestyle photos folder not found", goerr.V("root_folder_id", rootFolderID))
}

// DownloadSubcategory downloads every photo of every SKU whose folder name
// starts with "<subcategory>-"
func (uc *categoryUseCase) DownloadSubcategory(ctx context.Context, subcategory, outputDir, lifestyleFolderID string) (*model.FetchSummary, error) {
	client, err := uc.factory.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create drive client")
	}

	tasks := enumerateSubcategoryTasks(ctx, client, lifestyleFolderID, subcategory, outputDir)
	if len(tasks) == 0 {
		color.Yellow("No photos found for subcategory: %s", subcategory)
		return &model.FetchSummary{}, nil
	}

	color.Cyan("Downloading photos for subcategory: %s", subcategory)
	downloaded, failed := runFetch(ctx, uc.factory, uc.workers, tasks, uc.verbose)
	color.Green("Subcategory %s completed: %d downloaded, %d failed", subcategory, downloaded, failed)

	return &model.FetchSummary{Downloaded: downloaded, Failed: failed}, nil
}

// DownloadAllSubcategories runs DownloadSubcategory for every loaded
// subcategory, sequentially
func (uc *categoryUseCase) DownloadAllSubcategories(ctx context.Context, outputDir, lifestyleFolderID string) (*model.FetchSummary, error) {
	if len(uc.categories) == 0 {
		return nil, goerr.New("no categories loaded")
	}

	total := &model.FetchSummary{}
	for _, name := range uc.subcategoryNames() {
		summary, err := uc.DownloadSubcategory(ctx, name, outputDir, lifestyleFolderID)
		if err != nil {
			return nil, err
		}
		total.Downloaded += summary.Downloaded
		total.Failed += summary.Failed
	}
	return total, nil
}

// MergeCategory copies every file of the category's subcategory directories
// into a flattened category directory, resolving name conflicts with
// numeric suffixes
func (uc *categoryUseCase) MergeCategory(ctx context.Context, category, outputDir string) (*model.MergeSummary, error) {
	logger := ctxlog.From(ctx)

	var subcategories []string
	for name, info := range uc.categories {
		if info.Kind == model.KindSubcategory && info.Parent == category {
			subcategories = append(subcategories, name)
		}
	}
	if len(subcategories) == 0 {
		color.Yellow("No subcategories found for category: %s", category)
		return &model.MergeSummary{}, nil
	}
	// Stable order keeps conflict suffixes reproducible across runs
	sort.Strings(subcategories)

	categoryDir := filepath.Join(outputDir, "categories", category)
	if err := os.MkdirAll(categoryDir, 0755); err != nil {
		return nil, goerr.Wrap(err, "failed to create category directory", goerr.V("dir", categoryDir))
	}

	summary := &model.MergeSummary{}
	for _, subcategory := range subcategories {
		subDir := filepath.Join(outputDir, "subcategories", subcategory)
		entries, err := os.ReadDir(subDir)
		if err != nil {
			logger.Warn("subcategory directory not found", "subcategory", subcategory)
			continue
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			src := filepath.Join(subDir, entry.Name())
			dest := unusedPath(categoryDir, entry.Name())
			if err := copyFile(src, dest); err != nil {
				logger.Error("failed to copy file", "file", entry.Name(), "error", err)
				summary.Failed++
				continue
			}
			summary.Copied++
		}
	}

	color.Green("Category %s completed: %d photos copied, %d failed", category, summary.Copied, summary.Failed)
	return summary, nil
}

// MergeAllCategories merges every loaded category, sequentially
func (uc *categoryUseCase) MergeAllCategories(ctx context.Context, outputDir string) (*model.MergeSummary, error) {
	if len(uc.categories) == 0 {
		return nil, goerr.New("no categories loaded")
	}

	total := &model.MergeSummary{}
	for _, name := range uc.categoryNames() {
		summary, err := uc.MergeCategory(ctx, name, outputDir)
		if err != nil {
			return nil, err
		}
		total.Copied += summary.Copied
		total.Failed += summary.Failed
	}
	return total, nil
}

func (uc *categoryUseCase) subcategoryNames() []string {
	return uc.namesOfKind(model.KindSubcategory)
}

func (uc *categoryUseCase) categoryNames() []string {
	return uc.namesOfKind(model.KindCategory)
}

func (uc *categoryUseCase) namesOfKind(kind model.CategoryKind) []string {
	var names []string
	for name, info := range uc.categories {
		if info.Kind == kind {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// unusedPath picks name, or name_N with the suffix before the extension,
// whichever is free in dir
func unusedPath(dir, name string) string {
	dest := filepath.Join(dir, name)
	if !fileExists(dest) {
		return dest
	}
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for n := 1; ; n++ {
		dest = filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, n, ext))
		if !fileExists(dest) {
			return dest
		}
	}
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return goerr.Wrap(err, "failed to open source file", goerr.V("path", src))
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return goerr.Wrap(err, "failed to create destination file", goerr.V("path", dest))
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return goerr.Wrap(err, "failed to copy file content", goerr.V("path", dest))
	}
	return nil
}
