package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/ctxlog"

	"github.com/torus-io/assetpipe/pkg/domain/interfaces"
	"github.com/torus-io/assetpipe/pkg/domain/model"
)

// photosFolderName is the child folder each SKU keeps its images in,
// matched case-insensitively
const photosFolderName = "photos"

// enumerateSupplierTasks flattens one supplier's SKU tree into fetch tasks.
// SKUs without a photos folder or without image files contribute nothing.
func enumerateSupplierTasks(ctx context.Context, client interfaces.DriveClient, supplier model.RemoteNode, outputDir string, verbose bool) []model.FetchTask {
	logger := ctxlog.From(ctx)

	var tasks []model.FetchTask
	for _, sku := range foldersOf(client.ListChildren(ctx, supplier.ID)) {
		photosFolder := findPhotosFolder(client.ListChildren(ctx, sku.ID))
		if photosFolder == nil {
			if verbose {
				logger.Debug("no photos folder for SKU", "sku", sku.Name, "supplier", supplier.Name)
			}
			continue
		}

		images := imagesOf(client.ListChildren(ctx, photosFolder.ID))
		if len(images) == 0 {
			if verbose {
				logger.Debug("no image files for SKU", "sku", sku.Name, "supplier", supplier.Name)
			}
			continue
		}

		logger.Info("collected SKU", "sku", sku.Name, "images", len(images))
		for i, img := range images {
			tasks = append(tasks, model.FetchTask{
				FileID:   img.ID,
				DestPath: filepath.Join(outputDir, sku.Name, img.Name),
				Name:     img.Name,
				SKU:      sku.Name,
				Supplier: supplier.Name,
				Index:    i + 1,
				Total:    len(images),
			})
		}
	}

	return uniqueDestinations(tasks)
}

// enumerateSubcategoryTasks flattens the lifestyle workflow: SKU folders are
// matched by a "<subcategory>-" name prefix and hold their images directly,
// and downloads land flat under the subcategory directory with the SKU name
// prefixed onto each file name.
func enumerateSubcategoryTasks(ctx context.Context, client interfaces.DriveClient, lifestyleFolderID, subcategory, outputDir string) []model.FetchTask {
	logger := ctxlog.From(ctx)
	destDir := filepath.Join(outputDir, "subcategories", subcategory)

	var tasks []model.FetchTask
	skuCount := 0
	for _, sku := range foldersOf(client.ListChildren(ctx, lifestyleFolderID)) {
		if !strings.HasPrefix(sku.Name, subcategory+"-") {
			continue
		}
		skuCount++

		images := imagesOf(client.ListChildren(ctx, sku.ID))
		if len(images) == 0 {
			logger.Debug("no photos for SKU", "sku", sku.Name, "subcategory", subcategory)
			continue
		}

		for i, img := range images {
			tasks = append(tasks, model.FetchTask{
				FileID:   img.ID,
				DestPath: filepath.Join(destDir, sku.Name+"_"+img.Name),
				Name:     img.Name,
				SKU:      sku.Name,
				Supplier: subcategory,
				Index:    i + 1,
				Total:    len(images),
			})
		}
	}

	logger.Info("matched SKUs for subcategory", "subcategory", subcategory, "skus", skuCount, "files", len(tasks))
	return uniqueDestinations(tasks)
}

// uniqueDestinations guarantees no two tasks of one pool run share a
// destination path, by inserting a numeric suffix before the extension of
// every colliding name
func uniqueDestinations(tasks []model.FetchTask) []model.FetchTask {
	seen := make(map[string]bool, len(tasks))
	for i := range tasks {
		dest := tasks[i].DestPath
		if seen[dest] {
			ext := filepath.Ext(dest)
			base := strings.TrimSuffix(dest, ext)
			for n := 1; seen[dest]; n++ {
				dest = fmt.Sprintf("%s_%d%s", base, n, ext)
			}
			tasks[i].DestPath = dest
		}
		seen[dest] = true
	}
	return tasks
}

func foldersOf(nodes []model.RemoteNode) []model.RemoteNode {
	var folders []model.RemoteNode
	for _, n := range nodes {
		if n.IsFolder() {
			folders = append(folders, n)
		}
	}
	return folders
}

func imagesOf(nodes []model.RemoteNode) []model.RemoteNode {
	var images []model.RemoteNode
	for _, n := range nodes {
		if !n.IsFolder() && model.IsImageFile(n.Name) {
			images = append(images, n)
		}
	}
	return images
}

func findPhotosFolder(nodes []model.RemoteNode) *model.RemoteNode {
	for _, n := range nodes {
		if n.IsFolder() && strings.EqualFold(n.Name, photosFolderName) {
			return &n
		}
	}
	return nil
}
