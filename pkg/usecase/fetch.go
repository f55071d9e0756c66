package usecase

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/torus-io/assetpipe/pkg/domain/interfaces"
	"github.com/torus-io/assetpipe/pkg/domain/model"
	"github.com/torus-io/assetpipe/pkg/utils/pool"
)

// DefaultWorkers bounds download concurrency when no worker count is given
const DefaultWorkers = 5

type fetchUseCase struct {
	factory     interfaces.DriveFactory
	confirm     interfaces.Confirmer
	workers     int
	autoConfirm bool
	verbose     bool
}

// FetchOption configures the fetcher
type FetchOption func(*fetchUseCase)

// WithWorkers sets the worker count of the download pool
func WithWorkers(n int) FetchOption {
	return func(uc *fetchUseCase) {
		if n > 0 {
			uc.workers = n
		}
	}
}

// WithConfirmer replaces the interactive confirmation prompt
func WithConfirmer(c interfaces.Confirmer) FetchOption {
	return func(uc *fetchUseCase) {
		uc.confirm = c
	}
}

// WithAutoConfirm skips the confirmation gate entirely
func WithAutoConfirm() FetchOption {
	return func(uc *fetchUseCase) {
		uc.autoConfirm = true
	}
}

// WithVerbose enables per-file success logging
func WithVerbose() FetchOption {
	return func(uc *fetchUseCase) {
		uc.verbose = true
	}
}

// NewFetcher creates the supplier/SKU download use case
func NewFetcher(factory interfaces.DriveFactory, opts ...FetchOption) interfaces.PhotoFetcher {
	uc := &fetchUseCase{
		factory: factory,
		confirm: StdinConfirmer,
		workers: DefaultWorkers,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// StdinConfirmer asks a yes/no question on the terminal. Anything but
// "y"/"yes" declines.
func StdinConfirmer(_ context.Context, prompt string) bool {
	fmt.Printf("%s (y/N): ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// DownloadAll processes suppliers one at a time; within each supplier every
// SKU's image downloads are pooled into one flat task list and executed
// concurrently, bounding peak concurrency to the worker count regardless of
// SKU count.
func (uc *fetchUseCase) DownloadAll(ctx context.Context, folderID, outputDir string) (*model.FetchSummary, error) {
	logger := ctxlog.From(ctx)

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, goerr.Wrap(err, "failed to create output directory", goerr.V("dir", outputDir))
	}

	client, err := uc.factory.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create drive client")
	}

	logger.Info("accessing drive folder", "folder_id", folderID)
	suppliers := foldersOf(client.ListChildren(ctx, folderID))
	if len(suppliers) == 0 {
		return nil, goerr.New("no suppliers found in folder", goerr.V("folder_id", folderID))
	}

	color.Green("Found %d suppliers:", len(suppliers))
	for i, supplier := range suppliers {
		fmt.Printf("  %d. %s\n", i+1, supplier.Name)
	}

	if !uc.autoConfirm && !uc.confirm(ctx, "Want to continue downloading all of the photos?") {
		color.Yellow("Download cancelled by user.")
		return &model.FetchSummary{Declined: true}, nil
	}

	summary := &model.FetchSummary{}
	for i, supplier := range suppliers {
		color.Cyan("Processing supplier %d/%d: %s", i+1, len(suppliers), supplier.Name)

		tasks := enumerateSupplierTasks(ctx, client, supplier, outputDir, uc.verbose)
		if len(tasks) == 0 {
			color.Yellow("  No files found for supplier: %s", supplier.Name)
			continue
		}

		logger.Info("downloading supplier files",
			"supplier", supplier.Name,
			"files", len(tasks),
			"workers", uc.workers,
		)

		downloaded, failed := runFetch(ctx, uc.factory, uc.workers, tasks, uc.verbose)
		summary.Downloaded += downloaded
		summary.Failed += failed

		color.Green("  Supplier %s completed: %d downloaded, %d failed", supplier.Name, downloaded, failed)
	}

	color.Green("All suppliers processed: %d downloaded", summary.Downloaded)
	if summary.Failed > 0 {
		color.Yellow("Total failed: %d files", summary.Failed)
	}
	return summary, nil
}

// runFetch executes a flat task list on the worker pool and tallies results
// as they complete. Failures are logged per file and never retried.
func runFetch(ctx context.Context, factory interfaces.DriveFactory, workers int, tasks []model.FetchTask, verbose bool) (downloaded, failed int) {
	logger := ctxlog.From(ctx)

	results := pool.Run(ctx, workers, tasks,
		func(ctx context.Context, task model.FetchTask) model.FetchResult {
			return fetchOne(ctx, factory, task)
		},
		func(task model.FetchTask, recovered any) model.FetchResult {
			return model.FetchResult{
				Task: task,
				Err:  goerr.New("panic during download", goerr.V("recover", recovered)),
			}
		},
	)

	for result := range results {
		if result.Success {
			downloaded++
			if verbose {
				logger.Info("downloaded file",
					"file", result.Task.Name,
					"sku", result.Task.SKU,
					"index", result.Task.Index,
					"total", result.Task.Total,
				)
			}
		} else {
			failed++
			logger.Error("download failed",
				"file", result.Task.Name,
				"sku", result.Task.SKU,
				"error", result.Err,
			)
		}
	}
	return downloaded, failed
}

// fetchOne downloads a single file with its own drive client. The provider
// SDK is not goroutine safe, so every task builds a fresh client from the
// factory's shared credentials.
func fetchOne(ctx context.Context, factory interfaces.DriveFactory, task model.FetchTask) model.FetchResult {
	client, err := factory.NewClient(ctx)
	if err != nil {
		return model.FetchResult{Task: task, Err: goerr.Wrap(err, "failed to create worker client")}
	}

	data, err := client.FetchBytes(ctx, task.FileID)
	if err != nil {
		return model.FetchResult{Task: task, Err: err}
	}

	if err := writeFileAtomic(task.DestPath, data); err != nil {
		return model.FetchResult{Task: task, Err: err}
	}

	return model.FetchResult{Task: task, Success: true}
}

// writeFileAtomic stages the bytes in a uniquely named sibling file and
// renames it into place, so concurrent workers never observe partial writes.
// Parent directory creation is idempotent and safe under concurrent calls.
func writeFileAtomic(dest string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return goerr.Wrap(err, "failed to create parent directory", goerr.V("path", dest))
	}

	tmp := dest + ".part-" + uuid.NewString()
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return goerr.Wrap(err, "failed to write staged file", goerr.V("path", tmp))
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return goerr.Wrap(err, "failed to move staged file into place", goerr.V("path", dest))
	}
	return nil
}
