package usecase

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"

	"github.com/torus-io/assetpipe/pkg/domain/model"
)

// reportColumns is the fixed column set of the exported CSV report
var reportColumns = []string{
	"sku", "total_photos", "valid_photos", "invalid_photos",
	"non_jpeg_count", "oversized_count", "undersized_count",
	"background_count", "detail_shot_count", "low_quality_count",
	"issues", "status",
}

// RenderReport writes the console summary plus grouped per-issue tables
func RenderReport(w io.Writer, results []*model.SKUSummary, missing []model.MissingSKU, minPhotos int) {
	totalSKUs := len(results)
	skusWithIssues := 0
	totalPhotos := 0
	validPhotos := 0
	for _, r := range results {
		if len(r.Issues) > 0 {
			skusWithIssues++
		}
		totalPhotos += r.TotalPhotos
		validPhotos += r.ValidPhotos
	}

	bold := color.New(color.Bold)
	bold.Fprintln(w, "Photo Analysis Report")
	fmt.Fprintf(w, "  Total SKUs:       %d\n", totalSKUs)
	fmt.Fprintf(w, "  SKUs with issues: %d\n", skusWithIssues)
	fmt.Fprintf(w, "  Missing SKUs:     %d\n", len(missing))
	fmt.Fprintf(w, "  Total photos:     %d\n", totalPhotos)
	fmt.Fprintf(w, "  Valid photos:     %d\n", validPhotos)
	fmt.Fprintf(w, "  Invalid photos:   %d\n", totalPhotos-validPhotos)

	renderCountTable(w, "SKUs with non-JPEG files", results, func(r *model.SKUSummary) int { return r.NonJPEGCount })
	renderCountTable(w, "SKUs with oversized files", results, func(r *model.SKUSummary) int { return r.OversizedCount })
	renderCountTable(w, "SKUs with undersized files", results, func(r *model.SKUSummary) int { return r.UndersizedCount })
	renderCountTable(w, "SKUs with background files", results, func(r *model.SKUSummary) int { return r.BackgroundCount })
	renderCountTable(w, "SKUs with detail shots", results, func(r *model.SKUSummary) int { return r.DetailShotCount })
	renderCountTable(w, "SKUs with low quality files", results, func(r *model.SKUSummary) int { return r.LowQualityCount })

	fewPhotos := make([]*model.SKUSummary, 0)
	for _, r := range results {
		if r.TotalPhotos < minPhotos {
			fewPhotos = append(fewPhotos, r)
		}
	}
	if len(fewPhotos) > 0 {
		color.New(color.FgYellow).Fprintf(w, "\nSKUs with fewer than %d photos (%d):\n", minPhotos, len(fewPhotos))
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SKU\tPhoto Count")
		for _, r := range fewPhotos {
			fmt.Fprintf(tw, "%s\t%d\n", r.SKU, r.TotalPhotos)
		}
		tw.Flush()
	}

	if len(missing) > 0 {
		color.New(color.FgRed).Fprintf(w, "\nMissing SKUs (%d):\n", len(missing))
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SKU\tSupplier\tReason")
		for _, m := range missing {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", m.SKU, m.Supplier, m.Reason)
		}
		tw.Flush()
	}
}

func renderCountTable(w io.Writer, title string, results []*model.SKUSummary, count func(*model.SKUSummary) int) {
	matched := make([]*model.SKUSummary, 0)
	for _, r := range results {
		if count(r) > 0 {
			matched = append(matched, r)
		}
	}
	if len(matched) == 0 {
		return
	}

	color.New(color.FgMagenta).Fprintf(w, "\n%s (%d):\n", title, len(matched))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SKU\tCount")
	for _, r := range matched {
		fmt.Fprintf(tw, "%s\t%d\n", r.SKU, count(r))
	}
	tw.Flush()
}

// ExportCSV writes the flat report joining per-SKU stats with missing-SKU
// rows. Status is OK when a SKU has no issues, ISSUES otherwise, MISSING for
// manifest SKUs without a directory.
func ExportCSV(path string, results []*model.SKUSummary, missing []model.MissingSKU) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return goerr.Wrap(err, "failed to create report directory", goerr.V("dir", dir))
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return goerr.Wrap(err, "failed to create report CSV", goerr.V("path", path))
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(reportColumns); err != nil {
		return goerr.Wrap(err, "failed to write report header")
	}

	for _, r := range results {
		status := "OK"
		if len(r.Issues) > 0 {
			status = "ISSUES"
		}
		row := []string{
			r.SKU,
			strconv.Itoa(r.TotalPhotos),
			strconv.Itoa(r.ValidPhotos),
			strconv.Itoa(r.InvalidPhotos),
			strconv.Itoa(r.NonJPEGCount),
			strconv.Itoa(r.OversizedCount),
			strconv.Itoa(r.UndersizedCount),
			strconv.Itoa(r.BackgroundCount),
			strconv.Itoa(r.DetailShotCount),
			strconv.Itoa(r.LowQualityCount),
			strings.Join(r.Issues, "; "),
			status,
		}
		if err := w.Write(row); err != nil {
			return goerr.Wrap(err, "failed to write report row", goerr.V("sku", r.SKU))
		}
	}

	for _, m := range missing {
		row := []string{
			m.SKU,
			"0", "0", "0", "0", "0", "0", "0", "0", "0",
			m.Reason,
			"MISSING",
		}
		if err := w.Write(row); err != nil {
			return goerr.Wrap(err, "failed to write missing SKU row", goerr.V("sku", m.SKU))
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return goerr.Wrap(err, "failed to flush report CSV")
	}
	return nil
}
