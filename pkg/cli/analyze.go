package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/torus-io/assetpipe/pkg/cli/config"
	"github.com/torus-io/assetpipe/pkg/domain/model"
	"github.com/torus-io/assetpipe/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdAnalyze() *cli.Command {
	var (
		analysisCfg config.Analysis
		configPath  string
	)

	flags := append(analysisCfg.Flags(), configFlag(&configPath))

	return &cli.Command{
		Name:    "analyze",
		Aliases: []string{"a"},
		Usage:   "Screen downloaded photo sets and report per-SKU issues",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			if configPath != "" {
				file, err := config.LoadFile(configPath)
				if err != nil {
					return err
				}
				if analysisCfg.PhotosDir == "" {
					analysisCfg.PhotosDir = file.OutputDirectories.ProductPhotos
				}
				if !c.IsSet("min-photos") && file.Validation.MinPhotos > 0 {
					analysisCfg.MinPhotos = file.Validation.MinPhotos
				}
			}
			if analysisCfg.PhotosDir == "" {
				analysisCfg.PhotosDir = "product_photos"
			}

			logger.Info("Starting photo analysis",
				slog.String("photos_dir", analysisCfg.PhotosDir),
				slog.Int("min_photos", analysisCfg.MinPhotos),
			)

			analyzer := usecase.NewAnalyzer(usecase.WithMinPhotos(analysisCfg.MinPhotos))
			results, err := analyzer.AnalyzeDirectory(ctx, analysisCfg.PhotosDir)
			if err != nil {
				return goerr.Wrap(err, "analysis failed")
			}

			var missing []model.MissingSKU
			if analysisCfg.ManifestCSV != "" {
				missing, err = analyzer.FindMissingSKUs(ctx, analysisCfg.ManifestCSV, analysisCfg.PhotosDir)
				if err != nil {
					return goerr.Wrap(err, "missing SKU detection failed")
				}
			}

			usecase.RenderReport(os.Stdout, results, missing, analysisCfg.MinPhotos)

			if analysisCfg.ExportCSV != "" {
				if err := usecase.ExportCSV(analysisCfg.ExportCSV, results, missing); err != nil {
					return goerr.Wrap(err, "report export failed")
				}
				logger.Info("Report exported", slog.String("path", analysisCfg.ExportCSV))
			}
			return nil
		},
	}
}
