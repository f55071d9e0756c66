package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/torus-io/assetpipe/pkg/cli/config"
	"github.com/torus-io/assetpipe/pkg/infra/drive"
	"github.com/torus-io/assetpipe/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdDownload() *cli.Command {
	var (
		driveCfg   config.Drive
		dlCfg      config.Download
		configPath string
	)

	flags := append(driveCfg.Flags(), dlCfg.Flags()...)
	flags = append(flags, configFlag(&configPath))

	return &cli.Command{
		Name:    "download",
		Aliases: []string{"d"},
		Usage:   "Download product photos from Google Drive, organized by supplier and SKU",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			if configPath != "" {
				file, err := config.LoadFile(configPath)
				if err != nil {
					return err
				}
				if driveCfg.CredentialsFile == "" {
					driveCfg.CredentialsFile = file.GoogleDrive.CredentialsFile
				}
				if driveCfg.FolderID == "" {
					driveCfg.FolderID = file.FolderID("product_photos")
				}
				if dlCfg.OutputDir == "" {
					dlCfg.OutputDir = file.OutputDirectories.ProductPhotos
				}
				if !c.IsSet("workers") && file.Download.Workers > 0 {
					dlCfg.Workers = file.Download.Workers
				}
			}
			if dlCfg.OutputDir == "" {
				dlCfg.OutputDir = "product_photos"
			}

			if err := driveCfg.Validate(); err != nil {
				return err
			}

			logger.Info("Starting photo download",
				slog.String("folder_id", driveCfg.FolderID),
				slog.String("output_dir", dlCfg.OutputDir),
				slog.Int("workers", dlCfg.Workers),
			)

			opts := []usecase.FetchOption{usecase.WithWorkers(dlCfg.Workers)}
			if dlCfg.Yes {
				opts = append(opts, usecase.WithAutoConfirm())
			}
			if dlCfg.Verbose {
				opts = append(opts, usecase.WithVerbose())
			}

			fetcher := usecase.NewFetcher(drive.NewFactory(driveCfg.CredentialsFile), opts...)
			summary, err := fetcher.DownloadAll(ctx, driveCfg.FolderID, dlCfg.OutputDir)
			if err != nil {
				return goerr.Wrap(err, "download failed")
			}
			if summary.Declined {
				return goerr.New("download cancelled by user")
			}

			logger.Info("Download complete",
				slog.Int("downloaded", summary.Downloaded),
				slog.Int("failed", summary.Failed),
			)
			return nil
		},
	}
}
