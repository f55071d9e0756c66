package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/torus-io/assetpipe/pkg/cli/config"
	"github.com/torus-io/assetpipe/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdConvert() *cli.Command {
	var (
		photosDir  string
		quality    int
		configPath string
	)

	return &cli.Command{
		Name:  "convert",
		Usage: "Convert non-JPEG photos to JPEG, removing originals on success",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "photos-dir",
				Aliases:     []string{"p"},
				Usage:       "Directory of downloaded SKU photo sets",
				Destination: &photosDir,
				Sources:     cli.EnvVars("ASSETPIPE_PHOTOS_DIR"),
			},
			&cli.IntFlag{
				Name:        "quality",
				Usage:       "JPEG encoding quality",
				Value:       usecase.DefaultJPEGQuality,
				Destination: &quality,
			},
			configFlag(&configPath),
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			dir, err := resolvePhotosDir(photosDir, configPath)
			if err != nil {
				return err
			}

			logger.Info("Starting JPEG conversion", slog.String("photos_dir", dir))

			processor := usecase.NewProcessor(usecase.WithJPEGQuality(quality))
			summary, err := processor.ConvertAll(ctx, dir)
			if err != nil {
				return goerr.Wrap(err, "conversion failed")
			}

			logger.Info("Conversion complete",
				slog.Int("converted", summary.Converted),
				slog.Int("failed", len(summary.Errors)),
			)
			return nil
		},
	}
}

func cmdRename() *cli.Command {
	var (
		photosDir  string
		configPath string
	)

	return &cli.Command{
		Name:  "rename",
		Usage: "Rename each SKU's JPEG files to sequential 1.jpg..N.jpg",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "photos-dir",
				Aliases:     []string{"p"},
				Usage:       "Directory of downloaded SKU photo sets",
				Destination: &photosDir,
				Sources:     cli.EnvVars("ASSETPIPE_PHOTOS_DIR"),
			},
			configFlag(&configPath),
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			dir, err := resolvePhotosDir(photosDir, configPath)
			if err != nil {
				return err
			}

			logger.Info("Starting sequential rename", slog.String("photos_dir", dir))

			processor := usecase.NewProcessor()
			summary, err := processor.RenameAll(ctx, dir)
			if err != nil {
				return goerr.Wrap(err, "rename failed")
			}

			logger.Info("Rename complete",
				slog.Int("renamed", summary.Renamed),
				slog.Int("failed", len(summary.Errors)),
			)
			return nil
		},
	}
}

// resolvePhotosDir applies the config file fallback and default directory
func resolvePhotosDir(photosDir, configPath string) (string, error) {
	if photosDir == "" && configPath != "" {
		file, err := config.LoadFile(configPath)
		if err != nil {
			return "", err
		}
		photosDir = file.OutputDirectories.ProductPhotos
	}
	if photosDir == "" {
		photosDir = "product_photos"
	}
	return photosDir, nil
}
