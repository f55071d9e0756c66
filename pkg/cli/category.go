package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/torus-io/assetpipe/pkg/cli/config"
	"github.com/torus-io/assetpipe/pkg/domain/model"
	"github.com/torus-io/assetpipe/pkg/infra/drive"
	"github.com/torus-io/assetpipe/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdCategory() *cli.Command {
	return &cli.Command{
		Name:  "category",
		Usage: "Lifestyle photo workflow grouped by category and subcategory",
		Commands: []*cli.Command{
			cmdCategoryList(),
			cmdCategoryDownload(),
			cmdCategoryMerge(),
		},
	}
}

func categoriesFlag(dest *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "categories",
		Usage:       "CSV file mapping subcategories to categories",
		Required:    true,
		Destination: dest,
		Sources:     cli.EnvVars("ASSETPIPE_CATEGORIES"),
	}
}

func cmdCategoryList() *cli.Command {
	var categoriesCSV string

	return &cli.Command{
		Name:  "list",
		Usage: "List categories and their subcategories",
		Flags: []cli.Flag{categoriesFlag(&categoriesCSV)},
		Action: func(ctx context.Context, c *cli.Command) error {
			downloader := usecase.NewCategoryDownloader(nil)
			categories, err := downloader.LoadCategories(ctx, categoriesCSV)
			if err != nil {
				return err
			}

			byParent := map[string][]string{}
			for name, info := range categories {
				if info.Kind == model.KindSubcategory {
					byParent[info.Parent] = append(byParent[info.Parent], name)
				}
			}

			parents := make([]string, 0, len(byParent))
			for parent := range byParent {
				parents = append(parents, parent)
			}
			sort.Strings(parents)

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			for _, parent := range parents {
				subs := byParent[parent]
				sort.Strings(subs)
				color.New(color.Bold).Fprintf(tw, "%s (%d)\n", parent, len(subs))
				for _, sub := range subs {
					fmt.Fprintf(tw, "  %s\n", sub)
				}
			}
			tw.Flush()
			return nil
		},
	}
}

func cmdCategoryDownload() *cli.Command {
	var (
		driveCfg          config.Drive
		dlCfg             config.Download
		categoriesCSV     string
		subcategory       string
		lifestyleFolderID string
		configPath        string
	)

	flags := append(driveCfg.Flags(), dlCfg.Flags()...)
	flags = append(flags,
		categoriesFlag(&categoriesCSV),
		&cli.StringFlag{
			Name:        "subcategory",
			Usage:       "Download only this subcategory",
			Destination: &subcategory,
		},
		&cli.StringFlag{
			Name:        "lifestyle-folder-id",
			Usage:       "Lifestyle photos folder ID, discovered from the root folder when omitted",
			Destination: &lifestyleFolderID,
			Sources:     cli.EnvVars("ASSETPIPE_LIFESTYLE_FOLDER_ID"),
		},
		configFlag(&configPath),
	)

	return &cli.Command{
		Name:  "download",
		Usage: "Download lifestyle photos grouped by subcategory",
		Flags: flags,
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
					driveCfg.FolderID = file.FolderID("lifestyle_photos")
				}
				if dlCfg.OutputDir == "" {
					dlCfg.OutputDir = file.OutputDirectories.CategoryImages
				}
				if !c.IsSet("workers") && file.Download.Workers > 0 {
					dlCfg.Workers = file.Download.Workers
				}
			}
			if dlCfg.OutputDir == "" {
				dlCfg.OutputDir = "category_images"
			}

			if err := driveCfg.Validate(); err != nil {
				return err
			}

			opts := []usecase.CategoryOption{usecase.WithCategoryWorkers(dlCfg.Workers)}
			if dlCfg.Verbose {
				opts = append(opts, usecase.WithCategoryVerbose())
			}
			downloader := usecase.NewCategoryDownloader(drive.NewFactory(driveCfg.CredentialsFile), opts...)

			if _, err := downloader.LoadCategories(ctx, categoriesCSV); err != nil {
				return err
			}

			if lifestyleFolderID == "" {
				id, err := downloader.FindLifestyleFolder(ctx, driveCfg.FolderID)
				if err != nil {
					return err
				}
				lifestyleFolderID = id
			}

			var summary *model.FetchSummary
			var err error
			if subcategory != "" {
				summary, err = downloader.DownloadSubcategory(ctx, subcategory, dlCfg.OutputDir, lifestyleFolderID)
			} else {
				summary, err = downloader.DownloadAllSubcategories(ctx, dlCfg.OutputDir, lifestyleFolderID)
			}
			if err != nil {
				return goerr.Wrap(err, "category download failed")
			}

			logger.Info("Category download complete",
				slog.Int("downloaded", summary.Downloaded),
				slog.Int("failed", summary.Failed),
			)
			return nil
		},
	}
}

func cmdCategoryMerge() *cli.Command {
	var (
		categoriesCSV string
		category      string
		outputDir     string
		configPath    string
	)

	return &cli.Command{
		Name:  "merge",
		Usage: "Merge subcategory photos into flattened category directories",
		Flags: []cli.Flag{
			categoriesFlag(&categoriesCSV),
			&cli.StringFlag{
				Name:        "category",
				Usage:       "Merge only this category",
				Destination: &category,
			},
			&cli.StringFlag{
				Name:        "output-dir",
				Aliases:     []string{"o"},
				Usage:       "Directory holding subcategory downloads",
				Destination: &outputDir,
				Sources:     cli.EnvVars("ASSETPIPE_OUTPUT_DIR"),
			},
			configFlag(&configPath),
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			if outputDir == "" && configPath != "" {
				file, err := config.LoadFile(configPath)
				if err != nil {
					return err
				}
				outputDir = file.OutputDirectories.CategoryImages
			}
			if outputDir == "" {
				outputDir = "category_images"
			}

			downloader := usecase.NewCategoryDownloader(nil)
			if _, err := downloader.LoadCategories(ctx, categoriesCSV); err != nil {
				return err
			}

			var summary *model.MergeSummary
			var err error
			if category != "" {
				summary, err = downloader.MergeCategory(ctx, category, outputDir)
			} else {
				summary, err = downloader.MergeAllCategories(ctx, outputDir)
			}
			if err != nil {
				return goerr.Wrap(err, "category merge failed")
			}

			logger.Info("Category merge complete",
				slog.Int("copied", summary.Copied),
				slog.Int("failed", summary.Failed),
			)
			return nil
		},
	}
}
