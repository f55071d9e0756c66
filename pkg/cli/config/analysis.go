package config

import "github.com/urfave/cli/v3"

// Analysis holds integrity screening configuration
type Analysis struct {
	PhotosDir   string
	ManifestCSV string
	ExportCSV   string
	MinPhotos   int
}

// Flags returns CLI flags for analysis configuration
func (c *Analysis) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "photos-dir",
			Aliases:     []string{"p"},
			Usage:       "Directory of downloaded SKU photo sets",
			Destination: &c.PhotosDir,
			Sources:     cli.EnvVars("ASSETPIPE_PHOTOS_DIR"),
		},
		&cli.StringFlag{
			Name:        "manifest",
			Aliases:     []string{"m"},
			Usage:       "SKU manifest CSV used for missing-SKU detection",
			Destination: &c.ManifestCSV,
			Sources:     cli.EnvVars("ASSETPIPE_MANIFEST"),
		},
		&cli.StringFlag{
			Name:        "export-csv",
			Usage:       "Write the report to this CSV file",
			Destination: &c.ExportCSV,
		},
		&cli.IntFlag{
			Name:        "min-photos",
			Usage:       "Minimum expected photo count per SKU",
			Value:       3,
			Destination: &c.MinPhotos,
		},
	}
}
