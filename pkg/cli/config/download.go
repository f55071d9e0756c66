package config

import "github.com/urfave/cli/v3"

// Download holds download behavior configuration
type Download struct {
	OutputDir string
	Workers   int
	Yes       bool
	Verbose   bool
}

// Flags returns CLI flags for download configuration
func (c *Download) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "output-dir",
			Aliases:     []string{"o"},
			Usage:       "Output directory for downloaded files",
			Destination: &c.OutputDir,
			Sources:     cli.EnvVars("ASSETPIPE_OUTPUT_DIR"),
		},
		&cli.IntFlag{
			Name:        "workers",
			Aliases:     []string{"w"},
			Usage:       "Number of parallel download workers",
			Value:       5,
			Destination: &c.Workers,
			Sources:     cli.EnvVars("ASSETPIPE_WORKERS"),
		},
		&cli.BoolFlag{
			Name:        "yes",
			Aliases:     []string{"y"},
			Usage:       "Skip confirmation and download all suppliers automatically",
			Destination: &c.Yes,
		},
		&cli.BoolFlag{
			Name:        "verbose",
			Aliases:     []string{"v"},
			Usage:       "Enable verbose output",
			Destination: &c.Verbose,
			Sources:     cli.EnvVars("ASSETPIPE_VERBOSE"),
		},
	}
}
