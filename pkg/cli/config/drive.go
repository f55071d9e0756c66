package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Drive holds Google Drive access configuration
type Drive struct {
	CredentialsFile string
	FolderID        string
}

// Flags returns CLI flags for Drive configuration
func (c *Drive) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "credentials",
			Aliases:     []string{"c"},
			Usage:       "Path to Google Drive API credentials file",
			Destination: &c.CredentialsFile,
			Sources:     cli.EnvVars("ASSETPIPE_CREDENTIALS"),
		},
		&cli.StringFlag{
			Name:        "folder-id",
			Usage:       "Google Drive folder ID to download from",
			Destination: &c.FolderID,
			Sources:     cli.EnvVars("ASSETPIPE_FOLDER_ID"),
		},
	}
}

// Validate checks that the configuration is complete enough to start any
// download. Failures here abort before any work begins.
func (c *Drive) Validate() error {
	if c.CredentialsFile == "" {
		return goerr.New("credentials file is not configured")
	}
	if _, err := os.Stat(c.CredentialsFile); err != nil {
		return goerr.Wrap(err, "credentials file not found", goerr.V("path", c.CredentialsFile))
	}
	if c.FolderID == "" {
		return goerr.New("folder ID is not configured")
	}
	return nil
}
