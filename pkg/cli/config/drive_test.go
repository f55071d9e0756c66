package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/torus-io/assetpipe/pkg/cli/config"
)

func TestDriveValidate(t *testing.T) {
	credsPath := filepath.Join(t.TempDir(), "creds.json")
	gt.NoError(t, os.WriteFile(credsPath, []byte("{}"), 0600))

	tests := []struct {
		name    string
		cfg     config.Drive
		wantErr bool
	}{
		{
			name: "complete configuration",
			cfg:  config.Drive{CredentialsFile: credsPath, FolderID: "abc"},
		},
		{
			name:    "no credentials file",
			cfg:     config.Drive{FolderID: "abc"},
			wantErr: true,
		},
		{
			name:    "credentials file does not exist",
			cfg:     config.Drive{CredentialsFile: filepath.Join(t.TempDir(), "nope.json"), FolderID: "abc"},
			wantErr: true,
		},
		{
			name:    "no folder ID",
			cfg:     config.Drive{CredentialsFile: credsPath},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				gt.Error(t, err)
			} else {
				gt.NoError(t, err)
			}
		})
	}
}
