package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"
)

// File is the optional YAML configuration file. Flags and environment
// variables take precedence over values loaded from it.
type File struct {
	GoogleDrive struct {
		CredentialsFile string            `yaml:"credentials_file"`
		FolderIDs       map[string]string `yaml:"folder_ids"`
	} `yaml:"google_drive"`

	OutputDirectories struct {
		ProductPhotos  string `yaml:"product_photos"`
		CategoryImages string `yaml:"category_images"`
		Reports        string `yaml:"reports"`
	} `yaml:"output_directories"`

	Download struct {
		Workers int `yaml:"workers"`
	} `yaml:"download"`

	Validation struct {
		MinPhotos int `yaml:"min_photos"`
	} `yaml:"validation"`
}

// LoadFile reads and parses the YAML configuration file
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V("path", path))
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, goerr.Wrap(err, "failed to parse config file", goerr.V("path", path))
	}
	return &f, nil
}

// FolderID returns the configured folder ID for a workflow, or empty
func (f *File) FolderID(workflow string) string {
	if f.GoogleDrive.FolderIDs == nil {
		return ""
	}
	return f.GoogleDrive.FolderIDs[workflow]
}
