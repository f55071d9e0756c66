package model

import (
	"path/filepath"
	"strings"
)

// NodeKind distinguishes files from folders in a remote listing
type NodeKind string

const (
	NodeFile   NodeKind = "file"
	NodeFolder NodeKind = "folder"
)

// RemoteNode is an immutable snapshot of one entry in a remote folder listing
type RemoteNode struct {
	ID   string
	Name string
	Kind NodeKind
}

// IsFolder reports whether the node is a folder
func (n RemoteNode) IsFolder() bool {
	return n.Kind == NodeFolder
}

// FetchTask describes one file download. Created during tree enumeration and
// consumed exactly once by a pool worker; never mutated after creation.
type FetchTask struct {
	FileID   string // Remote file ID
	DestPath string // Local destination path, unique within one pool run
	Name     string // Original remote file name
	SKU      string // Group key (SKU or supplier-level unit)
	Supplier string // Supplier or subcategory the SKU belongs to
	Index    int    // 1-based position within the SKU's file set
	Total    int    // Number of files in the SKU's file set
}

// FetchResult is produced by a worker on task completion. Failed tasks are
// never retried.
type FetchResult struct {
	Task    FetchTask
	Success bool
	Err     error
}

// FetchSummary aggregates the outcome of one download run
type FetchSummary struct {
	Downloaded int
	Failed     int
	Declined   bool // true when the confirmation gate aborted the run
}

// imageExtensions is the allow-list used when enumerating remote folders
var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff", ".webp"}

// IsImageFile reports whether a remote file name looks like an image,
// by extension only
func IsImageFile(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// analyzeExtensions is the broader set accepted by local-disk analysis.
// It additionally admits .tif, which appears in practice in supplier drops.
var analyzeExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".bmp": true, ".tiff": true, ".tif": true, ".webp": true,
}

// HasImageExt reports whether a local file name carries a known image extension
func HasImageExt(name string) bool {
	return analyzeExtensions[strings.ToLower(filepath.Ext(name))]
}

// HasJPEGExt reports whether a file name carries a JPEG extension
func HasJPEGExt(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".jpg" || ext == ".jpeg"
}

// HasNonJPEGImageExt reports whether a file is an image that still needs
// conversion before sequential renaming
func HasNonJPEGImageExt(name string) bool {
	return HasImageExt(name) && !HasJPEGExt(name)
}
