package model

// NonJPEGFile identifies an image that has not been converted to JPEG yet
type NonJPEGFile struct {
	SKU      string
	Filename string
	Ext      string
	Path     string
}

// ProcessError records one failed conversion or rename, non-fatal to the batch
type ProcessError struct {
	SKU      string
	Filename string
	Reason   string
}

// ConvertSummary aggregates the outcome of a JPEG conversion pass
type ConvertSummary struct {
	Converted     int
	SKUsProcessed int
	NonJPEGFiles  []NonJPEGFile
	Errors        []ProcessError
}

// RenameSummary aggregates the outcome of a sequential rename pass.
// When NonJPEGFiles is non-empty the pass performed zero renames.
type RenameSummary struct {
	Renamed       int
	SKUsProcessed int
	NonJPEGFiles  []NonJPEGFile
	Errors        []ProcessError
}
