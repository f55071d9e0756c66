package model

// Classification holds the classifier verdicts for one decoded image
type Classification struct {
	HasBackground bool
	IsDetailShot  bool
	QualityScore  float64
}

// PhotoRecord is the analysis result for a single photo file. Computed fresh
// on each analysis pass; persisted only via CSV export.
type PhotoRecord struct {
	Path          string
	SKU           string
	Supplier      string
	Filename      string
	Format        string // lowercase extension, e.g. ".jpg"
	SizeMB        float64
	Width         int
	Height        int
	HasBackground bool
	IsDetailShot  bool
	QualityScore  float64
	IsValid       bool
	Issues        []string
}

// SKUSummary aggregates PhotoRecords for one SKU directory
type SKUSummary struct {
	SKU             string
	Supplier        string
	TotalPhotos     int
	ValidPhotos     int
	InvalidPhotos   int
	NonJPEGCount    int
	OversizedCount  int
	UndersizedCount int
	BackgroundCount int
	DetailShotCount int
	LowQualityCount int
	Issues          []string
	Photos          []PhotoRecord
}

// MissingSKU is a manifest entry with no corresponding photo directory
type MissingSKU struct {
	SKU      string
	Supplier string
	Reason   string
}
