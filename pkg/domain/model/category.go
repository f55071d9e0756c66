package model

// CategoryKind distinguishes top-level categories from subcategories
type CategoryKind string

const (
	KindCategory    CategoryKind = "category"
	KindSubcategory CategoryKind = "subcategory"
)

// CategoryInfo is read-only reference data loaded from the category manifest
type CategoryInfo struct {
	Name   string
	Kind   CategoryKind
	Parent string // parent category name, empty for categories
}

// MergeSummary aggregates the outcome of copying subcategory photos into
// flattened category directories
type MergeSummary struct {
	Copied int
	Failed int
}
