package extraction

// Default page dimensions in PDF points (US Letter), used when a page
// carries no readable MediaBox.
const (
	defaultPageWidthPt  = 612.0
	defaultPageHeightPt = 792.0
)

// Grouping and traversal limits.
const (
	// wordGapPt is the horizontal distance between two text runs above
	// which a space is inserted between them.
	wordGapPt = 1.0

	// maxParentDepth bounds walks up Parent chains in malformed documents.
	maxParentDepth = 10

	// maxPageTreeDepth bounds recursion through the page tree.
	maxPageTreeDepth = 50
)

// Config controls how raw page text is grouped into lines and blocks.
type Config struct {
	// LineTolerance is the maximum baseline distance, in points, for two
	// text runs to land on the same line.
	LineTolerance float64 `json:"line_tolerance"`

	// BlockGap is the vertical distance, in points, above which
	// consecutive lines start a new block.
	BlockGap float64 `json:"block_gap"`

	// DefaultTextHeight stands in for runs whose font size is unknown.
	DefaultTextHeight float64 `json:"default_text_height"`
}

// DefaultConfig returns grouping thresholds suited to common letter and
// A4 layouts.
func DefaultConfig() Config {
	return Config{
		LineTolerance:     5.0,
		BlockGap:          20.0,
		DefaultTextHeight: 12.0,
	}
}
