// Package forms segments laid-out PDF page content into typed, positioned
// pieces, flags sensitive content, and extracts field data from text
// patterns and interactive widgets.
package forms

// SegmentType identifies the layout role of a piece of form content
type SegmentType string

const (
	SegmentTypeText          SegmentType = "Text"
	SegmentTypeTitle         SegmentType = "Title"
	SegmentTypeSectionHeader SegmentType = "SectionHeader"
	SegmentTypeLabel         SegmentType = "Label"
	SegmentTypeFormField     SegmentType = "FormField"
	SegmentTypeCheckbox      SegmentType = "Checkbox"
	SegmentTypeDropdown      SegmentType = "Dropdown"
	SegmentTypeSignature     SegmentType = "Signature"
	SegmentTypeInstructions  SegmentType = "Instructions"
)

// IsValid checks if the segment type is one of the known values
func (st SegmentType) IsValid() bool {
	switch st {
	case SegmentTypeText, SegmentTypeTitle, SegmentTypeSectionHeader,
		SegmentTypeLabel, SegmentTypeFormField, SegmentTypeCheckbox,
		SegmentTypeDropdown, SegmentTypeSignature, SegmentTypeInstructions:
		return true
	default:
		return false
	}
}

// AllSegmentTypes returns every segment type the classifier can produce
func AllSegmentTypes() []SegmentType {
	return []SegmentType{
		SegmentTypeText,
		SegmentTypeTitle,
		SegmentTypeSectionHeader,
		SegmentTypeLabel,
		SegmentTypeFormField,
		SegmentTypeCheckbox,
		SegmentTypeDropdown,
		SegmentTypeSignature,
		SegmentTypeInstructions,
	}
}

// Granularity selects the text unit the segmentation engine works on
type Granularity string

const (
	// GranularityLine segments on individual text lines
	GranularityLine Granularity = "line"
	// GranularityBlock segments on whole text blocks
	GranularityBlock Granularity = "block"
)

// Rect is a raw rectangle in top-left-origin page coordinates, in points.
// Y0 is the top edge and Y1 the bottom edge.
type Rect struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// BoundingBox is the normalized position of a segment on its page
type BoundingBox struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewBoundingBox converts a raw rectangle into a bounding box. Degenerate
// rectangles pass through arithmetically; extents are never clamped.
func NewBoundingBox(r Rect) BoundingBox {
	return BoundingBox{
		Top:    r.Y0,
		Left:   r.X0,
		Width:  r.X1 - r.X0,
		Height: r.Y1 - r.Y0,
	}
}

// PageDimensions carries the page size a segment was measured against
type PageDimensions struct {
	Width  float64 `json:"page_width"`
	Height float64 `json:"page_height"`
}

// Segment is one typed, positioned piece of form content. Segments are
// value types; the engine never mutates or reorders them after creation.
type Segment struct {
	Text       string         `json:"text"`
	Type       SegmentType    `json:"type"`
	PageNumber int            `json:"page_number"`
	BBox       BoundingBox    `json:"bbox"`
	Page       PageDimensions `json:"page"`
	IsPII      bool           `json:"is_pii"`
}

// ExtractedField is a name/value pair recovered from text patterns or widgets
type ExtractedField struct {
	Name       string  `json:"name"`
	Value      string  `json:"value"`
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

// Section groups segments that belong together visually. Members are
// referenced by index into the original segment slice, never copied.
type Section struct {
	ID             int    `json:"id"`
	Title          string `json:"title"`
	SegmentIndices []int  `json:"member_segment_indices"`
}

// FormAnalysis is the complete result of analyzing one document. It is
// structurally valid even on failure: Segments and Fields are always
// non-nil and Success reports whether the analysis completed.
type FormAnalysis struct {
	Success  bool             `json:"success"`
	Filename string           `json:"filename"`
	NumPages int              `json:"num_pages"`
	Segments []Segment        `json:"segments"`
	Fields   []ExtractedField `json:"fields"`
	FormType string           `json:"form_type,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// TextLine is one laid-out line of text inside a block
type TextLine struct {
	Rect Rect   `json:"rect"`
	Text string `json:"text"`
}

// TextBlock is a laid-out run of text on a page. Text may be empty when
// the extraction backend only produced lines.
type TextBlock struct {
	Rect  Rect       `json:"rect"`
	Text  string     `json:"text"`
	Lines []TextLine `json:"lines,omitempty"`
}

// Widget is an interactive form control found on a page
type Widget struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	// Type is the PDF field type (Tx, Btn, Ch, Sig) or a descriptive
	// equivalent such as "checkbox".
	Type string `json:"type"`
	// Kind refines Type with the concrete control variant: text, checkbox,
	// radio, dropdown, listbox, or signature. When empty it is derived
	// from Type.
	Kind string `json:"kind,omitempty"`
	// Rect is nil when the widget carries no usable rectangle. Such
	// widgets still yield extracted fields but no segment.
	Rect *Rect `json:"rect,omitempty"`
}

// PageContent is the laid-out content of a single page, in top-left-origin
// coordinates. Number is 1-indexed.
type PageContent struct {
	Number  int         `json:"number"`
	Width   float64     `json:"width"`
	Height  float64     `json:"height"`
	Blocks  []TextBlock `json:"blocks"`
	Widgets []Widget    `json:"widgets"`
}
