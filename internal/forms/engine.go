package forms

import (
	"strings"
	"unicode/utf8"
)

const (
	// textFieldConfidence is assigned to fields inferred from
	// "name: value" text patterns
	textFieldConfidence = 0.8
	// widgetFieldConfidence is assigned to fields read from
	// interactive widgets
	widgetFieldConfidence = 0.95
	// unknownFieldName stands in for widgets that carry no name
	unknownFieldName = "Unknown"
	// maxFieldNameLength is the exclusive rune limit for colon-derived
	// field names
	maxFieldNameLength = 50
)

// EngineConfig controls how page content is turned into segments
type EngineConfig struct {
	Granularity Granularity
	UseGeometry bool
}

// DefaultEngineConfig returns line-level segmentation with geometry enabled
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Granularity: GranularityLine,
		UseGeometry: true,
	}
}

// Engine turns laid-out page content into classified segments and
// extracted fields. It holds no per-document state and is safe for
// concurrent use.
type Engine struct {
	config     EngineConfig
	classifier *Classifier
}

// NewEngine creates an engine with the default configuration
func NewEngine() *Engine {
	return NewEngineWithConfig(DefaultEngineConfig())
}

// NewEngineWithConfig creates an engine with a custom configuration
func NewEngineWithConfig(config EngineConfig) *Engine {
	return &Engine{
		config:     config,
		classifier: NewClassifier(config.Granularity, config.UseGeometry),
	}
}

// Analyze segments every page and extracts fields. Segments come out in
// ascending page order; within a page, text segments precede widget
// segments and both keep their source order. The third return value is
// the detected form type, empty when nothing matched.
func (e *Engine) Analyze(pages []PageContent) ([]Segment, []ExtractedField, string) {
	segments := []Segment{}
	fields := []ExtractedField{}

	for _, page := range pages {
		dims := PageDimensions{Width: page.Width, Height: page.Height}

		for _, unit := range e.textUnits(page) {
			text := strings.TrimSpace(unit.text)
			if text == "" {
				continue
			}
			bbox := NewBoundingBox(unit.rect)
			segments = append(segments, Segment{
				Text:       text,
				Type:       e.classifier.Classify(text, bbox, dims),
				PageNumber: page.Number,
				BBox:       bbox,
				Page:       dims,
				IsPII:      ContainsPII(text),
			})
			if field, ok := colonField(text); ok {
				fields = append(fields, field)
			}
		}

		for _, widget := range page.Widgets {
			name := widget.Name
			if name == "" {
				name = unknownFieldName
			}
			display := name
			if widget.Value != "" {
				display = name + ": " + widget.Value
			}

			// Widgets without a rectangle still yield a field below
			if widget.Rect != nil {
				segments = append(segments, Segment{
					Text:       display,
					Type:       WidgetSegmentType(widget.Type),
					PageNumber: page.Number,
					BBox:       NewBoundingBox(*widget.Rect),
					Page:       dims,
					IsPII:      ContainsPII(display),
				})
			}

			kind := widget.Kind
			if kind == "" {
				kind = widgetKind(widget.Type)
			}
			fields = append(fields, ExtractedField{
				Name:       name,
				Value:      widget.Value,
				Type:       kind,
				Confidence: widgetFieldConfidence,
			})
		}
	}

	return segments, fields, DetectFormType(segments)
}

// textUnit is one classifiable run of text with its rectangle
type textUnit struct {
	rect Rect
	text string
}

// textUnits flattens a page's blocks into classifiable units according to
// the configured granularity
func (e *Engine) textUnits(page PageContent) []textUnit {
	units := make([]textUnit, 0, len(page.Blocks))
	for _, block := range page.Blocks {
		if e.config.Granularity == GranularityBlock {
			units = append(units, textUnit{rect: block.Rect, text: blockText(block)})
			continue
		}
		if len(block.Lines) == 0 {
			// Backends without line detail contribute the block whole
			units = append(units, textUnit{rect: block.Rect, text: block.Text})
			continue
		}
		for _, line := range block.Lines {
			units = append(units, textUnit{rect: line.Rect, text: line.Text})
		}
	}
	return units
}

// blockText returns the block's own text, or its lines joined with single
// spaces when the backend only produced lines
func blockText(block TextBlock) string {
	if strings.TrimSpace(block.Text) != "" {
		return block.Text
	}
	parts := make([]string, 0, len(block.Lines))
	for _, line := range block.Lines {
		if text := strings.TrimSpace(line.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// colonField derives a field from "name: value" text. The name must be
// non-empty and under the length limit; an empty value is acceptable.
func colonField(text string) (ExtractedField, bool) {
	if !strings.Contains(text, ":") {
		return ExtractedField{}, false
	}
	parts := strings.SplitN(text, ":", 2)
	name := strings.TrimSpace(parts[0])
	if name == "" || utf8.RuneCountInString(name) >= maxFieldNameLength {
		return ExtractedField{}, false
	}
	return ExtractedField{
		Name:       name,
		Value:      strings.TrimSpace(parts[1]),
		Type:       "text",
		Confidence: textFieldConfidence,
	}, true
}

// DetectFormType guesses the kind of form from the combined text of all
// segments. Returns an empty string when no rule matches.
func DetectFormType(segments []Segment) string {
	var builder strings.Builder
	for i, segment := range segments {
		if i > 0 {
			builder.WriteByte(' ')
		}
		builder.WriteString(segment.Text)
	}
	combined := strings.ToLower(builder.String())

	for _, rule := range getFormTypeRules() {
		for _, keyword := range rule.Keywords {
			if strings.Contains(combined, keyword) {
				return rule.Label
			}
		}
	}
	return ""
}
