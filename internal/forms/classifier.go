package forms

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ClassifierConfig holds the thresholds used by the classification cascade
type ClassifierConfig struct {
	// Granularity selects between line-level and block-level rules
	Granularity Granularity
	// UseGeometry enables position-based signals; when false only
	// content rules apply
	UseGeometry bool
	// MaxHeaderLength is the exclusive rune limit for section headers
	MaxHeaderLength int
	// MaxLabelLength is the exclusive rune limit for labels
	MaxLabelLength int
	// MinInstructionsLength is the exclusive rune threshold above which
	// plain text becomes instructions
	MinInstructionsLength int
	// HeaderTopFraction is the page-relative vertical band counted as
	// near the top of the page
	HeaderTopFraction float64
	// TitleMinWidthFraction is the page-relative width a block must
	// exceed to qualify as a title
	TitleMinWidthFraction float64
}

// DefaultClassifierConfig returns the standard thresholds for line-level
// classification with geometry enabled
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		Granularity:           GranularityLine,
		UseGeometry:           true,
		MaxHeaderLength:       50,
		MaxLabelLength:        40,
		MinInstructionsLength: 100,
		HeaderTopFraction:     0.15,
		TitleMinWidthFraction: 0.5,
	}
}

// Classifier assigns segment types to text using an ordered rule cascade.
// It only ever looks at one piece of text and its own geometry, never at
// neighboring segments, and is safe for concurrent use.
type Classifier struct {
	config            ClassifierConfig
	signatureKeywords []string
	checkboxPrefixes  []string
	headerKeywords    []string
	fieldIndicators   []string
}

// NewClassifier creates a classifier with default thresholds
func NewClassifier(granularity Granularity, useGeometry bool) *Classifier {
	config := DefaultClassifierConfig()
	config.Granularity = granularity
	config.UseGeometry = useGeometry
	return NewClassifierWithConfig(config)
}

// NewClassifierWithConfig creates a classifier with custom thresholds
func NewClassifierWithConfig(config ClassifierConfig) *Classifier {
	return &Classifier{
		config:            config,
		signatureKeywords: getSignatureKeywords(),
		checkboxPrefixes:  getCheckboxPrefixes(),
		headerKeywords:    getHeaderKeywords(),
		fieldIndicators:   getFieldIndicators(),
	}
}

// Classify assigns a segment type to text positioned at bbox on a page of
// the given dimensions. The first matching rule wins and the fallthrough
// is SegmentTypeText, so every input gets a valid type.
func (c *Classifier) Classify(text string, bbox BoundingBox, page PageDimensions) SegmentType {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)

	if c.isSignature(lower) {
		return SegmentTypeSignature
	}
	if c.isCheckbox(lower) {
		return SegmentTypeCheckbox
	}
	if c.isSectionHeader(trimmed, lower, bbox, page) {
		return SegmentTypeSectionHeader
	}
	if c.isLabel(trimmed) {
		return SegmentTypeLabel
	}
	if c.config.Granularity == GranularityBlock {
		if c.isFormField(lower) {
			return SegmentTypeFormField
		}
		if c.config.UseGeometry && c.isTitle(bbox, page) {
			return SegmentTypeTitle
		}
	}
	if utf8.RuneCountInString(trimmed) > c.config.MinInstructionsLength {
		return SegmentTypeInstructions
	}
	return SegmentTypeText
}

func (c *Classifier) isSignature(lower string) bool {
	for _, keyword := range c.signatureKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	// Date lines belong to the signature area at line level
	if c.config.Granularity == GranularityLine && strings.Contains(lower, "date:") {
		return true
	}
	return false
}

func (c *Classifier) isCheckbox(lower string) bool {
	for _, prefix := range c.checkboxPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

func (c *Classifier) isSectionHeader(trimmed, lower string, bbox BoundingBox, page PageDimensions) bool {
	if utf8.RuneCountInString(trimmed) >= c.config.MaxHeaderLength {
		return false
	}
	if !c.hasHeaderKeyword(lower) && !isAllCaps(trimmed) {
		return false
	}
	if !c.config.UseGeometry {
		return true
	}
	return c.nearPageTop(bbox, page) || strings.HasSuffix(trimmed, ":")
}

func (c *Classifier) hasHeaderKeyword(lower string) bool {
	for _, keyword := range c.headerKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

func (c *Classifier) isLabel(trimmed string) bool {
	if utf8.RuneCountInString(trimmed) >= c.config.MaxLabelLength {
		return false
	}
	return strings.HasSuffix(trimmed, ":") || strings.HasSuffix(trimmed, "?")
}

func (c *Classifier) isFormField(lower string) bool {
	for _, indicator := range c.fieldIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

func (c *Classifier) isTitle(bbox BoundingBox, page PageDimensions) bool {
	if page.Width <= 0 {
		return false
	}
	return c.nearPageTop(bbox, page) && bbox.Width > page.Width*c.config.TitleMinWidthFraction
}

func (c *Classifier) nearPageTop(bbox BoundingBox, page PageDimensions) bool {
	if page.Height <= 0 {
		return false
	}
	return bbox.Top/page.Height < c.config.HeaderTopFraction
}

// isAllCaps reports whether s contains at least one letter, every letter
// uppercase, and no digits
func isAllCaps(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsDigit(r) {
			return false
		}
		if unicode.IsLetter(r) {
			if !unicode.IsUpper(r) {
				return false
			}
			hasLetter = true
		}
	}
	return hasLetter
}
