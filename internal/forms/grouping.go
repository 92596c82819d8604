package forms

import (
	"fmt"
	"sort"
	"strings"
)

// GroupingConfig controls the section sweep
type GroupingConfig struct {
	// SectionGapThreshold is the vertical gap in points that starts a
	// new section
	SectionGapThreshold float64
	// MaxSectionSegments caps how many segments one section may hold
	MaxSectionSegments int
	// TitleScanLimit is how many leading members are examined when
	// deriving a section title
	TitleScanLimit int
	// TitleMaxLength truncates derived titles to this many runes
	TitleMaxLength int
}

// DefaultGroupingConfig returns the standard sweep thresholds
func DefaultGroupingConfig() GroupingConfig {
	return GroupingConfig{
		SectionGapThreshold: 50.0,
		MaxSectionSegments:  15,
		TitleScanLimit:      3,
		TitleMaxLength:      50,
	}
}

// IndexedSegment pairs a segment with its index in the original slice
type IndexedSegment struct {
	Index   int     `json:"index"`
	Segment Segment `json:"segment"`
}

// GroupByPage partitions segments by page number. Original order and
// indices are preserved within each page.
func GroupByPage(segments []Segment) map[int][]IndexedSegment {
	pages := make(map[int][]IndexedSegment)
	for i, segment := range segments {
		pages[segment.PageNumber] = append(pages[segment.PageNumber], IndexedSegment{
			Index:   i,
			Segment: segment,
		})
	}
	return pages
}

// GroupBySection clusters segments into visually contiguous sections by
// sweeping them in reading order (page, then top coordinate). A new
// section starts on a page change, a vertical gap above the threshold, a
// full section, or an incoming header-like segment. Every segment index
// lands in exactly one section.
func GroupBySection(segments []Segment, config GroupingConfig) []Section {
	if len(segments) == 0 {
		return []Section{}
	}

	order := make([]int, len(segments))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		sa, sb := segments[order[a]], segments[order[b]]
		if sa.PageNumber != sb.PageNumber {
			return sa.PageNumber < sb.PageNumber
		}
		return sa.BBox.Top < sb.BBox.Top
	})

	var sections []Section
	var current []int

	flush := func() {
		if len(current) == 0 {
			return
		}
		id := len(sections) + 1
		title := sectionTitle(segments, current, config)
		if title == "" {
			title = fmt.Sprintf("Section %d", id)
		}
		sections = append(sections, Section{
			ID:             id,
			Title:          title,
			SegmentIndices: current,
		})
		current = nil
	}

	for _, idx := range order {
		segment := segments[idx]
		if len(current) > 0 {
			previous := segments[current[len(current)-1]]
			switch {
			case segment.PageNumber != previous.PageNumber:
				flush()
			case segment.BBox.Top-previous.BBox.Top > config.SectionGapThreshold:
				flush()
			case len(current) >= config.MaxSectionSegments:
				flush()
			case isHeaderLike(segment):
				flush()
			}
		}
		current = append(current, idx)
	}
	flush()

	return sections
}

// sectionTitle derives a title from the first header-like member among
// the section's leading segments, or returns "" when none qualifies
func sectionTitle(segments []Segment, indices []int, config GroupingConfig) string {
	limit := config.TitleScanLimit
	if limit > len(indices) {
		limit = len(indices)
	}
	for i := 0; i < limit; i++ {
		segment := segments[indices[i]]
		if !isHeaderLike(segment) {
			continue
		}
		title := strings.TrimSpace(strings.TrimSuffix(segment.Text, ":"))
		return truncateRunes(title, config.TitleMaxLength)
	}
	return ""
}

// isHeaderLike reports whether a segment can open a section
func isHeaderLike(segment Segment) bool {
	if segment.Type == SegmentTypeSectionHeader || segment.Type == SegmentTypeTitle {
		return true
	}
	return isAllCaps(segment.Text) || strings.HasSuffix(segment.Text, ":")
}

// truncateRunes shortens s to at most max runes
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
