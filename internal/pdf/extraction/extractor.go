// Package extraction reads PDF files into positioned page content:
// text lines grouped into blocks, and interactive form widgets
// resolved to their pages, all in top-left page coordinates.
package extraction

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/formlens/mcp-form-analyzer/internal/forms"
)

// DocumentContent is a parsed document ready for segmentation.
type DocumentContent struct {
	Pages []forms.PageContent `json:"pages"`
}

// NumPages returns the number of pages in the document.
func (dc *DocumentContent) NumPages() int {
	return len(dc.Pages)
}

// Extractor turns a PDF file into per-page content.
type Extractor interface {
	ExtractDocument(ctx context.Context, filePath string) (*DocumentContent, error)
}

// DefaultExtractor implements Extractor by combining positioned text
// with interactive form widgets.
type DefaultExtractor struct {
	config  Config
	content *ContentExtractor
	widgets *WidgetExtractor
}

// NewDefaultExtractor creates an extractor with the given grouping
// thresholds.
func NewDefaultExtractor(config Config) *DefaultExtractor {
	return &DefaultExtractor{
		config:  config,
		content: NewContentExtractor(config),
		widgets: NewWidgetExtractor(),
	}
}

// ExtractDocument reads the document's text and widgets. Widget
// extraction failures are not fatal since scanned and flattened
// documents carry no interactive fields.
func (de *DefaultExtractor) ExtractDocument(ctx context.Context, filePath string) (*DocumentContent, error) {
	pages, err := de.content.ExtractPages(ctx, filePath)
	if err != nil {
		return nil, err
	}

	widgetsByPage, err := de.widgets.ExtractWidgets(filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[Widgets] %s: %v\n", filepath.Base(filePath), err)
		widgetsByPage = nil
	}

	doc := &DocumentContent{Pages: pages}
	mergeWidgets(doc, widgetsByPage)

	return doc, nil
}

// mergeWidgets attaches widgets to their pages, clamping references to
// pages the text reader did not surface.
func mergeWidgets(doc *DocumentContent, widgetsByPage map[int][]forms.Widget) {
	if len(widgetsByPage) == 0 {
		return
	}

	if len(doc.Pages) == 0 {
		// Widgets without any readable page still need a home.
		doc.Pages = append(doc.Pages, forms.PageContent{
			Number: 1,
			Width:  defaultPageWidthPt,
			Height: defaultPageHeightPt,
			Blocks: []forms.TextBlock{},
		})
	}

	pageNums := make([]int, 0, len(widgetsByPage))
	for pageNum := range widgetsByPage {
		pageNums = append(pageNums, pageNum)
	}
	sort.Ints(pageNums)

	for _, pageNum := range pageNums {
		idx := pageNum - 1
		if idx < 0 {
			idx = 0
		}
		if idx >= len(doc.Pages) {
			idx = len(doc.Pages) - 1
		}
		doc.Pages[idx].Widgets = append(doc.Pages[idx].Widgets, widgetsByPage[pageNum]...)
	}
}
