package extraction

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/formlens/mcp-form-analyzer/internal/forms"
)

// positionedText is one placed run of page text in PDF user space,
// with the origin at the lower-left corner of the page.
type positionedText struct {
	x, y, w, h float64
	s          string
}

// ContentExtractor reads positioned page text and assembles it into
// lines and blocks in top-left page coordinates.
type ContentExtractor struct {
	config Config
}

// NewContentExtractor creates a content extractor with the given
// grouping thresholds.
func NewContentExtractor(config Config) *ContentExtractor {
	return &ContentExtractor{config: config}
}

// ExtractPages returns one PageContent per document page, 1-indexed.
// Pages whose dictionaries cannot be read still appear in the result,
// with dimensions but no blocks.
func (ce *ContentExtractor) ExtractPages(ctx context.Context, filePath string) ([]forms.PageContent, error) {
	file, reader, err := pdf.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF file: %w", err)
	}
	defer file.Close()

	totalPages := reader.NumPage()
	pages := make([]forms.PageContent, 0, totalPages)

	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pages = append(pages, ce.extractPage(reader.Page(pageNum), pageNum))
	}

	return pages, nil
}

// extractPage builds the positioned content of a single page.
func (ce *ContentExtractor) extractPage(page pdf.Page, pageNum int) forms.PageContent {
	width, height := ce.pageSize(page, pageNum)

	content := forms.PageContent{
		Number: pageNum,
		Width:  width,
		Height: height,
		Blocks: []forms.TextBlock{},
	}

	if page.V.IsNull() {
		return content
	}

	texts := ce.collectText(page)
	lines := ce.groupIntoLines(texts, height)
	content.Blocks = ce.groupIntoBlocks(lines)

	return content
}

// collectText gathers the page's text runs. The underlying reader can
// panic on malformed content streams.
func (ce *ContentExtractor) collectText(page pdf.Page) (texts []positionedText) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "[PageText] recovered while reading page content: %v\n", r)
			texts = nil
		}
	}()

	content := page.Content()
	for _, t := range content.Text {
		if t.S == "" {
			continue
		}
		height := t.FontSize
		if height == 0 {
			height = ce.config.DefaultTextHeight
		}
		texts = append(texts, positionedText{x: t.X, y: t.Y, w: t.W, h: height, s: t.S})
	}

	return texts
}

// groupIntoLines buckets text runs that share a baseline into lines,
// ordered top of page first, and flips them into top-left coordinates.
func (ce *ContentExtractor) groupIntoLines(texts []positionedText, pageHeight float64) []forms.TextLine {
	if len(texts) == 0 {
		return nil
	}

	// Sort by Y descending so the top of the page comes first.
	sort.SliceStable(texts, func(i, j int) bool {
		return texts[i].y > texts[j].y
	})

	var rows [][]positionedText
	currentRow := []positionedText{texts[0]}
	currentY := texts[0].y

	for i := 1; i < len(texts); i++ {
		if math.Abs(texts[i].y-currentY) <= ce.config.LineTolerance {
			currentRow = append(currentRow, texts[i])
		} else {
			rows = append(rows, currentRow)
			currentRow = []positionedText{texts[i]}
			currentY = texts[i].y
		}
	}
	rows = append(rows, currentRow)

	lines := make([]forms.TextLine, 0, len(rows))
	for _, row := range rows {
		if line, ok := ce.assembleLine(row, pageHeight); ok {
			lines = append(lines, line)
		}
	}

	return lines
}

// assembleLine joins one row of text runs left to right into a single
// line, inserting spaces across visible gaps.
func (ce *ContentExtractor) assembleLine(row []positionedText, pageHeight float64) (forms.TextLine, bool) {
	sort.SliceStable(row, func(i, j int) bool {
		return row[i].x < row[j].x
	})

	var sb strings.Builder
	minX := row[0].x
	maxX := row[0].x + row[0].w
	minY := row[0].y
	maxY := row[0].y + row[0].h
	prevRight := row[0].x

	for _, t := range row {
		if sb.Len() > 0 && t.x-prevRight > wordGapPt {
			sb.WriteString(" ")
		}
		sb.WriteString(t.s)
		prevRight = t.x + t.w
		minX = math.Min(minX, t.x)
		maxX = math.Max(maxX, t.x+t.w)
		minY = math.Min(minY, t.y)
		maxY = math.Max(maxY, t.y+t.h)
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return forms.TextLine{}, false
	}

	return forms.TextLine{
		Rect: forms.Rect{X0: minX, Y0: pageHeight - maxY, X1: maxX, Y1: pageHeight - minY},
		Text: text,
	}, true
}

// groupIntoBlocks merges consecutive lines into blocks wherever the
// vertical gap between them stays under the configured threshold.
func (ce *ContentExtractor) groupIntoBlocks(lines []forms.TextLine) []forms.TextBlock {
	blocks := []forms.TextBlock{}
	if len(lines) == 0 {
		return blocks
	}

	current := []forms.TextLine{lines[0]}
	for i := 1; i < len(lines); i++ {
		gap := lines[i].Rect.Y0 - current[len(current)-1].Rect.Y1
		if gap > ce.config.BlockGap {
			blocks = append(blocks, buildBlock(current))
			current = []forms.TextLine{lines[i]}
			continue
		}
		current = append(current, lines[i])
	}
	blocks = append(blocks, buildBlock(current))

	return blocks
}

// buildBlock unions member lines into a block whose text is the lines
// joined in reading order.
func buildBlock(lines []forms.TextLine) forms.TextBlock {
	rect := lines[0].Rect
	texts := make([]string, 0, len(lines))

	for _, line := range lines {
		rect.X0 = math.Min(rect.X0, line.Rect.X0)
		rect.Y0 = math.Min(rect.Y0, line.Rect.Y0)
		rect.X1 = math.Max(rect.X1, line.Rect.X1)
		rect.Y1 = math.Max(rect.Y1, line.Rect.Y1)
		texts = append(texts, line.Text)
	}

	return forms.TextBlock{
		Rect:  rect,
		Text:  strings.Join(texts, " "),
		Lines: lines,
	}
}

// pageSize resolves the page's MediaBox, falling back to US Letter.
func (ce *ContentExtractor) pageSize(page pdf.Page, pageNum int) (float64, float64) {
	width, height, err := ce.extractMediaBox(page)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[MediaBox] page %d: %v, using default dimensions\n", pageNum, err)
		return defaultPageWidthPt, defaultPageHeightPt
	}
	return width, height
}

// extractMediaBox reads the page's MediaBox, consulting parent nodes
// when the page does not carry its own.
func (ce *ContentExtractor) extractMediaBox(page pdf.Page) (width, height float64, err error) {
	// Corrupt cross-reference entries can panic inside the reader.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during MediaBox extraction: %v", r)
		}
	}()

	if page.V.IsNull() {
		return 0, 0, fmt.Errorf("page dictionary is null")
	}

	mediaBox := page.V.Key("MediaBox")
	if !mediaBox.IsNull() {
		if w, h, parseErr := ce.parseMediaBoxValue(mediaBox); parseErr == nil {
			return w, h, nil
		}
	}

	if w, h, ok := ce.inheritedMediaBox(page); ok {
		return w, h, nil
	}

	return 0, 0, fmt.Errorf("no valid MediaBox found")
}

// parseMediaBoxValue parses a MediaBox array into page dimensions.
func (ce *ContentExtractor) parseMediaBoxValue(mediaBox pdf.Value) (float64, float64, error) {
	if mediaBox.Kind() != pdf.Array {
		return 0, 0, fmt.Errorf("MediaBox is not an array: %v", mediaBox.Kind())
	}

	if mediaBox.Len() != 4 {
		return 0, 0, fmt.Errorf("invalid MediaBox array length: %d, expected 4", mediaBox.Len())
	}

	coords := make([]float64, 4)
	for i := 0; i < 4; i++ {
		val := mediaBox.Index(i)
		if val.IsNull() {
			return 0, 0, fmt.Errorf("coordinate at index %d is null", i)
		}

		switch val.Kind() {
		case pdf.Integer:
			coords[i] = float64(val.Int64())
		case pdf.Real:
			coords[i] = val.Float64()
		default:
			str := val.Text()
			f, parseErr := parseNumeric(str)
			if parseErr != nil {
				return 0, 0, fmt.Errorf("invalid coordinate type at index %d: %v", i, val.Kind())
			}
			coords[i] = f
		}
	}

	llx, lly, urx, ury := coords[0], coords[1], coords[2], coords[3]
	if llx > urx {
		llx, urx = urx, llx
	}
	if lly > ury {
		lly, ury = ury, lly
	}

	if urx <= llx || ury <= lly {
		return 0, 0, fmt.Errorf("invalid MediaBox dimensions: [%.2f %.2f %.2f %.2f]", llx, lly, urx, ury)
	}

	return urx - llx, ury - lly, nil
}

// inheritedMediaBox walks up the page tree looking for an ancestor
// that carries the MediaBox.
func (ce *ContentExtractor) inheritedMediaBox(page pdf.Page) (float64, float64, bool) {
	current := page.V

	for i := 0; i < maxParentDepth; i++ {
		parent := current.Key("Parent")
		if parent.IsNull() {
			break
		}

		if mediaBox := parent.Key("MediaBox"); !mediaBox.IsNull() {
			if w, h, err := ce.parseMediaBoxValue(mediaBox); err == nil {
				return w, h, true
			}
		}

		current = parent
	}

	return 0, 0, false
}

// parseNumeric parses PDF number strings, tolerating a trailing float
// suffix some producers emit.
func parseNumeric(s string) (float64, error) {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, nil
	}

	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "f") || strings.HasSuffix(s, "F") {
		if f, err := strconv.ParseFloat(s[:len(s)-1], 64); err == nil {
			return f, nil
		}
	}

	return 0, fmt.Errorf("unable to parse %q as a number", s)
}
