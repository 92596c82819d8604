package extraction

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/formlens/mcp-form-analyzer/internal/forms"
)

// Field flag bits from the PDF specification.
const (
	flagRadio      = 1 << 15 // Btn bit 16
	flagPushbutton = 1 << 16 // Btn bit 17
	flagCombo      = 1 << 17 // Ch bit 18
)

// pagePlacement locates one leaf of the page tree together with the
// dimensions widget rectangles on that page flip against.
type pagePlacement struct {
	number int
	width  float64
	height float64
}

// WidgetExtractor reads AcroForm field definitions and resolves each
// widget annotation to its page and rectangle.
type WidgetExtractor struct{}

// NewWidgetExtractor creates a widget extractor.
func NewWidgetExtractor() *WidgetExtractor {
	return &WidgetExtractor{}
}

// ExtractWidgets returns the document's interactive form widgets
// grouped by 1-indexed page number. Widgets whose annotation is not
// referenced by any page fall back to page 1.
func (we *WidgetExtractor) ExtractWidgets(filePath string) (map[int][]forms.Widget, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF file: %w", err)
	}
	defer file.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(file, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}

	return we.extractFromContext(ctx)
}

// extractFromContext walks the AcroForm field tree of an open context.
func (we *WidgetExtractor) extractFromContext(ctx *model.Context) (map[int][]forms.Widget, error) {
	widgets := make(map[int][]forms.Widget)

	rootDict, err := ctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog: %w", err)
	}

	placements := we.indexAnnotationPages(ctx, rootDict)

	acroFormObj, found := rootDict.Find("AcroForm")
	if !found {
		return widgets, nil
	}

	acroFormDict, err := ctx.DereferenceDict(acroFormObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference AcroForm: %w", err)
	}
	if acroFormDict == nil {
		return widgets, nil
	}

	fieldsObj, found := acroFormDict.Find("Fields")
	if !found {
		return widgets, nil
	}

	fieldsArray, err := ctx.DereferenceArray(fieldsObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference Fields array: %w", err)
	}

	for _, fieldRef := range fieldsArray {
		we.collectField(ctx, fieldRef, "", 0, placements, widgets)
	}

	return widgets, nil
}

// collectField walks one node of the field tree. Nodes whose kids are
// child fields recurse with a dotted name prefix; terminal fields emit
// one widget per annotation.
func (we *WidgetExtractor) collectField(ctx *model.Context, fieldObj types.Object, prefix string, depth int, placements map[int]pagePlacement, out map[int][]forms.Widget) {
	if depth > maxParentDepth {
		return
	}

	fieldDict, err := ctx.DereferenceDict(fieldObj)
	if err != nil || fieldDict == nil {
		return
	}

	fullName := joinFieldName(prefix, we.fieldName(ctx, fieldDict))

	var kids types.Array
	if kidsObj, found := fieldDict.Find("Kids"); found {
		if kidsArray, err := ctx.DereferenceArray(kidsObj); err == nil {
			kids = kidsArray
		}
	}

	if len(kids) > 0 && we.kidsAreFields(ctx, kids) {
		for _, kid := range kids {
			we.collectField(ctx, kid, fullName, depth+1, placements, out)
		}
		return
	}

	flags := we.fieldFlags(ctx, fieldDict)
	fieldType := we.fieldType(ctx, fieldDict)

	// Pushbuttons carry no user data.
	if fieldType == "Btn" && flags&flagPushbutton != 0 {
		return
	}

	widget := forms.Widget{
		Name:  fullName,
		Value: we.fieldValue(ctx, fieldDict, fieldType, flags),
		Type:  fieldType,
		Kind:  widgetKindForField(fieldType, flags),
	}

	if len(kids) == 0 {
		// Field and widget annotation share one dictionary.
		we.emitWidget(ctx, fieldObj, fieldDict, widget, placements, out)
		return
	}

	for _, kid := range kids {
		kidDict, err := ctx.DereferenceDict(kid)
		if err != nil || kidDict == nil {
			continue
		}
		we.emitWidget(ctx, kid, kidDict, widget, placements, out)
	}
}

// kidsAreFields reports whether the Kids entries are child fields
// rather than bare widget annotations. The first readable kid decides.
func (we *WidgetExtractor) kidsAreFields(ctx *model.Context, kids types.Array) bool {
	for _, kid := range kids {
		kidDict, err := ctx.DereferenceDict(kid)
		if err != nil || kidDict == nil {
			continue
		}
		_, found := kidDict.Find("T")
		return found
	}
	return false
}

// emitWidget resolves the annotation's page and rectangle and appends
// the widget to that page's list.
func (we *WidgetExtractor) emitWidget(ctx *model.Context, annotObj types.Object, annotDict types.Dict, widget forms.Widget, placements map[int]pagePlacement, out map[int][]forms.Widget) {
	placement := locatePlacement(annotObj, placements)

	if rectObj, found := annotDict.Find("Rect"); found {
		if coords, ok := we.rectCoords(ctx, rectObj); ok {
			rect := widgetRect(coords, placement.height)
			widget.Rect = &rect
		}
	}

	out[placement.number] = append(out[placement.number], widget)
}

// fieldName extracts the partial field name from the T entry.
func (we *WidgetExtractor) fieldName(ctx *model.Context, fieldDict types.Dict) string {
	nameObj, found := fieldDict.Find("T")
	if !found {
		return ""
	}

	name, err := ctx.DereferenceStringOrHexLiteral(nameObj, model.V10, nil)
	if err != nil {
		return ""
	}
	return name
}

// fieldType resolves the FT entry, consulting Parent for partial
// field dictionaries that inherit it.
func (we *WidgetExtractor) fieldType(ctx *model.Context, fieldDict types.Dict) string {
	ftObj, found := we.findInherited(ctx, fieldDict, "FT", 0)
	if !found {
		return ""
	}

	name, err := ctx.DereferenceName(ftObj, model.V10, nil)
	if err != nil {
		return ""
	}
	return string(name)
}

// fieldFlags resolves the Ff entry, consulting Parent when absent.
func (we *WidgetExtractor) fieldFlags(ctx *model.Context, fieldDict types.Dict) int {
	flagsObj, found := we.findInherited(ctx, fieldDict, "Ff", 0)
	if !found {
		return 0
	}

	flags, err := ctx.DereferenceInteger(flagsObj)
	if err != nil || flags == nil {
		return 0
	}
	return int(*flags)
}

// fieldValue resolves the V entry into the widget's string value.
func (we *WidgetExtractor) fieldValue(ctx *model.Context, fieldDict types.Dict, fieldType string, flags int) string {
	valueObj, found := we.findInherited(ctx, fieldDict, "V", 0)

	switch fieldType {
	case "Btn":
		if flags&flagRadio != 0 {
			if !found {
				return ""
			}
			if name, err := ctx.DereferenceName(valueObj, model.V10, nil); err == nil && name != "Off" {
				return string(name)
			}
			return ""
		}

		name := ""
		if found {
			if n, err := ctx.DereferenceName(valueObj, model.V10, nil); err == nil {
				name = string(n)
			}
		}
		return checkboxState(name)

	case "Ch":
		if !found {
			return ""
		}
		if val, err := ctx.DereferenceStringOrHexLiteral(valueObj, model.V10, nil); err == nil {
			return val
		}
		if arr, err := ctx.DereferenceArray(valueObj); err == nil {
			var values []string
			for _, item := range arr {
				if str, err := ctx.DereferenceStringOrHexLiteral(item, model.V10, nil); err == nil {
					values = append(values, str)
				}
			}
			return strings.Join(values, ", ")
		}
		return ""

	case "Sig":
		// Signature values are dictionaries, not display text.
		return ""

	default:
		if !found {
			return ""
		}
		if val, err := ctx.DereferenceStringOrHexLiteral(valueObj, model.V10, nil); err == nil {
			return val
		}
		return ""
	}
}

// findInherited looks the key up on the field, walking Parent links
// for entries partial field dictionaries inherit.
func (we *WidgetExtractor) findInherited(ctx *model.Context, fieldDict types.Dict, key string, depth int) (types.Object, bool) {
	if obj, found := fieldDict.Find(key); found {
		return obj, true
	}
	if depth >= maxParentDepth {
		return nil, false
	}

	parentObj, found := fieldDict.Find("Parent")
	if !found {
		return nil, false
	}
	parentDict, err := ctx.DereferenceDict(parentObj)
	if err != nil || parentDict == nil {
		return nil, false
	}

	return we.findInherited(ctx, parentDict, key, depth+1)
}

// rectCoords parses a 4-element rectangle array in PDF user space.
func (we *WidgetExtractor) rectCoords(ctx *model.Context, rectObj types.Object) ([4]float64, bool) {
	rectArray, err := ctx.DereferenceArray(rectObj)
	if err != nil || len(rectArray) != 4 {
		return [4]float64{}, false
	}

	var coords [4]float64
	for i, coord := range rectArray {
		f, err := ctx.DereferenceNumber(coord)
		if err != nil {
			return [4]float64{}, false
		}
		coords[i] = f
	}

	return coords, true
}

// indexAnnotationPages walks the page tree and records, for every
// annotation reference, the 1-indexed page carrying it together with
// that page's dimensions.
func (we *WidgetExtractor) indexAnnotationPages(ctx *model.Context, rootDict types.Dict) map[int]pagePlacement {
	placements := make(map[int]pagePlacement)

	pagesObj, found := rootDict.Find("Pages")
	if !found {
		return placements
	}
	pagesDict, err := ctx.DereferenceDict(pagesObj)
	if err != nil || pagesDict == nil {
		return placements
	}

	pageNum := 0
	we.walkPageTree(ctx, pagesDict, [4]float64{}, false, &pageNum, placements, 0)

	return placements
}

// walkPageTree descends the page tree in reading order, carrying the
// inherited MediaBox down to leaf pages.
func (we *WidgetExtractor) walkPageTree(ctx *model.Context, node types.Dict, inherited [4]float64, haveBox bool, pageNum *int, placements map[int]pagePlacement, depth int) {
	if depth > maxPageTreeDepth {
		return
	}

	if mbObj, found := node.Find("MediaBox"); found {
		if coords, ok := we.rectCoords(ctx, mbObj); ok {
			inherited, haveBox = coords, true
		}
	}

	nodeType := ""
	if typeObj, found := node.Find("Type"); found {
		if name, err := ctx.DereferenceName(typeObj, model.V10, nil); err == nil {
			nodeType = string(name)
		}
	}

	kidsObj, hasKids := node.Find("Kids")
	if nodeType == "Page" || !hasKids {
		we.recordPageAnnotations(ctx, node, inherited, haveBox, pageNum, placements)
		return
	}

	kidsArray, err := ctx.DereferenceArray(kidsObj)
	if err != nil {
		return
	}
	for _, kid := range kidsArray {
		kidDict, err := ctx.DereferenceDict(kid)
		if err != nil || kidDict == nil {
			continue
		}
		we.walkPageTree(ctx, kidDict, inherited, haveBox, pageNum, placements, depth+1)
	}
}

// recordPageAnnotations assigns the next page number to a leaf page
// and indexes its annotation references.
func (we *WidgetExtractor) recordPageAnnotations(ctx *model.Context, pageDict types.Dict, box [4]float64, haveBox bool, pageNum *int, placements map[int]pagePlacement) {
	*pageNum++

	placement := pagePlacement{number: *pageNum, width: defaultPageWidthPt, height: defaultPageHeightPt}
	if haveBox {
		placement.width = math.Abs(box[2] - box[0])
		placement.height = math.Abs(box[3] - box[1])
	}

	annotsObj, found := pageDict.Find("Annots")
	if !found {
		return
	}
	annotsArray, err := ctx.DereferenceArray(annotsObj)
	if err != nil {
		return
	}

	for _, annot := range annotsArray {
		if ir, ok := annot.(types.IndirectRef); ok {
			placements[ir.ObjectNumber.Value()] = placement
		}
	}
}

// locatePlacement finds the page carrying the annotation.
func locatePlacement(annotObj types.Object, placements map[int]pagePlacement) pagePlacement {
	if ir, ok := annotObj.(types.IndirectRef); ok {
		if placement, found := placements[ir.ObjectNumber.Value()]; found {
			return placement
		}
	}
	return pagePlacement{number: 1, width: defaultPageWidthPt, height: defaultPageHeightPt}
}

// widgetRect converts [llx lly urx ury] into top-left page
// coordinates, fixing inverted corners first.
func widgetRect(coords [4]float64, pageHeight float64) forms.Rect {
	llx, lly, urx, ury := coords[0], coords[1], coords[2], coords[3]
	if llx > urx {
		llx, urx = urx, llx
	}
	if lly > ury {
		lly, ury = ury, lly
	}

	return forms.Rect{X0: llx, Y0: pageHeight - ury, X1: urx, Y1: pageHeight - lly}
}

// widgetKindForField refines the widget descriptor beyond what the
// raw field type conveys.
func widgetKindForField(fieldType string, flags int) string {
	switch fieldType {
	case "Btn":
		return buttonKind(flags)
	case "Ch":
		return choiceKind(flags)
	}
	return ""
}

// buttonKind distinguishes radio buttons from plain checkboxes.
func buttonKind(flags int) string {
	if flags&flagRadio != 0 {
		return "radio"
	}
	return ""
}

// choiceKind distinguishes list boxes from combo boxes. Combo boxes
// keep the default dropdown descriptor.
func choiceKind(flags int) string {
	if flags&flagCombo != 0 {
		return ""
	}
	return "listbox"
}

// checkboxState normalizes a checkbox on-state name.
func checkboxState(name string) string {
	if name == "Yes" || name == "On" {
		return "checked"
	}
	return "unchecked"
}

// joinFieldName builds a fully qualified field name from the parent
// prefix and the node's partial name.
func joinFieldName(prefix, name string) string {
	if prefix == "" {
		return name
	}
	if name == "" {
		return prefix
	}
	return prefix + "." + name
}
