package forms

import (
	"strings"
	"testing"
)

// applicationPage builds a single US Letter page with the typical layout
// of a short application form.
func applicationPage() PageContent {
	return PageContent{
		Number: 1,
		Width:  612,
		Height: 792,
		Blocks: []TextBlock{
			{
				Rect: Rect{X0: 50, Y0: 10, X1: 560, Y1: 145},
				Lines: []TextLine{
					{Rect: Rect{X0: 200, Y0: 10, X1: 350, Y1: 25}, Text: "APPLICATION FORM"},
					{Rect: Rect{X0: 50, Y0: 50, X1: 120, Y1: 65}, Text: "Name:"},
					{Rect: Rect{X0: 50, Y0: 70, X1: 150, Y1: 85}, Text: "John Smith"},
					{Rect: Rect{X0: 50, Y0: 90, X1: 200, Y1: 105}, Text: "SSN: 123-45-6789"},
					{Rect: Rect{X0: 50, Y0: 130, X1: 250, Y1: 145}, Text: "Signature: ________"},
				},
			},
		},
	}
}

func TestAnalyzeApplicationPage(t *testing.T) {
	engine := NewEngine()
	segments, fields, formType := engine.Analyze([]PageContent{applicationPage()})

	if len(segments) != 5 {
		t.Fatalf("Expected 5 segments, got %d", len(segments))
	}

	wantTypes := []SegmentType{
		SegmentTypeSectionHeader,
		SegmentTypeLabel,
		SegmentTypeText,
		SegmentTypeText,
		SegmentTypeSignature,
	}
	for i, want := range wantTypes {
		if segments[i].Type != want {
			t.Errorf("Segment %d: expected %v, got %v", i, want, segments[i].Type)
		}
	}

	wantPII := []bool{false, false, false, true, true}
	for i, want := range wantPII {
		if segments[i].IsPII != want {
			t.Errorf("Segment %d: expected is_pii=%v, got %v", i, want, segments[i].IsPII)
		}
	}

	first := segments[0]
	if first.PageNumber != 1 {
		t.Errorf("Expected page number 1, got %d", first.PageNumber)
	}
	if first.BBox.Top != 10 || first.BBox.Left != 200 {
		t.Errorf("Expected bbox at (200, 10), got (%v, %v)", first.BBox.Left, first.BBox.Top)
	}
	if first.BBox.Width != 150 || first.BBox.Height != 15 {
		t.Errorf("Expected bbox 150x15, got %vx%v", first.BBox.Width, first.BBox.Height)
	}
	if first.Page.Width != 612 || first.Page.Height != 792 {
		t.Errorf("Expected page dimensions 612x792, got %vx%v", first.Page.Width, first.Page.Height)
	}

	if len(fields) != 3 {
		t.Fatalf("Expected 3 colon fields, got %d", len(fields))
	}
	if fields[0].Name != "Name" || fields[0].Value != "" {
		t.Errorf("Expected empty-value Name field, got %+v", fields[0])
	}
	if fields[1].Name != "SSN" || fields[1].Value != "123-45-6789" {
		t.Errorf("Expected SSN field, got %+v", fields[1])
	}
	for _, field := range fields {
		if field.Confidence != 0.8 {
			t.Errorf("Expected confidence 0.8 for text field %q, got %v", field.Name, field.Confidence)
		}
		if field.Type != "text" {
			t.Errorf("Expected type text for field %q, got %q", field.Name, field.Type)
		}
	}

	if formType != "Application Form" {
		t.Errorf("Expected Application Form, got %q", formType)
	}
}

func TestAnalyzeBlockGranularity(t *testing.T) {
	page := PageContent{
		Number: 1,
		Width:  612,
		Height: 792,
		Blocks: []TextBlock{
			{Rect: Rect{X0: 200, Y0: 10, X1: 350, Y1: 25}, Text: "APPLICATION FORM"},
			{Rect: Rect{X0: 50, Y0: 50, X1: 120, Y1: 65}, Text: "Name:"},
			{Rect: Rect{X0: 50, Y0: 70, X1: 150, Y1: 85}, Text: "John Smith"},
			{Rect: Rect{X0: 50, Y0: 90, X1: 200, Y1: 105}, Text: "SSN: 123-45-6789"},
			{Rect: Rect{X0: 50, Y0: 130, X1: 250, Y1: 145}, Text: "Signature: ________"},
		},
	}

	engine := NewEngineWithConfig(EngineConfig{Granularity: GranularityBlock, UseGeometry: true})
	segments, fields, _ := engine.Analyze([]PageContent{page})

	if len(segments) != 5 {
		t.Fatalf("Expected 5 segments, got %d", len(segments))
	}

	wantTypes := []SegmentType{
		SegmentTypeSectionHeader,
		SegmentTypeLabel,
		SegmentTypeText,
		SegmentTypeFormField,
		SegmentTypeSignature,
	}
	for i, want := range wantTypes {
		if segments[i].Type != want {
			t.Errorf("Segment %d: expected %v, got %v", i, want, segments[i].Type)
		}
	}

	if len(fields) != 3 {
		t.Errorf("Expected 3 fields, got %d", len(fields))
	}
}

func TestAnalyzeSkipsWhitespace(t *testing.T) {
	page := PageContent{
		Number: 1,
		Width:  612,
		Height: 792,
		Blocks: []TextBlock{
			{Rect: Rect{X0: 50, Y0: 50, X1: 100, Y1: 65}, Text: "   "},
			{Rect: Rect{X0: 50, Y0: 70, X1: 100, Y1: 85}, Text: ""},
			{Rect: Rect{X0: 50, Y0: 90, X1: 160, Y1: 105}, Text: "Real content"},
		},
	}

	engine := NewEngine()
	segments, _, _ := engine.Analyze([]PageContent{page})

	if len(segments) != 1 {
		t.Fatalf("Expected 1 segment after skipping whitespace, got %d", len(segments))
	}
	if segments[0].Text != "Real content" {
		t.Errorf("Expected surviving text, got %q", segments[0].Text)
	}
}

func TestAnalyzeWidgets(t *testing.T) {
	rect := Rect{X0: 50, Y0: 200, X1: 65, Y1: 215}
	unnamedRect := Rect{X0: 50, Y0: 230, X1: 200, Y1: 245}
	page := PageContent{
		Number: 1,
		Width:  612,
		Height: 792,
		Blocks: []TextBlock{
			{Rect: Rect{X0: 50, Y0: 50, X1: 180, Y1: 65}, Text: "Employee details"},
		},
		Widgets: []Widget{
			{Name: "agree", Value: "checked", Type: "Btn", Rect: &rect},
			{Name: "comments", Type: "Tx"},
			{Name: "", Type: "Tx", Rect: &unnamedRect},
		},
	}

	engine := NewEngine()
	segments, fields, _ := engine.Analyze([]PageContent{page})

	// One text segment plus the two widgets that carry rectangles
	if len(segments) != 3 {
		t.Fatalf("Expected 3 segments, got %d", len(segments))
	}

	agree := segments[1]
	if agree.Text != "agree: checked" {
		t.Errorf("Expected widget display text, got %q", agree.Text)
	}
	if agree.Type != SegmentTypeCheckbox {
		t.Errorf("Expected Checkbox, got %v", agree.Type)
	}
	if segments[2].Text != "Unknown" {
		t.Errorf("Expected Unknown fallback name, got %q", segments[2].Text)
	}

	// Every widget yields a field, rectangle or not
	if len(fields) != 3 {
		t.Fatalf("Expected 3 fields, got %d", len(fields))
	}
	if fields[0].Name != "agree" || fields[0].Type != "checkbox" {
		t.Errorf("Expected checkbox field, got %+v", fields[0])
	}
	if fields[1].Name != "comments" {
		t.Errorf("Expected rect-less widget to keep its field, got %+v", fields[1])
	}
	if fields[2].Name != "Unknown" {
		t.Errorf("Expected Unknown field name, got %+v", fields[2])
	}
	for _, field := range fields {
		if field.Confidence != 0.95 {
			t.Errorf("Expected confidence 0.95 for widget field %q, got %v", field.Name, field.Confidence)
		}
	}
}

func TestAnalyzeWidgetKindOverride(t *testing.T) {
	rect := Rect{X0: 50, Y0: 200, X1: 150, Y1: 215}
	page := PageContent{
		Number: 1,
		Width:  612,
		Height: 792,
		Widgets: []Widget{
			{Name: "color", Value: "blue", Type: "Ch", Kind: "listbox", Rect: &rect},
		},
	}

	engine := NewEngine()
	segments, fields, _ := engine.Analyze([]PageContent{page})

	if len(segments) != 1 || segments[0].Type != SegmentTypeDropdown {
		t.Fatalf("Expected one Dropdown segment, got %+v", segments)
	}
	if fields[0].Type != "listbox" {
		t.Errorf("Expected refined kind to win, got %q", fields[0].Type)
	}
}

func TestAnalyzeSegmentOrder(t *testing.T) {
	rect1 := Rect{X0: 50, Y0: 300, X1: 100, Y1: 315}
	rect2 := Rect{X0: 50, Y0: 300, X1: 100, Y1: 315}
	pages := []PageContent{
		{
			Number: 1, Width: 612, Height: 792,
			Blocks:  []TextBlock{{Rect: Rect{X0: 50, Y0: 50, X1: 150, Y1: 65}, Text: "page one text"}},
			Widgets: []Widget{{Name: "w1", Type: "Tx", Rect: &rect1}},
		},
		{
			Number: 2, Width: 612, Height: 792,
			Blocks:  []TextBlock{{Rect: Rect{X0: 50, Y0: 50, X1: 150, Y1: 65}, Text: "page two text"}},
			Widgets: []Widget{{Name: "w2", Type: "Tx", Rect: &rect2}},
		},
	}

	engine := NewEngine()
	segments, _, _ := engine.Analyze(pages)

	if len(segments) != 4 {
		t.Fatalf("Expected 4 segments, got %d", len(segments))
	}

	wantPages := []int{1, 1, 2, 2}
	wantTexts := []string{"page one text", "w1", "page two text", "w2"}
	for i := range wantPages {
		if segments[i].PageNumber != wantPages[i] {
			t.Errorf("Segment %d: expected page %d, got %d", i, wantPages[i], segments[i].PageNumber)
		}
		if segments[i].Text != wantTexts[i] {
			t.Errorf("Segment %d: expected text %q, got %q", i, wantTexts[i], segments[i].Text)
		}
	}
}

func TestAnalyzeEmptyInput(t *testing.T) {
	engine := NewEngine()
	segments, fields, formType := engine.Analyze(nil)

	if segments == nil || len(segments) != 0 {
		t.Errorf("Expected empty non-nil segments, got %v", segments)
	}
	if fields == nil || len(fields) != 0 {
		t.Errorf("Expected empty non-nil fields, got %v", fields)
	}
	if formType != "" {
		t.Errorf("Expected empty form type, got %q", formType)
	}
}

func TestDetectFormType(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"IRS Form 1040", "Tax Form"},
		{"insurance coverage details", "Insurance Form"},
		{"patient health record", "Medical Form"},
		{"application for tax relief", "Tax Form"},
		{"random content", ""},
	}
	for _, tc := range cases {
		got := DetectFormType([]Segment{{Text: tc.text}})
		if got != tc.want {
			t.Errorf("DetectFormType(%q): expected %q, got %q", tc.text, tc.want, got)
		}
	}
}

func TestColonField(t *testing.T) {
	field, ok := colonField("Name: John")
	if !ok || field.Name != "Name" || field.Value != "John" {
		t.Errorf("Expected Name/John field, got %+v ok=%v", field, ok)
	}

	if _, ok := colonField("no colon here"); ok {
		t.Error("Expected no field without a colon")
	}
	if _, ok := colonField(": leading colon"); ok {
		t.Error("Expected no field for empty name")
	}
	if _, ok := colonField(strings.Repeat("n", 50) + ": v"); ok {
		t.Error("Expected no field for over-long name")
	}
	if _, ok := colonField(strings.Repeat("n", 49) + ": v"); !ok {
		t.Error("Expected field for name just under the limit")
	}

	// Only the first colon splits
	field, ok = colonField("Phone: 555: 1234")
	if !ok || field.Name != "Phone" || field.Value != "555: 1234" {
		t.Errorf("Expected split on first colon, got %+v", field)
	}
}

func TestBlockText(t *testing.T) {
	block := TextBlock{
		Lines: []TextLine{
			{Text: "first"},
			{Text: "  second  "},
			{Text: "   "},
		},
	}
	if got := blockText(block); got != "first second" {
		t.Errorf("Expected joined lines, got %q", got)
	}

	block.Text = "whole block"
	if got := blockText(block); got != "whole block" {
		t.Errorf("Expected block text to win, got %q", got)
	}
}

func BenchmarkAnalyzeApplicationPage(b *testing.B) {
	engine := NewEngine()
	pages := []PageContent{applicationPage()}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine.Analyze(pages)
	}
}
