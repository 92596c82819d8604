package forms

import "strings"

// WidgetSegmentType maps a widget field type to the segment type used for
// its on-page representation. Both native PDF field types (Tx, Btn, Ch,
// Sig) and descriptive names are accepted, case-insensitively. Unknown
// types fall back to FormField.
func WidgetSegmentType(fieldType string) SegmentType {
	switch strings.ToLower(strings.TrimSpace(fieldType)) {
	case "text", "tx":
		return SegmentTypeFormField
	case "checkbox", "btn":
		return SegmentTypeCheckbox
	case "combobox", "choice", "ch":
		return SegmentTypeDropdown
	case "sig":
		return SegmentTypeSignature
	default:
		return SegmentTypeFormField
	}
}

// widgetKind derives the control descriptor used for field type strings
// when the extraction layer did not refine one
func widgetKind(fieldType string) string {
	switch strings.ToLower(strings.TrimSpace(fieldType)) {
	case "checkbox", "btn":
		return "checkbox"
	case "combobox", "choice", "ch":
		return "dropdown"
	case "sig":
		return "signature"
	default:
		return "text"
	}
}
