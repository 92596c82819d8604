package security

import "strings"

// Permissions decodes the P entry of a document's encryption dictionary.
// Each field mirrors one user-access bit from ISO 32000-1 Table 22.
type Permissions struct {
	Print            bool // bit 3
	Modify           bool // bit 4
	Copy             bool // bit 5
	Annotate         bool // bit 6, includes filling form fields
	FillForms        bool // bit 9, filling even when bit 6 is clear
	Extract          bool // bit 10, accessibility extraction
	Assemble         bool // bit 11
	PrintHighQuality bool // bit 12
}

// NewPermissions decodes a raw P value. The entry is stored as a signed
// 32-bit integer whose low bits grant individual operations.
func NewPermissions(raw int32) Permissions {
	return Permissions{
		Print:            raw&0x04 != 0,
		Modify:           raw&0x08 != 0,
		Copy:             raw&0x10 != 0,
		Annotate:         raw&0x20 != 0,
		FillForms:        raw&0x200 != 0,
		Extract:          raw&0x400 != 0,
		Assemble:         raw&0x800 != 0,
		PrintHighQuality: raw&0x1000 != 0,
	}
}

// AllowsFormFill reports whether interactive fields may be filled in.
// The annotation bit grants filling as part of annotation editing, so
// either bit is enough.
func (p Permissions) AllowsFormFill() bool {
	return p.FillForms || p.Annotate
}

// String lists the granted operations in bit order.
func (p Permissions) String() string {
	var granted []string

	if p.Print {
		granted = append(granted, "print")
	}
	if p.Modify {
		granted = append(granted, "modify")
	}
	if p.Copy {
		granted = append(granted, "copy")
	}
	if p.Annotate {
		granted = append(granted, "annotate")
	}
	if p.FillForms {
		granted = append(granted, "fill_forms")
	}
	if p.Extract {
		granted = append(granted, "extract")
	}
	if p.Assemble {
		granted = append(granted, "assemble")
	}
	if p.PrintHighQuality {
		granted = append(granted, "print_high_quality")
	}

	if len(granted) == 0 {
		return "none granted"
	}
	return strings.Join(granted, ", ")
}
