package forms

// PIIRule groups sensitivity keywords by the category of data they signal
type PIIRule struct {
	Category string
	Keywords []string
}

// getPIIRules returns the default keyword rules for PII detection.
// Matching is substring-based against lowercased text, so broad terms
// like "date" and "state" intentionally overmatch; false positives are
// preferred over missed sensitive fields.
func getPIIRules() []PIIRule {
	return []PIIRule{
		{
			Category: "identity",
			Keywords: []string{
				"social security", "ssn", "driver license", "driver's license",
				"passport", "tax id",
			},
		},
		{
			Category: "birth",
			Keywords: []string{
				"date of birth", "birth date", "dob", "date",
			},
		},
		{
			Category: "financial",
			Keywords: []string{
				"bank account", "credit card", "routing number",
			},
		},
		{
			Category: "contact",
			Keywords: []string{
				"phone", "email", "address", "city", "state", "zip",
			},
		},
		{
			Category: "employment",
			Keywords: []string{
				"employer", "salary", "income",
			},
		},
		{
			Category: "signature",
			Keywords: []string{
				"signature", "sign here",
			},
		},
	}
}

// getSignatureKeywords returns phrases that mark signature areas
func getSignatureKeywords() []string {
	return []string{"signature", "sign here"}
}

// getCheckboxPrefixes returns the lowercased prefixes that mark checkbox
// rows. Matching is prefix-based, so "no" also catches lines like
// "Notes:"; that overmatch is accepted.
func getCheckboxPrefixes() []string {
	return []string{"yes", "no", "[ ]", "[x]", "□", "☐", "☑"}
}

// getHeaderKeywords returns words that signal section headers
func getHeaderKeywords() []string {
	return []string{"section", "part", "step", "instructions", "information"}
}

// getFieldIndicators returns substrings that mark fillable form fields
// in block-level text
func getFieldIndicators() []string {
	return []string{":", "_____", "[ ]", "[x]", "□", "☐", "☑"}
}

// FormTypeRule maps content keywords to an overall form type label
type FormTypeRule struct {
	Label    string
	Keywords []string
}

// getFormTypeRules returns the ordered rules for guessing the overall
// form type. The first rule with any keyword present wins.
func getFormTypeRules() []FormTypeRule {
	return []FormTypeRule{
		{Label: "Tax Form", Keywords: []string{"tax", "irs", "1040"}},
		{Label: "Insurance Form", Keywords: []string{"insurance", "coverage"}},
		{Label: "Application Form", Keywords: []string{"application"}},
		{Label: "Medical Form", Keywords: []string{"medical", "health", "patient"}},
	}
}
