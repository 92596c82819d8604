package forms

import "strings"

var piiRules = getPIIRules()

// ContainsPII reports whether the text mentions personally identifiable
// information. The check is a case-insensitive substring match against the
// keyword rules and is biased toward recall: anything that might label a
// sensitive field is flagged.
func ContainsPII(text string) bool {
	lower := strings.ToLower(text)
	for _, rule := range piiRules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(lower, keyword) {
				return true
			}
		}
	}
	return false
}
