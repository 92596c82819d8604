package descriptions

// Comprehensive tool descriptions with practical examples and use cases

const (
	// Analysis Tools
	FormAnalyzeFileDescription = `Segment a PDF form into typed, positioned layout pieces with PII flags.

**When to use:** Need to understand how a form is laid out, which parts are questions versus answers, or where personal data lives on the page.

**Why it's useful:** Turns a flat PDF into typed segments (Title, SectionHeader, Label, FormField, Checkbox, Dropdown, Signature, Instructions, Text) with page numbers and bounding boxes, plus extracted fields and a detected form type, in one call.

**Examples:**
• Map a form: "Analyze tax-return.pdf to see every label, field and checkbox with positions"
• Audit for personal data: "Analyze application.pdf and check which segments are flagged as PII"
• Classify a document: "Analyze unknown-form.pdf to find out if it's a tax, medical or employment form"

**Common workflows:**
1. Form Understanding: Analyze → Review segment types → Extract the parts that matter
2. PII Audit: Analyze → Collect is_pii segments → Report or redact
3. Classification: Analyze → Read form_type → Route to type-specific handling

**Best practices:** Start here for any form question; use granularity 'block' to merge labels with nearby fields, 'line' (default) for per-line detail.`

	FormFieldsFileDescription = `Extract field name/value pairs from a PDF form.

**When to use:** Need the filled-in data of a form without caring about layout, for example to feed a review step or a database import.

**Why it's useful:** Combines two sources: 'Label: value' patterns found in the text layer and interactive AcroForm widgets, each with a confidence score, so both flat and fillable forms yield data.

**Examples:**
• Application processing: "Extract filled application.pdf to get user responses for review"
• Data migration: "Extract form data from legacy-forms/ for new system import"
• Quick answers: "What did the applicant enter for 'Annual Income' in loan-form.pdf?"

**Common workflows:**
1. Form Processing: Extract fields → Validate responses → Route for approval → Store results
2. System Migration: Extract fields → Map to new schema → Import to new system
3. Spot Checks: Extract fields → Compare against expected values → Flag mismatches

**Best practices:** Widget-backed fields carry higher confidence (0.95) than text-derived ones (0.8); prefer them when both exist for a name.`

	FormSectionsFileDescription = `Group form segments by page or visual section for easier navigation.

**When to use:** Working with long or dense forms where a flat segment list is too much to scan.

**Why it's useful:** Returns the same segments as analysis but organized: either per page, or into visual sections split at headers and large vertical gaps, each with a title and member indices.

**Examples:**
• Navigate a long form: "Section hr-onboarding.pdf so I can jump to the benefits part"
• Page-by-page review: "Group i9-form.pdf by page for a page-ordered walkthrough"
• Section inventory: "List the sections of insurance-claim.pdf with their titles"

**Common workflows:**
1. Guided Review: Group by section → Walk sections in order → Drill into segments
2. Long Documents: Group by page → Process pages independently → Merge findings
3. Table of Contents: Group by section → Use section titles as an outline

**Best practices:** The 'auto' strategy picks page grouping for documents of 5+ pages and section grouping below that; override it when you know what you want.`

	FormQuerySegmentsDescription = `Filter analyzed segments by type, page, text content or PII flag.

**When to use:** Need a targeted subset of an analysis, for example every signature line, every checkbox on page 2, or every segment containing personal data.

**Why it's useful:** Avoids re-reading a full analysis; filters combine conjunctively so precise questions get precise answers, with match and total counts for context.

**Examples:**
• PII sweep: "Query consent-form.pdf with pii_only to list every flagged segment"
• Signature check: "Query contract.pdf for Signature segments to verify signing blocks"
• Targeted search: "Query application.pdf for segments containing 'income' on page 3"

**Common workflows:**
1. Compliance Check: Query pii_only → Review flagged text → Generate findings
2. Form QA: Query by type → Count against the expected layout → Flag gaps
3. Content Search: Query by text → Read matches with positions → Cite locations

**Best practices:** An empty query matches every segment; combine type, page, text and pii_only to narrow results.`

	// Basic Tools
	FormValidateFileDescription = `Verify PDF file integrity and readability before processing.

**When to use:** Before attempting to analyze any PDF file, especially in automated workflows or when handling user uploads.

**Why it's useful:** Prevents processing errors, identifies corrupted files early, and ensures compatibility with the analysis tools.

**Examples:**
• Batch processing safety: "Validate all PDFs in /forms/ before bulk analysis"
• Upload verification: "Check user-uploaded application.pdf is valid before processing"
• Quality control: "Verify exported-form.pdf is readable before sending to a client"

**Common workflows:**
1. Automated Processing: Validate → Analyze if valid → Handle errors gracefully
2. File Quality Check: Validate → Report issues → Fix or reject bad files
3. Pre-processing Pipeline: Validate → Route to appropriate handling

**Best practices:** Always run this first in automated workflows; a result with valid=false carries the reason in its message.`

	FormStatsFileDescription = `Get file statistics, document metadata and an analysis summary for one PDF form.

**When to use:** Need page count, file size, creation info, the encryption flag, or a quick per-type segment census before deeper work.

**Why it's useful:** One call answers both "what is this file" (size, pages, metadata, encrypted) and "what is in this form" (segment counts by type, field count, PII segment count, form type).

**Examples:**
• Processing decisions: "Check page and segment counts of manual-form.pdf to estimate effort"
• Audit trail: "Get metadata from signed-agreement.pdf for compliance records"
• PII overview: "How many segments of medical-intake.pdf carry personal data?"

**Common workflows:**
1. Document Cataloging: Get stats → Store metadata → Index for search
2. Processing Planning: Check stats → Choose strategy → Allocate resources
3. Compliance & Audit: Extract metadata and PII counts → Verify → Log for records

**Best practices:** File stats stand on their own even when segmentation fails; zero analysis figures plus a readable file means the text layer is empty or unreadable.`

	// Search and Discovery Tools
	FormSearchDirectoryDescription = `Discover and filter PDF files across directories with intelligent search.

**When to use:** Need to find specific PDFs by name patterns, explore unknown directories, or build file inventories.

**Why it's useful:** Quickly locates relevant documents without manual browsing, supports fuzzy matching for partial names.

**Examples:**
• Find applications: "Search /documents/ for files containing 'application' or '2024'"
• Locate tax forms: "Find all PDF files with 'tax' in /forms/ directory"
• Inventory building: "List all PDFs in /archive/ to understand content scope"

**Common workflows:**
1. Targeted Processing: Search for specific patterns → Analyze matching files → Generate reports
2. Content Discovery: Explore directory → Identify document types → Plan analysis strategy
3. Batch Operations: Find files → Validate each → Analyze in sequence

**Best practices:** Use fuzzy search for partial matches, combine with form_stats_directory for a comprehensive overview.`

	FormStatsDirectoryDescription = `Analyze PDF collections and get comprehensive directory statistics.

**When to use:** Need overview of PDF collection size, total file count, storage usage, or to assess processing requirements.

**Why it's useful:** Provides high-level insights for capacity planning, identifies largest files, and helps prioritize processing efforts.

**Examples:**
• Capacity planning: "Analyze /archive/ to understand storage usage and processing load"
• Collection overview: "Get statistics on /forms/ to plan a migration strategy"
• Resource allocation: "Check /applications/ stats to estimate batch analysis time"

**Common workflows:**
1. Migration Planning: Get directory stats → Estimate resources → Plan migration phases
2. Storage Management: Analyze usage → Identify large files → Optimize storage
3. Processing Strategy: Review collection → Plan batch sizes → Allocate processing time

**Best practices:** Essential for understanding large document collections before bulk analysis operations.`

	// Utility Tools
	FormServiceInfoDescription = `Get real-time server status, available tools, and system capabilities.

**When to use:** Starting work with the form analyzer, troubleshooting issues, or checking available functionality.

**Why it's useful:** Provides complete overview of server capabilities, supported segment types, cache status, current configuration, and directory contents for informed decision-making.

**Examples:**
• System check: "Verify the server is ready and all tools are available before batch processing"
• Troubleshooting: "Check service info to diagnose why files aren't being found"
• Capability discovery: "See all available tools and segment types for a new project"

**Common workflows:**
1. Session Startup: Check service info → Verify capabilities → Plan processing approach
2. Debugging: Review server status → Check directory paths → Verify tool availability
3. Planning: Review available tools → Choose appropriate methods → Execute workflow

**Best practices:** Run at the start of sessions; the directory listing is cached for quick repeated overviews.`
)

// ToolDescriptions maps tool names to their comprehensive descriptions
var ToolDescriptions = map[string]string{
	"form_analyze_file":     FormAnalyzeFileDescription,
	"form_fields_file":      FormFieldsFileDescription,
	"form_sections_file":    FormSectionsFileDescription,
	"form_query_segments":   FormQuerySegmentsDescription,
	"form_validate_file":    FormValidateFileDescription,
	"form_stats_file":       FormStatsFileDescription,
	"form_search_directory": FormSearchDirectoryDescription,
	"form_stats_directory":  FormStatsDirectoryDescription,
	"form_service_info":     FormServiceInfoDescription,
}

// GetToolDescription returns the comprehensive description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns a list of all available tool names
func GetAllToolNames() []string {
	var names []string
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	return names
}
