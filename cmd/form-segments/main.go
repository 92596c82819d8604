package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/formlens/mcp-form-analyzer/internal/forms"
	"github.com/formlens/mcp-form-analyzer/internal/pdf"
)

var (
	outputFormat = flag.String("format", "text", "Output format: text, json")
	granularity  = flag.String("granularity", "line", "Segmentation granularity: line, block")
	piiOnly      = flag.Bool("pii-only", false, "Show only segments flagged as likely PII")
	verbose      = flag.Bool("verbose", false, "Enable verbose output")
	help         = flag.Bool("help", false, "Show help message")
)

// maxFileSize caps one-shot analyses at the service default of 100MB
const maxFileSize = 100 * 1024 * 1024

func main() {
	flag.Parse()

	if *help {
		printHelp()
		return
	}

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Error: PDF file path required\n\n")
		printUsage()
		os.Exit(1)
	}

	pdfPath := flag.Arg(0)
	if _, err := os.Stat(pdfPath); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error: File not found: %s\n", pdfPath)
		os.Exit(1)
	}

	result, err := analyzeForm(pdfPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error analyzing form: %v\n", err)
		os.Exit(1)
	}

	if err := outputResults(result); err != nil {
		fmt.Fprintf(os.Stderr, "Error outputting results: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("Form Segments - Analyze the layout of PDF form documents")
	fmt.Println()
	fmt.Println("This tool segments a PDF form into typed, positioned pieces of content,")
	fmt.Println("flags segments that likely carry personal data, and extracts field")
	fmt.Println("name/value pairs from label patterns and interactive widgets.")
	fmt.Println()
	printUsage()
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("  -format        Output format: text (default), json")
	fmt.Println("  -granularity   Segmentation granularity: line (default), block")
	fmt.Println("  -pii-only      Show only segments flagged as likely PII")
	fmt.Println("  -verbose       Enable verbose output")
	fmt.Println("  -help          Show this help message")
	fmt.Println()
	fmt.Println("SEGMENT TYPES:")
	fmt.Println("  Text, Title, SectionHeader, Label, FormField, Checkbox, Dropdown,")
	fmt.Println("  Signature, Instructions")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  form-segments application.pdf")
	fmt.Println("  form-segments -format json enrollment.pdf")
	fmt.Println("  form-segments -granularity block -verbose forms/w9.pdf")
	fmt.Println("  form-segments -pii-only intake-form.pdf")
}

func printUsage() {
	fmt.Println("USAGE:")
	fmt.Println("  form-segments [OPTIONS] <pdf_file>")
}

// FormSegmentsResult represents the complete result of one analysis run
type FormSegmentsResult struct {
	FilePath     string                 `json:"file_path"`
	Success      bool                   `json:"success"`
	NumPages     int                    `json:"num_pages"`
	FormType     string                 `json:"form_type,omitempty"`
	SegmentCount int                    `json:"segment_count"`
	FieldCount   int                    `json:"field_count"`
	PIICount     int                    `json:"pii_count"`
	Segments     []forms.Segment        `json:"segments"`
	Fields       []forms.ExtractedField `json:"fields"`
	Error        string                 `json:"error,omitempty"`
}

func analyzeForm(pdfPath string) (*FormSegmentsResult, error) {
	absPath, err := filepath.Abs(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	result := &FormSegmentsResult{
		FilePath: absPath,
		Success:  false,
		Segments: []forms.Segment{},
		Fields:   []forms.ExtractedField{},
	}

	if *verbose {
		fmt.Printf("🔍 Analyzing form: %s\n", absPath)
		fmt.Println()
	}

	// Scope the service to the file's own directory so any path handed to
	// the CLI passes containment
	service, err := pdf.NewService(maxFileSize, filepath.Dir(absPath), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis service: %w", err)
	}

	analysis := service.FormAnalyzeFile(context.Background(), pdf.FormAnalyzeFileRequest{
		Path:        absPath,
		Granularity: *granularity,
	})
	if !analysis.Success {
		result.Error = analysis.Error
		return result, nil // Don't fail, return error in result
	}

	segments := analysis.Segments
	if *piiOnly {
		segments = filterPII(segments)
	}

	result.Success = true
	result.NumPages = analysis.NumPages
	result.FormType = analysis.FormType
	result.Segments = segments
	result.SegmentCount = len(segments)
	result.Fields = analysis.Fields
	result.FieldCount = len(analysis.Fields)
	result.PIICount = countPII(analysis.Segments)

	if *verbose {
		fmt.Printf("✅ Analysis completed successfully\n")
		fmt.Printf("📊 Found %d segments and %d fields across %d pages\n",
			len(analysis.Segments), len(analysis.Fields), analysis.NumPages)
		fmt.Println()
	}

	return result, nil
}

func filterPII(segments []forms.Segment) []forms.Segment {
	filtered := []forms.Segment{}
	for _, segment := range segments {
		if segment.IsPII {
			filtered = append(filtered, segment)
		}
	}
	return filtered
}

func countPII(segments []forms.Segment) int {
	count := 0
	for _, segment := range segments {
		if segment.IsPII {
			count++
		}
	}
	return count
}

func outputResults(result *FormSegmentsResult) error {
	switch *outputFormat {
	case "json":
		return outputJSON(result)
	case "text":
		return outputText(result)
	default:
		return fmt.Errorf("unsupported output format: %s", *outputFormat)
	}
}

func outputJSON(result *FormSegmentsResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func outputText(result *FormSegmentsResult) error {
	if !result.Success {
		fmt.Printf("❌ Form analysis failed: %s\n", result.Error)
		return nil
	}

	if result.SegmentCount == 0 {
		if *piiOnly {
			fmt.Println("⚠️  No segments flagged as likely PII")
		} else {
			fmt.Println("⚠️  No segments detected in the PDF")
		}
		return nil
	}

	fmt.Printf("✅ Successfully analyzed %s\n", filepath.Base(result.FilePath))
	fmt.Printf("Pages: %d\n", result.NumPages)
	if result.FormType != "" {
		fmt.Printf("Form type: %s\n", result.FormType)
	}
	fmt.Printf("Segments: %d (%d likely PII)\n", result.SegmentCount, result.PIICount)
	fmt.Println()

	for i, segment := range result.Segments {
		marker := ""
		if segment.IsPII {
			marker = " [PII]"
		}
		fmt.Printf("[%d] %s%s\n", i+1, segment.Type, marker)
		fmt.Printf("    Page: %d\n", segment.PageNumber)
		fmt.Printf("    Text: %s\n", segment.Text)

		if *verbose {
			fmt.Printf("    Position: left %.1f, top %.1f, %.1f x %.1f\n",
				segment.BBox.Left, segment.BBox.Top, segment.BBox.Width, segment.BBox.Height)
		}

		fmt.Println()
	}

	if result.FieldCount > 0 {
		fmt.Printf("📝 Extracted fields (%d):\n", result.FieldCount)
		fmt.Println()

		for i, field := range result.Fields {
			fmt.Printf("[%d] %s\n", i+1, field.Name)
			fmt.Printf("    Type: %s\n", field.Type)

			if field.Value != "" {
				fmt.Printf("    Value: %s\n", field.Value)
			}

			fmt.Printf("    Confidence: %.2f\n", field.Confidence)
			fmt.Println()
		}
	}

	return nil
}

func init() {
	// Custom flag usage
	flag.Usage = func() {
		printHelp()
	}
}
