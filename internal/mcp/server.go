package mcp

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/formlens/mcp-form-analyzer/internal/config"
	"github.com/formlens/mcp-form-analyzer/internal/forms"
	"github.com/formlens/mcp-form-analyzer/internal/httpapi"
	"github.com/formlens/mcp-form-analyzer/internal/pdf"
)

// segmentTextPreviewLimit caps how much segment text a listing line shows
const segmentTextPreviewLimit = 80

// Server represents the MCP server instance
type Server struct {
	config      *config.Config
	formService *pdf.Service
	mcpServer   *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, formService *pdf.Service) (*Server, error) {
	if formService == nil {
		return nil, fmt.Errorf("formService cannot be nil")
	}

	// Create MCP server
	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // We don't support dynamic tool capabilities
	)

	s := &Server{
		config:      cfg,
		formService: formService,
		mcpServer:   mcpServer,
	}

	// Register tools
	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	// Register form analyze file tool
	formAnalyzeFileTool := mcp.NewTool(
		"form_analyze_file",
		mcp.WithDescription("Analyze the layout of a PDF form into typed, positioned segments"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
		mcp.WithString("granularity",
			mcp.Description("Segmentation granularity: line (default) or block"),
		),
	)
	s.mcpServer.AddTool(formAnalyzeFileTool, s.handleFormAnalyzeFile)

	// Register form fields file tool
	formFieldsFileTool := mcp.NewTool(
		"form_fields_file",
		mcp.WithDescription("Extract form field names and values from a PDF form"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(formFieldsFileTool, s.handleFormFieldsFile)

	// Register form sections file tool
	formSectionsFileTool := mcp.NewTool(
		"form_sections_file",
		mcp.WithDescription("Group form segments into visual sections or pages"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
		mcp.WithString("strategy",
			mcp.Description("Grouping strategy: auto (default), page, or section"),
		),
	)
	s.mcpServer.AddTool(formSectionsFileTool, s.handleFormSectionsFile)

	// Register form query segments tool
	formQuerySegmentsTool := mcp.NewTool(
		"form_query_segments",
		mcp.WithDescription("Filter analyzed form segments by type, page, PII flag, or text"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
		mcp.WithArray("types",
			mcp.Description("Segment types to match, e.g. FormField, Checkbox, Signature"),
		),
		mcp.WithNumber("page",
			mcp.Description("Only match segments on this page (1-indexed)"),
		),
		mcp.WithBoolean("pii_only",
			mcp.Description("Only match segments flagged as likely PII"),
		),
		mcp.WithString("text",
			mcp.Description("Case-insensitive substring to match in segment text"),
		),
	)
	s.mcpServer.AddTool(formQuerySegmentsTool, s.handleFormQuerySegments)

	// Register form validate file tool
	formValidateFileTool := mcp.NewTool(
		"form_validate_file",
		mcp.WithDescription("Validate if a file is a readable PDF"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(formValidateFileTool, s.handleFormValidateFile)

	// Register form stats file tool
	formStatsFileTool := mcp.NewTool(
		"form_stats_file",
		mcp.WithDescription("Get detailed statistics about a PDF form file"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(formStatsFileTool, s.handleFormStatsFile)

	// Register form search directory tool
	formSearchDirectoryTool := mcp.NewTool(
		"form_search_directory",
		mcp.WithDescription("Search for PDF files in a directory with optional fuzzy search"),
		mcp.WithString("directory",
			mcp.Description("Directory path to search (uses default if empty)"),
		),
		mcp.WithString("query",
			mcp.Description("Optional search query for fuzzy matching"),
		),
	)
	s.mcpServer.AddTool(formSearchDirectoryTool, s.handleFormSearchDirectory)

	// Register form stats directory tool
	formStatsDirectoryTool := mcp.NewTool(
		"form_stats_directory",
		mcp.WithDescription("Get statistics about PDF files in a directory"),
		mcp.WithString("directory",
			mcp.Description("Directory path to analyze (uses default if empty)"),
		),
	)
	s.mcpServer.AddTool(formStatsDirectoryTool, s.handleFormStatsDirectory)

	// Register form service info tool
	formServiceInfoTool := mcp.NewTool(
		"form_service_info",
		mcp.WithDescription("Get server information, available tools, directory contents, and usage guidance"),
	)
	s.mcpServer.AddTool(formServiceInfoTool, s.handleFormServiceInfo)
}

// Handler functions
func (s *Server) handleFormAnalyzeFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()
	granularity := ""
	if g, ok := args["granularity"].(string); ok {
		granularity = g
	}

	req := pdf.FormAnalyzeFileRequest{Path: path, Granularity: granularity}
	analysis := s.formService.FormAnalyzeFile(ctx, req)
	if !analysis.Success {
		return mcp.NewToolResultError(analysis.Error), nil
	}

	responseText := s.formatFormAnalyzeResult(analysis)
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleFormFieldsFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := pdf.FormFieldsFileRequest{Path: path}
	result, err := s.formService.FormFieldsFile(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := s.formatFormFieldsFileResult(result)
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleFormSectionsFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()
	strategy := ""
	if st, ok := args["strategy"].(string); ok {
		strategy = st
	}

	req := pdf.FormSectionsFileRequest{Path: path, Strategy: strategy}
	result, err := s.formService.FormSectionsFile(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := s.formatFormSectionsFileResult(result)
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleFormQuerySegments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()
	req := pdf.FormQuerySegmentsRequest{Path: path}

	if rawTypes, ok := args["types"].([]interface{}); ok {
		for _, raw := range rawTypes {
			if segmentType, ok := raw.(string); ok {
				req.Types = append(req.Types, segmentType)
			}
		}
	}
	// JSON decoding yields float64; in-process callers may pass int
	switch page := args["page"].(type) {
	case float64:
		req.Page = int(page)
	case int:
		req.Page = page
	}
	if piiOnly, ok := args["pii_only"].(bool); ok {
		req.PIIOnly = piiOnly
	}
	if text, ok := args["text"].(string); ok {
		req.Text = text
	}

	result, err := s.formService.FormQuerySegments(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	if result.MatchCount == 0 {
		responseText = fmt.Sprintf("No segments matched the query in: %s (%d segments total)",
			result.Path, result.TotalSegments)
	} else {
		responseText = s.formatFormQuerySegmentsResult(result)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleFormValidateFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := pdf.FormValidateFileRequest{Path: path}
	result, err := s.formService.FormValidateFile(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	if result.Valid {
		responseText = fmt.Sprintf("PDF file %s is valid and readable", result.Path)
	} else {
		responseText = fmt.Sprintf("PDF validation failed for %s: %s", result.Path, result.Message)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleFormStatsFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := pdf.FormStatsFileRequest{Path: path}
	result, err := s.formService.FormStatsFile(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := s.formatFormStatsFileResult(result)
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleFormSearchDirectory(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	args := request.GetArguments()

	directory := s.config.PDFDirectory // default
	if dir, ok := args["directory"].(string); ok && dir != "" {
		directory = dir
	}

	query := ""
	if q, ok := args["query"].(string); ok {
		query = q
	}

	req := pdf.FormSearchDirectoryRequest{
		Directory: directory,
		Query:     query,
	}

	result, err := s.formService.FormSearchDirectory(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	if result.TotalCount == 0 {
		responseText = fmt.Sprintf("No PDF files found in directory: %s", result.Directory)
		if result.SearchQuery != "" {
			responseText += fmt.Sprintf(" (searched for: %s)", result.SearchQuery)
		}
	} else {
		responseText = s.formatFormSearchDirectoryResult(result)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleFormStatsDirectory(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	args := request.GetArguments()

	directory := s.config.PDFDirectory // default
	if dir, ok := args["directory"].(string); ok && dir != "" {
		directory = dir
	}

	req := pdf.FormStatsDirectoryRequest{Directory: directory}
	result, err := s.formService.FormStatsDirectory(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := s.formatFormStatsDirectoryResult(result)
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleFormServiceInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req := pdf.FormServiceInfoRequest{}
	result, err := s.formService.FormServiceInfo(req, s.config.ServerName, s.config.Version, s.config.PDFDirectory)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := s.formatFormServiceInfoResult(result)
	return mcp.NewToolResultText(responseText), nil
}

// Formatting methods
func (s *Server) formatFormAnalyzeResult(analysis *forms.FormAnalysis) string {
	piiCount := 0
	for _, segment := range analysis.Segments {
		if segment.IsPII {
			piiCount++
		}
	}

	text := fmt.Sprintf("Form analysis for: %s\n", analysis.Filename)
	text += fmt.Sprintf("Pages: %d\n", analysis.NumPages)
	if analysis.FormType != "" {
		text += fmt.Sprintf("Form type: %s\n", analysis.FormType)
	}
	text += fmt.Sprintf("Segments: %d", len(analysis.Segments))
	if piiCount > 0 {
		text += fmt.Sprintf(" (%d flagged as likely PII)", piiCount)
	}
	text += "\n"
	text += fmt.Sprintf("Fields: %d\n", len(analysis.Fields))

	if len(analysis.Segments) > 0 {
		text += "\nSegments:\n"
		for i, segment := range analysis.Segments {
			text += segmentLine(i, segment)
		}
	}

	if len(analysis.Fields) > 0 {
		text += "\nFields:\n"
		for i, field := range analysis.Fields {
			text += fieldLine(i, field)
		}
	}

	return text
}

func (s *Server) formatFormFieldsFileResult(result *pdf.FormFieldsFileResult) string {
	text := fmt.Sprintf("Form fields for: %s\n", result.Path)
	text += fmt.Sprintf("Pages: %d\n", result.NumPages)
	if result.FormType != "" {
		text += fmt.Sprintf("Form type: %s\n", result.FormType)
	}
	text += fmt.Sprintf("Fields found: %d\n", result.FieldCount)

	if result.FieldCount > 0 {
		text += "\nFields:\n"
		for i, field := range result.Fields {
			text += fieldLine(i, field)
		}
	}

	return text
}

func (s *Server) formatFormSectionsFileResult(result *pdf.FormSectionsFileResult) string {
	text := fmt.Sprintf("Form sections for: %s\n", result.Path)
	text += fmt.Sprintf("Strategy: %s\n", result.Strategy)
	text += fmt.Sprintf("Pages: %d\n", result.NumPages)
	text += fmt.Sprintf("Segments: %d\n", len(result.Segments))

	switch {
	case result.Sections != nil:
		text += fmt.Sprintf("\nSections (%d):\n", len(result.Sections))
		for _, section := range result.Sections {
			text += fmt.Sprintf("%d. %s (%d segments)\n", section.ID, section.Title, len(section.SegmentIndices))
		}
	case result.Pages != nil:
		pageNumbers := make([]int, 0, len(result.Pages))
		for page := range result.Pages {
			pageNumbers = append(pageNumbers, page)
		}
		sort.Ints(pageNumbers)

		text += fmt.Sprintf("\nPages (%d):\n", len(pageNumbers))
		for _, page := range pageNumbers {
			text += fmt.Sprintf("Page %d: %d segments\n", page, len(result.Pages[page]))
		}
	}

	return text
}

func (s *Server) formatFormQuerySegmentsResult(result *pdf.FormQuerySegmentsResult) string {
	text := fmt.Sprintf("Matched %d of %d segment(s) in: %s\n", result.MatchCount, result.TotalSegments, result.Path)
	text += "\nSegments:\n"
	for i, segment := range result.Segments {
		text += segmentLine(i, segment)
	}
	return text
}

func (s *Server) formatFormStatsFileResult(result *pdf.FormStatsFileResult) string {
	text := "PDF Form Statistics\n"
	text += fmt.Sprintf("File: %s\n", result.Path)
	text += fmt.Sprintf("Size: %d bytes\n", result.Size)
	text += fmt.Sprintf("Pages: %d\n", result.Pages)
	text += fmt.Sprintf("Images: %d\n", result.ImageCount)
	text += fmt.Sprintf("Modified: %s\n", result.ModifiedDate)

	if result.Title != "" {
		text += fmt.Sprintf("Title: %s\n", result.Title)
	}
	if result.Author != "" {
		text += fmt.Sprintf("Author: %s\n", result.Author)
	}
	if result.Subject != "" {
		text += fmt.Sprintf("Subject: %s\n", result.Subject)
	}
	if result.Producer != "" {
		text += fmt.Sprintf("Producer: %s\n", result.Producer)
	}
	if result.CreatedDate != "" {
		text += fmt.Sprintf("Created: %s\n", result.CreatedDate)
	}
	if result.Encrypted {
		text += "Encrypted: yes\n"
		if result.Permissions != "" {
			text += fmt.Sprintf("Permissions: %s\n", result.Permissions)
		}
		if !result.FormFillAllowed {
			text += "Form filling: blocked by document permissions\n"
		}
	}

	if result.SegmentCount > 0 {
		text += "\nLayout summary:\n"
		if result.FormType != "" {
			text += fmt.Sprintf("Form type: %s\n", result.FormType)
		}
		text += fmt.Sprintf("Segments: %d\n", result.SegmentCount)
		text += fmt.Sprintf("Fields: %d\n", result.FieldCount)
		text += fmt.Sprintf("Likely PII segments: %d\n", result.PIISegmentCount)

		typeNames := make([]string, 0, len(result.SegmentTypes))
		for name := range result.SegmentTypes {
			typeNames = append(typeNames, name)
		}
		sort.Strings(typeNames)
		for _, name := range typeNames {
			text += fmt.Sprintf("  %s: %d\n", name, result.SegmentTypes[name])
		}
	}

	return text
}

func (s *Server) formatFormSearchDirectoryResult(result *pdf.FormSearchDirectoryResult) string {
	text := fmt.Sprintf("Found %d PDF file(s) in directory: %s\n", result.TotalCount, result.Directory)
	if result.SearchQuery != "" {
		text += fmt.Sprintf("Search query: %s\n", result.SearchQuery)
	}
	text += "\nFiles:\n"

	for i, file := range result.Files {
		text += fmt.Sprintf("%d. %s\n", i+1, file.Name)
		text += fmt.Sprintf("   Path: %s\n", file.Path)
		text += fmt.Sprintf("   Size: %d bytes\n", file.Size)
		text += fmt.Sprintf("   Modified: %s\n", file.ModifiedTime)
		if i < len(result.Files)-1 {
			text += "\n"
		}
	}

	return text
}

func (s *Server) formatFormStatsDirectoryResult(result *pdf.FormStatsDirectoryResult) string {
	text := "PDF Directory Statistics\n"
	text += fmt.Sprintf("Directory: %s\n", result.Directory)
	text += fmt.Sprintf("Total PDF files: %d\n", result.TotalFiles)
	text += fmt.Sprintf("Total size: %d bytes\n", result.TotalSize)

	if result.TotalFiles > 0 {
		text += fmt.Sprintf("Average file size: %d bytes\n", result.AverageFileSize)
		if result.LargestFileName != "" {
			text += fmt.Sprintf("Largest file: %s (%d bytes)\n", result.LargestFileName, result.LargestFileSize)
		}
		if result.SmallestFileName != "" {
			text += fmt.Sprintf("Smallest file: %s (%d bytes)\n", result.SmallestFileName, result.SmallestFileSize)
		}
	}

	return text
}

func (s *Server) formatFormServiceInfoResult(result *pdf.FormServiceInfoResult) string {
	text := fmt.Sprintf("📋 %s v%s - Server Information\n", result.ServerName, result.Version)
	text += fmt.Sprintf("📁 Default Directory: %s\n", result.DefaultDirectory)
	text += fmt.Sprintf("📏 Max File Size: %d MB\n", result.MaxFileSize/(1024*1024))
	if result.CacheEnabled {
		text += fmt.Sprintf("💾 Analysis Cache: %s\n\n", result.CachePath)
	} else {
		text += "💾 Analysis Cache: disabled\n\n"
	}

	// Directory contents
	if len(result.DirectoryContents) > 0 {
		text += fmt.Sprintf("📂 Directory Contents (%d PDF files found):\n", len(result.DirectoryContents))
		for i, file := range result.DirectoryContents {
			if i >= 10 { // Limit to first 10 files for readability
				text += fmt.Sprintf("   ... and %d more files\n", len(result.DirectoryContents)-10)
				break
			}
			text += fmt.Sprintf("   %d. %s (%d bytes)\n", i+1, file.Name, file.Size)
		}
		text += "\n"
	} else {
		text += "📂 Directory Contents: No PDF files found in default directory\n\n"
	}

	// Available tools
	text += "🛠️  Available Tools:\n"
	for _, tool := range result.AvailableTools {
		text += fmt.Sprintf("\n• %s\n", tool.Name)
		text += fmt.Sprintf("  Description: %s\n", tool.Description)
		text += fmt.Sprintf("  Usage: %s\n", tool.Usage)
		text += fmt.Sprintf("  Parameters: %s\n", tool.Parameters)
	}

	// Supported segment types
	if len(result.SupportedSegmentTypes) > 0 {
		text += "\n🧩 Supported Segment Types:\n"
		for _, segmentType := range result.SupportedSegmentTypes {
			text += fmt.Sprintf("  • %s\n", segmentType)
		}
	}

	// Usage guidance
	text += "\n" + result.UsageGuidance

	return text
}

// segmentLine renders one numbered segment listing line
func segmentLine(index int, segment forms.Segment) string {
	line := fmt.Sprintf("%d. [page %d] %s: %q",
		index+1, segment.PageNumber, segment.Type, truncateText(segment.Text, segmentTextPreviewLimit))
	if segment.IsPII {
		line += " [PII]"
	}
	return line + "\n"
}

// fieldLine renders one numbered extracted field listing line
func fieldLine(index int, field forms.ExtractedField) string {
	return fmt.Sprintf("%d. %s = %q (%s, confidence %.2f)\n",
		index+1, field.Name, field.Value, field.Type, field.Confidence)
}

// truncateText shortens display text to limit runes, marking the cut
func truncateText(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}

// Run starts the MCP server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode runs the server in stdio mode
func (s *Server) runStdioMode(_ context.Context) error {
	if s.config.IsDebug() {
		log.Printf("Starting form analyzer MCP server in stdio mode")
		log.Printf("PDF directory: %s", s.config.PDFDirectory)
	}

	// Use the mark3labs/mcp-go server.ServeStdio function
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode runs the HTTP API server
func (s *Server) runServerMode(ctx context.Context) error {
	apiServer := httpapi.NewServer(s.config, s.formService)
	return apiServer.Run(ctx)
}
