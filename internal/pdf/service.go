// Package pdf orchestrates PDF form analysis: file validation, positioned
// content extraction, layout segmentation, field extraction, and directory
// discovery, behind one service type shared by every transport.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/formlens/mcp-form-analyzer/internal/forms"
	"github.com/formlens/mcp-form-analyzer/internal/pdf/extraction"
	"github.com/formlens/mcp-form-analyzer/internal/pdf/security"
	"github.com/formlens/mcp-form-analyzer/internal/store"
)

const (
	// unknownFilename stands in when a request carries no usable path
	unknownFilename = "unknown.pdf"
	// pageGroupingThreshold is the page count at which the auto strategy
	// switches from section grouping to page grouping
	pageGroupingThreshold = 5
)

// Grouping strategies accepted by FormSectionsFile
const (
	StrategyAuto    = "auto"
	StrategyPage    = "page"
	StrategySection = "section"
)

// Service handles PDF form operations by orchestrating the extraction,
// segmentation and discovery components
type Service struct {
	maxFileSize   int64
	validator     *Validator
	stats         *Stats
	search        *Search
	extractor     extraction.Extractor
	lineEngine    *forms.Engine
	blockEngine   *forms.Engine
	cache         *store.AnalysisCache
	pathValidator *security.PathValidator
	dirCache      *DirectoryCache
}

// NewService creates a new form analysis service with all components.
// A nil cache disables result caching.
func NewService(maxFileSize int64, configuredDirectory string, cache *store.AnalysisCache) (*Service, error) {
	pathValidator, err := security.NewPathValidator(configuredDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}

	return &Service{
		maxFileSize: maxFileSize,
		validator:   NewValidator(maxFileSize),
		stats:       NewStats(maxFileSize),
		search:      NewSearch(maxFileSize),
		extractor:   extraction.NewDefaultExtractor(extraction.DefaultConfig()),
		lineEngine:  forms.NewEngine(),
		blockEngine: forms.NewEngineWithConfig(forms.EngineConfig{
			Granularity: forms.GranularityBlock,
			UseGeometry: true,
		}),
		cache:         cache,
		pathValidator: pathValidator,
		dirCache:      NewDirectoryCache(directoryCacheTTL),
	}, nil
}

// FormAnalyzeFile runs the full segmentation and field analysis on one PDF.
// The result is always structurally valid: on any failure Success is false,
// Error carries the reason, and Segments and Fields are empty, never nil.
func (s *Service) FormAnalyzeFile(ctx context.Context, req FormAnalyzeFileRequest) *forms.FormAnalysis {
	filename := unknownFilename
	if req.Path != "" {
		filename = filepath.Base(req.Path)
	}

	granularity, err := parseGranularity(req.Granularity)
	if err != nil {
		return failedAnalysis(filename, err.Error())
	}

	if err := s.pathValidator.ValidatePath(req.Path); err != nil {
		return failedAnalysis(filename, fmt.Sprintf("security validation failed: %v", err))
	}

	fileInfo, err := os.Stat(req.Path)
	if os.IsNotExist(err) {
		return failedAnalysis(filename, fmt.Sprintf("file does not exist: %s", req.Path))
	}
	if err != nil {
		return failedAnalysis(filename, fmt.Sprintf("cannot access file: %v", err))
	}
	if err := s.validator.ValidateFileInfo(req.Path, fileInfo); err != nil {
		return failedAnalysis(filename, err.Error())
	}

	variant := string(granularity)
	if !req.NoCache {
		if cached, ok := s.cache.Get(req.Path, variant); ok {
			return cached
		}
	}

	analysis, err := s.analyzeDocument(ctx, req.Path, granularity)
	if err != nil {
		return failedAnalysis(filename, err.Error())
	}

	// Only successful analyses are worth replaying
	if !req.NoCache {
		if err := s.cache.Put(req.Path, variant, analysis); err != nil {
			fmt.Fprintf(os.Stderr, "[Cache] %s: %v\n", filename, err)
		}
	}

	return analysis
}

// analyzeDocument extracts page content and runs the segmentation engine
func (s *Service) analyzeDocument(ctx context.Context, path string, granularity forms.Granularity) (*forms.FormAnalysis, error) {
	doc, err := s.extractor.ExtractDocument(ctx, path)
	if err != nil {
		return nil, err
	}

	segments, fields, formType := s.engineFor(granularity).Analyze(doc.Pages)

	return &forms.FormAnalysis{
		Success:  true,
		Filename: filepath.Base(path),
		NumPages: doc.NumPages(),
		Segments: segments,
		Fields:   fields,
		FormType: formType,
	}, nil
}

// FormFieldsFile extracts field name/value pairs from one PDF form
func (s *Service) FormFieldsFile(ctx context.Context, req FormFieldsFileRequest) (*FormFieldsFileResult, error) {
	analysis := s.FormAnalyzeFile(ctx, FormAnalyzeFileRequest{Path: req.Path})
	if !analysis.Success {
		return nil, errors.New(analysis.Error)
	}

	return &FormFieldsFileResult{
		Path:       req.Path,
		NumPages:   analysis.NumPages,
		Fields:     analysis.Fields,
		FieldCount: len(analysis.Fields),
		FormType:   analysis.FormType,
	}, nil
}

// FormSectionsFile analyzes a PDF form and groups its segments. The auto
// strategy picks page grouping for documents of pageGroupingThreshold or
// more pages and section grouping below that.
func (s *Service) FormSectionsFile(ctx context.Context, req FormSectionsFileRequest) (*FormSectionsFileResult, error) {
	strategy := req.Strategy
	if strategy == "" {
		strategy = StrategyAuto
	}
	if strategy != StrategyAuto && strategy != StrategyPage && strategy != StrategySection {
		return nil, fmt.Errorf("invalid strategy: %q (use %q, %q or %q)",
			req.Strategy, StrategyAuto, StrategyPage, StrategySection)
	}

	analysis := s.FormAnalyzeFile(ctx, FormAnalyzeFileRequest{Path: req.Path})
	if !analysis.Success {
		return nil, errors.New(analysis.Error)
	}

	if strategy == StrategyAuto {
		if analysis.NumPages >= pageGroupingThreshold {
			strategy = StrategyPage
		} else {
			strategy = StrategySection
		}
	}

	result := &FormSectionsFileResult{
		Path:     req.Path,
		Strategy: strategy,
		NumPages: analysis.NumPages,
		Segments: analysis.Segments,
	}

	switch strategy {
	case StrategyPage:
		result.Pages = forms.GroupByPage(analysis.Segments)
	case StrategySection:
		result.Sections = forms.GroupBySection(analysis.Segments, forms.DefaultGroupingConfig())
	}

	return result, nil
}

// FormQuerySegments analyzes a PDF form and returns the segments matching
// every provided filter. Filters combine conjunctively; an empty request
// matches every segment.
func (s *Service) FormQuerySegments(ctx context.Context, req FormQuerySegmentsRequest) (*FormQuerySegmentsResult, error) {
	wanted := make(map[forms.SegmentType]bool, len(req.Types))
	for _, raw := range req.Types {
		segmentType := forms.SegmentType(raw)
		if !segmentType.IsValid() {
			return nil, fmt.Errorf("invalid segment type: %q", raw)
		}
		wanted[segmentType] = true
	}

	analysis := s.FormAnalyzeFile(ctx, FormAnalyzeFileRequest{Path: req.Path})
	if !analysis.Success {
		return nil, errors.New(analysis.Error)
	}

	text := strings.ToLower(strings.TrimSpace(req.Text))
	matched := []forms.Segment{}
	for _, segment := range analysis.Segments {
		if len(wanted) > 0 && !wanted[segment.Type] {
			continue
		}
		if req.Page > 0 && segment.PageNumber != req.Page {
			continue
		}
		if req.PIIOnly && !segment.IsPII {
			continue
		}
		if text != "" && !strings.Contains(strings.ToLower(segment.Text), text) {
			continue
		}
		matched = append(matched, segment)
	}

	return &FormQuerySegmentsResult{
		Path:          req.Path,
		MatchCount:    len(matched),
		TotalSegments: len(analysis.Segments),
		Segments:      matched,
	}, nil
}

// FormValidateFile performs validation on a PDF file
func (s *Service) FormValidateFile(req FormValidateFileRequest) (*FormValidateFileResult, error) {
	if err := s.pathValidator.ValidatePath(req.Path); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	return s.validator.ValidateFile(req)
}

// FormStatsFile returns file statistics plus an analysis summary. A readable
// file can still fail segmentation; the file stats stand on their own with
// the analysis figures left at zero.
func (s *Service) FormStatsFile(ctx context.Context, req FormStatsFileRequest) (*FormStatsFileResult, error) {
	if err := s.pathValidator.ValidatePath(req.Path); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	result, err := s.stats.GetFileStats(req)
	if err != nil {
		return nil, err
	}

	analysis := s.FormAnalyzeFile(ctx, FormAnalyzeFileRequest{Path: req.Path})
	if analysis.Success {
		result.FormType = analysis.FormType
		result.SegmentCount = len(analysis.Segments)
		result.FieldCount = len(analysis.Fields)
		for _, segment := range analysis.Segments {
			if segment.IsPII {
				result.PIISegmentCount++
			}
			result.SegmentTypes[string(segment.Type)]++
		}
	}

	return result, nil
}

// FormSearchDirectory searches for PDF files in a directory
func (s *Service) FormSearchDirectory(req FormSearchDirectoryRequest) (*FormSearchDirectoryResult, error) {
	// If no directory specified, use configured directory
	if req.Directory == "" {
		req.Directory = s.pathValidator.GetConfiguredDirectory()
	}

	if err := s.pathValidator.ValidateDirectory(req.Directory); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	return s.search.SearchDirectory(req)
}

// FormStatsDirectory returns statistics about PDF files in a directory
func (s *Service) FormStatsDirectory(req FormStatsDirectoryRequest) (*FormStatsDirectoryResult, error) {
	if req.Directory == "" {
		req.Directory = s.pathValidator.GetConfiguredDirectory()
	}
	return s.stats.GetDirectoryStats(req)
}

// GetMaxFileSize returns the maximum file size limit
func (s *Service) GetMaxFileSize() int64 {
	return s.maxFileSize
}

// IsValidPDF performs a quick validation check on a file
func (s *Service) IsValidPDF(filePath string) bool {
	return s.validator.IsValidPDF(filePath)
}

// CountPDFsInDirectory counts the number of valid PDF files in a directory
func (s *Service) CountPDFsInDirectory(directory string) (int, error) {
	return s.search.CountPDFsInDirectory(directory)
}

// FindPDFsInDirectory finds all PDF files in a directory without filtering
func (s *Service) FindPDFsInDirectory(directory string) ([]FileInfo, error) {
	return s.search.FindPDFsInDirectory(directory)
}

// SearchByPattern searches for PDF files matching a specific pattern
func (s *Service) SearchByPattern(directory, pattern string) (*FormSearchDirectoryResult, error) {
	return s.search.SearchByPattern(directory, pattern)
}

// ValidateConfiguration validates the service configuration
func (s *Service) ValidateConfiguration() error {
	if s.maxFileSize <= 0 {
		return fmt.Errorf("maxFileSize must be greater than 0")
	}

	if s.maxFileSize > 1024*1024*1024 { // 1GB limit
		return fmt.Errorf("maxFileSize cannot exceed 1GB")
	}

	return nil
}

// engineFor selects the segmentation engine for a granularity
func (s *Service) engineFor(granularity forms.Granularity) *forms.Engine {
	if granularity == forms.GranularityBlock {
		return s.blockEngine
	}
	return s.lineEngine
}

// parseGranularity resolves a request granularity, defaulting to line
func parseGranularity(value string) (forms.Granularity, error) {
	switch value {
	case "", string(forms.GranularityLine):
		return forms.GranularityLine, nil
	case string(forms.GranularityBlock):
		return forms.GranularityBlock, nil
	default:
		return "", fmt.Errorf("invalid granularity: %q (use %q or %q)",
			value, forms.GranularityLine, forms.GranularityBlock)
	}
}

// failedAnalysis builds a structurally valid analysis for a failure
func failedAnalysis(filename, message string) *forms.FormAnalysis {
	return &forms.FormAnalysis{
		Success:  false,
		Filename: filename,
		Segments: []forms.Segment{},
		Fields:   []forms.ExtractedField{},
		Error:    message,
	}
}
