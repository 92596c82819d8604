package pdf

import (
	"fmt"
	"sync"
	"time"

	"github.com/formlens/mcp-form-analyzer/internal/descriptions"
	"github.com/formlens/mcp-form-analyzer/internal/forms"
)

const (
	// directoryCacheTTL bounds how long a cached directory listing is served
	directoryCacheTTL = 5 * time.Minute
	// maxDirectoryListing caps the files returned in service info
	maxDirectoryListing = 100
	// directoryScanTimeout bounds the scan when the cache misses
	directoryScanTimeout = 5 * time.Second
)

// DirectoryCache caches directory listings so repeated service info calls
// do not rescan the filesystem
type DirectoryCache struct {
	mu      sync.RWMutex
	entries map[string]*directoryEntry
	ttl     time.Duration
}

type directoryEntry struct {
	files      []FileInfo
	lastUpdate time.Time
}

// NewDirectoryCache creates a directory cache with the given entry lifetime
func NewDirectoryCache(ttl time.Duration) *DirectoryCache {
	return &DirectoryCache{
		entries: make(map[string]*directoryEntry),
		ttl:     ttl,
	}
}

// Get retrieves the cached listing for a path when present and fresh
func (c *DirectoryCache) Get(path string) ([]FileInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[path]
	if !exists || time.Since(entry.lastUpdate) > c.ttl {
		return nil, false
	}
	return entry.files, true
}

// Set stores a listing for a path
func (c *DirectoryCache) Set(path string, files []FileInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[path] = &directoryEntry{
		files:      files,
		lastUpdate: time.Now(),
	}
}

// Clear drops every cached listing
func (c *DirectoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*directoryEntry)
}

// FormServiceInfo returns comprehensive service information and usage guidance
func (s *Service) FormServiceInfo(req FormServiceInfoRequest, serverName, version,
	defaultDirectory string,
) (*FormServiceInfoResult, error) {
	// Fall back to the configured directory when the default fails validation
	validatedDir := defaultDirectory
	if err := s.pathValidator.ValidateDirectory(defaultDirectory); err != nil {
		validatedDir = s.pathValidator.GetConfiguredDirectory()
	}

	segmentTypes := []string{}
	for _, segmentType := range forms.AllSegmentTypes() {
		segmentTypes = append(segmentTypes, string(segmentType))
	}

	result := &FormServiceInfoResult{
		ServerName:            serverName,
		Version:               version,
		DefaultDirectory:      validatedDir,
		MaxFileSize:           s.maxFileSize,
		CacheEnabled:          s.cache != nil,
		CachePath:             s.cache.Path(),
		AvailableTools:        availableFormTools(),
		DirectoryContents:     s.listDirectory(validatedDir),
		UsageGuidance:         s.usageGuidance(),
		SupportedSegmentTypes: segmentTypes,
	}

	return result, nil
}

// listDirectory returns up to maxDirectoryListing PDF files from dir. A
// scan that fails or outlives directoryScanTimeout yields an empty listing
// rather than failing the info call.
func (s *Service) listDirectory(dir string) []FileInfo {
	if files, ok := s.dirCache.Get(dir); ok {
		return files
	}

	resultChan := make(chan []FileInfo, 1)
	errorChan := make(chan error, 1)

	go func() {
		files, err := s.search.FindPDFsInDirectoryLimited(dir, maxDirectoryListing)
		if err != nil {
			errorChan <- err
			return
		}
		resultChan <- files
	}()

	select {
	case files := <-resultChan:
		if files == nil {
			files = []FileInfo{}
		}
		s.dirCache.Set(dir, files)
		return files
	case <-errorChan:
		return []FileInfo{}
	case <-time.After(directoryScanTimeout):
		return []FileInfo{}
	}
}

// availableFormTools describes every tool the service exposes
func availableFormTools() []ToolInfo {
	return []ToolInfo{
		{
			Name:        "form_analyze_file",
			Description: descriptions.GetToolDescription("form_analyze_file"),
			Usage: "Use this tool to segment a form into typed, positioned pieces with PII flags, " +
				"plus extracted fields and a detected form type. Start here for any form question.",
			Parameters: "path (required): Full absolute path to the PDF file, " +
				"granularity (optional): 'line' (default) or 'block'",
		},
		{
			Name:        "form_fields_file",
			Description: descriptions.GetToolDescription("form_fields_file"),
			Usage: "Use this tool when you only need the filled-in data. Fields come from both " +
				"'Label: value' text patterns and interactive AcroForm widgets.",
			Parameters: "path (required): Full absolute path to the PDF file",
		},
		{
			Name:        "form_sections_file",
			Description: descriptions.GetToolDescription("form_sections_file"),
			Usage: "Use this tool to navigate large forms. The auto strategy groups by page for " +
				"long documents and by visual section for short ones.",
			Parameters: "path (required): Full absolute path to the PDF file, " +
				"strategy (optional): 'auto' (default), 'page' or 'section'",
		},
		{
			Name:        "form_query_segments",
			Description: descriptions.GetToolDescription("form_query_segments"),
			Usage: "Use this tool to narrow an analysis down, for example to every Signature " +
				"segment or every segment flagged as PII. Filters combine conjunctively.",
			Parameters: "path (required): Full absolute path to the PDF file, " +
				"types (optional): Segment type names, page (optional): 1-indexed page number, " +
				"pii_only (optional): Keep only PII-flagged segments, " +
				"text (optional): Case-insensitive substring",
		},
		{
			Name:        "form_validate_file",
			Description: descriptions.GetToolDescription("form_validate_file"),
			Usage:       "Use this tool to check if a file is a valid PDF before attempting to analyze it.",
			Parameters:  "path (required): Full absolute path to the PDF file",
		},
		{
			Name:        "form_stats_file",
			Description: descriptions.GetToolDescription("form_stats_file"),
			Usage: "Use this tool to get page count, file size, document metadata, the encryption " +
				"flag, and per-type segment counts including how many segments carry PII.",
			Parameters: "path (required): Full absolute path to the PDF file",
		},
		{
			Name:        "form_search_directory",
			Description: descriptions.GetToolDescription("form_search_directory"),
			Usage: "Use this tool to find PDF files in the default directory or any specified " +
				"directory. Supports fuzzy search by filename.",
			Parameters: "directory (optional): Directory path to search (uses default if empty), " +
				"query (optional): Search query for fuzzy matching",
		},
		{
			Name:        "form_stats_directory",
			Description: descriptions.GetToolDescription("form_stats_directory"),
			Usage: "Use this tool to get an overview of all PDF files in a directory including " +
				"total count and size figures.",
			Parameters: "directory (optional): Directory path to analyze (uses default if empty)",
		},
		{
			Name:        "form_service_info",
			Description: descriptions.GetToolDescription("form_service_info"),
			Usage:       "Use this tool first to discover what the server can do and which files are available.",
			Parameters:  "No parameters needed",
		},
	}
}

// usageGuidance explains the intended tool flow to MCP clients
func (s *Service) usageGuidance() string {
	return `Form Analyzer MCP Server Usage Guide:

1. START WITH DISCOVERY:
   - Use 'form_search_directory' to find available PDF files
   - Use 'form_stats_directory' to get an overview of the directory

2. VALIDATE FILES:
   - Use 'form_validate_file' to check if a file is readable before processing

3. ANALYZE LAYOUT:
   - Use 'form_analyze_file' to segment a form into typed, positioned pieces
   - Segment types: Title, SectionHeader, Label, FormField, Checkbox, Dropdown,
     Signature, Instructions, Text
   - Segments with 'is_pii' set contain patterns of personal data

4. EXTRACT FIELD DATA:
   - Use 'form_fields_file' to pull name/value pairs from text patterns and
     interactive widgets
   - Widget-backed fields carry higher confidence than text-derived ones

5. NAVIGATE LARGE FORMS:
   - Use 'form_sections_file' to group segments by page or visual section
   - Use 'form_query_segments' to filter segments by type, page, text or PII flag

IMPORTANT NOTES:
- Always use absolute file paths
- The server can handle files up to ` + fmt.Sprintf("%d", s.maxFileSize/(1024*1024)) + `MB
- Scanned forms carry no interactive widgets; segmentation still works on any text layer
- Repeated analyses of an unchanged file are served from the analysis cache`
}
