package pdf

import "github.com/formlens/mcp-form-analyzer/internal/forms"

// FileInfo represents information about a PDF file
type FileInfo struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
}

// Request Types

// FormAnalyzeFileRequest represents a request to run a full form analysis
type FormAnalyzeFileRequest struct {
	Path        string `json:"path"`
	Granularity string `json:"granularity,omitempty"` // "line" (default) or "block"
	// NoCache skips the analysis cache for one-shot files such as HTTP
	// uploads, whose entries could never be hit again
	NoCache bool `json:"-"`
}

// FormFieldsFileRequest represents a request to extract form field values
type FormFieldsFileRequest struct {
	Path string `json:"path"`
}

// FormSectionsFileRequest represents a request to group form segments
type FormSectionsFileRequest struct {
	Path     string `json:"path"`
	Strategy string `json:"strategy,omitempty"` // "auto" (default), "page" or "section"
}

// FormQuerySegmentsRequest represents a request to filter analyzed segments
type FormQuerySegmentsRequest struct {
	Path    string   `json:"path"`
	Types   []string `json:"types,omitempty"`
	Page    int      `json:"page,omitempty"`
	PIIOnly bool     `json:"pii_only,omitempty"`
	Text    string   `json:"text,omitempty"`
}

// FormValidateFileRequest represents a request to validate a PDF file
type FormValidateFileRequest struct {
	Path string `json:"path"`
}

// FormStatsFileRequest represents a request to get stats about a PDF form
type FormStatsFileRequest struct {
	Path string `json:"path"`
}

// FormSearchDirectoryRequest represents a request to search for PDF files in a directory
type FormSearchDirectoryRequest struct {
	Directory string `json:"directory"`
	Query     string `json:"query"`
}

// FormStatsDirectoryRequest represents a request to get directory statistics
type FormStatsDirectoryRequest struct {
	Directory string `json:"directory"`
}

// FormServiceInfoRequest represents a request to get service information and capabilities
type FormServiceInfoRequest struct {
	// No parameters needed for service info
}

// Response Types

// FormFieldsFileResult represents the field values extracted from one form
type FormFieldsFileResult struct {
	Path       string                 `json:"path"`
	NumPages   int                    `json:"num_pages"`
	Fields     []forms.ExtractedField `json:"fields"`
	FieldCount int                    `json:"field_count"`
	FormType   string                 `json:"form_type,omitempty"`
}

// FormSectionsFileResult represents segments grouped by page or section.
// Exactly one of Sections and Pages is populated, matching Strategy.
type FormSectionsFileResult struct {
	Path     string                         `json:"path"`
	Strategy string                         `json:"strategy"`
	NumPages int                            `json:"num_pages"`
	Segments []forms.Segment                `json:"segments"`
	Sections []forms.Section                `json:"sections,omitempty"`
	Pages    map[int][]forms.IndexedSegment `json:"pages,omitempty"`
}

// FormQuerySegmentsResult represents the segments matching a query
type FormQuerySegmentsResult struct {
	Path          string          `json:"path"`
	MatchCount    int             `json:"match_count"`
	TotalSegments int             `json:"total_segments"`
	Segments      []forms.Segment `json:"segments"`
}

// FormValidateFileResult represents the result of a PDF validation operation
type FormValidateFileResult struct {
	Valid   bool   `json:"valid"`
	Path    string `json:"path"`
	Message string `json:"message,omitempty"`
}

// FormStatsFileResult represents file statistics plus an analysis summary
type FormStatsFileResult struct {
	Path            string         `json:"path"`
	Size            int64          `json:"size"`
	Pages           int            `json:"pages"`
	ImageCount      int            `json:"image_count"`
	CreatedDate     string         `json:"created_date,omitempty"`
	ModifiedDate    string         `json:"modified_date"`
	Title           string         `json:"title,omitempty"`
	Author          string         `json:"author,omitempty"`
	Subject         string         `json:"subject,omitempty"`
	Producer        string         `json:"producer,omitempty"`
	Encrypted       bool           `json:"encrypted"`
	Permissions     string         `json:"permissions,omitempty"`
	FormFillAllowed bool           `json:"form_fill_allowed"`
	FormType        string         `json:"form_type,omitempty"`
	SegmentCount    int            `json:"segment_count"`
	FieldCount      int            `json:"field_count"`
	PIISegmentCount int            `json:"pii_segment_count"`
	SegmentTypes    map[string]int `json:"segment_types"`
}

// FormSearchDirectoryResult represents the result of a PDF search operation
type FormSearchDirectoryResult struct {
	Files       []FileInfo `json:"files"`
	TotalCount  int        `json:"total_count"`
	Directory   string     `json:"directory"`
	SearchQuery string     `json:"search_query,omitempty"`
}

// FormStatsDirectoryResult represents the result of directory statistics
type FormStatsDirectoryResult struct {
	Directory        string `json:"directory"`
	TotalFiles       int    `json:"total_files"`
	TotalSize        int64  `json:"total_size"`
	LargestFileSize  int64  `json:"largest_file_size"`
	LargestFileName  string `json:"largest_file_name"`
	SmallestFileSize int64  `json:"smallest_file_size"`
	SmallestFileName string `json:"smallest_file_name"`
	AverageFileSize  int64  `json:"average_file_size"`
}

// FormServiceInfoResult represents service information and usage guidance
type FormServiceInfoResult struct {
	ServerName            string     `json:"server_name"`
	Version               string     `json:"version"`
	DefaultDirectory      string     `json:"default_directory"`
	MaxFileSize           int64      `json:"max_file_size"`
	CacheEnabled          bool       `json:"cache_enabled"`
	CachePath             string     `json:"cache_path,omitempty"`
	AvailableTools        []ToolInfo `json:"available_tools"`
	DirectoryContents     []FileInfo `json:"directory_contents"`
	UsageGuidance         string     `json:"usage_guidance"`
	SupportedSegmentTypes []string   `json:"supported_segment_types"`
}

// ToolInfo represents information about an available tool
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Usage       string `json:"usage"`
	Parameters  string `json:"parameters"`
}
