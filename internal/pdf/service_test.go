package pdf

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// newTestService builds a service rooted at a fresh temp directory with
// caching disabled
func newTestService(t *testing.T) (*Service, string) {
	t.Helper()

	tempDir := t.TempDir()
	service, err := NewService(1024*1024, tempDir, nil) // 1MB
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return service, tempDir
}

func TestNewService(t *testing.T) {
	maxFileSize := int64(1024 * 1024) // 1MB
	tempDir := t.TempDir()

	service, err := NewService(maxFileSize, tempDir, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if service == nil {
		t.Fatal("NewService returned nil")
	}

	if service.maxFileSize != maxFileSize {
		t.Errorf("Expected maxFileSize to be %d, got %d", maxFileSize, service.maxFileSize)
	}

	// Verify all components are initialized
	if service.validator == nil {
		t.Error("validator component should not be nil")
	}
	if service.stats == nil {
		t.Error("stats component should not be nil")
	}
	if service.search == nil {
		t.Error("search component should not be nil")
	}
	if service.extractor == nil {
		t.Error("extractor component should not be nil")
	}
	if service.lineEngine == nil {
		t.Error("line engine component should not be nil")
	}
	if service.blockEngine == nil {
		t.Error("block engine component should not be nil")
	}
	if service.pathValidator == nil {
		t.Error("path validator component should not be nil")
	}
	if service.dirCache == nil {
		t.Error("directory cache component should not be nil")
	}
}

func TestNewServiceEmptyDirectory(t *testing.T) {
	service, err := NewService(1024*1024, "", nil)
	if err == nil {
		t.Error("expected error for empty configured directory")
	}
	if service != nil {
		t.Error("service should be nil on error")
	}
}

func TestService_GetMaxFileSize(t *testing.T) {
	maxFileSize := int64(2 * 1024 * 1024) // 2MB
	service, err := NewService(maxFileSize, t.TempDir(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result := service.GetMaxFileSize(); result != maxFileSize {
		t.Errorf("Expected GetMaxFileSize to return %d, got %d", maxFileSize, result)
	}
}

func TestService_ValidateConfiguration(t *testing.T) {
	tests := []struct {
		name          string
		maxFileSize   int64
		expectedError bool
		errorMsg      string
	}{
		{
			name:          "valid configuration",
			maxFileSize:   1024 * 1024, // 1MB
			expectedError: false,
		},
		{
			name:          "zero max file size",
			maxFileSize:   0,
			expectedError: true,
			errorMsg:      "maxFileSize must be greater than 0",
		},
		{
			name:          "negative max file size",
			maxFileSize:   -1,
			expectedError: true,
			errorMsg:      "maxFileSize must be greater than 0",
		},
		{
			name:          "max file size too large",
			maxFileSize:   2 * 1024 * 1024 * 1024, // 2GB
			expectedError: true,
			errorMsg:      "maxFileSize cannot exceed 1GB",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, err := NewService(tt.maxFileSize, t.TempDir(), nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			err = service.ValidateConfiguration()
			if tt.expectedError && err == nil {
				t.Errorf("expected error but got none")
			}
			if !tt.expectedError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.expectedError && tt.errorMsg != "" && err.Error() != tt.errorMsg {
				t.Errorf("expected error message '%s' but got '%s'", tt.errorMsg, err.Error())
			}
		})
	}
}

func TestService_FormAnalyzeFileFailures(t *testing.T) {
	service, tempDir := newTestService(t)
	outsideDir := t.TempDir()

	textFile := filepath.Join(tempDir, "notes.txt")
	if err := os.WriteFile(textFile, []byte("plain text"), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	fakePDF := filepath.Join(tempDir, "fake.pdf")
	if err := os.WriteFile(fakePDF, []byte("this is not a PDF"), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	outsidePDF := filepath.Join(outsideDir, "escape.pdf")
	if err := os.WriteFile(outsidePDF, make([]byte, 1024), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	tests := []struct {
		name             string
		path             string
		granularity      string
		expectedFilename string
		errorMsg         string
	}{
		{
			name:             "empty path",
			path:             "",
			expectedFilename: "unknown.pdf",
			errorMsg:         "security validation failed",
		},
		{
			name:             "invalid granularity",
			path:             filepath.Join(tempDir, "form.pdf"),
			granularity:      "word",
			expectedFilename: "form.pdf",
			errorMsg:         "invalid granularity",
		},
		{
			name:             "path outside configured directory",
			path:             outsidePDF,
			expectedFilename: "escape.pdf",
			errorMsg:         "security validation failed",
		},
		{
			name:             "missing file",
			path:             filepath.Join(tempDir, "missing.pdf"),
			expectedFilename: "missing.pdf",
			errorMsg:         "file does not exist",
		},
		{
			name:             "non-PDF extension",
			path:             textFile,
			expectedFilename: "notes.txt",
			errorMsg:         "file is not a PDF",
		},
		{
			name:             "file with PDF extension but invalid content",
			path:             fakePDF,
			expectedFilename: "fake.pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := service.FormAnalyzeFile(context.Background(), FormAnalyzeFileRequest{
				Path:        tt.path,
				Granularity: tt.granularity,
			})

			if analysis.Success {
				t.Error("expected analysis to fail")
			}
			if analysis.Filename != tt.expectedFilename {
				t.Errorf("expected filename %q but got %q", tt.expectedFilename, analysis.Filename)
			}
			if analysis.Error == "" {
				t.Error("expected an error message")
			}
			if tt.errorMsg != "" && !strings.Contains(analysis.Error, tt.errorMsg) {
				t.Errorf("expected error containing %q but got %q", tt.errorMsg, analysis.Error)
			}

			// Failed analyses still carry empty slices, not nil
			if analysis.Segments == nil || len(analysis.Segments) != 0 {
				t.Errorf("expected empty segments but got %v", analysis.Segments)
			}
			if analysis.Fields == nil || len(analysis.Fields) != 0 {
				t.Errorf("expected empty fields but got %v", analysis.Fields)
			}
		})
	}
}

func TestService_FormFieldsFileError(t *testing.T) {
	service, tempDir := newTestService(t)

	result, err := service.FormFieldsFile(context.Background(), FormFieldsFileRequest{
		Path: filepath.Join(tempDir, "missing.pdf"),
	})
	if err == nil {
		t.Fatal("expected error but got none")
	}
	if result != nil {
		t.Error("result should be nil on error")
	}
	if !strings.Contains(err.Error(), "file does not exist") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestService_FormSectionsFileInvalidStrategy(t *testing.T) {
	service, tempDir := newTestService(t)

	result, err := service.FormSectionsFile(context.Background(), FormSectionsFileRequest{
		Path:     filepath.Join(tempDir, "form.pdf"),
		Strategy: "chapter",
	})
	if err == nil {
		t.Fatal("expected error but got none")
	}
	if result != nil {
		t.Error("result should be nil on error")
	}
	if !strings.Contains(err.Error(), "invalid strategy") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestService_FormQuerySegmentsInvalidType(t *testing.T) {
	service, tempDir := newTestService(t)

	result, err := service.FormQuerySegments(context.Background(), FormQuerySegmentsRequest{
		Path:  filepath.Join(tempDir, "form.pdf"),
		Types: []string{"banner"},
	})
	if err == nil {
		t.Fatal("expected error but got none")
	}
	if result != nil {
		t.Error("result should be nil on error")
	}
	if !strings.Contains(err.Error(), "invalid segment type") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestService_FormQuerySegmentsError(t *testing.T) {
	service, tempDir := newTestService(t)

	_, err := service.FormQuerySegments(context.Background(), FormQuerySegmentsRequest{
		Path: filepath.Join(tempDir, "missing.pdf"),
	})
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestService_FormValidateFile(t *testing.T) {
	service, tempDir := newTestService(t)

	testFile := filepath.Join(tempDir, "test.pdf")
	if err := os.WriteFile(testFile, make([]byte, 1024), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	result, err := service.FormValidateFile(FormValidateFileRequest{Path: testFile})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil {
		t.Fatal("result should not be nil")
	}
	if result.Path != testFile {
		t.Errorf("expected path %s but got %s", testFile, result.Path)
	}

	// The file should be invalid since it's not a real PDF
	if result.Valid {
		t.Errorf("expected file to be invalid")
	}
}

func TestService_FormValidateFileOutsideDirectory(t *testing.T) {
	service, _ := newTestService(t)
	outsideDir := t.TempDir()

	outsideFile := filepath.Join(outsideDir, "escape.pdf")
	if err := os.WriteFile(outsideFile, make([]byte, 1024), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	result, err := service.FormValidateFile(FormValidateFileRequest{Path: outsideFile})
	if err == nil {
		t.Fatal("expected error but got none")
	}
	if result != nil {
		t.Error("result should be nil on error")
	}
	if !strings.Contains(err.Error(), "security validation failed") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestService_FormStatsFileErrorHandling(t *testing.T) {
	service, _ := newTestService(t)

	result, err := service.FormStatsFile(context.Background(), FormStatsFileRequest{Path: ""})
	if err == nil {
		t.Error("expected error for empty path")
	}
	if result != nil {
		t.Error("result should be nil on error")
	}
}

func TestService_FormSearchDirectory(t *testing.T) {
	service, tempDir := newTestService(t)

	testFiles := []string{"doc1.pdf", "doc2.pdf"}
	for _, filename := range testFiles {
		filePath := filepath.Join(tempDir, filename)
		if err := os.WriteFile(filePath, make([]byte, 1024), 0o644); err != nil {
			t.Fatalf("failed to create test file %s: %v", filename, err)
		}
	}

	t.Run("explicit directory", func(t *testing.T) {
		result, err := service.FormSearchDirectory(FormSearchDirectoryRequest{
			Directory: tempDir,
			Query:     "",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Directory != tempDir {
			t.Errorf("expected directory %s but got %s", tempDir, result.Directory)
		}
		if result.TotalCount != 2 {
			t.Errorf("expected 2 files but got %d", result.TotalCount)
		}
	})

	t.Run("defaults to configured directory", func(t *testing.T) {
		result, err := service.FormSearchDirectory(FormSearchDirectoryRequest{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Directory != tempDir {
			t.Errorf("expected directory %s but got %s", tempDir, result.Directory)
		}
		if result.TotalCount != 2 {
			t.Errorf("expected 2 files but got %d", result.TotalCount)
		}
	})
}

func TestService_FormStatsDirectory(t *testing.T) {
	service, tempDir := newTestService(t)

	testFiles := map[string]int{
		"small.pdf":  512,
		"medium.pdf": 1024,
		"large.pdf":  2048,
	}
	for filename, size := range testFiles {
		filePath := filepath.Join(tempDir, filename)
		if err := os.WriteFile(filePath, make([]byte, size), 0o644); err != nil {
			t.Fatalf("failed to create test file %s: %v", filename, err)
		}
	}

	// An empty directory request falls back to the configured directory
	result, err := service.FormStatsDirectory(FormStatsDirectoryRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Directory != tempDir {
		t.Errorf("expected directory %s but got %s", tempDir, result.Directory)
	}
	if result.TotalFiles != 3 {
		t.Errorf("expected 3 files but got %d", result.TotalFiles)
	}

	expectedTotalSize := int64(512 + 1024 + 2048)
	if result.TotalSize != expectedTotalSize {
		t.Errorf("expected total size %d but got %d", expectedTotalSize, result.TotalSize)
	}
}

func TestService_IsValidPDF(t *testing.T) {
	service, _ := newTestService(t)

	tests := []struct {
		name     string
		filePath string
		expected bool
	}{
		{
			name:     "empty path",
			filePath: "",
			expected: false,
		},
		{
			name:     "non-existent file",
			filePath: "/non/existent/file.pdf",
			expected: false,
		},
		{
			name:     "non-PDF extension",
			filePath: "/path/to/document.txt",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := service.IsValidPDF(tt.filePath); result != tt.expected {
				t.Errorf("expected %v but got %v", tt.expected, result)
			}
		})
	}
}

func TestService_CountPDFsInDirectory(t *testing.T) {
	service, tempDir := newTestService(t)

	pdfFiles := []string{"doc1.pdf", "doc2.pdf", "doc3.pdf"}
	nonPdfFiles := []string{"doc.txt", "image.jpg"}

	for _, filename := range append(pdfFiles, nonPdfFiles...) {
		filePath := filepath.Join(tempDir, filename)
		if err := os.WriteFile(filePath, make([]byte, 1024), 0o644); err != nil {
			t.Fatalf("failed to create test file %s: %v", filename, err)
		}
	}

	count, err := service.CountPDFsInDirectory(tempDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if count != len(pdfFiles) {
		t.Errorf("expected count %d but got %d", len(pdfFiles), count)
	}
}

func TestService_FindPDFsInDirectory(t *testing.T) {
	service, tempDir := newTestService(t)

	pdfFiles := []string{"doc1.pdf", "doc2.pdf"}
	nonPdfFiles := []string{"doc.txt", "image.jpg"}

	for _, filename := range append(pdfFiles, nonPdfFiles...) {
		filePath := filepath.Join(tempDir, filename)
		if err := os.WriteFile(filePath, make([]byte, 1024), 0o644); err != nil {
			t.Fatalf("failed to create test file %s: %v", filename, err)
		}
	}

	files, err := service.FindPDFsInDirectory(tempDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(files) != len(pdfFiles) {
		t.Errorf("expected %d files but got %d", len(pdfFiles), len(files))
	}

	// Verify all returned files are PDFs
	for _, file := range files {
		if !service.search.isPDFFile(file.Name) {
			t.Errorf("non-PDF file returned: %s", file.Name)
		}
	}
}

func TestService_SearchByPattern(t *testing.T) {
	service, tempDir := newTestService(t)

	testFiles := []string{
		"report_2023.pdf",
		"report_2024.pdf",
		"summary_2023.pdf",
		"document.pdf",
	}
	for _, filename := range testFiles {
		filePath := filepath.Join(tempDir, filename)
		if err := os.WriteFile(filePath, make([]byte, 1024), 0o644); err != nil {
			t.Fatalf("failed to create test file %s: %v", filename, err)
		}
	}

	result, err := service.SearchByPattern(tempDir, "report_*.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expectedCount := 2 // report_2023.pdf and report_2024.pdf
	if result.TotalCount != expectedCount {
		t.Errorf("expected %d files but got %d", expectedCount, result.TotalCount)
	}
}

func TestParseGranularity(t *testing.T) {
	tests := []struct {
		value         string
		expected      string
		expectedError bool
	}{
		{value: "", expected: "line"},
		{value: "line", expected: "line"},
		{value: "block", expected: "block"},
		{value: "word", expectedError: true},
		{value: "LINE", expectedError: true},
	}

	for _, tt := range tests {
		t.Run("granularity_"+tt.value, func(t *testing.T) {
			granularity, err := parseGranularity(tt.value)
			if tt.expectedError {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(granularity) != tt.expected {
				t.Errorf("expected %q but got %q", tt.expected, granularity)
			}
		})
	}
}

func TestFailedAnalysis(t *testing.T) {
	analysis := failedAnalysis("form.pdf", "something went wrong")

	if analysis.Success {
		t.Error("expected Success to be false")
	}
	if analysis.Filename != "form.pdf" {
		t.Errorf("expected filename form.pdf but got %s", analysis.Filename)
	}
	if analysis.Error != "something went wrong" {
		t.Errorf("unexpected error message: %s", analysis.Error)
	}
	if analysis.Segments == nil || analysis.Fields == nil {
		t.Error("expected non-nil segments and fields")
	}
}
