package pdf

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// createSearchFixtures lays out a directory with a mix of valid PDFs, an
// invalid one, a non-PDF, a subdirectory and a hidden directory
func createSearchFixtures(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	files := map[string]string{
		"tax_return_2024.pdf":     "%PDF-1.4 tax",
		"insurance_claim.pdf":     "%PDF-1.4 claim",
		"Job Application (1).pdf": "%PDF-1.4 application",
		"notes.txt":               "not a pdf",
		"empty.pdf":               "",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("failed to create fixture %s: %v", name, err)
		}
	}

	for _, sub := range []string{"archive", ".cache"} {
		if err := os.Mkdir(filepath.Join(dir, sub), 0o755); err != nil {
			t.Fatalf("failed to create subdirectory: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "archive", "old_tax_form.pdf"), []byte("%PDF-1.4 old"), 0o644); err != nil {
		t.Fatalf("failed to create fixture: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".cache", "hidden.pdf"), []byte("%PDF-1.4 hidden"), 0o644); err != nil {
		t.Fatalf("failed to create fixture: %v", err)
	}

	return dir
}

func fileNames(files []FileInfo) map[string]bool {
	names := make(map[string]bool, len(files))
	for _, f := range files {
		names[f.Name] = true
	}
	return names
}

func TestSearch_SearchDirectory(t *testing.T) {
	search := NewSearch(1024 * 1024) // 1MB limit
	dir := createSearchFixtures(t)

	tests := []struct {
		name          string
		query         string
		expectedCount int
		expectedNames []string
	}{
		{
			name:          "no query lists every valid PDF",
			query:         "",
			expectedCount: 5,
		},
		{
			name:          "substring query",
			query:         "tax",
			expectedCount: 2,
			expectedNames: []string{"tax_return_2024.pdf", "old_tax_form.pdf"},
		},
		{
			name:          "multi word fuzzy query",
			query:         "job application",
			expectedCount: 1,
			expectedNames: []string{"Job Application (1).pdf"},
		},
		{
			name:          "query matching nothing",
			query:         "zzz",
			expectedCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := search.SearchDirectory(FormSearchDirectoryRequest{
				Directory: dir,
				Query:     tt.query,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if result.TotalCount != tt.expectedCount {
				t.Errorf("expected %d files but got %d", tt.expectedCount, result.TotalCount)
			}
			if result.SearchQuery != tt.query {
				t.Errorf("expected SearchQuery=%q but got %q", tt.query, result.SearchQuery)
			}

			names := fileNames(result.Files)
			for _, want := range tt.expectedNames {
				if !names[want] {
					t.Errorf("expected result to contain %q, got %v", want, result.Files)
				}
			}
		})
	}
}

func TestSearch_SearchDirectoryErrors(t *testing.T) {
	search := NewSearch(1024 * 1024)

	if _, err := search.SearchDirectory(FormSearchDirectoryRequest{Directory: ""}); err == nil {
		t.Error("expected error for empty directory")
	}

	if _, err := search.SearchDirectory(FormSearchDirectoryRequest{Directory: "/non/existent/dir"}); err == nil {
		t.Error("expected error for non-existent directory")
	}
}

func TestSearch_FindPDFsInDirectory(t *testing.T) {
	search := NewSearch(1024 * 1024)
	dir := createSearchFixtures(t)

	files, err := search.FindPDFsInDirectory(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The unrestricted walk includes the hidden directory
	if len(files) != 5 {
		t.Errorf("expected 5 files but got %d", len(files))
	}

	names := fileNames(files)
	if names["empty.pdf"] {
		t.Error("empty.pdf should fail validation and be skipped")
	}
	if names["notes.txt"] {
		t.Error("notes.txt should be skipped by extension")
	}
}

func TestSearch_FindPDFsInDirectoryLimited(t *testing.T) {
	search := NewSearch(1024 * 1024)
	dir := createSearchFixtures(t)

	t.Run("skips hidden directories", func(t *testing.T) {
		files, err := search.FindPDFsInDirectoryLimited(dir, 100)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(files) != 4 {
			t.Errorf("expected 4 files but got %d", len(files))
		}
		if fileNames(files)["hidden.pdf"] {
			t.Error("hidden.pdf should be pruned with its directory")
		}
	})

	t.Run("honors the limit", func(t *testing.T) {
		files, err := search.FindPDFsInDirectoryLimited(dir, 2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(files) != 2 {
			t.Errorf("expected 2 files but got %d", len(files))
		}
	})
}

func TestSearch_CountPDFsInDirectory(t *testing.T) {
	search := NewSearch(1024 * 1024)
	dir := createSearchFixtures(t)

	count, err := search.CountPDFsInDirectory(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 5 {
		t.Errorf("expected 5 files but got %d", count)
	}
}

func TestSearch_SearchByPattern(t *testing.T) {
	search := NewSearch(1024 * 1024)
	dir := createSearchFixtures(t)

	tests := []struct {
		name          string
		pattern       string
		expectedCount int
	}{
		{
			name:          "prefix pattern",
			pattern:       "tax*",
			expectedCount: 1,
		},
		{
			name:          "contains pattern",
			pattern:       "*claim*",
			expectedCount: 1,
		},
		{
			name:          "empty pattern lists everything",
			pattern:       "",
			expectedCount: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := search.SearchByPattern(dir, tt.pattern)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.TotalCount != tt.expectedCount {
				t.Errorf("expected %d files but got %d", tt.expectedCount, result.TotalCount)
			}
		})
	}
}

func TestSearch_isPDFFile(t *testing.T) {
	search := NewSearch(1024 * 1024)

	tests := []struct {
		filename string
		expected bool
	}{
		{"document.pdf", true},
		{"DOCUMENT.PDF", true},
		{"archive.pdf.bak", false},
		{"document", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := search.isPDFFile(tt.filename); got != tt.expected {
				t.Errorf("expected %v but got %v", tt.expected, got)
			}
		})
	}
}

func TestSearch_matchesQuery(t *testing.T) {
	search := NewSearch(1024 * 1024)

	tests := []struct {
		filename string
		query    string
		expected bool
	}{
		{"tax_return_2024.pdf", "tax", true},
		{"tax_return_2024.pdf", "return", true},
		{"tax_return_2024.pdf", "tax 2024", true},
		{"tax_return_2024.pdf", "tax blue", false},
		{"Employee Handbook.pdf", "handbook", true},
		{"Employee Handbook.pdf", "", true},
		{"short.pdf", "short", true},
	}

	for _, tt := range tests {
		t.Run(tt.filename+"_"+tt.query, func(t *testing.T) {
			if got := search.matchesQuery(tt.filename, tt.query); got != tt.expected {
				t.Errorf("matchesQuery(%q, %q): expected %v but got %v",
					tt.filename, tt.query, tt.expected, got)
			}
		})
	}
}

func TestSplitIntoWords(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"Employee_Tax-Form (2024).pdf", []string{"employee", "tax", "form", "2024", "pdf"}},
		{"simple", []string{"simple"}},
		{"[bracketed].name", []string{"bracketed", "name"}},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := splitIntoWords(tt.input)
			if len(got) == 0 && len(tt.expected) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("expected %v but got %v", tt.expected, got)
			}
		})
	}
}

func TestNewSearch(t *testing.T) {
	search := NewSearch(2048)
	if search == nil {
		t.Fatal("NewSearch returned nil")
	}
	if search.maxFileSize != 2048 {
		t.Errorf("expected maxFileSize=2048 but got %d", search.maxFileSize)
	}
	if search.validator == nil {
		t.Error("expected validator to be initialized")
	}
}

func BenchmarkSearch_matchesQuery(b *testing.B) {
	search := NewSearch(1024 * 1024)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		search.matchesQuery("Employee_Tax-Form (2024).pdf", "tax 2024")
	}
}
