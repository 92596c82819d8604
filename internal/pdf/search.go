package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// modifiedTimeFormat is the timestamp layout used in file listings
const modifiedTimeFormat = "2006-01-02 15:04:05"

// Search handles PDF discovery across directories
type Search struct {
	maxFileSize int64
	validator   *Validator
}

// NewSearch creates a new PDF search handler with the specified constraints
func NewSearch(maxFileSize int64) *Search {
	return &Search{
		maxFileSize: maxFileSize,
		validator:   NewValidator(maxFileSize),
	}
}

// walkOptions controls one directory traversal
type walkOptions struct {
	// limit stops the walk after this many files when positive
	limit int
	// skipHidden prunes dot-directories below the root
	skipHidden bool
	// match filters by filename; nil keeps every PDF
	match func(filename string) bool
}

// collectPDFs walks a directory tree and gathers valid PDF files. Entries
// that fail to read or validate are skipped, never fatal.
func (s *Search) collectPDFs(directory string, opts walkOptions) ([]FileInfo, string, error) {
	if directory == "" {
		return nil, "", fmt.Errorf("directory cannot be empty")
	}

	if _, err := os.Stat(directory); os.IsNotExist(err) {
		return nil, "", fmt.Errorf("directory does not exist: %s", directory)
	}

	// Resolve the search directory to prevent traversal
	absDirectory, err := filepath.Abs(directory)
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve directory path: %w", err)
	}

	var pdfFiles []FileInfo

	err = filepath.WalkDir(absDirectory, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // Intentionally continue on file errors
		}

		// Security check: ensure path is within the search directory
		withinDir, err := s.isPathWithinDirectory(path, absDirectory)
		if err != nil || !withinDir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if opts.skipHidden && path != absDirectory && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if opts.limit > 0 && len(pdfFiles) >= opts.limit {
			return filepath.SkipAll
		}

		if !s.isPDFFile(d.Name()) {
			return nil
		}

		if opts.match != nil && !opts.match(d.Name()) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil //nolint:nilerr // Intentionally continue on file errors
		}

		// Quick validation without opening the file
		if err := s.validator.ValidateFileInfo(path, info); err != nil {
			return nil //nolint:nilerr // Intentionally continue on validation errors
		}

		pdfFiles = append(pdfFiles, FileInfo{
			Path:         path,
			Name:         info.Name(),
			Size:         info.Size(),
			ModifiedTime: info.ModTime().Format(modifiedTimeFormat),
		})
		return nil
	})
	if err != nil {
		return nil, "", fmt.Errorf("error walking directory: %w", err)
	}

	return pdfFiles, absDirectory, nil
}

// SearchDirectory searches for PDF files in the specified directory. An
// empty query lists every valid PDF; otherwise filenames are fuzzy matched.
func (s *Search) SearchDirectory(req FormSearchDirectoryRequest) (*FormSearchDirectoryResult, error) {
	query := strings.ToLower(strings.TrimSpace(req.Query))

	var match func(string) bool
	if query != "" {
		match = func(name string) bool { return s.matchesQuery(name, query) }
	}

	files, absDirectory, err := s.collectPDFs(req.Directory, walkOptions{match: match})
	if err != nil {
		return nil, err
	}

	return &FormSearchDirectoryResult{
		Files:       files,
		TotalCount:  len(files),
		Directory:   absDirectory,
		SearchQuery: req.Query,
	}, nil
}

// FindPDFsInDirectory finds all PDF files in a directory without query filtering
func (s *Search) FindPDFsInDirectory(directory string) ([]FileInfo, error) {
	files, _, err := s.collectPDFs(directory, walkOptions{})
	return files, err
}

// FindPDFsInDirectoryLimited finds PDF files with a cap on the number of
// results, pruning hidden directories along the way
func (s *Search) FindPDFsInDirectoryLimited(directory string, limit int) ([]FileInfo, error) {
	files, _, err := s.collectPDFs(directory, walkOptions{limit: limit, skipHidden: true})
	return files, err
}

// CountPDFsInDirectory counts the number of valid PDF files in a directory
func (s *Search) CountPDFsInDirectory(directory string) (int, error) {
	files, err := s.FindPDFsInDirectory(directory)
	if err != nil {
		return 0, err
	}

	return len(files), nil
}

// SearchByPattern searches for PDF files whose names match a glob pattern
func (s *Search) SearchByPattern(directory, pattern string) (*FormSearchDirectoryResult, error) {
	if pattern == "" {
		return s.SearchDirectory(FormSearchDirectoryRequest{Directory: directory})
	}

	match := func(name string) bool {
		matched, err := filepath.Match(pattern, name)
		return err == nil && matched
	}

	files, absDirectory, err := s.collectPDFs(directory, walkOptions{match: match})
	if err != nil {
		return nil, err
	}

	return &FormSearchDirectoryResult{
		Files:       files,
		TotalCount:  len(files),
		Directory:   absDirectory,
		SearchQuery: pattern,
	}, nil
}

// isPathWithinDirectory checks if a path is within the specified directory
func (s *Search) isPathWithinDirectory(path, directory string) (bool, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("failed to resolve path: %w", err)
	}

	absDir, err := filepath.Abs(directory)
	if err != nil {
		return false, fmt.Errorf("failed to resolve directory: %w", err)
	}

	// Evaluate any symlinks to get the real path
	realPath, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		// If the file doesn't exist yet, just use the absolute path
		if !os.IsNotExist(err) {
			return false, fmt.Errorf("failed to evaluate symlinks: %w", err)
		}
		realPath = absPath
	}

	realDir, err := filepath.EvalSymlinks(absDir)
	if err != nil {
		return false, fmt.Errorf("failed to evaluate directory symlinks: %w", err)
	}

	realPath = filepath.Clean(realPath)
	realDir = filepath.Clean(realDir)

	// Add a separator to the directory to require an exact prefix match
	if !strings.HasSuffix(realDir, string(filepath.Separator)) {
		realDir += string(filepath.Separator)
	}

	return strings.HasPrefix(realPath, realDir) || realPath == strings.TrimSuffix(realDir, string(filepath.Separator)), nil
}

// isPDFFile checks if a file has a PDF extension
func (s *Search) isPDFFile(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".pdf")
}

// matchesQuery performs fuzzy matching on the filename
func (s *Search) matchesQuery(filename, query string) bool {
	if query == "" {
		return true
	}

	fileName := strings.ToLower(filename)

	// Exact substring match
	if strings.Contains(fileName, query) {
		return true
	}

	// Remove extension for name-only matching
	nameWithoutExt := strings.TrimSuffix(fileName, ".pdf")
	if strings.Contains(nameWithoutExt, query) {
		return true
	}

	// Word-based matching: every query word must appear in some filename word
	words := splitIntoWords(nameWithoutExt)
	for _, queryWord := range splitIntoWords(query) {
		found := false
		for _, word := range words {
			if strings.Contains(word, queryWord) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

// splitIntoWords splits a string into lowercase words on common filename
// separators
func splitIntoWords(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return strings.ContainsRune(" _-.()[]", r)
	})
}
