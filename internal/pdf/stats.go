package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/formlens/mcp-form-analyzer/internal/pdf/security"
)

// Stats handles PDF statistics operations
type Stats struct {
	maxFileSize int64
	validator   *Validator
}

// NewStats creates a new PDF stats analyzer with the specified constraints
func NewStats(maxFileSize int64) *Stats {
	return &Stats{
		maxFileSize: maxFileSize,
		validator:   NewValidator(maxFileSize),
	}
}

// GetFileStats returns file-level statistics about a single PDF: size,
// page count, document metadata, and the encryption flag. Analysis
// figures are filled in by the service on top of this.
func (s *Stats) GetFileStats(req FormStatsFileRequest) (*FormStatsFileResult, error) {
	if req.Path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	fileInfo, err := os.Stat(req.Path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", req.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}

	if err := s.validator.ValidateFileInfo(req.Path, fileInfo); err != nil {
		return nil, err
	}

	f, r, err := pdf.Open(req.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	result := &FormStatsFileResult{
		Path:         req.Path,
		Size:         fileInfo.Size(),
		Pages:        r.NumPage(),
		ImageCount:   countImages(r),
		ModifiedDate: fileInfo.ModTime().Format(modifiedTimeFormat),
		SegmentTypes: map[string]int{},

		// Unencrypted documents carry no access restrictions.
		FormFillAllowed: true,
	}

	s.extractMetadata(r, result)

	return result, nil
}

// GetDirectoryStats returns statistics about PDF files in a directory
func (s *Stats) GetDirectoryStats(req FormStatsDirectoryRequest) (*FormStatsDirectoryResult, error) {
	directory := req.Directory
	if directory == "" {
		return nil, fmt.Errorf("directory cannot be empty")
	}

	if _, err := os.Stat(directory); os.IsNotExist(err) {
		return nil, fmt.Errorf("directory does not exist: %s", directory)
	}

	var totalFiles int
	var totalSize int64
	var largestFile int64
	var largestFileName string
	var smallestFile int64
	var smallestFileName string

	err := filepath.Walk(directory, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil //nolint:nilerr // Continue despite errors
		}

		if info.IsDir() || !strings.HasSuffix(strings.ToLower(info.Name()), ".pdf") {
			return nil
		}

		// Quick validation without opening the file
		if s.validator.ValidateFileInfo(path, info) != nil {
			return nil
		}

		size := info.Size()
		totalFiles++
		totalSize += size

		if size > largestFile {
			largestFile = size
			largestFileName = info.Name()
		}
		if totalFiles == 1 || size < smallestFile {
			smallestFile = size
			smallestFileName = info.Name()
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking directory: %w", err)
	}

	var averageSize int64
	if totalFiles > 0 {
		averageSize = totalSize / int64(totalFiles)
	}

	result := &FormStatsDirectoryResult{
		Directory:        directory,
		TotalFiles:       totalFiles,
		TotalSize:        totalSize,
		LargestFileSize:  largestFile,
		LargestFileName:  largestFileName,
		SmallestFileSize: smallestFile,
		SmallestFileName: smallestFileName,
		AverageFileSize:  averageSize,
	}

	return result, nil
}

// extractMetadata fills in document metadata from the PDF trailer. Corrupt
// metadata dictionaries can panic inside the reader, so the whole walk is
// wrapped in a recover and partial results stand.
func (s *Stats) extractMetadata(r *pdf.Reader, result *FormStatsFileResult) {
	defer func() {
		if recover() != nil {
			// Metadata extraction failed, but basic stats still apply
		}
	}()

	trailer := r.Trailer()
	if trailer.IsNull() {
		return
	}

	encrypt := trailer.Key("Encrypt")
	result.Encrypted = !encrypt.IsNull()
	if result.Encrypted {
		decodePermissions(encrypt, result)
	}

	info := trailer.Key("Info")
	if info.IsNull() {
		return
	}

	result.Title = infoString(info, "Title")
	result.Author = infoString(info, "Author")
	result.Subject = infoString(info, "Subject")
	result.Producer = infoString(info, "Producer")
	result.CreatedDate = infoString(info, "CreationDate")
}

// decodePermissions surfaces the user-access bits of an encrypted document.
// A missing or unreadable P entry leaves form filling reported as allowed,
// matching how readers treat an absent entry.
func decodePermissions(encrypt pdf.Value, result *FormStatsFileResult) {
	p := encrypt.Key("P")
	if p.IsNull() {
		return
	}
	perms := security.NewPermissions(int32(p.Int64()))
	result.Permissions = perms.String()
	result.FormFillAllowed = perms.AllowsFormFill()
}

// infoString reads one entry of the document info dictionary as trimmed text.
// Text decodes PDFDoc and UTF-16 strings to UTF-8 and yields "" for non-string
// entries.
func infoString(info pdf.Value, key string) string {
	return strings.TrimSpace(info.Key(key).Text())
}
