// Package store persists completed form analyses between runs, keyed by a
// fingerprint of the source file so stale entries never surface.
package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.etcd.io/bbolt"

	"github.com/formlens/mcp-form-analyzer/internal/forms"
)

var bucketAnalyses = []byte("analyses")

// AnalysisCache stores form analyses in a bbolt database. A nil cache is
// valid and disables caching.
type AnalysisCache struct {
	db *bbolt.DB
}

// NewAnalysisCache opens or creates the cache database at path
func NewAnalysisCache(path string) (*AnalysisCache, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketAnalyses)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache bucket: %w", err)
	}

	return &AnalysisCache{db: db}, nil
}

// Get returns the cached analysis for the file and variant, or a miss when
// the file changed since the entry was written. Variant separates analyses
// of the same file under different settings.
func (c *AnalysisCache) Get(filePath, variant string) (*forms.FormAnalysis, bool) {
	if c == nil || c.db == nil {
		return nil, false
	}

	key, err := fingerprint(filePath, variant)
	if err != nil {
		return nil, false
	}

	var analysis forms.FormAnalysis
	err = c.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketAnalyses).Get(key)
		if data == nil {
			return fmt.Errorf("analysis not cached")
		}
		return json.Unmarshal(data, &analysis)
	})
	if err != nil {
		return nil, false
	}

	return &analysis, true
}

// Put stores an analysis for the file and variant
func (c *AnalysisCache) Put(filePath, variant string, analysis *forms.FormAnalysis) error {
	if c == nil || c.db == nil {
		return nil
	}

	key, err := fingerprint(filePath, variant)
	if err != nil {
		return err
	}

	data, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("failed to encode analysis: %w", err)
	}

	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketAnalyses).Put(key, data)
	})
}

// Path returns the location of the cache database, empty when disabled
func (c *AnalysisCache) Path() string {
	if c == nil || c.db == nil {
		return ""
	}
	return c.db.Path()
}

// Close releases the underlying database
func (c *AnalysisCache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// fingerprint derives the cache key from the file's path, size and
// modification time plus the analysis variant. Any change to the file
// lands on a fresh key, so entries never need invalidation.
func fingerprint(filePath, variant string) ([]byte, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d|%d",
		filePath, variant, info.Size(), info.ModTime().UnixNano())))

	key := make([]byte, hex.EncodedLen(len(sum)))
	hex.Encode(key, sum[:])
	return key, nil
}
