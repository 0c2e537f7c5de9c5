// Package storage persists vision analyses across pipeline runs. The draft
// record store is an external collaborator; only its interface lives here.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/mvirta/productgen/internal/model"
)

// AnalysisStore caches vision analyses keyed by image-set hash.
type AnalysisStore interface {
	GetAnalysis(imageHash string) (*model.VisionAnalysis, error)
	PutAnalysis(imageHash string, analysis *model.VisionAnalysis) error
	Close() error
}

// DraftStore is the external product-draft collaborator. CRUD over drafts is
// out of this module's scope; the interface documents the integration point.
type DraftStore interface {
	Create(ctx context.Context, product *model.UnifiedProduct) (string, error)
	Get(ctx context.Context, id string) (*model.UnifiedProduct, error)
	Update(ctx context.Context, id string, product *model.UnifiedProduct) error
	Delete(ctx context.Context, id string) error
}

// SQLiteStore implements AnalysisStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (or creates) the analysis cache database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// WAL mode and busy timeout for better concurrency
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}

	// The cache can hold seller photos' analysis; keep it owner-only.
	if err := os.Chmod(dbPath, 0600); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to restrict database permissions: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) init() error {
	query := `
	CREATE TABLE IF NOT EXISTS analysis_cache (
		image_hash TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create analysis_cache table: %w", err)
	}
	return nil
}

// GetAnalysis retrieves a cached vision analysis by image hash.
// Returns nil, nil if no cache entry exists.
func (s *SQLiteStore) GetAnalysis(imageHash string) (*model.VisionAnalysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var payload string
	err := s.db.QueryRow(
		"SELECT payload FROM analysis_cache WHERE image_hash = ?",
		imageHash,
	).Scan(&payload)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis cache: %w", err)
	}

	var analysis model.VisionAnalysis
	if err := json.Unmarshal([]byte(payload), &analysis); err != nil {
		return nil, fmt.Errorf("failed to decode cached analysis: %w", err)
	}
	return &analysis, nil
}

// PutAnalysis stores a vision analysis in the cache.
func (s *SQLiteStore) PutAnalysis(imageHash string, analysis *model.VisionAnalysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("failed to encode analysis: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO analysis_cache (image_hash, payload)
		VALUES (?, ?)
		ON CONFLICT(image_hash) DO UPDATE SET
			payload = excluded.payload,
			created_at = CURRENT_TIMESTAMP
	`, imageHash, string(payload))
	if err != nil {
		return fmt.Errorf("failed to cache analysis: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
