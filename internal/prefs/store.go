package prefs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"
)

// Keys seeded into the search and upload defaults.
const (
	KeyTopK          = "rag.top_k"
	KeyRetrievalMode = "rag.retrieval_mode"
	KeyChunkMode     = "rag.chunk_mode"
	KeySystemPrompt  = "chat.system_prompt"
)

// ErrEmptyKey is returned by Set for a blank key.
var ErrEmptyKey = errors.New("preference key cannot be empty")

const schema = `CREATE TABLE IF NOT EXISTS preferences (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

// Store persists small user preferences in sqlite.
type Store struct {
	db *sql.DB
}

// Open opens or creates the store. ":memory:" keeps everything in process.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create preferences dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open preferences: %w", err)
	}
	// sqlite allows one writer; a single connection also keeps :memory: coherent.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init preferences schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Check rejects values the request defaults cannot use. Unknown keys are accepted as-is.
func Check(key, value string) error {
	v := strings.TrimSpace(value)
	switch strings.TrimSpace(key) {
	case KeyTopK:
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 20 {
			return fmt.Errorf("%s must be a number between 1 and 20", KeyTopK)
		}
	case KeyRetrievalMode:
		switch v {
		case "vector", "hybrid", "intel":
		default:
			return fmt.Errorf("%s must be one of vector, hybrid, intel", KeyRetrievalMode)
		}
	case KeyChunkMode:
		switch v {
		case "fixed", "paragraph":
		default:
			return fmt.Errorf("%s must be one of fixed, paragraph", KeyChunkMode)
		}
	}
	return nil
}

// Set stores value under key, replacing any existing entry.
func (s *Store) Set(ctx context.Context, key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrEmptyKey
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO preferences(key, value) VALUES(?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("set preference %q: %w", key, err)
	}
	return nil
}

// Get returns the stored value or def when the key is absent.
func (s *Store) Get(ctx context.Context, key, def string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, strings.TrimSpace(key)).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return def, nil
	}
	if err != nil {
		return "", fmt.Errorf("get preference %q: %w", key, err)
	}
	return v, nil
}

// List returns all preferences.
func (s *Store) List(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM preferences ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list preferences: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

// Delete removes a key. Missing keys are not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM preferences WHERE key = ?`, strings.TrimSpace(key))
	return err
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Defaults are request defaults resolved from stored preferences.
type Defaults struct {
	TopK          int
	RetrievalMode string
	ChunkMode     string
	SystemPrompt  string
}

// Resolve overlays stored preferences on base. Unparseable top_k values are ignored.
func (s *Store) Resolve(ctx context.Context, base Defaults) (Defaults, error) {
	all, err := s.List(ctx)
	if err != nil {
		return base, err
	}
	if v, ok := all[KeyTopK]; ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			base.TopK = n
		}
	}
	if v := strings.TrimSpace(all[KeyRetrievalMode]); v != "" {
		base.RetrievalMode = v
	}
	if v := strings.TrimSpace(all[KeyChunkMode]); v != "" {
		base.ChunkMode = v
	}
	if v := all[KeySystemPrompt]; strings.TrimSpace(v) != "" {
		base.SystemPrompt = v
	}
	return base, nil
}
