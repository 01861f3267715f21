// Package catalog implements the pattern catalog: a SQLite store with
// FTS5 full-text search over architectural pattern write-ups. It backs
// the patternctl sibling tool; the validation engine never touches it.
package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a pattern id does not exist.
var ErrNotFound = errors.New("pattern not found")

// Pattern is one catalog entry.
type Pattern struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Summary   string `json:"summary,omitempty"`
	Content   string `json:"content"`
	Source    string `json:"source,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// SearchResult is a pattern with its FTS5 rank (lower is better).
type SearchResult struct {
	Pattern
	Rank float64 `json:"rank"`
}

// Stats holds aggregate catalog statistics.
type Stats struct {
	TotalPatterns int            `json:"total_patterns"`
	ByCategory    map[string]int `json:"by_category"`
}

// Store is the catalog backed by SQLite + FTS5.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the catalog database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating catalog directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enabling WAL: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS patterns (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT 'general',
			summary TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL,
			source TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_patterns_category ON patterns(category)`,
		`CREATE VIRTUAL TABLE IF NOT EXISTS patterns_fts USING fts5(
			name, summary, content,
			content='patterns', content_rowid='rowid'
		)`,
		`CREATE TRIGGER IF NOT EXISTS patterns_fts_insert AFTER INSERT ON patterns BEGIN
			INSERT INTO patterns_fts(rowid, name, summary, content)
			VALUES (new.rowid, new.name, new.summary, new.content);
		END`,
		`CREATE TRIGGER IF NOT EXISTS patterns_fts_delete AFTER DELETE ON patterns BEGIN
			INSERT INTO patterns_fts(patterns_fts, rowid, name, summary, content)
			VALUES ('delete', old.rowid, old.name, old.summary, old.content);
		END`,
		`CREATE TRIGGER IF NOT EXISTS patterns_fts_update AFTER UPDATE ON patterns BEGIN
			INSERT INTO patterns_fts(patterns_fts, rowid, name, summary, content)
			VALUES ('delete', old.rowid, old.name, old.summary, old.content);
			INSERT INTO patterns_fts(rowid, name, summary, content)
			VALUES (new.rowid, new.name, new.summary, new.content);
		END`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrating catalog schema: %w", err)
		}
	}
	return nil
}

// AddParams holds the caller-supplied fields of a new pattern.
type AddParams struct {
	Name     string
	Category string
	Summary  string
	Content  string
	Source   string
}

// Add inserts a new pattern and returns it with generated id and
// timestamps.
func (s *Store) Add(p AddParams) (*Pattern, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, errors.New("pattern name is required")
	}
	if strings.TrimSpace(p.Content) == "" {
		return nil, errors.New("pattern content is required")
	}
	if p.Category == "" {
		p.Category = "general"
	}

	now := time.Now().UTC().Format(time.RFC3339)
	pat := &Pattern{
		ID:        uuid.NewString(),
		Name:      p.Name,
		Category:  p.Category,
		Summary:   p.Summary,
		Content:   p.Content,
		Source:    p.Source,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.Exec(
		`INSERT INTO patterns (id, name, category, summary, content, source, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		pat.ID, pat.Name, pat.Category, pat.Summary, pat.Content, pat.Source,
		pat.CreatedAt, pat.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting pattern: %w", err)
	}
	return pat, nil
}

// Get returns the pattern with the given id.
func (s *Store) Get(id string) (*Pattern, error) {
	row := s.db.QueryRow(
		`SELECT id, name, category, summary, content, source, created_at, updated_at
		 FROM patterns WHERE id = ?`, id)

	var p Pattern
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Summary, &p.Content,
		&p.Source, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading pattern: %w", err)
	}
	return &p, nil
}

// List returns patterns, newest first, optionally filtered by
// category.
func (s *Store) List(category string) ([]Pattern, error) {
	query := `SELECT id, name, category, summary, content, source, created_at, updated_at
		 FROM patterns`
	var args []any
	if category != "" {
		query += ` WHERE category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing patterns: %w", err)
	}
	defer rows.Close()

	var out []Pattern
	for rows.Next() {
		var p Pattern
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Summary, &p.Content,
			&p.Source, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Search runs an FTS5 match over name, summary and content, best rank
// first.
func (s *Store) Search(query string, limit int) ([]SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("search query is required")
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT p.id, p.name, p.category, p.summary, p.content, p.source,
		        p.created_at, p.updated_at, patterns_fts.rank
		 FROM patterns_fts
		 JOIN patterns p ON p.rowid = patterns_fts.rowid
		 WHERE patterns_fts MATCH ?
		 ORDER BY patterns_fts.rank
		 LIMIT ?`, ftsQuery(query), limit)
	if err != nil {
		return nil, fmt.Errorf("searching patterns: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ID, &r.Name, &r.Category, &r.Summary, &r.Content,
			&r.Source, &r.CreatedAt, &r.UpdatedAt, &r.Rank); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Delete removes the pattern with the given id.
func (s *Store) Delete(id string) error {
	res, err := s.db.Exec(`DELETE FROM patterns WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting pattern: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats returns aggregate counts.
func (s *Store) Stats() (*Stats, error) {
	st := &Stats{ByCategory: map[string]int{}}

	if err := s.db.QueryRow(`SELECT COUNT(*) FROM patterns`).Scan(&st.TotalPatterns); err != nil {
		return nil, fmt.Errorf("counting patterns: %w", err)
	}

	rows, err := s.db.Query(`SELECT category, COUNT(*) FROM patterns GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("counting categories: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var cat string
		var n int
		if err := rows.Scan(&cat, &n); err != nil {
			return nil, err
		}
		st.ByCategory[cat] = n
	}
	return st, rows.Err()
}

// ftsQuery quotes each term so user input with FTS5 operators cannot
// break the MATCH expression.
func ftsQuery(q string) string {
	terms := strings.Fields(q)
	for i, t := range terms {
		terms[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}
	return strings.Join(terms, " ")
}
