// Package store persists captures in a local SQLite database keyed by
// URL identity.
package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/stellarlinkco/linkclaw/internal/capture"
)

// CaptureID derives the stable row id for a URL: hex SHA-256 of the raw
// string, first 16 characters. Same URL, same id, across runs.
func CaptureID(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])[:16]
}

type Store struct {
	db *sql.DB
	mu sync.Mutex
}

func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	s := &Store{db: db}
	if err := s.configure(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) configure() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, p := range pragmas {
		if _, err := s.db.Exec(p); err != nil {
			return fmt.Errorf("sqlite pragma %q: %w", p, err)
		}
	}
	return nil
}

func (s *Store) initSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS captures (
			id TEXT PRIMARY KEY,
			url TEXT NOT NULL UNIQUE,
			kind TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			author TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL DEFAULT '',
			summary TEXT NOT NULL DEFAULT '',
			labels TEXT NOT NULL DEFAULT '[]',
			importance REAL NOT NULL DEFAULT 0.5,
			published_at TEXT NOT NULL DEFAULT '',
			captured_at TEXT NOT NULL,
			stats TEXT NOT NULL DEFAULT '{}',
			extra TEXT NOT NULL DEFAULT '{}'
		)`,
		`CREATE INDEX IF NOT EXISTS idx_captures_captured_at ON captures(captured_at)`,
		`CREATE INDEX IF NOT EXISTS idx_captures_kind ON captures(kind)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Exists reports whether a capture with that exact URL string is already
// archived. Identity is the raw string; no canonicalization.
func (s *Store) Exists(url string) (bool, error) {
	row := s.db.QueryRow(`SELECT COUNT(1) FROM captures WHERE url = ?`, url)
	var n int
	if err := row.Scan(&n); err != nil {
		return false, fmt.Errorf("exists: %w", err)
	}
	return n > 0, nil
}

// Save upserts the capture under its deterministic id. A second save for
// the same URL fully overwrites the prior row, captured_at included.
func (s *Store) Save(c *capture.Capture, summary string, labels []string, importance float64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.URL == "" {
		return "", fmt.Errorf("save capture: empty url")
	}
	if labels == nil {
		labels = []string{}
	}
	stats := c.Stats
	if stats == nil {
		stats = map[string]int64{}
	}
	extra := c.Extra
	if extra == nil {
		extra = map[string]string{}
	}

	labelsJSON, err := json.Marshal(labels)
	if err != nil {
		return "", fmt.Errorf("marshal labels: %w", err)
	}
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return "", fmt.Errorf("marshal stats: %w", err)
	}
	extraJSON, err := json.Marshal(extra)
	if err != nil {
		return "", fmt.Errorf("marshal extra: %w", err)
	}

	id := CaptureID(c.URL)
	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO captures
			(id, url, kind, title, author, content, summary, labels,
			 importance, published_at, captured_at, stats, extra)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, c.URL, string(c.Kind), c.Title, c.Author, c.Content, summary, string(labelsJSON),
		importance, c.PublishedAt, time.Now().UTC().Format(time.RFC3339), string(statsJSON), string(extraJSON))
	if err != nil {
		return "", fmt.Errorf("save capture: %w", err)
	}
	return id, nil
}

const captureColumns = `id, url, kind, title, author, content, summary, labels,
	importance, published_at, captured_at, stats, extra`

// Search matches the query as a substring of title, content, or summary,
// most important and most recent first.
func (s *Store) Search(query string, limit int) ([]StoredCapture, error) {
	if limit <= 0 {
		limit = 10
	}
	pattern := "%" + query + "%"

	rows, err := s.db.Query(`
		SELECT `+captureColumns+`
		FROM captures
		WHERE title LIKE ? OR content LIKE ? OR summary LIKE ?
		ORDER BY importance DESC, captured_at DESC
		LIMIT ?
	`, pattern, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search captures: %w", err)
	}
	defer rows.Close()
	return scanCaptures(rows)
}

// Get returns the stored row for a URL, or nil when the URL was never saved.
func (s *Store) Get(url string) (*StoredCapture, error) {
	rows, err := s.db.Query(`SELECT `+captureColumns+` FROM captures WHERE url = ?`, url)
	if err != nil {
		return nil, fmt.Errorf("get capture: %w", err)
	}
	defer rows.Close()

	result, err := scanCaptures(rows)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, nil
	}
	return &result[0], nil
}

// URLs lists every archived URL, oldest capture first. The watcher sweeps
// this list when refreshing engagement stats. captured_at has second
// granularity, so insertion order breaks ties.
func (s *Store) URLs() ([]string, error) {
	rows, err := s.db.Query(`SELECT url FROM captures ORDER BY captured_at ASC, rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("list urls: %w", err)
	}
	defer rows.Close()

	urls := make([]string, 0)
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scan url: %w", err)
		}
		urls = append(urls, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate urls: %w", err)
	}
	return urls, nil
}

func (s *Store) Stats() (*ArchiveStats, error) {
	stats := &ArchiveStats{ByKind: make(map[string]int)}

	rows, err := s.db.Query(`SELECT kind, COUNT(1) FROM captures GROUP BY kind`)
	if err != nil {
		return nil, fmt.Errorf("archive stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		stats.ByKind[kind] = n
		stats.Total += n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stats: %w", err)
	}

	row := s.db.QueryRow(`SELECT COALESCE(MAX(captured_at), '') FROM captures`)
	if err := row.Scan(&stats.LastCapturedAt); err != nil {
		return nil, fmt.Errorf("latest capture: %w", err)
	}
	return stats, nil
}

func scanCaptures(rows *sql.Rows) ([]StoredCapture, error) {
	result := make([]StoredCapture, 0)
	for rows.Next() {
		var sc StoredCapture
		var kind, labels, stats, extra string
		if err := rows.Scan(
			&sc.ID,
			&sc.URL,
			&kind,
			&sc.Title,
			&sc.Author,
			&sc.Content,
			&sc.Summary,
			&labels,
			&sc.Importance,
			&sc.PublishedAt,
			&sc.CapturedAt,
			&stats,
			&extra,
		); err != nil {
			return nil, fmt.Errorf("scan capture: %w", err)
		}
		sc.Kind = capture.SourceKind(kind)
		if err := json.Unmarshal([]byte(labels), &sc.Labels); err != nil {
			return nil, fmt.Errorf("decode labels: %w", err)
		}
		if err := json.Unmarshal([]byte(stats), &sc.Stats); err != nil {
			return nil, fmt.Errorf("decode stats: %w", err)
		}
		if err := json.Unmarshal([]byte(extra), &sc.Extra); err != nil {
			return nil, fmt.Errorf("decode extra: %w", err)
		}
		result = append(result, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate captures: %w", err)
	}
	return result, nil
}
