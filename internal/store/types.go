package store

import "github.com/stellarlinkco/linkclaw/internal/capture"

// StoredCapture is one durable row of the archive: a Capture plus the
// artifacts computed for it and the wall clock of the save.
type StoredCapture struct {
	ID          string             `json:"id"`
	URL         string             `json:"url"`
	Kind        capture.SourceKind `json:"kind"`
	Title       string             `json:"title"`
	Author      string             `json:"author,omitempty"`
	Content     string             `json:"content,omitempty"`
	Summary     string             `json:"summary,omitempty"`
	Labels      []string           `json:"labels,omitempty"`
	Importance  float64            `json:"importance"`
	PublishedAt string             `json:"publishedAt,omitempty"`
	CapturedAt  string             `json:"capturedAt"`
	Stats       map[string]int64   `json:"stats,omitempty"`
	Extra       map[string]string  `json:"extra,omitempty"`
}

// ArchiveStats is the aggregate view shown by the status command.
type ArchiveStats struct {
	Total          int            `json:"total"`
	ByKind         map[string]int `json:"byKind"`
	LastCapturedAt string         `json:"lastCapturedAt,omitempty"`
}
