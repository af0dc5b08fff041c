package feed

import (
	"time"
)

// Entry is one raw feed entry after parsing and normalization.
type Entry struct {
	Title       string
	Link        string
	Summary     string
	PublishedAt time.Time
	ImageURL    string
}

// IngestResult summarizes one feed's ingestion run.
type IngestResult struct {
	Accepted   int
	Duplicates int
}
