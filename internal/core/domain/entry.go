package domain

import "time"

// Entry represents a single feed entry available for summarization.
// It is the canonical representation after a feed fetch.
type Entry struct {
	// ID is the unique identifier for the entry.
	ID string

	// FeedTitle is the title of the feed the entry came from.
	FeedTitle string

	// FeedURL is the URL of the feed the entry came from.
	FeedURL string

	// Title is the human-readable entry title.
	Title string

	// Link is the entry's canonical URL.
	Link string

	// Published is when the entry was published.
	Published time.Time

	// Content is the raw entry body, usually HTML.
	Content string

	// FetchedAt is when the entry was last fetched.
	FetchedAt time.Time
}

// ReportMeta holds header metadata for a summary report.
type ReportMeta struct {
	// GeneratedAt is when the batch was started.
	GeneratedAt time.Time

	// Model is the LLM model identity used for the batch.
	Model string

	// EntryCount is the number of entries in the batch.
	EntryCount int
}
