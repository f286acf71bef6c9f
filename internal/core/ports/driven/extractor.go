package driven

import "github.com/danielfleischer/elfeed-ai/internal/core/domain"

// Extractor converts an entry's raw content into plain text suitable
// for an LLM prompt. Extraction is pure and synchronous; malformed
// content degrades to a best-effort result, never an error. An empty
// result means the entry has nothing to summarize.
type Extractor interface {
	Extract(entry *domain.Entry) string
}
