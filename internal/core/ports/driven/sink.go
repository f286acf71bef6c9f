package driven

import "github.com/danielfleischer/elfeed-ai/internal/core/domain"

// ReportSink is the mutable destination a batch run writes completed
// summaries into. Blocks are appended in completion-arrival order,
// which is the only ordering contract given to consumers.
//
// The sink may be destroyed externally while a batch is in flight.
// Writes after destruction must degrade to no-ops; Live lets callers
// skip work for a dead sink.
type ReportSink interface {
	// Live reports whether the sink still accepts writes.
	Live() bool

	// Clear discards any existing content.
	Clear()

	// WriteHeader writes report metadata at the top of the sink.
	WriteHeader(meta domain.ReportMeta)

	// Append adds one formatted summary block at the end.
	Append(entry *domain.Entry, summary string)

	// Show presents the finished report from the beginning. It is only
	// called once all entries of a batch have completed.
	Show()
}
