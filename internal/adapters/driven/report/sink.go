// Package report renders batch summary reports.
// BufferSink accumulates formatted blocks in memory and presents the
// finished report on an io.Writer once the batch completes.
package report

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/danielfleischer/elfeed-ai/internal/core/domain"
	"github.com/danielfleischer/elfeed-ai/internal/core/ports/driven"
)

// Ensure BufferSink implements the interface.
var _ driven.ReportSink = (*BufferSink)(nil)

// blockTemplate renders one entry heading plus its summary. Fields are
// pre-styled strings, not raw domain values.
var blockTemplate = template.Must(template.New("block").Parse(
	`{{.Title}}
{{.Meta}}
{{.Link}}

{{.Summary}}
`))

type blockData struct {
	Title   string
	Meta    string
	Link    string
	Summary string
}

// styles holds the lipgloss styles used for report text.
type styles struct {
	title     lipgloss.Style
	meta      lipgloss.Style
	link      lipgloss.Style
	header    lipgloss.Style
	separator lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
		meta:      lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
		link:      lipgloss.NewStyle().Foreground(lipgloss.Color("#06B6D4")).Underline(true),
		header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#CDD6F4")),
		separator: lipgloss.NewStyle().Foreground(lipgloss.Color("#45475A")),
	}
}

// BufferSink is an in-memory report destination. Append order is
// preserved verbatim; Show flushes header and blocks to the writer.
//
// Kill marks the sink dead, after which all writes and Show degrade to
// no-ops. This mirrors the report buffer being closed by the user while
// summaries are still arriving.
type BufferSink struct {
	mu     sync.Mutex
	out    io.Writer
	live   bool
	header string
	blocks []string
	styles styles
}

// NewBufferSink creates a live sink that presents reports on out.
func NewBufferSink(out io.Writer) *BufferSink {
	return &BufferSink{
		out:    out,
		live:   true,
		styles: defaultStyles(),
	}
}

// Live reports whether the sink still accepts writes.
func (s *BufferSink) Live() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live
}

// Kill marks the sink dead. Subsequent writes are no-ops.
func (s *BufferSink) Kill() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.live = false
}

// Clear discards any existing content.
func (s *BufferSink) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.live {
		return
	}
	s.header = ""
	s.blocks = nil
}

// WriteHeader writes report metadata at the top of the sink.
func (s *BufferSink) WriteHeader(meta domain.ReportMeta) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.live {
		return
	}

	title := fmt.Sprintf("AI Summary Report (%d entries)", meta.EntryCount)
	detail := fmt.Sprintf("%s, model %s",
		meta.GeneratedAt.Format(time.RFC1123), meta.Model)
	s.header = s.styles.header.Render(title) + "\n" + s.styles.meta.Render(detail) + "\n"
}

// Append adds one formatted summary block at the end.
func (s *BufferSink) Append(entry *domain.Entry, summary string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.live {
		return
	}

	meta := entry.FeedTitle
	if !entry.Published.IsZero() {
		if meta != "" {
			meta += ", "
		}
		meta += entry.Published.Format("2006-01-02")
	}

	var buf strings.Builder
	// Template execution over a struct of strings cannot fail.
	_ = blockTemplate.Execute(&buf, blockData{
		Title:   s.styles.title.Render(entry.Title),
		Meta:    s.styles.meta.Render(meta),
		Link:    s.styles.link.Render(entry.Link),
		Summary: strings.TrimSpace(summary),
	})
	s.blocks = append(s.blocks, buf.String())
}

// Show presents the finished report from the beginning.
func (s *BufferSink) Show() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.live {
		return
	}

	separator := s.styles.separator.Render(strings.Repeat("-", 60))

	fmt.Fprintln(s.out, s.header)
	for i, block := range s.blocks {
		if i > 0 {
			fmt.Fprintln(s.out, separator)
		}
		fmt.Fprintln(s.out, block)
	}
}

// Len returns the number of appended blocks.
func (s *BufferSink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blocks)
}
