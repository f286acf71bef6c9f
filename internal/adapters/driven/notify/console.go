// Package notify surfaces batch progress on the terminal.
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/danielfleischer/elfeed-ai/internal/core/ports/driven"
)

// Ensure ConsoleNotifier implements the interface.
var _ driven.Notifier = (*ConsoleNotifier)(nil)

// ConsoleNotifier writes one line per notification. Callbacks arrive
// from client goroutines, so writes are serialised with a mutex.
type ConsoleNotifier struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsoleNotifier creates a notifier writing to out.
func NewConsoleNotifier(out io.Writer) *ConsoleNotifier {
	return &ConsoleNotifier{out: out}
}

// Progress reports that another entry has completed.
func (n *ConsoleNotifier) Progress(completed, total int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.out, "%d/%d summaries completed\n", completed, total)
}

// Skipped reports that an entry had no extractable content.
func (n *ConsoleNotifier) Skipped(title string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.out, "skipping %q (no content)\n", title)
}

// Failed reports that an entry's request failed.
func (n *ConsoleNotifier) Failed(title string, detail error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.out, "summary failed for %q: %v\n", title, detail)
}
