// Command elfeed-ai fetches web feeds and produces AI summary reports
// for marked entries.
package main

import (
	"fmt"
	"os"

	configfile "github.com/danielfleischer/elfeed-ai/internal/adapters/driven/config/file"
	htmlextract "github.com/danielfleischer/elfeed-ai/internal/adapters/driven/extract/html"
	"github.com/danielfleischer/elfeed-ai/internal/adapters/driven/feed"
	"github.com/danielfleischer/elfeed-ai/internal/adapters/driven/notify"
	"github.com/danielfleischer/elfeed-ai/internal/adapters/driven/report"
	"github.com/danielfleischer/elfeed-ai/internal/adapters/driven/storage/sqlite"
	"github.com/danielfleischer/elfeed-ai/internal/adapters/driving/cli"
	"github.com/danielfleischer/elfeed-ai/internal/core/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	store, err := sqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer store.Close()

	configStore, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}

	promptStore, err := configfile.NewPromptStore("")
	if err != nil {
		return fmt.Errorf("opening prompt store: %w", err)
	}

	entryStore := store.EntryStore()
	selectionStore := store.SelectionStore()

	// Reports go to stdout, progress chatter to stderr.
	sink := report.NewBufferSink(os.Stdout)
	notifier := notify.NewConsoleNotifier(os.Stderr)

	summarizer := services.NewBatchOrchestrator(
		entryStore,
		selectionStore,
		htmlextract.New(),
		sink,
		notifier,
	)
	fetcher := services.NewFetchService(feed.NewFetcher(), entryStore)

	return cli.Execute(cli.Services{
		Summarizer:     summarizer,
		FeedFetcher:    fetcher,
		EntryStore:     entryStore,
		SelectionStore: selectionStore,
		ConfigStore:    configStore,
		PromptStore:    promptStore,
	})
}
