// Package cli implements the elfeed-ai command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/danielfleischer/elfeed-ai/internal/core/ports/driven"
	"github.com/danielfleischer/elfeed-ai/internal/core/ports/driving"
	"github.com/danielfleischer/elfeed-ai/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services injected by main before Execute. Commands check for nil and
// fail with a clear message, which also lets tests run commands without
// full wiring.
var (
	summarizer     driving.Summarizer
	feedFetcher    driving.FeedFetcher
	entryStore     driven.EntryStore
	selectionStore driven.SelectionStore
	configStore    driven.ConfigStore
	promptStore    driven.PromptStore
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "elfeed-ai",
	Short: "AI summaries for web feed entries",
	Long: `elfeed-ai fetches RSS/Atom feeds, lets you mark interesting entries,
and produces an AI-generated summary report for the marked entries.

Summaries run concurrently; the report is shown once every entry has
completed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Services bundles everything the commands need.
type Services struct {
	Summarizer     driving.Summarizer
	FeedFetcher    driving.FeedFetcher
	EntryStore     driven.EntryStore
	SelectionStore driven.SelectionStore
	ConfigStore    driven.ConfigStore
	PromptStore    driven.PromptStore
}

// Execute injects services and runs the root command.
func Execute(s Services) error {
	summarizer = s.Summarizer
	feedFetcher = s.FeedFetcher
	entryStore = s.EntryStore
	selectionStore = s.SelectionStore
	configStore = s.ConfigStore
	promptStore = s.PromptStore

	return rootCmd.Execute()
}
