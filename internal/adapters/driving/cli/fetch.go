package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [url...]",
	Short: "Fetch feeds and store new entries",
	Long: `Fetches the given feed URLs and stores their entries.
If no URLs are given, the configured feed list (feeds.urls) is used.`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	if feedFetcher == nil {
		return errors.New("feed fetcher not configured")
	}

	urls := args
	if len(urls) == 0 {
		if configStore == nil {
			return errors.New("config store not configured")
		}
		urls = configStore.GetStringSlice("feeds.urls")
	}
	if len(urls) == 0 {
		return errors.New("no feed URLs given; pass URLs or run 'elfeed-ai settings feeds add <url>'")
	}

	cmd.Printf("Fetching %d feed(s)...\n", len(urls))

	status, err := feedFetcher.Fetch(context.Background(), urls)
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	cmd.Printf("Fetched %d feed(s), stored %d entries (%d errors).\n",
		status.FeedsFetched, status.EntriesStored, status.ErrorCount)
	return nil
}
