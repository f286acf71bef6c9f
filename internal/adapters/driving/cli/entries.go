package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var entriesLimit int

var entriesCmd = &cobra.Command{
	Use:   "entries",
	Short: "List stored entries",
	Long: `Lists stored entries, newest first. Marked entries are prefixed
with an asterisk.`,
	RunE: runEntries,
}

func init() {
	entriesCmd.Flags().IntVarP(&entriesLimit, "limit", "n", 0, "maximum entries to show (0 = all)")
	rootCmd.AddCommand(entriesCmd)
}

func runEntries(cmd *cobra.Command, _ []string) error {
	if entryStore == nil || selectionStore == nil {
		return errors.New("entry store not configured")
	}

	ctx := context.Background()
	entries, err := entryStore.ListEntries(ctx)
	if err != nil {
		return fmt.Errorf("listing entries: %w", err)
	}

	if len(entries) == 0 {
		cmd.Println("No entries stored. Run 'elfeed-ai fetch' first.")
		return nil
	}

	if entriesLimit > 0 && len(entries) > entriesLimit {
		entries = entries[:entriesLimit]
	}

	for _, entry := range entries {
		marker := " "
		selected, err := selectionStore.IsSelected(ctx, entry.ID)
		if err != nil {
			return fmt.Errorf("checking selection: %w", err)
		}
		if selected {
			marker = "*"
		}

		date := "          "
		if !entry.Published.IsZero() {
			date = entry.Published.Format("2006-01-02")
		}

		cmd.Printf("%s %s  %s  %s  [%s]\n", marker, date, entry.FeedTitle, entry.Title, entry.ID)
	}

	return nil
}
