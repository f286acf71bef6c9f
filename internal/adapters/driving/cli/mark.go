package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielfleischer/elfeed-ai/internal/core/domain"
)

var unmarkAll bool

var markCmd = &cobra.Command{
	Use:   "mark <entry-id>...",
	Short: "Mark entries for summarization",
	Long: `Marks one or more entries. Marked entries are included in the next
'elfeed-ai summarize' run, in the order they were marked.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMark,
}

var unmarkCmd = &cobra.Command{
	Use:   "unmark [entry-id...]",
	Short: "Clear marks from entries",
	RunE:  runUnmark,
}

func init() {
	unmarkCmd.Flags().BoolVar(&unmarkAll, "all", false, "clear all marks")
	rootCmd.AddCommand(markCmd)
	rootCmd.AddCommand(unmarkCmd)
}

func runMark(cmd *cobra.Command, args []string) error {
	if entryStore == nil || selectionStore == nil {
		return errors.New("entry store not configured")
	}

	ctx := context.Background()
	for _, id := range args {
		// Reject IDs that don't resolve to a stored entry.
		entry, err := entryStore.GetEntry(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("no entry with ID %q", id)
			}
			return fmt.Errorf("looking up entry %q: %w", id, err)
		}

		if err := selectionStore.Select(ctx, id); err != nil {
			return fmt.Errorf("marking entry %q: %w", id, err)
		}
		cmd.Printf("Marked: %s\n", entry.Title)
	}

	return nil
}

func runUnmark(cmd *cobra.Command, args []string) error {
	if selectionStore == nil {
		return errors.New("selection store not configured")
	}

	ctx := context.Background()

	if unmarkAll {
		if err := selectionStore.DeselectAll(ctx); err != nil {
			return fmt.Errorf("clearing marks: %w", err)
		}
		cmd.Println("All marks cleared.")
		return nil
	}

	if len(args) == 0 {
		return errors.New("pass entry IDs or --all")
	}

	for _, id := range args {
		if err := selectionStore.Deselect(ctx, id); err != nil {
			return fmt.Errorf("unmarking entry %q: %w", id, err)
		}
		cmd.Printf("Unmarked: %s\n", id)
	}

	return nil
}
