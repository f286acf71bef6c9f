package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielfleischer/elfeed-ai/internal/adapters/driven/ai"
	"github.com/danielfleischer/elfeed-ai/internal/core/domain"
	"github.com/danielfleischer/elfeed-ai/internal/core/ports/driven"
)

var (
	summarizePrompt  string
	summarizeTimeout time.Duration
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Summarize marked entries",
	Long: `Starts one summarization request per marked entry and prints the
combined report once all requests have completed. Marks are cleared as
soon as the requests are dispatched.

Entries without extractable content are skipped but still counted.
Failed requests are reported and leave no block in the report.`,
	RunE: runSummarize,
}

func init() {
	summarizeCmd.Flags().StringVarP(&summarizePrompt, "prompt", "p", "", "override the summarization instruction")
	summarizeCmd.Flags().DurationVar(&summarizeTimeout, "timeout", 2*time.Minute, "maximum time to wait for the report")
	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, _ []string) error {
	if summarizer == nil {
		return errors.New("summarizer not configured")
	}

	settings := llmSettingsFromConfig()
	client, err := ai.CreateAndValidateSummaryClient(settings)
	if err != nil {
		return err
	}
	defer client.Close()

	instruction := summarizePrompt
	if instruction == "" && promptStore != nil {
		instruction, err = promptStore.Load(driven.PromptSummarize)
		if err != nil {
			return fmt.Errorf("loading summarize prompt: %w", err)
		}
	}

	handle, err := summarizer.SummarizeSelected(context.Background(), client, instruction)
	if err != nil {
		if errors.Is(err, domain.ErrEmptySelection) {
			cmd.Println("No entries marked. Run 'elfeed-ai mark <entry-id>' first.")
			return nil
		}
		return fmt.Errorf("starting batch: %w", err)
	}

	cmd.Printf("Summarizing %d entries with %s...\n", handle.Total(), client.ModelName())

	waitCtx, cancel := context.WithTimeout(context.Background(), summarizeTimeout)
	defer cancel()

	if err := handle.Wait(waitCtx); err != nil {
		return fmt.Errorf("gave up after %s with %d/%d summaries completed: %w",
			summarizeTimeout, handle.Completed(), handle.Total(), err)
	}

	return nil
}
