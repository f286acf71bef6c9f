package driven

import "context"

// Completion carries the outcome of one summarization request.
// Exactly one of Summary and Err is meaningful.
type Completion struct {
	// Summary is the generated summary text on success.
	Summary string

	// Err is the failure diagnostic on failure, nil on success.
	Err error
}

// CompletionFunc is the one-shot handler invoked when a submitted
// request resolves. It is called at most once per Submit call, at an
// unspecified future time, possibly from a different goroutine.
type CompletionFunc func(Completion)

// SummaryClient submits entry text to an LLM for summarization.
//
// Implementations may include:
//   - Anthropic (Claude)
//   - OpenAI (GPT models)
//   - Ollama (local models)
type SummaryClient interface {
	// Submit dispatches one summarization request and returns without
	// blocking on the result. The implementation guarantees onComplete
	// is invoked at most once, asynchronously, and never before Submit
	// returns. There is no ordering guarantee between submissions.
	Submit(ctx context.Context, text, instruction string, onComplete CompletionFunc)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request. Used at startup before committing to a batch.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
