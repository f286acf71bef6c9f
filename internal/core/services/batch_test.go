package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielfleischer/elfeed-ai/internal/core/domain"
	"github.com/danielfleischer/elfeed-ai/internal/core/ports/driven"
)

// fakeExtractor returns the entry content as-is.
type fakeExtractor struct{}

func (fakeExtractor) Extract(entry *domain.Entry) string {
	return entry.Content
}

// fakeSink records every interaction and can be destroyed mid-batch.
type fakeSink struct {
	mu      sync.Mutex
	dead    bool
	cleared int
	headers []domain.ReportMeta
	blocks  []string
	shows   int
}

func (s *fakeSink) Live() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.dead
}

func (s *fakeSink) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dead {
		return
	}
	s.cleared++
}

func (s *fakeSink) WriteHeader(meta domain.ReportMeta) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dead {
		return
	}
	s.headers = append(s.headers, meta)
}

func (s *fakeSink) Append(entry *domain.Entry, summary string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dead {
		return
	}
	s.blocks = append(s.blocks, entry.Title+": "+summary)
}

func (s *fakeSink) Show() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dead {
		return
	}
	s.shows++
}

func (s *fakeSink) kill() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dead = true
}

func (s *fakeSink) snapshot() ([]string, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	blocks := make([]string, len(s.blocks))
	copy(blocks, s.blocks)
	return blocks, s.shows
}

// fakeNotifier records notifications in arrival order.
type fakeNotifier struct {
	mu       sync.Mutex
	progress []string
	skipped  []string
	failed   []string
}

func (n *fakeNotifier) Progress(completed, total int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.progress = append(n.progress, fmt.Sprintf("%d/%d", completed, total))
}

func (n *fakeNotifier) Skipped(title string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.skipped = append(n.skipped, title)
}

func (n *fakeNotifier) Failed(title string, _ error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failed = append(n.failed, title)
}

// fakeSelectionStore tracks marks and records deselections.
type fakeSelectionStore struct {
	mu        sync.Mutex
	order     []string
	marks     map[string]bool
	deselects []string
}

func newFakeSelectionStore() *fakeSelectionStore {
	return &fakeSelectionStore{marks: make(map[string]bool)}
}

func (s *fakeSelectionStore) Select(_ context.Context, entryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.marks[entryID] {
		s.marks[entryID] = true
		s.order = append(s.order, entryID)
	}
	return nil
}

func (s *fakeSelectionStore) Deselect(_ context.Context, entryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.marks, entryID)
	s.deselects = append(s.deselects, entryID)
	return nil
}

func (s *fakeSelectionStore) DeselectAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marks = make(map[string]bool)
	s.order = nil
	return nil
}

func (s *fakeSelectionStore) IsSelected(_ context.Context, entryID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.marks[entryID], nil
}

func (s *fakeSelectionStore) SelectedIDs(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for _, id := range s.order {
		if s.marks[id] {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// fakeEntryStore holds entries by ID.
type fakeEntryStore struct {
	mu      sync.Mutex
	entries map[string]domain.Entry
}

func newFakeEntryStore() *fakeEntryStore {
	return &fakeEntryStore{entries: make(map[string]domain.Entry)}
}

func (s *fakeEntryStore) SaveEntry(_ context.Context, entry *domain.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.ID] = *entry
	return nil
}

func (s *fakeEntryStore) GetEntry(_ context.Context, id string) (*domain.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &entry, nil
}

func (s *fakeEntryStore) ListEntries(_ context.Context) ([]domain.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []domain.Entry
	for _, e := range s.entries {
		all = append(all, e)
	}
	return all, nil
}

func (s *fakeEntryStore) DeleteEntry(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

// fakeSummaryClient records submissions and lets tests resolve the
// completion callbacks in any order after StartBatch has returned.
type fakeSubmission struct {
	text        string
	instruction string
	onComplete  driven.CompletionFunc
}

type fakeSummaryClient struct {
	mu          sync.Mutex
	submissions []fakeSubmission
}

func (c *fakeSummaryClient) Submit(_ context.Context, text, instruction string, onComplete driven.CompletionFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.submissions = append(c.submissions, fakeSubmission{
		text:        text,
		instruction: instruction,
		onComplete:  onComplete,
	})
}

func (c *fakeSummaryClient) ModelName() string          { return "fake-model" }
func (c *fakeSummaryClient) Ping(context.Context) error { return nil }
func (c *fakeSummaryClient) Close() error               { return nil }

func (c *fakeSummaryClient) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.submissions)
}

// resolve invokes the i-th submission's callback.
func (c *fakeSummaryClient) resolve(i int, comp driven.Completion) {
	c.mu.Lock()
	sub := c.submissions[i]
	c.mu.Unlock()
	sub.onComplete(comp)
}

type batchFixture struct {
	orch      *BatchOrchestrator
	entries   *fakeEntryStore
	selection *fakeSelectionStore
	sink      *fakeSink
	notifier  *fakeNotifier
	client    *fakeSummaryClient
}

func newBatchFixture() *batchFixture {
	f := &batchFixture{
		entries:   newFakeEntryStore(),
		selection: newFakeSelectionStore(),
		sink:      &fakeSink{},
		notifier:  &fakeNotifier{},
		client:    &fakeSummaryClient{},
	}
	f.orch = NewBatchOrchestrator(f.entries, f.selection, fakeExtractor{}, f.sink, f.notifier)
	return f
}

func makeEntry(id, title, content string) domain.Entry {
	return domain.Entry{
		ID:        id,
		FeedTitle: "Example Feed",
		Title:     title,
		Link:      "https://example.com/" + id,
		Published: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Content:   content,
	}
}

func TestStartBatch_EmptySelection(t *testing.T) {
	f := newBatchFixture()

	handle, err := f.orch.StartBatch(context.Background(), nil, f.client, "summarize")

	assert.ErrorIs(t, err, domain.ErrEmptySelection)
	assert.Nil(t, handle)

	// Nothing was mutated.
	assert.Zero(t, f.sink.cleared)
	assert.Empty(t, f.sink.headers)
	assert.Empty(t, f.selection.deselects)
	assert.Zero(t, f.client.count())
}

func TestStartBatch_WritesHeaderBeforeDispatch(t *testing.T) {
	f := newBatchFixture()
	entries := []domain.Entry{makeEntry("a", "Alpha", "body")}

	_, err := f.orch.StartBatch(context.Background(), entries, f.client, "summarize")
	require.NoError(t, err)

	assert.Equal(t, 1, f.sink.cleared)
	require.Len(t, f.sink.headers, 1)
	assert.Equal(t, "fake-model", f.sink.headers[0].Model)
	assert.Equal(t, 1, f.sink.headers[0].EntryCount)
	assert.False(t, f.sink.headers[0].GeneratedAt.IsZero())
}

func TestStartBatch_DoesNotBlockOnResults(t *testing.T) {
	f := newBatchFixture()
	entries := []domain.Entry{
		makeEntry("a", "Alpha", "body a"),
		makeEntry("b", "Beta", "body b"),
	}

	handle, err := f.orch.StartBatch(context.Background(), entries, f.client, "summarize")
	require.NoError(t, err)

	// Both requests dispatched, none resolved yet.
	assert.Equal(t, 2, f.client.count())
	assert.Equal(t, 0, handle.Completed())
	assert.Equal(t, 2, handle.Total())

	select {
	case <-handle.Done():
		t.Fatal("batch reported done before any callback fired")
	default:
	}
}

func TestStartBatch_AppendOrderIsArrivalOrder(t *testing.T) {
	f := newBatchFixture()
	entries := []domain.Entry{
		makeEntry("a", "Alpha", "body a"),
		makeEntry("b", "Beta", "body b"),
		makeEntry("c", "Gamma", "body c"),
	}

	handle, err := f.orch.StartBatch(context.Background(), entries, f.client, "summarize")
	require.NoError(t, err)
	require.Equal(t, 3, f.client.count())

	// Resolve out of submission order: 3rd, 1st, 2nd.
	f.client.resolve(2, driven.Completion{Summary: "sum c"})
	f.client.resolve(0, driven.Completion{Summary: "sum a"})
	f.client.resolve(1, driven.Completion{Summary: "sum b"})

	require.NoError(t, handle.Wait(context.Background()))

	blocks, shows := f.sink.snapshot()
	assert.Equal(t, []string{"Gamma: sum c", "Alpha: sum a", "Beta: sum b"}, blocks)
	assert.Equal(t, 1, shows)
}

func TestStartBatch_MixedOutcomes(t *testing.T) {
	f := newBatchFixture()
	entries := []domain.Entry{
		makeEntry("a", "Alpha", ""), // empty content: skipped
		makeEntry("b", "Beta", "body b"),
		makeEntry("c", "Gamma", "body c"),
	}

	handle, err := f.orch.StartBatch(context.Background(), entries, f.client, "summarize")
	require.NoError(t, err)

	// Only the two non-empty entries produced requests.
	require.Equal(t, 2, f.client.count())
	assert.Equal(t, 1, handle.Completed())

	f.client.resolve(0, driven.Completion{Summary: "X"})
	f.client.resolve(1, driven.Completion{Err: fmt.Errorf("rate limited")})

	require.NoError(t, handle.Wait(context.Background()))
	assert.Equal(t, 3, handle.Completed())

	// Exactly one block: Beta's summary. Neither the skipped nor the
	// failed entry reached the report.
	blocks, shows := f.sink.snapshot()
	assert.Equal(t, []string{"Beta: X"}, blocks)
	assert.Equal(t, 1, shows)

	assert.Equal(t, []string{"1/3", "2/3", "3/3"}, f.notifier.progress)
	assert.Equal(t, []string{"Alpha"}, f.notifier.skipped)
	assert.Equal(t, []string{"Gamma"}, f.notifier.failed)
}

func TestStartBatch_AllEmptyContentFinalizes(t *testing.T) {
	f := newBatchFixture()
	entries := []domain.Entry{
		makeEntry("a", "Alpha", ""),
		makeEntry("b", "Beta", "   \n\t"),
	}

	handle, err := f.orch.StartBatch(context.Background(), entries, f.client, "summarize")
	require.NoError(t, err)

	// The last skip is the finalizing increment; no requests at all.
	assert.Zero(t, f.client.count())
	require.NoError(t, handle.Wait(context.Background()))

	blocks, shows := f.sink.snapshot()
	assert.Empty(t, blocks)
	assert.Equal(t, 1, shows)
	assert.Equal(t, []string{"Alpha", "Beta"}, f.notifier.skipped)
}

func TestStartBatch_ClearsMarksBeforeResults(t *testing.T) {
	f := newBatchFixture()
	ctx := context.Background()
	entries := []domain.Entry{
		makeEntry("a", "Alpha", "body a"),
		makeEntry("b", "Beta", ""),
	}
	for _, e := range entries {
		require.NoError(t, f.selection.Select(ctx, e.ID))
	}

	_, err := f.orch.StartBatch(ctx, entries, f.client, "summarize")
	require.NoError(t, err)

	// Marks cleared at dispatch time, before the outstanding request
	// resolves, irrespective of per-entry outcome.
	assert.ElementsMatch(t, []string{"a", "b"}, f.selection.deselects)
	selected, err := f.selection.SelectedIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, selected)
}

func TestStartBatch_SinkGoneMidBatch(t *testing.T) {
	f := newBatchFixture()
	entries := []domain.Entry{
		makeEntry("a", "Alpha", "body a"),
		makeEntry("b", "Beta", "body b"),
	}

	handle, err := f.orch.StartBatch(context.Background(), entries, f.client, "summarize")
	require.NoError(t, err)

	f.client.resolve(0, driven.Completion{Summary: "sum a"})
	f.sink.kill()
	f.client.resolve(1, driven.Completion{Summary: "sum b"})

	// The batch still completes; writes after destruction are no-ops
	// and the final display is skipped.
	require.NoError(t, handle.Wait(context.Background()))
	blocks, shows := f.sink.snapshot()
	assert.Equal(t, []string{"Alpha: sum a"}, blocks)
	assert.Zero(t, shows)
}

// permutations returns every ordering of 0..n-1.
func permutations(n int) [][]int {
	base := make([]int, n)
	for i := range base {
		base[i] = i
	}

	var result [][]int
	var permute func(current []int, remaining []int)
	permute = func(current, remaining []int) {
		if len(remaining) == 0 {
			perm := make([]int, len(current))
			copy(perm, current)
			result = append(result, perm)
			return
		}
		for i := range remaining {
			next := make([]int, 0, len(remaining)-1)
			next = append(next, remaining[:i]...)
			next = append(next, remaining[i+1:]...)
			permute(append(current, remaining[i]), next)
		}
	}
	permute(nil, base)
	return result
}

func TestStartBatch_FinalizeOnceForEveryArrivalOrder(t *testing.T) {
	const n = 4

	for _, perm := range permutations(n) {
		perm := perm
		t.Run(fmt.Sprintf("order%v", perm), func(t *testing.T) {
			f := newBatchFixture()
			entries := make([]domain.Entry, n)
			for i := range entries {
				entries[i] = makeEntry(
					fmt.Sprintf("e%d", i),
					fmt.Sprintf("Entry %d", i),
					fmt.Sprintf("body %d", i),
				)
			}

			handle, err := f.orch.StartBatch(context.Background(), entries, f.client, "summarize")
			require.NoError(t, err)
			require.Equal(t, n, f.client.count())

			for _, i := range perm {
				f.client.resolve(i, driven.Completion{Summary: fmt.Sprintf("sum %d", i)})
			}

			require.NoError(t, handle.Wait(context.Background()))
			assert.Equal(t, n, handle.Completed())

			blocks, shows := f.sink.snapshot()
			assert.Len(t, blocks, n)
			assert.Equal(t, 1, shows, "finalize must fire exactly once")
			assert.Equal(t, fmt.Sprintf("%d/%d", n, n), f.notifier.progress[n-1])
		})
	}
}

func TestStartBatch_ConcurrentCallbacks(t *testing.T) {
	const n = 32

	f := newBatchFixture()
	entries := make([]domain.Entry, n)
	for i := range entries {
		entries[i] = makeEntry(
			fmt.Sprintf("e%d", i),
			fmt.Sprintf("Entry %d", i),
			fmt.Sprintf("body %d", i),
		)
	}

	handle, err := f.orch.StartBatch(context.Background(), entries, f.client, "summarize")
	require.NoError(t, err)
	require.Equal(t, n, f.client.count())

	// Fire every callback from its own goroutine to exercise genuinely
	// parallel completion.
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			if i%3 == 0 {
				f.client.resolve(i, driven.Completion{Err: fmt.Errorf("boom %d", i)})
			} else {
				f.client.resolve(i, driven.Completion{Summary: fmt.Sprintf("sum %d", i)})
			}
		}(i)
	}
	wg.Wait()

	require.NoError(t, handle.Wait(context.Background()))
	assert.Equal(t, n, handle.Completed())

	blocks, shows := f.sink.snapshot()
	assert.Equal(t, 1, shows)
	// Failed requests produce no blocks: indices 0,3,6,... fail.
	failures := 0
	for i := 0; i < n; i++ {
		if i%3 == 0 {
			failures++
		}
	}
	assert.Len(t, blocks, n-failures)
	assert.Len(t, f.notifier.progress, n)
}

func TestBatchHandle_WaitRespectsContext(t *testing.T) {
	f := newBatchFixture()
	entries := []domain.Entry{makeEntry("a", "Alpha", "body a")}

	handle, err := f.orch.StartBatch(context.Background(), entries, f.client, "summarize")
	require.NoError(t, err)

	// The request never resolves; a bounded wait must return.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, handle.Wait(ctx), context.DeadlineExceeded)
	assert.Equal(t, 0, handle.Completed())
}

func TestStartBatch_PassesInstructionAndText(t *testing.T) {
	f := newBatchFixture()
	entries := []domain.Entry{makeEntry("a", "Alpha", "plain body")}

	_, err := f.orch.StartBatch(context.Background(), entries, f.client, "be terse")
	require.NoError(t, err)

	require.Equal(t, 1, f.client.count())
	assert.Equal(t, "plain body", f.client.submissions[0].text)
	assert.Equal(t, "be terse", f.client.submissions[0].instruction)
}

func TestSummarizeSelected_UsesSelectionSnapshot(t *testing.T) {
	f := newBatchFixture()
	ctx := context.Background()

	for _, e := range []domain.Entry{
		makeEntry("a", "Alpha", "body a"),
		makeEntry("b", "Beta", "body b"),
		makeEntry("c", "Gamma", "body c"),
	} {
		e := e
		require.NoError(t, f.entries.SaveEntry(ctx, &e))
	}
	require.NoError(t, f.selection.Select(ctx, "c"))
	require.NoError(t, f.selection.Select(ctx, "a"))

	handle, err := f.orch.SummarizeSelected(ctx, f.client, "summarize")
	require.NoError(t, err)

	// Dispatched in selection order: c then a. Entry b is untouched.
	require.Equal(t, 2, f.client.count())
	assert.Equal(t, "body c", f.client.submissions[0].text)
	assert.Equal(t, "body a", f.client.submissions[1].text)
	assert.Equal(t, 2, handle.Total())
}

func TestSummarizeSelected_NoSelection(t *testing.T) {
	f := newBatchFixture()

	handle, err := f.orch.SummarizeSelected(context.Background(), f.client, "summarize")

	assert.ErrorIs(t, err, domain.ErrEmptySelection)
	assert.Nil(t, handle)
}

func TestSummarizeSelected_SkipsMissingEntries(t *testing.T) {
	f := newBatchFixture()
	ctx := context.Background()

	entry := makeEntry("a", "Alpha", "body a")
	require.NoError(t, f.entries.SaveEntry(ctx, &entry))
	require.NoError(t, f.selection.Select(ctx, "a"))
	require.NoError(t, f.selection.Select(ctx, "ghost"))

	handle, err := f.orch.SummarizeSelected(ctx, f.client, "summarize")
	require.NoError(t, err)

	assert.Equal(t, 1, handle.Total())
	assert.Equal(t, 1, f.client.count())
}
