package driven

// Notifier surfaces batch progress to the user. Notifications are
// advisory: implementations must not block or fail the batch.
type Notifier interface {
	// Progress reports that another entry has completed.
	Progress(completed, total int)

	// Skipped reports that an entry had no extractable content and was
	// counted as completed without a request.
	Skipped(title string)

	// Failed reports that an entry's request failed with a diagnostic.
	Failed(title string, detail error)
}
