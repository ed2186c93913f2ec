package launchrun

import (
	"context"
	"sync"

	"launcher/internal/history"
	"launcher/internal/launcher"
)

// journal forwards outcomes to the history store until it is closed. After
// close, records are dropped so a coordinator still running past shutdown
// never writes to a closed database.
type journal struct {
	mu     sync.Mutex
	store  launcher.Recorder
	closed bool
}

func newJournal(store launcher.Recorder) *journal {
	return &journal{store: store}
}

func (j *journal) RecordOutcome(ctx context.Context, outcome history.Outcome) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return nil
	}
	return j.store.RecordOutcome(ctx, outcome)
}

func (j *journal) RecordRender(ctx context.Context, entry history.RenderEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return nil
	}
	return j.store.RecordRender(ctx, entry)
}

// close waits for any in-flight record and reports whether the journal was
// still open.
func (j *journal) close() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	wasOpen := !j.closed
	j.closed = true
	return wasOpen
}
