package history

import "time"

// Result values recorded for an application stage.
const (
	ResultOK      = "ok"
	ResultFailed  = "failed"
	ResultSkipped = "skipped"
)

// Outcome is one application's result for one lifecycle stage.
type Outcome struct {
	ID        int64
	RunID     string
	App       string
	Stage     string
	Result    string
	Detail    string
	CreatedAt time.Time
}

// RenderEntry is one renderer launch triggered by a replay.
type RenderEntry struct {
	ID         int64
	RunID      string
	ReplayPath string
	OutputName string
	Settings   string
	PID        int
	Error      string
	CreatedAt  time.Time
}
