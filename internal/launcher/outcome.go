package launcher

import (
	"fmt"

	"launcher/internal/history"
)

// Lifecycle stages reported per application.
const (
	StageDownload = "download"
	StageUnpack   = "unpack"
	StageLaunch   = "launch"
	StageWatch    = "watch"
	StageWait     = "wait"
)

// Outcome is the result of one stage for one application.
type Outcome struct {
	App      string
	Stage    string
	Result   string
	Err      error
	Detail   string
	PID      int
	ExitCode int
}

// Failed reports whether the stage ended in an error.
func (o Outcome) Failed() bool { return o.Result == history.ResultFailed }

func (o Outcome) String() string {
	switch {
	case o.Err != nil:
		return fmt.Sprintf("%s %s %s: %v", o.App, o.Stage, o.Result, o.Err)
	case o.Detail != "":
		return fmt.Sprintf("%s %s %s: %s", o.App, o.Stage, o.Result, o.Detail)
	default:
		return fmt.Sprintf("%s %s %s", o.App, o.Stage, o.Result)
	}
}

func succeeded(app, stage, detail string) Outcome {
	return Outcome{App: app, Stage: stage, Result: history.ResultOK, Detail: detail}
}

func failed(app, stage string, err error) Outcome {
	return Outcome{App: app, Stage: stage, Result: history.ResultFailed, Err: err}
}

func skipped(app, stage, detail string) Outcome {
	return Outcome{App: app, Stage: stage, Result: history.ResultSkipped, Detail: detail}
}

// Report collects every outcome of a run in the order they were decided.
type Report struct {
	Outcomes []Outcome
}

// Failures returns the failed outcomes.
func (r Report) Failures() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Failed() {
			out = append(out, o)
		}
	}
	return out
}

// ForApp returns the outcomes for one application.
func (r Report) ForApp(name string) []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.App == name {
			out = append(out, o)
		}
	}
	return out
}

// Find returns the outcome for app at stage.
func (r Report) Find(app, stage string) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.App == app && o.Stage == stage {
			return o, true
		}
	}
	return Outcome{}, false
}
