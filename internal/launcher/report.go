package launcher

import (
	"context"
	"errors"
	"fmt"

	"launcher/internal/apps"
	"launcher/internal/download"
	"launcher/internal/history"
	"launcher/internal/logging"
	"launcher/internal/replaywatch"
)

// report logs an outcome and journals it, returning it unchanged.
func (c *Coordinator) report(ctx context.Context, o Outcome) Outcome {
	attrs := []logging.Attr{
		logging.App(o.App),
		logging.Stage(o.Stage),
		logging.EventType(o.Stage+"_"+o.Result),
	}
	if o.Detail != "" {
		attrs = append(attrs, logging.String("detail", o.Detail))
	}
	if o.PID > 0 {
		attrs = append(attrs, logging.Int("pid", o.PID))
	}

	switch o.Result {
	case history.ResultFailed:
		hint, impact := failureGuidance(o)
		attrs = append(attrs, logging.Error(o.Err))
		attrs = append(attrs, logging.Guidance(hint, impact)...)
		logging.WarnWithContext(c.logger, apps.DisplayName(o.App)+" "+o.Stage+" failed", o.Stage+"_failed", attrs...)
	case history.ResultSkipped:
		c.logger.Debug(apps.DisplayName(o.App)+" "+o.Stage+" skipped", logging.Args(attrs...)...)
	default:
		c.logger.Info(apps.DisplayName(o.App)+" "+o.Stage+" ok", logging.Args(attrs...)...)
	}

	if c.recorder != nil {
		entry := history.Outcome{RunID: c.runID, App: o.App, Stage: o.Stage, Result: o.Result, Detail: o.Detail}
		if o.Err != nil {
			entry.Detail = o.Err.Error()
		}
		if err := c.recorder.RecordOutcome(ctx, entry); err != nil {
			c.logger.Debug("history record failed", logging.Error(err))
		}
	}
	return o
}

func (c *Coordinator) recordRender(ctx context.Context, r replaywatch.Render) {
	if c.recorder == nil {
		return
	}
	entry := history.RenderEntry{
		RunID:      c.runID,
		ReplayPath: r.ReplayPath,
		OutputName: r.OutputName,
		Settings:   r.Settings,
		PID:        r.PID,
		CreatedAt:  r.Time,
	}
	if r.Err != nil {
		entry.Error = r.Err.Error()
	}
	if err := c.recorder.RecordRender(context.WithoutCancel(ctx), entry); err != nil {
		c.logger.Debug("history render record failed", logging.Error(err))
	}
}

func failureGuidance(o Outcome) (hint, impact string) {
	name := apps.DisplayName(o.App)
	impact = fmt.Sprintf("%s will not run this session", name)
	switch {
	case errors.Is(o.Err, apps.ErrDownloadFailed):
		hint = "check network access and the download_url in the config"
	case errors.Is(o.Err, download.ErrExtract):
		hint = fmt.Sprintf("delete the %s install directory to retry the download", name)
	case errors.Is(o.Err, apps.ErrAppNotFound):
		hint = "set path and executable_name, or a download_url, in the config"
	case errors.Is(o.Err, apps.ErrAppLaunch):
		hint = "verify the executable runs on this system"
	case errors.Is(o.Err, apps.ErrAppWait):
		hint = "the process may still be running; check it manually"
		impact = fmt.Sprintf("%s exit status unknown", name)
	case o.Stage == StageWatch:
		hint = "check the replays_dir and render_key settings"
		impact = "replays will not be rendered automatically"
	default:
		hint = "check logs for details"
	}
	return hint, impact
}
