package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
)

// newJSONHandler writes one object per line. Timestamps are UTC RFC 3339
// under "ts", durations are human readable ("150ms") so key windows and
// download times read the same as in console output, and the console
// subject (app · stage) is repeated as "subject" for grep-friendly lines.
func newJSONHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return &subjectHandler{Handler: slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       lvl,
		AddSource:   addSource,
		ReplaceAttr: replaceJSONAttr,
	})}
}

func replaceJSONAttr(_ []string, attr slog.Attr) slog.Attr {
	switch attr.Key {
	case slog.TimeKey:
		attr.Key = "ts"
		if attr.Value.Kind() == slog.KindTime {
			attr.Value = slog.StringValue(attr.Value.Time().UTC().Format(time.RFC3339Nano))
		}
		return attr
	case slog.LevelKey:
		attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
		return attr
	case slog.SourceKey:
		if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
			attr.Value = slog.StringValue(fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
		}
		return attr
	}
	if attr.Value.Kind() == slog.KindDuration {
		attr.Value = slog.StringValue(attr.Value.Duration().String())
	}
	return attr
}

// subjectHandler remembers app and stage attributes bound through With so
// each record can carry the same subject the console header shows.
type subjectHandler struct {
	slog.Handler
	app    string
	stage  string
	groups int
}

func (h *subjectHandler) Handle(ctx context.Context, record slog.Record) error {
	app, stage := h.app, h.stage
	record.Attrs(func(a slog.Attr) bool {
		switch a.Key {
		case FieldApp:
			app = a.Value.String()
		case FieldStage:
			stage = a.Value.String()
		}
		return true
	})
	if subject := formatSubject(app, stage); subject != "" && h.groups == 0 {
		record = record.Clone()
		record.AddAttrs(slog.String("subject", subject))
	}
	return h.Handler.Handle(ctx, record)
}

func (h *subjectHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.Handler = h.Handler.WithAttrs(attrs)
	if h.groups == 0 {
		for _, a := range attrs {
			switch a.Key {
			case FieldApp:
				next.app = a.Value.String()
			case FieldStage:
				next.stage = a.Value.String()
			}
		}
	}
	return &next
}

func (h *subjectHandler) WithGroup(name string) slog.Handler {
	next := *h
	next.Handler = h.Handler.WithGroup(name)
	if name != "" {
		next.groups++
	}
	return &next
}
