package events

import (
	"io"
	"log/slog"
)

// LogSubscriber writes every event as one structured log record.
type LogSubscriber struct {
	logger *slog.Logger
}

func NewLogSubscriber(logger *slog.Logger) *LogSubscriber {
	return &LogSubscriber{logger: logger}
}

// NewTextLogSubscriber logs to w with a text handler at info level.
func NewTextLogSubscriber(w io.Writer) *LogSubscriber {
	return NewLogSubscriber(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})))
}

func (s *LogSubscriber) Handle(e Event) {
	attrs := []any{"project_id", e.ProjectID}
	if e.Node != nil {
		attrs = append(attrs, "node_id", e.Node.ID(), "node_type", string(e.Node.Type()), "node_name", e.Node.Name())
	}
	s.logger.Info(string(e.Type), attrs...)
}
