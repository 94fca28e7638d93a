package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
)

// logRecordMsg carries a slog record into the status bar.
type logRecordMsg struct {
	summary string
	level   slog.Level
}

// LogHandler is a slog.Handler that routes records at or above its level
// into a running program as status bar messages. Records logged before
// SetProgram are dropped. Handle never waits for the event loop, so it is
// safe to log from code the loop itself is blocked on. Handlers derived with WithAttrs/WithGroup share
// the program pointer.
type LogHandler struct {
	level   slog.Leveler
	program *atomic.Pointer[tea.Program]
	attrs   []slog.Attr
	group   string
}

func NewLogHandler(level slog.Leveler) *LogHandler {
	return &LogHandler{level: level, program: &atomic.Pointer[tea.Program]{}}
}

// SetProgram starts delivery to p.
func (h *LogHandler) SetProgram(p *tea.Program) { h.program.Store(p) }

func (h *LogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *LogHandler) Handle(_ context.Context, r slog.Record) error {
	p := h.program.Load()
	if p == nil {
		return nil
	}
	msg := logRecordMsg{summary: h.summary(r), level: r.Level}
	go p.Send(msg)
	return nil
}

// summary renders "message (key=value, ...)".
func (h *LogHandler) summary(r slog.Record) string {
	parts := make([]string, 0, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		parts = append(parts, fmt.Sprintf("%s=%s", a.Key, a.Value))
	}
	r.Attrs(func(a slog.Attr) bool {
		parts = append(parts, fmt.Sprintf("%s=%s", h.qualify(a.Key), a.Value))
		return true
	})
	if len(parts) == 0 {
		return r.Message
	}
	return r.Message + " (" + strings.Join(parts, ", ") + ")"
}

func (h *LogHandler) qualify(key string) string {
	if h.group == "" {
		return key
	}
	return h.group + "." + key
}

func (h *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append([]slog.Attr(nil), h.attrs...)
	for _, a := range attrs {
		a.Key = h.qualify(a.Key)
		c.attrs = append(c.attrs, a)
	}
	return &c
}

func (h *LogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	if c.group != "" {
		name = c.group + "." + name
	}
	c.group = name
	return &c
}
