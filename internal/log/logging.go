// Package log builds the process logger and the raw HID report dumper.
//
// Without a log file, records below error go to stdout and error and above
// go to stderr, so a service manager can split the two streams.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// LevelTrace sits below debug and gates per-report hex dumps.
const LevelTrace slog.Level = -8

// ParseLevel maps a config string to a slog level. Empty or unknown values
// fall back to info.
func ParseLevel(s string) slog.Level {
	switch s {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// multiHandler fans each record out to every child handler.
type multiHandler []slog.Handler

func (m multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m multiHandler) Handle(ctx context.Context, r slog.Record) error {
	var first error
	for _, h := range m {
		if err := h.Handle(ctx, r); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make(multiHandler, len(m))
	for i, h := range m {
		next[i] = h.WithAttrs(attrs)
	}
	return next
}

func (m multiHandler) WithGroup(name string) slog.Handler {
	next := make(multiHandler, len(m))
	for i, h := range m {
		next[i] = h.WithGroup(name)
	}
	return next
}

const (
	bandFloor = slog.Level(-1 << 24)
	bandCeil  = slog.Level(1 << 24)
)

// levelBand passes only records with min <= level <= max on to next.
type levelBand struct {
	min, max slog.Level
	next     slog.Handler
}

func (b levelBand) in(l slog.Level) bool { return l >= b.min && l <= b.max }

func (b levelBand) Enabled(ctx context.Context, level slog.Level) bool {
	return b.in(level) && b.next.Enabled(ctx, level)
}

func (b levelBand) Handle(ctx context.Context, r slog.Record) error {
	if !b.in(r.Level) {
		return nil
	}
	return b.next.Handle(ctx, r)
}

func (b levelBand) WithAttrs(attrs []slog.Attr) slog.Handler {
	return levelBand{min: b.min, max: b.max, next: b.next.WithAttrs(attrs)}
}

func (b levelBand) WithGroup(name string) slog.Handler {
	return levelBand{min: b.min, max: b.max, next: b.next.WithGroup(name)}
}

// SetupLogger builds the process logger. With a log file, everything goes to
// the file and to stderr; the returned closers own the opened file.
func SetupLogger(logLevel, logFile string) (*slog.Logger, []io.Closer, error) {
	level := ParseLevel(logLevel)

	if logFile == "" {
		stdout := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
		stderr := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})
		h := multiHandler{
			levelBand{min: bandFloor, max: slog.LevelError - 1, next: stdout},
			levelBand{min: slog.LevelError, max: bandCeil, next: stderr},
		}
		return slog.New(h), nil, nil
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	h := multiHandler{
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}),
		slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}),
	}
	return slog.New(h), []io.Closer{f}, nil
}
