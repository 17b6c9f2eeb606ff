package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// FileTeeHandler wraps an slog.Handler and additionally appends every record
// to a log file, so non-interactive runs leave a collectable trace next to
// the artifacts they produce.
//
// Implementation follows the slog handler guide for shared state across
// WithAttrs/WithGroup: https://pkg.go.dev/golang.org/x/example/slog-handler-guide
type FileTeeHandler struct {
	slog.Handler
	path     string
	preAttrs []slog.Attr // attrs added via WithAttrs, replayed into file lines
}

// NewFileTeeHandler creates a handler that passes records to wrapped and
// appends them to the file at path.
func NewFileTeeHandler(wrapped slog.Handler, path string) *FileTeeHandler {
	return &FileTeeHandler{
		Handler: wrapped,
		path:    path,
	}
}

// Handle passes the record to the wrapped handler, then appends it to the
// log file. File write failures are reported once through the default logger
// rather than failing the record.
func (h *FileTeeHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.Handler.Handle(ctx, r); err != nil {
		return err
	}
	h.appendToFile(r)
	return nil
}

// appendToFile writes one formatted line. The file is opened and closed per
// write to avoid holding a handle across the whole run.
func (h *FileTeeHandler) appendToFile(r slog.Record) {
	// Format log line: timestamp LEVEL message key=value key=value...
	line := fmt.Sprintf("%s %s %s", r.Time.Format(time.RFC3339), r.Level.String(), r.Message)
	for _, a := range h.preAttrs {
		line += fmt.Sprintf(" %s=%v", a.Key, a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		line += fmt.Sprintf(" %s=%v", a.Key, a.Value)
		return true
	})
	line += "\n"

	if err := os.MkdirAll(filepath.Dir(h.path), 0755); err != nil {
		// Use the default logger, not h, to avoid recursing into this handler.
		slog.Warn("failed to create log directory", "path", h.path, "error", err)
		return
	}
	f, err := os.OpenFile(h.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		slog.Warn("failed to open log file", "path", h.path, "error", err)
		return
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		slog.Warn("failed to write log file", "path", h.path, "error", err)
	}
}

// Enabled reports whether the wrapped handler handles records at the given
// level.
func (h *FileTeeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.Handler.Enabled(ctx, level)
}

// WithAttrs returns a new handler with the given attributes. Attrs are
// tracked locally so lines written to the file carry attrs bound via With().
func (h *FileTeeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newPreAttrs := make([]slog.Attr, len(h.preAttrs), len(h.preAttrs)+len(attrs))
	copy(newPreAttrs, h.preAttrs)
	newPreAttrs = append(newPreAttrs, attrs...)

	return &FileTeeHandler{
		Handler:  h.Handler.WithAttrs(attrs),
		path:     h.path,
		preAttrs: newPreAttrs,
	}
}

// WithGroup returns a new handler with the given group name. Groups are not
// reflected in file lines; attrs inside groups still appear flat.
func (h *FileTeeHandler) WithGroup(name string) slog.Handler {
	return &FileTeeHandler{
		Handler:  h.Handler.WithGroup(name),
		path:     h.path,
		preAttrs: h.preAttrs,
	}
}
