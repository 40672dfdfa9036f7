package logging

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

var levelColors = map[string]string{
	"DEBUG": "\x1b[90m",
	"INFO":  "\x1b[34m",
	"WARN":  "\x1b[33m",
	"ERROR": "\x1b[31m",
}

const colorReset = "\x1b[0m"

// field is a flattened attribute; grouped keys are joined with dots.
type field struct {
	key   string
	value slog.Value
}

// consoleHandler writes one human-readable line per record:
//
//	2026-01-02T15:04:05Z INFO mastering[cold-open]: loudness measured input_i=-18.2
//
// component and slug are lifted out of the attributes into the prefix so
// lines for the same track line up while a batch runs.
type consoleHandler struct {
	mu        *sync.Mutex
	w         io.Writer
	level     *slog.LevelVar
	addSource bool
	colorize  bool

	// bound holds attributes from WithAttrs, already flattened.
	bound  []field
	groups []string
}

func newConsoleHandler(w io.Writer, lvl *slog.LevelVar, addSource, colorize bool) slog.Handler {
	return &consoleHandler{mu: new(sync.Mutex), w: w, level: lvl, addSource: addSource, colorize: colorize}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	if !h.Enabled(context.Background(), record.Level) {
		return nil
	}
	fields := append([]field(nil), h.bound...)
	record.Attrs(func(a slog.Attr) bool {
		fields = appendFlat(fields, h.groups, a)
		return true
	})
	component, slug, rest := liftPrefix(fields)

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	var b strings.Builder
	b.WriteString(ts.UTC().Format(time.RFC3339))
	b.WriteByte(' ')
	b.WriteString(h.label(record.Level))
	b.WriteByte(' ')
	switch {
	case component != "" && slug != "":
		b.WriteString(component + "[" + slug + "]: ")
	case component != "":
		b.WriteString(component + ": ")
	case slug != "":
		b.WriteString("[" + slug + "] ")
	}
	msg := strings.TrimSpace(record.Message)
	if msg == "" {
		msg = "(no message)"
	}
	b.WriteString(msg)
	if src := record.Source(); h.addSource && src != nil {
		b.WriteString(" [" + filepath.Base(src.File) + ":" + strconv.Itoa(src.Line) + "]")
	}
	for _, f := range rest {
		b.WriteString(" " + f.key + "=" + fieldValue(f.value))
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

// liftPrefix removes the first component and slug fields, returning their
// values and the remaining fields in order.
func liftPrefix(fields []field) (component, slug string, rest []field) {
	rest = fields[:0]
	for _, f := range fields {
		switch {
		case f.key == FieldComponent && component == "":
			component = plainValue(f.value)
		case f.key == FieldSlug && slug == "":
			slug = plainValue(f.value)
		case f.key == FieldComponent, f.key == FieldSlug, f.key == "":
		default:
			rest = append(rest, f)
		}
	}
	return component, slug, rest
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.bound = append([]field(nil), h.bound...)
	for _, a := range attrs {
		next.bound = appendFlat(next.bound, h.groups, a)
	}
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.groups = append(append([]string(nil), h.groups...), name)
	return &next
}

func (h *consoleHandler) label(level slog.Level) string {
	name := "DEBUG"
	switch {
	case level >= slog.LevelError:
		name = "ERROR"
	case level >= slog.LevelWarn:
		name = "WARN"
	case level >= slog.LevelInfo:
		name = "INFO"
	}
	if h.colorize {
		return levelColors[name] + name + colorReset
	}
	return name
}

func appendFlat(dst []field, groups []string, a slog.Attr) []field {
	if a.Equal(slog.Attr{}) {
		return dst
	}
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		if a.Key != "" {
			groups = append(append([]string(nil), groups...), a.Key)
		}
		for _, child := range v.Group() {
			dst = appendFlat(dst, groups, child)
		}
		return dst
	}
	key := a.Key
	if len(groups) > 0 {
		key = strings.Join(append(append([]string(nil), groups...), key), ".")
	}
	return append(dst, field{key: key, value: v})
}
