// Package trace provides lightweight leveled tracing for registry loading
// and dynamic type resolution. Tracing is best-effort: a failed write never
// disturbs the operation being traced.
package trace

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff    Level = iota // no tracing
	LevelOp                  // top-level operations (load, resolve, synthesize)
	LevelDetail              // per-type and per-read events
	LevelDebug               // everything
)

func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelOp:
		return "op"
	case LevelDetail:
		return "detail"
	case LevelDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// ParseLevel converts a string to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "off":
		return LevelOff, nil
	case "op":
		return LevelOp, nil
	case "detail":
		return LevelDetail, nil
	case "debug":
		return LevelDebug, nil
	default:
		return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|op|detail|debug)", s)
	}
}

// Event is a single trace record.
type Event struct {
	Time   time.Time
	Seq    uint64
	Level  Level // the level the event belongs to, not the tracer's threshold
	Name   string
	Detail string
	Extra  map[string]string
}

// Tracer receives trace events. Implementations must be goroutine-safe.
type Tracer interface {
	Emit(ev Event)
	Flush() error
	Close() error
	Level() Level
	Enabled() bool
}

// Point emits an instant event through tr, skipping all work when the
// tracer would drop it anyway.
func Point(tr Tracer, level Level, name, detail string) {
	if tr == nil || !tr.Enabled() || level > tr.Level() {
		return
	}
	tr.Emit(Event{Time: time.Now(), Level: level, Name: name, Detail: detail})
}

type nopTracer struct{}

func (nopTracer) Emit(Event)    {}
func (nopTracer) Flush() error  { return nil }
func (nopTracer) Close() error  { return nil }
func (nopTracer) Level() Level  { return LevelOff }
func (nopTracer) Enabled() bool { return false }

// Nop is the package-level singleton no-op tracer.
var Nop Tracer = nopTracer{}

var seq atomic.Uint64

// StreamTracer writes logfmt-style lines immediately to an io.Writer.
type StreamTracer struct {
	mu    sync.Mutex
	w     io.Writer
	level Level
}

// NewStreamTracer creates a tracer writing to w at the given threshold.
func NewStreamTracer(w io.Writer, level Level) *StreamTracer {
	return &StreamTracer{w: w, level: level}
}

// Emit writes the event as one line. Write errors are swallowed so tracing
// never fails the traced operation.
func (t *StreamTracer) Emit(ev Event) {
	if ev.Level > t.level {
		return
	}
	ev.Seq = seq.Add(1)
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "ts=%s seq=%d level=%s name=%s",
		ev.Time.Format("15:04:05.000000"), ev.Seq, ev.Level, quoteIfNeeded(ev.Name))
	if ev.Detail != "" {
		fmt.Fprintf(&sb, " detail=%s", quoteIfNeeded(ev.Detail))
	}
	if len(ev.Extra) > 0 {
		keys := make([]string, 0, len(ev.Extra))
		for k := range ev.Extra {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&sb, " %s=%s", k, quoteIfNeeded(ev.Extra[k]))
		}
	}
	sb.WriteByte('\n')

	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = io.WriteString(t.w, sb.String())
}

// Flush delegates to the writer when it buffers.
func (t *StreamTracer) Flush() error {
	if flusher, ok := t.w.(interface{ Flush() error }); ok {
		return flusher.Flush()
	}
	return nil
}

// Close flushes and closes the writer if it implements io.Closer.
func (t *StreamTracer) Close() error {
	if err := t.Flush(); err != nil {
		return err
	}
	if closer, ok := t.w.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Level returns the tracer's threshold.
func (t *StreamTracer) Level() Level { return t.level }

// Enabled reports whether any events can pass.
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }

func quoteIfNeeded(s string) string {
	if strings.ContainsAny(s, " \t\"=") || s == "" {
		return fmt.Sprintf("%q", s)
	}
	return s
}
