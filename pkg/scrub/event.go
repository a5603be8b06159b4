package scrub

import (
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ExecutionEvent is the record emitted once per rule application, success or
// failure.
type ExecutionEvent struct {
	RuleName   string
	Operation  string
	Columns    []string // resolved target columns
	RowsBefore int
	RowsAfter  int
	Duration   time.Duration
	Warnings   []Warning
	Err        error
}

// Sink receives ExecutionEvents. Implementations must be safe for use from
// a single Clean call; the engine emits sequentially.
type Sink interface {
	Emit(ExecutionEvent)
}

// NopSink discards events.
type NopSink struct{}

func (NopSink) Emit(ExecutionEvent) {}

// MemorySink retains events, mainly for tests and introspection.
type MemorySink struct {
	mu     sync.Mutex
	events []ExecutionEvent
}

func (s *MemorySink) Emit(ev ExecutionEvent) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
}

func (s *MemorySink) Events() []ExecutionEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ExecutionEvent(nil), s.events...)
}

// LogSink writes events through a zap logger.
type LogSink struct {
	log *zap.SugaredLogger
}

func NewLogSink(log *zap.SugaredLogger) *LogSink { return &LogSink{log: log} }

func (s *LogSink) Emit(ev ExecutionEvent) {
	fields := []any{
		"rule", ev.RuleName,
		"operation", ev.Operation,
		"columns", ev.Columns,
		"rows_before", ev.RowsBefore,
		"rows_after", ev.RowsAfter,
		"duration", ev.Duration,
	}
	for _, w := range ev.Warnings {
		fields = append(fields, "warning", w.Code+":"+w.Column)
	}
	if ev.Err != nil {
		fields = append(fields, "error", ev.Err)
		s.log.Errorw("rule failed", fields...)
		return
	}
	s.log.Infow("rule applied", fields...)
}

// Observability mirrors the observability block of the config file; it is
// consumed only here, to build a sink.
type Observability struct {
	Enabled       bool
	ServiceName   string
	ConsoleExport bool
}

// Sink builds the event sink the block describes: a console logger named
// after the service, or a no-op when disabled.
func (o Observability) Sink() Sink {
	if !o.Enabled || !o.ConsoleExport {
		return NopSink{}
	}
	enc := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(os.Stdout), zap.InfoLevel)
	name := o.ServiceName
	if name == "" {
		name = "scrub"
	}
	return NewLogSink(zap.New(core).Named(name).Sugar())
}
