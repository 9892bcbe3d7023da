package trace

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

const defaultRingSize = 4096

// Tracer receives trace events. Implementations must be goroutine-safe:
// preload emits from worker goroutines.
type Tracer interface {
	Emit(ev *Event)
	Flush() error
	Close() error
	Level() Level
	Enabled() bool
}

// StorageMode determines where events go.
type StorageMode uint8

const (
	ModeStream StorageMode = iota + 1 // written as they happen
	ModeRing                          // kept in memory, dumped at exit
	ModeBoth
)

func (m StorageMode) String() string {
	switch m {
	case ModeStream:
		return "stream"
	case ModeRing:
		return "ring"
	case ModeBoth:
		return "both"
	}
	return "unknown"
}

// ParseMode converts a flag value to StorageMode.
func ParseMode(s string) (StorageMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stream", "":
		return ModeStream, nil
	case "ring":
		return ModeRing, nil
	case "both":
		return ModeBoth, nil
	}
	return ModeStream, fmt.Errorf("invalid storage mode: %q (expected: stream|ring|both)", s)
}

// Config holds tracer configuration.
type Config struct {
	Level      Level
	Mode       StorageMode
	Format     Format    // FormatAuto picks by OutputPath
	Output     io.Writer // takes precedence over OutputPath
	OutputPath string    // "-" or "" is stderr
	RingSize   int
}

// New builds a tracer from cfg. LevelOff yields Nop; LevelError always
// records into a ring, since its events are only shown for failed runs.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	mode := cfg.Mode
	if cfg.Level == LevelError {
		mode = ModeRing
	}
	rec := &Recorder{level: cfg.Level, format: formatFor(cfg.Format, cfg.OutputPath)}
	switch mode {
	case ModeStream, ModeBoth:
		w, err := openOutput(cfg)
		if err != nil {
			return nil, err
		}
		rec.out = w
		if mode == ModeBoth {
			rec.ring = NewRing(cfg.RingSize)
		}
	case ModeRing:
		rec.ring = NewRing(cfg.RingSize)
	default:
		return nil, fmt.Errorf("unknown storage mode: %v", cfg.Mode)
	}
	return rec, nil
}

func openOutput(cfg Config) (io.Writer, error) {
	if cfg.Output != nil {
		return cfg.Output, nil
	}
	if cfg.OutputPath == "" || cfg.OutputPath == "-" {
		return stderr{}, nil
	}
	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("open trace output: %w", err)
	}
	return f, nil
}

// stderr is not closed by Recorder.Close.
type stderr struct{}

func (stderr) Write(p []byte) (int, error) { return os.Stderr.Write(p) }

// Recorder is the Tracer behind New. It writes events to an output,
// keeps them in a ring, or both.
type Recorder struct {
	level  Level
	format Format

	mu   sync.Mutex
	out  io.Writer
	line []byte
	ring *Ring
}

// NewRecorder returns a recorder writing to out and, when ringSize > 0,
// also keeping the last ringSize events. out may be nil.
func NewRecorder(level Level, out io.Writer, format Format, ringSize int) *Recorder {
	rec := &Recorder{level: level, out: out, format: formatFor(format, "")}
	if ringSize > 0 {
		rec.ring = NewRing(ringSize)
	}
	return rec
}

// Emit stamps the sequence number and records ev.
func (r *Recorder) Emit(ev *Event) {
	if ev == nil || !r.level.ShouldEmit(ev.Scope) {
		return
	}
	ev.Seq = NextSeq()
	if r.ring != nil {
		r.ring.Push(ev)
	}
	if r.out == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.line = appendEvent(r.line[:0], ev, r.format)
	// трассировка не должна ронять прогон
	_, _ = r.out.Write(r.line) //nolint:errcheck
}

// Flush flushes the output when it buffers.
func (r *Recorder) Flush() error {
	if f, ok := r.out.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// Close flushes and closes the output if it is closable.
func (r *Recorder) Close() error {
	err := r.Flush()
	if c, ok := r.out.(io.Closer); ok {
		err = errors.Join(err, c.Close())
	}
	return err
}

func (r *Recorder) Level() Level  { return r.level }
func (r *Recorder) Enabled() bool { return r.level > LevelOff }

// Ring returns the in-memory buffer, nil in stream mode.
func (r *Recorder) Ring() *Ring { return r.ring }

// RingOf returns the ring behind t, if it has one.
func RingOf(t Tracer) *Ring {
	if rec, ok := t.(*Recorder); ok {
		return rec.ring
	}
	return nil
}
