package trace

import (
	"bufio"
	"io"
	"sync"
)

// StreamTracer writes each event as soon as it is emitted.
type StreamTracer struct {
	mu     sync.Mutex
	w      io.Writer
	buf    *bufio.Writer // set when the tracer owns a file
	closer io.Closer
	level  Level
	format Format
}

// NewStreamTracer writes to w without buffering and never closes it.
func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	if format == FormatAuto {
		format = FormatText
	}
	return &StreamTracer{w: w, level: level, format: format}
}

// newOwnedStream buffers writes to wc and closes it on Close.
func newOwnedStream(wc io.WriteCloser, level Level, format Format) *StreamTracer {
	t := NewStreamTracer(wc, level, format)
	t.buf = bufio.NewWriter(wc)
	t.w = t.buf
	t.closer = wc
	return t
}

func (t *StreamTracer) Emit(ev *Event) {
	if ev.Kind != KindHeartbeat && !t.level.ShouldEmit(ev.Scope) {
		return
	}
	ev.Seq = NextSeq()
	data := FormatEvent(ev, t.format)
	if data == nil {
		return
	}
	t.mu.Lock()
	_, _ = t.w.Write(data) //nolint:errcheck // tracing never fails a resolution
	t.mu.Unlock()
}

func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.buf != nil {
		return t.buf.Flush()
	}
	return nil
}

func (t *StreamTracer) Close() error {
	err := t.Flush()
	if t.closer == nil {
		return err
	}
	if cerr := t.closer.Close(); err == nil {
		err = cerr
	}
	return err
}

func (t *StreamTracer) Level() Level  { return t.level }
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }
