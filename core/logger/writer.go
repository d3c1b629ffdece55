package logger

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"sync"
)

// sink is one buffered output that only takes records at or above min.
type sink struct {
	out *bufio.Writer
	min slog.Level
}

type entry struct {
	level slog.Level
	line  []byte
}

// asyncWriter fans formatted lines out to level-filtered sinks on a single
// goroutine, so handlers never block on file I/O.
type asyncWriter struct {
	queue    chan entry
	flushReq chan chan error
	done     chan struct{}
	once     sync.Once
	bufSize  int

	mu       sync.Mutex
	sinks    []sink
	writeErr error
}

// newAsyncWriter starts a writer whose sinks take every level.
func newAsyncWriter(writers []io.Writer, bufSize int) *asyncWriter {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	w := &asyncWriter{
		queue:    make(chan entry, 256),
		flushReq: make(chan chan error),
		done:     make(chan struct{}),
		bufSize:  bufSize,
	}
	for _, out := range writers {
		w.addSink(out, slog.LevelDebug)
	}
	go w.loop()
	return w
}

// addSink attaches out for records at or above minLevel.
func (w *asyncWriter) addSink(out io.Writer, minLevel slog.Level) {
	if out == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sinks = append(w.sinks, sink{out: bufio.NewWriterSize(out, w.bufSize), min: minLevel})
}

func (w *asyncWriter) loop() {
	defer close(w.done)
	for {
		select {
		case e, ok := <-w.queue:
			if !ok {
				_ = w.flushAll()
				return
			}
			if err := w.writeAll(e); err != nil {
				w.setErr(err)
			}
		case ack := <-w.flushReq:
			ack <- w.flushAll()
		}
	}
}

// Write queues a copy of line for every sink that accepts level. A full
// queue blocks rather than drops; order records are not sampled away.
func (w *asyncWriter) Write(level slog.Level, line []byte) error {
	if err := w.getErr(); err != nil {
		return err
	}
	if len(line) == 0 {
		return nil
	}
	w.queue <- entry{level: level, line: append([]byte(nil), line...)}
	return nil
}

// Flush waits until every queued line reached the sinks.
func (w *asyncWriter) Flush() error {
	if err := w.getErr(); err != nil {
		return err
	}
	ack := make(chan error, 1)
	select {
	case w.flushReq <- ack:
		return <-ack
	case <-w.done:
		return w.getErr()
	}
}

// Close drains the queue and reports the first write error.
func (w *asyncWriter) Close() error {
	w.once.Do(func() { close(w.queue) })
	<-w.done
	return w.getErr()
}

func (w *asyncWriter) writeAll(e entry) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, s := range w.sinks {
		if e.level < s.min {
			continue
		}
		if _, err := s.out.Write(e.line); err != nil {
			return err
		}
		if err := s.out.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func (w *asyncWriter) flushAll() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	var errs []error
	for _, s := range w.sinks {
		if err := s.out.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (w *asyncWriter) getErr() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.writeErr
}

func (w *asyncWriter) setErr(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.writeErr == nil {
		w.writeErr = err
	}
}
