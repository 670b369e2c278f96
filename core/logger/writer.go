package logger

import (
	"errors"
	"io"
	"sync"
)

var errWriterClosed = errors.New("logger: writer closed")

// asyncWriter fans formatted lines out to its sinks from a single goroutine,
// so handlers never block on slow files or terminals.
type asyncWriter struct {
	queue chan []byte
	flush chan chan struct{}
	done  chan struct{}
	sinks []io.Writer

	// mu guards closed; Write holds it shared while queueing so Close cannot close the queue under it.
	mu     sync.RWMutex
	closed bool

	errMu sync.Mutex
	err   error
}

func newAsyncWriter(writers []io.Writer, queueSize int) *asyncWriter {
	if queueSize <= 0 {
		queueSize = 256
	}
	sinks := make([]io.Writer, 0, len(writers))
	for _, w := range writers {
		if w != nil {
			sinks = append(sinks, w)
		}
	}
	w := &asyncWriter{
		queue: make(chan []byte, queueSize),
		flush: make(chan chan struct{}),
		done:  make(chan struct{}),
		sinks: sinks,
	}
	go w.run()
	return w
}

func (w *asyncWriter) run() {
	defer close(w.done)
	for {
		select {
		case line, ok := <-w.queue:
			if !ok {
				return
			}
			w.fanOut(line)
		case ack := <-w.flush:
			// drain what was queued before the flush request
			for n := len(w.queue); n > 0; n-- {
				w.fanOut(<-w.queue)
			}
			close(ack)
		}
	}
}

func (w *asyncWriter) fanOut(line []byte) {
	for _, sink := range w.sinks {
		if _, err := sink.Write(line); err != nil {
			w.setErr(err)
		}
	}
}

// Write copies p and queues it. It blocks only when the queue is full.
func (w *asyncWriter) Write(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	if err := w.Err(); err != nil {
		return err
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return errWriterClosed
	}
	w.queue <- append([]byte(nil), p...)
	return nil
}

// Flush returns once every line queued before the call reached the sinks.
func (w *asyncWriter) Flush() error {
	w.mu.RLock()
	closed := w.closed
	w.mu.RUnlock()
	if closed {
		return w.Err()
	}
	ack := make(chan struct{})
	select {
	case w.flush <- ack:
		<-ack
	case <-w.done:
	}
	return w.Err()
}

// Close drains the queue and stops the writer. It is safe to call more than once.
func (w *asyncWriter) Close() error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()
	<-w.done
	return w.Err()
}

// Err returns the first sink error.
func (w *asyncWriter) Err() error {
	w.errMu.Lock()
	defer w.errMu.Unlock()
	return w.err
}

func (w *asyncWriter) setErr(err error) {
	w.errMu.Lock()
	defer w.errMu.Unlock()
	if w.err == nil {
		w.err = err
	}
}
