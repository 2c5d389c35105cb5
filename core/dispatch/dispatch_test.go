package dispatch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type recordingLogger struct {
	mu     sync.Mutex
	warns  []string
	errors []string
}

func (l *recordingLogger) Debug(string, ...interface{}) {}
func (l *recordingLogger) Info(string, ...interface{})  {}
func (l *recordingLogger) Fatal(string, ...interface{}) {}
func (l *recordingLogger) Warn(msg string, _ ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}
func (l *recordingLogger) Error(msg string, _ ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, msg)
}

func TestDispatcherRunsTasks(t *testing.T) {
	d := New(&recordingLogger{})
	defer d.Close()

	var ran atomic.Int32
	done := make(chan struct{})
	d.Enqueue(Task{Name: "ok", Run: func(context.Context) error {
		ran.Add(1)
		close(done)
		return nil
	}})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task never ran")
	}
	if ran.Load() != 1 {
		t.Errorf("ran = %d; want 1", ran.Load())
	}
}

func TestDispatcherRetriesThenLogs(t *testing.T) {
	logger := &recordingLogger{}
	d := New(logger)

	var attempts atomic.Int32
	d.Enqueue(Task{Name: "doomed", Run: func(context.Context) error {
		attempts.Add(1)
		return errors.New("boom")
	}})
	d.Close() // drains the queue

	if got := attempts.Load(); got != maxAttempts {
		t.Errorf("attempts = %d; want %d", got, maxAttempts)
	}
	logger.mu.Lock()
	defer logger.mu.Unlock()
	if len(logger.errors) != 1 {
		t.Errorf("errors logged = %d; failures must be logged, never propagated", len(logger.errors))
	}
}

func TestDispatcherDropsWhenClosed(t *testing.T) {
	logger := &recordingLogger{}
	d := New(logger)
	d.Close()

	var ran atomic.Int32
	d.Enqueue(Task{Name: "late", Run: func(context.Context) error {
		ran.Add(1)
		return nil
	}})

	if ran.Load() != 0 {
		t.Error("task ran after Close")
	}
	logger.mu.Lock()
	defer logger.mu.Unlock()
	if len(logger.warns) != 1 {
		t.Errorf("warns = %d; a dropped task must be warned about", len(logger.warns))
	}
}

func TestDispatcherDropsWhenQueueFull(t *testing.T) {
	logger := &recordingLogger{}
	d := New(logger, 1)

	block := make(chan struct{})
	release := func() { close(block) }
	defer func() {
		release()
		d.Close()
	}()

	// occupy the worker, then fill the single queue slot
	d.Enqueue(Task{Name: "busy", Run: func(context.Context) error {
		<-block
		return nil
	}})
	time.Sleep(50 * time.Millisecond)
	d.Enqueue(Task{Name: "queued", Run: func(context.Context) error { return nil }})
	d.Enqueue(Task{Name: "overflow", Run: func(context.Context) error { return nil }})

	logger.mu.Lock()
	defer logger.mu.Unlock()
	if len(logger.warns) != 1 {
		t.Errorf("warns = %d; overflow must drop with a warning", len(logger.warns))
	}
}
