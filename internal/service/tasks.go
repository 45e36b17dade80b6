package service

import (
	"context"
	"log/slog"
	"sync"
)

// Tasks is the bounded queue for fire-and-forget side effects (mention
// parsing, AI replies, notification fan-out triggered off the hot path).
// When the queue is full the task is dropped with a log record rather than
// letting submitters spawn unbounded work.
type Tasks struct {
	queue chan func(context.Context)
	wg    sync.WaitGroup
	once  sync.Once
}

func NewTasks(queueSize, workers int) *Tasks {
	if queueSize <= 0 {
		queueSize = 256
	}
	if workers <= 0 {
		workers = 4
	}

	t := &Tasks{queue: make(chan func(context.Context), queueSize)}
	for i := 0; i < workers; i++ {
		t.wg.Add(1)
		go t.worker()
	}
	return t
}

// Submit enqueues fn; returns false when the queue is saturated.
func (t *Tasks) Submit(fn func(context.Context)) bool {
	select {
	case t.queue <- fn:
		return true
	default:
		slog.Warn("side-effect queue full, task dropped")
		return false
	}
}

// Close stops accepting tasks and waits for in-flight ones.
func (t *Tasks) Close() {
	t.once.Do(func() { close(t.queue) })
	t.wg.Wait()
}

func (t *Tasks) worker() {
	defer t.wg.Done()
	for fn := range t.queue {
		func() {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("side-effect task panic", "panic", r)
				}
			}()
			fn(context.Background())
		}()
	}
}
