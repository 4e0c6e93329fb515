package storage

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/dyike/WealthGo/internal/models"
)

var ErrRecorderClosed = errors.New("recorder is closed")

// MessageWriter is the durable side of the recorder.
type MessageWriter interface {
	RecordMessage(ctx context.Context, sessionID string, msg models.ChatMessage) error
}

type recordEvent struct {
	sessionID string
	msg       models.ChatMessage
}

// AsyncRecorder queues transcript writes so the chat pipeline never waits
// on disk. Writes are applied in order by a single goroutine.
type AsyncRecorder struct {
	writer MessageWriter
	logger *zap.Logger

	events chan recordEvent
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewAsyncRecorder(writer MessageWriter, logger *zap.Logger) *AsyncRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &AsyncRecorder{
		writer: writer,
		logger: logger,
		events: make(chan recordEvent, 256),
	}
	r.wg.Add(1)
	go r.loop()
	return r
}

func (r *AsyncRecorder) loop() {
	defer r.wg.Done()
	ctx := context.Background()
	for ev := range r.events {
		if err := r.writer.RecordMessage(ctx, ev.sessionID, ev.msg); err != nil {
			r.logger.Warn("persist message failed",
				zap.String("session_id", ev.sessionID),
				zap.String("message_id", ev.msg.ID),
				zap.Error(err))
		}
	}
}

// RecordMessage enqueues msg. It blocks only while the queue is full.
func (r *AsyncRecorder) RecordMessage(ctx context.Context, sessionID string, msg models.ChatMessage) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return ErrRecorderClosed
	}
	select {
	case r.events <- recordEvent{sessionID: sessionID, msg: msg}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close flushes queued writes and stops the worker.
func (r *AsyncRecorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.events)
	r.mu.Unlock()
	r.wg.Wait()
}
