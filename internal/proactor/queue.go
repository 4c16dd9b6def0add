package proactor

import (
	"sync"

	"github.com/nerrad567/gray-logic-scada/internal/message"
)

// Queue is an unbounded FIFO of envelopes. Put never blocks and is safe
// from any goroutine; one consumer takes envelopes with Get.
type Queue struct {
	mu     sync.Mutex
	items  []message.Envelope
	notify chan struct{}
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{notify: make(chan struct{}, 1)}
}

// Put appends env.
func (q *Queue) Put(env message.Envelope) {
	q.mu.Lock()
	q.items = append(q.items, env)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Get removes and returns the oldest envelope, waiting until one is
// available or stop is closed. ok is false only when stopped.
func (q *Queue) Get(stop <-chan struct{}) (env message.Envelope, ok bool) {
	for {
		if env, ok := q.TryGet(); ok {
			return env, true
		}
		select {
		case <-q.notify:
		case <-stop:
			return message.Envelope{}, false
		}
	}
}

// TryGet removes and returns the oldest envelope without waiting.
func (q *Queue) TryGet() (message.Envelope, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return message.Envelope{}, false
	}
	env := q.items[0]
	q.items[0] = message.Envelope{}
	q.items = q.items[1:]
	return env, true
}

// Len returns the number of queued envelopes.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
