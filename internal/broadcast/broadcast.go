// Package broadcast implements a publish/subscribe fan-out with a bounded
// replay buffer. Late subscribers receive the most recent published values
// before live delivery begins.
package broadcast

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Broadcaster fans published values out to any number of subscribers.
// Publish never blocks: a subscriber whose channel is full has the value
// dropped (and logged) rather than stalling the event loop.
type Broadcaster[T any] struct {
	logger *slog.Logger

	mu      sync.Mutex
	subs    map[uuid.UUID]chan T
	replay  *ring[T]
	chanCap int
	closed  bool

	published int64
	dropped   int64
}

// Subscription is one logical attachment to a Broadcaster.
type Subscription[T any] struct {
	id     uuid.UUID
	c      <-chan T
	cancel func()
}

// C returns the delivery channel. It is closed when the subscription is
// canceled or the broadcaster shuts down.
func (s *Subscription[T]) C() <-chan T { return s.c }

// Cancel detaches the subscription. Idempotent.
func (s *Subscription[T]) Cancel() { s.cancel() }

// New creates a Broadcaster keeping the last replaySize published values.
func New[T any](replaySize int, logger *slog.Logger) *Broadcaster[T] {
	if logger == nil {
		logger = slog.Default()
	}
	chanCap := replaySize * 2
	if chanCap < 16 {
		chanCap = 16
	}
	return &Broadcaster[T]{
		logger:  logger,
		subs:    make(map[uuid.UUID]chan T),
		replay:  newRing[T](replaySize),
		chanCap: chanCap,
	}
}

// Subscribe attaches a new subscriber. The replay buffer is delivered
// first, then live values in publish order.
func (b *Broadcaster[T]) Subscribe() *Subscription[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.New()
	ch := make(chan T, b.chanCap)

	if b.closed {
		close(ch)
		return &Subscription[T]{id: id, c: ch, cancel: func() {}}
	}

	for _, v := range b.replay.values() {
		ch <- v
	}
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() { b.unsubscribe(id) })
	}
	return &Subscription[T]{id: id, c: ch, cancel: cancel}
}

func (b *Broadcaster[T]) unsubscribe(id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

// Publish delivers v to all subscribers and records it in the replay ring.
func (b *Broadcaster[T]) Publish(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.replay.push(v)
	b.published++

	for id, ch := range b.subs {
		select {
		case ch <- v:
		default:
			b.dropped++
			b.logger.Warn("subscriber buffer full, dropping value", "subscriber", id)
		}
	}
}

// SubscriberCount returns the number of attached subscribers.
func (b *Broadcaster[T]) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Stats returns publish/drop counters.
func (b *Broadcaster[T]) Stats() (published, dropped int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.published, b.dropped
}

// Close detaches all subscribers and closes their channels. Further
// Publish calls are no-ops.
func (b *Broadcaster[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
