package signals

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/hireledger/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
)

const SubscriberQueueSize = 64

type SubscriberID int

type HandlerFunc func(Signal)

// Publisher is what the hiring services need from the bus.
type Publisher interface {
	Publish(ctx context.Context, t Type, data any)
}

type subscriber struct {
	ch     chan Signal
	closed bool
}

// Bus delivers signals to in-process subscribers and records each one in the
// journal, when one is attached, before delivery.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[Type]map[SubscriberID]*subscriber
	lastID      SubscriberID

	journal *Journal
	metrics *busMetrics
	logger  logging.Logger
	now     func() time.Time
}

// NewBus builds a bus. reg and journal may be nil.
func NewBus(reg prometheus.Registerer, journal *Journal, logger logging.Logger) *Bus {
	if logger == nil {
		logger = logging.Nop{}
	}
	b := &Bus{
		subscribers: make(map[Type]map[SubscriberID]*subscriber),
		journal:     journal,
		logger:      logger.With("module", "signals"),
		now:         time.Now,
	}
	if reg != nil {
		b.metrics = newBusMetrics(reg)
	}
	return b
}

// Subscribe returns a channel receiving signals of type t.
func (b *Bus) Subscribe(t Type) (SubscriberID, <-chan Signal) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lastID++
	id := b.lastID
	sub := &subscriber{ch: make(chan Signal, SubscriberQueueSize)}
	if _, ok := b.subscribers[t]; !ok {
		b.subscribers[t] = make(map[SubscriberID]*subscriber)
	}
	b.subscribers[t][id] = sub
	if b.metrics != nil {
		b.metrics.subscribers.WithLabelValues(string(t)).Inc()
	}
	return id, sub.ch
}

// SubscribeFunc runs fn in its own goroutine for every signal of type t
// until the subscription is removed.
func (b *Bus) SubscribeFunc(t Type, fn HandlerFunc) SubscriberID {
	id, ch := b.Subscribe(t)
	go func() {
		for sig := range ch {
			fn(sig)
		}
	}()
	return id
}

func (b *Bus) Unsubscribe(t Type, id SubscriberID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.subscribers[t]
	if !ok {
		return
	}
	sub, ok := subs[id]
	if !ok {
		return
	}
	delete(subs, id)
	if len(subs) == 0 {
		delete(b.subscribers, t)
	}
	sub.closed = true
	close(sub.ch)
	if b.metrics != nil {
		b.metrics.subscribers.WithLabelValues(string(t)).Dec()
	}
}

// Publish journals the signal and hands it to every subscriber of its type.
// A subscriber whose queue is full misses the signal; the journal does not.
func (b *Bus) Publish(ctx context.Context, t Type, data any) {
	sig := Signal{Type: t, Timestamp: b.now().UTC(), Data: data}
	if b.journal != nil {
		seq, err := b.journal.Append(sig)
		if err != nil {
			b.logger.Error(ctx, "failed to journal signal", "type", t, "error", err)
		}
		sig.Seq = seq
	}

	b.mu.RLock()
	for _, sub := range b.subscribers[t] {
		if sub.closed {
			continue
		}
		select {
		case sub.ch <- sig:
		default:
			if b.metrics != nil {
				b.metrics.dropped.WithLabelValues(string(t)).Inc()
			}
			b.logger.Warn(ctx, "subscriber queue full, signal dropped", "type", t, "seq", sig.Seq)
		}
	}
	b.mu.RUnlock()

	if b.metrics != nil {
		b.metrics.published.WithLabelValues(string(t)).Inc()
	}
	b.logger.Debug(ctx, "signal published", "type", t, "seq", sig.Seq)
}

// Stop closes every subscription so SubscribeFunc goroutines exit.
func (b *Bus) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, subs := range b.subscribers {
		for _, sub := range subs {
			sub.closed = true
			close(sub.ch)
		}
	}
	b.subscribers = make(map[Type]map[SubscriberID]*subscriber)
	if b.metrics != nil {
		b.metrics.subscribers.Reset()
	}
}
