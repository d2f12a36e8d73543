package dispatch

import (
	"container/heap"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wassel-delivery/dispatch/core/events"
	"github.com/wassel-delivery/dispatch/core/logger"
	"github.com/wassel-delivery/dispatch/core/model"
	"github.com/wassel-delivery/dispatch/core/provider"
	"github.com/wassel-delivery/dispatch/internal/eventbus"
)

// RetryConfig defines the retry queue timing parameters.
type RetryConfig struct {
	// InitialDelay schedules the first retry after a failed dispatch.
	InitialDelay time.Duration
	// NoDriverDelay reschedules after an attempt that found no drivers.
	NoDriverDelay time.Duration
	// ErrorDelay reschedules after an attempt that failed with an error.
	ErrorDelay time.Duration
	// MaxAttempts is the hard retry ceiling.
	MaxAttempts int
}

// DefaultRetryConfig returns the production retry timings.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		InitialDelay:  5 * time.Minute,
		NoDriverDelay: 10 * time.Minute,
		ErrorDelay:    15 * time.Minute,
		MaxAttempts:   3,
	}
}

// retryItem lives only inside the queue: created on dispatch failure,
// removed on success or final escalation.
type retryItem struct {
	order       model.Order
	attempts    int
	nextRetryAt time.Time
	priority    int // urgent orders first
	index       int
}

// retryHeap orders items by (priority asc, nextRetryAt asc).
type retryHeap []*retryItem

func (h retryHeap) Len() int { return len(h) }
func (h retryHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority < h[j].priority
	}
	return h[i].nextRetryAt.Before(h[j].nextRetryAt)
}
func (h retryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *retryHeap) Push(x any) {
	it := x.(*retryItem)
	it.index = len(*h)
	*h = append(*h, it)
}
func (h *retryHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return it
}

// redispatchFunc re-attempts a dispatch against a fresh driver snapshot.
type redispatchFunc func(ctx context.Context, order model.Order, drivers []model.Driver) error

// RetryQueue holds orders that failed immediate dispatch for later
// re-attempt. Enqueue is safe from concurrent dispatch calls; a single
// worker goroutine processes the queue sequentially and parks when it
// drains. Starting an already-running worker is a no-op.
type RetryQueue struct {
	cfg        RetryConfig
	clock      provider.Clock
	drivers    provider.DriverProvider
	sink       provider.NotificationSink
	redispatch redispatchFunc
	bus        eventbus.EventBus
	log        logger.Logger

	mu         sync.Mutex
	items      retryHeap
	processing bool
	baseCtx    context.Context

	// idle is closed and replaced each time the worker parks; tests use it
	// to wait for a drain without polling.
	idle chan struct{}
}

// NewRetryQueue creates an empty queue. The worker starts lazily on the
// first enqueue.
func NewRetryQueue(cfg RetryConfig, clock provider.Clock, drivers provider.DriverProvider, sink provider.NotificationSink, bus eventbus.EventBus, log logger.Logger) *RetryQueue {
	if cfg.MaxAttempts <= 0 {
		cfg = DefaultRetryConfig()
	}
	if clock == nil {
		clock = provider.SystemClock{}
	}
	if log == nil {
		log = nopLogger{}
	}
	idle := make(chan struct{})
	close(idle)
	return &RetryQueue{
		cfg:     cfg,
		clock:   clock,
		drivers: drivers,
		sink:    sink,
		bus:     bus,
		log:     log,
		baseCtx: context.Background(),
		idle:    idle,
	}
}

// Start binds the worker lifetime to ctx: pending sleeps are cancelled when
// ctx is done and no further processing happens.
func (q *RetryQueue) Start(ctx context.Context) {
	q.mu.Lock()
	q.baseCtx = ctx
	q.mu.Unlock()
}

// Enqueue schedules the order for a retry and wakes the worker if it is
// parked. The first attempt runs after the configured initial delay.
func (q *RetryQueue) Enqueue(order model.Order) {
	prio := 2
	if order.Priority == model.PriorityUrgent {
		prio = 1
	}
	it := &retryItem{
		order:       order,
		priority:    prio,
		nextRetryAt: q.clock.Now().Add(q.cfg.InitialDelay),
	}

	q.mu.Lock()
	heap.Push(&q.items, it)
	retryQueueDepth.Set(float64(len(q.items)))
	startWorker := !q.processing
	if startWorker {
		q.processing = true
		q.idle = make(chan struct{})
	}
	ctx := q.baseCtx
	q.mu.Unlock()

	if q.bus != nil {
		q.bus.Publish(events.RetryEvent{Order: order, Attempt: it.attempts, NextRetryAt: it.nextRetryAt})
	}
	q.log.Infof("order %s queued for retry at %s", order.ID, it.nextRetryAt.Format(time.RFC3339))
	if startWorker {
		go q.run(ctx)
	}
}

// Depth returns the number of queued orders.
func (q *RetryQueue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Processing reports whether the worker is currently active.
func (q *RetryQueue) Processing() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.processing
}

// Status returns queue depth and processing flag in one call, for the
// analytics snapshot.
func (q *RetryQueue) Status() (int, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items), q.processing
}

// Wait blocks until the worker parks. Intended for tests.
func (q *RetryQueue) Wait() {
	q.mu.Lock()
	idle := q.idle
	q.mu.Unlock()
	<-idle
}

// run processes the queue until it drains or ctx is cancelled. One item at a
// time; no concurrent dequeues.
func (q *RetryQueue) run(ctx context.Context) {
	for {
		q.mu.Lock()
		// Parking and the drain check happen under one lock so an Enqueue
		// racing the exit either sees an active worker or starts a new one.
		if len(q.items) == 0 || ctx.Err() != nil {
			q.processing = false
			close(q.idle)
			q.mu.Unlock()
			return
		}
		it := heap.Pop(&q.items).(*retryItem)
		retryQueueDepth.Set(float64(len(q.items)))
		q.mu.Unlock()

		if wait := it.nextRetryAt.Sub(q.clock.Now()); wait > 0 {
			if err := q.clock.Sleep(ctx, wait); err != nil {
				// Shutting down; push the item back so depth stays truthful.
				q.mu.Lock()
				heap.Push(&q.items, it)
				retryQueueDepth.Set(float64(len(q.items)))
				q.processing = false
				close(q.idle)
				q.mu.Unlock()
				return
			}
		}
		q.attempt(ctx, it)
	}
}

// attempt runs one retry cycle for the item.
func (q *RetryQueue) attempt(ctx context.Context, it *retryItem) {
	q.log.Infof("retrying dispatch for order %s (attempt %d/%d)", it.order.ID, it.attempts+1, q.cfg.MaxAttempts)

	drivers, err := q.drivers.GetAvailableDrivers(ctx, "")
	switch {
	case err != nil:
		q.log.Warnf("retry driver lookup failed for order %s: %v", it.order.ID, err)
		q.reschedule(it, q.cfg.ErrorDelay)
	case len(drivers) == 0:
		q.log.Warnf("no drivers available for order %s", it.order.ID)
		q.reschedule(it, q.cfg.NoDriverDelay)
	default:
		if err := q.redispatch(ctx, it.order, drivers); err != nil {
			q.log.Warnf("retry dispatch failed for order %s: %v", it.order.ID, err)
			delay := q.cfg.ErrorDelay
			if errors.Is(err, ErrNoDriverAvailable) {
				delay = q.cfg.NoDriverDelay
			}
			q.reschedule(it, delay)
			return
		}
		q.log.Infof("retry succeeded for order %s", it.order.ID)
	}
}

// reschedule re-enqueues the item after the given delay, or escalates when
// attempts are exhausted. attempts never exceeds MaxAttempts.
func (q *RetryQueue) reschedule(it *retryItem, delay time.Duration) {
	it.attempts++
	if it.attempts < q.cfg.MaxAttempts {
		it.nextRetryAt = q.clock.Now().Add(delay)
		q.mu.Lock()
		heap.Push(&q.items, it)
		retryQueueDepth.Set(float64(len(q.items)))
		q.mu.Unlock()
		if q.bus != nil {
			q.bus.Publish(events.RetryEvent{Order: it.order, Attempt: it.attempts, NextRetryAt: it.nextRetryAt})
		}
		return
	}

	q.log.Errorf("%v: order %s, escalating to manual dispatch", ErrRetryExhausted, it.order.ID)
	retryEscalations.Inc()
	if q.bus != nil {
		q.bus.Publish(events.EscalationEvent{Order: it.order, Attempts: it.attempts})
	}
	if q.sink != nil {
		q.sink.NotifyRetryEscalation(it.order)
	}
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}
