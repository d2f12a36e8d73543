package dispatch

import (
	"container/heap"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wassel-delivery/dispatch/core/model"
	"github.com/wassel-delivery/dispatch/core/provider"
)

func testRetryConfig() RetryConfig {
	return RetryConfig{
		InitialDelay:  5 * time.Minute,
		NoDriverDelay: 10 * time.Minute,
		ErrorDelay:    15 * time.Minute,
		MaxAttempts:   3,
	}
}

// recordingRedispatch captures re-attempted orders and replays scripted
// results in sequence, returning the last one forever after.
type recordingRedispatch struct {
	mu      sync.Mutex
	orders  []string
	results []error
}

func (r *recordingRedispatch) fn(_ context.Context, order model.Order, _ []model.Driver) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = append(r.orders, order.ID)
	if len(r.results) == 0 {
		return nil
	}
	err := r.results[0]
	if len(r.results) > 1 {
		r.results = r.results[1:]
	}
	return err
}

func (r *recordingRedispatch) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.orders...)
}

func TestRetryQueue_SuccessOnFirstRetry(t *testing.T) {
	clock := provider.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	drivers := provider.NewMockDriverProvider(model.Driver{ID: "d1"})
	sink := provider.NewRecordingSink()
	red := &recordingRedispatch{}

	q := NewRetryQueue(testRetryConfig(), clock, drivers, sink, nil, nil)
	q.redispatch = red.fn

	q.Enqueue(model.Order{ID: "o1"})
	q.Wait()

	assert.Equal(t, []string{"o1"}, red.calls())
	assert.Equal(t, 0, q.Depth())
	assert.False(t, q.Processing())
	assert.Equal(t, 0, sink.EscalationCount())
	// One sleep: the initial delay before the first attempt.
	assert.Equal(t, []time.Duration{5 * time.Minute}, clock.Slept)
}

func TestRetryQueue_EscalatesAfterMaxAttempts(t *testing.T) {
	clock := provider.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	drivers := provider.NewMockDriverProvider() // never any drivers
	sink := provider.NewRecordingSink()

	q := NewRetryQueue(testRetryConfig(), clock, drivers, sink, nil, nil)
	q.redispatch = func(context.Context, model.Order, []model.Driver) error { return nil }

	q.Enqueue(model.Order{ID: "o1"})
	q.Wait()

	require.Equal(t, 1, sink.EscalationCount())
	assert.Equal(t, "o1", sink.Escalations[0].ID)
	assert.Equal(t, 0, q.Depth())
	// Initial delay, then the no-driver delay twice before giving up.
	assert.Equal(t, []time.Duration{5 * time.Minute, 10 * time.Minute, 10 * time.Minute}, clock.Slept)
}

func TestRetryQueue_ProviderErrorUsesErrorDelay(t *testing.T) {
	clock := provider.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	drivers := provider.NewMockDriverProvider()
	drivers.Err = errors.New("provider down")
	sink := provider.NewRecordingSink()

	q := NewRetryQueue(testRetryConfig(), clock, drivers, sink, nil, nil)
	q.redispatch = func(context.Context, model.Order, []model.Driver) error { return nil }

	q.Enqueue(model.Order{ID: "o1"})
	q.Wait()

	assert.Equal(t, 1, sink.EscalationCount())
	assert.Equal(t, []time.Duration{5 * time.Minute, 15 * time.Minute, 15 * time.Minute}, clock.Slept)
}

func TestRetryQueue_NoDriverFromRedispatchUsesShorterDelay(t *testing.T) {
	clock := provider.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	drivers := provider.NewMockDriverProvider(model.Driver{ID: "d1"})
	sink := provider.NewRecordingSink()
	red := &recordingRedispatch{results: []error{ErrNoDriverAvailable, nil}}

	q := NewRetryQueue(testRetryConfig(), clock, drivers, sink, nil, nil)
	q.redispatch = red.fn

	q.Enqueue(model.Order{ID: "o1"})
	q.Wait()

	assert.Equal(t, []string{"o1", "o1"}, red.calls())
	assert.Equal(t, 0, sink.EscalationCount())
	assert.Equal(t, []time.Duration{5 * time.Minute, 10 * time.Minute}, clock.Slept)
}

func TestRetryQueue_CancelledContextStopsWorker(t *testing.T) {
	clock := provider.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	drivers := provider.NewMockDriverProvider(model.Driver{ID: "d1"})
	sink := provider.NewRecordingSink()

	q := NewRetryQueue(testRetryConfig(), clock, drivers, sink, nil, nil)
	q.redispatch = func(context.Context, model.Order, []model.Driver) error {
		t.Error("redispatch should not run after cancellation")
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	q.Start(ctx)

	q.Enqueue(model.Order{ID: "o1"})
	q.Wait()

	// The worker parked without dropping the order.
	assert.Equal(t, 1, q.Depth())
	assert.Equal(t, 0, sink.EscalationCount())
}

func TestRetryHeap_UrgentBeforeNormal(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	var h retryHeap
	heap.Push(&h, &retryItem{order: model.Order{ID: "normal"}, priority: 2, nextRetryAt: now})
	heap.Push(&h, &retryItem{order: model.Order{ID: "urgent"}, priority: 1, nextRetryAt: now.Add(time.Minute)})
	heap.Push(&h, &retryItem{order: model.Order{ID: "urgent-early"}, priority: 1, nextRetryAt: now})

	assert.Equal(t, "urgent-early", heap.Pop(&h).(*retryItem).order.ID)
	assert.Equal(t, "urgent", heap.Pop(&h).(*retryItem).order.ID)
	assert.Equal(t, "normal", heap.Pop(&h).(*retryItem).order.ID)
}

func TestRetryQueue_DefaultsWhenUnconfigured(t *testing.T) {
	q := NewRetryQueue(RetryConfig{}, nil, provider.NewMockDriverProvider(), provider.NewRecordingSink(), nil, nil)
	assert.Equal(t, DefaultRetryConfig(), q.cfg)
}
