package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wassel-delivery/dispatch/core/events"
	"github.com/wassel-delivery/dispatch/core/geo"
	"github.com/wassel-delivery/dispatch/core/logger"
	"github.com/wassel-delivery/dispatch/core/metrics"
	"github.com/wassel-delivery/dispatch/core/model"
	"github.com/wassel-delivery/dispatch/core/provider"
	"github.com/wassel-delivery/dispatch/core/scoring"
	"github.com/wassel-delivery/dispatch/core/zone"
	"github.com/wassel-delivery/dispatch/internal/eventbus"
)

// Candidate distance caps. Normal search drops drivers beyond 10 km from the
// merchant; expanded search widens to 20 km.
const (
	maxDistanceMeters         = 10000.0
	maxExpandedDistanceMeters = 20000.0
)

// Dispatcher orchestrates driver assignment: zone filtering with a
// widen-search fallback, strategy selection, metrics and the retry queue.
// One instance per process; it owns its queue and collector, nothing is
// package-global.
type Dispatcher struct {
	engine     scoring.Engine
	strategies *Strategies
	zones      *zone.Resolver
	drivers    provider.DriverProvider
	orders     provider.OrderProvider
	sink       provider.NotificationSink
	clock      provider.Clock
	collector  *metrics.Collector
	sinks      metrics.Sink
	queue      *RetryQueue
	bus        eventbus.EventBus
	log        logger.Logger
	defaultAlg string
}

// Options bundles the dispatcher's collaborators. Drivers and Sink are
// required; everything else has a working default.
type Options struct {
	Zones      []model.Zone
	Engine     *scoring.Engine
	Drivers    provider.DriverProvider
	Orders     provider.OrderProvider
	Sink       provider.NotificationSink
	Clock      provider.Clock
	Conditions provider.Conditions
	Retry      RetryConfig
	Metrics    metrics.Sink
	Bus        eventbus.EventBus
	Logger     logger.Logger
	// DefaultAlgorithm is used when a dispatch call omits the algorithm.
	DefaultAlgorithm string
}

// NewDispatcher creates a dispatcher and its retry queue.
func NewDispatcher(opts Options) (*Dispatcher, error) {
	if opts.Drivers == nil || opts.Sink == nil {
		return nil, fmt.Errorf("dispatch: nil provider passed to NewDispatcher")
	}
	engine := scoring.NewEngine()
	if opts.Engine != nil {
		engine = *opts.Engine
	}
	clock := opts.Clock
	if clock == nil {
		clock = provider.SystemClock{}
	}
	log := opts.Logger
	if log == nil {
		log = nopLogger{}
	}
	var cond provider.Conditions = provider.StaticConditions{}
	if opts.Conditions != nil {
		cond = opts.Conditions
	}
	var sinks metrics.Sink = metrics.NopSink{}
	if opts.Metrics != nil {
		sinks = opts.Metrics
	}
	defaultAlg := opts.DefaultAlgorithm
	if defaultAlg == "" {
		defaultAlg = AlgorithmOptimalScore
	}

	collector := metrics.NewCollector()
	d := &Dispatcher{
		engine:     engine,
		strategies: NewStrategies(engine, collector, cond),
		zones:      zone.NewResolver(opts.Zones),
		drivers:    opts.Drivers,
		orders:     opts.Orders,
		sink:       opts.Sink,
		clock:      clock,
		collector:  collector,
		sinks:      sinks,
		bus:        opts.Bus,
		log:        log,
		defaultAlg: defaultAlg,
	}
	d.queue = NewRetryQueue(opts.Retry, clock, opts.Drivers, opts.Sink, opts.Bus, log)
	d.queue.redispatch = func(ctx context.Context, order model.Order, drivers []model.Driver) error {
		_, err := d.dispatchOnce(ctx, order, drivers, d.defaultAlg)
		return err
	}
	collector.SetQueueStatus(d.queue.Status)
	return d, nil
}

// Start binds background work (the retry worker) to ctx.
func (d *Dispatcher) Start(ctx context.Context) {
	d.queue.Start(ctx)
}

// Queue exposes the retry queue.
func (d *Dispatcher) Queue() *RetryQueue { return d.queue }

// Analytics returns the current metrics snapshot.
func (d *Dispatcher) Analytics() metrics.Analytics { return d.collector.Analytics() }

// Close releases resources held by the dispatcher.
func (d *Dispatcher) Close() error {
	if d.bus != nil {
		d.bus.Close()
	}
	return nil
}

// DispatchOrder looks the order up by id and dispatches it against the
// provider's current driver snapshot.
func (d *Dispatcher) DispatchOrder(ctx context.Context, orderID, algorithm string) (model.Assignment, error) {
	if d.orders == nil {
		return model.Assignment{}, fmt.Errorf("%w: no order provider configured", ErrInvalidDispatchInput)
	}
	order, err := d.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return model.Assignment{}, &ProviderError{Op: "order lookup", Err: err}
	}
	drivers, err := d.drivers.GetAvailableDrivers(ctx, "")
	if err != nil {
		perr := &ProviderError{Op: "driver lookup", Err: err}
		d.reportFailure(order, perr, true)
		d.queue.Enqueue(order)
		return model.Assignment{}, perr
	}
	if len(drivers) == 0 {
		err := fmt.Errorf("%w: order %s", ErrNoDriverAvailable, order.ID)
		d.reportFailure(order, err, false)
		d.queue.Enqueue(order)
		return model.Assignment{}, err
	}
	return d.Dispatch(ctx, order, drivers, algorithm)
}

// Dispatch finds the best driver for the order among availableDrivers using
// the named algorithm (optimal-score for unknown names). On failure the order
// is queued for retry, except for invalid input, and the error is returned to
// the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, order model.Order, availableDrivers []model.Driver, algorithm string) (model.Assignment, error) {
	if err := order.Validate(); err != nil {
		return model.Assignment{}, fmt.Errorf("%w: %v", ErrInvalidDispatchInput, err)
	}
	if len(availableDrivers) == 0 {
		return model.Assignment{}, fmt.Errorf("%w: empty driver list", ErrInvalidDispatchInput)
	}

	a, err := d.dispatchOnce(ctx, order, availableDrivers, algorithm)
	if err != nil {
		d.queue.Enqueue(order)
		return model.Assignment{}, err
	}
	return a, nil
}

// dispatchOnce runs one dispatch attempt without touching the retry queue.
// The retry worker calls it directly so a failed retry never re-enqueues
// through the public path.
func (d *Dispatcher) dispatchOnce(ctx context.Context, order model.Order, availableDrivers []model.Driver, algorithm string) (model.Assignment, error) {
	start := d.clock.Now()
	if algorithm == "" {
		algorithm = d.defaultAlg
	}
	alg := d.strategies.ForName(algorithm)
	dispatchAttempts.WithLabelValues(alg.Name()).Inc()

	orderZone := d.zones.Resolve(order.MerchantLocation)
	sctx := scoring.Context{OrderZone: orderZone, DriverZone: d.zones.DriverZone}

	candidates := d.filterCandidates(order, availableDrivers, orderZone, maxDistanceMeters)
	if len(candidates) == 0 {
		d.log.Warnf("no candidates near order %s, expanding search", order.ID)
		sctx.ExpandedSearch = true
		candidates = d.filterCandidates(order, availableDrivers, "", maxExpandedDistanceMeters)
	}

	sel := alg.Select(order, candidates, sctx)
	if sel == nil {
		err := fmt.Errorf("%w: order %s", ErrNoDriverAvailable, order.ID)
		d.reportFailure(order, err, false)
		return model.Assignment{}, err
	}

	a := model.Assignment{
		ID:             uuid.NewString(),
		OrderID:        order.ID,
		DriverID:       sel.Driver.ID,
		Driver:         sel.Driver,
		Score:          sel.Score,
		DistanceMeters: sel.DistanceMeters,
		Algorithm:      sel.Algorithm,
		Ranking:        sel.Ranking,
		Timestamp:      d.clock.Now(),
	}
	latency := d.clock.Now().Sub(start)

	d.recordSuccess(a, orderZone, latency)
	d.log.Infof("order %s assigned to driver %s via %s (score %.2f)", order.ID, a.DriverID, a.Algorithm, a.Score)
	if d.bus != nil {
		d.bus.Publish(events.AssignmentEvent{Assignment: a})
	}
	// Fire-and-forget: a failing sink must not abort the dispatch.
	d.notifyAssignment(a)
	return a, nil
}

// filterCandidates keeps drivers in the order's zone or an adjacent one and
// within the distance cap. An empty orderZone skips the zone filter.
func (d *Dispatcher) filterCandidates(order model.Order, drivers []model.Driver, orderZone string, maxMeters float64) []model.Driver {
	var out []model.Driver
	for _, drv := range drivers {
		if geo.DistanceMeters(drv.CurrentLocation, order.MerchantLocation) > maxMeters {
			continue
		}
		if orderZone != "" {
			dz := d.zones.DriverZone(drv)
			if dz != orderZone && !d.zones.Adjacent(dz, orderZone) {
				continue
			}
		}
		out = append(out, drv)
	}
	return out
}

func (d *Dispatcher) recordSuccess(a model.Assignment, orderZone string, latency time.Duration) {
	dispatchSuccesses.WithLabelValues(a.Algorithm).Inc()
	assignmentLatency.Observe(latency.Seconds())
	rec := metrics.AssignmentRecord{
		OrderID:   a.OrderID,
		DriverID:  a.DriverID,
		Zone:      orderZone,
		Algorithm: a.Algorithm,
		Score:     a.Score,
		Latency:   latency,
		Time:      a.Timestamp,
	}
	if err := d.collector.RecordAssignment(rec); err != nil {
		d.log.Errorf("metrics error: %v", err)
	}
	if err := d.sinks.RecordAssignment(rec); err != nil {
		d.log.Errorf("metrics sink error: %v", err)
	}
}

// reportFailure records a failed attempt and notifies the failure sink.
func (d *Dispatcher) reportFailure(order model.Order, err error, providerSide bool) {
	reason := "no_driver"
	if providerSide {
		reason = "provider_error"
	}
	dispatchFailures.WithLabelValues(reason).Inc()
	zoneID := d.zones.Resolve(order.MerchantLocation)
	rec := metrics.FailureRecord{OrderID: order.ID, Zone: zoneID, Reason: reason, Time: d.clock.Now()}
	if err2 := d.collector.RecordFailure(rec); err2 != nil {
		d.log.Errorf("metrics error: %v", err2)
	}
	if err2 := d.sinks.RecordFailure(rec); err2 != nil {
		d.log.Errorf("metrics sink error: %v", err2)
	}
	if d.bus != nil {
		d.bus.Publish(events.DispatchFailureEvent{Order: order, Reason: reason, Err: err})
	}
	d.notifyFailure(order, reason)
}

func (d *Dispatcher) notifyAssignment(a model.Assignment) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Errorf("notification sink panicked: %v", r)
		}
	}()
	d.sink.NotifyAssignment(a)
}

func (d *Dispatcher) notifyFailure(o model.Order, reason string) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Errorf("notification sink panicked: %v", r)
		}
	}()
	d.sink.NotifyDispatchFailure(o, reason)
}
