// Package app wires the dispatcher, providers, sinks and HTTP surface into a
// runnable service.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/wassel-delivery/dispatch/api/dispatchapi"
	"github.com/wassel-delivery/dispatch/config"
	"github.com/wassel-delivery/dispatch/core/dispatch"
	coremetrics "github.com/wassel-delivery/dispatch/core/metrics"
	"github.com/wassel-delivery/dispatch/core/model"
	"github.com/wassel-delivery/dispatch/core/provider"
	"github.com/wassel-delivery/dispatch/infra/logger"
	"github.com/wassel-delivery/dispatch/infra/metrics"
	"github.com/wassel-delivery/dispatch/infra/mqtt"
	"github.com/wassel-delivery/dispatch/internal/eventbus"
)

// Service orchestrates the dispatcher and its transport bindings.
type Service struct {
	Dispatcher *dispatch.Dispatcher
	Drivers    *provider.InMemoryDriverStore
	Orders     *provider.InMemoryOrderStore

	bus      eventbus.EventBus
	sink     coremetrics.Sink
	log      logger.Logger
	notifier *mqtt.Notifier
	addr     string
	token    string
	promAddr string
}

// New creates a Service from the configuration. When no MQTT broker is
// configured, notifications fall back to structured logs.
func New(cfg *config.Config) (*Service, error) {
	log := logger.New("service")
	logger.SetLevel(cfg.Logging.Level)

	drivers := provider.NewInMemoryDriverStore()
	orders := provider.NewInMemoryOrderStore()
	bus := eventbus.New()

	svc := &Service{
		Drivers:  drivers,
		Orders:   orders,
		bus:      bus,
		log:      log,
		addr:     cfg.Server.Addr,
		token:    cfg.Server.AuthToken,
		promAddr: cfg.Server.PromAddr,
	}

	var notify provider.NotificationSink
	if cfg.MQTT.Broker != "" {
		notifier, err := mqtt.NewNotifier(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt notifier: %w", err)
		}
		svc.notifier = notifier
		notify = notifier
	} else {
		notify = logSink{log: logger.New("notify")}
	}

	var sinks []coremetrics.Sink
	if cfg.Metrics.Prometheus {
		sink, err := metrics.NewPromSink()
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.Influx.InfluxURL != "" {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics.Influx))
	}
	var sink coremetrics.Sink
	switch len(sinks) {
	case 0:
		sink = coremetrics.NopSink{}
	case 1:
		sink = sinks[0]
	default:
		sink = metrics.NewMultiSink(sinks...)
	}
	svc.sink = sink

	d, err := dispatch.NewDispatcher(dispatch.Options{
		Zones:            cfg.ZoneModels(),
		Drivers:          drivers,
		Orders:           orders,
		Sink:             notify,
		Metrics:          sink,
		Bus:              bus,
		Logger:           logger.New("dispatcher"),
		Retry:            cfg.Dispatch.RetryConfig(),
		DefaultAlgorithm: cfg.Dispatch.DefaultAlgorithm,
	})
	if err != nil {
		return nil, fmt.Errorf("dispatcher: %w", err)
	}
	svc.Dispatcher = d
	return svc, nil
}

// Run starts the HTTP surface and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	s.Dispatcher.Start(ctx)
	metrics.StartEventCollector(ctx, s.bus, s.sink)

	srv := &http.Server{
		Addr:    s.addr,
		Handler: dispatchapi.NewMux(s.Dispatcher, s.token),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("http shutdown: %v", err)
		}
	}()
	if s.promAddr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	s.log.Infof("dispatch API listening on %s", s.addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.notifier != nil {
		s.notifier.Disconnect()
	}
	return s.Dispatcher.Close()
}

// logSink reports notifications through the logger when no broker is wired.
type logSink struct {
	log logger.Logger
}

func (s logSink) NotifyAssignment(a model.Assignment) {
	s.log.Infof("order %s assigned to driver %s (score %.2f)", a.OrderID, a.DriverID, a.Score)
}

func (s logSink) NotifyDispatchFailure(o model.Order, reason string) {
	s.log.Warnf("dispatch failed for order %s: %s", o.ID, reason)
}

func (s logSink) NotifyRetryEscalation(o model.Order) {
	s.log.Errorf("order %s exhausted retries, manual intervention required", o.ID)
}
