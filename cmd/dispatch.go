package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wassel-delivery/dispatch/core/dispatch"
	"github.com/wassel-delivery/dispatch/core/model"
	"github.com/wassel-delivery/dispatch/core/provider"
	"github.com/wassel-delivery/dispatch/infra/logger"
)

var (
	orderFile   string
	driversFile string
	algorithm   string
)

var dispatchCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Run a one-shot dispatch from order and driver files",
	RunE:  dispatchOnce,
}

func init() {
	dispatchCmd.Flags().StringVar(&orderFile, "order", "", "path to the order json file")
	dispatchCmd.Flags().StringVar(&driversFile, "drivers", "", "path to the drivers json file")
	dispatchCmd.Flags().StringVar(&algorithm, "algorithm", "", "dispatch algorithm name")
	_ = dispatchCmd.MarkFlagRequired("order")
	_ = dispatchCmd.MarkFlagRequired("drivers")
	rootCmd.AddCommand(dispatchCmd)
}

func dispatchOnce(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var order model.Order
	if err := readJSONFile(orderFile, &order); err != nil {
		return fmt.Errorf("read order: %w", err)
	}
	var drivers []model.Driver
	if err := readJSONFile(driversFile, &drivers); err != nil {
		return fmt.Errorf("read drivers: %w", err)
	}

	log := logger.New("dispatch-command")
	store := provider.NewInMemoryDriverStore()
	for _, drv := range drivers {
		store.Upsert(drv)
	}
	d, err := dispatch.NewDispatcher(dispatch.Options{
		Zones:            cfg.ZoneModels(),
		Drivers:          store,
		Sink:             consoleSink{log: log},
		Logger:           log,
		Retry:            cfg.Dispatch.RetryConfig(),
		DefaultAlgorithm: cfg.Dispatch.DefaultAlgorithm,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := d.Close(); err != nil {
			log.Errorf("dispatcher close: %v", err)
		}
	}()

	a, err := d.Dispatch(context.Background(), order, drivers, algorithm)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(a)
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// consoleSink reports notifications through the command logger.
type consoleSink struct {
	log logger.Logger
}

func (s consoleSink) NotifyAssignment(a model.Assignment) {
	s.log.Infof("order %s assigned to driver %s", a.OrderID, a.DriverID)
}

func (s consoleSink) NotifyDispatchFailure(o model.Order, reason string) {
	s.log.Warnf("dispatch failed for order %s: %s", o.ID, reason)
}

func (s consoleSink) NotifyRetryEscalation(o model.Order) {
	s.log.Errorf("order %s exhausted retries", o.ID)
}
