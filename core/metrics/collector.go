package metrics

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"
)

// latencySampleCap bounds the window used for latency statistics.
const latencySampleCap = 512

// Collector keeps running dispatch counters in memory and serves read-only
// analytics snapshots. It implements Sink and is safe for concurrent use.
type Collector struct {
	mu                    sync.Mutex
	totalDispatches       int
	successfulAssignments int
	avgLatencyMS          float64
	latencySamples        []float64 // milliseconds, newest-wins ring
	sampleNext            int
	zones                 map[string]*zoneStats
	driverAssignments     map[string]int

	// queueStatus, when set, contributes the retry queue state to snapshots.
	queueStatus func() (depth int, processing bool)
}

type zoneStats struct {
	attempts  int
	successes int
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{
		zones:             make(map[string]*zoneStats),
		driverAssignments: make(map[string]int),
	}
}

// SetQueueStatus wires the retry queue state into analytics snapshots.
func (c *Collector) SetQueueStatus(fn func() (int, bool)) {
	c.mu.Lock()
	c.queueStatus = fn
	c.mu.Unlock()
}

// RecordAssignment records a successful dispatch.
func (c *Collector) RecordAssignment(rec AssignmentRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totalDispatches++
	c.successfulAssignments++
	c.observeLatency(rec.Latency)
	if rec.Zone != "" {
		zs := c.zone(rec.Zone)
		zs.attempts++
		zs.successes++
	}
	c.driverAssignments[rec.DriverID]++
	return nil
}

// RecordFailure records a failed dispatch attempt.
func (c *Collector) RecordFailure(rec FailureRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totalDispatches++
	if rec.Zone != "" {
		c.zone(rec.Zone).attempts++
	}
	return nil
}

func (c *Collector) zone(id string) *zoneStats {
	zs, ok := c.zones[id]
	if !ok {
		zs = &zoneStats{}
		c.zones[id] = zs
	}
	return zs
}

// observeLatency updates the incremental mean and the bounded sample window.
// Caller holds the lock.
func (c *Collector) observeLatency(d time.Duration) {
	ms := float64(d.Microseconds()) / 1000
	n := float64(c.successfulAssignments)
	c.avgLatencyMS = (c.avgLatencyMS*(n-1) + ms) / n
	if len(c.latencySamples) < latencySampleCap {
		c.latencySamples = append(c.latencySamples, ms)
	} else {
		c.latencySamples[c.sampleNext] = ms
		c.sampleNext = (c.sampleNext + 1) % latencySampleCap
	}
}

// ZoneSuccessRates returns the success rate per zone in [0,1]. The predictive
// dispatch strategy consumes this as its area-experience input.
func (c *Collector) ZoneSuccessRates() map[string]float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]float64, len(c.zones))
	for id, zs := range c.zones {
		if zs.attempts > 0 {
			out[id] = float64(zs.successes) / float64(zs.attempts)
		}
	}
	return out
}

// ZoneAnalytics summarises dispatch outcomes for one zone.
type ZoneAnalytics struct {
	Zone        string  `json:"zone"`
	Attempts    int     `json:"attempts"`
	Successes   int     `json:"successes"`
	SuccessRate string  `json:"success_rate"`
	Rate        float64 `json:"-"`
}

// QueueAnalytics reports the retry queue state.
type QueueAnalytics struct {
	PendingRetries int  `json:"pending_retries"`
	Processing     bool `json:"processing"`
}

// Analytics is a read-only snapshot of the collector. Mutating it has no
// effect on the collector.
type Analytics struct {
	TotalDispatches       int             `json:"total_dispatches"`
	SuccessfulAssignments int             `json:"successful_assignments"`
	SuccessRate           string          `json:"success_rate"`
	AvgAssignmentMS       float64         `json:"avg_assignment_ms"`
	LatencyStdDevMS       float64         `json:"latency_stddev_ms"`
	Zones                 []ZoneAnalytics `json:"zones"`
	DriverAssignments     map[string]int  `json:"driver_assignments"`
	Queue                 QueueAnalytics  `json:"queue"`
}

// Analytics returns the current snapshot.
func (c *Collector) Analytics() Analytics {
	c.mu.Lock()
	defer c.mu.Unlock()

	a := Analytics{
		TotalDispatches:       c.totalDispatches,
		SuccessfulAssignments: c.successfulAssignments,
		AvgAssignmentMS:       c.avgLatencyMS,
		DriverAssignments:     make(map[string]int, len(c.driverAssignments)),
	}
	rate := 0.0
	if c.totalDispatches > 0 {
		rate = float64(c.successfulAssignments) / float64(c.totalDispatches) * 100
	}
	a.SuccessRate = fmt.Sprintf("%.2f%%", rate)
	if len(c.latencySamples) > 1 {
		a.LatencyStdDevMS = stat.StdDev(c.latencySamples, nil)
	}
	for id, zs := range c.zones {
		za := ZoneAnalytics{Zone: id, Attempts: zs.attempts, Successes: zs.successes}
		if zs.attempts > 0 {
			za.Rate = float64(zs.successes) / float64(zs.attempts)
		}
		za.SuccessRate = fmt.Sprintf("%.2f%%", za.Rate*100)
		a.Zones = append(a.Zones, za)
	}
	sort.Slice(a.Zones, func(i, j int) bool { return a.Zones[i].Zone < a.Zones[j].Zone })
	for id, n := range c.driverAssignments {
		a.DriverAssignments[id] = n
	}
	if c.queueStatus != nil {
		depth, processing := c.queueStatus()
		a.Queue = QueueAnalytics{PendingRetries: depth, Processing: processing}
	}
	return a
}
