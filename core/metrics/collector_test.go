package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCollector_Counters(t *testing.T) {
	c := NewCollector()
	assert.NoError(t, c.RecordAssignment(AssignmentRecord{OrderID: "o1", DriverID: "d1", Zone: "central", Latency: 10 * time.Millisecond}))
	assert.NoError(t, c.RecordAssignment(AssignmentRecord{OrderID: "o2", DriverID: "d1", Zone: "central", Latency: 30 * time.Millisecond}))
	assert.NoError(t, c.RecordFailure(FailureRecord{OrderID: "o3", Zone: "north", Reason: "no_driver"}))

	a := c.Analytics()
	assert.Equal(t, 3, a.TotalDispatches)
	assert.Equal(t, 2, a.SuccessfulAssignments)
	assert.Equal(t, "66.67%", a.SuccessRate)
	assert.InDelta(t, 20.0, a.AvgAssignmentMS, 0.01)
	assert.Equal(t, 2, a.DriverAssignments["d1"])

	assert.Len(t, a.Zones, 2)
	assert.Equal(t, "central", a.Zones[0].Zone)
	assert.Equal(t, "100.00%", a.Zones[0].SuccessRate)
	assert.Equal(t, "north", a.Zones[1].Zone)
	assert.Equal(t, "0.00%", a.Zones[1].SuccessRate)
}

func TestCollector_ZoneSuccessRates(t *testing.T) {
	c := NewCollector()
	_ = c.RecordAssignment(AssignmentRecord{Zone: "central"})
	_ = c.RecordFailure(FailureRecord{Zone: "central"})
	rates := c.ZoneSuccessRates()
	assert.InDelta(t, 0.5, rates["central"], 1e-9)
	_, ok := rates["missing"]
	assert.False(t, ok)
}

func TestCollector_SnapshotIsolated(t *testing.T) {
	c := NewCollector()
	_ = c.RecordAssignment(AssignmentRecord{DriverID: "d1", Zone: "central"})
	a := c.Analytics()
	a.DriverAssignments["d1"] = 99
	a.Zones[0].Attempts = 99
	b := c.Analytics()
	assert.Equal(t, 1, b.DriverAssignments["d1"])
	assert.Equal(t, 1, b.Zones[0].Attempts)
}

func TestCollector_QueueStatus(t *testing.T) {
	c := NewCollector()
	c.SetQueueStatus(func() (int, bool) { return 4, true })
	a := c.Analytics()
	assert.Equal(t, 4, a.Queue.PendingRetries)
	assert.True(t, a.Queue.Processing)
}

func TestCollector_EmptySuccessRate(t *testing.T) {
	a := NewCollector().Analytics()
	assert.Equal(t, "0.00%", a.SuccessRate)
	assert.Zero(t, a.Queue.PendingRetries)
}
