package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/wassel-delivery/dispatch/core/metrics"
)

func TestInfluxSink_RecordAssignment(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer sink.Close()

	now := time.Now()
	rec := coremetrics.AssignmentRecord{
		OrderID:   "ORD001",
		DriverID:  "drv1",
		Zone:      "central",
		Algorithm: "optimal_score",
		Score:     8.425,
		Latency:   20 * time.Millisecond,
		Time:      now,
	}
	if err := sink.RecordAssignment(rec); err != nil {
		t.Fatalf("record error: %v", err)
	}

	p := write.NewPointWithMeasurement("assignment").
		AddTag("driver_id", "drv1").
		AddTag("zone", "central").
		AddTag("algorithm", "optimal_score").
		AddField("order_id", "ORD001").
		AddField("score", 8.43).
		AddField("latency_ms", 20.0).
		SetTime(now)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	if strings.TrimSpace(body) != expected {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	cfg := Config{
		InfluxURL:    srv.URL + "/api/v2/write",
		InfluxToken:  "tok",
		InfluxOrg:    "org",
		InfluxBucket: "bucket",
	}
	sink := NewInfluxSinkWithFallback(cfg)
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}

func TestMultiSink_ForwardsToAll(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	a := NewInfluxSink(srv.URL, "t", "o", "b")
	b := NewInfluxSink(srv.URL, "t", "o", "b")
	defer a.Close()
	defer b.Close()

	multi := NewMultiSink(a, b, coremetrics.NopSink{})
	if err := multi.RecordFailure(coremetrics.FailureRecord{OrderID: "o1", Reason: "x", Time: time.Now()}); err != nil {
		t.Fatalf("record error: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 writes, got %d", calls)
	}
}
