package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveHandleDuration("feed", 20*time.Millisecond)
	pr.IncCommand("feed", ResultOK)
	pr.IncFeeding("cassiy", "dry")
	pr.IncRollover()
	// Basic scrape to ensure metrics encode without panic
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(mfs) == 0 {
		t.Fatalf("expected metrics, got none")
	}
}

func TestNilSafety(t *testing.T) {
	var pr *PrometheusRecorder
	pr.ObserveHandleDuration("feed", time.Millisecond)
	pr.IncCommand("feed", ResultError)
	pr.IncFeeding("cassiy", "dry")
	pr.IncRollover()
}
