package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once           sync.Once
	handleDuration *prom.HistogramVec
	commands       *prom.CounterVec
	feedings       *prom.CounterVec
	rollovers      prom.Counter
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.handleDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "homebot",
			Name:      "handle_duration_seconds",
			Help:      "Duration of inbound command handling",
			Buckets:   prom.DefBuckets,
		}, []string{"command"})
		pr.commands = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "homebot",
			Name:      "commands_total",
			Help:      "Handled commands by command and result",
		}, []string{"command", "result"})
		pr.feedings = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "homebot",
			Name:      "feedings_total",
			Help:      "Recorded feedings by pet and food kind",
		}, []string{"pet", "kind"})
		pr.rollovers = prom.NewCounter(prom.CounterOpts{
			Namespace: "homebot",
			Name:      "rollovers_total",
			Help:      "Midnight rollovers executed",
		})
		reg.MustRegister(pr.handleDuration, pr.commands, pr.feedings, pr.rollovers)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveHandleDuration(command string, d time.Duration) {
	if p == nil || p.handleDuration == nil {
		return
	}
	p.handleDuration.WithLabelValues(command).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncCommand(command string, result ResultLabel) {
	if p == nil || p.commands == nil {
		return
	}
	p.commands.WithLabelValues(command, string(result)).Inc()
}

func (p *PrometheusRecorder) IncFeeding(pet, kind string) {
	if p == nil || p.feedings == nil {
		return
	}
	p.feedings.WithLabelValues(pet, kind).Inc()
}

func (p *PrometheusRecorder) IncRollover() {
	if p == nil || p.rollovers == nil {
		return
	}
	p.rollovers.Inc()
}
