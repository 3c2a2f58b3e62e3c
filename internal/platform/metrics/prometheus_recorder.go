package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sleeptrack"

// PrometheusRecorder implements Recorder using Prometheus collectors.
type PrometheusRecorder struct {
	commands        *prom.CounterVec
	commandDuration *prom.HistogramVec
	storageErrors   *prom.CounterVec
	tracking        prom.Gauge
}

// NewPrometheusRecorder registers the sleeptrack collectors on reg. A nil reg
// gets a private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		commands: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "State manager commands by outcome",
		}, []string{"component", "command", "result"}),
		commandDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Duration of state manager commands including storage I/O",
			Buckets:   prom.DefBuckets,
		}, []string{"component", "command"}),
		storageErrors: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "storage_errors_total",
			Help:      "Failed storage operations",
		}, []string{"op"}),
		tracking: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "tracking",
			Help:      "1 while a sleep session is open",
		}),
	}
	reg.MustRegister(pr.commands, pr.commandDuration, pr.storageErrors, pr.tracking)
	return pr
}

func (p *PrometheusRecorder) IncCommand(component, command string, result ResultLabel) {
	p.commands.WithLabelValues(component, command, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveCommandDuration(component, command string, d time.Duration) {
	p.commandDuration.WithLabelValues(component, command).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStorageError(op string) {
	p.storageErrors.WithLabelValues(op).Inc()
}

func (p *PrometheusRecorder) SetTracking(open bool) {
	if open {
		p.tracking.Set(1)
		return
	}
	p.tracking.Set(0)
}

// HTTPHandler serves the metrics gathered by reg.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
