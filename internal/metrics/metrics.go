// Package metrics exposes sync loop counters and gauges via Prometheus.
package metrics

import (
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder holds the daemon's Prometheus metrics.
type Recorder struct {
	reg *prom.Registry

	syncs            prom.Counter
	writeFailures    prom.Counter
	readFailures     prom.Counter
	sourceBrightness prom.Gauge
	targetBrightness prom.Gauge
}

// NewRecorder constructs and registers the daemon metrics on a fresh registry.
func NewRecorder() *Recorder {
	reg := prom.NewRegistry()

	r := &Recorder{
		reg: reg,
		syncs: prom.NewCounter(prom.CounterOpts{
			Namespace: "backlightd",
			Name:      "syncs_total",
			Help:      "Successful brightness writes to the target backlight",
		}),
		writeFailures: prom.NewCounter(prom.CounterOpts{
			Namespace: "backlightd",
			Name:      "write_failures_total",
			Help:      "Failed brightness writes to the target backlight",
		}),
		readFailures: prom.NewCounter(prom.CounterOpts{
			Namespace: "backlightd",
			Name:      "read_failures_total",
			Help:      "Failed brightness reads from the source backlight",
		}),
		sourceBrightness: prom.NewGauge(prom.GaugeOpts{
			Namespace: "backlightd",
			Name:      "source_brightness",
			Help:      "Last observed source brightness value",
		}),
		targetBrightness: prom.NewGauge(prom.GaugeOpts{
			Namespace: "backlightd",
			Name:      "target_brightness",
			Help:      "Last written target brightness value",
		}),
	}

	reg.MustRegister(r.syncs, r.writeFailures, r.readFailures, r.sourceBrightness, r.targetBrightness)
	return r
}

// ObserveSync records a successful sync of source -> target.
func (r *Recorder) ObserveSync(sourceValue, targetValue int) {
	r.syncs.Inc()
	r.sourceBrightness.Set(float64(sourceValue))
	r.targetBrightness.Set(float64(targetValue))
}

// ObserveWriteFailure records a failed target write.
func (r *Recorder) ObserveWriteFailure() {
	r.writeFailures.Inc()
}

// ObserveReadFailure records a failed source read.
func (r *Recorder) ObserveReadFailure() {
	r.readFailures.Inc()
}

// Handler returns the HTTP handler serving the /metrics endpoint.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
