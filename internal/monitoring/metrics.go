package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"expeditor/internal/models"
)

// Collector registers and updates the queue's Prometheus metrics.
// It satisfies the engine's Recorder interface.
type Collector struct {
	registry *prometheus.Registry

	queueDepth  prometheus.Gauge
	stationLoad *prometheus.GaugeVec
	priorities  prometheus.Histogram
	escalations prometheus.Counter
}

// NewCollector creates a collector with all queue metrics registered
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kds_queue_depth",
			Help: "Number of orders currently tracked by the queue",
		}),
		stationLoad: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "kds_station_load",
			Help: "Current load of a station as a fraction of its capacity",
		}, []string{"station"}),
		priorities: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kds_priority_score",
			Help:    "Distribution of computed order priority scores",
			Buckets: prometheus.LinearBuckets(0, 0.1, 15),
		}),
		escalations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kds_escalations_total",
			Help: "Orders auto-escalated for breaching the SLA",
		}),
	}

	c.registry.MustRegister(c.queueDepth, c.stationLoad, c.priorities, c.escalations)
	return c
}

// Handler returns an HTTP handler exposing the registered metrics
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordQueueDepth records the current number of tracked orders
func (c *Collector) RecordQueueDepth(depth int) {
	c.queueDepth.Set(float64(depth))
}

// RecordStationLoad records a station's current load
func (c *Collector) RecordStationLoad(station models.Station, load float64) {
	c.stationLoad.WithLabelValues(string(station)).Set(load)
}

// RecordPriority records a computed priority score
func (c *Collector) RecordPriority(score float64) {
	c.priorities.Observe(score)
}

// RecordEscalation counts an auto-escalated order
func (c *Collector) RecordEscalation(orderID string) {
	c.escalations.Inc()
}
