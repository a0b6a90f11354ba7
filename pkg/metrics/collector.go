package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	SCAN_INITIAL_ASSIGNMENT = "initial_assignment"
	SCAN_FORWARD            = "forward"
)

type Collector struct {
	reg *prometheus.Registry

	ReportsProcessed *prometheus.CounterVec // scan label: initial_assignment|forward
	NoMatch          *prometheus.CounterVec // scan label
	LayoverMatches   prometheus.Counter
	SpatialMatches   prometheus.Histogram // number of candidate matches per report
	ScanDuration     *prometheus.HistogramVec
	TrackedVehicles  prometheus.Gauge
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		ReportsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transitmatch_reports_processed_total",
			Help: "Total avl reports matched.",
		}, []string{"scan"}),
		NoMatch: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transitmatch_reports_no_match_total",
			Help: "Total avl reports without any spatial match.",
		}, []string{"scan"}),
		LayoverMatches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "transitmatch_layover_matches_total",
			Help: "Total avl reports whose chosen match is at a layover.",
		}),
		SpatialMatches: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "transitmatch_spatial_matches_per_report",
			Help:    "Number of candidate spatial matches found for a report.",
			Buckets: prometheus.LinearBuckets(0, 1, 10),
		}),
		ScanDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "transitmatch_scan_duration_seconds",
			Help:    "Duration of a spatial matching scan.",
			Buckets: prometheus.ExponentialBuckets(0.00001, 2, 15),
		}, []string{"scan"}),
		TrackedVehicles: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "transitmatch_tracked_vehicles",
			Help: "Number of vehicles with tracking state.",
		}),
	}

	reg.MustRegister(
		c.ReportsProcessed, c.NoMatch, c.LayoverMatches,
		c.SpatialMatches, c.ScanDuration, c.TrackedVehicles,
	)

	return c
}

// ObserveScan. record one processed report.
func (c *Collector) ObserveScan(scan string, numberOfMatches int, took time.Duration) {
	c.ReportsProcessed.WithLabelValues(scan).Inc()
	c.SpatialMatches.Observe(float64(numberOfMatches))
	c.ScanDuration.WithLabelValues(scan).Observe(took.Seconds())
	if numberOfMatches == 0 {
		c.NoMatch.WithLabelValues(scan).Inc()
	}
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.reg
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}
