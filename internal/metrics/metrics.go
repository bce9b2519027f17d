package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	albumsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fotopdf",
			Name:      "albums_total",
			Help:      "Album runs by source (upload, path) and result (created, warning, error)",
		},
		[]string{"source", "result"},
	)

	albumDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fotopdf",
			Name:      "album_duration_seconds",
			Help:      "Duration of album runs by source",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"source"},
	)

	photosTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fotopdf",
			Name:      "photos_total",
			Help:      "Photos placed in created albums",
		},
	)

	outputBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "fotopdf",
			Name:      "album_size_bytes",
			Help:      "Size of created PDFs",
			Buckets:   prometheus.ExponentialBuckets(256*1024, 2, 10),
		},
	)

	registerOnce sync.Once
)

// Init registers collectors. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(albumsTotal, albumDuration, photosTotal, outputBytes)
	})
}

// Handler returns the http.Handler for /metrics
func Handler() http.Handler { return promhttp.Handler() }

// ObserveAlbum records one pipeline run
func ObserveAlbum(source, result string, dur time.Duration) {
	albumsTotal.WithLabelValues(source, result).Inc()
	albumDuration.WithLabelValues(source).Observe(dur.Seconds())
}

// ObserveOutput records a created PDF
func ObserveOutput(photos int, bytes int64) {
	photosTotal.Add(float64(photos))
	outputBytes.Observe(float64(bytes))
}
