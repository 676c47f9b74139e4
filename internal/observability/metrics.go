package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	screenshotPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "screenshot_service",
		Subsystem: "persistence",
		Name:      "last_screenshot_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent screenshot persisted to Postgres.",
	})
	screenshotDeleteCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "screenshot_service",
		Subsystem: "persistence",
		Name:      "screenshots_deleted_total",
		Help:      "Number of screenshot records deleted.",
	})
	blobCleanupFailureCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "screenshot_service",
		Subsystem: "storage",
		Name:      "blob_cleanup_failures_total",
		Help:      "Number of best-effort blob removals that failed after record deletion.",
	})
)

func init() {
	prometheus.MustRegister(screenshotPersistGauge, screenshotDeleteCounter, blobCleanupFailureCounter)
}

// RecordScreenshotPersisted updates the persistence watermark gauge.
func RecordScreenshotPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	screenshotPersistGauge.Set(float64(ts.Unix()))
}

// RecordScreenshotDeleted counts a successful record deletion.
func RecordScreenshotDeleted() {
	screenshotDeleteCounter.Inc()
}

// RecordBlobCleanupFailure counts a swallowed blob cleanup failure.
func RecordBlobCleanupFailure() {
	blobCleanupFailureCounter.Inc()
}
