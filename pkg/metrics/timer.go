package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Timer measures elapsed time for histogram observations
type Timer struct {
	start time.Time
}

// NewTimer creates a timer starting now
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer started
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// ObserveDuration records the elapsed time into a histogram
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(t.Duration().Seconds())
}

// ObserveDurationVec records the elapsed time into a labeled histogram
func (t *Timer) ObserveDurationVec(vec *prometheus.HistogramVec, labels ...string) {
	vec.WithLabelValues(labels...).Observe(t.Duration().Seconds())
}
