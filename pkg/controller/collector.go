package controller

import (
	"time"

	"github.com/lumina-devices/luminad/pkg/metrics"
)

// MetricsCollector refreshes controller gauges on a fixed interval
type MetricsCollector struct {
	controller *Controller
	stopCh     chan struct{}
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector(ctrl *Controller) *MetricsCollector {
	return &MetricsCollector{
		controller: ctrl,
		stopCh:     make(chan struct{}),
	}
}

// Start begins collecting metrics
func (c *MetricsCollector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		// Collect immediately on start
		c.collect()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector
func (c *MetricsCollector) Stop() {
	close(c.stopCh)
}

func (c *MetricsCollector) collect() {
	status := c.controller.Status()

	metrics.RoutinesStored.Set(float64(status.RoutineCount))

	if status.IsOn {
		metrics.DeviceOn.Set(1)
	} else {
		metrics.DeviceOn.Set(0)
	}

	if status.Synchronized {
		metrics.TimeSynchronized.Set(1)
	} else {
		metrics.TimeSynchronized.Set(0)
	}
}
