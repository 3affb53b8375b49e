package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Routine store metrics
	RoutinesStored = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "luminad_routines_stored",
			Help: "Number of routines currently persisted",
		},
	)

	StoreRepairsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "luminad_store_repairs_total",
			Help: "Total number of self-healing store repairs by cause",
		},
		[]string{"cause"},
	)

	// Scheduler metrics
	RoutinesExecutedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "luminad_routines_executed_total",
			Help: "Total number of routines executed by kind",
		},
		[]string{"kind"},
	)

	CheckPassDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "luminad_check_pass_duration_seconds",
			Help:    "Duration of scheduler check passes in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	TimeSynchronized = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "luminad_time_synchronized",
			Help: "Whether the time source is synchronized (1 = synchronized)",
		},
	)

	// Device metrics
	DeviceOn = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "luminad_device_on",
			Help: "Whether the device output is on (1 = on)",
		},
	)

	ChannelIntensity = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "luminad_channel_intensity",
			Help: "Current output intensity per channel (0-255)",
		},
		[]string{"channel"},
	)

	ActuatorWriteErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "luminad_actuator_write_errors_total",
			Help: "Total number of failed actuation sink writes",
		},
	)

	// Sync protocol metrics
	SyncRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "luminad_sync_requests_total",
			Help: "Total number of bulk-replace requests by outcome",
		},
		[]string{"outcome"},
	)

	SyncEntriesRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "luminad_sync_entries_rejected_total",
			Help: "Total number of bulk-replace entries rejected by field",
		},
		[]string{"field"},
	)

	// API metrics
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "luminad_api_requests_total",
			Help: "Total number of API requests by handler and status",
		},
		[]string{"handler", "status"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "luminad_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"handler"},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(RoutinesStored)
	prometheus.MustRegister(StoreRepairsTotal)
	prometheus.MustRegister(RoutinesExecutedTotal)
	prometheus.MustRegister(CheckPassDuration)
	prometheus.MustRegister(TimeSynchronized)
	prometheus.MustRegister(DeviceOn)
	prometheus.MustRegister(ChannelIntensity)
	prometheus.MustRegister(ActuatorWriteErrorsTotal)
	prometheus.MustRegister(SyncRequestsTotal)
	prometheus.MustRegister(SyncEntriesRejectedTotal)
	prometheus.MustRegister(APIRequestsTotal)
	prometheus.MustRegister(APIRequestDuration)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
