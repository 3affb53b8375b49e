/*
Package metrics exposes Prometheus instrumentation for luminad.

All collectors are package-level variables registered in init(), so any
package can record observations by importing this one. Handler() returns
the scrape endpoint mounted at /metrics by pkg/api.

# Metric Groups

Routine store:
  - luminad_routines_stored: persisted routine count
  - luminad_store_repairs_total{cause}: self-healing repairs (count byte
    corruption vs individual record corruption)

Scheduler:
  - luminad_routines_executed_total{kind}: executions by preset/off
  - luminad_check_pass_duration_seconds: match-pass latency
  - luminad_time_synchronized: time source sync flag

Device:
  - luminad_device_on, luminad_channel_intensity{channel}
  - luminad_actuator_write_errors_total: failed sink writes

Sync protocol and API:
  - luminad_sync_requests_total{outcome}
  - luminad_sync_entries_rejected_total{field}
  - luminad_api_requests_total{handler,status}
  - luminad_api_request_duration_seconds{handler}

# Usage

	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.CheckPassDuration)

	metrics.RoutinesStored.Set(float64(count))
*/
package metrics
