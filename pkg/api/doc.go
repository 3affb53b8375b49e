/*
Package api implements the companion-app sync protocol over HTTP.

# Endpoints

	POST /api/routines/sync    bulk-replace the routine set
	GET  /api/routines         list the stored routines
	POST /api/time             set the wall clock (flips synchronized)
	GET  /api/device           device status snapshot
	POST /api/device/power     manual power control
	POST /api/device/channels  manual channel intensities
	GET  /health               liveness
	GET  /ready                readiness (storage reachable)
	GET  /metrics              Prometheus scrape

All bodies use the {"success","message","data"} envelope.

# Bulk Replace Semantics

The replace path is the only mutation of the routine set and follows
the store's error taxonomy. A body that fails to parse, or a routine
list longer than the store capacity, rejects the whole request and
leaves the store untouched. Individually invalid entries are skipped —
with a structured rejection (index, field, reason) that is logged and
counted — while the surviving entries still commit. The response
reports only the aggregate accepted count; per-entry detail is a known
limitation of the protocol.

Note the wire asymmetry, preserved from the protocol's history: replace
takes days as a 7-character '0'/'1' string (Monday..Sunday), list
returns days as an integer bitmask.
*/
package api
