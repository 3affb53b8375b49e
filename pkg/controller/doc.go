/*
Package controller owns the luminad device state and routine set.

The Controller is the single owner of the volatile DeviceState and the
handle every other component mutates state through:

	┌─────────────┐   execute    ┌──────────────┐   write    ┌──────────┐
	│  scheduler  ├─────────────▶│  Controller  ├───────────▶│   Sink   │
	└─────────────┘              │  DeviceState │            └──────────┘
	┌─────────────┐   replace/   │  RoutineStore│
	│  sync API   ├─────────────▶│  TimeSource  │
	└─────────────┘   set time   └──────────────┘

Routine execution and manual control share one power-off path: the
current intensities are snapshotted before the outputs are zeroed, and
the next manual power-on restores the snapshot when it is non-zero.
Every state change ends with a flush of all six channels to the
actuation sink; sink failures are logged and counted but never block or
propagate.

MetricsCollector refreshes the device gauges every 15 seconds on top of
the event-driven updates, so scrapes stay accurate across restarts of
the companion app.
*/
package controller
