/*
Package scheduler drives autonomous routine execution for luminad.

A driver loop invokes Tick on a short interval (default one second);
Tick gates the actual work behind a one-minute check interval measured
on an injectable clock, so a pass runs at most once per minute and
tests advance time without sleeping.

# State Machine

	┌────────────────┐  time set   ┌────────┐  60s elapsed  ┌──────────┐
	│ Unsynchronized ├────────────▶│  Idle  ├──────────────▶│ Checking │
	└────────────────┘             └────────┘               └────┬─────┘
	                                    ▲       pass complete    │
	                                    └────────────────────────┘

Synchronization is sticky: once the time source has been set there is no
transition back until restart.

# Check Pass

A pass reads (hour, minute, weekday) from the time source, converts the
Sunday-based weekday to the Monday-based day-mask bit, and executes
every enabled routine whose hour, minute, and day mask all match —
immediately and in store order, not batched. When several routines match
the same minute, all execute and the final device state is whatever the
last one produced.
*/
package scheduler
