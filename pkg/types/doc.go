/*
Package types defines the shared data model for the luminad controller.

The central entity is the RoutineRecord: a scheduled action bound to a
time-of-day and a 7-bit weekday mask. A routine either powers the device
off (IsOffRoutine) or applies a named preset of six channel intensities.
DeviceState is the volatile output state mutated by routine execution
and manual control; it is never persisted.

Day masks use bit0=Monday .. bit6=Sunday. The wall clock reports
weekdays in 0=Sunday .. 6=Saturday order, so DayBitFromWeekday converts
between the two conventions.

Validation rules are shared by every path that admits a record (storage
load, bulk replace): hour and minute in range, mask within 7 bits, names
printable ASCII of at most NameLength bytes. A record that fails
validation is dropped, never stored as a zeroed placeholder.
*/
package types
