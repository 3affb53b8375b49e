/*
Package clock provides the injectable Clock used by the scheduler and
the ManualTimeSource consumed as the controller's wall clock.

The two concerns are deliberately separate. Clock is a monotonic-ish
reading used only to gate how often the scheduler runs a check pass;
TimeSource is the wall clock (hour, minute, weekday) that routines are
matched against, together with a sticky synchronized flag. The scheduler
does nothing until the time source reports synchronized, and there is no
transition back once set.

ManualTimeSource keeps the wall clock as an offset from its Clock, so a
single SetUnix call keeps the clock advancing afterwards. Tests compose
Fake() with a ManualTimeSource to drive both layers deterministically.
*/
package clock
