package controller

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/lumina-devices/luminad/pkg/actuator"
	"github.com/lumina-devices/luminad/pkg/clock"
	"github.com/lumina-devices/luminad/pkg/events"
	"github.com/lumina-devices/luminad/pkg/log"
	"github.com/lumina-devices/luminad/pkg/metrics"
	"github.com/lumina-devices/luminad/pkg/storage"
	"github.com/lumina-devices/luminad/pkg/types"
	"github.com/rs/zerolog"
)

// Controller owns the volatile device state and the loaded routine set.
// All state mutation — routine execution, manual power and channel
// control, bulk replace, time set — goes through it, so the scheduler
// and the sync protocol never touch shared state directly.
type Controller struct {
	mu         sync.Mutex
	state      types.DeviceState
	store      *storage.RoutineStore
	sink       actuator.Sink
	timeSource *clock.ManualTimeSource
	broker     *events.Broker
	startedAt  time.Time
	logger     zerolog.Logger
}

// New creates a controller. The device starts powered off with all
// channels at zero; DeviceState is never persisted.
func New(store *storage.RoutineStore, sink actuator.Sink, ts *clock.ManualTimeSource, broker *events.Broker) *Controller {
	return &Controller{
		store:      store,
		sink:       sink,
		timeSource: ts,
		broker:     broker,
		startedAt:  time.Now(),
		logger:     log.WithComponent("controller"),
	}
}

// Store returns the routine store.
func (c *Controller) Store() *storage.RoutineStore {
	return c.store
}

// TimeSource returns the wall-clock source.
func (c *Controller) TimeSource() *clock.ManualTimeSource {
	return c.timeSource
}

// Routines returns the loaded routine set in store order.
func (c *Controller) Routines() []types.RoutineRecord {
	return c.store.Records()
}

// State returns a copy of the current device state.
func (c *Controller) State() types.DeviceState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Status is the device snapshot exposed over the API.
type Status struct {
	IsOn          bool
	Channels      [types.NumChannels]uint8
	Synchronized  bool
	RoutineCount  int
	UptimeSeconds int64
}

// Status returns the current device snapshot.
func (c *Controller) Status() Status {
	c.mu.Lock()
	state := c.state
	c.mu.Unlock()

	return Status{
		IsOn:          state.IsOn,
		Channels:      state.ChannelIntensity,
		Synchronized:  c.timeSource.Synchronized(),
		RoutineCount:  c.store.Count(),
		UptimeSeconds: int64(time.Since(c.startedAt).Seconds()),
	}
}

// ExecuteRoutine applies one routine's effect to the device state and
// pushes every channel to the actuation sink.
func (c *Controller) ExecuteRoutine(r types.RoutineRecord) {
	c.mu.Lock()
	if r.IsOffRoutine {
		c.powerOffLocked()
	} else {
		c.state.IsOn = true
		c.state.ChannelIntensity = r.ChannelValues
	}
	c.flushLocked()
	c.mu.Unlock()

	kind := "preset"
	if r.IsOffRoutine {
		kind = "off"
	}
	metrics.RoutinesExecutedTotal.WithLabelValues(kind).Inc()
	rlog := log.WithRoutine(r.ID, r.Name)
	rlog.Info().Str("kind", kind).Msg("routine executed")
	c.publish(events.EventRoutineExecuted, fmt.Sprintf("routine %q executed", r.Name), map[string]string{
		"routine_id": strconv.Itoa(int(r.ID)),
		"kind":       kind,
	})
}

// SetPower handles manual power control. Powering off snapshots the
// current intensities; powering on restores the snapshot when it is
// non-zero, otherwise leaves intensities as they are.
func (c *Controller) SetPower(on bool) {
	c.mu.Lock()
	if on {
		c.state.IsOn = true
		if anyNonZero(c.state.PreviousChannelIntensity) {
			c.state.ChannelIntensity = c.state.PreviousChannelIntensity
		}
	} else {
		c.powerOffLocked()
	}
	c.flushLocked()
	c.mu.Unlock()

	c.logger.Info().Bool("on", on).Msg("manual power")
	c.publish(events.EventDevicePower, fmt.Sprintf("device power %v", on), nil)
}

// SetChannels handles manual intensity control. Missing trailing values
// keep their current intensity; excess values are ignored. Setting
// channels marks the device on.
func (c *Controller) SetChannels(values []uint8) {
	c.mu.Lock()
	for i := 0; i < types.NumChannels && i < len(values); i++ {
		c.state.ChannelIntensity[i] = values[i]
	}
	c.state.IsOn = true
	c.flushLocked()
	c.mu.Unlock()

	c.logger.Info().Int("values", len(values)).Msg("manual channels")
	c.publish(events.EventDeviceChannels, "channel intensities set", nil)
}

// ReplaceRoutines bulk-replaces the persisted routine set. The batch
// semantics (whole-batch rejection, per-record filtering) live in the
// store; this adds events and logging.
func (c *Controller) ReplaceRoutines(candidates []types.RoutineRecord) (int, error) {
	accepted, err := c.store.Replace(candidates)
	if err != nil {
		return 0, err
	}

	c.logger.Info().Int("accepted", accepted).Int("offered", len(candidates)).Msg("routine set replaced")
	c.publish(events.EventRoutinesReplaced, fmt.Sprintf("routine set replaced, %d stored", accepted), map[string]string{
		"accepted": strconv.Itoa(accepted),
	})
	return accepted, nil
}

// SetTime sets the wall clock from a unix-seconds timestamp and marks
// the time source synchronized. This is the only way the scheduler
// leaves its unsynchronized state when no external time feed exists.
func (c *Controller) SetTime(timestamp int64) {
	c.timeSource.SetUnix(timestamp)
	metrics.TimeSynchronized.Set(1)

	c.logger.Info().Int64("timestamp", timestamp).Msg("wall clock set")
	c.publish(events.EventTimeSynchronized, "wall clock set manually", map[string]string{
		"timestamp": strconv.FormatInt(timestamp, 10),
	})
}

// powerOffLocked is the shared power-off path for off-routines and
// manual control: snapshot intensities, then zero the outputs.
func (c *Controller) powerOffLocked() {
	c.state.PreviousChannelIntensity = c.state.ChannelIntensity
	c.state.IsOn = false
	c.state.ChannelIntensity = [types.NumChannels]uint8{}
}

// flushLocked writes every channel to the sink and refreshes the device
// gauges. Sink failures are logged and counted, never propagated.
func (c *Controller) flushLocked() {
	for i := 0; i < types.NumChannels; i++ {
		if err := c.sink.Write(i, c.state.ChannelIntensity[i]); err != nil {
			metrics.ActuatorWriteErrorsTotal.Inc()
			clog := log.WithChannel(i)
			clog.Warn().Err(err).Msg("actuator write failed")
		}
		metrics.ChannelIntensity.WithLabelValues(strconv.Itoa(i)).Set(float64(c.state.ChannelIntensity[i]))
	}
	if c.state.IsOn {
		metrics.DeviceOn.Set(1)
	} else {
		metrics.DeviceOn.Set(0)
	}
}

func (c *Controller) publish(eventType events.EventType, message string, metadata map[string]string) {
	if c.broker == nil {
		return
	}
	c.broker.Publish(events.New(eventType, message, metadata))
}

func anyNonZero(values [types.NumChannels]uint8) bool {
	for _, v := range values {
		if v != 0 {
			return true
		}
	}
	return false
}
