package scheduler

import (
	"sync"
	"time"

	"github.com/lumina-devices/luminad/pkg/clock"
	"github.com/lumina-devices/luminad/pkg/controller"
	"github.com/lumina-devices/luminad/pkg/log"
	"github.com/lumina-devices/luminad/pkg/metrics"
	"github.com/lumina-devices/luminad/pkg/types"
	"github.com/rs/zerolog"
)

// Phase is the scheduler's observable state.
type Phase string

const (
	// PhaseUnsynchronized means the time source has never been set;
	// ticks are no-ops until it is. There is no transition back.
	PhaseUnsynchronized Phase = "unsynchronized"

	// PhaseIdle means the scheduler is synchronized and waiting for the
	// next minute boundary.
	PhaseIdle Phase = "idle"

	// PhaseChecking means a match pass is running.
	PhaseChecking Phase = "checking"
)

// checkInterval is the gate between match passes: exactly one minute,
// matching the per-minute granularity of routine times.
const checkInterval = time.Minute

// DefaultTickInterval is how often the driver loop invokes Tick.
const DefaultTickInterval = time.Second

// Scheduler matches enabled routines against the wall clock once per
// minute and executes matches in store order.
type Scheduler struct {
	controller   *controller.Controller
	timeSource   clock.TimeSource
	clock        clock.Clock
	tickInterval time.Duration

	mu        sync.Mutex
	lastCheck time.Time
	checking  bool

	stopCh chan struct{}
	logger zerolog.Logger
}

// NewScheduler creates a scheduler. A zero tickInterval uses
// DefaultTickInterval.
func NewScheduler(ctrl *controller.Controller, ts clock.TimeSource, clk clock.Clock, tickInterval time.Duration) *Scheduler {
	if tickInterval <= 0 {
		tickInterval = DefaultTickInterval
	}
	return &Scheduler{
		controller:   ctrl,
		timeSource:   ts,
		clock:        clk,
		tickInterval: tickInterval,
		stopCh:       make(chan struct{}),
		logger:       log.WithComponent("scheduler"),
	}
}

// Start begins the driver loop
func (s *Scheduler) Start() {
	go s.run()
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	close(s.stopCh)
}

func (s *Scheduler) run() {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Tick()
		case <-s.stopCh:
			return
		}
	}
}

// Tick is one driver step: a no-op until the time source is
// synchronized and at least checkInterval has elapsed since the last
// pass, otherwise it runs a check pass. Exposed so tests can drive the
// scheduler with a fake clock instead of real sleeps.
func (s *Scheduler) Tick() {
	if !s.timeSource.Synchronized() {
		return
	}

	s.mu.Lock()
	now := s.clock.Now()
	if !s.lastCheck.IsZero() && now.Sub(s.lastCheck) < checkInterval {
		s.mu.Unlock()
		return
	}
	s.lastCheck = now
	s.checking = true
	s.mu.Unlock()

	s.checkPass()

	s.mu.Lock()
	s.checking = false
	s.mu.Unlock()
}

// checkPass matches every enabled routine against the current wall
// clock and executes matches immediately, in store order. When several
// routines match the same minute the last one executed wins; that
// ordering dependence is existing behavior, kept as-is.
func (s *Scheduler) checkPass() {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.CheckPassDuration)

	hour, minute, weekday := s.timeSource.WallClock()
	bit := types.DayBitFromWeekday(weekday)

	matches := 0
	for _, record := range s.controller.Routines() {
		if !record.Enabled {
			continue
		}
		if int(record.Hour) != hour || int(record.Minute) != minute {
			continue
		}
		if !record.Days.Has(bit) {
			continue
		}
		s.controller.ExecuteRoutine(record)
		matches++
	}

	if matches > 0 {
		s.logger.Info().
			Int("matches", matches).
			Int("hour", hour).
			Int("minute", minute).
			Int("weekday", weekday).
			Msg("check pass executed routines")
	} else {
		s.logger.Debug().Int("hour", hour).Int("minute", minute).Msg("check pass, no matches")
	}
}

// State returns the scheduler's current phase.
func (s *Scheduler) State() Phase {
	if !s.timeSource.Synchronized() {
		return PhaseUnsynchronized
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.checking {
		return PhaseChecking
	}
	return PhaseIdle
}
