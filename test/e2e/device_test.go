package e2e

import (
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/lumina-devices/luminad/pkg/api"
	"github.com/lumina-devices/luminad/pkg/client"
	"github.com/lumina-devices/luminad/pkg/clock"
	"github.com/lumina-devices/luminad/pkg/controller"
	"github.com/lumina-devices/luminad/pkg/scheduler"
	"github.com/lumina-devices/luminad/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSink captures channel writes so tests can assert on the
// values that reached the hardware boundary.
type recordingSink struct {
	mu     sync.Mutex
	values [6]uint8
}

func (s *recordingSink) Write(channel int, value uint8) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[channel] = value
	return nil
}

func (s *recordingSink) Close() error { return nil }

func (s *recordingSink) snapshot() [6]uint8 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values
}

// device is one in-process luminad: real store, scheduler, and HTTP
// stack, with time driven by a fake clock.
type device struct {
	client *client.Client
	clock  *clock.FakeClock
	sched  *scheduler.Scheduler
	sink   *recordingSink
}

func newDevice(t *testing.T) *device {
	t.Helper()

	region := storage.NewFileRegion(filepath.Join(t.TempDir(), "routines.bin"))
	store := storage.NewRoutineStore(region)
	_, _, err := store.Load()
	require.NoError(t, err)

	clk := clock.Fake(time.Date(2024, 7, 8, 0, 0, 0, 0, time.UTC))
	ts := clock.NewManualTimeSource(clk, time.UTC)
	sink := &recordingSink{}
	ctrl := controller.New(store, sink, ts, nil)
	sched := scheduler.NewScheduler(ctrl, ts, clk, 0)

	server := httptest.NewServer(api.NewServer(ctrl, sched).Handler())
	t.Cleanup(server.Close)

	return &device{
		client: client.NewClient(server.URL),
		clock:  clk,
		sched:  sched,
		sink:   sink,
	}
}

// tickUntil advances the fake clock minute by minute, ticking the
// scheduler after each step, until the wall clock reaches target.
func (d *device) tickUntil(target time.Time) {
	for d.clock.Now().Before(target) {
		d.clock.Advance(time.Minute)
		d.sched.Tick()
	}
}

// TestRoutineLifecycle tests the full app-to-hardware flow: sync a
// routine set, sync the clock, and watch the scheduler drive the device
func TestRoutineLifecycle(t *testing.T) {
	d := newDevice(t)

	// The app pushes two routines: a morning preset and a nightly off
	accepted, err := d.client.SyncRoutines([]api.SyncRoutine{
		{
			ID: 1, Name: "morning glow", Hour: 7, Minute: 30,
			DaysOfWeek: "1111111", IsEnabled: true, DevicePower: true,
			PresetName: "dawn", SliderPreset: []int{255, 180, 0, 0, 0, 40},
		},
		{
			ID: 2, Name: "lights out", Hour: 22, Minute: 0,
			DaysOfWeek: "1111111", IsEnabled: true, DevicePower: false,
		},
	})
	require.NoError(t, err)
	require.Equal(t, 2, accepted)

	// Before time sync the scheduler never fires
	d.tickUntil(time.Date(2024, 7, 8, 8, 0, 0, 0, time.UTC))
	status, err := d.client.GetDevice()
	require.NoError(t, err)
	assert.False(t, status.IsOn)
	assert.False(t, status.Synchronized)

	// The app syncs the clock to Monday 07:00
	syncedAt := time.Date(2024, 7, 8, 7, 0, 0, 0, time.UTC)
	d.clock.Set(syncedAt)
	require.NoError(t, d.client.SetTime(syncedAt.Unix()))

	// At 07:30 the morning routine fires
	d.tickUntil(time.Date(2024, 7, 8, 7, 30, 0, 0, time.UTC))
	status, err = d.client.GetDevice()
	require.NoError(t, err)
	assert.True(t, status.IsOn)
	assert.Equal(t, []int{255, 180, 0, 0, 0, 40}, status.Channels)
	assert.Equal(t, [6]uint8{255, 180, 0, 0, 0, 40}, d.sink.snapshot())

	// At 22:00 the off routine powers the device down
	d.tickUntil(time.Date(2024, 7, 8, 22, 0, 0, 0, time.UTC))
	status, err = d.client.GetDevice()
	require.NoError(t, err)
	assert.False(t, status.IsOn)
	assert.Equal(t, []int{0, 0, 0, 0, 0, 0}, status.Channels)
	assert.Equal(t, [6]uint8{}, d.sink.snapshot())

	// Next morning it comes back on
	d.tickUntil(time.Date(2024, 7, 9, 7, 30, 0, 0, time.UTC))
	status, err = d.client.GetDevice()
	require.NoError(t, err)
	assert.True(t, status.IsOn)
	assert.Equal(t, []int{255, 180, 0, 0, 0, 40}, status.Channels)
}

// TestOversizedSyncLeavesSetIntact tests that a too-large replace is
// rejected without touching the stored set
func TestOversizedSyncLeavesSetIntact(t *testing.T) {
	d := newDevice(t)

	accepted, err := d.client.SyncRoutines([]api.SyncRoutine{
		{ID: 1, Name: "survivor", Hour: 12, Minute: 0, DaysOfWeek: "1111111", IsEnabled: true, DevicePower: true},
	})
	require.NoError(t, err)
	require.Equal(t, 1, accepted)

	var oversized []api.SyncRoutine
	for i := 0; i < 7; i++ {
		oversized = append(oversized, api.SyncRoutine{
			ID: i + 10, Name: "bulk", Hour: 1, Minute: 1,
			DaysOfWeek: "1111111", IsEnabled: true, DevicePower: true,
		})
	}

	_, err = d.client.SyncRoutines(oversized)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many routines")

	routines, err := d.client.ListRoutines()
	require.NoError(t, err)
	require.Len(t, routines, 1)
	assert.Equal(t, "survivor", routines[0].Name)
}

// TestDayMaskedRoutineSkipsOtherDays tests weekday filtering end to end
func TestDayMaskedRoutineSkipsOtherDays(t *testing.T) {
	d := newDevice(t)

	// Sunday-only routine
	_, err := d.client.SyncRoutines([]api.SyncRoutine{
		{
			ID: 1, Name: "sunday reset", Hour: 10, Minute: 0,
			DaysOfWeek: "0000001", IsEnabled: true, DevicePower: true,
			SliderPreset: []int{77},
		},
	})
	require.NoError(t, err)

	// Clock starts Monday 2024-07-08 09:00
	start := time.Date(2024, 7, 8, 9, 0, 0, 0, time.UTC)
	d.clock.Set(start)
	require.NoError(t, d.client.SetTime(start.Unix()))

	// Monday through Saturday: nothing fires
	d.tickUntil(time.Date(2024, 7, 13, 23, 0, 0, 0, time.UTC))
	status, err := d.client.GetDevice()
	require.NoError(t, err)
	assert.False(t, status.IsOn)

	// Sunday 10:00: fires
	d.tickUntil(time.Date(2024, 7, 14, 10, 0, 0, 0, time.UTC))
	status, err = d.client.GetDevice()
	require.NoError(t, err)
	assert.True(t, status.IsOn)
	assert.Equal(t, []int{77, 0, 0, 0, 0, 0}, status.Channels)
}

// TestManualControlSurvivesRestartOfSet tests that manual control and
// routine replacement interact cleanly
func TestManualControlSurvivesRestartOfSet(t *testing.T) {
	d := newDevice(t)

	require.NoError(t, d.client.SetChannels([]int{10, 20, 30}))
	status, err := d.client.GetDevice()
	require.NoError(t, err)
	assert.True(t, status.IsOn)

	// Replacing routines does not touch the live device state
	_, err = d.client.SyncRoutines([]api.SyncRoutine{
		{ID: 1, Name: "later", Hour: 23, Minute: 59, DaysOfWeek: "1111111", IsEnabled: true, DevicePower: true},
	})
	require.NoError(t, err)

	status, err = d.client.GetDevice()
	require.NoError(t, err)
	assert.True(t, status.IsOn)
	assert.Equal(t, []int{10, 20, 30, 0, 0, 0}, status.Channels)

	// Power off then on restores the previous intensities
	require.NoError(t, d.client.SetPower(false))
	require.NoError(t, d.client.SetPower(true))

	status, err = d.client.GetDevice()
	require.NoError(t, err)
	assert.Equal(t, []int{10, 20, 30, 0, 0, 0}, status.Channels)
}
