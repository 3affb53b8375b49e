package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/lumina-devices/luminad/pkg/actuator"
	"github.com/lumina-devices/luminad/pkg/clock"
	"github.com/lumina-devices/luminad/pkg/controller"
	"github.com/lumina-devices/luminad/pkg/storage"
	"github.com/lumina-devices/luminad/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *controller.Controller) {
	t.Helper()

	region := storage.NewFileRegion(filepath.Join(t.TempDir(), "routines.bin"))
	store := storage.NewRoutineStore(region)
	_, _, err := store.Load()
	require.NoError(t, err)

	ts := clock.NewManualTimeSource(clock.Fake(time.Unix(1000, 0)), time.UTC)
	ctrl := controller.New(store, actuator.NopSink{}, ts, nil)
	return NewServer(ctrl, nil), ctrl
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, Response) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var resp Response
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func decodeData(t *testing.T, resp Response, out interface{}) {
	t.Helper()
	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, out))
}

// TestSyncAndListRoundTrip tests that replaced routines come back intact
func TestSyncAndListRoundTrip(t *testing.T) {
	server, _ := newTestServer(t)

	syncReq := SyncRequest{Routines: []SyncRoutine{
		{
			ID: 1, Name: "morning", Hour: 7, Minute: 30,
			DaysOfWeek: "1111111", IsEnabled: true, DevicePower: true,
			PresetName: "dawn", SliderPreset: []int{255, 0, 0, 0, 0, 0},
			CreatedAt: 1720000000,
		},
		{
			ID: 2, Name: "night", Hour: 22, Minute: 0,
			DaysOfWeek: "0000011", IsEnabled: true, DevicePower: false,
		},
	}}

	rec, resp := doJSON(t, server.Handler(), http.MethodPost, "/api/routines/sync", syncReq)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)

	var syncData SyncData
	decodeData(t, resp, &syncData)
	assert.Equal(t, 2, syncData.RoutineCount)

	rec, resp = doJSON(t, server.Handler(), http.MethodGet, "/api/routines", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listData ListData
	decodeData(t, resp, &listData)
	require.Equal(t, 2, listData.RoutineCount)

	first := listData.Routines[0]
	assert.Equal(t, 1, first.ID)
	assert.Equal(t, "morning", first.Name)
	assert.Equal(t, 7, first.Hour)
	assert.Equal(t, 30, first.Minute)
	assert.Equal(t, 127, first.Days)
	assert.True(t, first.IsEnabled)
	assert.False(t, first.IsOffRoutine)
	assert.Equal(t, []int{255, 0, 0, 0, 0, 0}, first.SliderValues)

	second := listData.Routines[1]
	assert.True(t, second.IsOffRoutine)
	assert.Equal(t, 0b1100000, second.Days) // Saturday and Sunday
	assert.Equal(t, []int{0, 0, 0, 0, 0, 0}, second.SliderValues)
}

// TestSyncBatchTooLarge tests whole-request rejection with the store untouched
func TestSyncBatchTooLarge(t *testing.T) {
	server, ctrl := newTestServer(t)

	// Seed an existing set
	_, err := ctrl.ReplaceRoutines([]types.RoutineRecord{
		{ID: 1, Name: "keep me", Hour: 6, Minute: 0, Days: 1, Enabled: true},
	})
	require.NoError(t, err)

	oversized := SyncRequest{}
	for i := 0; i < types.MaxRoutines+1; i++ {
		oversized.Routines = append(oversized.Routines, SyncRoutine{
			ID: i, Name: fmt.Sprintf("routine %d", i), Hour: 1, Minute: 2,
			DaysOfWeek: "1000000", IsEnabled: true, DevicePower: true,
		})
	}

	rec, resp := doJSON(t, server.Handler(), http.MethodPost, "/api/routines/sync", oversized)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.Success)

	// Pre-existing set unchanged
	_, resp = doJSON(t, server.Handler(), http.MethodGet, "/api/routines", nil)
	var listData ListData
	decodeData(t, resp, &listData)
	require.Equal(t, 1, listData.RoutineCount)
	assert.Equal(t, "keep me", listData.Routines[0].Name)
}

// TestSyncBoundaryEntriesSkipped tests that invalid entries are skipped
// while their valid siblings commit
func TestSyncBoundaryEntriesSkipped(t *testing.T) {
	server, _ := newTestServer(t)

	syncReq := SyncRequest{Routines: []SyncRoutine{
		{ID: 1, Name: "bad minute", Hour: 8, Minute: 60, DaysOfWeek: "1111111", IsEnabled: true, DevicePower: true},
		{ID: 2, Name: "bad hour", Hour: 24, Minute: 0, DaysOfWeek: "1111111", IsEnabled: true, DevicePower: true},
		{ID: 3, Name: "good", Hour: 8, Minute: 15, DaysOfWeek: "1111111", IsEnabled: true, DevicePower: true},
	}}

	rec, resp := doJSON(t, server.Handler(), http.MethodPost, "/api/routines/sync", syncReq)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)

	var syncData SyncData
	decodeData(t, resp, &syncData)
	assert.Equal(t, 1, syncData.RoutineCount)

	_, resp = doJSON(t, server.Handler(), http.MethodGet, "/api/routines", nil)
	var listData ListData
	decodeData(t, resp, &listData)
	require.Equal(t, 1, listData.RoutineCount)
	assert.Equal(t, "good", listData.Routines[0].Name)
}

// TestSyncMalformedBody tests parse-failure rejection
func TestSyncMalformedBody(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/routines/sync", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "invalid request body")
}

// TestSyncIdempotent tests that replaying a sync yields the same set
func TestSyncIdempotent(t *testing.T) {
	server, _ := newTestServer(t)

	syncReq := SyncRequest{Routines: []SyncRoutine{
		{ID: 1, Name: "only", Hour: 5, Minute: 5, DaysOfWeek: "1010101", IsEnabled: true, DevicePower: true, SliderPreset: []int{9}},
	}}

	_, first := doJSON(t, server.Handler(), http.MethodPost, "/api/routines/sync", syncReq)
	_, second := doJSON(t, server.Handler(), http.MethodPost, "/api/routines/sync", syncReq)

	var firstData, secondData SyncData
	decodeData(t, first, &firstData)
	decodeData(t, second, &secondData)
	assert.Equal(t, firstData, secondData)

	_, resp := doJSON(t, server.Handler(), http.MethodGet, "/api/routines", nil)
	var listData ListData
	decodeData(t, resp, &listData)
	assert.Equal(t, 1, listData.RoutineCount)
}

// TestTimeSet tests the manual time-set entry point
func TestTimeSet(t *testing.T) {
	server, ctrl := newTestServer(t)

	assert.False(t, ctrl.TimeSource().Synchronized())

	rec, resp := doJSON(t, server.Handler(), http.MethodPost, "/api/time",
		TimeRequest{Timestamp: time.Date(2024, 7, 10, 7, 30, 0, 0, time.UTC).Unix()})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.True(t, ctrl.TimeSource().Synchronized())

	hour, minute, weekday := ctrl.TimeSource().WallClock()
	assert.Equal(t, 7, hour)
	assert.Equal(t, 30, minute)
	assert.Equal(t, 3, weekday)
}

// TestTimeSetRejectsNonPositive tests timestamp validation
func TestTimeSetRejectsNonPositive(t *testing.T) {
	server, ctrl := newTestServer(t)

	rec, resp := doJSON(t, server.Handler(), http.MethodPost, "/api/time", TimeRequest{Timestamp: 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.Success)
	assert.False(t, ctrl.TimeSource().Synchronized())
}

// TestDeviceStatusAndControl tests the device surface
func TestDeviceStatusAndControl(t *testing.T) {
	server, _ := newTestServer(t)

	// Set channels, read them back
	rec, _ := doJSON(t, server.Handler(), http.MethodPost, "/api/device/channels",
		ChannelsRequest{Channels: []int{100, 200, 300}})
	require.Equal(t, http.StatusOK, rec.Code)

	_, resp := doJSON(t, server.Handler(), http.MethodGet, "/api/device", nil)
	var device DeviceData
	decodeData(t, resp, &device)
	assert.True(t, device.IsOn)
	assert.Equal(t, []int{100, 200, 255, 0, 0, 0}, device.Channels) // 300 clamps

	// Power off, read back
	rec, _ = doJSON(t, server.Handler(), http.MethodPost, "/api/device/power", PowerRequest{On: false})
	require.Equal(t, http.StatusOK, rec.Code)

	_, resp = doJSON(t, server.Handler(), http.MethodGet, "/api/device", nil)
	decodeData(t, resp, &device)
	assert.False(t, device.IsOn)
	assert.Equal(t, []int{0, 0, 0, 0, 0, 0}, device.Channels)
}

// TestMethodNotAllowed tests verb checks on the main endpoints
func TestMethodNotAllowed(t *testing.T) {
	server, _ := newTestServer(t)

	rec, _ := doJSON(t, server.Handler(), http.MethodGet, "/api/routines/sync", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec, _ = doJSON(t, server.Handler(), http.MethodPost, "/api/routines", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec, _ = doJSON(t, server.Handler(), http.MethodGet, "/api/time", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

// TestHealthAndReady tests the probe endpoints
func TestHealthAndReady(t *testing.T) {
	server, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var ready ReadyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ready))
	assert.Equal(t, "ready", ready.Status)
	assert.Equal(t, "ok", ready.Checks["storage"])
	assert.Equal(t, "unsynchronized", ready.Checks["time"])
}
