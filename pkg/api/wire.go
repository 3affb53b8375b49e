package api

// Wire shapes for the companion-app sync protocol. The request and
// response routine shapes are asymmetric (daysOfWeek binary string in,
// days integer bitmask out); that asymmetry is part of the protocol and
// kept as-is.

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// SyncRequest is the bulk-replace request body.
type SyncRequest struct {
	Routines []SyncRoutine `json:"routines"`
}

// SyncRoutine is one incoming routine description.
type SyncRoutine struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Hour   int    `json:"hour"`
	Minute int    `json:"minute"`

	// DaysOfWeek is a 7-character '0'/'1' string in Monday..Sunday order.
	DaysOfWeek string `json:"daysOfWeek"`

	IsEnabled bool `json:"isEnabled"`

	// DevicePower false marks the entry as an off-routine.
	DevicePower bool `json:"devicePower"`

	PresetName   string `json:"presetName"`
	SliderPreset []int  `json:"sliderPreset"`
	CreatedAt    int64  `json:"createdAt"`
}

// SyncData reports the aggregate accepted count. Per-entry rejections
// are logged on-device but not surfaced to the caller.
type SyncData struct {
	RoutineCount int `json:"routineCount"`
}

// ListData is the list response payload.
type ListData struct {
	RoutineCount int           `json:"routineCount"`
	Routines     []ListRoutine `json:"routines"`
}

// ListRoutine is one stored routine as rendered back to the app.
type ListRoutine struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Hour         int    `json:"hour"`
	Minute       int    `json:"minute"`
	Days         int    `json:"days"` // integer bitmask, bit0=Monday
	IsEnabled    bool   `json:"isEnabled"`
	IsOffRoutine bool   `json:"isOffRoutine"`
	PresetName   string `json:"presetName"`
	SliderValues []int  `json:"sliderValues"`
}

// TimeRequest is the manual time-set request body.
type TimeRequest struct {
	Timestamp int64 `json:"timestamp"`
}

// PowerRequest is the manual power-control request body.
type PowerRequest struct {
	On bool `json:"on"`
}

// ChannelsRequest is the manual intensity-control request body.
type ChannelsRequest struct {
	Channels []int `json:"channels"`
}

// DeviceData is the device status payload.
type DeviceData struct {
	IsOn          bool  `json:"isOn"`
	Channels      []int `json:"channels"`
	Synchronized  bool  `json:"synchronized"`
	RoutineCount  int   `json:"routineCount"`
	UptimeSeconds int64 `json:"uptimeSeconds"`
}
