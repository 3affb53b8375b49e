package api

import (
	"fmt"

	"github.com/lumina-devices/luminad/pkg/log"
	"github.com/lumina-devices/luminad/pkg/metrics"
	"github.com/lumina-devices/luminad/pkg/types"
)

// Rejection is a structured per-entry rejection reason. Rejections are
// logged and counted; the wire response only carries the aggregate
// accepted count.
type Rejection struct {
	Index  int
	Field  string
	Reason string
}

func (r Rejection) Error() string {
	return fmt.Sprintf("entry %d: %s: %s", r.Index, r.Field, r.Reason)
}

// decodeSyncRoutines converts incoming routine descriptions to internal
// records, applying the per-field validation rules. Invalid entries are
// skipped and reported; the survivors still form a committable batch.
func decodeSyncRoutines(entries []SyncRoutine) ([]types.RoutineRecord, []Rejection) {
	records := make([]types.RoutineRecord, 0, len(entries))
	var rejections []Rejection

	for i, entry := range entries {
		record, rejection := decodeSyncRoutine(i, entry)
		if rejection != nil {
			metrics.SyncEntriesRejectedTotal.WithLabelValues(rejection.Field).Inc()
			rejections = append(rejections, *rejection)
			continue
		}
		records = append(records, record)
	}

	return records, rejections
}

func decodeSyncRoutine(index int, entry SyncRoutine) (types.RoutineRecord, *Rejection) {
	var record types.RoutineRecord

	if entry.Name == "" {
		return record, &Rejection{index, "name", "must not be empty"}
	}
	if len(entry.Name) > types.NameLength {
		return record, &Rejection{index, "name", fmt.Sprintf("exceeds %d bytes", types.NameLength)}
	}
	if !types.PrintableASCII(entry.Name) {
		return record, &Rejection{index, "name", "contains non-printable bytes"}
	}
	if entry.Hour < 0 || entry.Hour > 23 {
		return record, &Rejection{index, "hour", fmt.Sprintf("%d out of range", entry.Hour)}
	}
	if entry.Minute < 0 || entry.Minute > 59 {
		return record, &Rejection{index, "minute", fmt.Sprintf("%d out of range", entry.Minute)}
	}

	days, err := types.ParseDays(entry.DaysOfWeek)
	if err != nil {
		return record, &Rejection{index, "daysOfWeek", err.Error()}
	}

	// Over-long preset names are truncated with a diagnostic, not rejected
	presetName := entry.PresetName
	if len(presetName) > types.NameLength {
		alog := log.WithComponent("api")
		alog.Warn().
			Int("entry", index).
			Int("length", len(presetName)).
			Msg("truncating over-long preset name")
		presetName = presetName[:types.NameLength]
	}
	if !types.PrintableASCII(presetName) {
		return record, &Rejection{index, "presetName", "contains non-printable bytes"}
	}

	record = types.RoutineRecord{
		// IDs are app-assigned and opaque; the store slot is one byte
		ID:         uint8(entry.ID),
		Name:       entry.Name,
		Hour:       uint8(entry.Hour),
		Minute:     uint8(entry.Minute),
		Days:       days,
		Enabled:    entry.IsEnabled,
		PresetName: presetName,
		CreatedAt:  uint32(entry.CreatedAt),
	}

	// devicePower=false means the routine powers the device off; its
	// channel values are meaningless and stay zeroed
	if !entry.DevicePower {
		record.IsOffRoutine = true
		return record, nil
	}

	// Missing trailing slider values default to 0, excess is ignored,
	// out-of-range values clamp to the byte domain
	for i := 0; i < types.NumChannels && i < len(entry.SliderPreset); i++ {
		record.ChannelValues[i] = clampByte(entry.SliderPreset[i])
	}
	return record, nil
}

// renderRoutines serializes stored records back to the wire shape.
func renderRoutines(records []types.RoutineRecord) []ListRoutine {
	routines := make([]ListRoutine, len(records))
	for i, r := range records {
		sliders := make([]int, types.NumChannels)
		for j, v := range r.ChannelValues {
			sliders[j] = int(v)
		}
		routines[i] = ListRoutine{
			ID:           int(r.ID),
			Name:         r.Name,
			Hour:         int(r.Hour),
			Minute:       int(r.Minute),
			Days:         int(r.Days),
			IsEnabled:    r.Enabled,
			IsOffRoutine: r.IsOffRoutine,
			PresetName:   r.PresetName,
			SliderValues: sliders,
		}
	}
	return routines
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
