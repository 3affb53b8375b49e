package storage

import (
	"encoding/binary"
	"fmt"

	"github.com/lumina-devices/luminad/pkg/types"
)

// Record layout within its RecordWidth slot. CreatedAt is little-endian.
const (
	offID         = 0
	offName       = 1  // 32-byte field, null-terminated
	offHour       = 33
	offMinute     = 34
	offDays       = 35
	offEnabled    = 36
	offIsOff      = 37
	offChannels   = 38 // 6 bytes
	offPresetName = 44 // 32-byte field, null-terminated
	offCreatedAt  = 76 // uint32 LE

	nameFieldWidth = types.NameLength + 1
)

// encodeRecord writes r's fixed-width encoding into buf, which must be
// at least RecordWidth bytes. Unused name bytes are zeroed.
func encodeRecord(buf []byte, r *types.RoutineRecord) {
	for i := 0; i < RecordWidth; i++ {
		buf[i] = 0
	}

	buf[offID] = r.ID
	copy(buf[offName:offName+types.NameLength], r.Name)
	buf[offHour] = r.Hour
	buf[offMinute] = r.Minute
	buf[offDays] = uint8(r.Days)
	if r.Enabled {
		buf[offEnabled] = 1
	}
	if r.IsOffRoutine {
		buf[offIsOff] = 1
	}
	copy(buf[offChannels:offChannels+types.NumChannels], r.ChannelValues[:])
	copy(buf[offPresetName:offPresetName+types.NameLength], r.PresetName)
	binary.LittleEndian.PutUint32(buf[offCreatedAt:], r.CreatedAt)
}

// decodeRecord parses one RecordWidth slot. It rejects malformed name
// fields; field-range validation is the caller's responsibility via
// RoutineRecord.Validate.
func decodeRecord(buf []byte) (types.RoutineRecord, error) {
	var r types.RoutineRecord

	name, err := decodeName(buf[offName : offName+nameFieldWidth])
	if err != nil {
		return r, fmt.Errorf("name field: %w", err)
	}
	presetName, err := decodeName(buf[offPresetName : offPresetName+nameFieldWidth])
	if err != nil {
		return r, fmt.Errorf("preset name field: %w", err)
	}

	r.ID = buf[offID]
	r.Name = name
	r.Hour = buf[offHour]
	r.Minute = buf[offMinute]
	r.Days = types.DayMask(buf[offDays])
	r.Enabled = buf[offEnabled] != 0
	r.IsOffRoutine = buf[offIsOff] != 0
	copy(r.ChannelValues[:], buf[offChannels:offChannels+types.NumChannels])
	r.PresetName = presetName
	r.CreatedAt = binary.LittleEndian.Uint32(buf[offCreatedAt:])

	return r, nil
}

// decodeName extracts a null-terminated printable-ASCII string from a
// fixed-width name field. The terminator must appear within the field.
func decodeName(field []byte) (string, error) {
	for i := 0; i < len(field); i++ {
		if field[i] == 0 {
			return string(field[:i]), nil
		}
		if field[i] < 0x20 || field[i] > 0x7e {
			return "", fmt.Errorf("non-printable byte %#x at offset %d", field[i], i)
		}
	}
	return "", fmt.Errorf("missing null terminator")
}

// recordOffset returns the region offset of slot i.
func recordOffset(i int) int {
	return 1 + i*RecordWidth
}
