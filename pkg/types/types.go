package types

import "fmt"

const (
	// MaxRoutines is the maximum number of routines the controller stores.
	MaxRoutines = 6

	// NumChannels is the number of hardware output channels.
	NumChannels = 6

	// NameLength is the maximum length in bytes of a routine or preset
	// name. Names are stored null-terminated in a NameLength+1 byte field.
	NameLength = 31
)

// DayMask is a 7-bit weekday mask: bit0=Monday .. bit6=Sunday.
type DayMask uint8

// Has reports whether the given Monday-based bit index is set.
func (m DayMask) Has(bit int) bool {
	return m&(1<<uint(bit)) != 0
}

// Valid reports whether the mask fits in 7 bits.
func (m DayMask) Valid() bool {
	return m&0x80 == 0
}

// DayBitFromWeekday converts a time.Weekday-style day number
// (0=Sunday .. 6=Saturday) to the Monday-based bit index used by DayMask.
func DayBitFromWeekday(weekday int) int {
	if weekday == 0 {
		return 6
	}
	return weekday - 1
}

// ParseDays decodes a 7-character '0'/'1' string in Monday..Sunday order
// into a DayMask. Characters other than '1' leave the bit clear.
func ParseDays(s string) (DayMask, error) {
	if len(s) != 7 {
		return 0, fmt.Errorf("day string must be 7 characters, got %d", len(s))
	}
	var mask DayMask
	for i := 0; i < 7; i++ {
		if s[i] == '1' {
			mask |= 1 << uint(i)
		}
	}
	return mask, nil
}

// RoutineRecord is one scheduled action: power the device off, or apply
// a named channel preset, at a time-of-day on a set of weekdays.
type RoutineRecord struct {
	// ID is assigned by the companion app and treated as opaque.
	// Uniqueness is not enforced on-device.
	ID uint8

	// Name is the display label, at most NameLength printable-ASCII bytes.
	Name string

	Hour   uint8 // 0-23
	Minute uint8 // 0-59
	Days   DayMask

	Enabled bool

	// IsOffRoutine marks a routine that powers the device off when it
	// fires instead of applying a preset.
	IsOffRoutine bool

	// ChannelValues holds the preset intensities. Zeroed and meaningless
	// when IsOffRoutine is set.
	ChannelValues [NumChannels]uint8

	// PresetName is the display label of the applied preset.
	PresetName string

	// CreatedAt is a unix-seconds timestamp used by the companion app as
	// a resync hint. Never interpreted on-device.
	CreatedAt uint32
}

// Validate checks the field-range constraints shared by the load and
// replace paths. A record failing Validate is never retained in memory
// or storage.
func (r *RoutineRecord) Validate() error {
	if r.Hour > 23 {
		return fmt.Errorf("hour %d out of range", r.Hour)
	}
	if r.Minute > 59 {
		return fmt.Errorf("minute %d out of range", r.Minute)
	}
	if !r.Days.Valid() {
		return fmt.Errorf("day mask %#x exceeds 7 bits", uint8(r.Days))
	}
	if r.Name == "" {
		return fmt.Errorf("name is empty")
	}
	if len(r.Name) > NameLength {
		return fmt.Errorf("name exceeds %d bytes", NameLength)
	}
	if !PrintableASCII(r.Name) {
		return fmt.Errorf("name contains non-printable bytes")
	}
	if len(r.PresetName) > NameLength {
		return fmt.Errorf("preset name exceeds %d bytes", NameLength)
	}
	if r.PresetName != "" && !PrintableASCII(r.PresetName) {
		return fmt.Errorf("preset name contains non-printable bytes")
	}
	return nil
}

// PrintableASCII reports whether every byte of s is in the printable
// ASCII range (0x20-0x7E).
func PrintableASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			return false
		}
	}
	return true
}

// DeviceState is the volatile hardware output state. It is never
// persisted and resets to {off, all-zero} on restart.
type DeviceState struct {
	IsOn bool

	// ChannelIntensity is the current output per channel.
	ChannelIntensity [NumChannels]uint8

	// PreviousChannelIntensity is the snapshot captured when powering
	// off, restored on the next manual power-on when non-zero.
	PreviousChannelIntensity [NumChannels]uint8
}
