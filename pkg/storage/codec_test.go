package storage

import (
	"testing"

	"github.com/lumina-devices/luminad/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord() types.RoutineRecord {
	return types.RoutineRecord{
		ID:            7,
		Name:          "evening wind down",
		Hour:          21,
		Minute:        45,
		Days:          0b0011111, // Mon-Fri
		Enabled:       true,
		IsOffRoutine:  false,
		ChannelValues: [types.NumChannels]uint8{255, 128, 64, 32, 16, 8},
		PresetName:    "sunset",
		CreatedAt:     1720000000,
	}
}

// TestEncodeDecodeRoundTrip tests that a record survives the codec intact
func TestEncodeDecodeRoundTrip(t *testing.T) {
	record := sampleRecord()

	buf := make([]byte, RecordWidth)
	encodeRecord(buf, &record)

	decoded, err := decodeRecord(buf)
	require.NoError(t, err)
	assert.Equal(t, record, decoded)
}

// TestEncodeFieldOffsets tests the fixed layout byte-for-byte
func TestEncodeFieldOffsets(t *testing.T) {
	record := sampleRecord()
	buf := make([]byte, RecordWidth)
	encodeRecord(buf, &record)

	assert.Equal(t, byte(7), buf[0], "id")
	assert.Equal(t, byte('e'), buf[1], "first name byte")
	assert.Equal(t, byte(21), buf[33], "hour")
	assert.Equal(t, byte(45), buf[34], "minute")
	assert.Equal(t, byte(0b0011111), buf[35], "days")
	assert.Equal(t, byte(1), buf[36], "enabled")
	assert.Equal(t, byte(0), buf[37], "off flag")
	assert.Equal(t, byte(255), buf[38], "channel 0")
	assert.Equal(t, byte(8), buf[43], "channel 5")
	assert.Equal(t, byte('s'), buf[44], "first preset byte")
	// 1720000000 = 0x66851E00 little-endian
	assert.Equal(t, []byte{0x00, 0x1e, 0x85, 0x66}, buf[76:80], "createdAt LE")
}

// TestEncodeZeroesSlack tests that stale slot bytes do not leak through
func TestEncodeZeroesSlack(t *testing.T) {
	buf := make([]byte, RecordWidth)
	for i := range buf {
		buf[i] = 0xff
	}

	record := sampleRecord()
	record.Name = "a"
	record.PresetName = ""
	encodeRecord(buf, &record)

	// Name field beyond the terminator must be zero
	for i := 2; i < 33; i++ {
		assert.Equal(t, byte(0), buf[i], "name slack at %d", i)
	}
	// Empty preset name field must be all zero
	for i := 44; i < 76; i++ {
		assert.Equal(t, byte(0), buf[i], "preset slack at %d", i)
	}
}

// TestDecodeRejectsMalformedNames tests name-field corruption handling
func TestDecodeRejectsMalformedNames(t *testing.T) {
	record := sampleRecord()
	buf := make([]byte, RecordWidth)

	t.Run("non-printable byte", func(t *testing.T) {
		encodeRecord(buf, &record)
		buf[2] = 0x01
		_, err := decodeRecord(buf)
		assert.Error(t, err)
	})

	t.Run("missing terminator", func(t *testing.T) {
		encodeRecord(buf, &record)
		for i := offName; i < offName+nameFieldWidth; i++ {
			buf[i] = 'x'
		}
		_, err := decodeRecord(buf)
		assert.Error(t, err)
	})
}

// TestRecordOffset tests the deterministic slot placement
func TestRecordOffset(t *testing.T) {
	assert.Equal(t, 1, recordOffset(0))
	assert.Equal(t, 81, recordOffset(1))
	assert.Equal(t, 401, recordOffset(5))
	assert.Equal(t, RegionSize, recordOffset(5)+RecordWidth)
}
