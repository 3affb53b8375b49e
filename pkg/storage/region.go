package storage

import (
	"errors"

	"github.com/lumina-devices/luminad/pkg/types"
)

const (
	// RecordWidth is the fixed on-region encoding size of one routine.
	RecordWidth = 80

	// RegionSize is the full persisted region: one count byte followed
	// by MaxRoutines record slots at offset 1 + i*RecordWidth.
	RegionSize = 1 + types.MaxRoutines*RecordWidth
)

// ErrRegionSize is returned when a Region write is not exactly
// RegionSize bytes.
var ErrRegionSize = errors.New("region buffer must be exactly RegionSize bytes")

// Region is the persistence medium for the routine store: a fixed-size
// byte range read and rewritten wholesale. There is no partial-write
// API; every mutation is a full-region rewrite.
type Region interface {
	// Read returns the full region, exactly RegionSize bytes. A blank
	// medium reads as all zeros.
	Read() ([]byte, error)

	// Write replaces the full region. The buffer must be exactly
	// RegionSize bytes.
	Write(data []byte) error
}
