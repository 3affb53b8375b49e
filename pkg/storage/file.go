package storage

import (
	"fmt"
	"os"
)

// FileRegion is a Region backed by a flat file. A missing or short file
// reads as zero-filled, matching blank-EEPROM semantics.
type FileRegion struct {
	path string
}

// NewFileRegion creates a file-backed region at path. The file is not
// created until the first Write.
func NewFileRegion(path string) *FileRegion {
	return &FileRegion{path: path}
}

// Read implements Region.
func (r *FileRegion) Read() ([]byte, error) {
	buf := make([]byte, RegionSize)

	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return buf, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read region file: %w", err)
	}

	copy(buf, data)
	return buf, nil
}

// Write implements Region.
func (r *FileRegion) Write(data []byte) error {
	if len(data) != RegionSize {
		return ErrRegionSize
	}

	// Write-then-rename so a crash mid-write leaves the old region intact
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write region file: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("failed to replace region file: %w", err)
	}
	return nil
}
