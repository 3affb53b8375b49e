package storage

import (
	"errors"
	"fmt"
	"sync"

	"github.com/lumina-devices/luminad/pkg/log"
	"github.com/lumina-devices/luminad/pkg/metrics"
	"github.com/lumina-devices/luminad/pkg/types"
	"github.com/rs/zerolog"
)

// ErrBatchTooLarge is returned by Replace when the candidate batch
// exceeds MaxRoutines. The store is left untouched.
var ErrBatchTooLarge = errors.New("routine batch exceeds maximum routine count")

// RoutineStore is the fixed-capacity, corruption-resistant persistent
// collection of routine records. Every mutation is a whole-region
// rewrite; corruption found on load is healed locally and never
// surfaced as a failure.
type RoutineStore struct {
	mu      sync.Mutex
	region  Region
	records []types.RoutineRecord
	logger  zerolog.Logger
}

// NewRoutineStore creates a store over the given region. Call Load
// before first use.
func NewRoutineStore(region Region) *RoutineStore {
	return &RoutineStore{
		region: region,
		logger: log.WithComponent("storage"),
	}
}

// Load reads the region, validates its contents, and heals any
// corruption it finds. It returns the valid records and whether a
// repair write was performed. After Load the persisted count byte
// always equals the number of valid records.
func (s *RoutineStore) Load() ([]types.RoutineRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf, err := s.region.Read()
	if err != nil {
		return nil, false, fmt.Errorf("failed to read region: %w", err)
	}

	count := int(buf[0])
	if count > types.MaxRoutines {
		// Count byte outside [0, MaxRoutines]: the whole region is
		// untrustworthy. Wipe it and start from an empty set.
		s.logger.Warn().Int("count", count).Msg("corrupt routine count, wiping region")
		metrics.StoreRepairsTotal.WithLabelValues("count").Inc()
		if err := s.saveLocked(nil); err != nil {
			return nil, false, fmt.Errorf("failed to wipe corrupt region: %w", err)
		}
		return nil, true, nil
	}

	valid := make([]types.RoutineRecord, 0, count)
	dropped := 0
	for i := 0; i < count; i++ {
		off := recordOffset(i)
		record, err := decodeRecord(buf[off : off+RecordWidth])
		if err == nil {
			err = record.Validate()
		}
		if err != nil {
			s.logger.Warn().Int("slot", i).Err(err).Msg("dropping corrupt routine record")
			metrics.StoreRepairsTotal.WithLabelValues("record").Inc()
			dropped++
			continue
		}
		valid = append(valid, record)
	}

	repaired := dropped > 0
	if repaired {
		// Compact the survivors so the stored count matches reality
		if err := s.saveLocked(valid); err != nil {
			return nil, false, fmt.Errorf("failed to rewrite repaired region: %w", err)
		}
	} else {
		s.records = valid
		metrics.RoutinesStored.Set(float64(len(valid)))
	}

	result := make([]types.RoutineRecord, len(valid))
	copy(result, valid)
	return result, repaired, nil
}

// Save persists the given records as the entire store contents.
func (s *RoutineStore) Save(records []types.RoutineRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(records)
}

// saveLocked writes the full region: count byte, each record at its
// deterministic offset, zeroed tail. Caller holds s.mu.
func (s *RoutineStore) saveLocked(records []types.RoutineRecord) error {
	if len(records) > types.MaxRoutines {
		return ErrBatchTooLarge
	}

	buf := make([]byte, RegionSize)
	buf[0] = byte(len(records))
	for i := range records {
		off := recordOffset(i)
		encodeRecord(buf[off:off+RecordWidth], &records[i])
	}

	if err := s.region.Write(buf); err != nil {
		return fmt.Errorf("failed to write region: %w", err)
	}

	s.records = make([]types.RoutineRecord, len(records))
	copy(s.records, records)
	metrics.RoutinesStored.Set(float64(len(records)))
	return nil
}

// Replace is the bulk-update entry point. A batch larger than
// MaxRoutines is rejected outright and the store left untouched.
// Otherwise candidates are filtered through the same validity rules as
// Load and the valid subset is persisted. Returns the number persisted.
func (s *RoutineStore) Replace(candidates []types.RoutineRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(candidates) > types.MaxRoutines {
		return 0, ErrBatchTooLarge
	}

	valid := make([]types.RoutineRecord, 0, len(candidates))
	for i := range candidates {
		if err := candidates[i].Validate(); err != nil {
			s.logger.Warn().Int("index", i).Err(err).Msg("skipping invalid routine in batch")
			continue
		}
		valid = append(valid, candidates[i])
	}

	if err := s.saveLocked(valid); err != nil {
		return 0, err
	}
	return len(valid), nil
}

// Records returns a copy of the loaded records in store order.
func (s *RoutineStore) Records() []types.RoutineRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]types.RoutineRecord, len(s.records))
	copy(records, s.records)
	return records
}

// Count returns the number of loaded records.
func (s *RoutineStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Ping verifies the region is readable. Used by the readiness probe.
func (s *RoutineStore) Ping() error {
	_, err := s.region.Read()
	return err
}
