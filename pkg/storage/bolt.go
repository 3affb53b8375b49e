package storage

import (
	"fmt"
	"path/filepath"

	bolt "go.etcd.io/bbolt"
)

var (
	// Bucket and key names
	bucketRegions = []byte("regions")
	keyRoutines   = []byte("routines")
)

// BoltRegion is a Region stored as a single value in a bbolt database.
type BoltRegion struct {
	db *bolt.DB
}

// NewBoltRegion opens (or creates) the luminad database in dataDir and
// returns the routine region stored in it.
func NewBoltRegion(dataDir string) (*BoltRegion, error) {
	dbPath := filepath.Join(dataDir, "luminad.db")

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketRegions); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucketRegions, err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltRegion{db: db}, nil
}

// Close closes the database
func (r *BoltRegion) Close() error {
	return r.db.Close()
}

// Read implements Region.
func (r *BoltRegion) Read() ([]byte, error) {
	buf := make([]byte, RegionSize)
	err := r.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRegions)
		data := b.Get(keyRoutines)
		// Copy out: bolt data is only valid during the transaction
		copy(buf, data)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read region: %w", err)
	}
	return buf, nil
}

// Write implements Region.
func (r *BoltRegion) Write(data []byte) error {
	if len(data) != RegionSize {
		return ErrRegionSize
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRegions)
		return b.Put(keyRoutines, data)
	})
}
