/*
Package storage provides the persistent routine store for luminad.

The store is a value, not a log: the full routine set is rewritten on
every mutation, and readers only ever observe a complete region. The
persisted layout is a semantic contract shared with the controller
firmware tooling, so records are encoded at fixed offsets rather than
through a self-describing serializer:

	┌─────────────────── ROUTINE REGION (481 bytes) ───────────────────┐
	│ offset 0: count byte (0-6)                                       │
	│ offset 1 + i*80: record slot i (6 slots, 80 bytes each)          │
	│                                                                  │
	│   record slot layout:                                            │
	│    0      id                                                     │
	│    1-32   name        (null-terminated, printable ASCII)         │
	│    33     hour        34  minute      35  day mask               │
	│    36     enabled     37  off-routine flag                       │
	│    38-43  channel values (6 bytes)                               │
	│    44-75  preset name (null-terminated, printable ASCII)         │
	│    76-79  createdAt   (uint32 little-endian)                     │
	└──────────────────────────────────────────────────────────────────┘

Bytes beyond the counted records are zeroed on every save, so the
persisted region is deterministic for a given record set.

# Self-Healing Load

Load trusts nothing in the region:

  - A count byte outside [0, MaxRoutines] condemns the whole region: it
    is zero-filled and the store restarts empty.
  - Each counted record is decoded and validated individually. Records
    with out-of-range fields or malformed name fields are dropped, and
    the survivors are immediately compacted and rewritten.

After every Load the stored count equals the number of valid records.
Corruption is never surfaced to callers as a failure; the store only
ever degrades to a smaller or empty set.

# Region Backends

The persistence medium is the Region interface: a fixed-size byte range
with whole-region Read and Write. Two implementations are provided:

  - FileRegion: a flat file; absent or short files read as zero-filled
    (blank-EEPROM semantics). Writes go through a rename for crash
    safety.
  - BoltRegion: a single value in a bbolt database, using the usual
    Update/View transaction pattern.

# Usage

	region, err := storage.NewBoltRegion("/var/lib/luminad")
	if err != nil {
		log.Fatal(err)
	}
	defer region.Close()

	store := storage.NewRoutineStore(region)
	records, repaired, err := store.Load()

	accepted, err := store.Replace(candidates)
	if errors.Is(err, storage.ErrBatchTooLarge) {
		// batch rejected, store untouched
	}

Mutations are serialized with a mutex; each save completes before the
next operation begins, so readers never observe a partial write.
*/
package storage
