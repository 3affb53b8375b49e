package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/lumina-devices/luminad/pkg/storage"
)

var (
	from       = flag.String("from", "file", "Source backend: file or bolt")
	to         = flag.String("to", "bolt", "Destination backend: file or bolt")
	regionPath = flag.String("file", "/var/lib/luminad/routines.bin", "Region file path (file backend)")
	dataDir    = flag.String("data-dir", "/var/lib/luminad", "Data directory (bolt backend)")
	dryRun     = flag.Bool("dry-run", false, "Show what would be migrated without making changes")
	backupPath = flag.String("backup", "", "Path to back up the source region before migration (default: <source>.backup)")
)

func main() {
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("luminad Region Migration Tool")
	log.Println("=============================")

	if *from == *to {
		log.Fatalf("Source and destination backends are both %q; nothing to do", *from)
	}

	source, sourceDesc, cleanupSource := openRegion(*from)
	defer cleanupSource()
	dest, destDesc, cleanupDest := openRegion(*to)
	defer cleanupDest()

	log.Printf("Source:      %s", sourceDesc)
	log.Printf("Destination: %s", destDesc)
	log.Printf("Dry run:     %v", *dryRun)

	// Load through the store so a corrupt source is repaired, not copied
	store := storage.NewRoutineStore(source)
	records, repaired, err := store.Load()
	if err != nil {
		log.Fatalf("Failed to load source region: %v", err)
	}
	if repaired {
		log.Printf("⚠ Source region was corrupt; %d routines survived repair", len(records))
	}
	log.Printf("Found %d routines to migrate", len(records))

	if *dryRun {
		for _, r := range records {
			log.Printf("  [%d] %q at %02d:%02d", r.ID, r.Name, r.Hour, r.Minute)
		}
		log.Println("\nDry run completed. No changes made.")
		log.Println("Run without --dry-run to perform the migration.")
		return
	}

	// Back up the raw source bytes before writing anything
	backupFile := *backupPath
	if backupFile == "" {
		backupFile = sourceDesc + ".backup"
	}
	raw, err := source.Read()
	if err != nil {
		log.Fatalf("Failed to read source region: %v", err)
	}
	if err := os.WriteFile(backupFile, raw, 0600); err != nil {
		log.Fatalf("Failed to create backup: %v", err)
	}
	log.Printf("✓ Backup created: %s", backupFile)

	destStore := storage.NewRoutineStore(dest)
	if _, _, err := destStore.Load(); err != nil {
		log.Fatalf("Failed to open destination region: %v", err)
	}
	if n := destStore.Count(); n > 0 {
		log.Printf("⚠ Warning: destination already holds %d routines; they will be replaced", n)
	}

	accepted, err := destStore.Replace(records)
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Printf("✓ Migrated %d/%d routines", accepted, len(records))
	log.Println("\n✓ Migration completed successfully!")
	log.Println("The source region has been preserved for rollback if needed.")
}

// openRegion opens one backend and returns the region, a human-readable
// path, and a cleanup func.
func openRegion(backend string) (storage.Region, string, func()) {
	switch backend {
	case "file":
		return storage.NewFileRegion(*regionPath), *regionPath, func() {}
	case "bolt":
		if err := os.MkdirAll(*dataDir, 0700); err != nil {
			log.Fatalf("Failed to create data directory: %v", err)
		}
		region, err := storage.NewBoltRegion(*dataDir)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		return region, filepath.Join(*dataDir, "luminad.db"), func() { region.Close() }
	default:
		log.Fatalf("Unknown backend %q (want file or bolt)", backend)
		return nil, "", nil
	}
}
