package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lumina-devices/luminad/pkg/actuator"
	"github.com/lumina-devices/luminad/pkg/api"
	"github.com/lumina-devices/luminad/pkg/clock"
	"github.com/lumina-devices/luminad/pkg/config"
	"github.com/lumina-devices/luminad/pkg/controller"
	"github.com/lumina-devices/luminad/pkg/events"
	"github.com/lumina-devices/luminad/pkg/log"
	"github.com/lumina-devices/luminad/pkg/metrics"
	"github.com/lumina-devices/luminad/pkg/scheduler"
	"github.com/lumina-devices/luminad/pkg/storage"
	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "luminad",
	Short: "luminad - Lighting routine daemon",
	Long: `luminad runs the on-device side of the Lumina lighting system:
it persists the routine set synced from the companion app, matches
routines against the wall clock once per minute, and drives the
channel outputs.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"luminad version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		log.Init(log.Config{
			Level:      log.Level(cfg.Log.Level),
			JSONOutput: cfg.Log.Format == "json",
		})
		logger := log.WithComponent("main")
		logger.Info().Str("version", Version).Str("listen", cfg.Listen).Msg("starting luminad")

		// Open the persistence region
		var region storage.Region
		switch cfg.Storage.Backend {
		case "bolt":
			if err := os.MkdirAll(cfg.Storage.DataDir, 0700); err != nil {
				return fmt.Errorf("failed to create data directory: %w", err)
			}
			boltRegion, err := storage.NewBoltRegion(cfg.Storage.DataDir)
			if err != nil {
				return err
			}
			defer boltRegion.Close()
			region = boltRegion
		case "file":
			region = storage.NewFileRegion(cfg.Storage.Path)
		}

		// Load routines; a corrupt region heals itself here
		store := storage.NewRoutineStore(region)
		records, repaired, err := store.Load()
		if err != nil {
			return fmt.Errorf("failed to load routines: %w", err)
		}
		if repaired {
			logger.Warn().Int("survivors", len(records)).Msg("routine region repaired during load")
		}
		logger.Info().Int("routines", len(records)).Msg("routine set loaded")

		// Event broker
		broker := events.NewBroker()
		broker.Start()
		defer broker.Stop()

		// Actuation sink
		var sink actuator.Sink = actuator.NopSink{}
		if cfg.Actuator.Driver == "modbus" {
			modbusSink, err := actuator.NewModbusSink(actuator.ModbusConfig{
				Endpoint:     cfg.Actuator.Endpoint,
				UnitID:       uint8(cfg.Actuator.UnitID),
				Timeout:      cfg.Actuator.Timeout,
				RegisterBase: uint16(cfg.Actuator.RegisterBase),
			})
			if err != nil {
				return err
			}
			defer modbusSink.Close()
			sink = modbusSink
			logger.Info().Str("endpoint", cfg.Actuator.Endpoint).Msg("modbus actuator connected")
		}

		// Wall clock; starts unsynchronized unless the host clock is trusted
		timeSource := clock.NewManualTimeSource(clock.Real(), cfg.Location())
		if cfg.Time.TrustSystem {
			timeSource.TrustSystem()
			metrics.TimeSynchronized.Set(1)
			logger.Info().Msg("trusting host clock")
		} else {
			logger.Info().Msg("waiting for time sync from companion app")
		}

		ctrl := controller.New(store, sink, timeSource, broker)

		collector := controller.NewMetricsCollector(ctrl)
		collector.Start()
		defer collector.Stop()

		sched := scheduler.NewScheduler(ctrl, timeSource, clock.Real(), cfg.Scheduler.TickInterval)
		sched.Start()
		defer sched.Stop()

		// Start API server in background
		api.Version = Version
		server := api.NewServer(ctrl, sched)
		errCh := make(chan error, 1)
		go func() {
			if err := server.Start(cfg.Listen); err != nil {
				errCh <- fmt.Errorf("API server error: %w", err)
			}
		}()

		// Wait for interrupt signal or API server error
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case sig := <-sigCh:
			logger.Info().Str("signal", sig.String()).Msg("shutting down")
		case err := <-errCh:
			logger.Error().Err(err).Msg("API server failed")
		}

		server.Stop()
		logger.Info().Msg("shutdown complete")
		return nil
	},
}

func init() {
	runCmd.Flags().String("config", "/etc/luminad/luminad.yaml", "Path to the config file")
}
