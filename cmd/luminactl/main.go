package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/lumina-devices/luminad/pkg/client"
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
	Use:   "luminactl",
	Short: "luminactl - Control a luminad device",
	Long: `luminactl talks to a running luminad over its HTTP API: inspect
and replace the routine set, sync the device clock, and drive the
outputs manually.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"luminactl version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("device", "localhost:8420", "Device address")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(routinesCmd)
	rootCmd.AddCommand(timeCmd)
	rootCmd.AddCommand(powerCmd)
	rootCmd.AddCommand(channelsCmd)
}

func deviceClient(cmd *cobra.Command) *client.Client {
	addr, _ := cmd.Flags().GetString("device")
	return client.NewClient(addr)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show device status",
	RunE: func(cmd *cobra.Command, args []string) error {
		device, err := deviceClient(cmd).GetDevice()
		if err != nil {
			return err
		}

		power := "off"
		if device.IsOn {
			power = "on"
		}
		synced := "no"
		if device.Synchronized {
			synced = "yes"
		}

		fmt.Printf("Power:        %s\n", power)
		fmt.Printf("Channels:     %v\n", device.Channels)
		fmt.Printf("Synchronized: %s\n", synced)
		fmt.Printf("Routines:     %d\n", device.RoutineCount)
		fmt.Printf("Uptime:       %s\n", time.Duration(device.UptimeSeconds)*time.Second)
		return nil
	},
}

// Routine commands
var routinesCmd = &cobra.Command{
	Use:   "routines",
	Short: "Manage the routine set",
}

var routinesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored routines",
	RunE: func(cmd *cobra.Command, args []string) error {
		routines, err := deviceClient(cmd).ListRoutines()
		if err != nil {
			return err
		}

		if len(routines) == 0 {
			fmt.Println("No routines stored.")
			return nil
		}

		fmt.Printf("%-4s %-20s %-6s %-9s %-8s %-5s %s\n",
			"ID", "NAME", "TIME", "DAYS", "ENABLED", "KIND", "SLIDERS")
		for _, r := range routines {
			kind := "set"
			if r.IsOffRoutine {
				kind = "off"
			}
			fmt.Printf("%-4d %-20s %02d:%02d  %-9s %-8v %-5s %v\n",
				r.ID, r.Name, r.Hour, r.Minute, formatDays(r.Days), r.IsEnabled, kind, r.SliderValues)
		}
		return nil
	},
}

// formatDays renders a day bitmask as Mon..Sun flags, e.g. "MTWTF--".
func formatDays(mask int) string {
	letters := [7]byte{'M', 'T', 'W', 'T', 'F', 'S', 'S'}
	out := make([]byte, 7)
	for i := 0; i < 7; i++ {
		if mask&(1<<i) != 0 {
			out[i] = letters[i]
		} else {
			out[i] = '-'
		}
	}
	return string(out)
}

func init() {
	routinesCmd.AddCommand(routinesListCmd)
}

// Time commands
var timeCmd = &cobra.Command{
	Use:   "time",
	Short: "Manage the device clock",
}

var timeSyncCmd = &cobra.Command{
	Use:   "sync [TIMESTAMP]",
	Short: "Set the device clock (defaults to this machine's time)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		timestamp := time.Now().Unix()
		if len(args) == 1 {
			var err error
			timestamp, err = strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid timestamp %q", args[0])
			}
		}

		if err := deviceClient(cmd).SetTime(timestamp); err != nil {
			return err
		}
		fmt.Printf("✓ Device clock set to %s\n", time.Unix(timestamp, 0).UTC().Format(time.RFC3339))
		return nil
	},
}

func init() {
	timeCmd.AddCommand(timeSyncCmd)
}

// Power command
var powerCmd = &cobra.Command{
	Use:   "power [on|off]",
	Short: "Set device power",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var on bool
		switch args[0] {
		case "on":
			on = true
		case "off":
			on = false
		default:
			return fmt.Errorf("power must be 'on' or 'off'")
		}

		if err := deviceClient(cmd).SetPower(on); err != nil {
			return err
		}
		fmt.Printf("✓ Power %s\n", args[0])
		return nil
	},
}

// Channels command
var channelsCmd = &cobra.Command{
	Use:   "channels VALUE...",
	Short: "Set channel intensities (0-255, up to 6 values)",
	Args:  cobra.RangeArgs(1, 6),
	RunE: func(cmd *cobra.Command, args []string) error {
		values := make([]int, len(args))
		for i, arg := range args {
			v, err := strconv.Atoi(arg)
			if err != nil || v < 0 || v > 255 {
				return fmt.Errorf("invalid channel value %q (want 0-255)", arg)
			}
			values[i] = v
		}

		if err := deviceClient(cmd).SetChannels(values); err != nil {
			return err
		}
		fmt.Printf("✓ Channels set: %v\n", values)
		return nil
	},
}
