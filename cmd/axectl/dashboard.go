package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/axectl/internal/discovery"
	"github.com/muurk/axectl/internal/minerapi"
	"github.com/muurk/axectl/internal/tui"
	"github.com/muurk/axectl/internal/ui"
)

var (
	dashboardMiner       string
	dashboardRefreshSecs int
)

func init() {
	rootCmd.AddCommand(dashboardCmd)

	dashboardCmd.Flags().Uint8Var(&scanStart, "start", 1, "First host octet to probe")
	dashboardCmd.Flags().Uint8Var(&scanEnd, "end", 254, "Last host octet to probe")
	dashboardCmd.Flags().IntVar(&scanConcurrency, "concurrency", discovery.DefaultConcurrency, "Maximum probes in flight (0 = unbounded)")
	dashboardCmd.Flags().IntVar(&scanTimeoutMS, "timeout", int(minerapi.DefaultProbeTimeout/time.Millisecond), "Per-path probe timeout in milliseconds")
	dashboardCmd.Flags().BoolVar(&scanMDNS, "mdns", false, "Discover candidates with mDNS instead of sweeping the range")
	dashboardCmd.Flags().StringVar(&dashboardMiner, "miner", "", "Open this miner (address or alias) directly")
	dashboardCmd.Flags().IntVar(&dashboardRefreshSecs, "refresh", int(tui.DefaultRefreshInterval/time.Second), "Status refresh interval in seconds")
}

// dashboardCmd launches the interactive TUI
var dashboardCmd = &cobra.Command{
	Use:     "dashboard [subnet]",
	Aliases: []string{"ui"},
	Short:   "Interactive miner dashboard",
	Long: `Launch a full-screen dashboard.

The dashboard scans the subnet, lists the miners it finds, and opens a live
status view for the selected miner, from which it can be restarted or tuned.
The subnet is chosen the same way as for 'axectl scan'.`,
	Example: `  # Scan the local subnet and browse miners
  axectl dashboard

  # Open one miner directly
  axectl dashboard --miner garage`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDashboard,
}

func runDashboard(cmd *cobra.Command, args []string) error {
	if !ui.IsTerminal(os.Stdout) {
		return fmt.Errorf("the dashboard needs an interactive terminal; use 'axectl scan' in scripts")
	}

	// With --miner the scan only runs if the user goes back to the list, so a
	// missing subnet is not fatal
	settings, err := resolveScanSettings(cmd, args)
	if err != nil && dashboardMiner == "" {
		return err
	}
	// Validate the range up front; the dashboard would only show a failed scan
	if err == nil && !settings.mdns {
		if _, err := discovery.Addresses(settings.subnet, settings.start, settings.end); err != nil {
			return err
		}
	}

	opts := tui.Options{
		Subnet:          settings.subnet,
		Start:           settings.start,
		End:             settings.end,
		Concurrency:     settings.concurrency,
		ProbeTimeout:    settings.timeout,
		CommandTimeout:  registry.Preferences.CommandTimeout(),
		MDNS:            settings.mdns,
		RefreshInterval: time.Duration(dashboardRefreshSecs) * time.Second,
		Aliases:         registry.AliasFor,
	}

	var miner *minerapi.DiscoveredMiner
	if dashboardMiner != "" {
		miner = &minerapi.DiscoveredMiner{Address: resolveTarget(dashboardMiner)}
	}
	return tui.Run(opts, miner)
}
