package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/axectl/internal/discovery"
	"github.com/muurk/axectl/internal/minerapi"
	"github.com/muurk/axectl/internal/ui"
)

// Scan command flags
var (
	scanStart       uint8
	scanEnd         uint8
	scanConcurrency int
	scanTimeoutMS   int
	scanMDNS        bool
	mdnsBrowseSecs  int
)

func init() {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(subnetCmd)
}

// scanCmd sweeps a subnet for miners
var scanCmd = &cobra.Command{
	Use:   "scan [subnet]",
	Short: "Scan a subnet for AxeOS miners",
	Long: `Scan an IPv4 /24 subnet for AxeOS miners.

Every host from --start to --end is probed over HTTP. A host counts as a
miner when /api/system/info (or /api/system on older firmware) answers with
a JSON object. Hosts that do not answer are skipped silently.

The subnet is the first three octets, e.g. "192.168.1". When omitted, the
configured subnet is used, then the subnet of this computer's first private
IPv4 interface.

With --mdns, candidates come from mDNS browsing instead of the range sweep.`,
	Example: `  # Scan the local subnet
  axectl scan

  # Scan part of a specific subnet
  axectl scan 192.168.1 --start 100 --end 150

  # Slow Wi-Fi: longer probe timeout, fewer probes in flight
  axectl scan --timeout 3000 --concurrency 16

  # JSON output for scripting
  axectl scan --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().Uint8Var(&scanStart, "start", 1, "First host octet to probe")
	scanCmd.Flags().Uint8Var(&scanEnd, "end", 254, "Last host octet to probe")
	scanCmd.Flags().IntVar(&scanConcurrency, "concurrency", discovery.DefaultConcurrency, "Maximum probes in flight (0 = unbounded)")
	scanCmd.Flags().IntVar(&scanTimeoutMS, "timeout", int(minerapi.DefaultProbeTimeout/time.Millisecond), "Per-path probe timeout in milliseconds")
	scanCmd.Flags().BoolVar(&scanMDNS, "mdns", false, "Discover candidates with mDNS instead of sweeping the range")
	scanCmd.Flags().IntVar(&mdnsBrowseSecs, "browse-time", int(discovery.DefaultBrowseTimeout/time.Second), "mDNS browse time in seconds (with --mdns)")
}

// scanSettings is the effective scan configuration after applying
// preferences and flags
type scanSettings struct {
	subnet      string
	start, end  uint8
	concurrency int
	timeout     time.Duration
	mdns        bool
}

func resolveScanSettings(cmd *cobra.Command, args []string) (scanSettings, error) {
	prefs := registry.Preferences
	s := scanSettings{
		subnet:      prefs.Subnet,
		start:       prefs.StartOctet,
		end:         prefs.EndOctet,
		concurrency: prefs.Concurrency,
		timeout:     prefs.ProbeTimeout(),
		mdns:        prefs.MDNS,
	}

	flags := cmd.Flags()
	if flags.Changed("start") {
		s.start = scanStart
	}
	if flags.Changed("end") {
		s.end = scanEnd
	}
	if flags.Changed("concurrency") {
		s.concurrency = scanConcurrency
	}
	if flags.Changed("timeout") {
		if scanTimeoutMS <= 0 {
			return s, fmt.Errorf("--timeout must be positive, got %d", scanTimeoutMS)
		}
		s.timeout = time.Duration(scanTimeoutMS) * time.Millisecond
	}
	if flags.Changed("mdns") {
		s.mdns = scanMDNS
	}

	if len(args) > 0 {
		s.subnet = args[0]
	}
	if s.subnet == "" && !s.mdns {
		local, err := discovery.LocalSubnet()
		if err != nil {
			return s, fmt.Errorf("no subnet given and %w; pass one explicitly, e.g. 'axectl scan 192.168.1'", err)
		}
		s.subnet = local
	}
	return s, nil
}

func runScan(cmd *cobra.Command, args []string) error {
	settings, err := resolveScanSettings(cmd, args)
	if err != nil {
		return err
	}

	outFormat := format(defaultListFormat(), formatTable, formatPlain, formatJSON)
	switch outFormat {
	case formatTable, formatPlain, formatJSON:
	default:
		return fmt.Errorf("unknown scan format %q (use table, plain or json)", outFormat)
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	printer := ui.NewPrinter(os.Stdout)
	var miners []*minerapi.DiscoveredMiner
	var elapsed time.Duration

	if settings.mdns {
		browse := time.Duration(mdnsBrowseSecs) * time.Second
		if outFormat != formatJSON {
			printer.PrintHeader("mDNS scan", "axectl scan --mdns", []ui.Detail{
				{Key: "Browse time", Value: browse.String()},
				{Key: "Probe timeout", Value: settings.timeout.String()},
			})
		}

		started := time.Now()
		err = ui.RunWithProgress(os.Stderr, "Browsing mDNS for miners", 0, func(ui.ProgressReporter) error {
			scanner := discovery.NewScanner(
				discovery.WithConcurrency(settings.concurrency),
				discovery.WithProbeTimeout(settings.timeout),
			)
			var scanErr error
			miners, scanErr = scanner.ScanMDNS(ctx, browse)
			return scanErr
		})
		elapsed = time.Since(started)
	} else {
		// Validate before drawing anything so bad input fails fast
		addrs, addrErr := discovery.Addresses(settings.subnet, settings.start, settings.end)
		if addrErr != nil {
			return addrErr
		}

		if outFormat != formatJSON {
			printer.PrintHeader("Subnet scan", "axectl scan "+settings.subnet, []ui.Detail{
				{Key: "Range", Value: fmt.Sprintf("%s.%d - %s.%d", settings.subnet, settings.start, settings.subnet, settings.end)},
				{Key: "Hosts", Value: strconv.Itoa(len(addrs))},
				{Key: "Concurrency", Value: concurrencyLabel(settings.concurrency)},
				{Key: "Probe timeout", Value: settings.timeout.String()},
			})
		}

		label := fmt.Sprintf("Scanning %s.%d-%d", settings.subnet, settings.start, settings.end)
		err = ui.RunWithProgress(os.Stderr, label, len(addrs), func(report ui.ProgressReporter) error {
			scanner := discovery.NewScanner(
				discovery.WithConcurrency(settings.concurrency),
				discovery.WithProbeTimeout(settings.timeout),
				discovery.WithProgress(discovery.ProgressFunc(report)),
			)
			result, scanErr := scanner.ScanWithStats(ctx, settings.subnet, settings.start, settings.end)
			if scanErr != nil {
				return scanErr
			}
			miners, elapsed = result.Miners, result.Duration
			return nil
		})
	}

	if errors.Is(err, ui.ErrInterrupted) {
		cancel()
		return fmt.Errorf("scan interrupted")
	}
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return fmt.Errorf("scan interrupted")
	}

	return printMiners(printer, outFormat, miners, elapsed)
}

func printMiners(printer *ui.Printer, outFormat string, miners []*minerapi.DiscoveredMiner, elapsed time.Duration) error {
	switch outFormat {
	case formatJSON:
		data, err := json.MarshalIndent(miners, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		printer.Println(string(data))
		return nil
	case formatPlain:
		printer.Print(ui.RenderMinerPlain(miners, registry.AliasFor))
		return nil
	}

	if len(miners) == 0 {
		printer.PrintWarning("No miners found", []ui.Detail{
			{Key: "Scan time", Value: elapsed.Round(time.Millisecond).String()},
		})
		printer.Println("\nTroubleshooting:")
		printer.Println("  - Check the subnet matches the network the miners are on")
		printer.Println("  - Confirm a miner's web UI loads in a browser")
		printer.Println("  - Slow Wi-Fi may need a longer --timeout")
		return nil
	}

	printer.Println(ui.RenderMinerTable(miners, registry.AliasFor))
	printer.Printf("\nFound %d miner(s) in %s\n", len(miners), elapsed.Round(time.Millisecond))
	printer.Println("Use 'axectl status <address>' to view a miner's full status")
	return nil
}

// defaultListFormat is a table on a terminal and plain lines in a pipe
func defaultListFormat() string {
	if ui.IsTerminal(os.Stdout) {
		return formatTable
	}
	return formatPlain
}

func concurrencyLabel(n int) string {
	if n <= 0 {
		return "unbounded"
	}
	return strconv.Itoa(n)
}

// subnetCmd prints the detected local subnet
var subnetCmd = &cobra.Command{
	Use:   "subnet",
	Short: "Print the local /24 subnet that scan would use",
	Long: `Print the first three octets of this computer's first private IPv4
interface. Loopback and link-local addresses are skipped.

This is the subnet 'axectl scan' uses when no subnet is given and none is
configured.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		subnet, err := discovery.LocalSubnet()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), subnet)
		return nil
	},
}
