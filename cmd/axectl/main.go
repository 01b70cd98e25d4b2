// Axectl discovers and manages AxeOS (Bitaxe) miners on the local network.
//
// It sweeps an IPv4 /24 for devices that answer the AxeOS system-info
// endpoint, and talks to individual miners to read status, restart them,
// change frequency and core voltage, or follow their live log stream.
//
// Usage:
//
//	axectl [command] [flags]
//
// See 'axectl --help' for available commands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/axectl/internal/config"
	"github.com/muurk/axectl/internal/logging"
	"github.com/muurk/axectl/internal/minerapi"
	"github.com/muurk/axectl/internal/ui"
	"github.com/muurk/axectl/internal/version"
)

// Output formats accepted by --format
const (
	formatTable    = "table"
	formatPlain    = "plain"
	formatJSON     = "json"
	formatDetailed = "detailed"
	formatCompact  = "compact"
)

// Global flags
var (
	outputFormat string
	logLevel     string
	configPath   string
)

func main() {
	err := rootCmd.Execute()
	logging.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "axectl",
	Short: "AxeOS Miner Discovery and Control",
	Long: `Find and manage AxeOS (Bitaxe) miners on your local network.

Scans a /24 subnet for miners answering the AxeOS HTTP API, then reads
status, restarts miners, tunes frequency and core voltage, or streams
their live logs.

Logging is silent unless AXECTL_LOG_LEVEL or --log-level is set.`,
	Version: version.Version,
	Example: `  # Scan the local subnet
  axectl scan

  # Scan a specific subnet range
  axectl scan 192.168.1 --start 100 --end 150

  # Show a miner's status
  axectl status 192.168.1.42`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetVersionTemplate("axectl {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "", "Output format (table, plain, json for scan; detailed, compact, json for status)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides "+logging.LogLevelEnvVar)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default is the user config directory)")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.Full())
	},
}

// registry is the loaded config; setup fills it before any command runs
var registry *config.Registry

// setup loads the config file and starts logging. An explicit --log-level
// wins over the environment, which wins over the config file.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	if configPath != "" {
		registry, err = config.LoadRegistryFrom(configPath)
	} else {
		registry, err = config.LoadRegistry()
	}
	if err != nil {
		return err
	}

	level := logLevel
	if level == "" && os.Getenv(logging.LogLevelEnvVar) == "" {
		level = registry.Preferences.LogLevel
	}
	if err := logging.Initialize(level); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	return nil
}

// saveRegistry writes the registry back to wherever it was loaded from
func saveRegistry() error {
	if configPath != "" {
		return registry.SaveTo(configPath)
	}
	return registry.Save()
}

// format returns the --format flag, then the configured default, then
// fallback. The configured default is shared by every command, so it only
// applies when it is one of the formats the calling command accepts.
func format(fallback string, accepted ...string) string {
	if outputFormat != "" {
		return outputFormat
	}
	if registry != nil && registry.Preferences.Format != "" {
		configured := registry.Preferences.Format
		if slices.Contains(accepted, configured) {
			return configured
		}
		logging.Debug("Ignoring configured format for this command",
			zap.String("format", configured),
			zap.Strings("accepted", accepted))
	}
	return fallback
}

// signalContext returns a context cancelled on SIGINT or SIGTERM
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// resolveTarget maps an alias name to its address
func resolveTarget(target string) string {
	if registry == nil {
		return target
	}
	return registry.ResolveAddress(target)
}

// targetLabel shows an address with its alias, if it has one
func targetLabel(address string) string {
	if registry != nil {
		if alias := registry.AliasFor(address); alias != "" {
			return fmt.Sprintf("%s (%s)", address, alias)
		}
	}
	return address
}

// reportDeviceError prints a styled failure box for err and returns a short
// error for cobra, so the exit status is non-zero without repeating the box.
func reportDeviceError(p *ui.Printer, title string, err error) error {
	p.PrintError(title, err, minerapi.GetTroubleshootingHint(err))
	return fmt.Errorf("%s", minerapi.GetShortErrorMessage(err))
}
