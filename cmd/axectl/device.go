package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/axectl/internal/minerapi"
	"github.com/muurk/axectl/internal/ui"
)

// Device command flags
var (
	commandTimeoutMS int
	assumeYes        bool
	setFrequency     uint32
	setCoreVoltage   uint32
	logsNoColor      bool
	noVerify         bool
	retries          int
	waitOnline       bool
)

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(restartCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(logsCmd)

	for _, cmd := range []*cobra.Command{statusCmd, restartCmd, setCmd, logsCmd} {
		cmd.Flags().IntVar(&commandTimeoutMS, "timeout", int(minerapi.DefaultCommandTimeout/time.Millisecond), "Request timeout in milliseconds")
	}
}

// newCommandClient builds a client with the --timeout flag, falling back to
// the configured command timeout
func newCommandClient(cmd *cobra.Command) (*minerapi.Client, error) {
	timeout := registry.Preferences.CommandTimeout()
	if cmd.Flags().Changed("timeout") {
		if commandTimeoutMS <= 0 {
			return nil, fmt.Errorf("--timeout must be positive, got %d", commandTimeoutMS)
		}
		timeout = time.Duration(commandTimeoutMS) * time.Millisecond
	}
	return minerapi.NewClient(timeout), nil
}

// statusCmd shows the full status of one miner
var statusCmd = &cobra.Command{
	Use:   "status <address|alias>",
	Short: "Show a miner's status",
	Long: `Fetch the full status document of one miner.

/api/system/info is tried first, then /api/system and /api/swarm/info for
older firmware. The command fails only when every path fails.`,
	Example: `  # Detailed status
  axectl status 192.168.1.42

  # One screen summary
  axectl status garage --format compact

  # Raw JSON exactly as returned by the miner
  axectl status 192.168.1.42 --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	address := resolveTarget(args[0])
	outFormat := format(formatDetailed, formatDetailed, formatCompact, formatJSON)
	switch outFormat {
	case formatDetailed, formatCompact, formatJSON:
	default:
		return fmt.Errorf("unknown status format %q (use detailed, compact or json)", outFormat)
	}

	client, err := newCommandClient(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	printer := ui.NewPrinter(os.Stdout)
	payload, err := client.FetchStatus(ctx, address)
	if err != nil {
		return reportDeviceError(ui.NewPrinter(os.Stderr), "Status unavailable for "+targetLabel(address), err)
	}

	switch outFormat {
	case formatJSON:
		printer.Println(payload.String())
	case formatCompact:
		printer.Println(minerapi.Summarize(payload).FormatCompact())
	default:
		printer.PrintHeader("Miner status", "axectl status "+address, []ui.Detail{
			{Key: "Miner", Value: targetLabel(address)},
		})
		printer.Println(minerapi.Summarize(payload).FormatDetailed())
	}
	return nil
}

// restartCmd reboots one miner
var restartCmd = &cobra.Command{
	Use:   "restart <address|alias>",
	Short: "Restart a miner",
	Long: `Ask a miner to reboot. Hashing stops until the miner is back online.

You are asked to confirm unless --yes is given.`,
	Example: `  axectl restart 192.168.1.42
  axectl restart garage --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runRestart,
}

func init() {
	restartCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
	restartCmd.Flags().BoolVar(&waitOnline, "wait", false, "Wait until the miner answers again after rebooting")
}

func runRestart(cmd *cobra.Command, args []string) error {
	address := resolveTarget(args[0])
	client, err := newCommandClient(cmd)
	if err != nil {
		return err
	}

	printer := ui.NewPrinter(os.Stdout)
	if !assumeYes && !ui.ConfirmRestart(os.Stdin, os.Stdout, targetLabel(address)) {
		return nil
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	result, err := client.Restart(ctx, address)
	if err != nil {
		return reportDeviceError(printer, "Restart failed", err)
	}

	if format("", formatJSON) == formatJSON {
		printer.Println(result.String())
	} else {
		printer.PrintSuccess("Restart requested", []ui.Detail{
			{Key: "Miner", Value: targetLabel(address)},
			{Key: "Response", Value: result.String()},
		})
	}
	if !waitOnline {
		return nil
	}

	var verification *minerapi.VerificationResult
	err = ui.RunWithProgress(os.Stderr, "Waiting for "+address+" to come back", 0, func(ui.ProgressReporter) error {
		verification = client.WaitForOnline(ctx, address, nil)
		return nil
	})
	if errors.Is(err, ui.ErrInterrupted) {
		cancel()
		return fmt.Errorf("wait interrupted")
	}
	if err != nil {
		return err
	}
	if !verification.Success {
		return reportDeviceError(printer, "Miner did not come back online", verification.Error)
	}
	if format("", formatJSON) != formatJSON {
		printer.PrintSuccess("Miner is back online", []ui.Detail{
			{Key: "Miner", Value: targetLabel(address)},
			{Key: "Attempts", Value: strconv.Itoa(verification.Attempts)},
		})
	}
	return nil
}

// setCmd changes frequency and core voltage
var setCmd = &cobra.Command{
	Use:   "set <address|alias> --frequency MHZ --core-voltage MV",
	Short: "Set a miner's frequency and core voltage",
	Long: `Write a new ASIC frequency (MHz) and core voltage (mV) to a miner.

Both values are always sent together. The miner validates them against the
ranges its ASIC supports and rejects unsupported values.

You are asked to confirm unless --yes is given.`,
	Example: `  axectl set 192.168.1.42 --frequency 525 --core-voltage 1200
  axectl set garage --frequency 490 --core-voltage 1166 --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runSet,
}

func init() {
	setCmd.Flags().Uint32Var(&setFrequency, "frequency", 0, "ASIC frequency in MHz")
	setCmd.Flags().Uint32Var(&setCoreVoltage, "core-voltage", 0, "ASIC core voltage in mV")
	setCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
	setCmd.Flags().BoolVar(&noVerify, "no-verify", false, "Skip reading the settings back after the update")
	setCmd.Flags().IntVar(&retries, "retries", 3, "Number of verification retries")
	_ = setCmd.MarkFlagRequired("frequency")
	_ = setCmd.MarkFlagRequired("core-voltage")
}

func runSet(cmd *cobra.Command, args []string) error {
	address := resolveTarget(args[0])
	update := minerapi.SettingsUpdate{
		FrequencyMHz:  setFrequency,
		CoreVoltageMV: setCoreVoltage,
	}

	printer := ui.NewPrinter(os.Stdout)
	if errs := minerapi.ValidateSettingsUpdate(update); len(errs) > 0 {
		joined := errors.Join(errs...)
		printer.PrintError("Invalid settings", joined, minerapi.GetTroubleshootingHint(errs[0]))
		return fmt.Errorf("invalid settings")
	}

	if retries < 0 {
		return fmt.Errorf("--retries must not be negative, got %d", retries)
	}

	client, err := newCommandClient(cmd)
	if err != nil {
		return err
	}

	if !assumeYes && !ui.ConfirmSettings(os.Stdin, os.Stdout, targetLabel(address), update.FrequencyMHz, update.CoreVoltageMV) {
		return nil
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	result, err := client.UpdateSettings(ctx, address, update)
	if err != nil {
		return reportDeviceError(printer, "Settings update failed", err)
	}

	if format("", formatJSON) == formatJSON {
		printer.Println(result.String())
		return nil
	}

	details := []ui.Detail{
		{Key: "Miner", Value: targetLabel(address)},
		{Key: "Frequency", Value: strconv.FormatUint(uint64(update.FrequencyMHz), 10) + " MHz"},
		{Key: "Core voltage", Value: strconv.FormatUint(uint64(update.CoreVoltageMV), 10) + " mV"},
	}
	if noVerify {
		printer.PrintSuccess("Settings applied (not verified)", details)
		return nil
	}

	opts := minerapi.DefaultVerificationOptions()
	opts.MaxRetries = retries
	verification := client.VerifySettings(ctx, address, update, opts)
	if !verification.Success {
		printer.PrintWarning("Settings sent but not confirmed", append(details,
			ui.Detail{Key: "Attempts", Value: strconv.Itoa(verification.Attempts)},
			ui.Detail{Key: "Last result", Value: errorText(verification.Error)},
		))
		printer.Println("Some firmware applies new values only after 'axectl restart " + address + "'")
		return fmt.Errorf("settings verification failed after %d attempt(s)", verification.Attempts)
	}

	printer.PrintSuccess("Settings applied and verified", append(details,
		ui.Detail{Key: "Attempts", Value: strconv.Itoa(verification.Attempts)},
	))
	return nil
}

func errorText(err error) string {
	if err == nil {
		return "-"
	}
	return err.Error()
}

// logsCmd follows the live log stream of one miner
var logsCmd = &cobra.Command{
	Use:   "logs <address|alias>",
	Short: "Stream a miner's live logs",
	Long: `Follow the miner's log output over its websocket endpoint (/api/ws).

Lines are colored by level on a terminal. Press Ctrl+C to stop.`,
	Example: `  axectl logs 192.168.1.42
  axectl logs garage --no-color | grep stratum`,
	Args: cobra.ExactArgs(1),
	RunE: runLogs,
}

func init() {
	logsCmd.Flags().BoolVar(&logsNoColor, "no-color", false, "Print log lines without color")
}

func runLogs(cmd *cobra.Command, args []string) error {
	address := resolveTarget(args[0])
	client, err := newCommandClient(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	printer := ui.NewPrinter(os.Stdout)
	colorize := !logsNoColor && !printer.Plain
	if !printer.Plain {
		printer.Println(ui.RenderHorizontalDivider(printer.Width(), "─"))
		printer.Printf("Streaming logs from %s (Ctrl+C to stop)\n", targetLabel(address))
	}

	err = client.StreamLogs(ctx, address, func(line string) {
		if colorize {
			line = ui.ColorizeLogLine(line)
		}
		printer.Println(line)
	})
	if err != nil {
		return reportDeviceError(ui.NewPrinter(os.Stderr), "Log stream failed", err)
	}
	return nil
}
