package minerapi

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// StatusSummary holds the commonly displayed fields of an AxeOS status document.
// Every field is optional; absent or mistyped values stay nil.
type StatusSummary struct {
	Hostname        *string
	Model           *string
	FirmwareVersion *string
	BoardVersion    *string
	HashRate        *float64 // GH/s
	Temperature     *float64 // °C
	VRTemperature   *float64 // °C
	Power           *float64 // W
	FrequencyMHz    *float64
	CoreVoltageMV   *float64
	UptimeSeconds   *float64
	SharesAccepted  *float64
	SharesRejected  *float64
	BestDifficulty  *string
	StratumURL      *string
	StratumPort     *float64
	StratumUser     *string
}

// Summarize extracts a StatusSummary from a status payload. A payload that is
// not a JSON object yields an empty summary.
func Summarize(p Payload) StatusSummary {
	fields, err := p.Fields()
	if err != nil {
		return StatusSummary{}
	}

	miner := NewDiscoveredMiner("", fields)
	return StatusSummary{
		Hostname:        miner.Hostname,
		Model:           miner.Model,
		FirmwareVersion: miner.FirmwareVersion,
		BoardVersion:    stringField(fields, "boardVersion"),
		HashRate:        numberField(fields, "hashRate"),
		Temperature:     numberField(fields, "temp"),
		VRTemperature:   numberField(fields, "vrTemp"),
		Power:           numberField(fields, "power"),
		FrequencyMHz:    numberField(fields, "frequency"),
		CoreVoltageMV:   numberField(fields, "coreVoltage"),
		UptimeSeconds:   numberField(fields, "uptimeSeconds"),
		SharesAccepted:  numberField(fields, "sharesAccepted"),
		SharesRejected:  numberField(fields, "sharesRejected"),
		BestDifficulty:  stringField(fields, "bestDiff"),
		StratumURL:      stringField(fields, "stratumURL"),
		StratumPort:     numberField(fields, "stratumPort"),
		StratumUser:     stringField(fields, "stratumUser"),
	}
}

func numberField(fields map[string]any, key string) *float64 {
	n, ok := fields[key].(json.Number)
	if !ok {
		return nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil
	}
	return &f
}

// Summary returns a one-line summary of the miner status
func (s StatusSummary) Summary() string {
	return fmt.Sprintf("%s %s @ %s GH/s (FW: %s)",
		valueOr(s.Hostname, "-"), valueOr(s.Model, "-"),
		formatNumber(s.HashRate, 1), valueOr(s.FirmwareVersion, "-"))
}

// FormatCompact returns a compact multi-line format suitable for terminal display
func (s StatusSummary) FormatCompact() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Miner:    %s (%s)\n", valueOr(s.Hostname, "-"), valueOr(s.Model, "-")))
	b.WriteString(fmt.Sprintf("Firmware: %s\n", valueOr(s.FirmwareVersion, "-")))
	b.WriteString(fmt.Sprintf("Hashrate: %s GH/s\n", formatNumber(s.HashRate, 1)))
	b.WriteString(fmt.Sprintf("Temp:     %s °C\n", formatNumber(s.Temperature, 1)))
	b.WriteString(fmt.Sprintf("Tuning:   %s MHz @ %s mV\n", formatNumber(s.FrequencyMHz, 0), formatNumber(s.CoreVoltageMV, 0)))

	return b.String()
}

// FormatDetailed returns a comprehensive formatted string with all known fields
func (s StatusSummary) FormatDetailed() string {
	var b strings.Builder

	b.WriteString("=== Miner Information ===\n")
	b.WriteString(fmt.Sprintf("Hostname:       %s\n", valueOr(s.Hostname, "-")))
	b.WriteString(fmt.Sprintf("ASIC Model:     %s\n", valueOr(s.Model, "-")))
	b.WriteString(fmt.Sprintf("Firmware:       %s\n", valueOr(s.FirmwareVersion, "-")))
	b.WriteString(fmt.Sprintf("Board Version:  %s\n", valueOr(s.BoardVersion, "-")))
	b.WriteString(fmt.Sprintf("Uptime:         %s\n", FormatUptime(s.UptimeSeconds)))
	b.WriteString("\n")

	b.WriteString("=== Performance ===\n")
	b.WriteString(fmt.Sprintf("Hashrate:       %s GH/s\n", formatNumber(s.HashRate, 2)))
	b.WriteString(fmt.Sprintf("Power:          %s W\n", formatNumber(s.Power, 1)))
	b.WriteString(fmt.Sprintf("ASIC Temp:      %s °C\n", formatNumber(s.Temperature, 1)))
	b.WriteString(fmt.Sprintf("VR Temp:        %s °C\n", formatNumber(s.VRTemperature, 1)))
	b.WriteString(fmt.Sprintf("Shares:         %s accepted / %s rejected\n",
		formatNumber(s.SharesAccepted, 0), formatNumber(s.SharesRejected, 0)))
	b.WriteString(fmt.Sprintf("Best Diff:      %s\n", valueOr(s.BestDifficulty, "-")))
	b.WriteString("\n")

	b.WriteString("=== Tuning ===\n")
	b.WriteString(fmt.Sprintf("Frequency:      %s MHz\n", formatNumber(s.FrequencyMHz, 0)))
	b.WriteString(fmt.Sprintf("Core Voltage:   %s mV\n", formatNumber(s.CoreVoltageMV, 0)))
	b.WriteString("\n")

	b.WriteString("=== Pool ===\n")
	pool := valueOr(s.StratumURL, "-")
	if s.StratumURL != nil && s.StratumPort != nil {
		pool = fmt.Sprintf("%s:%s", *s.StratumURL, formatNumber(s.StratumPort, 0))
	}
	b.WriteString(fmt.Sprintf("Stratum:        %s\n", pool))
	b.WriteString(fmt.Sprintf("Worker:         %s\n", valueOr(s.StratumUser, "-")))

	return b.String()
}

// FormatUptime renders a seconds count as "3d 4h 12m"
func FormatUptime(seconds *float64) string {
	if seconds == nil || *seconds < 0 {
		return "-"
	}

	d := time.Duration(*seconds) * time.Second
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}

func formatNumber(f *float64, precision int) string {
	if f == nil {
		return "-"
	}
	return strconv.FormatFloat(*f, 'f', precision, 64)
}
