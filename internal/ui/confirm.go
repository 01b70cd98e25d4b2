package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Confirm shows a warning box on out and reads one line from in. It returns
// true only for "y" or "yes" (any case). EOF counts as no.
func Confirm(in io.Reader, out io.Writer, title string, warnings []string) bool {
	width := GetTerminalWidth()

	lines := []string{"", WarningTitleStyle.Render(fmt.Sprintf("   %s  WARNING  ─  %s", WarningMarker, title)), ""}
	bulletStyle := lipgloss.NewStyle().Foreground(TextColor)
	for _, warning := range warnings {
		lines = append(lines, bulletStyle.Render("   • "+warning))
	}
	lines = append(lines, "")

	_, _ = fmt.Fprintln(out, resultBoxStyle(width, WarningColor).Render(strings.Join(lines, "\n")))
	_, _ = fmt.Fprint(out, WarningTitleStyle.Render("Proceed? [y/N]: "))

	input, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && input == "" {
		_, _ = fmt.Fprintln(out)
		return false
	}

	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return true
	}

	_, _ = fmt.Fprintln(out, lipgloss.NewStyle().Foreground(MutedColor).Render("  Operation cancelled."))
	return false
}

// ConfirmRestart asks before rebooting a miner, which interrupts hashing
func ConfirmRestart(in io.Reader, out io.Writer, address string) bool {
	return Confirm(in, out, "RESTART "+address, []string{
		"The miner will stop hashing while it reboots",
		"Pool shares in flight may be lost",
	})
}

// ConfirmSettings asks before writing new frequency and core voltage values
func ConfirmSettings(in io.Reader, out io.Writer, address string, frequencyMHz, coreVoltageMV uint32) bool {
	return Confirm(in, out, "CHANGE TUNING ON "+address, []string{
		fmt.Sprintf("Frequency will be set to %d MHz", frequencyMHz),
		fmt.Sprintf("Core voltage will be set to %d mV", coreVoltageMV),
		"Values outside the ASIC's safe range can overheat the board",
	})
}
