package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/muurk/axectl/internal/minerapi"
)

func strPtr(s string) *string { return &s }

func testMiners() []*minerapi.DiscoveredMiner {
	return []*minerapi.DiscoveredMiner{
		{Address: "192.168.1.10", Hostname: strPtr("bitaxe"), Model: strPtr("BM1366"), FirmwareVersion: strPtr("v2.4.1")},
		{Address: "192.168.1.11"},
	}
}

func TestRenderMinerTable(t *testing.T) {
	aliases := func(addr string) string {
		if addr == "192.168.1.10" {
			return "garage"
		}
		return ""
	}

	out := RenderMinerTable(testMiners(), aliases)
	for _, want := range []string{"ADDRESS", "HOSTNAME", "192.168.1.10", "bitaxe", "BM1366", "v2.4.1", "garage", "192.168.1.11"} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderMinerTable() missing %q in:\n%s", want, out)
		}
	}
}

func TestRenderMinerPlain(t *testing.T) {
	out := RenderMinerPlain(testMiners(), nil)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")

	if len(lines) != 2 {
		t.Fatalf("RenderMinerPlain() returned %d lines, want 2:\n%s", len(lines), out)
	}
	if lines[0] != "192.168.1.10\tbitaxe\tBM1366\tv2.4.1\t-" {
		t.Errorf("line[0] = %q", lines[0])
	}
	if lines[1] != "192.168.1.11\t-\t-\t-\t-" {
		t.Errorf("line[1] = %q", lines[1])
	}

	if got := RenderMinerPlain(nil, nil); got != "" {
		t.Errorf("RenderMinerPlain(nil) = %q, want empty", got)
	}
}

func TestPrinter_Plain(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	if !p.Plain {
		t.Fatal("Printer on a buffer should be in plain mode")
	}

	p.PrintHeader("Scan", "axectl scan", []Detail{{"Range", "1-254"}})
	p.PrintSuccess("Restart requested", []Detail{{"Address", "10.0.0.5"}})
	p.PrintError("Status failed", errors.New("boom"), []string{"check power"})

	out := buf.String()
	if strings.Contains(out, "SCAN") {
		t.Errorf("plain mode should skip headers, got:\n%s", out)
	}
	for _, want := range []string{"✓ Restart requested", "  Address: 10.0.0.5", "✗ Status failed", "  Error: boom", "  - check power"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q in:\n%s", want, out)
		}
	}
}

func TestRenderBoxes(t *testing.T) {
	success := RenderSuccessBox("Settings applied", []Detail{{"Frequency", "525 MHz"}}, 80)
	if !strings.Contains(success, "SUCCESS") || !strings.Contains(success, "525 MHz") {
		t.Errorf("RenderSuccessBox() =\n%s", success)
	}

	failure := RenderErrorBox("Restart failed", errors.New("HTTP 500"), []string{"Check the firmware"}, 80)
	for _, want := range []string{"FAILED", "HTTP 500", "Troubleshooting:", "Check the firmware"} {
		if !strings.Contains(failure, want) {
			t.Errorf("RenderErrorBox() missing %q in:\n%s", want, failure)
		}
	}

	header := RenderHeader("Subnet scan", "axectl scan", []Detail{{"Subnet", "192.168.1"}}, 80)
	if !strings.Contains(header, "SUBNET SCAN") || !strings.Contains(header, "192.168.1") {
		t.Errorf("RenderHeader() =\n%s", header)
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"  yes  \n", true},
		{"yes", true},
		{"n\n", false},
		{"\n", false},
		{"I AGREE\n", false},
		{"", false},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		got := ConfirmRestart(strings.NewReader(tt.input), &out, "10.0.0.5")
		if got != tt.want {
			t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if !strings.Contains(out.String(), "RESTART 10.0.0.5") {
			t.Errorf("Confirm() output missing title:\n%s", out.String())
		}
	}
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		line string
		want byte
	}{
		{"E (1234) asic: overheat", 'E'},
		{"W (10) power: VR hot", 'W'},
		{"I (99) stratum_task: job", 'I'},
		{"D (1) x: y", 'D'},
		{"X (1) x: y", 0},
		{"plain text", 0},
		{"", 0},
	}

	for _, tt := range tests {
		if got := LogLevel(tt.line); got != tt.want {
			t.Errorf("LogLevel(%q) = %q, want %q", tt.line, got, tt.want)
		}
		if !strings.Contains(ColorizeLogLine(tt.line), tt.line) {
			t.Errorf("ColorizeLogLine(%q) lost the text", tt.line)
		}
	}
}

func TestProgressModel_Update(t *testing.T) {
	m := NewProgressModel("Scanning", 10, func(ProgressReporter) error { return nil })

	m.Update(progressMsg{done: 4, total: 10})
	m.Update(progressMsg{done: 3, total: 10})
	if m.done != 4 {
		t.Errorf("done = %d, want 4 (out-of-order updates must not go backwards)", m.done)
	}
	if m.Percent() != 0.4 {
		t.Errorf("Percent() = %v, want 0.4", m.Percent())
	}
	if !strings.Contains(m.View(), "4/10") {
		t.Errorf("View() = %q, want counter", m.View())
	}

	workErr := errors.New("scan failed")
	_, cmd := m.Update(workDoneMsg{err: workErr})
	if cmd == nil {
		t.Error("workDoneMsg should quit the program")
	}
	if !errors.Is(m.err, workErr) {
		t.Errorf("err = %v, want %v", m.err, workErr)
	}
	if m.View() != "" {
		t.Errorf("View() after finish = %q, want empty", m.View())
	}
}

func TestRunWithProgress_NonTerminal(t *testing.T) {
	var buf bytes.Buffer
	ran := false

	err := RunWithProgress(&buf, "Scanning", 3, func(report ProgressReporter) error {
		ran = true
		report(1, 3)
		return nil
	})
	if err != nil {
		t.Fatalf("RunWithProgress() error = %v", err)
	}
	if !ran {
		t.Error("work did not run")
	}
	if buf.Len() != 0 {
		t.Errorf("non-terminal output should stay empty, got %q", buf.String())
	}
}
