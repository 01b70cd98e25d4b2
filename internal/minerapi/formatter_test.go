package minerapi

import (
	"strings"
	"testing"
)

func floatPtr(f float64) *float64 { return &f }

func TestSummarize(t *testing.T) {
	s := Summarize(Payload(mockSystemInfo))

	if s.Hostname == nil || *s.Hostname != "bitaxe-01" {
		t.Errorf("Hostname = %v, want bitaxe-01", s.Hostname)
	}
	if s.Model == nil || *s.Model != "BM1366" {
		t.Errorf("Model = %v, want BM1366", s.Model)
	}
	if s.HashRate == nil || *s.HashRate != 512.34 {
		t.Errorf("HashRate = %v, want 512.34", s.HashRate)
	}
	if s.FrequencyMHz == nil || *s.FrequencyMHz != 485 {
		t.Errorf("FrequencyMHz = %v, want 485", s.FrequencyMHz)
	}
	if s.BestDifficulty == nil || *s.BestDifficulty != "4.29G" {
		t.Errorf("BestDifficulty = %v, want 4.29G", s.BestDifficulty)
	}
	if s.StratumPort == nil || *s.StratumPort != 21496 {
		t.Errorf("StratumPort = %v, want 21496", s.StratumPort)
	}
}

func TestSummarize_MistypedAndMissing(t *testing.T) {
	s := Summarize(Payload(`{"temp":"hot","hashRate":null}`))

	if s.Temperature != nil {
		t.Errorf("Temperature = %v, want nil for string value", *s.Temperature)
	}
	if s.HashRate != nil {
		t.Errorf("HashRate = %v, want nil for null", *s.HashRate)
	}
	if s.Power != nil {
		t.Errorf("Power = %v, want nil when missing", *s.Power)
	}

	empty := Summarize(Acknowledgement)
	if empty.Hostname != nil || empty.HashRate != nil {
		t.Errorf("Summarize(ack) = %+v, want empty", empty)
	}

	if got := Summarize(Payload(`[1,2,3]`)); got != (StatusSummary{}) {
		t.Errorf("Summarize(array) = %+v, want zero value", got)
	}
}

func TestStatusSummary_Summary(t *testing.T) {
	s := Summarize(Payload(mockSystemInfo))
	want := "bitaxe-01 BM1366 @ 512.3 GH/s (FW: v2.4.1)"
	if got := s.Summary(); got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}

	if got := (StatusSummary{}).Summary(); got != "- - @ - GH/s (FW: -)" {
		t.Errorf("Summary() on empty = %q", got)
	}
}

func TestStatusSummary_FormatCompact(t *testing.T) {
	out := Summarize(Payload(mockSystemInfo)).FormatCompact()

	for _, want := range []string{
		"Miner:    bitaxe-01 (BM1366)",
		"Firmware: v2.4.1",
		"Hashrate: 512.3 GH/s",
		"Temp:     52.5 °C",
		"Tuning:   485 MHz @ 1200 mV",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatCompact() missing %q in:\n%s", want, out)
		}
	}
}

func TestStatusSummary_FormatDetailed(t *testing.T) {
	out := Summarize(Payload(mockSystemInfo)).FormatDetailed()

	for _, want := range []string{
		"=== Miner Information ===",
		"Uptime:         1d 2h 3m",
		"Shares:         1520 accepted / 3 rejected",
		"Stratum:        public-pool.io:21496",
		"Worker:         bc1qexample.bitaxe",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatDetailed() missing %q in:\n%s", want, out)
		}
	}

	noPort := StatusSummary{StratumURL: strPtr("pool.example")}.FormatDetailed()
	if !strings.Contains(noPort, "Stratum:        pool.example\n") {
		t.Errorf("FormatDetailed() without port:\n%s", noPort)
	}
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		seconds *float64
		want    string
	}{
		{nil, "-"},
		{floatPtr(-5), "-"},
		{floatPtr(0), "0m"},
		{floatPtr(59), "0m"},
		{floatPtr(61), "1m"},
		{floatPtr(3600), "1h 0m"},
		{floatPtr(93784), "1d 2h 3m"},
	}

	for _, tt := range tests {
		if got := FormatUptime(tt.seconds); got != tt.want {
			t.Errorf("FormatUptime(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
