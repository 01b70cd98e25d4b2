package minerapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func fastOptions(retries int) *VerificationOptions {
	return &VerificationOptions{
		MaxRetries:    retries,
		InitialDelay:  time.Millisecond,
		RetryDelay:    time.Millisecond,
		MaxRetryDelay: 2 * time.Millisecond,
	}
}

func TestVerifySettings_EventuallyApplied(t *testing.T) {
	var reads atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reads.Add(1) < 3 {
			_, _ = w.Write([]byte(`{"frequency":485,"coreVoltage":1200}`))
			return
		}
		_, _ = w.Write([]byte(`{"frequency":525,"coreVoltage":1200}`))
	}))
	defer server.Close()

	client := NewClient(time.Second)
	result := client.VerifySettings(context.Background(), serverAddress(server),
		SettingsUpdate{FrequencyMHz: 525, CoreVoltageMV: 1200}, fastOptions(5))

	if !result.Success {
		t.Fatalf("Success = false, Error = %v", result.Error)
	}
	if result.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", result.Attempts)
	}
	if len(result.Mismatches) != 0 {
		t.Errorf("Mismatches = %v, want none", result.Mismatches)
	}
}

func TestVerifySettings_Mismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"frequency":485}`))
	}))
	defer server.Close()

	client := NewClient(time.Second)
	result := client.VerifySettings(context.Background(), serverAddress(server),
		SettingsUpdate{FrequencyMHz: 525, CoreVoltageMV: 1200}, fastOptions(2))

	if result.Success {
		t.Fatal("Success = true, want false")
	}
	if result.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", result.Attempts)
	}
	if len(result.Mismatches) != 2 {
		t.Fatalf("Mismatches = %v, want 2", result.Mismatches)
	}
	if !strings.Contains(result.Mismatches[0], "expected 525 MHz, got 485") {
		t.Errorf("Mismatches[0] = %q", result.Mismatches[0])
	}
	if !strings.Contains(result.Mismatches[1], "got -") {
		t.Errorf("Mismatches[1] = %q, want missing value shown as -", result.Mismatches[1])
	}
}

func TestWaitForOnline(t *testing.T) {
	var up atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !up.Load() {
			up.Store(true)
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(mockSystemInfo))
	}))
	defer server.Close()

	client := NewClient(time.Second)
	result := client.WaitForOnline(context.Background(), serverAddress(server), fastOptions(3))

	if !result.Success {
		t.Fatalf("Success = false, Error = %v", result.Error)
	}
	if result.Status == nil {
		t.Error("Status should hold the first successful read")
	}
}

func TestWaitForOnline_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(time.Second)
	result := client.WaitForOnline(ctx, closedAddress(t), &VerificationOptions{InitialDelay: time.Hour})

	if result.Success {
		t.Fatal("Success = true, want false")
	}
	if !errors.Is(result.Error, context.Canceled) {
		t.Errorf("Error = %v, want context.Canceled", result.Error)
	}
}

func TestSettingsMismatches(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	expected := SettingsUpdate{FrequencyMHz: 525, CoreVoltageMV: 1200}

	tests := []struct {
		name      string
		frequency *float64
		voltage   *float64
		want      []string
	}{
		{"exact", f(525), f(1200), nil},
		{"fractional frequency", f(525.9), f(1200), []string{"frequency: expected 525 MHz, got 525.9"}},
		{"negative voltage", f(525), f(-1), []string{"core voltage: expected 1200 mV, got -1"}},
		{"missing", nil, f(1200), []string{"frequency: expected 525 MHz, got -"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := settingsMismatches(expected, StatusSummary{FrequencyMHz: tt.frequency, CoreVoltageMV: tt.voltage})
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("settingsMismatches() = %q, want %q", got, tt.want)
			}
		})
	}
}
