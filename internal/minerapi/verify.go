package minerapi

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// VerificationOptions configures how post-command polling behaves
type VerificationOptions struct {
	// MaxRetries is the number of re-reads after the first attempt
	// Default: 3
	MaxRetries int

	// InitialDelay gives the miner time to apply the change before the
	// first read
	// Default: 500ms
	InitialDelay time.Duration

	// RetryDelay is the delay between attempts, doubled after each one up
	// to MaxRetryDelay
	// Default: 1s
	RetryDelay time.Duration

	// MaxRetryDelay caps the backoff
	// Default: 5s
	MaxRetryDelay time.Duration
}

// DefaultVerificationOptions returns the defaults for verifying a settings change
func DefaultVerificationOptions() *VerificationOptions {
	return &VerificationOptions{
		MaxRetries:    3,
		InitialDelay:  500 * time.Millisecond,
		RetryDelay:    1 * time.Second,
		MaxRetryDelay: 5 * time.Second,
	}
}

// RestartWaitOptions returns the defaults for waiting on a rebooting miner.
// AxeOS takes several seconds to bring Wi-Fi back after a restart.
func RestartWaitOptions() *VerificationOptions {
	return &VerificationOptions{
		MaxRetries:    10,
		InitialDelay:  3 * time.Second,
		RetryDelay:    1 * time.Second,
		MaxRetryDelay: 5 * time.Second,
	}
}

// VerificationResult reports the outcome of polling a miner after a command
type VerificationResult struct {
	Success    bool
	Attempts   int
	Status     Payload  // Last status document read, if any
	Mismatches []string // Expected values the miner did not report
	Error      error
}

// VerifySettings re-reads the miner status until it reports the frequency
// and core voltage in update, or the retries run out.
func (c *Client) VerifySettings(ctx context.Context, address string, update SettingsUpdate, opts *VerificationOptions) *VerificationResult {
	return c.poll(ctx, address, opts, func(status Payload) []string {
		return settingsMismatches(update, Summarize(status))
	})
}

// WaitForOnline polls the miner until it answers a status request again,
// typically after Restart.
func (c *Client) WaitForOnline(ctx context.Context, address string, opts *VerificationOptions) *VerificationResult {
	if opts == nil {
		opts = RestartWaitOptions()
	}
	return c.poll(ctx, address, opts, func(Payload) []string { return nil })
}

// poll reads the status with backoff until check returns no mismatches
func (c *Client) poll(ctx context.Context, address string, opts *VerificationOptions, check func(Payload) []string) *VerificationResult {
	if opts == nil {
		opts = DefaultVerificationOptions()
	}
	result := &VerificationResult{}

	if err := sleepContext(ctx, opts.InitialDelay); err != nil {
		result.Error = err
		return result
	}

	delay := opts.RetryDelay
	for attempt := 0; attempt <= opts.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepContext(ctx, delay); err != nil {
				result.Error = err
				return result
			}
			delay *= 2
			if delay > opts.MaxRetryDelay {
				delay = opts.MaxRetryDelay
			}
		}
		result.Attempts++

		status, err := c.FetchStatus(ctx, address)
		if err != nil {
			// The miner may still be applying the change or rebooting
			result.Error = fmt.Errorf("attempt %d: %w", result.Attempts, err)
			continue
		}
		result.Status = status

		result.Mismatches = check(status)
		if len(result.Mismatches) == 0 {
			result.Success = true
			result.Error = nil
			return result
		}
		result.Error = fmt.Errorf("attempt %d: %s", result.Attempts, strings.Join(result.Mismatches, "; "))
	}

	result.Error = fmt.Errorf("verification failed after %d attempts: %w", result.Attempts, result.Error)
	return result
}

// settingsMismatches compares the requested settings with a status summary
func settingsMismatches(expected SettingsUpdate, actual StatusSummary) []string {
	var mismatches []string
	if actual.FrequencyMHz == nil || *actual.FrequencyMHz != float64(expected.FrequencyMHz) {
		mismatches = append(mismatches, fmt.Sprintf("frequency: expected %d MHz, got %s", expected.FrequencyMHz, formatNumber(actual.FrequencyMHz, -1)))
	}
	if actual.CoreVoltageMV == nil || *actual.CoreVoltageMV != float64(expected.CoreVoltageMV) {
		mismatches = append(mismatches, fmt.Sprintf("core voltage: expected %d mV, got %s", expected.CoreVoltageMV, formatNumber(actual.CoreVoltageMV, -1)))
	}
	return mismatches
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
