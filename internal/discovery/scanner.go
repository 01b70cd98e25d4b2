package discovery

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/muurk/axectl/internal/logging"
	"github.com/muurk/axectl/internal/minerapi"
)

// DefaultConcurrency is the maximum number of probes in flight during a scan
const DefaultConcurrency = 64

// MinerProber checks one address for a miner. It returns nil when nothing
// answered the discovery paths.
type MinerProber interface {
	Discover(ctx context.Context, address string) *minerapi.DiscoveredMiner
}

// Scanner probes every address in a /24 host range for miners
type Scanner struct {
	prober      MinerProber
	concurrency int
	progress    ProgressFunc
}

// ProgressFunc is called after each probe finishes with the number of
// completed probes and the total. It is called from probe goroutines and
// must be safe for concurrent use.
type ProgressFunc func(done, total int)

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithConcurrency sets the maximum number of concurrent probes.
// Zero or a negative value runs one probe per address with no cap.
func WithConcurrency(concurrency int) ScannerOption {
	return func(s *Scanner) {
		s.concurrency = concurrency
	}
}

// WithProber replaces the HTTP prober, mainly for tests.
func WithProber(prober MinerProber) ScannerOption {
	return func(s *Scanner) {
		s.prober = prober
	}
}

// WithProbeTimeout sets the per-path timeout of the default HTTP prober.
// It has no effect after WithProber.
func WithProbeTimeout(timeout time.Duration) ScannerOption {
	return func(s *Scanner) {
		if p, ok := s.prober.(*minerapi.Prober); ok {
			p.SetTimeout(timeout)
		}
	}
}

// WithProgress registers a callback for per-probe progress.
func WithProgress(fn ProgressFunc) ScannerOption {
	return func(s *Scanner) {
		s.progress = fn
	}
}

// NewScanner creates a scanner using an HTTP prober with the short discovery
// timeout unless options say otherwise.
func NewScanner(opts ...ScannerOption) *Scanner {
	s := &Scanner{
		prober:      minerapi.NewProber(minerapi.DefaultProbeTimeout),
		concurrency: DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ScanResult contains the outcome of a range scan
type ScanResult struct {
	// Miners lists every address that answered, in address order
	Miners []*minerapi.DiscoveredMiner

	// Scanned is the number of addresses probed
	Scanned int

	// Duration is the wall-clock time of the scan
	Duration time.Duration
}

// Scan probes subnet.start through subnet.end and returns the miners found.
// An empty range result is an empty slice and a nil error.
func (s *Scanner) Scan(ctx context.Context, subnet string, start, end uint8) ([]*minerapi.DiscoveredMiner, error) {
	result, err := s.ScanWithStats(ctx, subnet, start, end)
	if err != nil {
		return nil, err
	}
	return result.Miners, nil
}

// ScanWithStats is Scan with timing information. The subnet and range are
// validated before any probe is sent.
func (s *Scanner) ScanWithStats(ctx context.Context, subnet string, start, end uint8) (*ScanResult, error) {
	addrs, err := Addresses(subnet, start, end)
	if err != nil {
		return nil, err
	}

	startTime := time.Now()
	miners := s.probeAll(ctx, addrs)
	duration := time.Since(startTime)

	logging.LogScan(subnet, start, end, len(miners), duration)

	return &ScanResult{
		Miners:   miners,
		Scanned:  len(addrs),
		Duration: duration,
	}, nil
}

// ScanAddresses probes an explicit address list, such as mDNS candidates.
func (s *Scanner) ScanAddresses(ctx context.Context, addrs []string) []*minerapi.DiscoveredMiner {
	return s.probeAll(ctx, addrs)
}

// probeAll runs one probe per address and waits for all of them. Each
// goroutine writes only its own slot, so no lock is needed.
func (s *Scanner) probeAll(ctx context.Context, addrs []string) []*minerapi.DiscoveredMiner {
	slots := make([]*minerapi.DiscoveredMiner, len(addrs))

	limit := s.concurrency
	if limit <= 0 || limit > len(addrs) {
		limit = len(addrs)
	}

	var (
		wg        sync.WaitGroup
		completed atomic.Int64
		sem       = make(chan struct{}, max(limit, 1))
	)

	for i, addr := range addrs {
		wg.Add(1)
		sem <- struct{}{}

		go func(i int, addr string) {
			defer wg.Done()
			defer func() { <-sem }()

			slots[i] = s.prober.Discover(ctx, addr)

			if s.progress != nil {
				s.progress(int(completed.Add(1)), len(addrs))
			}
		}(i, addr)
	}

	wg.Wait()

	miners := make([]*minerapi.DiscoveredMiner, 0, len(slots))
	for _, m := range slots {
		if m != nil {
			miners = append(miners, m)
		}
	}
	return miners
}
