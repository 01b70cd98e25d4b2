package minerapi

import (
	"context"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/axectl/internal/logging"
)

const (
	// DefaultProbeTimeout bounds a single discovery probe. Most addresses in a
	// scanned range host nothing, so this dominates scan wall-clock time.
	DefaultProbeTimeout = 1500 * time.Millisecond

	// DefaultCommandTimeout is used for targeted single-device operations
	DefaultCommandTimeout = 10 * time.Second

	// maxBodySize caps how much of a response body is read
	maxBodySize = 1 << 20
)

// Prober tries an ordered list of API paths against one address until a path
// answers with a success status and a JSON body. A Prober has no mutable state
// and may be shared by any number of concurrent probes.
type Prober struct {
	// HTTPClient is the underlying HTTP client; its Timeout bounds each request
	HTTPClient *http.Client
}

// NewProber creates a prober whose requests time out after timeout
func NewProber(timeout time.Duration) *Prober {
	return &Prober{
		HTTPClient: NewHTTPClient(timeout),
	}
}

// NewHTTPClient builds the HTTP client shared by the prober and command client
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// SetTimeout sets the per-request timeout
func (p *Prober) SetTimeout(timeout time.Duration) {
	p.HTTPClient.Timeout = timeout
}

// FetchRaw returns the first JSON document served by any of paths, tried in
// order. Transport failures, non-success statuses and unparseable bodies are
// all treated as a miss for that path. Only when every path misses does it
// return an error, of type ErrTypeConnectionExhausted.
func (p *Prober) FetchRaw(ctx context.Context, address string, paths PathList) (Payload, error) {
	var lastErr error

	for _, path := range paths {
		payload, err := p.get(ctx, address, path)
		if err == nil {
			return payload, nil
		}
		lastErr = err

		// A cancelled caller makes every remaining path fail the same way
		if ctx.Err() != nil {
			break
		}
	}

	return nil, NewConnectionExhaustedError(address, paths, lastErr)
}

// Discover probes address over DiscoveryPaths and normalizes the first JSON
// response into a DiscoveredMiner. It returns nil when no path answered, which
// is the expected outcome for most addresses during a scan.
func (p *Prober) Discover(ctx context.Context, address string) *DiscoveredMiner {
	payload, err := p.FetchRaw(ctx, address, DiscoveryPaths)
	if err != nil {
		return nil
	}

	// Valid JSON that is not an object still identifies a responder; it
	// simply carries none of the optional fields.
	fields, _ := payload.Fields()
	return NewDiscoveredMiner(address, fields)
}

// get performs a single GET attempt and classifies its outcome
func (p *Prober) get(ctx context.Context, address, path string) (Payload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, deviceURL(address, path), nil)
	if err != nil {
		logging.LogProbe(address, path, "bad_request", zap.Error(err))
		return nil, ClassifyNetworkError(err, address)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.HTTPClient.Do(req)
	if err != nil {
		logging.LogProbe(address, path, "transport_error", zap.Error(err))
		return nil, ClassifyNetworkError(err, address)
	}
	defer func() { _ = resp.Body.Close() }()

	if !isSuccess(resp.StatusCode) {
		logging.LogProbe(address, path, "http_status", zap.Int("status_code", resp.StatusCode))
		return nil, NewHTTPError(address, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		logging.LogProbe(address, path, "read_error", zap.Error(err))
		return nil, ClassifyNetworkError(err, address)
	}

	payload, ok := parsePayload(body)
	if !ok {
		logging.LogProbe(address, path, "invalid_json")
		logging.LogRawBytes("Unparseable probe body", body)
		return nil, NewParseError(address, "response body is not JSON")
	}

	logging.LogProbe(address, path, "ok", zap.Int("bytes", len(body)))
	return payload, nil
}

func isSuccess(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
