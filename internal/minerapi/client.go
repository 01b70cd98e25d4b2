package minerapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/muurk/axectl/internal/logging"
)

// Client sends targeted commands to a known miner. Unlike discovery it uses a
// longer timeout, suited to device-side processing, and (apart from
// FetchStatus) a single fixed path per operation with no fallback.
type Client struct {
	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client

	// StatusPaths is the fallback order used by FetchStatus
	StatusPaths PathList
}

// NewClient creates a command client whose requests time out after timeout
func NewClient(timeout time.Duration) *Client {
	return &Client{
		HTTPClient:  NewHTTPClient(timeout),
		StatusPaths: StatusPaths,
	}
}

// SetTimeout sets the HTTP request timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	c.HTTPClient.Timeout = timeout
}

// FetchStatus returns the full status document of the miner at address,
// trying each status path in order. It fails with ErrTypeConnectionExhausted
// only when every path failed.
func (c *Client) FetchStatus(ctx context.Context, address string) (Payload, error) {
	prober := &Prober{HTTPClient: c.HTTPClient}
	return prober.FetchRaw(ctx, address, c.StatusPaths)
}

// Restart asks the miner to reboot. Some firmware answers with an empty body,
// so any success status without JSON yields Acknowledgement.
func (c *Client) Restart(ctx context.Context, address string) (Payload, error) {
	statusCode, body, err := c.send(ctx, http.MethodPost, address, PathRestart, nil)
	if err != nil {
		return nil, NewRestartFailedError(address, 0, err)
	}

	if !isSuccess(statusCode) {
		return nil, NewRestartFailedError(address, statusCode, nil)
	}

	return commandResult(body), nil
}

// UpdateSettings PATCHes the ASIC frequency and core voltage. A rejected update
// keeps both the status code and the device's response text in the error,
// since the firmware explains misconfiguration there.
func (c *Client) UpdateSettings(ctx context.Context, address string, update SettingsUpdate) (Payload, error) {
	data, err := json.Marshal(update)
	if err != nil {
		return nil, NewSettingsUpdateFailedError(address, 0, "", err)
	}

	statusCode, body, err := c.send(ctx, http.MethodPatch, address, PathSystem, data)
	if err != nil {
		return nil, NewSettingsUpdateFailedError(address, 0, "", err)
	}

	if !isSuccess(statusCode) {
		return nil, NewSettingsUpdateFailedError(address, statusCode, string(body), nil)
	}

	return commandResult(body), nil
}

// send performs one request and returns the status and body. The error is
// non-nil only for transport failures, already classified.
func (c *Client) send(ctx context.Context, method, address, path string, data []byte) (int, []byte, error) {
	var reqBody io.Reader
	if data != nil {
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, deviceURL(address, path), reqBody)
	if err != nil {
		return 0, nil, ClassifyNetworkError(err, address)
	}
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, nil, ClassifyNetworkError(err, address)
	}
	defer func() { _ = resp.Body.Close() }()

	logging.LogCommand(address, method, path, resp.StatusCode)

	// A body that cannot be read fully is treated like an unparseable one
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	return resp.StatusCode, body, nil
}

func commandResult(body []byte) Payload {
	if payload, ok := parsePayload(body); ok {
		return payload
	}
	return Acknowledgement
}
