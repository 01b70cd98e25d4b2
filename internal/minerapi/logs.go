package minerapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/axectl/internal/logging"
)

// LogHandler receives one log line from the miner
type LogHandler func(line string)

// StreamLogs connects to the miner's websocket log endpoint and calls handler
// for every text frame, in arrival order, until ctx is cancelled or the miner
// closes the stream. A clean close or cancellation returns nil.
func (c *Client) StreamLogs(ctx context.Context, address string, handler LogHandler) error {
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: c.HTTPClient.Timeout,
	}

	url := fmt.Sprintf("ws://%s%s", address, PathWebSocket)
	conn, resp, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil {
			return &DeviceError{
				Type:       ErrTypeStreamFailed,
				Message:    "log stream handshake rejected",
				Address:    address,
				StatusCode: resp.StatusCode,
				Err:        err,
			}
		}
		return &DeviceError{
			Type:    ErrTypeStreamFailed,
			Message: "failed to open log stream",
			Address: address,
			Err:     ClassifyNetworkError(err, address),
		}
	}
	defer func() { _ = conn.Close() }()

	logging.Info("Log stream opened", zap.String("address", address))

	// ReadMessage has no context; closing the connection unblocks it
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				logging.Warn("Log stream closed by miner", zap.String("address", address), zap.Int("code", closeErr.Code))
			}
			return &DeviceError{
				Type:    ErrTypeStreamFailed,
				Message: "log stream interrupted",
				Address: address,
				Err:     err,
			}
		}

		if msgType != websocket.TextMessage {
			continue
		}
		handler(strings.TrimRight(string(data), "\r\n"))
	}
}
