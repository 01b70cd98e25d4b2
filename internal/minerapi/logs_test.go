package minerapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{}

func TestStreamLogs(t *testing.T) {
	lines := []string{
		"I (1234) stratum_task: job received",
		"I (1240) asic_result: Ver: 20000000 Nonce 4A3B2C1D diff 512.3\r\n",
		"W (1300) power_management: VR temp high",
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != PathWebSocket {
			http.NotFound(w, r)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Upgrade() error = %v", err)
			return
		}
		defer conn.Close()

		for _, line := range lines {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(line))
		}
		_ = conn.WriteMessage(websocket.BinaryMessage, []byte{0x00, 0x01})
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
	}))
	defer server.Close()

	var got []string
	err := NewClient(time.Second).StreamLogs(context.Background(), serverAddress(server), func(line string) {
		got = append(got, line)
	})
	if err != nil {
		t.Fatalf("StreamLogs() error = %v", err)
	}

	if len(got) != len(lines) {
		t.Fatalf("received %d lines, want %d: %q", len(got), len(lines), got)
	}
	if got[1] != "I (1240) asic_result: Ver: 20000000 Nonce 4A3B2C1D diff 512.3" {
		t.Errorf("line[1] = %q, trailing newline should be trimmed", got[1])
	}
}

func TestStreamLogs_Cancel(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		_ = conn.WriteMessage(websocket.TextMessage, []byte("first"))
		wg.Done()
		// Hold the stream open until the client goes away
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		wg.Wait()
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	done := make(chan error, 1)
	go func() {
		done <- NewClient(time.Second).StreamLogs(ctx, serverAddress(server), func(string) {})
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("StreamLogs() after cancel error = %v, want nil", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("StreamLogs() did not return after cancel")
	}
}

func TestStreamLogs_HandshakeRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	err := NewClient(time.Second).StreamLogs(context.Background(), serverAddress(server), func(string) {})
	if err == nil {
		t.Fatal("StreamLogs() should fail when the upgrade is refused")
	}
	if !IsDeviceRejection(err) {
		t.Errorf("IsDeviceRejection() = false for %v", err)
	}
}

func TestStreamLogs_Unreachable(t *testing.T) {
	err := NewClient(500*time.Millisecond).StreamLogs(context.Background(), closedAddress(t), func(string) {})
	if err == nil {
		t.Fatal("StreamLogs() should fail for unreachable miner")
	}
	if !IsTransportFailure(err) {
		t.Errorf("IsTransportFailure() = false for %v", err)
	}
}
