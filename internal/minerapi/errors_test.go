package minerapi

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"syscall"
	"testing"
)

func TestErrorType_String(t *testing.T) {
	tests := []struct {
		errType ErrorType
		want    string
	}{
		{ErrTypeConnectionExhausted, "Connection Exhausted"},
		{ErrTypeRestartFailed, "Restart Failed"},
		{ErrTypeSettingsUpdateFailed, "Settings Update Failed"},
		{ErrTypeStreamFailed, "Log Stream Failed"},
		{ErrTypeTimeout, "Timeout"},
		{ErrTypeValidation, "Validation Error"},
		{ErrorType(99), "ErrorType(99)"},
	}

	for _, tt := range tests {
		if got := tt.errType.String(); got != tt.want {
			t.Errorf("ErrorType(%d).String() = %s, want %s", tt.errType, got, tt.want)
		}
	}
}

func TestDeviceError_Error(t *testing.T) {
	cause := errors.New("connection reset")

	tests := []struct {
		name string
		err  *DeviceError
		want string
	}{
		{
			name: "message only",
			err:  NewValidationError("frequency must be greater than 0 MHz"),
			want: "Validation Error: frequency must be greater than 0 MHz",
		},
		{
			name: "status and body",
			err:  NewSettingsUpdateFailedError("10.0.0.5", 400, "bad core voltage\n", nil),
			want: "Settings Update Failed: failed to update settings (HTTP 400): bad core voltage",
		},
		{
			name: "with cause",
			err:  NewRestartFailedError("10.0.0.5", 0, cause),
			want: "Restart Failed: miner restart failed (caused by: connection reset)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDeviceError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("restart: %w", NewRestartFailedError("10.0.0.5", 0, cause))

	if !errors.Is(err, cause) {
		t.Error("errors.Is() should find the cause through the chain")
	}
	if !IsRestartFailed(err) {
		t.Error("IsRestartFailed() should see through wrapping")
	}
}

func TestNewConnectionExhaustedError(t *testing.T) {
	err := NewConnectionExhaustedError("10.0.0.5", DiscoveryPaths, NewHTTPError("10.0.0.5", 404))

	msg := err.Error()
	for _, part := range []string{"10.0.0.5", PathSystemInfo, PathSystem} {
		if !strings.Contains(msg, part) {
			t.Errorf("Error() = %q, missing %q", msg, part)
		}
	}

	if IsDeviceRejection(err) {
		t.Error("IsDeviceRejection() should be false for exhausted paths")
	}
}

func TestClassifyNetworkError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantType    ErrorType
		wantSubtype NetworkErrorSubtype
	}{
		{
			name:        "timeout",
			err:         &url.Error{Op: "Get", URL: "http://x", Err: os.ErrDeadlineExceeded},
			wantType:    ErrTypeTimeout,
			wantSubtype: NetworkErrorTimeout,
		},
		{
			name:        "dns",
			err:         &url.Error{Op: "Get", URL: "http://x", Err: &net.DNSError{Name: "miner.local", Err: "no such host"}},
			wantType:    ErrTypeDNS,
			wantSubtype: NetworkErrorDNS,
		},
		{
			name:        "refused",
			err:         &net.OpError{Op: "dial", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)},
			wantType:    ErrTypeConnectionRefused,
			wantSubtype: NetworkErrorConnectionRefused,
		},
		{
			name:        "host unreachable",
			err:         &net.OpError{Op: "dial", Err: os.NewSyscallError("connect", syscall.EHOSTUNREACH)},
			wantType:    ErrTypeNetwork,
			wantSubtype: NetworkErrorHostUnreachable,
		},
		{
			name:        "generic",
			err:         errors.New("something odd"),
			wantType:    ErrTypeNetwork,
			wantSubtype: NetworkErrorGeneral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyNetworkError(tt.err, "10.0.0.5")
			if got.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", got.Type, tt.wantType)
			}
			if got.NetworkSubtype != tt.wantSubtype {
				t.Errorf("NetworkSubtype = %v, want %v", got.NetworkSubtype, tt.wantSubtype)
			}
			if got.Address != "10.0.0.5" {
				t.Errorf("Address = %s, want 10.0.0.5", got.Address)
			}
			if !IsTransportFailure(got) {
				t.Error("IsTransportFailure() = false")
			}
		})
	}

	if ClassifyNetworkError(nil, "10.0.0.5") != nil {
		t.Error("ClassifyNetworkError(nil) should return nil")
	}
}

func TestErrorPredicates(t *testing.T) {
	refused := ClassifyNetworkError(&net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}, "10.0.0.5")

	tests := []struct {
		name          string
		err           error
		wantTransport bool
		wantRejection bool
	}{
		{"restart transport", NewRestartFailedError("a", 0, refused), true, false},
		{"restart rejected", NewRestartFailedError("a", 500, nil), false, true},
		{"settings rejected", NewSettingsUpdateFailedError("a", 400, "nope", nil), false, true},
		{"validation", NewValidationError("bad"), false, false},
		{"plain error", errors.New("plain"), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransportFailure(tt.err); got != tt.wantTransport {
				t.Errorf("IsTransportFailure() = %v, want %v", got, tt.wantTransport)
			}
			if got := IsDeviceRejection(tt.err); got != tt.wantRejection {
				t.Errorf("IsDeviceRejection() = %v, want %v", got, tt.wantRejection)
			}
		})
	}
}

func TestGetTroubleshootingHint(t *testing.T) {
	if hints := GetTroubleshootingHint(errors.New("plain")); hints != nil {
		t.Errorf("GetTroubleshootingHint(plain) = %v, want nil", hints)
	}

	exhausted := GetTroubleshootingHint(NewConnectionExhaustedError("10.0.0.5", StatusPaths, nil))
	if len(exhausted) == 0 || !strings.Contains(exhausted[0], "10.0.0.5") {
		t.Errorf("exhausted hint = %v", exhausted)
	}

	restart := GetTroubleshootingHint(NewRestartFailedError("10.0.0.5", 404, nil))
	if len(restart) == 0 || !strings.Contains(restart[0], "404") {
		t.Errorf("restart hint = %v", restart)
	}
}

func TestGetShortErrorMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{errors.New("plain"), "plain"},
		{NewConnectionExhaustedError("10.0.0.5", StatusPaths, nil), "Miner not responding at 10.0.0.5"},
		{NewRestartFailedError("10.0.0.5", 503, nil), "Miner rejected the request (HTTP 503)"},
	}

	for _, tt := range tests {
		if got := GetShortErrorMessage(tt.err); got != tt.want {
			t.Errorf("GetShortErrorMessage(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
