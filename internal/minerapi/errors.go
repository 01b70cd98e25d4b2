package minerapi

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"syscall"
)

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeConnectionExhausted indicates every candidate path failed or was unreachable
	ErrTypeConnectionExhausted ErrorType = iota
	// ErrTypeRestartFailed indicates the restart command was rejected or could not be sent
	ErrTypeRestartFailed
	// ErrTypeSettingsUpdateFailed indicates the settings PATCH was rejected or could not be sent
	ErrTypeSettingsUpdateFailed
	// ErrTypeStreamFailed indicates the log stream could not be opened or broke
	ErrTypeStreamFailed
	// ErrTypeNetwork indicates a network-level error
	ErrTypeNetwork
	// ErrTypeTimeout indicates a request timeout
	ErrTypeTimeout
	// ErrTypeConnectionRefused indicates the device refused the connection
	ErrTypeConnectionRefused
	// ErrTypeDNS indicates a DNS resolution failure
	ErrTypeDNS
	// ErrTypeHTTP indicates the device answered with a non-success status
	ErrTypeHTTP
	// ErrTypeParse indicates a success response whose body was not JSON
	ErrTypeParse
	// ErrTypeValidation indicates invalid input rejected before any request
	ErrTypeValidation
)

// NetworkErrorSubtype provides more specific network error classification
type NetworkErrorSubtype int

const (
	NetworkErrorGeneral NetworkErrorSubtype = iota
	NetworkErrorTimeout
	NetworkErrorConnectionRefused
	NetworkErrorDNS
	NetworkErrorHostUnreachable
	NetworkErrorNetworkUnreachable
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeConnectionExhausted:
		return "Connection Exhausted"
	case ErrTypeRestartFailed:
		return "Restart Failed"
	case ErrTypeSettingsUpdateFailed:
		return "Settings Update Failed"
	case ErrTypeStreamFailed:
		return "Log Stream Failed"
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeConnectionRefused:
		return "Connection Refused"
	case ErrTypeDNS:
		return "DNS Error"
	case ErrTypeHTTP:
		return "HTTP Error"
	case ErrTypeParse:
		return "Parse Error"
	case ErrTypeValidation:
		return "Validation Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// DeviceError represents an error that occurred while talking to a miner
type DeviceError struct {
	Type           ErrorType           // Category of error
	Message        string              // Human-readable error message
	Address        string              // Miner address
	StatusCode     int                 // HTTP status code (0 when the device never answered)
	Body           string              // Response body text returned with a failure status
	Err            error               // Underlying error (if any)
	NetworkSubtype NetworkErrorSubtype // More specific network error type
}

// Error implements the error interface
func (e *DeviceError) Error() string {
	var b strings.Builder
	b.WriteString(e.Type.String())
	b.WriteString(": ")
	b.WriteString(e.Message)

	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.StatusCode)
	}
	if e.Body != "" {
		b.WriteString(": ")
		b.WriteString(e.Body)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, " (caused by: %v)", e.Err)
	}
	return b.String()
}

// Unwrap returns the underlying error for error chain inspection
func (e *DeviceError) Unwrap() error {
	return e.Err
}

// ClassifyNetworkError analyzes a transport error and returns a more specific error type
func ClassifyNetworkError(err error, address string) *DeviceError {
	if err == nil {
		return nil
	}

	if os.IsTimeout(err) {
		return &DeviceError{
			Type:           ErrTypeTimeout,
			Message:        "request timed out",
			Address:        address,
			Err:            err,
			NetworkSubtype: NetworkErrorTimeout,
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &DeviceError{
			Type:           ErrTypeDNS,
			Message:        fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name),
			Address:        address,
			Err:            err,
			NetworkSubtype: NetworkErrorDNS,
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		switch {
		case errors.Is(opErr.Err, syscall.ECONNREFUSED):
			return &DeviceError{
				Type:           ErrTypeConnectionRefused,
				Message:        "device refused connection",
				Address:        address,
				Err:            err,
				NetworkSubtype: NetworkErrorConnectionRefused,
			}
		case errors.Is(opErr.Err, syscall.EHOSTUNREACH):
			return &DeviceError{
				Type:           ErrTypeNetwork,
				Message:        "host unreachable",
				Address:        address,
				Err:            err,
				NetworkSubtype: NetworkErrorHostUnreachable,
			}
		case errors.Is(opErr.Err, syscall.ENETUNREACH):
			return &DeviceError{
				Type:           ErrTypeNetwork,
				Message:        "network unreachable",
				Address:        address,
				Err:            err,
				NetworkSubtype: NetworkErrorNetworkUnreachable,
			}
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return ClassifyNetworkError(urlErr.Err, address)
	}

	return &DeviceError{
		Type:           ErrTypeNetwork,
		Message:        "network error occurred",
		Address:        address,
		Err:            err,
		NetworkSubtype: NetworkErrorGeneral,
	}
}

// NewConnectionExhaustedError reports that no candidate path produced a JSON success.
// lastErr is the cause recorded for the final path tried.
func NewConnectionExhaustedError(address string, paths PathList, lastErr error) *DeviceError {
	return &DeviceError{
		Type:    ErrTypeConnectionExhausted,
		Message: fmt.Sprintf("failed to connect to miner at %s (tried %s)", address, strings.Join(paths, ", ")),
		Address: address,
		Err:     lastErr,
	}
}

// NewRestartFailedError reports a rejected restart (statusCode != 0) or a transport failure.
func NewRestartFailedError(address string, statusCode int, cause error) *DeviceError {
	msg := "miner restart failed"
	if statusCode != 0 {
		msg = "miner restart failed with status"
	}
	return &DeviceError{
		Type:       ErrTypeRestartFailed,
		Message:    msg,
		Address:    address,
		StatusCode: statusCode,
		Err:        cause,
	}
}

// NewSettingsUpdateFailedError reports a rejected settings update, keeping the
// device's response text for diagnostics, or a transport failure.
func NewSettingsUpdateFailedError(address string, statusCode int, body string, cause error) *DeviceError {
	return &DeviceError{
		Type:       ErrTypeSettingsUpdateFailed,
		Message:    "failed to update settings",
		Address:    address,
		StatusCode: statusCode,
		Body:       strings.TrimSpace(body),
		Err:        cause,
	}
}

// NewHTTPError records a non-success status for a single path attempt
func NewHTTPError(address string, statusCode int) *DeviceError {
	return &DeviceError{
		Type:       ErrTypeHTTP,
		Message:    "unexpected status code",
		Address:    address,
		StatusCode: statusCode,
	}
}

// NewParseError records a success response whose body was not JSON
func NewParseError(address, message string) *DeviceError {
	return &DeviceError{
		Type:    ErrTypeParse,
		Message: message,
		Address: address,
	}
}

// NewValidationError creates a validation error
func NewValidationError(message string) *DeviceError {
	return &DeviceError{
		Type:    ErrTypeValidation,
		Message: message,
	}
}

func errorType(err error) (ErrorType, bool) {
	var devErr *DeviceError
	if errors.As(err, &devErr) {
		return devErr.Type, true
	}
	return 0, false
}

// IsConnectionExhausted checks if every candidate path failed
func IsConnectionExhausted(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeConnectionExhausted
}

// IsRestartFailed checks if an error came from a failed restart
func IsRestartFailed(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeRestartFailed
}

// IsSettingsUpdateFailed checks if an error came from a failed settings update
func IsSettingsUpdateFailed(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeSettingsUpdateFailed
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeValidation
}

// IsDeviceRejection reports whether the miner was reachable but answered
// with a failure status.
func IsDeviceRejection(err error) bool {
	var devErr *DeviceError
	if !errors.As(err, &devErr) {
		return false
	}
	return devErr.StatusCode != 0
}

// IsTransportFailure reports whether the miner could not be reached at all.
func IsTransportFailure(err error) bool {
	var devErr *DeviceError
	if !errors.As(err, &devErr) {
		return false
	}
	switch devErr.Type {
	case ErrTypeNetwork, ErrTypeTimeout, ErrTypeConnectionRefused, ErrTypeDNS:
		return true
	case ErrTypeConnectionExhausted:
		return true
	}
	if devErr.StatusCode != 0 || devErr.Err == nil {
		return false
	}
	return IsTransportFailure(devErr.Err)
}

// GetTroubleshootingHint returns operator advice for an error
func GetTroubleshootingHint(err error) []string {
	var devErr *DeviceError
	if !errors.As(err, &devErr) {
		return nil
	}

	if IsDeviceRejection(err) {
		hint := []string{
			fmt.Sprintf("The miner answered with HTTP %d, so the network path is fine.", devErr.StatusCode),
		}
		if devErr.Body != "" {
			hint = append(hint, "Device message: "+devErr.Body)
		}
		if devErr.Type == ErrTypeSettingsUpdateFailed {
			hint = append(hint,
				"Check the frequency and core voltage are supported by this ASIC model",
				"Compare against the values shown by 'axectl status "+devErr.Address+"'")
		} else {
			hint = append(hint, "The firmware may not support this endpoint; check the firmware version")
		}
		return hint
	}

	switch devErr.Type {
	case ErrTypeConnectionExhausted:
		return []string{
			"No API path on " + devErr.Address + " returned a JSON status.",
			"Verify the address belongs to an AxeOS miner and that it is powered on",
			"Open http://" + devErr.Address + "/ in a browser to confirm the web UI loads",
			"Run 'axectl scan' to list miners on the local subnet",
		}
	case ErrTypeValidation:
		return []string{"The values are invalid. Check the error message for details."}
	}

	if IsTransportFailure(err) {
		return []string{
			"The miner could not be reached.",
			"Check that " + devErr.Address + " is the right address and the miner is online",
			"Make sure this computer is on the same network as the miner",
			"Try 'axectl status " + devErr.Address + "' to test connectivity",
		}
	}
	return nil
}

// GetShortErrorMessage returns a concise, user-friendly error message
func GetShortErrorMessage(err error) string {
	var devErr *DeviceError
	if !errors.As(err, &devErr) {
		return err.Error()
	}

	switch {
	case devErr.Type == ErrTypeConnectionExhausted:
		return "Miner not responding at " + devErr.Address
	case IsDeviceRejection(err):
		return fmt.Sprintf("Miner rejected the request (HTTP %d)", devErr.StatusCode)
	case IsTransportFailure(err):
		return "Miner unreachable - check network connection"
	default:
		return devErr.Message
	}
}
