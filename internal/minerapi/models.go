package minerapi

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DiscoveredMiner is a device that answered at least one discovery path.
// Optional fields are nil when the response lacked the key or the value was
// not a string.
type DiscoveredMiner struct {
	// Address is the dotted IPv4 address the miner answered on
	Address string `json:"ip"`

	// Hostname is read from the "hostname" field
	Hostname *string `json:"hostname"`

	// FirmwareVersion is read from "version", or "axeOSVersion" when
	// "version" is not present at all
	FirmwareVersion *string `json:"version"`

	// Model is read from "ASICModel"
	Model *string `json:"model"`
}

// NewDiscoveredMiner normalizes a decoded status object into a DiscoveredMiner.
func NewDiscoveredMiner(address string, fields map[string]any) *DiscoveredMiner {
	versionKey := "version"
	if _, ok := fields[versionKey]; !ok {
		versionKey = "axeOSVersion"
	}

	return &DiscoveredMiner{
		Address:         address,
		Hostname:        stringField(fields, "hostname"),
		FirmwareVersion: stringField(fields, versionKey),
		Model:           stringField(fields, "ASICModel"),
	}
}

func stringField(fields map[string]any, key string) *string {
	s, ok := fields[key].(string)
	if !ok {
		return nil
	}
	return &s
}

// String returns a human-readable string representation of the miner
func (m *DiscoveredMiner) String() string {
	return fmt.Sprintf("Miner %s (%s, %s) at %s",
		valueOr(m.Hostname, "unnamed"), valueOr(m.Model, "unknown model"),
		valueOr(m.FirmwareVersion, "unknown firmware"), m.Address)
}

// BaseURL returns the HTTP base URL for the miner
func (m *DiscoveredMiner) BaseURL() string {
	return deviceURL(m.Address, "")
}

// DisplayName returns the hostname if the miner reported one, otherwise its address.
func (m *DiscoveredMiner) DisplayName() string {
	return valueOr(m.Hostname, m.Address)
}

func valueOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

// SettingsUpdate is the body of a PATCH to /api/system.
// Both fields are always sent; partial updates are not supported.
type SettingsUpdate struct {
	FrequencyMHz  uint32 `json:"frequency"`
	CoreVoltageMV uint32 `json:"coreVoltage"`
}

// Payload is a JSON document exactly as returned by the device.
type Payload json.RawMessage

// Acknowledgement is returned by commands whose endpoint answered with a
// success status but no usable JSON body.
var Acknowledgement = Payload(`{"success":true}`)

// MarshalJSON returns the payload bytes unchanged.
func (p Payload) MarshalJSON() ([]byte, error) {
	if len(p) == 0 {
		return []byte("null"), nil
	}
	return p, nil
}

// Decode unmarshals the payload into v.
func (p Payload) Decode(v any) error {
	return json.Unmarshal(p, v)
}

// Fields decodes the payload as a JSON object. Numbers are kept as
// json.Number so nothing is lost to float conversion.
func (p Payload) Fields() (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(p))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("payload is not a JSON object: %w", err)
	}
	if fields == nil {
		return nil, fmt.Errorf("payload is not a JSON object")
	}
	return fields, nil
}

// Indent returns the payload pretty-printed for display.
func (p Payload) Indent() string {
	var b bytes.Buffer
	if err := json.Indent(&b, p, "", "  "); err != nil {
		return string(p)
	}
	return b.String()
}

// String returns the raw payload text
func (p Payload) String() string {
	return string(p)
}

// parsePayload returns the body as a Payload if it is a single valid JSON value.
func parsePayload(body []byte) (Payload, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return nil, false
	}
	return Payload(trimmed), true
}
