package minerapi

import (
	"encoding/json"
	"strings"
	"testing"
)

func mustFields(t *testing.T, doc string) map[string]any {
	t.Helper()
	fields, err := Payload(doc).Fields()
	if err != nil {
		t.Fatalf("Fields(%s) error = %v", doc, err)
	}
	return fields
}

func strPtr(s string) *string { return &s }

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func TestNewDiscoveredMiner(t *testing.T) {
	tests := []struct {
		name         string
		doc          string
		wantHostname *string
		wantVersion  *string
		wantModel    *string
	}{
		{
			name:         "all fields present",
			doc:          `{"hostname":"bitaxe","version":"v2.4.1","ASICModel":"BM1366"}`,
			wantHostname: strPtr("bitaxe"),
			wantVersion:  strPtr("v2.4.1"),
			wantModel:    strPtr("BM1366"),
		},
		{
			name:         "axeOSVersion used when version absent",
			doc:          `{"hostname":"gamma","axeOSVersion":"v2.5.0"}`,
			wantHostname: strPtr("gamma"),
			wantVersion:  strPtr("v2.5.0"),
		},
		{
			name:        "version present but not a string does not fall back",
			doc:         `{"version":2,"axeOSVersion":"v2.5.0"}`,
			wantVersion: nil,
		},
		{
			name:        "null version does not fall back",
			doc:         `{"version":null,"axeOSVersion":"v2.5.0"}`,
			wantVersion: nil,
		},
		{
			name: "non-string values are absent",
			doc:  `{"hostname":42,"ASICModel":["BM1366"]}`,
		},
		{
			name: "empty object",
			doc:  `{}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			miner := NewDiscoveredMiner("192.168.1.10", mustFields(t, tt.doc))

			if miner.Address != "192.168.1.10" {
				t.Errorf("Address = %s, want 192.168.1.10", miner.Address)
			}
			if !equalPtr(miner.Hostname, tt.wantHostname) {
				t.Errorf("Hostname = %v, want %v", miner.Hostname, tt.wantHostname)
			}
			if !equalPtr(miner.FirmwareVersion, tt.wantVersion) {
				t.Errorf("FirmwareVersion = %v, want %v", miner.FirmwareVersion, tt.wantVersion)
			}
			if !equalPtr(miner.Model, tt.wantModel) {
				t.Errorf("Model = %v, want %v", miner.Model, tt.wantModel)
			}
		})
	}
}

func TestDiscoveredMiner_JSON(t *testing.T) {
	miner := &DiscoveredMiner{Address: "10.0.0.5", Hostname: strPtr("bitaxe")}

	data, err := json.Marshal(miner)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	want := `{"ip":"10.0.0.5","hostname":"bitaxe","version":null,"model":null}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}

func TestDiscoveredMiner_Display(t *testing.T) {
	named := &DiscoveredMiner{Address: "10.0.0.5", Hostname: strPtr("bitaxe"), Model: strPtr("BM1366")}
	anonymous := &DiscoveredMiner{Address: "10.0.0.6"}

	if got := named.DisplayName(); got != "bitaxe" {
		t.Errorf("DisplayName() = %s, want bitaxe", got)
	}
	if got := anonymous.DisplayName(); got != "10.0.0.6" {
		t.Errorf("DisplayName() = %s, want 10.0.0.6", got)
	}
	if got := named.BaseURL(); got != "http://10.0.0.5" {
		t.Errorf("BaseURL() = %s, want http://10.0.0.5", got)
	}

	s := named.String()
	for _, part := range []string{"bitaxe", "BM1366", "unknown firmware", "10.0.0.5"} {
		if !strings.Contains(s, part) {
			t.Errorf("String() = %q, missing %q", s, part)
		}
	}
}

func TestPayload_Fields(t *testing.T) {
	fields, err := Payload(`{"hashRate":512.34,"sharesAccepted":12345678901234}`).Fields()
	if err != nil {
		t.Fatalf("Fields() error = %v", err)
	}
	if n, ok := fields["sharesAccepted"].(json.Number); !ok || n.String() != "12345678901234" {
		t.Errorf("sharesAccepted = %#v, want exact json.Number", fields["sharesAccepted"])
	}

	for _, doc := range []string{`[1,2]`, `"ok"`, `null`, `42`} {
		if _, err := Payload(doc).Fields(); err == nil {
			t.Errorf("Fields(%s) should fail for non-object", doc)
		}
	}
}

func TestPayload_MarshalJSON(t *testing.T) {
	wrapped := struct {
		Address string  `json:"address"`
		Status  Payload `json:"status"`
	}{
		Address: "10.0.0.5",
		Status:  Payload(`{"temp":52.5}`),
	}

	data, err := json.Marshal(wrapped)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `{"address":"10.0.0.5","status":{"temp":52.5}}` {
		t.Errorf("Marshal() = %s", data)
	}

	data, err = json.Marshal(struct {
		Status Payload `json:"status"`
	}{})
	if err != nil {
		t.Fatalf("Marshal() empty error = %v", err)
	}
	if string(data) != `{"status":null}` {
		t.Errorf("Marshal() empty = %s, want null status", data)
	}
}

func TestPayload_Indent(t *testing.T) {
	got := Payload(`{"a":1}`).Indent()
	if got != "{\n  \"a\": 1\n}" {
		t.Errorf("Indent() = %q", got)
	}

	if got := Payload("not json").Indent(); got != "not json" {
		t.Errorf("Indent() on invalid JSON = %q, want raw text", got)
	}
}

func TestParsePayload(t *testing.T) {
	tests := []struct {
		body   string
		want   string
		wantOK bool
	}{
		{body: `{"a":1}`, want: `{"a":1}`, wantOK: true},
		{body: "  [1]\n", want: `[1]`, wantOK: true},
		{body: `true`, want: `true`, wantOK: true},
		{body: ``, wantOK: false},
		{body: "   ", wantOK: false},
		{body: `<html></html>`, wantOK: false},
		{body: `{"a":1}{"b":2}`, wantOK: false},
	}

	for _, tt := range tests {
		got, ok := parsePayload([]byte(tt.body))
		if ok != tt.wantOK {
			t.Errorf("parsePayload(%q) ok = %v, want %v", tt.body, ok, tt.wantOK)
			continue
		}
		if ok && got.String() != tt.want {
			t.Errorf("parsePayload(%q) = %s, want %s", tt.body, got, tt.want)
		}
	}
}
