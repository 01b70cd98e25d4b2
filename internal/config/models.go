package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/muurk/axectl/internal/discovery"
	"github.com/muurk/axectl/internal/minerapi"
)

// CurrentVersion is the config file schema version
const CurrentVersion = 1

// Registry represents the entire user configuration file.
// It holds preferences and user-chosen names for miners. Scan results are
// never stored; every scan starts fresh.
type Registry struct {
	Version     int               `yaml:"version"`
	Preferences *Preferences      `yaml:"preferences,omitempty"`
	Aliases     map[string]*Alias `yaml:"aliases,omitempty"` // Keyed by miner address
}

// Alias is a user-defined name for a miner address
type Alias struct {
	Name string `yaml:"name"`
	Note string `yaml:"note,omitempty"` // Free text, e.g. "garage shelf"
}

// Preferences represents defaults for the scan and command operations.
// Keys missing from the file keep the values from DefaultPreferences.
type Preferences struct {
	Subnet           string `yaml:"subnet,omitempty"`    // e.g. "192.168.1"; empty means detect
	StartOctet       uint8  `yaml:"start_octet"`         // First host octet to scan
	EndOctet         uint8  `yaml:"end_octet"`           // Last host octet to scan
	ProbeTimeoutMS   int    `yaml:"probe_timeout_ms"`    // Per-path timeout during scans
	CommandTimeoutMS int    `yaml:"command_timeout_ms"`  // Timeout for status, restart and settings
	Concurrency      int    `yaml:"concurrency"`         // Max probes in flight; 0 means unbounded
	MDNS             bool   `yaml:"mdns,omitempty"`      // Browse mDNS instead of sweeping the range
	Format           string `yaml:"format,omitempty"`    // Default output format
	LogLevel         string `yaml:"log_level,omitempty"` // Default log level when the env var is unset
}

// DefaultPreferences returns the built-in defaults
func DefaultPreferences() *Preferences {
	return &Preferences{
		StartOctet:       1,
		EndOctet:         254,
		ProbeTimeoutMS:   int(minerapi.DefaultProbeTimeout / time.Millisecond),
		CommandTimeoutMS: int(minerapi.DefaultCommandTimeout / time.Millisecond),
		Concurrency:      discovery.DefaultConcurrency,
	}
}

// ProbeTimeout returns the scan probe timeout as a duration
func (p *Preferences) ProbeTimeout() time.Duration {
	if p.ProbeTimeoutMS <= 0 {
		return minerapi.DefaultProbeTimeout
	}
	return time.Duration(p.ProbeTimeoutMS) * time.Millisecond
}

// CommandTimeout returns the command timeout as a duration
func (p *Preferences) CommandTimeout() time.Duration {
	if p.CommandTimeoutMS <= 0 {
		return minerapi.DefaultCommandTimeout
	}
	return time.Duration(p.CommandTimeoutMS) * time.Millisecond
}

// Validate checks the preferences for values a scan would reject
func (p *Preferences) Validate() error {
	if p.Subnet != "" {
		if _, err := discovery.ParseSubnet(p.Subnet); err != nil {
			return fmt.Errorf("preferences.subnet: %w", err)
		}
	}
	if p.StartOctet > p.EndOctet {
		return fmt.Errorf("preferences: start_octet %d is after end_octet %d", p.StartOctet, p.EndOctet)
	}
	if p.ProbeTimeoutMS < 0 || p.CommandTimeoutMS < 0 {
		return fmt.Errorf("preferences: timeouts must not be negative")
	}
	return nil
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:     CurrentVersion,
		Preferences: DefaultPreferences(),
		Aliases:     make(map[string]*Alias),
	}
}

// SetAlias names the miner at address, replacing any previous name.
func (r *Registry) SetAlias(address, name, note string) {
	if r.Aliases == nil {
		r.Aliases = make(map[string]*Alias)
	}
	r.Aliases[address] = &Alias{Name: name, Note: note}
}

// RemoveAlias deletes the alias for address. It reports whether one existed.
func (r *Registry) RemoveAlias(address string) bool {
	if _, ok := r.Aliases[address]; !ok {
		return false
	}
	delete(r.Aliases, address)
	return true
}

// AliasFor returns the alias name for address, or "" if none is set.
func (r *Registry) AliasFor(address string) string {
	if a, ok := r.Aliases[address]; ok && a != nil {
		return a.Name
	}
	return ""
}

// ResolveAddress turns an alias name into its address. Names match
// case-insensitively; anything that is not a known alias is returned as is.
func (r *Registry) ResolveAddress(target string) string {
	for addr, a := range r.Aliases {
		if a != nil && strings.EqualFold(a.Name, target) {
			return addr
		}
	}
	return target
}

// AliasAddresses returns the aliased addresses in sorted order
func (r *Registry) AliasAddresses() []string {
	addrs := make([]string, 0, len(r.Aliases))
	for addr := range r.Aliases {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)
	return addrs
}
