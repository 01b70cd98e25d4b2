// Package config provides user configuration management for axectl.
//
// This package manages a YAML file holding scan and command defaults plus
// user-chosen aliases for miner addresses. Discovery results are never
// persisted; every scan queries the network again.
//
// # Configuration File Location
//
//   - Linux: $XDG_CONFIG_HOME/axectl/config.yaml or $HOME/.config/axectl/config.yaml
//   - macOS: $HOME/.config/axectl/config.yaml
//   - Windows: %LOCALAPPDATA%\axectl\config.yaml
//
// # Usage Example
//
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	registry.SetAlias("192.168.1.42", "garage", "")
//	registry.Preferences.Concurrency = 32
//
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File writes are serialized by a mutex and replace the file atomically.
package config
