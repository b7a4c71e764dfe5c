// Package config provides user configuration management for charterdesk.
//
// This package manages a YAML-based configuration file that stores the
// backend connection, application preferences, a guest profile used to
// prefill reservations and a short search history. The configuration follows
// OS-specific conventions for storage location.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/charterdesk/config.yaml or $HOME/.config/charterdesk/config.yaml
//   - macOS: $HOME/.config/charterdesk/config.yaml
//   - Windows: %LOCALAPPDATA%\charterdesk\config.yaml
//
// CHARTERDESK_CONFIG_DIR overrides the directory on every platform.
//
// # Example File
//
//	version: 1
//	backend:
//	    url: http://localhost:8080
//	    timeout: 10s
//	    max_retries: 3
//	preferences:
//	    default_yacht_type: All Types
//	    refresh_schedule: '@every 5m'
//	    auto_discover: true
//	    discover_timeout: 5
//	    live_feed: true
//	guest:
//	    name: Ada Lovelace
//	    email: ada@example.com
//
// # Usage Example
//
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    return err
//	}
//	if err := registry.SetBackendURL("https://charters.example.com"); err != nil {
//	    return err
//	}
//	if err := registry.Save(); err != nil {
//	    return err
//	}
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File operations are protected by a mutex to ensure atomic writes.
package config
