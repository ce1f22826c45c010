// Package config provides user configuration management for argus.
//
// This package manages a YAML-based configuration file holding crawl
// settings (directory origin, page cap, timeouts, pool sizes, request rate,
// header overrides) and a history of scanned regions. The file follows
// OS-specific conventions for its location.
//
// # Configuration File Location
//
//   - Linux: $XDG_CONFIG_HOME/argus/config.yaml or $HOME/.config/argus/config.yaml
//   - macOS: $HOME/.config/argus/config.yaml
//   - Windows: %LOCALAPPDATA%\argus\config.yaml
//
// A missing file is not an error: defaults are used and the file is created
// on the first Save.
//
// # Usage Example
//
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    return err
//	}
//
//	registry.RecordScan("US", "United States", 4, 240, nil, "US_cameras.txt")
//	if err := registry.Save(); err != nil {
//	    return err
//	}
//
// # File Format
//
//	version: 1
//	settings:
//	    base_url: http://www.insecam.org
//	    max_pages: 0
//	    verbose: false
//	    fetch_timeout: 10s
//	    probe_timeout: 5s
//	    fetch_workers: 5
//	    probe_workers: 10
//	    request_rate: 0
//	regions:
//	    US:
//	        name: United States
//	        last_scanned: 2025-11-25T10:30:45Z
//	        pages: 4
//	        endpoints: 240
//
// # Thread Safety
//
// File operations are serialized with a package mutex. The Registry value
// itself is not safe for concurrent mutation.
package config
