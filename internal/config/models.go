package config

import (
	"fmt"
	"net/url"
	"time"
)

// Registry represents the entire user configuration file.
// It stores crawl settings and a short history of scanned regions.
type Registry struct {
	Version  int                      `yaml:"version"`
	Settings *Settings                `yaml:"settings,omitempty"`
	Regions  map[string]*RegionRecord `yaml:"regions,omitempty"` // Keyed by region code

	path string // File the registry was loaded from (empty = default path)
}

// Settings holds the crawl and probe knobs. CLI flags override them.
type Settings struct {
	BaseURL      string            `yaml:"base_url"`
	MaxPages     int               `yaml:"max_pages"`     // 0 = no cap
	Verbose      bool              `yaml:"verbose"`       // Echo every probe result
	FetchTimeout time.Duration     `yaml:"fetch_timeout"` // Per listing-page request
	ProbeTimeout time.Duration     `yaml:"probe_timeout"` // Per reachability check
	FetchWorkers int               `yaml:"fetch_workers"`
	ProbeWorkers int               `yaml:"probe_workers"`
	RequestRate  float64           `yaml:"request_rate"`         // Directory requests per second, 0 = unlimited
	OutputDir    string            `yaml:"output_dir,omitempty"` // Where lists are written ("" = current directory)
	Headers      map[string]string `yaml:"headers,omitempty"`    // Replaces individual default request headers
}

// RegionRecord summarizes the last scan of a region
type RegionRecord struct {
	Name        string    `yaml:"name,omitempty"`
	LastScanned time.Time `yaml:"last_scanned"`
	Pages       int       `yaml:"pages"`                  // Pages requested (last index + 1)
	Endpoints   int       `yaml:"endpoints"`              // Endpoints found, duplicates included
	FailedPages []int     `yaml:"failed_pages,omitempty"` // Pages skipped because their fetch failed
	Reachable   *int      `yaml:"reachable,omitempty"`    // nil when the scan did not probe
	Output      string    `yaml:"output,omitempty"`       // File the endpoint list was written to
}

// Defaults applied when the file or a field is absent
const (
	DefaultBaseURL      = "http://www.insecam.org"
	DefaultFetchTimeout = 10 * time.Second
	DefaultProbeTimeout = 5 * time.Second
	DefaultFetchWorkers = 5
	DefaultProbeWorkers = 10
)

// DefaultSettings returns the settings used when nothing is configured
func DefaultSettings() *Settings {
	return &Settings{
		BaseURL:      DefaultBaseURL,
		FetchTimeout: DefaultFetchTimeout,
		ProbeTimeout: DefaultProbeTimeout,
		FetchWorkers: DefaultFetchWorkers,
		ProbeWorkers: DefaultProbeWorkers,
	}
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:  1,
		Settings: DefaultSettings(),
		Regions:  make(map[string]*RegionRecord),
	}
}

// fillDefaults replaces zero values left by a partial config file
func (s *Settings) fillDefaults() {
	d := DefaultSettings()
	if s.BaseURL == "" {
		s.BaseURL = d.BaseURL
	}
	if s.FetchTimeout == 0 {
		s.FetchTimeout = d.FetchTimeout
	}
	if s.ProbeTimeout == 0 {
		s.ProbeTimeout = d.ProbeTimeout
	}
	if s.FetchWorkers == 0 {
		s.FetchWorkers = d.FetchWorkers
	}
	if s.ProbeWorkers == 0 {
		s.ProbeWorkers = d.ProbeWorkers
	}
}

// Validate checks the settings for values the crawler cannot run with
func (s *Settings) Validate() error {
	u, err := url.Parse(s.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("base_url must be an absolute http(s) URL, got %q", s.BaseURL)
	}
	if s.MaxPages < 0 {
		return fmt.Errorf("max_pages must not be negative, got %d", s.MaxPages)
	}
	if s.FetchTimeout <= 0 {
		return fmt.Errorf("fetch_timeout must be positive, got %s", s.FetchTimeout)
	}
	if s.ProbeTimeout <= 0 {
		return fmt.Errorf("probe_timeout must be positive, got %s", s.ProbeTimeout)
	}
	if s.FetchWorkers <= 0 {
		return fmt.Errorf("fetch_workers must be positive, got %d", s.FetchWorkers)
	}
	if s.ProbeWorkers <= 0 {
		return fmt.Errorf("probe_workers must be positive, got %d", s.ProbeWorkers)
	}
	if s.RequestRate < 0 {
		return fmt.Errorf("request_rate must not be negative, got %g", s.RequestRate)
	}
	return nil
}

// GetRegion retrieves the scan record for a region code.
// Returns nil if the region was never scanned.
func (r *Registry) GetRegion(code string) *RegionRecord {
	return r.Regions[code]
}

// EnsureRegion ensures a record exists for the region and returns it
func (r *Registry) EnsureRegion(code string) *RegionRecord {
	if r.Regions == nil {
		r.Regions = make(map[string]*RegionRecord)
	}

	if rec, exists := r.Regions[code]; exists {
		return rec
	}

	rec := &RegionRecord{}
	r.Regions[code] = rec
	return rec
}

// RecordScan stores the outcome of a crawl. Any previous probe count is
// cleared because it described a different endpoint list.
func (r *Registry) RecordScan(code, name string, pages, endpoints int, failedPages []int, output string) {
	rec := r.EnsureRegion(code)
	rec.Name = name
	rec.LastScanned = time.Now()
	rec.Pages = pages
	rec.Endpoints = endpoints
	rec.FailedPages = append([]int(nil), failedPages...)
	rec.Reachable = nil
	rec.Output = output
}

// RecordProbe stores how many endpoints of the last scan were reachable
func (r *Registry) RecordProbe(code string, reachable int) {
	rec := r.EnsureRegion(code)
	rec.Reachable = &reachable
}

// Path returns the file the registry was loaded from, or the default path
func (r *Registry) Path() (string, error) {
	if r.path != "" {
		return r.path, nil
	}
	return GetConfigPath()
}
