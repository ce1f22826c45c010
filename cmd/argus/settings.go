package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/argus/internal/config"
	"github.com/muurk/argus/internal/directory"
	"github.com/muurk/argus/internal/logging"
	"github.com/muurk/argus/internal/probe"
)

// Global flags, applied over the config file when set
var (
	configPath   string
	logLevel     string
	baseURL      string
	fetchTimeout time.Duration
	probeTimeout time.Duration
	fetchWorkers int
	probeWorkers int
	requestRate  float64
	outputDir    string
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Config file (default: platform config dir/argus/config.yaml)")
	pf.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default: $"+logging.LogLevelEnvVar+" or silent)")
	pf.StringVar(&baseURL, "base-url", config.DefaultBaseURL, "Directory origin")
	pf.DurationVar(&fetchTimeout, "fetch-timeout", config.DefaultFetchTimeout, "Timeout per directory request")
	pf.DurationVar(&probeTimeout, "probe-timeout", config.DefaultProbeTimeout, "Timeout per reachability check")
	pf.IntVar(&fetchWorkers, "fetch-workers", config.DefaultFetchWorkers, "Listing pages fetched in parallel")
	pf.IntVar(&probeWorkers, "probe-workers", config.DefaultProbeWorkers, "Reachability checks run in parallel")
	pf.Float64Var(&requestRate, "rate", 0, "Directory requests per second (0 = unlimited)")
	pf.StringVar(&outputDir, "output-dir", "", "Directory for saved lists (default: current directory)")
}

// loadRegistry reads the config file named by --config, or the default one
func loadRegistry() (*config.Registry, error) {
	if configPath != "" {
		return config.LoadRegistryFrom(configPath)
	}
	return config.LoadRegistry()
}

// effectiveSettings loads the registry and applies explicitly set flags
// over its settings.
func effectiveSettings(cmd *cobra.Command) (*config.Registry, *config.Settings, error) {
	reg, err := loadRegistry()
	if err != nil {
		return nil, nil, err
	}

	s := *reg.Settings
	flags := cmd.Flags()
	if flags.Changed("base-url") {
		s.BaseURL = baseURL
	}
	if flags.Changed("fetch-timeout") {
		s.FetchTimeout = fetchTimeout
	}
	if flags.Changed("probe-timeout") {
		s.ProbeTimeout = probeTimeout
	}
	if flags.Changed("fetch-workers") {
		s.FetchWorkers = fetchWorkers
	}
	if flags.Changed("probe-workers") {
		s.ProbeWorkers = probeWorkers
	}
	if flags.Changed("rate") {
		s.RequestRate = requestRate
	}
	if flags.Changed("output-dir") {
		s.OutputDir = outputDir
	}
	// Command-local flags shared by name
	if flags.Changed("pages") {
		if s.MaxPages, err = flags.GetInt("pages"); err != nil {
			return nil, nil, err
		}
	}
	if flags.Changed("verbose") {
		if s.Verbose, err = flags.GetBool("verbose"); err != nil {
			return nil, nil, err
		}
	}

	if err := s.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid settings: %w", err)
	}

	logging.Debug("Effective settings",
		zap.String("base_url", s.BaseURL),
		zap.Duration("fetch_timeout", s.FetchTimeout),
		zap.Int("fetch_workers", s.FetchWorkers),
		zap.Int("max_pages", s.MaxPages),
	)
	return reg, &s, nil
}

// newDirectoryClient builds a directory client from settings
func newDirectoryClient(s *config.Settings) *directory.Client {
	client := directory.NewClient(s.BaseURL)
	client.SetTimeout(s.FetchTimeout)
	client.SetRate(s.RequestRate)

	if len(s.Headers) > 0 {
		h := directory.DefaultHeaders()
		for k, v := range s.Headers {
			h.Set(k, v)
		}
		client = client.WithHeaders(h)
	}
	return client
}

// newProber builds a prober from settings
func newProber(s *config.Settings) *probe.Prober {
	p := probe.New()
	p.SetTimeout(s.ProbeTimeout)
	p.Workers = s.ProbeWorkers
	return p
}
