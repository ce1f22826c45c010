package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if configDir == "" {
		t.Error("GetConfigDir() returned empty string")
	}

	if !strings.Contains(configDir, "argus") {
		t.Errorf("GetConfigDir() = %v, should contain 'argus'", configDir)
	}

	t.Logf("Config directory: %s", configDir)
}

func TestGetConfigDirHonorsXDG(t *testing.T) {
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		t.Skip("XDG_CONFIG_HOME only applies on Linux and other Unix systems")
	}

	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}
	if want := filepath.Join(xdg, "argus"); configDir != want {
		t.Errorf("GetConfigDir() = %v, want %v", configDir, want)
	}
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Version != 1 {
		t.Errorf("NewRegistry().Version = %v, want 1", reg.Version)
	}
	if reg.Regions == nil {
		t.Error("NewRegistry().Regions should not be nil")
	}
	if reg.Settings == nil {
		t.Fatal("NewRegistry().Settings should not be nil")
	}

	s := reg.Settings
	if s.FetchTimeout != 10*time.Second {
		t.Errorf("FetchTimeout = %v, want 10s", s.FetchTimeout)
	}
	if s.ProbeTimeout != 5*time.Second {
		t.Errorf("ProbeTimeout = %v, want 5s", s.ProbeTimeout)
	}
	if s.FetchWorkers != 5 {
		t.Errorf("FetchWorkers = %v, want 5", s.FetchWorkers)
	}
	if s.ProbeWorkers != 10 {
		t.Errorf("ProbeWorkers = %v, want 10", s.ProbeWorkers)
	}
	if s.MaxPages != 0 {
		t.Errorf("MaxPages = %v, want 0", s.MaxPages)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("default settings should validate, got %v", err)
	}
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Settings)
		wantErr bool
	}{
		{"defaults", func(s *Settings) {}, false},
		{"https base", func(s *Settings) { s.BaseURL = "https://mirror.example.com" }, false},
		{"relative base", func(s *Settings) { s.BaseURL = "/en" }, true},
		{"ftp base", func(s *Settings) { s.BaseURL = "ftp://example.com" }, true},
		{"negative max pages", func(s *Settings) { s.MaxPages = -1 }, true},
		{"zero fetch timeout", func(s *Settings) { s.FetchTimeout = 0 }, true},
		{"zero probe timeout", func(s *Settings) { s.ProbeTimeout = 0 }, true},
		{"zero fetch workers", func(s *Settings) { s.FetchWorkers = 0 }, true},
		{"negative probe workers", func(s *Settings) { s.ProbeWorkers = -2 }, true},
		{"negative rate", func(s *Settings) { s.RequestRate = -1 }, true},
		{"fractional rate", func(s *Settings) { s.RequestRate = 0.5 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.modify(s)
			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRegistryEnsureRegion(t *testing.T) {
	reg := NewRegistry()

	rec1 := reg.EnsureRegion("US")
	if rec1 == nil {
		t.Fatal("EnsureRegion() returned nil")
	}

	rec2 := reg.EnsureRegion("US")
	if rec1 != rec2 {
		t.Error("EnsureRegion() should return same instance for same code")
	}

	rec3 := reg.EnsureRegion("JP")
	if rec1 == rec3 {
		t.Error("EnsureRegion() should create new instance for different code")
	}
}

func TestRegistryRecordScanAndProbe(t *testing.T) {
	reg := NewRegistry()

	reg.RecordScan("US", "United States", 4, 120, []int{2}, "US_cameras.txt")
	reg.RecordProbe("US", 17)

	rec := reg.GetRegion("US")
	if rec == nil {
		t.Fatal("GetRegion() returned nil after RecordScan()")
	}
	if rec.Name != "United States" || rec.Pages != 4 || rec.Endpoints != 120 {
		t.Errorf("record = %+v, unexpected values", rec)
	}
	if len(rec.FailedPages) != 1 || rec.FailedPages[0] != 2 {
		t.Errorf("FailedPages = %v, want [2]", rec.FailedPages)
	}
	if rec.Reachable == nil || *rec.Reachable != 17 {
		t.Errorf("Reachable = %v, want 17", rec.Reachable)
	}

	// A new scan invalidates the old probe count
	reg.RecordScan("US", "United States", 5, 130, nil, "US_cameras.txt")
	if rec.Reachable != nil {
		t.Errorf("Reachable = %v after rescan, want nil", *rec.Reachable)
	}
}

func TestLoadRegistryFromMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	reg, err := LoadRegistryFrom(path)
	if err != nil {
		t.Fatalf("LoadRegistryFrom() error = %v", err)
	}
	if reg.Version != 1 {
		t.Errorf("Version = %v, want 1", reg.Version)
	}

	got, err := reg.Path()
	if err != nil {
		t.Fatalf("Path() error = %v", err)
	}
	if got != path {
		t.Errorf("Path() = %v, want %v", got, path)
	}
}

func TestRegistrySaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	reg := NewRegistry()
	reg.Settings.MaxPages = 3
	reg.Settings.ProbeTimeout = 2500 * time.Millisecond
	reg.Settings.RequestRate = 1.5
	reg.Settings.Headers = map[string]string{"User-Agent": "argus-test"}
	reg.RecordScan("JP", "Japan", 2, 40, nil, "JP_cameras.txt")
	reg.RecordProbe("JP", 3)

	if err := reg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file should not remain after save")
	}

	loaded, err := LoadRegistryFrom(path)
	if err != nil {
		t.Fatalf("LoadRegistryFrom() error = %v", err)
	}

	if loaded.Settings.MaxPages != 3 {
		t.Errorf("MaxPages = %v, want 3", loaded.Settings.MaxPages)
	}
	if loaded.Settings.ProbeTimeout != 2500*time.Millisecond {
		t.Errorf("ProbeTimeout = %v, want 2.5s", loaded.Settings.ProbeTimeout)
	}
	if loaded.Settings.RequestRate != 1.5 {
		t.Errorf("RequestRate = %v, want 1.5", loaded.Settings.RequestRate)
	}
	if loaded.Settings.Headers["User-Agent"] != "argus-test" {
		t.Errorf("Headers = %v, want User-Agent override", loaded.Settings.Headers)
	}

	rec := loaded.GetRegion("JP")
	if rec == nil {
		t.Fatal("JP record missing after load")
	}
	if rec.Endpoints != 40 || rec.Reachable == nil || *rec.Reachable != 3 {
		t.Errorf("JP record = %+v, unexpected values", rec)
	}
}

func TestLoadRegistryFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "version: 1\nsettings:\n  max_pages: 2\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	reg, err := LoadRegistryFrom(path)
	if err != nil {
		t.Fatalf("LoadRegistryFrom() error = %v", err)
	}

	s := reg.Settings
	if s.MaxPages != 2 {
		t.Errorf("MaxPages = %v, want 2", s.MaxPages)
	}
	if s.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %v, want %v", s.BaseURL, DefaultBaseURL)
	}
	if s.FetchTimeout != DefaultFetchTimeout || s.ProbeTimeout != DefaultProbeTimeout {
		t.Errorf("timeouts = %v/%v, want defaults", s.FetchTimeout, s.ProbeTimeout)
	}
	if s.FetchWorkers != DefaultFetchWorkers || s.ProbeWorkers != DefaultProbeWorkers {
		t.Errorf("workers = %v/%v, want defaults", s.FetchWorkers, s.ProbeWorkers)
	}
}

func TestLoadRegistryRejectsBadFiles(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"wrong version", "version: 2\n"},
		{"malformed yaml", "version: [1\n"},
		{"invalid settings", "version: 1\nsettings:\n  fetch_workers: -1\n"},
		{"bad duration", "version: 1\nsettings:\n  probe_timeout: soon\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}
			if _, err := LoadRegistryFrom(path); err == nil {
				t.Error("LoadRegistryFrom() should fail")
			}
		})
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.HasPrefix(string(data), "# Argus Configuration File") {
		t.Error("config file should start with the header comment")
	}
	if !strings.Contains(string(data), "fetch_timeout: 10s") {
		t.Errorf("config file should contain fetch_timeout: 10s, got:\n%s", data)
	}

	if err := WriteDefault(path); err == nil {
		t.Error("WriteDefault() should refuse to overwrite")
	}
}

func TestLoadRegistryUsesXDGPath(t *testing.T) {
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		t.Skip("XDG_CONFIG_HOME only applies on Linux and other Unix systems")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	globalRegistryOnce = sync.Once{}
	reg, err := LoadRegistry()
	if err != nil {
		t.Fatalf("LoadRegistry() error = %v", err)
	}
	reg.RecordScan("US", "United States", 1, 0, nil, "")
	if err := reg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	path, _ := GetConfigPath()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config not written to %s: %v", path, err)
	}

	// Reset for other tests
	globalRegistryOnce = sync.Once{}
}
