package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/muurk/argus/internal/config"
	"github.com/muurk/argus/internal/directory"
	"github.com/muurk/argus/internal/probe"
	"github.com/muurk/argus/internal/report"
	"github.com/muurk/argus/internal/ui"
)

// newDirectory serves a two-page region "US": page 0 lists the given
// endpoints, page 1 fails.
func newDirectory(t *testing.T, endpoints ...string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/en/bycountry/US":
			fmt.Fprint(w, `<script>pagenavigator("?page=", 1, 0);</script>`)
		case r.URL.Path == "/en/bycountry/US/" && r.URL.Query().Get("page") == "0":
			for _, e := range endpoints {
				fmt.Fprintf(w, `<img src="%s/mjpg/video.mjpg">`, e)
			}
		case r.URL.Path == "/en/bycountry/AQ":
			fmt.Fprint(w, `<p>nothing here</p>`)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newJob(t *testing.T, dir string, source *directory.Client, region directory.Region, test bool) (*scanJob, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	s := config.DefaultSettings()
	s.Verbose = true

	runner := ui.NewRunner(ui.RunnerConfig{
		Title:     "Region Scan",
		StepNames: []string{"a", "b", "c", "d", "e"},
		Verbose:   true,
		Output:    &out,
		Width:     ui.MaxContentWidth,
	})

	return &scanJob{
		source:   source,
		prober:   probe.New(),
		settings: s,
		registry: config.NewRegistry(),
		region:   region,
		output:   report.CamerasFile(region.Code),
		sink:     report.FileSink{Dir: dir},
		test:     test,
		runner:   runner,
	}, &out
}

func TestScanJobWithProbe(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer ok.Close()
	denied := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer denied.Close()

	dirSrv := newDirectory(t, ok.URL, denied.URL)
	dir := t.TempDir()
	job, out := newJob(t, dir, directory.NewClient(dirSrv.URL), directory.Region{Code: "US", Name: "United States"}, true)

	if _, err := job.runner.Run(context.Background(), job.run); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	cameras, err := report.ReadLines(filepath.Join(dir, "US_cameras.txt"))
	if err != nil {
		t.Fatalf("ReadLines(cameras) error = %v", err)
	}
	if want := []string{ok.URL, denied.URL}; !reflect.DeepEqual(cameras, want) {
		t.Errorf("cameras = %v, want %v", cameras, want)
	}

	accessible, err := report.ReadLines(filepath.Join(dir, "US_accessible.txt"))
	if err != nil {
		t.Fatalf("ReadLines(accessible) error = %v", err)
	}
	if want := []string{ok.URL}; !reflect.DeepEqual(accessible, want) {
		t.Errorf("accessible = %v, want %v", accessible, want)
	}

	rec := job.registry.GetRegion("US")
	if rec == nil {
		t.Fatal("scan not recorded")
	}
	if rec.Pages != 2 || rec.Endpoints != 2 {
		t.Errorf("record = %+v, want 2 pages, 2 endpoints", rec)
	}
	if !reflect.DeepEqual(rec.FailedPages, []int{1}) {
		t.Errorf("FailedPages = %v, want [1]", rec.FailedPages)
	}
	if rec.Reachable == nil || *rec.Reachable != 1 {
		t.Errorf("Reachable = %v, want 1", rec.Reachable)
	}

	s := out.String()
	for _, want := range []string{
		"[+] " + ok.URL + " - Accessible",
		"[-] " + denied.URL + " - Not accessible",
		"Some listing pages could not be fetched",
		"Skipped pages",
		"page 1: Page 1 failed (HTTP 500)",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Index(s, ok.URL+" - Accessible") > strings.Index(s, denied.URL+" - Not accessible") {
		t.Error("probe lines not in list order")
	}
}

func TestScanJobNoListings(t *testing.T) {
	dirSrv := newDirectory(t)
	dir := t.TempDir()
	job, _ := newJob(t, dir, directory.NewClient(dirSrv.URL), directory.Region{Code: "AQ", Name: "Antarctica"}, true)

	details, err := job.runner.Run(context.Background(), job.run)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "AQ_cameras.txt")); !os.IsNotExist(err) {
		t.Errorf("cameras file written for a region without listings (stat err = %v)", err)
	}
	if details[1].Value != "none listed" {
		t.Errorf("details = %v", details)
	}
}

func TestScanJobWithoutProbe(t *testing.T) {
	dirSrv := newDirectory(t, "http://192.0.2.10:8080")
	dir := t.TempDir()
	job, _ := newJob(t, dir, directory.NewClient(dirSrv.URL), directory.Region{Code: "US", Name: "United States"}, false)

	if _, err := job.runner.Run(context.Background(), job.run); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "US_accessible.txt")); !os.IsNotExist(err) {
		t.Error("accessible list written without --test")
	}
	if rec := job.registry.GetRegion("US"); rec == nil || rec.Reachable != nil {
		t.Errorf("record = %+v, want scan without probe count", rec)
	}
}

func TestScanJobResolveFailure(t *testing.T) {
	dirSrv := newDirectory(t)
	job, _ := newJob(t, t.TempDir(), directory.NewClient(dirSrv.URL), directory.Region{Code: "FR", Name: "France"}, false)

	_, err := job.runner.Run(context.Background(), job.run)
	if !directory.IsPageFetchFailed(err) {
		t.Errorf("run() error = %v, want PageFetchFailed", err)
	}
	if job.registry.GetRegion("FR") != nil {
		t.Error("failed scan was recorded")
	}
}

func TestMaxPagesLabel(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "all"},
		{3, "pages 0-3"},
	}
	for _, tt := range tests {
		if got := maxPagesLabel(tt.in); got != tt.want {
			t.Errorf("maxPagesLabel(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPlural(t *testing.T) {
	if got := plural(1, "page"); got != "1 page" {
		t.Errorf("plural(1) = %q", got)
	}
	if got := plural(3, "page"); got != "3 pages" {
		t.Errorf("plural(3) = %q", got)
	}
}

func TestConfigInitAndHistory(t *testing.T) {
	old := configPath
	configPath = filepath.Join(t.TempDir(), "config.yaml")
	defer func() { configPath = old }()

	var out bytes.Buffer
	configInitCmd.SetOut(&out)
	defer configInitCmd.SetOut(nil)
	if err := configInitCmd.RunE(configInitCmd, nil); err != nil {
		t.Fatalf("config init error = %v", err)
	}
	if _, err := os.Stat(configPath); err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if !strings.Contains(out.String(), "Config file written") {
		t.Errorf("config init output = %q", out.String())
	}
	if err := configInitCmd.RunE(configInitCmd, nil); err == nil {
		t.Error("second config init should refuse to overwrite")
	}

	out.Reset()
	historyCmd.SetOut(&out)
	defer historyCmd.SetOut(nil)
	if err := historyCmd.RunE(historyCmd, nil); err != nil {
		t.Fatalf("history error = %v", err)
	}
	for _, want := range []string{"SCAN HISTORY", "No scans recorded yet"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("history output missing %q:\n%s", want, out.String())
		}
	}
}
