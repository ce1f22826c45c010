package probe

import (
	"context"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	p := New()

	if p.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", p.Timeout)
	}
	if p.Workers != 10 {
		t.Errorf("Workers = %d, want 10", p.Workers)
	}
	if p.HTTPClient == nil {
		t.Error("HTTPClient should not be nil")
	}
}

func TestCheckClassification(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ok.Close()

	notFound := httptest.NewServer(http.NotFoundHandler())
	defer notFound.Close()

	unauthorized := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer unauthorized.Close()

	release := make(chan struct{})
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer slow.Close()
	defer close(release)

	refused := httptest.NewServer(http.NotFoundHandler())
	refusedURL := refused.URL
	refused.Close()

	p := New()
	p.SetTimeout(100 * time.Millisecond)

	tests := []struct {
		name     string
		endpoint string
		want     bool
	}{
		{"200", ok.URL, true},
		{"404", notFound.URL, false},
		{"401", unauthorized.URL, false},
		{"refused", refusedURL, false},
		{"timeout", slow.URL, false},
		{"malformed", "http://[::1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Check(context.Background(), tt.endpoint); got != tt.want {
				t.Errorf("Check(%s) = %v, want %v", tt.endpoint, got, tt.want)
			}
		})
	}
}

func TestCheckTimeoutIsBounded(t *testing.T) {
	release := make(chan struct{})
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer slow.Close()
	defer close(release)

	p := New()
	p.SetTimeout(50 * time.Millisecond)

	start := time.Now()
	p.Check(context.Background(), slow.URL)
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Check() took %v, want close to the 50ms timeout", elapsed)
	}
}

func TestCheckDoesNotReadStreamingBody(t *testing.T) {
	release := make(chan struct{})
	stream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer stream.Close()
	defer close(release)

	p := New()
	p.SetTimeout(time.Second)
	if !p.Check(context.Background(), stream.URL) {
		t.Error("Check() = false for a 200 stream, want true")
	}
}

func TestProbeAllPreservesOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	// Each server answers after a random delay; even indices answer 200
	var endpoints []string
	var want []Outcome
	for i := 0; i < 15; i++ {
		delay := time.Duration(rng.Intn(30)) * time.Millisecond
		status := http.StatusOK
		if i%2 == 1 {
			status = http.StatusForbidden
		}
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(delay)
			w.WriteHeader(status)
		}))
		defer srv.Close()

		endpoints = append(endpoints, srv.URL)
		want = append(want, Outcome{Endpoint: srv.URL, Reachable: status == http.StatusOK})
	}

	p := New()
	p.Workers = 4

	var mu sync.Mutex
	var echoed int
	p.OnResult = func(Outcome) {
		mu.Lock()
		echoed++
		mu.Unlock()
	}

	got, err := p.ProbeAll(context.Background(), endpoints)
	if err != nil {
		t.Fatalf("ProbeAll() error = %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ProbeAll() = %v, want %v", got, want)
	}
	if echoed != len(endpoints) {
		t.Errorf("OnResult called %d times, want %d", echoed, len(endpoints))
	}

	reachable := Reachable(got)
	if len(reachable) != 8 {
		t.Errorf("len(Reachable) = %d, want 8", len(reachable))
	}
	for i, e := range reachable {
		if e != endpoints[i*2] {
			t.Errorf("Reachable()[%d] = %s, want %s", i, e, endpoints[i*2])
		}
	}
}

func TestProbeAllDuplicates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	got, err := New().ProbeAll(context.Background(), []string{srv.URL, srv.URL})
	if err != nil {
		t.Fatalf("ProbeAll() error = %v", err)
	}
	if len(got) != 2 || !got[0].Reachable || !got[1].Reachable {
		t.Errorf("ProbeAll() = %v, want two reachable outcomes", got)
	}
}

func TestProbeAllEmpty(t *testing.T) {
	got, err := New().ProbeAll(context.Background(), nil)
	if err != nil {
		t.Fatalf("ProbeAll() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("ProbeAll(nil) = %v, want empty non-nil", got)
	}
}

func TestLongTimeoutNotCappedByTransport(t *testing.T) {
	p := New()
	long := 2 * DefaultTimeout
	p.SetTimeout(long)

	if d := p.dialer.Timeout; d != 0 && d < long {
		t.Errorf("dialer timeout %v caps a %v check", d, long)
	}
	tr, ok := p.HTTPClient.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("Transport = %T, want *http.Transport", p.HTTPClient.Transport)
	}
	if rt := tr.ResponseHeaderTimeout; rt != 0 && rt < long {
		t.Errorf("ResponseHeaderTimeout %v caps a %v check", rt, long)
	}

	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer slow.Close()

	p.SetTimeout(2 * time.Second)
	if !p.Check(context.Background(), slow.URL) {
		t.Error("slow endpoint answering within the timeout should be reachable")
	}
}
