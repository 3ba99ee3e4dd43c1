package daemon

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/beaconsafe/beacon/internal/contacts"
	"github.com/beaconsafe/beacon/internal/dispatch"
	"github.com/beaconsafe/beacon/internal/incident"
	"github.com/beaconsafe/beacon/internal/models"
	"github.com/beaconsafe/beacon/internal/reachability"
	"github.com/beaconsafe/beacon/internal/transport"
	"github.com/beaconsafe/beacon/internal/trigger"
)

// fakeContacts serves a fixed registry snapshot.
type fakeContacts struct {
	reg contacts.Registry
}

func (f *fakeContacts) Snapshot() (contacts.Registry, error) { return f.reg, nil }

// fakeProbe reports a fixed status.
type fakeProbe struct {
	status reachability.Status
}

func (f *fakeProbe) Check(ctx context.Context) reachability.Status { return f.status }

// grantAll approves every call permission request.
type grantAll struct{}

func (grantAll) EnsureCallPermission(ctx context.Context) bool { return true }

// fakeSource arms instantly and exposes its fire callback.
type fakeSource struct {
	armed   chan struct{}
	fire    func()
	stopped bool
	err     error
}

func newFakeSource() *fakeSource {
	return &fakeSource{armed: make(chan struct{})}
}

func (s *fakeSource) Start(fire func()) error {
	if s.err != nil {
		return s.err
	}
	s.fire = fire
	close(s.armed)
	return nil
}

func (s *fakeSource) Stop() { s.stopped = true }

type fixture struct {
	daemon    *Daemon
	messenger *transport.Mock
	recorder  *incident.Recorder
	out       *bytes.Buffer
}

func newFixture(t *testing.T, sources ...NamedSource) *fixture {
	t.Helper()
	f := &fixture{
		messenger: transport.NewMock(),
		recorder:  incident.NewRecorder(incident.RecorderOpts{}),
		out:       &bytes.Buffer{},
	}

	reg := contacts.Registry{Contacts: []models.EmergencyContact{
		{ID: 1, Phone: "+15551234567", Type: models.ContactEmergency},
	}}
	coordinator, err := dispatch.New(dispatch.Opts{
		Contacts:   &fakeContacts{reg: reg},
		Probe:      &fakeProbe{status: reachability.Status{Connected: true, InternetReachable: true}},
		Permission: grantAll{},
		Messenger:  f.messenger,
		Dialer:     f.messenger,
		Recorder:   f.recorder,
	})
	if err != nil {
		t.Fatalf("dispatch.New: %v", err)
	}

	d, err := New(Opts{
		Bus:         trigger.NewBus(),
		Coordinator: coordinator,
		Recorder:    f.recorder,
		Sources:     sources,
		Message:     "automated alert",
		Out:         f.out,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	f.daemon = d
	return f
}

// run starts the daemon and returns a cancel function that stops it and
// waits for Run to return.
func (f *fixture) run(t *testing.T) func() {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.daemon.Run(ctx) }()
	return func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Run: %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Run did not return after cancel")
		}
	}
}

// --- Trigger wiring ---

func TestRun_TriggerDispatchesAlert(t *testing.T) {
	src := newFakeSource()
	f := newFixture(t, NamedSource{Kind: trigger.SourceShake, Source: src})

	stop := f.run(t)
	<-src.armed
	src.fire()
	stop()

	if n := len(f.messenger.InteractiveCalls()); n != 1 {
		t.Errorf("interactive sends = %d, want 1", n)
	}
	if n := f.recorder.Len(); n != 1 {
		t.Errorf("incidents = %d, want 1", n)
	}
	list := f.recorder.List()
	if list[0].Message != "automated alert" {
		t.Errorf("Message = %q, want the daemon message", list[0].Message)
	}

	out := f.out.String()
	if !strings.Contains(out, "Trigger shake armed") {
		t.Errorf("output = %q, want arming line", out)
	}
	if !strings.Contains(out, "Trigger received (shake)") {
		t.Errorf("output = %q, want trigger line", out)
	}
}

func TestRun_EachTriggerDispatchesIndependently(t *testing.T) {
	src := newFakeSource()
	f := newFixture(t, NamedSource{Kind: trigger.SourceVolume, Source: src})

	stop := f.run(t)
	<-src.armed
	src.fire()
	src.fire()
	stop()

	if n := f.recorder.Len(); n != 2 {
		t.Errorf("incidents = %d, want 2", n)
	}
}

func TestRun_StopsSourcesOnExit(t *testing.T) {
	src := newFakeSource()
	f := newFixture(t, NamedSource{Kind: trigger.SourceShake, Source: src})

	stop := f.run(t)
	<-src.armed
	stop()

	if !src.stopped {
		t.Error("source not stopped after Run returned")
	}
}

// --- Degraded arming ---

func TestRun_UnavailableSourceIsSkipped(t *testing.T) {
	broken := newFakeSource()
	broken.err = trigger.ErrSensorUnavailable
	working := newFakeSource()
	f := newFixture(t,
		NamedSource{Kind: trigger.SourceShake, Source: broken},
		NamedSource{Kind: trigger.SourceVolume, Source: working},
	)

	stop := f.run(t)
	<-working.armed
	stop()

	out := f.out.String()
	if !strings.Contains(out, "Trigger shake unavailable on this device") {
		t.Errorf("output = %q, want unavailable line", out)
	}
	if !strings.Contains(out, "Trigger volume armed") {
		t.Errorf("output = %q, want the working trigger armed", out)
	}
}

func TestRun_NoSourcesStillWatches(t *testing.T) {
	f := newFixture(t)

	stop := f.run(t)
	// Give Run a moment to reach its blocking point.
	time.Sleep(10 * time.Millisecond)
	stop()

	out := f.out.String()
	if !strings.Contains(out, "watching for manual triggers only") {
		t.Errorf("output = %q, want manual-only line", out)
	}
	if !strings.Contains(out, "Beacon stopped") {
		t.Errorf("output = %q, want shutdown line", out)
	}
}

// --- Digest schedule ---

func TestDigestSchedule_NextFireTimes(t *testing.T) {
	cases := []struct {
		expr   string
		within time.Duration
	}{
		{"*/5 * * * *", 5 * time.Minute},
		{"0 8 * * *", 24 * time.Hour},
	}
	for _, tc := range cases {
		sched, err := digestSchedule(tc.expr)
		if err != nil {
			t.Fatalf("digestSchedule(%q): %v", tc.expr, err)
		}
		now := time.Now()
		next := sched.Next(now)
		if !next.After(now) {
			t.Errorf("%q: next = %v, want after now", tc.expr, next)
		}
		if next.Sub(now) > tc.within {
			t.Errorf("%q: next in %v, want within %v", tc.expr, next.Sub(now), tc.within)
		}
	}
}

func TestDigestSchedule_Invalid(t *testing.T) {
	for _, expr := range []string{"", "nonsense", "61 * * * *", "* * * *"} {
		if _, err := digestSchedule(expr); err == nil {
			t.Errorf("digestSchedule(%q) succeeded, want error", expr)
		}
	}
}

// --- Constructor validation ---

func TestNew_RequiredDependencies(t *testing.T) {
	if _, err := New(Opts{}); err == nil {
		t.Fatal("expected error for missing dependencies")
	}
	if _, err := New(Opts{Bus: trigger.NewBus()}); err == nil {
		t.Fatal("expected error for missing coordinator")
	}
}
