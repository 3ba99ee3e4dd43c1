// Package daemon runs the armed Beacon watch process: trigger sources feed
// the bus, the bus feeds the dispatcher, and a cron-scheduled digest goes to
// the ops channel.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/beaconsafe/beacon/internal/dispatch"
	"github.com/beaconsafe/beacon/internal/incident"
	"github.com/beaconsafe/beacon/internal/notifier"
	"github.com/beaconsafe/beacon/internal/trigger"
	"github.com/robfig/cron/v3"
)

// NamedSource pairs a trigger source with its kind for arming and event
// tagging.
type NamedSource struct {
	Kind   trigger.SourceKind
	Source trigger.Source
}

// Daemon owns the armed trigger sources and the trigger-to-dispatch wiring.
type Daemon struct {
	bus         *trigger.Bus
	coordinator *dispatch.Coordinator
	recorder    *incident.Recorder
	sources     []NamedSource
	ops         notifier.Adapter // optional
	digestCron  string           // empty = digest disabled
	message     string           // dispatch message for triggered alerts
	out         io.Writer
}

// Opts holds parameters for creating a Daemon.
type Opts struct {
	Bus         *trigger.Bus
	Coordinator *dispatch.Coordinator
	Recorder    *incident.Recorder
	Sources     []NamedSource
	Ops         notifier.Adapter // optional; enables the daily digest
	DigestCron  string
	Message     string
	Out         io.Writer // defaults to os.Stdout
}

// New creates a Daemon with the given options.
func New(opts Opts) (*Daemon, error) {
	if opts.Bus == nil {
		return nil, fmt.Errorf("daemon: bus is required")
	}
	if opts.Coordinator == nil {
		return nil, fmt.Errorf("daemon: coordinator is required")
	}
	if opts.Recorder == nil {
		return nil, fmt.Errorf("daemon: recorder is required")
	}
	if opts.Message == "" {
		return nil, fmt.Errorf("daemon: message is required")
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	return &Daemon{
		bus:         opts.Bus,
		coordinator: opts.Coordinator,
		recorder:    opts.Recorder,
		sources:     opts.Sources,
		ops:         opts.Ops,
		digestCron:  opts.DigestCron,
		message:     opts.Message,
		out:         out,
	}, nil
}

// Run arms the trigger sources, subscribes the dispatch listener, and blocks
// until the context is cancelled. Overlapping triggers dispatch
// independently; the recorder serializes their appends.
func (d *Daemon) Run(ctx context.Context) error {
	unsubscribe := d.bus.Subscribe(func(ev trigger.Event) {
		fmt.Fprintf(d.out, "Trigger received (%s)\n", ev.Source)
		result := d.coordinator.Dispatch(ctx, d.message)
		fmt.Fprintf(d.out, "Dispatch done: sms=%t call=%t recipients=%d\n",
			result.SMSInitiated, result.CallInitiated, len(result.Recipients))
	})
	defer unsubscribe()

	armed := 0
	for _, s := range d.sources {
		kind := s.Kind
		err := s.Source.Start(func() {
			d.bus.Publish(trigger.Event{Source: kind, At: time.Now()})
		})
		if err != nil {
			if errors.Is(err, trigger.ErrSensorUnavailable) {
				fmt.Fprintf(d.out, "Trigger %s unavailable on this device\n", kind)
				continue
			}
			return fmt.Errorf("daemon: arm %s: %w", kind, err)
		}
		armed++
		fmt.Fprintf(d.out, "Trigger %s armed\n", kind)
	}
	defer func() {
		for _, s := range d.sources {
			s.Source.Stop()
		}
	}()

	if armed == 0 {
		fmt.Fprintf(d.out, "No triggers armed; watching for manual triggers only\n")
	}

	if d.ops != nil && d.digestCron != "" {
		go d.runDigestScheduler(ctx)
	}

	fmt.Fprintf(d.out, "Beacon watching\n")
	<-ctx.Done()
	fmt.Fprintf(d.out, "Beacon stopped\n")
	return nil
}

// digestSchedule parses the digest's 5-field cron expression
// (minute, hour, dom, month, dow).
func digestSchedule(expr string) (cron.Schedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("daemon: digest cron %q: %w", expr, err)
	}
	return sched, nil
}

// runDigestScheduler fires the incident digest on the configured cron
// schedule, sleeping until each successive fire time.
func (d *Daemon) runDigestScheduler(ctx context.Context) {
	sched, err := digestSchedule(d.digestCron)
	if err != nil {
		log.Printf("%v; digest disabled", err)
		return
	}

	timer := time.NewTimer(time.Until(sched.Next(time.Now())))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			d.fireDigest(ctx)
			timer.Reset(time.Until(sched.Next(time.Now())))
		}
	}
}

// fireDigest sends the last 24 hours of incidents to the ops channel.
// Suppressed when there were none; failures are best-effort.
func (d *Daemon) fireDigest(ctx context.Context) {
	since := time.Now().Add(-24 * time.Hour)
	ev, ok := notifier.FormatDigest(d.recorder.List(), since)
	if !ok {
		return
	}
	if err := d.ops.Send(ctx, ev); err != nil {
		log.Printf("daemon: send digest: %v", err)
	}
}
