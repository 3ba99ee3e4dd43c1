// Package dispatch orchestrates one SOS alert: contact resolution,
// reachability-aware SMS hand-off with fallback, the voice-call escalation,
// and the incident record.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/beaconsafe/beacon/internal/contacts"
	"github.com/beaconsafe/beacon/internal/incident"
	"github.com/beaconsafe/beacon/internal/notifier"
	"github.com/beaconsafe/beacon/internal/reachability"
	"github.com/beaconsafe/beacon/internal/transport"
)

// Result is the outcome of one dispatch: whether an SMS hand-off was
// accepted on any path, whether a call was placed, and the recipients the
// alert was addressed to. Accepted means handed to the platform, not
// confirmed delivered.
type Result struct {
	SMSInitiated  bool
	CallInitiated bool
	Recipients    []string
}

// SnapshotSource provides the contact registry snapshot read at dispatch
// time.
type SnapshotSource interface {
	Snapshot() (contacts.Registry, error)
}

// PermissionGateway gates the call attempt.
type PermissionGateway interface {
	EnsureCallPermission(ctx context.Context) bool
}

// Coordinator runs the dispatch sequence. Every step is individually
// fault-tolerant: failures degrade a Result boolean and nothing escapes
// Dispatch, which never returns an error and never panics.
type Coordinator struct {
	contacts   SnapshotSource
	probe      reachability.Probe
	permission PermissionGateway
	messenger  transport.Messenger
	dialer     transport.Dialer
	recorder   *incident.Recorder
	ops        notifier.Adapter // optional
	composer   Composer
	advise     func(string)
}

// Opts holds parameters for creating a Coordinator. Ops and Advise are
// optional; a nil Advise logs advisories instead.
type Opts struct {
	Contacts   SnapshotSource
	Probe      reachability.Probe
	Permission PermissionGateway
	Messenger  transport.Messenger
	Dialer     transport.Dialer
	Recorder   *incident.Recorder
	Ops        notifier.Adapter
	Composer   Composer
	Advise     func(string)
}

// New creates a Coordinator with the given options.
func New(opts Opts) (*Coordinator, error) {
	if opts.Contacts == nil {
		return nil, fmt.Errorf("dispatch: contacts source is required")
	}
	if opts.Probe == nil {
		return nil, fmt.Errorf("dispatch: reachability probe is required")
	}
	if opts.Permission == nil {
		return nil, fmt.Errorf("dispatch: permission gateway is required")
	}
	if opts.Messenger == nil {
		return nil, fmt.Errorf("dispatch: messenger is required")
	}
	if opts.Dialer == nil {
		return nil, fmt.Errorf("dispatch: dialer is required")
	}
	if opts.Recorder == nil {
		return nil, fmt.Errorf("dispatch: recorder is required")
	}
	advise := opts.Advise
	if advise == nil {
		advise = func(text string) { log.Printf("dispatch: advisory: %s", text) }
	}
	return &Coordinator{
		contacts:   opts.Contacts,
		probe:      opts.Probe,
		permission: opts.Permission,
		messenger:  opts.Messenger,
		dialer:     opts.Dialer,
		recorder:   opts.Recorder,
		ops:        opts.Ops,
		composer:   opts.Composer,
		advise:     advise,
	}, nil
}

// Dispatch runs the full alert sequence for message and returns what was
// initiated. With no usable recipients it returns an empty Result and
// records nothing; otherwise exactly one incident is appended, after both
// the SMS and call attempts have resolved, no matter how many steps failed.
func (c *Coordinator) Dispatch(ctx context.Context, message string) Result {
	// Resolve recipients from a registry snapshot.
	var res contacts.Resolution
	var snapshotFailed bool
	c.step("resolve contacts", func() error {
		reg, err := c.contacts.Snapshot()
		if err != nil {
			snapshotFailed = true
			return err
		}
		res = contacts.Resolve(reg)
		return nil
	})
	if snapshotFailed {
		c.advise("Your emergency contacts could not be read. Check the contact store, then try again.")
		return Result{}
	}
	if len(res.Recipients) == 0 {
		c.advise("No emergency contacts with phone numbers are configured. Add a contact before sending an alert.")
		return Result{}
	}

	result := Result{Recipients: res.Recipients}
	comp := transport.Composition{
		Recipients: res.Recipients,
		Body:       c.composer.Compose(message),
	}

	// Interactive send, only when the network is reachable.
	var status reachability.Status
	c.step("probe reachability", func() error {
		status = c.probe.Check(ctx)
		return nil
	})
	if status.Connected && status.InternetReachable {
		c.step("interactive send", func() error {
			err := c.messenger.InteractiveSend(ctx, comp)
			if err == nil {
				result.SMSInitiated = true
				return nil
			}
			if errors.Is(err, transport.ErrCannotHandle) {
				return nil // soft failure, fall through to direct send
			}
			return err
		})
	}

	// Silent fallback when the interactive path was skipped or failed.
	if !result.SMSInitiated {
		c.step("direct send", func() error {
			if err := c.messenger.DirectSend(ctx, comp.Recipients, comp.Body); err != nil {
				return err
			}
			result.SMSInitiated = true
			return nil
		})
	}

	// Call the primary contact only, never the full list. No primary means
	// no permission request at all.
	var callNumber string
	if res.Primary != nil {
		number := strings.TrimSpace(res.Primary.Phone)
		if number != "" {
			c.step("call primary", func() error {
				if !c.permission.EnsureCallPermission(ctx) {
					return nil // denial is reflected in the result, not surfaced
				}
				callNumber = number
				if err := c.dialer.Dial(ctx, number); err != nil {
					return err
				}
				result.CallInitiated = true
				return nil
			})
		}
	}

	if !result.SMSInitiated {
		c.advise("Automatic alert delivery failed. Please send a message to your contacts manually.")
	}

	// Record the incident unconditionally from here: recipients existed, so
	// an attempt was made, however it went.
	var stored incident.Incident
	c.step("record incident", func() error {
		stored = c.recorder.Append(incident.Draft{
			Message:    message,
			SMSSent:    result.SMSInitiated,
			CallPlaced: result.CallInitiated,
			CallNumber: callNumber,
			Recipients: res.Recipients,
		})
		return nil
	})

	if c.ops != nil {
		c.step("notify ops channel", func() error {
			return c.ops.Send(ctx, notifier.FormatIncident(stored))
		})
	}

	return result
}

// step runs one dispatch step with full fault isolation: errors and panics
// are logged and swallowed so the sequence always continues.
func (c *Coordinator) step(name string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("dispatch: %s: panic: %v", name, r)
		}
	}()
	if err := fn(); err != nil {
		log.Printf("dispatch: %s: %v", name, err)
	}
}
