package trigger

import (
	"errors"
	"sync"
)

// ErrSensorUnavailable reports that a detector's underlying sensor or event
// feed does not exist on this device. Start fails safely with this error and
// the detector stays inert; it never panics.
var ErrSensorUnavailable = errors.New("trigger: sensor unavailable")

// Source is one producer of help-requested events. Start arms the source and
// registers the fire callback; Stop disarms it. Both are idempotent: repeated
// calls are no-ops and never panic. At most one sampling session is active
// at a time.
type Source interface {
	Start(fire func()) error
	Stop()
}

// ManualButton is the synchronous pass-through source: Press publishes one
// trigger event immediately while the button is armed.
type ManualButton struct {
	mu    sync.Mutex
	armed bool
	fire  func()
}

// NewManualButton creates a disarmed ManualButton.
func NewManualButton() *ManualButton {
	return &ManualButton{}
}

// Start arms the button.
func (m *ManualButton) Start(fire func()) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.armed {
		return nil
	}
	m.armed = true
	m.fire = fire
	return nil
}

// Stop disarms the button.
func (m *ManualButton) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.armed = false
	m.fire = nil
}

// Press fires one trigger event. A press while disarmed is dropped.
func (m *ManualButton) Press() {
	m.mu.Lock()
	fire := m.fire
	m.mu.Unlock()
	if fire != nil {
		fire()
	}
}
