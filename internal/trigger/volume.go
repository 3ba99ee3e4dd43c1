package trigger

import (
	"sync"
	"time"
)

// PressSource delivers hardware-button press events to a registered
// listener. Subscribe returns an unsubscribe function that releases the
// listener; implementations return an error when no such button feed exists
// on the device.
type PressSource interface {
	Subscribe(onPress func()) (unsubscribe func(), err error)
}

// VolumeSequenceDetector counts discrete hardware-button presses and fires
// after enough land inside a short window. It runs only while armed; Stop
// releases the press listener so nothing leaks between sessions.
type VolumeSequenceDetector struct {
	source PressSource

	mu     sync.Mutex
	window slidingWindow
	unsub  func()
	fire   func()
	now    func() time.Time
}

// VolumeOpts holds tuning parameters for a VolumeSequenceDetector. Zero
// values select the defaults: 4 presses in 1500 ms.
type VolumeOpts struct {
	Source PressSource
	Count  int
	Window time.Duration
}

// NewVolumeSequenceDetector creates a disarmed detector.
func NewVolumeSequenceDetector(opts VolumeOpts) *VolumeSequenceDetector {
	if opts.Count == 0 {
		opts.Count = 4
	}
	if opts.Window == 0 {
		opts.Window = 1500 * time.Millisecond
	}
	return &VolumeSequenceDetector{
		source: opts.Source,
		window: slidingWindow{need: opts.Count, span: opts.Window},
		now:    time.Now,
	}
}

// Start arms the detector by subscribing to the press feed. Returns
// ErrSensorUnavailable when no feed exists. Starting an armed detector is a
// no-op.
func (d *VolumeSequenceDetector) Start(fire func()) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.unsub != nil {
		return nil
	}
	if d.source == nil {
		return ErrSensorUnavailable
	}

	unsub, err := d.source.Subscribe(d.onPress)
	if err != nil {
		return ErrSensorUnavailable
	}
	d.unsub = unsub
	d.fire = fire
	d.window.reset()
	return nil
}

// Stop disarms the detector and releases the press listener. Safe to call
// repeatedly.
func (d *VolumeSequenceDetector) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.unsub == nil {
		return
	}
	d.unsub()
	d.unsub = nil
	d.fire = nil
}

// onPress records one press and fires when the window fills.
func (d *VolumeSequenceDetector) onPress() {
	d.mu.Lock()
	fire := d.fire
	fired := fire != nil && d.window.observe(d.now())
	d.mu.Unlock()

	if fired {
		fire()
	}
}
