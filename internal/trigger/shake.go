package trigger

import (
	"math"
	"sync"
	"time"
)

// MotionSampler reads the device motion sensor. Available reports whether
// the sensor exists; Sample returns the current acceleration vector.
type MotionSampler interface {
	Available() bool
	Sample() (x, y, z float64, err error)
}

// ShakeDetector samples a motion sensor at a fixed interval and fires when
// enough large between-sample movements land inside a short window. The
// movement measure is the Euclidean magnitude of the delta between
// consecutive samples.
type ShakeDetector struct {
	sampler   MotionSampler
	interval  time.Duration
	threshold float64

	mu      sync.Mutex
	window  slidingWindow
	last    [3]float64
	hasLast bool
	stop    chan struct{}
	now     func() time.Time
}

// ShakeOpts holds tuning parameters for a ShakeDetector. Zero values select
// the defaults: 100 ms sampling, threshold 2.5, 3 events in 2000 ms.
type ShakeOpts struct {
	Sampler   MotionSampler
	Interval  time.Duration
	Threshold float64
	Count     int
	Window    time.Duration
}

// NewShakeDetector creates a stopped ShakeDetector.
func NewShakeDetector(opts ShakeOpts) *ShakeDetector {
	if opts.Interval == 0 {
		opts.Interval = 100 * time.Millisecond
	}
	if opts.Threshold == 0 {
		opts.Threshold = 2.5
	}
	if opts.Count == 0 {
		opts.Count = 3
	}
	if opts.Window == 0 {
		opts.Window = 2000 * time.Millisecond
	}
	return &ShakeDetector{
		sampler:   opts.Sampler,
		interval:  opts.Interval,
		threshold: opts.Threshold,
		window:    slidingWindow{need: opts.Count, span: opts.Window},
		now:       time.Now,
	}
}

// Start begins sampling. If the motion sensor is missing it returns
// ErrSensorUnavailable and the detector stays inert. Starting an already
// running detector is a no-op.
func (d *ShakeDetector) Start(fire func()) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop != nil {
		return nil
	}
	if d.sampler == nil || !d.sampler.Available() {
		return ErrSensorUnavailable
	}

	stop := make(chan struct{})
	d.stop = stop
	d.hasLast = false
	d.window.reset()

	go d.run(stop, fire)
	return nil
}

// Stop ends the sampling session. Safe to call repeatedly.
func (d *ShakeDetector) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop == nil {
		return
	}
	close(d.stop)
	d.stop = nil
}

// run is the sampling loop. It exits when the stop channel closes.
func (d *ShakeDetector) run(stop chan struct{}, fire func()) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			x, y, z, err := d.sampler.Sample()
			if err != nil {
				continue
			}
			if d.ingest(x, y, z, d.now()) {
				fire()
			}
		}
	}
}

// ingest processes one motion sample and reports whether the detector fires.
// The first sample only seeds the delta baseline.
func (d *ShakeDetector) ingest(x, y, z float64, now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.hasLast {
		d.last = [3]float64{x, y, z}
		d.hasLast = true
		return false
	}

	dx := x - d.last[0]
	dy := y - d.last[1]
	dz := z - d.last[2]
	d.last = [3]float64{x, y, z}

	magnitude := math.Sqrt(dx*dx + dy*dy + dz*dz)
	if magnitude <= d.threshold {
		return false
	}
	return d.window.observe(now)
}
