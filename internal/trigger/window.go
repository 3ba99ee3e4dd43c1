package trigger

import "time"

// slidingWindow counts qualifying events inside a rolling time span and
// reports when the count reaches the configured threshold. Once it fires,
// the window resets so a sustained gesture produces one event, not a stream.
type slidingWindow struct {
	need   int
	span   time.Duration
	stamps []time.Time
}

// observe records one qualifying event at now. It prunes entries older than
// the span first, then returns true exactly when the count reaches need,
// clearing the window as a side effect.
func (w *slidingWindow) observe(now time.Time) bool {
	cutoff := now.Add(-w.span)
	keep := w.stamps[:0]
	for _, s := range w.stamps {
		if s.After(cutoff) {
			keep = append(keep, s)
		}
	}
	w.stamps = keep

	w.stamps = append(w.stamps, now)
	if len(w.stamps) >= w.need {
		w.stamps = w.stamps[:0]
		return true
	}
	return false
}

// reset discards all recorded events.
func (w *slidingWindow) reset() {
	w.stamps = w.stamps[:0]
}
