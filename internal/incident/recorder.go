// Package incident keeps the bounded, append-only log of past dispatch
// attempts.
package incident

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultCapacity is the incident log bound.
const DefaultCapacity = 100

// Incident is the immutable record of one completed dispatch attempt.
type Incident struct {
	ID         string
	Message    string
	Timestamp  time.Time
	SMSSent    bool
	CallPlaced bool
	CallNumber string // empty when no call was attempted
	Recipients []string
}

// Draft holds the fields the dispatcher supplies for a new incident; the
// recorder assigns the ID and timestamp.
type Draft struct {
	Message    string
	SMSSent    bool
	CallPlaced bool
	CallNumber string
	Recipients []string
}

// Store is the optional persistence behind the recorder. All store failures
// are best-effort: logged, never surfaced to dispatch.
type Store interface {
	Insert(inc Incident) error
	Trim(capacity int) error
	Recent(limit int) ([]Incident, error)
	Clear() error
}

// Recorder is the in-memory incident log: newest-first, bounded, append-only
// apart from capacity eviction and explicit clears. Appends are
// mutex-serialized so overlapping dispatches cannot corrupt the bound.
type Recorder struct {
	mu       sync.Mutex
	capacity int
	entries  []Incident // newest first
	store    Store      // optional
}

// RecorderOpts holds parameters for creating a Recorder. Zero capacity
// selects DefaultCapacity; Store is optional.
type RecorderOpts struct {
	Capacity int
	Store    Store
}

// NewRecorder creates an empty Recorder.
func NewRecorder(opts RecorderOpts) *Recorder {
	if opts.Capacity == 0 {
		opts.Capacity = DefaultCapacity
	}
	return &Recorder{capacity: opts.Capacity, store: opts.Store}
}

// Load hydrates the in-memory log from the store, newest first. Without a
// store it is a no-op.
func (r *Recorder) Load() error {
	if r.store == nil {
		return nil
	}
	entries, err := r.store.Recent(r.capacity)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.entries = entries
	r.mu.Unlock()
	return nil
}

// Append assigns an ID and timestamp to the draft, prepends it, and evicts
// the oldest entry once over capacity. The store mirror runs under the same
// lock, so overlapping appends cannot interleave their insert/trim pairs and
// leave the persistent table over capacity. The stored record is returned.
func (r *Recorder) Append(d Draft) Incident {
	inc := Incident{
		ID:         uuid.NewString(),
		Message:    d.Message,
		Timestamp:  time.Now(),
		SMSSent:    d.SMSSent,
		CallPlaced: d.CallPlaced,
		CallNumber: d.CallNumber,
		Recipients: append([]string(nil), d.Recipients...),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append([]Incident{inc}, r.entries...)
	if len(r.entries) > r.capacity {
		r.entries = r.entries[:r.capacity]
	}

	if r.store != nil {
		if err := r.store.Insert(inc); err != nil {
			log.Printf("incident: persist %s: %v", inc.ID, err)
		} else if err := r.store.Trim(r.capacity); err != nil {
			log.Printf("incident: trim: %v", err)
		}
	}
	return inc
}

// List returns a newest-first snapshot of the log.
func (r *Recorder) List() []Incident {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Incident(nil), r.entries...)
}

// Len returns the current log size.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Clear empties the log and its store.
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil

	if r.store != nil {
		if err := r.store.Clear(); err != nil {
			log.Printf("incident: clear store: %v", err)
		}
	}
}
