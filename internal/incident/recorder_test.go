package incident

import (
	"fmt"
	"sync"
	"testing"
)

// --- Capacity and ordering ---

func TestRecorder_AppendAssignsIDAndTimestamp(t *testing.T) {
	r := NewRecorder(RecorderOpts{})
	inc := r.Append(Draft{Message: "help", Recipients: []string{"111"}})

	if inc.ID == "" {
		t.Error("ID not assigned")
	}
	if inc.Timestamp.IsZero() {
		t.Error("Timestamp not assigned")
	}
	if inc.Message != "help" {
		t.Errorf("Message = %q, want %q", inc.Message, "help")
	}
}

func TestRecorder_NewestFirst(t *testing.T) {
	r := NewRecorder(RecorderOpts{})
	for i := 0; i < 3; i++ {
		r.Append(Draft{Message: fmt.Sprintf("msg-%d", i)})
	}

	list := r.List()
	if len(list) != 3 {
		t.Fatalf("len = %d, want 3", len(list))
	}
	for i, want := range []string{"msg-2", "msg-1", "msg-0"} {
		if list[i].Message != want {
			t.Errorf("list[%d].Message = %q, want %q", i, list[i].Message, want)
		}
	}
}

func TestRecorder_CapacityEvictsOldest(t *testing.T) {
	r := NewRecorder(RecorderOpts{})
	for i := 0; i < 105; i++ {
		r.Append(Draft{Message: fmt.Sprintf("msg-%d", i)})
	}

	list := r.List()
	if len(list) != 100 {
		t.Fatalf("len = %d, want 100", len(list))
	}
	if list[0].Message != "msg-104" {
		t.Errorf("newest = %q, want %q", list[0].Message, "msg-104")
	}
	if list[99].Message != "msg-5" {
		t.Errorf("oldest = %q, want %q (msgs 0-4 evicted)", list[99].Message, "msg-5")
	}
}

func TestRecorder_CustomCapacity(t *testing.T) {
	r := NewRecorder(RecorderOpts{Capacity: 2})
	r.Append(Draft{Message: "a"})
	r.Append(Draft{Message: "b"})
	r.Append(Draft{Message: "c"})

	list := r.List()
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[0].Message != "c" || list[1].Message != "b" {
		t.Errorf("list = [%q, %q], want [c, b]", list[0].Message, list[1].Message)
	}
}

// --- Immutability of snapshots ---

func TestRecorder_ListReturnsCopy(t *testing.T) {
	r := NewRecorder(RecorderOpts{})
	r.Append(Draft{Message: "original"})

	list := r.List()
	list[0].Message = "mutated"

	if got := r.List()[0].Message; got != "original" {
		t.Errorf("Message = %q, want %q", got, "original")
	}
}

func TestRecorder_DraftRecipientsCopied(t *testing.T) {
	r := NewRecorder(RecorderOpts{})
	recipients := []string{"111"}
	r.Append(Draft{Recipients: recipients})
	recipients[0] = "999"

	if got := r.List()[0].Recipients[0]; got != "111" {
		t.Errorf("Recipients[0] = %q, want %q", got, "111")
	}
}

// --- Clear ---

func TestRecorder_Clear(t *testing.T) {
	r := NewRecorder(RecorderOpts{})
	r.Append(Draft{Message: "a"})
	r.Append(Draft{Message: "b"})
	r.Clear()

	if n := r.Len(); n != 0 {
		t.Errorf("Len = %d, want 0", n)
	}
}

// --- Concurrency ---

func TestRecorder_ConcurrentAppendsKeepBound(t *testing.T) {
	r := NewRecorder(RecorderOpts{Capacity: 50})
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				r.Append(Draft{Message: fmt.Sprintf("g%d-%d", n, j)})
			}
		}(i)
	}
	wg.Wait()

	if n := r.Len(); n != 50 {
		t.Errorf("Len = %d, want 50", n)
	}
}

// boundedStore mimics the persistent table and verifies the capacity bound
// holds at every point: insert/trim pairs from overlapping appends must not
// interleave.
type boundedStore struct {
	mu       sync.Mutex
	capacity int
	rows     int
	over     int // inserts observed while already at capacity+1 or more
}

func (s *boundedStore) Insert(inc Incident) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rows > s.capacity {
		s.over++
	}
	s.rows++
	return nil
}

func (s *boundedStore) Trim(capacity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rows > capacity {
		s.rows = capacity
	}
	return nil
}

func (s *boundedStore) Recent(limit int) ([]Incident, error) { return nil, nil }

func (s *boundedStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = 0
	return nil
}

func TestRecorder_ConcurrentAppendsKeepStoreBound(t *testing.T) {
	store := &boundedStore{capacity: 3}
	r := NewRecorder(RecorderOpts{Capacity: 3, Store: store})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				r.Append(Draft{Message: fmt.Sprintf("g%d-%d", n, j)})
			}
		}(i)
	}
	wg.Wait()

	if store.over != 0 {
		t.Errorf("store exceeded its bound %d time(s) between appends", store.over)
	}
	if store.rows != 3 {
		t.Errorf("store rows = %d, want 3", store.rows)
	}
}
