package trigger

import (
	"testing"
	"time"
)

func TestBus_DeliversInSubscriptionOrder(t *testing.T) {
	bus := NewBus()
	var order []string
	bus.Subscribe(func(Event) { order = append(order, "first") })
	bus.Subscribe(func(Event) { order = append(order, "second") })
	bus.Subscribe(func(Event) { order = append(order, "third") })

	bus.Publish(Event{Source: SourceManual, At: time.Now()})

	want := []string{"first", "second", "third"}
	if len(order) != len(want) {
		t.Fatalf("deliveries = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestBus_PanickingListenerIsIsolated(t *testing.T) {
	bus := NewBus()
	var delivered []string
	bus.Subscribe(func(Event) { delivered = append(delivered, "before") })
	bus.Subscribe(func(Event) { panic("listener exploded") })
	bus.Subscribe(func(Event) { delivered = append(delivered, "after") })

	bus.Publish(Event{Source: SourceShake})

	if len(delivered) != 2 {
		t.Fatalf("delivered = %v, want both healthy listeners", delivered)
	}
	if delivered[1] != "after" {
		t.Errorf("delivered[1] = %q, want %q", delivered[1], "after")
	}
}

func TestBus_UnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus()
	count := 0
	cancel := bus.Subscribe(func(Event) { count++ })

	bus.Publish(Event{Source: SourceManual})
	cancel()
	bus.Publish(Event{Source: SourceManual})

	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestBus_UnsubscribeIsIdempotent(t *testing.T) {
	bus := NewBus()
	kept := 0
	cancel := bus.Subscribe(func(Event) {})
	bus.Subscribe(func(Event) { kept++ })

	cancel()
	cancel() // second cancel must not remove the other listener

	bus.Publish(Event{Source: SourceManual})
	if kept != 1 {
		t.Errorf("kept = %d, want 1", kept)
	}
}

func TestBus_EachSubscriberReceivesEveryPublish(t *testing.T) {
	bus := NewBus()
	counts := make([]int, 3)
	for i := range counts {
		i := i
		bus.Subscribe(func(Event) { counts[i]++ })
	}

	for n := 0; n < 5; n++ {
		bus.Publish(Event{Source: SourceVolume})
	}

	for i, c := range counts {
		if c != 5 {
			t.Errorf("counts[%d] = %d, want 5", i, c)
		}
	}
}

func TestBus_PublishWithNoListeners(t *testing.T) {
	bus := NewBus()
	bus.Publish(Event{Source: SourceManual}) // must not panic
}
