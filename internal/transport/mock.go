package transport

import (
	"context"
	"sync"
)

// Mock implements Messenger and Dialer for testing. It records every
// hand-off and returns configurable errors.
type Mock struct {
	mu sync.Mutex

	InteractiveErr error
	DirectErr      error
	DialErr        error

	interactive []Composition
	direct      []Composition
	dialed      []string
}

// NewMock creates a Mock transport that accepts everything.
func NewMock() *Mock {
	return &Mock{}
}

// InteractiveSend records the composition and returns InteractiveErr.
func (m *Mock) InteractiveSend(ctx context.Context, comp Composition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interactive = append(m.interactive, comp)
	return m.InteractiveErr
}

// DirectSend records the hand-off and returns DirectErr.
func (m *Mock) DirectSend(ctx context.Context, recipients []string, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.direct = append(m.direct, Composition{Recipients: recipients, Body: body})
	return m.DirectErr
}

// Dial records the number and returns DialErr.
func (m *Mock) Dial(ctx context.Context, number string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dialed = append(m.dialed, number)
	return m.DialErr
}

// InteractiveCalls returns the recorded interactive hand-offs.
func (m *Mock) InteractiveCalls() []Composition {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Composition(nil), m.interactive...)
}

// DirectCalls returns the recorded direct hand-offs.
func (m *Mock) DirectCalls() []Composition {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Composition(nil), m.direct...)
}

// Dialed returns the recorded dial targets.
func (m *Mock) Dialed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.dialed...)
}
