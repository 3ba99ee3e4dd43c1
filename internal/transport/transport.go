// Package transport defines the platform messaging and dialing surfaces
// consumed by dispatch. Implementations hand alert content off to the
// device; a successful hand-off means accepted for sending, never confirmed
// delivered.
package transport

import (
	"context"
	"errors"
	"strings"
)

// ErrCannotHandle reports that the interactive send surface cannot service
// the composition. It is a normal, non-exceptional outcome that callers
// treat as a soft failure and route to the fallback send.
var ErrCannotHandle = errors.New("transport: interactive surface cannot handle composition")

// Composition is an addressed alert message ready for hand-off: the
// sanitized recipients in registry order plus the composed body.
type Composition struct {
	Recipients []string
	Body       string
}

// Address returns the platform address form for the recipient list. A single
// recipient is addressed directly; multiple recipients are joined into one
// list form. Both carry the same body to every recipient.
func (c Composition) Address() string {
	if len(c.Recipients) == 1 {
		return c.Recipients[0]
	}
	return strings.Join(c.Recipients, ";")
}

// Messenger hands alert messages to the platform messaging surfaces.
// InteractiveSend opens the user-facing send surface and reports whether the
// hand-off was accepted; ErrCannotHandle is the soft-failure outcome.
// DirectSend is the silent fallback channel.
type Messenger interface {
	InteractiveSend(ctx context.Context, comp Composition) error
	DirectSend(ctx context.Context, recipients []string, body string) error
}

// Dialer places a voice call to one phone number. Fire-and-forget: a nil
// error means the call was handed to the platform, not that it connected.
type Dialer interface {
	Dial(ctx context.Context, number string) error
}
