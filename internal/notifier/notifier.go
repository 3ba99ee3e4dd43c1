// Package notifier posts dispatch events to an ops alert channel (Slack,
// Discord). Delivery is best-effort and never influences dispatch outcomes.
package notifier

import "context"

// Adapter is the interface that platform-specific implementations must
// satisfy. Each adapter posts events to a single configured channel.
type Adapter interface {
	// Connect establishes or verifies the platform connection.
	Connect(ctx context.Context) error

	// Send posts one event to the channel.
	Send(ctx context.Context, ev Event) error

	// Close shuts down the adapter.
	Close() error
}

// Event is a dispatch occurrence formatted for display in chat.
type Event struct {
	Title    string
	Body     string
	Severity string // "info", "warning", "error", "success"
	Color    string // sidebar color hint
	Fields   []Field
}

// Field is a key-value pair displayed with an event.
type Field struct {
	Name  string
	Value string
	Short bool // hint: render side-by-side with another field
}

// Color constants for event severity.
const (
	ColorSuccess = "#36a64f"
	ColorInfo    = "#2196f3"
	ColorWarning = "#ff9800"
	ColorError   = "#e53935"
)

// SeverityColor maps a severity string to a sidebar color.
func SeverityColor(severity string) string {
	switch severity {
	case "success":
		return ColorSuccess
	case "info":
		return ColorInfo
	case "warning":
		return ColorWarning
	case "error":
		return ColorError
	default:
		return ColorInfo
	}
}
