package dispatch

import "strings"

// Composer builds the outgoing alert body. An empty template passes the
// dispatch message through unchanged; otherwise {{.Message}} is substituted
// into the template.
type Composer struct {
	Template string
}

// Compose renders the alert body for message.
func (c Composer) Compose(message string) string {
	if c.Template == "" {
		return message
	}
	return strings.NewReplacer("{{.Message}}", message).Replace(c.Template)
}
