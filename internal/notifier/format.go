package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/beaconsafe/beacon/internal/incident"
)

// FormatIncident renders one dispatch attempt as an ops event. Severity
// tracks the outcome: both channels succeeded, only one, or neither.
func FormatIncident(inc incident.Incident) Event {
	severity := incidentSeverity(inc)
	fields := []Field{
		{Name: "SMS", Value: outcomeWord(inc.SMSSent), Short: true},
		{Name: "Call", Value: outcomeWord(inc.CallPlaced), Short: true},
		{Name: "Recipients", Value: fmt.Sprintf("%d", len(inc.Recipients)), Short: true},
	}
	if inc.CallNumber != "" {
		fields = append(fields, Field{Name: "Called", Value: inc.CallNumber, Short: true})
	}

	return Event{
		Title:    "SOS dispatch " + incidentVerb(inc),
		Body:     inc.Message,
		Severity: severity,
		Color:    SeverityColor(severity),
		Fields:   fields,
	}
}

// FormatDigest summarizes the incidents since a cutoff. Returns false when
// there is nothing to report and the digest should be suppressed.
func FormatDigest(incidents []incident.Incident, since time.Time) (Event, bool) {
	var lines []string
	var failed int
	for _, inc := range incidents {
		if inc.Timestamp.Before(since) {
			continue
		}
		line := fmt.Sprintf("%s — %s (sms: %s, call: %s)",
			inc.Timestamp.Format("15:04"),
			firstLine(inc.Message),
			outcomeWord(inc.SMSSent),
			outcomeWord(inc.CallPlaced))
		lines = append(lines, line)
		if !inc.SMSSent && !inc.CallPlaced {
			failed++
		}
	}
	if len(lines) == 0 {
		return Event{}, false
	}

	severity := "info"
	if failed > 0 {
		severity = "warning"
	}
	return Event{
		Title:    fmt.Sprintf("Daily digest: %d SOS dispatch(es)", len(lines)),
		Body:     strings.Join(lines, "\n"),
		Severity: severity,
		Color:    SeverityColor(severity),
	}, true
}

// incidentSeverity maps a dispatch outcome to a severity string.
func incidentSeverity(inc incident.Incident) string {
	switch {
	case inc.SMSSent && inc.CallPlaced:
		return "success"
	case inc.SMSSent || inc.CallPlaced:
		return "warning"
	default:
		return "error"
	}
}

// incidentVerb returns a human-friendly verb for the dispatch outcome.
func incidentVerb(inc incident.Incident) string {
	switch {
	case inc.SMSSent && inc.CallPlaced:
		return "sent and called"
	case inc.SMSSent:
		return "sent"
	case inc.CallPlaced:
		return "called"
	default:
		return "failed"
	}
}

// outcomeWord renders a boolean outcome for display.
func outcomeWord(ok bool) string {
	if ok {
		return "yes"
	}
	return "no"
}

// firstLine truncates a message to its first line for digest display.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
