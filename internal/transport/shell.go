package transport

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Shell implements Messenger and Dialer through configurable device command
// templates, one Shell per platform configuration. Placeholders: {{.To}} is
// the address form, {{.Body}} the message text, {{.Number}} the dial target.
type Shell struct {
	ViewCommand string // interactive send surface; empty = surface absent
	SendCommand string // silent/direct send surface
	DialCommand string // dialer surface

	// runner overrides command execution in tests.
	runner func(ctx context.Context, cmdStr string) error
}

// NewShell creates a Shell transport from command templates.
func NewShell(viewCommand, sendCommand, dialCommand string) *Shell {
	return &Shell{
		ViewCommand: viewCommand,
		SendCommand: sendCommand,
		DialCommand: dialCommand,
	}
}

// InteractiveSend launches the device's user-facing send surface with the
// composition pre-filled. An absent or missing command is ErrCannotHandle.
func (s *Shell) InteractiveSend(ctx context.Context, comp Composition) error {
	if s.ViewCommand == "" {
		return ErrCannotHandle
	}
	cmdStr := expand(s.ViewCommand, map[string]string{
		"{{.To}}":   comp.Address(),
		"{{.Body}}": comp.Body,
	})
	if err := s.run(ctx, cmdStr); err != nil {
		return fmt.Errorf("transport: interactive send: %w", err)
	}
	return nil
}

// DirectSend sends the body to every recipient through the silent channel.
// The first command failure aborts and is returned.
func (s *Shell) DirectSend(ctx context.Context, recipients []string, body string) error {
	if s.SendCommand == "" {
		return fmt.Errorf("transport: no direct send command configured")
	}
	for _, to := range recipients {
		cmdStr := expand(s.SendCommand, map[string]string{
			"{{.To}}":   to,
			"{{.Body}}": body,
		})
		if err := s.run(ctx, cmdStr); err != nil {
			return fmt.Errorf("transport: direct send to %s: %w", to, err)
		}
	}
	return nil
}

// Dial hands one phone number to the dialer surface.
func (s *Shell) Dial(ctx context.Context, number string) error {
	if s.DialCommand == "" {
		return fmt.Errorf("transport: no dial command configured")
	}
	cmdStr := expand(s.DialCommand, map[string]string{
		"{{.Number}}": number,
	})
	if err := s.run(ctx, cmdStr); err != nil {
		return fmt.Errorf("transport: dial %s: %w", number, err)
	}
	return nil
}

// run executes one expanded command line via the shell.
func (s *Shell) run(ctx context.Context, cmdStr string) error {
	if s.runner != nil {
		return s.runner(ctx, cmdStr)
	}
	cmd := exec.CommandContext(ctx, "sh", "-c", cmdStr)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// expand substitutes placeholder values into a command template. Values are
// single-quoted for the shell with embedded quotes escaped.
func expand(template string, values map[string]string) string {
	pairs := make([]string, 0, len(values)*2)
	for k, v := range values {
		pairs = append(pairs, k, shellQuote(v))
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// shellQuote wraps v in single quotes, escaping any embedded single quotes.
func shellQuote(v string) string {
	return "'" + strings.ReplaceAll(v, "'", `'\''`) + "'"
}
