package permission

import (
	"context"
	"os/exec"
)

// CommandAuthorizer shells out to device commands whose exit status is the
// verdict: exit 0 means granted. An empty RequestCommand means the platform
// offers no request flow, so an unchecked grant stays denied.
type CommandAuthorizer struct {
	CheckCommand   string
	RequestCommand string
}

// Granted runs the check command.
func (a CommandAuthorizer) Granted(ctx context.Context) (bool, error) {
	return runVerdict(ctx, a.CheckCommand)
}

// Request runs the request command.
func (a CommandAuthorizer) Request(ctx context.Context) (bool, error) {
	if a.RequestCommand == "" {
		return false, nil
	}
	return runVerdict(ctx, a.RequestCommand)
}

// runVerdict executes cmdStr and maps exit 0 to granted. A non-zero exit is
// a denial, not an error; only failures to run the command at all surface
// as errors.
func runVerdict(ctx context.Context, cmdStr string) (bool, error) {
	if cmdStr == "" {
		return false, nil
	}
	cmd := exec.CommandContext(ctx, "sh", "-c", cmdStr)
	err := cmd.Run()
	if err == nil {
		return true, nil
	}
	if _, ok := err.(*exec.ExitError); ok {
		return false, nil
	}
	return false, err
}
