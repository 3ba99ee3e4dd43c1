package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/beaconsafe/beacon/internal/config"
	"github.com/beaconsafe/beacon/internal/trigger"
	"github.com/spf13/cobra"
)

// defaultMessage is the alert body used when none is given.
const defaultMessage = "EMERGENCY! I need help. This is an automated SOS alert."

func newSosCmd() *cobra.Command {
	var configPath string
	var message string

	cmd := &cobra.Command{
		Use:   "sos",
		Short: "Send an SOS alert now",
		Long:  "Manually triggers one emergency dispatch: SMS to all contacts with a phone number, a call to the primary contact, and an incident record.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSos(cmd, configPath, message)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "beacon.yaml", "path to Beacon config file")
	cmd.Flags().StringVarP(&message, "message", "m", defaultMessage, "alert message text")
	return cmd
}

func runSos(cmd *cobra.Command, configPath, message string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if strings.TrimSpace(message) == "" {
		message = defaultMessage
	}

	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	comp, err := buildComponents(ctx, cfg, out)
	if err != nil {
		return err
	}
	if comp.ops != nil {
		defer comp.ops.Close()
	}

	// Run the manual trigger through the same bus path the watch daemon
	// uses, so a button press and a CLI invocation behave identically.
	bus := trigger.NewBus()
	button := trigger.NewManualButton()

	done := make(chan struct{})
	bus.Subscribe(func(ev trigger.Event) {
		defer close(done)
		result := comp.coordinator.Dispatch(ctx, message)
		fmt.Fprintf(out, "SMS initiated:  %t\n", result.SMSInitiated)
		fmt.Fprintf(out, "Call initiated: %t\n", result.CallInitiated)
		fmt.Fprintf(out, "Recipients:     %s\n", strings.Join(result.Recipients, ", "))
	})

	if err := button.Start(func() {
		bus.Publish(trigger.Event{Source: trigger.SourceManual, At: time.Now()})
	}); err != nil {
		return fmt.Errorf("arm manual trigger: %w", err)
	}
	defer button.Stop()

	button.Press()
	<-done
	return nil
}
