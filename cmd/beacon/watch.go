package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/beaconsafe/beacon/internal/config"
	"github.com/beaconsafe/beacon/internal/daemon"
	"github.com/beaconsafe/beacon/internal/trigger"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var configPath string
	var message string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Arm the SOS triggers and watch for alerts",
		Long: "Runs the Beacon daemon: arms the configured trigger detectors, dispatches an alert whenever one fires, and posts incidents to the ops channel. " +
			"On a terminal host, pressing Enter repeatedly stands in for the hardware button sequence and typing 'sos' triggers a manual alert.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, configPath, message)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "beacon.yaml", "path to Beacon config file")
	cmd.Flags().StringVarP(&message, "message", "m", defaultMessage, "alert message text")
	return cmd
}

func runWatch(cmd *cobra.Command, configPath, message string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	out := cmd.OutOrStdout()
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	comp, err := buildComponents(ctx, cfg, out)
	if err != nil {
		return err
	}
	if comp.ops != nil {
		defer comp.ops.Close()
	}

	bus := trigger.NewBus()
	button := trigger.NewManualButton()
	presses := newKeyPressSource(cmd.InOrStdin(), button)

	var sources []daemon.NamedSource
	sources = append(sources, daemon.NamedSource{Kind: trigger.SourceManual, Source: button})
	if cfg.Triggers.Shake.Enabled {
		sources = append(sources, daemon.NamedSource{
			Kind: trigger.SourceShake,
			Source: trigger.NewShakeDetector(trigger.ShakeOpts{
				Interval:  time.Duration(cfg.Triggers.Shake.SampleIntervalMS) * time.Millisecond,
				Threshold: cfg.Triggers.Shake.Threshold,
				Count:     cfg.Triggers.Shake.Count,
				Window:    time.Duration(cfg.Triggers.Shake.WindowMS) * time.Millisecond,
			}),
		})
	}
	if cfg.Triggers.Volume.Enabled {
		sources = append(sources, daemon.NamedSource{
			Kind: trigger.SourceVolume,
			Source: trigger.NewVolumeSequenceDetector(trigger.VolumeOpts{
				Source: presses,
				Count:  cfg.Triggers.Volume.Count,
				Window: time.Duration(cfg.Triggers.Volume.WindowMS) * time.Millisecond,
			}),
		})
	}

	d, err := daemon.New(daemon.Opts{
		Bus:         bus,
		Coordinator: comp.coordinator,
		Recorder:    comp.recorder,
		Sources:     sources,
		Ops:         comp.ops,
		DigestCron:  digestCron(cfg),
		Message:     message,
		Out:         out,
	})
	if err != nil {
		return err
	}

	presses.Run(ctx)
	return d.Run(ctx)
}

// digestCron returns the digest schedule, or empty when disabled.
func digestCron(cfg *config.Config) string {
	if !cfg.Notify.Digest.Enabled {
		return ""
	}
	return cfg.Notify.Digest.Cron
}

// keyPressSource turns terminal input lines into trigger events: an empty
// line is one hardware-button press, and "sos" presses the manual button.
// It stands in for the device key feed on hosts without one.
type keyPressSource struct {
	in     io.Reader
	button *trigger.ManualButton

	mu      sync.Mutex
	onPress func()
}

func newKeyPressSource(in io.Reader, button *trigger.ManualButton) *keyPressSource {
	return &keyPressSource{in: in, button: button}
}

// Subscribe registers the press listener (implements trigger.PressSource).
func (k *keyPressSource) Subscribe(onPress func()) (func(), error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.onPress = onPress
	return func() {
		k.mu.Lock()
		defer k.mu.Unlock()
		k.onPress = nil
	}, nil
}

// Run pumps input lines until the reader ends or the context is cancelled.
func (k *keyPressSource) Run(ctx context.Context) {
	go func() {
		scanner := bufio.NewScanner(k.in)
		for scanner.Scan() {
			if ctx.Err() != nil {
				return
			}
			line := strings.TrimSpace(scanner.Text())
			switch line {
			case "":
				k.mu.Lock()
				press := k.onPress
				k.mu.Unlock()
				if press != nil {
					press()
				}
			case "sos":
				k.button.Press()
			}
		}
	}()
}
