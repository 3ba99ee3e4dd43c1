package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/beaconsafe/beacon/internal/config"
	"github.com/beaconsafe/beacon/internal/incident"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past SOS dispatches",
		Long:  "Lists recorded SOS incidents, newest first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "beacon.yaml", "path to Beacon config file")
	cmd.AddCommand(newHistoryClearCmd(&configPath))
	return cmd
}

func newHistoryClearCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded incidents",
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := loadRecorder(*configPath)
			if err != nil {
				return err
			}
			n := rec.Len()
			rec.Clear()
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d incident(s)\n", n)
			return nil
		},
	}
}

func runHistory(cmd *cobra.Command, configPath string) error {
	rec, err := loadRecorder(configPath)
	if err != nil {
		return err
	}
	printIncidents(cmd.OutOrStdout(), rec.List())
	return nil
}

// loadRecorder opens the store and hydrates a recorder from it.
func loadRecorder(configPath string) (*incident.Recorder, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	gormDB, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	store, err := incident.NewGormStore(gormDB)
	if err != nil {
		return nil, err
	}
	rec := incident.NewRecorder(incident.RecorderOpts{
		Capacity: cfg.History.Capacity,
		Store:    store,
	})
	if err := rec.Load(); err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return rec, nil
}

// printIncidents renders the incident list, newest first.
func printIncidents(out io.Writer, incidents []incident.Incident) {
	if len(incidents) == 0 {
		fmt.Fprintln(out, "No incidents recorded")
		return
	}
	for _, inc := range incidents {
		fmt.Fprintf(out, "%s  sms=%-5t call=%-5t %s\n",
			inc.Timestamp.Format("2006-01-02 15:04:05"),
			inc.SMSSent, inc.CallPlaced, inc.Message)
		if inc.CallNumber != "" {
			fmt.Fprintf(out, "    called: %s\n", inc.CallNumber)
		}
		if len(inc.Recipients) > 0 {
			fmt.Fprintf(out, "    recipients: %s\n", strings.Join(inc.Recipients, ", "))
		}
	}
}
