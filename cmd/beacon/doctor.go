package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/beaconsafe/beacon/internal/config"
	"github.com/beaconsafe/beacon/internal/contacts"
	"github.com/beaconsafe/beacon/internal/db"
	"github.com/beaconsafe/beacon/internal/reachability"
	"github.com/spf13/cobra"
)

func newDoctorCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check system prerequisites and configuration",
		Long:  "Runs diagnostic checks on Beacon prerequisites: config, store, contacts, transport commands, and network reachability.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "beacon.yaml", "path to Beacon config file")
	return cmd
}

type checkResult struct {
	name   string
	status string // "PASS", "FAIL", "WARN"
	detail string
}

func runDoctor(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Beacon Doctor")
	fmt.Fprintln(out, "=============")

	var results []checkResult

	// 1. Config
	cfg, cfgResult := checkConfig(configPath)
	results = append(results, cfgResult)

	// 2. Store
	if cfg != nil {
		results = append(results, checkStore(cfg))
	} else {
		results = append(results, checkResult{"Store", "FAIL", "skipped (no config)"})
	}

	// 3. Contacts
	if cfg != nil {
		results = append(results, checkContacts(cfg))
	} else {
		results = append(results, checkResult{"Contacts", "FAIL", "skipped (no config)"})
	}

	// 4. Transport commands
	if cfg != nil {
		results = append(results, checkTransport(cfg))
	} else {
		results = append(results, checkResult{"Transport", "FAIL", "skipped (no config)"})
	}

	// 5. Reachability
	if cfg != nil {
		results = append(results, checkReachability(cmd.Context(), cfg))
	} else {
		results = append(results, checkResult{"Reachability", "FAIL", "skipped (no config)"})
	}

	failed := 0
	for _, r := range results {
		fmt.Fprintf(out, "[%s] %-14s %s\n", r.status, r.name, r.detail)
		if r.status == "FAIL" {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("doctor: %d check(s) failed", failed)
	}
	fmt.Fprintln(out, "All checks passed")
	return nil
}

func checkConfig(path string) (*config.Config, checkResult) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, checkResult{"Config", "FAIL", err.Error()}
	}
	return cfg, checkResult{"Config", "PASS", path}
}

func checkStore(cfg *config.Config) checkResult {
	gormDB, err := openStore(cfg)
	if err != nil {
		return checkResult{"Store", "FAIL", err.Error()}
	}
	sqlDB, err := gormDB.DB()
	if err == nil {
		defer sqlDB.Close()
		if err := sqlDB.Ping(); err != nil {
			return checkResult{"Store", "FAIL", err.Error()}
		}
	}
	detail := cfg.Store.Path
	if cfg.Store.Driver == "mysql" {
		detail = db.DSN("root", "", cfg.Store.Host, cfg.Store.Port, cfg.Store.Database)
	}
	return checkResult{"Store", "PASS", detail}
}

func checkContacts(cfg *config.Config) checkResult {
	gormDB, err := openStore(cfg)
	if err != nil {
		return checkResult{"Contacts", "FAIL", err.Error()}
	}
	repo, err := contacts.NewRepo(gormDB)
	if err != nil {
		return checkResult{"Contacts", "FAIL", err.Error()}
	}
	reg, err := repo.Snapshot()
	if err != nil {
		return checkResult{"Contacts", "FAIL", err.Error()}
	}
	res := contacts.Resolve(reg)
	if len(res.Recipients) == 0 {
		return checkResult{"Contacts", "WARN", "no contacts with phone numbers; dispatch will abort"}
	}
	return checkResult{"Contacts", "PASS", fmt.Sprintf("%d recipient(s)", len(res.Recipients))}
}

func checkTransport(cfg *config.Config) checkResult {
	var missing []string
	if cfg.Transport.SendCommand == "" {
		missing = append(missing, "send_command")
	}
	if cfg.Transport.DialCommand == "" {
		missing = append(missing, "dial_command")
	}
	if len(missing) > 0 {
		return checkResult{"Transport", "WARN", "not configured: " + strings.Join(missing, ", ")}
	}
	return checkResult{"Transport", "PASS", "send and dial commands configured"}
}

func checkReachability(ctx context.Context, cfg *config.Config) checkResult {
	probe := reachability.NewNetProbe(
		cfg.Reachability.ProbeHost,
		cfg.Reachability.ProbeURL,
		time.Duration(cfg.Reachability.TimeoutSec)*time.Second,
	)
	status := probe.Check(ctx)
	switch {
	case status.InternetReachable:
		return checkResult{"Reachability", "PASS", "internet reachable"}
	case status.Connected:
		return checkResult{"Reachability", "WARN", "connected but no internet; direct send path will be used"}
	default:
		return checkResult{"Reachability", "WARN", "offline; direct send path will be used"}
	}
}
