package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/beaconsafe/beacon/internal/config"
	"github.com/beaconsafe/beacon/internal/contacts"
	"github.com/beaconsafe/beacon/internal/db"
	"github.com/beaconsafe/beacon/internal/dispatch"
	"github.com/beaconsafe/beacon/internal/incident"
	"github.com/beaconsafe/beacon/internal/notifier"
	"github.com/beaconsafe/beacon/internal/notifier/discord"
	"github.com/beaconsafe/beacon/internal/notifier/slack"
	"github.com/beaconsafe/beacon/internal/permission"
	"github.com/beaconsafe/beacon/internal/reachability"
	"github.com/beaconsafe/beacon/internal/transport"
	"gorm.io/gorm"
)

// components is the composed dispatch pipeline shared by the sos and watch
// commands. Platform implementations (transport, permission, ops channel)
// are selected here, once, at startup.
type components struct {
	db          *gorm.DB
	repo        *contacts.Repo
	recorder    *incident.Recorder
	coordinator *dispatch.Coordinator
	ops         notifier.Adapter // nil when no platform configured
}

// openStore connects to the configured store and runs migrations.
func openStore(cfg *config.Config) (*gorm.DB, error) {
	gormDB, err := db.Open(cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(gormDB); err != nil {
		return nil, err
	}
	return gormDB, nil
}

// buildComponents composes the dispatch pipeline from config. The ops
// adapter is connected best-effort: a failure logs and the pipeline runs
// without it.
func buildComponents(ctx context.Context, cfg *config.Config, out io.Writer) (*components, error) {
	gormDB, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	repo, err := contacts.NewRepo(gormDB)
	if err != nil {
		return nil, err
	}

	store, err := incident.NewGormStore(gormDB)
	if err != nil {
		return nil, err
	}
	recorder := incident.NewRecorder(incident.RecorderOpts{
		Capacity: cfg.History.Capacity,
		Store:    store,
	})
	if err := recorder.Load(); err != nil {
		log.Printf("beacon: load incident history: %v", err)
	}

	shell := transport.NewShell(
		cfg.Transport.ViewCommand,
		cfg.Transport.SendCommand,
		cfg.Transport.DialCommand,
	)

	probe := reachability.NewNetProbe(
		cfg.Reachability.ProbeHost,
		cfg.Reachability.ProbeURL,
		time.Duration(cfg.Reachability.TimeoutSec)*time.Second,
	)

	gateway := buildGateway(cfg.Permission)

	ops := buildOps(ctx, cfg.Notify, out)

	coordinator, err := dispatch.New(dispatch.Opts{
		Contacts:   repo,
		Probe:      probe,
		Permission: gateway,
		Messenger:  shell,
		Dialer:     shell,
		Recorder:   recorder,
		Ops:        ops,
		Composer:   dispatch.Composer{Template: cfg.Message.Template},
		Advise: func(text string) {
			fmt.Fprintf(out, "! %s\n", text)
		},
	})
	if err != nil {
		return nil, err
	}

	return &components{
		db:          gormDB,
		repo:        repo,
		recorder:    recorder,
		coordinator: coordinator,
		ops:         ops,
	}, nil
}

// buildGateway selects the permission gateway implementation for this
// platform configuration.
func buildGateway(cfg config.PermissionConfig) dispatch.PermissionGateway {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	switch cfg.Mode {
	case "denied":
		return permission.NewGateway(permission.Static(false), timeout)
	case "command":
		return permission.NewGateway(permission.CommandAuthorizer{
			CheckCommand:   cfg.CheckCommand,
			RequestCommand: cfg.RequestCommand,
		}, timeout)
	default:
		return permission.NewGateway(permission.Static(true), timeout)
	}
}

// buildOps creates and connects the configured ops alert adapter, or returns
// nil when no platform is configured or the connection fails.
func buildOps(ctx context.Context, cfg config.NotifyConfig, out io.Writer) notifier.Adapter {
	var adapter notifier.Adapter
	var err error

	switch cfg.Platform {
	case "slack":
		adapter, err = slack.New(slack.AdapterOpts{
			BotToken:  cfg.Slack.BotToken,
			ChannelID: cfg.Slack.ChannelID,
		})
	case "discord":
		adapter, err = discord.New(discord.AdapterOpts{
			BotToken:  cfg.Discord.BotToken,
			ChannelID: cfg.Discord.ChannelID,
		})
	default:
		return nil
	}
	if err != nil {
		log.Printf("beacon: build %s adapter: %v", cfg.Platform, err)
		return nil
	}

	if err := adapter.Connect(ctx); err != nil {
		log.Printf("beacon: connect %s: %v", cfg.Platform, err)
		fmt.Fprintf(out, "Ops channel (%s) unavailable; continuing without it\n", cfg.Platform)
		return nil
	}
	return adapter
}
