package main

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/timelyapp/timely/internal/auth"
	"github.com/timelyapp/timely/internal/config"
	"github.com/timelyapp/timely/internal/logger"
	"github.com/timelyapp/timely/internal/model"
	"github.com/timelyapp/timely/internal/provider"
	"github.com/timelyapp/timely/internal/remote"
	"github.com/timelyapp/timely/internal/store"
	"github.com/timelyapp/timely/internal/syncqueue"
)

// staticIdentity lets data commands act for an explicit --user without a
// signin round-trip in the same process.
type staticIdentity string

func (s staticIdentity) CurrentUserID() string { return string(s) }

// app wires the client stack for one command invocation.
type app struct {
	cfg       *config.Config
	log       zerolog.Logger
	auth      *auth.Service
	gateway   *remote.Gateway
	queue     *syncqueue.Executor
	store     *store.Store
	providers map[model.Platform]provider.Client
}

func newApp() (*app, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, err
	}
	log := logger.New("timely")

	authSvc := auth.NewService(cfg.IdentityBaseURL, cfg.HTTPTimeout, log)
	gateway := remote.NewGateway(cfg.SyncBaseURL, cfg.HTTPTimeout, cfg.Timezone, log)
	queue := syncqueue.New(syncqueue.Config{Logger: log})

	var ids store.Identity = authSvc
	if userFlag != "" {
		ids = staticIdentity(userFlag)
	}
	st := store.New(gateway, ids, queue, cfg.Timezone, log)

	providers := map[model.Platform]provider.Client{
		model.PlatformGoogleMeet: provider.NewMeetClient(
			cfg.GoogleBaseURL,
			provider.StaticTokenSource(cfg.GoogleAccessToken),
			cfg.HTTPTimeout,
			log,
		),
		model.PlatformTeams: provider.NewTeamsClient(cfg.TeamsSandbox, log),
	}
	if cfg.ZoomAccountID != "" {
		tokens := provider.NewZoomTokenSource(
			cfg.ZoomTokenURL, cfg.ZoomAccountID, cfg.ZoomClientID, cfg.ZoomClientSecret,
			cfg.HTTPTimeout, log,
		)
		providers[model.PlatformZoom] = provider.NewZoomClient(cfg.ZoomBaseURL, tokens, cfg.HTTPTimeout, log)
	}

	return &app{
		cfg:       cfg,
		log:       log,
		auth:      authSvc,
		gateway:   gateway,
		queue:     queue,
		store:     st,
		providers: providers,
	}, nil
}

// Close flushes pending remote writes and stops the executor.
func (a *app) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.store.Flush(ctx); err != nil {
		a.log.Warn().Err(err).Msg("flush on exit failed")
	}
	a.queue.Stop()
}
