package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	appConfig "github.com/festy23/stagebot/internal/config"
	"github.com/festy23/stagebot/internal/forge"
	membershipModel "github.com/festy23/stagebot/internal/membership/model"
	membershipService "github.com/festy23/stagebot/internal/membership/service"
	reviewService "github.com/festy23/stagebot/internal/review/service"
	stageService "github.com/festy23/stagebot/internal/stage/service"
	webhookService "github.com/festy23/stagebot/internal/webhook/service"
	"github.com/festy23/stagebot/pkg/logger"
	"github.com/festy23/stagebot/pkg/retry"
)

// app holds the wired components shared by both commands.
type app struct {
	cfg      appConfig.Config
	logger   *zap.SugaredLogger
	forge    *forge.GitHubClient
	resolver membershipService.Resolver
	service  webhookService.Service
}

func newApp(cfg appConfig.Config) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.NewWithConfig(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	client, err := forge.NewClient(cfg.Forge)
	if err != nil {
		return nil, fmt.Errorf("failed to create forge client: %w", err)
	}

	resolver := membershipService.New(client, cfg.Forge.Org, cfg.Forge.CoreTeam, log)
	aggregator := reviewService.New(client, resolver, log)
	store := stageService.New(client, log)

	return &app{
		cfg:      cfg,
		logger:   log,
		forge:    client,
		resolver: resolver,
		service:  webhookService.New(client, resolver, aggregator, store, log),
	}, nil
}

// preflight checks that the forge is reachable and the core team exists.
// Transient network failures are retried; a missing team is not.
func (a *app) preflight(ctx context.Context) error {
	cfg := a.cfg.Forge.Preflight
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		a.logger.Warnw("forge preflight failed, retrying", "attempt", attempt, "delay", delay, "error", err)
	}

	team, err := retry.DoWithResult(ctx, cfg, func() (string, error) {
		if err := a.forge.Ping(ctx); err != nil {
			return "", err
		}
		team, err := a.resolver.CoreTeam(ctx)
		if errors.Is(err, membershipModel.ErrTeamNotFound) {
			return "", retry.Permanent(err)
		}
		if err != nil {
			return "", err
		}
		return team.Slug, nil
	})
	if err != nil {
		return fmt.Errorf("forge preflight failed: %w", err)
	}

	a.logger.Infow("forge preflight passed", "org", a.cfg.Forge.Org, "team", team)
	return nil
}

func (a *app) close() {
	_ = a.logger.Sync()
}
