// Package service routes webhook events to the stage transition handlers.
package service

import (
	"context"
	"fmt"
	"iter"

	"go.uber.org/zap"

	forgeModel "github.com/festy23/stagebot/internal/forge/model"
	membershipService "github.com/festy23/stagebot/internal/membership/service"
	reviewService "github.com/festy23/stagebot/internal/review/service"
	stageService "github.com/festy23/stagebot/internal/stage/service"
	"github.com/festy23/stagebot/internal/webhook/model"
)

// ForgeAPI is the subset of the forge client the handlers call directly.
type ForgeAPI interface {
	GetIssue(ctx context.Context, ref forgeModel.IssueRef) (*forgeModel.Issue, error)
	CreateComment(ctx context.Context, ref forgeModel.IssueRef, body string) error
	RequestReviewers(ctx context.Context, pr forgeModel.IssueRef, reviewers []string) error
	SearchPullRequestsByCommit(
		ctx context.Context,
		repo forgeModel.Repository,
		sha string,
	) iter.Seq2[*forgeModel.Issue, error]
}

// Service defines the interface for webhook event processing.
type Service interface {
	// Dispatch runs the handler registered for the event's kind and action.
	// Events without a handler are reported as ignored.
	Dispatch(ctx context.Context, event *model.Event) (model.Result, error)
}

// HandlerFunc handles one routed event with a logger scoped to the delivery.
type HandlerFunc func(ctx context.Context, event *model.Event, logger *zap.SugaredLogger) (model.Result, error)

type routeKey struct {
	kind   string
	action string
}

type service struct {
	forge      ForgeAPI
	resolver   membershipService.Resolver
	aggregator reviewService.Aggregator
	store      stageService.Store
	easterEgg  EasterEggFunc
	logger     *zap.SugaredLogger
	routes     map[routeKey]HandlerFunc
}

// Option customizes the service.
type Option func(*service)

// WithEasterEgg replaces the random changes-requested footer.
func WithEasterEgg(fn EasterEggFunc) Option {
	return func(s *service) {
		s.easterEgg = fn
	}
}

// New creates a new webhook service instance.
func New(
	forge ForgeAPI,
	resolver membershipService.Resolver,
	aggregator reviewService.Aggregator,
	store stageService.Store,
	logger *zap.SugaredLogger,
	opts ...Option,
) Service {
	s := &service{
		forge:      forge,
		resolver:   resolver,
		aggregator: aggregator,
		store:      store,
		easterEgg:  randomEasterEgg,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.routes = map[routeKey]HandlerFunc{
		{model.KindPullRequest, model.ActionOpened}:           s.handleOpened,
		{model.KindPullRequest, model.ActionReadyForReview}:   s.handleOpened,
		{model.KindPullRequest, model.ActionConvertedToDraft}: s.handleConvertedToDraft,
		{model.KindPullRequest, model.ActionClosed}:           s.handleClosed,
		{model.KindPullRequestReview, model.ActionSubmitted}:  s.handleReviewSubmitted,
		{model.KindPullRequestReview, model.ActionDismissed}:  s.handleReviewDismissed,
		{model.KindIssueComment, model.ActionCreated}:         s.handleCommentCreated,
		{model.KindPush, ""}:                                  s.handlePush,
	}

	return s
}

func (s *service) Dispatch(ctx context.Context, event *model.Event) (model.Result, error) {
	if event.Kind == "" {
		return "", model.ErrMissingEventKind
	}
	if event.Payload == nil {
		return "", fmt.Errorf("%w: empty body", model.ErrMalformedPayload)
	}

	// Push payloads carry no action.
	action := event.Action()
	if event.Kind == model.KindPush {
		action = ""
	}

	logger := s.logger.With("delivery", event.DeliveryID, "event", event.Kind, "action", action)

	handle, ok := s.routes[routeKey{kind: event.Kind, action: action}]
	if !ok {
		logger.Debugw("no handler for event")
		return model.ResultIgnored, nil
	}

	result, err := handle(ctx, event, logger)
	if err != nil {
		logger.Errorw("failed to handle event", "error", err)
		return "", err
	}

	logger.Debugw("event handled", "result", result)
	return result, nil
}
