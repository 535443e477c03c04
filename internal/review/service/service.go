// Package service classifies a pull request's reviewers as privileged or not.
package service

import (
	"context"
	"iter"
	"slices"

	"go.uber.org/zap"

	forgeModel "github.com/festy23/stagebot/internal/forge/model"
	membershipService "github.com/festy23/stagebot/internal/membership/service"
)

// ReviewAPI is the subset of the forge client the aggregator needs.
type ReviewAPI interface {
	ListReviews(ctx context.Context, pr forgeModel.IssueRef) iter.Seq2[*forgeModel.Review, error]
}

// Aggregator answers questions about the review history of a pull request.
// Only approving and changes-requesting reviews are considered.
type Aggregator interface {
	// PrivilegedReviewers lazily yields, in submission order, the author of every
	// substantive review written by a core developer. Names may repeat.
	PrivilegedReviewers(ctx context.Context, pr forgeModel.IssueRef) iter.Seq2[string, error]

	// HasPrivilegedReview reports whether any core developer has reviewed.
	// It stops paging at the first match.
	HasPrivilegedReview(ctx context.Context, pr forgeModel.IssueRef) (bool, error)

	// PrivilegedReviewerSet returns the distinct core-developer reviewers, sorted.
	PrivilegedReviewerSet(ctx context.Context, pr forgeModel.IssueRef) ([]string, error)

	// HasSubstantiveReview reports whether anyone has approved or requested changes.
	HasSubstantiveReview(ctx context.Context, pr forgeModel.IssueRef) (bool, error)
}

type aggregator struct {
	api      ReviewAPI
	resolver membershipService.Resolver
	logger   *zap.SugaredLogger
}

// New creates a review aggregator.
func New(api ReviewAPI, resolver membershipService.Resolver, logger *zap.SugaredLogger) Aggregator {
	return &aggregator{
		api:      api,
		resolver: resolver,
		logger:   logger,
	}
}

// PrivilegedReviewers walks the reviews afresh on every iteration.
func (a *aggregator) PrivilegedReviewers(ctx context.Context, pr forgeModel.IssueRef) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for review, err := range a.api.ListReviews(ctx, pr) {
			if err != nil {
				yield("", err)
				return
			}
			if !review.State.IsSubstantive() {
				continue
			}
			isCore, err := a.resolver.IsCoreDev(ctx, review.Author)
			if err != nil {
				yield("", err)
				return
			}
			if isCore && !yield(review.Author, nil) {
				return
			}
		}
	}
}

func (a *aggregator) HasPrivilegedReview(ctx context.Context, pr forgeModel.IssueRef) (bool, error) {
	for reviewer, err := range a.PrivilegedReviewers(ctx, pr) {
		if err != nil {
			return false, err
		}
		a.logger.Debugw("core developer already reviewed", "pr", pr.String(), "reviewer", reviewer)
		return true, nil
	}
	return false, nil
}

func (a *aggregator) PrivilegedReviewerSet(ctx context.Context, pr forgeModel.IssueRef) ([]string, error) {
	seen := make(map[string]struct{})
	reviewers := []string{}
	for reviewer, err := range a.PrivilegedReviewers(ctx, pr) {
		if err != nil {
			return nil, err
		}
		if _, ok := seen[reviewer]; ok {
			continue
		}
		seen[reviewer] = struct{}{}
		reviewers = append(reviewers, reviewer)
	}
	slices.Sort(reviewers)
	return reviewers, nil
}

func (a *aggregator) HasSubstantiveReview(ctx context.Context, pr forgeModel.IssueRef) (bool, error) {
	for review, err := range a.api.ListReviews(ctx, pr) {
		if err != nil {
			return false, err
		}
		if review.State.IsSubstantive() {
			return true, nil
		}
	}
	return false, nil
}
