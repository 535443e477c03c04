package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/festy23/stagebot/internal/forge"
	forgeModel "github.com/festy23/stagebot/internal/forge/model"
	stageModel "github.com/festy23/stagebot/internal/stage/model"
	"github.com/festy23/stagebot/internal/webhook/model"
)

// pullRequestIssue validates the pull request of the event and fetches its label carrier.
func (s *service) pullRequestIssue(
	ctx context.Context,
	payload *model.Payload,
) (*model.PullRequest, *forgeModel.Issue, error) {
	ref, err := payload.PullRequestRef()
	if err != nil {
		return nil, nil, err
	}
	issue, err := s.forge.GetIssue(ctx, ref)
	if err != nil {
		return nil, nil, err
	}
	return payload.PullRequest, issue, nil
}

// handleOpened assigns the initial stage to a pull request that is ready for review.
func (s *service) handleOpened(
	ctx context.Context,
	event *model.Event,
	logger *zap.SugaredLogger,
) (model.Result, error) {
	pr, err := event.Payload.RequirePullRequest()
	if err != nil {
		return "", err
	}
	if pr.Draft {
		logger.Debugw("draft pull request, stage not assigned", "number", pr.Number)
		return model.ResultIgnored, nil
	}

	_, issue, err := s.pullRequestIssue(ctx, event.Payload)
	if err != nil {
		return "", err
	}

	isCore, err := s.resolver.IsCoreDev(ctx, pr.User.Login)
	if err != nil {
		return "", err
	}

	target := stageModel.Review
	if isCore {
		target = stageModel.CoreReview
	}
	if err := s.store.SetStage(ctx, issue, target); err != nil {
		return "", err
	}

	logger.Infow("initial stage assigned", "pr", issue.Ref.String(), "author", pr.User.Login, "stage", target.String())
	return model.ResultProcessed, nil
}

func (s *service) handleConvertedToDraft(
	ctx context.Context,
	event *model.Event,
	logger *zap.SugaredLogger,
) (model.Result, error) {
	_, issue, err := s.pullRequestIssue(ctx, event.Payload)
	if err != nil {
		return "", err
	}
	if err := s.store.ClearStages(ctx, issue); err != nil {
		return "", err
	}

	logger.Infow("stage tracking paused for draft", "pr", issue.Ref.String())
	return model.ResultProcessed, nil
}

func (s *service) handleClosed(
	ctx context.Context,
	event *model.Event,
	logger *zap.SugaredLogger,
) (model.Result, error) {
	pr, err := event.Payload.RequirePullRequest()
	if err != nil {
		return "", err
	}
	if !pr.Merged {
		return model.ResultIgnored, nil
	}

	_, issue, err := s.pullRequestIssue(ctx, event.Payload)
	if err != nil {
		return "", err
	}
	if err := s.store.ClearStages(ctx, issue); err != nil {
		return "", err
	}

	logger.Infow("stage labels cleared after merge", "pr", issue.Ref.String())
	return model.ResultProcessed, nil
}

// handleReviewSubmitted moves the stage according to who reviewed and how.
func (s *service) handleReviewSubmitted(
	ctx context.Context,
	event *model.Event,
	logger *zap.SugaredLogger,
) (model.Result, error) {
	review, err := event.Payload.RequireReview()
	if err != nil {
		return "", err
	}
	ref, err := event.Payload.PullRequestRef()
	if err != nil {
		return "", err
	}

	state := forgeModel.ParseReviewState(review.State)
	if !state.IsSubstantive() {
		return model.ResultIgnored, nil
	}

	reviewer := review.User.Login
	isCore, err := s.resolver.IsCoreDev(ctx, reviewer)
	if err != nil {
		return "", err
	}

	if !isCore {
		reviewed, err := s.aggregator.HasPrivilegedReview(ctx, ref)
		if err != nil {
			return "", err
		}
		if reviewed {
			// A core developer already looked at it; a contributor review changes nothing.
			return model.ResultIgnored, nil
		}
		return s.transition(ctx, event.Payload, stageModel.CoreReview, logger, "reviewer", reviewer)
	}

	if state == forgeModel.ReviewStateApproved {
		return s.approve(ctx, event.Payload, reviewer, logger)
	}
	return s.requestChanges(ctx, event.Payload, reviewer, logger)
}

func (s *service) approve(
	ctx context.Context,
	payload *model.Payload,
	reviewer string,
	logger *zap.SugaredLogger,
) (model.Result, error) {
	_, issue, err := s.pullRequestIssue(ctx, payload)
	if err != nil {
		return "", err
	}
	if !issue.IsOpen() {
		logger.Debugw("approval on closed pull request", "pr", issue.Ref.String())
		return model.ResultIgnored, nil
	}
	if err := s.store.SetStage(ctx, issue, stageModel.Merge); err != nil {
		return "", err
	}

	logger.Infow("approved by core developer", "pr", issue.Ref.String(), "reviewer", reviewer)
	return model.ResultProcessed, nil
}

func (s *service) requestChanges(
	ctx context.Context,
	payload *model.Payload,
	reviewer string,
	logger *zap.SugaredLogger,
) (model.Result, error) {
	pr, issue, err := s.pullRequestIssue(ctx, payload)
	if err != nil {
		return "", err
	}
	if issue.HasLabel(stageModel.Changes.Label()) {
		// The author was already told what to do for this round.
		return model.ResultIgnored, nil
	}

	authorIsCore, err := s.resolver.IsCoreDev(ctx, pr.User.Login)
	if err != nil {
		return "", err
	}

	if err := s.store.SetStage(ctx, issue, stageModel.Changes); err != nil {
		return "", err
	}
	if err := s.forge.CreateComment(ctx, issue.Ref, changesRequestedComment(authorIsCore, s.easterEgg())); err != nil {
		return "", err
	}

	logger.Infow("changes requested by core developer", "pr", issue.Ref.String(), "reviewer", reviewer)
	return model.ResultProcessed, nil
}

// handleReviewDismissed recomputes the stage from the reviews that still stand.
func (s *service) handleReviewDismissed(
	ctx context.Context,
	event *model.Event,
	logger *zap.SugaredLogger,
) (model.Result, error) {
	pr, err := event.Payload.RequirePullRequest()
	if err != nil {
		return "", err
	}
	if pr.Draft || pr.Merged {
		return model.ResultIgnored, nil
	}
	ref, err := event.Payload.PullRequestRef()
	if err != nil {
		return "", err
	}

	reviewed, err := s.aggregator.HasPrivilegedReview(ctx, ref)
	if err != nil {
		return "", err
	}
	if reviewed {
		return model.ResultIgnored, nil
	}

	substantive, err := s.aggregator.HasSubstantiveReview(ctx, ref)
	if err != nil {
		return "", err
	}

	target := stageModel.Review
	if substantive {
		target = stageModel.CoreReview
	}
	return s.transition(ctx, event.Payload, target, logger, "reason", "review dismissed")
}

// handleCommentCreated hands a pull request back to its reviewers when the author says so.
func (s *service) handleCommentCreated(
	ctx context.Context,
	event *model.Event,
	logger *zap.SugaredLogger,
) (model.Result, error) {
	payloadIssue, err := event.Payload.RequireIssue()
	if err != nil {
		return "", err
	}
	if payloadIssue.PullRequest == nil {
		return model.ResultIgnored, nil
	}
	comment, err := event.Payload.RequireComment()
	if err != nil {
		return "", err
	}
	if comment.User.Login != payloadIssue.User.Login {
		return model.ResultIgnored, nil
	}
	triggered, fun := triggerPhrase(comment.Body)
	if !triggered {
		return model.ResultIgnored, nil
	}

	repo, err := event.Payload.RequireRepository()
	if err != nil {
		return "", err
	}
	issue := payloadIssue.ToIssue(repo)

	if err := s.store.SetStage(ctx, issue, stageModel.ChangeReview); err != nil {
		return "", err
	}

	reviewers, err := s.aggregator.PrivilegedReviewerSet(ctx, issue.Ref)
	if err != nil {
		return "", err
	}
	if err := s.forge.CreateComment(ctx, issue.Ref, acknowledgementComment(fun, reviewers)); err != nil {
		return "", err
	}
	if err := s.requestReview(ctx, issue.Ref, reviewers); err != nil {
		return "", err
	}

	logger.Infow("author requested another review", "pr", issue.Ref.String(), "reviewers", reviewers)
	return model.ResultProcessed, nil
}

// handlePush sends approved pull requests that received new commits back to core review.
func (s *service) handlePush(
	ctx context.Context,
	event *model.Event,
	logger *zap.SugaredLogger,
) (model.Result, error) {
	sha := event.Payload.HeadSHA()
	if sha == "" {
		return model.ResultIgnored, nil
	}
	repo, err := event.Payload.RequireRepository()
	if err != nil {
		return "", err
	}

	result := model.ResultIgnored
	for issue, err := range s.forge.SearchPullRequestsByCommit(ctx, repo, sha) {
		if err != nil {
			return "", err
		}
		if !issue.IsOpen() || !issue.HasLabel(stageModel.Merge.Label()) {
			continue
		}

		if err := s.store.SetStage(ctx, issue, stageModel.CoreReview); err != nil {
			return "", err
		}
		reviewers, err := s.aggregator.PrivilegedReviewerSet(ctx, issue.Ref)
		if err != nil {
			return "", err
		}
		if err := s.forge.CreateComment(ctx, issue.Ref, newCommitComment(reviewers)); err != nil {
			return "", err
		}
		if err := s.requestReview(ctx, issue.Ref, reviewers); err != nil {
			return "", err
		}

		logger.Infow("approval invalidated by new commit", "pr", issue.Ref.String(), "sha", forge.ShortSHA(sha))
		result = model.ResultProcessed
	}
	return result, nil
}

func (s *service) transition(
	ctx context.Context,
	payload *model.Payload,
	target stageModel.Stage,
	logger *zap.SugaredLogger,
	keysAndValues ...interface{},
) (model.Result, error) {
	_, issue, err := s.pullRequestIssue(ctx, payload)
	if err != nil {
		return "", err
	}
	if err := s.store.SetStage(ctx, issue, target); err != nil {
		return "", err
	}

	fields := append([]interface{}{"pr", issue.Ref.String(), "stage", target.String()}, keysAndValues...)
	logger.Infow("stage transition", fields...)
	return model.ResultProcessed, nil
}

func (s *service) requestReview(ctx context.Context, ref forgeModel.IssueRef, reviewers []string) error {
	if len(reviewers) == 0 {
		return nil
	}
	return s.forge.RequestReviewers(ctx, ref, reviewers)
}
