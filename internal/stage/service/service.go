// Package service converges a pull request's labels to a single stage label.
package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	forgeModel "github.com/festy23/stagebot/internal/forge/model"
	stageModel "github.com/festy23/stagebot/internal/stage/model"
)

// LabelAPI is the subset of the forge client the store needs.
type LabelAPI interface {
	AddLabels(ctx context.Context, ref forgeModel.IssueRef, names []string) error
	RemoveLabel(ctx context.Context, ref forgeModel.IssueRef, name string) error
}

// Store reads and writes the stage of a pull request through its labels.
// Mutations are mirrored into issue.Labels so a repeated call sees the new state.
type Store interface {
	// SetStage makes target the only stage label on issue. It does nothing
	// when the target label is already attached.
	SetStage(ctx context.Context, issue *forgeModel.Issue, target stageModel.Stage) error

	// ClearStages removes every stage label from issue.
	ClearStages(ctx context.Context, issue *forgeModel.Issue) error
}

type store struct {
	api    LabelAPI
	logger *zap.SugaredLogger
}

// New creates a stage store.
func New(api LabelAPI, logger *zap.SugaredLogger) Store {
	return &store{
		api:    api,
		logger: logger,
	}
}

func (s *store) SetStage(ctx context.Context, issue *forgeModel.Issue, target stageModel.Stage) error {
	if !target.IsValid() {
		return fmt.Errorf("invalid stage %d", int(target))
	}

	label := target.Label()
	if issue.HasLabel(label) {
		s.logger.Debugw("stage unchanged", "pr", issue.Ref.String(), "stage", target.String())
		return nil
	}

	if err := s.ClearStages(ctx, issue); err != nil {
		return err
	}

	if err := s.api.AddLabels(ctx, issue.Ref, []string{label}); err != nil {
		return err
	}
	issue.Labels = append(issue.Labels, label)

	s.logger.Infow("stage changed", "pr", issue.Ref.String(), "stage", target.String())
	return nil
}

// ClearStages deletes stage labels one by one. A label already gone on the
// forge (another delivery removed it) counts as removed.
func (s *store) ClearStages(ctx context.Context, issue *forgeModel.Issue) error {
	stale := slices.DeleteFunc(slices.Clone(issue.Labels), func(name string) bool {
		return !stageModel.IsStageLabel(name)
	})

	for _, name := range stale {
		err := s.api.RemoveLabel(ctx, issue.Ref, name)
		if err != nil && !errors.Is(err, forgeModel.ErrNotFound) {
			return err
		}
		issue.Labels = slices.DeleteFunc(issue.Labels, func(l string) bool { return l == name })
		s.logger.Debugw("stage label removed", "pr", issue.Ref.String(), "label", name)
	}
	return nil
}
