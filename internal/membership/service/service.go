// Package service resolves whether an account belongs to the privileged reviewer team.
package service

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"go.uber.org/zap"

	forgeModel "github.com/festy23/stagebot/internal/forge/model"
	membershipModel "github.com/festy23/stagebot/internal/membership/model"
)

// TeamAPI is the subset of the forge client the resolver needs.
type TeamAPI interface {
	ListTeams(ctx context.Context, org string) iter.Seq2[*forgeModel.Team, error]
	GetTeamMembership(ctx context.Context, org string, team *forgeModel.Team, username string) error
}

// Resolver answers core-developer membership questions.
type Resolver interface {
	// IsCoreDev reports whether username is a member of the core team.
	// Every call asks the forge again: membership may change during a pull request's life.
	IsCoreDev(ctx context.Context, username string) (bool, error)

	// CoreTeam looks up the core team by display name.
	CoreTeam(ctx context.Context) (*forgeModel.Team, error)
}

type resolver struct {
	api      TeamAPI
	org      string
	teamName string
	logger   *zap.SugaredLogger
}

// New creates a resolver for the team named teamName in org.
func New(api TeamAPI, org, teamName string, logger *zap.SugaredLogger) Resolver {
	return &resolver{
		api:      api,
		org:      org,
		teamName: teamName,
		logger:   logger,
	}
}

// CoreTeam walks the organization's teams until the name matches case-insensitively.
func (r *resolver) CoreTeam(ctx context.Context) (*forgeModel.Team, error) {
	for team, err := range r.api.ListTeams(ctx, r.org) {
		if err != nil {
			return nil, err
		}
		if strings.EqualFold(team.Name, r.teamName) {
			return team, nil
		}
	}
	return nil, fmt.Errorf("%w: %q in organization %q", membershipModel.ErrTeamNotFound, r.teamName, r.org)
}

// IsCoreDev reports whether username is a member of the core team.
func (r *resolver) IsCoreDev(ctx context.Context, username string) (bool, error) {
	team, err := r.CoreTeam(ctx)
	if err != nil {
		return false, err
	}

	err = r.api.GetTeamMembership(ctx, r.org, team, username)
	switch {
	case err == nil:
		r.logger.Debugw("core developer confirmed", "user", username, "team", team.Slug)
		return true, nil
	case errors.Is(err, forgeModel.ErrNotFound):
		r.logger.Debugw("not a core developer", "user", username, "team", team.Slug)
		return false, nil
	default:
		return false, err
	}
}
