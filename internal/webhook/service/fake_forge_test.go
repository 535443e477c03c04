package service

import (
	"context"
	"errors"
	"iter"
	"slices"
	"sync"

	forgeModel "github.com/festy23/stagebot/internal/forge/model"
)

var errForge = errors.New("502 bad gateway")

// fakeForge keeps one pull request in memory and records every mutation.
type fakeForge struct {
	mu sync.Mutex

	teams   []*forgeModel.Team
	members map[string]bool
	issue   *forgeModel.Issue
	reviews []*forgeModel.Review
	search  []*forgeModel.Issue
	failOn  string

	getIssueCalls int
	added         [][]string
	removed       []string
	comments      []string
	requested     [][]string
}

func newFakeForge(issue *forgeModel.Issue, coreDevs ...string) *fakeForge {
	members := make(map[string]bool, len(coreDevs))
	for _, u := range coreDevs {
		members[u] = true
	}
	return &fakeForge{
		teams: []*forgeModel.Team{
			{ID: 1, Name: "Triagers", Slug: "triagers"},
			{ID: 2, Name: "Python Core", Slug: "python-core"},
		},
		members: members,
		issue:   issue,
	}
}

func (f *fakeForge) ListTeams(_ context.Context, _ string) iter.Seq2[*forgeModel.Team, error] {
	return func(yield func(*forgeModel.Team, error) bool) {
		for _, team := range f.teams {
			if !yield(team, nil) {
				return
			}
		}
	}
}

func (f *fakeForge) GetTeamMembership(_ context.Context, _ string, _ *forgeModel.Team, username string) error {
	if f.failOn == "GetTeamMembership" {
		return errForge
	}
	if !f.members[username] {
		return forgeModel.ErrNotFound
	}
	return nil
}

func (f *fakeForge) ListReviews(_ context.Context, _ forgeModel.IssueRef) iter.Seq2[*forgeModel.Review, error] {
	return func(yield func(*forgeModel.Review, error) bool) {
		for _, review := range f.reviews {
			if !yield(review, nil) {
				return
			}
		}
	}
}

func (f *fakeForge) GetIssue(_ context.Context, ref forgeModel.IssueRef) (*forgeModel.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getIssueCalls++
	if f.failOn == "GetIssue" {
		return nil, errForge
	}
	issue := *f.issue
	issue.Ref = ref
	issue.Labels = slices.Clone(f.issue.Labels)
	return &issue, nil
}

func (f *fakeForge) AddLabels(_ context.Context, _ forgeModel.IssueRef, names []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn == "AddLabels" {
		return errForge
	}
	f.added = append(f.added, slices.Clone(names))
	f.issue.Labels = append(f.issue.Labels, names...)
	return nil
}

func (f *fakeForge) RemoveLabel(_ context.Context, _ forgeModel.IssueRef, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn == "RemoveLabel" {
		return errForge
	}
	f.removed = append(f.removed, name)
	f.issue.Labels = slices.DeleteFunc(f.issue.Labels, func(l string) bool { return l == name })
	return nil
}

func (f *fakeForge) CreateComment(_ context.Context, _ forgeModel.IssueRef, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn == "CreateComment" {
		return errForge
	}
	f.comments = append(f.comments, body)
	return nil
}

func (f *fakeForge) RequestReviewers(_ context.Context, _ forgeModel.IssueRef, reviewers []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requested = append(f.requested, slices.Clone(reviewers))
	return nil
}

func (f *fakeForge) SearchPullRequestsByCommit(
	_ context.Context,
	_ forgeModel.Repository,
	_ string,
) iter.Seq2[*forgeModel.Issue, error] {
	return func(yield func(*forgeModel.Issue, error) bool) {
		if f.failOn == "Search" {
			yield(nil, errForge)
			return
		}
		for _, issue := range f.search {
			if !yield(issue, nil) {
				return
			}
		}
	}
}

func (f *fakeForge) mutations() int {
	return len(f.added) + len(f.removed) + len(f.comments) + len(f.requested)
}
