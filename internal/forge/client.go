// Package forge talks to the code forge's REST API.
package forge

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v66/github"

	appConfig "github.com/festy23/stagebot/internal/config"
	"github.com/festy23/stagebot/internal/forge/model"
)

const pageSize = 100

// Client defines the forge operations used by the stage tracker.
type Client interface {
	// ListTeams walks the organization's teams page by page.
	ListTeams(ctx context.Context, org string) iter.Seq2[*model.Team, error]
	// GetTeamMembership returns nil for a member and an error wrapping
	// model.ErrNotFound for a non-member.
	GetTeamMembership(ctx context.Context, org string, team *model.Team, username string) error
	// ListReviews walks a pull request's reviews in submission order.
	ListReviews(ctx context.Context, pr model.IssueRef) iter.Seq2[*model.Review, error]
	// GetIssue fetches the label-carrying issue of a pull request.
	GetIssue(ctx context.Context, ref model.IssueRef) (*model.Issue, error)
	// AddLabels attaches labels to an issue.
	AddLabels(ctx context.Context, ref model.IssueRef, names []string) error
	// RemoveLabel detaches a label from an issue.
	RemoveLabel(ctx context.Context, ref model.IssueRef, name string) error
	// CreateComment posts a comment on an issue or pull request.
	CreateComment(ctx context.Context, ref model.IssueRef, body string) error
	// RequestReviewers asks users to review a pull request.
	RequestReviewers(ctx context.Context, pr model.IssueRef, reviewers []string) error
	// SearchPullRequestsByCommit walks pull requests containing a commit.
	SearchPullRequestsByCommit(ctx context.Context, repo model.Repository, sha string) iter.Seq2[*model.Issue, error]
	// Ping verifies the forge is reachable and the token is accepted.
	Ping(ctx context.Context) error
}

// GitHubClient implements Client using go-github.
type GitHubClient struct {
	client *github.Client
}

var _ Client = (*GitHubClient)(nil)

// NewClient creates a forge client authenticated with the configured token.
func NewClient(cfg appConfig.ForgeConfig) (*GitHubClient, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("forge token is empty")
	}

	tc, err := newHTTPClient(cfg)
	if err != nil {
		return nil, err
	}

	return newClient(tc, cfg.BaseURL)
}

func newClient(httpClient *http.Client, baseURL string) (*GitHubClient, error) {
	client := github.NewClient(httpClient)
	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid forge base URL: %w", err)
		}
		client.BaseURL = u
	}
	return &GitHubClient{client: client}, nil
}

// ListTeams walks the organization's teams page by page.
func (c *GitHubClient) ListTeams(ctx context.Context, org string) iter.Seq2[*model.Team, error] {
	return paginate(
		func(opts *github.ListOptions) ([]*github.Team, *github.Response, error) {
			return c.client.Teams.ListTeams(ctx, org, opts)
		},
		func(t *github.Team) *model.Team {
			return &model.Team{ID: t.GetID(), Name: t.GetName(), Slug: t.GetSlug()}
		},
		"failed to list teams of "+org,
	)
}

// GetTeamMembership checks a user's membership of team.
func (c *GitHubClient) GetTeamMembership(ctx context.Context, org string, team *model.Team, username string) error {
	_, _, err := c.client.Teams.GetTeamMembershipBySlug(ctx, org, team.Slug, username)
	if err != nil {
		return fmt.Errorf("failed to get membership of %s in %s/%s: %w", username, org, team.Slug, translateError(err))
	}
	return nil
}

// ListReviews walks a pull request's reviews in submission order.
func (c *GitHubClient) ListReviews(ctx context.Context, pr model.IssueRef) iter.Seq2[*model.Review, error] {
	return paginate(
		func(opts *github.ListOptions) ([]*github.PullRequestReview, *github.Response, error) {
			return c.client.PullRequests.ListReviews(ctx, pr.Owner, pr.Name, pr.Number, opts)
		},
		func(r *github.PullRequestReview) *model.Review {
			return &model.Review{
				ID:     r.GetID(),
				Author: r.GetUser().GetLogin(),
				State:  model.ParseReviewState(r.GetState()),
			}
		},
		"failed to list reviews of "+pr.String(),
	)
}

// GetIssue fetches the label-carrying issue of a pull request.
func (c *GitHubClient) GetIssue(ctx context.Context, ref model.IssueRef) (*model.Issue, error) {
	issue, _, err := c.client.Issues.Get(ctx, ref.Owner, ref.Name, ref.Number)
	if err != nil {
		return nil, fmt.Errorf("failed to get issue %s: %w", ref, translateError(err))
	}
	return toIssue(ref.Repository, issue), nil
}

// AddLabels attaches labels to an issue.
func (c *GitHubClient) AddLabels(ctx context.Context, ref model.IssueRef, names []string) error {
	_, _, err := c.client.Issues.AddLabelsToIssue(ctx, ref.Owner, ref.Name, ref.Number, names)
	if err != nil {
		return fmt.Errorf("failed to add labels %v to %s: %w", names, ref, translateError(err))
	}
	return nil
}

// RemoveLabel detaches a label from an issue.
func (c *GitHubClient) RemoveLabel(ctx context.Context, ref model.IssueRef, name string) error {
	_, err := c.client.Issues.RemoveLabelForIssue(ctx, ref.Owner, ref.Name, ref.Number, name)
	if err != nil {
		return fmt.Errorf("failed to remove label %q from %s: %w", name, ref, translateError(err))
	}
	return nil
}

// CreateComment posts a comment on an issue or pull request.
func (c *GitHubClient) CreateComment(ctx context.Context, ref model.IssueRef, body string) error {
	comment := &github.IssueComment{
		Body: github.String(body),
	}
	if _, _, err := c.client.Issues.CreateComment(ctx, ref.Owner, ref.Name, ref.Number, comment); err != nil {
		return fmt.Errorf("failed to create comment on %s: %w", ref, translateError(err))
	}
	return nil
}

// RequestReviewers asks users to review a pull request.
func (c *GitHubClient) RequestReviewers(ctx context.Context, pr model.IssueRef, reviewers []string) error {
	req := github.ReviewersRequest{Reviewers: reviewers}
	if _, _, err := c.client.PullRequests.RequestReviewers(ctx, pr.Owner, pr.Name, pr.Number, req); err != nil {
		return fmt.Errorf("failed to request reviewers on %s: %w", pr, translateError(err))
	}
	return nil
}

// SearchPullRequestsByCommit walks pull requests of repo containing the commit sha.
func (c *GitHubClient) SearchPullRequestsByCommit(
	ctx context.Context,
	repo model.Repository,
	sha string,
) iter.Seq2[*model.Issue, error] {
	query := fmt.Sprintf("type:pr repo:%s sha:%s", repo.FullName(), sha)
	return paginate(
		func(opts *github.ListOptions) ([]*github.Issue, *github.Response, error) {
			result, resp, err := c.client.Search.Issues(ctx, query, &github.SearchOptions{ListOptions: *opts})
			if err != nil {
				return nil, resp, err
			}
			return result.Issues, resp, nil
		},
		func(issue *github.Issue) *model.Issue {
			return toIssue(repo, issue)
		},
		"failed to search pull requests for commit "+ShortSHA(sha),
	)
}

// Ping verifies the forge is reachable and the token is accepted.
func (c *GitHubClient) Ping(ctx context.Context) error {
	if _, _, err := c.client.Users.Get(ctx, ""); err != nil {
		return fmt.Errorf("failed to reach forge: %w", translateError(err))
	}
	return nil
}

// paginate turns a page-fetching call into a lazy sequence. Each iteration
// starts a fresh walk from the first page and stops early when the consumer does.
func paginate[T, U any](
	fetch func(opts *github.ListOptions) ([]T, *github.Response, error),
	convert func(T) U,
	errPrefix string,
) iter.Seq2[U, error] {
	return func(yield func(U, error) bool) {
		var zero U
		opts := &github.ListOptions{PerPage: pageSize}
		for {
			items, resp, err := fetch(opts)
			if err != nil {
				yield(zero, fmt.Errorf("%s: %w", errPrefix, translateError(err)))
				return
			}
			for _, item := range items {
				if !yield(convert(item), nil) {
					return
				}
			}
			if resp == nil || resp.NextPage == 0 {
				return
			}
			opts.Page = resp.NextPage
		}
	}
}

func toIssue(repo model.Repository, issue *github.Issue) *model.Issue {
	labels := make([]string, 0, len(issue.Labels))
	for _, label := range issue.Labels {
		labels = append(labels, label.GetName())
	}
	return &model.Issue{
		Ref:           model.IssueRef{Repository: repo, Number: issue.GetNumber()},
		Author:        issue.GetUser().GetLogin(),
		State:         issue.GetState(),
		IsPullRequest: issue.IsPullRequest(),
		Labels:        labels,
	}
}

// translateError marks 404 responses with model.ErrNotFound and leaves every
// other error untouched.
func translateError(err error) error {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %w", model.ErrNotFound, err)
	}
	return err
}
