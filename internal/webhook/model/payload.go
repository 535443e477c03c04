package model

import (
	"fmt"
	"strings"

	"github.com/festy23/stagebot/internal/forge"
	forgeModel "github.com/festy23/stagebot/internal/forge/model"
)

// User is an account reference inside a payload.
type User struct {
	Login string `json:"login"`
}

// Label is a label reference inside a payload.
type Label struct {
	Name string `json:"name"`
}

// Repository is the repository an event happened in.
type Repository struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Owner    *User  `json:"owner"`
}

// PullRequest is the pull request object of pull_request and pull_request_review events.
type PullRequest struct {
	Number int     `json:"number"`
	State  string  `json:"state"`
	Draft  bool    `json:"draft"`
	Merged bool    `json:"merged"`
	User   *User   `json:"user"`
	Labels []Label `json:"labels"`
}

// PullRequestLink marks an issue that is the label carrier of a pull request.
type PullRequestLink struct {
	URL string `json:"url"`
}

// Issue is the issue object of issue_comment events.
type Issue struct {
	Number      int              `json:"number"`
	State       string           `json:"state"`
	User        *User            `json:"user"`
	Labels      []Label          `json:"labels"`
	PullRequest *PullRequestLink `json:"pull_request"`
}

// Review is the review object of pull_request_review events.
type Review struct {
	ID    int64  `json:"id"`
	User  *User  `json:"user"`
	State string `json:"state"`
}

// Comment is the comment object of issue_comment events.
type Comment struct {
	ID   int64  `json:"id"`
	User *User  `json:"user"`
	Body string `json:"body"`
}

// Commit is a commit listed in a push event.
type Commit struct {
	ID string `json:"id"`
}

// Payload is the union of the webhook bodies the tracker reads.
type Payload struct {
	Action      string       `json:"action"`
	Repository  *Repository  `json:"repository"`
	PullRequest *PullRequest `json:"pull_request"`
	Review      *Review      `json:"review"`
	Issue       *Issue       `json:"issue"`
	Comment     *Comment     `json:"comment"`
	Commits     []Commit     `json:"commits"`
	HeadCommit  *Commit      `json:"head_commit"`
	After       string       `json:"after"`
	Sender      *User        `json:"sender"`
}

func malformed(field string) error {
	return fmt.Errorf("%w: missing %s", ErrMalformedPayload, field)
}

func login(u *User, field string) (string, error) {
	if u == nil || u.Login == "" {
		return "", malformed(field)
	}
	return u.Login, nil
}

func labelNames(labels []Label) []string {
	names := make([]string, 0, len(labels))
	for _, l := range labels {
		names = append(names, l.Name)
	}
	return names
}

// RequireRepository returns the repository the event happened in.
func (p *Payload) RequireRepository() (forgeModel.Repository, error) {
	r := p.Repository
	if r == nil {
		return forgeModel.Repository{}, malformed("repository")
	}
	if r.Owner != nil && r.Owner.Login != "" && r.Name != "" {
		return forgeModel.Repository{Owner: r.Owner.Login, Name: r.Name}, nil
	}
	repo, err := forge.ParseRepository(r.FullName)
	if err != nil {
		return forgeModel.Repository{}, malformed("repository.full_name")
	}
	return repo, nil
}

// RequirePullRequest returns the pull request object with its number and author present.
func (p *Payload) RequirePullRequest() (*PullRequest, error) {
	pr := p.PullRequest
	if pr == nil {
		return nil, malformed("pull_request")
	}
	if pr.Number <= 0 {
		return nil, malformed("pull_request.number")
	}
	if _, err := login(pr.User, "pull_request.user.login"); err != nil {
		return nil, err
	}
	return pr, nil
}

// PullRequestRef returns the reference of the event's pull request.
func (p *Payload) PullRequestRef() (forgeModel.IssueRef, error) {
	repo, err := p.RequireRepository()
	if err != nil {
		return forgeModel.IssueRef{}, err
	}
	pr, err := p.RequirePullRequest()
	if err != nil {
		return forgeModel.IssueRef{}, err
	}
	return forgeModel.IssueRef{Repository: repo, Number: pr.Number}, nil
}

// RequireReview returns the review object with its author and state present.
func (p *Payload) RequireReview() (*Review, error) {
	r := p.Review
	if r == nil {
		return nil, malformed("review")
	}
	if _, err := login(r.User, "review.user.login"); err != nil {
		return nil, err
	}
	if r.State == "" {
		return nil, malformed("review.state")
	}
	return r, nil
}

// RequireIssue returns the issue object with its number and author present.
func (p *Payload) RequireIssue() (*Issue, error) {
	i := p.Issue
	if i == nil {
		return nil, malformed("issue")
	}
	if i.Number <= 0 {
		return nil, malformed("issue.number")
	}
	if _, err := login(i.User, "issue.user.login"); err != nil {
		return nil, err
	}
	return i, nil
}

// RequireComment returns the comment object with its author present.
func (p *Payload) RequireComment() (*Comment, error) {
	c := p.Comment
	if c == nil {
		return nil, malformed("comment")
	}
	if _, err := login(c.User, "comment.user.login"); err != nil {
		return nil, err
	}
	return c, nil
}

// HeadSHA returns the last commit of a push, falling back to head_commit
// and then to the "after" ref. Empty when the push carries no commit.
func (p *Payload) HeadSHA() string {
	if n := len(p.Commits); n > 0 && p.Commits[n-1].ID != "" {
		return p.Commits[n-1].ID
	}
	if p.HeadCommit != nil && p.HeadCommit.ID != "" {
		return p.HeadCommit.ID
	}
	if strings.Trim(p.After, "0") == "" {
		return ""
	}
	return p.After
}

// ToIssue converts the payload issue into the forge label carrier.
func (i *Issue) ToIssue(repo forgeModel.Repository) *forgeModel.Issue {
	return &forgeModel.Issue{
		Ref:           forgeModel.IssueRef{Repository: repo, Number: i.Number},
		Author:        i.User.Login,
		State:         i.State,
		IsPullRequest: i.PullRequest != nil,
		Labels:        labelNames(i.Labels),
	}
}
