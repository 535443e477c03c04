// Package model provides the forge objects the stage tracker works with.
package model

import (
	"fmt"
	"slices"
	"strings"
)

// Repository identifies a repository on the forge.
type Repository struct {
	Owner string
	Name  string
}

// FullName returns "owner/name".
func (r Repository) FullName() string {
	return r.Owner + "/" + r.Name
}

// IssueRef identifies an issue or pull request. On the forge a pull request
// shares its number with the issue that carries its labels and comments.
type IssueRef struct {
	Repository
	Number int
}

// String returns "owner/name#number".
func (r IssueRef) String() string {
	return fmt.Sprintf("%s#%d", r.FullName(), r.Number)
}

// Team is an organization team.
type Team struct {
	ID   int64
	Name string
	Slug string
}

// ReviewState is the lower-cased state of a pull request review.
type ReviewState string

// ReviewState values.
const (
	ReviewStateApproved         ReviewState = "approved"
	ReviewStateChangesRequested ReviewState = "changes_requested"
	ReviewStateCommented        ReviewState = "commented"
	ReviewStateDismissed        ReviewState = "dismissed"
	ReviewStatePending          ReviewState = "pending"
)

// ParseReviewState normalizes a forge review state, which is reported
// upper-case by the REST API and lower-case in webhook payloads.
func ParseReviewState(state string) ReviewState {
	return ReviewState(strings.ToLower(state))
}

// IsSubstantive reports whether the review approves or requests changes.
// Comment-only reviews never affect a pull request's stage.
func (s ReviewState) IsSubstantive() bool {
	return s == ReviewStateApproved || s == ReviewStateChangesRequested
}

// Review is a submitted pull request review.
type Review struct {
	ID     int64
	Author string
	State  ReviewState
}

// Issue is the label carrier of a pull request.
type Issue struct {
	Ref           IssueRef
	Author        string
	State         string
	IsPullRequest bool
	Labels        []string
}

// HasLabel reports whether a label with exactly this name is attached.
func (i *Issue) HasLabel(name string) bool {
	return slices.Contains(i.Labels, name)
}

// IsOpen reports whether the issue is open.
func (i *Issue) IsOpen() bool {
	return strings.EqualFold(i.State, "open")
}
