// Package model provides webhook events and payload objects for the webhook module.
package model

// Delivery headers set by the forge.
const (
	HeaderEvent    = "X-GitHub-Event"
	HeaderDelivery = "X-GitHub-Delivery"
)

// Event kinds the tracker routes.
const (
	KindPing              = "ping"
	KindPullRequest       = "pull_request"
	KindPullRequestReview = "pull_request_review"
	KindIssueComment      = "issue_comment"
	KindPush              = "push"
)

// Actions carried by the routed event kinds.
const (
	ActionOpened           = "opened"
	ActionReopened         = "reopened"
	ActionEdited           = "edited"
	ActionSynchronize      = "synchronize"
	ActionClosed           = "closed"
	ActionLabeled          = "labeled"
	ActionUnlabeled        = "unlabeled"
	ActionConvertedToDraft = "converted_to_draft"
	ActionReadyForReview   = "ready_for_review"
	ActionReviewRequested  = "review_requested"
	ActionSubmitted        = "submitted"
	ActionDismissed        = "dismissed"
	ActionCreated          = "created"
)

// Event is one webhook delivery.
type Event struct {
	Kind       string
	DeliveryID string
	Payload    *Payload
}

// Action returns the payload action, empty for kinds without one (push).
func (e *Event) Action() string {
	if e.Payload == nil {
		return ""
	}
	return e.Payload.Action
}

// Result reports what dispatching an event did.
type Result string

// Result values.
const (
	ResultProcessed Result = "processed"
	ResultIgnored   Result = "ignored"
)
