// Package model defines the review stages of a pull request and their labels.
package model

import "strings"

// LabelPrefix starts the name of every stage label.
const LabelPrefix = "awaiting "

// Stage is what a pull request is currently blocked on.
type Stage int

// Stage values.
const (
	Review Stage = iota + 1
	CoreReview
	Changes
	ChangeReview
	Merge
)

var stages = []Stage{Review, CoreReview, Changes, ChangeReview, Merge}

var names = map[Stage]string{
	Review:       "review",
	CoreReview:   "core_review",
	Changes:      "changes",
	ChangeReview: "change_review",
	Merge:        "merge",
}

var labels = map[Stage]string{
	Review:       LabelPrefix + "review",
	CoreReview:   LabelPrefix + "core review",
	Changes:      LabelPrefix + "changes",
	ChangeReview: LabelPrefix + "change review",
	Merge:        LabelPrefix + "merge",
}

// All returns every stage in pipeline order.
func All() []Stage {
	return append([]Stage(nil), stages...)
}

// String returns the stage name, e.g. "core_review".
func (s Stage) String() string {
	if name, ok := names[s]; ok {
		return name
	}
	return "unknown"
}

// Label returns the label encoding the stage, e.g. "awaiting core review".
func (s Stage) Label() string {
	return labels[s]
}

// IsValid reports whether s is one of the defined stages.
func (s Stage) IsValid() bool {
	_, ok := labels[s]
	return ok
}

// FromLabel maps a label name back to its stage.
func FromLabel(name string) (Stage, bool) {
	for _, s := range stages {
		if labels[s] == name {
			return s, true
		}
	}
	return 0, false
}

// IsStageLabel reports whether name carries the stage prefix. Unknown
// "awaiting ..." labels count too, so stale ones get cleaned up.
func IsStageLabel(name string) bool {
	return strings.HasPrefix(name, LabelPrefix)
}

// CurrentStage returns the first known stage found among labels.
func CurrentStage(labelNames []string) (Stage, bool) {
	for _, name := range labelNames {
		if s, ok := FromLabel(name); ok {
			return s, true
		}
	}
	return 0, false
}
