package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStage_Labels(t *testing.T) {
	tests := []struct {
		stage Stage
		name  string
		label string
	}{
		{stage: Review, name: "review", label: "awaiting review"},
		{stage: CoreReview, name: "core_review", label: "awaiting core review"},
		{stage: Changes, name: "changes", label: "awaiting changes"},
		{stage: ChangeReview, name: "change_review", label: "awaiting change review"},
		{stage: Merge, name: "merge", label: "awaiting merge"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.stage.IsValid())
			assert.Equal(t, tt.name, tt.stage.String())
			assert.Equal(t, tt.label, tt.stage.Label())
			assert.True(t, IsStageLabel(tt.label))

			parsed, ok := FromLabel(tt.label)
			assert.True(t, ok)
			assert.Equal(t, tt.stage, parsed)
		})
	}
}

func TestStage_Invalid(t *testing.T) {
	var zero Stage
	assert.False(t, zero.IsValid())
	assert.Equal(t, "unknown", zero.String())
	assert.Empty(t, zero.Label())

	_, ok := FromLabel("awaiting coffee")
	assert.False(t, ok)
	assert.True(t, IsStageLabel("awaiting coffee"))
	assert.False(t, IsStageLabel("awaiting"))
	assert.False(t, IsStageLabel("type-bug"))
}

func TestAll(t *testing.T) {
	all := All()
	assert.Equal(t, []Stage{Review, CoreReview, Changes, ChangeReview, Merge}, all)

	all[0] = Merge
	assert.Equal(t, Review, All()[0])
}

func TestCurrentStage(t *testing.T) {
	s, ok := CurrentStage([]string{"type-feature", "awaiting merge"})
	assert.True(t, ok)
	assert.Equal(t, Merge, s)

	_, ok = CurrentStage([]string{"type-feature", "awaiting coffee"})
	assert.False(t, ok)

	_, ok = CurrentStage(nil)
	assert.False(t, ok)
}
