package disputes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitionGraph(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		allowed bool
	}{
		{"open to intake", StatusOpen, StatusIntakeMissingEvidence, true},
		{"open to awaiting rebuttal", StatusOpen, StatusAwaitingRebuttal, true},
		{"open to review", StatusOpen, StatusUnderReview, true},
		{"open to closed", StatusOpen, StatusClosedAuto, true},
		{"open cannot resolve directly", StatusOpen, StatusResolvedRenter, false},
		{"intake back to rebuttal", StatusIntakeMissingEvidence, StatusAwaitingRebuttal, true},
		{"rebuttal to review", StatusAwaitingRebuttal, StatusUnderReview, true},
		{"rebuttal cannot skip to resolved", StatusAwaitingRebuttal, StatusResolvedOwner, false},
		{"review to resolved renter", StatusUnderReview, StatusResolvedRenter, true},
		{"review to resolved owner", StatusUnderReview, StatusResolvedOwner, true},
		{"review to resolved partial", StatusUnderReview, StatusResolvedPartial, true},
		{"review to closed", StatusUnderReview, StatusClosedAuto, true},
		{"resolved to appealed", StatusResolvedPartial, StatusAppealed, true},
		{"resolved cannot reopen review", StatusResolvedRenter, StatusUnderReview, false},
		{"appealed to new resolution", StatusAppealed, StatusResolvedOwner, true},
		{"appealed to closed", StatusAppealed, StatusClosedAuto, true},
		{"closed is terminal", StatusClosedAuto, StatusOpen, false},
		{"no backwards edge", StatusUnderReview, StatusAwaitingRebuttal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestStatusPredicates(t *testing.T) {
	assert.True(t, StatusResolvedRenter.IsResolved())
	assert.True(t, StatusResolvedOwner.IsResolved())
	assert.True(t, StatusResolvedPartial.IsResolved())
	assert.False(t, StatusClosedAuto.IsResolved())
	assert.False(t, StatusAppealed.IsResolved())

	assert.True(t, StatusClosedAuto.IsTerminal())
	assert.False(t, StatusResolvedPartial.IsTerminal(), "resolved cases keep the appeal edge")

	assert.True(t, StatusResolvedOwner.IsReadOnlyForParties())
	assert.True(t, StatusClosedAuto.IsReadOnlyForParties())
	assert.False(t, StatusAwaitingRebuttal.IsReadOnlyForParties())
	assert.False(t, StatusAppealed.IsReadOnlyForParties())
}

func TestStatusForDecision(t *testing.T) {
	tests := []struct {
		decision Decision
		want     Status
	}{
		{DecisionRenter, StatusResolvedRenter},
		{DecisionOwner, StatusResolvedOwner},
		{DecisionPartial, StatusResolvedPartial},
		{DecisionDeny, StatusClosedAuto},
	}
	for _, tt := range tests {
		got, ok := StatusForDecision(tt.decision)
		assert.True(t, ok)
		assert.Equal(t, tt.want, got)
	}

	_, ok := StatusForDecision(Decision("split"))
	assert.False(t, ok)
}

func TestCloseReasonVocabulary(t *testing.T) {
	assert.True(t, CloseReasonLate.IsValid())
	assert.True(t, CloseReasonDuplicate.IsValid())
	assert.True(t, CloseReasonNoEvidence.IsValid())
	assert.False(t, CloseReason("spam").IsValid())
}
