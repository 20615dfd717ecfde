package disputes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuardResolveRequiresReview(t *testing.T) {
	for _, current := range []Status{StatusOpen, StatusIntakeMissingEvidence, StatusAwaitingRebuttal, StatusClosedAuto} {
		_, err := GuardResolve(current, DecisionRenter)
		assert.ErrorIs(t, err, ErrResolutionNotReady, "status %s", current)
	}

	target, err := GuardResolve(StatusUnderReview, DecisionPartial)
	require.NoError(t, err)
	assert.Equal(t, StatusResolvedPartial, target)

	target, err = GuardResolve(StatusAppealed, DecisionOwner)
	require.NoError(t, err)
	assert.Equal(t, StatusResolvedOwner, target)
}

func TestGuardResolveDenyCloses(t *testing.T) {
	target, err := GuardResolve(StatusUnderReview, DecisionDeny)
	require.NoError(t, err)
	assert.Equal(t, StatusClosedAuto, target)
}

func TestGuardResolveUnknownDecision(t *testing.T) {
	_, err := GuardResolve(StatusUnderReview, Decision("coin_flip"))
	assert.Error(t, err)
}

func TestGuardOpenReview(t *testing.T) {
	due := time.Now().Add(time.Hour)
	received := time.Now()

	clean := DisputeEvidence{AVStatus: AVClean}
	infected := DisputeEvidence{AVStatus: AVInfected}

	tests := []struct {
		name    string
		c       DisputeCase
		wantErr error
	}{
		{
			name:    "no evidence at all",
			c:       DisputeCase{Status: StatusAwaitingRebuttal, RebuttalReceivedAt: &received},
			wantErr: ErrReviewNotReady,
		},
		{
			name:    "only infected evidence",
			c:       DisputeCase{Status: StatusAwaitingRebuttal, Evidence: []DisputeEvidence{infected}, RebuttalReceivedAt: &received},
			wantErr: ErrReviewNotReady,
		},
		{
			name:    "rebuttal pending and window still open",
			c:       DisputeCase{Status: StatusAwaitingRebuttal, Evidence: []DisputeEvidence{clean}, RebuttalDueAt: &due},
			wantErr: ErrReviewNotReady,
		},
		{
			name: "rebuttal received",
			c:    DisputeCase{Status: StatusAwaitingRebuttal, Evidence: []DisputeEvidence{clean}, RebuttalDueAt: &due, RebuttalReceivedAt: &received},
		},
		{
			name: "rebuttal timed out",
			c:    DisputeCase{Status: StatusAwaitingRebuttal, Evidence: []DisputeEvidence{clean}, RebuttalDueAt: &due, AutoRebuttalTimeout: true},
		},
		{
			name: "no rebuttal window was ever set",
			c:    DisputeCase{Status: StatusOpen, Evidence: []DisputeEvidence{clean}},
		},
		{
			name:    "already resolved",
			c:       DisputeCase{Status: StatusResolvedRenter, Evidence: []DisputeEvidence{clean}, RebuttalReceivedAt: &received},
			wantErr: &InvalidTransitionError{From: StatusResolvedRenter, To: StatusUnderReview},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := GuardOpenReview(&tt.c)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
		})
	}
}

func TestGuardOpenReviewAcceptsPendingScan(t *testing.T) {
	// Pending scans count toward gating so an upload is immediately usable
	received := time.Now()
	c := DisputeCase{
		Status:             StatusAwaitingRebuttal,
		Evidence:           []DisputeEvidence{{AVStatus: AVPending}},
		RebuttalReceivedAt: &received,
	}
	assert.NoError(t, GuardOpenReview(&c))
}

func TestGuardPartyMutation(t *testing.T) {
	assert.NoError(t, GuardPartyMutation(StatusOpen))
	assert.NoError(t, GuardPartyMutation(StatusAwaitingRebuttal))
	assert.NoError(t, GuardPartyMutation(StatusUnderReview))
	assert.NoError(t, GuardPartyMutation(StatusAppealed))
	assert.ErrorIs(t, GuardPartyMutation(StatusResolvedOwner), ErrCaseReadOnly)
	assert.ErrorIs(t, GuardPartyMutation(StatusClosedAuto), ErrCaseReadOnly)
}

func TestGuardAppeal(t *testing.T) {
	assert.NoError(t, GuardAppeal(StatusResolvedRenter))
	assert.NoError(t, GuardAppeal(StatusResolvedPartial))

	var invalid *InvalidTransitionError
	err := GuardAppeal(StatusClosedAuto)
	assert.ErrorAs(t, err, &invalid)
	err = GuardAppeal(StatusUnderReview)
	assert.ErrorAs(t, err, &invalid)
}
