package disputes

import (
	"errors"
	"fmt"
)

var (
	ErrCaseReadOnly       = errors.New("dispute case is closed to party actions")
	ErrResolutionNotReady = errors.New("case must be under review before resolution")
	ErrReviewNotReady     = errors.New("review requires submitted evidence and a rebuttal or its timeout")
	ErrReasonRequired     = errors.New("a non-empty reason is required")
	ErrBadConfirmToken    = errors.New("confirmation token does not match")
)

// Confirmation tokens the operator must type for high-stakes actions.
const (
	ConfirmTokenResolve = "RESOLVE"
	ConfirmTokenClose   = "CLOSE"
)

// InvalidTransitionError reports a status change outside the graph.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid dispute transition from %s to %s", e.From, e.To)
}

// ValidateTransition returns an InvalidTransitionError when from -> to is
// not an edge of the graph.
func ValidateTransition(from, to Status) error {
	if !from.CanTransitionTo(to) {
		return &InvalidTransitionError{From: from, To: to}
	}
	return nil
}

// GuardResolve checks that a resolution may be submitted: the case is in
// review (or re-opened by appeal), the decision is known, and the decision
// maps onto a reachable status.
func GuardResolve(current Status, decision Decision) (Status, error) {
	if current != StatusUnderReview && current != StatusAppealed {
		return "", ErrResolutionNotReady
	}
	target, ok := StatusForDecision(decision)
	if !ok {
		return "", fmt.Errorf("unknown decision %q", decision)
	}
	if err := ValidateTransition(current, target); err != nil {
		return "", err
	}
	return target, nil
}

// GuardOpenReview checks the review preconditions: gating evidence exists
// and the respondent either replied or timed out.
func GuardOpenReview(c *DisputeCase) error {
	if err := ValidateTransition(c.Status, StatusUnderReview); err != nil {
		return err
	}

	hasEvidence := false
	for i := range c.Evidence {
		if c.Evidence[i].AVStatus.CountsTowardGating() {
			hasEvidence = true
			break
		}
	}
	if !hasEvidence {
		return ErrReviewNotReady
	}

	if c.RebuttalReceivedAt == nil && !c.AutoRebuttalTimeout && c.RebuttalDueAt != nil {
		return ErrReviewNotReady
	}
	return nil
}

// GuardPartyMutation checks that renter/owner writes are still accepted.
func GuardPartyMutation(current Status) error {
	if current.IsReadOnlyForParties() {
		return ErrCaseReadOnly
	}
	return nil
}

// GuardAppeal checks that the case is in an appealable state.
func GuardAppeal(current Status) error {
	if !current.IsResolved() {
		return &InvalidTransitionError{From: current, To: StatusAppealed}
	}
	return nil
}
