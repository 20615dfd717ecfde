package disputes

// Status is the dispute case lifecycle state. Cases only move forward
// through the directed graph below; the appeal action is the single
// sanctioned way out of a resolved state.
type Status string

const (
	StatusOpen                  Status = "open"
	StatusIntakeMissingEvidence Status = "intake_missing_evidence"
	StatusAwaitingRebuttal      Status = "awaiting_rebuttal"
	StatusUnderReview           Status = "under_review"
	StatusResolvedRenter        Status = "resolved_renter"
	StatusResolvedOwner         Status = "resolved_owner"
	StatusResolvedPartial       Status = "resolved_partial"
	StatusClosedAuto            Status = "closed_auto"
	StatusAppealed              Status = "appealed"
)

// AllowedTransitions is the directed transition graph. Operators can close
// a case from any non-terminal state; resolution requires review (or an
// appealed re-review).
var AllowedTransitions = map[Status][]Status{
	StatusOpen:                  {StatusIntakeMissingEvidence, StatusAwaitingRebuttal, StatusUnderReview, StatusClosedAuto},
	StatusIntakeMissingEvidence: {StatusAwaitingRebuttal, StatusUnderReview, StatusClosedAuto},
	StatusAwaitingRebuttal:      {StatusUnderReview, StatusClosedAuto},
	StatusUnderReview:           {StatusResolvedRenter, StatusResolvedOwner, StatusResolvedPartial, StatusClosedAuto},
	StatusResolvedRenter:        {StatusAppealed},
	StatusResolvedOwner:         {StatusAppealed},
	StatusResolvedPartial:       {StatusAppealed},
	StatusAppealed:              {StatusResolvedRenter, StatusResolvedOwner, StatusResolvedPartial, StatusClosedAuto},
	StatusClosedAuto:            {},
}

func (s Status) IsValid() bool {
	_, ok := AllowedTransitions[s]
	return ok
}

// IsResolved reports whether a resolution record is attached to the case.
func (s Status) IsResolved() bool {
	switch s {
	case StatusResolvedRenter, StatusResolvedOwner, StatusResolvedPartial:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition exists. Resolved cases
// are not terminal in the graph sense because of the appeal edge, but they
// are read-only to non-operator actors.
func (s Status) IsTerminal() bool {
	return s == StatusClosedAuto
}

// IsReadOnlyForParties reports whether renter/owner mutations (messages,
// evidence) are still accepted.
func (s Status) IsReadOnlyForParties() bool {
	return s.IsResolved() || s == StatusClosedAuto
}

// CanTransitionTo reports whether the graph permits s -> target.
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range AllowedTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Decision is the operator's resolution verdict.
type Decision string

const (
	DecisionRenter  Decision = "renter"
	DecisionOwner   Decision = "owner"
	DecisionPartial Decision = "partial"
	DecisionDeny    Decision = "deny"
)

func (d Decision) IsValid() bool {
	switch d {
	case DecisionRenter, DecisionOwner, DecisionPartial, DecisionDeny:
		return true
	}
	return false
}

// StatusForDecision couples the decision to its terminal status. A denied
// resolution closes the case instead of resolving it.
func StatusForDecision(d Decision) (Status, bool) {
	switch d {
	case DecisionRenter:
		return StatusResolvedRenter, true
	case DecisionOwner:
		return StatusResolvedOwner, true
	case DecisionPartial:
		return StatusResolvedPartial, true
	case DecisionDeny:
		return StatusClosedAuto, true
	}
	return "", false
}

// CloseReason is the controlled vocabulary for operator case closure.
type CloseReason string

const (
	CloseReasonLate       CloseReason = "late"
	CloseReasonDuplicate  CloseReason = "duplicate"
	CloseReasonNoEvidence CloseReason = "no_evidence"
)

func (c CloseReason) IsValid() bool {
	switch c {
	case CloseReasonLate, CloseReasonDuplicate, CloseReasonNoEvidence:
		return true
	}
	return false
}
