package bookings

import "fmt"

// Status is the booking lifecycle state.
type Status string

const (
	StatusRequested Status = "REQUESTED"
	StatusConfirmed Status = "CONFIRMED"
	StatusPaid      Status = "PAID"
	StatusCompleted Status = "COMPLETED"
	StatusCanceled  Status = "CANCELED"
)

// allowedTransitions is the directed lifecycle graph. Terminal states map
// to empty sets.
var allowedTransitions = map[Status][]Status{
	StatusRequested: {StatusConfirmed, StatusCanceled},
	StatusConfirmed: {StatusPaid, StatusCanceled},
	StatusPaid:      {StatusCompleted, StatusCanceled},
	StatusCompleted: {},
	StatusCanceled:  {},
}

// InvalidTransitionError is returned when a booking status change is not in
// the lifecycle graph.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid booking transition from %s to %s", e.From, e.To)
}

func (s Status) IsValid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

func (s Status) IsTerminal() bool {
	targets, ok := allowedTransitions[s]
	return ok && len(targets) == 0
}

// CanTransitionTo reports whether the lifecycle graph permits s -> target.
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// ValidateTransition returns an InvalidTransitionError if s -> target is not
// permitted.
func ValidateTransition(from, to Status) error {
	if !from.CanTransitionTo(to) {
		return &InvalidTransitionError{From: from, To: to}
	}
	return nil
}
