package policy

import (
	"github.com/ProRenterv1/Renter-sub002/internal/users"
)

// Action is a privileged operation named by the role/action matrix.
type Action string

const (
	ActionDisputeCreate          Action = "dispute.create"
	ActionDisputeMessage         Action = "dispute.message"
	ActionDisputeUploadEvidence  Action = "dispute.upload_evidence"
	ActionDisputeRequestEvidence Action = "dispute.request_evidence"
	ActionDisputeOpenReview      Action = "dispute.open_review"
	ActionDisputeClose           Action = "dispute.close"
	ActionDisputeResolve         Action = "dispute.resolve"
	ActionDisputeAppeal          Action = "dispute.appeal"
	ActionListingSuspend         Action = "listing.suspend"
	ActionUserFlag               Action = "user.flag"
)

// matrix is the single source of truth for which roles may perform which
// privileged actions. Display gating and server enforcement both read it,
// so the two cannot drift.
var matrix = map[Action][]users.Role{
	ActionDisputeCreate:          {users.RoleUser, users.RoleOperator, users.RoleFinance, users.RoleAdmin},
	ActionDisputeMessage:         {users.RoleUser, users.RoleOperator, users.RoleFinance, users.RoleAdmin},
	ActionDisputeUploadEvidence:  {users.RoleUser, users.RoleOperator, users.RoleFinance, users.RoleAdmin},
	ActionDisputeRequestEvidence: {users.RoleOperator, users.RoleFinance, users.RoleAdmin},
	ActionDisputeOpenReview:      {users.RoleOperator, users.RoleFinance, users.RoleAdmin},
	ActionDisputeClose:           {users.RoleOperator, users.RoleFinance, users.RoleAdmin},
	ActionDisputeResolve:         {users.RoleFinance, users.RoleAdmin},
	ActionDisputeAppeal:          {users.RoleUser, users.RoleOperator, users.RoleFinance, users.RoleAdmin},
	ActionListingSuspend:         {users.RoleOperator, users.RoleFinance, users.RoleAdmin},
	ActionUserFlag:               {users.RoleOperator, users.RoleFinance, users.RoleAdmin},
}

// Allows reports whether the role may perform the action.
func Allows(role users.Role, action Action) bool {
	for _, allowed := range matrix[action] {
		if allowed == role {
			return true
		}
	}
	return false
}

// RolesFor returns the role names allowed to perform the action, in the
// form the route middleware consumes.
func RolesFor(action Action) []string {
	allowed := matrix[action]
	names := make([]string, 0, len(allowed))
	for _, role := range allowed {
		names = append(names, string(role))
	}
	return names
}
