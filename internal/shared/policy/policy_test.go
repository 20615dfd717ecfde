package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ProRenterv1/Renter-sub002/internal/users"
)

func TestResolveIsFinanceOnly(t *testing.T) {
	assert.True(t, Allows(users.RoleFinance, ActionDisputeResolve))
	assert.True(t, Allows(users.RoleAdmin, ActionDisputeResolve))
	assert.False(t, Allows(users.RoleOperator, ActionDisputeResolve))
	assert.False(t, Allows(users.RoleUser, ActionDisputeResolve))
}

func TestOperatorActionsExcludeRegularUsers(t *testing.T) {
	operatorOnly := []Action{
		ActionDisputeRequestEvidence,
		ActionDisputeOpenReview,
		ActionDisputeClose,
		ActionListingSuspend,
		ActionUserFlag,
	}

	for _, action := range operatorOnly {
		assert.False(t, Allows(users.RoleUser, action), "action %s", action)
		assert.True(t, Allows(users.RoleAdmin, action), "action %s", action)
	}
}

func TestPartyActionsAllowRegularUsers(t *testing.T) {
	for _, action := range []Action{ActionDisputeCreate, ActionDisputeMessage, ActionDisputeUploadEvidence, ActionDisputeAppeal} {
		assert.True(t, Allows(users.RoleUser, action), "action %s", action)
	}
}

func TestRolesForMatchesAllows(t *testing.T) {
	names := RolesFor(ActionDisputeResolve)
	assert.ElementsMatch(t, []string{"FINANCE", "ADMIN"}, names)
}

func TestUnknownActionDeniesEveryone(t *testing.T) {
	assert.False(t, Allows(users.RoleAdmin, Action("dispute.unknown")))
}
