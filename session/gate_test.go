package session

import (
	"testing"

	"civicpulse-be/models"

	"github.com/stretchr/testify/assert"
)

func TestAdmitWhileLoading(t *testing.T) {
	state := State{Loading: true}
	assert.Equal(t, Pending, Admit(state, models.RoleAdmin))
	assert.Equal(t, Pending, Admit(state))
}

func TestAdmitWithoutIdentity(t *testing.T) {
	assert.Equal(t, RedirectToAuth, Admit(State{}))
	assert.Equal(t, RedirectToAuth, Admit(State{}, models.RoleCitizen))

	// Identity without a loaded profile is still unauthenticated.
	state := State{Identity: &Identity{UserID: "u1"}}
	assert.Equal(t, RedirectToAuth, Admit(state, models.RoleCitizen))
}

func TestAdmitRoleChecks(t *testing.T) {
	citizen := State{
		Identity: &Identity{UserID: "u1"},
		Profile:  &models.Profile{Role: models.RoleCitizen},
	}
	staff := State{
		Identity: &Identity{UserID: "u2"},
		Profile:  &models.Profile{Role: models.RoleStaff},
	}

	assert.Equal(t, Allow, Admit(citizen, models.RoleCitizen))
	assert.Equal(t, RedirectToUnauthorized, Admit(citizen, models.RoleStaff, models.RoleAdmin))
	assert.Equal(t, Allow, Admit(staff, models.RoleStaff, models.RoleAdmin))
	assert.Equal(t, RedirectToUnauthorized, Admit(staff, models.RoleAdmin))
}

func TestAdmitEmptyAllowListMeansAnyRole(t *testing.T) {
	for _, role := range models.AllRoles {
		state := State{
			Identity: &Identity{UserID: "u1"},
			Profile:  &models.Profile{Role: role},
		}
		assert.Equalf(t, Allow, Admit(state), "role %s", role)
	}
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "pending", Pending.String())
	assert.Equal(t, "redirect_to_auth", RedirectToAuth.String())
	assert.Equal(t, "redirect_to_unauthorized", RedirectToUnauthorized.String())
	assert.Equal(t, "allow", Allow.String())
}
