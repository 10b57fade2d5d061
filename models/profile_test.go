package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestVisibleTo(t *testing.T) {
	owner := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	profile := Profile{
		UserID:   owner,
		Username: "jordan",
		Phone:    "+1-555-0100",
		Role:     RoleCitizen,
	}

	tests := []struct {
		name      string
		viewer    primitive.ObjectID
		role      UserRole
		seesPhone bool
	}{
		{"owner sees own phone", owner, RoleCitizen, true},
		{"other citizen does not", stranger, RoleCitizen, false},
		{"staff sees phone", stranger, RoleStaff, true},
		{"admin sees phone", stranger, RoleAdmin, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			visible := profile.VisibleTo(tt.viewer, tt.role)
			if tt.seesPhone {
				assert.Equal(t, "+1-555-0100", visible.Phone)
			} else {
				assert.Empty(t, visible.Phone)
			}
			assert.Equal(t, "jordan", visible.Username)
		})
	}
}

func TestPublicLeavesOriginalUntouched(t *testing.T) {
	profile := Profile{Username: "sam", Phone: "+1-555-0199"}
	public := profile.Public()

	assert.Empty(t, public.Phone)
	assert.Equal(t, "+1-555-0199", profile.Phone)
}

func TestProfileUpdateApplyTo(t *testing.T) {
	profile := Profile{Username: "sam", FullName: "Sam Li", Phone: "+1-555-0199", Role: RoleCitizen}

	username := "sam_l"
	lat := 12.97
	ProfileUpdate{Username: &username, LocationLat: &lat}.ApplyTo(&profile)

	assert.Equal(t, "sam_l", profile.Username)
	assert.Equal(t, "Sam Li", profile.FullName)
	assert.Equal(t, "+1-555-0199", profile.Phone)
	assert.Equal(t, &lat, profile.LocationLat)
	assert.Equal(t, RoleCitizen, profile.Role)
}

func TestRoleElevation(t *testing.T) {
	assert.False(t, RoleCitizen.Elevated())
	assert.True(t, RoleStaff.Elevated())
	assert.True(t, RoleAdmin.Elevated())
	assert.False(t, UserRole("moderator").Valid())
}
