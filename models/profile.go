package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRole enum. A profile's role is fixed at signup; only an admin may
// change it afterwards.
type UserRole string

const (
	RoleCitizen UserRole = "citizen"
	RoleStaff   UserRole = "staff"
	RoleAdmin   UserRole = "admin"
)

// AllRoles is the full role set, used when a route merely requires
// authentication rather than a specific role.
var AllRoles = []UserRole{RoleCitizen, RoleStaff, RoleAdmin}

func (r UserRole) Valid() bool {
	switch r {
	case RoleCitizen, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// Elevated reports whether the role may see sensitive profile fields of
// other users.
func (r UserRole) Elevated() bool {
	return r == RoleStaff || r == RoleAdmin
}

// Profile holds the public identity and denormalized counters for one user.
// Phone is sensitive: visible only to the owner and elevated roles.
type Profile struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID `bson:"userId" json:"userId"`
	Username        string             `bson:"username" json:"username"`
	FullName        string             `bson:"fullName,omitempty" json:"fullName,omitempty"`
	Phone           string             `bson:"phone,omitempty" json:"phone,omitempty"`
	AvatarURL       string             `bson:"avatarUrl,omitempty" json:"avatarUrl,omitempty"`
	Role            UserRole           `bson:"role" json:"role"`
	LocationLat     *float64           `bson:"locationLat,omitempty" json:"locationLat,omitempty"`
	LocationLng     *float64           `bson:"locationLng,omitempty" json:"locationLng,omitempty"`
	LocationAddress string             `bson:"locationAddress,omitempty" json:"locationAddress,omitempty"`
	IssuesReported  int64              `bson:"issuesReported" json:"issuesReported"`
	FollowersCount  int64              `bson:"followersCount" json:"followersCount"`
	FollowingCount  int64              `bson:"followingCount" json:"followingCount"`
	Badges          []string           `bson:"badges,omitempty" json:"badges,omitempty"`
	IsVerified      bool               `bson:"isVerified" json:"isVerified"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// VisibleTo returns the profile as the viewer is entitled to see it. The
// owner and elevated roles get every field; everyone else gets the profile
// with sensitive fields stripped.
func (p Profile) VisibleTo(viewerUserID primitive.ObjectID, viewerRole UserRole) Profile {
	if p.UserID == viewerUserID || viewerRole.Elevated() {
		return p
	}
	return p.Public()
}

// Public returns the sensitive-field-stripped projection of the profile,
// matching what the storage policy layer exposes to ordinary viewers.
func (p Profile) Public() Profile {
	p.Phone = ""
	return p
}

// ProfileUpdate carries the optional fields of a profile edit. Role is
// deliberately absent: it is immutable outside admin role assignment.
type ProfileUpdate struct {
	Username        *string  `json:"username,omitempty"`
	FullName        *string  `json:"fullName,omitempty"`
	Phone           *string  `json:"phone,omitempty"`
	AvatarURL       *string  `json:"avatarUrl,omitempty"`
	LocationLat     *float64 `json:"locationLat,omitempty"`
	LocationLng     *float64 `json:"locationLng,omitempty"`
	LocationAddress *string  `json:"locationAddress,omitempty"`
}

// ApplyTo merges the non-nil fields into the profile.
func (u ProfileUpdate) ApplyTo(p *Profile) {
	if u.Username != nil {
		p.Username = *u.Username
	}
	if u.FullName != nil {
		p.FullName = *u.FullName
	}
	if u.Phone != nil {
		p.Phone = *u.Phone
	}
	if u.AvatarURL != nil {
		p.AvatarURL = *u.AvatarURL
	}
	if u.LocationLat != nil {
		p.LocationLat = u.LocationLat
	}
	if u.LocationLng != nil {
		p.LocationLng = u.LocationLng
	}
	if u.LocationAddress != nil {
		p.LocationAddress = *u.LocationAddress
	}
}
