package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IssueCategory enum
type IssueCategory string

const (
	Roads           IssueCategory = "roads"
	Water           IssueCategory = "water"
	Electricity     IssueCategory = "electricity"
	WasteManagement IssueCategory = "waste_management"
	Parks           IssueCategory = "parks"
	StreetLights    IssueCategory = "street_lights"
	Drainage        IssueCategory = "drainage"
	Traffic         IssueCategory = "traffic"
	OtherCategory   IssueCategory = "other"
)

// Categories lists every valid issue category.
var Categories = []IssueCategory{
	Roads, Water, Electricity, WasteManagement, Parks,
	StreetLights, Drainage, Traffic, OtherCategory,
}

func (c IssueCategory) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// IssueStatus enum
type IssueStatus string

const (
	Submitted  IssueStatus = "submitted"
	Assigned   IssueStatus = "assigned"
	InProgress IssueStatus = "in_progress"
	Resolved   IssueStatus = "resolved"
	Closed     IssueStatus = "closed"
	Reopened   IssueStatus = "reopened"
)

// statusTransitions describes the forward lifecycle. Reopened is reachable
// only from resolved or closed and returns the issue to assigned.
var statusTransitions = map[IssueStatus][]IssueStatus{
	Submitted:  {Assigned},
	Assigned:   {InProgress},
	InProgress: {Resolved},
	Resolved:   {Closed, Reopened},
	Closed:     {Reopened},
	Reopened:   {Assigned},
}

func (s IssueStatus) Valid() bool {
	_, ok := statusTransitions[s]
	return ok
}

// CanTransitionTo reports whether next is a permitted successor of s.
func (s IssueStatus) CanTransitionTo(next IssueStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IssuePriority enum
type IssuePriority string

const (
	Low    IssuePriority = "low"
	Medium IssuePriority = "medium"
	High   IssuePriority = "high"
	Urgent IssuePriority = "urgent"
)

func (p IssuePriority) Valid() bool {
	switch p {
	case Low, Medium, High, Urgent:
		return true
	}
	return false
}

var (
	ErrInvalidTransition       = errors.New("status transition not permitted")
	ErrAssigneeRequired        = errors.New("assignee and department are required to assign an issue")
	ErrResolutionNotesRequired = errors.New("resolution notes are required to resolve an issue")
	ErrParentIssueRequired     = errors.New("a duplicate issue must reference an existing parent issue")
	ErrParentIsDuplicate       = errors.New("parent issue is itself marked as a duplicate")
)

// Issue represents a civic problem reported by a citizen and tracked through
// a resolution lifecycle. Issues are never hard-deleted, only closed.
type Issue struct {
	ID                    primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title                 string              `bson:"title" json:"title"`
	Description           string              `bson:"description" json:"description"`
	Category              IssueCategory       `bson:"category" json:"category"`
	Status                IssueStatus         `bson:"status" json:"status"`
	Priority              *IssuePriority      `bson:"priority,omitempty" json:"priority,omitempty"`
	PriorityScore         *float64            `bson:"priorityScore,omitempty" json:"priorityScore,omitempty"`
	PreviousPriorityScore *float64            `bson:"previousPriorityScore,omitempty" json:"previousPriorityScore,omitempty"`
	AICategoryConfidence  *float64            `bson:"aiCategoryConfidence,omitempty" json:"aiCategoryConfidence,omitempty"`
	LocationLat           float64             `bson:"locationLat" json:"locationLat"`
	LocationLng           float64             `bson:"locationLng" json:"locationLng"`
	LocationAddress       string              `bson:"locationAddress,omitempty" json:"locationAddress,omitempty"`
	MediaURLs             []string            `bson:"mediaUrls,omitempty" json:"mediaUrls,omitempty"`
	ResolutionMediaURLs   []string            `bson:"resolutionMediaUrls,omitempty" json:"resolutionMediaUrls,omitempty"`
	ResolutionNotes       string              `bson:"resolutionNotes,omitempty" json:"resolutionNotes,omitempty"`
	ReporterID            primitive.ObjectID  `bson:"reporterId" json:"reporterId"`
	AssignedTo            *primitive.ObjectID `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	DepartmentID          *primitive.ObjectID `bson:"departmentId,omitempty" json:"departmentId,omitempty"`
	IsDuplicate           bool                `bson:"isDuplicate" json:"isDuplicate"`
	ParentIssueID         *primitive.ObjectID `bson:"parentIssueId,omitempty" json:"parentIssueId,omitempty"`
	Upvotes               int64               `bson:"upvotes" json:"upvotes"`
	CreatedAt             time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt             time.Time           `bson:"updatedAt" json:"updatedAt"`
	ResolvedAt            *time.Time          `bson:"resolvedAt,omitempty" json:"resolvedAt,omitempty"`
}

// NewIssue builds a freshly submitted issue. Latitude and longitude are
// mandatory; there are no anonymous-location reports.
func NewIssue(title, description string, category IssueCategory, reporter primitive.ObjectID, lat, lng float64) Issue {
	now := time.Now()
	return Issue{
		ID:          primitive.NewObjectID(),
		Title:       title,
		Description: description,
		Category:    category,
		Status:      Submitted,
		ReporterID:  reporter,
		LocationLat: lat,
		LocationLng: lng,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// TransitionInput carries the fields a status change may set alongside the
// new status.
type TransitionInput struct {
	AssignedTo          *primitive.ObjectID
	DepartmentID        *primitive.ObjectID
	ResolutionNotes     string
	ResolutionMediaURLs []string
}

// ApplyTransition validates the status change against the lifecycle rules
// and mutates the issue in place. On any error the issue is left untouched.
func (i *Issue) ApplyTransition(next IssueStatus, in TransitionInput, now time.Time) error {
	if !i.Status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}

	switch next {
	case Assigned:
		assignee := i.AssignedTo
		if in.AssignedTo != nil {
			assignee = in.AssignedTo
		}
		department := i.DepartmentID
		if in.DepartmentID != nil {
			department = in.DepartmentID
		}
		if assignee == nil || department == nil {
			return ErrAssigneeRequired
		}
		i.AssignedTo = assignee
		i.DepartmentID = department
	case Resolved:
		if in.ResolutionNotes == "" {
			return ErrResolutionNotesRequired
		}
		i.ResolutionNotes = in.ResolutionNotes
		if len(in.ResolutionMediaURLs) > 0 {
			i.ResolutionMediaURLs = in.ResolutionMediaURLs
		}
		resolved := now
		i.ResolvedAt = &resolved
	case Reopened:
		i.ResolvedAt = nil
	}

	i.Status = next
	i.UpdatedAt = now
	return nil
}

// MarkDuplicate links the issue to an existing, non-duplicate parent. The
// issue remains counted in department stats but drops out of public feeds.
func (i *Issue) MarkDuplicate(parent *Issue) error {
	if parent == nil || parent.ID.IsZero() || parent.ID == i.ID {
		return ErrParentIssueRequired
	}
	if parent.IsDuplicate {
		return ErrParentIsDuplicate
	}
	i.IsDuplicate = true
	parentID := parent.ID
	i.ParentIssueID = &parentID
	return nil
}
