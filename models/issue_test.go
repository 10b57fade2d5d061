package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNewIssueStartsSubmitted(t *testing.T) {
	reporter := primitive.NewObjectID()
	issue := NewIssue("Pothole on Main Street", "Deep pothole near the intersection", Roads, reporter, 40.7128, -74.006)

	assert.Equal(t, Submitted, issue.Status)
	assert.Equal(t, reporter, issue.ReporterID)
	assert.Nil(t, issue.AssignedTo)
	assert.Nil(t, issue.ResolvedAt)
	assert.False(t, issue.IsDuplicate)
	assert.Equal(t, int64(0), issue.Upvotes)
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from    IssueStatus
		to      IssueStatus
		allowed bool
	}{
		{Submitted, Assigned, true},
		{Assigned, InProgress, true},
		{InProgress, Resolved, true},
		{Resolved, Closed, true},
		{Resolved, Reopened, true},
		{Closed, Reopened, true},
		{Reopened, Assigned, true},

		{Submitted, Resolved, false},
		{Submitted, InProgress, false},
		{Assigned, Resolved, false},
		{InProgress, Closed, false},
		{Closed, Resolved, false},
		{Resolved, Submitted, false},
		{Reopened, InProgress, false},
		{Assigned, Submitted, false},
	}

	for _, tt := range tests {
		assert.Equalf(t, tt.allowed, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestApplyTransitionAssignRequiresAssigneeAndDepartment(t *testing.T) {
	issue := NewIssue("Broken street light", "", StreetLights, primitive.NewObjectID(), 1, 2)

	err := issue.ApplyTransition(Assigned, TransitionInput{}, time.Now())
	require.ErrorIs(t, err, ErrAssigneeRequired)
	assert.Equal(t, Submitted, issue.Status)

	assignee := primitive.NewObjectID()
	err = issue.ApplyTransition(Assigned, TransitionInput{AssignedTo: &assignee}, time.Now())
	require.ErrorIs(t, err, ErrAssigneeRequired)
	assert.Equal(t, Submitted, issue.Status)

	department := primitive.NewObjectID()
	err = issue.ApplyTransition(Assigned, TransitionInput{AssignedTo: &assignee, DepartmentID: &department}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, Assigned, issue.Status)
	assert.Equal(t, &assignee, issue.AssignedTo)
	assert.Equal(t, &department, issue.DepartmentID)
}

func TestApplyTransitionResolveRequiresNotes(t *testing.T) {
	issue := NewIssue("Overflowing bin", "", WasteManagement, primitive.NewObjectID(), 1, 2)
	issue.Status = InProgress

	err := issue.ApplyTransition(Resolved, TransitionInput{}, time.Now())
	require.ErrorIs(t, err, ErrResolutionNotesRequired)
	assert.Equal(t, InProgress, issue.Status)
	assert.Nil(t, issue.ResolvedAt)

	now := time.Now()
	err = issue.ApplyTransition(Resolved, TransitionInput{
		ResolutionNotes:     "Bin emptied and schedule adjusted",
		ResolutionMediaURLs: []string{"https://cdn.example.com/after.jpg"},
	}, now)
	require.NoError(t, err)
	assert.Equal(t, Resolved, issue.Status)
	require.NotNil(t, issue.ResolvedAt)
	assert.Equal(t, now, *issue.ResolvedAt)
	assert.Equal(t, "Bin emptied and schedule adjusted", issue.ResolutionNotes)
}

func TestApplyTransitionReopenClearsResolvedAt(t *testing.T) {
	issue := NewIssue("Leaking pipe", "", Water, primitive.NewObjectID(), 1, 2)
	issue.Status = Resolved
	resolved := time.Now().Add(-time.Hour)
	issue.ResolvedAt = &resolved

	err := issue.ApplyTransition(Reopened, TransitionInput{}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, Reopened, issue.Status)
	assert.Nil(t, issue.ResolvedAt)
}

func TestApplyTransitionReopenKeepsAssignee(t *testing.T) {
	assignee := primitive.NewObjectID()
	department := primitive.NewObjectID()
	issue := NewIssue("Flooded underpass", "", Drainage, primitive.NewObjectID(), 1, 2)
	issue.Status = Closed
	issue.AssignedTo = &assignee
	issue.DepartmentID = &department

	require.NoError(t, issue.ApplyTransition(Reopened, TransitionInput{}, time.Now()))
	require.NoError(t, issue.ApplyTransition(Assigned, TransitionInput{}, time.Now()))
	assert.Equal(t, &assignee, issue.AssignedTo)
	assert.Equal(t, &department, issue.DepartmentID)
}

func TestApplyTransitionRejectsInvalidJump(t *testing.T) {
	issue := NewIssue("Fallen tree", "", Parks, primitive.NewObjectID(), 1, 2)

	err := issue.ApplyTransition(Closed, TransitionInput{ResolutionNotes: "n/a"}, time.Now())
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, Submitted, issue.Status)
	assert.Empty(t, issue.ResolutionNotes)
}

func TestMarkDuplicate(t *testing.T) {
	parent := NewIssue("Pothole on Main Street", "", Roads, primitive.NewObjectID(), 1, 2)
	dup := NewIssue("Pothole near Main St crossing", "", Roads, primitive.NewObjectID(), 1, 2)

	require.NoError(t, dup.MarkDuplicate(&parent))
	assert.True(t, dup.IsDuplicate)
	require.NotNil(t, dup.ParentIssueID)
	assert.Equal(t, parent.ID, *dup.ParentIssueID)
}

func TestMarkDuplicateRejectsBadParents(t *testing.T) {
	issue := NewIssue("Signal stuck on red", "", Traffic, primitive.NewObjectID(), 1, 2)

	assert.ErrorIs(t, issue.MarkDuplicate(nil), ErrParentIssueRequired)
	assert.ErrorIs(t, issue.MarkDuplicate(&issue), ErrParentIssueRequired)

	parent := NewIssue("Signal outage", "", Traffic, primitive.NewObjectID(), 1, 2)
	parent.IsDuplicate = true
	assert.ErrorIs(t, issue.MarkDuplicate(&parent), ErrParentIsDuplicate)
	assert.False(t, issue.IsDuplicate)
}

func TestCategoryValidation(t *testing.T) {
	assert.True(t, Roads.Valid())
	assert.True(t, OtherCategory.Valid())
	assert.False(t, IssueCategory("potholes").Valid())
	assert.False(t, IssueCategory("").Valid())
}
