package models

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Department is a municipal department that issues are routed to.
type Department struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name         string              `bson:"name" json:"name"`
	Description  string              `bson:"description,omitempty" json:"description,omitempty"`
	Categories   []IssueCategory     `bson:"categories,omitempty" json:"categories,omitempty"`
	ContactEmail string              `bson:"contactEmail,omitempty" json:"contactEmail,omitempty"`
	ContactPhone string              `bson:"contactPhone,omitempty" json:"contactPhone,omitempty"`
	HeadID       *primitive.ObjectID `bson:"headId,omitempty" json:"headId,omitempty"`
	IsActive     bool                `bson:"isActive" json:"isActive"`
	CreatedAt    time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// Efficiency returns the resolved share of a department's issues as a whole
// percent, rounded to the nearest integer. A department with no issues
// scores zero.
func Efficiency(issues, resolved int64) int {
	if issues <= 0 {
		return 0
	}
	return int(math.Round(float64(resolved) / float64(issues) * 100))
}
