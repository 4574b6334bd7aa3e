package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// ParsePriority validates a client-supplied priority value.
func ParsePriority(s string) (Priority, bool) {
	switch Priority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return Priority(s), true
	}
	return "", false
}

// ParseStatus validates a client-supplied status value.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPending, StatusCompleted:
		return Status(s), true
	}
	return "", false
}

type Task struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"user_id"       json:"user_id"`
	Title       string             `bson:"title"         json:"title"`
	Description string             `bson:"description"   json:"description"`
	Priority    Priority           `bson:"priority"      json:"priority"`
	Status      Status             `bson:"status"        json:"status"`
	CreatedAt   time.Time          `bson:"created_at"    json:"created_at"`
}
