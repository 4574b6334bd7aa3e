package queue

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Publisher interface {
	Publish(ctx context.Context, key string, event any, reqID string) error
	Close() error
}

// NoopPub stands in when no broker is configured (local dev, tests).
type NoopPub struct{}

func NewNoop() Publisher { return NoopPub{} }

func (NoopPub) Publish(ctx context.Context, key string, event any, reqID string) error {
	return nil
}
func (NoopPub) Close() error { return nil }

// Routing keys published on the auth exchange.
const (
	KeyUserRegistered = "user.registered"
	KeyUserLoggedIn   = "user.loggedin"
	KeyTaskCreated    = "task.created"
)

type UserRegistered struct {
	UserID   primitive.ObjectID `json:"user_id"`
	Email    string             `json:"email"`
	Name     string             `json:"name"`
	Provider string             `json:"provider"`
}

type UserLoggedIn struct {
	UserID primitive.ObjectID `json:"user_id"`
	Email  string             `json:"email"`
}

type TaskCreated struct {
	TaskID primitive.ObjectID `json:"task_id"`
	UserID primitive.ObjectID `json:"user_id"`
	Title  string             `json:"title"`
}
