package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tazhibayda/tasks-service/internal/apperr"
	"github.com/tazhibayda/tasks-service/internal/domain"
)

const tasksColl = "tasks"

func (s *Store) ensureTaskIndexes(ctx context.Context) error {
	_, err := s.DB.Collection(tasksColl).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return err
}

// TaskFilter narrows ListTasks; zero values mean no constraint.
type TaskFilter struct {
	Status   domain.Status
	Priority domain.Priority
}

// TaskUpdate carries partial updates; nil fields stay untouched.
type TaskUpdate struct {
	Title       *string
	Description *string
	Priority    *domain.Priority
	Status      *domain.Status
}

func (u TaskUpdate) set() bson.M {
	set := bson.M{}
	if u.Title != nil {
		set["title"] = *u.Title
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.Priority != nil {
		set["priority"] = *u.Priority
	}
	if u.Status != nil {
		set["status"] = *u.Status
	}
	return set
}

func (s *Store) CreateTask(ctx context.Context, t *domain.Task) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	res, err := s.DB.Collection(tasksColl).InsertOne(ctx, t)
	if err != nil {
		return apperr.Wrap(apperr.KindUnknown, "task insert failed", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		t.ID = oid
	}
	return nil
}

func (s *Store) ListTasks(ctx context.Context, userID primitive.ObjectID, f TaskFilter) ([]domain.Task, error) {
	q := bson.M{"user_id": userID}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if f.Priority != "" {
		q["priority"] = f.Priority
	}
	cur, err := s.DB.Collection(tasksColl).Find(ctx, q,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnknown, "task query failed", err)
	}
	defer cur.Close(ctx)

	tasks := []domain.Task{}
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, apperr.Wrap(apperr.KindUnknown, "task decode failed", err)
	}
	return tasks, nil
}

// UpdateTask applies the given field updates to a task owned by userID.
// Returns (nil, nil) when no such task exists for that user.
func (s *Store) UpdateTask(ctx context.Context, userID, taskID primitive.ObjectID, upd TaskUpdate) (*domain.Task, error) {
	res := s.DB.Collection(tasksColl).FindOneAndUpdate(ctx,
		bson.M{"_id": taskID, "user_id": userID},
		bson.M{"$set": upd.set()},
		options.FindOneAndUpdate().SetReturnDocument(options.After))

	var t domain.Task
	err := res.Decode(&t)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnknown, "task update failed", err)
	}
	return &t, nil
}

// DeleteTask removes a task owned by userID; reports whether it existed.
func (s *Store) DeleteTask(ctx context.Context, userID, taskID primitive.ObjectID) (bool, error) {
	res, err := s.DB.Collection(tasksColl).DeleteOne(ctx, bson.M{"_id": taskID, "user_id": userID})
	if err != nil {
		return false, apperr.Wrap(apperr.KindUnknown, "task delete failed", err)
	}
	return res.DeletedCount > 0, nil
}
