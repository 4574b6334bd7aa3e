package repo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tazhibayda/tasks-service/internal/apperr"
	"github.com/tazhibayda/tasks-service/internal/domain"
)

const usersColl = "users"

func (s *Store) ensureUserIndexes(ctx context.Context) error {
	_, err := s.DB.Collection(usersColl).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// FindUserByEmail returns (nil, nil) when no user exists. Lookup is exact
// match; callers normalize the email before it gets here.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := s.DB.Collection(usersColl).FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnknown, "user lookup failed", err)
	}
	return &u, nil
}

func (s *Store) FindUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	var u domain.User
	err := s.DB.Collection(usersColl).FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnknown, "user lookup failed", err)
	}
	return &u, nil
}

// CreateUser assigns the id server-side. A duplicate email surfaces as
// Conflict via the unique index, which stays authoritative even when two
// registrations race past the existence pre-check.
func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	res, err := s.DB.Collection(usersColl).InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return apperr.Wrap(apperr.KindConflict, "User already Exist", err)
	}
	if err != nil {
		return apperr.Wrap(apperr.KindUnknown, "user insert failed", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid
	}
	return nil
}
