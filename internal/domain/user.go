package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Provider is the authentication path a user account was created through.
type Provider string

const (
	ProviderLocal  Provider = "local"
	ProviderGoogle Provider = "google"
)

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"            json:"id"`
	Name         string             `bson:"name"                     json:"name"`
	Email        string             `bson:"email"                    json:"email"`
	PasswordHash string             `bson:"password_hash,omitempty"  json:"-"`
	Provider     Provider           `bson:"provider"                 json:"provider"`
	ExternalID   string             `bson:"external_id,omitempty"    json:"-"` // Google profile id
	CreatedAt    time.Time          `bson:"created_at"               json:"created_at"`
}

// NewLocalUser and NewGoogleUser are the only places a provider is chosen;
// nothing downstream branches on the Provider field again.

func NewLocalUser(name, email, passwordHash string) *User {
	return &User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Provider:     ProviderLocal,
		CreatedAt:    time.Now().UTC(),
	}
}

func NewGoogleUser(name, email, externalID string) *User {
	return &User{
		Name:       name,
		Email:      email,
		Provider:   ProviderGoogle,
		ExternalID: externalID,
		CreatedAt:  time.Now().UTC(),
	}
}
