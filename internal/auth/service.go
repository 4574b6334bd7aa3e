// Package auth implements the local and provider-originated authentication
// flows on top of a user Directory, a password hasher and a token issuer.
// The HTTP layer calls into it and maps the returned error kinds to statuses.
package auth

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tazhibayda/tasks-service/internal/apperr"
	"github.com/tazhibayda/tasks-service/internal/domain"
	"github.com/tazhibayda/tasks-service/internal/log"
	"github.com/tazhibayda/tasks-service/internal/queue"
	"github.com/tazhibayda/tasks-service/internal/security"
)

// Directory is the persistence boundary for user records. Find methods
// return (nil, nil) when no user exists; Insert returns a Conflict-kind
// error on a duplicate email.
type Directory interface {
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	CreateUser(ctx context.Context, u *domain.User) error
}

type Service struct {
	users  Directory
	hasher security.Hasher
	tokens *security.Tokens
	events queue.Publisher
}

func NewService(users Directory, hasher security.Hasher, tokens *security.Tokens, events queue.Publisher) *Service {
	if events == nil {
		events = queue.NewNoop()
	}
	return &Service{users: users, hasher: hasher, tokens: tokens, events: events}
}

// Result is what every successful authentication path returns: the user
// record (password hash never serialized) and a fresh bearer token.
type Result struct {
	User  *domain.User
	Token string
}

// NormalizeEmail is applied to every email before it reaches the Directory,
// so lookups behave case-insensitively while storage stays exact-match.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a local account and issues a token. The email existence
// pre-check only improves the error message; the unique index behind
// Directory.CreateUser is what actually prevents duplicates under races.
func (s *Service) Register(ctx context.Context, name, email, password string) (*Result, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, apperr.New(apperr.KindValidation, "All fields are required")
	}

	if existing, err := s.users.FindUserByEmail(ctx, email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperr.New(apperr.KindConflict, "User already Exist")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnknown, "password hash failed", err)
	}

	u := domain.NewLocalUser(name, email, hash)
	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(u.ID.Hex(), u.Name, u.Email)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, queue.KeyUserRegistered, queue.UserRegistered{
		UserID: u.ID, Email: u.Email, Name: u.Name, Provider: string(u.Provider),
	})
	return &Result{User: u, Token: token}, nil
}

// Login verifies local credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*Result, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperr.New(apperr.KindValidation, "email and password are required")
	}

	u, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil || !s.hasher.Verify(password, u.PasswordHash) {
		return nil, apperr.New(apperr.KindUnauthorized, "invalid credentials")
	}

	token, err := s.tokens.Issue(u.ID.Hex(), u.Name, u.Email)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, queue.KeyUserLoggedIn, queue.UserLoggedIn{UserID: u.ID, Email: u.Email})
	return &Result{User: u, Token: token}, nil
}

// ProvisionExternal is the Register-equivalent path for provider-originated
// accounts: no password, the provider's profile id kept as ExternalID. A
// returning user with the same email is logged in rather than conflicting.
func (s *Service) ProvisionExternal(ctx context.Context, name, email, externalID string) (*Result, error) {
	email = NormalizeEmail(email)
	if email == "" || externalID == "" {
		return nil, apperr.New(apperr.KindValidation, "provider profile is missing email or id")
	}

	u, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		u = domain.NewGoogleUser(strings.TrimSpace(name), email, externalID)
		if err := s.users.CreateUser(ctx, u); err != nil {
			if apperr.KindOf(err) == apperr.KindConflict {
				// lost a race against a concurrent callback for the same email
				if u, err = s.users.FindUserByEmail(ctx, email); err != nil {
					return nil, err
				}
			} else {
				return nil, err
			}
		} else {
			s.publish(ctx, queue.KeyUserRegistered, queue.UserRegistered{
				UserID: u.ID, Email: u.Email, Name: u.Name, Provider: string(u.Provider),
			})
		}
	}

	token, err := s.tokens.Issue(u.ID.Hex(), u.Name, u.Email)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, queue.KeyUserLoggedIn, queue.UserLoggedIn{UserID: u.ID, Email: u.Email})
	return &Result{User: u, Token: token}, nil
}

// Authenticate is the single capability exposed to the task handlers: verify
// a bearer token and yield the authenticated identity.
func (s *Service) Authenticate(token string) (*security.Claims, error) {
	return s.tokens.Parse(token)
}

func (s *Service) publish(ctx context.Context, key string, event any) {
	reqID := queue.RequestIDFrom(ctx)
	go func() {
		if err := s.events.Publish(context.WithoutCancel(ctx), key, event, reqID); err != nil {
			log.Errorf("publish %s: %v", key, err)
		}
	}()
}
