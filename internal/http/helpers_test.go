package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tazhibayda/tasks-service/internal/apperr"
	"github.com/tazhibayda/tasks-service/internal/auth"
	"github.com/tazhibayda/tasks-service/internal/config"
	"github.com/tazhibayda/tasks-service/internal/domain"
	api "github.com/tazhibayda/tasks-service/internal/http"
	"github.com/tazhibayda/tasks-service/internal/oauth"
	"github.com/tazhibayda/tasks-service/internal/repo"
	"github.com/tazhibayda/tasks-service/internal/security"
)

// memStore is an in-memory stand-in for repo.Store with the same contract:
// unique email, server-assigned ids, user-scoped tasks.
type memStore struct {
	mu    sync.Mutex
	users map[string]*domain.User
	tasks map[primitive.ObjectID]*domain.Task
}

func newMemStore() *memStore {
	return &memStore{
		users: map[string]*domain.User{},
		tasks: map[primitive.ObjectID]*domain.Task{},
	}
}

func (m *memStore) Ping(context.Context) error { return nil }

func (m *memStore) FindUserByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[email]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *memStore) FindUserByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) CreateUser(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Email]; ok {
		return apperr.New(apperr.KindConflict, "User already Exist")
	}
	u.ID = primitive.NewObjectID()
	cp := *u
	m.users[u.Email] = &cp
	return nil
}

func (m *memStore) CreateTask(_ context.Context, t *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = primitive.NewObjectID()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	cp := *t
	m.tasks[t.ID] = &cp
	return nil
}

func (m *memStore) ListTasks(_ context.Context, userID primitive.ObjectID, f repo.TaskFilter) ([]domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Task{}
	for _, t := range m.tasks {
		if t.UserID != userID {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Priority != "" && t.Priority != f.Priority {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (m *memStore) UpdateTask(_ context.Context, userID, taskID primitive.ObjectID, upd repo.TaskUpdate) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[taskID]
	if !ok || t.UserID != userID {
		return nil, nil
	}
	if upd.Title != nil {
		t.Title = *upd.Title
	}
	if upd.Description != nil {
		t.Description = *upd.Description
	}
	if upd.Priority != nil {
		t.Priority = *upd.Priority
	}
	if upd.Status != nil {
		t.Status = *upd.Status
	}
	cp := *t
	return &cp, nil
}

func (m *memStore) DeleteTask(_ context.Context, userID, taskID primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[taskID]
	if !ok || t.UserID != userID {
		return false, nil
	}
	delete(m.tasks, taskID)
	return true, nil
}

type testEnv struct {
	Store  *memStore
	Router *gin.Engine
	Google *oauth.Google
}

func testConfig() config.Config {
	return config.Config{
		Port:            "8080",
		Environment:     "development",
		JWTSecret:       "test-secret",
		AccessTTL:       time.Hour,
		CookieTTL:       7 * 24 * time.Hour,
		BcryptCost:      security.DefaultBcryptCost,
		FrontendURL:     "http://localhost:3000/dashboard",
		RateLimitMax:    1000,
		RateLimitWindow: time.Minute,
	}
}

func newTestEnv(t *testing.T, opts ...func(*api.Handler)) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	store := newMemStore()

	tokens, err := security.NewTokens(cfg.JWTSecret, cfg.AccessTTL)
	if err != nil {
		t.Fatalf("tokens: %v", err)
	}
	authSvc := auth.NewService(store, security.NewHasher(cfg.BcryptCost), tokens, nil)

	h := api.NewHandler(authSvc, store, nil, store, store, nil, cfg)
	for _, opt := range opts {
		opt(h)
	}
	return &testEnv{Store: store, Router: api.NewRouter(h), Google: h.Google}
}

// do drives the router with a JSON request.
func (e *testEnv) do(method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	e.Router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return out
}

// registerAndLogin creates a user and returns a valid bearer token.
func (e *testEnv) registerAndLogin(t *testing.T, name, email, password string) string {
	t.Helper()
	w := e.do("POST", "/api/users/register",
		`{"name":"`+name+`","email":"`+email+`","password":"`+password+`"}`, nil)
	if w.Code != 201 {
		t.Fatalf("register: %d %s", w.Code, w.Body.String())
	}
	w = e.do("POST", "/api/users/auth", `{"email":"`+email+`","password":"`+password+`"}`, nil)
	if w.Code != 200 {
		t.Fatalf("login: %d %s", w.Code, w.Body.String())
	}
	data := decode(t, w)["data"].(map[string]any)
	tok, _ := data["token"].(string)
	if tok == "" {
		t.Fatalf("no token in login response: %s", w.Body.String())
	}
	return tok
}
