package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tazhibayda/tasks-service/internal/apperr"
	"github.com/tazhibayda/tasks-service/internal/auth"
	"github.com/tazhibayda/tasks-service/internal/config"
	"github.com/tazhibayda/tasks-service/internal/domain"
	"github.com/tazhibayda/tasks-service/internal/oauth"
	"github.com/tazhibayda/tasks-service/internal/queue"
	"github.com/tazhibayda/tasks-service/internal/repo"
)

// TaskStore is the task persistence boundary; implemented by repo.Store and
// by the in-memory fake in tests.
type TaskStore interface {
	CreateTask(ctx context.Context, t *domain.Task) error
	ListTasks(ctx context.Context, userID primitive.ObjectID, f repo.TaskFilter) ([]domain.Task, error)
	UpdateTask(ctx context.Context, userID, taskID primitive.ObjectID, upd repo.TaskUpdate) (*domain.Task, error)
	DeleteTask(ctx context.Context, userID, taskID primitive.ObjectID) (bool, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	Auth   *auth.Service
	Users  auth.Directory
	Google *oauth.Google // nil when Google OAuth is not configured
	Tasks  TaskStore
	Health Pinger
	Events queue.Publisher
	Cfg    config.Config
}

func NewHandler(authSvc *auth.Service, users auth.Directory, google *oauth.Google,
	tasks TaskStore, health Pinger, events queue.Publisher, cfg config.Config) *Handler {
	if events == nil {
		events = queue.NewNoop()
	}
	return &Handler{
		Auth: authSvc, Users: users, Google: google,
		Tasks: tasks, Health: health, Events: events, Cfg: cfg,
	}
}

type registerReq struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// Register godoc
// @Summary Register a user
// @Tags users
// @Accept json
// @Produce json
// @Param payload body registerReq true "register"
// @Success 201 {object} Response
// @Failure 400 {object} Response
// @Failure 409 {object} Response
// @Router /api/users/register [post]
func (h *Handler) Register(c *gin.Context) {
	var in registerReq
	if err := c.ShouldBindJSON(&in); err != nil {
		respondErr(c, "Error in user Registration", apperr.Wrap(apperr.KindValidation, "invalid request body", err))
		return
	}
	res, err := h.Auth.Register(c.Request.Context(), in.Name, in.Email, in.Password)
	if err != nil {
		respondErr(c, "Error in user Registration", err)
		return
	}
	respond(c, http.StatusCreated, "User created successfully", gin.H{
		"user":  res.User,
		"token": res.Token,
	})
}

type loginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login godoc
// @Summary Authenticate a user
// @Tags users
// @Accept json
// @Produce json
// @Param payload body loginReq true "login"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Router /api/users/auth [post]
func (h *Handler) Login(c *gin.Context) {
	var in loginReq
	if err := c.ShouldBindJSON(&in); err != nil {
		respondErr(c, "Error in user auth", apperr.Wrap(apperr.KindValidation, "invalid request body", err))
		return
	}
	res, err := h.Auth.Login(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		respondErr(c, "Error in user auth", err)
		return
	}
	respond(c, http.StatusOK, "User authenticated successfully", gin.H{
		"token": res.Token,
	})
}

// Me godoc
// @Summary Current user
// @Tags users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} Response
// @Failure 401 {object} Response
// @Router /api/auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	claims := claimsFrom(c)
	uid, err := primitive.ObjectIDFromHex(claims.UID)
	if err != nil {
		respondErr(c, "Authentication required", apperr.Wrap(apperr.KindUnauthorized, "invalid token subject", err))
		return
	}
	u, err := h.Users.FindUserByID(c.Request.Context(), uid)
	if err != nil {
		respondErr(c, "Error loading user", err)
		return
	}
	if u == nil {
		respondNotFound(c, "user")
		return
	}
	respond(c, http.StatusOK, "", gin.H{"user": u})
}

// GoogleAuth godoc
// @Summary Redirect to the Google consent screen
// @Tags auth
// @Success 302
// @Failure 500 {object} Response
// @Router /api/auth/google [get]
func (h *Handler) GoogleAuth(c *gin.Context) {
	if h.Google == nil {
		respondErr(c, "Error authenticating with Google",
			apperr.New(apperr.KindConfiguration, "google oauth is not configured"))
		return
	}
	state := h.Google.MakeState(uuid.NewString())
	c.Redirect(http.StatusFound, h.Google.AuthURL(state))
}

// GoogleCallback godoc
// @Summary Google OAuth2 callback
// @Tags auth
// @Success 302
// @Failure 401 {object} Response
// @Failure 500 {object} Response
// @Router /api/auth/google/callback [get]
func (h *Handler) GoogleCallback(c *gin.Context) {
	if h.Google == nil {
		respondErr(c, "Error authenticating with Google",
			apperr.New(apperr.KindConfiguration, "google oauth is not configured"))
		return
	}
	if !h.Google.VerifyState(c.Query("state")) {
		respondErr(c, "Error authenticating with Google",
			apperr.New(apperr.KindUnauthorized, "invalid oauth state"))
		return
	}

	profile, err := h.Google.Exchange(c.Request.Context(), c.Query("code"))
	if err != nil {
		// no redirect to the frontend on a failed exchange
		respondErr(c, "Error authenticating with Google", err)
		return
	}

	res, err := h.Auth.ProvisionExternal(c.Request.Context(), profile.Name, profile.Email, profile.ID)
	if err != nil {
		respondErr(c, "Error authenticating with Google", err)
		return
	}

	maxAge := int(h.Cfg.CookieTTL.Seconds())
	secure := h.Cfg.Production()
	c.SetCookie(tokenCookie, res.Token, maxAge, "/", "", secure, true)
	c.SetCookie("userId", res.User.ID.Hex(), maxAge, "/", "", secure, true)
	c.SetCookie("name", res.User.Name, maxAge, "/", "", secure, true)

	c.Redirect(http.StatusFound, h.Cfg.FrontendURL)
}

// Healthz godoc
// @Summary Liveness and storage health
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /healthz [get]
func (h *Handler) Healthz(c *gin.Context) {
	if err := h.Health.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
