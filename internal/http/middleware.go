package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	limiter "github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/tazhibayda/tasks-service/internal/queue"
	"github.com/tazhibayda/tasks-service/internal/security"
)

const (
	authUserKey  = "authUser"
	requestIDKey = "X-Request-ID"
	tokenCookie  = "authToken"
)

// RequestID tags every request with an id, echoed in the response header and
// attached to the request context for event correlation.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDKey)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(requestIDKey, id)
		c.Request = c.Request.WithContext(queue.ContextWithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// RateLimit keeps per-IP counters in process memory; limits reset on restart
// and are not shared across replicas.
func RateLimit(max int, window time.Duration) gin.HandlerFunc {
	rate := limiter.Rate{Period: window, Limit: int64(max)}
	return mgin.NewMiddleware(limiter.New(memory.NewStore(), rate))
}

// AuthRequired extracts the bearer token from the Authorization header or
// the auth cookie and verifies it. Expired and forged tokens both answer 401.
func (h *Handler) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				Response{Success: false, Message: "Authentication required", Error: "no auth token provided"})
			return
		}
		claims, err := h.Auth.Authenticate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				Response{Success: false, Message: "Authentication required", Error: "invalid or expired token"})
			return
		}
		c.Set(authUserKey, claims)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	if tok, err := c.Cookie(tokenCookie); err == nil {
		return tok
	}
	return ""
}

func claimsFrom(c *gin.Context) *security.Claims {
	v, _ := c.Get(authUserKey)
	claims, _ := v.(*security.Claims)
	return claims
}
