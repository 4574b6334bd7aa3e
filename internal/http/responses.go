package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tazhibayda/tasks-service/internal/apperr"
	"github.com/tazhibayda/tasks-service/internal/log"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Response{Success: true, Message: message, Data: data})
}

// respondErr maps the error kind to a status and a client-safe body. The
// underlying cause is only logged, never serialized.
func respondErr(c *gin.Context, message string, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, Response{Success: false, Message: message, Error: apperr.Message(err)})
}

func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, Response{Success: false, Message: "Resource not found", Error: resource + " not found"})
}
