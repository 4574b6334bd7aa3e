package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tazhibayda/tasks-service/internal/apperr"
	"github.com/tazhibayda/tasks-service/internal/domain"
	"github.com/tazhibayda/tasks-service/internal/queue"
	"github.com/tazhibayda/tasks-service/internal/repo"
)

type createTaskReq struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
}

// authedUserID resolves the authenticated user's id; AuthRequired runs first.
func authedUserID(c *gin.Context) (primitive.ObjectID, bool) {
	claims := claimsFrom(c)
	uid, err := primitive.ObjectIDFromHex(claims.UID)
	if err != nil {
		respondErr(c, "Authentication required", apperr.Wrap(apperr.KindUnauthorized, "invalid token subject", err))
		return primitive.NilObjectID, false
	}
	return uid, true
}

// CreateTask godoc
// @Summary Create a task for the authenticated user
// @Tags tasks
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body createTaskReq true "task"
// @Success 201 {object} Response
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Router /api/tasks [post]
func (h *Handler) CreateTask(c *gin.Context) {
	uid, ok := authedUserID(c)
	if !ok {
		return
	}
	var in createTaskReq
	if err := c.ShouldBindJSON(&in); err != nil {
		respondErr(c, "Error in task creation", apperr.Wrap(apperr.KindValidation, "invalid request body", err))
		return
	}

	priority := domain.PriorityLow
	if in.Priority != "" {
		p, ok := domain.ParsePriority(in.Priority)
		if !ok {
			respondErr(c, "Error in task creation", apperr.New(apperr.KindValidation, "invalid priority"))
			return
		}
		priority = p
	}
	status := domain.StatusPending
	if in.Status != "" {
		s, ok := domain.ParseStatus(in.Status)
		if !ok {
			respondErr(c, "Error in task creation", apperr.New(apperr.KindValidation, "invalid status"))
			return
		}
		status = s
	}

	t := &domain.Task{
		UserID:      uid,
		Title:       in.Title,
		Description: in.Description,
		Priority:    priority,
		Status:      status,
	}
	if err := h.Tasks.CreateTask(c.Request.Context(), t); err != nil {
		respondErr(c, "Error in task creation", err)
		return
	}

	reqID := queue.RequestIDFrom(c.Request.Context())
	go h.Events.Publish(context.WithoutCancel(c.Request.Context()),
		queue.KeyTaskCreated, queue.TaskCreated{TaskID: t.ID, UserID: uid, Title: t.Title}, reqID)

	respond(c, http.StatusCreated, "Task created successfully", gin.H{"task": t})
}

// ListTasks godoc
// @Summary List the authenticated user's tasks
// @Tags tasks
// @Security BearerAuth
// @Produce json
// @Param status query string false "pending|completed"
// @Param priority query string false "low|medium|high"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Router /api/tasks [get]
func (h *Handler) ListTasks(c *gin.Context) {
	uid, ok := authedUserID(c)
	if !ok {
		return
	}

	var f repo.TaskFilter
	if raw := c.Query("status"); raw != "" {
		s, ok := domain.ParseStatus(raw)
		if !ok {
			respondErr(c, "Error in getting tasks", apperr.New(apperr.KindValidation, "invalid status filter"))
			return
		}
		f.Status = s
	}
	if raw := c.Query("priority"); raw != "" {
		p, ok := domain.ParsePriority(raw)
		if !ok {
			respondErr(c, "Error in getting tasks", apperr.New(apperr.KindValidation, "invalid priority filter"))
			return
		}
		f.Priority = p
	}

	tasks, err := h.Tasks.ListTasks(c.Request.Context(), uid, f)
	if err != nil {
		respondErr(c, "Error in getting tasks", err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"tasks": tasks})
}

type updateTaskReq struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
	Status      *string `json:"status"`
}

// UpdateTask godoc
// @Summary Partially update one of the authenticated user's tasks
// @Tags tasks
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "task id"
// @Param payload body updateTaskReq true "fields to update"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Failure 404 {object} Response
// @Router /api/tasks/{id} [patch]
func (h *Handler) UpdateTask(c *gin.Context) {
	uid, ok := authedUserID(c)
	if !ok {
		return
	}
	taskID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondErr(c, "Error in task update", apperr.New(apperr.KindValidation, "invalid task id"))
		return
	}

	var in updateTaskReq
	if err := c.ShouldBindJSON(&in); err != nil {
		respondErr(c, "Error in task update", apperr.Wrap(apperr.KindValidation, "invalid request body", err))
		return
	}
	if in.Title == nil && in.Description == nil && in.Priority == nil && in.Status == nil {
		respondErr(c, "Error in task update", apperr.New(apperr.KindValidation, "no fields to update"))
		return
	}

	var upd repo.TaskUpdate
	upd.Title = in.Title
	upd.Description = in.Description
	if in.Priority != nil {
		p, ok := domain.ParsePriority(*in.Priority)
		if !ok {
			respondErr(c, "Error in task update", apperr.New(apperr.KindValidation, "invalid priority"))
			return
		}
		upd.Priority = &p
	}
	if in.Status != nil {
		s, ok := domain.ParseStatus(*in.Status)
		if !ok {
			respondErr(c, "Error in task update", apperr.New(apperr.KindValidation, "invalid status"))
			return
		}
		upd.Status = &s
	}

	t, err := h.Tasks.UpdateTask(c.Request.Context(), uid, taskID, upd)
	if err != nil {
		respondErr(c, "Error in task update", err)
		return
	}
	if t == nil {
		respondNotFound(c, "task")
		return
	}
	respond(c, http.StatusOK, "Task updated successfully", gin.H{"task": t})
}

// DeleteTask godoc
// @Summary Delete one of the authenticated user's tasks
// @Tags tasks
// @Security BearerAuth
// @Produce json
// @Param id path string true "task id"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Failure 404 {object} Response
// @Router /api/tasks/{id} [delete]
func (h *Handler) DeleteTask(c *gin.Context) {
	uid, ok := authedUserID(c)
	if !ok {
		return
	}
	taskID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondErr(c, "Error in task deletion", apperr.New(apperr.KindValidation, "invalid task id"))
		return
	}

	deleted, err := h.Tasks.DeleteTask(c.Request.Context(), uid, taskID)
	if err != nil {
		respondErr(c, "Error in task deletion", err)
		return
	}
	if !deleted {
		respondNotFound(c, "task")
		return
	}
	respond(c, http.StatusOK, "Task deleted successfully", nil)
}
