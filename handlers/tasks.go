package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hucha-app/hucha-api/middleware"
	"github.com/hucha-app/hucha-api/models"
	"github.com/hucha-app/hucha-api/services"
	"github.com/hucha-app/hucha-api/utils"
)

type TaskHandler struct {
	Session *services.Session
}

// CreateTask creates a task (admin only, enforced by the route group).
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req models.AddTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.Session.AddTask(c.Request.Context(), req.Title, req.Description, req.Category, req.AssignedTo)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.LogStateAction("addTask", middleware.GetUsername(c), string(h.Session.Mode()))
	c.JSON(http.StatusCreated, task)
}

// UpdateCompletion toggles a task's completed flag. Kids may only touch
// their own tasks; admins may touch any.
func (h *TaskHandler) UpdateCompletion(c *gin.Context) {
	taskID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task id"})
		return
	}

	var req models.CompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !h.canTouchTask(c, taskID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your task"})
		return
	}

	if err := h.Session.UpdateTaskCompletion(c.Request.Context(), taskID, *req.Completed); err != nil {
		respondError(c, err)
		return
	}

	utils.LogStateAction("updateTaskCompletion", middleware.GetUsername(c), string(h.Session.Mode()))
	c.JSON(http.StatusOK, gin.H{"message": "Task updated"})
}

// SaveScore records an exam score for the caller's own task and grants the
// reward. Re-submitting a graded exam returns the already-granted values.
func (h *TaskHandler) SaveScore(c *gin.Context) {
	taskID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task id"})
		return
	}

	var req models.ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	username := middleware.GetUsername(c)
	task, reward, err := h.Session.SaveExamResult(c.Request.Context(), taskID, username, *req.Score)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.LogStateAction("saveExamResult", username, string(h.Session.Mode()))
	c.JSON(http.StatusOK, models.ScoreResponse{Task: task, Reward: reward})
}

// canTouchTask allows admins everything and kids their own tasks only.
func (h *TaskHandler) canTouchTask(c *gin.Context, taskID int) bool {
	if middleware.GetRole(c) == models.RoleAdmin {
		return true
	}
	task := h.Session.State().FindTask(taskID)
	// Unknown ids fall through to the mutator's not-found error.
	return task == nil || task.AssignedTo == middleware.GetUsername(c)
}
