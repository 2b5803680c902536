package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/internal/middleware"
	"github.com/taskhive/taskhive/internal/services"
	"github.com/taskhive/taskhive/pkg/response"
	"gorm.io/gorm"
)

type TaskHandler struct {
	taskService  *services.TaskService
	authzService *services.AuthzService
}

func NewTaskHandler(db *gorm.DB, queue services.TaskQueue) *TaskHandler {
	return &TaskHandler{
		taskService:  services.NewTaskService(db, queue),
		authzService: services.NewAuthzService(services.NewMembershipService(db)),
	}
}

// Create adds a task to a project
// POST /api/projects/:id/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	projectID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	var req services.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.authzService.Require(projectID, middleware.GetUserID(c), services.OpCreateTask); err != nil {
		respondServiceError(c, err)
		return
	}

	task, err := h.taskService.Create(projectID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Created(c, task)
}

// List returns a project's tasks, optionally filtered by status
// GET /api/projects/:id/tasks?status=
func (h *TaskHandler) List(c *gin.Context) {
	projectID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	if err := h.authzService.Require(projectID, middleware.GetUserID(c), services.OpViewProject); err != nil {
		respondServiceError(c, err)
		return
	}

	tasks, err := h.taskService.List(projectID, c.Query("status"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, tasks)
}

// Get returns one task
// GET /api/projects/:id/tasks/:taskId
func (h *TaskHandler) Get(c *gin.Context) {
	projectID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	taskID, ok := paramUint(c, "taskId")
	if !ok {
		return
	}

	if err := h.authzService.Require(projectID, middleware.GetUserID(c), services.OpViewProject); err != nil {
		respondServiceError(c, err)
		return
	}

	task, err := h.taskService.Get(projectID, taskID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, task)
}

// Update patches a task's fields
// PUT /api/projects/:id/tasks/:taskId
func (h *TaskHandler) Update(c *gin.Context) {
	projectID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	taskID, ok := paramUint(c, "taskId")
	if !ok {
		return
	}

	var req services.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.authzService.Require(projectID, middleware.GetUserID(c), services.OpModifyTask); err != nil {
		respondServiceError(c, err)
		return
	}

	task, err := h.taskService.Update(projectID, taskID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, task)
}

type changeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ChangeStatus moves a task between the fixed status values
// PUT /api/projects/:id/tasks/:taskId/status
func (h *TaskHandler) ChangeStatus(c *gin.Context) {
	projectID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	taskID, ok := paramUint(c, "taskId")
	if !ok {
		return
	}

	var req changeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.authzService.Require(projectID, middleware.GetUserID(c), services.OpChangeTaskStatus); err != nil {
		respondServiceError(c, err)
		return
	}

	if err := h.taskService.ChangeStatus(projectID, taskID, req.Status); err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "status updated"})
}

// Delete removes a task with its attachments
// DELETE /api/projects/:id/tasks/:taskId
func (h *TaskHandler) Delete(c *gin.Context) {
	projectID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	taskID, ok := paramUint(c, "taskId")
	if !ok {
		return
	}

	if err := h.authzService.Require(projectID, middleware.GetUserID(c), services.OpDeleteTask); err != nil {
		respondServiceError(c, err)
		return
	}

	if err := h.taskService.Delete(projectID, taskID); err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "task deleted"})
}
