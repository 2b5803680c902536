package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/internal/middleware"
	"github.com/taskhive/taskhive/internal/services"
	"github.com/taskhive/taskhive/pkg/response"
	"gorm.io/gorm"
)

type ProjectHandler struct {
	projectService *services.ProjectService
	authzService   *services.AuthzService
}

func NewProjectHandler(db *gorm.DB, queue services.TaskQueue) *ProjectHandler {
	memberships := services.NewMembershipService(db)
	return &ProjectHandler{
		projectService: services.NewProjectService(db, memberships, queue),
		authzService:   services.NewAuthzService(memberships),
	}
}

// Create makes a new project owned by the caller
// POST /api/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req services.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.projectService.Create(middleware.GetUserID(c), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Created(c, project)
}

// List returns the caller's projects grouped by role
// GET /api/projects
func (h *ProjectHandler) List(c *gin.Context) {
	created, joined, err := h.projectService.ListForUser(middleware.GetUserID(c))
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"created": created,
		"joined":  joined,
	})
}

// Get returns one project the caller is a member of
// GET /api/projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	projectID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	if err := h.authzService.Require(projectID, middleware.GetUserID(c), services.OpViewProject); err != nil {
		respondServiceError(c, err)
		return
	}

	project, err := h.projectService.GetByID(projectID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, project)
}

// Rename changes a project's name
// PUT /api/projects/:id
func (h *ProjectHandler) Rename(c *gin.Context) {
	projectID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	var req services.RenameProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.authzService.Require(projectID, middleware.GetUserID(c), services.OpRenameProject); err != nil {
		respondServiceError(c, err)
		return
	}

	if err := h.projectService.Rename(projectID, &req); err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "project renamed"})
}

// Delete removes a project and everything in it
// DELETE /api/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	projectID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	if err := h.authzService.Require(projectID, middleware.GetUserID(c), services.OpDeleteProject); err != nil {
		respondServiceError(c, err)
		return
	}

	if err := h.projectService.Delete(projectID); err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "project deleted"})
}

type joinRequest struct {
	InviteCode string `json:"invite_code" binding:"required"`
}

// Join enrolls the caller via an invite code
// POST /api/projects/join
func (h *ProjectHandler) Join(c *gin.Context) {
	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.projectService.JoinByInviteCode(middleware.GetUserID(c), req.InviteCode)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, project)
}
