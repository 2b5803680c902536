package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/internal/middleware"
	"github.com/taskhive/taskhive/internal/permissions"
	"github.com/taskhive/taskhive/internal/services"
	"github.com/taskhive/taskhive/pkg/response"
	"gorm.io/gorm"
)

type ProjectMemberHandler struct {
	membershipService *services.MembershipService
	authzService      *services.AuthzService
}

func NewProjectMemberHandler(db *gorm.DB) *ProjectMemberHandler {
	memberships := services.NewMembershipService(db)
	return &ProjectMemberHandler{
		membershipService: memberships,
		authzService:      services.NewAuthzService(memberships),
	}
}

// List returns all members of a project
// GET /api/projects/:id/members
func (h *ProjectMemberHandler) List(c *gin.Context) {
	projectID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	if err := h.authzService.Require(projectID, middleware.GetUserID(c), services.OpViewProject); err != nil {
		respondServiceError(c, err)
		return
	}

	members, err := h.membershipService.ListMembers(projectID)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, members)
}

// EligibleTargets returns the members the caller may re-level or remove
// GET /api/projects/:id/members/eligible
func (h *ProjectMemberHandler) EligibleTargets(c *gin.Context) {
	projectID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	targets, err := h.membershipService.EligibleTargets(projectID, middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, targets)
}

// AssignableLevels returns the levels the caller may hand out
// GET /api/projects/:id/members/levels
func (h *ProjectMemberHandler) AssignableLevels(c *gin.Context) {
	projectID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	levels, err := h.membershipService.AssignableLevels(projectID, middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, levels)
}

type changeLevelRequest struct {
	Level string `json:"level" binding:"required"`
}

// ChangeLevel sets one member's permission level
// PUT /api/projects/:id/members/:userId/level
func (h *ProjectMemberHandler) ChangeLevel(c *gin.Context) {
	projectID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	targetID, ok := paramUint(c, "userId")
	if !ok {
		return
	}

	var req changeLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	level := permissions.Level(req.Level)
	if !permissions.Valid(level) {
		response.BadRequest(c, "unknown permission level")
		return
	}

	err := h.membershipService.ChangeLevel(projectID, middleware.GetUserID(c), targetID, level)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "level updated"})
}

type bulkLevelRequest struct {
	UserIDs []uint `json:"user_ids" binding:"required,min=1"`
	Level   string `json:"level" binding:"required"`
}

// BulkChangeLevel sets several members' levels atomically
// PUT /api/projects/:id/members/level
func (h *ProjectMemberHandler) BulkChangeLevel(c *gin.Context) {
	projectID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	var req bulkLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	level := permissions.Level(req.Level)
	if !permissions.Valid(level) {
		response.BadRequest(c, "unknown permission level")
		return
	}

	err := h.membershipService.BulkChangeLevel(projectID, middleware.GetUserID(c), req.UserIDs, level)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "levels updated"})
}

// Remove kicks one member out of the project
// DELETE /api/projects/:id/members/:userId
func (h *ProjectMemberHandler) Remove(c *gin.Context) {
	projectID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	targetID, ok := paramUint(c, "userId")
	if !ok {
		return
	}

	err := h.membershipService.Remove(projectID, middleware.GetUserID(c), targetID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "member removed"})
}

type bulkRemoveRequest struct {
	UserIDs []uint `json:"user_ids" binding:"required,min=1"`
}

// BulkRemove kicks several members out atomically
// DELETE /api/projects/:id/members
func (h *ProjectMemberHandler) BulkRemove(c *gin.Context) {
	projectID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	var req bulkRemoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	err := h.membershipService.BulkRemove(projectID, middleware.GetUserID(c), req.UserIDs)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "members removed"})
}

// Leave removes the caller's own membership
// POST /api/projects/:id/leave
func (h *ProjectMemberHandler) Leave(c *gin.Context) {
	projectID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	if err := h.membershipService.Leave(projectID, middleware.GetUserID(c)); err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "left project"})
}
