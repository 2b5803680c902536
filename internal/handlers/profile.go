package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/internal/middleware"
	"github.com/taskhive/taskhive/internal/services"
	"github.com/taskhive/taskhive/pkg/response"
	"gorm.io/gorm"
)

type ProfileHandler struct {
	profileService *services.ProfileService
	authzService   *services.AuthzService
}

func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{
		profileService: services.NewProfileService(db),
		authzService:   services.NewAuthzService(services.NewMembershipService(db)),
	}
}

// GetMine returns the caller's profile in a project
// GET /api/projects/:id/profile
func (h *ProfileHandler) GetMine(c *gin.Context) {
	projectID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	profile, err := h.profileService.Get(projectID, middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, profile)
}

// Get returns another member's profile
// GET /api/projects/:id/members/:userId/profile
func (h *ProfileHandler) Get(c *gin.Context) {
	projectID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	userID, ok := paramUint(c, "userId")
	if !ok {
		return
	}

	if err := h.authzService.Require(projectID, middleware.GetUserID(c), services.OpViewProject); err != nil {
		respondServiceError(c, err)
		return
	}

	profile, err := h.profileService.Get(projectID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, profile)
}

// Update edits the caller's own profile
// PUT /api/projects/:id/profile
func (h *ProfileHandler) Update(c *gin.Context) {
	projectID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	var req services.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	profile, err := h.profileService.Update(projectID, middleware.GetUserID(c), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, profile)
}
