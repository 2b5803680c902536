package services

import (
	"errors"

	"github.com/taskhive/taskhive/internal/models"
	"gorm.io/gorm"
)

// ProfileService reads and edits the per-project member profiles. A
// profile exists exactly as long as its membership does, so a missing row
// means the user is not a member.
type ProfileService struct {
	db *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

type UpdateProfileRequest struct {
	DisplayName  *string `json:"display_name" binding:"omitempty,max=100"`
	Role         *string `json:"role" binding:"omitempty,max=100"`
	PhoneNumber  *string `json:"phone_number" binding:"omitempty,max=20"`
	EmailAddress *string `json:"email_address" binding:"omitempty,email,max=255"`
}

// Get returns the profile for a (project, user) pair.
func (s *ProfileService) Get(projectID, userID uint) (*models.MemberProfile, error) {
	var profile models.MemberProfile
	err := s.db.Where("project_id = ? AND user_id = ?", projectID, userID).
		Preload("User").
		First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotAMember
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Update patches the provided fields of the user's own profile. Passing
// an empty string clears a field back to unset.
func (s *ProfileService) Update(projectID, userID uint, req *UpdateProfileRequest) (*models.MemberProfile, error) {
	var profile models.MemberProfile
	err := s.db.Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotAMember
	}
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.DisplayName != nil {
		updates["display_name"] = normalizeProfileField(req.DisplayName)
	}
	if req.Role != nil {
		updates["role"] = normalizeProfileField(req.Role)
	}
	if req.PhoneNumber != nil {
		updates["phone_number"] = normalizeProfileField(req.PhoneNumber)
	}
	if req.EmailAddress != nil {
		updates["email_address"] = normalizeProfileField(req.EmailAddress)
	}
	if len(updates) == 0 {
		return &profile, nil
	}

	if err := s.db.Model(&profile).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// normalizeProfileField maps "" to NULL so cleared fields read back as
// unset instead of empty strings.
func normalizeProfileField(v *string) interface{} {
	if v == nil || *v == "" {
		return nil
	}
	return *v
}
