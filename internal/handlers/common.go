package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/internal/services"
	"github.com/taskhive/taskhive/pkg/response"
	"gorm.io/gorm"
)

// paramUint reads a numeric path parameter. The second return value is
// false when the parameter is missing or not a number; the response has
// already been written in that case.
func paramUint(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(v), true
}

// respondServiceError maps service layer errors onto the response
// envelope. Unknown errors become a 500 without leaking details.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInsufficientPrivilege):
		response.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrReservedLevel),
		errors.Is(err, services.ErrInvalidTimeRange),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrAssigneeNotMember):
		response.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrInvalidInviteCode),
		errors.Is(err, services.ErrNotAMember),
		errors.Is(err, gorm.ErrRecordNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, services.ErrUsernameTaken):
		response.Error(c, response.NewConflict(err.Error()))
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidRefreshToken),
		errors.Is(err, services.ErrUserDisabled):
		response.Unauthorized(c, err.Error())
	default:
		response.ServerError(c, "internal error")
	}
}
