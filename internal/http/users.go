package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sunrise-events/sunrise/internal/auth"
)

// PasswordChanger updates a user's password. auth.Service implements it.
type PasswordChanger interface {
	ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// ProfileController handles user profile operations.
type ProfileController struct {
	passwords PasswordChanger
}

// NewProfileController creates a new ProfileController.
func NewProfileController(passwords PasswordChanger) *ProfileController {
	return &ProfileController{passwords: passwords}
}

// ChangePassword handles password change requests.
// POST /api/profile/password
func (pc *ProfileController) ChangePassword(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		respondError(c, http.StatusUnauthorized, auth.ErrAuthRequired.Error())
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		respondBadRequest(c, "new passwords do not match")
		return
	}

	err := pc.passwords.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword)
	switch {
	case err == nil:
		respondSuccess(c, "password changed")
	case errors.Is(err, auth.ErrInvalidPassword):
		respondBadRequest(c, "current password is incorrect")
	case errors.Is(err, auth.ErrPasswordTooShort), errors.Is(err, auth.ErrPasswordTooLong),
		errors.Is(err, auth.ErrPasswordRequired):
		respondBadRequest(c, err.Error())
	default:
		respondInternalError(c, err, "change password")
	}
}
