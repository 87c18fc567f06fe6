package authentication

import (
	"log"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"fintrek-backend/controllers/respond"
	"fintrek-backend/models"
)

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword replaces the password of a local account after checking the current one.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r.Context())

	var req changePasswordRequest
	if err := respond.DecodeJSON(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	var v respond.Validator
	v.Check(len(req.NewPassword) >= minPasswordLength, "newPassword", "must be at least 6 characters")
	v.Check(len(req.NewPassword) <= maxPasswordLength, "newPassword", "must be at most 72 bytes")
	if !v.Valid() {
		respond.ValidationFailed(w, v.Errors())
		return
	}

	var user models.User
	if err := h.DB.WithContext(r.Context()).First(&user, "id = ?", userID).Error; err != nil {
		respond.Error(w, http.StatusNotFound, "User not found")
		return
	}

	if user.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)) != nil {
		respond.Error(w, http.StatusUnauthorized, "Current password is incorrect")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Change password error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Error hashing new password")
		return
	}

	if err := h.DB.WithContext(r.Context()).Model(&user).Update("password_hash", string(hashed)).Error; err != nil {
		log.Printf("Change password error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Error updating password")
		return
	}

	respond.Message(w, http.StatusOK, "Password changed successfully")
}
