package authentication

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"fintrek-backend/controllers/respond"
	"fintrek-backend/models"
)

const (
	minPasswordLength = 6
	// bcrypt rejects longer inputs.
	maxPasswordLength = 72
)

// Provisioner creates the per-user gamification rows inside the signup transaction.
type Provisioner interface {
	Provision(ctx context.Context, tx *gorm.DB, userID string) error
}

type Handler struct {
	DB          *gorm.DB
	Tokens      *TokenIssuer
	Provisioner Provisioner

	// Google sign-in; nil when not configured.
	Google      *oauth2.Config
	Sessions    sessions.Store
	UserInfoURL string
}

type userPayload struct {
	UID       string `json:"uid"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type authResponse struct {
	Message string      `json:"message,omitempty"`
	User    userPayload `json:"user"`
	Tokens  TokenPair   `json:"tokens"`
}

func toUserPayload(u models.User) userPayload {
	return userPayload{UID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName}
}

type signupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Signup registers a local account and returns a fresh token pair.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := respond.DecodeJSON(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var v respond.Validator
	email, ok := respond.NormalizeEmail(req.Email)
	v.Check(ok, "email", "must be a valid email address")
	v.Check(len(req.Password) >= minPasswordLength, "password", "must be at least 6 characters")
	v.Check(len(req.Password) <= maxPasswordLength, "password", "must be at most 72 bytes")
	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	v.Check(firstName != "", "firstName", "is required")
	v.Check(lastName != "", "lastName", "is required")
	if !v.Valid() {
		respond.ValidationFailed(w, v.Errors())
		return
	}

	var existing models.User
	err := h.DB.WithContext(r.Context()).Where("email = ?", email).First(&existing).Error
	if err == nil {
		respond.Error(w, http.StatusConflict, "Email already registered")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Signup error: lookup %s: %v", email, err)
		respond.Error(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Signup error: hash password: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	user := models.User{
		Email:        email,
		PasswordHash: string(hashed),
		FirstName:    firstName,
		LastName:     lastName,
		Name:         firstName + " " + lastName,
		Provider:     models.ProviderLocal,
	}
	err = h.DB.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		if h.Provisioner != nil {
			return h.Provisioner.Provision(r.Context(), tx, user.ID)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			respond.Error(w, http.StatusConflict, "Email already registered")
			return
		}
		log.Printf("Signup error: create user: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	tokens, err := h.Tokens.Issue(user.ID, user.Email)
	if err != nil {
		log.Printf("Signup error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	respond.JSON(w, http.StatusCreated, authResponse{
		Message: "User created successfully",
		User:    toUserPayload(user),
		Tokens:  tokens,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := respond.DecodeJSON(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var v respond.Validator
	email, ok := respond.NormalizeEmail(req.Email)
	v.Check(ok, "email", "must be a valid email address")
	v.Check(req.Password != "", "password", "is required")
	if !v.Valid() {
		respond.ValidationFailed(w, v.Errors())
		return
	}

	var user models.User
	if err := h.DB.WithContext(r.Context()).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respond.Error(w, http.StatusNotFound, "User not found")
			return
		}
		log.Printf("Login error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Login failed")
		return
	}

	// Google-only accounts have no password hash and can never match.
	if user.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		respond.Error(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	tokens, err := h.Tokens.Issue(user.ID, user.Email)
	if err != nil {
		log.Printf("Login error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Login failed")
		return
	}

	respond.JSON(w, http.StatusOK, authResponse{
		Message: "Login successful",
		User:    toUserPayload(user),
		Tokens:  tokens,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := respond.DecodeJSON(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.RefreshToken) == "" {
		respond.ValidationFailed(w, []respond.FieldError{{Field: "refreshToken", Message: "is required"}})
		return
	}

	claims, err := h.Tokens.Parse(req.RefreshToken, TokenTypeRefresh)
	if err != nil {
		respond.Error(w, http.StatusForbidden, "Invalid refresh token")
		return
	}

	tokens, err := h.Tokens.Issue(claims.Subject, claims.Email)
	if err != nil {
		log.Printf("Refresh error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to refresh token")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]TokenPair{"tokens": tokens})
}

// Logout exists for client symmetry; tokens are stateless and simply discarded.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	respond.Message(w, http.StatusOK, "Logged out successfully")
}
