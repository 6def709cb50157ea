package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/taskflow/vacation/auth"
	"github.com/taskflow/vacation/httpx"
	"github.com/taskflow/vacation/internal/models"
	"github.com/taskflow/vacation/internal/services"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthHandler struct {
	DB    *gorm.DB
	Users *services.UserService
}

func NewAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{DB: db, Users: services.NewUserService(db)}
}

// sessionResponse is the login payload: bearer token plus the authenticated
// user's identity for the dashboard header.
type sessionResponse struct {
	Token  string      `json:"token"`
	UserID uint        `json:"userId"`
	Email  string      `json:"email"`
	Name   string      `json:"name"`
	Role   models.Role `json:"role"`
}

// Login: POST /auth/login. Any failure collapses to a generic 401 so the
// client cannot distinguish wrong-password from unknown-account.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}
	user, err := h.Users.GetByEmail(email)
	if err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}
	token, err := auth.IssueToken(user.ID, auth.DefaultTokenTTL)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "token_issue_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, sessionResponse{
		Token:  token,
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   user.Role,
	})
}

// currentUser loads the authenticated account for the request, or writes 401.
func currentUser(w http.ResponseWriter, r *http.Request, db *gorm.DB) (*models.User, bool) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok || uid == 0 {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return nil, false
	}
	var user models.User
	if err := db.First(&user, uid).Error; err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return nil, false
	}
	return &user, true
}
