package handler

import (
	"errors"
	"net/http"
	"strings"

	"todolist/internal/model"
	"todolist/internal/repository"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer signs access tokens for a user id.
type TokenIssuer interface {
	GenerateToken(userID string) (string, error)
}

type UserHandler struct {
	repo   repository.UserRepositoryInterface
	tokens TokenIssuer
}

func NewUserHandler(repo repository.UserRepositoryInterface, tokens TokenIssuer) *UserHandler {
	return &UserHandler{repo: repo, tokens: tokens}
}

type RegisterRequest struct {
	Username       string `json:"username" binding:"required,min=3,max=150"`
	Email          string `json:"email" binding:"required,email"`
	DisplayName    string `json:"display_name" binding:"max=150"`
	Password       string `json:"password" binding:"required,min=8"`
	PasswordRepeat string `json:"password_repeat" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Username    *string `json:"username" binding:"omitempty,min=3,max=150"`
	Email       *string `json:"email" binding:"omitempty,email"`
	DisplayName *string `json:"display_name" binding:"omitempty,max=150"`
}

type UpdatePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

type UserResponse struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

func newUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:          u.ID.String(),
		Username:    u.Username,
		Email:       u.Email,
		DisplayName: u.DisplayName,
	}
}

// Register godoc
// @Summary      Sign up
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "New user"
// @Success      201 {object} AuthResponse
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /core/signup [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid input"})
		return
	}
	if req.Password != req.PasswordRepeat {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:  "Validation failed",
			Fields: map[string]string{"password_repeat": "passwords do not match"},
		})
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.TrimSpace(req.Username)

	existing, err := h.repo.FindByEmail(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, ErrorResponse{Error: "User with this email already exists"})
		return
	}

	existing, err = h.repo.FindByUsername(c.Request.Context(), req.Username)
	if err != nil {
		respondError(c, err)
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, ErrorResponse{Error: "User with this username already exists"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, err)
		return
	}

	user := &model.User{
		Username:       req.Username,
		Email:          req.Email,
		DisplayName:    req.DisplayName,
		HashedPassword: string(hash),
	}
	if err := h.repo.Create(c.Request.Context(), user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			c.JSON(http.StatusConflict, ErrorResponse{Error: "User already exists"})
			return
		}
		respondError(c, err)
		return
	}

	token, err := h.tokens.GenerateToken(user.ID.String())
	if err != nil {
		respondError(c, err)
		return
	}

	log.WithField("user_id", user.ID).Info("user registered")
	c.JSON(http.StatusCreated, AuthResponse{Token: token, User: newUserResponse(user)})
}

// Login godoc
// @Summary      Log in
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Success      200 {object} AuthResponse
// @Failure      401 {object} ErrorResponse
// @Router       /core/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid input"})
		return
	}

	user, err := h.repo.FindByUsername(c.Request.Context(), strings.TrimSpace(req.Username))
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid credentials"})
		return
	}

	token, err := h.tokens.GenerateToken(user.ID.String())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, AuthResponse{Token: token, User: newUserResponse(user)})
}

// Profile godoc
// @Summary      Current user
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} UserResponse
// @Router       /core/profile [get]
func (h *UserHandler) Profile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.repo.GetByID(c.Request.Context(), userID)
	if err != nil {
		h.respondUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

// UpdateProfile godoc
// @Summary      Update the current user
// @Tags         Users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body UpdateProfileRequest true "Changed fields"
// @Success      200 {object} UserResponse
// @Failure      409 {object} ErrorResponse
// @Router       /core/profile [patch]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid input"})
		return
	}

	user, err := h.repo.GetByID(c.Request.Context(), userID)
	if err != nil {
		h.respondUserError(c, err)
		return
	}
	if req.Username != nil {
		user.Username = strings.TrimSpace(*req.Username)
	}
	if req.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.DisplayName != nil {
		user.DisplayName = *req.DisplayName
	}

	if err := h.repo.UpdateProfile(c.Request.Context(), user); err != nil {
		h.respondUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

// UpdatePassword godoc
// @Summary      Change password
// @Tags         Users
// @Accept       json
// @Security     BearerAuth
// @Param        request body UpdatePasswordRequest true "Old and new password"
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Router       /core/update_password [put]
func (h *UserHandler) UpdatePassword(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid input"})
		return
	}

	user, err := h.repo.GetByID(c.Request.Context(), userID)
	if err != nil {
		h.respondUserError(c, err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.OldPassword)) != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:  "Validation failed",
			Fields: map[string]string{"old_password": "incorrect password"},
		})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.repo.UpdatePassword(c.Request.Context(), userID, string(hash)); err != nil {
		h.respondUserError(c, err)
		return
	}

	log.WithField("user_id", userID).Info("password changed")
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) respondUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "User not found"})
	case errors.Is(err, repository.ErrDuplicate):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "Username or email already taken"})
	default:
		respondError(c, err)
	}
}
