package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/setlistr/setlistr/internal/api/dto"
	"github.com/setlistr/setlistr/internal/api/middleware"
	"github.com/setlistr/setlistr/internal/config"
	"github.com/setlistr/setlistr/internal/domain/user"
	"github.com/setlistr/setlistr/internal/pkg/errors"
	"github.com/setlistr/setlistr/internal/pkg/logger"
	"github.com/setlistr/setlistr/internal/pkg/utils"
	"github.com/setlistr/setlistr/internal/pkg/validator"
)

// AuthHandler handles account requests
type AuthHandler struct {
	userService user.Service
	config      config.AuthConfig
	logger      *logger.Logger
	validator   *validator.Validator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	userService user.Service,
	cfg config.AuthConfig,
	log *logger.Logger,
	val *validator.Validator,
) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		config:      cfg,
		logger:      log,
		validator:   val,
	}
}

// Register handles user registration
// @Summary User registration
// @Description Register a new account and sign in
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration details"
// @Success 201 {object} dto.AuthResponse "Account created"
// @Failure 400 {object} utils.ErrorResponse "Invalid request or validation error"
// @Failure 409 {object} utils.ErrorResponse "Email already registered"
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	u, tokens, err := h.userService.Register(r.Context(), user.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		writeErr(w, h.logger, err, "Failed to register")
		return
	}

	setAuthCookies(w, h.config, tokens)
	utils.WriteSuccess(w, http.StatusCreated, dto.AuthResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		User:         dto.ToUserDTO(u, time.Now()),
	})
}

// Login handles user login
// @Summary User login
// @Description Authenticate with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.AuthResponse "Successfully authenticated"
// @Failure 400 {object} utils.ErrorResponse "Invalid request"
// @Failure 401 {object} utils.ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	u, tokens, err := h.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeErr(w, h.logger, err, "Failed to log in")
		return
	}

	setAuthCookies(w, h.config, tokens)
	utils.WriteSuccess(w, http.StatusOK, dto.AuthResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		User:         dto.ToUserDTO(u, time.Now()),
	})
}

// Refresh exchanges a refresh token for a new token pair
// @Summary Refresh tokens
// @Description Exchange a refresh token (body or cookie) for a new token pair
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest false "Refresh token"
// @Success 200 {object} dto.AuthResponse "New token pair"
// @Failure 401 {object} utils.ErrorResponse "Invalid refresh token"
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshTokenRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}
	if req.RefreshToken == "" {
		if cookie, err := r.Cookie(middleware.RefreshTokenCookie); err == nil {
			req.RefreshToken = cookie.Value
		}
	}
	if req.RefreshToken == "" {
		utils.WriteError(w, errors.Unauthorized("Missing refresh token"))
		return
	}

	tokens, err := h.userService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		clearAuthCookies(w, h.config)
		writeErr(w, h.logger, err, "Failed to refresh token")
		return
	}

	setAuthCookies(w, h.config, tokens)
	utils.WriteSuccess(w, http.StatusOK, dto.AuthResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

// Logout clears the auth cookies
// @Summary Log out
// @Tags Auth
// @Produce json
// @Success 200 {object} utils.SuccessResponse "Logged out"
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	clearAuthCookies(w, h.config)
	utils.WriteSuccessWithMessage(w, http.StatusOK, "Logged out", nil)
}

// Me returns the signed-in user
// @Summary Current user
// @Tags Auth
// @Produce json
// @Success 200 {object} dto.UserDTO "Current user"
// @Failure 401 {object} utils.ErrorResponse "Not authenticated"
// @Security BearerAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.userService.Me(r.Context(), middleware.ActorFrom(r))
	if err != nil {
		writeErr(w, h.logger, err, "Failed to load user")
		return
	}
	utils.WriteSuccess(w, http.StatusOK, dto.ToUserDTO(u, time.Now()))
}

// UpdateProfile changes the signed-in user's name
// @Summary Update profile
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.UpdateProfileRequest true "Profile"
// @Success 200 {object} dto.UserDTO "Updated user"
// @Failure 400 {object} utils.ErrorResponse "Invalid request"
// @Security BearerAuth
// @Router /auth/me [patch]
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateProfileRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	u, err := h.userService.UpdateProfile(r.Context(), middleware.ActorFrom(r), req.Name)
	if err != nil {
		writeErr(w, h.logger, err, "Failed to update profile")
		return
	}
	utils.WriteSuccess(w, http.StatusOK, dto.ToUserDTO(u, time.Now()))
}

// DeleteAccount removes the signed-in user and all their bands
// @Summary Delete account
// @Tags Auth
// @Produce json
// @Success 200 {object} utils.SuccessResponse "Account deleted"
// @Security BearerAuth
// @Router /auth/me [delete]
func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.userService.DeleteAccount(r.Context(), middleware.ActorFrom(r)); err != nil {
		writeErr(w, h.logger, err, "Failed to delete account")
		return
	}
	clearAuthCookies(w, h.config)
	utils.WriteSuccessWithMessage(w, http.StatusOK, "Account deleted", nil)
}
