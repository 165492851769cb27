package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/uzmath/mathtest-backend/internal/model"
	"github.com/uzmath/mathtest-backend/internal/response"
	"github.com/uzmath/mathtest-backend/internal/service"
	"github.com/uzmath/mathtest-backend/internal/validator"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register godoc
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrValidation, fields)
		return
	}

	user, token, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			response.Fail(c, http.StatusConflict, response.ErrEmailTaken)
		case errors.Is(err, service.ErrUsernameTaken):
			response.Fail(c, http.StatusConflict, response.ErrUsernameTaken)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"user":  user,
		"token": token,
	})
}

// Login godoc
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrValidation, fields)
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user":  user,
		"token": token,
	})
}
