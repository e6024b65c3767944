package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/boiko-school/nmt-backend/internal/model"
	"github.com/boiko-school/nmt-backend/internal/response"
	"github.com/boiko-school/nmt-backend/internal/service"
	"github.com/boiko-school/nmt-backend/internal/validator"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login godoc
// POST /api/v1/auth/login
// Validates email + password, returns JWT for participant or reviewer.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	p, token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token": token,
		"participant": gin.H{
			"id":    p.ID,
			"email": p.Email,
			"name":  p.Name,
			"role":  p.Role,
		},
	})
}
