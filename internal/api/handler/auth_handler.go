package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"robolab-portal/internal/dto"
	"robolab-portal/internal/service"
	"robolab-portal/pkg/response"
)

// AuthHandler administrator session HTTP handlers
type AuthHandler struct {
	authSvc service.AuthService
}

func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid email or password")
			return
		}
		if !storeError(c, err) {
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}

// Logout revokes the current token.
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	jti, remaining := tokenInfo(c)
	if err := h.authSvc.Logout(c.Request.Context(), jti, remaining); err != nil {
		response.ServiceUnavailable(c, "could not revoke the session")
		return
	}
	response.OK(c, nil)
}

// Me GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	me, err := h.authSvc.Me(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, response.CodeNotFound, "user not found")
			return
		}
		if !storeError(c, err) {
			response.InternalError(c)
		}
		return
	}
	response.OK(c, me)
}

// CheckRole reports whether the caller holds the admin role, asking the
// role table rather than trusting the token.
// GET /api/v1/auth/role
func (h *AuthHandler) CheckRole(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	rc, err := h.authSvc.CheckRole(c.Request.Context(), userID)
	if err != nil {
		if !storeError(c, err) {
			response.InternalError(c)
		}
		return
	}
	response.OK(c, rc)
}
