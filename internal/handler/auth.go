package handler

import (
	"net/http"

	"storefront/internal/apierror"
	"storefront/internal/config"
	"storefront/internal/dto"
	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/gin-gonic/gin"
)

const refreshCookie = "refresh_token"

type AuthHandler struct {
	svc service.AuthService
	cfg *config.Config
}

func NewAuthHandler(svc service.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{svc: svc, cfg: cfg}
}

func (h *AuthHandler) clientInfo(c *gin.Context) service.ClientInfo {
	return service.ClientInfo{
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	}
}

// setRefreshCookie stores the rotating refresh token in an httpOnly cookie
// scoped to the auth endpoints. It never travels in a response body.
func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookie, token, maxAge, "/api/auth", "", h.cfg.Env == "production", true) // httpOnly, auth path only
}

// Login handles staff username/password authentication.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Login(c.Request.Context(), req, h.clientInfo(c))
	if err != nil {
		writeError(c, err)
		return
	}
	h.setRefreshCookie(c, resp.RefreshToken, h.cfg.RefreshTokenDays*24*3600)
	c.JSON(http.StatusOK, apierror.OK(resp))
}

// TelegramLogin handles the login-widget payload for storefront customers.
func (h *AuthHandler) TelegramLogin(c *gin.Context) {
	var req dto.TelegramLoginRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.TelegramLogin(c.Request.Context(), req, h.clientInfo(c))
	if err != nil {
		writeError(c, err)
		return
	}
	h.setRefreshCookie(c, resp.RefreshToken, h.cfg.RefreshTokenDays*24*3600)
	c.JSON(http.StatusOK, apierror.OK(resp))
}

// Refresh rotates the refresh token: the presented token is revoked and a new
// pair is issued. Reuse of a revoked token is rejected.
func (h *AuthHandler) Refresh(c *gin.Context) {
	token, err := c.Cookie(refreshCookie)
	if err != nil || token == "" {
		c.JSON(http.StatusUnauthorized, apierror.New("Unauthorized"))
		return
	}
	resp, err := h.svc.Refresh(c.Request.Context(), token, h.clientInfo(c))
	if err != nil {
		h.setRefreshCookie(c, "", -1)
		writeError(c, err)
		return
	}
	h.setRefreshCookie(c, resp.RefreshToken, h.cfg.RefreshTokenDays*24*3600)
	c.JSON(http.StatusOK, apierror.OK(resp))
}

// Logout revokes the presented refresh token and clears the cookie.
// Idempotent: an absent or already-revoked token still returns 200.
func (h *AuthHandler) Logout(c *gin.Context) {
	token, _ := c.Cookie(refreshCookie)
	if token != "" {
		if err := h.svc.Logout(c.Request.Context(), token, c.GetString(middleware.RequestIDKey)); err != nil {
			writeError(c, err)
			return
		}
	}
	h.setRefreshCookie(c, "", -1)
	c.JSON(http.StatusOK, apierror.OK(gin.H{"logged_out": true}))
}
