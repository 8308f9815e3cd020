package handler

import (
	"net/http"
	"time"

	"github.com/Bateyjosue/xenfi-systems/internal/middleware"
	"github.com/Bateyjosue/xenfi-systems/internal/service"
	"github.com/Bateyjosue/xenfi-systems/internal/util"

	"github.com/gin-gonic/gin"
)

// AuthHandler serves register, login, logout and me.
type AuthHandler struct {
	Auth         *service.AuthService
	CookieSecure bool
}

func NewAuthHandler(auth *service.AuthService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{Auth: auth, CookieSecure: cookieSecure}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var in service.RegisterInput
	if !bindJSON(c, &in) {
		return
	}
	res, err := h.Auth.Register(c.Request.Context(), in)
	if err != nil {
		util.Fail(c, err)
		return
	}
	h.setToken(c, res.Token, h.Auth.TokenTTL())
	util.Success(c, http.StatusCreated, res)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var in service.LoginInput
	if !bindJSON(c, &in) {
		return
	}
	res, err := h.Auth.Login(c.Request.Context(), in)
	if err != nil {
		util.Fail(c, err)
		return
	}
	h.setToken(c, res.Token, h.Auth.TokenTTL())
	util.Success(c, http.StatusOK, res)
}

// Logout clears the session cookie. Issued tokens stay valid until they expire.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.setToken(c, "", -time.Second)
	util.Success(c, http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	u, err := h.Auth.Me(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, http.StatusOK, u)
}

func (h *AuthHandler) setToken(c *gin.Context, token string, ttl time.Duration) {
	maxAge := int(ttl / time.Second)
	if ttl < 0 {
		maxAge = -1
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, token, maxAge, "/", "", h.CookieSecure, true)
}
