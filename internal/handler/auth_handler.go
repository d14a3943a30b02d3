package handler

import (
	"net/http"
	"time"

	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/domain"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/dto"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/service"
	"github.com/gin-gonic/gin"
)

// CookieConfig describes the refresh token cookie
type CookieConfig struct {
	Name   string
	Path   string
	Domain string
	Secure bool
	MaxAge time.Duration
}

func (c CookieConfig) withDefaults() CookieConfig {
	if c.Name == "" {
		c.Name = "refresh_token"
	}
	if c.Path == "" {
		c.Path = "/"
	}
	if c.MaxAge <= 0 {
		c.MaxAge = 7 * 24 * time.Hour
	}
	return c
}

// AuthHandler handles authentication HTTP requests
type AuthHandler struct {
	authService service.AuthService
	cookie      CookieConfig
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService service.AuthService, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookie:      cookie.withDefaults(),
	}
}

// Login handles user login. The refresh token only travels in the cookie.
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &req, c.Request.UserAgent())
	if err != nil {
		RespondError(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken, int(h.cookie.MaxAge.Seconds()))
	c.JSON(http.StatusOK, dto.TokenResponse{Status: "OK", Token: result.AccessToken})
}

// Register handles registration with a role chosen by query parameter
// POST /api/auth/register?role=teacher
func (h *AuthHandler) Register(c *gin.Context) {
	role, err := domain.ParseRole(c.Query("role"))
	if err != nil {
		RespondError(c, err)
		return
	}

	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.authService.Register(c.Request.Context(), &req, role); err != nil {
		RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RegisterTeacher handles teacher registration with profile
// POST /api/auth/register/teacher
func (h *AuthHandler) RegisterTeacher(c *gin.Context) {
	var req dto.TeacherRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.authService.RegisterTeacher(c.Request.Context(), &req); err != nil {
		RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RegisterStudent handles student registration with profile
// POST /api/auth/register/student
func (h *AuthHandler) RegisterStudent(c *gin.Context) {
	var req dto.StudentRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.authService.RegisterStudent(c.Request.Context(), &req); err != nil {
		RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RefreshAccessToken exchanges the refresh cookie for a new access token
// POST /api/auth/refresh-access-token
func (h *AuthHandler) RefreshAccessToken(c *gin.Context) {
	accessToken, err := h.authService.Refresh(c.Request.Context(), h.refreshCookie(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.TokenResponse{Status: "CREATED", Token: accessToken})
}

// Logout revokes the refresh cookie's token and clears the cookie
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), h.refreshCookie(c)); err != nil {
		RespondError(c, err)
		return
	}
	h.clearRefreshCookie(c)
	c.Status(http.StatusNoContent)
}

// Me returns the caller's account
// GET /api/me
func (h *AuthHandler) Me(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	user, err := h.authService.Me(c.Request.Context(), p.Email)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// LogoutAll revokes every refresh token of the caller
// POST /api/me/logout-all
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	if err := h.authService.LogoutAll(c.Request.Context(), p.Email); err != nil {
		RespondError(c, err)
		return
	}
	h.clearRefreshCookie(c)
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) refreshCookie(c *gin.Context) string {
	value, err := c.Cookie(h.cookie.Name)
	if err != nil {
		return ""
	}
	return value
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, value, maxAge, h.cookie.Path, h.cookie.Domain, h.cookie.Secure, true)
}

// clearRefreshCookie emits an expired replacement with the same scope and flags
func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	h.setRefreshCookie(c, "", -1)
}
