package api

import (
	"time"

	"fintrack/config"
	"fintrack/middleware"
	"fintrack/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler first run, profile and unlock
type AuthHandler struct {
	cfg      *config.Config
	settings *service.SettingsService
}

// NewAuthHandler creates the auth handler
func NewAuthHandler(cfg *config.Config, settings *service.SettingsService) *AuthHandler {
	return &AuthHandler{cfg: cfg, settings: settings}
}

// FirstRunResponse first-run flag
type FirstRunResponse struct {
	IsFirstRun bool `json:"isFirstRun"`
}

// VerifyRequest unlock request
type VerifyRequest struct {
	Password string `json:"password" example:"secret123"`
}

// VerifyResponse unlock result; Token is set only when the password matched
type VerifyResponse struct {
	IsValid bool   `json:"isValid"`
	Token   string `json:"token,omitempty"`
}

// SetupResponse session token issued after setup
type SetupResponse struct {
	Token string `json:"token"`
}

// FirstRun reports whether setup is still pending
// @Summary First run check
// @Description True until the setup wizard has stored a profile and master password
// @Tags auth
// @Produce json
// @Success 200 {object} Response{data=FirstRunResponse}
// @Failure 500 {object} Response
// @Router /api/auth/first-run [get]
func (h *AuthHandler) FirstRun(c *gin.Context) {
	first, err := h.settings.IsFirstRun()
	if err != nil {
		Fail(c, err, "failed to read settings")
		return
	}
	Success(c, FirstRunResponse{IsFirstRun: first})
}

// Profile returns name, image and currency
// @Summary Profile
// @Description Name, profile image key and currency, with defaults before setup
// @Tags auth
// @Produce json
// @Success 200 {object} Response{data=models.Profile}
// @Failure 500 {object} Response
// @Router /api/auth/profile [get]
func (h *AuthHandler) Profile(c *gin.Context) {
	profile, err := h.settings.Profile()
	if err != nil {
		Fail(c, err, "failed to read profile")
		return
	}
	Success(c, profile)
}

// Verify checks the master password and issues a session token
// @Summary Unlock
// @Description Verifies the master password. A wrong password is not an error: isValid is false.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body VerifyRequest true "password"
// @Success 200 {object} Response{data=VerifyResponse}
// @Failure 400 {object} Response
// @Failure 409 {object} Response "no password set"
// @Failure 429 {object} Response "too many attempts"
// @Router /api/auth/verify [post]
func (h *AuthHandler) Verify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	ok, err := h.settings.VerifyPassword(req.Password)
	if err != nil {
		Fail(c, err, "failed to verify password")
		return
	}
	if !ok {
		Success(c, VerifyResponse{IsValid: false})
		return
	}

	token, err := h.issueToken()
	if err != nil {
		InternalError(c, "failed to issue session token")
		return
	}
	Success(c, VerifyResponse{IsValid: true, Token: token})
}

// Setup completes the first-run wizard
// @Summary Complete setup
// @Description Stores profile and hashed master password. After setup this route needs a session.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.SetupRequest true "profile and password"
// @Success 200 {object} Response{data=SetupResponse}
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Router /api/auth/setup [post]
func (h *AuthHandler) Setup(c *gin.Context) {
	var req service.SetupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := h.settings.CompleteSetup(req); err != nil {
		Fail(c, err, "failed to complete setup")
		return
	}

	token, err := h.issueToken()
	if err != nil {
		InternalError(c, "failed to issue session token")
		return
	}
	Success(c, SetupResponse{Token: token})
}

func (h *AuthHandler) issueToken() (string, error) {
	profile, err := h.settings.Profile()
	if err != nil {
		return "", err
	}
	ttl := h.cfg.Auth.SessionTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return middleware.GenerateToken(profile.Name, ttl)
}

