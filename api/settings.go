package api

import (
	"fintrack/service"

	"github.com/gin-gonic/gin"
)

// SettingsHandler singleton settings row
type SettingsHandler struct {
	settings *service.SettingsService
}

// NewSettingsHandler creates the settings handler
func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get returns the settings row without the password hash
// @Summary Get settings
// @Tags settings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=models.Settings}
// @Router /api/settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.settings.Get()
	if err != nil {
		Fail(c, err, "failed to read settings")
		return
	}
	Success(c, settings)
}

// Update merges name, currency and profileImage
// @Summary Update settings
// @Description Only name, currency and profileImage are applied; profileImage null removes the image
// @Tags settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object true "changed fields"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Router /api/settings [put]
func (h *SettingsHandler) Update(c *gin.Context) {
	var patch map[string]interface{}
	if err := c.ShouldBindJSON(&patch); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := h.settings.Update(patch); err != nil {
		Fail(c, err, "failed to update settings")
		return
	}
	Success(c, nil)
}
