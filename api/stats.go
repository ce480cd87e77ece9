package api

import (
	"fintrack/service"

	"github.com/gin-gonic/gin"
)

// StatsHandler dashboard, history and predictions
type StatsHandler struct {
	analytics *service.AnalyticsService
}

// NewStatsHandler creates the stats handler
func NewStatsHandler(analytics *service.AnalyticsService) *StatsHandler {
	return &StatsHandler{analytics: analytics}
}

// Dashboard overview
// @Summary Dashboard
// @Description Totals, five newest rows of each kind and monthly sums of the current year
// @Tags stats
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=service.Dashboard}
// @Router /api/stats/dashboard [get]
func (h *StatsHandler) Dashboard(c *gin.Context) {
	d, err := h.analytics.Dashboard()
	if err != nil {
		Fail(c, err, "failed to compute dashboard")
		return
	}
	Success(c, d)
}

// History rows and totals of a date range
// @Summary History
// @Description Inclusive range; start after end gives an empty result
// @Tags stats
// @Produce json
// @Security BearerAuth
// @Param start query string true "YYYY-MM-DD"
// @Param end query string true "YYYY-MM-DD"
// @Success 200 {object} Response{data=service.History}
// @Failure 400 {object} Response
// @Router /api/stats/history [get]
func (h *StatsHandler) History(c *gin.Context) {
	hist, err := h.analytics.History(c.Query("start"), c.Query("end"))
	if err != nil {
		Fail(c, err, "failed to load history")
		return
	}
	Success(c, hist)
}

// Predictions projection inputs and results
// @Summary Predictions
// @Description Subscriptions, monthly averages, category windows, balance and projection
// @Tags stats
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=service.Predictions}
// @Router /api/stats/predictions [get]
func (h *StatsHandler) Predictions(c *gin.Context) {
	p, err := h.analytics.Predictions()
	if err != nil {
		Fail(c, err, "failed to compute predictions")
		return
	}
	Success(c, p)
}
