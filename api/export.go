package api

import (
	"fmt"
	"net/http"

	"fintrack/models"
	"fintrack/service"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler CSV and workbook export
type ExportHandler struct {
	export    *service.ExportService
	analytics *service.AnalyticsService
}

// NewExportHandler creates the export handler
func NewExportHandler(export *service.ExportService, analytics *service.AnalyticsService) *ExportHandler {
	return &ExportHandler{export: export, analytics: analytics}
}

// WriteCSVRequest CSV built by the client
type WriteCSVRequest struct {
	Content  string `json:"content" example:"Date,Description,Amount"`
	FileName string `json:"fileName" example:"expenses_export_2024-01-20.csv"`
}

// WriteCSVResponse written file
type WriteCSVResponse struct {
	Path string `json:"path"`
}

// WriteCSV saves client supplied CSV into the export directory
// @Summary Save CSV
// @Description Writes content under the configured export directory; the file name is sanitised
// @Tags export
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body WriteCSVRequest true "csv content"
// @Success 200 {object} Response{data=WriteCSVResponse}
// @Failure 400 {object} Response
// @Router /api/export/csv [post]
func (h *ExportHandler) WriteCSV(c *gin.Context) {
	var req WriteCSVRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	path, err := h.export.WriteCSV(req.FileName, req.Content)
	if err != nil {
		Fail(c, err, "failed to write csv")
		return
	}
	Success(c, WriteCSVResponse{Path: path})
}

// Download streams income.csv, outgoing.csv or history.xlsx
// @Summary Download export
// @Description income.csv and outgoing.csv hold every row; history.xlsx needs start and end
// @Tags export
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param file path string true "income.csv | outgoing.csv | history.xlsx"
// @Param start query string false "YYYY-MM-DD, history.xlsx only"
// @Param end query string false "YYYY-MM-DD, history.xlsx only"
// @Success 200 {file} file
// @Failure 400 {object} Response
// @Failure 404 {object} Response
// @Router /api/export/{file} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	switch file := c.Param("file"); file {
	case string(models.KindIncome) + ".csv":
		rows, err := h.export.Income()
		if err != nil {
			Fail(c, err, "failed to load income")
			return
		}
		content, err := service.IncomeCSV(rows)
		h.sendCSV(c, file, content, err)
	case string(models.KindOutgoing) + ".csv":
		rows, err := h.export.Outgoing()
		if err != nil {
			Fail(c, err, "failed to load outgoing")
			return
		}
		content, err := service.OutgoingCSV(rows)
		h.sendCSV(c, file, content, err)
	case "history.xlsx":
		start, end := c.Query("start"), c.Query("end")
		if start == "" || end == "" {
			BadRequest(c, "start and end are required")
			return
		}
		hist, err := h.analytics.History(start, end)
		if err != nil {
			Fail(c, err, "failed to load history")
			return
		}
		data, err := service.HistoryWorkbook(hist)
		if err != nil {
			Fail(c, err, "failed to build workbook")
			return
		}
		filename := fmt.Sprintf("history_%s_%s.xlsx", start, end)
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
		c.Data(http.StatusOK, xlsxContentType, data)
	default:
		NotFound(c, "unknown export "+file)
	}
}

func (h *ExportHandler) sendCSV(c *gin.Context, filename, content string, err error) {
	if err != nil {
		Fail(c, err, "failed to build csv")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(content))
}
