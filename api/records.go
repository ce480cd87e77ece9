package api

import (
	"strconv"

	"fintrack/models"
	"fintrack/service"

	"github.com/gin-gonic/gin"
)

// RecordHandler generic CRUD over income, outgoing and payment_providers
type RecordHandler struct {
	records *service.RecordService
}

// NewRecordHandler creates the record handler
func NewRecordHandler(records *service.RecordService) *RecordHandler {
	return &RecordHandler{records: records}
}

// InsertResponse id of the new row
type InsertResponse struct {
	InsertedID int64 `json:"insertedId"`
}

// UpdateResponse rows modified
type UpdateResponse struct {
	ModifiedCount int64 `json:"modifiedCount"`
}

// DeleteResponse rows deleted
type DeleteResponse struct {
	DeletedCount int64 `json:"deletedCount"`
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		BadRequest(c, "invalid id")
		return 0, false
	}
	return id, true
}

// List returns every row of a kind
// @Summary List rows
// @Description Newest first
// @Tags records
// @Produce json
// @Security BearerAuth
// @Param kind path string true "income | outgoing | payment_providers"
// @Success 200 {object} Response{data=[]object}
// @Failure 400 {object} Response "invalid kind"
// @Router /api/db/{kind} [get]
func (h *RecordHandler) List(c *gin.Context) {
	rows, err := h.records.List(models.Kind(c.Param("kind")))
	if err != nil {
		Fail(c, err, "failed to list records")
		return
	}
	Success(c, rows)
}

// Get returns one row or null
// @Summary Get row
// @Tags records
// @Produce json
// @Security BearerAuth
// @Param kind path string true "income | outgoing | payment_providers"
// @Param id path int true "row id"
// @Success 200 {object} Response{data=object} "data is null when the row does not exist"
// @Failure 400 {object} Response
// @Router /api/db/{kind}/{id} [get]
func (h *RecordHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	row, err := h.records.Get(models.Kind(c.Param("kind")), id)
	if err != nil {
		Fail(c, err, "failed to load record")
		return
	}
	if row == nil {
		Success(c, nil)
		return
	}
	Success(c, row)
}

// Insert creates a row
// @Summary Insert row
// @Description id, createdAt and updatedAt are assigned by the store
// @Tags records
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param kind path string true "income | outgoing | payment_providers"
// @Param request body object true "column values"
// @Success 200 {object} Response{data=InsertResponse}
// @Failure 400 {object} Response
// @Router /api/db/{kind} [post]
func (h *RecordHandler) Insert(c *gin.Context) {
	var fields models.Record
	if err := c.ShouldBindJSON(&fields); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	id, err := h.records.Insert(models.Kind(c.Param("kind")), fields)
	if err != nil {
		Fail(c, err, "failed to insert record")
		return
	}
	Success(c, InsertResponse{InsertedID: id})
}

// Update merges fields into a row
// @Summary Update row
// @Description Absent fields keep their value; modifiedCount is 0 for a missing row
// @Tags records
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param kind path string true "income | outgoing | payment_providers"
// @Param id path int true "row id"
// @Param request body object true "changed column values"
// @Success 200 {object} Response{data=UpdateResponse}
// @Failure 400 {object} Response
// @Router /api/db/{kind}/{id} [put]
func (h *RecordHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var fields models.Record
	if err := c.ShouldBindJSON(&fields); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	n, err := h.records.Update(models.Kind(c.Param("kind")), id, fields)
	if err != nil {
		Fail(c, err, "failed to update record")
		return
	}
	Success(c, UpdateResponse{ModifiedCount: n})
}

// Delete removes a row
// @Summary Delete row
// @Tags records
// @Produce json
// @Security BearerAuth
// @Param kind path string true "income | outgoing | payment_providers"
// @Param id path int true "row id"
// @Success 200 {object} Response{data=DeleteResponse}
// @Failure 400 {object} Response
// @Router /api/db/{kind}/{id} [delete]
func (h *RecordHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	n, err := h.records.Delete(models.Kind(c.Param("kind")), id)
	if err != nil {
		Fail(c, err, "failed to delete record")
		return
	}
	Success(c, DeleteResponse{DeletedCount: n})
}
