package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"robolab-portal/internal/service"
	"robolab-portal/pkg/response"
)

// SystemHandler diagnostics HTTP handlers
type SystemHandler struct {
	svc service.SystemService
}

func NewSystemHandler(svc service.SystemService) *SystemHandler {
	return &SystemHandler{svc: svc}
}

// Health GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	resp := h.svc.Health(c.Request.Context())
	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, response.Response{Code: 0, Message: resp.Status, Data: resp})
}

// Schema reports missing tables and columns.
// GET /api/v1/system/schema
func (h *SystemHandler) Schema(c *gin.Context) {
	report, err := h.svc.Schema(c.Request.Context())
	if err != nil {
		if !storeError(c, err) {
			response.InternalError(c)
		}
		return
	}
	if !report.OK {
		c.JSON(http.StatusInternalServerError, response.Response{
			Code:    response.CodeSchemaMismatch,
			Message: "database schema is out of date",
			Data:    report,
			Details: report.Remediation,
		})
		return
	}
	response.OK(c, report)
}
