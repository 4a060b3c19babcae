package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hasan-ston/forstudents/internal/services"
	"github.com/hasan-ston/forstudents/internal/utils"
)

type AuditHandler struct {
	BaseHandler
	auditService services.AuditService
}

func NewAuditHandler(auditService services.AuditService, logger utils.Logger) *AuditHandler {
	return &AuditHandler{
		BaseHandler:  NewBaseHandler(logger),
		auditService: auditService,
	}
}

// List returns download audit entries, newest first (admin only)
func (h *AuditHandler) List(c *gin.Context) {
	opts := h.listOptions(c)

	entries, total, err := h.auditService.List(c.Request.Context(), opts)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"audits": entries,
		"total":  total,
	})
}

// Export downloads the filtered audit log as a spreadsheet (admin only)
func (h *AuditHandler) Export(c *gin.Context) {
	opts := h.listOptions(c)

	h.LogRequest(c, "Exporting audit log")

	data, err := h.auditService.ExportXLSX(c.Request.Context(), opts)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	fileName := fmt.Sprintf("downloads-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (h *AuditHandler) listOptions(c *gin.Context) services.AuditListOptions {
	opts := services.AuditListOptions{
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 50),
	}
	opts.UserID = queryUint(c, "user_id")
	opts.DocumentID = queryUint(c, "document_id")
	if v := c.Query("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			opts.DateFrom = &t
		}
	}
	if v := c.Query("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			opts.DateTo = &t
		}
	}
	return opts
}

func queryUint(c *gin.Context, name string) *uint {
	if v := c.Query(name); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil && n > 0 {
			id := uint(n)
			return &id
		}
	}
	return nil
}
