package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hasan-ston/forstudents/internal/models"
	"github.com/hasan-ston/forstudents/internal/services"
	"github.com/hasan-ston/forstudents/internal/utils"
	"github.com/hasan-ston/forstudents/internal/validator"
)

type DocumentHandler struct {
	BaseHandler
	documentService services.DocumentService
}

func NewDocumentHandler(documentService services.DocumentService, logger utils.Logger) *DocumentHandler {
	return &DocumentHandler{
		BaseHandler:     NewBaseHandler(logger),
		documentService: documentService,
	}
}

// Upload accepts a multipart PDF upload into the pending queue
func (h *DocumentHandler) Upload(c *gin.Context) {
	actor, ok := ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	var req validator.DocumentUploadRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing file upload",
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Could not read uploaded file",
		})
		return
	}
	defer file.Close()

	doc, err := h.documentService.Upload(c.Request.Context(), actor, &req, services.UploadInput{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Content:     file,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, doc)
}

// List returns the document catalog
func (h *DocumentHandler) List(c *gin.Context) {
	var actorPtr *services.Actor
	if actor, ok := ActorFromContext(c); ok {
		actorPtr = &actor
	}

	opts := services.DocumentListOptions{
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 50),
		Mine:     c.Query("mine") == "true",
	}
	if v := c.Query("course_code"); v != "" {
		opts.CourseCode = &v
	}
	if v := c.Query("kind"); v != "" {
		kind := models.DocumentKind(v)
		opts.Kind = &kind
	}
	if v := c.Query("status"); v != "" {
		status := models.DocumentStatus(v)
		opts.Status = &status
	}

	list, err := h.documentService.List(c.Request.Context(), actorPtr, opts)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// Get returns a single document's metadata
func (h *DocumentHandler) Get(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var actorPtr *services.Actor
	if actor, ok := ActorFromContext(c); ok {
		actorPtr = &actor
	}

	doc, err := h.documentService.Get(c.Request.Context(), actorPtr, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

// Download streams the document file through the entitlement gate
func (h *DocumentHandler) Download(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	actor, ok := ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	h.LogRequest(c, "Download requested", "document_id", id)

	result, err := h.documentService.Download(c.Request.Context(), actor, id, services.AccessMeta{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	if result.RedirectURL != "" {
		c.Redirect(http.StatusFound, result.RedirectURL)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	c.Data(http.StatusOK, result.ContentType, result.Content)
}

// Approve moves a pending document into the public catalog (admin only)
func (h *DocumentHandler) Approve(c *gin.Context) {
	h.reviewAction(c, h.documentService.Approve)
}

// Reject refuses a pending document (admin only)
func (h *DocumentHandler) Reject(c *gin.Context) {
	h.reviewAction(c, h.documentService.Reject)
}

func (h *DocumentHandler) reviewAction(c *gin.Context, action func(context.Context, services.Actor, uint, *string) (*models.DocumentResponse, error)) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	actor, ok := ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	var req validator.ReviewRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid request payload",
				Details: err.Error(),
			})
			return
		}
	}

	doc, err := action(c.Request.Context(), actor, id, req.Note)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

// Delete removes a document, its file and its children
func (h *DocumentHandler) Delete(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	actor, ok := ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	if err := h.documentService.Delete(c.Request.Context(), actor, id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Document deleted",
	})
}

func queryInt(c *gin.Context, name string, fallback int) int {
	if v := c.Query(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
