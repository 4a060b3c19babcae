package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hasan-ston/forstudents/internal/services"
	"github.com/hasan-ston/forstudents/internal/utils"
	"github.com/hasan-ston/forstudents/internal/validator"
)

type FeedbackHandler struct {
	BaseHandler
	feedbackService services.FeedbackService
}

func NewFeedbackHandler(feedbackService services.FeedbackService, logger utils.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		BaseHandler:     NewBaseHandler(logger),
		feedbackService: feedbackService,
	}
}

// Submit records feedback, anonymously or from a logged-in user
func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req validator.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	var actorPtr *services.Actor
	if actor, ok := ActorFromContext(c); ok {
		actorPtr = &actor
	}

	entry, err := h.feedbackService.Submit(c.Request.Context(), actorPtr, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// List returns submitted feedback (admin only)
func (h *FeedbackHandler) List(c *gin.Context) {
	opts := services.FeedbackListOptions{
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 50),
	}
	if id := queryUint(c, "document_id"); id != nil {
		opts.DocumentID = id
	}
	if id := queryUint(c, "user_id"); id != nil {
		opts.UserID = id
	}

	entries, total, err := h.feedbackService.List(c.Request.Context(), opts)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"feedback": entries,
		"total":    total,
	})
}
