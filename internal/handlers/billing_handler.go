package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hasan-ston/forstudents/internal/services"
	"github.com/hasan-ston/forstudents/internal/utils"
	"github.com/hasan-ston/forstudents/internal/validator"
)

type BillingHandler struct {
	BaseHandler
	billingService services.BillingService
}

func NewBillingHandler(billingService services.BillingService, logger utils.Logger) *BillingHandler {
	return &BillingHandler{
		BaseHandler:    NewBaseHandler(logger),
		billingService: billingService,
	}
}

// Checkout opens a payment session for the paid plan
func (h *BillingHandler) Checkout(c *gin.Context) {
	actor, ok := ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	var req validator.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	result, err := h.billingService.Checkout(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// Webhook receives plan change callbacks from the billing provider. It is
// unauthenticated; the shared secret signature is checked instead.
func (h *BillingHandler) Webhook(c *gin.Context) {
	var req validator.WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	signature := c.GetHeader("X-Billing-Signature")

	h.LogRequest(c, "Billing webhook received", "event", req.Event, "user_id", req.UserID)

	if err := h.billingService.HandleWebhook(c.Request.Context(), signature, &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Webhook processed",
	})
}
