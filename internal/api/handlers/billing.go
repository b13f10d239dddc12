package handlers

import (
	"io"
	"net/http"

	"github.com/setlistr/setlistr/internal/api/dto"
	"github.com/setlistr/setlistr/internal/api/middleware"
	"github.com/setlistr/setlistr/internal/domain/user"
	"github.com/setlistr/setlistr/internal/pkg/errors"
	"github.com/setlistr/setlistr/internal/pkg/logger"
	"github.com/setlistr/setlistr/internal/pkg/utils"
)

// maxWebhookBytes bounds webhook payloads; Stripe events are far smaller.
const maxWebhookBytes = 64 << 10

// BillingHandler serves subscription status, trials, checkout and the
// payment provider webhook
type BillingHandler struct {
	service user.SubscriptionService
	logger  *logger.Logger
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(service user.SubscriptionService, log *logger.Logger) *BillingHandler {
	return &BillingHandler{
		service: service,
		logger:  log,
	}
}

// Status returns the caller's subscription
// @Summary Subscription status
// @Tags Billing
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=user.Subscription} "Subscription"
// @Security BearerAuth
// @Router /subscription [get]
func (h *BillingHandler) Status(w http.ResponseWriter, r *http.Request) {
	sub, err := h.service.Status(r.Context(), middleware.ActorFrom(r))
	if err != nil {
		writeErr(w, h.logger, err, "Failed to load subscription")
		return
	}
	utils.WriteSuccess(w, http.StatusOK, sub)
}

// StartTrial starts the one free trial of an account
// @Summary Start trial
// @Tags Billing
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=user.Subscription} "Subscription"
// @Failure 409 {object} utils.ErrorResponse "Trial already used"
// @Security BearerAuth
// @Router /subscription/trial [post]
func (h *BillingHandler) StartTrial(w http.ResponseWriter, r *http.Request) {
	sub, err := h.service.StartTrial(r.Context(), middleware.ActorFrom(r))
	if err != nil {
		writeErr(w, h.logger, err, "Failed to start trial")
		return
	}
	utils.WriteSuccess(w, http.StatusOK, sub)
}

// Checkout creates a payment session
// @Summary Create checkout session
// @Tags Billing
// @Produce json
// @Success 200 {object} dto.CheckoutResponse "Checkout URL"
// @Failure 502 {object} utils.ErrorResponse "Payment provider error"
// @Failure 503 {object} utils.ErrorResponse "Payments not configured"
// @Security BearerAuth
// @Router /subscription/checkout [post]
func (h *BillingHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	url, err := h.service.Checkout(r.Context(), middleware.ActorFrom(r))
	if err != nil {
		writeErr(w, h.logger, err, "Failed to create checkout session")
		return
	}
	utils.WriteSuccess(w, http.StatusOK, dto.CheckoutResponse{URL: url})
}

// Webhook applies a signed Stripe event
// @Summary Stripe webhook
// @Tags Billing
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Stripe signature"
// @Success 200 {object} utils.SuccessResponse "Event accepted"
// @Failure 400 {object} utils.ErrorResponse "Invalid signature or payload"
// @Router /webhooks/stripe [post]
func (h *BillingHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid webhook payload"))
		return
	}

	if err := h.service.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		writeErr(w, h.logger, err, "Failed to handle webhook")
		return
	}
	utils.WriteSuccess(w, http.StatusOK, map[string]bool{"received": true})
}
