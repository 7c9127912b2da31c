package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"habitquest/internal/service"
)

type PaymentHandler struct {
	ledger *service.LedgerService
	logger *zap.Logger
}

func NewPaymentHandler(ledger *service.LedgerService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{ledger: ledger, logger: logger}
}

type intentRequest struct {
	PenaltyIDs []int64 `json:"penalty_ids"`
}

// CreateIntent charges the sum of the selected unpaid penalties and returns
// the gateway's client secret for client-side confirmation.
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	var req intentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	intent, err := h.ledger.CreatePaymentIntent(c.Request.Context(), userID(c), req.PenaltyIDs)
	if err != nil {
		h.logger.Warn("Payment intent creation failed",
			zap.Int64("user_id", userID(c)),
			zap.Error(err),
		)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"intent_id":     intent.ID,
		"client_secret": intent.ClientSecret,
		"amount":        intent.Amount,
	})
}

type confirmRequest struct {
	PenaltyIDs []int64 `json:"penalty_ids"`
	PaymentRef string  `json:"payment_ref"`
}

// Confirm consumes the gateway's success callback and settles the penalties.
func (h *PaymentHandler) Confirm(c *gin.Context) {
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	settled, err := h.ledger.ConfirmPayment(c.Request.Context(), userID(c), req.PenaltyIDs, req.PaymentRef)
	if err != nil {
		h.logger.Error("Payment confirmation failed",
			zap.Int64("user_id", userID(c)),
			zap.String("payment_ref", req.PaymentRef),
			zap.Error(err),
		)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"settled": settled})
}
