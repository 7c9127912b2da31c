package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"habitquest/internal/service"
)

type LedgerHandler struct {
	ledger *service.LedgerService
	logger *zap.Logger
}

func NewLedgerHandler(ledger *service.LedgerService, logger *zap.Logger) *LedgerHandler {
	return &LedgerHandler{ledger: ledger, logger: logger}
}

func (h *LedgerHandler) ListPenalties(c *gin.Context) {
	unpaidOnly := c.Query("unpaid") == "true"
	penalties, err := h.ledger.ListPenalties(c.Request.Context(), userID(c), unpaidOnly)
	if err != nil {
		h.logger.Error("Failed to list penalties", zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"penalties": penalties})
}

func (h *LedgerHandler) ListRewards(c *gin.Context) {
	unclaimedOnly := c.Query("unclaimed") == "true"
	rewards, err := h.ledger.ListRewards(c.Request.Context(), userID(c), unclaimedOnly)
	if err != nil {
		h.logger.Error("Failed to list rewards", zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rewards": rewards})
}

type settleRequest struct {
	Reference string `json:"reference"`
}

func (h *LedgerHandler) MarkPenaltyPaid(c *gin.Context) {
	penaltyID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid penalty id"})
		return
	}

	var req settleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	penalty, err := h.ledger.MarkPenaltyPaid(c.Request.Context(), userID(c), penaltyID, req.Reference)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"penalty": penalty})
}

func (h *LedgerHandler) MarkRewardClaimed(c *gin.Context) {
	rewardID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reward id"})
		return
	}

	var req settleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.ledger.MarkRewardClaimed(c.Request.Context(), userID(c), rewardID, req.Reference); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "claimed"})
}
