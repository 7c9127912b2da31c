package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"habitquest/internal/service"
)

type CompletionHandler struct {
	completions *service.CompletionService
	unlocks     *service.UnlockService
	logger      *zap.Logger
}

func NewCompletionHandler(completions *service.CompletionService, unlocks *service.UnlockService, logger *zap.Logger) *CompletionHandler {
	return &CompletionHandler{completions: completions, unlocks: unlocks, logger: logger}
}

type completeRequest struct {
	Date string `json:"date"` // YYYY-MM-DD, empty means today
}

// Complete records a habit completion. Achievement evaluation happens
// asynchronously off the habit.completed event, but the response carries any
// unlocks found right away for UI snappiness.
func (h *CompletionHandler) Complete(c *gin.Context) {
	habitID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit id"})
		return
	}

	var req completeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	completion, err := h.completions.Complete(c.Request.Context(), userID(c), habitID, req.Date)
	if err != nil {
		h.logger.Warn("Completion failed",
			zap.Int64("user_id", userID(c)),
			zap.Int64("habit_id", habitID),
			zap.Error(err),
		)
		respondError(c, err)
		return
	}

	unlocked, err := h.unlocks.EvaluateAchievements(c.Request.Context(), userID(c))
	if err != nil {
		// the completion committed, unlocks get caught by the event consumer
		h.logger.Warn("Inline achievement evaluation failed", zap.Error(err))
		unlocked = nil
	}

	c.JSON(http.StatusCreated, gin.H{
		"completion":            completion,
		"unlocked_achievements": unlocked,
	})
}

func (h *CompletionHandler) List(c *gin.Context) {
	completions, err := h.completions.List(c.Request.Context(), userID(c), c.Query("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"completions": completions})
}

func (h *CompletionHandler) WeeklyProgress(c *gin.Context) {
	progress, err := h.completions.WeeklyProgress(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": progress})
}
