package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"habitquest/internal/service"
)

type UnlockHandler struct {
	unlocks *service.UnlockService
	logger  *zap.Logger
}

func NewUnlockHandler(unlocks *service.UnlockService, logger *zap.Logger) *UnlockHandler {
	return &UnlockHandler{unlocks: unlocks, logger: logger}
}

func (h *UnlockHandler) ListAchievements(c *gin.Context) {
	catalog, unlocked, err := h.unlocks.ListAchievements(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"achievements": catalog, "unlocked": unlocked})
}

func (h *UnlockHandler) Evaluate(c *gin.Context) {
	unlocked, err := h.unlocks.EvaluateAchievements(c.Request.Context(), userID(c))
	if err != nil {
		h.logger.Error("Achievement evaluation failed",
			zap.Int64("user_id", userID(c)),
			zap.Error(err),
		)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unlocked": unlocked})
}

func (h *UnlockHandler) ListSkills(c *gin.Context) {
	catalog, unlocked, err := h.unlocks.ListSkills(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"skills": catalog, "unlocked": unlocked})
}

func (h *UnlockHandler) UnlockSkill(c *gin.Context) {
	skillID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid skill id"})
		return
	}

	skill, err := h.unlocks.UnlockSkill(c.Request.Context(), userID(c), skillID)
	if err != nil {
		h.logger.Warn("Skill unlock failed",
			zap.Int64("user_id", userID(c)),
			zap.Int64("skill_id", skillID),
			zap.Error(err),
		)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"skill": skill})
}
