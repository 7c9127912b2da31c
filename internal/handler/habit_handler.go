package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"habitquest/internal/service"
)

type HabitHandler struct {
	habits *service.HabitService
	logger *zap.Logger
}

func NewHabitHandler(habits *service.HabitService, logger *zap.Logger) *HabitHandler {
	return &HabitHandler{habits: habits, logger: logger}
}

func (h *HabitHandler) Create(c *gin.Context) {
	var in service.HabitInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	habit, err := h.habits.Create(c.Request.Context(), userID(c), in)
	if err != nil {
		h.logger.Warn("Habit creation failed",
			zap.Int64("user_id", userID(c)),
			zap.Error(err),
		)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"habit": habit})
}

func (h *HabitHandler) List(c *gin.Context) {
	habits, err := h.habits.List(c.Request.Context(), userID(c))
	if err != nil {
		h.logger.Error("Failed to list habits", zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"habits": habits})
}

func (h *HabitHandler) Get(c *gin.Context) {
	habitID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit id"})
		return
	}

	habit, err := h.habits.Get(c.Request.Context(), userID(c), habitID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"habit": habit})
}

func (h *HabitHandler) Update(c *gin.Context) {
	habitID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit id"})
		return
	}

	var in service.HabitInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	habit, err := h.habits.Update(c.Request.Context(), userID(c), habitID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"habit": habit})
}

func (h *HabitHandler) Delete(c *gin.Context) {
	habitID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit id"})
		return
	}

	if err := h.habits.Delete(c.Request.Context(), userID(c), habitID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
