package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"coachly/fitness-coach/internal/service"

	"github.com/gin-gonic/gin"
)

// CoachHandler serves the virtual coach conversation.
type CoachHandler struct {
	coachService service.CoachService
}

// NewCoachHandler creates a new CoachHandler.
func NewCoachHandler(coachService service.CoachService) *CoachHandler {
	return &CoachHandler{coachService: coachService}
}

type SendMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

// Send posts a message to the coach and returns the reply.
func (h *CoachHandler) Send(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	reply, err := h.coachService.Send(c.Request.Context(), userID, req.Message)
	if err != nil {
		if errors.Is(err, service.ErrEmptyMessage) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			respondGenerationError(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, reply)
}

// History returns recent conversation messages, oldest first.
func (h *CoachHandler) History(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	messages, err := h.coachService.History(c.Request.Context(), userID, limit)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load conversation")
		return
	}
	c.JSON(http.StatusOK, messages)
}

// Clear wipes the user's conversation.
func (h *CoachHandler) Clear(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	if err := h.coachService.Clear(c.Request.Context(), userID); err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to clear conversation")
		return
	}
	c.Status(http.StatusNoContent)
}
