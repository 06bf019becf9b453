package api

import (
	"fmt"
	"net/http"

	"coachly/fitness-coach/internal/notify"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationHandler serves the client's notification poll.
type NotificationHandler struct {
	notifyService *notify.Service
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notifyService *notify.Service) *NotificationHandler {
	return &NotificationHandler{notifyService: notifyService}
}

type MarkReadRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

// Poll returns unread notifications plus the delay before the next poll.
// On a store failure the advertised delay still grows, so clients back off.
func (h *NotificationHandler) Poll(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	result, pollErr := h.notifyService.Poll(c.Request.Context(), userID)
	if pollErr != nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
			"error":         "Notifications are unavailable, retry later",
			"nextPollInSec": result.NextPollInSec,
		})
		return
	}
	c.JSON(http.StatusOK, result)
}

// MarkRead acknowledges notifications so they drop out of future polls.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	ids := make([]primitive.ObjectID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid notification id %q", raw))
			return
		}
		ids = append(ids, id)
	}

	if err := h.notifyService.MarkRead(c.Request.Context(), userID, ids); err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to mark notifications read")
		return
	}
	c.Status(http.StatusNoContent)
}
