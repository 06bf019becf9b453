package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"coachly/fitness-coach/internal/domain"
	"coachly/fitness-coach/internal/service"
	"coachly/fitness-coach/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// completionRecordTimeout bounds the progress write that fires when a
// session completes, detached from any HTTP request.
const completionRecordTimeout = 10 * time.Second

// SessionHandler runs live workout sessions through the session manager.
type SessionHandler struct {
	manager     *session.Manager
	planService service.PlanService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(manager *session.Manager, planService service.PlanService) *SessionHandler {
	return &SessionHandler{manager: manager, planService: planService}
}

// --- Request/Response Structs ---

type StartSessionRequest struct {
	PlanID     string            `json:"planId" binding:"required"`
	Day        int               `json:"day"` // defaults to the plan's current day
	Difficulty domain.Difficulty `json:"difficulty" binding:"omitempty,oneof=easy ok hard brutal"`
}

type SessionItemResponse struct {
	Name         string `json:"name"`
	Sets         int    `json:"sets,omitempty"`
	RepsOrTime   string `json:"repsOrTime"`
	Timed        bool   `json:"timed"`
	DurationSec  int    `json:"durationSec,omitempty"`
	RemainingSec int    `json:"remainingSec,omitempty"`
}

type SessionStateResponse struct {
	SessionID    string               `json:"sessionId"`
	Phase        string               `json:"phase"`
	ItemIndex    int                  `json:"itemIndex"`
	ItemsInPhase int                  `json:"itemsInPhase"`
	Paused       bool                 `json:"paused"`
	Item         *SessionItemResponse `json:"item,omitempty"`
}

func mapSessionState(id string, state session.State) SessionStateResponse {
	response := SessionStateResponse{
		SessionID:    id,
		Phase:        state.Phase.String(),
		ItemIndex:    state.ItemIndex,
		ItemsInPhase: state.ItemsInPhase,
		Paused:       state.Paused,
	}
	if state.Item != nil {
		response.Item = &SessionItemResponse{
			Name:         state.Item.Ref.Name,
			Sets:         state.Item.Ref.Sets,
			RepsOrTime:   state.Item.Ref.RepsOrTime,
			Timed:        state.Item.Timed,
			DurationSec:  state.Item.DurationSec,
			RemainingSec: state.Item.RemainingSec,
		}
	}
	return response
}

// --- Handler Methods ---

// Start begins a workout session for one plan day. Any running session of
// the same user is aborted first. Completing the session records one
// progress entry for the day.
func (h *SessionHandler) Start(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	planID, err := primitive.ObjectIDFromHex(req.PlanID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid planId")
		return
	}

	plan, err := h.planService.GetPlan(c.Request.Context(), planID, userID)
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load plan")
		}
		return
	}

	day := req.Day
	if day == 0 {
		day = plan.CurrentDay
	}
	if day < 1 || day > plan.DurationDays {
		abortWithError(c, http.StatusBadRequest, "Day is outside the plan duration")
		return
	}

	fitnessDay := plan.FitnessDayFor(day)
	if fitnessDay == nil || fitnessDay.IsRestDay {
		abortWithError(c, http.StatusBadRequest, "No workout on this day")
		return
	}

	difficulty := req.Difficulty
	workout := session.New(*fitnessDay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), completionRecordTimeout)
		defer cancel()
		if _, err := h.planService.RecordProgress(ctx, userID, planID, day, difficulty); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"userId": userID.Hex(),
				"planId": planID.Hex(),
				"day":    day,
			}).Error("failed to record workout completion")
		}
	})

	sessionID, state, err := h.manager.Start(userID.Hex(), workout)
	if err != nil {
		if errors.Is(err, session.ErrNoExercises) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to start session")
		}
		return
	}
	c.JSON(http.StatusCreated, mapSessionState(sessionID, state))
}

// Current returns the state of the user's live session.
func (h *SessionHandler) Current(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	sessionID, state, err := h.manager.StateForUser(userID.Hex())
	if err != nil {
		abortWithError(c, http.StatusNotFound, "No live session")
		return
	}
	c.JSON(http.StatusOK, mapSessionState(sessionID, state))
}

// Pause freezes the running session's countdown.
func (h *SessionHandler) Pause(c *gin.Context) {
	h.command(c, h.manager.Pause)
}

// Resume continues a paused session from where it stopped.
func (h *SessionHandler) Resume(c *gin.Context) {
	h.command(c, h.manager.Resume)
}

// Skip advances to the next exercise, or marks a rep-based exercise done.
func (h *SessionHandler) Skip(c *gin.Context) {
	h.command(c, h.manager.Skip)
}

// Abort terminates the session without recording progress.
func (h *SessionHandler) Abort(c *gin.Context) {
	h.command(c, h.manager.Abort)
}

func (h *SessionHandler) command(c *gin.Context, action func(id string) error) {
	sessionID := c.Param("sessionId")
	if sessionID == "" {
		abortWithError(c, http.StatusBadRequest, "Missing sessionId")
		return
	}

	if err := action(sessionID); err != nil {
		switch {
		case errors.Is(err, session.ErrSessionNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, session.ErrNotRunning):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Session command failed")
		}
		return
	}

	state, err := h.manager.State(sessionID)
	if err != nil {
		// Command drove the session to a terminal state and it was reaped.
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, mapSessionState(sessionID, state))
}
