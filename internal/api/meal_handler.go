package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"coachly/fitness-coach/internal/domain"
	"coachly/fitness-coach/internal/service"

	"github.com/gin-gonic/gin"
)

// MealHandler serves effective meals and the override operations.
type MealHandler struct {
	mealService service.MealService
}

// NewMealHandler creates a new MealHandler.
func NewMealHandler(mealService service.MealService) *MealHandler {
	return &MealHandler{mealService: mealService}
}

// --- Request/Response Structs ---

type ApplyOverrideRequest struct {
	Day  int             `json:"day" binding:"required,gt=0"`
	Slot domain.MealSlot `json:"slot" binding:"required,oneof=breakfast lunch dinner snack"`
	Meal domain.Meal     `json:"meal" binding:"required"`
}

type GenerateMealRequest struct {
	Day         int             `json:"day" binding:"required,gt=0"`
	Slot        domain.MealSlot `json:"slot" binding:"required,oneof=breakfast lunch dinner snack"`
	Ingredients []string        `json:"ingredients"`
}

// --- Handler Methods ---

// GetEffective returns the meal the user sees at (day, slot): the override
// when one exists, otherwise the plan's default.
func (h *MealHandler) GetEffective(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	planID, ok := pathObjectID(c, "planId")
	if !ok {
		return
	}
	day, slot, ok := queryDayAndSlot(c)
	if !ok {
		return
	}

	meal, err := h.mealService.GetEffectiveMeal(c.Request.Context(), userID, planID, day, slot)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPlanNotFound), errors.Is(err, service.ErrMealNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to load meal")
		}
		return
	}
	c.JSON(http.StatusOK, meal)
}

// ApplyOverride swaps the plan's meal at (day, slot) for a custom one.
func (h *MealHandler) ApplyOverride(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	planID, ok := pathObjectID(c, "planId")
	if !ok {
		return
	}

	var req ApplyOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	override, err := h.mealService.ApplyOverride(c.Request.Context(), userID, planID, req.Day, req.Slot, req.Meal)
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to apply override")
		}
		return
	}
	c.JSON(http.StatusCreated, override)
}

// GenerateMeal builds a replacement meal from an ingredient list and stores
// it as an override.
func (h *MealHandler) GenerateMeal(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	planID, ok := pathObjectID(c, "planId")
	if !ok {
		return
	}

	var req GenerateMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	override, err := h.mealService.GenerateMealFromIngredients(c.Request.Context(), userID, planID, req.Day, req.Slot, req.Ingredients)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoIngredients):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrPlanNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			respondGenerationError(c, err)
		}
		return
	}
	c.JSON(http.StatusCreated, override)
}

// RevertOverride deletes an override, restoring the plan's default meal.
func (h *MealHandler) RevertOverride(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	overrideID, ok := pathObjectID(c, "overrideId")
	if !ok {
		return
	}

	if err := h.mealService.RevertOverride(c.Request.Context(), userID, overrideID); err != nil {
		if errors.Is(err, service.ErrOverrideNotFound) {
			// Already gone; nothing changed server-side.
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to revert override")
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// queryDayAndSlot parses the day and slot query parameters.
func queryDayAndSlot(c *gin.Context) (int, domain.MealSlot, bool) {
	day, err := strconv.Atoi(c.Query("day"))
	if err != nil || day < 1 {
		abortWithError(c, http.StatusBadRequest, "Invalid day")
		return 0, "", false
	}
	slot := domain.MealSlot(c.Query("slot"))
	switch slot {
	case domain.SlotBreakfast, domain.SlotLunch, domain.SlotDinner, domain.SlotSnack:
	default:
		abortWithError(c, http.StatusBadRequest, "Invalid slot")
		return 0, "", false
	}
	return day, slot, true
}
