package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"coachly/fitness-coach/internal/ai"
	"coachly/fitness-coach/internal/domain"
	"coachly/fitness-coach/internal/resolve"
	"coachly/fitness-coach/internal/service"

	"github.com/gin-gonic/gin"
)

// PlanHandler serves plan listing, activation, progress and the day view.
type PlanHandler struct {
	planService service.PlanService
	mealService service.MealService
	resolver    *resolve.Resolver
	views       *resolve.Views
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(planService service.PlanService, mealService service.MealService, resolver *resolve.Resolver, views *resolve.Views) *PlanHandler {
	return &PlanHandler{
		planService: planService,
		mealService: mealService,
		resolver:    resolver,
		views:       views,
	}
}

// --- Request/Response Structs ---

// PlanResponse summarizes a plan without its full day content.
type PlanResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name,omitempty"`
	CurrentDay   int       `json:"currentDay"`
	DurationDays int       `json:"durationDays"`
	IsActive     bool      `json:"isActive"`
	FitnessDays  int       `json:"fitnessDayCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ResolvedExerciseResponse pairs a plan's exercise reference with its library
// record when one was found.
type ResolvedExerciseResponse struct {
	Ref      domain.ExerciseRef      `json:"ref"`
	Exercise *domain.LibraryExercise `json:"exercise,omitempty"`
	Resolved bool                    `json:"resolved"`
}

// DayViewResponse is everything the client renders for one plan day.
type DayViewResponse struct {
	Day       int                     `json:"day"`
	IsRestDay bool                    `json:"isRestDay"`
	Workout   *WorkoutDayResponse     `json:"workout,omitempty"`
	Meals     []service.EffectiveMeal `json:"meals"`
	Stale     bool                    `json:"stale,omitempty"`
}

// WorkoutDayResponse is the resolved workout portion of a day view.
type WorkoutDayResponse struct {
	WorkoutName            string                     `json:"workoutName,omitempty"`
	EstimatedCaloriesBurnt int                        `json:"estimatedCaloriesBurnt,omitempty"`
	Warmup                 []ResolvedExerciseResponse `json:"warmup"`
	Main                   []ResolvedExerciseResponse `json:"main"`
	Cooldown               []ResolvedExerciseResponse `json:"cooldown"`
}

type RecordProgressRequest struct {
	Day        int               `json:"day" binding:"required,gt=0"`
	Difficulty domain.Difficulty `json:"difficulty" binding:"omitempty,oneof=easy ok hard brutal"`
}

func MapPlanToResponse(plan *domain.Plan) PlanResponse {
	return PlanResponse{
		ID:           plan.ID.Hex(),
		Name:         plan.Name,
		CurrentDay:   plan.CurrentDay,
		DurationDays: plan.DurationDays,
		IsActive:     plan.IsActive,
		FitnessDays:  len(plan.FitnessDays),
		CreatedAt:    plan.CreatedAt,
	}
}

// respondGenerationError maps AI failures to retryable gateway statuses.
func respondGenerationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ai.ErrConnection):
		abortWithError(c, http.StatusBadGateway, "The coach is unreachable right now, please try again")
	case errors.Is(err, ai.ErrGeneration):
		abortWithError(c, http.StatusBadGateway, "The coach could not produce a result, please try again")
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

// --- Handler Methods ---

// List returns the user's plans, newest first.
func (h *PlanHandler) List(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	plans, err := h.planService.ListPlans(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list plans")
		return
	}

	responses := make([]PlanResponse, 0, len(plans))
	for i := range plans {
		responses = append(responses, MapPlanToResponse(&plans[i]))
	}
	c.JSON(http.StatusOK, responses)
}

// Active returns the user's active plan, 404 when there is none.
func (h *PlanHandler) Active(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	plan, err := h.planService.GetActivePlan(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrNoActivePlan) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load active plan")
		}
		return
	}
	c.JSON(http.StatusOK, MapPlanToResponse(plan))
}

// Generate creates a fresh plan from the user's profile and activates it.
func (h *PlanHandler) Generate(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	plan, err := h.planService.GeneratePlan(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrNoProfile) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			respondGenerationError(c, err)
		}
		return
	}
	c.JSON(http.StatusCreated, MapPlanToResponse(plan))
}

// Activate makes the given plan the user's single active plan.
func (h *PlanHandler) Activate(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	planID, ok := pathObjectID(c, "planId")
	if !ok {
		return
	}

	if err := h.planService.ActivatePlan(c.Request.Context(), planID, userID); err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to activate plan")
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete removes a plan and its overrides and progress records.
func (h *PlanHandler) Delete(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	planID, ok := pathObjectID(c, "planId")
	if !ok {
		return
	}

	if err := h.planService.DeletePlan(c.Request.Context(), planID, userID); err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete plan")
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// Stats returns progress numbers for a plan.
func (h *PlanHandler) Stats(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	planID, ok := pathObjectID(c, "planId")
	if !ok {
		return
	}

	stats, err := h.planService.GetStats(c.Request.Context(), planID, userID)
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load plan stats")
		}
		return
	}
	c.JSON(http.StatusOK, stats)
}

// RecordProgress marks a day completed and advances the plan pointer.
func (h *PlanHandler) RecordProgress(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	planID, ok := pathObjectID(c, "planId")
	if !ok {
		return
	}

	var req RecordProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	plan, err := h.planService.RecordProgress(c.Request.Context(), userID, planID, req.Day, req.Difficulty)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPlanNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInvalidDay):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to record progress")
		}
		return
	}
	c.JSON(http.StatusOK, MapPlanToResponse(plan))
}

// DayView returns the resolved workout and effective meals for one plan day.
// Resolution results are applied through the user's day view, so a response
// for a day the user has already navigated away from is discarded and the
// view for the currently selected day is served instead.
func (h *PlanHandler) DayView(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	planID, ok := pathObjectID(c, "planId")
	if !ok {
		return
	}
	day, err := strconv.Atoi(c.Param("day"))
	if err != nil || day < 1 {
		abortWithError(c, http.StatusBadRequest, "Invalid day")
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
	if day > plan.DurationDays {
		abortWithError(c, http.StatusBadRequest, "Day is outside the plan duration")
		return
	}

	view := h.views.For(userID.Hex())
	view.SelectDay(day)

	fitnessDay := plan.FitnessDayFor(day)

	var resolution resolve.Resolution
	stale := false
	if fitnessDay != nil {
		res, err := h.resolver.ResolveBatch(c.Request.Context(), fitnessDay.AllExercises())
		if err != nil {
			abortWithError(c, http.StatusInternalServerError, "Failed to resolve exercises")
			return
		}
		if view.Apply(day, res) {
			resolution = res
		} else {
			// The user moved on while this resolution was in flight. Keep
			// the view for the day they are on now.
			resolution, _ = view.Current()
			stale = true
		}
	}

	meals, err := h.mealService.EffectiveMealsForDay(c.Request.Context(), userID, planID, day)
	if err != nil && !errors.Is(err, service.ErrMealNotFound) {
		abortWithError(c, http.StatusInternalServerError, "Failed to load meals")
		return
	}

	response := DayViewResponse{Day: day, Meals: meals}
	if fitnessDay != nil {
		response.IsRestDay = fitnessDay.IsRestDay
		response.Workout = &WorkoutDayResponse{
			WorkoutName:            fitnessDay.WorkoutName,
			EstimatedCaloriesBurnt: fitnessDay.EstimatedCaloriesBurnt,
			Warmup:                 mapResolved(fitnessDay.WarmupExercises, resolution),
			Main:                   mapResolved(fitnessDay.Exercises, resolution),
			Cooldown:               mapResolved(fitnessDay.CooldownExercises, resolution),
		}
	}
	response.Stale = stale
	c.JSON(http.StatusOK, response)
}

func mapResolved(refs []domain.ExerciseRef, resolution resolve.Resolution) []ResolvedExerciseResponse {
	out := make([]ResolvedExerciseResponse, 0, len(refs))
	for _, ref := range refs {
		if ref.IsEmpty() {
			continue
		}
		item := ResolvedExerciseResponse{Ref: ref}
		if ex, ok := resolution.Lookup(ref); ok {
			item.Exercise = &ex
			item.Resolved = true
		}
		out = append(out, item)
	}
	return out
}
