package api

import (
	"errors"
	"fmt"
	"net/http"

	"coachly/fitness-coach/internal/ai"
	"coachly/fitness-coach/internal/domain"
	"coachly/fitness-coach/internal/resolve"
	"coachly/fitness-coach/internal/service"

	"github.com/gin-gonic/gin"
)

// ExerciseHandler serves library lookups, batch matching, enrichment and
// media presigning.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
	resolver        *resolve.Resolver
	views           *resolve.Views
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService, resolver *resolve.Resolver, views *resolve.Views) *ExerciseHandler {
	return &ExerciseHandler{
		exerciseService: exerciseService,
		resolver:        resolver,
		views:           views,
	}
}

// --- Request/Response Structs ---

type MatchRequest struct {
	Refs []domain.ExerciseRef `json:"refs" binding:"required"`
}

type EnrichRequest struct {
	Ref domain.ExerciseRef `json:"ref" binding:"required"`
	// Day ties the enrichment to the user's day view; the result merges in
	// only while that day is still selected.
	Day int `json:"day"`
}

type EnrichResponse struct {
	Exercise *domain.LibraryExercise `json:"exercise"`
	Partial  bool                    `json:"partial,omitempty"`
	Applied  bool                    `json:"applied"`
}

type UploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type ConfirmUploadRequest struct {
	ObjectKey   string `json:"objectKey" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
}

// --- Handler Methods ---

// Get returns one library exercise.
func (h *ExerciseHandler) Get(c *gin.Context) {
	exerciseID, ok := pathObjectID(c, "exerciseId")
	if !ok {
		return
	}

	exercise, err := h.exerciseService.GetExercise(c.Request.Context(), exerciseID)
	if err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load exercise")
		}
		return
	}
	c.JSON(http.StatusOK, exercise)
}

// Match resolves a batch of plan exercise references against the library.
// An id reference wins over a name match for the same entry.
func (h *ExerciseHandler) Match(c *gin.Context) {
	var req MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	resolution, err := h.resolver.ResolveBatch(c.Request.Context(), req.Refs)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve exercises")
		return
	}
	c.JSON(http.StatusOK, mapResolved(req.Refs, resolution))
}

// Enrich generates library detail for an unmatched exercise reference and
// persists it. Partial detail is still returned, flagged.
func (h *ExerciseHandler) Enrich(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req EnrichRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	if req.Ref.IsEmpty() {
		abortWithError(c, http.StatusBadRequest, "Exercise reference is empty")
		return
	}

	exercise, err := h.resolver.EnrichOne(c.Request.Context(), req.Ref)
	partial := errors.Is(err, ai.ErrPartialData)
	if err != nil && !partial {
		respondGenerationError(c, err)
		return
	}

	applied := false
	if req.Day > 0 {
		// Merge into the day view only if the user is still on that day.
		applied = h.views.For(userID.Hex()).MergeExercise(req.Day, *exercise)
	}

	c.JSON(http.StatusOK, EnrichResponse{Exercise: exercise, Partial: partial, Applied: applied})
}

// RequestMediaUpload presigns a direct upload for an exercise's demo media.
func (h *ExerciseHandler) RequestMediaUpload(c *gin.Context) {
	exerciseID, ok := pathObjectID(c, "exerciseId")
	if !ok {
		return
	}

	var req UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	ticket, err := h.exerciseService.RequestMediaUpload(c.Request.Context(), exerciseID, req.ContentType)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExerciseNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrUnsupportedMedia):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to create upload URL")
		}
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// ConfirmMediaUpload records an uploaded object key on the exercise.
func (h *ExerciseHandler) ConfirmMediaUpload(c *gin.Context) {
	exerciseID, ok := pathObjectID(c, "exerciseId")
	if !ok {
		return
	}

	var req ConfirmUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	if err := h.exerciseService.ConfirmMediaUpload(c.Request.Context(), exerciseID, req.ObjectKey, req.ContentType); err != nil {
		switch {
		case errors.Is(err, service.ErrExerciseNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrMediaKeyMismatch):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to confirm upload")
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// GetMediaURLs presigns download URLs for an exercise's media.
func (h *ExerciseHandler) GetMediaURLs(c *gin.Context) {
	exerciseID, ok := pathObjectID(c, "exerciseId")
	if !ok {
		return
	}

	urls, err := h.exerciseService.GetMediaURLs(c.Request.Context(), exerciseID)
	if err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to create download URLs")
		}
		return
	}
	c.JSON(http.StatusOK, urls)
}
