package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"coachly/fitness-coach/internal/domain"
	"coachly/fitness-coach/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// --- Request/Response Structs ---

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// UserResponse excludes sensitive info like password hash.
type UserResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Onboarded bool            `json:"onboarded"`
	Profile   *domain.Profile `json:"profile,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type OnboardingRequest struct {
	HeightCm      float64              `json:"heightCm" binding:"required,gt=0"`
	WeightKg      float64              `json:"weightKg" binding:"required,gt=0"`
	Age           int                  `json:"age" binding:"required,gt=0"`
	Sex           string               `json:"sex" binding:"required"`
	Goal          domain.Goal          `json:"goal" binding:"required,oneof=lose_weight build_muscle keep_fit"`
	ActivityLevel domain.ActivityLevel `json:"activityLevel" binding:"required,oneof=sedentary light moderate high"`
	Equipment     []string             `json:"equipment"`
	Allergies     []string             `json:"allergies"`
	Language      string               `json:"language"`
}

func MapUserToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID.Hex(),
		Name:      user.Name,
		Email:     user.Email,
		Onboarded: user.Onboarded,
		Profile:   user.Profile,
		CreatedAt: user.CreatedAt,
	}
}

// --- Handler Methods ---

// Register creates a new user account.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			abortWithError(c, http.StatusConflict, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred during registration")
		}
		return
	}

	c.JSON(http.StatusCreated, MapUserToResponse(user))
}

// Login authenticates a user and returns a JWT token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrAuthenticationFailed) {
			abortWithError(c, http.StatusUnauthorized, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred during login")
		}
		return
	}

	c.JSON(http.StatusOK, LoginResponse{Token: token, User: MapUserToResponse(user)})
}

// Me returns the authenticated user's account and profile.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusNotFound, "User not found")
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// CompleteOnboarding stores the user's metrics and generates their first plan.
func (h *AuthHandler) CompleteOnboarding(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req OnboardingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	plan, err := h.authService.CompleteOnboarding(c.Request.Context(), userID, domain.Profile{
		HeightCm:      req.HeightCm,
		WeightKg:      req.WeightKg,
		Age:           req.Age,
		Sex:           req.Sex,
		Goal:          req.Goal,
		ActivityLevel: req.ActivityLevel,
		Equipment:     req.Equipment,
		Allergies:     req.Allergies,
		Language:      req.Language,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyOnboarded):
			abortWithError(c, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrProfileIncomplete):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			respondGenerationError(c, err)
		}
		return
	}

	c.JSON(http.StatusCreated, MapPlanToResponse(plan))
}
