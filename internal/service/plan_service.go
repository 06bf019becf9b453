package service

import (
	"coachly/fitness-coach/internal/ai"
	"coachly/fitness-coach/internal/domain"
	"coachly/fitness-coach/internal/repository"
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrPlanNotFound   = errors.New("plan not found")
	ErrNoActivePlan   = errors.New("no active plan")
	ErrNoProfile      = errors.New("user has no profile for plan generation")
	ErrInvalidDay     = errors.New("day is outside the plan duration")
	ErrPlanGeneration = errors.New("plan generation failed")
)

// PlanStats summarizes progress over a plan.
type PlanStats struct {
	CurrentDay     int `json:"currentDay"`
	DurationDays   int `json:"durationDays"`
	DaysCompleted  int `json:"daysCompleted"`
	TotalDays      int `json:"totalDays"`
	RecordsInTotal int `json:"recordsInTotal"`
}

// --- Service Interface ---
type PlanService interface {
	// GeneratePlan creates a fresh plan from the user's profile and makes it
	// the active plan, deactivating any others.
	GeneratePlan(ctx context.Context, userID primitive.ObjectID) (*domain.Plan, error)
	ListPlans(ctx context.Context, userID primitive.ObjectID) ([]domain.Plan, error)
	GetPlan(ctx context.Context, planID, userID primitive.ObjectID) (*domain.Plan, error)
	GetActivePlan(ctx context.Context, userID primitive.ObjectID) (*domain.Plan, error)
	ActivatePlan(ctx context.Context, planID, userID primitive.ObjectID) error
	// DeletePlan removes the plan together with its overrides and progress
	// records. Deleting the active plan leaves the user with no active plan.
	DeletePlan(ctx context.Context, planID, userID primitive.ObjectID) error
	// RecordProgress appends a completion record for the given day and
	// advances the plan's current day. Repeat completions for the same day
	// append another record but count once toward completion.
	RecordProgress(ctx context.Context, userID, planID primitive.ObjectID, day int, difficulty domain.Difficulty) (*domain.Plan, error)
	GetStats(ctx context.Context, planID, userID primitive.ObjectID) (*PlanStats, error)
}

// --- Service Implementation ---

type planService struct {
	planRepo         repository.PlanRepository
	userRepo         repository.UserRepository
	overrideRepo     repository.OverrideRepository
	progressRepo     repository.ProgressRepository
	notificationRepo repository.NotificationRepository
	generator        ai.Generator
}

// NewPlanService creates a new instance of planService.
func NewPlanService(
	planRepo repository.PlanRepository,
	userRepo repository.UserRepository,
	overrideRepo repository.OverrideRepository,
	progressRepo repository.ProgressRepository,
	notificationRepo repository.NotificationRepository,
	generator ai.Generator,
) PlanService {
	return &planService{
		planRepo:         planRepo,
		userRepo:         userRepo,
		overrideRepo:     overrideRepo,
		progressRepo:     progressRepo,
		notificationRepo: notificationRepo,
		generator:        generator,
	}
}

func (s *planService) GeneratePlan(ctx context.Context, userID primitive.ObjectID) (*domain.Plan, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Profile == nil {
		return nil, ErrNoProfile
	}

	content, err := s.generator.GeneratePlan(ctx, *user.Profile)
	if err != nil {
		// AI sentinel errors pass through so handlers can map them.
		if errors.Is(err, ai.ErrConnection) || errors.Is(err, ai.ErrGeneration) {
			return nil, err
		}
		return nil, ErrPlanGeneration
	}

	plan := &domain.Plan{
		UserID:        userID,
		Name:          content.Name,
		CurrentDay:    1,
		DurationDays:  content.DurationDays,
		FitnessDays:   content.FitnessDays,
		NutritionDays: content.NutritionDays,
	}
	planID, err := s.planRepo.Create(ctx, plan)
	if err != nil {
		return nil, err
	}
	plan.ID = planID

	// New plan replaces the active one.
	if err := s.planRepo.Activate(ctx, planID, userID); err != nil {
		return nil, err
	}
	plan.IsActive = true

	if _, err := s.notificationRepo.Create(ctx, &domain.Notification{
		UserID:  userID,
		Kind:    domain.NotificationPlanReady,
		Message: "Your new plan is ready.",
	}); err != nil {
		// Non-fatal: the plan exists, only the poll notification is lost.
		logrus.WithError(err).Warn("failed to queue plan-ready notification")
	}

	return plan, nil
}

func (s *planService) ListPlans(ctx context.Context, userID primitive.ObjectID) ([]domain.Plan, error) {
	return s.planRepo.ListByUser(ctx, userID)
}

func (s *planService) GetPlan(ctx context.Context, planID, userID primitive.ObjectID) (*domain.Plan, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if plan.UserID != userID {
		return nil, ErrPlanNotFound // Ownership failure looks like absence
	}
	return plan, nil
}

func (s *planService) GetActivePlan(ctx context.Context, userID primitive.ObjectID) (*domain.Plan, error) {
	plan, err := s.planRepo.GetActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoActivePlan
		}
		return nil, err
	}
	return plan, nil
}

func (s *planService) ActivatePlan(ctx context.Context, planID, userID primitive.ObjectID) error {
	if _, err := s.GetPlan(ctx, planID, userID); err != nil {
		return err
	}
	return s.planRepo.Activate(ctx, planID, userID)
}

func (s *planService) DeletePlan(ctx context.Context, planID, userID primitive.ObjectID) error {
	if _, err := s.GetPlan(ctx, planID, userID); err != nil {
		return err
	}

	// Cascade before the plan itself so a failed delete leaves no orphans
	// pointing at a missing plan.
	if err := s.overrideRepo.DeleteByPlan(ctx, planID); err != nil {
		return err
	}
	if err := s.progressRepo.DeleteByPlan(ctx, planID); err != nil {
		return err
	}
	return s.planRepo.Delete(ctx, planID, userID)
}

func (s *planService) RecordProgress(ctx context.Context, userID, planID primitive.ObjectID, day int, difficulty domain.Difficulty) (*domain.Plan, error) {
	plan, err := s.GetPlan(ctx, planID, userID)
	if err != nil {
		return nil, err
	}
	if day < 1 || day > plan.DurationDays {
		return nil, ErrInvalidDay
	}

	if _, err := s.progressRepo.Create(ctx, &domain.ProgressRecord{
		UserID:     userID,
		PlanID:     planID,
		Day:        day,
		Difficulty: difficulty,
		RecordedAt: time.Now().UTC(),
	}); err != nil {
		return nil, err
	}

	// Advance only when completing the plan's current day; re-doing an old
	// day must not move the pointer.
	if day == plan.CurrentDay {
		next := plan.AdvanceDay()
		if err := s.planRepo.SetCurrentDay(ctx, planID, next); err != nil {
			return nil, err
		}
	}
	return plan, nil
}

func (s *planService) GetStats(ctx context.Context, planID, userID primitive.ObjectID) (*PlanStats, error) {
	plan, err := s.GetPlan(ctx, planID, userID)
	if err != nil {
		return nil, err
	}

	completed, err := s.progressRepo.CountDistinctDays(ctx, planID)
	if err != nil {
		return nil, err
	}
	records, err := s.progressRepo.ListByPlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	return &PlanStats{
		CurrentDay:     plan.CurrentDay,
		DurationDays:   plan.DurationDays,
		DaysCompleted:  completed,
		TotalDays:      plan.DurationDays,
		RecordsInTotal: len(records),
	}, nil
}
