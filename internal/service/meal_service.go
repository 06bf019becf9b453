package service

import (
	"coachly/fitness-coach/internal/ai"
	"coachly/fitness-coach/internal/domain"
	"coachly/fitness-coach/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrOverrideNotFound = errors.New("meal override not found")
	ErrMealNotFound     = errors.New("no meal at this day and slot")
	ErrNoIngredients    = errors.New("ingredient list is empty")
)

// EffectiveMeal is the meal the user actually sees at a (day, slot): the
// override when one exists for exactly that day and slot, otherwise the
// plan's default.
type EffectiveMeal struct {
	Meal         domain.Meal         `json:"meal"`
	IsOverridden bool                `json:"isOverridden"`
	OverrideID   *primitive.ObjectID `json:"overrideId,omitempty"`
}

// --- Service Interface ---
type MealService interface {
	GetEffectiveMeal(ctx context.Context, userID, planID primitive.ObjectID, dayIndex int, slot domain.MealSlot) (*EffectiveMeal, error)
	EffectiveMealsForDay(ctx context.Context, userID, planID primitive.ObjectID, dayIndex int) ([]EffectiveMeal, error)
	// ApplyOverride swaps the plan's meal at (day, slot) for a custom one.
	// Re-applying replaces the previous override; last write wins.
	ApplyOverride(ctx context.Context, userID, planID primitive.ObjectID, dayIndex int, slot domain.MealSlot, meal domain.Meal) (*domain.CustomMealOverride, error)
	// GenerateMealFromIngredients builds a replacement meal from the user's
	// ingredient list and stores it as an override at (day, slot).
	GenerateMealFromIngredients(ctx context.Context, userID, planID primitive.ObjectID, dayIndex int, slot domain.MealSlot, ingredients []string) (*domain.CustomMealOverride, error)
	// RevertOverride removes an override, restoring the plan's default meal.
	// Reverting an override that no longer exists returns ErrOverrideNotFound.
	RevertOverride(ctx context.Context, userID, overrideID primitive.ObjectID) error
}

// --- Service Implementation ---

type mealService struct {
	planService  PlanService
	overrideRepo repository.OverrideRepository
	generator    ai.Generator
}

// NewMealService creates a new instance of mealService.
func NewMealService(planService PlanService, overrideRepo repository.OverrideRepository, generator ai.Generator) MealService {
	return &mealService{
		planService:  planService,
		overrideRepo: overrideRepo,
		generator:    generator,
	}
}

// planMealAt returns the plan's default meal at (day, slot), applying the
// cyclic day mapping.
func (s *mealService) planMealAt(plan *domain.Plan, dayIndex int, slot domain.MealSlot) *domain.Meal {
	nutritionDay := plan.NutritionDayFor(dayIndex)
	if nutritionDay == nil {
		return nil
	}
	return nutritionDay.MealAt(slot)
}

func (s *mealService) GetEffectiveMeal(ctx context.Context, userID, planID primitive.ObjectID, dayIndex int, slot domain.MealSlot) (*EffectiveMeal, error) {
	plan, err := s.planService.GetPlan(ctx, planID, userID)
	if err != nil {
		return nil, err
	}

	// Override wins only on an exact (day, slot) match.
	override, err := s.overrideRepo.GetBySlot(ctx, planID, dayIndex, slot)
	if err == nil {
		return &EffectiveMeal{
			Meal:         override.CustomMeal,
			IsOverridden: true,
			OverrideID:   &override.ID,
		}, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	meal := s.planMealAt(plan, dayIndex, slot)
	if meal == nil {
		return nil, ErrMealNotFound
	}
	return &EffectiveMeal{Meal: *meal}, nil
}

func (s *mealService) EffectiveMealsForDay(ctx context.Context, userID, planID primitive.ObjectID, dayIndex int) ([]EffectiveMeal, error) {
	plan, err := s.planService.GetPlan(ctx, planID, userID)
	if err != nil {
		return nil, err
	}
	nutritionDay := plan.NutritionDayFor(dayIndex)
	if nutritionDay == nil {
		return nil, ErrMealNotFound
	}

	overrides, err := s.overrideRepo.ListByPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	bySlot := make(map[domain.MealSlot]*domain.CustomMealOverride)
	for i := range overrides {
		o := &overrides[i]
		if o.DayIndex == dayIndex {
			bySlot[o.MealSlot] = o
		}
	}

	meals := make([]EffectiveMeal, 0, len(nutritionDay.Meals))
	for _, meal := range nutritionDay.Meals {
		if o, ok := bySlot[meal.MealTime]; ok {
			meals = append(meals, EffectiveMeal{
				Meal:         o.CustomMeal,
				IsOverridden: true,
				OverrideID:   &o.ID,
			})
			continue
		}
		meals = append(meals, EffectiveMeal{Meal: meal})
	}
	return meals, nil
}

func (s *mealService) ApplyOverride(ctx context.Context, userID, planID primitive.ObjectID, dayIndex int, slot domain.MealSlot, meal domain.Meal) (*domain.CustomMealOverride, error) {
	return s.storeOverride(ctx, userID, planID, dayIndex, slot, meal, domain.OverrideSourceSwap)
}

func (s *mealService) GenerateMealFromIngredients(ctx context.Context, userID, planID primitive.ObjectID, dayIndex int, slot domain.MealSlot, ingredients []string) (*domain.CustomMealOverride, error) {
	// Validate before any AI call.
	cleaned := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		if ing != "" {
			cleaned = append(cleaned, ing)
		}
	}
	if len(cleaned) == 0 {
		return nil, ErrNoIngredients
	}

	meal, err := s.generator.GenerateMeal(ctx, cleaned, slot)
	if err != nil {
		return nil, err
	}
	return s.storeOverride(ctx, userID, planID, dayIndex, slot, *meal, domain.OverrideSourceGenerated)
}

func (s *mealService) storeOverride(ctx context.Context, userID, planID primitive.ObjectID, dayIndex int, slot domain.MealSlot, meal domain.Meal, source domain.OverrideSource) (*domain.CustomMealOverride, error) {
	plan, err := s.planService.GetPlan(ctx, planID, userID)
	if err != nil {
		return nil, err
	}

	meal.MealTime = slot
	override := &domain.CustomMealOverride{
		UserID:       userID,
		PlanID:       planID,
		DayIndex:     dayIndex,
		MealSlot:     slot,
		CustomMeal:   meal,
		OriginalMeal: s.planMealAt(plan, dayIndex, slot),
		Source:       source,
		CreatedAt:    time.Now().UTC(),
	}
	return s.overrideRepo.Upsert(ctx, override)
}

func (s *mealService) RevertOverride(ctx context.Context, userID, overrideID primitive.ObjectID) error {
	override, err := s.overrideRepo.GetByID(ctx, overrideID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrOverrideNotFound
		}
		return err
	}
	if override.UserID != userID {
		return ErrOverrideNotFound
	}

	// Delete first, report only on success: a store failure must leave the
	// override visibly in place rather than optimistically removed.
	if err := s.overrideRepo.Delete(ctx, overrideID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrOverrideNotFound
		}
		return err
	}
	return nil
}
