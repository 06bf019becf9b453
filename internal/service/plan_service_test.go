package service

import (
	"context"
	"testing"

	"coachly/fitness-coach/internal/ai"
	"coachly/fitness-coach/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type testEnv struct {
	users         *fakeUserRepo
	plans         *fakePlanRepo
	overrides     *fakeOverrideRepo
	progress      *fakeProgressRepo
	notifications *fakeNotificationRepo
	coach         *fakeCoachRepo
	generator     *fakeGenerator
	planService   PlanService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		users:         newFakeUserRepo(),
		plans:         newFakePlanRepo(),
		overrides:     newFakeOverrideRepo(),
		progress:      newFakeProgressRepo(),
		notifications: newFakeNotificationRepo(),
		coach:         newFakeCoachRepo(),
		generator:     &fakeGenerator{},
	}
	env.planService = NewPlanService(env.plans, env.users, env.overrides, env.progress, env.notifications, env.generator)
	return env
}

func (e *testEnv) addUser(t *testing.T, onboarded bool) primitive.ObjectID {
	t.Helper()
	user := &domain.User{
		Name:  "Test User",
		Email: primitive.NewObjectID().Hex() + "@example.com",
		Profile: &domain.Profile{
			HeightCm: 180, WeightKg: 80, Age: 30, Sex: "male",
			Goal: domain.GoalKeepFit, ActivityLevel: domain.ActivityModerate,
		},
		Onboarded: onboarded,
	}
	id, err := e.users.Create(context.Background(), user)
	require.NoError(t, err)
	return id
}

func (e *testEnv) addPlan(t *testing.T, userID primitive.ObjectID, active bool) *domain.Plan {
	t.Helper()
	plan, err := e.planService.GeneratePlan(context.Background(), userID)
	require.NoError(t, err)
	if !active {
		// GeneratePlan activates; flip off directly for test setup.
		e.plans.mu.Lock()
		e.plans.plans[plan.ID].IsActive = false
		e.plans.mu.Unlock()
		plan.IsActive = false
	}
	return plan
}

func TestPlanService_GeneratePlanActivates(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	userID := env.addUser(t, true)

	first, err := env.planService.GeneratePlan(ctx, userID)
	require.NoError(t, err)
	assert.True(t, first.IsActive)
	assert.Equal(t, 1, first.CurrentDay)

	// A second generation replaces the first as the active plan.
	second, err := env.planService.GeneratePlan(ctx, userID)
	require.NoError(t, err)

	active, err := env.planService.GetActivePlan(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)

	// Plan-ready notification queued per generation.
	unread, err := env.notifications.ListUnread(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, unread, 2)
	assert.Equal(t, domain.NotificationPlanReady, unread[0].Kind)
}

func TestPlanService_ActivateFlipsExactlyOne(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	userID := env.addUser(t, true)

	plans := make([]*domain.Plan, 0, 6)
	for i := 0; i < 6; i++ {
		plans = append(plans, env.addPlan(t, userID, false))
	}

	require.NoError(t, env.planService.ActivatePlan(ctx, plans[4].ID, userID))

	listed, err := env.planService.ListPlans(ctx, userID)
	require.NoError(t, err)
	require.Len(t, listed, 6)
	activeCount := 0
	for _, p := range listed {
		if p.IsActive {
			activeCount++
			assert.Equal(t, plans[4].ID, p.ID)
		}
	}
	assert.Equal(t, 1, activeCount)

	// Activating another flips the previous one off.
	require.NoError(t, env.planService.ActivatePlan(ctx, plans[1].ID, userID))
	active, err := env.planService.GetActivePlan(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, plans[1].ID, active.ID)
}

func TestPlanService_ActivateForeignPlan(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	owner := env.addUser(t, true)
	other := env.addUser(t, true)
	plan := env.addPlan(t, owner, true)

	err := env.planService.ActivatePlan(ctx, plan.ID, other)
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestPlanService_DeleteCascades(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	userID := env.addUser(t, true)
	plan := env.addPlan(t, userID, true)

	mealService := NewMealService(env.planService, env.overrides, env.generator)
	_, err := mealService.ApplyOverride(ctx, userID, plan.ID, 1, domain.SlotLunch, domain.Meal{Description: "Salad"})
	require.NoError(t, err)
	_, err = env.planService.RecordProgress(ctx, userID, plan.ID, 1, domain.DifficultyOK)
	require.NoError(t, err)

	require.NoError(t, env.planService.DeletePlan(ctx, plan.ID, userID))

	assert.Equal(t, 0, env.overrides.count())
	count, err := env.progress.CountDistinctDays(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// Deleting the active plan leaves no active plan.
	_, err = env.planService.GetActivePlan(ctx, userID)
	assert.ErrorIs(t, err, ErrNoActivePlan)
}

func TestPlanService_RecordProgressAdvancesCurrentDay(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	userID := env.addUser(t, true)
	plan := env.addPlan(t, userID, true)

	_, err := env.planService.RecordProgress(ctx, userID, plan.ID, 1, domain.DifficultyHard)
	require.NoError(t, err)

	stored, err := env.planService.GetPlan(ctx, plan.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.CurrentDay)

	// Re-doing an earlier day appends a record but does not move the pointer.
	_, err = env.planService.RecordProgress(ctx, userID, plan.ID, 1, domain.DifficultyEasy)
	require.NoError(t, err)
	stored, err = env.planService.GetPlan(ctx, plan.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.CurrentDay)
}

func TestPlanService_CurrentDayCappedAtDuration(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	userID := env.addUser(t, true)
	env.generator.planContent = &ai.PlanContent{
		Name:         "Short",
		DurationDays: 3,
		FitnessDays: []domain.DayPlan{
			{DayNumber: 1, Exercises: []domain.ExerciseRef{{Name: "Squat", RepsOrTime: "12"}}},
		},
		NutritionDays: []domain.NutritionDay{
			{DayNumber: 1, Meals: []domain.Meal{{MealTime: domain.SlotLunch, Description: "Rice"}}},
		},
	}
	plan := env.addPlan(t, userID, true)

	for day := 1; day <= plan.DurationDays; day++ {
		_, err := env.planService.RecordProgress(ctx, userID, plan.ID, day, domain.DifficultyOK)
		require.NoError(t, err)
	}

	stored, err := env.planService.GetPlan(ctx, plan.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, plan.DurationDays, stored.CurrentDay)

	// A day past the duration is rejected.
	_, err = env.planService.RecordProgress(ctx, userID, plan.ID, plan.DurationDays+1, domain.DifficultyOK)
	assert.ErrorIs(t, err, ErrInvalidDay)
}

func TestPlanService_StatsCountDistinctDays(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	userID := env.addUser(t, true)
	plan := env.addPlan(t, userID, true)

	// Day 1 completed twice, day 2 once: three records, two distinct days.
	for _, day := range []int{1, 1, 2} {
		_, err := env.planService.RecordProgress(ctx, userID, plan.ID, day, domain.DifficultyOK)
		require.NoError(t, err)
	}

	stats, err := env.planService.GetStats(ctx, plan.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.DaysCompleted)
	assert.Equal(t, 3, stats.RecordsInTotal)
}

func TestPlanService_GeneratePlanRequiresProfile(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	id, err := env.users.Create(ctx, &domain.User{Name: "No Profile", Email: "np@example.com"})
	require.NoError(t, err)

	_, err = env.planService.GeneratePlan(ctx, id)
	assert.ErrorIs(t, err, ErrNoProfile)
	assert.Equal(t, 0, env.generator.planCalls)
}
