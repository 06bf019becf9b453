package service

import (
	"context"
	"sync"

	"coachly/fitness-coach/internal/ai"
	"coachly/fitness-coach/internal/domain"
	"coachly/fitness-coach/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes for service tests.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*domain.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrConflict
		}
	}
	id := primitive.NewObjectID()
	stored := *user
	stored.ID = id
	f.users[id] = &stored
	return id, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) SetProfile(ctx context.Context, userID primitive.ObjectID, profile *domain.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.Profile = profile
	return nil
}

func (f *fakeUserRepo) MarkOnboarded(ctx context.Context, userID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.Onboarded = true
	return nil
}

func (f *fakeUserRepo) ListOnboarded(ctx context.Context) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.User
	for _, u := range f.users {
		if u.Onboarded {
			out = append(out, *u)
		}
	}
	return out, nil
}

type fakePlanRepo struct {
	mu    sync.Mutex
	plans map[primitive.ObjectID]*domain.Plan
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{plans: make(map[primitive.ObjectID]*domain.Plan)}
}

func (f *fakePlanRepo) Create(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := primitive.NewObjectID()
	stored := *plan
	stored.ID = id
	f.plans[id] = &stored
	return id, nil
}

func (f *fakePlanRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (f *fakePlanRepo) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Plan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Plan
	for _, p := range f.plans {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePlanRepo) GetActiveByUser(ctx context.Context, userID primitive.ObjectID) (*domain.Plan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.plans {
		if p.UserID == userID && p.IsActive {
			copied := *p
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakePlanRepo) Activate(ctx context.Context, planID, userID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	target, ok := f.plans[planID]
	if !ok || target.UserID != userID {
		return repository.ErrNotFound
	}
	for _, p := range f.plans {
		if p.UserID == userID {
			p.IsActive = false
		}
	}
	target.IsActive = true
	return nil
}

func (f *fakePlanRepo) SetCurrentDay(ctx context.Context, planID primitive.ObjectID, day int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.plans[planID]
	if !ok {
		return repository.ErrNotFound
	}
	p.CurrentDay = day
	return nil
}

func (f *fakePlanRepo) Delete(ctx context.Context, planID, userID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.plans[planID]
	if !ok || p.UserID != userID {
		return repository.ErrNotFound
	}
	delete(f.plans, planID)
	return nil
}

type fakeOverrideRepo struct {
	mu        sync.Mutex
	overrides map[primitive.ObjectID]*domain.CustomMealOverride
	failOps   bool // force store errors
}

func newFakeOverrideRepo() *fakeOverrideRepo {
	return &fakeOverrideRepo{overrides: make(map[primitive.ObjectID]*domain.CustomMealOverride)}
}

func (f *fakeOverrideRepo) Upsert(ctx context.Context, override *domain.CustomMealOverride) (*domain.CustomMealOverride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOps {
		return nil, repository.ErrUpdateFailed
	}
	for _, o := range f.overrides {
		if o.PlanID == override.PlanID && o.DayIndex == override.DayIndex && o.MealSlot == override.MealSlot {
			stored := *override
			stored.ID = o.ID
			f.overrides[o.ID] = &stored
			copied := stored
			return &copied, nil
		}
	}
	id := primitive.NewObjectID()
	stored := *override
	stored.ID = id
	f.overrides[id] = &stored
	copied := stored
	return &copied, nil
}

func (f *fakeOverrideRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.CustomMealOverride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.overrides[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *o
	return &copied, nil
}

func (f *fakeOverrideRepo) GetBySlot(ctx context.Context, planID primitive.ObjectID, dayIndex int, slot domain.MealSlot) (*domain.CustomMealOverride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.overrides {
		if o.PlanID == planID && o.DayIndex == dayIndex && o.MealSlot == slot {
			copied := *o
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeOverrideRepo) ListByPlan(ctx context.Context, planID primitive.ObjectID) ([]domain.CustomMealOverride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.CustomMealOverride
	for _, o := range f.overrides {
		if o.PlanID == planID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOverrideRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOps {
		return repository.ErrUpdateFailed
	}
	if _, ok := f.overrides[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.overrides, id)
	return nil
}

func (f *fakeOverrideRepo) DeleteByPlan(ctx context.Context, planID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, o := range f.overrides {
		if o.PlanID == planID {
			delete(f.overrides, id)
		}
	}
	return nil
}

func (f *fakeOverrideRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.overrides)
}

type fakeProgressRepo struct {
	mu      sync.Mutex
	records []domain.ProgressRecord
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{}
}

func (f *fakeProgressRepo) Create(ctx context.Context, record *domain.ProgressRecord) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := primitive.NewObjectID()
	stored := *record
	stored.ID = id
	f.records = append(f.records, stored)
	return id, nil
}

func (f *fakeProgressRepo) ListByPlan(ctx context.Context, planID primitive.ObjectID) ([]domain.ProgressRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ProgressRecord
	for _, r := range f.records {
		if r.PlanID == planID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeProgressRepo) CountDistinctDays(ctx context.Context, planID primitive.ObjectID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	days := make(map[int]struct{})
	for _, r := range f.records {
		if r.PlanID == planID {
			days[r.Day] = struct{}{}
		}
	}
	return len(days), nil
}

func (f *fakeProgressRepo) DeleteByPlan(ctx context.Context, planID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.records[:0]
	for _, r := range f.records {
		if r.PlanID != planID {
			kept = append(kept, r)
		}
	}
	f.records = kept
	return nil
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []domain.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{}
}

func (f *fakeNotificationRepo) Create(ctx context.Context, n *domain.Notification) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := primitive.NewObjectID()
	stored := *n
	stored.ID = id
	f.notifications = append(f.notifications, stored)
	return id, nil
}

func (f *fakeNotificationRepo) ListUnread(ctx context.Context, userID primitive.ObjectID) ([]domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Notification
	for _, n := range f.notifications {
		if n.UserID == userID && !n.Read {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) MarkRead(ctx context.Context, userID primitive.ObjectID, ids []primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	wanted := make(map[primitive.ObjectID]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	for i := range f.notifications {
		n := &f.notifications[i]
		if n.UserID != userID {
			continue
		}
		if _, ok := wanted[n.ID]; ok {
			n.Read = true
		}
	}
	return nil
}

type fakeCoachRepo struct {
	mu       sync.Mutex
	messages []domain.CoachMessage
}

func newFakeCoachRepo() *fakeCoachRepo {
	return &fakeCoachRepo{}
}

func (f *fakeCoachRepo) Append(ctx context.Context, msg *domain.CoachMessage) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := primitive.NewObjectID()
	stored := *msg
	stored.ID = id
	f.messages = append(f.messages, stored)
	return id, nil
}

func (f *fakeCoachRepo) ListByUser(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.CoachMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.CoachMessage
	for _, m := range f.messages {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (f *fakeCoachRepo) ClearByUser(ctx context.Context, userID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.messages[:0]
	for _, m := range f.messages {
		if m.UserID != userID {
			kept = append(kept, m)
		}
	}
	f.messages = kept
	return nil
}

// fakeGenerator is a canned ai.Generator with call counters.
type fakeGenerator struct {
	planContent *ai.PlanContent
	planErr     error
	meal        *domain.Meal
	mealErr     error
	reply       string
	replyErr    error

	planCalls  int
	mealCalls  int
	replyCalls int
}

func (f *fakeGenerator) GeneratePlan(ctx context.Context, profile domain.Profile) (*ai.PlanContent, error) {
	f.planCalls++
	if f.planErr != nil {
		return nil, f.planErr
	}
	if f.planContent != nil {
		return f.planContent, nil
	}
	return &ai.PlanContent{
		Name:         "Starter",
		DurationDays: 30,
		FitnessDays: []domain.DayPlan{
			{DayNumber: 1, Exercises: []domain.ExerciseRef{{Name: "Squat", RepsOrTime: "12"}}},
		},
		NutritionDays: []domain.NutritionDay{
			{DayNumber: 1, Meals: []domain.Meal{
				{MealTime: domain.SlotBreakfast, Description: "Oats", Calories: 350},
				{MealTime: domain.SlotLunch, Description: "Chicken and rice", Calories: 600},
			}},
		},
	}, nil
}

func (f *fakeGenerator) GenerateMeal(ctx context.Context, ingredients []string, slot domain.MealSlot) (*domain.Meal, error) {
	f.mealCalls++
	if f.mealErr != nil {
		return nil, f.mealErr
	}
	if f.meal != nil {
		m := *f.meal
		m.MealTime = slot
		return &m, nil
	}
	return &domain.Meal{MealTime: slot, Description: "Generated", Ingredients: ingredients, Calories: 500}, nil
}

func (f *fakeGenerator) EnrichExercise(ctx context.Context, name string) (*domain.LibraryExercise, error) {
	return &domain.LibraryExercise{Name: name, MuscleGroups: []string{"legs"}, Instructions: "do it"}, nil
}

func (f *fakeGenerator) CoachReply(ctx context.Context, history []domain.CoachMessage, message string) (string, error) {
	f.replyCalls++
	if f.replyErr != nil {
		return "", f.replyErr
	}
	if f.reply != "" {
		return f.reply, nil
	}
	return "Keep it up!", nil
}
