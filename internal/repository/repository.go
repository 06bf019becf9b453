package repository

import (
	"coachly/fitness-coach/internal/domain"
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer.
var (
	ErrNotFound     = RepositoryError("not found")
	ErrConflict     = RepositoryError("already exists")
	ErrUpdateFailed = RepositoryError("update failed")
)

// RepositoryError helps distinguish repository errors.
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	SetProfile(ctx context.Context, userID primitive.ObjectID, profile *domain.Profile) error
	MarkOnboarded(ctx context.Context, userID primitive.ObjectID) error
	ListOnboarded(ctx context.Context) ([]domain.User, error)
}

// PlanRepository defines the interface for interacting with generated plans.
type PlanRepository interface {
	Create(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Plan, error)
	GetActiveByUser(ctx context.Context, userID primitive.ObjectID) (*domain.Plan, error)
	// Activate marks the given plan active and every other plan of the user
	// inactive. Others are deactivated before the target is flipped, so a
	// reader going through GetActiveByUser never observes two active plans.
	Activate(ctx context.Context, planID, userID primitive.ObjectID) error
	SetCurrentDay(ctx context.Context, planID primitive.ObjectID, day int) error
	Delete(ctx context.Context, planID, userID primitive.ObjectID) error
}

// ExerciseLibraryRepository defines the interface for the shared exercise library.
type ExerciseLibraryRepository interface {
	Create(ctx context.Context, exercise *domain.LibraryExercise) (primitive.ObjectID, error)
	Upsert(ctx context.Context, exercise *domain.LibraryExercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.LibraryExercise, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.LibraryExercise, error)
	GetByNames(ctx context.Context, names []string) ([]domain.LibraryExercise, error)
	SetMediaKeys(ctx context.Context, id primitive.ObjectID, videoKey, imageKey string) error
}

// OverrideRepository stores custom meal overrides, keyed uniquely by
// (planId, dayIndex, mealSlot).
type OverrideRepository interface {
	// Upsert replaces any existing override at the same (plan, day, slot) and
	// returns the stored record. Last write wins.
	Upsert(ctx context.Context, override *domain.CustomMealOverride) (*domain.CustomMealOverride, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.CustomMealOverride, error)
	GetBySlot(ctx context.Context, planID primitive.ObjectID, dayIndex int, slot domain.MealSlot) (*domain.CustomMealOverride, error)
	ListByPlan(ctx context.Context, planID primitive.ObjectID) ([]domain.CustomMealOverride, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByPlan(ctx context.Context, planID primitive.ObjectID) error
}

// ProgressRepository stores append-only workout completion records.
type ProgressRepository interface {
	Create(ctx context.Context, record *domain.ProgressRecord) (primitive.ObjectID, error)
	ListByPlan(ctx context.Context, planID primitive.ObjectID) ([]domain.ProgressRecord, error)
	// CountDistinctDays returns the number of distinct plan days with at
	// least one record. Duplicate completions for a day count once.
	CountDistinctDays(ctx context.Context, planID primitive.ObjectID) (int, error)
	DeleteByPlan(ctx context.Context, planID primitive.ObjectID) error
}

// NotificationRepository stores notifications pending client polls.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) (primitive.ObjectID, error)
	ListUnread(ctx context.Context, userID primitive.ObjectID) ([]domain.Notification, error)
	MarkRead(ctx context.Context, userID primitive.ObjectID, ids []primitive.ObjectID) error
}

// CoachMessageRepository stores the virtual coach conversation per user.
type CoachMessageRepository interface {
	Append(ctx context.Context, msg *domain.CoachMessage) (primitive.ObjectID, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.CoachMessage, error)
	ClearByUser(ctx context.Context, userID primitive.ObjectID) error
}
