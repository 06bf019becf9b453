package mongo

import (
	"coachly/fitness-coach/internal/domain"
	"coachly/fitness-coach/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const overrideCollectionName = "meal_overrides"

// mongoOverrideRepository implements repository.OverrideRepository.
type mongoOverrideRepository struct {
	collection *mongo.Collection
}

// NewMongoOverrideRepository creates a new meal override repository.
func NewMongoOverrideRepository(db *mongo.Database) repository.OverrideRepository {
	return &mongoOverrideRepository{
		collection: db.Collection(overrideCollectionName),
	}
}

// Upsert stores an override for (planId, dayIndex, mealSlot), replacing any
// existing one at that slot. The unique index guarantees at most one survives.
func (r *mongoOverrideRepository) Upsert(ctx context.Context, override *domain.CustomMealOverride) (*domain.CustomMealOverride, error) {
	if override.PlanID == primitive.NilObjectID || override.UserID == primitive.NilObjectID {
		return nil, errors.New("override requires planId and userId")
	}
	if override.DayIndex < 1 || override.MealSlot == "" {
		return nil, errors.New("override requires dayIndex >= 1 and a meal slot")
	}

	now := time.Now().UTC()
	filter := bson.M{
		"planId":   override.PlanID,
		"dayIndex": override.DayIndex,
		"mealSlot": override.MealSlot,
	}
	update := bson.M{
		"$set": bson.M{
			"userId":       override.UserID,
			"customMeal":   override.CustomMeal,
			"originalMeal": override.OriginalMeal,
			"source":       override.Source,
		},
		"$setOnInsert": bson.M{"createdAt": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var stored domain.CustomMealOverride
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

// GetByID retrieves one override.
func (r *mongoOverrideRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.CustomMealOverride, error) {
	var override domain.CustomMealOverride
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&override)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &override, nil
}

// GetBySlot retrieves the override for an exact (plan, day, slot) triple.
func (r *mongoOverrideRepository) GetBySlot(ctx context.Context, planID primitive.ObjectID, dayIndex int, slot domain.MealSlot) (*domain.CustomMealOverride, error) {
	filter := bson.M{"planId": planID, "dayIndex": dayIndex, "mealSlot": slot}
	var override domain.CustomMealOverride
	err := r.collection.FindOne(ctx, filter).Decode(&override)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &override, nil
}

// ListByPlan retrieves all overrides of one plan.
func (r *mongoOverrideRepository) ListByPlan(ctx context.Context, planID primitive.ObjectID) ([]domain.CustomMealOverride, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"planId": planID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var overrides []domain.CustomMealOverride
	if err = cursor.All(ctx, &overrides); err != nil {
		return nil, err
	}
	return overrides, nil
}

// Delete removes one override ("revert"): the slot falls back to the plan meal.
func (r *mongoOverrideRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteByPlan removes all overrides of a plan (plan deletion cascade).
func (r *mongoOverrideRepository) DeleteByPlan(ctx context.Context, planID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"planId": planID})
	return err
}

// EnsureOverrideIndexes creates necessary indexes. Call during startup.
func EnsureOverrideIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// One override per (plan, day, slot); upserts replace in place.
			Keys: bson.D{
				{Key: "planId", Value: 1},
				{Key: "dayIndex", Value: 1},
				{Key: "mealSlot", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
