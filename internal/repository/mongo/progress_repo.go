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

const progressCollectionName = "progress_records"

// mongoProgressRepository implements repository.ProgressRepository.
type mongoProgressRepository struct {
	collection *mongo.Collection
}

// NewMongoProgressRepository creates a new progress repository.
func NewMongoProgressRepository(db *mongo.Database) repository.ProgressRepository {
	return &mongoProgressRepository{
		collection: db.Collection(progressCollectionName),
	}
}

// Create appends a completion record. No uniqueness on (plan, day): a retried
// completion may insert a duplicate, which CountDistinctDays tolerates.
func (r *mongoProgressRepository) Create(ctx context.Context, record *domain.ProgressRecord) (primitive.ObjectID, error) {
	if record.UserID == primitive.NilObjectID || record.PlanID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("progress record requires userId and planId")
	}
	if record.Day < 1 {
		return primitive.NilObjectID, errors.New("progress record requires day >= 1")
	}
	record.ID = primitive.NewObjectID()
	record.RecordedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, record)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted record ID")
	}
	return insertedID, nil
}

// ListByPlan retrieves all records of one plan, oldest first.
func (r *mongoProgressRepository) ListByPlan(ctx context.Context, planID primitive.ObjectID) ([]domain.ProgressRecord, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "recordedAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"planId": planID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []domain.ProgressRecord
	if err = cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// CountDistinctDays counts plan days with at least one completion record.
func (r *mongoProgressRepository) CountDistinctDays(ctx context.Context, planID primitive.ObjectID) (int, error) {
	days, err := r.collection.Distinct(ctx, "day", bson.M{"planId": planID})
	if err != nil {
		return 0, err
	}
	return len(days), nil
}

// DeleteByPlan removes all progress of a plan (plan deletion cascade).
func (r *mongoProgressRepository) DeleteByPlan(ctx context.Context, planID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"planId": planID})
	return err
}

// EnsureProgressIndexes creates necessary indexes. Call during startup.
func EnsureProgressIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "planId", Value: 1}, {Key: "day", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
