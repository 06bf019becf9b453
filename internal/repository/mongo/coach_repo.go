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

const coachMessageCollectionName = "coach_messages"

// mongoCoachMessageRepository implements repository.CoachMessageRepository.
type mongoCoachMessageRepository struct {
	collection *mongo.Collection
}

// NewMongoCoachMessageRepository creates a new coach conversation repository.
func NewMongoCoachMessageRepository(db *mongo.Database) repository.CoachMessageRepository {
	return &mongoCoachMessageRepository{
		collection: db.Collection(coachMessageCollectionName),
	}
}

// Append stores one conversation message.
func (r *mongoCoachMessageRepository) Append(ctx context.Context, msg *domain.CoachMessage) (primitive.ObjectID, error) {
	if msg.UserID == primitive.NilObjectID || msg.Content == "" {
		return primitive.NilObjectID, errors.New("coach message requires userId and content")
	}
	msg.ID = primitive.NewObjectID()
	msg.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, msg)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted message ID")
	}
	return insertedID, nil
}

// ListByUser returns the most recent messages of the conversation in
// chronological order. limit <= 0 means no limit.
func (r *mongoCoachMessageRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.CoachMessage, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		findOptions = findOptions.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []domain.CoachMessage
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	// Reverse into chronological order for prompt building.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// ClearByUser wipes the conversation.
func (r *mongoCoachMessageRepository) ClearByUser(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"userId": userID})
	return err
}

// EnsureCoachMessageIndexes creates necessary indexes. Call during startup.
func EnsureCoachMessageIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
