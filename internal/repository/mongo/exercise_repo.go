package mongo

import (
	"coachly/fitness-coach/internal/domain"
	"coachly/fitness-coach/internal/repository"
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const exerciseCollectionName = "library_exercises"

// mongoExerciseLibraryRepository implements repository.ExerciseLibraryRepository.
type mongoExerciseLibraryRepository struct {
	collection *mongo.Collection
}

// NewMongoExerciseLibraryRepository creates a new exercise library repository.
func NewMongoExerciseLibraryRepository(db *mongo.Database) repository.ExerciseLibraryRepository {
	return &mongoExerciseLibraryRepository{
		collection: db.Collection(exerciseCollectionName),
	}
}

// normalizeName lowers and trims a name for the nameKey lookup field.
// Plan references use free-form names, the library matches them case-insensitively.
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

type libraryExerciseDoc struct {
	domain.LibraryExercise `bson:",inline"`
	NameKey                string `bson:"nameKey"`
}

// Create inserts a new library exercise.
func (r *mongoExerciseLibraryRepository) Create(ctx context.Context, exercise *domain.LibraryExercise) (primitive.ObjectID, error) {
	if exercise.Name == "" {
		return primitive.NilObjectID, errors.New("exercise name is required")
	}
	exercise.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now

	doc := libraryExerciseDoc{LibraryExercise: *exercise, NameKey: normalizeName(exercise.Name)}
	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrConflict
		}
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted exercise ID")
	}
	return insertedID, nil
}

// Upsert stores the exercise keyed by its normalized name, replacing any
// previous record with the same name. Used when an on-demand enrichment
// produces a fresh record for a plan reference.
func (r *mongoExerciseLibraryRepository) Upsert(ctx context.Context, exercise *domain.LibraryExercise) (primitive.ObjectID, error) {
	if exercise.Name == "" {
		return primitive.NilObjectID, errors.New("exercise name is required")
	}
	now := time.Now().UTC()
	exercise.UpdatedAt = now

	filter := bson.M{"nameKey": normalizeName(exercise.Name)}
	update := bson.M{
		"$set": bson.M{
			"name":           exercise.Name,
			"nameKey":        normalizeName(exercise.Name),
			"localizedNames": exercise.LocalizedNames,
			"muscleGroups":   exercise.MuscleGroups,
			"equipment":      exercise.Equipment,
			"difficulty":     exercise.Difficulty,
			"instructions":   exercise.Instructions,
			"updatedAt":      now,
		},
		"$setOnInsert": bson.M{"createdAt": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var stored domain.LibraryExercise
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored); err != nil {
		return primitive.NilObjectID, err
	}
	exercise.ID = stored.ID
	exercise.CreatedAt = stored.CreatedAt
	return stored.ID, nil
}

// GetByID retrieves a single library exercise.
func (r *mongoExerciseLibraryRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.LibraryExercise, error) {
	var exercise domain.LibraryExercise
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&exercise)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &exercise, nil
}

// GetByIDs retrieves all library exercises matching the given ids.
// Missing ids are simply absent from the result, not an error.
func (r *mongoExerciseLibraryRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.LibraryExercise, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var exercises []domain.LibraryExercise
	if err = cursor.All(ctx, &exercises); err != nil {
		return nil, err
	}
	return exercises, nil
}

// GetByNames retrieves library exercises matching the given names,
// case-insensitively via the normalized nameKey field.
func (r *mongoExerciseLibraryRepository) GetByNames(ctx context.Context, names []string) ([]domain.LibraryExercise, error) {
	if len(names) == 0 {
		return nil, nil
	}
	keys := make([]string, 0, len(names))
	for _, name := range names {
		if k := normalizeName(name); k != "" {
			keys = append(keys, k)
		}
	}
	cursor, err := r.collection.Find(ctx, bson.M{"nameKey": bson.M{"$in": keys}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var exercises []domain.LibraryExercise
	if err = cursor.All(ctx, &exercises); err != nil {
		return nil, err
	}
	return exercises, nil
}

// SetMediaKeys attaches uploaded media object keys to an exercise.
func (r *mongoExerciseLibraryRepository) SetMediaKeys(ctx context.Context, id primitive.ObjectID, videoKey, imageKey string) error {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if videoKey != "" {
		set["videoKey"] = videoKey
	}
	if imageKey != "" {
		set["imageKey"] = imageKey
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureExerciseIndexes creates necessary indexes. Call during startup.
func EnsureExerciseIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "nameKey", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
