package resolve

import (
	"context"
	"errors"
	"testing"

	"coachly/fitness-coach/internal/ai"
	"coachly/fitness-coach/internal/domain"
	"coachly/fitness-coach/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeLibrary struct {
	byID        map[primitive.ObjectID]domain.LibraryExercise
	byName      map[string]domain.LibraryExercise
	idQueries   int
	nameQueries int
	upserts     int
}

func newFakeLibrary() *fakeLibrary {
	return &fakeLibrary{
		byID:   make(map[primitive.ObjectID]domain.LibraryExercise),
		byName: make(map[string]domain.LibraryExercise),
	}
}

func (f *fakeLibrary) add(ex domain.LibraryExercise) {
	f.byID[ex.ID] = ex
	f.byName[NameKey(ex.Name)] = ex
}

func (f *fakeLibrary) Create(_ context.Context, ex *domain.LibraryExercise) (primitive.ObjectID, error) {
	ex.ID = primitive.NewObjectID()
	f.add(*ex)
	return ex.ID, nil
}

func (f *fakeLibrary) Upsert(_ context.Context, ex *domain.LibraryExercise) (primitive.ObjectID, error) {
	f.upserts++
	if ex.ID == primitive.NilObjectID {
		ex.ID = primitive.NewObjectID()
	}
	f.add(*ex)
	return ex.ID, nil
}

func (f *fakeLibrary) GetByID(_ context.Context, id primitive.ObjectID) (*domain.LibraryExercise, error) {
	if ex, ok := f.byID[id]; ok {
		return &ex, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeLibrary) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.LibraryExercise, error) {
	f.idQueries++
	var out []domain.LibraryExercise
	for _, id := range ids {
		if ex, ok := f.byID[id]; ok {
			out = append(out, ex)
		}
	}
	return out, nil
}

func (f *fakeLibrary) GetByNames(_ context.Context, names []string) ([]domain.LibraryExercise, error) {
	f.nameQueries++
	var out []domain.LibraryExercise
	for _, name := range names {
		if ex, ok := f.byName[NameKey(name)]; ok {
			out = append(out, ex)
		}
	}
	return out, nil
}

func (f *fakeLibrary) SetMediaKeys(context.Context, primitive.ObjectID, string, string) error {
	return nil
}

type fakeGenerator struct {
	exercise *domain.LibraryExercise
	err      error
}

func (f *fakeGenerator) GeneratePlan(context.Context, domain.Profile) (*ai.PlanContent, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeGenerator) GenerateMeal(context.Context, []string, domain.MealSlot) (*domain.Meal, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeGenerator) EnrichExercise(context.Context, string) (*domain.LibraryExercise, error) {
	return f.exercise, f.err
}

func (f *fakeGenerator) CoachReply(context.Context, []domain.CoachMessage, string) (string, error) {
	return "", errors.New("not implemented")
}

func TestResolveBatch_IDBeatsName(t *testing.T) {
	library := newFakeLibrary()

	squatID := primitive.NewObjectID()
	library.add(domain.LibraryExercise{ID: squatID, Name: "Back Squat"})
	library.add(domain.LibraryExercise{ID: primitive.NewObjectID(), Name: "Front Squat"})

	r := NewResolver(library, nil)

	// Reference carries the id of "Back Squat" but the name of "Front Squat".
	ref := domain.ExerciseRef{Name: "Front Squat", ExerciseID: &squatID}
	res, err := r.ResolveBatch(context.Background(), []domain.ExerciseRef{ref})
	require.NoError(t, err)

	ex, ok := res.Lookup(ref)
	require.True(t, ok)
	assert.Equal(t, "Back Squat", ex.Name, "id lookup must win over the name lookup")
}

func TestResolveBatch_NameFallback(t *testing.T) {
	library := newFakeLibrary()
	library.add(domain.LibraryExercise{ID: primitive.NewObjectID(), Name: "Push Up"})

	r := NewResolver(library, nil)

	ref := domain.ExerciseRef{Name: "push up"}
	res, err := r.ResolveBatch(context.Background(), []domain.ExerciseRef{ref})
	require.NoError(t, err)

	ex, ok := res.Lookup(ref)
	require.True(t, ok)
	assert.Equal(t, "Push Up", ex.Name)
}

func TestResolveBatch_DeduplicatesAndCaches(t *testing.T) {
	library := newFakeLibrary()
	library.add(domain.LibraryExercise{ID: primitive.NewObjectID(), Name: "Plank"})

	r := NewResolver(library, nil)

	refs := []domain.ExerciseRef{
		{Name: "Plank"},
		{Name: "plank"},
		{Name: " PLANK "},
	}
	_, err := r.ResolveBatch(context.Background(), refs)
	require.NoError(t, err)
	assert.Equal(t, 1, library.nameQueries)

	// Second batch is served from cache entirely.
	_, err = r.ResolveBatch(context.Background(), refs)
	require.NoError(t, err)
	assert.Equal(t, 1, library.nameQueries)
}

func TestResolveBatch_UnknownRefUnresolved(t *testing.T) {
	r := NewResolver(newFakeLibrary(), nil)

	ref := domain.ExerciseRef{Name: "burpee"}
	res, err := r.ResolveBatch(context.Background(), []domain.ExerciseRef{ref})
	require.NoError(t, err)

	_, ok := res.Lookup(ref)
	assert.False(t, ok)
}

func TestEnrichOne_PersistsAndCaches(t *testing.T) {
	library := newFakeLibrary()
	generated := &domain.LibraryExercise{
		Name:         "Burpee",
		MuscleGroups: []string{"full body"},
		Instructions: "Squat, kick back, push up, jump.",
	}
	r := NewResolver(library, &fakeGenerator{exercise: generated})

	ex, err := r.EnrichOne(context.Background(), domain.ExerciseRef{Name: "burpee"})
	require.NoError(t, err)
	assert.Equal(t, "Burpee", ex.Name)
	assert.Equal(t, 1, library.upserts)

	// The enriched record now resolves from cache without touching the repo.
	res, err := r.ResolveBatch(context.Background(), []domain.ExerciseRef{{Name: "Burpee"}})
	require.NoError(t, err)
	_, ok := res.Lookup(domain.ExerciseRef{Name: "Burpee"})
	assert.True(t, ok)
	assert.Equal(t, 0, library.nameQueries)
}

func TestEnrichOne_PartialDataStillUsable(t *testing.T) {
	library := newFakeLibrary()
	generated := &domain.LibraryExercise{Name: "Burpee"}
	r := NewResolver(library, &fakeGenerator{exercise: generated, err: ai.ErrPartialData})

	ex, err := r.EnrichOne(context.Background(), domain.ExerciseRef{Name: "burpee"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ai.ErrPartialData))
	require.NotNil(t, ex)
	assert.Equal(t, 1, library.upserts, "partial results are still persisted")
}

func TestEnrichOne_GenerationError(t *testing.T) {
	r := NewResolver(newFakeLibrary(), &fakeGenerator{err: ai.ErrGeneration})

	_, err := r.EnrichOne(context.Background(), domain.ExerciseRef{Name: "burpee"})
	assert.True(t, errors.Is(err, ai.ErrGeneration))
}
