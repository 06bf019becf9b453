package ai

import (
	"context"
	"errors"
	"testing"

	"coachly/fitness-coach/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChatter struct {
	reply string
	err   error
}

func (f *fakeChatter) Chat(_ context.Context, _ []Message, _ float64) (string, error) {
	return f.reply, f.err
}

func TestGenerateMeal_ParsesFencedJSON(t *testing.T) {
	chatter := &fakeChatter{reply: "```json\n{\"description\": \"omelette\", \"calories\": 420, \"protein_g\": 30, \"carbs_g\": 5, \"fat_g\": 28}\n```"}
	gen := NewGenerator(chatter)

	meal, err := gen.GenerateMeal(context.Background(), []string{"eggs", "cheese"}, domain.SlotBreakfast)
	require.NoError(t, err)
	assert.Equal(t, "omelette", meal.Description)
	assert.Equal(t, domain.SlotBreakfast, meal.MealTime)
	assert.Equal(t, 420, meal.Calories)
}

func TestGenerateMeal_UnusableOutput(t *testing.T) {
	gen := NewGenerator(&fakeChatter{reply: "sorry, I cannot do that"})

	_, err := gen.GenerateMeal(context.Background(), []string{"eggs"}, domain.SlotLunch)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrGeneration))
}

func TestEnrichExercise_Complete(t *testing.T) {
	gen := NewGenerator(&fakeChatter{
		reply: `{"name": "Goblet Squat", "muscleGroups": ["quads", "glutes"], "equipment": ["dumbbell"], "difficulty": "novice", "instructions": "Hold the weight at chest height and squat."}`,
	})

	ex, err := gen.EnrichExercise(context.Background(), "goblet squat")
	require.NoError(t, err)
	assert.Equal(t, "Goblet Squat", ex.Name)
	assert.False(t, ex.IsPartial())
}

func TestEnrichExercise_PartialData(t *testing.T) {
	gen := NewGenerator(&fakeChatter{
		reply: `{"name": "Goblet Squat", "muscleGroups": ["quads"]}`,
	})

	ex, err := gen.EnrichExercise(context.Background(), "goblet squat")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPartialData))
	// Record is still usable despite the error.
	require.NotNil(t, ex)
	assert.Equal(t, "Goblet Squat", ex.Name)
}

func TestEnrichExercise_ConnectionError(t *testing.T) {
	gen := NewGenerator(&fakeChatter{err: ErrConnection})

	_, err := gen.EnrichExercise(context.Background(), "goblet squat")
	assert.True(t, errors.Is(err, ErrConnection))
}

func TestGeneratePlan_MissingDays(t *testing.T) {
	gen := NewGenerator(&fakeChatter{reply: `{"name": "empty", "fitnessDays": [], "nutritionDays": []}`})

	_, err := gen.GeneratePlan(context.Background(), domain.Profile{})
	assert.True(t, errors.Is(err, ErrGeneration))
}
