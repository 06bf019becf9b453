package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"coachly/fitness-coach/internal/domain"
)

// PlanContent is the generated body of a plan before persistence.
type PlanContent struct {
	Name          string
	DurationDays  int
	FitnessDays   []domain.DayPlan
	NutritionDays []domain.NutritionDay
}

// Chatter is the completion surface the generator needs. Satisfied by *Client.
type Chatter interface {
	Chat(ctx context.Context, messages []Message, temperature float64) (string, error)
}

// Generator produces plans, meals, exercise details, and coach replies.
type Generator interface {
	GeneratePlan(ctx context.Context, profile domain.Profile) (*PlanContent, error)
	GenerateMeal(ctx context.Context, ingredients []string, slot domain.MealSlot) (*domain.Meal, error)
	EnrichExercise(ctx context.Context, name string) (*domain.LibraryExercise, error)
	CoachReply(ctx context.Context, history []domain.CoachMessage, message string) (string, error)
}

type chatGenerator struct {
	chatter Chatter
}

// NewGenerator wraps a chat client into a structured-output generator.
func NewGenerator(chatter Chatter) Generator {
	return &chatGenerator{chatter: chatter}
}

const planSystemPrompt = `You are a fitness and nutrition coach. Respond with a single JSON object only, no prose and no markdown fences. Schema:
{"name": string, "durationDays": int,
 "fitnessDays": [{"dayNumber": int, "workoutName": string, "estimatedCaloriesBurnt": int, "isRestDay": bool,
   "warmupExercises": [{"name": string, "sets": int, "repsOrTime": string, "equipmentUsed": string}],
   "exercises": [...], "cooldownExercises": [...]}],
 "nutritionDays": [{"dayNumber": int, "totalDailyCalories": int,
   "totalDailyMacros": {"protein_g": number, "carbs_g": number, "fat_g": number},
   "meals": [{"mealTime": "breakfast"|"lunch"|"dinner"|"snack", "description": string,
     "ingredients": [string], "calories": int, "protein_g": number, "carbs_g": number, "fat_g": number, "recipe": string}]}]}
repsOrTime is either a rep count like "12" or a duration like "30s".`

// GeneratePlan builds a multi-day plan for the given user profile.
func (g *chatGenerator) GeneratePlan(ctx context.Context, profile domain.Profile) (*PlanContent, error) {
	user := fmt.Sprintf(
		"Create a 7-day workout and nutrition plan for a 30 day program. Height %.0f cm, weight %.0f kg, age %d, sex %s, goal %s, activity level %s.",
		profile.HeightCm, profile.WeightKg, profile.Age, profile.Sex, profile.Goal, profile.ActivityLevel,
	)
	if len(profile.Equipment) > 0 {
		user += " Available equipment: " + strings.Join(profile.Equipment, ", ") + "."
	}
	if len(profile.Allergies) > 0 {
		user += " Food allergies: " + strings.Join(profile.Allergies, ", ") + "."
	}
	if profile.Language != "" {
		user += " Write names and descriptions in language: " + profile.Language + "."
	}

	raw, err := g.chatter.Chat(ctx, []Message{
		{Role: "system", Content: planSystemPrompt},
		{Role: "user", Content: user},
	}, 0.7)
	if err != nil {
		return nil, err
	}

	var dto struct {
		Name          string                `json:"name"`
		DurationDays  int                   `json:"durationDays"`
		FitnessDays   []domain.DayPlan      `json:"fitnessDays"`
		NutritionDays []domain.NutritionDay `json:"nutritionDays"`
	}
	if err := json.Unmarshal([]byte(extractJSON(raw)), &dto); err != nil {
		return nil, fmt.Errorf("%w: plan decode: %v", ErrGeneration, err)
	}
	if len(dto.FitnessDays) == 0 || len(dto.NutritionDays) == 0 {
		return nil, fmt.Errorf("%w: plan missing days", ErrGeneration)
	}
	if dto.DurationDays < 1 {
		dto.DurationDays = 30
	}

	return &PlanContent{
		Name:          dto.Name,
		DurationDays:  dto.DurationDays,
		FitnessDays:   dto.FitnessDays,
		NutritionDays: dto.NutritionDays,
	}, nil
}

// GenerateMeal builds a single meal from a user ingredient list.
func (g *chatGenerator) GenerateMeal(ctx context.Context, ingredients []string, slot domain.MealSlot) (*domain.Meal, error) {
	system := `You are a nutrition coach. Respond with a single JSON object only:
{"mealTime": string, "description": string, "ingredients": [string], "calories": int, "protein_g": number, "carbs_g": number, "fat_g": number, "recipe": string}`
	user := fmt.Sprintf("Create a %s using only these ingredients: %s.", slot, strings.Join(ingredients, ", "))

	raw, err := g.chatter.Chat(ctx, []Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}, 0.7)
	if err != nil {
		return nil, err
	}

	var meal domain.Meal
	if err := json.Unmarshal([]byte(extractJSON(raw)), &meal); err != nil {
		return nil, fmt.Errorf("%w: meal decode: %v", ErrGeneration, err)
	}
	if meal.Description == "" {
		return nil, fmt.Errorf("%w: meal missing description", ErrGeneration)
	}
	meal.MealTime = slot
	return &meal, nil
}

// EnrichExercise produces a library record for an exercise name that had no
// library match. Returns ErrPartialData alongside a usable record when detail
// fields came back empty.
func (g *chatGenerator) EnrichExercise(ctx context.Context, name string) (*domain.LibraryExercise, error) {
	system := `You are a fitness coach. Respond with a single JSON object only:
{"name": string, "muscleGroups": [string], "equipment": [string], "difficulty": "novice"|"medium"|"advanced", "instructions": string}`
	user := fmt.Sprintf("Describe the exercise %q.", name)

	raw, err := g.chatter.Chat(ctx, []Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}, 0.3)
	if err != nil {
		return nil, err
	}

	var exercise domain.LibraryExercise
	if err := json.Unmarshal([]byte(extractJSON(raw)), &exercise); err != nil {
		return nil, fmt.Errorf("%w: exercise decode: %v", ErrGeneration, err)
	}
	if exercise.Name == "" {
		exercise.Name = name
	}
	if exercise.IsPartial() {
		return &exercise, ErrPartialData
	}
	return &exercise, nil
}

// CoachReply produces the assistant's next message in the conversation.
func (g *chatGenerator) CoachReply(ctx context.Context, history []domain.CoachMessage, message string) (string, error) {
	messages := make([]Message, 0, len(history)+2)
	messages = append(messages, Message{
		Role:    "system",
		Content: "You are a supportive fitness and nutrition coach. Keep replies short and practical.",
	})
	for _, m := range history {
		messages = append(messages, Message{Role: string(m.Role), Content: m.Content})
	}
	messages = append(messages, Message{Role: "user", Content: message})

	return g.chatter.Chat(ctx, messages, 0.8)
}

// extractJSON strips markdown code fences and any prose around the outermost
// JSON object. Models occasionally wrap output despite instructions.
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if i := strings.Index(s, "{"); i >= 0 {
		if j := strings.LastIndex(s, "}"); j > i {
			return s[i : j+1]
		}
	}
	return s
}
