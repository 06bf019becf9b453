package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExerciseRef is a reference to an exercise inside a generated day plan.
// It is not an owned entity: it may resolve to zero or one LibraryExercise,
// by ExerciseID first (authoritative) and by Name second (fallback).
type ExerciseRef struct {
	Name          string              `bson:"name" json:"name"`
	LocalizedName string              `bson:"localizedName,omitempty" json:"localizedName,omitempty"`
	Sets          int                 `bson:"sets,omitempty" json:"sets,omitempty"`
	RepsOrTime    string              `bson:"repsOrTime" json:"repsOrTime"` // e.g. "12" (reps) or "30s" / "2m" (timed)
	EquipmentUsed string              `bson:"equipmentUsed,omitempty" json:"equipmentUsed,omitempty"`
	ExerciseID    *primitive.ObjectID `bson:"exerciseId,omitempty" json:"exerciseId,omitempty"`
}

// IsEmpty reports whether the reference carries neither a name nor an id
// and therefore cannot be resolved or displayed.
func (r ExerciseRef) IsEmpty() bool {
	return r.Name == "" && (r.ExerciseID == nil || *r.ExerciseID == primitive.NilObjectID)
}

// DayPlan is one day's workout content within a Plan.
type DayPlan struct {
	DayNumber              int           `bson:"dayNumber" json:"dayNumber"`
	WorkoutName            string        `bson:"workoutName" json:"workoutName"`
	EstimatedCaloriesBurnt int           `bson:"estimatedCaloriesBurnt,omitempty" json:"estimatedCaloriesBurnt,omitempty"`
	IsRestDay              bool          `bson:"isRestDay" json:"isRestDay"`
	WarmupExercises        []ExerciseRef `bson:"warmupExercises,omitempty" json:"warmupExercises,omitempty"`
	Exercises              []ExerciseRef `bson:"exercises,omitempty" json:"exercises,omitempty"`
	CooldownExercises      []ExerciseRef `bson:"cooldownExercises,omitempty" json:"cooldownExercises,omitempty"`
}

// AllExercises returns warmup + main + cooldown references in display order,
// filtered to entries that can actually be resolved.
func (d DayPlan) AllExercises() []ExerciseRef {
	refs := make([]ExerciseRef, 0, len(d.WarmupExercises)+len(d.Exercises)+len(d.CooldownExercises))
	for _, group := range [][]ExerciseRef{d.WarmupExercises, d.Exercises, d.CooldownExercises} {
		for _, ref := range group {
			if !ref.IsEmpty() {
				refs = append(refs, ref)
			}
		}
	}
	return refs
}

// Plan is a generated multi-day fitness and nutrition program for one user.
// At most one plan per user has IsActive set.
type Plan struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"userId" json:"userId"`
	Name          string             `bson:"name,omitempty" json:"name,omitempty"`
	CurrentDay    int                `bson:"currentDay" json:"currentDay"` // 1-based
	DurationDays  int                `bson:"durationDays" json:"durationDays"`
	IsActive      bool               `bson:"isActive" json:"isActive"`
	FitnessDays   []DayPlan          `bson:"fitnessDays" json:"fitnessDays"`
	NutritionDays []NutritionDay     `bson:"nutritionDays" json:"nutritionDays"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// cyclicIndex maps a 1-based plan day onto a generated-day index. Plans are
// usually generated with fewer distinct days than DurationDays, so day d wraps
// onto index (d-1) mod n.
func cyclicIndex(day, n int) int {
	if n <= 0 {
		return -1
	}
	if day < 1 {
		day = 1
	}
	return (day - 1) % n
}

// FitnessDayFor returns the workout content for the given 1-based plan day,
// or nil if the plan has no fitness days.
func (p *Plan) FitnessDayFor(day int) *DayPlan {
	i := cyclicIndex(day, len(p.FitnessDays))
	if i < 0 {
		return nil
	}
	return &p.FitnessDays[i]
}

// NutritionDayFor returns the nutrition content for the given 1-based plan day,
// or nil if the plan has no nutrition days.
func (p *Plan) NutritionDayFor(day int) *NutritionDay {
	i := cyclicIndex(day, len(p.NutritionDays))
	if i < 0 {
		return nil
	}
	return &p.NutritionDays[i]
}

// AdvanceDay moves CurrentDay forward by one, capped at DurationDays.
// Returns the resulting day.
func (p *Plan) AdvanceDay() int {
	if p.CurrentDay < p.DurationDays {
		p.CurrentDay++
	}
	return p.CurrentDay
}
