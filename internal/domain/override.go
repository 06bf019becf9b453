package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OverrideSource records how a custom meal came to be.
type OverrideSource string

const (
	OverrideSourceSwap      OverrideSource = "swap"      // direct swap of an existing meal
	OverrideSourceGenerated OverrideSource = "generated" // generated from a user ingredient list
)

// CustomMealOverride is a user-specific replacement for a plan's default meal
// at a given (day, slot). At most one override exists per
// (PlanID, DayIndex, MealSlot); creating a new one replaces the prior one.
// The override fully shadows the original meal until reverted.
type CustomMealOverride struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"`
	PlanID       primitive.ObjectID `bson:"planId" json:"planId"`
	DayIndex     int                `bson:"dayIndex" json:"dayIndex"` // 1-based plan day
	MealSlot     MealSlot           `bson:"mealSlot" json:"mealSlot"`
	CustomMeal   Meal               `bson:"customMeal" json:"customMeal"`
	OriginalMeal *Meal              `bson:"originalMeal,omitempty" json:"originalMeal,omitempty"`
	Source       OverrideSource     `bson:"source" json:"source"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}
