package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Goal describes what the user wants to get out of their plan.
type Goal string

const (
	GoalLoseWeight  Goal = "lose_weight"
	GoalBuildMuscle Goal = "build_muscle"
	GoalKeepFit     Goal = "keep_fit"
)

// ActivityLevel is the self-reported baseline activity of the user.
type ActivityLevel string

const (
	ActivitySedentary ActivityLevel = "sedentary"
	ActivityLight     ActivityLevel = "light"
	ActivityModerate  ActivityLevel = "moderate"
	ActivityHigh      ActivityLevel = "high"
)

// Profile holds the onboarding body metrics and goals that drive plan generation.
type Profile struct {
	HeightCm      float64       `bson:"heightCm" json:"heightCm"`
	WeightKg      float64       `bson:"weightKg" json:"weightKg"`
	Age           int           `bson:"age" json:"age"`
	Sex           string        `bson:"sex" json:"sex"`
	Goal          Goal          `bson:"goal" json:"goal"`
	ActivityLevel ActivityLevel `bson:"activityLevel" json:"activityLevel"`
	Equipment     []string      `bson:"equipment,omitempty" json:"equipment,omitempty"` // available at home/gym
	Allergies     []string      `bson:"allergies,omitempty" json:"allergies,omitempty"`
	Language      string        `bson:"language,omitempty" json:"language,omitempty"`
}

// User represents an application user.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // Should be unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Profile      *Profile           `bson:"profile,omitempty" json:"profile,omitempty"`
	Onboarded    bool               `bson:"onboarded" json:"onboarded"` // Profile submitted, first plan generated
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}
