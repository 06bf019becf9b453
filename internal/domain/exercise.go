package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LibraryExercise is a shared, pre-authored exercise record with media and
// instructions. Plan exercise references resolve against this library.
type LibraryExercise struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	LocalizedNames map[string]string  `bson:"localizedNames,omitempty" json:"localizedNames,omitempty"` // language code -> name
	MuscleGroups   []string           `bson:"muscleGroups,omitempty" json:"muscleGroups,omitempty"`
	Equipment      []string           `bson:"equipment,omitempty" json:"equipment,omitempty"`
	Difficulty     string             `bson:"difficulty,omitempty" json:"difficulty,omitempty"` // "novice" / "medium" / "advanced"
	Instructions   string             `bson:"instructions,omitempty" json:"instructions,omitempty"`
	VideoKey       string             `bson:"videoKey,omitempty" json:"videoKey,omitempty"` // S3 object key
	ImageKey       string             `bson:"imageKey,omitempty" json:"imageKey,omitempty"` // S3 object key
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// IsPartial reports whether the record is usable for display but is missing
// detail fields that a fully enriched record would carry.
func (e *LibraryExercise) IsPartial() bool {
	return e.Instructions == "" || len(e.MuscleGroups) == 0
}
